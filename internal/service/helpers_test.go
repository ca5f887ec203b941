package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/project-board-api/internal/auth"
	"github.com/project-board-api/internal/config"
	"github.com/project-board-api/internal/metrics"
	"github.com/project-board-api/internal/mocks"
	"github.com/project-board-api/internal/models"
	"github.com/project-board-api/internal/repository"
	"github.com/project-board-api/internal/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	repos    *repository.Repositories
	store    *mocks.MockStore
	metrics  *metrics.Metrics
	services *service.Services
	oauth    *fakeProvider
}

func testConfig() *config.Config {
	return &config.Config{
		Auth: config.AuthConfig{
			JWTSecret: "0123456789abcdef0123456789abcdef",
			JWTIssuer: "board-test",
			TokenTTL:  time.Hour,
		},
		Pagination: config.PaginationConfig{BarLength: 5},
	}
}

func newTestEnv(t testing.TB) *testEnv {
	t.Helper()
	repos, store := mocks.NewRepositories()
	m := metrics.NewWithRegistry(prometheus.NewRegistry())
	fake := &fakeProvider{profiles: map[string]*auth.OAuthProfile{}}

	svcs := service.NewServices(repos, testConfig(), zerolog.Nop(), service.Dependencies{
		Metrics: m,
		OAuth:   auth.Providers{"fake": fake},
	})

	env := &testEnv{repos: repos, store: store, metrics: m, services: svcs, oauth: fake}
	env.seedUser("uno", "Uno")
	env.seedUser("dos", "")
	return env
}

func (e *testEnv) seedUser(userID, nickname string) {
	e.store.SeedUser(models.NewUserAccount(userID, "not-a-hash", userID+"@mail.com", nickname, ""))
}

func (e *testEnv) saveArticle(t testing.TB, actor, title, content string) *models.ArticleDto {
	t.Helper()
	dto, err := e.services.Article.SaveArticle(context.Background(), actor, &models.ArticleRequest{Title: title, Content: content})
	require.NoError(t, err)
	return dto
}

func (e *testEnv) saveComment(t testing.TB, actor string, articleID int64, parentID *int64, content string) *models.CommentDto {
	t.Helper()
	dto, err := e.services.Comment.SaveComment(context.Background(), actor, &models.CommentRequest{
		ArticleID:       articleID,
		ParentCommentID: parentID,
		Content:         content,
	})
	require.NoError(t, err)
	require.NotNil(t, dto)
	return dto
}

// fakeProvider is an OAuthProvider keyed by authorization code
type fakeProvider struct {
	profiles map[string]*auth.OAuthProfile
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) AuthCodeURL(state string) string {
	return "https://idp.example/authorize?state=" + state
}

func (f *fakeProvider) Exchange(ctx context.Context, code string) (*auth.OAuthProfile, error) {
	p, ok := f.profiles[code]
	if !ok {
		return nil, errors.New("invalid_grant")
	}
	return p, nil
}
