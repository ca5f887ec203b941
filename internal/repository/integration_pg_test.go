//go:build integration

package repository_test

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/project-board-api/internal/config"
	"github.com/project-board-api/internal/database"
	"github.com/project-board-api/internal/models"
	"github.com/project-board-api/internal/repository"
	"github.com/project-board-api/internal/service"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

var testDB *database.DB

func TestMain(m *testing.M) {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("board"),
		postgres.WithUsername("board"),
		postgres.WithPassword("board"),
		testcontainers.WithWaitStrategy(
			// postgres restarts once after initdb
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		log.Fatalf("failed to start container: %s", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		log.Fatalf("failed to obtain container host: %s", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		log.Fatalf("failed to obtain container port: %s", err)
	}

	testDB, err = database.New(&config.DatabaseConfig{
		Host:         host,
		Port:         port.Port(),
		User:         "board",
		Password:     "board",
		Name:         "board",
		SSLMode:      "disable",
		MaxOpenConns: 5,
		MaxIdleConns: 2,
		MaxLifetime:  time.Minute,
	}, zerolog.Nop())
	if err != nil {
		log.Fatalf("failed to connect to postgres container: %s", err)
	}

	migrations, _ := filepath.Abs(filepath.Join("..", "..", "migrations"))
	if err := testDB.RunMigrations(migrations); err != nil {
		log.Fatalf("failed to run migrations: %s", err)
	}

	code := m.Run()

	testDB.Close()
	if err := container.Terminate(ctx); err != nil {
		log.Printf("failed to terminate container: %s", err)
	}
	os.Exit(code)
}

func resetDB(t *testing.T) *repository.Repositories {
	t.Helper()
	_, err := testDB.ExecContext(context.Background(),
		`TRUNCATE article_comments, article_hashtag, hashtags, articles, user_accounts RESTART IDENTITY CASCADE`)
	require.NoError(t, err)

	repos := repository.New(testDB)
	for _, u := range []*models.UserAccount{
		models.NewUserAccount("uno", "hash", "uno@mail.com", "Uno", ""),
		models.NewUserAccount("dos", "hash", "dos@mail.com", "", ""),
	} {
		require.NoError(t, repos.User.Create(context.Background(), u))
	}
	return repos
}

func newServices(repos *repository.Repositories) *service.Services {
	cfg := &config.Config{
		Auth:       config.AuthConfig{JWTSecret: "0123456789abcdef0123456789abcdef", JWTIssuer: "test", TokenTTL: time.Hour},
		Pagination: config.PaginationConfig{BarLength: 5},
	}
	return service.NewServices(repos, cfg, zerolog.Nop(), service.Dependencies{})
}

func TestPostgres_UserAccount(t *testing.T) {
	repos := resetDB(t)
	ctx := context.Background()

	u, err := repos.User.GetByID(ctx, "uno")
	require.NoError(t, err)
	assert.Equal(t, "Uno", u.Nickname)
	assert.Equal(t, "uno", u.CreatedBy)

	_, err = repos.User.GetByID(ctx, "nobody")
	assert.ErrorIs(t, err, models.ErrNotFound)

	err = repos.User.Create(ctx, models.NewUserAccount("uno", "hash", "", "", ""))
	assert.ErrorIs(t, err, models.ErrConflict)
}

func TestPostgres_HashtagLifecycle(t *testing.T) {
	repos := resetDB(t)
	svcs := newServices(repos)
	ctx := context.Background()

	a, err := svcs.Article.SaveArticle(ctx, "uno", &models.ArticleRequest{Title: "a", Content: "#java #spring #shared"})
	require.NoError(t, err)
	b, err := svcs.Article.SaveArticle(ctx, "dos", &models.ArticleRequest{Title: "b", Content: "#shared"})
	require.NoError(t, err)
	assert.Equal(t, []string{"java", "shared", "spring"}, a.HashtagNames)

	java, err := repos.Hashtag.FindByName(ctx, "java")
	require.NoError(t, err)

	require.NoError(t, svcs.Article.UpdateArticle(ctx, "uno", a.ID, &models.ArticleUpdateRequest{Content: "#java #kotlin"}))

	names, err := repos.Hashtag.FindAllNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"java", "kotlin", "shared"}, names)

	javaAfter, err := repos.Hashtag.FindByName(ctx, "java")
	require.NoError(t, err)
	assert.Equal(t, java.ID, javaAfter.ID)

	require.NoError(t, svcs.Article.DeleteArticle(ctx, "uno", a.ID))
	names, err = repos.Hashtag.FindAllNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"shared"}, names)

	page, err := svcs.Article.SearchArticlesViaHashtag(ctx, "shared", models.DefaultPageable())
	require.NoError(t, err)
	require.Len(t, page.Content, 1)
	assert.Equal(t, b.ID, page.Content[0].ID)
}

func TestPostgres_LongHashtagSaves(t *testing.T) {
	repos := resetDB(t)
	svcs := newServices(repos)
	ctx := context.Background()
	long := strings.Repeat("a", 3000)
	hangul := strings.Repeat("가", 300)

	a, err := svcs.Article.SaveArticle(ctx, "uno", &models.ArticleRequest{Title: "long", Content: "#" + long + " #" + hangul})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{long, hangul}, a.HashtagNames)

	// a second article reuses the stored row
	_, err = svcs.Article.SaveArticle(ctx, "dos", &models.ArticleRequest{Title: "again", Content: "#" + long})
	require.NoError(t, err)

	h, err := repos.Hashtag.FindByName(ctx, long)
	require.NoError(t, err)
	assert.Equal(t, long, h.HashtagName)

	names, err := repos.Hashtag.FindAllNames(ctx)
	require.NoError(t, err)
	assert.Len(t, names, 2)
}

func TestPostgres_HashtagUpsertAdoptsExisting(t *testing.T) {
	repos := resetDB(t)
	ctx := context.Background()

	first := models.NewHashtag("go", "uno")
	require.NoError(t, repos.Hashtag.Create(ctx, first))
	second := models.NewHashtag("go", "dos")
	require.NoError(t, repos.Hashtag.Create(ctx, second))

	assert.Equal(t, first.ID, second.ID)
	count, err := repos.Hashtag.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestPostgres_CommentsCascade(t *testing.T) {
	repos := resetDB(t)
	svcs := newServices(repos)
	ctx := context.Background()

	a, err := svcs.Article.SaveArticle(ctx, "uno", &models.ArticleRequest{Title: "a", Content: "content"})
	require.NoError(t, err)

	root, err := svcs.Comment.SaveComment(ctx, "dos", &models.CommentRequest{ArticleID: a.ID, Content: "root"})
	require.NoError(t, err)
	require.NotNil(t, root)
	reply, err := svcs.Comment.SaveComment(ctx, "uno", &models.CommentRequest{ArticleID: a.ID, ParentCommentID: &root.ID, Content: "reply"})
	require.NoError(t, err)
	require.NotNil(t, reply)

	tree, err := svcs.Comment.GetCommentTree(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, tree, 1)
	require.Len(t, tree[0].ChildComments, 1)
	assert.Equal(t, "dos", tree[0].Nickname)

	// missing article is dropped without error
	dropped, err := svcs.Comment.SaveComment(ctx, "uno", &models.CommentRequest{ArticleID: 9999, Content: "lost"})
	require.NoError(t, err)
	assert.Nil(t, dropped)

	require.NoError(t, svcs.Comment.DeleteComment(ctx, "dos", root.ID))
	count, err := repos.Comment.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestPostgres_SearchEscapesWildcards(t *testing.T) {
	repos := resetDB(t)
	svcs := newServices(repos)
	ctx := context.Background()

	_, err := svcs.Article.SaveArticle(ctx, "uno", &models.ArticleRequest{Title: "100% done", Content: "x"})
	require.NoError(t, err)
	_, err = svcs.Article.SaveArticle(ctx, "uno", &models.ArticleRequest{Title: "1000 things", Content: "x"})
	require.NoError(t, err)

	page, err := svcs.Article.SearchArticles(ctx, models.SearchTypeTitle, "0%", models.DefaultPageable())
	require.NoError(t, err)
	require.Len(t, page.Content, 1)
	assert.Equal(t, "100% done", page.Content[0].Title)

	page, err = svcs.Article.SearchArticles(ctx, models.SearchTypeNickname, "un", models.DefaultPageable())
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.TotalElements)
}
