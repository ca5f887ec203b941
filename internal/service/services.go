package service

import (
	"context"
	"net/http"

	"github.com/project-board-api/internal/auth"
	"github.com/project-board-api/internal/config"
	"github.com/project-board-api/internal/metrics"
	"github.com/project-board-api/internal/models"
	"github.com/project-board-api/internal/repository"
	"github.com/project-board-api/internal/validation"
	"github.com/rs/zerolog"
)

// ArticleService defines the interface for article operations
type ArticleService interface {
	SearchArticles(ctx context.Context, searchType models.SearchType, keyword string, p models.Pageable) (*models.Page[models.ArticleDto], error)
	SearchArticlesViaHashtag(ctx context.Context, hashtagName string, p models.Pageable) (*models.Page[models.ArticleDto], error)
	GetArticle(ctx context.Context, id int64) (*models.ArticleDto, error)
	GetArticleWithComments(ctx context.Context, id int64) (*models.ArticleWithCommentsResponse, error)
	SaveArticle(ctx context.Context, actor string, req *models.ArticleRequest) (*models.ArticleDto, error)
	UpdateArticle(ctx context.Context, actor string, id int64, req *models.ArticleUpdateRequest) error
	DeleteArticle(ctx context.Context, actor string, id int64) error
	GetArticleCount(ctx context.Context) (int, error)
	GetHashtags(ctx context.Context) ([]string, error)
}

// CommentService defines the interface for comment operations
type CommentService interface {
	SearchComments(ctx context.Context, articleID int64) ([]models.CommentDto, error)
	GetCommentTree(ctx context.Context, articleID int64) ([]*models.CommentResponse, error)
	// SaveComment returns a nil dto and nil error when the article, user or
	// parent comment does not exist.
	SaveComment(ctx context.Context, actor string, req *models.CommentRequest) (*models.CommentDto, error)
	UpdateComment(ctx context.Context, actor string, id int64, req *models.CommentUpdateRequest) error
	DeleteComment(ctx context.Context, actor string, id int64) error
}

// UserService defines the interface for account and authentication operations
type UserService interface {
	SearchUser(ctx context.Context, userID string) (*models.UserAccountDto, error)
	SaveUser(ctx context.Context, req *models.SignupRequest) (*models.UserAccountDto, error)
	Login(ctx context.Context, userID, password string) (*models.TokenResponse, error)
	Logout(ctx context.Context, claims *auth.Claims) error
	OAuthAuthorizeURL(provider, state string) (string, error)
	LoginWithOAuth(ctx context.Context, provider, code string) (*models.TokenResponse, error)
	Authenticate(ctx context.Context, token string) (*auth.Claims, error)
}

// PaginationService computes the page numbers shown under listings
type PaginationService interface {
	GetPaginationBarNumbers(currentPage, totalPages int) []int
	BarLength() int
}

// ExportService defines the interface for export operations
type ExportService interface {
	StreamUsers(ctx context.Context, w http.ResponseWriter, format string) error
	StreamArticles(ctx context.Context, w http.ResponseWriter, format string) error
	StreamComments(ctx context.Context, w http.ResponseWriter, format string) error
	StreamHashtags(ctx context.Context, w http.ResponseWriter, format string) error
	GetCount(ctx context.Context, resource string) (int, error)
}

// Services holds all service interfaces
type Services struct {
	Article    ArticleService
	Comment    CommentService
	User       UserService
	Pagination PaginationService
	Export     ExportService
}

// Dependencies are the collaborators of the services that live outside the
// database. Nil fields get in-process defaults.
type Dependencies struct {
	Metrics     *metrics.Metrics
	Revocations auth.RevocationStore
	OAuth       auth.Providers
}

// NewServices creates all services
func NewServices(repos *repository.Repositories, cfg *config.Config, log zerolog.Logger, deps Dependencies) *Services {
	if deps.Revocations == nil {
		deps.Revocations = auth.NewMemoryRevocationStore()
	}
	if deps.OAuth == nil {
		deps.OAuth = auth.NewProviders(cfg.Auth)
	}

	v := validation.NewValidator()
	tags := NewTagReconciler(deps.Metrics, log)
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.TokenTTL)

	return &Services{
		Article:    newArticleService(repos, tags, v, deps.Metrics, log),
		Comment:    newCommentService(repos, v, deps.Metrics, log),
		User:       newUserService(repos, tokens, deps.Revocations, deps.OAuth, v, deps.Metrics, log),
		Pagination: newPaginationService(cfg.Pagination.BarLength),
		Export:     newExportService(repos, cfg.Export.BatchSize, log),
	}
}
