package repository

import (
	"context"
	"database/sql"

	"github.com/project-board-api/internal/database"
	"github.com/project-board-api/internal/models"
)

// UserAccountRepository defines the interface for user account data operations
type UserAccountRepository interface {
	Create(ctx context.Context, user *models.UserAccount) error
	GetByID(ctx context.Context, userID string) (*models.UserAccount, error)
	// Reference returns a handle carrying only the ID. It performs no I/O;
	// a missing row surfaces as ErrNotFound when the handle is written.
	Reference(userID string) *models.UserAccount
	Count(ctx context.Context) (int, error)
	StreamAll(ctx context.Context, callback func(*models.UserAccount) error) error
}

// ArticleRepository defines the interface for article data operations
type ArticleRepository interface {
	Create(ctx context.Context, article *models.Article) error
	// Update writes title, content and audit fields. The owner is never written.
	Update(ctx context.Context, article *models.Article) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*models.Article, error)
	Reference(id int64) *models.Article
	Search(ctx context.Context, searchType models.SearchType, keyword string, p models.Pageable) (*models.Page[*models.Article], error)
	SearchByHashtagNames(ctx context.Context, names []string, p models.Pageable) (*models.Page[*models.Article], error)
	AttachHashtags(ctx context.Context, articleID int64, hashtagIDs []int64) error
	ClearHashtags(ctx context.Context, articleID int64) error
	Count(ctx context.Context) (int, error)
	StreamAll(ctx context.Context, callback func(*models.Article) error) error
}

// HashtagRepository defines the interface for hashtag data operations
type HashtagRepository interface {
	// Create inserts the hashtag or, when the name already exists, adopts the
	// existing row. Either way h.ID is set on return.
	Create(ctx context.Context, h *models.Hashtag) error
	GetByID(ctx context.Context, id int64) (*models.Hashtag, error)
	FindByName(ctx context.Context, name string) (*models.Hashtag, error)
	FindByNames(ctx context.Context, names []string) ([]*models.Hashtag, error)
	FindAllNames(ctx context.Context) ([]string, error)
	// DeleteIfOrphaned deletes the hashtag only when no article references it.
	DeleteIfOrphaned(ctx context.Context, id int64) (bool, error)
	Count(ctx context.Context) (int, error)
	StreamAll(ctx context.Context, callback func(*models.Hashtag) error) error
}

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	Update(ctx context.Context, comment *models.Comment) error
	// Delete removes the comment; replies are removed by cascade.
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*models.Comment, error)
	Reference(id int64) *models.Comment
	FindByArticleID(ctx context.Context, articleID int64) ([]*models.Comment, error)
	Count(ctx context.Context) (int, error)
	StreamAll(ctx context.Context, callback func(*models.Comment) error) error
}

// TxFunc runs fn with repositories bound to a single transaction
type TxFunc func(ctx context.Context, fn func(*Repositories) error) error

// Repositories holds all repository interfaces
type Repositories struct {
	User    UserAccountRepository
	Article ArticleRepository
	Hashtag HashtagRepository
	Comment CommentRepository

	RunInTx TxFunc
}

// WithTx runs fn inside a transaction. Repositories that are already bound to
// a transaction (RunInTx nil) run fn directly.
func (r *Repositories) WithTx(ctx context.Context, fn func(*Repositories) error) error {
	if r.RunInTx == nil {
		return fn(r)
	}
	return r.RunInTx(ctx, fn)
}

// New creates all repositories with the given database connection
func New(db *database.DB) *Repositories {
	repos := newRepositories(db)
	repos.RunInTx = func(ctx context.Context, fn func(*Repositories) error) error {
		return db.WithTx(ctx, func(tx *sql.Tx) error {
			return fn(newRepositories(tx))
		})
	}
	return repos
}

func newRepositories(q database.Querier) *Repositories {
	return &Repositories{
		User:    NewUserAccountRepo(q),
		Article: NewArticleRepo(q),
		Hashtag: NewHashtagRepo(q),
		Comment: NewCommentRepo(q),
	}
}
