package repository

import (
	"context"
	"database/sql"

	"github.com/project-board-api/internal/database"
	"github.com/project-board-api/internal/models"
)

const commentSelect = `
	SELECT c.id, c.article_id, c.user_id, c.parent_comment_id, c.content,
		c.created_at, c.created_by, c.modified_at, c.modified_by,
		COALESCE(u.email, ''), COALESCE(u.nickname, ''), COALESCE(u.memo, '')
	FROM article_comments c
	JOIN user_accounts u ON u.user_id = c.user_id`

// commentRepo is the concrete implementation of CommentRepository
type commentRepo struct {
	db database.Querier
}

// NewCommentRepo creates a new comment repository
func NewCommentRepo(db database.Querier) CommentRepository {
	return &commentRepo{db: db}
}

func scanComment(row rowScanner) (*models.Comment, error) {
	var c models.Comment
	var parentID sql.NullInt64
	u := &models.UserAccount{}
	err := row.Scan(
		&c.ID, &c.ArticleID, &c.UserID, &parentID, &c.Content,
		&c.CreatedAt, &c.CreatedBy, &c.ModifiedAt, &c.ModifiedBy,
		&u.Email, &u.Nickname, &u.Memo,
	)
	if err != nil {
		return nil, err
	}
	if parentID.Valid {
		c.ParentCommentID = &parentID.Int64
	}
	u.UserID = c.UserID
	c.User = u
	return &c, nil
}

// Create inserts a new comment and sets its ID. A missing article, user or
// parent surfaces as ErrNotFound.
func (r *commentRepo) Create(ctx context.Context, comment *models.Comment) error {
	query := `
		INSERT INTO article_comments (article_id, user_id, parent_comment_id, content,
			created_at, created_by, modified_at, modified_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	var parentID sql.NullInt64
	if comment.ParentCommentID != nil {
		parentID = sql.NullInt64{Int64: *comment.ParentCommentID, Valid: true}
	}
	err := r.db.QueryRowContext(ctx, query,
		comment.ArticleID, comment.UserID, parentID, comment.Content,
		comment.CreatedAt, comment.CreatedBy, comment.ModifiedAt, comment.ModifiedBy,
	).Scan(&comment.ID)
	return mapError(err)
}

// Update writes the content and audit fields of a comment
func (r *commentRepo) Update(ctx context.Context, comment *models.Comment) error {
	query := `UPDATE article_comments SET content = $2, modified_at = $3, modified_by = $4 WHERE id = $1`
	return expectOneRow(r.db.ExecContext(ctx, query,
		comment.ID, comment.Content, comment.ModifiedAt, comment.ModifiedBy,
	))
}

// Delete removes a comment and, by cascade, its replies
func (r *commentRepo) Delete(ctx context.Context, id int64) error {
	return expectOneRow(r.db.ExecContext(ctx, "DELETE FROM article_comments WHERE id = $1", id))
}

// GetByID retrieves a comment by ID
func (r *commentRepo) GetByID(ctx context.Context, id int64) (*models.Comment, error) {
	c, err := scanComment(r.db.QueryRowContext(ctx, commentSelect+` WHERE c.id = $1`, id))
	if err != nil {
		return nil, mapError(err)
	}
	return c, nil
}

// Reference returns an unloaded handle
func (r *commentRepo) Reference(id int64) *models.Comment {
	return &models.Comment{ID: id}
}

// FindByArticleID returns every comment of an article in insertion order
func (r *commentRepo) FindByArticleID(ctx context.Context, articleID int64) ([]*models.Comment, error) {
	rows, err := r.db.QueryContext(ctx, commentSelect+` WHERE c.article_id = $1 ORDER BY c.id`, articleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := []*models.Comment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

// Count returns the total number of comments
func (r *commentRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM article_comments").Scan(&count)
	return count, err
}

// StreamAll streams all comments for export
func (r *commentRepo) StreamAll(ctx context.Context, callback func(*models.Comment) error) error {
	rows, err := r.db.QueryContext(ctx, commentSelect+` ORDER BY c.created_at, c.id`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return err
		}
		if err := callback(c); err != nil {
			return err
		}
	}

	return rows.Err()
}
