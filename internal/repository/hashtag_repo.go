package repository

import (
	"context"

	"github.com/lib/pq"
	"github.com/project-board-api/internal/database"
	"github.com/project-board-api/internal/models"
)

const hashtagColumns = `id, hashtag_name, created_at, created_by, modified_at, modified_by`

// hashtagRepo is the concrete implementation of HashtagRepository
type hashtagRepo struct {
	db database.Querier
}

// NewHashtagRepo creates a new hashtag repository
func NewHashtagRepo(db database.Querier) HashtagRepository {
	return &hashtagRepo{db: db}
}

func scanHashtag(row rowScanner) (*models.Hashtag, error) {
	var h models.Hashtag
	err := row.Scan(&h.ID, &h.HashtagName, &h.CreatedAt, &h.CreatedBy, &h.ModifiedAt, &h.ModifiedBy)
	if err != nil {
		return nil, err
	}
	return &h, nil
}

// Create inserts a hashtag. A concurrent creator of the same name is tolerated:
// the no-op update makes RETURNING yield the existing row.
func (r *hashtagRepo) Create(ctx context.Context, h *models.Hashtag) error {
	query := `
		INSERT INTO hashtags (hashtag_name, created_at, created_by, modified_at, modified_by)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT ((md5(hashtag_name))) DO UPDATE SET hashtag_name = EXCLUDED.hashtag_name
		RETURNING ` + hashtagColumns
	stored, err := scanHashtag(r.db.QueryRowContext(ctx, query,
		h.HashtagName, h.CreatedAt, h.CreatedBy, h.ModifiedAt, h.ModifiedBy,
	))
	if err != nil {
		return mapError(err)
	}
	*h = *stored
	return nil
}

// GetByID retrieves a hashtag by ID
func (r *hashtagRepo) GetByID(ctx context.Context, id int64) (*models.Hashtag, error) {
	h, err := scanHashtag(r.db.QueryRowContext(ctx, `SELECT `+hashtagColumns+` FROM hashtags WHERE id = $1`, id))
	if err != nil {
		return nil, mapError(err)
	}
	return h, nil
}

// FindByName retrieves a hashtag by exact name
func (r *hashtagRepo) FindByName(ctx context.Context, name string) (*models.Hashtag, error) {
	h, err := scanHashtag(r.db.QueryRowContext(ctx, `SELECT `+hashtagColumns+` FROM hashtags WHERE hashtag_name = $1`, name))
	if err != nil {
		return nil, mapError(err)
	}
	return h, nil
}

// FindByNames returns the existing hashtags among names, matched exactly
func (r *hashtagRepo) FindByNames(ctx context.Context, names []string) ([]*models.Hashtag, error) {
	if len(names) == 0 {
		return []*models.Hashtag{}, nil
	}

	query := `SELECT ` + hashtagColumns + ` FROM hashtags WHERE hashtag_name = ANY($1) ORDER BY hashtag_name`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(names))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	hashtags := make([]*models.Hashtag, 0, len(names))
	for rows.Next() {
		h, err := scanHashtag(rows)
		if err != nil {
			return nil, err
		}
		hashtags = append(hashtags, h)
	}
	return hashtags, rows.Err()
}

// FindAllNames returns every hashtag name, sorted
func (r *hashtagRepo) FindAllNames(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT hashtag_name FROM hashtags ORDER BY hashtag_name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// DeleteIfOrphaned deletes the hashtag in one statement, only when no
// article_hashtag row references it.
func (r *hashtagRepo) DeleteIfOrphaned(ctx context.Context, id int64) (bool, error) {
	query := `
		DELETE FROM hashtags h
		WHERE h.id = $1
		AND NOT EXISTS (SELECT 1 FROM article_hashtag ah WHERE ah.hashtag_id = h.id)
	`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return false, mapError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Count returns the total number of hashtags
func (r *hashtagRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM hashtags").Scan(&count)
	return count, err
}

// StreamAll streams all hashtags for export
func (r *hashtagRepo) StreamAll(ctx context.Context, callback func(*models.Hashtag) error) error {
	rows, err := r.db.QueryContext(ctx, `SELECT `+hashtagColumns+` FROM hashtags ORDER BY hashtag_name`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		h, err := scanHashtag(rows)
		if err != nil {
			return err
		}
		if err := callback(h); err != nil {
			return err
		}
	}

	return rows.Err()
}
