package repository

import (
	"context"
	"fmt"

	"github.com/lib/pq"
	"github.com/project-board-api/internal/database"
	"github.com/project-board-api/internal/models"
)

const articleSelect = `
	SELECT a.id, a.user_id, a.title, a.content,
		a.created_at, a.created_by, a.modified_at, a.modified_by,
		COALESCE(u.email, ''), COALESCE(u.nickname, ''), COALESCE(u.memo, ''),
		u.created_at, u.created_by, u.modified_at, u.modified_by
	FROM articles a
	JOIN user_accounts u ON u.user_id = a.user_id`

// articleRepo is the concrete implementation of ArticleRepository
type articleRepo struct {
	db database.Querier
}

// NewArticleRepo creates a new article repository
func NewArticleRepo(db database.Querier) ArticleRepository {
	return &articleRepo{db: db}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanArticle(row rowScanner) (*models.Article, error) {
	var a models.Article
	u := &models.UserAccount{}
	err := row.Scan(
		&a.ID, &a.UserID, &a.Title, &a.Content,
		&a.CreatedAt, &a.CreatedBy, &a.ModifiedAt, &a.ModifiedBy,
		&u.Email, &u.Nickname, &u.Memo,
		&u.CreatedAt, &u.CreatedBy, &u.ModifiedAt, &u.ModifiedBy,
	)
	if err != nil {
		return nil, err
	}
	u.UserID = a.UserID
	a.User = u
	return &a, nil
}

// Create inserts a new article and sets its ID
func (r *articleRepo) Create(ctx context.Context, article *models.Article) error {
	query := `
		INSERT INTO articles (user_id, title, content, created_at, created_by, modified_at, modified_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	err := r.db.QueryRowContext(ctx, query,
		article.UserID, article.Title, article.Content,
		article.CreatedAt, article.CreatedBy, article.ModifiedAt, article.ModifiedBy,
	).Scan(&article.ID)
	return mapError(err)
}

// Update writes the mutable fields of an article
func (r *articleRepo) Update(ctx context.Context, article *models.Article) error {
	query := `
		UPDATE articles SET title = $2, content = $3, modified_at = $4, modified_by = $5
		WHERE id = $1
	`
	return expectOneRow(r.db.ExecContext(ctx, query,
		article.ID, article.Title, article.Content, article.ModifiedAt, article.ModifiedBy,
	))
}

// Delete removes an article; comments and hashtag links go by cascade
func (r *articleRepo) Delete(ctx context.Context, id int64) error {
	return expectOneRow(r.db.ExecContext(ctx, "DELETE FROM articles WHERE id = $1", id))
}

// GetByID retrieves an article with its owner and hashtags
func (r *articleRepo) GetByID(ctx context.Context, id int64) (*models.Article, error) {
	article, err := scanArticle(r.db.QueryRowContext(ctx, articleSelect+` WHERE a.id = $1`, id))
	if err != nil {
		return nil, mapError(err)
	}

	if err := r.loadHashtags(ctx, []*models.Article{article}); err != nil {
		return nil, err
	}
	return article, nil
}

// Reference returns an unloaded handle
func (r *articleRepo) Reference(id int64) *models.Article {
	return &models.Article{ID: id}
}

// Search returns one page of articles matching keyword in the field selected
// by searchType. An empty searchType or blank keyword matches everything.
func (r *articleRepo) Search(ctx context.Context, searchType models.SearchType, keyword string, p models.Pageable) (*models.Page[*models.Article], error) {
	if keyword == "" {
		return r.page(ctx, "", nil, p)
	}

	var where string
	switch searchType {
	case models.SearchTypeTitle:
		where = `a.title ILIKE $1`
	case models.SearchTypeContent:
		where = `a.content ILIKE $1`
	case models.SearchTypeID:
		where = `a.user_id ILIKE $1`
	case models.SearchTypeNickname:
		where = `u.nickname ILIKE $1`
	case "":
		return r.page(ctx, "", nil, p)
	default:
		return nil, fmt.Errorf("%w: unsupported search type %q", models.ErrInvalidInput, searchType)
	}
	return r.page(ctx, where, []interface{}{containsPattern(keyword)}, p)
}

// SearchByHashtagNames returns one page of articles tagged with any of names
func (r *articleRepo) SearchByHashtagNames(ctx context.Context, names []string, p models.Pageable) (*models.Page[*models.Article], error) {
	if len(names) == 0 {
		return models.EmptyPage[*models.Article](p), nil
	}
	where := `EXISTS (
		SELECT 1 FROM article_hashtag ah
		JOIN hashtags h ON h.id = ah.hashtag_id
		WHERE ah.article_id = a.id AND h.hashtag_name = ANY($1))`
	return r.page(ctx, where, []interface{}{pq.Array(names)}, p)
}

func (r *articleRepo) page(ctx context.Context, where string, args []interface{}, p models.Pageable) (*models.Page[*models.Article], error) {
	p = p.Normalize()
	if where != "" {
		where = " WHERE " + where
	}

	var total int64
	countQuery := `SELECT COUNT(*) FROM articles a JOIN user_accounts u ON u.user_id = a.user_id` + where
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, err
	}
	if total == 0 {
		return models.EmptyPage[*models.Article](p), nil
	}

	n := len(args)
	query := fmt.Sprintf("%s%s ORDER BY %s LIMIT $%d OFFSET $%d", articleSelect, where, p.OrderBy(), n+1, n+2)
	rows, err := r.db.QueryContext(ctx, query, append(args, p.Size, p.Offset())...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var articles []*models.Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		articles = append(articles, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.loadHashtags(ctx, articles); err != nil {
		return nil, err
	}
	return models.NewPage(articles, p, total), nil
}

// loadHashtags fills the hashtag sets of articles with one query
func (r *articleRepo) loadHashtags(ctx context.Context, articles []*models.Article) error {
	if len(articles) == 0 {
		return nil
	}

	byID := make(map[int64]*models.Article, len(articles))
	ids := make([]int64, 0, len(articles))
	for _, a := range articles {
		byID[a.ID] = a
		ids = append(ids, a.ID)
	}

	query := `
		SELECT ah.article_id, h.id, h.hashtag_name, h.created_at, h.created_by, h.modified_at, h.modified_by
		FROM article_hashtag ah
		JOIN hashtags h ON h.id = ah.hashtag_id
		WHERE ah.article_id = ANY($1)
		ORDER BY h.hashtag_name
	`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var articleID int64
		var h models.Hashtag
		if err := rows.Scan(&articleID, &h.ID, &h.HashtagName,
			&h.CreatedAt, &h.CreatedBy, &h.ModifiedAt, &h.ModifiedBy); err != nil {
			return err
		}
		if a, ok := byID[articleID]; ok {
			a.AddHashtag(&h)
		}
	}
	return rows.Err()
}

// AttachHashtags links persisted hashtags to an article; existing links are kept
func (r *articleRepo) AttachHashtags(ctx context.Context, articleID int64, hashtagIDs []int64) error {
	if len(hashtagIDs) == 0 {
		return nil
	}
	query := `
		INSERT INTO article_hashtag (article_id, hashtag_id)
		SELECT $1, unnest($2::bigint[])
		ON CONFLICT DO NOTHING
	`
	_, err := r.db.ExecContext(ctx, query, articleID, pq.Array(hashtagIDs))
	return mapError(err)
}

// ClearHashtags removes every hashtag link of an article
func (r *articleRepo) ClearHashtags(ctx context.Context, articleID int64) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM article_hashtag WHERE article_id = $1", articleID)
	return err
}

// Count returns the total number of articles
func (r *articleRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM articles").Scan(&count)
	return count, err
}

// StreamAll streams all articles with their hashtags for export. Hashtags are
// aggregated in SQL so no second query runs while rows are open.
func (r *articleRepo) StreamAll(ctx context.Context, callback func(*models.Article) error) error {
	query := `
		SELECT a.id, a.user_id, a.title, a.content,
			a.created_at, a.created_by, a.modified_at, a.modified_by,
			COALESCE(array_agg(h.hashtag_name ORDER BY h.hashtag_name) FILTER (WHERE h.id IS NOT NULL), '{}')
		FROM articles a
		LEFT JOIN article_hashtag ah ON ah.article_id = a.id
		LEFT JOIN hashtags h ON h.id = ah.hashtag_id
		GROUP BY a.id
		ORDER BY a.created_at, a.id
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var a models.Article
		var names []string
		err := rows.Scan(
			&a.ID, &a.UserID, &a.Title, &a.Content,
			&a.CreatedAt, &a.CreatedBy, &a.ModifiedAt, &a.ModifiedBy,
			pq.Array(&names),
		)
		if err != nil {
			return err
		}
		for _, name := range names {
			a.AddHashtag(&models.Hashtag{HashtagName: name})
		}

		if err := callback(&a); err != nil {
			return err
		}
	}

	return rows.Err()
}

