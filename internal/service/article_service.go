package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/project-board-api/internal/metrics"
	"github.com/project-board-api/internal/models"
	"github.com/project-board-api/internal/repository"
	"github.com/project-board-api/internal/validation"
	"github.com/rs/zerolog"
)

// articleService is the concrete implementation of ArticleService
type articleService struct {
	repos     *repository.Repositories
	tags      *TagReconciler
	validator *validation.Validator
	metrics   *metrics.Metrics
	log       zerolog.Logger
}

func newArticleService(repos *repository.Repositories, tags *TagReconciler, v *validation.Validator, m *metrics.Metrics, log zerolog.Logger) *articleService {
	return &articleService{
		repos:     repos,
		tags:      tags,
		validator: v,
		metrics:   m,
		log:       log.With().Str("service", "article").Logger(),
	}
}

// SearchArticles lists articles, optionally filtered. A blank keyword lists
// everything; HASHTAG matches any of the space separated names in keyword.
func (s *articleService) SearchArticles(ctx context.Context, searchType models.SearchType, keyword string, p models.Pageable) (*models.Page[models.ArticleDto], error) {
	keyword = strings.TrimSpace(keyword)

	var (
		page *models.Page[*models.Article]
		err  error
	)
	switch {
	case keyword == "":
		page, err = s.repos.Article.Search(ctx, "", "", p)
	case searchType == models.SearchTypeHashtag:
		page, err = s.repos.Article.SearchByHashtagNames(ctx, strings.Fields(keyword), p)
	default:
		page, err = s.repos.Article.Search(ctx, searchType, keyword, p)
	}
	if err != nil {
		return nil, err
	}
	return models.MapPage(page, models.ArticleDtoFrom), nil
}

// SearchArticlesViaHashtag lists articles tagged with hashtagName. A blank
// name yields an empty page.
func (s *articleService) SearchArticlesViaHashtag(ctx context.Context, hashtagName string, p models.Pageable) (*models.Page[models.ArticleDto], error) {
	hashtagName = strings.TrimPrefix(strings.TrimSpace(hashtagName), "#")
	if hashtagName == "" {
		return models.EmptyPage[models.ArticleDto](p.Normalize()), nil
	}

	page, err := s.repos.Article.SearchByHashtagNames(ctx, []string{hashtagName}, p)
	if err != nil {
		return nil, err
	}
	return models.MapPage(page, models.ArticleDtoFrom), nil
}

// GetArticle returns one article
func (s *articleService) GetArticle(ctx context.Context, id int64) (*models.ArticleDto, error) {
	article, err := s.repos.Article.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := models.ArticleDtoFrom(article)
	return &dto, nil
}

// GetArticleWithComments returns an article with its comment tree
func (s *articleService) GetArticleWithComments(ctx context.Context, id int64) (*models.ArticleWithCommentsResponse, error) {
	article, err := s.repos.Article.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	comments, err := s.repos.Comment.FindByArticleID(ctx, id)
	if err != nil {
		return nil, err
	}

	dtos := make([]*models.CommentDto, 0, len(comments))
	for _, c := range comments {
		dto := models.CommentDtoFrom(c)
		dtos = append(dtos, &dto)
	}

	dto := models.ArticleDtoFrom(article)
	return &models.ArticleWithCommentsResponse{
		ID:           dto.ID,
		Title:        dto.Title,
		Content:      dto.Content,
		HashtagNames: dto.HashtagNames,
		CreatedAt:    dto.CreatedAt,
		Email:        dto.User.Email,
		Nickname:     dto.User.DisplayName(),
		UserID:       dto.User.UserID,
		Comments:     BuildCommentTree(dtos),
	}, nil
}

// SaveArticle creates an article owned by actor and tags it from its content
func (s *articleService) SaveArticle(ctx context.Context, actor string, req *models.ArticleRequest) (*models.ArticleDto, error) {
	if err := validation.Err(s.validator.ValidateArticle(req)); err != nil {
		return nil, err
	}

	var saved *models.Article
	err := s.repos.WithTx(ctx, func(tx *repository.Repositories) error {
		article := models.NewArticle(tx.User.Reference(actor), req.Title, req.Content)
		if err := tx.Article.Create(ctx, article); err != nil {
			return err
		}
		if err := s.tags.AttachNewArticleTags(ctx, tx, article, article.Content); err != nil {
			return err
		}

		loaded, err := tx.Article.GetByID(ctx, article.ID)
		if err != nil {
			return err
		}
		saved = loaded
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncArticleCreated()
	s.log.Info().Int64("article_id", saved.ID).Str("user_id", actor).Msg("Article created")

	dto := models.ArticleDtoFrom(saved)
	return &dto, nil
}

// UpdateArticle applies the non-empty fields of req and re-tags the article.
// A missing article is logged and ignored; only the owner may update.
func (s *articleService) UpdateArticle(ctx context.Context, actor string, id int64, req *models.ArticleUpdateRequest) error {
	if err := validation.Err(s.validator.ValidateArticleUpdate(req)); err != nil {
		return err
	}

	err := s.repos.WithTx(ctx, func(tx *repository.Repositories) error {
		article, err := tx.Article.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if !article.IsOwnedBy(actor) {
			return models.ErrForbidden
		}

		if req.Title != "" {
			article.Title = req.Title
		}
		if req.Content != "" {
			article.Content = req.Content
		}
		article.Touch(actor, time.Now())

		if err := tx.Article.Update(ctx, article); err != nil {
			return err
		}
		return s.tags.ReconcileOnUpdate(ctx, tx, article, article.Content)
	})
	if errors.Is(err, models.ErrNotFound) {
		s.log.Warn().Err(err).Int64("article_id", id).Msg("Article update failed. Could not find article")
		return nil
	}
	return err
}

// DeleteArticle deletes an article with its comments and sweeps its
// hashtags. A missing article is logged and ignored; only the owner may delete.
func (s *articleService) DeleteArticle(ctx context.Context, actor string, id int64) error {
	err := s.repos.WithTx(ctx, func(tx *repository.Repositories) error {
		article, err := tx.Article.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if !article.IsOwnedBy(actor) {
			return models.ErrForbidden
		}

		oldIDs := article.HashtagIDs()
		if err := tx.Article.Delete(ctx, id); err != nil {
			return err
		}
		return s.tags.ReconcileOnDelete(ctx, tx, oldIDs)
	})
	if errors.Is(err, models.ErrNotFound) {
		s.log.Warn().Err(err).Int64("article_id", id).Msg("Article delete failed. Could not find article")
		return nil
	}
	if err != nil {
		return err
	}

	s.metrics.IncArticleDeleted()
	s.log.Info().Int64("article_id", id).Str("user_id", actor).Msg("Article deleted")
	return nil
}

// GetArticleCount returns the number of articles
func (s *articleService) GetArticleCount(ctx context.Context) (int, error) {
	return s.repos.Article.Count(ctx)
}

// GetHashtags returns every hashtag name, sorted
func (s *articleService) GetHashtags(ctx context.Context) ([]string, error) {
	return s.repos.Hashtag.FindAllNames(ctx)
}
