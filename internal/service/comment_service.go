package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/project-board-api/internal/metrics"
	"github.com/project-board-api/internal/models"
	"github.com/project-board-api/internal/repository"
	"github.com/project-board-api/internal/validation"
	"github.com/rs/zerolog"
)

// commentService is the concrete implementation of CommentService
type commentService struct {
	repos     *repository.Repositories
	validator *validation.Validator
	metrics   *metrics.Metrics
	log       zerolog.Logger
}

func newCommentService(repos *repository.Repositories, v *validation.Validator, m *metrics.Metrics, log zerolog.Logger) *commentService {
	return &commentService{
		repos:     repos,
		validator: v,
		metrics:   m,
		log:       log.With().Str("service", "comment").Logger(),
	}
}

// SearchComments returns the flat comments of an article
func (s *commentService) SearchComments(ctx context.Context, articleID int64) ([]models.CommentDto, error) {
	comments, err := s.repos.Comment.FindByArticleID(ctx, articleID)
	if err != nil {
		return nil, err
	}
	dtos := make([]models.CommentDto, 0, len(comments))
	for _, c := range comments {
		dtos = append(dtos, models.CommentDtoFrom(c))
	}
	return dtos, nil
}

// GetCommentTree returns the comment tree of an existing article
func (s *commentService) GetCommentTree(ctx context.Context, articleID int64) ([]*models.CommentResponse, error) {
	if _, err := s.repos.Article.GetByID(ctx, articleID); err != nil {
		return nil, err
	}
	dtos, err := s.SearchComments(ctx, articleID)
	if err != nil {
		return nil, err
	}
	ptrs := make([]*models.CommentDto, 0, len(dtos))
	for i := range dtos {
		ptrs = append(ptrs, &dtos[i])
	}
	return BuildCommentTree(ptrs), nil
}

// SaveComment creates a comment or, with ParentCommentID, a reply. Article
// and user are referenced without being read; if either is missing, or the
// parent is missing, the failure is logged and nothing is written.
func (s *commentService) SaveComment(ctx context.Context, actor string, req *models.CommentRequest) (*models.CommentDto, error) {
	if err := validation.Err(s.validator.ValidateComment(req)); err != nil {
		return nil, err
	}

	var saved *models.Comment
	err := s.repos.WithTx(ctx, func(tx *repository.Repositories) error {
		article := tx.Article.Reference(req.ArticleID)
		comment := models.NewComment(article, tx.User.Reference(actor), req.Content)

		if req.ParentCommentID != nil {
			parent, err := tx.Comment.GetByID(ctx, *req.ParentCommentID)
			if err != nil {
				return err
			}
			if parent.ArticleID != req.ArticleID {
				return fmt.Errorf("%w: parent comment %d belongs to another article", models.ErrInvalidInput, parent.ID)
			}
			parent.AddChildComment(comment)
		}

		if err := tx.Comment.Create(ctx, comment); err != nil {
			return err
		}
		loaded, err := tx.Comment.GetByID(ctx, comment.ID)
		if err != nil {
			return err
		}
		saved = loaded
		return nil
	})
	if errors.Is(err, models.ErrNotFound) {
		s.log.Warn().Err(err).
			Int64("article_id", req.ArticleID).
			Str("user_id", actor).
			Msg("Comment save failed. Could not find information required to save the comment")
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	s.metrics.IncCommentCreated()
	dto := models.CommentDtoFrom(saved)
	return &dto, nil
}

// UpdateComment replaces the content of a comment. A missing comment is
// logged and ignored; only the author may update.
func (s *commentService) UpdateComment(ctx context.Context, actor string, id int64, req *models.CommentUpdateRequest) error {
	if err := validation.Err(s.validator.ValidateCommentUpdate(req)); err != nil {
		return err
	}

	err := s.repos.WithTx(ctx, func(tx *repository.Repositories) error {
		comment, err := tx.Comment.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if !comment.IsOwnedBy(actor) {
			return models.ErrForbidden
		}
		comment.Content = req.Content
		comment.Touch(actor, time.Now())
		return tx.Comment.Update(ctx, comment)
	})
	if errors.Is(err, models.ErrNotFound) {
		s.log.Warn().Err(err).Int64("comment_id", id).Msg("Comment update failed. Could not find comment")
		return nil
	}
	return err
}

// DeleteComment deletes a comment and its replies. A missing comment is
// logged and ignored; only the author may delete.
func (s *commentService) DeleteComment(ctx context.Context, actor string, id int64) error {
	err := s.repos.WithTx(ctx, func(tx *repository.Repositories) error {
		comment, err := tx.Comment.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if !comment.IsOwnedBy(actor) {
			return models.ErrForbidden
		}
		return tx.Comment.Delete(ctx, id)
	})
	if errors.Is(err, models.ErrNotFound) {
		s.log.Warn().Err(err).Int64("comment_id", id).Msg("Comment delete failed. Could not find comment")
		return nil
	}
	return err
}
