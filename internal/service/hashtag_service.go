package service

import (
	"context"
	"fmt"

	"github.com/project-board-api/internal/hashtag"
	"github.com/project-board-api/internal/metrics"
	"github.com/project-board-api/internal/models"
	"github.com/project-board-api/internal/repository"
	"github.com/rs/zerolog"
)

// TagReconciler keeps the article to hashtag relation in step with article
// content. Every method runs on the repositories it is given, normally bound
// to the caller's transaction.
type TagReconciler struct {
	metrics *metrics.Metrics
	log     zerolog.Logger
}

// NewTagReconciler creates a reconciler. m may be nil.
func NewTagReconciler(m *metrics.Metrics, log zerolog.Logger) *TagReconciler {
	return &TagReconciler{
		metrics: m,
		log:     log.With().Str("service", "hashtag").Logger(),
	}
}

// AttachNewArticleTags links the article to every hashtag named in content,
// creating the hashtags that do not exist yet. It never deletes anything.
// The article must already be persisted.
func (r *TagReconciler) AttachNewArticleTags(ctx context.Context, repos *repository.Repositories, article *models.Article, content string) error {
	names := hashtag.ParseNames(content)
	if len(names) == 0 {
		return nil
	}

	existing, err := repos.Hashtag.FindByNames(ctx, names)
	if err != nil {
		return fmt.Errorf("failed to look up hashtags: %w", err)
	}
	byName := make(map[string]*models.Hashtag, len(existing))
	for _, h := range existing {
		byName[h.HashtagName] = h
	}

	actor := article.ModifiedBy
	var transient []*models.Hashtag
	for _, name := range names {
		if h, ok := byName[name]; ok {
			article.AddHashtag(h)
			continue
		}
		h := models.NewHashtag(name, actor)
		transient = append(transient, h)
		article.AddHashtag(h)
	}

	for _, h := range transient {
		if err := repos.Hashtag.Create(ctx, h); err != nil {
			return fmt.Errorf("failed to create hashtag %q: %w", h.HashtagName, err)
		}
	}

	if err := repos.Article.AttachHashtags(ctx, article.ID, article.HashtagIDs()); err != nil {
		return fmt.Errorf("failed to attach hashtags: %w", err)
	}

	r.metrics.AddHashtagsCreated(len(transient))
	r.log.Debug().
		Int64("article_id", article.ID).
		Strs("hashtags", names).
		Int("created", len(transient)).
		Msg("Hashtags attached")
	return nil
}

// ReconcileOnUpdate replaces the article's hashtags with those named in
// newContent, then deletes previously attached hashtags that no article
// references anymore. Hashtags kept across the update are never recreated.
func (r *TagReconciler) ReconcileOnUpdate(ctx context.Context, repos *repository.Repositories, article *models.Article, newContent string) error {
	oldIDs := article.HashtagIDs()

	article.ClearHashtags()
	if err := repos.Article.ClearHashtags(ctx, article.ID); err != nil {
		return fmt.Errorf("failed to clear hashtags: %w", err)
	}

	if err := r.AttachNewArticleTags(ctx, repos, article, newContent); err != nil {
		return err
	}

	kept := make(map[int64]struct{})
	for _, id := range article.HashtagIDs() {
		kept[id] = struct{}{}
	}
	stale := make([]int64, 0, len(oldIDs))
	for _, id := range oldIDs {
		if _, ok := kept[id]; !ok {
			stale = append(stale, id)
		}
	}

	return r.sweep(ctx, repos, stale)
}

// ReconcileOnDelete deletes the hashtags of a deleted article that became
// orphaned. oldHashtagIDs must be captured before the article is deleted.
func (r *TagReconciler) ReconcileOnDelete(ctx context.Context, repos *repository.Repositories, oldHashtagIDs []int64) error {
	return r.sweep(ctx, repos, oldHashtagIDs)
}

func (r *TagReconciler) sweep(ctx context.Context, repos *repository.Repositories, ids []int64) error {
	deleted := 0
	for _, id := range ids {
		ok, err := repos.Hashtag.DeleteIfOrphaned(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to delete orphaned hashtag %d: %w", id, err)
		}
		if ok {
			deleted++
		}
	}

	if deleted > 0 {
		r.metrics.AddHashtagsDeleted(deleted)
		r.log.Debug().Int("deleted", deleted).Msg("Orphaned hashtags deleted")
	}
	return nil
}
