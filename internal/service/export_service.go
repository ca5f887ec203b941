package service

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/project-board-api/internal/models"
	"github.com/project-board-api/internal/repository"
	"github.com/rs/zerolog"
)

// defaultFlushEvery is how many records are written between flushes when
// streaming and no batch size is configured
const defaultFlushEvery = 100

// exportService is the concrete implementation of ExportService
type exportService struct {
	repos      *repository.Repositories
	flushEvery int
	log        zerolog.Logger
}

// newExportService creates a new ExportService
func newExportService(repos *repository.Repositories, batchSize int, log zerolog.Logger) *exportService {
	if batchSize <= 0 {
		batchSize = defaultFlushEvery
	}
	return &exportService{
		repos:      repos,
		flushEvery: batchSize,
		log:        log.With().Str("service", "export").Logger(),
	}
}

// streamFunc feeds every record of a resource to emit
type streamFunc[T any] func(ctx context.Context, emit func(T) error) error

// StreamUsers streams users in the specified format
func (s *exportService) StreamUsers(ctx context.Context, w http.ResponseWriter, format string) error {
	s.log.Info().Str("format", format).Msg("Starting users export")

	stream := func(ctx context.Context, emit func(models.UserAccountDto) error) error {
		return s.repos.User.StreamAll(ctx, func(u *models.UserAccount) error {
			return emit(models.UserAccountDtoFrom(u).WithoutEmail())
		})
	}

	switch format {
	case "ndjson":
		return streamNDJSON(ctx, s.log, w, "users", s.flushEvery, stream)
	case "json":
		return streamJSON(ctx, w, "users", stream)
	case "csv":
		return s.streamUsersCSV(ctx, w)
	default:
		return fmt.Errorf("%w: unsupported format: %s", models.ErrInvalidInput, format)
	}
}

// StreamArticles streams articles in the specified format
func (s *exportService) StreamArticles(ctx context.Context, w http.ResponseWriter, format string) error {
	s.log.Info().Str("format", format).Msg("Starting articles export")

	stream := func(ctx context.Context, emit func(models.ArticleDto) error) error {
		return s.repos.Article.StreamAll(ctx, func(a *models.Article) error {
			dto := models.ArticleDtoFrom(a)
			dto.User = dto.User.WithoutEmail()
			return emit(dto)
		})
	}
	return streamFormat(ctx, s.log, w, "articles", format, s.flushEvery, stream)
}

// StreamComments streams comments in the specified format
func (s *exportService) StreamComments(ctx context.Context, w http.ResponseWriter, format string) error {
	s.log.Info().Str("format", format).Msg("Starting comments export")

	stream := func(ctx context.Context, emit func(models.CommentDto) error) error {
		return s.repos.Comment.StreamAll(ctx, func(c *models.Comment) error {
			dto := models.CommentDtoFrom(c)
			dto.User = dto.User.WithoutEmail()
			return emit(dto)
		})
	}
	return streamFormat(ctx, s.log, w, "comments", format, s.flushEvery, stream)
}

// StreamHashtags streams hashtags in the specified format
func (s *exportService) StreamHashtags(ctx context.Context, w http.ResponseWriter, format string) error {
	s.log.Info().Str("format", format).Msg("Starting hashtags export")

	stream := func(ctx context.Context, emit func(*models.Hashtag) error) error {
		return s.repos.Hashtag.StreamAll(ctx, emit)
	}
	return streamFormat(ctx, s.log, w, "hashtags", format, s.flushEvery, stream)
}

func streamFormat[T any](ctx context.Context, log zerolog.Logger, w http.ResponseWriter, resource, format string, flushEvery int, stream streamFunc[T]) error {
	switch format {
	case "ndjson":
		return streamNDJSON(ctx, log, w, resource, flushEvery, stream)
	case "json":
		return streamJSON(ctx, w, resource, stream)
	default:
		return fmt.Errorf("%w: unsupported format: %s", models.ErrInvalidInput, format)
	}
}

func streamNDJSON[T any](ctx context.Context, log zerolog.Logger, w http.ResponseWriter, resource string, flushEvery int, stream streamFunc[T]) error {
	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Content-Disposition", "attachment; filename="+resource+".ndjson")

	flusher, _ := w.(http.Flusher)
	enc := json.NewEncoder(w)
	count := 0

	err := stream(ctx, func(record T) error {
		if err := enc.Encode(record); err != nil {
			return err
		}
		count++

		if count%flushEvery == 0 && flusher != nil {
			flusher.Flush()
		}
		return nil
	})

	log.Info().Str("resource", resource).Int("count", count).Msg("Export completed")
	return err
}

func streamJSON[T any](ctx context.Context, w http.ResponseWriter, resource string, stream streamFunc[T]) error {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", "attachment; filename="+resource+".json")

	w.Write([]byte("["))
	first := true

	err := stream(ctx, func(record T) error {
		if !first {
			w.Write([]byte(","))
		}
		first = false

		data, err := json.Marshal(record)
		if err != nil {
			return err
		}
		w.Write(data)
		return nil
	})

	w.Write([]byte("]"))
	return err
}

func (s *exportService) streamUsersCSV(ctx context.Context, w http.ResponseWriter) error {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=users.csv")

	writer := csv.NewWriter(w)
	defer writer.Flush()

	// Write header
	writer.Write([]string{"user_id", "nickname", "memo", "created_at"})

	return s.repos.User.StreamAll(ctx, func(user *models.UserAccount) error {
		row := models.UserCSV{
			UserID:    user.UserID,
			Nickname:  user.Nickname,
			Memo:      user.Memo,
			CreatedAt: user.CreatedAt.UTC().Format(time.RFC3339),
		}
		return writer.Write([]string{row.UserID, row.Nickname, row.Memo, row.CreatedAt})
	})
}

// GetCount returns count for a resource
func (s *exportService) GetCount(ctx context.Context, resource string) (int, error) {
	switch resource {
	case "users":
		return s.repos.User.Count(ctx)
	case "articles":
		return s.repos.Article.Count(ctx)
	case "comments":
		return s.repos.Comment.Count(ctx)
	case "hashtags":
		return s.repos.Hashtag.Count(ctx)
	default:
		return 0, fmt.Errorf("%w: unknown resource: %s", models.ErrInvalidInput, resource)
	}
}
