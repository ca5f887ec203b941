package api

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/project-board-api/internal/service"
	"github.com/rs/zerolog"
)

var (
	exportResources = []string{"users", "articles", "comments", "hashtags"}
	exportFormats   = []string{"ndjson", "json", "csv"}
)

// ExportHandler handles export endpoints
type ExportHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewExportHandler creates a new ExportHandler
func NewExportHandler(services *service.Services, log zerolog.Logger) *ExportHandler {
	return &ExportHandler{
		services: services,
		log:      log.With().Str("handler", "export").Logger(),
	}
}

// StreamExport handles GET /v1/exports?resource=...&format=...
// Streams the export directly to the response
func (h *ExportHandler) StreamExport(c *gin.Context) {
	ctx := c.Request.Context()

	resource := c.Query("resource")
	if resource == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "resource parameter is required (users, articles, comments, hashtags)"})
		return
	}
	if !slices.Contains(exportResources, resource) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "resource must be one of: users, articles, comments, hashtags"})
		return
	}

	format := c.Query("format")
	if format == "" {
		format = "ndjson" // Default to NDJSON for streaming
	}
	if !slices.Contains(exportFormats, format) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "format must be one of: ndjson, json, csv"})
		return
	}

	// CSV only supported for users
	if format == "csv" && resource != "users" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "CSV format only supported for users export"})
		return
	}

	h.log.Info().
		Str("resource", resource).
		Str("format", format).
		Str("user_id", currentUser(c)).
		Msg("Starting streaming export")

	var err error
	switch resource {
	case "users":
		err = h.services.Export.StreamUsers(ctx, c.Writer, format)
	case "articles":
		err = h.services.Export.StreamArticles(ctx, c.Writer, format)
	case "comments":
		err = h.services.Export.StreamComments(ctx, c.Writer, format)
	case "hashtags":
		err = h.services.Export.StreamHashtags(ctx, c.Writer, format)
	}

	if err != nil {
		h.log.Error().Err(err).Str("resource", resource).Msg("Export failed")
		// Can't return error JSON after streaming has started
		return
	}
}
