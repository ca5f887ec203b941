package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/project-board-api/internal/models"
	"github.com/project-board-api/internal/service"
	"github.com/rs/zerolog"
)

// CommentHandler handles comment endpoints
type CommentHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(services *service.Services, log zerolog.Logger) *CommentHandler {
	return &CommentHandler{
		services: services,
		log:      log.With().Str("handler", "comment").Logger(),
	}
}

// GetCommentTree handles GET /v1/articles/:id/comments
func (h *CommentHandler) GetCommentTree(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	tree, err := h.services.Comment.GetCommentTree(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"articleComments": tree})
}

// CreateComment handles POST /v1/comments. A comment whose article, author
// or parent no longer exists is dropped and answered with 204.
func (h *CommentHandler) CreateComment(c *gin.Context) {
	var req models.CommentRequest
	if !bindJSON(c, &req) {
		return
	}

	comment, err := h.services.Comment.SaveComment(c.Request.Context(), currentUser(c), &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if comment == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

// UpdateComment handles PUT /v1/comments/:id
func (h *CommentHandler) UpdateComment(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req models.CommentUpdateRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.services.Comment.UpdateComment(c.Request.Context(), currentUser(c), id, &req); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DeleteComment handles DELETE /v1/comments/:id
func (h *CommentHandler) DeleteComment(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.services.Comment.DeleteComment(c.Request.Context(), currentUser(c), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
