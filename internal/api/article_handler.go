package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/project-board-api/internal/models"
	"github.com/project-board-api/internal/service"
	"github.com/rs/zerolog"
)

var searchTypes = []models.SearchType{
	models.SearchTypeTitle,
	models.SearchTypeContent,
	models.SearchTypeID,
	models.SearchTypeNickname,
	models.SearchTypeHashtag,
}

// ArticleHandler handles article and hashtag endpoints
type ArticleHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewArticleHandler creates a new ArticleHandler
func NewArticleHandler(services *service.Services, log zerolog.Logger) *ArticleHandler {
	return &ArticleHandler{
		services: services,
		log:      log.With().Str("handler", "article").Logger(),
	}
}

// ListArticles handles GET /v1/articles?searchType=...&searchValue=...&page=...
func (h *ArticleHandler) ListArticles(c *gin.Context) {
	ctx := c.Request.Context()

	p, ok := parsePageable(c)
	if !ok {
		return
	}
	searchType, err := models.ParseSearchType(c.Query("searchType"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	page, err := h.services.Article.SearchArticles(ctx, searchType, c.Query("searchValue"), p)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"articles":             page,
		"paginationBarNumbers": h.services.Pagination.GetPaginationBarNumbers(page.Number, page.TotalPages),
		"searchTypes":          searchTypes,
	})
}

// SearchHashtag handles GET /v1/articles/search-hashtag?searchValue=...
func (h *ArticleHandler) SearchHashtag(c *gin.Context) {
	ctx := c.Request.Context()

	p, ok := parsePageable(c)
	if !ok {
		return
	}

	page, err := h.services.Article.SearchArticlesViaHashtag(ctx, c.Query("searchValue"), p)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	hashtags, err := h.services.Article.GetHashtags(ctx)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"articles":             page,
		"hashtags":             hashtags,
		"paginationBarNumbers": h.services.Pagination.GetPaginationBarNumbers(page.Number, page.TotalPages),
		"searchType":           models.SearchTypeHashtag,
	})
}

// GetArticle handles GET /v1/articles/:id
func (h *ArticleHandler) GetArticle(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	article, err := h.services.Article.GetArticleWithComments(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	count, err := h.services.Article.GetArticleCount(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"article":    article,
		"totalCount": count,
	})
}

// CreateArticle handles POST /v1/articles
func (h *ArticleHandler) CreateArticle(c *gin.Context) {
	var req models.ArticleRequest
	if !bindJSON(c, &req) {
		return
	}

	article, err := h.services.Article.SaveArticle(c.Request.Context(), currentUser(c), &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, article)
}

// UpdateArticle handles PUT /v1/articles/:id
func (h *ArticleHandler) UpdateArticle(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req models.ArticleUpdateRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.services.Article.UpdateArticle(c.Request.Context(), currentUser(c), id, &req); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DeleteArticle handles DELETE /v1/articles/:id
func (h *ArticleHandler) DeleteArticle(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.services.Article.DeleteArticle(c.Request.Context(), currentUser(c), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListHashtags handles GET /v1/hashtags
func (h *ArticleHandler) ListHashtags(c *gin.Context) {
	names, err := h.services.Article.GetHashtags(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"hashtags": names})
}

// parsePageable reads page, size, sort and direction, answering 400 on
// malformed numbers
func parsePageable(c *gin.Context) (models.Pageable, bool) {
	p := models.DefaultPageable()

	if v := c.Query("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "page must be a number"})
			return p, false
		}
		p.Page = n
	}
	if v := c.Query("size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "size must be a number"})
			return p, false
		}
		p.Size = n
	}
	if v := c.Query("sort"); v != "" {
		p.Sort = v
	}
	p.Ascending = strings.EqualFold(c.Query("direction"), "asc")

	return p.Normalize(), true
}

// parseID reads the :id path parameter, answering 400 when it is not a
// positive integer
func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id must be a positive integer"})
		return 0, false
	}
	return id, true
}
