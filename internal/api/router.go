package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/project-board-api/internal/config"
	"github.com/project-board-api/internal/metrics"
	"github.com/project-board-api/internal/service"
	"github.com/project-board-api/pkg/logger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// statsTimeout bounds the row counts served by /stats
const statsTimeout = 5 * time.Second

// NewRouter creates and configures the Gin router. m may be nil.
func NewRouter(services *service.Services, cfg *config.Config, log zerolog.Logger, m *metrics.Metrics) *gin.Engine {
	router := gin.New()

	// Middleware
	router.Use(recoveryMiddleware(log))
	router.Use(loggingMiddleware(log))
	router.Use(metricsMiddleware(m))
	router.Use(corsMiddleware())
	router.Use(bodyLimitMiddleware(cfg.Server.MaxBodySize))

	// Handlers
	authHandler := NewAuthHandler(services, log)
	articleHandler := NewArticleHandler(services, log)
	commentHandler := NewCommentHandler(services, log)
	exportHandler := NewExportHandler(services, log)

	requireAuth := authMiddleware(services.User)

	// Health check
	router.GET("/health", healthCheck)
	router.GET("/stats", statsHandler(services))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1
	v1 := router.Group("/v1")
	{
		// Auth endpoints
		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/signup", authHandler.Signup)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/logout", requireAuth, authHandler.Logout)
			authGroup.GET("/oauth2/:provider", authHandler.OAuthRedirect)
			authGroup.GET("/oauth2/:provider/callback", authHandler.OAuthCallback)
		}

		// Article endpoints
		articles := v1.Group("/articles")
		{
			articles.GET("", articleHandler.ListArticles)
			articles.GET("/search-hashtag", articleHandler.SearchHashtag)
			articles.GET("/:id", articleHandler.GetArticle)
			articles.GET("/:id/comments", commentHandler.GetCommentTree)
			articles.POST("", requireAuth, articleHandler.CreateArticle)
			articles.PUT("/:id", requireAuth, articleHandler.UpdateArticle)
			articles.DELETE("/:id", requireAuth, articleHandler.DeleteArticle)
		}

		// Comment endpoints
		comments := v1.Group("/comments", requireAuth)
		{
			comments.POST("", commentHandler.CreateComment)
			comments.PUT("/:id", commentHandler.UpdateComment)
			comments.DELETE("/:id", commentHandler.DeleteComment)
		}

		v1.GET("/hashtags", articleHandler.ListHashtags)

		// Export endpoints
		v1.GET("/exports", requireAuth, exportHandler.StreamExport)
	}

	return router
}

// healthCheck returns the health status
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"service":   logger.ServiceName,
	})
}

// statsHandler returns row counts per resource
func statsHandler(services *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := contextWithTimeout(c, statsTimeout)
		defer cancel()

		counts := gin.H{}
		for _, resource := range exportResources {
			n, err := services.Export.GetCount(ctx, resource)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to count " + resource})
				return
			}
			counts[resource] = n
		}

		c.JSON(http.StatusOK, gin.H{
			"database":  counts,
			"timestamp": time.Now().Format(time.RFC3339),
		})
	}
}

// contextWithTimeout creates a context with timeout for handlers
func contextWithTimeout(c *gin.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), timeout)
}
