package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/project-board-api/internal/models"
	"github.com/project-board-api/internal/service"
	"github.com/rs/zerolog"
)

const (
	oauthStateCookie = "oauth_state"
	oauthStateMaxAge = 300 // seconds
)

// AuthHandler handles signup, login and OAuth2 endpoints
type AuthHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(services *service.Services, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		services: services,
		log:      log.With().Str("handler", "auth").Logger(),
	}
}

// Signup handles POST /v1/auth/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var req models.SignupRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.services.User.SaveUser(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

// Login handles POST /v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	token, err := h.services.User.Login(c.Request.Context(), req.UserID, req.Password)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, token)
}

// Logout handles POST /v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.services.User.Logout(c.Request.Context(), currentClaims(c)); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// OAuthRedirect handles GET /v1/auth/oauth2/:provider by sending the browser
// to the provider's consent page
func (h *AuthHandler) OAuthRedirect(c *gin.Context) {
	state := uuid.NewString()

	url, err := h.services.User.OAuthAuthorizeURL(c.Param("provider"), state)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(oauthStateCookie, state, oauthStateMaxAge, "/v1/auth/oauth2", "", c.Request.TLS != nil, true)
	c.Redirect(http.StatusFound, url)
}

// OAuthCallback handles GET /v1/auth/oauth2/:provider/callback
func (h *AuthHandler) OAuthCallback(c *gin.Context) {
	provider := c.Param("provider")

	if errParam := c.Query("error"); errParam != "" {
		h.log.Warn().Str("provider", provider).Str("error", errParam).Msg("OAuth2 authorization denied")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization denied"})
		return
	}

	state, err := c.Cookie(oauthStateCookie)
	if err != nil || state == "" || state != c.Query("state") {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid oauth state"})
		return
	}
	c.SetCookie(oauthStateCookie, "", -1, "/v1/auth/oauth2", "", c.Request.TLS != nil, true)

	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "code parameter is required"})
		return
	}

	token, err := h.services.User.LoginWithOAuth(c.Request.Context(), provider, code)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, token)
}
