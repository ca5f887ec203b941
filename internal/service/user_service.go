package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/project-board-api/internal/auth"
	"github.com/project-board-api/internal/metrics"
	"github.com/project-board-api/internal/models"
	"github.com/project-board-api/internal/repository"
	"github.com/project-board-api/internal/validation"
	"github.com/rs/zerolog"
)

const tokenType = "Bearer"

// userService is the concrete implementation of UserService
type userService struct {
	repos       *repository.Repositories
	tokens      *auth.TokenManager
	revocations auth.RevocationStore
	providers   auth.Providers
	validator   *validation.Validator
	metrics     *metrics.Metrics
	log         zerolog.Logger
}

func newUserService(
	repos *repository.Repositories,
	tokens *auth.TokenManager,
	revocations auth.RevocationStore,
	providers auth.Providers,
	v *validation.Validator,
	m *metrics.Metrics,
	log zerolog.Logger,
) *userService {
	return &userService{
		repos:       repos,
		tokens:      tokens,
		revocations: revocations,
		providers:   providers,
		validator:   v,
		metrics:     m,
		log:         log.With().Str("service", "user").Logger(),
	}
}

// SearchUser returns an account by login name
func (s *userService) SearchUser(ctx context.Context, userID string) (*models.UserAccountDto, error) {
	user, err := s.repos.User.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	dto := models.UserAccountDtoFrom(user)
	return &dto, nil
}

// SaveUser registers a local account. The account is its own audit actor.
func (s *userService) SaveUser(ctx context.Context, req *models.SignupRequest) (*models.UserAccountDto, error) {
	if err := validation.Err(s.validator.ValidateSignup(req)); err != nil {
		return nil, err
	}
	if s.providers.ReservesUsername(req.UserID) {
		return nil, validation.Err([]validation.ValidationError{{
			Field:   "userId",
			Message: "userId is reserved for social login accounts",
			Value:   req.UserID,
		}})
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	return s.createUser(ctx, models.NewUserAccount(req.UserID, hash, req.Email, req.Nickname, req.Memo))
}

func (s *userService) createUser(ctx context.Context, user *models.UserAccount) (*models.UserAccountDto, error) {
	if err := s.repos.User.Create(ctx, user); err != nil {
		return nil, err
	}
	s.log.Info().Str("user_id", user.UserID).Msg("User account created")
	dto := models.UserAccountDtoFrom(user)
	return &dto, nil
}

// Login checks local credentials and issues an access token
func (s *userService) Login(ctx context.Context, userID, password string) (*models.TokenResponse, error) {
	user, err := s.repos.User.GetByID(ctx, userID)
	if errors.Is(err, models.ErrNotFound) {
		s.metrics.RecordLogin("password", false)
		return nil, models.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !auth.CheckPassword(user.UserPassword, password) {
		s.metrics.RecordLogin("password", false)
		return nil, models.ErrInvalidCredentials
	}

	s.metrics.RecordLogin("password", true)
	return s.issue(user)
}

// Logout revokes the presented token until it would have expired
func (s *userService) Logout(ctx context.Context, claims *auth.Claims) error {
	if claims == nil || claims.ExpiresAt == nil {
		return models.ErrUnauthorized
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if err := s.revocations.Revoke(ctx, claims.ID, ttl); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	s.log.Info().Str("user_id", claims.UserID()).Msg("User logged out")
	return nil
}

// OAuthAuthorizeURL returns the provider's consent page URL
func (s *userService) OAuthAuthorizeURL(provider, state string) (string, error) {
	p, err := s.providers.Get(provider)
	if err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrNotFound, err)
	}
	return p.AuthCodeURL(state), nil
}

// LoginWithOAuth completes the authorization code flow. The local account
// "<provider>_<id>" is created on first login with an unusable password.
func (s *userService) LoginWithOAuth(ctx context.Context, provider, code string) (*models.TokenResponse, error) {
	p, err := s.providers.Get(provider)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrNotFound, err)
	}

	profile, err := p.Exchange(ctx, code)
	if err != nil {
		s.metrics.RecordLogin(provider, false)
		return nil, fmt.Errorf("%w: %v", models.ErrUnauthorized, err)
	}

	username := profile.Username()
	user, err := s.repos.User.GetByID(ctx, username)
	switch {
	case errors.Is(err, models.ErrNotFound):
		hash, err := auth.RandomPasswordHash()
		if err != nil {
			return nil, err
		}
		user = models.NewUserAccount(username, hash, profile.Email, profile.Nickname, "")
		if _, err := s.createUser(ctx, user); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	}

	s.metrics.RecordLogin(provider, true)
	return s.issue(user)
}

// Authenticate verifies a bearer token and checks it has not been revoked
func (s *userService) Authenticate(ctx context.Context, token string) (*auth.Claims, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrUnauthorized, err)
	}

	revoked, err := s.revocations.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check token revocation: %w", err)
	}
	if revoked {
		return nil, fmt.Errorf("%w: %v", models.ErrUnauthorized, auth.ErrTokenRevoked)
	}
	return claims, nil
}

func (s *userService) issue(user *models.UserAccount) (*models.TokenResponse, error) {
	dto := models.UserAccountDtoFrom(user)
	token, claims, err := s.tokens.Issue(user.UserID, dto.DisplayName())
	if err != nil {
		return nil, err
	}
	return &models.TokenResponse{
		AccessToken: token,
		TokenType:   tokenType,
		ExpiresAt:   claims.ExpiresAt.Time,
		User:        dto,
	}, nil
}
