package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/project-board-api/internal/config"
	"golang.org/x/oauth2"
)

var ErrUnknownProvider = errors.New("unknown oauth2 provider")

// ProviderKakao is the registration ID of Kakao accounts
const ProviderKakao = "kakao"

// providers the server can be configured with, registered or not
var knownProviders = []string{ProviderKakao}

// OAuthProfile is the identity returned by a provider
type OAuthProfile struct {
	Provider   string
	ProviderID string
	Email      string
	Nickname   string
}

// Username is the local login name of an OAuth2 account: "<provider>_<id>"
func (p *OAuthProfile) Username() string {
	return p.Provider + "_" + p.ProviderID
}

// OAuthProvider runs the authorization code flow against one provider
type OAuthProvider interface {
	Name() string
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*OAuthProfile, error)
}

// KakaoProvider implements OAuthProvider for Kakao accounts
type KakaoProvider struct {
	config      *oauth2.Config
	userInfoURL string
	httpClient  *http.Client
}

// NewKakaoProvider builds the provider from its client registration
func NewKakaoProvider(cfg config.OAuthProviderConfig) *KakaoProvider {
	return &KakaoProvider{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"profile_nickname", "account_email"},
			Endpoint: oauth2.Endpoint{
				AuthURL:   cfg.AuthURL,
				TokenURL:  cfg.TokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		userInfoURL: cfg.UserInfoURL,
	}
}

// WithHTTPClient sets the client used for token and user info requests
func (p *KakaoProvider) WithHTTPClient(c *http.Client) *KakaoProvider {
	p.httpClient = c
	return p
}

func (p *KakaoProvider) Name() string {
	return ProviderKakao
}

func (p *KakaoProvider) AuthCodeURL(state string) string {
	return p.config.AuthCodeURL(state)
}

type kakaoUserInfo struct {
	ID           int64 `json:"id"`
	KakaoAccount struct {
		Email   string `json:"email"`
		Profile struct {
			Nickname string `json:"nickname"`
		} `json:"profile"`
	} `json:"kakao_account"`
}

// Exchange trades the authorization code for a token and fetches the profile
func (p *KakaoProvider) Exchange(ctx context.Context, code string) (*OAuthProfile, error) {
	if p.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
	}

	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.config.Client(ctx, token).Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("user info request failed with status %d", resp.StatusCode)
	}

	var info kakaoUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode user info: %w", err)
	}
	if info.ID == 0 {
		return nil, errors.New("user info has no id")
	}

	return &OAuthProfile{
		Provider:   p.Name(),
		ProviderID: strconv.FormatInt(info.ID, 10),
		Email:      info.KakaoAccount.Email,
		Nickname:   info.KakaoAccount.Profile.Nickname,
	}, nil
}

// Providers indexes the configured providers by name
type Providers map[string]OAuthProvider

// NewProviders registers every provider with a client registration
func NewProviders(cfg config.AuthConfig) Providers {
	providers := Providers{}
	if cfg.Kakao.Enabled() {
		p := NewKakaoProvider(cfg.Kakao)
		providers[p.Name()] = p
	}
	return providers
}

// ReservesUsername reports whether userID falls in the "<provider>_" login
// name space of a known or registered provider. Such names belong to OAuth2
// accounts only.
func (p Providers) ReservesUsername(userID string) bool {
	names := append([]string{}, knownProviders...)
	for name := range p {
		names = append(names, name)
	}
	for _, name := range names {
		prefix := name + "_"
		if len(userID) >= len(prefix) && strings.EqualFold(userID[:len(prefix)], prefix) {
			return true
		}
	}
	return false
}

// Get returns the named provider or ErrUnknownProvider
func (p Providers) Get(name string) (OAuthProvider, error) {
	provider, ok := p[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, name)
	}
	return provider, nil
}
