// Package auth handles OAuth login against Google and GitHub and keeps the
// resulting user identity in a cookie session.
package auth

import (
	"context"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
	"golang.org/x/oauth2/google"

	"github.com/baka-byte447/NewsDigest/internal/logger"
)

const (
	ProviderGoogle = "google"
	ProviderGitHub = "github"

	googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"
	githubUserInfoURL = "https://api.github.com/user"
)

// User is the minimal identity kept in the session after a successful
// callback.
type User struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Picture  string `json:"picture"`
	Provider string `json:"provider"`
}

func init() {
	// gorilla/sessions serializes values with gob.
	gob.Register(&User{})
}

type provider struct {
	config      *oauth2.Config
	userInfoURL string
}

// Service holds the configured OAuth providers. Providers without credentials
// are simply absent, and login attempts against them fail with a descriptive
// error.
type Service struct {
	providers map[string]*provider
}

// Credentials carries the per-provider OAuth client settings.
type Credentials struct {
	GoogleClientID     string
	GoogleClientSecret string
	GitHubClientID     string
	GitHubClientSecret string
	// RedirectBase is the externally visible base URL of this service, used
	// to build callback URLs.
	RedirectBase string
}

func NewService(creds Credentials) *Service {
	s := &Service{providers: make(map[string]*provider)}

	if creds.GoogleClientID != "" && creds.GoogleClientSecret != "" {
		s.providers[ProviderGoogle] = &provider{
			config: &oauth2.Config{
				ClientID:     creds.GoogleClientID,
				ClientSecret: creds.GoogleClientSecret,
				RedirectURL:  creds.RedirectBase + "/auth/callback/google",
				Scopes:       []string{"openid", "email", "profile"},
				Endpoint:     google.Endpoint,
			},
			userInfoURL: googleUserInfoURL,
		}
		logger.Info("Google OAuth configured")
	} else {
		logger.Warn("Google OAuth not configured (missing GOOGLE_CLIENT_ID or GOOGLE_CLIENT_SECRET)")
	}

	if creds.GitHubClientID != "" && creds.GitHubClientSecret != "" {
		s.providers[ProviderGitHub] = &provider{
			config: &oauth2.Config{
				ClientID:     creds.GitHubClientID,
				ClientSecret: creds.GitHubClientSecret,
				RedirectURL:  creds.RedirectBase + "/auth/callback/github",
				Scopes:       []string{"user:email"},
				Endpoint:     github.Endpoint,
			},
			userInfoURL: githubUserInfoURL,
		}
		logger.Info("GitHub OAuth configured")
	} else {
		logger.Warn("GitHub OAuth not configured (missing GITHUB_CLIENT_ID or GITHUB_CLIENT_SECRET)")
	}

	return s
}

// Configured reports whether the named provider has credentials.
func (s *Service) Configured(name string) bool {
	_, ok := s.providers[name]
	return ok
}

// LoginURL returns the provider's authorization URL carrying the given state.
func (s *Service) LoginURL(name, state string) (string, error) {
	p, ok := s.providers[name]
	if !ok {
		return "", fmt.Errorf("%s OAuth is not configured", name)
	}
	return p.config.AuthCodeURL(state), nil
}

// Exchange trades the callback code for a token and fetches the normalized
// user profile.
func (s *Service) Exchange(ctx context.Context, name, code string) (*User, error) {
	p, ok := s.providers[name]
	if !ok {
		return nil, fmt.Errorf("%s OAuth is not configured", name)
	}

	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("token exchange failed: %w", err)
	}

	client := p.config.Client(ctx, token)
	resp, err := client.Get(p.userInfoURL)
	if err != nil {
		return nil, fmt.Errorf("fetching user profile: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("profile endpoint returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading profile: %w", err)
	}

	return NormalizeProfile(name, body)
}

// NormalizeProfile maps a provider profile response to the session user
// shape.
func NormalizeProfile(providerName string, body []byte) (*User, error) {
	switch providerName {
	case ProviderGoogle:
		var info struct {
			ID      string `json:"id"`
			Name    string `json:"name"`
			Email   string `json:"email"`
			Picture string `json:"picture"`
		}
		if err := json.Unmarshal(body, &info); err != nil {
			return nil, fmt.Errorf("decoding google profile: %w", err)
		}
		return &User{
			ID:       info.ID,
			Name:     info.Name,
			Email:    info.Email,
			Picture:  info.Picture,
			Provider: ProviderGoogle,
		}, nil

	case ProviderGitHub:
		var info struct {
			ID        int64  `json:"id"`
			Login     string `json:"login"`
			Name      string `json:"name"`
			Email     string `json:"email"`
			AvatarURL string `json:"avatar_url"`
		}
		if err := json.Unmarshal(body, &info); err != nil {
			return nil, fmt.Errorf("decoding github profile: %w", err)
		}
		name := info.Name
		if name == "" {
			name = info.Login
		}
		return &User{
			ID:       strconv.FormatInt(info.ID, 10),
			Name:     name,
			Email:    info.Email,
			Picture:  info.AvatarURL,
			Provider: ProviderGitHub,
		}, nil

	default:
		return nil, fmt.Errorf("invalid provider: %s", providerName)
	}
}
