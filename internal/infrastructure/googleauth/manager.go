package googleauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/jestelle/slash-podcast/internal/config"
)

// Deleting token.json forces a fresh consent flow when this changes.
const docsReadonlyScope = "https://www.googleapis.com/auth/documents.readonly"

// Sentinel errors for deterministic HTTP mapping.
var (
	ErrCredentialsNotFound = errors.New("credentials file not found")
	ErrNotAuthenticated    = errors.New("google authentication required")
	ErrInvalidState        = errors.New("invalid oauth state")
)

// Manager owns the OAuth client credentials and the cached token file.
type Manager struct {
	cfg    config.GoogleConfig
	logger *zap.Logger

	mu sync.Mutex
}

// NewManager builds Manager.
func NewManager(cfg config.GoogleConfig, logger *zap.Logger) *Manager {
	return &Manager{cfg: cfg, logger: logger}
}

// oauthConfig loads credentials.json into an oauth2 config. The file is
// read on every call so the operator can provision it without a restart.
func (m *Manager) oauthConfig() (*oauth2.Config, error) {
	raw, err := os.ReadFile(m.cfg.CredentialsPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrCredentialsNotFound, m.cfg.CredentialsPath)
		}
		return nil, fmt.Errorf("read credentials: %w", err)
	}
	conf, err := google.ConfigFromJSON(raw, docsReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}
	conf.RedirectURL = m.cfg.RedirectURL
	return conf, nil
}

// AuthURL returns the Google consent URL with a signed state parameter.
func (m *Manager) AuthURL() (string, error) {
	conf, err := m.oauthConfig()
	if err != nil {
		return "", err
	}
	state, err := m.issueState()
	if err != nil {
		return "", err
	}
	url := conf.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("include_granted_scopes", "true"),
	)
	return url, nil
}

// Exchange trades an authorization code for a token and persists it.
func (m *Manager) Exchange(ctx context.Context, code string) error {
	conf, err := m.oauthConfig()
	if err != nil {
		return err
	}
	token, err := conf.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("exchange authorization code: %w", err)
	}
	if err := m.saveToken(token); err != nil {
		return err
	}
	if m.logger != nil {
		m.logger.Info("google docs authentication complete",
			zap.String("token_path", m.cfg.TokenPath))
	}
	return nil
}

// TokenSource returns a refreshing source backed by token.json. Refreshed
// tokens are written back so interactive login is not repeated.
func (m *Manager) TokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	conf, err := m.oauthConfig()
	if err != nil {
		return nil, err
	}
	token, err := m.loadToken()
	if err != nil {
		return nil, err
	}
	if !token.Valid() && token.RefreshToken == "" {
		return nil, ErrNotAuthenticated
	}
	saving := &savingSource{manager: m, src: conf.TokenSource(ctx, token), last: token.AccessToken}
	return oauth2.ReuseTokenSource(token, saving), nil
}

// Status reports whether a usable token is on disk.
func (m *Manager) Status(ctx context.Context) (bool, string) {
	if _, err := m.oauthConfig(); err != nil {
		return false, err.Error()
	}
	token, err := m.loadToken()
	if err != nil {
		return false, "not authenticated: no cached token"
	}
	if token.Valid() {
		return true, "authenticated"
	}
	if token.RefreshToken != "" {
		return true, "authenticated (token will refresh)"
	}
	return false, "token expired, re-authentication required"
}

func (m *Manager) loadToken() (*oauth2.Token, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, err := os.ReadFile(m.cfg.TokenPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotAuthenticated
		}
		return nil, fmt.Errorf("read token: %w", err)
	}
	var token oauth2.Token
	if err := json.Unmarshal(raw, &token); err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	return &token, nil
}

func (m *Manager) saveToken(token *oauth2.Token) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("encode token: %w", err)
	}
	if err := os.WriteFile(m.cfg.TokenPath, raw, 0o600); err != nil {
		return fmt.Errorf("write token: %w", err)
	}
	return nil
}

// savingSource persists tokens back to disk whenever a refresh happened.
type savingSource struct {
	manager *Manager
	src     oauth2.TokenSource
	mu      sync.Mutex
	last    string
}

func (s *savingSource) Token() (*oauth2.Token, error) {
	token, err := s.src.Token()
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	changed := token.AccessToken != s.last
	if changed {
		s.last = token.AccessToken
	}
	s.mu.Unlock()
	if changed {
		if err := s.manager.saveToken(token); err != nil && s.manager.logger != nil {
			s.manager.logger.Warn("persisting refreshed token failed", zap.Error(err))
		}
	}
	return token, nil
}
