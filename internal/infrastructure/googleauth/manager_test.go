package googleauth

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/jestelle/slash-podcast/internal/config"
)

const testCredentials = `{
  "web": {
    "client_id": "client-id.apps.googleusercontent.com",
    "client_secret": "client-secret",
    "auth_uri": "https://accounts.google.com/o/oauth2/auth",
    "token_uri": "https://oauth2.googleapis.com/token",
    "redirect_uris": ["http://localhost:7860/api/oauth2callback"]
  }
}`

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	dir := t.TempDir()
	credentialsPath := filepath.Join(dir, "credentials.json")
	require.NoError(t, os.WriteFile(credentialsPath, []byte(testCredentials), 0o600))

	return NewManager(config.GoogleConfig{
		CredentialsPath: credentialsPath,
		TokenPath:       filepath.Join(dir, "token.json"),
		RedirectURL:     "http://localhost:7860/api/oauth2callback",
		StateSecret:     "test-state-secret",
		StateTTL:        10 * time.Minute,
	}, nil)
}

func TestAuthURLMissingCredentials(t *testing.T) {
	manager := NewManager(config.GoogleConfig{
		CredentialsPath: filepath.Join(t.TempDir(), "credentials.json"),
		StateSecret:     "secret",
		StateTTL:        time.Minute,
	}, nil)

	_, err := manager.AuthURL()

	require.Error(t, err)
	require.True(t, errors.Is(err, ErrCredentialsNotFound))
}

func TestAuthURLCarriesRedirectAndScope(t *testing.T) {
	manager := newTestManager(t)

	url, err := manager.AuthURL()

	require.NoError(t, err)
	require.Contains(t, url, "accounts.google.com")
	require.Contains(t, url, "redirect_uri=http%3A%2F%2Flocalhost%3A7860%2Fapi%2Foauth2callback")
	require.Contains(t, url, "documents.readonly")
	require.Contains(t, url, "access_type=offline")
}

func TestStateRoundTrip(t *testing.T) {
	manager := newTestManager(t)

	state, err := manager.issueState()
	require.NoError(t, err)

	require.NoError(t, manager.VerifyState(state))
}

func TestVerifyStateRejectsForgeries(t *testing.T) {
	manager := newTestManager(t)

	state, err := manager.issueState()
	require.NoError(t, err)

	other := NewManager(config.GoogleConfig{StateSecret: "other-secret", StateTTL: time.Minute}, nil)
	require.True(t, errors.Is(other.VerifyState(state), ErrInvalidState))
	require.True(t, errors.Is(manager.VerifyState(""), ErrInvalidState))
	require.True(t, errors.Is(manager.VerifyState("not.a.token"), ErrInvalidState))
}

func TestVerifyStateRejectsExpired(t *testing.T) {
	manager := newTestManager(t)
	manager.cfg.StateTTL = -time.Minute

	state, err := manager.issueState()
	require.NoError(t, err)

	require.True(t, errors.Is(manager.VerifyState(state), ErrInvalidState))
}

func TestTokenSourceWithoutToken(t *testing.T) {
	manager := newTestManager(t)

	_, err := manager.TokenSource(context.Background())

	require.Error(t, err)
	require.True(t, errors.Is(err, ErrNotAuthenticated))
}

func TestTokenSourceServesCachedToken(t *testing.T) {
	manager := newTestManager(t)
	cached := &oauth2.Token{
		AccessToken:  "cached-access",
		RefreshToken: "cached-refresh",
		Expiry:       time.Now().Add(time.Hour),
	}
	require.NoError(t, manager.saveToken(cached))

	source, err := manager.TokenSource(context.Background())
	require.NoError(t, err)

	token, err := source.Token()
	require.NoError(t, err)
	require.Equal(t, "cached-access", token.AccessToken)
}

func TestTokenSourceRejectsExpiredWithoutRefresh(t *testing.T) {
	manager := newTestManager(t)
	expired := &oauth2.Token{
		AccessToken: "stale",
		Expiry:      time.Now().Add(-time.Hour),
	}
	require.NoError(t, manager.saveToken(expired))

	_, err := manager.TokenSource(context.Background())

	require.Error(t, err)
	require.True(t, errors.Is(err, ErrNotAuthenticated))
}

func TestTokenPersistenceRoundTrip(t *testing.T) {
	manager := newTestManager(t)
	token := &oauth2.Token{
		AccessToken:  "access",
		RefreshToken: "refresh",
		TokenType:    "Bearer",
		Expiry:       time.Now().Add(time.Hour).UTC(),
	}

	require.NoError(t, manager.saveToken(token))

	info, err := os.Stat(manager.cfg.TokenPath)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := manager.loadToken()
	require.NoError(t, err)
	require.Equal(t, token.AccessToken, loaded.AccessToken)
	require.Equal(t, token.RefreshToken, loaded.RefreshToken)
}

func TestStatus(t *testing.T) {
	manager := newTestManager(t)

	ok, detail := manager.Status(context.Background())
	require.False(t, ok)
	require.Contains(t, detail, "not authenticated")

	raw, err := json.Marshal(&oauth2.Token{
		AccessToken: "access",
		Expiry:      time.Now().Add(time.Hour),
	})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(manager.cfg.TokenPath, raw, 0o600))

	ok, detail = manager.Status(context.Background())
	require.True(t, ok)
	require.Equal(t, "authenticated", detail)
}
