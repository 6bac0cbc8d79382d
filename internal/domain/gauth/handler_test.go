package gauth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/jestelle/slash-podcast/internal/infrastructure/googleauth"
)

func newTestRouter(auth *fakeAuthenticator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := NewHandler(auth)
	handler.RegisterCallback(r)
	handler.RegisterRoutes(r.Group("/api/v1"))
	return r
}

func TestCallbackSuccess(t *testing.T) {
	auth := &fakeAuthenticator{}
	r := newTestRouter(auth)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/oauth2callback?code=auth-code&state=good-state", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "auth-code", auth.exchangedCode)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, true, body["success"])
}

func TestCallbackProviderError(t *testing.T) {
	auth := &fakeAuthenticator{}
	r := newTestRouter(auth)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/oauth2callback?error=access_denied", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "authorization_denied")
	require.Empty(t, auth.exchangedCode)
}

func TestCallbackMissingCode(t *testing.T) {
	r := newTestRouter(&fakeAuthenticator{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/oauth2callback", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "missing_code")
}

func TestCallbackInvalidState(t *testing.T) {
	auth := &fakeAuthenticator{stateErr: googleauth.ErrInvalidState}
	r := newTestRouter(auth)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/oauth2callback?code=auth-code&state=forged", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Empty(t, auth.exchangedCode)
}

func TestAuthURLMissingCredentials(t *testing.T) {
	auth := &fakeAuthenticator{urlErr: googleauth.ErrCredentialsNotFound}
	r := newTestRouter(auth)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/google/url", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	require.Contains(t, w.Body.String(), "credentials_not_found")
}

func TestAuthURLSuccess(t *testing.T) {
	auth := &fakeAuthenticator{url: "https://accounts.google.com/o/oauth2/auth?state=abc"}
	r := newTestRouter(auth)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/google/url", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "accounts.google.com")
}

func TestStatus(t *testing.T) {
	auth := &fakeAuthenticator{authenticated: true, detail: "authenticated"}
	r := newTestRouter(auth)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/google/status", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, true, body["authenticated"])
	require.Equal(t, "authenticated", body["detail"])
}

func TestManualExchange(t *testing.T) {
	auth := &fakeAuthenticator{}
	r := newTestRouter(auth)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/google/exchange",
		strings.NewReader(`{"code":"pasted-code"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "pasted-code", auth.exchangedCode)
}

func TestManualExchangeRequiresCode(t *testing.T) {
	r := newTestRouter(&fakeAuthenticator{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/google/exchange", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

type fakeAuthenticator struct {
	authenticated bool
	detail        string
	url           string
	urlErr        error
	stateErr      error
	exchangeErr   error
	exchangedCode string
}

func (f *fakeAuthenticator) Status(ctx context.Context) (bool, string) {
	return f.authenticated, f.detail
}

func (f *fakeAuthenticator) AuthURL() (string, error) {
	if f.urlErr != nil {
		return "", f.urlErr
	}
	return f.url, nil
}

func (f *fakeAuthenticator) VerifyState(state string) error {
	return f.stateErr
}

func (f *fakeAuthenticator) Exchange(ctx context.Context, code string) error {
	if f.exchangeErr != nil {
		return f.exchangeErr
	}
	f.exchangedCode = code
	return nil
}
