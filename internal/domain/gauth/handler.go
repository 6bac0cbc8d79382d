package gauth

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jestelle/slash-podcast/internal/infrastructure/googleauth"
	"github.com/jestelle/slash-podcast/pkg/response"
)

// Authenticator abstracts the Google OAuth manager.
type Authenticator interface {
	Status(ctx context.Context) (bool, string)
	AuthURL() (string, error)
	VerifyState(state string) error
	Exchange(ctx context.Context, code string) error
}

// Handler exposes the Google Docs authorization flow over HTTP.
type Handler struct {
	auth Authenticator
}

// NewHandler returns a Handler.
func NewHandler(auth Authenticator) *Handler {
	return &Handler{auth: auth}
}

// RegisterRoutes mounts the auth flow under the API group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	google := rg.Group("/auth/google")
	{
		google.GET("/status", h.status)
		google.GET("/url", h.authURL)
		google.POST("/exchange", h.exchange)
	}
}

// RegisterCallback mounts the provider redirect endpoint. Its path is part
// of the registered OAuth client configuration and must stay stable.
func (h *Handler) RegisterCallback(r *gin.Engine) {
	r.GET("/api/oauth2callback", h.callback)
}

func (h *Handler) status(c *gin.Context) {
	authenticated, detail := h.auth.Status(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"authenticated": authenticated,
		"detail":        detail,
	})
}

func (h *Handler) authURL(c *gin.Context) {
	url, err := h.auth.AuthURL()
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"auth_url": url})
}

func (h *Handler) callback(c *gin.Context) {
	if errParam := c.Query("error"); errParam != "" {
		response.BadRequest(c, "authorization_denied", errParam)
		return
	}
	code := c.Query("code")
	if code == "" {
		response.BadRequest(c, "missing_code", "no authorization code received")
		return
	}
	if err := h.auth.VerifyState(c.Query("state")); err != nil {
		h.handleError(c, err)
		return
	}
	if err := h.auth.Exchange(c.Request.Context(), code); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Successfully authenticated with Google Docs. You can close this window and return to the application.",
	})
}

// exchange accepts a manually pasted authorization code, for setups where
// the browser cannot reach the callback (desktop-style flows).
func (h *Handler) exchange(c *gin.Context) {
	var body struct {
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.ValidationError(c, err)
		return
	}
	if err := h.auth.Exchange(c.Request.Context(), body.Code); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, googleauth.ErrCredentialsNotFound):
		response.ServiceUnavailable(c, "credentials_not_found",
			"credentials file not found; download it from the Google Cloud Console")
	case errors.Is(err, googleauth.ErrInvalidState):
		response.Unauthorized(c, "invalid oauth state")
	case errors.Is(err, googleauth.ErrNotAuthenticated):
		response.Unauthorized(c, "google authentication required")
	default:
		response.InternalServerError(c, err)
	}
}
