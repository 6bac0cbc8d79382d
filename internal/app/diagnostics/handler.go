package diagnostics

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Check reports one dependency's readiness.
type Check func(ctx context.Context) (string, bool)

// Handler exposes health + debug endpoints.
type Handler struct {
	buffer  *LogBuffer
	version string
	checks  map[string]Check
}

// NewHandler returns handler.
func NewHandler(buffer *LogBuffer, version string) *Handler {
	return &Handler{buffer: buffer, version: version, checks: make(map[string]Check)}
}

// AddCheck registers a named readiness probe reported by /health.
func (h *Handler) AddCheck(name string, check Check) {
	h.checks[name] = check
}

// RegisterPublic attaches non-auth endpoints.
func (h *Handler) RegisterPublic(rg *gin.RouterGroup) {
	rg.GET("/health", h.health)
}

// RegisterProtected attaches debug endpoints requiring the operator token.
func (h *Handler) RegisterProtected(rg *gin.RouterGroup) {
	rg.GET("/debug/logs", h.logs)
}

func (h *Handler) health(c *gin.Context) {
	ctx := c.Request.Context()
	status := "ok"
	detail := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		msg, ok := check(ctx)
		detail[name] = msg
		if !ok {
			status = "degraded"
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  status,
		"version": h.version,
		"checks":  detail,
	})
}

func (h *Handler) logs(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"logs": h.buffer.Snapshot()})
}
