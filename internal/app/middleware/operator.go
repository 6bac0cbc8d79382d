package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jestelle/slash-podcast/pkg/response"
)

// OperatorOnly gates debug endpoints behind a static operator token. An
// empty configured token disables the endpoints entirely.
func OperatorOnly(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token == "" {
			response.Forbidden(c, "debug endpoints disabled")
			c.Abort()
			return
		}
		supplied := extractBearer(c.GetHeader("Authorization"))
		if subtle.ConstantTimeCompare([]byte(supplied), []byte(token)) != 1 {
			response.Unauthorized(c, "invalid operator token")
			c.Abort()
			return
		}
		c.Next()
	}
}

func extractBearer(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
