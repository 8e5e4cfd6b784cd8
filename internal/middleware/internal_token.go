package middleware

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"coursedesk/internal/pkg/response"
)

// InternalTokenAuth guards ops endpoints such as /metrics with a static
// bearer token. An empty expected token disables the check.
func InternalTokenAuth(expected string, allowedIPs []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !ipAllowed(c.ClientIP(), allowedIPs) {
			logAuthFailure(c, http.StatusForbidden, "ip_not_allowed")
			response.Error(c, http.StatusForbidden, "FORBIDDEN", "IP not allowed")
			c.Abort()
			return
		}
		if expected == "" {
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			logAuthFailure(c, http.StatusUnauthorized, "missing_auth")
			response.Error(c, http.StatusUnauthorized, "AUTH_HEADER_MISSING", "Authorization header is required")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			logAuthFailure(c, http.StatusUnauthorized, "invalid_auth_format")
			response.Error(c, http.StatusUnauthorized, "INVALID_AUTH_FORMAT", "Authorization header must be 'Bearer <token>'")
			c.Abort()
			return
		}

		if subtle.ConstantTimeCompare([]byte(parts[1]), []byte(expected)) != 1 {
			logAuthFailure(c, http.StatusForbidden, "invalid_token")
			response.Error(c, http.StatusForbidden, "INVALID_TOKEN", "Invalid internal token")
			c.Abort()
			return
		}

		c.Next()
	}
}

func ipAllowed(clientIP string, allowed []string) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, ip := range allowed {
		if strings.TrimSpace(ip) == clientIP {
			return true
		}
	}
	return false
}

func logAuthFailure(c *gin.Context, status int, reason string) {
	slog.Warn("internal_auth_failed", "status", status, "path", c.Request.URL.Path, "request_id", requestID(c), "reason", reason)
}
