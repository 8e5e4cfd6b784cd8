package permission

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"coursedesk/internal/domain"
	"coursedesk/internal/pkg/response"
)

// RequirePage aborts with 403 unless the caller's role may open page.
// It expects JWTAuth to have run.
func RequirePage(svc *Service, page string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := domain.UserRole(c.GetString("role"))
		if role == "" {
			response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
			c.Abort()
			return
		}

		ok, err := svc.Allowed(c.Request.Context(), role, page)
		if err != nil {
			_ = c.Error(err)
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to check permissions")
			c.Abort()
			return
		}
		if !ok {
			response.Error(c, http.StatusForbidden, "FORBIDDEN", "Page not allowed for your role")
			c.Abort()
			return
		}
		c.Next()
	}
}
