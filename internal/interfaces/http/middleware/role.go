package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/interfaces/http/dto"
)

// RequireRole aborts requests whose authenticated role is not in the
// allowed set. It must run after the JWT middleware.
func RequireRole(roles ...identity.Role) gin.HandlerFunc {
	allowed := make(map[identity.Role]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(c *gin.Context) {
		role := identity.Role(GetRole(c))
		if role == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				dto.NewErrorResponseWithRequestID(dto.ErrCodeUnauthorized, "authentication required", GetRequestID(c)))
			return
		}
		if _, ok := allowed[role]; !ok {
			c.AbortWithStatusJSON(http.StatusForbidden,
				dto.NewErrorResponseWithRequestID(dto.ErrCodeForbidden, "insufficient permissions", GetRequestID(c)))
			return
		}
		c.Next()
	}
}

// RequireAdmin restricts a route to admins
func RequireAdmin() gin.HandlerFunc {
	return RequireRole(identity.RoleAdmin)
}
