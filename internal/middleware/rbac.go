package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/faculty-portal-api/internal/models"
	appErrors "github.com/noah-isme/faculty-portal-api/pkg/errors"
	"github.com/noah-isme/faculty-portal-api/pkg/response"
)

// Capability is a role predicate such as models.Role.CanManageAccounts.
type Capability func(models.Role) bool

// RequireCapability lets the request through when the principal's role passes check.
func RequireCapability(check Capability, message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := Principal(c)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if !check(principal.Role) {
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden, message))
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireSelfOr admits the owner of the :param account or a principal passing check.
func RequireSelfOr(param string, check Capability, message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := Principal(c)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if target := c.Param(param); target != "" && target == principal.AccountID {
			c.Next()
			return
		}
		if !check(principal.Role) {
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden, message))
			c.Abort()
			return
		}
		c.Next()
	}
}

// AdminOnly guards the /admin routes.
func AdminOnly() gin.HandlerFunc {
	return RequireCapability(models.Role.CanManageAccounts, "not authorized as an admin")
}
