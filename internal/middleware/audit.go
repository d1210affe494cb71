package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/faculty-portal-api/internal/service"
)

// RequestMeta copies the client address and user agent onto the request context for audit entries.
func RequestMeta() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := service.WithRequestMeta(c.Request.Context(), service.RequestMeta{
			IP:        c.ClientIP(),
			UserAgent: c.GetHeader("User-Agent"),
		})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
