package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/clinicore/records-api/internal/service/audit"
)

// AuditMeta stashes the caller's IP and user agent in the request
// context so audit entries written downstream carry them.
func AuditMeta() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := audit.WithRequestMeta(c.Request.Context(), audit.RequestMeta{
			IPAddress: c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
		})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
