package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/clinicore/records-api/internal/handler"
	"github.com/clinicore/records-api/internal/policy"
)

// Authorize gates a route on the role policy table. Runs after
// Authenticate; a missing actor is a 401, a denied role is a 403.
func Authorize(resource policy.Resource, action policy.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := ActorFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("authentication required"))
			c.Abort()
			return
		}

		if !policy.Allowed(resource, action, actor.Role) {
			c.JSON(http.StatusForbidden, handler.NewErrorResponse("insufficient permissions"))
			c.Abort()
			return
		}

		c.Next()
	}
}
