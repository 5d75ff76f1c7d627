package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	gocache "github.com/patrickmn/go-cache"

	"github.com/clinicore/records-api/internal/handler"
	"github.com/clinicore/records-api/internal/model"
	"github.com/clinicore/records-api/pkg/auth"
)

const actorKey = "actor"

type AuthMiddleware struct {
	tokens auth.JWTService
	// cache keeps validated claims for a short window to skip repeated
	// signature checks on hot clients. Entries expire well before tokens.
	cache *gocache.Cache
}

func NewAuthMiddleware(tokens auth.JWTService) *AuthMiddleware {
	return &AuthMiddleware{
		tokens: tokens,
		cache:  gocache.New(5*time.Minute, 10*time.Minute),
	}
}

// Authenticate verifies the bearer token and sets the actor in context.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("missing authorization header"))
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("invalid authorization format"))
			c.Abort()
			return
		}

		claims, err := m.validate(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("invalid token"))
			c.Abort()
			return
		}

		c.Set(actorKey, claims.Actor())
		c.Next()
	}
}

func (m *AuthMiddleware) validate(token string) (*model.TokenClaims, error) {
	if cached, ok := m.cache.Get(token); ok {
		return cached.(*model.TokenClaims), nil
	}

	claims, err := m.tokens.ValidateToken(token)
	if err != nil {
		return nil, err
	}
	m.cache.Set(token, claims, gocache.DefaultExpiration)
	return claims, nil
}

// ActorFromContext returns the authenticated actor set by Authenticate.
func ActorFromContext(c *gin.Context) (*model.Actor, bool) {
	v, ok := c.Get(actorKey)
	if !ok {
		return nil, false
	}
	actor, ok := v.(*model.Actor)
	return actor, ok
}
