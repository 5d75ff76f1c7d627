package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicore/records-api/internal/config"
	"github.com/clinicore/records-api/internal/model"
	"github.com/clinicore/records-api/internal/policy"
	"github.com/clinicore/records-api/pkg/auth"
	apperrors "github.com/clinicore/records-api/pkg/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func tokenFor(t *testing.T, tokens auth.JWTService, role model.Role) string {
	t.Helper()
	user := &model.User{Role: role, Email: "user@example.com"}
	user.ID = uuid.New()
	token, _, err := tokens.GenerateAccessToken(user)
	require.NoError(t, err)
	return token
}

func protectedRouter(tokens auth.JWTService, resource policy.Resource, action policy.Action) *gin.Engine {
	r := gin.New()
	authMW := NewAuthMiddleware(tokens)
	r.GET("/resource",
		authMW.Authenticate(),
		Authorize(resource, action),
		func(c *gin.Context) { c.Status(http.StatusOK) },
	)
	return r
}

func TestAuthenticateRejectsMissingAndMalformedHeaders(t *testing.T) {
	tokens := auth.NewJWTService("secret", time.Hour, "test")
	r := protectedRouter(tokens, policy.ResourcePatients, policy.ActionRead)

	for _, header := range []string{"", "Basic abc", "Bearer", "Bearer bad.token.here"} {
		req := httptest.NewRequest(http.MethodGet, "/resource", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "header %q", header)
	}
}

func TestAuthorizePerRole(t *testing.T) {
	tokens := auth.NewJWTService("secret", time.Hour, "test")

	tests := []struct {
		name     string
		role     model.Role
		resource policy.Resource
		action   policy.Action
		want     int
	}{
		{"doctor reads patients", model.RoleDoctor, policy.ResourcePatients, policy.ActionRead, http.StatusOK},
		{"patient denied patients", model.RolePatient, policy.ResourcePatients, policy.ActionRead, http.StatusForbidden},
		{"admin denied doctor notes", model.RoleAdmin, policy.ResourceDoctorNotes, policy.ActionRead, http.StatusForbidden},
		{"moderator reads surgical notes", model.RoleModerator, policy.ResourceSurgicalNotes, policy.ActionRead, http.StatusOK},
		{"moderator denied cleanup", model.RoleModerator, policy.ResourceAuditLogs, policy.ActionCleanup, http.StatusForbidden},
		{"admin allowed cleanup", model.RoleAdmin, policy.ResourceAuditLogs, policy.ActionCleanup, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := protectedRouter(tokens, tt.resource, tt.action)
			req := httptest.NewRequest(http.MethodGet, "/resource", nil)
			req.Header.Set("Authorization", "Bearer "+tokenFor(t, tokens, tt.role))
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestAuthenticateRejectsTokenSignedWithOtherSecret(t *testing.T) {
	tokens := auth.NewJWTService("secret", time.Hour, "test")
	other := auth.NewJWTService("different", time.Hour, "test")
	r := protectedRouter(tokens, policy.ResourcePatients, policy.ActionRead)

	req := httptest.NewRequest(http.MethodGet, "/resource", nil)
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, other, model.RoleDoctor))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestErrorHandlerMapsAppErrors(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler(true))
	r.GET("/not-found", func(c *gin.Context) {
		c.Error(apperrors.NotFound("patient"))
	})
	r.GET("/conflict", func(c *gin.Context) {
		c.Error(apperrors.Conflict("email is already registered"))
	})
	r.GET("/boom", func(c *gin.Context) {
		c.Error(errors.New("connection refused"))
	})

	tests := []struct {
		path string
		want int
	}{
		{"/not-found", http.StatusNotFound},
		{"/conflict", http.StatusConflict},
		{"/boom", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
		assert.Equal(t, tt.want, w.Code, tt.path)
	}

	// Production mode hides internal detail.
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.NotContains(t, w.Body.String(), "connection refused")
}

func TestRateLimiterBlocksBursts(t *testing.T) {
	limiter := NewRateLimiter(config.RateLimitConfig{Enabled: true, RPS: 1, Burst: 2})
	r := gin.New()
	r.Use(limiter.Handler())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}
