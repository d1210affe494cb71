package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/faculty-portal-api/internal/handler"
	"github.com/noah-isme/faculty-portal-api/internal/models"
	"github.com/noah-isme/faculty-portal-api/pkg/config"
	appErrors "github.com/noah-isme/faculty-portal-api/pkg/errors"
)

type roleVerifier struct{}

func (roleVerifier) Verify(ctx context.Context, token string) (*models.Principal, error) {
	role, ok := models.ParseRole(token)
	if !ok {
		return nil, appErrors.ErrTokenInvalid
	}
	return &models.Principal{AccountID: "acc-" + token, Role: role}, nil
}

type denyLimiter struct{}

func (denyLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	return false, nil
}

func newTestEngine(env string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{Env: env, APIPrefix: "/api", RateLimit: config.RateLimitConfig{AuthRequests: 5, Window: time.Minute}}
	return Setup(Deps{Config: cfg, Verifier: roleVerifier{}, Limiter: denyLimiter{}}, Handlers{
		Metrics: handler.NewMetricsHandler(nil, nil),
	})
}

func do(r *gin.Engine, method, path, token string) int {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestOperationalRoutes(t *testing.T) {
	r := newTestEngine(config.EnvDevelopment)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/health", ""))
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/ready", ""))
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/docs/index.html", ""))

	prod := newTestEngine(config.EnvProduction)
	assert.Equal(t, http.StatusNotFound, do(prod, http.MethodGet, "/docs/index.html", ""))
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	r := newTestEngine(config.EnvDevelopment)
	routes := [][2]string{
		{http.MethodGet, "/api/admin/users"},
		{http.MethodPost, "/api/admin/reports"},
		{http.MethodGet, "/api/faculty/profile"},
		{http.MethodGet, "/api/faculty/all"},
		{http.MethodGet, "/api/faculty/reports/acc-1"},
		{http.MethodGet, "/api/tasks"},
		{http.MethodPut, "/api/tasks/t1"},
	}
	for _, route := range routes {
		assert.Equal(t, http.StatusUnauthorized, do(r, route[0], route[1], ""), route[1])
		assert.Equal(t, http.StatusUnauthorized, do(r, route[0], route[1], "garbage"), route[1])
	}
}

func TestAdminRoutesRejectOtherRoles(t *testing.T) {
	r := newTestEngine(config.EnvDevelopment)
	for _, token := range []string{"hod", "lecturer"} {
		assert.Equal(t, http.StatusForbidden, do(r, http.MethodGet, "/api/admin/users", token))
		assert.Equal(t, http.StatusForbidden, do(r, http.MethodPut, "/api/admin/leaves/l1", token))
		assert.Equal(t, http.StatusForbidden, do(r, http.MethodPost, "/api/admin/reports", token))
	}
	assert.Equal(t, http.StatusForbidden, do(r, http.MethodGet, "/api/faculty/reports/someone-else", "lecturer"))
}

func TestAuthRoutesAreRateLimited(t *testing.T) {
	r := newTestEngine(config.EnvDevelopment)
	assert.Equal(t, http.StatusTooManyRequests, do(r, http.MethodPost, "/api/auth/login", ""))
	assert.Equal(t, http.StatusTooManyRequests, do(r, http.MethodPost, "/api/auth/register", ""))
}
