package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"finance_tracker/internal/domain"
	"finance_tracker/internal/repository"
	"finance_tracker/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-test-secret-test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

type lookupFunc func(ctx context.Context, email string) (*domain.User, error)

func (f lookupFunc) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return f(ctx, email)
}

func serve(r *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuthMiddleware(t *testing.T) {
	r := gin.New()
	r.GET("/private", JWTAuthMiddleware(testSecret), func(c *gin.Context) {
		id, ok := UserID(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"id": id, "email": c.GetString(EmailKey)})
	})

	w := serve(r, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))

	w = serve(r, "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"error"`)

	token, err := utils.GenerateJWT(3, "asha@example.com", testSecret, time.Minute)
	require.NoError(t, err)
	w = serve(r, token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":3,"email":"asha@example.com"}`, w.Body.String())
}

func TestRequireAccount(t *testing.T) {
	users := map[string]*domain.User{"asha@example.com": {ID: 3, Email: "asha@example.com"}}
	var failLookup bool
	lookup := lookupFunc(func(_ context.Context, email string) (*domain.User, error) {
		if failLookup {
			return nil, errors.New("db down")
		}
		if u, ok := users[email]; ok {
			return u, nil
		}
		return nil, repository.ErrNotFound
	})

	r := gin.New()
	r.GET("/private", JWTAuthMiddleware(testSecret), RequireAccount(lookup), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	valid, _ := utils.GenerateJWT(3, "asha@example.com", testSecret, time.Minute)
	assert.Equal(t, http.StatusNoContent, serve(r, valid).Code)

	reused, _ := utils.GenerateJWT(4, "asha@example.com", testSecret, time.Minute)
	assert.Equal(t, http.StatusUnauthorized, serve(r, reused).Code)

	deleted, _ := utils.GenerateJWT(5, "gone@example.com", testSecret, time.Minute)
	assert.Equal(t, http.StatusUnauthorized, serve(r, deleted).Code)

	failLookup = true
	assert.Equal(t, http.StatusInternalServerError, serve(r, valid).Code)
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(2)
	assert.True(t, rl.Allow("a"))
	assert.True(t, rl.Allow("a"))
	assert.False(t, rl.Allow("a"))
	assert.True(t, rl.Allow("b"), "keys are limited independently")

	r := gin.New()
	r.GET("/private", NewRateLimiter(1).Handler(), func(c *gin.Context) { c.Status(http.StatusOK) })
	assert.Equal(t, http.StatusOK, serve(r, "").Code)
	w := serve(r, "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "Too many requests")
}

func TestRateLimiterKeepsRecentKeysWhenFull(t *testing.T) {
	rl := newRateLimiter(1, 3)
	assert.True(t, rl.Allow("busy"))
	assert.False(t, rl.Allow("busy"))

	// Fresh keys push out the key seen least recently, one at a time
	assert.True(t, rl.Allow("a"))
	assert.True(t, rl.Allow("b"))
	assert.False(t, rl.Allow("busy"), "a full table must not reset every limiter")

	assert.True(t, rl.Allow("c"))
	assert.True(t, rl.Allow("d"))
	assert.True(t, rl.Allow("e"))
	assert.True(t, rl.Allow("busy"), "the idle key was evicted")
}

func TestRequestLogger(t *testing.T) {
	logger, hook := test.NewNullLogger()
	r := gin.New()
	r.Use(RequestLogger(logger))
	r.GET("/private", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	serve(r, "")
	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t, "/private", entry.Data["path"])
	assert.Equal(t, http.StatusNotFound, entry.Data["status"])
}

func TestMetricsHandler(t *testing.T) {
	m := NewMetrics()
	r := gin.New()
	r.Use(m.Handler())
	r.GET("/private", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/metrics", gin.WrapH(m.Exporter()))

	serve(r, "")
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Contains(t, w.Body.String(), `finance_tracker_http_requests_total{method="GET",route="/private",status="200"} 1`)
	assert.Contains(t, w.Body.String(), "finance_tracker_http_inflight_requests 0")
}
