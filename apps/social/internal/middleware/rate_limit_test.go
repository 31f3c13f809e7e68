package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"CrewServer/pkg/logger"
)

var rateLimitTestOnce sync.Once

func initRateLimitTest() {
	rateLimitTestOnce.Do(func() {
		logger.ReplaceGlobal(zap.NewNop())
		gin.SetMode(gin.TestMode)
	})
}

func TestIPRateLimiterLocalFallback(t *testing.T) {
	initRateLimitTest()
	ctx := context.Background()

	// 无 Redis 时走本地令牌桶：burst 个请求放行，之后拒绝
	limiter := NewIPRateLimiter(1, 3)
	for i := 0; i < 3; i++ {
		assert.True(t, limiter.Allow(ctx, "10.0.0.1"), "request %d", i)
	}
	assert.False(t, limiter.Allow(ctx, "10.0.0.1"))

	// 不同 IP 互不影响
	assert.True(t, limiter.Allow(ctx, "10.0.0.2"))
}

func TestIPRateLimitMiddlewareRejectsWith429(t *testing.T) {
	initRateLimitTest()

	limiter := NewIPRateLimiter(1, 1)
	r := gin.New()
	r.Use(IPRateLimitMiddleware(limiter))
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})

	first := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/ping", nil)
	r.ServeHTTP(first, req)
	assert.Equal(t, http.StatusOK, first.Code)

	second := httptest.NewRecorder()
	r.ServeHTTP(second, req)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Contains(t, second.Body.String(), "请求过于频繁")
}
