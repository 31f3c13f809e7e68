package router

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	v1 "CrewServer/apps/social/internal/router/v1"
	"CrewServer/pkg/logger"
)

var routerTestOnce sync.Once

func newTestRouter() *gin.Engine {
	routerTestOnce.Do(func() {
		logger.ReplaceGlobal(zap.NewNop())
		gin.SetMode(gin.TestMode)
	})
	// 未认证请求在中间件就被拦下，处理器不会被调用到
	h := &Handlers{
		Identity:   v1.NewIdentityHandler(nil),
		Friend:     v1.NewFriendHandler(nil, nil),
		Crew:       v1.NewCrewHandler(nil, nil, nil),
		Attendance: v1.NewAttendanceHandler(nil, nil, nil),
		Notify:     v1.NewNotifyHandler(nil, nil),
		WS:         v1.NewWSHandler(nil, nil),
	}
	return InitRouter(h, nil)
}

func TestRouterHealth(t *testing.T) {
	r := newTestRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/health", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")
}

func TestRouterMetricsExposed(t *testing.T) {
	r := newTestRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/metrics", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouterRequiresAuth(t *testing.T) {
	r := newTestRouter()

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/friend/list"},
		{http.MethodPost, "/api/v1/crew/create"},
		{http.MethodPost, "/api/v1/attendance/rsvp"},
		{http.MethodGet, "/api/v1/notify/preference"},
	}

	for _, p := range paths {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(p.method, p.path, nil)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code, p.path)
	}
}
