package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"CrewServer/apps/social/internal/service"
	"CrewServer/pkg/logger"
)

var handlerLoggerOnce sync.Once

func initHandlerTest() {
	handlerLoggerOnce.Do(func() {
		logger.ReplaceGlobal(zap.NewNop())
		gin.SetMode(gin.TestMode)
	})
}

// ==================== 响应解码辅助 ====================

type handlerResultBody struct {
	Code int             `json:"code"`
	Data json.RawMessage `json:"data"`
}

func decodeHandlerBody(t *testing.T, w *httptest.ResponseRecorder) handlerResultBody {
	t.Helper()
	var body handlerResultBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func newJSONRequest(t *testing.T, method, target, body string) *http.Request {
	t.Helper()
	req, err := http.NewRequest(method, target, bytes.NewBufferString(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// newAuthedContext 构造一个已通过认证中间件的测试上下文
func newAuthedContext(t *testing.T, req *http.Request) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Set("platform_uid", "tg:1001")
	return c, w
}

// newRecorderWithoutAuth 不注入认证信息直接调用处理器
func newRecorderWithoutAuth(t *testing.T, req *http.Request, handler gin.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	handler(c)
	return w
}

// ==================== 服务层桩 ====================

type fakeIdentityService struct {
	service.IIdentityService

	resolveFn func(context.Context, string, *service.IdentityHints) (string, error)
}

func (f *fakeIdentityService) ResolveCanonicalID(ctx context.Context, platformUid string, hints *service.IdentityHints) (string, error) {
	if f.resolveFn == nil {
		return "app:1", nil
	}
	return f.resolveFn(ctx, platformUid, hints)
}

type fakeConnectionService struct {
	service.IConnectionService

	inviteFn       func(context.Context, string) (string, error)
	acceptInviteFn func(context.Context, string, string) error
	toggleMuteFn   func(context.Context, string, string) (bool, error)
	listFn         func(context.Context, string) (*service.FlowList, error)
}

func (f *fakeConnectionService) Invite(ctx context.Context, userID string) (string, error) {
	if f.inviteFn == nil {
		return "ABC123", nil
	}
	return f.inviteFn(ctx, userID)
}

func (f *fakeConnectionService) AcceptInvite(ctx context.Context, userID, code string) error {
	if f.acceptInviteFn == nil {
		return nil
	}
	return f.acceptInviteFn(ctx, userID, code)
}

func (f *fakeConnectionService) ToggleMute(ctx context.Context, userID, friendID string) (bool, error) {
	if f.toggleMuteFn == nil {
		return true, nil
	}
	return f.toggleMuteFn(ctx, userID, friendID)
}

func (f *fakeConnectionService) List(ctx context.Context, userID string) (*service.FlowList, error) {
	if f.listFn == nil {
		return &service.FlowList{}, nil
	}
	return f.listFn(ctx, userID)
}

type fakeCrewService struct {
	service.ICrewService

	createFn func(context.Context, string, string, *service.CrewOptions) (*service.CrewInfo, error)
	joinFn   func(context.Context, string, string) (*service.JoinResult, error)
}

func (f *fakeCrewService) Create(ctx context.Context, creatorID, name string, opts *service.CrewOptions) (*service.CrewInfo, error) {
	if f.createFn == nil {
		return &service.CrewInfo{CrewId: 1, Name: name}, nil
	}
	return f.createFn(ctx, creatorID, name, opts)
}

func (f *fakeCrewService) Join(ctx context.Context, userID, code string) (*service.JoinResult, error) {
	if f.joinFn == nil {
		return &service.JoinResult{Outcome: service.JoinedDirect, Crew: &service.CrewInfo{CrewId: 1}}, nil
	}
	return f.joinFn(ctx, userID, code)
}

type fakeNotifyService struct {
	service.INotifyService

	notifyRsvpFn     func(context.Context, string, string, string) (int, error)
	notifyCrewJoinFn func(context.Context, string, int64) (int, error)
	sweepFn          func(context.Context, time.Time) (int, error)
}

func (f *fakeNotifyService) NotifyRSVP(ctx context.Context, actorID, eventID, eventName string) (int, error) {
	if f.notifyRsvpFn == nil {
		return 0, nil
	}
	return f.notifyRsvpFn(ctx, actorID, eventID, eventName)
}

func (f *fakeNotifyService) NotifyCrewJoin(ctx context.Context, actorID string, crewID int64) (int, error) {
	if f.notifyCrewJoinFn == nil {
		return 0, nil
	}
	return f.notifyCrewJoinFn(ctx, actorID, crewID)
}

func (f *fakeNotifyService) SweepEventReminders(ctx context.Context, now time.Time) (int, error) {
	if f.sweepFn == nil {
		return 0, nil
	}
	return f.sweepFn(ctx, now)
}

type fakeAttendanceService struct {
	service.IAttendanceService

	rsvpFn func(context.Context, string, string, int8, int8, *service.EventMeta) error
}

func (f *fakeAttendanceService) Rsvp(ctx context.Context, userID, eventID string, status, visibility int8, meta *service.EventMeta) error {
	if f.rsvpFn == nil {
		return nil
	}
	return f.rsvpFn(ctx, userID, eventID, status, visibility, meta)
}
