package v1

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"CrewServer/apps/social/internal/service"
	"CrewServer/consts"
)

func TestFriendHandlerAcceptInvite(t *testing.T) {
	initHandlerTest()

	tests := []struct {
		name     string
		body     string
		setup    func(*fakeConnectionService)
		wantCode int
	}{
		{
			name:     "success",
			body:     `{"code":"ABC123"}`,
			wantCode: consts.CodeSuccess,
		},
		{
			name:     "missing_code",
			body:     `{}`,
			wantCode: consts.CodeParamError,
		},
		{
			name: "invite_not_found",
			body: `{"code":"NOPE"}`,
			setup: func(s *fakeConnectionService) {
				s.acceptInviteFn = func(context.Context, string, string) error {
					return service.BizError(consts.CodeInviteNotFound)
				}
			},
			wantCode: consts.CodeInviteNotFound,
		},
		{
			name: "internal_error",
			body: `{"code":"ABC123"}`,
			setup: func(s *fakeConnectionService) {
				s.acceptInviteFn = func(context.Context, string, string) error {
					return errors.New("db down")
				}
			},
			wantCode: consts.CodeInternalError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			connSvc := &fakeConnectionService{}
			if tt.setup != nil {
				tt.setup(connSvc)
			}
			h := NewFriendHandler(connSvc, &fakeIdentityService{})

			req := newJSONRequest(t, http.MethodPost, "/api/v1/friend/accept", tt.body)
			c, w := newAuthedContext(t, req)

			h.AcceptInvite(c)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.wantCode, decodeHandlerBody(t, w).Code)
		})
	}
}

func TestFriendHandlerAcceptInviteResolvesCaller(t *testing.T) {
	initHandlerTest()

	var gotUser string
	connSvc := &fakeConnectionService{
		acceptInviteFn: func(_ context.Context, userID, _ string) error {
			gotUser = userID
			return nil
		},
	}
	identitySvc := &fakeIdentityService{
		resolveFn: func(_ context.Context, platformUid string, _ *service.IdentityHints) (string, error) {
			assert.Equal(t, "tg:1001", platformUid)
			return "app:42", nil
		},
	}
	h := NewFriendHandler(connSvc, identitySvc)

	req := newJSONRequest(t, http.MethodPost, "/api/v1/friend/accept", `{"code":"ABC123"}`)
	c, w := newAuthedContext(t, req)

	h.AcceptInvite(c)

	assert.Equal(t, consts.CodeSuccess, decodeHandlerBody(t, w).Code)
	assert.Equal(t, "app:42", gotUser)
}

func TestFriendHandlerToggleMute(t *testing.T) {
	initHandlerTest()

	connSvc := &fakeConnectionService{
		toggleMuteFn: func(_ context.Context, _, friendID string) (bool, error) {
			assert.Equal(t, "tg:2", friendID)
			return true, nil
		},
	}
	h := NewFriendHandler(connSvc, &fakeIdentityService{})

	req := newJSONRequest(t, http.MethodPost, "/api/v1/friend/mute", `{"friendId":"tg:2"}`)
	c, w := newAuthedContext(t, req)

	h.ToggleMute(c)

	body := decodeHandlerBody(t, w)
	assert.Equal(t, consts.CodeSuccess, body.Code)
	assert.Contains(t, string(body.Data), `"muted":true`)
}

func TestFriendHandlerUnauthenticated(t *testing.T) {
	initHandlerTest()

	h := NewFriendHandler(&fakeConnectionService{}, &fakeIdentityService{})

	req := newJSONRequest(t, http.MethodGet, "/api/v1/friend/list", "")
	w := newRecorderWithoutAuth(t, req, h.List)

	assert.Equal(t, consts.CodeUnauthorized, decodeHandlerBody(t, w).Code)
}
