package v1

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"CrewServer/apps/social/internal/service"
	"CrewServer/consts"
)

func TestCrewHandlerJoinFansOutOnDirectJoin(t *testing.T) {
	initHandlerTest()

	var notifiedCrew int64
	crewSvc := &fakeCrewService{
		joinFn: func(context.Context, string, string) (*service.JoinResult, error) {
			return &service.JoinResult{
				Outcome: service.JoinedDirect,
				Crew:    &service.CrewInfo{CrewId: 77},
			}, nil
		},
	}
	notifySvc := &fakeNotifyService{
		notifyCrewJoinFn: func(_ context.Context, _ string, crewID int64) (int, error) {
			notifiedCrew = crewID
			return 3, nil
		},
	}
	h := NewCrewHandler(crewSvc, notifySvc, &fakeIdentityService{})

	req := newJSONRequest(t, http.MethodPost, "/api/v1/crew/join", `{"code":"XYZ789"}`)
	c, w := newAuthedContext(t, req)

	h.Join(c)

	assert.Equal(t, consts.CodeSuccess, decodeHandlerBody(t, w).Code)
	assert.Equal(t, int64(77), notifiedCrew)
}

func TestCrewHandlerJoinPendingSkipsFanOut(t *testing.T) {
	initHandlerTest()

	notified := false
	crewSvc := &fakeCrewService{
		joinFn: func(context.Context, string, string) (*service.JoinResult, error) {
			return &service.JoinResult{
				Outcome: service.JoinPending,
				Crew:    &service.CrewInfo{CrewId: 77},
			}, nil
		},
	}
	notifySvc := &fakeNotifyService{
		notifyCrewJoinFn: func(context.Context, string, int64) (int, error) {
			notified = true
			return 0, nil
		},
	}
	h := NewCrewHandler(crewSvc, notifySvc, &fakeIdentityService{})

	req := newJSONRequest(t, http.MethodPost, "/api/v1/crew/join", `{"code":"XYZ789"}`)
	c, w := newAuthedContext(t, req)

	h.Join(c)

	assert.Equal(t, consts.CodeSuccess, decodeHandlerBody(t, w).Code)
	assert.False(t, notified)
}

func TestCrewHandlerJoinBusinessError(t *testing.T) {
	initHandlerTest()

	crewSvc := &fakeCrewService{
		joinFn: func(context.Context, string, string) (*service.JoinResult, error) {
			return nil, service.BizError(consts.CodeCrewFull)
		},
	}
	h := NewCrewHandler(crewSvc, &fakeNotifyService{}, &fakeIdentityService{})

	req := newJSONRequest(t, http.MethodPost, "/api/v1/crew/join", `{"code":"XYZ789"}`)
	c, w := newAuthedContext(t, req)

	h.Join(c)

	assert.Equal(t, consts.CodeCrewFull, decodeHandlerBody(t, w).Code)
}

func TestCrewHandlerCreateValidation(t *testing.T) {
	initHandlerTest()

	h := NewCrewHandler(&fakeCrewService{}, &fakeNotifyService{}, &fakeIdentityService{})

	req := newJSONRequest(t, http.MethodPost, "/api/v1/crew/create", `{"name":""}`)
	c, w := newAuthedContext(t, req)

	h.Create(c)

	assert.Equal(t, consts.CodeParamError, decodeHandlerBody(t, w).Code)
}

func TestCrewHandlerCreatePassesOptions(t *testing.T) {
	initHandlerTest()

	var gotOpts *service.CrewOptions
	crewSvc := &fakeCrewService{
		createFn: func(_ context.Context, _, name string, opts *service.CrewOptions) (*service.CrewInfo, error) {
			assert.Equal(t, "🎾 网球小队", name)
			gotOpts = opts
			return &service.CrewInfo{CrewId: 1, Name: name}, nil
		},
	}
	h := NewCrewHandler(crewSvc, &fakeNotifyService{}, &fakeIdentityService{})

	req := newJSONRequest(t, http.MethodPost, "/api/v1/crew/create",
		`{"name":"🎾 网球小队","isPublic":true,"maxMembers":20}`)
	c, w := newAuthedContext(t, req)

	h.Create(c)

	assert.Equal(t, consts.CodeSuccess, decodeHandlerBody(t, w).Code)
	assert.True(t, gotOpts.IsPublic)
	assert.Equal(t, 20, gotOpts.MaxMembers)
	assert.Nil(t, gotOpts.ExpiresAt)
}
