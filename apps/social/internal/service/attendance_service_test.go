package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CrewServer/consts"
	"CrewServer/model"
)

func TestAttendanceServiceRsvp(t *testing.T) {
	initServiceTest(t)

	t.Run("invalid_status", func(t *testing.T) {
		svc := NewAttendanceService(&fakeAttRepo{}, &fakeConnRepo{}, &fakeCrewRepo{}, &fakeIdentityService{})
		err := svc.Rsvp(context.Background(), "tg:1", "evt-7", 9, model.VisibilityFlow, nil)
		assert.EqualValues(t, consts.CodeRsvpStatusInvalid, CodeOf(err))
	})

	t.Run("snapshot_carried_into_upsert", func(t *testing.T) {
		date := time.Date(2026, 9, 5, 20, 0, 0, 0, time.UTC)
		var got *model.Attendance
		repo := &fakeAttRepo{
			upsertFn: func(_ context.Context, att *model.Attendance) error {
				got = att
				return nil
			},
		}
		svc := NewAttendanceService(repo, &fakeConnRepo{}, &fakeCrewRepo{}, &fakeIdentityService{})

		meta := &EventMeta{Name: "草莓音乐节", Date: &date, Venue: "世博公园"}
		err := svc.Rsvp(context.Background(), "tg:1", "evt-7", model.RsvpGoing, model.VisibilityPrivate, meta)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "草莓音乐节", got.EventName)
		assert.Equal(t, "世博公园", got.EventVenue)
		assert.Equal(t, model.VisibilityPrivate, got.Visibility)
	})
}

// flowFixture 圈子：tg:2 是好友，tg:3 被本人静音，
// Crew 100 带来 tg:4，Crew 200 被本人静音（tg:9 不应出现）。
func flowFixture() (*fakeConnRepo, *fakeCrewRepo) {
	connRepo := &fakeConnRepo{
		listByUserFn: func(context.Context, string) ([]*model.Connection, error) {
			return []*model.Connection{
				{UserId: "tg:1", FriendId: "tg:2", Status: model.ConnStatusActive},
				{UserId: "tg:1", FriendId: "tg:3", Status: model.ConnStatusMuted},
			}, nil
		},
	}
	crewRepo := &fakeCrewRepo{
		listMembershipsFn: func(context.Context, string) ([]*model.CrewMember, error) {
			return []*model.CrewMember{
				{CrewId: 100, UserId: "tg:1"},
				{CrewId: 200, UserId: "tg:1", Muted: true},
			}, nil
		},
		listMembersFn: func(_ context.Context, crewID int64) ([]*model.CrewMember, error) {
			if crewID == 100 {
				return []*model.CrewMember{
					{CrewId: 100, UserId: "tg:1"},
					{CrewId: 100, UserId: "tg:4"},
				}, nil
			}
			return []*model.CrewMember{
				{CrewId: 200, UserId: "tg:1"},
				{CrewId: 200, UserId: "tg:9"},
			}, nil
		},
	}
	return connRepo, crewRepo
}

func TestAttendanceServiceWhoIsGoing(t *testing.T) {
	initServiceTest(t)

	connRepo, crewRepo := flowFixture()
	attRepo := &fakeAttRepo{
		listByEventForUsersFn: func(_ context.Context, eventID string, userIDs []string) ([]*model.Attendance, error) {
			// 圈子 = 未静音好友 ∪ 未静音 Crew 的队友：tg:3 与 tg:9 不在其中
			require.Equal(t, "evt-7", eventID)
			require.ElementsMatch(t, []string{"tg:2", "tg:4"}, userIDs)
			return []*model.Attendance{
				{UserId: "tg:2", EventId: "evt-7", Status: model.RsvpGoing},
				{UserId: "tg:4", EventId: "evt-7", Status: model.RsvpMaybe},
			}, nil
		},
	}
	svc := NewAttendanceService(attRepo, connRepo, crewRepo, &fakeIdentityService{})

	roster, err := svc.WhoIsGoing(context.Background(), "tg:1", "evt-7")
	require.NoError(t, err)
	require.Len(t, roster.Going, 1)
	assert.Equal(t, "tg:2", roster.Going[0].UserId)
	require.Len(t, roster.Maybe, 1)
	assert.Equal(t, "tg:4", roster.Maybe[0].UserId)
}

func TestAttendanceServiceUpcoming(t *testing.T) {
	initServiceTest(t)

	connRepo, crewRepo := flowFixture()
	early := time.Date(2026, 9, 1, 19, 0, 0, 0, time.UTC)
	late := time.Date(2026, 9, 10, 19, 0, 0, 0, time.UTC)
	attRepo := &fakeAttRepo{
		listUpcomingFn: func(context.Context, []string, time.Time) ([]*model.Attendance, error) {
			return []*model.Attendance{
				{UserId: "tg:4", EventId: "evt-9", EventName: "livehouse 专场", EventDate: &late, Status: model.RsvpMaybe},
				{UserId: "tg:2", EventId: "evt-7", EventName: "草莓音乐节", EventDate: &early, Status: model.RsvpGoing},
				{UserId: "tg:4", EventId: "evt-7", EventName: "草莓音乐节", EventDate: &early, Status: model.RsvpGoing},
			}, nil
		},
	}
	svc := NewAttendanceService(attRepo, connRepo, crewRepo, &fakeIdentityService{})

	events, err := svc.Upcoming(context.Background(), "tg:1")
	require.NoError(t, err)
	require.Len(t, events, 2)
	// 按开始时间升序
	assert.Equal(t, "evt-7", events[0].EventId)
	assert.Len(t, events[0].Going, 2)
	assert.Equal(t, "evt-9", events[1].EventId)
	assert.Len(t, events[1].Maybe, 1)
}
