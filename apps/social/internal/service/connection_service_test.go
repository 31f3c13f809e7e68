package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CrewServer/apps/social/internal/repository"
	"CrewServer/consts"
	"CrewServer/model"
)

func TestConnectionServiceInvite(t *testing.T) {
	initServiceTest(t)

	t.Run("returns_existing_code", func(t *testing.T) {
		repo := &fakeConnRepo{
			getInviteByUserFn: func(_ context.Context, userID string) (*model.FriendInvite, error) {
				return &model.FriendInvite{UserId: userID, Code: "AB12CD34"}, nil
			},
		}
		svc := NewConnectionService(repo, &fakeCrewRepo{}, &fakeIdentityService{})

		code, err := svc.Invite(context.Background(), "tg:1")
		require.NoError(t, err)
		assert.Equal(t, "AB12CD34", code)
	})

	t.Run("creates_on_first_call", func(t *testing.T) {
		repo := &fakeConnRepo{
			getInviteByUserFn: func(context.Context, string) (*model.FriendInvite, error) {
				return nil, repository.ErrRecordNotFound
			},
			createInviteFn: func(_ context.Context, inv *model.FriendInvite) (*model.FriendInvite, error) {
				require.Equal(t, "tg:1", inv.UserId)
				require.NotEmpty(t, inv.Code)
				return inv, nil
			},
		}
		svc := NewConnectionService(repo, &fakeCrewRepo{}, &fakeIdentityService{})

		code, err := svc.Invite(context.Background(), "tg:1")
		require.NoError(t, err)
		assert.NotEmpty(t, code)
	})
}

func TestConnectionServiceAcceptInvite(t *testing.T) {
	initServiceTest(t)

	t.Run("code_not_found", func(t *testing.T) {
		repo := &fakeConnRepo{
			getInviteByCodeFn: func(context.Context, string) (*model.FriendInvite, error) {
				return nil, repository.ErrRecordNotFound
			},
		}
		svc := NewConnectionService(repo, &fakeCrewRepo{}, &fakeIdentityService{})

		err := svc.AcceptInvite(context.Background(), "tg:2", "NOPE")
		assert.EqualValues(t, consts.CodeInviteNotFound, CodeOf(err))
	})

	t.Run("self_invite_rejected", func(t *testing.T) {
		repo := &fakeConnRepo{
			getInviteByCodeFn: func(context.Context, string) (*model.FriendInvite, error) {
				return &model.FriendInvite{UserId: "tg:1", Code: "AB12CD34"}, nil
			},
		}
		svc := NewConnectionService(repo, &fakeCrewRepo{}, &fakeIdentityService{})

		err := svc.AcceptInvite(context.Background(), "tg:1", "AB12CD34")
		assert.EqualValues(t, consts.CodeSelfInvite, CodeOf(err))
	})

	t.Run("creates_bidirectional_relation", func(t *testing.T) {
		var gotUser, gotFriend string
		repo := &fakeConnRepo{
			getInviteByCodeFn: func(context.Context, string) (*model.FriendInvite, error) {
				return &model.FriendInvite{UserId: "tg:1", Code: "AB12CD34"}, nil
			},
			createRelationFn: func(_ context.Context, userID, friendID string, acceptedAt time.Time) error {
				require.False(t, acceptedAt.IsZero())
				gotUser, gotFriend = userID, friendID
				return nil
			},
		}
		svc := NewConnectionService(repo, &fakeCrewRepo{}, &fakeIdentityService{})

		err := svc.AcceptInvite(context.Background(), "tg:2", "AB12CD34")
		require.NoError(t, err)
		assert.Equal(t, "tg:2", gotUser)
		assert.Equal(t, "tg:1", gotFriend)
	})
}

func TestConnectionServiceToggleMute(t *testing.T) {
	initServiceTest(t)

	t.Run("active_to_muted", func(t *testing.T) {
		var setTo int8 = -1
		repo := &fakeConnRepo{
			getRelationFn: func(context.Context, string, string) (*model.Connection, error) {
				return &model.Connection{UserId: "tg:1", FriendId: "tg:2", Status: model.ConnStatusActive}, nil
			},
			setStatusFn: func(_ context.Context, userID, friendID string, status int8) error {
				require.Equal(t, "tg:1", userID)
				require.Equal(t, "tg:2", friendID)
				setTo = status
				return nil
			},
		}
		svc := NewConnectionService(repo, &fakeCrewRepo{}, &fakeIdentityService{})

		muted, err := svc.ToggleMute(context.Background(), "tg:1", "tg:2")
		require.NoError(t, err)
		assert.True(t, muted)
		assert.Equal(t, model.ConnStatusMuted, setTo)
	})

	t.Run("muted_back_to_active", func(t *testing.T) {
		var setTo int8 = -1
		repo := &fakeConnRepo{
			getRelationFn: func(context.Context, string, string) (*model.Connection, error) {
				return &model.Connection{Status: model.ConnStatusMuted}, nil
			},
			setStatusFn: func(_ context.Context, _, _ string, status int8) error {
				setTo = status
				return nil
			},
		}
		svc := NewConnectionService(repo, &fakeCrewRepo{}, &fakeIdentityService{})

		muted, err := svc.ToggleMute(context.Background(), "tg:1", "tg:2")
		require.NoError(t, err)
		assert.False(t, muted)
		assert.Equal(t, model.ConnStatusActive, setTo)
	})

	t.Run("no_relation", func(t *testing.T) {
		repo := &fakeConnRepo{
			getRelationFn: func(context.Context, string, string) (*model.Connection, error) {
				return nil, repository.ErrRecordNotFound
			},
		}
		svc := NewConnectionService(repo, &fakeCrewRepo{}, &fakeIdentityService{})

		_, err := svc.ToggleMute(context.Background(), "tg:1", "tg:9")
		assert.EqualValues(t, consts.CodeNotFriend, CodeOf(err))
	})
}

func TestConnectionServiceList(t *testing.T) {
	initServiceTest(t)

	repo := &fakeConnRepo{
		listByUserFn: func(context.Context, string) ([]*model.Connection, error) {
			return []*model.Connection{
				{UserId: "tg:1", FriendId: "tg:2", Status: model.ConnStatusActive},
				{UserId: "tg:1", FriendId: "app:3", Status: model.ConnStatusMuted},
			}, nil
		},
	}
	crewRepo := &fakeCrewRepo{
		listMembershipsFn: func(context.Context, string) ([]*model.CrewMember, error) {
			return []*model.CrewMember{{CrewId: 100, UserId: "tg:1", Role: model.RoleAdmin, Muted: true}}, nil
		},
		getByIDFn: func(context.Context, int64) (*model.Crew, error) {
			return &model.Crew{Id: 100, Name: "夜市小队", Emoji: "🌮"}, nil
		},
		countMembersFn: func(context.Context, int64) (int64, error) { return 4, nil },
	}
	svc := NewConnectionService(repo, crewRepo, &fakeIdentityService{})

	list, err := svc.List(context.Background(), "tg:1")
	require.NoError(t, err)
	require.Len(t, list.Friends, 2)
	assert.False(t, list.Friends[0].Muted)
	assert.True(t, list.Friends[1].Muted)
	require.Len(t, list.Crews, 1)
	assert.Equal(t, "夜市小队", list.Crews[0].Name)
	assert.Equal(t, model.RoleAdmin, list.Crews[0].Role)
	assert.True(t, list.Crews[0].Muted)
	assert.EqualValues(t, 4, list.Crews[0].MemberCount)
}
