package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CrewServer/apps/social/internal/repository"
	"CrewServer/consts"
	"CrewServer/model"
)

func TestIdentityServiceResolveCanonicalID(t *testing.T) {
	initServiceTest(t)

	t.Run("invalid_platform_uid", func(t *testing.T) {
		svc := NewIdentityService(&fakeIdentityRepo{}, nil, nil)

		_, err := svc.ResolveCanonicalID(context.Background(), "no-prefix", nil)
		require.Error(t, err)
		assert.EqualValues(t, consts.CodeIdentityInvalid, CodeOf(err))
	})

	t.Run("known_mapping_from_store", func(t *testing.T) {
		calls := 0
		repo := &fakeIdentityRepo{
			getByPlatformUidFn: func(_ context.Context, uid string) (*model.Identity, error) {
				calls++
				require.Equal(t, "tg:1001", uid)
				return &model.Identity{PlatformUid: "tg:1001", CanonicalId: "app:7"}, nil
			},
		}
		svc := NewIdentityService(repo, nil, nil)

		canonical, err := svc.ResolveCanonicalID(context.Background(), "tg:1001", nil)
		require.NoError(t, err)
		assert.Equal(t, "app:7", canonical)

		// 第二次命中进程内缓存，不再查库
		canonical, err = svc.ResolveCanonicalID(context.Background(), "tg:1001", nil)
		require.NoError(t, err)
		assert.Equal(t, "app:7", canonical)
		assert.Equal(t, 1, calls)
	})

	t.Run("first_seen_without_federation_mints_self", func(t *testing.T) {
		var written []*model.Identity
		repo := &fakeIdentityRepo{
			getByPlatformUidFn: func(context.Context, string) (*model.Identity, error) {
				return nil, repository.ErrRecordNotFound
			},
			createRowsFn: func(_ context.Context, rows []*model.Identity) error {
				written = rows
				return nil
			},
		}
		svc := NewIdentityService(repo, nil, nil)

		canonical, err := svc.ResolveCanonicalID(context.Background(), "tg:42", &IdentityHints{DisplayName: "Ada"})
		require.NoError(t, err)
		assert.Equal(t, "tg:42", canonical)

		require.Len(t, written, 1)
		assert.Equal(t, "tg:42", written[0].PlatformUid)
		assert.Equal(t, "tg:42", written[0].CanonicalId)
		assert.Equal(t, "tg", written[0].Platform)
		assert.Equal(t, "Ada", written[0].DisplayName)
	})

	t.Run("federation_adopts_existing_canonical", func(t *testing.T) {
		var written []*model.Identity
		repo := &fakeIdentityRepo{
			getByPlatformUidFn: func(context.Context, string) (*model.Identity, error) {
				return nil, repository.ErrRecordNotFound
			},
			batchGetByPlatformUidsFn: func(_ context.Context, uids []string) ([]*model.Identity, error) {
				require.Equal(t, []string{"app:7", "mail:a@b.c"}, uids)
				return []*model.Identity{{PlatformUid: "app:7", CanonicalId: "app:7"}}, nil
			},
			createRowsFn: func(_ context.Context, rows []*model.Identity) error {
				written = rows
				return nil
			},
		}
		fed := &fakeFederation{
			lookupFn: func(_ context.Context, uid string) (*FederationResult, error) {
				require.Equal(t, "tg:42", uid)
				return &FederationResult{
					FederationId:  "fed-1",
					LinkedHandles: []string{"tg:42", "app:7", "mail:a@b.c"},
				}, nil
			},
		}
		svc := NewIdentityService(repo, fed, nil)

		canonical, err := svc.ResolveCanonicalID(context.Background(), "tg:42", nil)
		require.NoError(t, err)
		assert.Equal(t, "app:7", canonical)

		// 本人行 + 两个关联行，全部指向同一规范身份
		require.Len(t, written, 3)
		for _, row := range written {
			assert.Equal(t, "app:7", row.CanonicalId)
			assert.Equal(t, "fed-1", row.FederationId)
		}
	})

	t.Run("federation_error_degrades_to_standalone", func(t *testing.T) {
		repo := &fakeIdentityRepo{
			getByPlatformUidFn: func(context.Context, string) (*model.Identity, error) {
				return nil, repository.ErrRecordNotFound
			},
			createRowsFn: func(context.Context, []*model.Identity) error { return nil },
		}
		fed := &fakeFederation{
			lookupFn: func(context.Context, string) (*FederationResult, error) {
				return nil, errors.New("federation down")
			},
		}
		svc := NewIdentityService(repo, fed, nil)

		canonical, err := svc.ResolveCanonicalID(context.Background(), "tg:42", nil)
		require.NoError(t, err)
		assert.Equal(t, "tg:42", canonical)
	})

	t.Run("row_write_failure_does_not_fail_resolution", func(t *testing.T) {
		repo := &fakeIdentityRepo{
			getByPlatformUidFn: func(context.Context, string) (*model.Identity, error) {
				return nil, repository.ErrRecordNotFound
			},
			createRowsFn: func(context.Context, []*model.Identity) error {
				return errors.New("db gone")
			},
		}
		svc := NewIdentityService(repo, nil, nil)

		canonical, err := svc.ResolveCanonicalID(context.Background(), "mail:x@y.z", nil)
		require.NoError(t, err)
		assert.Equal(t, "mail:x@y.z", canonical)
	})
}

func TestIdentityServiceDisplayNames(t *testing.T) {
	initServiceTest(t)

	t.Run("fallback_to_id_when_missing", func(t *testing.T) {
		repo := &fakeIdentityRepo{
			batchGetByCanonicalIDsFn: func(_ context.Context, ids []string) ([]*model.Identity, error) {
				return []*model.Identity{
					{CanonicalId: "tg:1", DisplayName: ""},
					{CanonicalId: "tg:1", DisplayName: "小明"},
					{CanonicalId: "app:2", DisplayName: "Ada"},
				}, nil
			},
		}
		svc := NewIdentityService(repo, nil, nil)

		names, err := svc.DisplayNames(context.Background(), []string{"tg:1", "app:2", "mail:no@name"})
		require.NoError(t, err)
		assert.Equal(t, "小明", names["tg:1"])
		assert.Equal(t, "Ada", names["app:2"])
		assert.Equal(t, "mail:no@name", names["mail:no@name"])
	})

	t.Run("empty_input", func(t *testing.T) {
		svc := NewIdentityService(&fakeIdentityRepo{}, nil, nil)
		names, err := svc.DisplayNames(context.Background(), nil)
		require.NoError(t, err)
		assert.Empty(t, names)
	})
}
