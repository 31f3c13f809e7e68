package repository

import (
	"context"

	rediskey "CrewServer/consts/redisKey"
	"CrewServer/model"
	"CrewServer/pkg/async"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// identityRepositoryImpl 平台身份数据访问层实现
type identityRepositoryImpl struct {
	db          *gorm.DB
	redisClient *redis.Client
}

// NewIdentityRepository 创建身份仓储实例
func NewIdentityRepository(db *gorm.DB, redisClient *redis.Client) IIdentityRepository {
	return &identityRepositoryImpl{db: db, redisClient: redisClient}
}

// GetByPlatformUid 按平台账号查身份行
// 先查 Redis 的 uid->canonical 映射；命中时省一次 DB 往返（只还原映射字段）。
func (r *identityRepositoryImpl) GetByPlatformUid(ctx context.Context, platformUid string) (*model.Identity, error) {
	if r.redisClient != nil {
		canonical, err := r.redisClient.Get(ctx, rediskey.IdentityKey(platformUid)).Result()
		if err == nil && canonical != "" {
			return &model.Identity{
				CanonicalId: canonical,
				PlatformUid: platformUid,
			}, nil
		}
		if err != nil && err != redis.Nil {
			LogRedisError(ctx, err)
		}
	}

	var row model.Identity
	err := r.db.WithContext(ctx).
		Where("platform_uid = ?", platformUid).
		First(&row).Error
	if err != nil {
		return nil, WrapDBError(err)
	}

	r.cacheMappingAsync(ctx, platformUid, row.CanonicalId)
	return &row, nil
}

// BatchGetByPlatformUids 批量查身份行（只返回存在的）
func (r *identityRepositoryImpl) BatchGetByPlatformUids(ctx context.Context, platformUids []string) ([]*model.Identity, error) {
	if len(platformUids) == 0 {
		return nil, nil
	}

	var rows []*model.Identity
	err := r.db.WithContext(ctx).
		Where("platform_uid IN ?", platformUids).
		Find(&rows).Error
	if err != nil {
		return nil, WrapDBError(err)
	}
	return rows, nil
}

// GetByCanonicalID 查一个规范身份名下的全部平台账号
func (r *identityRepositoryImpl) GetByCanonicalID(ctx context.Context, canonicalID string) ([]*model.Identity, error) {
	var rows []*model.Identity
	err := r.db.WithContext(ctx).
		Where("canonical_id = ?", canonicalID).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, WrapDBError(err)
	}
	return rows, nil
}

// BatchGetByCanonicalIDs 批量查多个规范身份名下的身份行
func (r *identityRepositoryImpl) BatchGetByCanonicalIDs(ctx context.Context, canonicalIDs []string) ([]*model.Identity, error) {
	if len(canonicalIDs) == 0 {
		return nil, nil
	}
	var rows []*model.Identity
	err := r.db.WithContext(ctx).
		Where("canonical_id IN ?", canonicalIDs).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, WrapDBError(err)
	}
	return rows, nil
}

// CreateRows 批量写身份行
// platform_uid 冲突时跳过：已指向某规范身份的账号永远不被改写（append-only 合并）。
func (r *identityRepositoryImpl) CreateRows(ctx context.Context, rows []*model.Identity) error {
	if len(rows) == 0 {
		return nil
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "platform_uid"}},
		DoNothing: true,
	}).Create(&rows).Error
	if err != nil {
		return WrapDBError(err)
	}

	for _, row := range rows {
		r.cacheMappingAsync(ctx, row.PlatformUid, row.CanonicalId)
	}
	return nil
}

// UpdateAvatar 更新某规范身份名下所有行的头像地址
func (r *identityRepositoryImpl) UpdateAvatar(ctx context.Context, canonicalID, avatarURL string) error {
	err := r.db.WithContext(ctx).
		Model(&model.Identity{}).
		Where("canonical_id = ?", canonicalID).
		Update("avatar_url", avatarURL).Error
	if err != nil {
		return WrapDBError(err)
	}
	return nil
}

// cacheMappingAsync 异步写 uid->canonical 映射缓存。
// 用 SETNX 语义：映射 append-only，已有值永远不被覆盖。
func (r *identityRepositoryImpl) cacheMappingAsync(ctx context.Context, platformUid, canonicalID string) {
	if r.redisClient == nil || platformUid == "" || canonicalID == "" {
		return
	}

	cacheKey := rediskey.IdentityKey(platformUid)
	async.RunSafe(ctx, func(runCtx context.Context) {
		expireSeconds := int(getRandomExpireTime(rediskey.IdentityTTL).Seconds())
		luaScript := redis.NewScript(luaSetIdentityIfAbsent)
		_, err := luaScript.Run(runCtx, r.redisClient,
			[]string{cacheKey},
			canonicalID,
			expireSeconds,
		).Result()
		if err != nil && err != redis.Nil {
			if isRedisWrongType(err) {
				_ = r.redisClient.Del(runCtx, cacheKey).Err()
				return
			}
			LogRedisError(runCtx, err)
		}
	}, 0)
}
