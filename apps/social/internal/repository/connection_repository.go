package repository

import (
	"context"
	"time"

	"CrewServer/model"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// connectionRepositoryImpl 好友关系数据访问层实现
type connectionRepositoryImpl struct {
	db          *gorm.DB
	redisClient *redis.Client
}

// NewConnectionRepository 创建好友关系仓储实例
func NewConnectionRepository(db *gorm.DB, redisClient *redis.Client) IConnectionRepository {
	return &connectionRepositoryImpl{db: db, redisClient: redisClient}
}

// GetInviteByUser 查用户的邀请码
func (r *connectionRepositoryImpl) GetInviteByUser(ctx context.Context, userID string) (*model.FriendInvite, error) {
	var invite model.FriendInvite
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&invite).Error
	if err != nil {
		return nil, WrapDBError(err)
	}
	return &invite, nil
}

// CreateInvite 创建邀请码
// user_id 冲突时跳过并回读已有记录，保证码在多次调用间稳定。
func (r *connectionRepositoryImpl) CreateInvite(ctx context.Context, invite *model.FriendInvite) (*model.FriendInvite, error) {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(invite).Error
	if err != nil {
		return nil, WrapDBError(err)
	}

	// 无论是否冲突都回读一次，拿到最终生效的那条
	var current model.FriendInvite
	err = r.db.WithContext(ctx).
		Where("user_id = ?", invite.UserId).
		First(&current).Error
	if err != nil {
		return nil, WrapDBError(err)
	}
	return &current, nil
}

// GetInviteByCode 按码查邀请人
func (r *connectionRepositoryImpl) GetInviteByCode(ctx context.Context, code string) (*model.FriendInvite, error) {
	var invite model.FriendInvite
	err := r.db.WithContext(ctx).
		Where("code = ?", code).
		First(&invite).Error
	if err != nil {
		return nil, WrapDBError(err)
	}
	return &invite, nil
}

// CreateRelation 建立双向好友关系
// 两行一批 upsert：
//   - 原子性：不存在"查不到然后插入报错"的时间差
//   - 恢复：软删除/静音过的方向统一拉回 active，并共享同一 acceptedAt
func (r *connectionRepositoryImpl) CreateRelation(ctx context.Context, userID, friendID string, acceptedAt time.Time) error {
	rows := []*model.Connection{
		{
			UserId:     userID,
			FriendId:   friendID,
			Status:     model.ConnStatusActive,
			AcceptedAt: &acceptedAt,
		},
		{
			UserId:     friendID,
			FriendId:   userID,
			Status:     model.ConnStatusActive,
			AcceptedAt: &acceptedAt,
		},
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "friend_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"status":      model.ConnStatusActive,
			"accepted_at": acceptedAt,
			"deleted_at":  nil, // 恢复软删除
		}),
	}).Create(&rows).Error
	if err != nil {
		return WrapDBError(err)
	}
	return nil
}

// DeleteRelation 删除双向好友关系（幂等）
func (r *connectionRepositoryImpl) DeleteRelation(ctx context.Context, userID, friendID string) error {
	err := r.db.WithContext(ctx).
		Where("(user_id = ? AND friend_id = ?) OR (user_id = ? AND friend_id = ?)",
			userID, friendID, friendID, userID).
		Delete(&model.Connection{}).Error
	if err != nil {
		return WrapDBError(err)
	}
	// RowsAffected == 0 也算成功：对端不存在即目标状态已达成
	return nil
}

// GetRelation 查单向关系行
func (r *connectionRepositoryImpl) GetRelation(ctx context.Context, userID, friendID string) (*model.Connection, error) {
	var row model.Connection
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND friend_id = ?", userID, friendID).
		First(&row).Error
	if err != nil {
		return nil, WrapDBError(err)
	}
	return &row, nil
}

// SetStatus 设置单向关系状态（静音只动本侧那一行）
func (r *connectionRepositoryImpl) SetStatus(ctx context.Context, userID, friendID string, status int8) error {
	result := r.db.WithContext(ctx).
		Model(&model.Connection{}).
		Where("user_id = ? AND friend_id = ?", userID, friendID).
		Update("status", status)
	if result.Error != nil {
		return WrapDBError(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// ListByUser 列出用户视角的全部关系行（active/muted）
func (r *connectionRepositoryImpl) ListByUser(ctx context.Context, userID string) ([]*model.Connection, error) {
	var rows []*model.Connection
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status IN ?", userID,
			[]int8{model.ConnStatusActive, model.ConnStatusMuted}).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, WrapDBError(err)
	}
	return rows, nil
}

// ListActivePeers 列出「把 userID 视为 active 好友」的对侧用户 id
// 查的是对侧行（friend_id = userID）：静音是非对称的，
// 对侧静音了 userID 时那行状态是 muted，自然被排除。
func (r *connectionRepositoryImpl) ListActivePeers(ctx context.Context, userID string) ([]string, error) {
	var peers []string
	err := r.db.WithContext(ctx).
		Model(&model.Connection{}).
		Where("friend_id = ? AND status = ?", userID, model.ConnStatusActive).
		Pluck("user_id", &peers).Error
	if err != nil {
		return nil, WrapDBError(err)
	}
	return peers, nil
}
