package repository

import (
	"context"
	"time"

	"CrewServer/model"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// crewRepositoryImpl Crew 数据访问层实现
type crewRepositoryImpl struct {
	db          *gorm.DB
	redisClient *redis.Client
}

// NewCrewRepository 创建 Crew 仓储实例
func NewCrewRepository(db *gorm.DB, redisClient *redis.Client) ICrewRepository {
	return &crewRepositoryImpl{db: db, redisClient: redisClient}
}

// CreateWithCreator 同一事务内写入 Crew 行和 creator 成员行
// creator 角色只在这里产生，是"每个 Crew 恰好一个 creator"不变式的唯一来源。
func (r *crewRepositoryImpl) CreateWithCreator(ctx context.Context, crew *model.Crew, creator *model.CrewMember) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(crew).Error; err != nil {
			return err
		}
		creator.CrewId = crew.Id
		return tx.Create(creator).Error
	})
	if err != nil {
		return WrapDBError(err)
	}
	return nil
}

// GetByID 按 id 查 Crew
func (r *crewRepositoryImpl) GetByID(ctx context.Context, crewID int64) (*model.Crew, error) {
	var crew model.Crew
	err := r.db.WithContext(ctx).
		Where("id = ?", crewID).
		First(&crew).Error
	if err != nil {
		return nil, WrapDBError(err)
	}
	return &crew, nil
}

// GetByJoinCode 按公共加入码查 Crew
func (r *crewRepositoryImpl) GetByJoinCode(ctx context.Context, code string) (*model.Crew, error) {
	var crew model.Crew
	err := r.db.WithContext(ctx).
		Where("join_code = ?", code).
		First(&crew).Error
	if err != nil {
		return nil, WrapDBError(err)
	}
	return &crew, nil
}

// UpdateSettings 更新可变设置字段
func (r *crewRepositoryImpl) UpdateSettings(ctx context.Context, crewID int64, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).
		Model(&model.Crew{}).
		Where("id = ?", crewID).
		Updates(fields).Error
	if err != nil {
		return WrapDBError(err)
	}
	return nil
}

// GetMember 查成员行
func (r *crewRepositoryImpl) GetMember(ctx context.Context, crewID int64, userID string) (*model.CrewMember, error) {
	var member model.CrewMember
	err := r.db.WithContext(ctx).
		Where("crew_id = ? AND user_id = ?", crewID, userID).
		First(&member).Error
	if err != nil {
		return nil, WrapDBError(err)
	}
	return &member, nil
}

// ListMembers 列出 Crew 全部成员
func (r *crewRepositoryImpl) ListMembers(ctx context.Context, crewID int64) ([]*model.CrewMember, error) {
	var members []*model.CrewMember
	err := r.db.WithContext(ctx).
		Where("crew_id = ?", crewID).
		Order("joined_at ASC").
		Find(&members).Error
	if err != nil {
		return nil, WrapDBError(err)
	}
	return members, nil
}

// ListMemberships 列出用户的全部成员资格
func (r *crewRepositoryImpl) ListMemberships(ctx context.Context, userID string) ([]*model.CrewMember, error) {
	var memberships []*model.CrewMember
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("joined_at ASC").
		Find(&memberships).Error
	if err != nil {
		return nil, WrapDBError(err)
	}
	return memberships, nil
}

// CountMembers 统计成员数
func (r *crewRepositoryImpl) CountMembers(ctx context.Context, crewID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.CrewMember{}).
		Where("crew_id = ?", crewID).
		Count(&count).Error
	if err != nil {
		return 0, WrapDBError(err)
	}
	return count, nil
}

// AddMember 写入成员行
// (crew, user) 冲突时 no-op：重复加入是幂等成功，由 RowsAffected 区分。
func (r *crewRepositoryImpl) AddMember(ctx context.Context, member *model.CrewMember) (bool, error) {
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "crew_id"}, {Name: "user_id"}},
		DoNothing: true,
	}).Create(member)
	if result.Error != nil {
		return false, WrapDBError(result.Error)
	}
	return result.RowsAffected > 0, nil
}

// RemoveMember 删除成员行（幂等）
func (r *crewRepositoryImpl) RemoveMember(ctx context.Context, crewID int64, userID string) error {
	err := r.db.WithContext(ctx).
		Where("crew_id = ? AND user_id = ?", crewID, userID).
		Delete(&model.CrewMember{}).Error
	if err != nil {
		return WrapDBError(err)
	}
	return nil
}

// SetMemberRole 设置成员角色
func (r *crewRepositoryImpl) SetMemberRole(ctx context.Context, crewID int64, userID string, role int8) error {
	result := r.db.WithContext(ctx).
		Model(&model.CrewMember{}).
		Where("crew_id = ? AND user_id = ?", crewID, userID).
		Update("role", role)
	if result.Error != nil {
		return WrapDBError(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// SetMemberMuted 设置成员对该 Crew 的静音标记
func (r *crewRepositoryImpl) SetMemberMuted(ctx context.Context, crewID int64, userID string, muted bool) error {
	result := r.db.WithContext(ctx).
		Model(&model.CrewMember{}).
		Where("crew_id = ? AND user_id = ?", crewID, userID).
		Update("muted", muted)
	if result.Error != nil {
		return WrapDBError(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// GetPendingRequest 查 (crew, user) 的待审批申请
func (r *crewRepositoryImpl) GetPendingRequest(ctx context.Context, crewID int64, userID string) (*model.JoinRequest, error) {
	var req model.JoinRequest
	err := r.db.WithContext(ctx).
		Where("crew_id = ? AND user_id = ? AND status = ?", crewID, userID, model.RequestStatusPending).
		First(&req).Error
	if err != nil {
		return nil, WrapDBError(err)
	}
	return &req, nil
}

// CreateRequest 写入加入申请
func (r *crewRepositoryImpl) CreateRequest(ctx context.Context, req *model.JoinRequest) error {
	err := r.db.WithContext(ctx).Create(req).Error
	if err != nil {
		return WrapDBError(err)
	}
	return nil
}

// GetRequestByID 按 id 查申请
func (r *crewRepositoryImpl) GetRequestByID(ctx context.Context, requestID int64) (*model.JoinRequest, error) {
	var req model.JoinRequest
	err := r.db.WithContext(ctx).
		Where("id = ?", requestID).
		First(&req).Error
	if err != nil {
		return nil, WrapDBError(err)
	}
	return &req, nil
}

// ReviewRequest CAS 审批
// WHERE 带 status = pending：两个管理员同时审批时只有一个成功，落败方拿到 applied=false。
func (r *crewRepositoryImpl) ReviewRequest(ctx context.Context, requestID int64, toStatus int8, reviewerID string, reviewedAt time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&model.JoinRequest{}).
		Where("id = ? AND status = ?", requestID, model.RequestStatusPending).
		Updates(map[string]interface{}{
			"status":      toStatus,
			"reviewed_by": reviewerID,
			"reviewed_at": reviewedAt,
		})
	if result.Error != nil {
		return false, WrapDBError(result.Error)
	}
	return result.RowsAffected > 0, nil
}

// ListPendingRequests 列出 Crew 的待审批申请
func (r *crewRepositoryImpl) ListPendingRequests(ctx context.Context, crewID int64) ([]*model.JoinRequest, error) {
	var reqs []*model.JoinRequest
	err := r.db.WithContext(ctx).
		Where("crew_id = ? AND status = ?", crewID, model.RequestStatusPending).
		Order("requested_at ASC").
		Find(&reqs).Error
	if err != nil {
		return nil, WrapDBError(err)
	}
	return reqs, nil
}

// GetCrewInviteByCode 按个人邀请码查记录
func (r *crewRepositoryImpl) GetCrewInviteByCode(ctx context.Context, code string) (*model.CrewInvite, error) {
	var invite model.CrewInvite
	err := r.db.WithContext(ctx).
		Where("invite_code = ?", code).
		First(&invite).Error
	if err != nil {
		return nil, WrapDBError(err)
	}
	return &invite, nil
}

// GetOrCreateCrewInvite 取 (crew, inviter) 的个人邀请码，没有则创建
func (r *crewRepositoryImpl) GetOrCreateCrewInvite(ctx context.Context, crewID int64, inviterID, code string) (*model.CrewInvite, error) {
	invite := &model.CrewInvite{
		CrewId:     crewID,
		InviterId:  inviterID,
		InviteCode: code,
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "crew_id"}, {Name: "inviter_id"}},
		DoNothing: true,
	}).Create(invite).Error
	if err != nil {
		return nil, WrapDBError(err)
	}

	var current model.CrewInvite
	err = r.db.WithContext(ctx).
		Where("crew_id = ? AND inviter_id = ?", crewID, inviterID).
		First(&current).Error
	if err != nil {
		return nil, WrapDBError(err)
	}
	return &current, nil
}

// IncrementInviteUses 归因计数 +1
func (r *crewRepositoryImpl) IncrementInviteUses(ctx context.Context, inviteID int64) error {
	err := r.db.WithContext(ctx).
		Model(&model.CrewInvite{}).
		Where("id = ?", inviteID).
		Update("uses", gorm.Expr("uses + 1")).Error
	if err != nil {
		return WrapDBError(err)
	}
	return nil
}
