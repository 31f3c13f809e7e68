package repository

import (
	"context"
	"time"

	"CrewServer/model"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// attendanceRepositoryImpl 出勤台账数据访问层实现
type attendanceRepositoryImpl struct {
	db          *gorm.DB
	redisClient *redis.Client
}

// NewAttendanceRepository 创建出勤仓储实例
func NewAttendanceRepository(db *gorm.DB, redisClient *redis.Client) IAttendanceRepository {
	return &attendanceRepositoryImpl{db: db, redisClient: redisClient}
}

// Upsert 按 (user, event) 插入或更新 RSVP
func (r *attendanceRepositoryImpl) Upsert(ctx context.Context, att *model.Attendance) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "event_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"status":      att.Status,
			"visibility":  att.Visibility,
			"event_name":  att.EventName,
			"event_date":  att.EventDate,
			"event_venue": att.EventVenue,
			"updated_at":  time.Now(),
		}),
	}).Create(att).Error
	if err != nil {
		return WrapDBError(err)
	}
	return nil
}

// Delete 删除 RSVP（幂等）
func (r *attendanceRepositoryImpl) Delete(ctx context.Context, userID, eventID string) error {
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND event_id = ?", userID, eventID).
		Delete(&model.Attendance{}).Error
	if err != nil {
		return WrapDBError(err)
	}
	return nil
}

// Get 查单条 RSVP
func (r *attendanceRepositoryImpl) Get(ctx context.Context, userID, eventID string) (*model.Attendance, error) {
	var att model.Attendance
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND event_id = ?", userID, eventID).
		First(&att).Error
	if err != nil {
		return nil, WrapDBError(err)
	}
	return &att, nil
}

// ListByEventForUsers 查指定用户集合对某活动的 RSVP
// 只返回社交流可见的行；仅自己可见的 RSVP 不进别人的名单。
func (r *attendanceRepositoryImpl) ListByEventForUsers(ctx context.Context, eventID string, userIDs []string) ([]*model.Attendance, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}

	var rows []*model.Attendance
	err := r.db.WithContext(ctx).
		Where("event_id = ? AND user_id IN ? AND visibility = ?",
			eventID, userIDs, model.VisibilityFlow).
		Find(&rows).Error
	if err != nil {
		return nil, WrapDBError(err)
	}
	return rows, nil
}

// ListUpcomingForUsers 查指定用户集合未来的全部 RSVP
func (r *attendanceRepositoryImpl) ListUpcomingForUsers(ctx context.Context, userIDs []string, now time.Time) ([]*model.Attendance, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}

	var rows []*model.Attendance
	err := r.db.WithContext(ctx).
		Where("user_id IN ? AND visibility = ? AND event_date IS NOT NULL AND event_date > ?",
			userIDs, model.VisibilityFlow, now).
		Order("event_date ASC").
		Find(&rows).Error
	if err != nil {
		return nil, WrapDBError(err)
	}
	return rows, nil
}
