package repository

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	rediskey "CrewServer/consts/redisKey"
	"CrewServer/model"
	"CrewServer/pkg/async"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// notifyRepositoryImpl 通知台账与偏好数据访问层实现
type notifyRepositoryImpl struct {
	db          *gorm.DB
	redisClient *redis.Client
}

// NewNotifyRepository 创建通知仓储实例
func NewNotifyRepository(db *gorm.DB, redisClient *redis.Client) INotifyRepository {
	return &notifyRepositoryImpl{db: db, redisClient: redisClient}
}

// GetPreference 查用户偏好
// 缓存旁路：命中空值标记说明用户从未配置过，直接给 DefaultPreference。
// 无记录时返回 DefaultPreference：偏好缺失是 typed default，不是错误分支。
func (r *notifyRepositoryImpl) GetPreference(ctx context.Context, userID string) (*model.NotificationPreference, error) {
	cacheKey := rediskey.PreferenceKey(userID)

	if r.redisClient != nil {
		val, err := r.redisClient.Get(ctx, cacheKey).Result()
		if err == nil {
			if val == "" {
				return model.DefaultPreference(userID), nil
			}
			var cached model.NotificationPreference
			if jsonErr := json.Unmarshal([]byte(val), &cached); jsonErr == nil {
				return &cached, nil
			}
			// 反序列化失败视为脏缓存，删掉回源
			_ = r.redisClient.Del(ctx, cacheKey).Err()
		} else if err != redis.Nil {
			LogRedisError(ctx, err)
		}
	}

	var pref model.NotificationPreference
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&pref).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.cachePreferenceAsync(ctx, cacheKey, nil)
			return model.DefaultPreference(userID), nil
		}
		return nil, WrapDBError(err)
	}

	r.cachePreferenceAsync(ctx, cacheKey, &pref)
	return &pref, nil
}

// cachePreferenceAsync 尽力而为回填偏好缓存；pref 为 nil 时写空值标记
func (r *notifyRepositoryImpl) cachePreferenceAsync(ctx context.Context, cacheKey string, pref *model.NotificationPreference) {
	if r.redisClient == nil {
		return
	}

	var payload string
	ttl := rediskey.PreferenceEmptyTTL
	if pref != nil {
		data, err := json.Marshal(pref)
		if err != nil {
			return
		}
		payload = string(data)
		ttl = rediskey.PreferenceTTL
	}

	async.RunSafe(ctx, func(runCtx context.Context) {
		err := r.redisClient.Set(runCtx, cacheKey, payload, getRandomExpireTime(ttl)).Err()
		if err != nil {
			LogRedisError(runCtx, err)
		}
	}, 0)
}

// UpsertPreference 写入/更新用户偏好，并失效缓存
func (r *notifyRepositoryImpl) UpsertPreference(ctx context.Context, pref *model.NotificationPreference) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"notify_crew_checkins", "notify_friend_rsvps", "notify_crew_rsvps",
			"notify_event_reminders", "notify_daily_digest",
			"daily_limit", "quiet_hours_enabled", "quiet_hours_start", "quiet_hours_end",
			"timezone", "updated_at",
		}),
	}).Create(pref).Error
	if err != nil {
		return WrapDBError(err)
	}

	// 删缓存而不是写缓存：下次读重新回填，避免并发写序问题
	if r.redisClient != nil {
		cacheKey := rediskey.PreferenceKey(pref.UserId)
		async.RunSafe(ctx, func(runCtx context.Context) {
			if err := r.redisClient.Del(runCtx, cacheKey).Err(); err != nil {
				LogRedisError(runCtx, err)
			}
		}, 0)
	}
	return nil
}

// HasLogEntry 查去重台账是否已有四元组记录
func (r *notifyRepositoryImpl) HasLogEntry(ctx context.Context, recipientID, notifyType, referenceID, triggeredBy string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.NotificationLog{}).
		Where("recipient_id = ? AND notify_type = ? AND reference_id = ? AND triggered_by = ?",
			recipientID, notifyType, referenceID, triggeredBy).
		Count(&count).Error
	if err != nil {
		return false, WrapDBError(err)
	}
	return count > 0, nil
}

// ListLoggedRecipients 查已被记录的收件人集合（候选集扣减用）
func (r *notifyRepositoryImpl) ListLoggedRecipients(ctx context.Context, notifyTypes []string, referenceID, triggeredBy string) (map[string]bool, error) {
	if len(notifyTypes) == 0 {
		return map[string]bool{}, nil
	}

	var recipients []string
	err := r.db.WithContext(ctx).
		Model(&model.NotificationLog{}).
		Where("notify_type IN ? AND reference_id = ? AND triggered_by = ?",
			notifyTypes, referenceID, triggeredBy).
		Pluck("recipient_id", &recipients).Error
	if err != nil {
		return nil, WrapDBError(err)
	}

	logged := make(map[string]bool, len(recipients))
	for _, recipient := range recipients {
		logged[recipient] = true
	}
	return logged, nil
}

// InsertLog 写入去重台账
// 四元组冲突时 DoNothing：并发双写只留一条，"check-then-log" 竞态无害化。
func (r *notifyRepositoryImpl) InsertLog(ctx context.Context, entry *model.NotificationLog) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "recipient_id"}, {Name: "notify_type"},
			{Name: "reference_id"}, {Name: "triggered_by"},
		},
		DoNothing: true,
	}).Create(entry).Error
	if err != nil {
		return WrapDBError(err)
	}
	return nil
}

// CountSentToday 统计收件人自本地午夜以来的已发送条数
// 优先读 Redis 计数；未命中回源台账 COUNT 并回填（key 里带本地日期，自然隔日归零）。
func (r *notifyRepositoryImpl) CountSentToday(ctx context.Context, recipientID string, localMidnight time.Time, localDate string) (int64, error) {
	cacheKey := rediskey.NotifyDailyCountKey(recipientID, localDate)

	if r.redisClient != nil {
		val, err := r.redisClient.Get(ctx, cacheKey).Result()
		if err == nil {
			if count, convErr := strconv.ParseInt(val, 10, 64); convErr == nil {
				return count, nil
			}
		} else if err != redis.Nil {
			LogRedisError(ctx, err)
		}
	}

	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.NotificationLog{}).
		Where("recipient_id = ? AND sent_at >= ?", recipientID, localMidnight).
		Count(&count).Error
	if err != nil {
		return 0, WrapDBError(err)
	}

	if r.redisClient != nil {
		seeded := count
		async.RunSafe(ctx, func(runCtx context.Context) {
			err := r.redisClient.Set(runCtx, cacheKey, seeded,
				getRandomExpireTime(rediskey.NotifyDailyCountTTL)).Err()
			if err != nil {
				LogRedisError(runCtx, err)
			}
		}, 0)
	}

	return count, nil
}

// IncrDailyCount 当日计数 +1（尽力而为）
// 仅在 key 存在时自增：key 不存在说明还没人读过，下次 CountSentToday
// 会从台账重算，本次发送的那条日志自然被算进去。
func (r *notifyRepositoryImpl) IncrDailyCount(ctx context.Context, recipientID, localDate string) {
	if r.redisClient == nil {
		return
	}

	cacheKey := rediskey.NotifyDailyCountKey(recipientID, localDate)
	async.RunSafe(ctx, func(runCtx context.Context) {
		expireSeconds := int(getRandomExpireTime(rediskey.NotifyDailyCountTTL).Seconds())
		luaScript := redis.NewScript(luaIncrIfExists)
		_, err := luaScript.Run(runCtx, r.redisClient,
			[]string{cacheKey},
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

// CreateReminder 登记活动提醒
func (r *notifyRepositoryImpl) CreateReminder(ctx context.Context, reminder *model.EventReminder) error {
	err := r.db.WithContext(ctx).Create(reminder).Error
	if err != nil {
		return WrapDBError(err)
	}
	return nil
}

// ListUnsentReminders 列出未消费的提醒
func (r *notifyRepositoryImpl) ListUnsentReminders(ctx context.Context) ([]*model.EventReminder, error) {
	var reminders []*model.EventReminder
	err := r.db.WithContext(ctx).
		Where("sent = ?", false).
		Find(&reminders).Error
	if err != nil {
		return nil, WrapDBError(err)
	}
	return reminders, nil
}

// MarkReminderSent 置提醒为已消费
func (r *notifyRepositoryImpl) MarkReminderSent(ctx context.Context, reminderID int64) error {
	err := r.db.WithContext(ctx).
		Model(&model.EventReminder{}).
		Where("id = ?", reminderID).
		Update("sent", true).Error
	if err != nil {
		return WrapDBError(err)
	}
	return nil
}
