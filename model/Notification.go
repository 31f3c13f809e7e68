package model

import (
	"time"
)

// ==================== 通知类型 ====================

// 通知类型用字符串存储，直接进入去重键，保持可读。
const (
	NotifyTypeCrewCheckin   = "crew_checkin"   // 队友到场签到
	NotifyTypeFriendRsvp    = "friend_rsvp"    // 好友 RSVP
	NotifyTypeCrewRsvp      = "crew_rsvp"      // 队友 RSVP
	NotifyTypeCrewJoin      = "crew_join"      // 新成员加入
	NotifyTypeLocate        = "locate"         // 位置呼叫
	NotifyTypeEventReminder = "event_reminder" // 活动提醒
	NotifyTypeDailyDigest   = "daily_digest"   // 每日摘要
)

// NotificationLog 通知去重台账。
// 唯一键是四元组 (recipient, type, reference, triggered_by)：
// 同一触发者对同一收件人、就同一事件、以同一类型，至多投递一次。
// 只追加，从不更新；冲突插入是 no-op（见仓储层 OnConflict DoNothing）。
type NotificationLog struct {
	Id          int64     `gorm:"column:id;primaryKey;comment:雪花id"`
	RecipientId string    `gorm:"column:recipient_id;type:varchar(64);not null;uniqueIndex:uidx_dedup;index;comment:收件人规范id"`
	NotifyType  string    `gorm:"column:notify_type;type:varchar(32);not null;uniqueIndex:uidx_dedup;comment:通知类型"`
	ReferenceId string    `gorm:"column:reference_id;type:varchar(64);not null;uniqueIndex:uidx_dedup;comment:事件引用id"`
	TriggeredBy string    `gorm:"column:triggered_by;type:varchar(64);not null;uniqueIndex:uidx_dedup;comment:触发者规范id"`
	SentAt      time.Time `gorm:"column:sent_at;autoCreateTime;index;comment:投递时间"`
}

func (NotificationLog) TableName() string { return "notification_log" }

// NotificationPreference 每用户通知偏好。
// 缺省值固定：全部开关开启 / 每日上限 10 / 免打扰关闭 22-8。
// 没有记录时用 DefaultPreference 兜底，逻辑里不出现"字段缺失"分支。
type NotificationPreference struct {
	Id                  int64     `gorm:"column:id;primaryKey;autoIncrement"`
	UserId              string    `gorm:"column:user_id;type:varchar(64);not null;uniqueIndex;comment:用户规范id"`
	NotifyCrewCheckins  bool      `gorm:"column:notify_crew_checkins;not null;default:true"`
	NotifyFriendRsvps   bool      `gorm:"column:notify_friend_rsvps;not null;default:true"`
	NotifyCrewRsvps     bool      `gorm:"column:notify_crew_rsvps;not null;default:true"`
	NotifyEventReminder bool      `gorm:"column:notify_event_reminders;not null;default:true"`
	NotifyDailyDigest   bool      `gorm:"column:notify_daily_digest;not null;default:true"`
	DailyLimit          int       `gorm:"column:daily_limit;not null;default:10;comment:每日通知上限"`
	QuietHoursEnabled   bool      `gorm:"column:quiet_hours_enabled;not null;default:false"`
	QuietHoursStart     int       `gorm:"column:quiet_hours_start;not null;default:22;comment:免打扰开始小时"`
	QuietHoursEnd       int       `gorm:"column:quiet_hours_end;not null;default:8;comment:免打扰结束小时"`
	Timezone            string    `gorm:"column:timezone;type:varchar(64);not null;default:'UTC';comment:IANA时区"`
	UpdatedAt           time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (NotificationPreference) TableName() string { return "notification_preference" }

// DefaultPreference 返回指定用户的缺省偏好。
func DefaultPreference(userID string) *NotificationPreference {
	return &NotificationPreference{
		UserId:              userID,
		NotifyCrewCheckins:  true,
		NotifyFriendRsvps:   true,
		NotifyCrewRsvps:     true,
		NotifyEventReminder: true,
		NotifyDailyDigest:   true,
		DailyLimit:          10,
		QuietHoursEnabled:   false,
		QuietHoursStart:     22,
		QuietHoursEnd:       8,
		Timezone:            "UTC",
	}
}

// EventReminder 活动提醒登记。
// 周期扫描把落在当前处理窗口内的行投递并置为 sent；
// 即使用户偏好关闭了提醒也会置 sent —— 一条提醒只消费一次，不会每轮重评。
type EventReminder struct {
	Id            int64     `gorm:"column:id;primaryKey;comment:雪花id"`
	UserId        string    `gorm:"column:user_id;type:varchar(64);not null;index;comment:用户规范id"`
	EventSourceId string    `gorm:"column:event_source_id;type:varchar(64);not null;comment:活动源id"`
	RemindBefore  int       `gorm:"column:remind_minutes_before;not null;default:60;comment:提前分钟数"`
	Sent          bool      `gorm:"column:sent;not null;default:false;index;comment:是否已消费"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (EventReminder) TableName() string { return "event_reminder" }
