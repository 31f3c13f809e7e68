package model

import (
	"time"
)

// Attendance 出勤台账：每用户每活动一条 RSVP 记录。
// (user_id, event_id) 上做 upsert，取消 RSVP 时整行删除。
type Attendance struct {
	Id         int64      `gorm:"column:id;primaryKey;autoIncrement"`
	UserId     string     `gorm:"column:user_id;type:varchar(64);not null;uniqueIndex:uidx_user_event;comment:用户规范id"`
	EventId    string     `gorm:"column:event_id;type:varchar(64);not null;uniqueIndex:uidx_user_event;index;comment:活动id"`
	EventName  string     `gorm:"column:event_name;type:varchar(128);comment:活动名称快照"`
	EventDate  *time.Time `gorm:"column:event_date;index;comment:活动开始时间快照"`
	EventVenue string     `gorm:"column:event_venue;type:varchar(128);comment:场地快照"`
	Status     int8       `gorm:"column:status;not null;default:0;comment:RSVP状态 0.去 1.可能去"`
	Visibility int8       `gorm:"column:visibility;not null;default:0;comment:可见范围 0.社交流 1.仅自己"`
	UpdatedAt  time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (Attendance) TableName() string { return "attendance" }

const (
	// RsvpGoing 确定参加
	RsvpGoing int8 = 0
	// RsvpMaybe 可能参加
	RsvpMaybe int8 = 1
)

const (
	// VisibilityFlow 对社交流可见（默认）
	VisibilityFlow int8 = 0
	// VisibilityPrivate 仅自己可见
	VisibilityPrivate int8 = 1
)
