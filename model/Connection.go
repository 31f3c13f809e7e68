package model

import (
	"time"

	"gorm.io/gorm"
)

// Connection 维护用户之间的好友关系。
// 每对已确认的好友存两行（每个方向一行），两侧的状态互相独立：
// A 静音 B 只改 A 侧那一行，B 看 A 完全不受影响。
// 约束：uniqueIndex:uidx_user_friend 确保同一方向不重复。
type Connection struct {
	Id         int64          `gorm:"column:id;primaryKey;autoIncrement;comment:自增id"`
	UserId     string         `gorm:"column:user_id;type:varchar(64);not null;uniqueIndex:uidx_user_friend;index;comment:本侧用户规范id"`
	FriendId   string         `gorm:"column:friend_id;type:varchar(64);not null;uniqueIndex:uidx_user_friend;index;comment:对侧用户规范id"`
	Status     int8           `gorm:"column:status;not null;default:0;comment:关系状态 0.待确认 1.正常 2.静音 3.屏蔽"`
	CreatedAt  time.Time      `gorm:"column:created_at;autoCreateTime"`
	AcceptedAt *time.Time     `gorm:"column:accepted_at;comment:接受邀请时间,双向两行共享同一值"`
	DeletedAt  gorm.DeletedAt `gorm:"column:deleted_at;index"`
}

func (Connection) TableName() string { return "connection" }

const (
	// ConnStatusPending 待确认
	ConnStatusPending int8 = 0
	// ConnStatusActive 正常
	ConnStatusActive int8 = 1
	// ConnStatusMuted 静音（本侧不再收到对方的社交通知）
	ConnStatusMuted int8 = 2
	// ConnStatusBlocked 屏蔽
	ConnStatusBlocked int8 = 3
)

// FriendInvite 好友邀请码。
// 每个用户一条，多次获取返回同一个码。
type FriendInvite struct {
	Id        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	UserId    string    `gorm:"column:user_id;type:varchar(64);not null;uniqueIndex;comment:邀请人规范id"`
	Code      string    `gorm:"column:code;type:varchar(32);not null;uniqueIndex;comment:邀请码"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (FriendInvite) TableName() string { return "friend_invite" }
