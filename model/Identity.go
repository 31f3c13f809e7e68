package model

import (
	"time"
)

// Identity 平台账号到规范身份的映射表。
// 一个真人（canonical_id）可以对应多条记录，每条是一个平台账号。
// 约束：platform_user_id 全局唯一 —— 任一平台账号在任一时刻只指向一个规范身份。
// 映射是 append-only 的：合并只新增行，从不改写既有行的 canonical_id。
type Identity struct {
	Id           int64     `gorm:"column:id;primaryKey;autoIncrement;comment:自增id"`
	CanonicalId  string    `gorm:"column:canonical_id;type:varchar(64);not null;index;comment:规范身份id"`
	Platform     string    `gorm:"column:platform;type:varchar(16);not null;comment:平台前缀(tg/app/mail)"`
	PlatformUid  string    `gorm:"column:platform_uid;type:varchar(64);not null;uniqueIndex:uidx_platform_uid;comment:平台内用户id(带前缀)"`
	FederationId string    `gorm:"column:federation_id;type:varchar(64);comment:外部联邦服务返回的关联id"`
	DisplayName  string    `gorm:"column:display_name;type:varchar(64);comment:展示名"`
	AvatarUrl    string    `gorm:"column:avatar_url;type:varchar(256);comment:头像地址"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Identity) TableName() string { return "identity" }
