package model

import (
	"time"
)

// Crew 活动小队。
// 本范围内不做硬删除；过期（is_temporary && expires_at < now）只在加入时检查。
type Crew struct {
	Id          int64      `gorm:"column:id;primaryKey;comment:雪花id"`
	Name        string     `gorm:"column:name;type:varchar(64);not null;comment:名称(不含前导emoji)"`
	Emoji       string     `gorm:"column:emoji;type:varchar(16);not null;comment:标志emoji"`
	CreatedBy   string     `gorm:"column:created_by;type:varchar(64);not null;index;comment:创建者规范id"`
	JoinCode    string     `gorm:"column:join_code;type:varchar(32);not null;uniqueIndex;comment:公共加入码"`
	JoinMode    int8       `gorm:"column:join_mode;not null;default:0;comment:加入策略 0.开放 1.审批 2.关闭"`
	MaxMembers  int        `gorm:"column:max_members;not null;default:50;comment:成员上限"`
	IsPublic    bool       `gorm:"column:is_public;not null;default:true;comment:是否公开可发现"`
	IsTemporary bool       `gorm:"column:is_temporary;not null;default:false;comment:是否临时(随活动过期)"`
	ExpiresAt   *time.Time `gorm:"column:expires_at;comment:过期时间"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
}

func (Crew) TableName() string { return "crew" }

const (
	// JoinModeOpen 开放：凭加入码直接加入
	JoinModeOpen int8 = 0
	// JoinModeApproval 审批：加入码只产生待审批申请
	JoinModeApproval int8 = 1
	// JoinModeClosed 关闭：不接受任何加入
	JoinModeClosed int8 = 2
)

// CrewMember Crew 成员资格。
// 约束：每个 Crew 恰好一个 creator，只由建队操作写入；
// promote/demote 永远不触碰 creator 那一行。
type CrewMember struct {
	Id       int64     `gorm:"column:id;primaryKey;autoIncrement"`
	CrewId   int64     `gorm:"column:crew_id;not null;uniqueIndex:uidx_crew_user;index;comment:crew id"`
	UserId   string    `gorm:"column:user_id;type:varchar(64);not null;uniqueIndex:uidx_crew_user;index;comment:成员规范id"`
	Role     int8      `gorm:"column:role;not null;default:1;comment:角色 1.成员 2.管理员 3.创建者"`
	Muted    bool      `gorm:"column:muted;not null;default:false;comment:本人是否静音该crew"`
	JoinedAt time.Time `gorm:"column:joined_at;autoCreateTime"`
}

func (CrewMember) TableName() string { return "crew_member" }

// 角色等级，权限判断用整数比较：creator > admin > member，非成员为 0。
const (
	RoleMember  int8 = 1
	RoleAdmin   int8 = 2
	RoleCreator int8 = 3
)

// JoinRequest 审批制 Crew 的加入申请。
// 同一 (crew, user) 最多一条 pending；approved/denied 是终态。
type JoinRequest struct {
	Id          int64      `gorm:"column:id;primaryKey;comment:雪花id"`
	CrewId      int64      `gorm:"column:crew_id;not null;index:idx_crew_status;comment:crew id"`
	UserId      string     `gorm:"column:user_id;type:varchar(64);not null;index;comment:申请人规范id"`
	Status      int8       `gorm:"column:status;not null;default:0;index:idx_crew_status;comment:状态 0.待审批 1.通过 2.拒绝"`
	RequestedAt time.Time  `gorm:"column:requested_at;autoCreateTime"`
	ReviewedBy  string     `gorm:"column:reviewed_by;type:varchar(64);comment:审批人规范id"`
	ReviewedAt  *time.Time `gorm:"column:reviewed_at;comment:审批时间"`
}

func (JoinRequest) TableName() string { return "join_request" }

const (
	// RequestStatusPending 待审批
	RequestStatusPending int8 = 0
	// RequestStatusApproved 已通过
	RequestStatusApproved int8 = 1
	// RequestStatusDenied 已拒绝
	RequestStatusDenied int8 = 2
)

// CrewInvite 成员个人邀请码。
// 每个 (crew, inviter) 一条；uses 只用于归因计分，不做访问控制。
// 凭个人码加入可以绕过审批模式（视为成员直接拉人）。
type CrewInvite struct {
	Id         int64     `gorm:"column:id;primaryKey;autoIncrement"`
	CrewId     int64     `gorm:"column:crew_id;not null;uniqueIndex:uidx_crew_inviter;comment:crew id"`
	InviterId  string    `gorm:"column:inviter_id;type:varchar(64);not null;uniqueIndex:uidx_crew_inviter;comment:邀请人规范id"`
	InviteCode string    `gorm:"column:invite_code;type:varchar(32);not null;uniqueIndex;comment:个人邀请码"`
	Uses       int       `gorm:"column:uses;not null;default:0;comment:归因加入次数"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (CrewInvite) TableName() string { return "crew_invite" }
