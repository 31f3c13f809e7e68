package service

import (
	"context"
	"io"
	"time"

	"CrewServer/model"
)

// ==================== 身份服务 ====================

// IdentityHints 首次解析身份时可附带的展示信息
type IdentityHints struct {
	DisplayName string
	AvatarUrl   string
}

type IIdentityService interface {
	// ResolveCanonicalID 把平台侧用户标识解析为规范身份
	// 本地未见过的标识会先问联邦层，再落库
	ResolveCanonicalID(ctx context.Context, platformUid string, hints *IdentityHints) (string, error)
	// LinkedIdentities 列出规范身份名下的全部平台身份行
	LinkedIdentities(ctx context.Context, canonicalID string) ([]*model.Identity, error)
	// SetAvatar 上传头像并更新该身份全部行的头像地址
	SetAvatar(ctx context.Context, canonicalID string, reader io.Reader, size int64, contentType string) (string, error)
	// DisplayNames 批量取规范身份的展示名，缺失时回退为身份标识本身
	DisplayNames(ctx context.Context, canonicalIDs []string) (map[string]string, error)
}

// ==================== 好友服务 ====================

// FriendEntry 好友列表条目
type FriendEntry struct {
	UserId      string `json:"userId"`
	DisplayName string `json:"displayName"`
	Muted       bool   `json:"muted"`
}

// CrewSummary 用户视角的 Crew 概要
type CrewSummary struct {
	CrewId      int64  `json:"crewId,string"`
	Name        string `json:"name"`
	Emoji       string `json:"emoji"`
	Role        int8   `json:"role"`
	Muted       bool   `json:"muted"`
	MemberCount int64  `json:"memberCount"`
}

// FlowList 好友加 Crew 的完整关系视图
type FlowList struct {
	Friends []*FriendEntry `json:"friends"`
	Crews   []*CrewSummary `json:"crews"`
}

type IConnectionService interface {
	// Invite 取（或生成）本人的好友邀请码，可重复分享
	Invite(ctx context.Context, userID string) (string, error)
	// AcceptInvite 凭邀请码建立双向好友关系，重复接受幂等
	AcceptInvite(ctx context.Context, userID, code string) error
	// Remove 解除双向好友关系
	Remove(ctx context.Context, userID, friendID string) error
	// ToggleMute 静音/取消静音某个好友，返回切换后的静音态
	ToggleMute(ctx context.Context, userID, friendID string) (bool, error)
	// List 返回好友与 Crew 的完整关系视图
	List(ctx context.Context, userID string) (*FlowList, error)
}

// ==================== Crew 服务 ====================

// CrewInfo Crew 对外信息
type CrewInfo struct {
	CrewId     int64      `json:"crewId,string"`
	Name       string     `json:"name"`
	Emoji      string     `json:"emoji"`
	JoinCode   string     `json:"joinCode"`
	JoinLink   string     `json:"joinLink"`
	JoinMode   int8       `json:"joinMode"`
	IsPublic   bool       `json:"isPublic"`
	MaxMembers int        `json:"maxMembers"`
	ExpiresAt  *time.Time `json:"expiresAt,omitempty"`
}

// JoinOutcome 加入请求的三种结局
type JoinOutcome int8

const (
	JoinedDirect  JoinOutcome = iota // 直接入团
	JoinPending                      // 进入待审批
	AlreadyMember                    // 本就在团内
)

// JoinResult 加入操作的结果
type JoinResult struct {
	Outcome JoinOutcome `json:"outcome"`
	Crew    *CrewInfo   `json:"crew"`
}

// MemberInfo 成员列表条目
type MemberInfo struct {
	UserId      string    `json:"userId"`
	DisplayName string    `json:"displayName"`
	Role        int8      `json:"role"`
	Muted       bool      `json:"muted"`
	JoinedAt    time.Time `json:"joinedAt"`
}

// PendingRequest 待审批的入团申请
type PendingRequest struct {
	RequestId   int64     `json:"requestId,string"`
	UserId      string    `json:"userId"`
	DisplayName string    `json:"displayName"`
	CreatedAt   time.Time `json:"createdAt"`
}

// CrewOptions 建团可选项
type CrewOptions struct {
	IsPublic    bool
	IsTemporary bool
	ExpiresAt   *time.Time
	MaxMembers  int
}

// SettingsUpdate 管理员可改的团设置，nil 字段表示不动
type SettingsUpdate struct {
	IsPublic *bool
	JoinMode *int8
}

type ICrewService interface {
	// Create 建团，团名首个 emoji 会被摘出来当团徽
	Create(ctx context.Context, creatorID, name string, opts *CrewOptions) (*CrewInfo, error)
	// Join 凭成员邀请码或公共加入码入团
	Join(ctx context.Context, userID, code string) (*JoinResult, error)
	// RequestJoin 对审批制团提交入团申请
	RequestJoin(ctx context.Context, userID string, crewID int64) (*JoinResult, error)
	// Approve 审批通过入团申请（管理员及以上）
	Approve(ctx context.Context, reviewerID string, requestID int64) error
	// Deny 驳回入团申请（管理员及以上）
	Deny(ctx context.Context, reviewerID string, requestID int64) error
	// PendingRequests 列出团内待审批申请（管理员及以上）
	PendingRequests(ctx context.Context, reviewerID string, crewID int64) ([]*PendingRequest, error)
	// Promote 提拔为管理员（仅创建者）
	Promote(ctx context.Context, actorID string, crewID int64, targetID string) error
	// Demote 降回普通成员（仅创建者）
	Demote(ctx context.Context, actorID string, crewID int64, targetID string) error
	// UpdateSettings 修改团的公开性与加入方式（管理员及以上）
	UpdateSettings(ctx context.Context, actorID string, crewID int64, update *SettingsUpdate) (*CrewInfo, error)
	// Leave 退团，创建者不可退
	Leave(ctx context.Context, userID string, crewID int64) error
	// Kick 移出成员（管理员及以上，且职级须高于对方）
	Kick(ctx context.Context, actorID string, crewID int64, targetID string) error
	// MemberInvite 取（或生成）成员个人的入团邀请码
	MemberInvite(ctx context.Context, userID string, crewID int64) (string, error)
	// Members 列出团成员（仅成员可见）
	Members(ctx context.Context, userID string, crewID int64) ([]*MemberInfo, error)
	// ToggleCrewMute 静音/取消静音某个团，返回切换后的静音态
	ToggleCrewMute(ctx context.Context, userID string, crewID int64) (bool, error)
	// Info 查看团信息（仅成员可见）
	Info(ctx context.Context, userID string, crewID int64) (*CrewInfo, error)
}

// ==================== 出席服务 ====================

// EventMeta 登记出席时随行的活动快照
type EventMeta struct {
	Name  string
	Date  *time.Time
	Venue string
}

// RosterEntry 某活动下一位同行者的出席状态
type RosterEntry struct {
	UserId      string `json:"userId"`
	DisplayName string `json:"displayName"`
}

// EventRoster 单个活动的出席名单，按状态分组
type EventRoster struct {
	EventId string         `json:"eventId"`
	Going   []*RosterEntry `json:"going"`
	Maybe   []*RosterEntry `json:"maybe"`
}

// UpcomingEvent 圈子内即将到来的活动及名单
type UpcomingEvent struct {
	EventId   string         `json:"eventId"`
	EventName string         `json:"eventName"`
	Venue     string         `json:"venue"`
	Date      *time.Time     `json:"date,omitempty"`
	Going     []*RosterEntry `json:"going"`
	Maybe     []*RosterEntry `json:"maybe"`
}

type IAttendanceService interface {
	// Rsvp 登记或更新出席状态，重复登记按更新处理
	Rsvp(ctx context.Context, userID, eventID string, status int8, visibility int8, meta *EventMeta) error
	// Cancel 撤销出席登记，幂等
	Cancel(ctx context.Context, userID, eventID string) error
	// WhoIsGoing 查某活动圈子内谁会去
	WhoIsGoing(ctx context.Context, userID, eventID string) (*EventRoster, error)
	// Upcoming 查圈子内即将到来的活动
	Upcoming(ctx context.Context, userID string) ([]*UpcomingEvent, error)
}

// ==================== 通知服务 ====================

// CrewTargets 单个 Crew 维度的投递目标
type CrewTargets struct {
	CrewId  int64    `json:"crewId,string"`
	Name    string   `json:"name"`
	Emoji   string   `json:"emoji"`
	UserIds []string `json:"userIds"`
}

// Targets 一次动作的完整投递目标集
type Targets struct {
	Friends []string       `json:"friends"`
	Crews   []*CrewTargets `json:"crews"`
}

type INotifyService interface {
	// NotifyCheckin 到场签到后向各 Crew 扇出通知
	NotifyCheckin(ctx context.Context, actorID, referenceID, venueName string) (int, error)
	// NotifyRSVP 出席登记后向好友与各 Crew 扇出通知
	NotifyRSVP(ctx context.Context, actorID, eventID, eventName string) (int, error)
	// NotifyCrewJoin 新成员入团后通知老成员
	NotifyCrewJoin(ctx context.Context, actorID string, crewID int64) (int, error)
	// NotifyLocate 在某个 Crew 内广播位置召集
	NotifyLocate(ctx context.Context, actorID string, crewID int64, referenceID, venueName string) (int, error)
	// ComputeTargets 预览某次动作会命中哪些接收者（已扣除去重账目）
	ComputeTargets(ctx context.Context, actorID, eventID string) (*Targets, error)
	// SweepEventReminders 扫一轮到点的活动提醒
	SweepEventReminders(ctx context.Context, now time.Time) (int, error)
	// GetPreference 读用户通知偏好，没存过则给默认值
	GetPreference(ctx context.Context, userID string) (*model.NotificationPreference, error)
	// UpdatePreference 保存用户通知偏好
	UpdatePreference(ctx context.Context, pref *model.NotificationPreference) error
	// ScheduleReminder 给某次出席预约开场前提醒
	ScheduleReminder(ctx context.Context, userID, eventSourceID string, remindBefore int) error
}
