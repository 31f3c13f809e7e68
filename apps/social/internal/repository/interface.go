package repository

import (
	"context"
	"time"

	"CrewServer/model"
)

// ==================== 身份 Repository ====================

// IIdentityRepository 平台身份数据访问接口
type IIdentityRepository interface {
	// GetByPlatformUid 按平台账号查身份行；不存在返回 ErrRecordNotFound
	GetByPlatformUid(ctx context.Context, platformUid string) (*model.Identity, error)

	// BatchGetByPlatformUids 批量查身份行（只返回存在的）
	BatchGetByPlatformUids(ctx context.Context, platformUids []string) ([]*model.Identity, error)

	// GetByCanonicalID 查一个规范身份名下的全部平台账号
	GetByCanonicalID(ctx context.Context, canonicalID string) ([]*model.Identity, error)

	// BatchGetByCanonicalIDs 批量查多个规范身份名下的身份行
	BatchGetByCanonicalIDs(ctx context.Context, canonicalIDs []string) ([]*model.Identity, error)

	// CreateRows 批量写身份行；platform_uid 冲突时跳过（映射 append-only）
	CreateRows(ctx context.Context, rows []*model.Identity) error

	// UpdateAvatar 更新某规范身份名下所有行的头像地址
	UpdateAvatar(ctx context.Context, canonicalID, avatarURL string) error
}

// ==================== 好友关系 Repository ====================

// IConnectionRepository 好友关系数据访问接口
type IConnectionRepository interface {
	// GetInviteByUser 查用户的邀请码；不存在返回 ErrRecordNotFound
	GetInviteByUser(ctx context.Context, userID string) (*model.FriendInvite, error)

	// CreateInvite 创建邀请码；user_id 冲突时返回已有记录（码在多次调用间保持稳定）
	CreateInvite(ctx context.Context, invite *model.FriendInvite) (*model.FriendInvite, error)

	// GetInviteByCode 按码查邀请人；不存在返回 ErrRecordNotFound
	GetInviteByCode(ctx context.Context, code string) (*model.FriendInvite, error)

	// CreateRelation 建立双向好友关系（两行一批 upsert）
	// 已存在（含软删除）的方向恢复为 active 并共享同一 acceptedAt。
	CreateRelation(ctx context.Context, userID, friendID string, acceptedAt time.Time) error

	// DeleteRelation 删除双向好友关系；两侧都不存在也算成功（幂等）
	DeleteRelation(ctx context.Context, userID, friendID string) error

	// GetRelation 查单向关系行；不存在返回 ErrRecordNotFound
	GetRelation(ctx context.Context, userID, friendID string) (*model.Connection, error)

	// SetStatus 设置单向关系状态（静音只动本侧）
	SetStatus(ctx context.Context, userID, friendID string, status int8) error

	// ListByUser 列出用户视角的全部关系行（active/muted）
	ListByUser(ctx context.Context, userID string) ([]*model.Connection, error)

	// ListActivePeers 列出「把 userID 视为 active 好友」的对侧用户 id。
	// 这是通知候选集：对侧静音了 userID 的行不会出现。
	ListActivePeers(ctx context.Context, userID string) ([]string, error)
}

// ==================== Crew Repository ====================

// ICrewRepository Crew 数据访问接口
type ICrewRepository interface {
	// CreateWithCreator 同一事务内写入 Crew 行和 creator 成员行
	CreateWithCreator(ctx context.Context, crew *model.Crew, creator *model.CrewMember) error

	// GetByID 按 id 查 Crew；不存在返回 ErrRecordNotFound
	GetByID(ctx context.Context, crewID int64) (*model.Crew, error)

	// GetByJoinCode 按公共加入码查 Crew；不存在返回 ErrRecordNotFound
	GetByJoinCode(ctx context.Context, code string) (*model.Crew, error)

	// UpdateSettings 更新可变设置字段
	UpdateSettings(ctx context.Context, crewID int64, fields map[string]interface{}) error

	// GetMember 查成员行；不存在返回 ErrRecordNotFound
	GetMember(ctx context.Context, crewID int64, userID string) (*model.CrewMember, error)

	// ListMembers 列出 Crew 全部成员
	ListMembers(ctx context.Context, crewID int64) ([]*model.CrewMember, error)

	// ListMemberships 列出用户的全部成员资格
	ListMemberships(ctx context.Context, userID string) ([]*model.CrewMember, error)

	// CountMembers 统计成员数
	CountMembers(ctx context.Context, crewID int64) (int64, error)

	// AddMember 写入成员行；(crew, user) 冲突时 no-op，created=false
	AddMember(ctx context.Context, member *model.CrewMember) (created bool, err error)

	// RemoveMember 删除成员行（幂等）
	RemoveMember(ctx context.Context, crewID int64, userID string) error

	// SetMemberRole 设置成员角色
	SetMemberRole(ctx context.Context, crewID int64, userID string, role int8) error

	// SetMemberMuted 设置成员对该 Crew 的静音标记
	SetMemberMuted(ctx context.Context, crewID int64, userID string, muted bool) error

	// GetPendingRequest 查 (crew, user) 的待审批申请；不存在返回 ErrRecordNotFound
	GetPendingRequest(ctx context.Context, crewID int64, userID string) (*model.JoinRequest, error)

	// CreateRequest 写入加入申请
	CreateRequest(ctx context.Context, req *model.JoinRequest) error

	// GetRequestByID 按 id 查申请；不存在返回 ErrRecordNotFound
	GetRequestByID(ctx context.Context, requestID int64) (*model.JoinRequest, error)

	// ReviewRequest CAS 审批：仅当状态仍为 pending 时落终态。
	// applied=false 表示已被他人处理（幂等冲突，不是错误）。
	ReviewRequest(ctx context.Context, requestID int64, toStatus int8, reviewerID string, reviewedAt time.Time) (applied bool, err error)

	// ListPendingRequests 列出 Crew 的待审批申请
	ListPendingRequests(ctx context.Context, crewID int64) ([]*model.JoinRequest, error)

	// GetCrewInviteByCode 按个人邀请码查记录；不存在返回 ErrRecordNotFound
	GetCrewInviteByCode(ctx context.Context, code string) (*model.CrewInvite, error)

	// GetOrCreateCrewInvite 取 (crew, inviter) 的个人邀请码，没有则创建
	GetOrCreateCrewInvite(ctx context.Context, crewID int64, inviterID, code string) (*model.CrewInvite, error)

	// IncrementInviteUses 归因计数 +1
	IncrementInviteUses(ctx context.Context, inviteID int64) error
}

// ==================== 出勤 Repository ====================

// IAttendanceRepository 出勤台账数据访问接口
type IAttendanceRepository interface {
	// Upsert 按 (user, event) 插入或更新 RSVP
	Upsert(ctx context.Context, att *model.Attendance) error

	// Delete 删除 RSVP（幂等）
	Delete(ctx context.Context, userID, eventID string) error

	// Get 查单条 RSVP；不存在返回 ErrRecordNotFound
	Get(ctx context.Context, userID, eventID string) (*model.Attendance, error)

	// ListByEventForUsers 查指定用户集合对某活动的 RSVP（只含社交流可见的行）
	ListByEventForUsers(ctx context.Context, eventID string, userIDs []string) ([]*model.Attendance, error)

	// ListUpcomingForUsers 查指定用户集合未来的全部 RSVP（只含社交流可见的行）
	ListUpcomingForUsers(ctx context.Context, userIDs []string, now time.Time) ([]*model.Attendance, error)
}

// ==================== 通知 Repository ====================

// INotifyRepository 通知台账与偏好数据访问接口
type INotifyRepository interface {
	// GetPreference 查用户偏好；无记录时返回 DefaultPreference（typed default，不是错误）
	GetPreference(ctx context.Context, userID string) (*model.NotificationPreference, error)

	// UpsertPreference 写入/更新用户偏好并失效缓存
	UpsertPreference(ctx context.Context, pref *model.NotificationPreference) error

	// HasLogEntry 查去重台账是否已有四元组记录
	HasLogEntry(ctx context.Context, recipientID, notifyType, referenceID, triggeredBy string) (bool, error)

	// ListLoggedRecipients 查已被记录的收件人集合（候选集扣减用）
	ListLoggedRecipients(ctx context.Context, notifyTypes []string, referenceID, triggeredBy string) (map[string]bool, error)

	// InsertLog 写入去重台账；四元组冲突时 no-op（merge-on-conflict）
	InsertLog(ctx context.Context, entry *model.NotificationLog) error

	// CountSentToday 统计收件人自本地午夜以来的已发送条数。
	// 优先读 Redis 计数，未命中回源台账并回填。
	CountSentToday(ctx context.Context, recipientID string, localMidnight time.Time, localDate string) (int64, error)

	// IncrDailyCount 当日计数 +1（仅在缓存存在时，尽力而为）
	IncrDailyCount(ctx context.Context, recipientID, localDate string)

	// CreateReminder 登记活动提醒
	CreateReminder(ctx context.Context, reminder *model.EventReminder) error

	// ListUnsentReminders 列出未消费的提醒
	ListUnsentReminders(ctx context.Context) ([]*model.EventReminder, error)

	// MarkReminderSent 置提醒为已消费
	MarkReminderSent(ctx context.Context, reminderID int64) error
}
