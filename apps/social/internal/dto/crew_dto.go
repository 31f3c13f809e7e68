package dto

// ==================== Crew 相关 DTO ====================

// CreateCrewRequest 建团请求 DTO
type CreateCrewRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=64"`   // 团名，首个 emoji 作为团徽
	IsPublic    bool   `json:"isPublic"`                               // 是否可被搜索发现
	IsTemporary bool   `json:"isTemporary"`                            // 是否临时团
	ExpiresAt   int64  `json:"expiresAt" binding:"omitempty,gt=0"`     // 过期时间（毫秒时间戳，临时团必填）
	MaxMembers  int    `json:"maxMembers" binding:"omitempty,min=2,max=500"` // 成员上限，缺省 50
}

// JoinCrewRequest 凭码入团请求 DTO
type JoinCrewRequest struct {
	Code string `json:"code" binding:"required,max=64"` // 公共加入码或成员邀请码
}

// RequestJoinRequest 提交入团申请请求 DTO
type RequestJoinRequest struct {
	CrewId int64 `json:"crewId,string" binding:"required,gt=0"` // 团 ID
}

// ReviewRequestRequest 审批入团申请请求 DTO
type ReviewRequestRequest struct {
	RequestId int64 `json:"requestId,string" binding:"required,gt=0"` // 申请 ID
}

// MemberActionRequest 针对某个成员的操作请求 DTO（提拔/降级/移出）
type MemberActionRequest struct {
	CrewId   int64  `json:"crewId,string" binding:"required,gt=0"` // 团 ID
	TargetId string `json:"targetId" binding:"required,max=128"`   // 目标成员规范 ID
}

// UpdateCrewSettingsRequest 修改团设置请求 DTO，nil 字段保持原值
type UpdateCrewSettingsRequest struct {
	CrewId   int64 `json:"crewId,string" binding:"required,gt=0"` // 团 ID
	IsPublic *bool `json:"isPublic"`                              // 是否可被搜索发现
	JoinMode *int8 `json:"joinMode" binding:"omitempty,oneof=0 1 2"` // 加入方式(0:开放 1:审批 2:关闭)
}

// CrewIdRequest 仅携带团 ID 的请求 DTO（退团/静音/查成员等）
type CrewIdRequest struct {
	CrewId int64 `json:"crewId,string" binding:"required,gt=0"` // 团 ID
}

// ==================== 通知触发相关 DTO ====================

// CheckinNotifyRequest 到场签到通知请求 DTO
type CheckinNotifyRequest struct {
	ReferenceId string `json:"referenceId" binding:"required,max=128"` // 签到引用 ID（活动或场地）
	Venue       string `json:"venue" binding:"omitempty,max=128"`      // 场地名
}

// LocateNotifyRequest 位置召集通知请求 DTO
type LocateNotifyRequest struct {
	CrewId      int64  `json:"crewId,string" binding:"required,gt=0"`  // 团 ID
	ReferenceId string `json:"referenceId" binding:"required,max=128"` // 召集引用 ID
	Venue       string `json:"venue" binding:"omitempty,max=128"`      // 场地名
}
