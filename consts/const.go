package consts

// 通用错误码
const (
	CodeSuccess = 0 // 成功
)

// 客户端错误 (1xxxx)
const (
	CodeParamError       = 10001 // 参数验证失败
	CodeBodyError        = 10002 // 请求体格式错误
	CodeResourceNotFound = 10003 // 资源不存在
	CodeTooManyRequests  = 10005 // 请求过于频繁
)

// 认证错误 (2xxxx)
const (
	CodeUnauthorized   = 20001 // 未认证
	CodeInvalidToken   = 20002 // Token 无效
	CodePermissionDeny = 20004 // 权限不足
)

// 身份模块错误 (11xxx)
const (
	CodeIdentityNotFound = 11001 // 身份不存在
	CodeIdentityInvalid  = 11002 // 平台账号格式错误
)

// 好友模块错误 (12xxx)
const (
	CodeAlreadyFriend  = 12001 // 已经是好友
	CodeNotFriend      = 12002 // 不存在该好友关系
	CodeSelfInvite     = 12003 // 不能邀请自己
	CodeInviteNotFound = 12004 // 邀请码不存在
)

// Crew 模块错误 (14xxx)
const (
	CodeCrewNotFound       = 14001 // Crew 不存在
	CodeNotCrewMember      = 14002 // 不是 Crew 成员
	CodeNoPermission       = 14003 // 没有权限
	CodeCrewFull           = 14004 // Crew 成员已满
	CodeCrewClosed         = 14005 // Crew 已关闭加入
	CodeCrewExpired        = 14006 // Crew 已过期
	CodeAlreadyMember      = 14007 // 已经是 Crew 成员
	CodeRequestNotFound    = 14008 // 加入申请不存在
	CodeRequestNotPending  = 14009 // 申请已被处理
	CodeRequestExists      = 14010 // 已有待处理的申请
	CodeCreatorImmutable   = 14011 // 创建者角色不可变更
	CodeCrewNameRequired   = 14012 // Crew 名称不能为空
	CodeCannotLeaveAsOwner = 14013 // 创建者不能退出自己的 Crew
)

// 出勤模块错误 (15xxx)
const (
	CodeRsvpNotFound      = 15001 // RSVP 记录不存在
	CodeRsvpStatusInvalid = 15002 // RSVP 状态无效
)

// 通知模块错误 (16xxx)
const (
	CodeChannelNotFound = 16001 // 没有匹配的投递通道
	CodeReminderInvalid = 16002 // 提醒参数无效
)

// 服务端错误 (3xxxx)
const (
	CodeInternalError      = 30001 // 服务器内部错误
	CodeServiceUnavailable = 30002 // 服务暂不可用
)

// 错误消息映射
var CodeMessage = map[int32]string{
	CodeSuccess: "success",

	// 客户端错误
	CodeParamError:       "参数验证失败",
	CodeBodyError:        "请求体格式错误",
	CodeResourceNotFound: "资源不存在",
	CodeTooManyRequests:  "请求过于频繁",

	// 认证错误
	CodeUnauthorized:   "未认证",
	CodeInvalidToken:   "Token 无效",
	CodePermissionDeny: "权限不足",

	// 身份模块
	CodeIdentityNotFound: "身份不存在",
	CodeIdentityInvalid:  "平台账号格式错误",

	// 好友模块
	CodeAlreadyFriend:  "已经是好友",
	CodeNotFriend:      "不存在该好友关系",
	CodeSelfInvite:     "不能邀请自己",
	CodeInviteNotFound: "邀请码不存在",

	// Crew 模块
	CodeCrewNotFound:       "Crew 不存在",
	CodeNotCrewMember:      "不是 Crew 成员",
	CodeNoPermission:       "没有权限",
	CodeCrewFull:           "Crew 成员已满",
	CodeCrewClosed:         "Crew 已关闭加入",
	CodeCrewExpired:        "Crew 已过期",
	CodeAlreadyMember:      "已经是 Crew 成员",
	CodeRequestNotFound:    "加入申请不存在",
	CodeRequestNotPending:  "申请已被处理",
	CodeRequestExists:      "已有待处理的申请",
	CodeCreatorImmutable:   "创建者角色不可变更",
	CodeCrewNameRequired:   "Crew 名称不能为空",
	CodeCannotLeaveAsOwner: "创建者不能退出自己的 Crew",

	// 出勤模块
	CodeRsvpNotFound:      "RSVP 记录不存在",
	CodeRsvpStatusInvalid: "RSVP 状态无效",

	// 通知模块
	CodeChannelNotFound: "没有匹配的投递通道",
	CodeReminderInvalid: "提醒参数无效",

	// 服务端错误
	CodeInternalError:      "服务器内部错误",
	CodeServiceUnavailable: "服务暂不可用",
}

// GetMessage 根据错误码获取错误消息
func GetMessage(code int32) string {
	if msg, ok := CodeMessage[code]; ok {
		return msg
	}
	return "未知错误"
}

// IsNonServerError 判断是否为客户端/业务错误（非 3xxxx）
// 网关用它区分「返回业务码」和「打内部错误日志」两条路径。
func IsNonServerError(code int32) bool {
	return code > 0 && code < 30000
}
