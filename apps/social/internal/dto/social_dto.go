package dto

import (
	"CrewServer/model"
)

// ==================== 好友关系相关 DTO ====================

// AcceptInviteRequest 接受好友邀请请求 DTO
type AcceptInviteRequest struct {
	Code string `json:"code" binding:"required,max=64"` // 好友邀请码
}

// ToggleMuteRequest 切换好友静音请求 DTO
type ToggleMuteRequest struct {
	FriendId string `json:"friendId" binding:"required,max=128"` // 好友规范 ID
}

// RemoveFriendRequest 删除好友请求 DTO
type RemoveFriendRequest struct {
	FriendId string `json:"friendId" binding:"required,max=128"` // 好友规范 ID
}

// ==================== 出席相关 DTO ====================

// RsvpRequest 活动报名请求 DTO
type RsvpRequest struct {
	EventId    string `json:"eventId" binding:"required,max=128"`         // 活动 ID
	Status     int8   `json:"status" binding:"oneof=0 1"`                 // RSVP状态(0:去 1:可能去)
	Visibility int8   `json:"visibility" binding:"omitempty,oneof=0 1"`   // 可见范围(0:社交流 1:仅自己)
	EventName  string `json:"eventName" binding:"omitempty,max=128"`      // 活动名称快照
	EventDate  int64  `json:"eventDate" binding:"omitempty,gt=0"`         // 活动开始时间（毫秒时间戳）
	Venue      string `json:"venue" binding:"omitempty,max=128"`          // 场地快照
}

// CancelRsvpRequest 取消报名请求 DTO
type CancelRsvpRequest struct {
	EventId string `json:"eventId" binding:"required,max=128"` // 活动 ID
}

// ScheduleReminderRequest 设置活动提醒请求 DTO
type ScheduleReminderRequest struct {
	EventId      string `json:"eventId" binding:"required,max=128"`   // 活动 ID
	RemindBefore int32  `json:"remindBefore" binding:"required,gt=0"` // 提前提醒分钟数
}

// ==================== 通知偏好相关 DTO ====================

// UpdatePreferenceRequest 更新通知偏好请求 DTO，nil 字段保持原值
type UpdatePreferenceRequest struct {
	NotifyCrewCheckins  *bool   `json:"notifyCrewCheckins"`                          // 队友签到通知开关
	NotifyFriendRsvps   *bool   `json:"notifyFriendRsvps"`                           // 好友报名通知开关
	NotifyCrewRsvps     *bool   `json:"notifyCrewRsvps"`                             // 队友报名通知开关
	NotifyEventReminder *bool   `json:"notifyEventReminder"`                         // 活动提醒开关
	NotifyDailyDigest   *bool   `json:"notifyDailyDigest"`                           // 每日摘要开关
	DailyLimit          *int    `json:"dailyLimit" binding:"omitempty,gt=0"`         // 每日通知上限
	QuietHoursEnabled   *bool   `json:"quietHoursEnabled"`                           // 免打扰开关
	QuietHoursStart     *int    `json:"quietHoursStart" binding:"omitempty,min=0,max=23"` // 免打扰开始小时
	QuietHoursEnd       *int    `json:"quietHoursEnd" binding:"omitempty,min=0,max=23"`   // 免打扰结束小时
	Timezone            *string `json:"timezone" binding:"omitempty,max=64"`         // IANA 时区名
}

// ApplyTo 把非 nil 字段覆盖到现有偏好上
func (r *UpdatePreferenceRequest) ApplyTo(pref *model.NotificationPreference) {
	if r.NotifyCrewCheckins != nil {
		pref.NotifyCrewCheckins = *r.NotifyCrewCheckins
	}
	if r.NotifyFriendRsvps != nil {
		pref.NotifyFriendRsvps = *r.NotifyFriendRsvps
	}
	if r.NotifyCrewRsvps != nil {
		pref.NotifyCrewRsvps = *r.NotifyCrewRsvps
	}
	if r.NotifyEventReminder != nil {
		pref.NotifyEventReminder = *r.NotifyEventReminder
	}
	if r.NotifyDailyDigest != nil {
		pref.NotifyDailyDigest = *r.NotifyDailyDigest
	}
	if r.DailyLimit != nil {
		pref.DailyLimit = *r.DailyLimit
	}
	if r.QuietHoursEnabled != nil {
		pref.QuietHoursEnabled = *r.QuietHoursEnabled
	}
	if r.QuietHoursStart != nil {
		pref.QuietHoursStart = *r.QuietHoursStart
	}
	if r.QuietHoursEnd != nil {
		pref.QuietHoursEnd = *r.QuietHoursEnd
	}
	if r.Timezone != nil {
		pref.Timezone = *r.Timezone
	}
}
