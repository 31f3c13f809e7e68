package v1

import (
	"time"

	"github.com/gin-gonic/gin"

	"CrewServer/apps/social/internal/dto"
	"CrewServer/apps/social/internal/middleware"
	"CrewServer/apps/social/internal/service"
	"CrewServer/consts"
	"CrewServer/model"
	"CrewServer/pkg/result"
)

// NotifyHandler 通知处理器
type NotifyHandler struct {
	notifyService   service.INotifyService
	identityService service.IIdentityService
}

// NewNotifyHandler 创建通知处理器
func NewNotifyHandler(notifyService service.INotifyService, identityService service.IIdentityService) *NotifyHandler {
	return &NotifyHandler{
		notifyService:   notifyService,
		identityService: identityService,
	}
}

// Checkin 到场签到通知接口
// @Summary 到场签到
// @Description 签到后向同团队友扇出通知，返回实际投递人数
// @Tags 通知接口
// @Accept json
// @Produce json
// @Param request body dto.CheckinNotifyRequest true "签到请求"
// @Router /api/v1/notify/checkin [post]
func (h *NotifyHandler) Checkin(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)

	var req dto.CheckinNotifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		result.Fail(c, nil, consts.CodeParamError)
		return
	}

	userID, ok := resolveCaller(c, h.identityService)
	if !ok {
		return
	}

	sent, err := h.notifyService.NotifyCheckin(ctx, userID, req.ReferenceId, req.Venue)
	if err != nil {
		failWithError(c, "签到通知", err)
		return
	}

	result.Success(c, gin.H{"sent": sent})
}

// Locate 位置召集接口
// @Summary 位置召集
// @Description 在某个 Crew 内广播位置召集，返回实际投递人数
// @Tags 通知接口
// @Accept json
// @Produce json
// @Param request body dto.LocateNotifyRequest true "召集请求"
// @Router /api/v1/notify/locate [post]
func (h *NotifyHandler) Locate(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)

	var req dto.LocateNotifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		result.Fail(c, nil, consts.CodeParamError)
		return
	}

	userID, ok := resolveCaller(c, h.identityService)
	if !ok {
		return
	}

	sent, err := h.notifyService.NotifyLocate(ctx, userID, req.CrewId, req.ReferenceId, req.Venue)
	if err != nil {
		failWithError(c, "位置召集", err)
		return
	}

	result.Success(c, gin.H{"sent": sent})
}

// Targets 投递目标预览接口
// @Summary 投递目标预览
// @Description 预览某次动作会命中哪些接收者（已扣除去重账目）
// @Tags 通知接口
// @Produce json
// @Param eventId query string true "活动ID"
// @Router /api/v1/notify/targets [get]
func (h *NotifyHandler) Targets(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)

	eventID := c.Query("eventId")
	if eventID == "" {
		result.Fail(c, nil, consts.CodeParamError)
		return
	}

	userID, ok := resolveCaller(c, h.identityService)
	if !ok {
		return
	}

	targets, err := h.notifyService.ComputeTargets(ctx, userID, eventID)
	if err != nil {
		failWithError(c, "预览投递目标", err)
		return
	}

	result.Success(c, targets)
}

// GetPreference 查看通知偏好接口
// @Summary 查看通知偏好
// @Description 读用户通知偏好，没存过则返回默认值
// @Tags 通知接口
// @Produce json
// @Router /api/v1/notify/preference [get]
func (h *NotifyHandler) GetPreference(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)

	userID, ok := resolveCaller(c, h.identityService)
	if !ok {
		return
	}

	pref, err := h.notifyService.GetPreference(ctx, userID)
	if err != nil {
		failWithError(c, "查询通知偏好", err)
		return
	}

	result.Success(c, convertPreference(pref))
}

// UpdatePreference 更新通知偏好接口
// @Summary 更新通知偏好
// @Description 增量更新通知偏好，未传字段保持原值
// @Tags 通知接口
// @Accept json
// @Produce json
// @Param request body dto.UpdatePreferenceRequest true "更新偏好请求"
// @Router /api/v1/notify/preference [put]
func (h *NotifyHandler) UpdatePreference(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)

	var req dto.UpdatePreferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		result.Fail(c, nil, consts.CodeParamError)
		return
	}

	userID, ok := resolveCaller(c, h.identityService)
	if !ok {
		return
	}

	pref, err := h.notifyService.GetPreference(ctx, userID)
	if err != nil {
		failWithError(c, "读取通知偏好", err)
		return
	}

	req.ApplyTo(pref)
	if err := h.notifyService.UpdatePreference(ctx, pref); err != nil {
		failWithError(c, "更新通知偏好", err)
		return
	}

	result.Success(c, convertPreference(pref))
}

// SweepReminders 手动触发提醒扫描接口（内部运维用）
// @Summary 手动触发提醒扫描
// @Description 立即扫一轮到点的活动提醒，返回投递数
// @Tags 通知接口
// @Produce json
// @Router /api/v1/internal/reminders/sweep [post]
func (h *NotifyHandler) SweepReminders(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)

	sent, err := h.notifyService.SweepEventReminders(ctx, time.Now())
	if err != nil {
		failWithError(c, "提醒扫描", err)
		return
	}

	result.Success(c, gin.H{"sent": sent})
}

// preferenceResponse 通知偏好响应
type preferenceResponse struct {
	NotifyCrewCheckins  bool   `json:"notifyCrewCheckins"`  // 队友签到通知开关
	NotifyFriendRsvps   bool   `json:"notifyFriendRsvps"`   // 好友报名通知开关
	NotifyCrewRsvps     bool   `json:"notifyCrewRsvps"`     // 队友报名通知开关
	NotifyEventReminder bool   `json:"notifyEventReminder"` // 活动提醒开关
	NotifyDailyDigest   bool   `json:"notifyDailyDigest"`   // 每日摘要开关
	DailyLimit          int    `json:"dailyLimit"`          // 每日通知上限
	QuietHoursEnabled   bool   `json:"quietHoursEnabled"`   // 免打扰开关
	QuietHoursStart     int    `json:"quietHoursStart"`     // 免打扰开始小时
	QuietHoursEnd       int    `json:"quietHoursEnd"`       // 免打扰结束小时
	Timezone            string `json:"timezone"`            // IANA 时区名
}

func convertPreference(pref *model.NotificationPreference) *preferenceResponse {
	return &preferenceResponse{
		NotifyCrewCheckins:  pref.NotifyCrewCheckins,
		NotifyFriendRsvps:   pref.NotifyFriendRsvps,
		NotifyCrewRsvps:     pref.NotifyCrewRsvps,
		NotifyEventReminder: pref.NotifyEventReminder,
		NotifyDailyDigest:   pref.NotifyDailyDigest,
		DailyLimit:          pref.DailyLimit,
		QuietHoursEnabled:   pref.QuietHoursEnabled,
		QuietHoursStart:     pref.QuietHoursStart,
		QuietHoursEnd:       pref.QuietHoursEnd,
		Timezone:            pref.Timezone,
	}
}
