package v1

import (
	"time"

	"github.com/gin-gonic/gin"

	"CrewServer/apps/social/internal/dto"
	"CrewServer/apps/social/internal/middleware"
	"CrewServer/apps/social/internal/service"
	"CrewServer/consts"
	"CrewServer/model"
	"CrewServer/pkg/logger"
	"CrewServer/pkg/result"
)

// AttendanceHandler 出席处理器
type AttendanceHandler struct {
	attendanceService service.IAttendanceService
	notifyService     service.INotifyService
	identityService   service.IIdentityService
}

// NewAttendanceHandler 创建出席处理器
func NewAttendanceHandler(attendanceService service.IAttendanceService, notifyService service.INotifyService, identityService service.IIdentityService) *AttendanceHandler {
	return &AttendanceHandler{
		attendanceService: attendanceService,
		notifyService:     notifyService,
		identityService:   identityService,
	}
}

// Rsvp 出席登记接口
// @Summary 出席登记
// @Description 登记或更新出席状态，对社交流可见的登记会触发扇出通知
// @Tags 出席接口
// @Accept json
// @Produce json
// @Param request body dto.RsvpRequest true "出席登记请求"
// @Router /api/v1/attendance/rsvp [post]
func (h *AttendanceHandler) Rsvp(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)

	var req dto.RsvpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		result.Fail(c, nil, consts.CodeParamError)
		return
	}

	userID, ok := resolveCaller(c, h.identityService)
	if !ok {
		return
	}

	meta := &service.EventMeta{
		Name:  req.EventName,
		Venue: req.Venue,
	}
	if req.EventDate > 0 {
		t := time.UnixMilli(req.EventDate)
		meta.Date = &t
	}

	if err := h.attendanceService.Rsvp(ctx, userID, req.EventId, req.Status, req.Visibility, meta); err != nil {
		failWithError(c, "出席登记", err)
		return
	}

	// 仅登记本人可见时不扇出；扇出失败只记日志，登记已落库
	if req.Visibility != model.VisibilityPrivate {
		if _, err := h.notifyService.NotifyRSVP(ctx, userID, req.EventId, req.EventName); err != nil {
			logger.Warn(ctx, "出席登记通知扇出失败",
				logger.String("eventId", req.EventId),
				logger.ErrorField("error", err),
			)
		}
	}

	result.Success(c, nil)
}

// Cancel 取消登记接口
// @Summary 取消出席登记
// @Description 撤销出席登记，幂等
// @Tags 出席接口
// @Accept json
// @Produce json
// @Param request body dto.CancelRsvpRequest true "取消登记请求"
// @Router /api/v1/attendance/cancel [post]
func (h *AttendanceHandler) Cancel(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)

	var req dto.CancelRsvpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		result.Fail(c, nil, consts.CodeParamError)
		return
	}

	userID, ok := resolveCaller(c, h.identityService)
	if !ok {
		return
	}

	if err := h.attendanceService.Cancel(ctx, userID, req.EventId); err != nil {
		failWithError(c, "取消出席登记", err)
		return
	}

	result.Success(c, nil)
}

// WhoIsGoing 出席名单接口
// @Summary 出席名单
// @Description 查某活动圈子内谁会去，按去/可能去分组
// @Tags 出席接口
// @Produce json
// @Param eventId query string true "活动ID"
// @Router /api/v1/attendance/roster [get]
func (h *AttendanceHandler) WhoIsGoing(c *gin.Context) {
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

	roster, err := h.attendanceService.WhoIsGoing(ctx, userID, eventID)
	if err != nil {
		failWithError(c, "查询出席名单", err)
		return
	}

	result.Success(c, roster)
}

// Upcoming 即将到来的活动接口
// @Summary 即将到来的活动
// @Description 查圈子内即将到来的活动及名单
// @Tags 出席接口
// @Produce json
// @Router /api/v1/attendance/upcoming [get]
func (h *AttendanceHandler) Upcoming(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)

	userID, ok := resolveCaller(c, h.identityService)
	if !ok {
		return
	}

	events, err := h.attendanceService.Upcoming(ctx, userID)
	if err != nil {
		failWithError(c, "查询即将到来的活动", err)
		return
	}

	result.Success(c, gin.H{"events": events})
}

// ScheduleReminder 设置活动提醒接口
// @Summary 设置活动提醒
// @Description 给某次出席预约开场前提醒
// @Tags 出席接口
// @Accept json
// @Produce json
// @Param request body dto.ScheduleReminderRequest true "设置提醒请求"
// @Router /api/v1/attendance/reminder [post]
func (h *AttendanceHandler) ScheduleReminder(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)

	var req dto.ScheduleReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		result.Fail(c, nil, consts.CodeParamError)
		return
	}

	userID, ok := resolveCaller(c, h.identityService)
	if !ok {
		return
	}

	if err := h.notifyService.ScheduleReminder(ctx, userID, req.EventId, int(req.RemindBefore)); err != nil {
		failWithError(c, "设置活动提醒", err)
		return
	}

	result.Success(c, nil)
}
