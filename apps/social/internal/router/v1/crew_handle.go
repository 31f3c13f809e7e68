package v1

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"CrewServer/apps/social/internal/dto"
	"CrewServer/apps/social/internal/middleware"
	"CrewServer/apps/social/internal/service"
	"CrewServer/consts"
	"CrewServer/pkg/logger"
	"CrewServer/pkg/result"
)

// CrewHandler Crew 处理器
type CrewHandler struct {
	crewService     service.ICrewService
	notifyService   service.INotifyService
	identityService service.IIdentityService
}

// NewCrewHandler 创建 Crew 处理器
func NewCrewHandler(crewService service.ICrewService, notifyService service.INotifyService, identityService service.IIdentityService) *CrewHandler {
	return &CrewHandler{
		crewService:     crewService,
		notifyService:   notifyService,
		identityService: identityService,
	}
}

// Create 建团接口
// @Summary 建团
// @Description 创建 Crew，团名首个 emoji 作为团徽，调用方成为创建者
// @Tags Crew接口
// @Accept json
// @Produce json
// @Param request body dto.CreateCrewRequest true "建团请求"
// @Router /api/v1/crew/create [post]
func (h *CrewHandler) Create(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)

	var req dto.CreateCrewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		result.Fail(c, nil, consts.CodeParamError)
		return
	}

	userID, ok := resolveCaller(c, h.identityService)
	if !ok {
		return
	}

	opts := &service.CrewOptions{
		IsPublic:    req.IsPublic,
		IsTemporary: req.IsTemporary,
		MaxMembers:  req.MaxMembers,
	}
	if req.ExpiresAt > 0 {
		t := time.UnixMilli(req.ExpiresAt)
		opts.ExpiresAt = &t
	}

	info, err := h.crewService.Create(ctx, userID, req.Name, opts)
	if err != nil {
		failWithError(c, "建团", err)
		return
	}

	result.Success(c, info)
}

// Join 凭码入团接口
// @Summary 凭码入团
// @Description 凭成员邀请码或公共加入码入团，审批制团会进入待审批
// @Tags Crew接口
// @Accept json
// @Produce json
// @Param request body dto.JoinCrewRequest true "入团请求"
// @Router /api/v1/crew/join [post]
func (h *CrewHandler) Join(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)

	var req dto.JoinCrewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		result.Fail(c, nil, consts.CodeParamError)
		return
	}

	userID, ok := resolveCaller(c, h.identityService)
	if !ok {
		return
	}

	joinResult, err := h.crewService.Join(ctx, userID, req.Code)
	if err != nil {
		failWithError(c, "入团", err)
		return
	}

	// 正式入团后扇出通知：失败只记日志，不影响入团结果
	if joinResult.Outcome == service.JoinedDirect && joinResult.Crew != nil {
		if _, err := h.notifyService.NotifyCrewJoin(ctx, userID, joinResult.Crew.CrewId); err != nil {
			logger.Warn(ctx, "入团通知扇出失败",
				logger.Int64("crewId", joinResult.Crew.CrewId),
				logger.ErrorField("error", err),
			)
		}
	}

	result.Success(c, joinResult)
}

// RequestJoin 提交入团申请接口
// @Summary 提交入团申请
// @Description 对审批制团提交入团申请，已有待审批申请时幂等
// @Tags Crew接口
// @Accept json
// @Produce json
// @Param request body dto.RequestJoinRequest true "入团申请请求"
// @Router /api/v1/crew/request [post]
func (h *CrewHandler) RequestJoin(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)

	var req dto.RequestJoinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		result.Fail(c, nil, consts.CodeParamError)
		return
	}

	userID, ok := resolveCaller(c, h.identityService)
	if !ok {
		return
	}

	joinResult, err := h.crewService.RequestJoin(ctx, userID, req.CrewId)
	if err != nil {
		failWithError(c, "提交入团申请", err)
		return
	}

	result.Success(c, joinResult)
}

// Approve 审批通过接口
// @Summary 审批通过入团申请
// @Description 管理员及以上可审批，通过后申请人立即入团
// @Tags Crew接口
// @Accept json
// @Produce json
// @Param request body dto.ReviewRequestRequest true "审批请求"
// @Router /api/v1/crew/request/approve [post]
func (h *CrewHandler) Approve(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)

	var req dto.ReviewRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		result.Fail(c, nil, consts.CodeParamError)
		return
	}

	userID, ok := resolveCaller(c, h.identityService)
	if !ok {
		return
	}

	if err := h.crewService.Approve(ctx, userID, req.RequestId); err != nil {
		failWithError(c, "审批入团申请", err)
		return
	}

	result.Success(c, nil)
}

// Deny 驳回申请接口
// @Summary 驳回入团申请
// @Description 管理员及以上可驳回
// @Tags Crew接口
// @Accept json
// @Produce json
// @Param request body dto.ReviewRequestRequest true "驳回请求"
// @Router /api/v1/crew/request/deny [post]
func (h *CrewHandler) Deny(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)

	var req dto.ReviewRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		result.Fail(c, nil, consts.CodeParamError)
		return
	}

	userID, ok := resolveCaller(c, h.identityService)
	if !ok {
		return
	}

	if err := h.crewService.Deny(ctx, userID, req.RequestId); err != nil {
		failWithError(c, "驳回入团申请", err)
		return
	}

	result.Success(c, nil)
}

// PendingRequests 待审批列表接口
// @Summary 待审批申请列表
// @Description 列出团内待审批申请（管理员及以上）
// @Tags Crew接口
// @Produce json
// @Param crewId query int true "团ID"
// @Router /api/v1/crew/request/list [get]
func (h *CrewHandler) PendingRequests(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)

	crewID, ok := queryInt64(c, "crewId")
	if !ok {
		result.Fail(c, nil, consts.CodeParamError)
		return
	}

	userID, ok := resolveCaller(c, h.identityService)
	if !ok {
		return
	}

	requests, err := h.crewService.PendingRequests(ctx, userID, crewID)
	if err != nil {
		failWithError(c, "查询待审批申请", err)
		return
	}

	result.Success(c, gin.H{"requests": requests})
}

// Promote 提拔管理员接口
// @Summary 提拔为管理员
// @Description 仅创建者可提拔
// @Tags Crew接口
// @Accept json
// @Produce json
// @Param request body dto.MemberActionRequest true "提拔请求"
// @Router /api/v1/crew/promote [post]
func (h *CrewHandler) Promote(c *gin.Context) {
	h.memberAction(c, "提拔管理员", h.crewService.Promote)
}

// Demote 降级管理员接口
// @Summary 降回普通成员
// @Description 仅创建者可降级
// @Tags Crew接口
// @Accept json
// @Produce json
// @Param request body dto.MemberActionRequest true "降级请求"
// @Router /api/v1/crew/demote [post]
func (h *CrewHandler) Demote(c *gin.Context) {
	h.memberAction(c, "降级管理员", h.crewService.Demote)
}

// Kick 移出成员接口
// @Summary 移出成员
// @Description 管理员及以上可操作，且职级须高于对方
// @Tags Crew接口
// @Accept json
// @Produce json
// @Param request body dto.MemberActionRequest true "移出请求"
// @Router /api/v1/crew/kick [post]
func (h *CrewHandler) Kick(c *gin.Context) {
	h.memberAction(c, "移出成员", h.crewService.Kick)
}

// memberAction 提拔/降级/移出共用的请求骨架
func (h *CrewHandler) memberAction(c *gin.Context, action string, fn func(ctx context.Context, actorID string, crewID int64, targetID string) error) {
	ctx := middleware.NewContextWithGin(c)

	var req dto.MemberActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		result.Fail(c, nil, consts.CodeParamError)
		return
	}

	userID, ok := resolveCaller(c, h.identityService)
	if !ok {
		return
	}

	if err := fn(ctx, userID, req.CrewId, req.TargetId); err != nil {
		failWithError(c, action, err)
		return
	}

	result.Success(c, nil)
}

// UpdateSettings 修改团设置接口
// @Summary 修改团设置
// @Description 修改团的公开性与加入方式（管理员及以上）
// @Tags Crew接口
// @Accept json
// @Produce json
// @Param request body dto.UpdateCrewSettingsRequest true "修改设置请求"
// @Router /api/v1/crew/settings [post]
func (h *CrewHandler) UpdateSettings(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)

	var req dto.UpdateCrewSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		result.Fail(c, nil, consts.CodeParamError)
		return
	}

	userID, ok := resolveCaller(c, h.identityService)
	if !ok {
		return
	}

	info, err := h.crewService.UpdateSettings(ctx, userID, req.CrewId, &service.SettingsUpdate{
		IsPublic: req.IsPublic,
		JoinMode: req.JoinMode,
	})
	if err != nil {
		failWithError(c, "修改团设置", err)
		return
	}

	result.Success(c, info)
}

// Leave 退团接口
// @Summary 退团
// @Description 退出 Crew，创建者不可退
// @Tags Crew接口
// @Accept json
// @Produce json
// @Param request body dto.CrewIdRequest true "退团请求"
// @Router /api/v1/crew/leave [post]
func (h *CrewHandler) Leave(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)

	var req dto.CrewIdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		result.Fail(c, nil, consts.CodeParamError)
		return
	}

	userID, ok := resolveCaller(c, h.identityService)
	if !ok {
		return
	}

	if err := h.crewService.Leave(ctx, userID, req.CrewId); err != nil {
		failWithError(c, "退团", err)
		return
	}

	result.Success(c, nil)
}

// MemberInvite 获取成员邀请码接口
// @Summary 获取成员邀请码
// @Description 取（或生成）成员个人的入团邀请码
// @Tags Crew接口
// @Produce json
// @Param crewId query int true "团ID"
// @Router /api/v1/crew/invite [get]
func (h *CrewHandler) MemberInvite(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)

	crewID, ok := queryInt64(c, "crewId")
	if !ok {
		result.Fail(c, nil, consts.CodeParamError)
		return
	}

	userID, ok := resolveCaller(c, h.identityService)
	if !ok {
		return
	}

	code, err := h.crewService.MemberInvite(ctx, userID, crewID)
	if err != nil {
		failWithError(c, "获取成员邀请码", err)
		return
	}

	result.Success(c, gin.H{"code": code})
}

// Members 成员列表接口
// @Summary 成员列表
// @Description 列出团成员（仅成员可见）
// @Tags Crew接口
// @Produce json
// @Param crewId query int true "团ID"
// @Router /api/v1/crew/members [get]
func (h *CrewHandler) Members(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)

	crewID, ok := queryInt64(c, "crewId")
	if !ok {
		result.Fail(c, nil, consts.CodeParamError)
		return
	}

	userID, ok := resolveCaller(c, h.identityService)
	if !ok {
		return
	}

	members, err := h.crewService.Members(ctx, userID, crewID)
	if err != nil {
		failWithError(c, "查询成员列表", err)
		return
	}

	result.Success(c, gin.H{"members": members})
}

// ToggleMute 切换团静音接口
// @Summary 切换团静音
// @Description 静音/取消静音某个团，返回切换后的静音态
// @Tags Crew接口
// @Accept json
// @Produce json
// @Param request body dto.CrewIdRequest true "切换静音请求"
// @Router /api/v1/crew/mute [post]
func (h *CrewHandler) ToggleMute(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)

	var req dto.CrewIdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		result.Fail(c, nil, consts.CodeParamError)
		return
	}

	userID, ok := resolveCaller(c, h.identityService)
	if !ok {
		return
	}

	muted, err := h.crewService.ToggleCrewMute(ctx, userID, req.CrewId)
	if err != nil {
		failWithError(c, "切换团静音", err)
		return
	}

	result.Success(c, gin.H{"muted": muted})
}

// Info 团信息接口
// @Summary 团信息
// @Description 查看团信息（仅成员可见）
// @Tags Crew接口
// @Produce json
// @Param crewId query int true "团ID"
// @Router /api/v1/crew/info [get]
func (h *CrewHandler) Info(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)

	crewID, ok := queryInt64(c, "crewId")
	if !ok {
		result.Fail(c, nil, consts.CodeParamError)
		return
	}

	userID, ok := resolveCaller(c, h.identityService)
	if !ok {
		return
	}

	info, err := h.crewService.Info(ctx, userID, crewID)
	if err != nil {
		failWithError(c, "查询团信息", err)
		return
	}

	result.Success(c, info)
}
