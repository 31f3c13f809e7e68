package v1

import (
	"github.com/gin-gonic/gin"

	"CrewServer/apps/social/internal/dto"
	"CrewServer/apps/social/internal/middleware"
	"CrewServer/apps/social/internal/service"
	"CrewServer/consts"
	"CrewServer/pkg/result"
)

// FriendHandler 好友处理器
type FriendHandler struct {
	connectionService service.IConnectionService
	identityService   service.IIdentityService
}

// NewFriendHandler 创建好友处理器
func NewFriendHandler(connectionService service.IConnectionService, identityService service.IIdentityService) *FriendHandler {
	return &FriendHandler{
		connectionService: connectionService,
		identityService:   identityService,
	}
}

// Invite 获取好友邀请码接口
// @Summary 获取好友邀请码
// @Description 返回本人的好友邀请码，可重复分享
// @Tags 好友接口
// @Produce json
// @Router /api/v1/friend/invite [get]
func (h *FriendHandler) Invite(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)

	userID, ok := resolveCaller(c, h.identityService)
	if !ok {
		return
	}

	code, err := h.connectionService.Invite(ctx, userID)
	if err != nil {
		failWithError(c, "获取好友邀请码", err)
		return
	}

	result.Success(c, gin.H{"code": code})
}

// AcceptInvite 接受好友邀请接口
// @Summary 接受好友邀请
// @Description 凭邀请码建立双向好友关系，重复接受幂等
// @Tags 好友接口
// @Accept json
// @Produce json
// @Param request body dto.AcceptInviteRequest true "接受邀请请求"
// @Router /api/v1/friend/accept [post]
func (h *FriendHandler) AcceptInvite(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)

	var req dto.AcceptInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		result.Fail(c, nil, consts.CodeParamError)
		return
	}

	userID, ok := resolveCaller(c, h.identityService)
	if !ok {
		return
	}

	if err := h.connectionService.AcceptInvite(ctx, userID, req.Code); err != nil {
		failWithError(c, "接受好友邀请", err)
		return
	}

	result.Success(c, nil)
}

// Remove 删除好友接口
// @Summary 删除好友
// @Description 解除双向好友关系
// @Tags 好友接口
// @Accept json
// @Produce json
// @Param request body dto.RemoveFriendRequest true "删除好友请求"
// @Router /api/v1/friend/remove [post]
func (h *FriendHandler) Remove(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)

	var req dto.RemoveFriendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		result.Fail(c, nil, consts.CodeParamError)
		return
	}

	userID, ok := resolveCaller(c, h.identityService)
	if !ok {
		return
	}

	if err := h.connectionService.Remove(ctx, userID, req.FriendId); err != nil {
		failWithError(c, "删除好友", err)
		return
	}

	result.Success(c, nil)
}

// ToggleMute 切换好友静音接口
// @Summary 切换好友静音
// @Description 静音/取消静音某个好友，返回切换后的静音态
// @Tags 好友接口
// @Accept json
// @Produce json
// @Param request body dto.ToggleMuteRequest true "切换静音请求"
// @Router /api/v1/friend/mute [post]
func (h *FriendHandler) ToggleMute(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)

	var req dto.ToggleMuteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		result.Fail(c, nil, consts.CodeParamError)
		return
	}

	userID, ok := resolveCaller(c, h.identityService)
	if !ok {
		return
	}

	muted, err := h.connectionService.ToggleMute(ctx, userID, req.FriendId)
	if err != nil {
		failWithError(c, "切换好友静音", err)
		return
	}

	result.Success(c, gin.H{"muted": muted})
}

// List 获取关系视图接口
// @Summary 获取关系视图
// @Description 返回好友与 Crew 的完整关系视图
// @Tags 好友接口
// @Produce json
// @Router /api/v1/friend/list [get]
func (h *FriendHandler) List(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)

	userID, ok := resolveCaller(c, h.identityService)
	if !ok {
		return
	}

	flow, err := h.connectionService.List(ctx, userID)
	if err != nil {
		failWithError(c, "获取关系视图", err)
		return
	}

	result.Success(c, flow)
}
