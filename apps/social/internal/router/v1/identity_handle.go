package v1

import (
	"github.com/gin-gonic/gin"

	"CrewServer/apps/social/internal/middleware"
	"CrewServer/apps/social/internal/service"
	"CrewServer/consts"
	"CrewServer/pkg/logger"
	"CrewServer/pkg/result"
)

// maxAvatarSize 头像上传大小上限 (5MB)
const maxAvatarSize = 5 << 20

// IdentityHandler 身份处理器
type IdentityHandler struct {
	identityService service.IIdentityService
}

// NewIdentityHandler 创建身份处理器
func NewIdentityHandler(identityService service.IIdentityService) *IdentityHandler {
	return &IdentityHandler{
		identityService: identityService,
	}
}

// linkedIdentityItem 关联身份响应条目
type linkedIdentityItem struct {
	PlatformUid string `json:"platformUid"` // 平台账号
	DisplayName string `json:"displayName"` // 展示名
	AvatarUrl   string `json:"avatarUrl"`   // 头像地址
}

// meResponse 当前身份响应
type meResponse struct {
	UserId     string                `json:"userId"`     // 规范身份 ID
	Identities []*linkedIdentityItem `json:"identities"` // 名下全部平台身份
}

// Me 查看当前身份接口
// @Summary 查看当前身份
// @Description 返回调用方的规范身份及其名下全部平台身份
// @Tags 身份接口
// @Produce json
// @Router /api/v1/identity/me [get]
func (h *IdentityHandler) Me(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)

	userID, ok := resolveCaller(c, h.identityService)
	if !ok {
		return
	}

	rows, err := h.identityService.LinkedIdentities(ctx, userID)
	if err != nil {
		failWithError(c, "查询关联身份", err)
		return
	}

	items := make([]*linkedIdentityItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, &linkedIdentityItem{
			PlatformUid: row.PlatformUid,
			DisplayName: row.DisplayName,
			AvatarUrl:   row.AvatarUrl,
		})
	}

	result.Success(c, &meResponse{
		UserId:     userID,
		Identities: items,
	})
}

// UploadAvatar 上传头像接口
// @Summary 上传头像
// @Description 上传头像文件并更新该身份全部行的头像地址
// @Tags 身份接口
// @Accept multipart/form-data
// @Produce json
// @Param avatar formData file true "头像文件"
// @Router /api/v1/identity/avatar [post]
func (h *IdentityHandler) UploadAvatar(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)

	userID, ok := resolveCaller(c, h.identityService)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("avatar")
	if err != nil {
		result.Fail(c, nil, consts.CodeParamError)
		return
	}
	if fileHeader.Size <= 0 || fileHeader.Size > maxAvatarSize {
		result.Fail(c, nil, consts.CodeParamError)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		logger.Error(ctx, "打开上传文件失败", logger.ErrorField("error", err))
		result.Fail(c, nil, consts.CodeInternalError)
		return
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	url, err := h.identityService.SetAvatar(ctx, userID, file, fileHeader.Size, contentType)
	if err != nil {
		failWithError(c, "上传头像", err)
		return
	}

	result.Success(c, gin.H{"avatarUrl": url})
}
