package v1

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"CrewServer/apps/social/internal/middleware"
	"CrewServer/apps/social/internal/service"
	"CrewServer/consts"
	"CrewServer/pkg/logger"
	"CrewServer/pkg/result"
)

// ==================== 处理器公共辅助 ====================

// resolveCaller 从认证上下文取平台账号并解析为规范身份。
// 解析失败时已写好响应，调用方直接 return 即可。
func resolveCaller(c *gin.Context, identityService service.IIdentityService) (string, bool) {
	ctx := middleware.NewContextWithGin(c)

	platformUid, ok := middleware.GetPlatformUid(c)
	if !ok {
		result.Fail(c, nil, consts.CodeUnauthorized)
		return "", false
	}

	userID, err := identityService.ResolveCanonicalID(ctx, platformUid, nil)
	if err != nil {
		if consts.IsNonServerError(service.CodeOf(err)) {
			result.Fail(c, nil, service.CodeOf(err))
			return "", false
		}
		logger.Error(ctx, "解析调用方身份失败",
			logger.String("platformUid", platformUid),
			logger.ErrorField("error", err),
		)
		result.Fail(c, nil, consts.CodeInternalError)
		return "", false
	}
	return userID, true
}

// failWithError 按业务码/内部错误两条路径写失败响应
func failWithError(c *gin.Context, action string, err error) {
	ctx := middleware.NewContextWithGin(c)

	code := service.CodeOf(err)
	if consts.IsNonServerError(code) {
		result.Fail(c, nil, code)
		return
	}
	logger.Error(ctx, action+"服务内部错误",
		logger.ErrorField("error", err),
	)
	result.Fail(c, nil, consts.CodeInternalError)
}

// queryInt64 读取 int64 查询参数，缺失或格式错误返回 false
func queryInt64(c *gin.Context, name string) (int64, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}
