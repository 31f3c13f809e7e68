package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"CrewServer/apps/social/internal/utils"
)

// JWTAuthMiddleware JWT 认证中间件
// 从请求头中提取 Token 并验证，验证通过后将平台账号存入 Context
func JWTAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			// 客户端请求错误,属于正常业务流程,不记录日志
			c.JSON(http.StatusUnauthorized, gin.H{
				"code":    401,
				"message": "未提供认证信息",
			})
			c.Abort()
			return
		}

		// 格式: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code":    401,
				"message": "认证格式错误",
			})
			c.Abort()
			return
		}

		claims, err := utils.ParseToken(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code":    401,
				"message": "Token 无效或已过期",
			})
			c.Abort()
			return
		}

		c.Set("platform_uid", claims.PlatformUid)
		c.Next()
	}
}

// GetPlatformUid 从 Context 中获取当前登录账号的平台标识
func GetPlatformUid(c *gin.Context) (string, bool) {
	v, exists := c.Get("platform_uid")
	if !exists {
		return "", false
	}
	uid, ok := v.(string)
	return uid, ok
}
