package util

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const HeaderXRequestID = "X-Request-ID"

// TraceLogger 追踪中间件，生成或透传 trace_id 并存入 Gin 上下文。
func TraceLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 优先用上游（Nginx/客户端）带来的请求 id
		traceId := c.GetHeader(HeaderXRequestID)
		if traceId == "" {
			traceId = uuid.New().String()
		}

		// 放入 Gin 上下文供 Handler 使用，同时写回响应头方便排查
		c.Set("trace_id", traceId)
		c.Header(HeaderXRequestID, traceId)

		c.Next()
	}
}

// NewUUID 生成新的 UUID
func NewUUID() string {
	return uuid.New().String()
}
