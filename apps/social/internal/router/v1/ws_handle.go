package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"CrewServer/apps/social/internal/connect"
	"CrewServer/apps/social/internal/middleware"
	"CrewServer/apps/social/internal/service"
	"CrewServer/pkg/logger"
)

// WSHandler WebSocket 连接处理器
type WSHandler struct {
	manager         *connect.Manager
	identityService service.IIdentityService
	upgrader        websocket.Upgrader
}

// NewWSHandler 创建 WebSocket 连接处理器
func NewWSHandler(manager *connect.Manager, identityService service.IIdentityService) *WSHandler {
	return &WSHandler{
		manager:         manager,
		identityService: identityService,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// 客户端是原生 App，不做 Origin 校验
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Connect 建立实时推送连接接口
// @Summary 建立实时推送连接
// @Description 升级为 WebSocket 长连接，服务端单向推送应用内通知
// @Tags 连接接口
// @Router /api/v1/ws [get]
func (h *WSHandler) Connect(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)

	// 认证与身份解析放在升级之前，失败时还能走普通 HTTP 响应
	userID, ok := resolveCaller(c, h.identityService)
	if !ok {
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warn(ctx, "WebSocket 升级失败",
			logger.String("userId", userID),
			logger.ErrorField("error", err),
		)
		return
	}

	client := connect.NewClient(conn, userID, uuid.NewString())
	if replaced := h.manager.Register(client); replaced != nil {
		replaced.Close()
	}

	logger.Info(ctx, "WebSocket 连接建立",
		logger.String("userId", userID),
		logger.String("connId", client.ConnID()),
	)

	client.Run(c.Request.Context(), func() {
		h.manager.Unregister(client)
		logger.Info(ctx, "WebSocket 连接关闭",
			logger.String("userId", client.UserID()),
			logger.String("connId", client.ConnID()),
		)
	})
}
