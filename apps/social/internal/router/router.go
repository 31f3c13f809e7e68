package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"CrewServer/apps/social/internal/middleware"
	v1 "CrewServer/apps/social/internal/router/v1"
	"CrewServer/pkg/util"
)

// Handlers 路由需要的全部处理器（依赖注入）
type Handlers struct {
	Identity   *v1.IdentityHandler
	Friend     *v1.FriendHandler
	Crew       *v1.CrewHandler
	Attendance *v1.AttendanceHandler
	Notify     *v1.NotifyHandler
	WS         *v1.WSHandler
}

// InitRouter 初始化路由
// rateLimiter 可为 nil，表示不启用 IP 限流（测试环境）
func InitRouter(h *Handlers, rateLimiter *middleware.IPRateLimiter) *gin.Engine {
	r := gin.New()

	// 恢复中间件
	r.Use(middleware.GinRecovery(true))

	// 追踪中间件 (生成 trace_id)
	r.Use(util.TraceLogger())

	// 日志中间件
	r.Use(middleware.GinLogger())

	// Prometheus 监控中间件
	r.Use(middleware.PrometheusMiddleware())

	// 跨域中间件
	r.Use(middleware.CorsMiddleware())

	// IP 限流中间件
	if rateLimiter != nil {
		r.Use(middleware.IPRateLimitMiddleware(rateLimiter))
	}

	// 健康检查（无需认证）
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	// Prometheus 指标暴露接口
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API 路由组，业务接口全部需要认证
	api := r.Group("/api/v1")
	api.Use(middleware.JWTAuthMiddleware())
	{
		// 身份相关接口
		identity := api.Group("/identity")
		{
			identity.GET("/me", h.Identity.Me)
			identity.POST("/avatar", h.Identity.UploadAvatar)
		}

		// 好友相关接口
		friend := api.Group("/friend")
		{
			friend.GET("/invite", h.Friend.Invite)
			friend.POST("/accept", h.Friend.AcceptInvite)
			friend.POST("/remove", h.Friend.Remove)
			friend.POST("/mute", h.Friend.ToggleMute)
			friend.GET("/list", h.Friend.List)
		}

		// Crew 相关接口
		crew := api.Group("/crew")
		{
			crew.POST("/create", h.Crew.Create)
			crew.POST("/join", h.Crew.Join)
			crew.POST("/request", h.Crew.RequestJoin)
			crew.POST("/request/approve", h.Crew.Approve)
			crew.POST("/request/deny", h.Crew.Deny)
			crew.GET("/request/list", h.Crew.PendingRequests)
			crew.POST("/promote", h.Crew.Promote)
			crew.POST("/demote", h.Crew.Demote)
			crew.POST("/kick", h.Crew.Kick)
			crew.POST("/settings", h.Crew.UpdateSettings)
			crew.POST("/leave", h.Crew.Leave)
			crew.GET("/invite", h.Crew.MemberInvite)
			crew.GET("/members", h.Crew.Members)
			crew.POST("/mute", h.Crew.ToggleMute)
			crew.GET("/info", h.Crew.Info)
		}

		// 出席相关接口
		attendance := api.Group("/attendance")
		{
			attendance.POST("/rsvp", h.Attendance.Rsvp)
			attendance.POST("/cancel", h.Attendance.Cancel)
			attendance.GET("/roster", h.Attendance.WhoIsGoing)
			attendance.GET("/upcoming", h.Attendance.Upcoming)
			attendance.POST("/reminder", h.Attendance.ScheduleReminder)
		}

		// 通知相关接口
		notify := api.Group("/notify")
		{
			notify.POST("/checkin", h.Notify.Checkin)
			notify.POST("/locate", h.Notify.Locate)
			notify.GET("/targets", h.Notify.Targets)
			notify.GET("/preference", h.Notify.GetPreference)
			notify.PUT("/preference", h.Notify.UpdatePreference)
		}

		// 内部运维接口
		internal := api.Group("/internal")
		{
			internal.POST("/reminders/sweep", h.Notify.SweepReminders)
		}

		// 实时推送长连接
		api.GET("/ws", h.WS.Connect)
	}

	return r
}
