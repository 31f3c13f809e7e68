package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"CrewServer/apps/social/internal/channel"
	"CrewServer/apps/social/internal/connect"
	"CrewServer/apps/social/internal/middleware"
	"CrewServer/apps/social/internal/repository"
	"CrewServer/apps/social/internal/router"
	v1 "CrewServer/apps/social/internal/router/v1"
	"CrewServer/apps/social/internal/service"
	"CrewServer/apps/social/internal/utils"
	"CrewServer/config"
	"CrewServer/pkg/async"
	"CrewServer/pkg/id"
	"CrewServer/pkg/kafka"
	"CrewServer/pkg/logger"
	"CrewServer/pkg/minio"
	"CrewServer/pkg/mysql"
	pkgredis "CrewServer/pkg/redis"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 0. 读取配置：-config 优先，其次 CREW_CONFIG 环境变量
	configPath := flag.String("config", os.Getenv("CREW_CONFIG"), "配置文件路径（可选）")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("读取配置失败: %v", err)
	}

	// 1. 初始化日志
	zl, err := logger.Build(cfg.Logger)
	if err != nil {
		log.Fatalf("初始化日志失败: %v", err)
	}
	logger.ReplaceGlobal(zl)
	defer zl.Sync()

	// 2. 初始化小组件
	if err := id.Init(cfg.Gateway.SnowflakeNode); err != nil {
		log.Fatalf("初始化雪花节点失败: %v", err)
	}
	utils.InitJWT(cfg.Gateway.JWTSecret)

	// 3. 初始化MySQL
	db, err := mysql.Build(cfg.MySQL)
	if err != nil {
		log.Fatalf("初始化MySQL失败: %v", err)
	}
	mysql.ReplaceGlobal(db)

	// 4. 初始化Redis
	redisClient, err := pkgredis.Build(cfg.Redis)
	if err != nil {
		// Redis 初始化失败不阻塞启动（计数与限流降级）
		logger.Warn(ctx, "Redis 初始化失败，将降级到 MySQL-Only 模式",
			logger.ErrorField("error", err),
		)
		redisClient = nil
	} else {
		pkgredis.ReplaceGlobal(redisClient)
		logger.Info(ctx, "Redis 初始化成功", logger.String("addr", cfg.Redis.Addr))
	}

	// 5. 初始化协程池
	if err := async.Init(cfg.Async); err != nil {
		log.Fatalf("初始化协程池失败: %v", err)
	}
	defer async.Release()

	// 6. 初始化 Kafka Producer（移动端推送管道）
	var pushProducer *kafka.Producer
	if len(cfg.Kafka.Brokers) > 0 {
		pushProducer = kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.PushTopic)
		logger.Info(ctx, "Kafka Producer 初始化成功",
			logger.String("brokers", cfg.Kafka.Brokers[0]),
			logger.String("topic", cfg.Kafka.PushTopic),
		)
		defer func() {
			if err := pushProducer.Close(); err != nil {
				logger.Error(ctx, "关闭 Kafka Producer 失败", logger.ErrorField("error", err))
			}
		}()
	}

	// 7. 初始化对象存储（头像，失败不阻塞启动）
	var avatarStore service.AvatarStore
	if store, err := minio.Build(cfg.Minio); err != nil {
		logger.Warn(ctx, "对象存储初始化失败，头像上传不可用",
			logger.ErrorField("error", err),
		)
	} else {
		avatarStore = store
	}

	// 8. 组装连接管理器与投递通道
	manager := connect.NewManager()
	dispatcher := channel.NewDispatcher()
	dispatcher.Register("app", channel.NewAppPushSender(manager, pushProducer))
	if cfg.Channel.TelegramToken != "" {
		dispatcher.Register("tg", channel.NewTelegramSender(cfg.Channel))
	}
	if cfg.Channel.SMTPHost != "" {
		dispatcher.Register("mail", channel.NewEmailSender(cfg.Channel))
	}

	// 9. 组装依赖 - Repository 层
	identityRepo := repository.NewIdentityRepository(db, redisClient)
	connRepo := repository.NewConnectionRepository(db, redisClient)
	crewRepo := repository.NewCrewRepository(db, redisClient)
	attRepo := repository.NewAttendanceRepository(db, redisClient)
	notifyRepo := repository.NewNotifyRepository(db, redisClient)

	// 10. 组装依赖 - Service 层
	federation := service.NewFederationClient(cfg.Federation)
	identityService := service.NewIdentityService(identityRepo, federation, avatarStore)
	connectionService := service.NewConnectionService(connRepo, crewRepo, identityService)
	crewService := service.NewCrewService(crewRepo, identityService)
	attendanceService := service.NewAttendanceService(attRepo, connRepo, crewRepo, identityService)
	notifyService := service.NewNotifyService(notifyRepo, connRepo, crewRepo, attRepo,
		identityService, dispatcher, cfg.Notify.ReminderWindow)

	// 11. 组装依赖 - Handler 层
	handlers := &router.Handlers{
		Identity:   v1.NewIdentityHandler(identityService),
		Friend:     v1.NewFriendHandler(connectionService, identityService),
		Crew:       v1.NewCrewHandler(crewService, notifyService, identityService),
		Attendance: v1.NewAttendanceHandler(attendanceService, notifyService, identityService),
		Notify:     v1.NewNotifyHandler(notifyService, identityService),
		WS:         v1.NewWSHandler(manager, identityService),
	}

	// 12. IP 限流器
	rateLimiter := middleware.NewIPRateLimiter(cfg.Gateway.RateLimitRPS, cfg.Gateway.RateLimitBurst)
	if redisClient != nil {
		rateLimiter.SetRedisClient(redisClient)
	}

	// 13. 启动活动提醒扫描
	go runReminderSweeper(ctx, notifyService, cfg.Notify.ReminderSweepInterval)

	// 14. 启动 HTTP Server
	engine := router.InitRouter(handlers, rateLimiter)
	server := &http.Server{
		Addr:    cfg.Gateway.Addr,
		Handler: engine,
	}

	go func() {
		logger.Info(ctx, "Social 服务启动成功", logger.String("address", cfg.Gateway.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(ctx, "HTTP Server 启动失败", logger.ErrorField("error", err))
			stop()
		}
	}()

	// 15. 等待退出信号，优雅关闭
	<-ctx.Done()
	logger.Info(context.Background(), "收到退出信号，开始优雅关闭")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error(shutdownCtx, "HTTP Server 关闭失败", logger.ErrorField("error", err))
	}
	manager.Shutdown()
	logger.Info(context.Background(), "Social 服务已退出")
}

// runReminderSweeper 周期性扫描到点的活动提醒
func runReminderSweeper(ctx context.Context, notifyService service.INotifyService, interval time.Duration) {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			sent, err := notifyService.SweepEventReminders(ctx, now)
			if err != nil {
				logger.Error(ctx, "活动提醒扫描失败", logger.ErrorField("error", err))
				continue
			}
			if sent > 0 {
				logger.Info(ctx, "活动提醒扫描完成", logger.Int("sent", sent))
			}
		}
	}
}
