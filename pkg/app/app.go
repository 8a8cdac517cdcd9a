// Package app 提供应用程序的初始化、装配与运行.
package app

import (
	contextPkg "context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/sentinelbot/sentinel/pkg/cache"
	"github.com/sentinelbot/sentinel/pkg/configs"
	"github.com/sentinelbot/sentinel/pkg/context"
	"github.com/sentinelbot/sentinel/pkg/internal/bot"
	"github.com/sentinelbot/sentinel/pkg/internal/handle"
	"github.com/sentinelbot/sentinel/pkg/internal/ingest"
	"github.com/sentinelbot/sentinel/pkg/internal/jobs"
	"github.com/sentinelbot/sentinel/pkg/internal/ledger"
	"github.com/sentinelbot/sentinel/pkg/internal/router"
	"github.com/sentinelbot/sentinel/pkg/internal/service"
	"github.com/sentinelbot/sentinel/pkg/internal/storage"
	"github.com/sentinelbot/sentinel/pkg/log"
	"github.com/sentinelbot/sentinel/pkg/metrics"
	"github.com/sentinelbot/sentinel/pkg/middleware"
	"github.com/sentinelbot/sentinel/pkg/rule"
	"github.com/sentinelbot/sentinel/pkg/scheduler"
)

// App 聚合全部运行组件：运维 HTTP 服务、Telegram Bot 与调度器.
type App struct {
	Engine *gin.Engine

	config    *configs.AppConfig
	manager   *storage.Manager
	scheduler *scheduler.Scheduler
	bot       *bot.Bot
}

// NewApp 加载配置并装配全部组件.装配失败直接退出进程.
func NewApp(configPath string) *App {
	ctx := contextPkg.Background()

	if err := configs.InitConfig(configPath); err != nil {
		fmt.Printf("Error initializing config: %v\n", err)
		os.Exit(1)
	}

	config := configs.GetConfig()
	if err := rule.ValidateStruct(config); err != nil {
		fmt.Printf("Invalid config: %v\n", err)
		os.Exit(1)
	}

	log.Init()

	if err := metrics.InitMetrics(config.Metrics); err != nil {
		fmt.Printf("Error initializing metrics: %v\n", err)
		os.Exit(1)
	}

	manager, err := storage.Init(ctx, config)
	if err != nil {
		fmt.Printf("Error initializing storage: %v\n", err)
		os.Exit(1)
	}

	led := ledger.New(manager.GetDBClient())
	if err := led.AutoMigrate(); err != nil {
		fmt.Printf("Error migrating ledger schema: %v\n", err)
		os.Exit(1)
	}

	var searchCache *cache.Cache
	if kvClient := manager.GetKVClient(); kvClient != nil {
		searchCache = cache.NewCache(kvClient)
	}

	searchSvc := service.NewSearchService(led, searchCache, manager.GetMQClient(), config.Search)

	orch, err := ingest.New(led, manager.GetContentStore(), manager.GetMQClient(),
		config.Ingest, config.Store.ScratchDir)
	if err != nil {
		fmt.Printf("Error initializing ingest pipeline: %v\n", err)
		os.Exit(1)
	}

	sched, err := scheduler.NewScheduler()
	if err != nil {
		fmt.Printf("Error initializing scheduler: %v\n", err)
		os.Exit(1)
	}

	if err := jobs.RegisterCronJobs(sched, manager, config.Store.ScratchDir, config.Ingest.ScratchTTL()); err != nil {
		fmt.Printf("Error registering cron jobs: %v\n", err)
		os.Exit(1)
	}

	// Bot 是可选传输层，未配置 token 时只跑运维 HTTP 服务
	var tgBot *bot.Bot

	if config.Bot.Token != "" {
		tgBot, err = bot.New(config.Bot, orch, searchSvc)
		if err != nil {
			fmt.Printf("Error initializing telegram bot: %v\n", err)
			os.Exit(1)
		}
	} else {
		log.Logger().Warn().Msg("bot token not configured, telegram transport disabled")
	}

	if !config.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	l := log.Logger()
	gin.DefaultWriter = log.NewGinWriter(l, zerolog.InfoLevel)
	gin.DefaultErrorWriter = log.NewGinWriter(l, zerolog.ErrorLevel)

	engine := gin.New()
	engine.Use(
		gin.Recovery(),
		middleware.GinLoggerMiddleware(),
		middleware.CORSMiddleware(),
		middleware.PrometheusMiddleware(),
		storageManagerMiddleware(manager),
	)

	handlers := handle.NewHandlers(searchSvc, led, manager.GetContentStore(), manager.GetMQClient(), sched)
	router.Register(engine, handlers)

	if config.Metrics.Enabled {
		_ = metrics.StartMetricsServer(config.Metrics, engine)
	}

	return &App{
		Engine:    engine,
		config:    config,
		manager:   manager,
		scheduler: sched,
		bot:       tgBot,
	}
}

// storageManagerMiddleware 把存储管理器注入每个请求的 context，供健康检查处理器取用.
func storageManagerMiddleware(mgr *storage.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request = c.Request.WithContext(context.WithStorageManager(c.Request.Context(), mgr))
		c.Next()
	}
}

// Run 并发运行 HTTP 服务、Bot 轮询与调度器，收到信号后优雅退出.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(contextPkg.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.config.Server.Host, a.config.Server.Port),
		Handler:           a.Engine,
		ReadHeaderTimeout: a.config.Server.GetTimeoutDuration(),
	}

	a.scheduler.Start()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Logger().Info().Str("addr", srv.Addr).Msg("http server started")

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}

		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := contextPkg.WithTimeout(contextPkg.Background(), a.config.Server.GetTimeoutDuration())
		defer cancel()

		return srv.Shutdown(shutdownCtx)
	})

	if a.bot != nil {
		g.Go(func() error {
			if err := a.bot.Run(gctx); err != nil && !errors.Is(err, contextPkg.Canceled) {
				return fmt.Errorf("telegram bot: %w", err)
			}

			return nil
		})
	}

	err := g.Wait()

	if stopErr := a.scheduler.Stop(); stopErr != nil {
		log.Logger().Warn().Err(stopErr).Msg("scheduler stop failed")
	}

	if closeErr := a.manager.Close(); closeErr != nil {
		log.Logger().Warn().Err(closeErr).Msg("storage close failed")
	}

	return err
}
