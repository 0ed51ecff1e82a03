package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/accesskit/grantd/audit"
	"github.com/accesskit/grantd/catalog"
	"github.com/accesskit/grantd/config"
	"github.com/accesskit/grantd/controller"
	"github.com/accesskit/grantd/dao"
	"github.com/accesskit/grantd/db"
	"github.com/accesskit/grantd/hooks"
	logger "github.com/accesskit/grantd/logging"
	"github.com/accesskit/grantd/plugin/autoapprove"
	"github.com/accesskit/grantd/plugin/notifier"
	"github.com/accesskit/grantd/router"
	"github.com/accesskit/grantd/service"
	"github.com/accesskit/grantd/util"
)

func main() {
	// Initialize configuration
	if err := config.InitConfig(); err != nil {
		log.Fatalf("Failed to initialize config: %v", err)
	}

	// Initialize logger
	logger.InitLogger(config.GetString("log.dir"))
	defer logger.Sync()

	// Initialize Neo4j
	if err := db.InitNeo4j(); err != nil {
		logger.Fatal("Failed to initialize Neo4j", zap.Error(err))
	}
	defer db.CloseNeo4j()

	// Initialize Redis
	if err := db.InitRedis(); err != nil {
		logger.Fatal("Failed to initialize Redis", zap.Error(err))
	}
	defer db.CloseRedis()

	// Initialize EventBus
	eventBus := util.NewEventBus()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	eventBus.Start(ctx)

	// Initialize services and utilities
	cacheService := util.NewCacheService()
	notificationService := util.NewNotificationService()
	auditRepository, err := audit.NewElasticsearchRepository(config.GetString("elasticsearch.url"))
	if err != nil {
		logger.Fatal("Failed to initialize audit repository", zap.Error(err))
	}
	auditService := audit.NewService(auditRepository)

	// Access-time catalog, immutable after this point
	accessTimeCatalog := catalog.New()

	// Hook providers are installed at startup only
	registry := hooks.NewRegistry(config.GetStringSlice("hooks.required"))
	if err := registry.Register(autoapprove.New()); err != nil {
		logger.Fatal("Failed to register conditional access provider", zap.Error(err))
	}
	if err := registry.Register(notifier.New(notificationService)); err != nil {
		logger.Fatal("Failed to register notifier provider", zap.Error(err))
	}
	registry.Freeze()

	dispatcher := hooks.NewDispatcher(
		registry,
		config.GetDuration("hooks.providerTimeout"),
		config.GetInt("hooks.maxConcurrent"),
	)

	// Initialize DAOs
	grantDAO := dao.NewGrantDAO(db.Neo4jDriver)

	// Initialize services
	grantService := service.NewGrantService(
		grantDAO,
		accessTimeCatalog,
		dispatcher,
		cacheService,
		notificationService,
		eventBus,
		auditService,
	)

	// Rebuild the expiry queue from persisted active grants, then start
	// the tick loop
	if err := grantService.RehydrateScheduler(ctx); err != nil {
		logger.Fatal("Failed to rehydrate expiry scheduler", zap.Error(err))
	}
	go grantService.Scheduler().Run(ctx, config.GetDuration("scheduler.tickInterval"))

	// Initialize controllers and router
	controllers := controller.InitControllers(grantService, auditService)
	engine := router.SetupRouter(
		controllers,
		config.GetInt("rateLimit.requests"),
		config.GetDuration("rateLimit.window"),
	)

	// Set up the server
	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", config.GetString("server.port")),
		Handler: engine,
	}

	// Start the server in a goroutine
	go func() {
		logger.Info("Starting server", zap.String("port", config.GetString("server.port")))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	// The context is used to inform the server it has 5 seconds to finish
	// the request it is currently handling
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exiting")
}
