package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/moon-community/fto-queue-service/internal/api/http"
	"github.com/moon-community/fto-queue-service/internal/api/http/handlers"
	"github.com/moon-community/fto-queue-service/internal/auth"
	"github.com/moon-community/fto-queue-service/internal/config"
	"github.com/moon-community/fto-queue-service/internal/events"
	"github.com/moon-community/fto-queue-service/internal/gateway"
	"github.com/moon-community/fto-queue-service/internal/observability"
	"github.com/moon-community/fto-queue-service/internal/persistence"
	"github.com/moon-community/fto-queue-service/internal/repository"
	"github.com/moon-community/fto-queue-service/internal/roles"
	"github.com/moon-community/fto-queue-service/internal/service"
	"github.com/moon-community/fto-queue-service/internal/statusboard"
	"github.com/moon-community/fto-queue-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher(logger)

	gatewayClient := gateway.NewClient(cfg.Gateway)
	if !gatewayClient.Configured() {
		logger.Warn("GATEWAY_BASE_URL not set; direct messages and role lookups disabled")
	}

	queueRepo := repository.NewQueueRepository(pg.PoolHandle())
	board := statusboard.NewRedisBoard(redis.Client)
	resolver := roles.NewGatewayResolver(gatewayClient, cfg.Gateway)

	queueService := service.NewQueueService(service.QueueDependencies{
		Store:      queueRepo,
		Board:      board,
		Resolver:   resolver,
		Dispatcher: dispatcher,
		Logger:     logger,
		Metrics:    metrics,
	})
	sweeperService := service.NewSweeperService(service.QueueDependencies{
		Store:      queueRepo,
		Board:      board,
		Dispatcher: dispatcher,
		Logger:     logger,
		Metrics:    metrics,
	}, cfg.Queue.TTL)

	notificationService := service.NewNotificationService(gatewayClient, logger)
	notificationService.RegisterHandlers(dispatcher)

	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret)
	authMiddleware := auth.NewAuthMiddleware(tokenManager)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:          handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Queue:           handlers.NewQueueHandler(queueService, cfg.Gateway.OfficerRoleName, cfg.Gateway.ProbationaryRoleName),
		Board:           handlers.NewBoardHandler(queueService),
		AuthMiddleware:  authMiddleware,
		BoardAPIKeyHash: cfg.Auth.BoardAPIKeyHash,
	})

	// Dependencies are confirmed reachable at this point (postgres pinged
	// during connect); only now may the sweeper begin ticking.
	sweeperWorker, err := worker.StartSweeper(sweeperService, cfg.Queue.SweepInterval, logger)
	if err != nil {
		logger.Fatal("failed to start sweeper", zap.Error(err))
	}

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	sweeperWorker.Stop()
	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
