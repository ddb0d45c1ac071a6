package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/forumkit/lottery-draw-backend/api/routes"
	"github.com/forumkit/lottery-draw-backend/internal/config"
	"github.com/forumkit/lottery-draw-backend/internal/handlers"
	"github.com/forumkit/lottery-draw-backend/internal/repositories"
	mongorepo "github.com/forumkit/lottery-draw-backend/internal/repositories/mongodb"
	"github.com/forumkit/lottery-draw-backend/internal/services"
	"github.com/forumkit/lottery-draw-backend/pkg/forum"
	"github.com/forumkit/lottery-draw-backend/pkg/mongodb"
	"golang.org/x/exp/slog"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	setupLogger(cfg.LogLevel)

	mongoClient, err := mongodb.NewClient(cfg.MongoDB.URI)
	if err != nil {
		slog.Error("failed to connect to MongoDB", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			slog.Error("failed to disconnect from MongoDB", "error", err)
		}
	}()

	db := mongoClient.Database(cfg.MongoDB.Database)

	var lotteryRepo repositories.LotteryRepository = mongorepo.NewLotteryRepository(db)
	var notificationRepo repositories.NotificationRepository = mongorepo.NewNotificationRepository(db)
	var adminUserRepo repositories.AdminUserRepository = mongorepo.NewAdminUserRepository(db)

	indexCtx, cancelIndexes := context.WithTimeout(context.Background(), 10*time.Second)
	if err := lotteryRepo.EnsureIndexes(indexCtx); err != nil {
		cancelIndexes()
		slog.Error("failed to ensure indexes", "error", err)
		os.Exit(1)
	}
	cancelIndexes()

	var forumClient forum.Client
	if cfg.Forum.MockForum {
		slog.Warn("using the in-memory mock forum client")
		forumClient = forum.NewMockClient()
	} else {
		forumClient = forum.NewHTTPClient(cfg.Forum.BaseURL, cfg.Forum.APIKey, cfg.Forum.APIUsername)
	}

	creationService := services.NewCreationService(lotteryRepo, forumClient, cfg)
	drawService := services.NewDrawService(lotteryRepo, notificationRepo, forumClient, cfg)
	lotteryService := services.NewLotteryService(lotteryRepo, forumClient)
	authService := services.NewAuthService(adminUserRepo, cfg)
	scheduler := services.NewScheduler(lotteryRepo, drawService, forumClient, time.Duration(cfg.Scheduler.IntervalSeconds)*time.Second)

	schedulerCtx, stopScheduler := context.WithCancel(context.Background())
	defer stopScheduler()
	if cfg.Scheduler.Enabled {
		scheduler.Start(schedulerCtx)
	}

	authHandler := handlers.NewAuthHandler(authService)
	lotteryHandler := handlers.NewLotteryHandler(creationService, lotteryService, drawService, scheduler)
	notificationHandler := handlers.NewNotificationHandler(notificationRepo)

	router := routes.SetupRouter(cfg, authHandler, lotteryHandler, notificationHandler)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		slog.Info("server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down server")
	stopScheduler()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server exiting")
}

func setupLogger(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
