package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"devlog_notifier/internal/config"
	"devlog_notifier/internal/notify"
	"devlog_notifier/internal/publisher"
	"devlog_notifier/internal/scheduler"
	"devlog_notifier/internal/service"
	"devlog_notifier/internal/source/flavortown"
	"devlog_notifier/internal/storage/postgres"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	logger := setupLogger("info")

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger = setupLogger(cfg.LogLevel)

	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Error("failed to ping database", "error", err)
		os.Exit(1)
	}
	logger.Info("connected to database")

	var events service.Publisher
	if cfg.RabbitMQ.Enabled {
		rabbitMQ, err := publisher.NewRabbitMQ(publisher.Config{
			URL:        cfg.RabbitMQ.URL,
			Exchange:   cfg.RabbitMQ.Exchange,
			RoutingKey: cfg.RabbitMQ.RoutingKey,
			QueueName:  cfg.RabbitMQ.QueueName,
		}, logger)
		if err != nil {
			logger.Error("failed to connect to rabbitmq", "error", err)
			os.Exit(1)
		}
		defer rabbitMQ.Close()
		events = rabbitMQ
	}

	syncStateStore := postgres.NewSyncStateStore(db)
	subscriptionStore := postgres.NewSubscriptionStore(db)

	slack := notify.NewSlack(notify.Config{
		Token:   cfg.Slack.Token,
		BaseURL: cfg.Slack.BaseURL,
	}, logger)

	// One upstream client per subscription key, created on first use.
	registry := service.NewRegistry(func(apiKey string) service.ProjectClient {
		return flavortown.New(flavortown.Config{
			BaseURL:        cfg.API.BaseURL,
			Token:          apiKey,
			Timeout:        cfg.API.Timeout,
			MaxAttempts:    cfg.API.Retry.MaxAttempts,
			InitialBackoff: cfg.API.Retry.InitialBackoff,
			MaxBackoff:     cfg.API.Retry.MaxBackoff,
		}, logger)
	})

	engine := service.NewDeltaEngine(syncStateStore, logger)
	dispatcher := service.NewNotificationDispatcher(slack, events, cfg.Slack.ProjectBaseURL, logger)

	syncService := service.NewSyncService(
		subscriptionStore,
		engine,
		dispatcher,
		slack,
		registry,
		logger,
		cfg.Sync,
	)

	sched := scheduler.NewScheduler(syncService, cfg.Sync.Interval, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	logger.Info("starting devlog notifier",
		"interval", cfg.Sync.Interval,
		"project_delay", cfg.Sync.ProjectDelay,
		"api_base_url", cfg.API.BaseURL,
	)

	if err := sched.Start(ctx); err != nil && err != context.Canceled {
		logger.Error("scheduler error", "error", err)
		os.Exit(1)
	}
}

func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: logLevel}
	handler := slog.NewJSONHandler(os.Stdout, opts)
	return slog.New(handler)
}
