package main

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/joho/godotenv"

	"github.com/linescout/linescout-backend/internal/agents"
	"github.com/linescout/linescout-backend/internal/handoffs"
	"github.com/linescout/linescout-backend/internal/notifications"
	"github.com/linescout/linescout-backend/internal/reorders"
	"github.com/linescout/linescout-backend/internal/users"
	"github.com/linescout/linescout-backend/pkg/config"
	"github.com/linescout/linescout-backend/pkg/db"
	"github.com/linescout/linescout-backend/pkg/expo"
	"github.com/linescout/linescout-backend/pkg/logger"
	"github.com/linescout/linescout-backend/pkg/mailer"
	"github.com/linescout/linescout-backend/pkg/migrate"
	"github.com/linescout/linescout-backend/pkg/outbox/registry"
	"github.com/linescout/linescout-backend/pkg/pubsub"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "notify-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "notify-worker"

	logg = logger.New(logger.Options{
		ServiceName: "notify-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	pubsubClient, err := pubsub.NewClient(context.Background(), cfg.GCP, cfg.PubSub, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap pubsub", err)
		os.Exit(1)
	}
	defer func() {
		if err := pubsubClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing pubsub client", err)
		}
	}()

	eventRegistry, err := registry.NewEventRegistry(cfg.PubSub)
	if err != nil {
		logg.Error(context.Background(), "failed to build event registry", err)
		os.Exit(1)
	}

	expoClient, err := expo.NewClient(cfg.Expo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create expo client", err)
		os.Exit(1)
	}

	mailClient, err := mailer.New(cfg.SMTP, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create mailer", err)
		os.Exit(1)
	}

	gormDB := dbClient.DB()
	notificationRepo := notifications.NewRepository(gormDB)
	agentsRepo := agents.NewRepository(gormDB)
	usersRepo := users.NewRepository(gormDB)
	handoffRepo := handoffs.NewRepository(gormDB)
	reorderRepo := reorders.NewRepository(gormDB)

	fanout, err := notifications.NewFanout(notificationRepo, agentsRepo, usersRepo, expoClient, mailClient, cfg.Notify.AdminEmail, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create notification fan-out", err)
		os.Exit(1)
	}

	consumer, err := notifications.NewConsumer(eventRegistry, fanout, handoffRepo, reorderRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create notification consumer", err)
		os.Exit(1)
	}

	service, err := NewService(ServiceParams{
		Config:   cfg,
		Logger:   logg,
		DB:       dbClient,
		PubSub:   pubsubClient,
		Consumer: consumer,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create notify worker", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
	})
	logg.Info(ctx, "starting notify worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "notify worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "notify worker shutting down gracefully")
}
