package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/linescout/linescout-backend/api/routes"
	"github.com/linescout/linescout-backend/internal/agents"
	"github.com/linescout/linescout-backend/internal/auth"
	"github.com/linescout/linescout-backend/internal/conversations"
	"github.com/linescout/linescout-backend/internal/handoffs"
	"github.com/linescout/linescout-backend/internal/ledger"
	"github.com/linescout/linescout-backend/internal/notifications"
	"github.com/linescout/linescout-backend/internal/payments"
	"github.com/linescout/linescout-backend/internal/quotes"
	"github.com/linescout/linescout-backend/internal/reorders"
	"github.com/linescout/linescout-backend/internal/users"
	"github.com/linescout/linescout-backend/pkg/auth/session"
	"github.com/linescout/linescout-backend/pkg/config"
	"github.com/linescout/linescout-backend/pkg/db"
	"github.com/linescout/linescout-backend/pkg/expo"
	"github.com/linescout/linescout-backend/pkg/logger"
	"github.com/linescout/linescout-backend/pkg/mailer"
	"github.com/linescout/linescout-backend/pkg/migrate"
	"github.com/linescout/linescout-backend/pkg/outbox"
	"github.com/linescout/linescout-backend/pkg/paystack"
	"github.com/linescout/linescout-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "api"

	logg = logger.New(logger.Options{
		ServiceName: "api",
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

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessions, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	gormDB := dbClient.DB()
	usersRepo := users.NewRepository(gormDB)
	agentsRepo := agents.NewRepository(gormDB)
	handoffRepo := handoffs.NewRepository(gormDB)
	ledgerRepo := ledger.NewRepository(gormDB)
	quoteRepo := quotes.NewRepository(gormDB)
	conversationRepo := conversations.NewRepository(gormDB)
	reorderRepo := reorders.NewRepository(gormDB)
	notificationRepo := notifications.NewRepository(gormDB)
	paymentRepo := payments.NewRepository(gormDB)

	outboxSvc := outbox.NewService(outbox.NewRepository(gormDB), logg)

	agentsSvc, err := agents.NewService(agentsRepo, dbClient, outboxSvc)
	if err != nil {
		logg.Error(context.Background(), "failed to create agents service", err)
		os.Exit(1)
	}

	authSvc, err := auth.NewService(usersRepo, sessions, cfg.JWT, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	handoffSvc, err := handoffs.NewService(handoffRepo, dbClient, outboxSvc, agentsSvc)
	if err != nil {
		logg.Error(context.Background(), "failed to create handoffs service", err)
		os.Exit(1)
	}

	ledgerSvc, err := ledger.NewService(ledgerRepo, handoffRepo, dbClient, outboxSvc)
	if err != nil {
		logg.Error(context.Background(), "failed to create ledger service", err)
		os.Exit(1)
	}

	quotesSvc, err := quotes.NewService(quoteRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create quotes service", err)
		os.Exit(1)
	}

	reordersSvc, err := reorders.NewService(reorderRepo, handoffRepo, conversationRepo, quoteRepo, ledgerRepo, dbClient, outboxSvc, agentsSvc)
	if err != nil {
		logg.Error(context.Background(), "failed to create reorders service", err)
		os.Exit(1)
	}

	notificationsSvc, err := notifications.NewService(notificationRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications service", err)
		os.Exit(1)
	}

	paystackClient, err := paystack.NewClient(cfg.Paystack, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create paystack client", err)
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

	fanout, err := notifications.NewFanout(notificationRepo, agentsRepo, usersRepo, expoClient, mailClient, cfg.Notify.AdminEmail, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create notification fan-out", err)
		os.Exit(1)
	}

	paymentsSvc, err := payments.NewService(
		paymentRepo,
		conversationRepo,
		handoffRepo,
		ledgerRepo,
		reordersSvc,
		paystackClient,
		dbClient,
		outboxSvc,
		fanout,
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create payments service", err)
		os.Exit(1)
	}

	router := routes.NewRouter(routes.Deps{
		Config:        cfg,
		Logger:        logg,
		DB:            dbClient,
		Redis:         redisClient,
		Sessions:      sessions,
		Auth:          authSvc,
		Handoffs:      handoffSvc,
		Quotes:        quotesSvc,
		Ledger:        ledgerSvc,
		Payments:      paymentsSvc,
		Reorders:      reordersSvc,
		Notifications: notificationsSvc,
		Agents:        agentsSvc,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
		"port":        port,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", port),
		Handler: router,
	}
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
