package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/linescout/linescout-backend/internal/agents"
	"github.com/linescout/linescout-backend/internal/cron"
	"github.com/linescout/linescout-backend/internal/handoffs"
	"github.com/linescout/linescout-backend/internal/notifications"
	"github.com/linescout/linescout-backend/internal/users"
	"github.com/linescout/linescout-backend/pkg/config"
	"github.com/linescout/linescout-backend/pkg/db"
	"github.com/linescout/linescout-backend/pkg/expo"
	"github.com/linescout/linescout-backend/pkg/logger"
	"github.com/linescout/linescout-backend/pkg/mailer"
	"github.com/linescout/linescout-backend/pkg/metrics"
	"github.com/linescout/linescout-backend/pkg/migrate"
	"github.com/linescout/linescout-backend/pkg/redis"
)

const (
	cleanupInterval  = time.Hour
	reminderInterval = 15 * time.Minute
	cronLockTTL      = 10 * time.Minute
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "cron-worker"

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
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
	handoffRepo := handoffs.NewRepository(gormDB)
	agentsRepo := agents.NewRepository(gormDB)
	usersRepo := users.NewRepository(gormDB)

	fanout, err := notifications.NewFanout(notificationRepo, agentsRepo, usersRepo, expoClient, mailClient, cfg.Notify.AdminEmail, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create notification fan-out", err)
		os.Exit(1)
	}

	cleanupJob, err := cron.NewNotificationCleanupJob(notificationRepo, cfg.Cron.NotificationRetention, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create cleanup job", err)
		os.Exit(1)
	}

	reminderJob, err := cron.NewStaleHandoffReminderJob(handoffRepo, fanout, cfg.Cron.StaleHandoffAfter, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create stale handoff job", err)
		os.Exit(1)
	}

	runner, err := cron.NewRunner(redisClient, metrics.NewCronJobMetrics(prometheus.DefaultRegisterer), logg, cronLockTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create cron runner", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
	})
	logg.Info(ctx, "starting cron worker")

	go serveMetrics(ctx, cfg.App.Port, logg)

	go runOnTicker(ctx, runner, cleanupJob, cleanupInterval, logg)
	go runOnTicker(ctx, runner, reminderJob, reminderInterval, logg)

	<-ctx.Done()
	logg.Info(ctx, "cron worker shutting down gracefully")
}

// runOnTicker executes the job immediately, then on every tick until the
// context ends. Job failures are logged by the runner and do not stop the
// schedule.
func runOnTicker(ctx context.Context, runner *cron.Runner, job cron.Job, interval time.Duration, logg *logger.Logger) {
	_ = runner.RunOnce(ctx, job)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = runner.RunOnce(ctx, job)
		}
	}
}

func serveMetrics(ctx context.Context, port string, logg *logger.Logger) {
	if port == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{Addr: ":" + port, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logg.Error(ctx, "metrics server stopped unexpectedly", err)
	}
}
