package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/farewatch/farewatch/internal/amadeus"
	"github.com/farewatch/farewatch/internal/app"
	"github.com/farewatch/farewatch/internal/catalog"
	"github.com/farewatch/farewatch/internal/flights"
	jobmetrics "github.com/farewatch/farewatch/internal/jobs"
	"github.com/farewatch/farewatch/internal/mailer"
	"github.com/farewatch/farewatch/internal/monitor"
	"github.com/farewatch/farewatch/jobs"
)

// availabilityCron fires the daily check at 15:30 UTC, 21:00 IST.
const availabilityCron = "30 15 * * *"

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		logger.Error("load destination catalog", slog.Any("error", err))
		os.Exit(1)
	}

	provider := amadeus.NewClient(amadeus.Config{
		BaseURL:   cfg.AmadeusBaseURL,
		APIKey:    cfg.AmadeusAPIKey,
		APISecret: cfg.AmadeusAPISecret,
		Timeout:   cfg.AmadeusTimeout,
	}, logger)
	flightsService := flights.NewService(provider, logger)

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}

	queueClient, err := jobs.NewClient(redisOpts)
	if err != nil {
		logger.Error("init queue client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := queueClient.Close(); err != nil {
			logger.Warn("queue client close", slog.Any("error", err))
		}
	}()

	smtpMailer := mailer.NewMailer(mailer.Config{
		Host: cfg.SMTPHost,
		Port: cfg.SMTPPort,
		From: cfg.SMTPFrom,
	}, cfg.AlertRecipient, logger)
	notifier := jobs.NewQueueNotifier(queueClient, cfg.AlertRecipient, logger)

	metrics := jobmetrics.NewMetrics(nil)
	availabilityJob := monitor.NewJob(flightsService, cat, notifier, monitor.Config{
		Origin:      cfg.AlertOrigin,
		AirlineCode: cfg.AlertAirline,
		MinSeats:    cfg.AlertMinSeats,
	}, logger, metrics)

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: redisOpts,
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: monitor.TaskAvailabilityCheck, Handler: availabilityJob.Handle},
			{Type: jobs.TaskTypeSendEmail, Handler: jobs.NewSendEmailHandler(smtpMailer, logger)},
		},
		Cron: []jobs.CronRegistration{
			{Spec: availabilityCron, Task: jobs.NewAvailabilityCheckTask(), Options: []asynq.Option{asynq.MaxRetry(2)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
