package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"pdfsummarybot/internal/bot"
	"pdfsummarybot/internal/config"
	"pdfsummarybot/internal/extractor"
	"pdfsummarybot/internal/scheduler"
	"pdfsummarybot/internal/server"
	"pdfsummarybot/internal/summarizer"
	"pdfsummarybot/internal/telegram"
	"syscall"
	"time"
)

const (
	readHeaderTimeout = 10 * time.Second
	idleTimeout       = 60 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	start := time.Now()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		log.ErrorContext(ctx, "Failed to load config",
			"error", err)

		return err
	}
	log.InfoContext(ctx, "Config is loaded",
		"port", cfg.Port,
		"webhookRegistration", cfg.ExternalURL != "")

	summ, err := summarizer.NewOpenAISummarizer(cfg.OpenAIAPIKey)
	if err != nil {
		log.ErrorContext(ctx, "Failed to create OpenAI summarizer",
			"error", err,
			"envVar", "OPENAI_API_KEY")

		return err
	}
	log.InfoContext(ctx, "OpenAI summarizer is initialized",
		"provider", "openai",
		"model", summarizer.Model)

	tg, err := telegram.New(cfg.Token, cfg.MaxPDFBytes, log)
	if err != nil {
		log.ErrorContext(ctx, "Failed to initialize Telegram client",
			"error", err,
			"envVar", "TOKEN")

		return err
	}
	log.InfoContext(ctx, "Telegram client is initialized")

	botInst := bot.New(
		tg,
		extractor.NewPDFExtractor(log),
		summ,
		bot.Timeouts{
			Update:    cfg.UpdateTimeout,
			Download:  cfg.DownloadTimeout,
			Summarize: cfg.SummarizeTimeout,
		},
		log,
	)

	if webhookURL := cfg.WebhookURL(); webhookURL != "" {
		sched := scheduler.New(ctx, tg, webhookURL, cfg.WebhookCheckSpec, log)

		if err = sched.Start(); err != nil {
			log.ErrorContext(ctx, "Failed to start scheduler",
				"error", err,
				"spec", cfg.WebhookCheckSpec)

			return err
		}
		defer sched.Stop()
		log.InfoContext(ctx, "Webhook is set and scheduler is started",
			"spec", cfg.WebhookCheckSpec,
			"timezone", time.FixedZone(scheduler.Timezone, scheduler.TimezoneOffsetSeconds).String())
	}

	httpServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           server.New(botInst, cfg.WebhookSecret, log).Router(),
		ReadHeaderTimeout: readHeaderTimeout,
		IdleTimeout:       idleTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- httpServer.ListenAndServe()
	}()
	log.InfoContext(ctx, "Server is started",
		"addr", httpServer.Addr)

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-c:
		log.InfoContext(ctx, "Shutdown signal is received",
			"signal", sig.String())
	case err = <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			log.ErrorContext(ctx, "Server failed",
				"error", err,
				"addr", httpServer.Addr)

			return err
		}
	}
	cancel()

	log.InfoContext(ctx, "Exiting...",
		"uptimeSeconds", time.Since(start).Seconds())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err = httpServer.Shutdown(shutdownCtx); err != nil {
		log.ErrorContext(ctx, "Failed to shut down server gracefully",
			"error", err)
	}
	log.InfoContext(ctx, "Server is stopped",
		"uptimeSeconds", time.Since(start).Seconds())

	return nil
}
