package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

const (
	Timezone              = "UTC"
	TimezoneOffsetSeconds = 0
	checkWebhookTimeout   = 30 * time.Second
)

// WebhookRegistrar is implemented by the Telegram client.
type WebhookRegistrar interface {
	SetWebhook(ctx context.Context, webhookURL string) error
	WebhookURL(ctx context.Context) (string, error)
}

// Scheduler keeps the bot's webhook registered at the expected URL.
type Scheduler struct {
	ctx        context.Context
	cron       *cron.Cron
	registrar  WebhookRegistrar
	webhookURL string
	spec       string
	log        *slog.Logger
}

func New(
	ctx context.Context,
	registrar WebhookRegistrar,
	webhookURL string,
	spec string,
	log *slog.Logger,
) *Scheduler {
	c := cron.New(cron.WithLocation(time.FixedZone(Timezone, TimezoneOffsetSeconds)))

	return &Scheduler{
		ctx:        ctx,
		cron:       c,
		registrar:  registrar,
		webhookURL: webhookURL,
		spec:       spec,
		log:        log,
	}
}

// Start registers the webhook once and then schedules periodic checks.
// A failed initial registration is returned.
func (s *Scheduler) Start() error {
	ctx, cancel := context.WithTimeout(s.ctx, checkWebhookTimeout)
	defer cancel()

	if err := s.registrar.SetWebhook(ctx, s.webhookURL); err != nil {
		return fmt.Errorf("register webhook: %w", err)
	}

	if _, err := s.cron.AddFunc(s.spec, s.checkWebhook); err != nil {
		return fmt.Errorf("add cron func: %w", err)
	}

	s.cron.Start()

	return nil
}

func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) checkWebhook() {
	ctx, cancel := context.WithTimeout(s.ctx, checkWebhookTimeout)
	defer cancel()

	select {
	case <-ctx.Done():
		s.log.InfoContext(ctx, "Scheduler context is done",
			"error", ctx.Err())
		return
	default:
	}

	current, err := s.registrar.WebhookURL(ctx)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to get webhook info",
			"error", err)

		return
	}

	if current == s.webhookURL {
		s.log.DebugContext(ctx, "Webhook is up to date")

		return
	}

	// Logs only the presence of a URL; it embeds the path secret.
	s.log.WarnContext(ctx, "Webhook is missing or changed, registering again",
		"hadWebhook", current != "")

	if err = s.registrar.SetWebhook(ctx, s.webhookURL); err != nil {
		s.log.ErrorContext(ctx, "Failed to register webhook",
			"error", err)

		return
	}

	s.log.InfoContext(ctx, "Webhook is registered again")
}
