package bot

import (
	"context"
	"sync"
	"time"
)

const sendSpinnerInterval = 4 * time.Second

func (b *Bot) sendTyping(ctx context.Context, chatID int64) {
	if err := b.messenger.SendTyping(ctx, chatID); err != nil && ctx.Err() == nil {
		b.log.WarnContext(ctx, "Failed to send chat action",
			"error", err,
			"chatID", chatID)
	}
}

// withSpinner keeps the typing indicator alive while fn runs. The
// indicator goroutine has exited by the time withSpinner returns.
func (b *Bot) withSpinner(ctx context.Context, chatID int64, fn func() error) error {
	ctx, cancel := context.WithCancel(ctx)

	var wg sync.WaitGroup
	wg.Add(1)

	go func() {
		defer wg.Done()

		b.sendTyping(ctx, chatID)

		t := time.NewTicker(sendSpinnerInterval)
		defer t.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				b.sendTyping(ctx, chatID)
			}
		}
	}()

	defer func() {
		cancel()
		wg.Wait()
	}()

	return fn()
}
