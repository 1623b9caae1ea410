package bot

import (
	"context"
	"fmt"
)

const (
	welcomeText = "नमस्ते! मुझे कोई PDF भेजिए और मैं उसका सारांश दूँगा।"
	helpText    = "📄 बस मुझे कोई PDF file भेजिए, मैं उसका सारांश OpenAI API से बना दूँगा।"
)

func (b *Bot) handleStartCommand(ctx context.Context, chatID int64) error {
	if err := b.messenger.SendText(ctx, chatID, welcomeText); err != nil {
		return fmt.Errorf("send welcome text: %w", err)
	}

	return nil
}

func (b *Bot) handleHelpCommand(ctx context.Context, chatID int64) error {
	if err := b.messenger.SendText(ctx, chatID, helpText); err != nil {
		return fmt.Errorf("send help text: %w", err)
	}

	return nil
}
