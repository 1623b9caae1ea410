package bot

import (
	"context"
	"log/slog"
	"pdfsummarybot/internal/domain"
	"pdfsummarybot/internal/summarizer"
	"strings"
	"time"

	"github.com/go-telegram/bot/models"
)

const (
	defaultUpdateTimeout    = 2 * time.Minute
	defaultDownloadTimeout  = 30 * time.Second
	defaultSummarizeTimeout = 60 * time.Second
)

// Messenger is the chat transport used to talk back to users.
type Messenger interface {
	SendText(ctx context.Context, chatID int64, text string) error
	SendTyping(ctx context.Context, chatID int64) error
	Download(ctx context.Context, fileID string) ([]byte, error)
}

type Extractor interface {
	Extract(ctx context.Context, data []byte) (string, error)
}

// Timeouts bound each blocking step. Zero values fall back to defaults.
type Timeouts struct {
	Update    time.Duration
	Download  time.Duration
	Summarize time.Duration
}

type Bot struct {
	messenger  Messenger
	extractor  Extractor
	summarizer summarizer.Summarizer
	timeouts   Timeouts
	log        *slog.Logger
}

func New(
	messenger Messenger,
	extractor Extractor,
	summarizer summarizer.Summarizer,
	timeouts Timeouts,
	log *slog.Logger,
) *Bot {
	if timeouts.Update <= 0 {
		timeouts.Update = defaultUpdateTimeout
	}
	if timeouts.Download <= 0 {
		timeouts.Download = defaultDownloadTimeout
	}
	if timeouts.Summarize <= 0 {
		timeouts.Summarize = defaultSummarizeTimeout
	}

	return &Bot{
		messenger:  messenger,
		extractor:  extractor,
		summarizer: summarizer,
		timeouts:   timeouts,
		log:        log,
	}
}

// HandleUpdate routes one update to at most one handler and blocks until
// it is done. Failures are logged, never returned.
func (b *Bot) HandleUpdate(ctx context.Context, update *models.Update) {
	if update == nil {
		return
	}

	updateCtx, cancel := context.WithTimeout(ctx, b.timeouts.Update)
	defer cancel()

	message := update.Message
	if message == nil {
		b.log.DebugContext(updateCtx, "Update is ignored",
			"updateID", update.ID)

		return
	}

	chatID, chatType := chatContext(message.Chat)

	if err := b.handleMessage(updateCtx, message); err != nil {
		b.log.ErrorContext(updateCtx, "Failed to handle message",
			"error", err,
			"updateID", update.ID,
			"chatID", chatID,
			"userID", userID(message.From),
			"chatType", chatType,
			"messageID", message.ID)
	}
}

func (b *Bot) handleMessage(ctx context.Context, message *models.Message) error {
	chatID := message.Chat.ID

	if message.Document != nil {
		return b.handleDocument(ctx, chatID, documentFromMessage(message.Document))
	}

	switch command(message.Text) {
	case "/start":
		return b.handleStartCommand(ctx, chatID)
	case "/help":
		return b.handleHelpCommand(ctx, chatID)
	default:
		b.log.DebugContext(ctx, "Message is ignored",
			"chatID", chatID,
			"messageID", message.ID)

		return nil
	}
}

// command returns the leading bot command of text without any @mention.
func command(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return ""
	}

	cmd, _, _ := strings.Cut(fields[0], "@")

	return cmd
}

func documentFromMessage(doc *models.Document) domain.Document {
	return domain.Document{
		FileID:   doc.FileID,
		FileName: doc.FileName,
		MimeType: doc.MimeType,
		FileSize: doc.FileSize,
	}
}

func chatContext(chat models.Chat) (int64, string) {
	return chat.ID, string(chat.Type)
}

func userID(user *models.User) int64 {
	if user == nil {
		return 0
	}

	return user.ID
}
