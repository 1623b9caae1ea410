package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

var ErrFileTooLarge = errors.New("file is too large")

// Client is the narrow slice of the Bot API the service needs.
type Client struct {
	api          *bot.Bot
	httpClient   *http.Client
	maxFileBytes int64
	log          *slog.Logger
}

// New validates the token with getMe unless bot.WithSkipGetMe is passed.
func New(
	token string,
	maxFileBytes int64,
	log *slog.Logger,
	opts ...bot.Option,
) (*Client, error) {
	token = strings.TrimSpace(token)

	api, err := bot.New(token, opts...)
	if err != nil {
		return nil, fmt.Errorf("create bot API: %w", err)
	}

	return &Client{
		api:          api,
		httpClient:   &http.Client{},
		maxFileBytes: maxFileBytes,
		log:          log,
	}, nil
}

func (c *Client) SendText(ctx context.Context, chatID int64, text string) error {
	normalizedText := strings.ToValidUTF8(text, "?")
	if normalizedText != text {
		c.log.WarnContext(ctx, "Message text had invalid UTF-8 and was normalized",
			"chatID", chatID,
			"originalLen", len(text),
			"normalizedLen", len(normalizedText))
	}

	_, err := c.api.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   normalizedText,
	})
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}

	return nil
}

func (c *Client) SendTyping(ctx context.Context, chatID int64) error {
	_, err := c.api.SendChatAction(ctx, &bot.SendChatActionParams{
		ChatID: chatID,
		Action: models.ChatActionTyping,
	})
	if err != nil {
		return fmt.Errorf("send chat action: %w", err)
	}

	return nil
}

// Download resolves the file id and reads the file into memory.
func (c *Client) Download(ctx context.Context, fileID string) ([]byte, error) {
	file, err := c.api.GetFile(ctx, &bot.GetFileParams{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}

	if file.FileSize > c.maxFileBytes {
		return nil, fmt.Errorf("%w: %d bytes", ErrFileTooLarge, file.FileSize)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.api.FileDownloadLink(file), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// The error text carries the download link, which embeds the token.
		return nil, fmt.Errorf("do request: %w", redactToken(err))
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.log.WarnContext(ctx, "Failed to close download body",
				"error", closeErr,
				"fileID", fileID)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %s", resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxFileBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	if int64(len(data)) > c.maxFileBytes {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrFileTooLarge, c.maxFileBytes)
	}

	return data, nil
}

func (c *Client) SetWebhook(ctx context.Context, webhookURL string) error {
	ok, err := c.api.SetWebhook(ctx, &bot.SetWebhookParams{URL: webhookURL})
	if err != nil {
		return fmt.Errorf("set webhook: %w", err)
	}
	if !ok {
		return errors.New("set webhook: not acknowledged")
	}

	return nil
}

func (c *Client) WebhookURL(ctx context.Context) (string, error) {
	info, err := c.api.GetWebhookInfo(ctx)
	if err != nil {
		return "", fmt.Errorf("get webhook info: %w", err)
	}

	return info.URL, nil
}

func redactToken(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("%s file: %w", urlErr.Op, urlErr.Err)
	}

	return err
}
