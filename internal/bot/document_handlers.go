package bot

import (
	"context"
	"errors"
	"fmt"
	"pdfsummarybot/internal/domain"
	"pdfsummarybot/internal/summarizer"
)

const (
	summaryPrefix = "📑 Summary:\n\n"

	notPDFText              = "❌ कृपया केवल PDF भेजें।"
	downloadFailedText      = "❌ PDF download करने में दिक्कत हुई।"
	extractionFailedText    = "❌ PDF से text निकालने में दिक्कत हुई।"
	summarizationFailedText = "⚠️ OpenAI summarization failed।"
)

// handleDocument sends exactly one reply per document. Only a failed
// download is returned as an error; other failures end in a fixed notice.
func (b *Bot) handleDocument(ctx context.Context, chatID int64, doc domain.Document) error {
	if !doc.LooksLikePDF() {
		b.log.InfoContext(ctx, "Document is not a PDF",
			"chatID", chatID,
			"fileName", doc.FileName,
			"mimeType", doc.MimeType)

		return b.sendReply(ctx, chatID, notPDFText)
	}

	var reply string

	pipelineErr := b.withSpinner(ctx, chatID, func() error {
		var err error
		reply, err = b.summarizeDocument(ctx, chatID, doc)

		return err
	})

	if err := b.sendReply(ctx, chatID, reply); err != nil {
		return errors.Join(pipelineErr, err)
	}

	return pipelineErr
}

func (b *Bot) summarizeDocument(ctx context.Context, chatID int64, doc domain.Document) (string, error) {
	data, err := b.download(ctx, doc.FileID)
	if err != nil {
		return downloadFailedText, fmt.Errorf("download document: %w", err)
	}

	text, err := b.extractor.Extract(ctx, data)
	if err != nil {
		b.log.WarnContext(ctx, "Failed to extract text from PDF",
			"error", err,
			"chatID", chatID,
			"fileName", doc.FileName,
			"sizeBytes", len(data))

		return extractionFailedText, nil
	}

	summary, err := b.summarize(ctx, text)
	if err != nil {
		b.log.ErrorContext(ctx, "Failed to summarize PDF",
			"error", err,
			"chatID", chatID,
			"fileName", doc.FileName,
			"textLen", len(text))

		return summarizationFailedText, nil
	}

	b.log.InfoContext(ctx, "PDF is summarized",
		"chatID", chatID,
		"fileName", doc.FileName,
		"textLen", len(text),
		"summaryLen", len(summary))

	return summaryPrefix + summary, nil
}

func (b *Bot) download(ctx context.Context, fileID string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, b.timeouts.Download)
	defer cancel()

	return b.messenger.Download(ctx, fileID)
}

func (b *Bot) summarize(ctx context.Context, text string) (string, error) {
	if b.summarizer == nil {
		return "", errors.New("summarizer is not configured")
	}

	ctx, cancel := context.WithTimeout(ctx, b.timeouts.Summarize)
	defer cancel()

	return b.summarizer.Summarize(ctx, summarizer.Input{Text: text})
}

func (b *Bot) sendReply(ctx context.Context, chatID int64, text string) error {
	if err := b.messenger.SendText(ctx, chatID, text); err != nil {
		return fmt.Errorf("send reply: %w", err)
	}

	return nil
}
