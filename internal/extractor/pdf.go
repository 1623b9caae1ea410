package extractor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ledongthuc/pdf"
)

// MaxPages bounds how much of a document is sent for summarization.
const MaxPages = 5

var (
	ErrEmptyInput = errors.New("pdf content is empty")
	ErrNoText     = errors.New("pdf has no extractable text")
)

// PDFExtractor turns raw PDF bytes into plain text.
type PDFExtractor struct {
	maxPages int
	log      *slog.Logger
}

func NewPDFExtractor(log *slog.Logger) *PDFExtractor {
	return &PDFExtractor{
		maxPages: MaxPages,
		log:      log,
	}
}

// Extract concatenates the text of the first pages, each followed by a
// newline. Pages that fail to extract are skipped. ErrNoText is returned
// when the result is blank.
func (e *PDFExtractor) Extract(ctx context.Context, data []byte) (_ string, err error) {
	if len(data) == 0 {
		return "", ErrEmptyInput
	}

	// The parser panics on some malformed documents.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	numPages := reader.NumPage()
	pages := min(numPages, e.maxPages)

	var sb strings.Builder
	for i := 1; i <= pages; i++ {
		if err = ctx.Err(); err != nil {
			return "", err
		}

		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, pageErr := page.GetPlainText(nil)
		if pageErr != nil {
			e.log.WarnContext(ctx, "Failed to extract page text",
				"error", pageErr,
				"page", i,
				"numPages", numPages)

			continue
		}

		sb.WriteString(text)
		sb.WriteString("\n")
	}

	text := sb.String()
	if strings.TrimSpace(text) == "" {
		return "", ErrNoText
	}

	return text, nil
}
