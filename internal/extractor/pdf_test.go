package extractor_test

import (
	"context"
	"errors"
	"log/slog"
	"pdfsummarybot/internal/extractor"
	"pdfsummarybot/internal/extractor/extractortest"
	"strings"
	"testing"
)

func TestPDFExtractorReadsOnlyFirstFivePages(t *testing.T) {
	ext := extractor.NewPDFExtractor(slog.Default())
	pages := extractortest.NumberedPages(10)

	text, err := ext.Extract(context.Background(), extractortest.BuildPDF(pages))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	last := -1
	for i, marker := range pages {
		idx := strings.Index(text, marker)
		if i < extractor.MaxPages {
			if idx < 0 {
				t.Fatalf("expected %q in extracted text %q", marker, text)
			}
			if idx < last {
				t.Fatalf("expected %q to follow the previous page", marker)
			}
			last = idx

			continue
		}

		if idx >= 0 {
			t.Fatalf("expected %q to be skipped, got %q", marker, text)
		}
	}

	if got := strings.Count(text, "\n"); got < extractor.MaxPages {
		t.Fatalf("expected a newline after each page, got %d in %q", got, text)
	}
	if !strings.HasSuffix(text, "\n") {
		t.Fatalf("expected trailing page separator, got %q", text)
	}
}

func TestPDFExtractorIsDeterministic(t *testing.T) {
	ext := extractor.NewPDFExtractor(slog.Default())
	data := extractortest.BuildPDF(extractortest.NumberedPages(7))

	first, err := ext.Extract(context.Background(), data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second, err := ext.Extract(context.Background(), data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first != second {
		t.Fatalf("expected identical text, got %q vs %q", first, second)
	}
}

func TestPDFExtractorReadsShortDocuments(t *testing.T) {
	ext := extractor.NewPDFExtractor(slog.Default())
	pages := extractortest.NumberedPages(2)

	text, err := ext.Extract(context.Background(), extractortest.BuildPDF(pages))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, marker := range pages {
		if !strings.Contains(text, marker) {
			t.Fatalf("expected %q in extracted text %q", marker, text)
		}
	}
}

func TestPDFExtractorReportsBlankText(t *testing.T) {
	ext := extractor.NewPDFExtractor(slog.Default())
	data := extractortest.BuildPDF([]string{"   ", " ", "  ", "    ", " ", "HiddenAfterFifthPage"})

	_, err := ext.Extract(context.Background(), data)
	if !errors.Is(err, extractor.ErrNoText) {
		t.Fatalf("expected ErrNoText, got %v", err)
	}
}

func TestPDFExtractorRejectsNonPDF(t *testing.T) {
	ext := extractor.NewPDFExtractor(slog.Default())
	data := []byte(strings.Repeat("PK\x03\x04 this is a zipped docx, not a pdf ", 10))

	_, err := ext.Extract(context.Background(), data)
	if err == nil {
		t.Fatalf("expected error for non-PDF input")
	}
	if errors.Is(err, extractor.ErrNoText) {
		t.Fatalf("expected open error, got ErrNoText")
	}
}

func TestPDFExtractorRejectsEmptyInput(t *testing.T) {
	ext := extractor.NewPDFExtractor(slog.Default())

	if _, err := ext.Extract(context.Background(), nil); !errors.Is(err, extractor.ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}
}

func TestPDFExtractorStopsOnCanceledContext(t *testing.T) {
	ext := extractor.NewPDFExtractor(slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := ext.Extract(ctx, extractortest.BuildPDF(extractortest.NumberedPages(3))); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
