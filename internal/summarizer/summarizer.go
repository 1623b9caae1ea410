package summarizer

import (
	"context"
)

// Input describes the payload for a summary request.
type Input struct {
	// Text contains the plain text extracted from the document. It is sent as is.
	Text string
}

// Summarizer produces a single summary for a given input text.
type Summarizer interface {
	Summarize(ctx context.Context, input Input) (string, error)
}
