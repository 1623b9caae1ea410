package summarizer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const (
	Model                 = openai.ChatModelGPT3_5Turbo
	MaxOutputTokens int64 = 300

	systemPrompt     = "You are a PDF summarizer."
	userPromptPrefix = "Summarize this text:\n"
)

// OpenAISummarizer calls OpenAI's Chat Completions API to produce summaries.
type OpenAISummarizer struct {
	client openai.Client
}

// NewOpenAISummarizer builds a new summarizer instance. Requests are made
// once: client-side retries are disabled.
func NewOpenAISummarizer(apiKey string, opts ...option.RequestOption) (*OpenAISummarizer, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("api key is empty")
	}

	opts = append([]option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}, opts...)

	return &OpenAISummarizer{
		client: openai.NewClient(opts...),
	}, nil
}

// Summarize sends the whole input text without truncation.
func (s *OpenAISummarizer) Summarize(
	ctx context.Context,
	input Input,
) (string, error) {
	if strings.TrimSpace(input.Text) == "" {
		return "", errors.New("input is empty")
	}

	resp, err := s.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:     Model,
		MaxTokens: openai.Int(MaxOutputTokens),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPromptPrefix + input.Text),
		},
	})
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("choices are missing (id = %s)", resp.ID)
	}

	summary := strings.TrimSpace(resp.Choices[0].Message.Content)
	if summary == "" {
		return "", fmt.Errorf("output text is missing (finishReason = %s)", resp.Choices[0].FinishReason)
	}

	return summary, nil
}
