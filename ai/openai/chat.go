package openai

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/poiesic/recall/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// ChatModel implements ai.ChatModel using OpenAI-compatible chat APIs.
type ChatModel struct {
	client  llms.Model
	timeout time.Duration
	logger  *slog.Logger
}

// newChatModel is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newChatModel(config *ai.Config) (*ChatModel, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.ChatHost),
		openai.WithToken(config.APIToken),
		openai.WithModel(config.ChatModel),
	)
	if err != nil {
		return nil, err
	}

	return &ChatModel{
		client:  client,
		timeout: config.CallTimeout,
		logger:  slog.Default().With("component", "openai-chat"),
	}, nil
}

// NewChatModel creates a new chat model using the provided configuration.
//
// Returns ai.ChatModel interface to enforce abstraction.
func NewChatModel(config *ai.Config) (ai.ChatModel, error) {
	return newChatModel(config)
}

// Generate produces a completion for the given prompts. When onToken is
// non-nil the model is invoked in streaming mode and onToken receives each
// emitted token; the concatenated text is returned either way.
func (m *ChatModel) Generate(ctx context.Context, systemPrompt, userPrompt string, onToken func(token string)) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	content := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, userPrompt),
	}

	opts := []llms.CallOption{llms.WithTemperature(0.0)}

	var streamed strings.Builder
	if onToken != nil {
		opts = append(opts, llms.WithStreamingFunc(func(_ context.Context, chunk []byte) error {
			token := string(chunk)
			streamed.WriteString(token)
			onToken(token)
			return nil
		}))
	}

	response, err := m.client.GenerateContent(ctx, content, opts...)
	if err != nil {
		m.logger.Error("failed to generate content", "err", err)
		return "", err
	}

	if len(response.Choices) < 1 {
		m.logger.Debug("no choices returned from model")
		return streamed.String(), nil
	}

	// Prefer the final choice content; some backends leave it empty in
	// streaming mode, in which case the accumulated tokens are the answer.
	answer := response.Choices[0].Content
	if answer == "" {
		answer = streamed.String()
	}
	return answer, nil
}
