package query

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/recall/ai/mock"
	"github.com/poiesic/recall/core"
)

func TestAnswer_PromptCarriesContextAndQuestion(t *testing.T) {
	chat := mock.NewMockChatModel()
	gen := NewGenerator(chat)

	answer, history := gen.Answer(context.Background(), "what is the capital?", "Paris is the capital of France.", nil, nil)

	assert.Equal(t, "mock answer", answer)
	require.Len(t, history, 1)
	assert.Equal(t, "what is the capital?", history[0].Question)
	assert.Equal(t, "mock answer", history[0].Answer)

	prompt := chat.LastPrompt()
	assert.Contains(t, prompt.System, "omi")
	assert.Contains(t, prompt.User, "Paris is the capital of France.")
	assert.Contains(t, prompt.User, "Question: what is the capital?")
	assert.NotContains(t, prompt.User, "Conversation so far", "no history means no history block")
}

func TestAnswer_PersonaAllowsKnowledgeFallback(t *testing.T) {
	chat := mock.NewMockChatModel()
	gen := NewGenerator(chat)

	gen.Answer(context.Background(), "q", NoRelevantDocs, nil, nil)

	system := chat.LastPrompt().System
	assert.Contains(t, system, "fall back to your own knowledge",
		"irrelevant context must not force an I-don't-know answer")
	assert.NotContains(t, system, "only the supplied context")
}

func TestAnswer_TrimsFinalAnswer(t *testing.T) {
	chat := mock.NewMockChatModel()
	chat.GenerateFunc = func(ctx context.Context, systemPrompt, userPrompt string, onToken func(string)) (string, error) {
		return "  an answer\n\n", nil
	}
	gen := NewGenerator(chat)

	answer, history := gen.Answer(context.Background(), "q", NoRelevantDocs, nil, nil)

	assert.Equal(t, "an answer", answer)
	require.Len(t, history, 1)
	assert.Equal(t, "an answer", history[0].Answer,
		"recorded turns carry the trimmed answer")
}

func TestAnswer_HistoryWindow(t *testing.T) {
	chat := mock.NewMockChatModel()
	gen := NewGenerator(chat)

	history := make([]core.Turn, 5)
	for i := range history {
		history[i] = core.Turn{
			Question: fmt.Sprintf("question %d", i+1),
			Answer:   fmt.Sprintf("answer %d", i+1),
		}
	}

	_, updated := gen.Answer(context.Background(), "latest question", NoRelevantDocs, history, nil)

	assert.Len(t, updated, 6, "new turn is appended to the full history")

	prompt := chat.LastPrompt().User
	assert.NotContains(t, prompt, "question 1")
	assert.NotContains(t, prompt, "question 2")
	assert.Contains(t, prompt, "Human: question 3")
	assert.Contains(t, prompt, "AI: answer 3")
	assert.Contains(t, prompt, "Human: question 5")
	assert.Contains(t, prompt, "AI: answer 5")
}

func TestAnswer_GenerationSoftFail(t *testing.T) {
	chat := mock.NewMockChatModel()
	chat.GenerateFunc = func(ctx context.Context, systemPrompt, userPrompt string, onToken func(string)) (string, error) {
		return "", errors.New("model overloaded")
	}
	gen := NewGenerator(chat)

	answer, history := gen.Answer(context.Background(), "doomed question", NoRelevantDocs, nil, nil)

	assert.Equal(t, "Error generating answer: model overloaded", answer)
	require.Len(t, history, 1, "failed generations still extend the history")
	assert.Equal(t, answer, history[0].Answer)
}

func TestAnswer_StreamsTokens(t *testing.T) {
	chat := mock.NewMockChatModel()
	gen := NewGenerator(chat)

	var streamed strings.Builder
	answer, _ := gen.Answer(context.Background(), "q", NoRelevantDocs, nil, func(token string) {
		streamed.WriteString(token)
	})

	assert.Equal(t, "mock answer", answer)
	assert.Equal(t, "mock answer", strings.TrimSpace(streamed.String()))
}
