package mock

import (
	"context"
	"strings"
)

// MockChatModel is a test double for ai.ChatModel.
// It allows custom behavior injection via function fields.
type MockChatModel struct {
	// GenerateFunc is called by Generate if set.
	// If nil, uses default echo behavior.
	GenerateFunc func(ctx context.Context, systemPrompt, userPrompt string, onToken func(string)) (string, error)

	// Prompts records every (system, user) prompt pair Generate received,
	// for test assertions on prompt construction.
	Prompts []PromptPair

	callCount int
}

// PromptPair is one recorded Generate invocation.
type PromptPair struct {
	System string
	User   string
}

// NewMockChatModel creates a mock chat model with default behavior.
// Note: Returns concrete type to allow test assertions via GetMockChatModel().
func NewMockChatModel() *MockChatModel {
	return &MockChatModel{}
}

// Generate records the prompts and produces a deterministic answer.
// The default answer streams word by word through onToken when set.
func (m *MockChatModel) Generate(ctx context.Context, systemPrompt, userPrompt string, onToken func(string)) (string, error) {
	m.callCount++
	m.Prompts = append(m.Prompts, PromptPair{System: systemPrompt, User: userPrompt})

	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, systemPrompt, userPrompt, onToken)
	}

	answer := "mock answer"
	if onToken != nil {
		for _, word := range strings.Fields(answer) {
			onToken(word + " ")
		}
	}
	return answer, nil
}

// CallCount returns the number of times Generate was called.
func (m *MockChatModel) CallCount() int {
	return m.callCount
}

// LastPrompt returns the most recently recorded prompt pair, or a zero value
// if Generate has not been called.
func (m *MockChatModel) LastPrompt() PromptPair {
	if len(m.Prompts) == 0 {
		return PromptPair{}
	}
	return m.Prompts[len(m.Prompts)-1]
}

// Reset clears recorded prompts, the call count, and injected behavior.
func (m *MockChatModel) Reset() {
	m.callCount = 0
	m.Prompts = nil
	m.GenerateFunc = nil
}
