// Package mock provides test double implementations of AI service interfaces.
//
// This package contains mock implementations of ai.Embedder, ai.ChatModel,
// and ai.Provider for use in unit tests. The mocks allow tests to run without
// external AI service dependencies and enable controlled, deterministic behavior.
//
// # Usage in Tests
//
//	// Basic usage with default behavior
//	mockProvider := mock.NewMockProvider()
//	vectors, err := mockProvider.Embedder().EmbedTexts(ctx, []string{"test"})
//
//	// Custom behavior injection
//	mockChat := mock.NewMockChatModel()
//	mockChat.GenerateFunc = func(ctx context.Context, system, user string, onToken func(string)) (string, error) {
//	    return "canned answer", nil
//	}
//
//	// Check call counts and recorded prompts
//	count := mockChat.CallCount()
//	last := mockChat.LastPrompt()
//
// # Default Behavior
//
//   - MockEmbedder: Returns deterministic vectors based on text hash
//   - MockChatModel: Records prompts and returns a fixed answer, streaming
//     it word by word when a token callback is supplied
//   - MockProvider: Aggregates mock embedder and chat model
package mock
