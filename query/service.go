package query

import (
	"context"
	"log/slog"

	"github.com/poiesic/recall/core"
	"github.com/poiesic/recall/profile"
)

// Service answers a user's question against everything they have
// ingested. It resolves the user's collections from the registry,
// retrieves matching segments, assembles the context, and generates the
// answer.
type Service struct {
	registry  profile.Registry
	retriever *Retriever
	generator *Generator
	logger    *slog.Logger
}

// NewService creates a query Service.
func NewService(registry profile.Registry, retriever *Retriever, generator *Generator) *Service {
	return &Service{
		registry:  registry,
		retriever: retriever,
		generator: generator,
		logger:    slog.Default().With("component", "query"),
	}
}

// Query answers question for userID. history carries the conversation so
// far; the returned state's History is that history extended with the new
// turn. onToken, when non-nil, streams answer tokens as they arrive.
//
// A user with no ingested collections gets an answer grounded on the
// empty-context placeholder rather than an error. Retrieval failures
// (registry unreachable, embedding or store trouble at query time)
// degrade the same way: the question is still answered, just without
// context. Only cancellation of the caller's ctx fails the call.
func (s *Service) Query(ctx context.Context, userID, question string, history []core.Turn, onToken func(token string)) (*core.QueryState, error) {
	collections, err := s.registry.Collections(ctx, userID)
	if err != nil {
		s.logger.Warn("resolving collections failed, answering without context",
			"user", userID, "error", err)
		collections = nil
	}

	matches, err := s.retriever.Retrieve(ctx, collections, question)
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		s.logger.Warn("retrieval failed, answering without context",
			"user", userID, "error", err)
		matches = nil
	}

	contextText := BuildContext(matches)
	s.logger.Debug("assembled context",
		"user", userID,
		"collections", len(collections),
		"segments", len(matches))

	answer, history := s.generator.Answer(ctx, question, contextText, history, onToken)

	return &core.QueryState{
		Question: question,
		Context:  contextText,
		Answer:   answer,
		History:  history,
	}, nil
}
