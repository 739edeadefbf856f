// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package query

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/recall/ai"
	"github.com/poiesic/recall/core"
)

// HistoryWindow is how many of the most recent conversation turns are
// replayed into the generation prompt.
const HistoryWindow = 3

const personaPrompt = `You are omi, a helpful assistant.
Use the supplied context when it is relevant to the question. If the context is missing, incomplete, or irrelevant, fall back to your own knowledge.
Always give accurate, clear, and concise answers.`

// Generator produces grounded answers from a chat model.
type Generator struct {
	chat   ai.ChatModel
	logger *slog.Logger
}

// NewGenerator creates a Generator.
func NewGenerator(chat ai.ChatModel) *Generator {
	return &Generator{
		chat:   chat,
		logger: slog.Default().With("component", "generator"),
	}
}

// Answer asks the chat model the question against the assembled context,
// replaying the last few turns of history. Generation failures are
// absorbed: the returned answer carries the failure text so the
// conversation can continue, and the turn is still recorded.
//
// onToken, when non-nil, receives answer tokens as they stream.
// The returned history is the input history plus the new turn.
func (g *Generator) Answer(ctx context.Context, question, contextText string, history []core.Turn, onToken func(token string)) (string, []core.Turn) {
	prompt := buildUserPrompt(question, contextText, history)

	answer, err := g.chat.Generate(ctx, personaPrompt, prompt, onToken)
	if err != nil {
		g.logger.Error("generation failed", "error", err)
		answer = fmt.Sprintf("Error generating answer: %v", err)
	}
	answer = strings.TrimSpace(answer)

	return answer, append(history, core.Turn{Question: question, Answer: answer})
}

// buildUserPrompt renders recent history, the context block, and the
// question into a single prompt.
func buildUserPrompt(question, contextText string, history []core.Turn) string {
	var sb strings.Builder

	recent := history
	if len(recent) > HistoryWindow {
		recent = recent[len(recent)-HistoryWindow:]
	}
	if len(recent) > 0 {
		sb.WriteString("Conversation so far:\n")
		for _, turn := range recent {
			sb.WriteString("Human: ")
			sb.WriteString(turn.Question)
			sb.WriteString("\nAI: ")
			sb.WriteString(turn.Answer)
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	sb.WriteString("Context:\n")
	sb.WriteString(contextText)
	sb.WriteString("\n\nQuestion: ")
	sb.WriteString(question)
	return sb.String()
}
