// Package ai wraps the generative-AI provider behind a circuit breaker and
// turns free-text prompts into goal, task and reminder drafts, falling back
// to keyword heuristics whenever the provider is unavailable.
package ai

import (
	"context"
	"errors"

	"github.com/streakedin/streakedin/internal/model"
)

// ErrDisabled is returned by the disabled provider.
var ErrDisabled = errors.New("ai: provider disabled")

// Turn is one prior message in a conversation.
type Turn struct {
	Role model.ChatRole
	Text string
}

// Model is a text-generation backend.
type Model interface {
	// Generate sends a single prompt and returns the text of the first candidate.
	Generate(ctx context.Context, prompt string) (string, error)
	// Chat continues a conversation with message as the newest user turn.
	Chat(ctx context.Context, history []Turn, message string) (string, error)
}

// GenerationConfig holds sampling parameters shared by providers.
type GenerationConfig struct {
	Temperature     float32
	TopK            int
	TopP            float32
	MaxOutputTokens int
}

// Disabled is a Model that always fails, forcing the fallback path.
type Disabled struct{}

func (Disabled) Generate(context.Context, string) (string, error)       { return "", ErrDisabled }
func (Disabled) Chat(context.Context, []Turn, string) (string, error) { return "", ErrDisabled }
