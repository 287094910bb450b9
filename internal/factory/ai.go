package factory

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/streakedin/streakedin/internal/ai"
	"github.com/streakedin/streakedin/internal/config"
)

// NewModel creates the AI provider selected by cfg.AIProvider. A missing
// API key or an SDK initialisation failure degrades to the disabled model
// so every generation takes the fallback path.
func NewModel(ctx context.Context, cfg *config.Config, log zerolog.Logger) ai.Model {
	gen := ai.GenerationConfig{
		Temperature:     cfg.AITemperature,
		TopK:            cfg.AITopK,
		TopP:            cfg.AITopP,
		MaxOutputTokens: cfg.AIMaxOutputTokens,
	}
	if cfg.AIProvider == config.AIProviderNone {
		log.Info().Msg("ai provider disabled; heuristics only")
		return ai.Disabled{}
	}
	if cfg.AIAPIKey == "" {
		log.Warn().Str("provider", cfg.AIProvider).Msg("AI_API_KEY not set; heuristics only")
		return ai.Disabled{}
	}

	switch cfg.AIProvider {
	case config.AIProviderGenAI:
		m, err := ai.NewGenAI(ctx, cfg.AIAPIKey, cfg.AIModel, gen)
		if err != nil {
			log.Error().Err(err).Msg("genai client init failed; heuristics only")
			return ai.Disabled{}
		}
		log.Info().Str("provider", cfg.AIProvider).Str("model", cfg.AIModel).Msg("ai provider ready")
		return m
	default:
		log.Info().Str("provider", cfg.AIProvider).Str("model", cfg.AIModel).Msg("ai provider ready")
		return ai.NewGemini(ai.GeminiConfig{
			BaseURL:    cfg.AIBaseURL,
			Model:      cfg.AIModel,
			APIKey:     cfg.AIAPIKey,
			Timeout:    cfg.AITimeout,
			Generation: gen,
		})
	}
}

// NewBreaker builds the circuit breaker from config.
func NewBreaker(cfg *config.Config) *ai.Breaker {
	return ai.NewBreaker(ai.BreakerConfig{
		FailureThreshold: cfg.BreakerFailureThreshold,
		InitialBackoff:   cfg.BreakerInitialBackoff,
		MaxBackoff:       cfg.BreakerMaxBackoff,
	})
}
