package factory

import (
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streakedin/streakedin/internal/ai"
	"github.com/streakedin/streakedin/internal/config"
)

func TestNewStore_SQLite(t *testing.T) {
	cfg := config.NewForTesting()
	cfg.SQLitePath = filepath.Join(t.TempDir(), "factory.db")

	s, err := NewStore(t.Context(), cfg, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, s.Close())
}

func TestNewStore_UnknownDriver(t *testing.T) {
	cfg := config.NewForTesting()
	cfg.DBDriver = "cassandra"
	_, err := NewStore(t.Context(), cfg, zerolog.Nop())
	assert.Error(t, err)
}

func TestNewModel_DegradesToDisabled(t *testing.T) {
	cfg := config.NewForTesting()
	assert.IsType(t, ai.Disabled{}, NewModel(t.Context(), cfg, zerolog.Nop()))

	cfg.AIProvider = config.AIProviderGemini
	cfg.AIAPIKey = ""
	assert.IsType(t, ai.Disabled{}, NewModel(t.Context(), cfg, zerolog.Nop()))

	cfg.AIAPIKey = "k"
	assert.IsType(t, &ai.GeminiClient{}, NewModel(t.Context(), cfg, zerolog.Nop()))
}

func TestNewBreaker_UsesConfig(t *testing.T) {
	cfg := config.NewForTesting()
	b := NewBreaker(cfg)
	assert.Equal(t, ai.BreakerClosed, b.State())
}
