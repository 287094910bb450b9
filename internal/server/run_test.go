package server

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streakedin/streakedin/internal/ai"
	"github.com/streakedin/streakedin/internal/config"
	"github.com/streakedin/streakedin/internal/health"
	"github.com/streakedin/streakedin/internal/services"
)

type fakeChecker struct{ healthy bool }

func (f fakeChecker) Name() string                         { return "fake" }
func (f fakeChecker) IsHealthy() bool                      { return f.healthy }
func (f fakeChecker) Start(context.Context, time.Duration) {}

func TestStartupHealthTimeout(t *testing.T) {
	assert.Equal(t, time.Minute, startupHealthTimeout(15*time.Second))
	assert.Equal(t, 4*time.Minute, startupHealthTimeout(2*time.Minute))
}

func TestWaitUntilHealthy_ReturnsOnceHealthy(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	svc := health.NewServiceHealthChecker(zerolog.Nop(), fakeChecker{healthy: true})
	go svc.Start(ctx, 10*time.Millisecond)

	require.NoError(t, waitUntilHealthy(ctx, config.NewForTesting(), svc))
}

func TestWaitUntilHealthy_HonoursCancel(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	svc := health.NewServiceHealthChecker(zerolog.Nop(), fakeChecker{healthy: false})
	go svc.Start(ctx, 10*time.Millisecond)

	err := waitUntilHealthy(ctx, config.NewForTesting(), svc)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNewHTTPServer_NoWriteTimeout(t *testing.T) {
	cfg := config.NewForTesting()
	cfg.HTTPPort = 9090
	srv := newHTTPServer(context.Background(), cfg, nil)
	assert.Equal(t, ":9090", srv.Addr)
	assert.Zero(t, srv.WriteTimeout)
}

func TestComponents_ReportsAIWithoutGating(t *testing.T) {
	svcHealth := health.NewServiceHealthChecker(zerolog.Nop(), fakeChecker{healthy: true})
	gen := ai.NewGenerator(ai.Disabled{}, ai.NewBreaker(ai.BreakerConfig{}), zerolog.Nop())
	suggestions := services.NewSuggestionsService(gen, nil, nil, nil)

	got := components(svcHealth, suggestions)()
	assert.True(t, got["fake"])
	assert.True(t, got["ai"])
}
