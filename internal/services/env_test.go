package services

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/streakedin/streakedin/internal/ai"
	"github.com/streakedin/streakedin/internal/auth"
	"github.com/streakedin/streakedin/internal/changefeed"
	"github.com/streakedin/streakedin/internal/store/sqlite"
)

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type testEnv struct {
	clock       *testClock
	feed        *changefeed.Feed
	goals       *GoalService
	tasks       *TaskService
	reminders   *ReminderService
	analytics   *AnalyticsService
	stats       *StatsService
	chat        *ChatService
	users       *UserService
	suggestions *SuggestionsService
}

var testStart = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithModel(t, ai.Disabled{})
}

func newTestEnvWithModel(t *testing.T, m ai.Model) *testEnv {
	t.Helper()
	st, err := sqlite.New(filepath.Join(t.TempDir(), "services.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	clock := &testClock{t: testStart}
	log := zerolog.Nop()
	feed := changefeed.New(64, log)
	d := Deps{Store: st, Feed: feed, Log: log, Now: clock.Now}

	gen := ai.NewGenerator(m, ai.NewBreaker(ai.BreakerConfig{Now: clock.Now}), log).WithClock(clock.Now)
	analytics := NewAnalyticsService(d)
	env := &testEnv{
		clock:     clock,
		feed:      feed,
		analytics: analytics,
		goals:     NewGoalService(d, analytics),
		tasks:     NewTaskService(d, analytics),
		reminders: NewReminderService(d),
		stats:     NewStatsService(d, analytics, 20*time.Millisecond),
		chat:      NewChatService(d, gen),
		users:     NewUserService(d, auth.NewTokenIssuer("test-secret", time.Hour)),
	}
	env.stats.Growth = func() int { return 7 }
	env.suggestions = NewSuggestionsService(gen, env.goals, env.tasks, env.reminders)
	return env
}

func ptr[T any](v T) *T { return &v }
