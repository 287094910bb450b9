package services

import (
	"context"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/streakedin/streakedin/internal/changefeed"
	"github.com/streakedin/streakedin/internal/model"
)

// DefaultStatsDebounce coalesces bursts of writes into one recomputation.
const DefaultStatsDebounce = 250 * time.Millisecond

type StatsService struct {
	Deps
	analytics *AnalyticsService
	debounce  time.Duration
	// Growth supplies networkGrowth. There is no network feature yet, so
	// the default is a random 0-20.
	Growth func() int
}

func NewStatsService(d Deps, analytics *AnalyticsService, debounce time.Duration) *StatsService {
	if debounce <= 0 {
		debounce = DefaultStatsDebounce
	}
	return &StatsService{
		Deps:      d,
		analytics: analytics,
		debounce:  debounce,
		Growth:    func() int { return rand.IntN(21) },
	}
}

// Calculate reads goals, tasks and recent analytics for userID and reduces them.
func (s *StatsService) Calculate(ctx context.Context, userID string) (*model.UserStats, error) {
	goals, err := s.Store.Goals().List(ctx, userID)
	if err != nil {
		s.Log.Error().Stack().Err(err).Str("user_id", userID).Msg("stats: list goals failed")
		return nil, translate(err, "goals", userID)
	}
	tasks, err := s.Store.Tasks().List(ctx, userID)
	if err != nil {
		s.Log.Error().Stack().Err(err).Str("user_id", userID).Msg("stats: list tasks failed")
		return nil, translate(err, "tasks", userID)
	}
	entries, err := s.analytics.List(ctx, userID, DefaultAnalyticsDays)
	if err != nil {
		return nil, err
	}
	stats := ComputeStats(goals, tasks, entries, s.Growth())
	stats.CalculatedAt = s.now()
	return &stats, nil
}

// ComputeStats reduces records into UserStats. Rates are integer
// percentages and are 0 when there is nothing to divide by. StreakDays
// counts the entries with at least one completed task.
func ComputeStats(goals []*model.Goal, tasks []*model.Task, entries []*model.AnalyticsEntry, growth int) model.UserStats {
	var st model.UserStats

	progress := 0
	for _, g := range goals {
		st.TotalGoals++
		progress += g.Progress
		switch g.Status {
		case model.GoalActive:
			st.ActiveGoals++
		case model.GoalCompleted:
			st.CompletedGoals++
		}
	}
	st.GoalCompletionRate = percent(st.CompletedGoals, st.TotalGoals)
	st.AverageGoalProgress = mean(progress, st.TotalGoals)

	for _, t := range tasks {
		st.TotalTasks++
		if t.Completed {
			st.CompletedTasks++
		}
	}
	st.PendingTasks = st.TotalTasks - st.CompletedTasks
	st.TaskCompletionRate = percent(st.CompletedTasks, st.TotalTasks)

	score := 0
	for _, e := range entries {
		score += e.ProductivityScore
		if e.TasksCompleted > 0 {
			st.StreakDays++
		}
	}
	st.ProductivityScore = mean(score, len(entries))
	st.NetworkGrowth = growth
	return st
}

func percent(n, d int) int {
	if d == 0 {
		return 0
	}
	return int(math.Round(float64(n) * 100 / float64(d)))
}

func mean(sum, n int) int {
	if n == 0 {
		return 0
	}
	return int(math.Round(float64(sum) / float64(n)))
}

// Subscribe emits stats immediately and again after each burst of goal,
// task or analytics changes has been quiet for the debounce window.
// The returned function blocks until delivery has stopped.
func (s *StatsService) Subscribe(ctx context.Context, userID string, fn func(*model.UserStats)) (func(), error) {
	if s.Feed == nil {
		return nil, errNoFeed
	}
	watch := []string{changefeed.Goals, changefeed.Tasks, changefeed.Analytics}
	sub := s.Feed.Subscribe(userID, watch...)
	first, err := s.Calculate(ctx, userID)
	if err != nil {
		sub.Close()
		return nil, err
	}
	fn(first)

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer func() { sub.Close() }()

		timer := time.NewTimer(s.debounce)
		timer.Stop()
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-sub.C:
				if !ok {
					if ctx.Err() != nil {
						return
					}
					sub = s.Feed.Subscribe(userID, watch...)
				}
				timer.Reset(s.debounce)
			case <-timer.C:
				st, err := s.Calculate(ctx, userID)
				if err != nil {
					if ctx.Err() != nil {
						return
					}
					s.Log.Warn().Err(err).Str("user_id", userID).Msg("stats recomputation failed")
					continue
				}
				fn(st)
			}
		}
	}()

	return sync.OnceFunc(func() {
		cancel()
		<-done
	}), nil
}
