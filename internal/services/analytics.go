package services

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/streakedin/streakedin/internal/changefeed"
	"github.com/streakedin/streakedin/internal/model"
	"github.com/streakedin/streakedin/internal/store"
)

// DefaultAnalyticsDays is the look-back window for analytics and stats.
const DefaultAnalyticsDays = 30

// AnalyticsInput records one day of activity. A nil ProductivityScore is
// derived from the counters.
type AnalyticsInput struct {
	Date              string `json:"date"`
	TasksCompleted    int    `json:"tasksCompleted"`
	GoalsProgressed   int    `json:"goalsProgressed"`
	ProductivityScore *int   `json:"productivityScore,omitempty"`
}

type AnalyticsService struct {
	Deps
	// serialises the read-modify-write of activity tracking
	mu sync.Mutex
}

func NewAnalyticsService(d Deps) *AnalyticsService { return &AnalyticsService{Deps: d} }

// ProductivityScore weighs a day's activity: 20 per task, 10 per goal, capped at 100.
func ProductivityScore(tasksCompleted, goalsProgressed int) int {
	return min(100, 20*tasksCompleted+10*goalsProgressed)
}

// Record inserts or replaces the entry for in.Date (today when empty).
func (s *AnalyticsService) Record(ctx context.Context, userID string, in AnalyticsInput) (*model.AnalyticsEntry, error) {
	if in.Date == "" {
		in.Date = model.FormatDate(s.now())
	}
	if err := validateDate("date", in.Date, false); err != nil {
		return nil, err
	}
	if in.TasksCompleted < 0 || in.GoalsProgressed < 0 {
		return nil, NewValidationError("counters", "must not be negative")
	}
	score := ProductivityScore(in.TasksCompleted, in.GoalsProgressed)
	if in.ProductivityScore != nil {
		if *in.ProductivityScore < 0 || *in.ProductivityScore > 100 {
			return nil, NewValidationError("productivityScore", "must be between 0 and 100")
		}
		score = *in.ProductivityScore
	}

	now := s.now()
	return s.upsert(ctx, &model.AnalyticsEntry{
		ID:                uuid.New().String(),
		UserID:            userID,
		Date:              in.Date,
		TasksCompleted:    in.TasksCompleted,
		GoalsProgressed:   in.GoalsProgressed,
		ProductivityScore: score,
		CreatedAt:         now,
		UpdatedAt:         now,
	}, true)
}

// List returns entries of the last days days, oldest first.
func (s *AnalyticsService) List(ctx context.Context, userID string, days int) ([]*model.AnalyticsEntry, error) {
	if days <= 0 {
		days = DefaultAnalyticsDays
	}
	since := model.FormatDate(s.now().AddDate(0, 0, -days))
	entries, err := s.Store.Analytics().ListSince(ctx, userID, since)
	if err != nil {
		s.Log.Error().Stack().Err(err).Str("user_id", userID).Msg("list analytics failed")
		return nil, translate(err, "analytics", userID)
	}
	return entries, nil
}

// TrackTaskCompleted adds one completed task to today's entry.
func (s *AnalyticsService) TrackTaskCompleted(ctx context.Context, userID string) error {
	return s.track(ctx, userID, 1, 0)
}

// TrackGoalProgress adds one progressed goal to today's entry.
func (s *AnalyticsService) TrackGoalProgress(ctx context.Context, userID string) error {
	return s.track(ctx, userID, 0, 1)
}

func (s *AnalyticsService) track(ctx context.Context, userID string, tasks, goals int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	day := model.FormatDate(now)
	e, err := s.Store.Analytics().Get(ctx, userID, day)
	fresh := errors.Is(err, store.ErrNotFound)
	switch {
	case fresh:
		e = &model.AnalyticsEntry{ID: uuid.New().String(), UserID: userID, Date: day, CreatedAt: now}
	case err != nil:
		return translate(err, "analytics", day)
	}
	e.TasksCompleted += tasks
	e.GoalsProgressed += goals
	e.ProductivityScore = ProductivityScore(e.TasksCompleted, e.GoalsProgressed)
	e.UpdatedAt = now
	_, err = s.upsert(ctx, e, fresh)
	return err
}

// upsert saves e. fresh marks a newly generated ID; the store keeps the
// existing ID when the day already had an entry.
func (s *AnalyticsService) upsert(ctx context.Context, e *model.AnalyticsEntry, fresh bool) (*model.AnalyticsEntry, error) {
	saved, err := s.Store.Analytics().Upsert(ctx, e)
	if err != nil {
		s.Log.Error().Stack().Err(err).Str("user_id", e.UserID).Str("date", e.Date).Msg("upsert analytics failed")
		return nil, translate(err, "analytics", e.Date)
	}
	op := changefeed.OpModified
	if fresh && saved.ID == e.ID {
		op = changefeed.OpAdded
	}
	s.publish(changefeed.Analytics, op, saved.UserID, saved.ID, saved)
	return saved, nil
}

// Subscribe streams the last DefaultAnalyticsDays of entries, then diffs.
func (s *AnalyticsService) Subscribe(ctx context.Context, userID string, fn func(Update[model.AnalyticsEntry])) (func(), error) {
	return subscribe(ctx, s.Feed, s.Log, userID, changefeed.Analytics,
		func(ctx context.Context) ([]*model.AnalyticsEntry, error) {
			return s.List(ctx, userID, DefaultAnalyticsDays)
		}, fn)
}
