package services

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/streakedin/streakedin/internal/changefeed"
	"github.com/streakedin/streakedin/internal/model"
)

// GoalInput is the create payload for a goal.
type GoalInput struct {
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Progress    int              `json:"progress"`
	Deadline    string           `json:"deadline"`
	Category    string           `json:"category"`
	AISuggested bool             `json:"aiSuggested"`
	Status      model.GoalStatus `json:"status"`
}

type GoalService struct {
	Deps
	analytics *AnalyticsService
}

func NewGoalService(d Deps, analytics *AnalyticsService) *GoalService {
	return &GoalService{Deps: d, analytics: analytics}
}

func (s *GoalService) Create(ctx context.Context, userID string, in GoalInput) (*model.Goal, error) {
	if err := validateTitle("title", in.Title); err != nil {
		return nil, err
	}
	if err := validateDescription(in.Description); err != nil {
		return nil, err
	}
	if err := validateProgress(in.Progress); err != nil {
		return nil, err
	}
	if err := validateDate("deadline", in.Deadline, true); err != nil {
		return nil, err
	}
	if in.Status == "" {
		in.Status = model.GoalActive
	}
	if !in.Status.Valid() {
		return nil, NewValidationError("status", "must be active, completed or paused")
	}

	now := s.now()
	g := &model.Goal{
		ID:          uuid.New().String(),
		UserID:      userID,
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Progress:    in.Progress,
		Deadline:    in.Deadline,
		Category:    strings.TrimSpace(in.Category),
		AISuggested: in.AISuggested,
		Status:      in.Status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	created, err := s.Store.Goals().Create(ctx, g)
	if err != nil {
		s.Log.Error().Stack().Err(err).Str("user_id", userID).Msg("create goal failed")
		return nil, translate(err, "goal", g.ID)
	}
	s.publish(changefeed.Goals, changefeed.OpAdded, userID, created.ID, created)
	return created, nil
}

func (s *GoalService) Get(ctx context.Context, userID, goalID string) (*model.Goal, error) {
	g, err := s.Store.Goals().Get(ctx, userID, goalID)
	return g, translate(err, "goal", goalID)
}

func (s *GoalService) List(ctx context.Context, userID string) ([]*model.Goal, error) {
	goals, err := s.Store.Goals().List(ctx, userID)
	if err != nil {
		s.Log.Error().Stack().Err(err).Str("user_id", userID).Msg("list goals failed")
		return nil, translate(err, "goals", userID)
	}
	return goals, nil
}

// Update applies patch and stamps updatedAt. Raising progress counts as
// goal activity for today's analytics.
func (s *GoalService) Update(ctx context.Context, userID, goalID string, patch model.GoalPatch) (*model.Goal, error) {
	if err := validateGoalPatch(patch); err != nil {
		return nil, err
	}
	before, err := s.Store.Goals().Get(ctx, userID, goalID)
	if err != nil {
		return nil, translate(err, "goal", goalID)
	}
	updated, err := s.Store.Goals().Update(ctx, userID, goalID, patch, s.stampAfter(before.UpdatedAt))
	if err != nil {
		s.Log.Error().Stack().Err(err).Str("user_id", userID).Str("goal_id", goalID).Msg("update goal failed")
		return nil, translate(err, "goal", goalID)
	}
	s.publish(changefeed.Goals, changefeed.OpModified, userID, updated.ID, updated)

	if s.analytics != nil && updated.Progress > before.Progress {
		if err := s.analytics.TrackGoalProgress(ctx, userID); err != nil {
			s.Log.Warn().Err(err).Str("user_id", userID).Msg("track goal progress failed")
		}
	}
	return updated, nil
}

func (s *GoalService) Delete(ctx context.Context, userID, goalID string) error {
	if err := s.Store.Goals().Delete(ctx, userID, goalID); err != nil {
		return translate(err, "goal", goalID)
	}
	s.publish(changefeed.Goals, changefeed.OpRemoved, userID, goalID, nil)
	return nil
}

// Subscribe streams the user's goals: a snapshot sorted by creation time, then diffs.
func (s *GoalService) Subscribe(ctx context.Context, userID string, fn func(Update[model.Goal])) (func(), error) {
	return subscribe(ctx, s.Feed, s.Log, userID, changefeed.Goals,
		func(ctx context.Context) ([]*model.Goal, error) { return s.List(ctx, userID) }, fn)
}
