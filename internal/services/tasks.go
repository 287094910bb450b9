package services

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/streakedin/streakedin/internal/changefeed"
	"github.com/streakedin/streakedin/internal/model"
)

// TaskInput is the create payload for a task.
type TaskInput struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Completed   bool           `json:"completed"`
	Priority    model.Priority `json:"priority"`
	DueDate     *string        `json:"dueDate,omitempty"`
	GoalID      *string        `json:"goalId,omitempty"`
}

type TaskService struct {
	Deps
	analytics *AnalyticsService
}

func NewTaskService(d Deps, analytics *AnalyticsService) *TaskService {
	return &TaskService{Deps: d, analytics: analytics}
}

func (s *TaskService) Create(ctx context.Context, userID string, in TaskInput) (*model.Task, error) {
	if err := validateTitle("title", in.Title); err != nil {
		return nil, err
	}
	if err := validateDescription(in.Description); err != nil {
		return nil, err
	}
	if in.Priority == "" {
		in.Priority = model.PriorityMedium
	}
	if !in.Priority.Valid() {
		return nil, NewValidationError("priority", "must be low, medium or high")
	}
	if in.DueDate != nil {
		if err := validateDate("dueDate", *in.DueDate, true); err != nil {
			return nil, err
		}
	}

	now := s.now()
	t := &model.Task{
		ID:          uuid.New().String(),
		UserID:      userID,
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Completed:   in.Completed,
		Priority:    in.Priority,
		DueDate:     nonEmpty(in.DueDate),
		GoalID:      nonEmpty(in.GoalID),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	created, err := s.Store.Tasks().Create(ctx, t)
	if err != nil {
		s.Log.Error().Stack().Err(err).Str("user_id", userID).Msg("create task failed")
		return nil, translate(err, "task", t.ID)
	}
	s.publish(changefeed.Tasks, changefeed.OpAdded, userID, created.ID, created)
	if created.Completed {
		s.trackCompleted(ctx, userID)
	}
	return created, nil
}

func (s *TaskService) Get(ctx context.Context, userID, taskID string) (*model.Task, error) {
	t, err := s.Store.Tasks().Get(ctx, userID, taskID)
	return t, translate(err, "task", taskID)
}

func (s *TaskService) List(ctx context.Context, userID string) ([]*model.Task, error) {
	tasks, err := s.Store.Tasks().List(ctx, userID)
	if err != nil {
		s.Log.Error().Stack().Err(err).Str("user_id", userID).Msg("list tasks failed")
		return nil, translate(err, "tasks", userID)
	}
	return tasks, nil
}

// Update applies patch and stamps updatedAt. Completing a task counts
// towards today's analytics.
func (s *TaskService) Update(ctx context.Context, userID, taskID string, patch model.TaskPatch) (*model.Task, error) {
	if err := validateTaskPatch(patch); err != nil {
		return nil, err
	}
	before, err := s.Store.Tasks().Get(ctx, userID, taskID)
	if err != nil {
		return nil, translate(err, "task", taskID)
	}
	updated, err := s.Store.Tasks().Update(ctx, userID, taskID, patch, s.stampAfter(before.UpdatedAt))
	if err != nil {
		s.Log.Error().Stack().Err(err).Str("user_id", userID).Str("task_id", taskID).Msg("update task failed")
		return nil, translate(err, "task", taskID)
	}
	s.publish(changefeed.Tasks, changefeed.OpModified, userID, updated.ID, updated)

	if !before.Completed && updated.Completed {
		s.trackCompleted(ctx, userID)
	}
	return updated, nil
}

// Toggle flips the completed flag.
func (s *TaskService) Toggle(ctx context.Context, userID, taskID string) (*model.Task, error) {
	t, err := s.Get(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}
	done := !t.Completed
	return s.Update(ctx, userID, taskID, model.TaskPatch{Completed: &done})
}

func (s *TaskService) Delete(ctx context.Context, userID, taskID string) error {
	if err := s.Store.Tasks().Delete(ctx, userID, taskID); err != nil {
		return translate(err, "task", taskID)
	}
	s.publish(changefeed.Tasks, changefeed.OpRemoved, userID, taskID, nil)
	return nil
}

// Subscribe streams the user's tasks: a snapshot sorted by creation time, then diffs.
func (s *TaskService) Subscribe(ctx context.Context, userID string, fn func(Update[model.Task])) (func(), error) {
	return subscribe(ctx, s.Feed, s.Log, userID, changefeed.Tasks,
		func(ctx context.Context) ([]*model.Task, error) { return s.List(ctx, userID) }, fn)
}

func (s *TaskService) trackCompleted(ctx context.Context, userID string) {
	if s.analytics == nil {
		return
	}
	if err := s.analytics.TrackTaskCompleted(ctx, userID); err != nil {
		s.Log.Warn().Err(err).Str("user_id", userID).Msg("track task completion failed")
	}
}

func nonEmpty(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
