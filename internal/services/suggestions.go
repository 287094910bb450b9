package services

import (
	"context"
	"strings"

	"github.com/streakedin/streakedin/internal/ai"
	"github.com/streakedin/streakedin/internal/model"
)

// SuggestionsService turns prompts into drafts and optionally saves them.
type SuggestionsService struct {
	gen       *ai.Generator
	goals     *GoalService
	tasks     *TaskService
	reminders *ReminderService
}

func NewSuggestionsService(gen *ai.Generator, goals *GoalService, tasks *TaskService, reminders *ReminderService) *SuggestionsService {
	return &SuggestionsService{gen: gen, goals: goals, tasks: tasks, reminders: reminders}
}

func (s *SuggestionsService) GenerateReminder(ctx context.Context, prompt string) (ai.Result[ai.ReminderDraft], error) {
	if err := validatePrompt(prompt); err != nil {
		return ai.Result[ai.ReminderDraft]{}, err
	}
	return s.gen.Reminder(ctx, strings.TrimSpace(prompt)), nil
}

func (s *SuggestionsService) GenerateTask(ctx context.Context, prompt string) (ai.Result[ai.TaskDraft], error) {
	if err := validatePrompt(prompt); err != nil {
		return ai.Result[ai.TaskDraft]{}, err
	}
	return s.gen.Task(ctx, strings.TrimSpace(prompt)), nil
}

func (s *SuggestionsService) GenerateGoal(ctx context.Context, prompt string) (ai.Result[ai.GoalDraft], error) {
	if err := validatePrompt(prompt); err != nil {
		return ai.Result[ai.GoalDraft]{}, err
	}
	return s.gen.Goal(ctx, strings.TrimSpace(prompt)), nil
}

// CreateReminder generates a draft from prompt and saves it for userID.
func (s *SuggestionsService) CreateReminder(ctx context.Context, userID, prompt string) (*model.Reminder, ai.Source, error) {
	res, err := s.GenerateReminder(ctx, prompt)
	if err != nil {
		return nil, "", err
	}
	d := res.Draft
	r, err := s.reminders.Create(ctx, userID, ReminderInput{
		Title:       d.Title,
		Description: d.Description,
		Type:        d.Type,
		Frequency:   d.Frequency,
		Enabled:     &d.Enabled,
	})
	return r, res.Source, err
}

// CreateTask generates a draft from prompt and saves it for userID.
func (s *SuggestionsService) CreateTask(ctx context.Context, userID, prompt string) (*model.Task, ai.Source, error) {
	res, err := s.GenerateTask(ctx, prompt)
	if err != nil {
		return nil, "", err
	}
	d := res.Draft
	t, err := s.tasks.Create(ctx, userID, TaskInput{
		Title:       d.Title,
		Description: d.Description,
		Priority:    d.Priority,
		DueDate:     d.DueDate,
	})
	return t, res.Source, err
}

// CreateGoal generates a draft from prompt and saves it as an AI-suggested goal.
func (s *SuggestionsService) CreateGoal(ctx context.Context, userID, prompt string) (*model.Goal, ai.Source, error) {
	res, err := s.GenerateGoal(ctx, prompt)
	if err != nil {
		return nil, "", err
	}
	d := res.Draft
	g, err := s.goals.Create(ctx, userID, GoalInput{
		Title:       d.Title,
		Description: d.Description,
		Category:    d.Category,
		Deadline:    d.Deadline,
		AISuggested: true,
	})
	return g, res.Source, err
}

// Status reports the circuit breaker guarding the provider.
func (s *SuggestionsService) Status() ai.BreakerStatus { return s.gen.Breaker().Status() }

// Reset closes the breaker so the next call reaches the provider.
func (s *SuggestionsService) Reset() ai.BreakerStatus {
	s.gen.Breaker().Reset()
	return s.gen.Breaker().Status()
}
