package services

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streakedin/streakedin/internal/ai"
	"github.com/streakedin/streakedin/internal/model"
)

func TestSuggestions_FallbackReminder(t *testing.T) {
	env := newTestEnv(t)

	res, err := env.suggestions.GenerateReminder(t.Context(), "Remind me to drink water daily")
	require.NoError(t, err)
	assert.Equal(t, ai.SourceFallback, res.Source)
	assert.Equal(t, ai.ReminderDraft{
		Title:     "Remind me to drink water daily",
		Type:      model.ReminderBrowser,
		Frequency: model.FrequencyDaily,
		Enabled:   true,
	}, res.Draft)

	_, err = env.suggestions.GenerateReminder(t.Context(), "  ")
	assert.True(t, IsValidationError(err))
}

func TestSuggestions_CreateGoalMarksAISuggested(t *testing.T) {
	env := newTestEnv(t)

	g, source, err := env.suggestions.CreateGoal(t.Context(), "u1", "Learn Spanish this year")
	require.NoError(t, err)
	assert.Equal(t, ai.SourceFallback, source)
	assert.True(t, g.AISuggested)
	assert.Equal(t, "Learning", g.Category)
	assert.Equal(t, "2026-03-10", g.Deadline)

	task, _, err := env.suggestions.CreateTask(t.Context(), "u1", "urgent: file taxes today")
	require.NoError(t, err)
	assert.Equal(t, model.PriorityHigh, task.Priority)
	require.NotNil(t, task.DueDate)
	assert.Equal(t, "2025-03-10", *task.DueDate)
}

func TestSuggestions_StatusAndReset(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.suggestions.GenerateTask(t.Context(), "anything")
	require.NoError(t, err)
	assert.Equal(t, "open", env.suggestions.Status().State)

	assert.Equal(t, "closed", env.suggestions.Reset().State)
}

func TestSuggestions_SaveLongPrompt(t *testing.T) {
	env := newTestEnv(t)
	prompt := "Remind me daily to " + strings.Repeat("stretch ", 40)

	r, source, err := env.suggestions.CreateReminder(t.Context(), "u1", prompt)
	require.NoError(t, err)
	assert.Equal(t, ai.SourceFallback, source)
	assert.LessOrEqual(t, utf8.RuneCountInString(r.Title), 200)
	assert.NotEmpty(t, r.Description)
	assert.Equal(t, model.FrequencyDaily, r.Frequency)

	task, _, err := env.suggestions.CreateTask(t.Context(), "u1", strings.Repeat("tidy the garage ", 30))
	require.NoError(t, err)
	assert.LessOrEqual(t, utf8.RuneCountInString(task.Title), 200)

	goal, _, err := env.suggestions.CreateGoal(t.Context(), "u1", strings.Repeat("learn to cook ", 40))
	require.NoError(t, err)
	assert.LessOrEqual(t, utf8.RuneCountInString(goal.Title), 200)
}

type verboseModel struct{}

func (verboseModel) Generate(context.Context, string) (string, error) {
	b, _ := json.Marshal(map[string]any{
		"title":       strings.Repeat("Run ", 80),
		"description": "Build up slowly.",
		"category":    "Health & Fitness",
		"deadline":    "2025-09-01",
	})
	return string(b), nil
}

func (verboseModel) Chat(context.Context, []ai.Turn, string) (string, error) { return "ok", nil }

func TestSuggestions_SaveVerboseAIDraft(t *testing.T) {
	env := newTestEnvWithModel(t, verboseModel{})

	g, source, err := env.suggestions.CreateGoal(t.Context(), "u1", "get fit")
	require.NoError(t, err)
	assert.Equal(t, ai.SourceAI, source)
	assert.LessOrEqual(t, utf8.RuneCountInString(g.Title), 200)
	assert.True(t, strings.HasSuffix(g.Description, "Build up slowly."))
	assert.Equal(t, "2025-09-01", g.Deadline)
}
