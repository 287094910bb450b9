package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTaskPatch_ClearsOptionalFields(t *testing.T) {
	due := "2026-01-02"
	goal := "g1"
	task := Task{DueDate: &due, GoalID: &goal}

	empty := ""
	TaskPatch{DueDate: &empty, GoalID: &empty}.Apply(&task)

	assert.Nil(t, task.DueDate)
	assert.Nil(t, task.GoalID)
}

func TestGoalPatch_EmptyAndApply(t *testing.T) {
	assert.True(t, GoalPatch{}.Empty())

	progress := 60
	status := GoalCompleted
	g := Goal{Title: "Run", Progress: 10, Status: GoalActive}
	p := GoalPatch{Progress: &progress, Status: &status}
	assert.False(t, p.Empty())

	p.Apply(&g)
	assert.Equal(t, "Run", g.Title)
	assert.Equal(t, 60, g.Progress)
	assert.Equal(t, GoalCompleted, g.Status)
}

func TestReminderPatch_ClearNextTrigger(t *testing.T) {
	ts := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	r := Reminder{NextTrigger: &ts}

	ReminderPatch{ClearNextTrigger: true}.Apply(&r)
	assert.Nil(t, r.NextTrigger)
}

func TestNextOccurrence(t *testing.T) {
	from := time.Date(2026, 1, 31, 8, 0, 0, 0, time.UTC)

	next, ok := NextOccurrence(FrequencyDaily, from)
	assert.True(t, ok)
	assert.Equal(t, time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC), next)

	next, ok = NextOccurrence(FrequencyWeekly, from)
	assert.True(t, ok)
	assert.Equal(t, time.Date(2026, 2, 7, 8, 0, 0, 0, time.UTC), next)

	_, ok = NextOccurrence(FrequencyMonthly, from)
	assert.True(t, ok)

	_, ok = NextOccurrence(FrequencyOnce, from)
	assert.False(t, ok)
}

func TestEnumsValid(t *testing.T) {
	assert.True(t, GoalPaused.Valid())
	assert.False(t, GoalStatus("archived").Valid())
	assert.True(t, PriorityHigh.Valid())
	assert.False(t, Priority("critical").Valid())
	assert.True(t, ReminderSMS.Valid())
	assert.False(t, ReminderType("push").Valid())
	assert.True(t, FrequencyMonthly.Valid())
	assert.False(t, Frequency("hourly").Valid())
	assert.True(t, ThemeDark.Valid())
	assert.True(t, ValidDate("2026-02-28"))
	assert.False(t, ValidDate("2026-02-30"))
}
