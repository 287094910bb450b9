package ai

import (
	"strings"
	"testing"
	"unicode/utf8"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streakedin/streakedin/internal/model"
)

func TestFallbackReminder_DrinkWaterDaily(t *testing.T) {
	got := FallbackReminder("Remind me to drink water daily")
	assert.Equal(t, ReminderDraft{
		Title:     "Remind me to drink water daily",
		Frequency: model.FrequencyDaily,
		Type:      model.ReminderBrowser,
		Enabled:   true,
	}, got)
}

func TestFallbackReminder_Cues(t *testing.T) {
	assert.Equal(t, model.ReminderEmail, FallbackReminder("Email me about rent").Type)
	assert.Equal(t, model.FrequencyOnce, FallbackReminder("Email me about rent").Frequency)
	assert.Equal(t, model.ReminderSMS, FallbackReminder("Send an SMS every week").Type)
	assert.Equal(t, model.FrequencyWeekly, FallbackReminder("Send an SMS every week").Frequency)
	assert.Equal(t, model.FrequencyMonthly, FallbackReminder("Pay the bill monthly").Frequency)
}

func TestFallbackReminder_AlwaysPopulated(t *testing.T) {
	for _, p := range []string{"", "x", "Call mom", "????"} {
		d := FallbackReminder(p)
		assert.True(t, d.Type.Valid(), p)
		assert.True(t, d.Frequency.Valid(), p)
		assert.True(t, d.Enabled, p)
	}
}

func TestFallbackTask(t *testing.T) {
	now := time.Date(2026, 4, 10, 15, 0, 0, 0, time.UTC)

	d := FallbackTask("Prepare slides for the meeting tomorrow", now)
	assert.Equal(t, model.PriorityHigh, d.Priority)
	require.NotNil(t, d.DueDate)
	assert.Equal(t, "2026-04-11", *d.DueDate)

	d = FallbackTask("Clean the garage someday", now)
	assert.Equal(t, model.PriorityLow, d.Priority)
	assert.Nil(t, d.DueDate)

	d = FallbackTask("Buy milk", now)
	assert.Equal(t, model.PriorityMedium, d.Priority)
	assert.Equal(t, "Buy milk", d.Title)
}

func TestFallbackGoal(t *testing.T) {
	now := time.Date(2026, 4, 10, 15, 0, 0, 0, time.UTC)

	d := FallbackGoal("Run a half marathon", now)
	assert.Equal(t, "Health & Fitness", d.Category)
	assert.Equal(t, "2026-05-10", d.Deadline)

	d = FallbackGoal("Learn Spanish this year", now)
	assert.Equal(t, "Learning", d.Category)
	assert.Equal(t, "2027-04-10", d.Deadline)

	d = FallbackGoal("Be kinder", now)
	assert.Equal(t, "Personal", d.Category)
}

func TestFallbackDrafts_LongPromptTitleFits(t *testing.T) {
	prompt := "Remind me daily to " + strings.Repeat("stretch ", 40)

	r := FallbackReminder(prompt)
	assert.LessOrEqual(t, utf8.RuneCountInString(r.Title), MaxTitleLen)
	assert.True(t, strings.HasPrefix(r.Title, "Remind me daily to stretch"))
	assert.False(t, strings.HasSuffix(r.Title, " "))
	assert.Equal(t, model.FrequencyDaily, r.Frequency)
	assert.Equal(t, strings.Join(strings.Fields(prompt), " "), strings.Join(strings.Fields(r.Title+" "+r.Description), " "))

	g := FallbackGoal(strings.Repeat("é", 250), time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, MaxTitleLen, utf8.RuneCountInString(g.Title))
	assert.Equal(t, 50, utf8.RuneCountInString(g.Description))
}

func TestFitTitle_PrependsOverflowToDescription(t *testing.T) {
	title, desc := fitTitle(strings.Repeat("a", 195)+" tail words", "details")
	assert.Equal(t, strings.Repeat("a", 195), title)
	assert.Equal(t, "tail words\n\ndetails", desc)

	title, desc = fitTitle("short", "details")
	assert.Equal(t, "short", title)
	assert.Equal(t, "details", desc)
}
