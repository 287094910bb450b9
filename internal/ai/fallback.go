package ai

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/streakedin/streakedin/internal/model"
)

// ReminderDraft is a reminder proposed from a free-text prompt.
type ReminderDraft struct {
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Type        model.ReminderType `json:"type"`
	Frequency   model.Frequency    `json:"frequency"`
	Enabled     bool               `json:"enabled"`
}

// TaskDraft is a task proposed from a free-text prompt.
type TaskDraft struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Priority    model.Priority `json:"priority"`
	DueDate     *string        `json:"dueDate,omitempty"`
}

// GoalDraft is a goal proposed from a free-text prompt.
type GoalDraft struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Deadline    string `json:"deadline"`
}

// Draft field limits match what the services accept on save.
const (
	MaxTitleLen       = 200
	MaxDescriptionLen = 2000
)

// fitTitle keeps title within MaxTitleLen, breaking at a word where it can,
// and moves the remainder to the front of description.
func fitTitle(title, description string) (string, string) {
	r := []rune(title)
	if len(r) > MaxTitleLen {
		cut := MaxTitleLen
		if i := strings.LastIndex(string(r[:MaxTitleLen]), " "); i > 0 {
			cut = utf8.RuneCountInString(string(r[:MaxTitleLen])[:i])
		}
		rest := strings.TrimSpace(string(r[cut:]))
		title = strings.TrimSpace(string(r[:cut]))
		if description == "" {
			description = rest
		} else {
			description = rest + "\n\n" + description
		}
	}
	if d := []rune(description); len(d) > MaxDescriptionLen {
		description = string(d[:MaxDescriptionLen])
	}
	return title, description
}

func containsAny(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// FallbackReminder derives a reminder from keyword cues in prompt.
func FallbackReminder(prompt string) ReminderDraft {
	p := strings.ToLower(prompt)
	d := ReminderDraft{
		Title:     strings.TrimSpace(prompt),
		Type:      model.ReminderBrowser,
		Frequency: model.FrequencyOnce,
		Enabled:   true,
	}
	switch {
	case containsAny(p, "daily", "every day", "each day"):
		d.Frequency = model.FrequencyDaily
	case containsAny(p, "weekly", "every week", "each week"):
		d.Frequency = model.FrequencyWeekly
	case containsAny(p, "monthly", "every month", "each month"):
		d.Frequency = model.FrequencyMonthly
	}
	switch {
	case strings.Contains(p, "email"):
		d.Type = model.ReminderEmail
	case containsAny(p, "sms", "text message"):
		d.Type = model.ReminderSMS
	}
	d.Title, d.Description = fitTitle(d.Title, d.Description)
	return d
}

// FallbackTask derives a task from keyword cues in prompt. now anchors relative due dates.
func FallbackTask(prompt string, now time.Time) TaskDraft {
	p := strings.ToLower(prompt)
	d := TaskDraft{Title: strings.TrimSpace(prompt), Priority: model.PriorityMedium}
	switch {
	case containsAny(p, "urgent", "asap", "important", "meeting", "deadline"):
		d.Priority = model.PriorityHigh
	case containsAny(p, "low priority", "someday", "whenever", "eventually"):
		d.Priority = model.PriorityLow
	}
	switch {
	case strings.Contains(p, "tomorrow"):
		due := model.FormatDate(now.AddDate(0, 0, 1))
		d.DueDate = &due
	case strings.Contains(p, "today"), strings.Contains(p, "tonight"):
		due := model.FormatDate(now)
		d.DueDate = &due
	case strings.Contains(p, "next week"):
		due := model.FormatDate(now.AddDate(0, 0, 7))
		d.DueDate = &due
	}
	d.Title, d.Description = fitTitle(d.Title, d.Description)
	return d
}

var categoryCues = []struct {
	category string
	words    []string
}{
	{"Health & Fitness", []string{"fitness", "health", "gym", "run", "exercise", "workout", "weight", "marathon"}},
	{"Learning", []string{"learn", "study", "course", "read", "book", "language", "certification"}},
	{"Career", []string{"career", "job", "work", "promotion", "interview", "resume"}},
	{"Finance", []string{"save", "saving", "money", "budget", "invest", "debt"}},
	{"Relationships", []string{"family", "friend", "partner", "network"}},
}

// FallbackGoal derives a goal from keyword cues in prompt. now anchors the deadline.
func FallbackGoal(prompt string, now time.Time) GoalDraft {
	p := strings.ToLower(prompt)
	d := GoalDraft{Title: strings.TrimSpace(prompt), Category: "Personal"}
	for _, c := range categoryCues {
		if containsAny(p, c.words...) {
			d.Category = c.category
			break
		}
	}
	switch {
	case strings.Contains(p, "week"):
		d.Deadline = model.FormatDate(now.AddDate(0, 0, 7))
	case strings.Contains(p, "year"):
		d.Deadline = model.FormatDate(now.AddDate(1, 0, 0))
	default:
		d.Deadline = model.FormatDate(now.AddDate(0, 0, 30))
	}
	d.Title, d.Description = fitTitle(d.Title, d.Description)
	return d
}
