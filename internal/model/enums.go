package model

// GoalStatus is the lifecycle state of a goal.
type GoalStatus string

const (
	GoalActive    GoalStatus = "active"
	GoalCompleted GoalStatus = "completed"
	GoalPaused    GoalStatus = "paused"
)

func (s GoalStatus) Valid() bool {
	switch s {
	case GoalActive, GoalCompleted, GoalPaused:
		return true
	}
	return false
}

// Priority ranks tasks.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// ReminderType is the delivery channel of a reminder.
type ReminderType string

const (
	ReminderEmail   ReminderType = "email"
	ReminderBrowser ReminderType = "browser"
	ReminderSMS     ReminderType = "sms"
)

func (t ReminderType) Valid() bool {
	switch t {
	case ReminderEmail, ReminderBrowser, ReminderSMS:
		return true
	}
	return false
}

// Frequency controls how a reminder repeats.
type Frequency string

const (
	FrequencyOnce    Frequency = "once"
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
)

func (f Frequency) Valid() bool {
	switch f {
	case FrequencyOnce, FrequencyDaily, FrequencyWeekly, FrequencyMonthly:
		return true
	}
	return false
}

// ChatRole identifies the author of a chat message.
type ChatRole string

const (
	RoleUser      ChatRole = "user"
	RoleAssistant ChatRole = "assistant"
)

func (r ChatRole) Valid() bool { return r == RoleUser || r == RoleAssistant }

// Theme is the UI colour scheme preference.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

func (t Theme) Valid() bool { return t == ThemeLight || t == ThemeDark }

// GoalCategories are the categories offered when creating a goal. Category stays free text.
var GoalCategories = []string{
	"Health & Fitness",
	"Career",
	"Learning",
	"Finance",
	"Personal",
	"Relationships",
	"Productivity",
}
