// Package model holds the records persisted by the store and returned by the API.
package model

import "time"

// DateLayout is the calendar-date format used for deadlines, due dates and analytics days.
const DateLayout = "2006-01-02"

// FormatDate renders t as a calendar date in UTC.
func FormatDate(t time.Time) string { return t.UTC().Format(DateLayout) }

// ValidDate reports whether s is a YYYY-MM-DD calendar date.
func ValidDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// User represents an account.
type User struct {
	ID           string    `json:"id" bson:"_id"`
	Email        string    `json:"email" bson:"email"`
	PasswordHash string    `json:"-" bson:"passwordHash"`
	DisplayName  string    `json:"displayName,omitempty" bson:"displayName,omitempty"`
	Theme        Theme     `json:"theme" bson:"theme"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Goal is a user objective with a 0-100 progress gauge.
type Goal struct {
	ID          string     `json:"id" bson:"_id"`
	UserID      string     `json:"userId" bson:"userId"`
	Title       string     `json:"title" bson:"title"`
	Description string     `json:"description,omitempty" bson:"description,omitempty"`
	Progress    int        `json:"progress" bson:"progress"`
	Deadline    string     `json:"deadline" bson:"deadline"`
	Category    string     `json:"category" bson:"category"`
	AISuggested bool       `json:"aiSuggested" bson:"aiSuggested"`
	Status      GoalStatus `json:"status" bson:"status"`
	CreatedAt   time.Time  `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt" bson:"updatedAt"`
}

// Task is a unit of work, optionally linked to a goal.
// GoalID is not checked against existing goals.
type Task struct {
	ID          string    `json:"id" bson:"_id"`
	UserID      string    `json:"userId" bson:"userId"`
	Title       string    `json:"title" bson:"title"`
	Description string    `json:"description,omitempty" bson:"description,omitempty"`
	Completed   bool      `json:"completed" bson:"completed"`
	Priority    Priority  `json:"priority" bson:"priority"`
	DueDate     *string   `json:"dueDate,omitempty" bson:"dueDate,omitempty"`
	GoalID      *string   `json:"goalId,omitempty" bson:"goalId,omitempty"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Reminder is a scheduled nudge delivered through a channel.
type Reminder struct {
	ID          string       `json:"id" bson:"_id"`
	UserID      string       `json:"userId" bson:"userId"`
	Title       string       `json:"title" bson:"title"`
	Description string       `json:"description,omitempty" bson:"description,omitempty"`
	Type        ReminderType `json:"type" bson:"type"`
	Frequency   Frequency    `json:"frequency" bson:"frequency"`
	Enabled     bool         `json:"enabled" bson:"enabled"`
	NextTrigger *time.Time   `json:"nextTrigger,omitempty" bson:"nextTrigger,omitempty"`
	CreatedAt   time.Time    `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt" bson:"updatedAt"`
}

// ChatSession is a conversation with the assistant.
type ChatSession struct {
	ID           string    `json:"id" bson:"_id"`
	UserID       string    `json:"userId" bson:"userId"`
	Title        string    `json:"title" bson:"title"`
	LastMessage  string    `json:"lastMessage" bson:"lastMessage"`
	MessageCount int       `json:"messageCount" bson:"messageCount"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt" bson:"updatedAt"`
}

// ChatMessage belongs to exactly one session.
type ChatMessage struct {
	ID            string    `json:"id" bson:"_id"`
	ChatSessionID string    `json:"chatSessionId" bson:"chatSessionId"`
	UserID        string    `json:"userId" bson:"userId"`
	Role          ChatRole  `json:"role" bson:"role"`
	Content       string    `json:"content" bson:"content"`
	Timestamp     time.Time `json:"timestamp" bson:"timestamp"`
}

// AnalyticsEntry aggregates one day of activity. Date is unique per user.
type AnalyticsEntry struct {
	ID                string    `json:"id" bson:"_id"`
	UserID            string    `json:"userId" bson:"userId"`
	Date              string    `json:"date" bson:"date"`
	TasksCompleted    int       `json:"tasksCompleted" bson:"tasksCompleted"`
	GoalsProgressed   int       `json:"goalsProgressed" bson:"goalsProgressed"`
	ProductivityScore int       `json:"productivityScore" bson:"productivityScore"`
	CreatedAt         time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt" bson:"updatedAt"`
}

// UserStats is derived from goals, tasks and recent analytics. Never persisted.
type UserStats struct {
	TotalGoals          int       `json:"totalGoals"`
	ActiveGoals         int       `json:"activeGoals"`
	CompletedGoals      int       `json:"completedGoals"`
	GoalCompletionRate  int       `json:"goalCompletionRate"`
	AverageGoalProgress int       `json:"averageGoalProgress"`
	TotalTasks          int       `json:"totalTasks"`
	CompletedTasks      int       `json:"completedTasks"`
	PendingTasks        int       `json:"pendingTasks"`
	TaskCompletionRate  int       `json:"taskCompletionRate"`
	ProductivityScore   int       `json:"productivityScore"`
	StreakDays          int       `json:"streakDays"`
	NetworkGrowth       int       `json:"networkGrowth"`
	CalculatedAt        time.Time `json:"calculatedAt"`
}
