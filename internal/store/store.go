package store

import (
	"context"
	"errors"
	"time"

	"github.com/streakedin/streakedin/internal/model"
)

var (
	// ErrNotFound is returned when no record matches the owner and id.
	ErrNotFound = errors.New("store: not found")
	// ErrConflict is returned on unique-key violations.
	ErrConflict = errors.New("store: conflict")
)

// Store exposes persistence operations required by services.
// Implementations live under internal/store/<driver>/ (sqlite, postgres, mongo).
type Store interface {
	Users() Users
	Goals() Goals
	Tasks() Tasks
	Reminders() Reminders
	ChatSessions() ChatSessions
	ChatMessages() ChatMessages
	Analytics() Analytics
	Close() error
}

type Users interface {
	Create(ctx context.Context, u *model.User) (*model.User, error)
	Get(ctx context.Context, userID string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateSettings(ctx context.Context, userID string, displayName *string, theme *model.Theme, updatedAt time.Time) (*model.User, error)
}

// Goals, Tasks and Reminders list in createdAt ascending order.
type Goals interface {
	Create(ctx context.Context, g *model.Goal) (*model.Goal, error)
	Get(ctx context.Context, userID, goalID string) (*model.Goal, error)
	List(ctx context.Context, userID string) ([]*model.Goal, error)
	Update(ctx context.Context, userID, goalID string, patch model.GoalPatch, updatedAt time.Time) (*model.Goal, error)
	Delete(ctx context.Context, userID, goalID string) error
}

type Tasks interface {
	Create(ctx context.Context, t *model.Task) (*model.Task, error)
	Get(ctx context.Context, userID, taskID string) (*model.Task, error)
	List(ctx context.Context, userID string) ([]*model.Task, error)
	Update(ctx context.Context, userID, taskID string, patch model.TaskPatch, updatedAt time.Time) (*model.Task, error)
	Delete(ctx context.Context, userID, taskID string) error
}

type Reminders interface {
	Create(ctx context.Context, r *model.Reminder) (*model.Reminder, error)
	Get(ctx context.Context, userID, reminderID string) (*model.Reminder, error)
	List(ctx context.Context, userID string) ([]*model.Reminder, error)
	Update(ctx context.Context, userID, reminderID string, patch model.ReminderPatch, updatedAt time.Time) (*model.Reminder, error)
	Delete(ctx context.Context, userID, reminderID string) error
	// Due lists enabled reminders of every user whose next trigger is at or before now.
	Due(ctx context.Context, now time.Time, limit int) ([]*model.Reminder, error)
}

type ChatSessions interface {
	Create(ctx context.Context, s *model.ChatSession) (*model.ChatSession, error)
	Get(ctx context.Context, userID, sessionID string) (*model.ChatSession, error)
	// List orders by updatedAt descending when ordered is true, storage order otherwise.
	List(ctx context.Context, userID string, ordered bool) ([]*model.ChatSession, error)
	Rename(ctx context.Context, userID, sessionID, title string, updatedAt time.Time) (*model.ChatSession, error)
	// RecordMessage bumps messageCount and sets the lastMessage preview.
	RecordMessage(ctx context.Context, userID, sessionID, preview string, at time.Time) (*model.ChatSession, error)
	ResetMessages(ctx context.Context, userID, sessionID string, updatedAt time.Time) (*model.ChatSession, error)
	// Delete removes the session and all of its messages atomically.
	Delete(ctx context.Context, userID, sessionID string) error
}

type ChatMessages interface {
	Create(ctx context.Context, m *model.ChatMessage) (*model.ChatMessage, error)
	// List orders by timestamp ascending.
	List(ctx context.Context, userID, sessionID string) ([]*model.ChatMessage, error)
	DeleteBySession(ctx context.Context, userID, sessionID string) (int64, error)
}

type Analytics interface {
	// Upsert inserts or replaces the entry for (userId, date).
	Upsert(ctx context.Context, e *model.AnalyticsEntry) (*model.AnalyticsEntry, error)
	Get(ctx context.Context, userID, date string) (*model.AnalyticsEntry, error)
	// ListSince returns entries with date >= sinceDate ordered by date ascending.
	ListSince(ctx context.Context, userID, sinceDate string) ([]*model.AnalyticsEntry, error)
}
