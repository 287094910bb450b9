package services

import (
	"time"

	"github.com/streakedin/streakedin/internal/ai"
	"github.com/streakedin/streakedin/internal/auth"
)

// Services bundles every service wired over one store and feed.
type Services struct {
	Users       *UserService
	Goals       *GoalService
	Tasks       *TaskService
	Reminders   *ReminderService
	Analytics   *AnalyticsService
	Stats       *StatsService
	Chat        *ChatService
	Suggestions *SuggestionsService
}

// New wires the services. statsDebounce <= 0 uses DefaultStatsDebounce.
func New(d Deps, gen *ai.Generator, tokens *auth.TokenIssuer, statsDebounce time.Duration) *Services {
	analytics := NewAnalyticsService(d)
	s := &Services{
		Users:     NewUserService(d, tokens),
		Goals:     NewGoalService(d, analytics),
		Tasks:     NewTaskService(d, analytics),
		Reminders: NewReminderService(d),
		Analytics: analytics,
		Stats:     NewStatsService(d, analytics, statsDebounce),
		Chat:      NewChatService(d, gen),
	}
	s.Suggestions = NewSuggestionsService(gen, s.Goals, s.Tasks, s.Reminders)
	return s
}
