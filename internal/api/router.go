package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/streakedin/streakedin/internal/api/recovery"
	"github.com/streakedin/streakedin/internal/auth"
	"github.com/streakedin/streakedin/internal/metrics"
	"github.com/streakedin/streakedin/internal/services"
)

// RouterDeps are the collaborators the HTTP surface is built from.
type RouterDeps struct {
	Services       *services.Services
	Authorizer     auth.Authorizer
	AllowedOrigins []string
	Health         *HealthHandler
	Log            zerolog.Logger
}

// NewRouter wires HTTP routes to handlers. CORS and panic recovery wrap the
// whole router so preflight requests never reach route matching.
func NewRouter(d RouterDeps) http.Handler {
	root := mux.NewRouter()
	root.Use(Metrics)
	svc := d.Services

	// Auth and profile
	authH := NewAuthHandler(svc.Users, d.Authorizer)
	root.HandleFunc("/api/auth/signup", authH.SignUp).Methods("POST")
	root.HandleFunc("/api/auth/signin", authH.SignIn).Methods("POST")
	root.HandleFunc("/api/auth/signout", authH.SignOut).Methods("POST")
	root.HandleFunc("/api/me", authH.Me).Methods("GET")
	root.HandleFunc("/api/me/settings", authH.UpdateSettings).Methods("PATCH")

	// Goals
	goals := NewGoalHandler(svc.Goals, svc.Suggestions, d.Authorizer)
	root.HandleFunc("/api/goals", goals.ListGoals).Methods("GET")
	root.HandleFunc("/api/goals", goals.CreateGoal).Methods("POST")
	root.HandleFunc("/api/goals/generate", goals.GenerateGoal).Methods("POST")
	root.HandleFunc("/api/goals/{goalId}", goals.UpdateGoal).Methods("PATCH")
	root.HandleFunc("/api/goals/{goalId}", goals.DeleteGoal).Methods("DELETE")

	// Tasks
	tasks := NewTaskHandler(svc.Tasks, svc.Suggestions, d.Authorizer)
	root.HandleFunc("/api/tasks", tasks.ListTasks).Methods("GET")
	root.HandleFunc("/api/tasks", tasks.CreateTask).Methods("POST")
	root.HandleFunc("/api/tasks/generate", tasks.GenerateTask).Methods("POST")
	root.HandleFunc("/api/tasks/{taskId}", tasks.UpdateTask).Methods("PATCH")
	root.HandleFunc("/api/tasks/{taskId}", tasks.DeleteTask).Methods("DELETE")

	// Reminders
	reminders := NewReminderHandler(svc.Reminders, svc.Suggestions, d.Authorizer)
	root.HandleFunc("/api/reminders", reminders.ListReminders).Methods("GET")
	root.HandleFunc("/api/reminders", reminders.CreateReminder).Methods("POST")
	root.HandleFunc("/api/reminders/generate", reminders.GenerateReminder).Methods("POST")
	root.HandleFunc("/api/reminders/{reminderId}", reminders.UpdateReminder).Methods("PATCH")
	root.HandleFunc("/api/reminders/{reminderId}", reminders.DeleteReminder).Methods("DELETE")

	// Chat
	chat := NewChatHandler(svc.Chat, d.Authorizer)
	root.HandleFunc("/api/chat/sessions", chat.ListSessions).Methods("GET")
	root.HandleFunc("/api/chat/sessions", chat.CreateSession).Methods("POST")
	root.HandleFunc("/api/chat/sessions/{sessionId}", chat.RenameSession).Methods("PATCH")
	root.HandleFunc("/api/chat/sessions/{sessionId}", chat.DeleteSession).Methods("DELETE")
	root.HandleFunc("/api/chat/sessions/{sessionId}/messages", chat.ListMessages).Methods("GET")
	root.HandleFunc("/api/chat/sessions/{sessionId}/messages", chat.SendMessage).Methods("POST")
	root.HandleFunc("/api/chat/sessions/{sessionId}/messages", chat.ClearMessages).Methods("DELETE")

	// Analytics, stats and AI status
	insights := NewInsightsHandler(svc.Analytics, svc.Stats, svc.Suggestions, d.Authorizer)
	root.HandleFunc("/api/analytics", insights.ListAnalytics).Methods("GET")
	root.HandleFunc("/api/analytics", insights.RecordAnalytics).Methods("POST")
	root.HandleFunc("/api/stats", insights.GetStats).Methods("GET")
	root.HandleFunc("/api/ai/status", insights.AIStatus).Methods("GET")
	root.HandleFunc("/api/ai/reset", insights.AIReset).Methods("POST")

	// Realtime
	stream := NewStreamHandler(StreamServices{
		Goals:     svc.Goals,
		Tasks:     svc.Tasks,
		Reminders: svc.Reminders,
		Chat:      svc.Chat,
		Analytics: svc.Analytics,
		Stats:     svc.Stats,
	}, d.Authorizer, d.AllowedOrigins, d.Log)
	root.HandleFunc("/api/ws/{collection}", stream.Stream).Methods("GET")

	// Health and metrics
	healthH := d.Health
	if healthH == nil {
		healthH = NewHealthHandler(nil, nil)
	}
	root.HandleFunc("/api/health", healthH.CheckHealth).Methods("GET")
	root.Handle("/metrics", metrics.Handler()).Methods("GET")

	return recovery.Middleware(d.Log)(CORS(d.AllowedOrigins)(root))
}
