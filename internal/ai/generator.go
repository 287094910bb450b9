package ai

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/streakedin/streakedin/internal/metrics"
	"github.com/streakedin/streakedin/internal/model"
)

// Source tells whether a result came from the provider or the heuristics.
type Source string

const (
	SourceAI       Source = "ai"
	SourceFallback Source = "fallback"
)

// Result pairs a draft with its origin.
type Result[T any] struct {
	Draft  T      `json:"draft"`
	Source Source `json:"source"`
}

// FallbackReply is the assistant message used when the provider cannot answer.
const FallbackReply = "I'm having trouble reaching the AI service right now. " +
	"Your message is saved; please try again in a little while."

// Generator asks the Model for structured drafts and never fails: provider
// errors, unparseable output and an open breaker all degrade to heuristics.
type Generator struct {
	model   Model
	breaker *Breaker
	log     zerolog.Logger
	now     func() time.Time
	timeout time.Duration
}

func NewGenerator(m Model, b *Breaker, log zerolog.Logger) *Generator {
	if m == nil {
		m = Disabled{}
	}
	if b == nil {
		b = NewBreaker(BreakerConfig{})
	}
	return &Generator{model: m, breaker: b, log: log, now: time.Now, timeout: DefaultTimeout}
}

// DefaultTimeout bounds a single provider call.
const DefaultTimeout = 30 * time.Second

// WithTimeout overrides DefaultTimeout; d <= 0 keeps the default.
func (g *Generator) WithTimeout(d time.Duration) *Generator {
	if d > 0 {
		g.timeout = d
	}
	return g
}

// WithClock overrides the clock used for relative dates.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Breaker exposes the circuit for status reporting and manual reset.
func (g *Generator) Breaker() *Breaker { return g.breaker }

// structured runs one guarded provider call and decodes its JSON into out.
// Any failure, including a decode failure, counts against the breaker.
func (g *Generator) structured(ctx context.Context, kind, prompt string, out any) bool {
	if !g.breaker.Allow() {
		metrics.AIRequestsTotal.WithLabelValues(kind, "rejected").Inc()
		return false
	}
	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	text, err := g.model.Generate(callCtx, prompt)
	if err == nil {
		err = DecodeJSON(text, out)
	}
	g.breaker.Done(err)
	if err != nil {
		metrics.AIRequestsTotal.WithLabelValues(kind, "fallback").Inc()
		g.log.Warn().Err(err).Str("kind", kind).Msg("ai generation failed; using fallback")
		return false
	}
	metrics.AIRequestsTotal.WithLabelValues(kind, "ai").Inc()
	return true
}

type rawReminder struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Type        *string `json:"type"`
	Frequency   *string `json:"frequency"`
	Enabled     *bool   `json:"enabled"`
}

// Reminder drafts a reminder from prompt.
func (g *Generator) Reminder(ctx context.Context, prompt string) Result[ReminderDraft] {
	draft := FallbackReminder(prompt)
	var raw rawReminder
	if !g.structured(ctx, "reminder", reminderPrompt(prompt), &raw) {
		return Result[ReminderDraft]{Draft: draft, Source: SourceFallback}
	}
	mergeString(&draft.Title, raw.Title)
	mergeString(&draft.Description, raw.Description)
	if raw.Type != nil && model.ReminderType(*raw.Type).Valid() {
		draft.Type = model.ReminderType(*raw.Type)
	}
	if raw.Frequency != nil && model.Frequency(*raw.Frequency).Valid() {
		draft.Frequency = model.Frequency(*raw.Frequency)
	}
	if raw.Enabled != nil {
		draft.Enabled = *raw.Enabled
	}
	draft.Title, draft.Description = fitTitle(draft.Title, draft.Description)
	return Result[ReminderDraft]{Draft: draft, Source: SourceAI}
}

type rawTask struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Priority    *string `json:"priority"`
	DueDate     *string `json:"dueDate"`
}

// Task drafts a task from prompt.
func (g *Generator) Task(ctx context.Context, prompt string) Result[TaskDraft] {
	now := g.now()
	draft := FallbackTask(prompt, now)
	var raw rawTask
	if !g.structured(ctx, "task", taskPrompt(prompt, now), &raw) {
		return Result[TaskDraft]{Draft: draft, Source: SourceFallback}
	}
	mergeString(&draft.Title, raw.Title)
	mergeString(&draft.Description, raw.Description)
	if raw.Priority != nil && model.Priority(*raw.Priority).Valid() {
		draft.Priority = model.Priority(*raw.Priority)
	}
	if raw.DueDate != nil && model.ValidDate(*raw.DueDate) {
		due := *raw.DueDate
		draft.DueDate = &due
	}
	draft.Title, draft.Description = fitTitle(draft.Title, draft.Description)
	return Result[TaskDraft]{Draft: draft, Source: SourceAI}
}

type rawGoal struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
	Deadline    *string `json:"deadline"`
}

// Goal drafts a goal from prompt.
func (g *Generator) Goal(ctx context.Context, prompt string) Result[GoalDraft] {
	now := g.now()
	draft := FallbackGoal(prompt, now)
	var raw rawGoal
	if !g.structured(ctx, "goal", goalPrompt(prompt, now), &raw) {
		return Result[GoalDraft]{Draft: draft, Source: SourceFallback}
	}
	mergeString(&draft.Title, raw.Title)
	mergeString(&draft.Description, raw.Description)
	mergeString(&draft.Category, raw.Category)
	if raw.Deadline != nil && model.ValidDate(*raw.Deadline) {
		draft.Deadline = *raw.Deadline
	}
	draft.Title, draft.Description = fitTitle(draft.Title, draft.Description)
	return Result[GoalDraft]{Draft: draft, Source: SourceAI}
}

// Reply answers message in the context of history.
func (g *Generator) Reply(ctx context.Context, history []Turn, message string) (string, Source) {
	if !g.breaker.Allow() {
		metrics.AIRequestsTotal.WithLabelValues("chat", "rejected").Inc()
		return FallbackReply, SourceFallback
	}
	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	text, err := g.model.Chat(callCtx, history, message)
	g.breaker.Done(err)
	if err != nil {
		metrics.AIRequestsTotal.WithLabelValues("chat", "fallback").Inc()
		g.log.Warn().Err(err).Msg("ai chat failed; using fallback reply")
		return FallbackReply, SourceFallback
	}
	metrics.AIRequestsTotal.WithLabelValues("chat", "ai").Inc()
	return strings.TrimSpace(text), SourceAI
}

func mergeString(dst *string, v *string) {
	if v != nil && strings.TrimSpace(*v) != "" {
		*dst = strings.TrimSpace(*v)
	}
}
