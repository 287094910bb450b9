package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/streakedin/streakedin/internal/changefeed"
	"github.com/streakedin/streakedin/internal/model"
)

// ReminderInput is the create payload for a reminder. Enabled defaults to true.
type ReminderInput struct {
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Type        model.ReminderType `json:"type"`
	Frequency   model.Frequency    `json:"frequency"`
	Enabled     *bool              `json:"enabled,omitempty"`
	NextTrigger *time.Time         `json:"nextTrigger,omitempty"`
}

type ReminderService struct {
	Deps
}

func NewReminderService(d Deps) *ReminderService { return &ReminderService{Deps: d} }

// Create fills defaults (browser, once, enabled) and schedules the first
// trigger one period out for repeating reminders without an explicit time.
func (s *ReminderService) Create(ctx context.Context, userID string, in ReminderInput) (*model.Reminder, error) {
	if err := validateTitle("title", in.Title); err != nil {
		return nil, err
	}
	if err := validateDescription(in.Description); err != nil {
		return nil, err
	}
	if in.Type == "" {
		in.Type = model.ReminderBrowser
	}
	if !in.Type.Valid() {
		return nil, NewValidationError("type", "must be email, browser or sms")
	}
	if in.Frequency == "" {
		in.Frequency = model.FrequencyOnce
	}
	if !in.Frequency.Valid() {
		return nil, NewValidationError("frequency", "must be once, daily, weekly or monthly")
	}
	enabled := true
	if in.Enabled != nil {
		enabled = *in.Enabled
	}

	now := s.now()
	next := in.NextTrigger
	if next == nil {
		if ts, ok := model.NextOccurrence(in.Frequency, now); ok {
			next = &ts
		}
	}
	if next != nil {
		ts := next.UTC()
		next = &ts
	}

	r := &model.Reminder{
		ID:          uuid.New().String(),
		UserID:      userID,
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Type:        in.Type,
		Frequency:   in.Frequency,
		Enabled:     enabled,
		NextTrigger: next,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	created, err := s.Store.Reminders().Create(ctx, r)
	if err != nil {
		s.Log.Error().Stack().Err(err).Str("user_id", userID).Msg("create reminder failed")
		return nil, translate(err, "reminder", r.ID)
	}
	s.publish(changefeed.Reminders, changefeed.OpAdded, userID, created.ID, created)
	return created, nil
}

func (s *ReminderService) Get(ctx context.Context, userID, reminderID string) (*model.Reminder, error) {
	r, err := s.Store.Reminders().Get(ctx, userID, reminderID)
	return r, translate(err, "reminder", reminderID)
}

func (s *ReminderService) List(ctx context.Context, userID string) ([]*model.Reminder, error) {
	list, err := s.Store.Reminders().List(ctx, userID)
	if err != nil {
		s.Log.Error().Stack().Err(err).Str("user_id", userID).Msg("list reminders failed")
		return nil, translate(err, "reminders", userID)
	}
	return list, nil
}

func (s *ReminderService) Update(ctx context.Context, userID, reminderID string, patch model.ReminderPatch) (*model.Reminder, error) {
	if err := validateReminderPatch(patch); err != nil {
		return nil, err
	}
	before, err := s.Store.Reminders().Get(ctx, userID, reminderID)
	if err != nil {
		return nil, translate(err, "reminder", reminderID)
	}
	s.reschedule(before, &patch)
	updated, err := s.Store.Reminders().Update(ctx, userID, reminderID, patch, s.stampAfter(before.UpdatedAt))
	if err != nil {
		s.Log.Error().Stack().Err(err).Str("user_id", userID).Str("reminder_id", reminderID).Msg("update reminder failed")
		return nil, translate(err, "reminder", reminderID)
	}
	s.publish(changefeed.Reminders, changefeed.OpModified, userID, updated.ID, updated)
	return updated, nil
}

// reschedule gives an enabled, unscheduled reminder its next trigger when the
// patch changes its frequency or re-enables it, as Create does.
func (s *ReminderService) reschedule(before *model.Reminder, patch *model.ReminderPatch) {
	if patch.NextTrigger != nil || patch.ClearNextTrigger || before.NextTrigger != nil {
		return
	}
	if patch.Frequency == nil && (patch.Enabled == nil || !*patch.Enabled) {
		return
	}
	enabled, freq := before.Enabled, before.Frequency
	if patch.Enabled != nil {
		enabled = *patch.Enabled
	}
	if patch.Frequency != nil {
		freq = *patch.Frequency
	}
	if !enabled {
		return
	}
	if ts, ok := model.NextOccurrence(freq, s.now()); ok {
		patch.NextTrigger = &ts
	}
}

func (s *ReminderService) Delete(ctx context.Context, userID, reminderID string) error {
	if err := s.Store.Reminders().Delete(ctx, userID, reminderID); err != nil {
		return translate(err, "reminder", reminderID)
	}
	s.publish(changefeed.Reminders, changefeed.OpRemoved, userID, reminderID, nil)
	return nil
}

// Due lists enabled reminders of every user whose trigger time has passed.
func (s *ReminderService) Due(ctx context.Context, limit int) ([]*model.Reminder, error) {
	return s.Store.Reminders().Due(ctx, s.now(), limit)
}

// Fire announces r as triggered and schedules its next occurrence. One-off
// reminders are disabled. Repeating reminders skip missed periods so the
// next trigger is always in the future.
func (s *ReminderService) Fire(ctx context.Context, r *model.Reminder) (*model.Reminder, error) {
	now := s.now()
	s.publish(changefeed.Reminders, changefeed.OpTriggered, r.UserID, r.ID, r)

	patch := model.ReminderPatch{}
	next := now
	if r.NextTrigger != nil {
		next = *r.NextTrigger
	}
	if ts, ok := model.NextOccurrence(r.Frequency, next); ok {
		for !ts.After(now) {
			ts, _ = model.NextOccurrence(r.Frequency, ts)
		}
		patch.NextTrigger = &ts
	} else {
		off := false
		patch.Enabled = &off
		patch.ClearNextTrigger = true
	}
	return s.Update(ctx, r.UserID, r.ID, patch)
}

// Subscribe streams the user's reminders: a snapshot sorted by creation time, then diffs.
func (s *ReminderService) Subscribe(ctx context.Context, userID string, fn func(Update[model.Reminder])) (func(), error) {
	return subscribe(ctx, s.Feed, s.Log, userID, changefeed.Reminders,
		func(ctx context.Context) ([]*model.Reminder, error) { return s.List(ctx, userID) }, fn)
}
