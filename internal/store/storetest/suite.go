// Package storetest is a compliance suite shared by every store.Store driver.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streakedin/streakedin/internal/model"
	"github.com/streakedin/streakedin/internal/store"
)

// Run exercises the store contract. makeStore must return a clean, isolated store.
func Run(t *testing.T, makeStore func(t *testing.T) store.Store) {
	t.Helper()

	s := makeStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	t.Run("Users", func(t *testing.T) { testUsers(ctx, t, s, base) })
	t.Run("Goals", func(t *testing.T) { testGoals(ctx, t, s, base) })
	t.Run("Tasks", func(t *testing.T) { testTasks(ctx, t, s, base) })
	t.Run("Reminders", func(t *testing.T) { testReminders(ctx, t, s, base) })
	t.Run("Chat", func(t *testing.T) { testChat(ctx, t, s, base) })
	t.Run("Analytics", func(t *testing.T) { testAnalytics(ctx, t, s, base) })
}

func newID() string { return uuid.New().String() }

func testUsers(ctx context.Context, t *testing.T, s store.Store, now time.Time) {
	id := newID()
	email := "User-" + id + "@Example.test"
	_, err := s.Users().Create(ctx, &model.User{ID: id, Email: email, PasswordHash: "h", Theme: model.ThemeLight, CreatedAt: now, UpdatedAt: now})
	require.NoError(t, err)

	got, err := s.Users().GetByEmail(ctx, email)
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "h", got.PasswordHash)

	_, err = s.Users().Create(ctx, &model.User{ID: newID(), Email: email, PasswordHash: "h", Theme: model.ThemeLight, CreatedAt: now, UpdatedAt: now})
	assert.ErrorIs(t, err, store.ErrConflict)

	dark := model.ThemeDark
	name := "Sam"
	updated, err := s.Users().UpdateSettings(ctx, id, &name, &dark, now.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, model.ThemeDark, updated.Theme)
	assert.Equal(t, "Sam", updated.DisplayName)

	_, err = s.Users().Get(ctx, "missing-"+id)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func testGoals(ctx context.Context, t *testing.T, s store.Store, now time.Time) {
	user, other := newID(), newID()
	first := &model.Goal{ID: newID(), UserID: user, Title: "Run 5k", Deadline: "2026-06-01", Category: "Health & Fitness",
		Status: model.GoalActive, CreatedAt: now, UpdatedAt: now}
	second := &model.Goal{ID: newID(), UserID: user, Title: "Read", Status: model.GoalActive, AISuggested: true,
		CreatedAt: now.Add(time.Second), UpdatedAt: now.Add(time.Second)}
	foreign := &model.Goal{ID: newID(), UserID: other, Title: "Not mine", Status: model.GoalActive, CreatedAt: now, UpdatedAt: now}

	for _, g := range []*model.Goal{second, first, foreign} {
		_, err := s.Goals().Create(ctx, g)
		require.NoError(t, err)
	}

	list, err := s.Goals().List(ctx, user)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, first.ID, list[0].ID, "ordered by createdAt")
	assert.True(t, list[1].AISuggested)

	progress := 40
	status := model.GoalPaused
	updated, err := s.Goals().Update(ctx, user, first.ID, model.GoalPatch{Progress: &progress, Status: &status}, now.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 40, updated.Progress)
	assert.Equal(t, model.GoalPaused, updated.Status)
	assert.Equal(t, "Run 5k", updated.Title)
	assert.True(t, updated.UpdatedAt.After(first.UpdatedAt))
	assert.True(t, updated.CreatedAt.Equal(first.CreatedAt))

	_, err = s.Goals().Update(ctx, other, first.ID, model.GoalPatch{Progress: &progress}, now)
	assert.ErrorIs(t, err, store.ErrNotFound, "owner scoping")

	require.NoError(t, s.Goals().Delete(ctx, user, first.ID))
	assert.ErrorIs(t, s.Goals().Delete(ctx, user, first.ID), store.ErrNotFound)
	_, err = s.Goals().Get(ctx, user, first.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func testTasks(ctx context.Context, t *testing.T, s store.Store, now time.Time) {
	user := newID()
	due := "2026-03-02"
	goalID := "goal-that-does-not-exist"
	task := &model.Task{ID: newID(), UserID: user, Title: "Write report", Priority: model.PriorityHigh, DueDate: &due,
		GoalID: &goalID, CreatedAt: now, UpdatedAt: now}
	_, err := s.Tasks().Create(ctx, task)
	require.NoError(t, err)

	got, err := s.Tasks().Get(ctx, user, task.ID)
	require.NoError(t, err)
	require.NotNil(t, got.DueDate)
	assert.Equal(t, due, *got.DueDate)
	require.NotNil(t, got.GoalID)

	done := true
	none := ""
	updated, err := s.Tasks().Update(ctx, user, task.ID, model.TaskPatch{Completed: &done, DueDate: &none}, now.Add(time.Minute))
	require.NoError(t, err)
	assert.True(t, updated.Completed)
	assert.Nil(t, updated.DueDate)
	assert.NotNil(t, updated.GoalID)

	list, err := s.Tasks().List(ctx, user)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].Completed)

	require.NoError(t, s.Tasks().Delete(ctx, user, task.ID))
}

func testReminders(ctx context.Context, t *testing.T, s store.Store, now time.Time) {
	user := newID()
	past := now.Add(-time.Minute)
	future := now.Add(time.Hour)
	due := &model.Reminder{ID: newID(), UserID: user, Title: "Drink water", Type: model.ReminderBrowser,
		Frequency: model.FrequencyDaily, Enabled: true, NextTrigger: &past, CreatedAt: now, UpdatedAt: now}
	later := &model.Reminder{ID: newID(), UserID: user, Title: "Stretch", Type: model.ReminderBrowser,
		Frequency: model.FrequencyOnce, Enabled: true, NextTrigger: &future, CreatedAt: now, UpdatedAt: now}
	disabled := &model.Reminder{ID: newID(), UserID: user, Title: "Off", Type: model.ReminderEmail,
		Frequency: model.FrequencyOnce, Enabled: false, NextTrigger: &past, CreatedAt: now, UpdatedAt: now}
	for _, r := range []*model.Reminder{due, later, disabled} {
		_, err := s.Reminders().Create(ctx, r)
		require.NoError(t, err)
	}

	dueList, err := s.Reminders().Due(ctx, now, 100)
	require.NoError(t, err)
	var ids []string
	for _, r := range dueList {
		if r.UserID == user {
			ids = append(ids, r.ID)
		}
	}
	assert.Equal(t, []string{due.ID}, ids)

	next := now.Add(24 * time.Hour)
	updated, err := s.Reminders().Update(ctx, user, due.ID, model.ReminderPatch{NextTrigger: &next}, now)
	require.NoError(t, err)
	require.NotNil(t, updated.NextTrigger)
	assert.True(t, updated.NextTrigger.Equal(next))

	off := false
	updated, err = s.Reminders().Update(ctx, user, later.ID, model.ReminderPatch{Enabled: &off, ClearNextTrigger: true}, now)
	require.NoError(t, err)
	assert.False(t, updated.Enabled)
	assert.Nil(t, updated.NextTrigger)

	list, err := s.Reminders().List(ctx, user)
	require.NoError(t, err)
	assert.Len(t, list, 3)
}

func testChat(ctx context.Context, t *testing.T, s store.Store, now time.Time) {
	user := newID()
	a := &model.ChatSession{ID: newID(), UserID: user, Title: "A", CreatedAt: now, UpdatedAt: now}
	b := &model.ChatSession{ID: newID(), UserID: user, Title: "B", CreatedAt: now, UpdatedAt: now}
	for _, cs := range []*model.ChatSession{a, b} {
		_, err := s.ChatSessions().Create(ctx, cs)
		require.NoError(t, err)
	}

	for i, sess := range []*model.ChatSession{a, a, b} {
		at := now.Add(time.Duration(i+1) * time.Second)
		_, err := s.ChatMessages().Create(ctx, &model.ChatMessage{ID: newID(), ChatSessionID: sess.ID, UserID: user,
			Role: model.RoleUser, Content: "hello", Timestamp: at})
		require.NoError(t, err)
		_, err = s.ChatSessions().RecordMessage(ctx, user, sess.ID, "hello", at)
		require.NoError(t, err)
	}

	ordered, err := s.ChatSessions().List(ctx, user, true)
	require.NoError(t, err)
	require.Len(t, ordered, 2)
	assert.Equal(t, b.ID, ordered[0].ID, "most recently updated first")
	assert.Equal(t, 2, ordered[1].MessageCount)

	unordered, err := s.ChatSessions().List(ctx, user, false)
	require.NoError(t, err)
	assert.Len(t, unordered, 2)

	renamed, err := s.ChatSessions().Rename(ctx, user, a.ID, "Renamed", now.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, "Renamed", renamed.Title)

	// Deleting A removes exactly A's messages.
	require.NoError(t, s.ChatSessions().Delete(ctx, user, a.ID))
	msgsA, err := s.ChatMessages().List(ctx, user, a.ID)
	require.NoError(t, err)
	assert.Empty(t, msgsA)
	msgsB, err := s.ChatMessages().List(ctx, user, b.ID)
	require.NoError(t, err)
	assert.Len(t, msgsB, 1)
	_, err = s.ChatSessions().Get(ctx, user, a.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, s.ChatSessions().Delete(ctx, user, a.ID), store.ErrNotFound)

	n, err := s.ChatMessages().DeleteBySession(ctx, user, b.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	reset, err := s.ChatSessions().ResetMessages(ctx, user, b.ID, now.Add(time.Hour))
	require.NoError(t, err)
	assert.Zero(t, reset.MessageCount)
	assert.Empty(t, reset.LastMessage)
}

func testAnalytics(ctx context.Context, t *testing.T, s store.Store, now time.Time) {
	user := newID()
	first := &model.AnalyticsEntry{ID: newID(), UserID: user, Date: "2026-02-27", TasksCompleted: 1, ProductivityScore: 20,
		CreatedAt: now, UpdatedAt: now}
	_, err := s.Analytics().Upsert(ctx, first)
	require.NoError(t, err)

	again := &model.AnalyticsEntry{ID: newID(), UserID: user, Date: "2026-02-27", TasksCompleted: 3, ProductivityScore: 60,
		CreatedAt: now.Add(time.Hour), UpdatedAt: now.Add(time.Hour)}
	merged, err := s.Analytics().Upsert(ctx, again)
	require.NoError(t, err)
	assert.Equal(t, first.ID, merged.ID, "upsert keeps the existing row")
	assert.Equal(t, 3, merged.TasksCompleted)

	_, err = s.Analytics().Upsert(ctx, &model.AnalyticsEntry{ID: newID(), UserID: user, Date: "2026-01-01",
		TasksCompleted: 5, CreatedAt: now, UpdatedAt: now})
	require.NoError(t, err)

	recent, err := s.Analytics().ListSince(ctx, user, "2026-02-01")
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "2026-02-27", recent[0].Date)

	_, err = s.Analytics().Get(ctx, user, "2025-12-31")
	assert.ErrorIs(t, err, store.ErrNotFound)
}
