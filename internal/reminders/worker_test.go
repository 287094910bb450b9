package reminders

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streakedin/streakedin/internal/model"
)

type fakeScheduler struct {
	mu    sync.Mutex
	due   []*model.Reminder
	fired []string
	err   error
}

func (f *fakeScheduler) Due(context.Context, int) ([]*model.Reminder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := f.due
	f.due = nil
	return out, nil
}

func (f *fakeScheduler) Fire(_ context.Context, r *model.Reminder) (*model.Reminder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fired = append(f.fired, r.ID)
	return r, nil
}

func (f *fakeScheduler) firedIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.fired...)
}

type failingNotifier struct{ failID string }

func (n failingNotifier) Notify(_ context.Context, r *model.Reminder) error {
	if r.ID == n.failID {
		return errors.New("gateway down")
	}
	return nil
}

func TestProcessOnce_FiresDelivered(t *testing.T) {
	sched := &fakeScheduler{due: []*model.Reminder{
		{ID: "a", Type: model.ReminderBrowser},
		{ID: "b", Type: model.ReminderEmail},
	}}
	w := NewWorker(sched, failingNotifier{failID: "b"}, Config{}, zerolog.Nop())

	n, err := w.ProcessOnce(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{"a"}, sched.firedIDs())
}

func TestProcessOnce_PropagatesDueError(t *testing.T) {
	sched := &fakeScheduler{err: errors.New("db gone")}
	w := NewWorker(sched, nil, Config{}, zerolog.Nop())

	_, err := w.ProcessOnce(t.Context())
	assert.Error(t, err)
}

func TestRun_StopsOnCancel(t *testing.T) {
	sched := &fakeScheduler{due: []*model.Reminder{{ID: "a", Type: model.ReminderSMS}}}
	w := NewWorker(sched, nil, Config{Interval: 5 * time.Millisecond}, zerolog.Nop())

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.Eventually(t, func() bool { return len(sched.firedIDs()) == 1 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}
