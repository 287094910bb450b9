// Package changefeed is the in-process publish/subscribe channel that carries
// per-record diffs from services to realtime subscribers.
package changefeed

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/streakedin/streakedin/internal/metrics"
)

// Op is the kind of change.
type Op string

const (
	OpAdded     Op = "added"
	OpModified  Op = "modified"
	OpRemoved   Op = "removed"
	OpTriggered Op = "triggered"
)

// Collection names carried on changes.
const (
	Goals        = "goals"
	Tasks        = "tasks"
	Reminders    = "reminders"
	ChatSessions = "chatSessions"
	ChatMessages = "chatMessages"
	Analytics    = "analytics"
	Users        = "users"
)

// Change describes one write to one record.
type Change struct {
	Collection string    `json:"collection"`
	Op         Op        `json:"op"`
	UserID     string    `json:"userId"`
	ID         string    `json:"id"`
	Doc        any       `json:"doc,omitempty"`
	At         time.Time `json:"at"`
}

// Feed fans changes out to subscribers filtered by owner and collection.
type Feed struct {
	mu     sync.Mutex
	subs   map[uint64]*Subscription
	nextID uint64
	buffer int
	log    zerolog.Logger
}

// New creates a feed whose subscribers buffer up to buffer changes.
func New(buffer int, log zerolog.Logger) *Feed {
	if buffer < 1 {
		buffer = 1
	}
	return &Feed{subs: make(map[uint64]*Subscription), buffer: buffer, log: log}
}

// Subscription receives changes on C until closed. C is closed when the
// subscription is closed or when the feed drops it for falling behind.
type Subscription struct {
	C <-chan Change

	ch      chan Change
	id      uint64
	userID  string
	colls   map[string]bool
	feed    *Feed
	dropped atomic.Bool
	once    sync.Once
}

// Subscribe registers interest in userID's changes to the given collections
// (all collections when none are given).
func (f *Feed) Subscribe(userID string, collections ...string) *Subscription {
	ch := make(chan Change, f.buffer)
	sub := &Subscription{C: ch, ch: ch, userID: userID, feed: f}
	if len(collections) > 0 {
		sub.colls = make(map[string]bool, len(collections))
		for _, c := range collections {
			sub.colls[c] = true
		}
	}

	f.mu.Lock()
	f.nextID++
	sub.id = f.nextID
	f.subs[sub.id] = sub
	f.mu.Unlock()

	metrics.FeedSubscribers.Inc()
	return sub
}

// Publish delivers c to every matching subscriber without blocking.
// Subscribers with a full buffer are dropped.
func (f *Feed) Publish(c Change) {
	if c.At.IsZero() {
		c.At = time.Now().UTC()
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	for id, sub := range f.subs {
		if sub.userID != c.UserID || (sub.colls != nil && !sub.colls[c.Collection]) {
			continue
		}
		select {
		case sub.ch <- c:
		default:
			sub.dropped.Store(true)
			f.removeLocked(id, sub)
			metrics.FeedDroppedTotal.Inc()
			f.log.Warn().
				Str("user_id", sub.userID).
				Str("collection", c.Collection).
				Msg("changefeed subscriber fell behind; dropped")
		}
	}
}

// Subscribers returns the number of live subscriptions.
func (f *Feed) Subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

func (f *Feed) removeLocked(id uint64, sub *Subscription) {
	delete(f.subs, id)
	sub.once.Do(func() {
		close(sub.ch)
		metrics.FeedSubscribers.Dec()
	})
}

// Close unsubscribes. Safe to call more than once.
func (s *Subscription) Close() {
	s.feed.mu.Lock()
	defer s.feed.mu.Unlock()
	s.feed.removeLocked(s.id, s)
}

// Dropped reports whether the feed closed the subscription for falling behind.
func (s *Subscription) Dropped() bool { return s.dropped.Load() }
