package changefeed

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeed_FiltersByOwnerAndCollection(t *testing.T) {
	f := New(8, zerolog.Nop())
	goals := f.Subscribe("u1", Goals)
	defer goals.Close()
	all := f.Subscribe("u1")
	defer all.Close()

	f.Publish(Change{Collection: Goals, Op: OpAdded, UserID: "u1", ID: "g1"})
	f.Publish(Change{Collection: Tasks, Op: OpAdded, UserID: "u1", ID: "t1"})
	f.Publish(Change{Collection: Goals, Op: OpAdded, UserID: "u2", ID: "g2"})

	require.Len(t, goals.C, 1)
	c := <-goals.C
	assert.Equal(t, "g1", c.ID)
	assert.False(t, c.At.IsZero())

	assert.Len(t, all.C, 2)
}

func TestFeed_DropsSlowSubscriber(t *testing.T) {
	f := New(1, zerolog.Nop())
	slow := f.Subscribe("u1", Tasks)

	f.Publish(Change{Collection: Tasks, Op: OpAdded, UserID: "u1", ID: "t1"})
	f.Publish(Change{Collection: Tasks, Op: OpAdded, UserID: "u1", ID: "t2"})

	assert.True(t, slow.Dropped())
	assert.Equal(t, 0, f.Subscribers())

	// Buffered change still drains, then the channel reports closed.
	c, ok := <-slow.C
	require.True(t, ok)
	assert.Equal(t, "t1", c.ID)
	_, ok = <-slow.C
	assert.False(t, ok)

	slow.Close()
}

func TestSubscription_CloseIsIdempotent(t *testing.T) {
	f := New(4, zerolog.Nop())
	s := f.Subscribe("u1")
	s.Close()
	s.Close()

	_, ok := <-s.C
	assert.False(t, ok)
	assert.False(t, s.Dropped())
	assert.Equal(t, 0, f.Subscribers())

	f.Publish(Change{Collection: Goals, UserID: "u1", ID: "g"})
}
