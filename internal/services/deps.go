// Package services holds the business logic between the HTTP/MCP surfaces and the store.
package services

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/streakedin/streakedin/internal/changefeed"
	"github.com/streakedin/streakedin/internal/store"
)

// Deps are shared by every service.
type Deps struct {
	Store store.Store
	Feed  *changefeed.Feed
	Log   zerolog.Logger
	// Now is the service clock; defaults to time.Now in UTC.
	Now func() time.Time
}

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now().UTC()
	}
	return time.Now().UTC()
}

// stampAfter returns now, nudged past prev so updatedAt strictly increases
// even when two writes share a clock tick.
func (d Deps) stampAfter(prev time.Time) time.Time {
	now := d.now()
	if !now.After(prev) {
		return prev.Add(time.Millisecond)
	}
	return now
}

func (d Deps) publish(collection string, op changefeed.Op, userID, id string, doc any) {
	if d.Feed == nil {
		return
	}
	d.Feed.Publish(changefeed.Change{Collection: collection, Op: op, UserID: userID, ID: id, Doc: doc, At: d.now()})
}
