package services

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/streakedin/streakedin/internal/changefeed"
)

// Update is delivered to collection subscribers. The first update, and every
// update after a resync, carries the full owner-filtered result set in Items
// with Change nil. Every other update carries exactly one Change.
type Update[T any] struct {
	Items  []*T
	Change *changefeed.Change
}

// IsSnapshot reports whether u replaces the subscriber's view wholesale.
func (u Update[T]) IsSnapshot() bool { return u.Change == nil }

var errNoFeed = errors.New("services: changefeed not configured")

// subscribe delivers a snapshot then diffs for one collection until the
// returned function is called or ctx ends. The feed subscription is taken
// before the snapshot is read so no write is missed. When the feed drops a
// slow subscriber the view is rebuilt from a fresh snapshot.
//
// The returned function blocks until delivery has stopped and must not be
// called from inside fn.
func subscribe[T any](
	ctx context.Context,
	feed *changefeed.Feed,
	log zerolog.Logger,
	userID, collection string,
	list func(context.Context) ([]*T, error),
	fn func(Update[T]),
) (func(), error) {
	if feed == nil {
		return nil, errNoFeed
	}
	sub := feed.Subscribe(userID, collection)
	items, err := list(ctx)
	if err != nil {
		sub.Close()
		return nil, err
	}
	fn(Update[T]{Items: items})

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer func() { sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case c, ok := <-sub.C:
				if ok {
					fn(Update[T]{Change: &c})
					continue
				}
				if ctx.Err() != nil {
					return
				}
				sub = feed.Subscribe(userID, collection)
				items, err := list(ctx)
				if err != nil {
					log.Error().Stack().Err(err).
						Str("user_id", userID).
						Str("collection", collection).
						Msg("resync after dropped subscription failed")
					return
				}
				fn(Update[T]{Items: items})
			}
		}
	}()

	return sync.OnceFunc(func() {
		cancel()
		<-done
	}), nil
}
