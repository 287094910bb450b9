package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/streakedin/streakedin/internal/api/respond"
	"github.com/streakedin/streakedin/internal/auth"
	"github.com/streakedin/streakedin/internal/changefeed"
	"github.com/streakedin/streakedin/internal/model"
	"github.com/streakedin/streakedin/internal/services"
)

// Frame is one websocket message. Snapshot frames carry Items, change
// frames carry Change and stats frames carry Stats.
type Frame struct {
	Type       string             `json:"type"`
	Collection string             `json:"collection"`
	Items      any                `json:"items,omitempty"`
	Change     *changefeed.Change `json:"change,omitempty"`
	Stats      *model.UserStats   `json:"stats,omitempty"`
}

const (
	FrameSnapshot = "snapshot"
	FrameChange   = "change"
	FrameStats    = "stats"

	// StreamStats is the pseudo-collection for debounced stats.
	StreamStats = "stats"

	frameWriteTimeout = 10 * time.Second
)

// StreamHandler pushes live collection updates over websockets.
type StreamHandler struct {
	authn
	goals     *services.GoalService
	tasks     *services.TaskService
	reminders *services.ReminderService
	chat      *services.ChatService
	analytics *services.AnalyticsService
	stats     *services.StatsService
	origins   []string
	log       zerolog.Logger
}

// StreamServices are the services a StreamHandler subscribes to.
type StreamServices struct {
	Goals     *services.GoalService
	Tasks     *services.TaskService
	Reminders *services.ReminderService
	Chat      *services.ChatService
	Analytics *services.AnalyticsService
	Stats     *services.StatsService
}

func NewStreamHandler(svc StreamServices, authorizer auth.Authorizer, origins []string, log zerolog.Logger) *StreamHandler {
	return &StreamHandler{
		authn:     authn{authorizer},
		goals:     svc.Goals,
		tasks:     svc.Tasks,
		reminders: svc.Reminders,
		chat:      svc.Chat,
		analytics: svc.Analytics,
		stats:     svc.Stats,
		origins:   originPatterns(origins),
		log:       log,
	}
}

// Stream GET /api/ws/{collection}
func (h *StreamHandler) Stream(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	collection := mux.Vars(r)["collection"]
	start, ok := h.starter(collection)
	if !ok {
		respond.WriteNotFound(w, "unknown collection "+collection)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: h.origins})
	if err != nil {
		h.log.Warn().Err(err).Str("user_id", actor.UserID).Msg("websocket accept failed")
		return
	}
	defer func() { _ = conn.CloseNow() }()

	// clients never send; CloseRead cancels ctx when the peer goes away
	ctx, cancel := context.WithCancel(conn.CloseRead(r.Context()))
	defer cancel()

	frames := make(chan Frame, 32)
	push := func(f Frame) {
		select {
		case frames <- f:
		case <-ctx.Done():
		}
	}

	stop, err := start(ctx, actor.UserID, push)
	if err != nil {
		h.log.Error().Err(err).Str("collection", collection).Msg("subscribe failed")
		_ = conn.Close(websocket.StatusInternalError, "subscribe failed")
		return
	}
	h.log.Debug().Str("user_id", actor.UserID).Str("collection", collection).Msg("stream opened")

	for {
		select {
		case <-ctx.Done():
			stop()
			_ = conn.Close(websocket.StatusNormalClosure, "")
			return
		case f := <-frames:
			wctx, wcancel := context.WithTimeout(ctx, frameWriteTimeout)
			err := wsjson.Write(wctx, conn, f)
			wcancel()
			if err != nil {
				h.log.Debug().Err(err).Str("collection", collection).Msg("stream write failed")
				cancel()
				stop()
				return
			}
		}
	}
}

type startFunc func(ctx context.Context, userID string, push func(Frame)) (func(), error)

func (h *StreamHandler) starter(collection string) (startFunc, bool) {
	switch collection {
	case changefeed.Goals:
		return streamOf(collection, h.goals.Subscribe), true
	case changefeed.Tasks:
		return streamOf(collection, h.tasks.Subscribe), true
	case changefeed.Reminders:
		return streamOf(collection, h.reminders.Subscribe), true
	case changefeed.ChatSessions:
		return streamOf(collection, h.chat.SubscribeSessions), true
	case changefeed.Analytics:
		return streamOf(collection, h.analytics.Subscribe), true
	case StreamStats:
		return func(ctx context.Context, userID string, push func(Frame)) (func(), error) {
			return h.stats.Subscribe(ctx, userID, func(st *model.UserStats) {
				push(Frame{Type: FrameStats, Collection: StreamStats, Stats: st})
			})
		}, true
	}
	return nil, false
}

func streamOf[T any](collection string, sub func(context.Context, string, func(services.Update[T])) (func(), error)) startFunc {
	return func(ctx context.Context, userID string, push func(Frame)) (func(), error) {
		return sub(ctx, userID, func(u services.Update[T]) {
			if u.IsSnapshot() {
				items := u.Items
				if items == nil {
					items = []*T{}
				}
				push(Frame{Type: FrameSnapshot, Collection: collection, Items: items})
				return
			}
			push(Frame{Type: FrameChange, Collection: collection, Change: u.Change})
		})
	}
}

// originPatterns converts allowed origins into websocket host patterns.
func originPatterns(origins []string) []string {
	out := make([]string, 0, len(origins))
	for _, o := range origins {
		if o == "*" {
			return []string{"*"}
		}
		o = strings.TrimPrefix(strings.TrimPrefix(o, "https://"), "http://")
		out = append(out, o)
	}
	return out
}
