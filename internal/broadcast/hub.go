package broadcast

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"cryptoradar/internal/analytics"
	"cryptoradar/internal/config"
	"cryptoradar/internal/repository"
	"cryptoradar/internal/source"
)

const writeTimeout = 10 * time.Second

// Envelope is the typed frame every websocket client receives.
type Envelope struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

type subscriber struct {
	send chan Envelope
}

// Hub fans out typed envelopes to connected websocket clients. Delivery is
// best effort: a slow subscriber drops frames rather than blocking the rest,
// and nothing is replayed.
type Hub struct {
	Repo   repository.Repository
	Board  *source.StatusBoard
	Logger *zap.Logger
	Config config.BroadcastConfig

	mu      sync.RWMutex
	subs    map[*subscriber]struct{}
	dropped uint64
}

func NewHub(repo repository.Repository, board *source.StatusBoard, logger *zap.Logger, cfg config.BroadcastConfig) *Hub {
	return &Hub{
		Repo:   repo,
		Board:  board,
		Logger: logger,
		Config: cfg,
		subs:   map[*subscriber]struct{}{},
	}
}

// Broadcast queues one envelope to every connected subscriber.
func (h *Hub) Broadcast(event string, data any) {
	if h == nil {
		return
	}
	env := Envelope{Type: event, Data: data}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.subs {
		select {
		case sub.send <- env:
		default:
			atomic.AddUint64(&h.dropped, 1)
		}
	}
}

// PublishStatusChange pushes one source's health delta. Wired as the status
// board's change listener.
func (h *Hub) PublishStatusChange(name string, st source.Status) {
	h.Broadcast("data_source_update", map[string]any{"source": name, "status": st})
}

// Run drives the periodic live update until the context ends.
func (h *Hub) Run(ctx context.Context) error {
	interval := h.Config.LiveInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			h.publishLive(ctx)
		}
	}
}

// publishLive sends the full active set plus dashboard stats. Skipped when
// nobody is listening so an idle deployment does not hit the database.
func (h *Hub) publishLive(ctx context.Context) {
	h.mu.RLock()
	listeners := len(h.subs)
	h.mu.RUnlock()
	if listeners == 0 {
		return
	}

	items, err := h.Repo.ListActiveOpportunities(ctx)
	if err != nil {
		if h.Logger != nil {
			h.Logger.Error("live update read failed", zap.Error(err))
		}
		return
	}
	h.Broadcast("live_update", map[string]any{
		"opportunities": items,
		"stats":         analytics.BuildOverview(items, time.Now()),
	})
}

// Serve upgrades one HTTP request and streams envelopes until the client
// goes away. The channel is push-only; inbound frames are discarded.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request) error {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		return err
	}
	defer conn.Close(websocket.StatusInternalError, "stream closed")

	ctx := conn.CloseRead(r.Context())

	sub := h.register()
	defer h.unregister(sub)

	// New clients paint source health before the first periodic frame.
	if h.Board != nil {
		if err := writeEnvelope(ctx, conn, Envelope{Type: "data_sources_status", Data: h.Board.Snapshot()}); err != nil {
			return err
		}
	}

	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "")
			return ctx.Err()
		case env := <-sub.send:
			if err := writeEnvelope(ctx, conn, env); err != nil {
				return err
			}
		}
	}
}

func writeEnvelope(ctx context.Context, conn *websocket.Conn, env Envelope) error {
	writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return wsjson.Write(writeCtx, conn, env)
}

func (h *Hub) register() *subscriber {
	buf := h.Config.SendBuffer
	if buf <= 0 {
		buf = 64
	}
	sub := &subscriber{send: make(chan Envelope, buf)}
	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()
	return sub
}

func (h *Hub) unregister(sub *subscriber) {
	h.mu.Lock()
	delete(h.subs, sub)
	h.mu.Unlock()
}

// SubscriberCount reports how many clients are currently connected.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
