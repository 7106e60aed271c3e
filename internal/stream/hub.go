package stream

import (
	"context"
	"sync"
	"time"

	"byte-battle/internal/store"

	"github.com/rs/zerolog/log"
)

type connection struct {
	buf      *Buffer
	actorID  string
	lastSeen time.Time
}

// Hub owns the event buffers of every open client connection. Connection
// handles are what rooms store per member, so a reconnecting client keeps
// receiving room events on whichever handle it last presented.
type Hub struct {
	mu        sync.Mutex
	conns     map[string]*connection
	bufferMax int
	now       func() time.Time
	onRelease func(handle, actorID string)
}

func NewHub(bufferMax int) *Hub {
	return &Hub{
		conns:     map[string]*connection{},
		bufferMax: bufferMax,
		now:       time.Now,
	}
}

// SetReleaseHook registers a callback run after a connection is released or reaped.
func (h *Hub) SetReleaseHook(fn func(handle, actorID string)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onRelease = fn
}

func (h *Hub) Open(actorID string) (string, *Buffer) {
	handle := store.NewPrefixedID("conn")
	buf := NewBuffer(h.bufferMax)
	h.mu.Lock()
	h.conns[handle] = &connection{buf: buf, actorID: actorID, lastSeen: h.now()}
	h.mu.Unlock()
	metricConnectionsOpened.Add(1)
	metricConnectionsActive.Add(1)
	log.Debug().Str("conn_id", handle).Str("actor_id", actorID).Msg("connection_opened")
	return handle, buf
}

// Lookup returns the buffer of a handle owned by actorID and marks it seen.
func (h *Hub) Lookup(handle, actorID string) (*Buffer, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c, ok := h.conns[handle]
	if !ok || c.actorID != actorID {
		return nil, false
	}
	c.lastSeen = h.now()
	return c.buf, true
}

// Publish appends an event to a connection. Unknown handles are ignored; the
// member may have disconnected and will pick the room back up on rejoin.
func (h *Hub) Publish(handle, eventType, roomCode string, data any) bool {
	h.mu.Lock()
	c, ok := h.conns[handle]
	h.mu.Unlock()
	if !ok {
		return false
	}
	_, ok = c.buf.Append(eventType, roomCode, data)
	return ok
}

func (h *Hub) Release(handle string) {
	h.mu.Lock()
	c, ok := h.conns[handle]
	if ok {
		delete(h.conns, handle)
	}
	hook := h.onRelease
	h.mu.Unlock()
	if !ok {
		return
	}
	c.buf.Close()
	metricConnectionsActive.Add(-1)
	if hook != nil {
		hook(handle, c.actorID)
	}
}

func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

// RunJanitor releases connections that have had no watcher and no activity
// for idleTTL. It blocks until ctx is done.
func (h *Hub) RunJanitor(ctx context.Context, idleTTL, interval time.Duration) error {
	if idleTTL <= 0 {
		<-ctx.Done()
		return nil
	}
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			h.reapIdle(h.now(), idleTTL)
		}
	}
}

func (h *Hub) reapIdle(now time.Time, idleTTL time.Duration) int {
	h.mu.Lock()
	var stale []string
	for handle, c := range h.conns {
		if c.buf.watching() > 0 {
			c.lastSeen = now
			continue
		}
		if now.Sub(c.lastSeen) >= idleTTL {
			stale = append(stale, handle)
		}
	}
	h.mu.Unlock()
	for _, handle := range stale {
		h.Release(handle)
		metricConnectionsReaped.Add(1)
	}
	if len(stale) > 0 {
		log.Info().Int("count", len(stale)).Msg("idle_connections_reaped")
	}
	return len(stale)
}
