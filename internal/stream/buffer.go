package stream

import (
	"strconv"
	"sync"
	"time"
)

type Event struct {
	EventID  string `json:"event_id"`
	Type     string `json:"type"`
	RoomCode string `json:"room_code,omitempty"`
	ServerTS int64  `json:"server_ts"`
	Data     any    `json:"data,omitempty"`
}

// Buffer keeps the most recent events of one connection for replay and fans
// new ones out to live watchers. Slow watchers miss events rather than block
// the publisher; they recover through ReplayAfter.
type Buffer struct {
	mu       sync.Mutex
	nextID   int64
	max      int
	events   []Event
	watchers map[chan Event]struct{}
	closed   bool
}

func NewBuffer(max int) *Buffer {
	if max <= 0 {
		max = 256
	}
	return &Buffer{
		max:      max,
		watchers: map[chan Event]struct{}{},
	}
}

func (b *Buffer) Append(eventType, roomCode string, data any) (Event, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return Event{}, false
	}
	b.nextID++
	ev := Event{
		EventID:  strconv.FormatInt(b.nextID, 10),
		Type:     eventType,
		RoomCode: roomCode,
		ServerTS: time.Now().UnixMilli(),
		Data:     data,
	}
	b.events = append(b.events, ev)
	if len(b.events) > b.max {
		b.events = b.events[len(b.events)-b.max:]
	}
	metricEventsTotal.Add(1)
	for ch := range b.watchers {
		select {
		case ch <- ev:
		default:
			metricEventsDroppedTotal.Add(1)
		}
	}
	return ev, true
}

// ReplayAfter returns buffered events newer than lastEventID, or all of them
// when the id is empty or unparsable.
func (b *Buffer) ReplayAfter(lastEventID string) []Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	last, err := strconv.ParseInt(lastEventID, 10, 64)
	if lastEventID == "" || err != nil {
		last = 0
	}
	out := make([]Event, 0, len(b.events))
	for _, ev := range b.events {
		id, _ := strconv.ParseInt(ev.EventID, 10, 64)
		if id > last {
			out = append(out, ev)
		}
	}
	return out
}

func (b *Buffer) Subscribe() chan Event {
	ch := make(chan Event, 64)
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return ch
	}
	b.watchers[ch] = struct{}{}
	return ch
}

func (b *Buffer) Unsubscribe(ch chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.watchers[ch]; ok {
		delete(b.watchers, ch)
		close(ch)
	}
}

func (b *Buffer) watching() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.watchers)
}

func (b *Buffer) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for ch := range b.watchers {
		close(ch)
		delete(b.watchers, ch)
	}
}
