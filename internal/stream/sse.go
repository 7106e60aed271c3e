package stream

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

var ssePingInterval = 15 * time.Second

// SetSSEHeaders applies headers that keep event streams stable across proxies.
func SetSSEHeaders(w http.ResponseWriter) {
	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache, no-transform")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	h.Set("X-Content-Type-Options", "nosniff")
}

func WriteSSE(w http.ResponseWriter, ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if ev.EventID != "" {
		if _, err := fmt.Fprintf(w, "id: %s\n", ev.EventID); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "event: %s\n", ev.Type); err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "data: %s\n\n", data)
	return err
}

// ServeSSE replays events after Last-Event-ID and then streams live events
// with periodic pings until the client goes away or the buffer closes.
func ServeSSE(w http.ResponseWriter, r *http.Request, buf *Buffer) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, `{"error":"stream_not_supported"}`, http.StatusInternalServerError)
		return
	}
	SetSSEHeaders(w)
	metricSSEActive.Add(1)
	defer metricSSEActive.Add(-1)

	// Subscribe before replaying so nothing published in between is lost.
	ch := buf.Subscribe()
	defer buf.Unsubscribe(ch)

	lastID := r.Header.Get("Last-Event-ID")
	if lastID == "" {
		lastID = r.URL.Query().Get("last_event_id")
	}
	var sent int64
	for _, ev := range buf.ReplayAfter(lastID) {
		if err := WriteSSE(w, ev); err != nil {
			return
		}
		sent = eventSeq(ev)
	}
	flusher.Flush()

	ticker := time.NewTicker(ssePingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-r.Context().Done():
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			if eventSeq(ev) <= sent {
				continue
			}
			if err := WriteSSE(w, ev); err != nil {
				return
			}
			flusher.Flush()
		case <-ticker.C:
			ping := Event{Type: "ping", ServerTS: time.Now().UnixMilli()}
			if err := WriteSSE(w, ping); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func eventSeq(ev Event) int64 {
	n, _ := strconv.ParseInt(ev.EventID, 10, 64)
	return n
}
