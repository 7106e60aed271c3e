package stream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestServeSSEReplaysAfterLastEventID(t *testing.T) {
	buf := NewBuffer(10)
	buf.Append("room_created", "AB12", nil)
	buf.Append("join_request", "AB12", nil)

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx)
	req.Header.Set("Last-Event-ID", "1")
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		ServeSSE(rec, req, buf)
		close(done)
	}()
	time.Sleep(50 * time.Millisecond)
	cancel()
	<-done

	body := rec.Body.String()
	if strings.Contains(body, "event: room_created") {
		t.Fatalf("event 1 should not be replayed: %s", body)
	}
	if !strings.Contains(body, "id: 2\nevent: join_request\n") {
		t.Fatalf("expected join_request replay, got %s", body)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("unexpected content type %q", ct)
	}
}
