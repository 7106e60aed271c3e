package stream

import (
	"testing"
	"time"
)

func TestHubPublishAndLookup(t *testing.T) {
	h := NewHub(16)
	handle, buf := h.Open("ada")
	if !h.Publish(handle, "chat_message", "AB12", map[string]string{"message": "hi"}) {
		t.Fatal("publish to open handle failed")
	}
	if h.Publish("conn_missing", "chat_message", "AB12", nil) {
		t.Fatal("publish to unknown handle should report false")
	}
	if got := buf.ReplayAfter(""); len(got) != 1 {
		t.Fatalf("expected 1 buffered event, got %d", len(got))
	}
	if _, ok := h.Lookup(handle, "bo"); ok {
		t.Fatal("lookup by another actor must fail")
	}
	if _, ok := h.Lookup(handle, "ada"); !ok {
		t.Fatal("lookup by owner failed")
	}
}

func TestHubReleaseRunsHook(t *testing.T) {
	h := NewHub(16)
	var released []string
	h.SetReleaseHook(func(handle, actorID string) { released = append(released, actorID) })
	handle, buf := h.Open("ada")
	h.Release(handle)
	h.Release(handle)
	if len(released) != 1 || released[0] != "ada" {
		t.Fatalf("expected single release for ada, got %v", released)
	}
	if _, ok := buf.Append("x", "", nil); ok {
		t.Fatal("buffer should be closed after release")
	}
	if h.Len() != 0 {
		t.Fatalf("expected no connections, got %d", h.Len())
	}
}

func TestHubReapIdleSkipsWatchedConnections(t *testing.T) {
	h := NewHub(16)
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	h.now = func() time.Time { return start }
	idle, _ := h.Open("ada")
	_, watchedBuf := h.Open("bo")
	ch := watchedBuf.Subscribe()
	defer watchedBuf.Unsubscribe(ch)

	if n := h.reapIdle(start.Add(30*time.Second), time.Minute); n != 0 {
		t.Fatalf("nothing should be reaped yet, got %d", n)
	}
	if n := h.reapIdle(start.Add(2*time.Minute), time.Minute); n != 1 {
		t.Fatalf("expected one reaped connection, got %d", n)
	}
	if _, ok := h.Lookup(idle, "ada"); ok {
		t.Fatal("idle connection should be gone")
	}
}
