package httptransport

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestParsePagination(t *testing.T) {
	tests := []struct {
		query      string
		wantLimit  int
		wantOffset int
	}{
		{query: "", wantLimit: 50, wantOffset: 0},
		{query: "limit=10&offset=5", wantLimit: 10, wantOffset: 5},
		{query: "limit=0&offset=-1", wantLimit: 50, wantOffset: 0},
		{query: "limit=999", wantLimit: 100, wantOffset: 0},
		{query: "limit=abc&offset=x", wantLimit: 50, wantOffset: 0},
	}
	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, "/x?"+tt.query, nil)
		limit, offset := ParsePagination(r, 50, 100)
		if limit != tt.wantLimit || offset != tt.wantOffset {
			t.Fatalf("%q => %d/%d, want %d/%d", tt.query, limit, offset, tt.wantLimit, tt.wantOffset)
		}
	}
}

func TestCheckAdminAuth(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if CheckAdminAuth(r, "k") {
		t.Fatal("no credentials accepted")
	}
	r.Header.Set("Authorization", "Bearer k")
	if !CheckAdminAuth(r, "k") {
		t.Fatal("bearer token rejected")
	}
	r.Header.Set(headerAdminKey, "wrong")
	if CheckAdminAuth(r, "k") {
		t.Fatal("wrong header key accepted")
	}
}

func TestBodyCaptureKeepsFullBody(t *testing.T) {
	body := strings.Repeat("a", 64)
	var got string
	h := BodyCaptureMiddleware(8)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		got = string(b)
		_, _ = w.Write(b)
	}))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/admin/ledger", strings.NewReader(body)))
	if got != body || w.Body.String() != body {
		t.Fatalf("body altered: handler=%d bytes response=%d bytes", len(got), w.Body.Len())
	}
}

func TestCappedBuffer(t *testing.T) {
	c := &cappedBuffer{limit: 4}
	_, _ = c.Write([]byte("ab"))
	_, _ = c.Write([]byte("cdef"))
	if c.String() != "abcd" || !c.truncated {
		t.Fatalf("buffer = %q truncated=%v", c.String(), c.truncated)
	}
}
