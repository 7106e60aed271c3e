package httptransport

import (
	"bytes"
	"crypto/subtle"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"byte-battle/internal/logging"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog/v3"
)

const headerAdminKey = "X-Admin-Key"

// APILogMiddleware logs one JSON line per request through the shared log writer.
func APILogMiddleware() func(http.Handler) http.Handler {
	return httplog.RequestLogger(
		slog.New(slog.NewJSONHandler(logging.Writer(), &slog.HandlerOptions{})),
		&httplog.Options{
			Level:              slog.LevelInfo,
			Schema:             httplog.Schema{ResponseStatus: "status", ResponseDuration: "duration_ms"},
			LogRequestBody:     func(*http.Request) bool { return false },
			LogResponseBody:    func(*http.Request) bool { return false },
			LogRequestHeaders:  []string{},
			LogResponseHeaders: []string{},
			LogExtraAttrs: func(req *http.Request, _ string, _ int) []slog.Attr {
				return requestAttrs(req)
			},
		},
	)
}

func requestAttrs(req *http.Request) []slog.Attr {
	route := req.URL.Path
	rc := chi.RouteContext(req.Context())
	if rc != nil && rc.RoutePattern() != "" {
		route = rc.RoutePattern()
	}
	attrs := []slog.Attr{
		slog.String("request_id", chimw.GetReqID(req.Context())),
		slog.String("method", req.Method),
		slog.String("route", route),
		slog.String("actor_id", actorHeader(req)),
	}
	if rc != nil {
		for _, key := range []string{"conn_id", "code", "item_id"} {
			if v := rc.URLParam(key); v != "" {
				attrs = append(attrs, slog.String(key, v))
			}
		}
	}
	return attrs
}

func actorHeader(req *http.Request) string {
	if v := req.Header.Get(headerActorID); v != "" {
		return v
	}
	return req.URL.Query().Get(queryActorID)
}

// BodyCaptureMiddleware attaches up to limit bytes of the request and
// response bodies to the request log line. Streams pass through untouched.
func BodyCaptureMiddleware(limit int) func(http.Handler) http.Handler {
	if limit <= 0 {
		limit = 4096
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isStreamRequest(r) {
				next.ServeHTTP(w, r)
				return
			}
			reqBuf := &cappedBuffer{limit: limit}
			r.Body = readCloser{Reader: io.TeeReader(r.Body, reqBuf), Closer: r.Body}
			cw := &captureWriter{ResponseWriter: w, buf: cappedBuffer{limit: limit}}
			next.ServeHTTP(cw, r)

			httplog.SetAttrs(r.Context(),
				slog.Any("request_body", parseMaybeJSON(reqBuf.Bytes())),
				slog.Bool("request_body_truncated", reqBuf.truncated),
				slog.Any("response_body", parseMaybeJSON(cw.buf.Bytes())),
				slog.Bool("response_body_truncated", cw.buf.truncated),
			)
		})
	}
}

type readCloser struct {
	io.Reader
	io.Closer
}

// cappedBuffer keeps the first limit bytes written and drops the rest.
type cappedBuffer struct {
	bytes.Buffer
	limit     int
	truncated bool
}

func (c *cappedBuffer) Write(p []byte) (int, error) {
	room := c.limit - c.Len()
	switch {
	case room <= 0:
		c.truncated = len(p) > 0 || c.truncated
	case len(p) > room:
		c.Buffer.Write(p[:room])
		c.truncated = true
	default:
		c.Buffer.Write(p)
	}
	return len(p), nil
}

type captureWriter struct {
	http.ResponseWriter
	buf cappedBuffer
}

func (c *captureWriter) Write(p []byte) (int, error) {
	_, _ = c.buf.Write(p)
	return c.ResponseWriter.Write(p)
}

func (c *captureWriter) Flush() {
	if f, ok := c.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func parseMaybeJSON(b []byte) any {
	if len(b) == 0 {
		return ""
	}
	var out any
	if err := json.Unmarshal(b, &out); err == nil {
		return out
	}
	return string(b)
}

// WriteHTTPError writes the JSON error body used by every handler.
func WriteHTTPError(w http.ResponseWriter, status int, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"error": code})
}

// AdminAuthMiddleware guards operator routes. An empty key disables the check.
func AdminAuthMiddleware(adminKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if adminKey != "" && !CheckAdminAuth(r, adminKey) {
				metricAdminAuthFailures.Add(1)
				WriteHTTPError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// CheckAdminAuth accepts the key as X-Admin-Key or as a bearer token.
func CheckAdminAuth(r *http.Request, adminKey string) bool {
	got := r.Header.Get(headerAdminKey)
	if got == "" {
		bearer, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok {
			return false
		}
		got = bearer
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(adminKey)) == 1
}

// ParsePagination reads limit/offset, defaulting limit to def and capping it at max.
func ParsePagination(r *http.Request, def, max int) (int, int) {
	q := r.URL.Query()
	limit, err := strconv.Atoi(q.Get("limit"))
	if err != nil || limit < 1 {
		limit = def
	}
	if limit > max {
		limit = max
	}
	offset, err := strconv.Atoi(q.Get("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return limit, offset
}

func isStreamRequest(r *http.Request) bool {
	if strings.Contains(r.Header.Get("Accept"), "text/event-stream") {
		return true
	}
	if strings.EqualFold(r.Header.Get("Upgrade"), "websocket") {
		return true
	}
	path := r.URL.Path
	return strings.HasPrefix(path, "/api/battle/connections/") && strings.HasSuffix(path, "/events")
}
