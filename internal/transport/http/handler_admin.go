package httptransport

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"byte-battle/internal/app/rewards"
	"byte-battle/internal/store"
)

type AdminHandlers struct {
	svc  *rewards.Service
	ping func(ctx context.Context) error
}

func NewAdminHandlers(svc *rewards.Service, ping func(ctx context.Context) error) *AdminHandlers {
	return &AdminHandlers{svc: svc, ping: ping}
}

func (h *AdminHandlers) Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.ping != nil {
			if err := h.ping(r.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				_ = json.NewEncoder(w).Encode(map[string]any{"ok": false, "db": "down"})
				return
			}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "db": "up"})
	}
}

func (h *AdminHandlers) Award() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body rewards.AwardRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		res, err := h.svc.Award(r.Context(), body)
		if err != nil {
			writeErr(w, r, mapRewardErr, err)
			return
		}
		_ = json.NewEncoder(w).Encode(res)
	}
}

func (h *AdminHandlers) Grant() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body rewards.GrantRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		act, err := h.svc.Grant(r.Context(), body)
		if err != nil {
			writeErr(w, r, mapRewardErr, err)
			return
		}
		_ = json.NewEncoder(w).Encode(act)
	}
}

func (h *AdminHandlers) Ledger() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, offset := ParsePagination(r, 50, 200)
		q := r.URL.Query()
		f := store.LedgerFilter{ActorID: q.Get("actor_id"), Source: q.Get("source")}
		if v := q.Get("from"); v != "" {
			if t, err := time.Parse(time.RFC3339, v); err == nil {
				f.From = &t
			}
		}
		if v := q.Get("to"); v != "" {
			if t, err := time.Parse(time.RFC3339, v); err == nil {
				f.To = &t
			}
		}
		resp, err := h.svc.Ledger(r.Context(), f, limit, offset)
		if err != nil {
			writeErr(w, r, mapRewardErr, err)
			return
		}
		_ = json.NewEncoder(w).Encode(resp)
	}
}
