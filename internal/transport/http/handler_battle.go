package httptransport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"byte-battle/internal/battle"
	"byte-battle/internal/stream"
	"byte-battle/internal/ws"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

// RoomViewer returns a member's view of a room.
type RoomViewer interface {
	View(ctx context.Context, code, actorID string) (battle.View, error)
}

type BattleHandlers struct {
	hub        *stream.Hub
	dispatcher *ws.Dispatcher
	rooms      RoomViewer
	socket     *ws.Server
}

func NewBattleHandlers(hub *stream.Hub, dispatcher *ws.Dispatcher, rooms RoomViewer, socket *ws.Server) *BattleHandlers {
	return &BattleHandlers{hub: hub, dispatcher: dispatcher, rooms: rooms, socket: socket}
}

func (h *BattleHandlers) WebSocket() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, _ := ActorFromContext(r.Context())
		h.socket.Serve(w, r, actor)
	}
}

func (h *BattleHandlers) OpenConnection() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, _ := ActorFromContext(r.Context())
		handle, _ := h.hub.Open(actor.ID)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{"conn_id": handle, "protocol_version": ws.ProtocolVersion})
	}
}

func (h *BattleHandlers) ReleaseConnection() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, _ := ActorFromContext(r.Context())
		handle := chi.URLParam(r, "conn_id")
		if _, ok := h.hub.Lookup(handle, actor.ID); !ok {
			WriteHTTPError(w, http.StatusNotFound, "connection_not_found")
			return
		}
		h.hub.Release(handle)
		w.WriteHeader(http.StatusNoContent)
	}
}

func (h *BattleHandlers) Events() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, _ := ActorFromContext(r.Context())
		handle := chi.URLParam(r, "conn_id")
		buf, ok := h.hub.Lookup(handle, actor.ID)
		if !ok {
			WriteHTTPError(w, http.StatusNotFound, "connection_not_found")
			return
		}
		metricBattleSSEConnectionsTotal.Add(1)
		metricBattleSSEConnectionsActive.Add(1)
		defer metricBattleSSEConnectionsActive.Add(-1)
		log.Info().
			Str("request_id", chimw.GetReqID(r.Context())).
			Str("conn_id", handle).
			Str("actor_id", actor.ID).
			Msg("sse_stream_opened")
		stream.ServeSSE(w, r, buf)
		log.Info().Str("conn_id", handle).Msg("sse_stream_closed")
	}
}

func (h *BattleHandlers) Command() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, _ := ActorFromContext(r.Context())
		handle := chi.URLParam(r, "conn_id")
		if _, ok := h.hub.Lookup(handle, actor.ID); !ok {
			WriteHTTPError(w, http.StatusNotFound, "connection_not_found")
			return
		}
		var msg ws.ClientMessage
		if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		metricBattleCommandTotal.Add(1)
		ack := h.dispatcher.Dispatch(r.Context(), actor, handle, msg)
		if !ack.Ok {
			status, _ := mapBattleErr(errorFromCode(ack.Error))
			w.WriteHeader(status)
		}
		_ = json.NewEncoder(w).Encode(ack)
	}
}

func (h *BattleHandlers) Room() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, _ := ActorFromContext(r.Context())
		v, err := h.rooms.View(r.Context(), chi.URLParam(r, "code"), actor.ID)
		if err != nil {
			writeErr(w, r, mapBattleErr, err)
			return
		}
		_ = json.NewEncoder(w).Encode(v)
	}
}

// errorFromCode recovers the sentinel behind an ack error code.
func errorFromCode(code string) error {
	for _, m := range battleErrs {
		if m.err.Error() == code {
			return m.err
		}
	}
	return errUnmapped
}

var errUnmapped = errors.New("internal_error")
