package httptransport

import (
	"encoding/json"
	"net/http"

	"byte-battle/internal/app/rewards"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type RewardHandlers struct {
	svc *rewards.Service
}

func NewRewardHandlers(svc *rewards.Service) *RewardHandlers {
	return &RewardHandlers{svc: svc}
}

func (h *RewardHandlers) RecordEvent() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, _ := ActorFromContext(r.Context())
		var body rewards.EventRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		metricRewardEventsTotal.Add(1)
		res, err := h.svc.RecordEvent(r.Context(), actor.ID, body)
		if err != nil {
			metricRewardEventErrors.Add(1)
			writeErr(w, r, mapRewardErr, err)
			return
		}
		_ = json.NewEncoder(w).Encode(res)
	}
}

func (h *RewardHandlers) Me() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, _ := ActorFromContext(r.Context())
		resp, err := h.svc.Me(r.Context(), actor.ID)
		if err != nil {
			writeErr(w, r, mapRewardErr, err)
			return
		}
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func (h *RewardHandlers) Modifiers() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, _ := ActorFromContext(r.Context())
		resp, err := h.svc.Catalog(r.Context(), actor.ID)
		if err != nil {
			writeErr(w, r, mapRewardErr, err)
			return
		}
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func (h *RewardHandlers) Purchase() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, _ := ActorFromContext(r.Context())
		itemID := chi.URLParam(r, "item_id")
		act, err := h.svc.Purchase(r.Context(), actor.ID, itemID)
		if err != nil {
			writeErr(w, r, mapRewardErr, err)
			return
		}
		metricPurchasesTotal.Add(1)
		log.Info().Str("actor_id", actor.ID).Str("item_id", itemID).Int64("charged", act.Charged).Msg("modifier_purchased")
		_ = json.NewEncoder(w).Encode(act)
	}
}

func (h *RewardHandlers) Leaderboard() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, offset := ParsePagination(r, 50, 100)
		resp, err := h.svc.Leaderboard(r.Context(), limit, offset)
		if err != nil {
			writeErr(w, r, mapRewardErr, err)
			return
		}
		_ = json.NewEncoder(w).Encode(resp)
	}
}
