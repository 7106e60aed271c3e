package httptransport

import (
	"context"
	"errors"
	"net/http"

	"byte-battle/internal/app/rewards"
	"byte-battle/internal/battle"
	"byte-battle/internal/reward"
	"byte-battle/internal/store"
	"byte-battle/internal/ws"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

type errMapping struct {
	err    error
	status int
}

var battleErrs = []errMapping{
	{battle.ErrInvalidRoom, http.StatusNotFound},
	{battle.ErrNotAuthorized, http.StatusForbidden},
	{battle.ErrCapacityExceeded, http.StatusConflict},
	{battle.ErrWrongState, http.StatusConflict},
	{battle.ErrNoPendingInvite, http.StatusConflict},
	{battle.ErrInvalidInput, http.StatusBadRequest},
	{battle.ErrNoFreeCode, http.StatusServiceUnavailable},
	{ws.ErrInvalidMessage, http.StatusBadRequest},
	{ws.ErrInvalidRequestID, http.StatusBadRequest},
	{ws.ErrUnknownCommand, http.StatusBadRequest},
}

var rewardErrs = []errMapping{
	{rewards.ErrInvalidRequest, http.StatusBadRequest},
	{reward.ErrInvalidAmount, http.StatusBadRequest},
	{reward.ErrInvalidActor, http.StatusBadRequest},
	{reward.ErrUnknownSource, http.StatusBadRequest},
	{reward.ErrUnknownItem, http.StatusNotFound},
	{reward.ErrInsufficientPoints, http.StatusPaymentRequired},
	{store.ErrNotFound, http.StatusNotFound},
}

func mapErr(table []errMapping, err error) (int, string) {
	for _, m := range table {
		if errors.Is(err, m.err) {
			return m.status, m.err.Error()
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout, "timeout"
	}
	return http.StatusInternalServerError, "internal_error"
}

func mapBattleErr(err error) (int, string) { return mapErr(battleErrs, err) }

func mapRewardErr(err error) (int, string) { return mapErr(rewardErrs, err) }

func writeErr(w http.ResponseWriter, r *http.Request, mapper func(error) (int, string), err error) {
	status, code := mapper(err)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("request_id", chimw.GetReqID(r.Context())).Str("path", r.URL.Path).Msg("request_failed")
	}
	WriteHTTPError(w, status, code)
}
