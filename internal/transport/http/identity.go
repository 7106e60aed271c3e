package httptransport

import (
	"context"
	"net/http"
	"strings"

	"byte-battle/internal/battle"
	"byte-battle/internal/reward"
)

const (
	headerActorID   = "X-Actor-ID"
	headerActorName = "X-Actor-Name"
	queryActorID    = "actor_id"
	queryActorName  = "actor_name"
	maxActorIDLen   = 128
	maxActorNameLen = 64
)

type actorContextKey struct{}

func ActorFromContext(ctx context.Context) (battle.Identity, bool) {
	a, ok := ctx.Value(actorContextKey{}).(battle.Identity)
	return a, ok
}

// IdentityMiddleware trusts the actor headers set by the upstream proxy.
// When allowQuery is set the same values may come as actor_id and actor_name
// query parameters, which browsers need for websocket and EventSource.
func IdentityMiddleware(allowQuery bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimSpace(r.Header.Get(headerActorID))
			name := strings.TrimSpace(r.Header.Get(headerActorName))
			if id == "" && allowQuery {
				id = strings.TrimSpace(r.URL.Query().Get(queryActorID))
				name = strings.TrimSpace(r.URL.Query().Get(queryActorName))
			}
			if id == "" || len(id) > maxActorIDLen {
				WriteHTTPError(w, http.StatusUnauthorized, "missing_identity")
				return
			}
			if name == "" {
				name = id
			}
			if len(name) > maxActorNameLen {
				name = name[:maxActorNameLen]
			}
			actor := battle.Identity{ID: id, Name: name}
			ctx := context.WithValue(r.Context(), actorContextKey{}, actor)
			ctx = reward.WithDisplayName(ctx, name)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
