package httptransport

import (
	"context"
	"expvar"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"byte-battle/internal/app/rewards"
	"byte-battle/internal/config"
	"byte-battle/internal/stream"
	"byte-battle/internal/ws"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

// Deps are the services the HTTP surface is built on.
type Deps struct {
	Config     config.ServerConfig
	Rewards    *rewards.Service
	Rooms      RoomViewer
	Hub        *stream.Hub
	Dispatcher *ws.Dispatcher
	Socket     *ws.Server
	Ping       func(ctx context.Context) error
	// MCP is the operator tool endpoint; nil leaves /mcp unmounted.
	MCP http.Handler
}

func NewRouter(d Deps) *chi.Mux {
	rewardHandlers := NewRewardHandlers(d.Rewards)
	adminHandlers := NewAdminHandlers(d.Rewards, d.Ping)
	battleHandlers := NewBattleHandlers(d.Hub, d.Dispatcher, d.Rooms, d.Socket)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)

	r.With(APILogMiddleware()).Get("/healthz", adminHandlers.Health())
	r.With(APILogMiddleware(), IdentityMiddleware(true)).Get("/ws", battleHandlers.WebSocket())

	if d.MCP != nil {
		r.Group(func(r chi.Router) {
			r.Use(APILogMiddleware())
			r.Use(AdminAuthMiddleware(d.Config.AdminAPIKey))
			r.MethodFunc(http.MethodOptions, "/mcp", func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusNoContent)
			})
			r.Method(http.MethodPost, "/mcp", d.MCP)
			r.Method(http.MethodGet, "/mcp", d.MCP)
			r.Method(http.MethodDelete, "/mcp", d.MCP)
		})
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(APILogMiddleware())
		r.Get("/public/leaderboard", rewardHandlers.Leaderboard())

		r.Group(func(r chi.Router) {
			r.Use(IdentityMiddleware(false))
			r.Post("/rewards/events", rewardHandlers.RecordEvent())
			r.Get("/rewards/me", rewardHandlers.Me())
			r.Get("/rewards/modifiers", rewardHandlers.Modifiers())
			r.Post("/rewards/modifiers/{item_id}/purchase", rewardHandlers.Purchase())

			r.Post("/battle/connections", battleHandlers.OpenConnection())
			r.Post("/battle/connections/{conn_id}/commands", battleHandlers.Command())
			r.Delete("/battle/connections/{conn_id}", battleHandlers.ReleaseConnection())
			r.Get("/battle/rooms/{code}", battleHandlers.Room())
		})
		// EventSource cannot set headers.
		r.With(IdentityMiddleware(true)).Get("/battle/connections/{conn_id}/events", battleHandlers.Events())

		r.Route("/admin", func(r chi.Router) {
			r.Use(AdminAuthMiddleware(d.Config.AdminAPIKey))
			r.Use(BodyCaptureMiddleware(4096))
			r.Post("/rewards/award", adminHandlers.Award())
			r.Post("/rewards/modifiers", adminHandlers.Grant())
			r.Get("/ledger", adminHandlers.Ledger())
			r.Get("/debug/vars", expvar.Handler().ServeHTTP)
		})
	})
	return r
}

func LogRoutes(r chi.Router) {
	type routeDef struct {
		Method string
		Path   string
	}
	routes := make([]routeDef, 0, 64)
	err := chi.Walk(r, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		routes = append(routes, routeDef{Method: method, Path: route})
		return nil
	})
	if err != nil {
		log.Error().Err(err).Msg("walk routes failed")
		return
	}
	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Path == routes[j].Path {
			return routes[i].Method < routes[j].Method
		}
		return routes[i].Path < routes[j].Path
	})
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Registered routes (%d):\n", len(routes)))
	for _, rt := range routes {
		b.WriteString(fmt.Sprintf("  %-6s %s\n", rt.Method, rt.Path))
	}
	fmt.Print(b.String())
}
