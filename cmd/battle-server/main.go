package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"byte-battle/internal/app/rewards"
	"byte-battle/internal/battle"
	"byte-battle/internal/config"
	"byte-battle/internal/judge"
	"byte-battle/internal/leaderboard"
	"byte-battle/internal/logging"
	"byte-battle/internal/mcpserver"
	"byte-battle/internal/reward"
	"byte-battle/internal/store"
	"byte-battle/internal/stream"
	httptransport "byte-battle/internal/transport/http"
	"byte-battle/internal/ws"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 15 * time.Second

// backend is what both the Postgres and the in-memory store provide.
type backend interface {
	reward.Repository
	leaderboard.Source
	rewards.History
	Ping(ctx context.Context) error
	Close()
}

func main() {
	cfg, err := config.LoadApp()
	if err != nil {
		panic(err)
	}
	logCloser, err := logging.Init(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer logCloser.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Error().Err(err).Msg("server_exited")
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.AppConfig) error {
	st, err := openBackend(ctx, cfg.Server)
	if err != nil {
		return err
	}
	defer st.Close()

	loc, err := time.LoadLocation(cfg.Server.RewardTimezone)
	if err != nil {
		return err
	}
	ledger := reward.New(st, reward.WithLocation(loc))

	rdb := openRedis(cfg.Server)
	if rdb != nil {
		defer rdb.Close()
	}
	board := leaderboard.New(rdb, st)
	ledger.SetObserver(board)
	if err := board.Warm(ctx); err != nil {
		log.Warn().Err(err).Msg("leaderboard_warm_failed")
	}

	hub := stream.NewHub(0)
	registry := battle.NewRegistry(hub, judge.FromConfig(cfg.Judge), ledger, battle.Options{
		Duration: time.Duration(cfg.Battle.DurationSeconds) * time.Second,
	})
	dispatcher := ws.NewDispatcher(registry)

	svc := rewards.NewService(ledger, reward.NewResolver(st), board, st)
	router := httptransport.NewRouter(httptransport.Deps{
		Config:     cfg.Server,
		Rewards:    svc,
		Rooms:      registry,
		Hub:        hub,
		Dispatcher: dispatcher,
		Socket:     ws.NewServer(hub, dispatcher),
		Ping:       st.Ping,
		MCP:        mcpserver.New(svc, registry).Handler(),
	})
	httptransport.LogRoutes(router)

	server := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", cfg.Server.HTTPAddr).Msg("http_listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return registry.RunJanitor(gctx, cfg.Battle.IdleRoomTTL, cfg.Battle.JanitorInterval)
	})
	g.Go(func() error {
		return hub.RunJanitor(gctx, cfg.Battle.StreamIdleTTL, cfg.Battle.JanitorInterval)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Info().Msg("shutting_down")
		registry.CloseAll(shutdownCtx, "server_shutdown")
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func openBackend(ctx context.Context, cfg config.ServerConfig) (backend, error) {
	if cfg.PostgresDSN == "" {
		log.Warn().Msg("postgres_dsn_empty_using_memory_store")
		return store.NewMemory(), nil
	}
	st, err := store.New(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}
	if err := st.Ping(ctx); err != nil {
		st.Close()
		return nil, err
	}
	return st, nil
}

func openRedis(cfg config.ServerConfig) redis.UniversalClient {
	if cfg.RedisAddr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
}
