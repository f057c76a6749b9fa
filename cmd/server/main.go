package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"

	"github.com/sprintduel/ladder-server/internal/api"
	"github.com/sprintduel/ladder-server/internal/config"
	"github.com/sprintduel/ladder-server/internal/events"
	"github.com/sprintduel/ladder-server/internal/localstore"
	"github.com/sprintduel/ladder-server/internal/repository/postgres"
	"github.com/sprintduel/ladder-server/internal/repository/redisboard"
	"github.com/sprintduel/ladder-server/internal/repository/stub"
	"github.com/sprintduel/ladder-server/internal/service"
	"github.com/sprintduel/ladder-server/internal/websocket"
)

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	// Local write-through store: always available, never blocks on the network
	local, err := localstore.Open(cfg.LocalDBPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open local store")
	}
	defer local.Close()

	// Remote authority backend, chosen once at construction
	db, err := postgres.NewConnection(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	repos := postgres.NewRepositories(db)
	if cfg.RemoteBackend == config.RemoteBackendNone {
		logger.Info().Msg("remote progression backend disabled, using local-only stub")
		repos.Remote = stub.NewRemoteStub()
	}

	// Archived leaderboards
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	repos.Leaderboard = redisboard.NewLeaderboardRepository(rdb)
	defer rdb.Close()

	// Notification registry
	bus := events.NewBus()
	defer bus.Close()

	// Services
	services := service.NewServices(repos, local, bus, logger, cfg)

	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	if err := services.Season.Load(rootCtx); err != nil {
		logger.Fatal().Err(err).Msg("failed to load season")
	}

	// Prestige availability watcher
	go services.Prestige.Run(rootCtx)

	// Season countdown / rollover ticker
	go func() {
		ticker := time.NewTicker(cfg.SeasonTickInterval)
		defer ticker.Stop()
		for {
			select {
			case <-rootCtx.Done():
				return
			case <-ticker.C:
				services.Season.Tick(rootCtx)
			}
		}
	}()

	// Notification push hub
	hub := websocket.NewHub(bus)
	go hub.Run()

	router := api.NewRouter(services, hub, repos, cfg)

	srv := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("port", cfg.Port).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	rootCancel()
	hub.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal().Err(err).Msg("server forced to shutdown")
	}

	logger.Info().Msg("server stopped")
}
