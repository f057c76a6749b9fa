package testutil

import (
	"context"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/sprintduel/ladder-server/internal/api"
	"github.com/sprintduel/ladder-server/internal/config"
	"github.com/sprintduel/ladder-server/internal/domain"
	"github.com/sprintduel/ladder-server/internal/events"
	"github.com/sprintduel/ladder-server/internal/localstore"
	"github.com/sprintduel/ladder-server/internal/repository"
	repoPostgres "github.com/sprintduel/ladder-server/internal/repository/postgres"
	"github.com/sprintduel/ladder-server/internal/service"
	"github.com/sprintduel/ladder-server/internal/websocket"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestDB manages a testcontainers PostgreSQL instance
type TestDB struct {
	Container testcontainers.Container
	DB        *gorm.DB
	DSN       string
}

// NewTestDB creates a new PostgreSQL testcontainer and returns a connection
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	container, err := tcPostgres.Run(ctx,
		"postgres:15-alpine",
		tcPostgres.WithDatabase("test_ladder"),
		tcPostgres.WithUsername("test"),
		tcPostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	db, err := gorm.Open(gormPostgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to connect to database: %v", err)
	}

	// Run migrations
	err = db.AutoMigrate(
		&domain.Player{},
		&domain.PlayerSession{},
		&domain.SeasonInfo{},
		&domain.PlayerSeasonRecord{},
		&domain.RemoteProgression{},
		&domain.PrestigeRecord{},
	)
	if err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	testDB := &TestDB{
		Container: container,
		DB:        db,
		DSN:       dsn,
	}

	t.Cleanup(func() {
		testDB.Cleanup()
	})

	return testDB
}

// Cleanup terminates the container
func (tdb *TestDB) Cleanup() {
	if tdb.Container != nil {
		ctx := context.Background()
		tdb.Container.Terminate(ctx)
	}
}

// Truncate clears all tables for test isolation
func (tdb *TestDB) Truncate(t *testing.T) {
	t.Helper()

	tables := []string{
		"prestige_records",
		"remote_progressions",
		"player_season_records",
		"seasons",
		"player_sessions",
		"players",
	}

	for _, table := range tables {
		if err := tdb.DB.Exec(fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)).Error; err != nil {
			t.Logf("warning: failed to truncate %s: %v", table, err)
		}
	}
}

// TestConfig returns a configuration suitable for testing
func TestConfig() *config.Config {
	return &config.Config{
		Port:               "0", // Random port
		Environment:        "test",
		RemoteBackend:      config.RemoteBackendPostgres,
		JWTSecret:          "test-jwt-secret-key-for-testing-only",
		JWTExpirationHours: 1,
		SeasonTickInterval: time.Second, // Fast ticks for tests
		EndingSoonWindow:   24 * time.Hour,
		RemoteTimeout:      5 * time.Second,
	}
}

// TestLogger returns a logger that discards all output
func TestLogger() zerolog.Logger {
	return zerolog.Nop()
}

// TestServer holds all components for integration testing
type TestServer struct {
	Server   *httptest.Server
	DB       *TestDB
	Local    *localstore.Store
	Bus      *events.Bus
	Repos    *repository.Repositories
	Services *service.Services
	Hub      *websocket.Hub
	Config   *config.Config
}

// NewTestServer creates a complete test server with all dependencies. The
// local store is in-memory and the leaderboard repository is an in-memory
// fake seeded through its Archive method.
func NewTestServer(t *testing.T) *TestServer {
	t.Helper()

	testDB := NewTestDB(t)
	cfg := TestConfig()

	local, err := localstore.Open("")
	if err != nil {
		t.Fatalf("failed to open local store: %v", err)
	}
	t.Cleanup(func() { local.Close() })

	repos := repoPostgres.NewRepositories(testDB.DB)
	repos.Leaderboard = NewFakeLeaderboard()

	bus := events.NewBus()
	t.Cleanup(bus.Close)

	services := service.NewServices(repos, local, bus, TestLogger(), cfg)
	if err := services.Season.Load(context.Background()); err != nil {
		t.Fatalf("failed to load season: %v", err)
	}

	hub := websocket.NewHub(bus)
	go hub.Run()
	t.Cleanup(hub.Stop)

	router := api.NewRouter(services, hub, repos, cfg)

	server := httptest.NewServer(router)

	ts := &TestServer{
		Server:   server,
		DB:       testDB,
		Local:    local,
		Bus:      bus,
		Repos:    repos,
		Services: services,
		Hub:      hub,
		Config:   cfg,
	}

	t.Cleanup(func() {
		server.Close()
	})

	return ts
}

// BaseURL returns the test server's base URL
func (ts *TestServer) BaseURL() string {
	return ts.Server.URL
}

// APIURL returns the full API URL for a given path
func (ts *TestServer) APIURL(path string) string {
	return fmt.Sprintf("%s/api/v1%s", ts.Server.URL, path)
}

// WebSocketURL returns the WebSocket URL with token
func (ts *TestServer) WebSocketURL(token string) string {
	wsURL := "ws" + ts.Server.URL[4:] // Replace "http" with "ws"
	return fmt.Sprintf("%s/api/v1/ws?token=%s", wsURL, token)
}

// FakeLeaderboard is an in-memory stand-in for the Redis archive used in
// tests that do not spin up Redis.
type FakeLeaderboard struct {
	seasons map[string][]domain.LeaderboardEntry
}

func NewFakeLeaderboard() *FakeLeaderboard {
	return &FakeLeaderboard{seasons: make(map[string][]domain.LeaderboardEntry)}
}

// Archive stores a frozen ranking for a season
func (f *FakeLeaderboard) Archive(seasonID string, entries []domain.LeaderboardEntry) {
	f.seasons[seasonID] = entries
}

func (f *FakeLeaderboard) LoadSeason(_ context.Context, seasonID string, limit int) ([]domain.LeaderboardEntry, error) {
	entries := f.seasons[seasonID]
	if limit > 0 && limit < len(entries) {
		entries = entries[:limit]
	}
	return entries, nil
}
