package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/sprintduel/ladder-server/internal/domain"
	"github.com/sprintduel/ladder-server/internal/events"
	"github.com/sprintduel/ladder-server/internal/localstore"
	"github.com/sprintduel/ladder-server/internal/repository"
	"github.com/sprintduel/ladder-server/internal/repository/stub"
	"github.com/sprintduel/ladder-server/internal/service"
	"github.com/sprintduel/ladder-server/internal/testutil"
	"github.com/stretchr/testify/require"
)

// fakeSeasonRepo serves a scripted season feed
type fakeSeasonRepo struct {
	mu      sync.Mutex
	current *domain.SeasonInfo
	err     error
}

func (f *fakeSeasonRepo) GetCurrent(_ context.Context, _ time.Time) (*domain.SeasonInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}
	out := *f.current
	return &out, nil
}

func (f *fakeSeasonRepo) GetByID(_ context.Context, id string) (*domain.SeasonInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.current != nil && f.current.ID == id {
		out := *f.current
		return &out, nil
	}
	return nil, domain.ErrSeasonNotFound
}

func (f *fakeSeasonRepo) setCurrent(season *domain.SeasonInfo) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.current = season
}

// fakeRecordRepo keeps frozen season records in memory
type fakeRecordRepo struct {
	mu      sync.Mutex
	records map[string]*domain.PlayerSeasonRecord
	creates int
}

func newFakeRecordRepo() *fakeRecordRepo {
	return &fakeRecordRepo{records: make(map[string]*domain.PlayerSeasonRecord)}
}

func recordKey(playerID uuid.UUID, seasonID string) string {
	return playerID.String() + "/" + seasonID
}

func (f *fakeRecordRepo) Get(_ context.Context, playerID uuid.UUID, seasonID string) (*domain.PlayerSeasonRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	record, ok := f.records[recordKey(playerID, seasonID)]
	if !ok {
		return nil, domain.ErrSeasonRecordNotFound
	}
	out := *record
	return &out, nil
}

func (f *fakeRecordRepo) CreateIfAbsent(_ context.Context, record *domain.PlayerSeasonRecord) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := recordKey(record.PlayerID, record.SeasonID)
	if _, ok := f.records[key]; ok {
		return false, nil
	}
	copied := *record
	f.records[key] = &copied
	f.creates++
	return true, nil
}

func (f *fakeRecordRepo) Claim(_ context.Context, playerID uuid.UUID, seasonID string, now time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	record, ok := f.records[recordKey(playerID, seasonID)]
	if !ok {
		return 0, domain.ErrSeasonRecordNotFound
	}
	if record.ClaimedSeasonReward {
		return 0, domain.ErrAlreadyClaimed
	}
	record.ClaimedSeasonReward = true
	record.ClaimedAt = &now
	return record.GemReward, nil
}

func (f *fakeRecordRepo) ListByPlayer(_ context.Context, playerID uuid.UUID) ([]*domain.PlayerSeasonRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []*domain.PlayerSeasonRecord
	for _, record := range f.records {
		if record.PlayerID == playerID {
			copied := *record
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeRecordRepo) createCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.creates
}

// fakePlayerRepo holds players in memory
type fakePlayerRepo struct {
	mu      sync.Mutex
	players map[uuid.UUID]*domain.Player
}

func newFakePlayerRepo() *fakePlayerRepo {
	return &fakePlayerRepo{players: make(map[uuid.UUID]*domain.Player)}
}

func (f *fakePlayerRepo) Create(_ context.Context, player *domain.Player) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	copied := *player
	f.players[player.ID] = &copied
	return nil
}

func (f *fakePlayerRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Player, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	player, ok := f.players[id]
	if !ok {
		return nil, domain.ErrPlayerNotFound
	}
	out := *player
	return &out, nil
}

func (f *fakePlayerRepo) GetByDisplayName(_ context.Context, displayName string) (*domain.Player, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, player := range f.players {
		if player.DisplayName == displayName {
			out := *player
			return &out, nil
		}
	}
	return nil, domain.ErrPlayerNotFound
}

func (f *fakePlayerRepo) Update(_ context.Context, player *domain.Player) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	copied := *player
	f.players[player.ID] = &copied
	return nil
}

func (f *fakePlayerRepo) RecordMatch(_ context.Context, id uuid.UUID, won bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	player, ok := f.players[id]
	if !ok {
		return domain.ErrPlayerNotFound
	}
	player.TotalMatches++
	if won {
		player.TotalWins++
	}
	return nil
}

// ladderFixture wires the progression stack around in-memory dependencies
type ladderFixture struct {
	local       *localstore.Store
	bus         *events.Bus
	remote      *stub.RemoteStub
	seasonRepo  *fakeSeasonRepo
	recordRepo  *fakeRecordRepo
	playerRepo  *fakePlayerRepo
	season      *service.SeasonService
	progression *service.ProgressionService
	prestige    *service.PrestigeService
}

func activeSeason(id string, now time.Time) *domain.SeasonInfo {
	return &domain.SeasonInfo{
		ID:           id,
		Number:       1,
		Name:         "Test Season",
		StartDate:    now.AddDate(0, 0, -7),
		EndDate:      now.AddDate(0, 0, 23),
		DurationDays: 30,
	}
}

func newLadderFixture(t *testing.T) *ladderFixture {
	t.Helper()

	local, err := localstore.Open("")
	require.NoError(t, err)
	t.Cleanup(func() { local.Close() })

	bus := events.NewBus()
	t.Cleanup(bus.Close)

	logger := testutil.TestLogger()
	remote := stub.NewRemoteStub()
	seasonRepo := &fakeSeasonRepo{current: activeSeason("season_001", time.Now())}
	recordRepo := newFakeRecordRepo()
	playerRepo := newFakePlayerRepo()

	season := service.NewSeasonService(seasonRepo, recordRepo, local, bus, logger, 24*time.Hour)
	require.NoError(t, season.Load(context.Background()))

	progression := service.NewProgressionService(local, remote, season, bus, logger, time.Second)
	prestige := service.NewPrestigeService(progression, season, playerRepo, remote, local, bus, logger, time.Second)

	return &ladderFixture{
		local:       local,
		bus:         bus,
		remote:      remote,
		seasonRepo:  seasonRepo,
		recordRepo:  recordRepo,
		playerRepo:  playerRepo,
		season:      season,
		progression: progression,
		prestige:    prestige,
	}
}

// collectEvents drains every event currently buffered on the channel
func collectEvents(ch <-chan events.Event) []events.Event {
	var out []events.Event
	for {
		select {
		case evt := <-ch:
			out = append(out, evt)
		default:
			return out
		}
	}
}

// countEvents returns how many buffered events match the type
func countEvents(ch <-chan events.Event, eventType events.EventType) int {
	count := 0
	for _, evt := range collectEvents(ch) {
		if evt.Type == eventType {
			count++
		}
	}
	return count
}

var _ repository.SeasonRepository = (*fakeSeasonRepo)(nil)
var _ repository.SeasonRecordRepository = (*fakeRecordRepo)(nil)
var _ repository.PlayerRepository = (*fakePlayerRepo)(nil)
