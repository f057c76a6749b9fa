// Package stub provides the local-only RemoteProgressionStore used when no
// remote backend is configured. Pushes land in memory and fetches behave
// like an authority that has never seen the player, so the ladder runs
// entirely on local state.
package stub

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sprintduel/ladder-server/internal/domain"
)

type RemoteStub struct {
	mu       sync.RWMutex
	states   map[uuid.UUID]domain.RemoteProgression
	prestige map[uuid.UUID]map[int]domain.PrestigeRecord
}

func NewRemoteStub() *RemoteStub {
	return &RemoteStub{
		states:   make(map[uuid.UUID]domain.RemoteProgression),
		prestige: make(map[uuid.UUID]map[int]domain.PrestigeRecord),
	}
}

func (s *RemoteStub) Fetch(_ context.Context, playerID uuid.UUID) (*domain.RemoteProgression, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.states[playerID]
	if !ok {
		return nil, domain.ErrPlayerNotFound
	}
	out := state
	return &out, nil
}

func (s *RemoteStub) Push(_ context.Context, state *domain.RemoteProgression) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *state
	copied.LastUpdated = time.Now().UTC()
	s.states[state.PlayerID] = copied
	return nil
}

func (s *RemoteStub) SavePrestigeRecord(_ context.Context, record *domain.PrestigeRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	byLevel, ok := s.prestige[record.PlayerID]
	if !ok {
		byLevel = make(map[int]domain.PrestigeRecord)
		s.prestige[record.PlayerID] = byLevel
	}
	byLevel[record.Level] = *record
	return nil
}

// PrestigeRecord returns the stored snapshot for a level, for tests.
func (s *RemoteStub) PrestigeRecord(playerID uuid.UUID, level int) (domain.PrestigeRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.prestige[playerID][level]
	return record, ok
}
