package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/sprintduel/ladder-server/internal/domain"
	"github.com/sprintduel/ladder-server/internal/events"
	"github.com/sprintduel/ladder-server/internal/localstore"
	"github.com/sprintduel/ladder-server/internal/repository"
)

// PrestigeService gates and executes the trophy-reset-for-status mechanic.
// Availability is announced once per climb via a persisted one-shot flag;
// the flag clears when prestige executes or a new season begins.
type PrestigeService struct {
	progression *ProgressionService
	seasons     *SeasonService
	players     repository.PlayerRepository
	remote      repository.RemoteProgressionStore
	local       *localstore.Store
	bus         *events.Bus
	logger      zerolog.Logger

	remoteTimeout time.Duration
}

func NewPrestigeService(progression *ProgressionService, seasons *SeasonService, players repository.PlayerRepository, remote repository.RemoteProgressionStore, local *localstore.Store, bus *events.Bus, logger zerolog.Logger, remoteTimeout time.Duration) *PrestigeService {
	if remoteTimeout <= 0 {
		remoteTimeout = 10 * time.Second
	}
	return &PrestigeService{
		progression:   progression,
		seasons:       seasons,
		players:       players,
		remote:        remote,
		local:         local,
		bus:           bus,
		logger:        logger.With().Str("component", "prestige").Logger(),
		remoteTimeout: remoteTimeout,
	}
}

// Run consumes progression events and raises the one-shot PrestigeAvailable
// notification when a player first crosses the threshold. Returns when the
// context is cancelled.
func (s *PrestigeService) Run(ctx context.Context) {
	ch, cancel := s.bus.Subscribe(64)
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-ch:
			if !ok {
				return
			}
			if evt.Type != events.TypeProgressionChanged {
				continue
			}
			s.maybeNotify(evt.PlayerID)
		}
	}
}

func (s *PrestigeService) maybeNotify(playerID uuid.UUID) {
	state, err := s.progression.State(context.Background(), playerID)
	if err != nil || !state.PrestigeAvailable() {
		return
	}

	notified, err := s.local.GetBool(playerID, localstore.KeyPrestigeNotified)
	if err != nil || notified {
		return
	}
	if err := s.local.PutBool(playerID, localstore.KeyPrestigeNotified, true); err != nil {
		s.logger.Warn().Err(err).Str("player", playerID.String()).Msg("notified flag write failed")
		return
	}

	s.bus.Publish(events.Event{
		Type:     events.TypePrestigeAvailable,
		PlayerID: playerID,
		Payload:  events.PrestigeAvailablePayload{NextLevel: state.PrestigeLevel + 1},
	})
}

// Execute performs the prestige reset. Ineligible calls are silent no-ops:
// the returned state is unchanged and executed is false. On success, local
// state is committed synchronously; the immutable per-level record and the
// remote push happen asynchronously and are safe to retry.
func (s *PrestigeService) Execute(ctx context.Context, playerID uuid.UUID) (*domain.ProgressionState, bool, error) {
	state, err := s.progression.State(ctx, playerID)
	if err != nil {
		return nil, false, err
	}
	if !state.PrestigeAvailable() {
		return state, false, nil
	}

	// Snapshot the moment of execution before the reset wipes it.
	peak := s.seasons.PeakValue(playerID)
	if state.Trophies > peak {
		peak = state.Trophies
	}
	totalMatches, totalWins := 0, 0
	if player, err := s.players.GetByID(ctx, playerID); err == nil {
		totalMatches, totalWins = player.TotalMatches, player.TotalWins
	}

	newState, err := s.progression.ApplyPrestige(ctx, playerID)
	if err != nil {
		return nil, false, err
	}

	if err := s.local.PutBool(playerID, localstore.KeyPrestigeNotified, false); err != nil {
		s.logger.Warn().Err(err).Str("player", playerID.String()).Msg("notified flag clear failed")
	}

	s.bus.Publish(events.Event{
		Type:     events.TypePrestigeCompleted,
		PlayerID: playerID,
		Payload:  events.PrestigeCompletedPayload{NewLevel: newState.PrestigeLevel},
	})

	record := &domain.PrestigeRecord{
		PlayerID:     playerID,
		Level:        newState.PrestigeLevel,
		AchievedAt:   time.Now().UTC(),
		TotalMatches: totalMatches,
		TotalWins:    totalWins,
		PeakTrophies: peak,
	}
	go func() {
		writeCtx, cancel := context.WithTimeout(context.Background(), s.remoteTimeout)
		defer cancel()
		if err := s.remote.SavePrestigeRecord(writeCtx, record); err != nil {
			s.logger.Warn().Err(err).
				Str("player", playerID.String()).
				Int("level", record.Level).
				Msg("prestige record write failed, resync will retry")
		}
	}()

	s.logger.Info().Str("player", playerID.String()).Int("level", newState.PrestigeLevel).Msg("prestige executed")
	return newState, true, nil
}
