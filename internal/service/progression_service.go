package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/sprintduel/ladder-server/internal/domain"
	"github.com/sprintduel/ladder-server/internal/events"
	"github.com/sprintduel/ladder-server/internal/localstore"
	"github.com/sprintduel/ladder-server/internal/repository"
)

// PeakSink receives live trophy values for season peak tracking. Implemented
// by SeasonService; an interface here keeps the dependency one-directional.
type PeakSink interface {
	EnsurePlayerSeason(ctx context.Context, playerID uuid.UUID) error
	UpdatePeak(ctx context.Context, playerID uuid.UUID, trophies int)
}

// ProgressionService owns canonical {trophies, prestige, tier} state.
// Mutations are local-first: the write-through store is updated before the
// fire-and-forget push to the remote authority, so gameplay never blocks on
// the network. A one-directional ratchet keeps stale remote reads from
// rolling back progress.
type ProgressionService struct {
	local  *localstore.Store
	remote repository.RemoteProgressionStore
	peaks  PeakSink
	bus    *events.Bus
	logger zerolog.Logger

	remoteTimeout time.Duration

	mu    sync.Mutex
	cache map[uuid.UUID]*domain.ProgressionState
}

func NewProgressionService(local *localstore.Store, remote repository.RemoteProgressionStore, peaks PeakSink, bus *events.Bus, logger zerolog.Logger, remoteTimeout time.Duration) *ProgressionService {
	if remoteTimeout <= 0 {
		remoteTimeout = 10 * time.Second
	}
	return &ProgressionService{
		local:         local,
		remote:        remote,
		peaks:         peaks,
		bus:           bus,
		logger:        logger.With().Str("component", "progression").Logger(),
		remoteTimeout: remoteTimeout,
		cache:         make(map[uuid.UUID]*domain.ProgressionState),
	}
}

// State returns the player's current progression, seeding defaults for a
// player seen for the first time.
func (s *ProgressionService) State(ctx context.Context, playerID uuid.UUID) (*domain.ProgressionState, error) {
	if err := s.peaks.EnsurePlayerSeason(ctx, playerID); err != nil {
		s.logger.Warn().Err(err).Str("player", playerID.String()).Msg("season check failed, continuing with cached season")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.loadLocked(playerID)
	if err != nil {
		return nil, err
	}
	out := *state
	return &out, nil
}

// AddTrophies applies a match-outcome delta. Trophies floor at zero; the
// tier is recomputed and a TierChanged event fires exactly once when it
// differs, no matter how many brackets the delta crossed.
func (s *ProgressionService) AddTrophies(ctx context.Context, playerID uuid.UUID, delta int) (*domain.ProgressionState, error) {
	return s.mutate(ctx, playerID, func(trophies int) int {
		next := trophies + delta
		if next < 0 {
			next = 0
		}
		return next
	})
}

// SetTrophies sets an absolute trophy value, used for corrective resets.
// Event semantics match AddTrophies.
func (s *ProgressionService) SetTrophies(ctx context.Context, playerID uuid.UUID, value int) (*domain.ProgressionState, error) {
	return s.mutate(ctx, playerID, func(int) int {
		if value < 0 {
			return 0
		}
		return value
	})
}

func (s *ProgressionService) mutate(ctx context.Context, playerID uuid.UUID, apply func(trophies int) int) (*domain.ProgressionState, error) {
	if err := s.peaks.EnsurePlayerSeason(ctx, playerID); err != nil {
		s.logger.Warn().Err(err).Str("player", playerID.String()).Msg("season check failed, continuing with cached season")
	}

	s.mu.Lock()
	state, err := s.loadLocked(playerID)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}

	oldTier := state.CurrentTier().Name
	state.Trophies = apply(state.Trophies)
	newTier := state.CurrentTier().Name

	if err := s.persistLocked(state); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	snapshot := *state
	s.mu.Unlock()

	if newTier != oldTier {
		s.bus.Publish(events.Event{
			Type:     events.TypeTierChanged,
			PlayerID: playerID,
			Payload:  events.TierChangedPayload{OldTier: oldTier, NewTier: newTier},
		})
	}
	s.publishChanged(&snapshot)

	s.peaks.UpdatePeak(ctx, playerID, snapshot.Trophies)
	s.pushRemote(snapshot)

	return &snapshot, nil
}

// Reconcile folds a remote snapshot into local state. The ratchet: adopt
// only when the remote is ahead on trophies or prestige. The one sanctioned
// regression is a season hard reset, recognized solely by an advanced reset
// generation, never inferred from a lower value arriving.
func (s *ProgressionService) Reconcile(ctx context.Context, playerID uuid.UUID, remote *domain.RemoteProgression) (bool, error) {
	s.mu.Lock()
	state, err := s.loadLocked(playerID)
	if err != nil {
		s.mu.Unlock()
		return false, err
	}

	hardReset := remote.ResetGeneration > state.ResetGeneration
	advance := remote.Trophies >= state.Trophies || remote.PrestigeLevel > state.PrestigeLevel
	if !hardReset && !advance {
		s.mu.Unlock()
		s.logger.Debug().
			Str("player", playerID.String()).
			Int("localTrophies", state.Trophies).
			Int("remoteTrophies", remote.Trophies).
			Msg("ignoring stale remote snapshot")
		return false, nil
	}

	oldTier := state.CurrentTier().Name
	state.Trophies = remote.Trophies
	state.PrestigeLevel = remote.PrestigeLevel
	if remote.ResetGeneration > state.ResetGeneration {
		state.ResetGeneration = remote.ResetGeneration
	}
	newTier := state.CurrentTier().Name

	if err := s.persistLocked(state); err != nil {
		s.mu.Unlock()
		return false, err
	}
	snapshot := *state
	s.mu.Unlock()

	if newTier != oldTier {
		s.bus.Publish(events.Event{
			Type:     events.TypeTierChanged,
			PlayerID: playerID,
			Payload:  events.TierChangedPayload{OldTier: oldTier, NewTier: newTier},
		})
	}
	s.publishChanged(&snapshot)
	s.peaks.UpdatePeak(ctx, playerID, snapshot.Trophies)

	return true, nil
}

// Sync pulls the remote record and reconciles it, then re-pushes if local is
// ahead. Called on session start and by periodic refresh; any network
// failure leaves local state authoritative.
func (s *ProgressionService) Sync(ctx context.Context, playerID uuid.UUID) error {
	fetchCtx, cancel := context.WithTimeout(ctx, s.remoteTimeout)
	defer cancel()

	remote, err := s.remote.Fetch(fetchCtx, playerID)
	if err != nil {
		if err == domain.ErrPlayerNotFound {
			// New to the authority: seed it with local state.
			s.mu.Lock()
			state, lerr := s.loadLocked(playerID)
			if lerr != nil {
				s.mu.Unlock()
				return lerr
			}
			snapshot := *state
			s.mu.Unlock()
			s.pushRemote(snapshot)
			return nil
		}
		s.logger.Warn().Err(err).Str("player", playerID.String()).Msg("remote fetch failed, local state stays authoritative")
		return nil
	}

	adopted, err := s.Reconcile(ctx, playerID, remote)
	if err != nil {
		return err
	}
	if !adopted {
		s.mu.Lock()
		state, lerr := s.loadLocked(playerID)
		if lerr != nil {
			s.mu.Unlock()
			return lerr
		}
		snapshot := *state
		s.mu.Unlock()
		s.pushRemote(snapshot)
	}
	return nil
}

// ApplyPrestige performs the local half of a prestige reset: level up, zero
// trophies, persist synchronously. Eligibility is the caller's concern.
func (s *ProgressionService) ApplyPrestige(ctx context.Context, playerID uuid.UUID) (*domain.ProgressionState, error) {
	s.mu.Lock()
	state, err := s.loadLocked(playerID)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}

	oldTier := state.CurrentTier().Name
	state.PrestigeLevel++
	state.Trophies = 0
	newTier := state.CurrentTier().Name

	if err := s.persistLocked(state); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	snapshot := *state
	s.mu.Unlock()

	if newTier != oldTier {
		s.bus.Publish(events.Event{
			Type:     events.TypeTierChanged,
			PlayerID: playerID,
			Payload:  events.TierChangedPayload{OldTier: oldTier, NewTier: newTier},
		})
	}
	s.publishChanged(&snapshot)
	s.pushRemote(snapshot)

	return &snapshot, nil
}

func (s *ProgressionService) loadLocked(playerID uuid.UUID) (*domain.ProgressionState, error) {
	if state, ok := s.cache[playerID]; ok {
		return state, nil
	}

	trophies, err := s.local.GetInt(playerID, localstore.KeyTrophies, 0)
	if err != nil {
		return nil, err
	}
	prestige, err := s.local.GetInt(playerID, localstore.KeyPrestigeLevel, 0)
	if err != nil {
		return nil, err
	}
	generation, err := s.local.GetInt(playerID, localstore.KeyResetGeneration, 0)
	if err != nil {
		return nil, err
	}

	state := &domain.ProgressionState{
		PlayerID:        playerID,
		Trophies:        trophies,
		PrestigeLevel:   prestige,
		ResetGeneration: generation,
	}
	s.cache[playerID] = state
	return state, nil
}

func (s *ProgressionService) persistLocked(state *domain.ProgressionState) error {
	if err := s.local.PutInt(state.PlayerID, localstore.KeyTrophies, state.Trophies); err != nil {
		return err
	}
	if err := s.local.PutInt(state.PlayerID, localstore.KeyPrestigeLevel, state.PrestigeLevel); err != nil {
		return err
	}
	return s.local.PutInt(state.PlayerID, localstore.KeyResetGeneration, state.ResetGeneration)
}

func (s *ProgressionService) publishChanged(state *domain.ProgressionState) {
	s.bus.Publish(events.Event{
		Type:     events.TypeProgressionChanged,
		PlayerID: state.PlayerID,
		Payload: events.ProgressionChangedPayload{
			Trophies:      state.Trophies,
			PrestigeLevel: state.PrestigeLevel,
			Tier:          state.CurrentTier().Name,
		},
	})
}

// pushRemote is fire-and-forget: a push that never lands leaves the
// subsystem stale, not broken, and the next Sync retries.
func (s *ProgressionService) pushRemote(state domain.ProgressionState) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.remoteTimeout)
		defer cancel()

		peak, _ := s.local.GetInt(state.PlayerID, localstore.KeyPeakTrophies, 0)
		seasonID, _, _ := s.local.Get(state.PlayerID, localstore.KeyCurrentSeasonID)

		record := &domain.RemoteProgression{
			PlayerID:               state.PlayerID,
			Trophies:               state.Trophies,
			PrestigeLevel:          state.PrestigeLevel,
			CurrentTier:            state.CurrentTier().Name,
			PeakTrophiesThisSeason: peak,
			CurrentSeasonID:        seasonID,
			ResetGeneration:        state.ResetGeneration,
		}
		if err := s.remote.Push(ctx, record); err != nil {
			s.logger.Warn().Err(err).Str("player", state.PlayerID.String()).Msg("remote push failed, will retry on next sync")
		}
	}()
}
