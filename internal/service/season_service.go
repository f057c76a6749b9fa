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

// SeasonState names the lifecycle phases. There is no terminal state; the
// machine loops Active → Transitioning → Active for the process lifetime.
type SeasonState int

const (
	SeasonUninitialized SeasonState = iota
	SeasonLoading
	SeasonActive
	SeasonTransitioning
)

func (s SeasonState) String() string {
	switch s {
	case SeasonLoading:
		return "loading"
	case SeasonActive:
		return "active"
	case SeasonTransitioning:
		return "transitioning"
	default:
		return "uninitialized"
	}
}

// SeasonService tracks the active season and runs the season-end sequence.
// The global season pointer comes from the authority feed; per-player
// catch-up (freeze peak, compute reward, create the frozen record, reset the
// tracker) happens lazily on the player's next interaction. Every step
// carries its own idempotency guard, so a sequence interrupted by a crash or
// raced by a second trigger re-runs harmlessly.
type SeasonService struct {
	seasons repository.SeasonRepository
	records repository.SeasonRecordRepository
	local   *localstore.Store
	bus     *events.Bus
	logger  zerolog.Logger

	endingSoonWindow time.Duration
	now              func() time.Time

	mu      sync.RWMutex
	state   SeasonState
	current *domain.SeasonInfo
}

func NewSeasonService(seasons repository.SeasonRepository, records repository.SeasonRecordRepository, local *localstore.Store, bus *events.Bus, logger zerolog.Logger, endingSoonWindow time.Duration) *SeasonService {
	if endingSoonWindow <= 0 {
		endingSoonWindow = 24 * time.Hour
	}
	return &SeasonService{
		seasons:          seasons,
		records:          records,
		local:            local,
		bus:              bus,
		logger:           logger.With().Str("component", "season").Logger(),
		endingSoonWindow: endingSoonWindow,
		now:              time.Now,
	}
}

// Load fetches the current season pointer. A feed that is unreachable or
// returns a malformed row degrades to the built-in default season so the
// ladder stays usable.
func (s *SeasonService) Load(ctx context.Context) error {
	s.mu.Lock()
	s.state = SeasonLoading
	s.mu.Unlock()

	season := s.fetchSeason(ctx)

	s.mu.Lock()
	s.current = season
	s.state = SeasonActive
	s.mu.Unlock()

	s.logger.Info().Str("season", season.ID).Int("number", season.Number).Msg("season loaded")
	return nil
}

func (s *SeasonService) fetchSeason(ctx context.Context) *domain.SeasonInfo {
	now := s.now()
	season, err := s.seasons.GetCurrent(ctx, now)
	if err == nil && !season.Valid() {
		err = domain.ErrMalformedSeason
	}
	if err != nil {
		s.logger.Warn().Err(err).Msg("season feed rejected, using default season")
		return domain.DefaultSeason(now)
	}
	return season
}

// Current returns a copy of the active SeasonInfo.
func (s *SeasonService) Current() *domain.SeasonInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return nil
	}
	out := *s.current
	return &out
}

// State reports the lifecycle phase.
func (s *SeasonService) State() SeasonState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Refresh re-reads the season pointer and swaps the active season when the
// id changed, emitting SeasonChanged.
func (s *SeasonService) Refresh(ctx context.Context) {
	incoming := s.fetchSeason(ctx)

	s.mu.Lock()
	if s.current != nil && s.current.ID == incoming.ID {
		s.current = incoming
		s.mu.Unlock()
		return
	}
	s.state = SeasonTransitioning
	old := s.current
	s.current = incoming
	s.state = SeasonActive
	s.mu.Unlock()

	if old != nil {
		s.logger.Info().Str("from", old.ID).Str("to", incoming.ID).Msg("season changed")
	}
	s.bus.Publish(events.Event{
		Type:    events.TypeSeasonChanged,
		Payload: events.SeasonChangedPayload{Season: incoming},
	})
}

// Tick drives the time-based checks from an external clock. The EndingSoon
// notification fires once per season, guarded by a persisted flag keyed to
// the season id so a restart cannot re-fire it.
func (s *SeasonService) Tick(ctx context.Context) {
	s.Refresh(ctx)

	season := s.Current()
	if season == nil {
		return
	}

	remaining := season.RemainingAt(s.now())
	if remaining <= 0 || remaining >= s.endingSoonWindow {
		return
	}

	firedFor, _, err := s.local.Get(uuid.Nil, localstore.KeySeasonEndingSoonFired)
	if err != nil {
		s.logger.Warn().Err(err).Msg("ending-soon flag read failed")
		return
	}
	if firedFor == season.ID {
		return
	}
	if err := s.local.Put(uuid.Nil, localstore.KeySeasonEndingSoonFired, season.ID); err != nil {
		s.logger.Warn().Err(err).Msg("ending-soon flag write failed")
		return
	}

	s.bus.Publish(events.Event{
		Type:    events.TypeSeasonEndingSoon,
		Payload: events.SeasonEndingSoonPayload{Season: season, Remaining: remaining},
	})
}

// EnsurePlayerSeason catches the player up to the active season. When their
// cached season id differs, the ending season is closed out: peak frozen,
// reward computed, the frozen record created (only if absent), and the peak
// tracker reset under the new id.
func (s *SeasonService) EnsurePlayerSeason(ctx context.Context, playerID uuid.UUID) error {
	season := s.Current()
	if season == nil {
		return nil
	}

	cached, ok, err := s.local.Get(playerID, localstore.KeyCurrentSeasonID)
	if err != nil {
		return err
	}
	if ok && cached == season.ID {
		return nil
	}

	if ok && cached != "" {
		if err := s.closeSeason(ctx, playerID, cached); err != nil {
			return err
		}
	}

	// Re-tag the tracker to the incoming season with a zeroed peak.
	if err := s.local.PutInt(playerID, localstore.KeyPeakTrophies, 0); err != nil {
		return err
	}
	if err := s.local.PutBool(playerID, localstore.KeyPrestigeNotified, false); err != nil {
		return err
	}
	return s.local.Put(playerID, localstore.KeyCurrentSeasonID, season.ID)
}

// closeSeason freezes the ending season into a PlayerSeasonRecord. The
// existing-record guard makes repeated transition detection (after a crash,
// or a stale in-flight sequence) a no-op.
func (s *SeasonService) closeSeason(ctx context.Context, playerID uuid.UUID, endedSeasonID string) error {
	peak, err := s.local.GetInt(playerID, localstore.KeyPeakTrophies, 0)
	if err != nil {
		return err
	}
	trophies, err := s.local.GetInt(playerID, localstore.KeyTrophies, 0)
	if err != nil {
		return err
	}
	prestige, err := s.local.GetInt(playerID, localstore.KeyPrestigeLevel, 0)
	if err != nil {
		return err
	}

	gems := domain.CalculateSeasonReward(peak)
	record := &domain.PlayerSeasonRecord{
		ID:            uuid.New(),
		PlayerID:      playerID,
		SeasonID:      endedSeasonID,
		PeakTrophies:  peak,
		FinalTier:     domain.GetTier(trophies).Name,
		FinalPrestige: prestige,
		GemReward:     gems,
	}

	created, err := s.records.CreateIfAbsent(ctx, record)
	if err != nil {
		return err
	}
	if !created {
		return nil
	}

	s.logger.Info().
		Str("player", playerID.String()).
		Str("season", endedSeasonID).
		Int("peak", peak).
		Int("gems", gems).
		Msg("season record frozen")

	s.bus.Publish(events.Event{
		Type:     events.TypeSeasonRewardCalculated,
		PlayerID: playerID,
		Payload: events.SeasonRewardCalculatedPayload{
			Gems:        gems,
			SeasonID:    endedSeasonID,
			EndedSeason: endedSeasonID,
		},
	})
	return nil
}

// UpdatePeak folds a live trophy value into the season peak. Values arriving
// outside the active window are ignored; the peak only ratchets upward.
func (s *SeasonService) UpdatePeak(ctx context.Context, playerID uuid.UUID, trophies int) {
	season := s.Current()
	if season == nil || !season.IsActiveAt(s.now()) {
		return
	}

	peak, err := s.local.GetInt(playerID, localstore.KeyPeakTrophies, 0)
	if err != nil {
		s.logger.Warn().Err(err).Str("player", playerID.String()).Msg("peak read failed")
		return
	}

	tracker := domain.PeakTracker{SeasonID: season.ID, PeakTrophies: peak}
	if !tracker.Observe(trophies) {
		return
	}
	if err := s.local.PutInt(playerID, localstore.KeyPeakTrophies, tracker.PeakTrophies); err != nil {
		s.logger.Warn().Err(err).Str("player", playerID.String()).Msg("peak write failed")
	}
}

// PeakValue returns the player's current season peak.
func (s *SeasonService) PeakValue(playerID uuid.UUID) int {
	peak, err := s.local.GetInt(playerID, localstore.KeyPeakTrophies, 0)
	if err != nil {
		s.logger.Warn().Err(err).Str("player", playerID.String()).Msg("peak read failed")
		return 0
	}
	return peak
}

// RewardEstimate is the live, advisory figure shown mid-season. Only the
// end-of-season computation frozen into the record is authoritative.
func (s *SeasonService) RewardEstimate(playerID uuid.UUID) int {
	return domain.CalculateSeasonReward(s.PeakValue(playerID))
}

// SetNow overrides the clock, for tests.
func (s *SeasonService) SetNow(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}
