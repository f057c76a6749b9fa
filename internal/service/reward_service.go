package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/sprintduel/ladder-server/internal/domain"
	"github.com/sprintduel/ladder-server/internal/repository"
)

// RewardService converts an earned season reward into granted currency,
// exactly once per (player, season).
type RewardService struct {
	records repository.SeasonRecordRepository
	logger  zerolog.Logger
}

func NewRewardService(records repository.SeasonRecordRepository, logger zerolog.Logger) *RewardService {
	return &RewardService{
		records: records,
		logger:  logger.With().Str("component", "reward").Logger(),
	}
}

// ClaimSeasonReward returns the gems actually granted. Already-claimed,
// missing-record and infrastructure failures all return 0 so callers can
// treat every non-grant identically; nothing here is a user-facing error.
func (s *RewardService) ClaimSeasonReward(ctx context.Context, playerID uuid.UUID, seasonID string) int {
	gems, err := s.records.Claim(ctx, playerID, seasonID, time.Now().UTC())
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrAlreadyClaimed):
			s.logger.Debug().Str("player", playerID.String()).Str("season", seasonID).Msg("reward already claimed")
		case errors.Is(err, domain.ErrSeasonRecordNotFound):
			s.logger.Debug().Str("player", playerID.String()).Str("season", seasonID).Msg("no season record to claim")
		default:
			s.logger.Error().Err(err).Str("player", playerID.String()).Str("season", seasonID).Msg("claim failed")
		}
		return 0
	}

	s.logger.Info().Str("player", playerID.String()).Str("season", seasonID).Int("gems", gems).Msg("season reward claimed")
	return gems
}

// History returns the player's frozen season records, newest first.
func (s *RewardService) History(ctx context.Context, playerID uuid.UUID) ([]*domain.PlayerSeasonRecord, error) {
	return s.records.ListByPlayer(ctx, playerID)
}
