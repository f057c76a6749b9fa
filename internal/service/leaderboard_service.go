package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/sprintduel/ladder-server/internal/domain"
	"github.com/sprintduel/ladder-server/internal/repository"
)

// LeaderboardService is the read path over frozen per-season rankings. It
// performs no ranking of its own; the archive is produced elsewhere.
type LeaderboardService struct {
	boards repository.LeaderboardRepository
	logger zerolog.Logger
}

func NewLeaderboardService(boards repository.LeaderboardRepository, logger zerolog.Logger) *LeaderboardService {
	return &LeaderboardService{
		boards: boards,
		logger: logger.With().Str("component", "leaderboard").Logger(),
	}
}

// LoadSeasonLeaderboard returns up to limit archived entries, rank ascending.
func (s *LeaderboardService) LoadSeasonLeaderboard(ctx context.Context, seasonID string, limit int) ([]domain.LeaderboardEntry, error) {
	entries, err := s.boards.LoadSeason(ctx, seasonID, limit)
	if err != nil {
		s.logger.Error().Err(err).Str("season", seasonID).Msg("leaderboard load failed")
		return nil, err
	}
	return entries, nil
}
