package service

import (
	"github.com/rs/zerolog"

	"github.com/sprintduel/ladder-server/internal/config"
	"github.com/sprintduel/ladder-server/internal/events"
	"github.com/sprintduel/ladder-server/internal/localstore"
	"github.com/sprintduel/ladder-server/internal/repository"
)

type Services struct {
	Auth        *AuthService
	Progression *ProgressionService
	Prestige    *PrestigeService
	Season      *SeasonService
	Reward      *RewardService
	Leaderboard *LeaderboardService
}

// NewServices is the composition root for the ladder: one instance of each
// component, wired explicitly, no ambient lookups.
func NewServices(repos *repository.Repositories, local *localstore.Store, bus *events.Bus, logger zerolog.Logger, cfg *config.Config) *Services {
	season := NewSeasonService(repos.Season, repos.SeasonRecord, local, bus, logger, cfg.EndingSoonWindow)
	progression := NewProgressionService(local, repos.Remote, season, bus, logger, cfg.RemoteTimeout)
	prestige := NewPrestigeService(progression, season, repos.Player, repos.Remote, local, bus, logger, cfg.RemoteTimeout)

	return &Services{
		Auth:        NewAuthService(repos.Player, repos.Session, cfg),
		Progression: progression,
		Prestige:    prestige,
		Season:      season,
		Reward:      NewRewardService(repos.SeasonRecord, logger),
		Leaderboard: NewLeaderboardService(repos.Leaderboard, logger),
	}
}
