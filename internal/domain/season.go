package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// SeasonInfo is the authoritative metadata for one ladder season. It is owned
// by the external season authority; this service treats it as read-only and
// replaces it wholesale at a transition.
type SeasonInfo struct {
	ID                 string         `json:"id" gorm:"primaryKey"`
	Number             int            `json:"number" gorm:"not null"`
	Name               string         `json:"name" gorm:"not null"`
	StartDate          time.Time      `json:"startDate" gorm:"not null"`
	EndDate            time.Time      `json:"endDate" gorm:"not null"`
	DurationDays       int            `json:"durationDays" gorm:"not null"`
	Theme              datatypes.JSON `json:"theme" gorm:"type:jsonb"`
	RewardsDistributed bool           `json:"rewardsDistributed" gorm:"not null;default:false"`
	HardResetDone      bool           `json:"hardResetDone" gorm:"not null;default:false"`
	ResetGeneration    int            `json:"resetGeneration" gorm:"not null;default:0"`
	CreatedAt          time.Time      `json:"createdAt"`
}

// TableName returns the table name for GORM
func (SeasonInfo) TableName() string {
	return "seasons"
}

// IsActiveAt reports whether the season's time window covers the instant
func (s *SeasonInfo) IsActiveAt(now time.Time) bool {
	return !now.Before(s.StartDate) && now.Before(s.EndDate)
}

// RemainingAt returns the time left in the season window, floored at zero
func (s *SeasonInfo) RemainingAt(now time.Time) time.Duration {
	if now.After(s.EndDate) {
		return 0
	}
	return s.EndDate.Sub(now)
}

// Valid rejects season rows the authority feed should never produce. A season
// that fails here is treated like a missing one and the default takes over.
func (s *SeasonInfo) Valid() bool {
	return s != nil && s.ID != "" && s.EndDate.After(s.StartDate)
}

// DefaultSeason is the built-in fallback used when the season feed is
// unreachable or returns a malformed row, so the ladder stays usable.
func DefaultSeason(now time.Time) *SeasonInfo {
	start := now.Truncate(24 * time.Hour)
	return &SeasonInfo{
		ID:           "season_default",
		Number:       0,
		Name:         "Open Sprint",
		StartDate:    start,
		EndDate:      start.AddDate(0, 0, 30),
		DurationDays: 30,
	}
}

// Season reward tuning. Base gems scale with the season peak; a flat bonus
// rewards finishing in a high bracket; the total never exceeds the cap.
const (
	SeasonRewardCap        = 500
	seasonRewardDivisor    = 100
	rewardBonusEliteFloor  = 3500
	rewardBonusLegendFloor = 4500
	rewardBonusProFloor    = 2000
)

// CalculateSeasonReward converts a frozen season peak into a gem amount
func CalculateSeasonReward(peakTrophies int) int {
	if peakTrophies <= 0 {
		return 0
	}
	gems := peakTrophies / seasonRewardDivisor
	if gems > SeasonRewardCap {
		gems = SeasonRewardCap
	}
	switch {
	case peakTrophies >= rewardBonusLegendFloor:
		gems += 50
	case peakTrophies >= rewardBonusEliteFloor:
		gems += 25
	case peakTrophies >= rewardBonusProFloor:
		gems += 10
	}
	if gems > SeasonRewardCap {
		gems = SeasonRewardCap
	}
	return gems
}

// PlayerSeasonRecord is the frozen outcome of one player's season. Exactly
// one row exists per (player, season); it is created once at season-end
// detection and mutated exactly once afterwards, when the reward is claimed.
type PlayerSeasonRecord struct {
	ID                  uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	PlayerID            uuid.UUID  `json:"playerId" gorm:"type:uuid;not null;uniqueIndex:idx_player_season_records_player_season"`
	SeasonID            string     `json:"seasonId" gorm:"not null;uniqueIndex:idx_player_season_records_player_season"`
	PeakTrophies        int        `json:"peakTrophies" gorm:"not null;default:0"`
	FinalTier           Tier       `json:"finalTier" gorm:"type:varchar(20);not null"`
	FinalPrestige       int        `json:"finalPrestige" gorm:"not null;default:0"`
	ClaimedSeasonReward bool       `json:"claimedSeasonReward" gorm:"not null;default:false"`
	GemReward           int        `json:"gemReward" gorm:"not null;default:0"`
	ClaimedAt           *time.Time `json:"claimedAt"`
	CreatedAt           time.Time  `json:"createdAt"`
}

// TableName returns the table name for GORM
func (PlayerSeasonRecord) TableName() string {
	return "player_season_records"
}
