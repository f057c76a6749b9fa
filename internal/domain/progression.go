package domain

import (
	"time"

	"github.com/google/uuid"
)

// PrestigeThreshold is the trophy count required, on top of holding the top
// tier, before a prestige reset becomes available.
const PrestigeThreshold = 4600

// ProgressionState is a player's canonical ladder state. Trophies and
// prestige level are the stored facts; the tier is always derived from
// trophies and never persisted independently.
type ProgressionState struct {
	PlayerID        uuid.UUID `json:"playerId"`
	Trophies        int       `json:"trophies"`
	PrestigeLevel   int       `json:"prestigeLevel"`
	ResetGeneration int       `json:"resetGeneration"`
}

// CurrentTier derives the tier bracket from the trophy count
func (s *ProgressionState) CurrentTier() TierInfo {
	return GetTier(s.Trophies)
}

// PrestigeAvailable reports whether the prestige reset is currently unlocked
func (s *ProgressionState) PrestigeAvailable() bool {
	return s.CurrentTier().Name == TopTier().Name && s.Trophies >= PrestigeThreshold
}

// PeakTracker records the highest trophy count reached during one season.
// The peak never decreases while its season is active; it is reset to zero
// only at a season transition, never by ordinary reconciliation.
type PeakTracker struct {
	SeasonID     string `json:"seasonId"`
	PeakTrophies int    `json:"peakTrophies"`
}

// Observe folds a live trophy value into the peak, reporting whether it
// advanced
func (p *PeakTracker) Observe(trophies int) bool {
	if trophies > p.PeakTrophies {
		p.PeakTrophies = trophies
		return true
	}
	return false
}

// RemoteProgression is the per-player record held by the remote authority.
// LastUpdated is assigned server-side on every write; because local state
// only advances monotonically before a push, last-write-wins is safe.
type RemoteProgression struct {
	PlayerID               uuid.UUID `json:"playerId" gorm:"type:uuid;primary_key"`
	Trophies               int       `json:"trophies" gorm:"not null;default:0"`
	PrestigeLevel          int       `json:"prestigeLevel" gorm:"not null;default:0"`
	CurrentTier            Tier      `json:"currentTier" gorm:"type:varchar(20);not null;default:'Rookie'"`
	PeakTrophiesThisSeason int       `json:"peakTrophiesThisSeason" gorm:"not null;default:0"`
	CurrentSeasonID        string    `json:"currentSeasonId"`
	ResetGeneration        int       `json:"resetGeneration" gorm:"not null;default:0"`
	LastUpdated            time.Time `json:"lastUpdated" gorm:"autoUpdateTime"`
}

// TableName returns the table name for GORM
func (RemoteProgression) TableName() string {
	return "remote_progressions"
}

// PrestigeRecord is the immutable snapshot written when a prestige level is
// earned, keyed by (player, level). Re-writing the same key with the same
// content is a safe retry.
type PrestigeRecord struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	PlayerID     uuid.UUID `json:"playerId" gorm:"type:uuid;not null;uniqueIndex:idx_prestige_records_player_level"`
	Level        int       `json:"level" gorm:"not null;uniqueIndex:idx_prestige_records_player_level"`
	AchievedAt   time.Time `json:"achievedAt" gorm:"not null"`
	TotalMatches int       `json:"totalMatches" gorm:"not null;default:0"`
	TotalWins    int       `json:"totalWins" gorm:"not null;default:0"`
	PeakTrophies int       `json:"peakTrophies" gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (PrestigeRecord) TableName() string {
	return "prestige_records"
}
