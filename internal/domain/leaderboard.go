package domain

// LeaderboardEntry is one row of a frozen per-season ranking. Entries are
// produced by an external ranking process and are immutable once archived.
type LeaderboardEntry struct {
	Rank          int    `json:"rank"`
	PlayerID      string `json:"playerId"`
	DisplayName   string `json:"displayName"`
	Trophies      int    `json:"trophies"`
	Tier          Tier   `json:"tier"`
	PrestigeLevel int    `json:"prestigeLevel"`
}
