package domain

// Tier represents a named rank bracket on the trophy ladder
type Tier string

const (
	TierRookie   Tier = "Rookie"
	TierSprinter Tier = "Sprinter"
	TierRacer    Tier = "Racer"
	TierPro      Tier = "Pro"
	TierElite    Tier = "Elite"
	TierLegend   Tier = "Legend"
)

// NoTrophyCap marks the top tier's open upper bound
const NoTrophyCap = -1

// TierInfo describes one bracket of the static tier table
type TierInfo struct {
	Name        Tier   `json:"name"`
	MinTrophies int    `json:"minTrophies"`
	MaxTrophies int    `json:"maxTrophies"` // NoTrophyCap for the top tier
	Color       string `json:"color"`
	Emoji       string `json:"emoji"`
}

// TierTable contains all brackets in ascending order. The table is contiguous:
// each bracket's max + 1 is the next bracket's min, so any non-negative trophy
// count resolves to exactly one tier.
var TierTable = []TierInfo{
	{Name: TierRookie, MinTrophies: 0, MaxTrophies: 399, Color: "#9e9e9e", Emoji: "🌱"},
	{Name: TierSprinter, MinTrophies: 400, MaxTrophies: 999, Color: "#8d6e63", Emoji: "👟"},
	{Name: TierRacer, MinTrophies: 1000, MaxTrophies: 1999, Color: "#42a5f5", Emoji: "🏃"},
	{Name: TierPro, MinTrophies: 2000, MaxTrophies: 3499, Color: "#ab47bc", Emoji: "🥈"},
	{Name: TierElite, MinTrophies: 3500, MaxTrophies: 4499, Color: "#ffa726", Emoji: "🥇"},
	{Name: TierLegend, MinTrophies: 4500, MaxTrophies: NoTrophyCap, Color: "#ef5350", Emoji: "🏆"},
}

// TopTier returns the uncapped bracket at the top of the table
func TopTier() TierInfo {
	return TierTable[len(TierTable)-1]
}

// LowestTier returns the bracket a fresh player starts in
func LowestTier() TierInfo {
	return TierTable[0]
}

// GetTier resolves a trophy count to its bracket by scanning from the top
// tier downward and returning the first whose minimum is met. Trophies are
// clamped to >= 0 by callers, never here.
func GetTier(trophies int) TierInfo {
	for i := len(TierTable) - 1; i >= 0; i-- {
		if trophies >= TierTable[i].MinTrophies {
			return TierTable[i]
		}
	}
	return TierTable[0]
}

// NormalizedProgress reports how far through its bracket a trophy count sits,
// in [0, 1]. The uncapped top tier always reports 1.
func NormalizedProgress(trophies int) float64 {
	info := GetTier(trophies)
	if info.MaxTrophies == NoTrophyCap {
		return 1.0
	}
	span := float64(info.MaxTrophies - info.MinTrophies)
	p := float64(trophies-info.MinTrophies) / span
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// IsValid checks if a tier name appears in the table
func (t Tier) IsValid() bool {
	for _, info := range TierTable {
		if info.Name == t {
			return true
		}
	}
	return false
}

// String returns the string representation of the tier
func (t Tier) String() string {
	return string(t)
}
