package domain_test

import (
	"testing"

	"github.com/sprintduel/ladder-server/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTierTable_Contiguous(t *testing.T) {
	require.NotEmpty(t, domain.TierTable)

	assert.Equal(t, 0, domain.TierTable[0].MinTrophies, "table must start at zero")

	for i := 0; i < len(domain.TierTable)-1; i++ {
		current := domain.TierTable[i]
		next := domain.TierTable[i+1]
		assert.Equal(t, current.MaxTrophies+1, next.MinTrophies,
			"gap or overlap between %s and %s", current.Name, next.Name)
	}

	assert.Equal(t, domain.NoTrophyCap, domain.TopTier().MaxTrophies, "top tier must be uncapped")
}

func TestGetTier(t *testing.T) {
	tests := []struct {
		name     string
		trophies int
		want     domain.Tier
	}{
		{"zero trophies", 0, domain.TierRookie},
		{"top of first bracket", 399, domain.TierRookie},
		{"exact bracket boundary", 400, domain.TierSprinter},
		{"mid bracket", 1500, domain.TierRacer},
		{"pro floor", 2000, domain.TierPro},
		{"elite floor", 3500, domain.TierElite},
		{"legend floor", 4500, domain.TierLegend},
		{"far above top bracket", 99999, domain.TierLegend},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.GetTier(tt.trophies).Name)
		})
	}
}

func TestGetTier_EveryBoundaryResolvesToOwnTier(t *testing.T) {
	for _, info := range domain.TierTable {
		assert.Equal(t, info.Name, domain.GetTier(info.MinTrophies).Name,
			"min boundary of %s", info.Name)
		if info.MaxTrophies != domain.NoTrophyCap {
			assert.Equal(t, info.Name, domain.GetTier(info.MaxTrophies).Name,
				"max boundary of %s", info.Name)
		}
	}
}

func TestNormalizedProgress(t *testing.T) {
	tests := []struct {
		name     string
		trophies int
		want     float64
	}{
		{"start of bracket", 0, 0},
		{"end of first bracket", 399, 1},
		{"halfway through racer", 1500, 0.5004995004995005},
		{"top tier always full", 5000, 1},
		{"top tier floor", 4500, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, domain.NormalizedProgress(tt.trophies), 0.01)
		})
	}
}

func TestTier_IsValid(t *testing.T) {
	for _, info := range domain.TierTable {
		assert.True(t, info.Name.IsValid())
	}
	assert.False(t, domain.Tier("Diamond").IsValid())
	assert.False(t, domain.Tier("").IsValid())
}
