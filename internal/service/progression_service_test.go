package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sprintduel/ladder-server/internal/domain"
	"github.com/sprintduel/ladder-server/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressionService_State_SeedsDefaults(t *testing.T) {
	fx := newLadderFixture(t)
	ctx := context.Background()
	playerID := uuid.New()

	state, err := fx.progression.State(ctx, playerID)
	require.NoError(t, err)

	assert.Equal(t, 0, state.Trophies)
	assert.Equal(t, 0, state.PrestigeLevel)
	assert.Equal(t, domain.TierRookie, state.CurrentTier().Name)
	assert.False(t, state.PrestigeAvailable())
}

func TestProgressionService_AddTrophies(t *testing.T) {
	tests := []struct {
		name     string
		start    int
		delta    int
		want     int
		wantTier domain.Tier
	}{
		{"win adds trophies", 380, 25, 405, domain.TierSprinter},
		{"loss subtracts trophies", 500, -30, 470, domain.TierSprinter},
		{"loss floors at zero", 10, -50, 0, domain.TierRookie},
		{"zero delta is a no-op", 1200, 0, 1200, domain.TierRacer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newLadderFixture(t)
			ctx := context.Background()
			playerID := uuid.New()

			if tt.start != 0 {
				_, err := fx.progression.SetTrophies(ctx, playerID, tt.start)
				require.NoError(t, err)
			}

			state, err := fx.progression.AddTrophies(ctx, playerID, tt.delta)
			require.NoError(t, err)

			assert.Equal(t, tt.want, state.Trophies)
			assert.Equal(t, tt.wantTier, state.CurrentTier().Name)
		})
	}
}

func TestProgressionService_TierChangedFiresOncePerCrossing(t *testing.T) {
	fx := newLadderFixture(t)
	ctx := context.Background()
	playerID := uuid.New()

	ch, cancel := fx.bus.Subscribe(64)
	defer cancel()

	// A single jump across five bracket boundaries
	_, err := fx.progression.AddTrophies(ctx, playerID, 5000)
	require.NoError(t, err)

	assert.Equal(t, 1, countEvents(ch, events.TypeTierChanged),
		"one delta, one tier change, no matter how many brackets it crossed")

	// Movement within a bracket fires none
	_, err = fx.progression.AddTrophies(ctx, playerID, 10)
	require.NoError(t, err)
	assert.Equal(t, 0, countEvents(ch, events.TypeTierChanged))
}

func TestProgressionService_ProgressionChangedAlwaysFires(t *testing.T) {
	fx := newLadderFixture(t)
	ctx := context.Background()
	playerID := uuid.New()

	ch, cancel := fx.bus.Subscribe(64)
	defer cancel()

	_, err := fx.progression.AddTrophies(ctx, playerID, 10)
	require.NoError(t, err)
	_, err = fx.progression.AddTrophies(ctx, playerID, -10)
	require.NoError(t, err)

	assert.Equal(t, 2, countEvents(ch, events.TypeProgressionChanged))
}

func TestProgressionService_MutationUpdatesSeasonPeak(t *testing.T) {
	fx := newLadderFixture(t)
	ctx := context.Background()
	playerID := uuid.New()

	_, err := fx.progression.AddTrophies(ctx, playerID, 700)
	require.NoError(t, err)
	assert.Equal(t, 700, fx.season.PeakValue(playerID))

	// Losses leave the peak where it was
	_, err = fx.progression.AddTrophies(ctx, playerID, -200)
	require.NoError(t, err)
	assert.Equal(t, 700, fx.season.PeakValue(playerID))
}

func TestProgressionService_Reconcile(t *testing.T) {
	tests := []struct {
		name          string
		localTrophies int
		remote        domain.RemoteProgression
		wantAdopted   bool
		wantTrophies  int
		wantPrestige  int
	}{
		{
			name:          "stale remote is ignored",
			localTrophies: 1000,
			remote:        domain.RemoteProgression{Trophies: 800},
			wantAdopted:   false,
			wantTrophies:  1000,
		},
		{
			name:          "remote ahead on trophies is adopted",
			localTrophies: 1000,
			remote:        domain.RemoteProgression{Trophies: 1400},
			wantAdopted:   true,
			wantTrophies:  1400,
		},
		{
			name:          "remote ahead on prestige is adopted even with fewer trophies",
			localTrophies: 5200,
			remote:        domain.RemoteProgression{Trophies: 120, PrestigeLevel: 1},
			wantAdopted:   true,
			wantTrophies:  120,
			wantPrestige:  1,
		},
		{
			name:          "hard reset honored only via generation advance",
			localTrophies: 3200,
			remote:        domain.RemoteProgression{Trophies: 0, ResetGeneration: 1},
			wantAdopted:   true,
			wantTrophies:  0,
		},
		{
			name:          "equal trophies re-adopts without harm",
			localTrophies: 1000,
			remote:        domain.RemoteProgression{Trophies: 1000},
			wantAdopted:   true,
			wantTrophies:  1000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newLadderFixture(t)
			ctx := context.Background()
			playerID := uuid.New()

			if tt.localTrophies != 0 {
				_, err := fx.progression.SetTrophies(ctx, playerID, tt.localTrophies)
				require.NoError(t, err)
			}

			remote := tt.remote
			remote.PlayerID = playerID

			adopted, err := fx.progression.Reconcile(ctx, playerID, &remote)
			require.NoError(t, err)
			assert.Equal(t, tt.wantAdopted, adopted)

			state, err := fx.progression.State(ctx, playerID)
			require.NoError(t, err)
			assert.Equal(t, tt.wantTrophies, state.Trophies)
			assert.Equal(t, tt.wantPrestige, state.PrestigeLevel)
		})
	}
}

func TestProgressionService_Sync_SeedsUnknownPlayer(t *testing.T) {
	fx := newLadderFixture(t)
	ctx := context.Background()
	playerID := uuid.New()

	_, err := fx.progression.SetTrophies(ctx, playerID, 2345)
	require.NoError(t, err)

	require.NoError(t, fx.progression.Sync(ctx, playerID))

	// The push is fire-and-forget; give it a moment to land in the stub.
	require.Eventually(t, func() bool {
		remote, err := fx.remote.Fetch(ctx, playerID)
		return err == nil && remote.Trophies == 2345
	}, 2*time.Second, 10*time.Millisecond)
}

func TestProgressionService_Sync_AdoptsRemoteAdvance(t *testing.T) {
	fx := newLadderFixture(t)
	ctx := context.Background()
	playerID := uuid.New()

	_, err := fx.progression.SetTrophies(ctx, playerID, 500)
	require.NoError(t, err)

	require.NoError(t, fx.remote.Push(ctx, &domain.RemoteProgression{
		PlayerID: playerID,
		Trophies: 900,
	}))

	require.NoError(t, fx.progression.Sync(ctx, playerID))

	state, err := fx.progression.State(ctx, playerID)
	require.NoError(t, err)
	assert.Equal(t, 900, state.Trophies)
}

func TestProgressionService_MutationPushesToRemote(t *testing.T) {
	fx := newLadderFixture(t)
	ctx := context.Background()
	playerID := uuid.New()

	_, err := fx.progression.AddTrophies(ctx, playerID, 1500)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		remote, err := fx.remote.Fetch(ctx, playerID)
		return err == nil && remote.Trophies == 1500 && remote.CurrentTier == domain.TierRacer
	}, 2*time.Second, 10*time.Millisecond)
}
