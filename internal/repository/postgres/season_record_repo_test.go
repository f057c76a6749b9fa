package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sprintduel/ladder-server/internal/domain"
	"github.com/sprintduel/ladder-server/internal/repository/postgres"
	"github.com/sprintduel/ladder-server/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeasonRecordRepository_CreateIfAbsent(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewSeasonRecordRepository(testDB.DB)
	ctx := context.Background()

	player, _ := testutil.NewPlayerBuilder().Build(t, testDB.DB)

	record := &domain.PlayerSeasonRecord{
		ID:           uuid.New(),
		PlayerID:     player.ID,
		SeasonID:     "season_001",
		PeakTrophies: 2400,
		FinalTier:    domain.TierPro,
		GemReward:    domain.CalculateSeasonReward(2400),
	}

	created, err := repo.CreateIfAbsent(ctx, record)
	require.NoError(t, err)
	assert.True(t, created)

	// A second transition detection for the same season is a no-op
	duplicate := *record
	duplicate.ID = uuid.New()
	duplicate.PeakTrophies = 9999
	created, err = repo.CreateIfAbsent(ctx, &duplicate)
	require.NoError(t, err)
	assert.False(t, created)

	stored, err := repo.Get(ctx, player.ID, "season_001")
	require.NoError(t, err)
	assert.Equal(t, 2400, stored.PeakTrophies, "the original frozen peak must survive")
}

func TestSeasonRecordRepository_Get_NotFound(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewSeasonRecordRepository(testDB.DB)
	ctx := context.Background()

	_, err := repo.Get(ctx, uuid.New(), "season_missing")
	assert.ErrorIs(t, err, domain.ErrSeasonRecordNotFound)
}

func TestSeasonRecordRepository_Claim(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewSeasonRecordRepository(testDB.DB)
	playerRepo := postgres.NewPlayerRepository(testDB.DB)
	ctx := context.Background()

	player, _ := testutil.NewPlayerBuilder().WithGems(10).Build(t, testDB.DB)

	reward := domain.CalculateSeasonReward(3800)
	testutil.NewSeasonRecordBuilder(player.ID, "season_001").
		WithPeak(3800).
		Build(t, testDB.DB)

	// First claim grants the gems and stamps the record
	gems, err := repo.Claim(ctx, player.ID, "season_001", time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, reward, gems)

	record, err := repo.Get(ctx, player.ID, "season_001")
	require.NoError(t, err)
	assert.True(t, record.ClaimedSeasonReward)
	require.NotNil(t, record.ClaimedAt)

	updated, err := playerRepo.GetByID(ctx, player.ID)
	require.NoError(t, err)
	assert.Equal(t, 10+reward, updated.Gems)

	// Second claim is rejected and grants nothing
	gems, err = repo.Claim(ctx, player.ID, "season_001", time.Now().UTC())
	assert.ErrorIs(t, err, domain.ErrAlreadyClaimed)
	assert.Equal(t, 0, gems)

	updated, err = playerRepo.GetByID(ctx, player.ID)
	require.NoError(t, err)
	assert.Equal(t, 10+reward, updated.Gems, "gems are granted exactly once")
}

func TestSeasonRecordRepository_Claim_NoRecord(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewSeasonRecordRepository(testDB.DB)
	ctx := context.Background()

	player, _ := testutil.NewPlayerBuilder().Build(t, testDB.DB)

	gems, err := repo.Claim(ctx, player.ID, "season_never", time.Now().UTC())
	assert.ErrorIs(t, err, domain.ErrSeasonRecordNotFound)
	assert.Equal(t, 0, gems)
}

func TestSeasonRecordRepository_ListByPlayer(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewSeasonRecordRepository(testDB.DB)
	ctx := context.Background()

	player, _ := testutil.NewPlayerBuilder().Build(t, testDB.DB)
	other, _ := testutil.NewPlayerBuilder().Build(t, testDB.DB)

	testutil.NewSeasonRecordBuilder(player.ID, "season_001").WithPeak(1200).Build(t, testDB.DB)
	testutil.NewSeasonRecordBuilder(player.ID, "season_002").WithPeak(2100).Build(t, testDB.DB)
	testutil.NewSeasonRecordBuilder(other.ID, "season_002").WithPeak(600).Build(t, testDB.DB)

	records, err := repo.ListByPlayer(ctx, player.ID)
	require.NoError(t, err)
	assert.Len(t, records, 2)
	for _, record := range records {
		assert.Equal(t, player.ID, record.PlayerID)
	}
}
