package handlers_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/sprintduel/ladder-server/internal/domain"
	"github.com/sprintduel/ladder-server/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeasonEndpoints_Get(t *testing.T) {
	ts := testutil.NewTestServer(t)
	_, token := testutil.NewPlayerBuilder().BuildAndAuthenticate(t, ts)

	// Establish a peak first so the estimate has something to work from
	req := testutil.CreateAuthenticatedRequest(t, http.MethodPut, ts.APIURL("/progression/trophies"),
		map[string]int{"value": 3800}, token)
	resp := doRequest(t, req)
	resp.Body.Close()

	req = testutil.CreateAuthenticatedRequest(t, http.MethodGet, ts.APIURL("/season/"), nil, token)
	resp = doRequest(t, req)
	defer resp.Body.Close()

	testutil.AssertStatusCode(t, resp, http.StatusOK)

	var body struct {
		Season struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"season"`
		RemainingSeconds int64  `json:"remainingSeconds"`
		SeasonPeak       int    `json:"seasonPeak"`
		RewardEstimate   int    `json:"rewardEstimate"`
		State            string `json:"state"`
	}
	testutil.AssertJSONResponse(t, resp, &body)
	assert.Equal(t, "season_default", body.Season.ID, "an empty seasons table falls back to the built-in season")
	assert.Greater(t, body.RemainingSeconds, int64(0))
	assert.Equal(t, 3800, body.SeasonPeak)
	assert.Equal(t, domain.CalculateSeasonReward(3800), body.RewardEstimate)
	assert.Equal(t, "active", body.State)
}

func TestSeasonEndpoints_ClaimOnlyGrantsOnce(t *testing.T) {
	ts := testutil.NewTestServer(t)
	player, token := testutil.NewPlayerBuilder().BuildAndAuthenticate(t, ts)

	testutil.NewSeasonRecordBuilder(player.ID, "season_041").
		WithPeak(3800).
		Build(t, ts.DB.DB)

	reward := domain.CalculateSeasonReward(3800)

	req := testutil.CreateAuthenticatedRequest(t, http.MethodPost, ts.APIURL("/season/season_041/claim"), nil, token)
	resp := doRequest(t, req)
	defer resp.Body.Close()

	testutil.AssertStatusCode(t, resp, http.StatusOK)

	var claim struct {
		SeasonID string `json:"seasonId"`
		Gems     int    `json:"gems"`
	}
	testutil.AssertJSONResponse(t, resp, &claim)
	assert.Equal(t, "season_041", claim.SeasonID)
	assert.Equal(t, reward, claim.Gems)

	// A repeat claim is still a 200 but grants nothing
	req = testutil.CreateAuthenticatedRequest(t, http.MethodPost, ts.APIURL("/season/season_041/claim"), nil, token)
	resp = doRequest(t, req)
	defer resp.Body.Close()

	testutil.AssertStatusCode(t, resp, http.StatusOK)
	testutil.AssertJSONResponse(t, resp, &claim)
	assert.Equal(t, 0, claim.Gems)

	stored, err := ts.Repos.Player.GetByID(context.Background(), player.ID)
	require.NoError(t, err)
	assert.Equal(t, reward, stored.Gems, "gems are granted exactly once")
}

func TestSeasonEndpoints_ClaimWithoutRecord(t *testing.T) {
	ts := testutil.NewTestServer(t)
	_, token := testutil.NewPlayerBuilder().BuildAndAuthenticate(t, ts)

	req := testutil.CreateAuthenticatedRequest(t, http.MethodPost, ts.APIURL("/season/season_never/claim"), nil, token)
	resp := doRequest(t, req)
	defer resp.Body.Close()

	testutil.AssertStatusCode(t, resp, http.StatusOK)

	var claim struct {
		Gems int `json:"gems"`
	}
	testutil.AssertJSONResponse(t, resp, &claim)
	assert.Equal(t, 0, claim.Gems)
}

func TestSeasonEndpoints_History(t *testing.T) {
	ts := testutil.NewTestServer(t)
	player, token := testutil.NewPlayerBuilder().BuildAndAuthenticate(t, ts)
	other, _ := testutil.NewPlayerBuilder().Build(t, ts.DB.DB)

	testutil.NewSeasonRecordBuilder(player.ID, "season_040").WithPeak(1200).Build(t, ts.DB.DB)
	testutil.NewSeasonRecordBuilder(player.ID, "season_041").WithPeak(2100).Claimed().Build(t, ts.DB.DB)
	testutil.NewSeasonRecordBuilder(other.ID, "season_041").WithPeak(900).Build(t, ts.DB.DB)

	req := testutil.CreateAuthenticatedRequest(t, http.MethodGet, ts.APIURL("/season/history"), nil, token)
	resp := doRequest(t, req)
	defer resp.Body.Close()

	testutil.AssertStatusCode(t, resp, http.StatusOK)

	var body struct {
		Records []struct {
			SeasonID            string `json:"seasonId"`
			PeakTrophies        int    `json:"peakTrophies"`
			GemReward           int    `json:"gemReward"`
			ClaimedSeasonReward bool   `json:"claimedSeasonReward"`
		} `json:"records"`
	}
	testutil.AssertJSONResponse(t, resp, &body)
	require.Len(t, body.Records, 2)
	for _, record := range body.Records {
		assert.Contains(t, []string{"season_040", "season_041"}, record.SeasonID)
	}
}

func TestSeasonEndpoints_Leaderboard(t *testing.T) {
	ts := testutil.NewTestServer(t)
	_, token := testutil.NewPlayerBuilder().BuildAndAuthenticate(t, ts)

	entries := []domain.LeaderboardEntry{
		{Rank: 1, DisplayName: "DashQueen", Trophies: 5200, Tier: domain.TierLegend},
		{Rank: 2, DisplayName: "TurboTed", Trophies: 4800, Tier: domain.TierLegend},
		{Rank: 3, DisplayName: "NitroNia", Trophies: 4100, Tier: domain.TierElite},
	}
	ts.Repos.Leaderboard.(*testutil.FakeLeaderboard).Archive("season_041", entries)

	req := testutil.CreateAuthenticatedRequest(t, http.MethodGet, ts.APIURL("/season/season_041/leaderboard"), nil, token)
	resp := doRequest(t, req)
	defer resp.Body.Close()

	testutil.AssertStatusCode(t, resp, http.StatusOK)

	var body struct {
		SeasonID string                    `json:"seasonId"`
		Entries  []domain.LeaderboardEntry `json:"entries"`
	}
	testutil.AssertJSONResponse(t, resp, &body)
	assert.Equal(t, "season_041", body.SeasonID)
	require.Len(t, body.Entries, 3)
	assert.Equal(t, "DashQueen", body.Entries[0].DisplayName)

	// The limit query caps the slice
	req = testutil.CreateAuthenticatedRequest(t, http.MethodGet, ts.APIURL("/season/season_041/leaderboard?limit=2"), nil, token)
	resp = doRequest(t, req)
	defer resp.Body.Close()

	testutil.AssertJSONResponse(t, resp, &body)
	assert.Len(t, body.Entries, 2)

	// An unknown season is an empty board, not an error
	req = testutil.CreateAuthenticatedRequest(t, http.MethodGet, ts.APIURL("/season/season_999/leaderboard"), nil, token)
	resp = doRequest(t, req)
	defer resp.Body.Close()

	testutil.AssertStatusCode(t, resp, http.StatusOK)
	testutil.AssertJSONResponse(t, resp, &body)
	assert.Empty(t, body.Entries)
}
