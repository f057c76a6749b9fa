package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sprintduel/ladder-server/internal/api/middleware"
	"github.com/sprintduel/ladder-server/internal/domain"
	"github.com/sprintduel/ladder-server/internal/service"
)

type SeasonHandler struct {
	season      *service.SeasonService
	reward      *service.RewardService
	leaderboard *service.LeaderboardService
}

func NewSeasonHandler(season *service.SeasonService, reward *service.RewardService, leaderboard *service.LeaderboardService) *SeasonHandler {
	return &SeasonHandler{
		season:      season,
		reward:      reward,
		leaderboard: leaderboard,
	}
}

type SeasonResponse struct {
	Season *domain.SeasonInfo `json:"season"`
	// RemainingSeconds is computed server-side so clients need no clock sync
	RemainingSeconds int64 `json:"remainingSeconds"`
	SeasonPeak       int   `json:"seasonPeak"`
	// RewardEstimate is advisory; the frozen end-of-season record is the
	// only authoritative figure
	RewardEstimate int    `json:"rewardEstimate"`
	State          string `json:"state"`
}

// Get returns the active season with the caller's peak and live estimate
func (h *SeasonHandler) Get(w http.ResponseWriter, r *http.Request) {
	playerID, ok := middleware.GetPlayerID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	season := h.season.Current()
	if season == nil {
		http.Error(w, "Season not loaded", http.StatusServiceUnavailable)
		return
	}

	resp := SeasonResponse{
		Season:           season,
		RemainingSeconds: int64(season.RemainingAt(time.Now()) / time.Second),
		SeasonPeak:       h.season.PeakValue(playerID),
		RewardEstimate:   h.season.RewardEstimate(playerID),
		State:            h.season.State().String(),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

type ClaimResponse struct {
	SeasonID string `json:"seasonId"`
	Gems     int    `json:"gems"`
}

// Claim grants the season reward. Already-claimed and failed claims both
// come back as zero gems with a 200; the claim is never a user-facing error.
func (h *SeasonHandler) Claim(w http.ResponseWriter, r *http.Request) {
	playerID, ok := middleware.GetPlayerID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	seasonID := chi.URLParam(r, "seasonId")
	if seasonID == "" {
		http.Error(w, "Season ID required", http.StatusBadRequest)
		return
	}

	gems := h.reward.ClaimSeasonReward(r.Context(), playerID, seasonID)

	resp := ClaimResponse{SeasonID: seasonID, Gems: gems}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

type SeasonHistoryResponse struct {
	Records []*domain.PlayerSeasonRecord `json:"records"`
}

// History lists the caller's frozen season records
func (h *SeasonHandler) History(w http.ResponseWriter, r *http.Request) {
	playerID, ok := middleware.GetPlayerID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	records, err := h.reward.History(r.Context(), playerID)
	if err != nil {
		log.Printf("ERROR [season.History] failed to list records: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(SeasonHistoryResponse{Records: records})
}

type LeaderboardResponse struct {
	SeasonID string                    `json:"seasonId"`
	Entries  []domain.LeaderboardEntry `json:"entries"`
}

// Leaderboard returns the frozen ranking archived for a past season
func (h *SeasonHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	seasonID := chi.URLParam(r, "seasonId")
	if seasonID == "" {
		http.Error(w, "Season ID required", http.StatusBadRequest)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	entries, err := h.leaderboard.LoadSeasonLeaderboard(r.Context(), seasonID, limit)
	if err != nil {
		log.Printf("ERROR [season.Leaderboard] failed to load: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	resp := LeaderboardResponse{SeasonID: seasonID, Entries: entries}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
