package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/sprintduel/ladder-server/internal/api/middleware"
	"github.com/sprintduel/ladder-server/internal/domain"
	"github.com/sprintduel/ladder-server/internal/repository"
	"github.com/sprintduel/ladder-server/internal/service"
)

type ProgressionHandler struct {
	progression *service.ProgressionService
	prestige    *service.PrestigeService
	season      *service.SeasonService
	playerRepo  repository.PlayerRepository
}

func NewProgressionHandler(progression *service.ProgressionService, prestige *service.PrestigeService, season *service.SeasonService, playerRepo repository.PlayerRepository) *ProgressionHandler {
	return &ProgressionHandler{
		progression: progression,
		prestige:    prestige,
		season:      season,
		playerRepo:  playerRepo,
	}
}

// AddTrophiesRequest carries a match outcome. The delta policy is owned by
// the caller; this service only applies it.
type AddTrophiesRequest struct {
	Delta int   `json:"delta"`
	Won   *bool `json:"won,omitempty"`
}

type SetTrophiesRequest struct {
	Value int `json:"value"`
}

type ProgressionResponse struct {
	Trophies          int     `json:"trophies"`
	PrestigeLevel     int     `json:"prestigeLevel"`
	Tier              string  `json:"tier"`
	TierEmoji         string  `json:"tierEmoji"`
	TierProgress      float64 `json:"tierProgress"`
	PrestigeAvailable bool    `json:"prestigeAvailable"`
	SeasonPeak        int     `json:"seasonPeak"`
}

func (h *ProgressionHandler) progressionResponse(state *domain.ProgressionState) ProgressionResponse {
	tier := state.CurrentTier()
	return ProgressionResponse{
		Trophies:          state.Trophies,
		PrestigeLevel:     state.PrestigeLevel,
		Tier:              tier.Name.String(),
		TierEmoji:         tier.Emoji,
		TierProgress:      domain.NormalizedProgress(state.Trophies),
		PrestigeAvailable: state.PrestigeAvailable(),
		SeasonPeak:        h.season.PeakValue(state.PlayerID),
	}
}

// Get returns the player's current progression state
func (h *ProgressionHandler) Get(w http.ResponseWriter, r *http.Request) {
	playerID, ok := middleware.GetPlayerID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	state, err := h.progression.State(r.Context(), playerID)
	if err != nil {
		log.Printf("ERROR [progression.Get] failed to load state: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.progressionResponse(state))
}

// AddTrophies applies a match-outcome delta to the player's trophies
func (h *ProgressionHandler) AddTrophies(w http.ResponseWriter, r *http.Request) {
	playerID, ok := middleware.GetPlayerID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req AddTrophiesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	state, err := h.progression.AddTrophies(r.Context(), playerID, req.Delta)
	if err != nil {
		log.Printf("ERROR [progression.AddTrophies] failed to apply delta: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	// Lifetime match counters feed the prestige snapshot
	if req.Won != nil {
		if err := h.playerRepo.RecordMatch(r.Context(), playerID, *req.Won); err != nil {
			log.Printf("ERROR [progression.AddTrophies] failed to record match: %v", err)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.progressionResponse(state))
}

// SetTrophies sets an absolute trophy value (corrective resets)
func (h *ProgressionHandler) SetTrophies(w http.ResponseWriter, r *http.Request) {
	playerID, ok := middleware.GetPlayerID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req SetTrophiesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	state, err := h.progression.SetTrophies(r.Context(), playerID, req.Value)
	if err != nil {
		log.Printf("ERROR [progression.SetTrophies] failed to set value: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.progressionResponse(state))
}

type PrestigeResponse struct {
	Executed    bool                `json:"executed"`
	Progression ProgressionResponse `json:"progression"`
}

// ExecutePrestige runs the prestige reset; ineligible calls are a no-op
func (h *ProgressionHandler) ExecutePrestige(w http.ResponseWriter, r *http.Request) {
	playerID, ok := middleware.GetPlayerID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	state, executed, err := h.prestige.Execute(r.Context(), playerID)
	if err != nil {
		log.Printf("ERROR [progression.ExecutePrestige] failed: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	resp := PrestigeResponse{
		Executed:    executed,
		Progression: h.progressionResponse(state),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// Sync pulls the remote authority's snapshot through the reconciliation
// ratchet. Manual refresh for clients that suspect they are stale.
func (h *ProgressionHandler) Sync(w http.ResponseWriter, r *http.Request) {
	playerID, ok := middleware.GetPlayerID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := h.progression.Sync(r.Context(), playerID); err != nil {
		log.Printf("ERROR [progression.Sync] failed: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	state, err := h.progression.State(r.Context(), playerID)
	if err != nil {
		log.Printf("ERROR [progression.Sync] failed to load state: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.progressionResponse(state))
}
