package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// APIClient handles HTTP communication with the backend
type APIClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewAPIClient creates a new API client
func NewAPIClient(baseURL string) *APIClient {
	return &APIClient{
		baseURL: baseURL + "/api/v1",
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Response types matching backend

type Player struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Gems        int    `json:"gems"`
}

type AuthResponse struct {
	Player       Player `json:"player"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type Progression struct {
	Trophies      int     `json:"trophies"`
	Tier          string  `json:"tier"`
	TierEmoji     string  `json:"tierEmoji"`
	TierProgress  float64 `json:"tierProgress"`
	PrestigeLevel int     `json:"prestigeLevel"`
	CanPrestige   bool    `json:"prestigeAvailable"`
	SeasonPeak    int     `json:"seasonPeak"`
}

type PrestigeResult struct {
	Executed    bool        `json:"executed"`
	Progression Progression `json:"progression"`
}

type Season struct {
	ID               string
	Name             string
	RemainingSeconds int64
	RewardEstimate   int
}

// seasonResponse mirrors the wire shape; the season fields come nested
type seasonResponse struct {
	Season struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"season"`
	RemainingSeconds int64 `json:"remainingSeconds"`
	RewardEstimate   int   `json:"rewardEstimate"`
}

// RegisterPlayer creates a new player account
func (c *APIClient) RegisterPlayer(baseName string) (*Player, string, error) {
	displayName := fmt.Sprintf("%s_%d", baseName, time.Now().UnixNano()%100000)

	body := map[string]string{
		"displayName": displayName,
		"password":    "testpassword123",
	}

	resp, err := c.post("/auth/register", body, "")
	if err != nil {
		return nil, "", fmt.Errorf("register request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, "", fmt.Errorf("register failed (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	var result AuthResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, "", fmt.Errorf("failed to decode response: %w", err)
	}

	return &result.Player, result.AccessToken, nil
}

// GetProgression fetches the player's current ladder standing
func (c *APIClient) GetProgression(token string) (*Progression, error) {
	resp, err := c.get("/progression/", token)
	if err != nil {
		return nil, fmt.Errorf("get progression request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("get progression failed (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	var prog Progression
	if err := json.NewDecoder(resp.Body).Decode(&prog); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &prog, nil
}

// ReportMatch applies a match outcome as a trophy delta
func (c *APIClient) ReportMatch(token string, delta int, won bool) (*Progression, error) {
	body := map[string]interface{}{
		"delta": delta,
		"won":   won,
	}

	resp, err := c.post("/progression/trophies", body, token)
	if err != nil {
		return nil, fmt.Errorf("report match request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("report match failed (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	var prog Progression
	if err := json.NewDecoder(resp.Body).Decode(&prog); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &prog, nil
}

// ExecutePrestige attempts a prestige reset
func (c *APIClient) ExecutePrestige(token string) (*PrestigeResult, error) {
	resp, err := c.post("/progression/prestige", nil, token)
	if err != nil {
		return nil, fmt.Errorf("prestige request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("prestige failed (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	var result PrestigeResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &result, nil
}

// GetSeason fetches the current season window
func (c *APIClient) GetSeason(token string) (*Season, error) {
	resp, err := c.get("/season/", token)
	if err != nil {
		return nil, fmt.Errorf("get season request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("get season failed (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	var wire seasonResponse
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &Season{
		ID:               wire.Season.ID,
		Name:             wire.Season.Name,
		RemainingSeconds: wire.RemainingSeconds,
		RewardEstimate:   wire.RewardEstimate,
	}, nil
}

// HTTP helpers

func (c *APIClient) get(path, token string) (*http.Response, error) {
	req, err := http.NewRequest("GET", c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.httpClient.Do(req)
}

func (c *APIClient) post(path string, body interface{}, token string) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequest("POST", c.baseURL+path, bodyReader)
	if err != nil {
		return nil, err
	}

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.httpClient.Do(req)
}
