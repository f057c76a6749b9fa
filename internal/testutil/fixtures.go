package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sprintduel/ladder-server/internal/domain"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// PlayerBuilder creates test players with a builder pattern
type PlayerBuilder struct {
	displayName string
	password    string
	gems        int
}

// NewPlayerBuilder creates a new PlayerBuilder with default values
func NewPlayerBuilder() *PlayerBuilder {
	return &PlayerBuilder{
		displayName: fmt.Sprintf("testplayer_%s", uuid.New().String()[:8]),
		password:    "testpassword123",
	}
}

// WithDisplayName sets the display name
func (b *PlayerBuilder) WithDisplayName(name string) *PlayerBuilder {
	b.displayName = name
	return b
}

// WithPassword sets the password
func (b *PlayerBuilder) WithPassword(password string) *PlayerBuilder {
	b.password = password
	return b
}

// WithGems sets the starting gem balance
func (b *PlayerBuilder) WithGems(gems int) *PlayerBuilder {
	b.gems = gems
	return b
}

// Build creates the player in the database and returns the player with the raw password
func (b *PlayerBuilder) Build(t *testing.T, db *gorm.DB) (*domain.Player, string) {
	t.Helper()

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(b.password), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	player := &domain.Player{
		ID:           uuid.New(),
		DisplayName:  b.displayName,
		PasswordHash: string(hashedPassword),
		Gems:         b.gems,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if err := db.Create(player).Error; err != nil {
		t.Fatalf("failed to create player: %v", err)
	}

	return player, b.password
}

// AuthResponse matches the API auth response
type AuthResponse struct {
	Player struct {
		ID          string `json:"id"`
		DisplayName string `json:"displayName"`
		Gems        int    `json:"gems"`
	} `json:"player"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// BuildAndAuthenticate creates a player via API and returns the player and access token
func (b *PlayerBuilder) BuildAndAuthenticate(t *testing.T, ts *TestServer) (*domain.Player, string) {
	t.Helper()

	reqBody := map[string]string{
		"displayName": b.displayName,
		"password":    b.password,
	}
	body, _ := json.Marshal(reqBody)

	resp, err := http.Post(ts.APIURL("/auth/register"), "application/json", bytes.NewBuffer(body))
	if err != nil {
		t.Fatalf("failed to register player: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status code: %d", resp.StatusCode)
	}

	var authResp AuthResponse
	if err := json.NewDecoder(resp.Body).Decode(&authResp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	playerID, _ := uuid.Parse(authResp.Player.ID)
	player := &domain.Player{
		ID:          playerID,
		DisplayName: authResp.Player.DisplayName,
	}

	return player, authResp.AccessToken
}

// SeasonBuilder creates test seasons with a builder pattern
type SeasonBuilder struct {
	id              string
	number          int
	name            string
	start           time.Time
	end             time.Time
	resetGeneration int
}

// NewSeasonBuilder creates a new SeasonBuilder covering the present moment
func NewSeasonBuilder() *SeasonBuilder {
	now := time.Now().UTC()
	return &SeasonBuilder{
		id:     fmt.Sprintf("season_test_%s", uuid.New().String()[:8]),
		number: 1,
		name:   "Test Season",
		start:  now.AddDate(0, 0, -7),
		end:    now.AddDate(0, 0, 23),
	}
}

// WithID sets the season identifier
func (b *SeasonBuilder) WithID(id string) *SeasonBuilder {
	b.id = id
	return b
}

// WithNumber sets the season number
func (b *SeasonBuilder) WithNumber(number int) *SeasonBuilder {
	b.number = number
	return b
}

// WithName sets the season name
func (b *SeasonBuilder) WithName(name string) *SeasonBuilder {
	b.name = name
	return b
}

// WithWindow sets the start and end of the season
func (b *SeasonBuilder) WithWindow(start, end time.Time) *SeasonBuilder {
	b.start = start
	b.end = end
	return b
}

// Ended shifts the window fully into the past
func (b *SeasonBuilder) Ended() *SeasonBuilder {
	now := time.Now().UTC()
	b.start = now.AddDate(0, 0, -37)
	b.end = now.AddDate(0, 0, -7)
	return b
}

// WithResetGeneration sets the hard-reset generation counter
func (b *SeasonBuilder) WithResetGeneration(gen int) *SeasonBuilder {
	b.resetGeneration = gen
	return b
}

// Build creates the season in the database
func (b *SeasonBuilder) Build(t *testing.T, db *gorm.DB) *domain.SeasonInfo {
	t.Helper()

	season := &domain.SeasonInfo{
		ID:              b.id,
		Number:          b.number,
		Name:            b.name,
		StartDate:       b.start,
		EndDate:         b.end,
		DurationDays:    int(b.end.Sub(b.start).Hours() / 24),
		ResetGeneration: b.resetGeneration,
		CreatedAt:       time.Now(),
	}

	if err := db.Create(season).Error; err != nil {
		t.Fatalf("failed to create season: %v", err)
	}

	return season
}

// SeasonRecordBuilder creates frozen per-(player, season) outcome rows
type SeasonRecordBuilder struct {
	playerID uuid.UUID
	seasonID string
	peak     int
	claimed  bool
}

// NewSeasonRecordBuilder creates a new SeasonRecordBuilder
func NewSeasonRecordBuilder(playerID uuid.UUID, seasonID string) *SeasonRecordBuilder {
	return &SeasonRecordBuilder{
		playerID: playerID,
		seasonID: seasonID,
		peak:     1500,
	}
}

// WithPeak sets the frozen season peak
func (b *SeasonRecordBuilder) WithPeak(peak int) *SeasonRecordBuilder {
	b.peak = peak
	return b
}

// Claimed marks the record as already claimed
func (b *SeasonRecordBuilder) Claimed() *SeasonRecordBuilder {
	b.claimed = true
	return b
}

// Build creates the record in the database
func (b *SeasonRecordBuilder) Build(t *testing.T, db *gorm.DB) *domain.PlayerSeasonRecord {
	t.Helper()

	record := &domain.PlayerSeasonRecord{
		ID:                  uuid.New(),
		PlayerID:            b.playerID,
		SeasonID:            b.seasonID,
		PeakTrophies:        b.peak,
		FinalTier:           domain.GetTier(b.peak).Name,
		ClaimedSeasonReward: b.claimed,
		GemReward:           domain.CalculateSeasonReward(b.peak),
		CreatedAt:           time.Now(),
	}
	if b.claimed {
		now := time.Now()
		record.ClaimedAt = &now
	}

	if err := db.Create(record).Error; err != nil {
		t.Fatalf("failed to create season record: %v", err)
	}

	return record
}

// CreateAuthenticatedRequest creates an HTTP request with auth token
func CreateAuthenticatedRequest(t *testing.T, method, url string, body interface{}, token string) *http.Request {
	t.Helper()

	var bodyReader *bytes.Buffer
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		bodyReader = bytes.NewBuffer(jsonBody)
	} else {
		bodyReader = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequestWithContext(context.Background(), method, url, bodyReader)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return req
}
