package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/sprintduel/ladder-server/internal/domain"
)

type PlayerRepository interface {
	Create(ctx context.Context, player *domain.Player) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Player, error)
	GetByDisplayName(ctx context.Context, displayName string) (*domain.Player, error)
	Update(ctx context.Context, player *domain.Player) error
	RecordMatch(ctx context.Context, id uuid.UUID, won bool) error
}

type SessionRepository interface {
	Create(ctx context.Context, session *domain.PlayerSession) error
	GetByPlayerID(ctx context.Context, playerID uuid.UUID) (*domain.PlayerSession, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByPlayerID(ctx context.Context, playerID uuid.UUID) error
}

// SeasonRepository reads the season-authority feed. The feed owns SeasonInfo;
// this service never mutates it.
type SeasonRepository interface {
	GetCurrent(ctx context.Context, now time.Time) (*domain.SeasonInfo, error)
	GetByID(ctx context.Context, id string) (*domain.SeasonInfo, error)
}

// SeasonRecordRepository owns the append-only per-(player, season) outcome
// rows and the one sanctioned mutation: the claim transition.
type SeasonRecordRepository interface {
	Get(ctx context.Context, playerID uuid.UUID, seasonID string) (*domain.PlayerSeasonRecord, error)
	// CreateIfAbsent inserts the record unless one already exists for the
	// (player, season) pair. Re-running a transition is therefore safe.
	CreateIfAbsent(ctx context.Context, record *domain.PlayerSeasonRecord) (created bool, err error)
	// Claim atomically marks the record claimed and grants its gems to the
	// player balance. Both effects commit together or neither does. Returns
	// domain.ErrAlreadyClaimed when the record was claimed before.
	Claim(ctx context.Context, playerID uuid.UUID, seasonID string, now time.Time) (gems int, err error)
	ListByPlayer(ctx context.Context, playerID uuid.UUID) ([]*domain.PlayerSeasonRecord, error)
}

// RemoteProgressionStore is the eventually-consistent remote authority for
// canonical progression state. The real adapter talks to Postgres; a
// local-only stub stands in when no backend is configured. The choice is
// made once at construction.
type RemoteProgressionStore interface {
	// Fetch returns domain.ErrPlayerNotFound for players the authority has
	// never seen; callers seed defaults instead of failing.
	Fetch(ctx context.Context, playerID uuid.UUID) (*domain.RemoteProgression, error)
	// Push is a full-state overwrite. The write time is assigned by the
	// store, not the caller.
	Push(ctx context.Context, state *domain.RemoteProgression) error
	// SavePrestigeRecord upserts the immutable per-level snapshot; retrying
	// with identical content is a no-op.
	SavePrestigeRecord(ctx context.Context, record *domain.PrestigeRecord) error
}

// LeaderboardRepository reads frozen per-season rankings produced by an
// external ranking process.
type LeaderboardRepository interface {
	LoadSeason(ctx context.Context, seasonID string, limit int) ([]domain.LeaderboardEntry, error)
}

type Repositories struct {
	Player       PlayerRepository
	Session      SessionRepository
	Season       SeasonRepository
	SeasonRecord SeasonRecordRepository
	Remote       RemoteProgressionStore
	Leaderboard  LeaderboardRepository
}
