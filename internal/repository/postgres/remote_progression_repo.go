package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sprintduel/ladder-server/internal/domain"
)

type remoteProgressionStore struct {
	db *gorm.DB
}

func NewRemoteProgressionStore(db *gorm.DB) *remoteProgressionStore {
	return &remoteProgressionStore{db: db}
}

func (r *remoteProgressionStore) Fetch(ctx context.Context, playerID uuid.UUID) (*domain.RemoteProgression, error) {
	var state domain.RemoteProgression
	err := r.db.WithContext(ctx).First(&state, "player_id = ?", playerID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrPlayerNotFound
		}
		return nil, err
	}
	return &state, nil
}

// Push overwrites the full remote record. The write time is stamped here so
// callers cannot forge it; last-write-wins is safe because local state only
// advances monotonically before a push.
func (r *remoteProgressionStore) Push(ctx context.Context, state *domain.RemoteProgression) error {
	state.LastUpdated = time.Now().UTC()
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "player_id"}},
			UpdateAll: true,
		}).
		Create(state).Error
}

// SavePrestigeRecord upserts on (player_id, level); replaying the same
// snapshot after a failed ack changes nothing.
func (r *remoteProgressionStore) SavePrestigeRecord(ctx context.Context, record *domain.PrestigeRecord) error {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "player_id"}, {Name: "level"}},
			UpdateAll: true,
		}).
		Create(record).Error
}
