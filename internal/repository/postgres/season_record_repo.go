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

type seasonRecordRepository struct {
	db *gorm.DB
}

func NewSeasonRecordRepository(db *gorm.DB) *seasonRecordRepository {
	return &seasonRecordRepository{db: db}
}

func (r *seasonRecordRepository) Get(ctx context.Context, playerID uuid.UUID, seasonID string) (*domain.PlayerSeasonRecord, error) {
	var record domain.PlayerSeasonRecord
	err := r.db.WithContext(ctx).
		First(&record, "player_id = ? AND season_id = ?", playerID, seasonID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrSeasonRecordNotFound
		}
		return nil, err
	}
	return &record, nil
}

// CreateIfAbsent relies on the (player_id, season_id) unique index: the
// insert is skipped when a row already holds a recorded peak, which makes
// repeated transition detection safe to re-run.
func (r *seasonRecordRepository) CreateIfAbsent(ctx context.Context, record *domain.PlayerSeasonRecord) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "player_id"}, {Name: "season_id"}},
			DoNothing: true,
		}).
		Create(record)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Claim flips claimed_season_reward and grants the gems inside one
// transaction. The row lock closes the race between two concurrent claims
// for the same season.
func (r *seasonRecordRepository) Claim(ctx context.Context, playerID uuid.UUID, seasonID string, now time.Time) (int, error) {
	var gems int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var record domain.PlayerSeasonRecord
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&record, "player_id = ? AND season_id = ?", playerID, seasonID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrSeasonRecordNotFound
			}
			return err
		}

		if record.ClaimedSeasonReward {
			return domain.ErrAlreadyClaimed
		}

		if err := tx.Model(&record).Updates(map[string]interface{}{
			"claimed_season_reward": true,
			"claimed_at":            now,
		}).Error; err != nil {
			return err
		}

		if err := tx.Model(&domain.Player{}).
			Where("id = ?", playerID).
			Update("gems", gorm.Expr("gems + ?", record.GemReward)).Error; err != nil {
			return err
		}

		gems = record.GemReward
		return nil
	})
	if err != nil {
		return 0, err
	}
	return gems, nil
}

func (r *seasonRecordRepository) ListByPlayer(ctx context.Context, playerID uuid.UUID) ([]*domain.PlayerSeasonRecord, error) {
	var records []*domain.PlayerSeasonRecord
	err := r.db.WithContext(ctx).
		Where("player_id = ?", playerID).
		Order("created_at DESC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}
