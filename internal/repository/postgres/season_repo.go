package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/sprintduel/ladder-server/internal/domain"
)

type seasonRepository struct {
	db *gorm.DB
}

func NewSeasonRepository(db *gorm.DB) *seasonRepository {
	return &seasonRepository{db: db}
}

// GetCurrent returns the season whose window covers now. When several
// overlap, the newest start date wins.
func (r *seasonRepository) GetCurrent(ctx context.Context, now time.Time) (*domain.SeasonInfo, error) {
	var season domain.SeasonInfo
	err := r.db.WithContext(ctx).
		Where("start_date <= ? AND end_date > ?", now, now).
		Order("start_date DESC").
		First(&season).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrSeasonNotFound
		}
		return nil, err
	}
	return &season, nil
}

func (r *seasonRepository) GetByID(ctx context.Context, id string) (*domain.SeasonInfo, error) {
	var season domain.SeasonInfo
	err := r.db.WithContext(ctx).First(&season, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrSeasonNotFound
		}
		return nil, err
	}
	return &season, nil
}
