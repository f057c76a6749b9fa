package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sprintduel/ladder-server/internal/domain"
)

type playerRepository struct {
	db *gorm.DB
}

func NewPlayerRepository(db *gorm.DB) *playerRepository {
	return &playerRepository{db: db}
}

func (r *playerRepository) Create(ctx context.Context, player *domain.Player) error {
	return r.db.WithContext(ctx).Create(player).Error
}

func (r *playerRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Player, error) {
	var player domain.Player
	err := r.db.WithContext(ctx).First(&player, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrPlayerNotFound
		}
		return nil, err
	}
	return &player, nil
}

func (r *playerRepository) GetByDisplayName(ctx context.Context, displayName string) (*domain.Player, error) {
	var player domain.Player
	err := r.db.WithContext(ctx).First(&player, "display_name = ?", displayName).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrPlayerNotFound
		}
		return nil, err
	}
	return &player, nil
}

func (r *playerRepository) Update(ctx context.Context, player *domain.Player) error {
	return r.db.WithContext(ctx).Save(player).Error
}

func (r *playerRepository) RecordMatch(ctx context.Context, id uuid.UUID, won bool) error {
	updates := map[string]interface{}{
		"total_matches": gorm.Expr("total_matches + 1"),
	}
	if won {
		updates["total_wins"] = gorm.Expr("total_wins + 1")
	}
	return r.db.WithContext(ctx).
		Model(&domain.Player{}).
		Where("id = ?", id).
		Updates(updates).Error
}
