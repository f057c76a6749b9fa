package postgres

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sprintduel/ladder-server/internal/domain"
)

type sessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *sessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Create(ctx context.Context, session *domain.PlayerSession) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *sessionRepository) GetByPlayerID(ctx context.Context, playerID uuid.UUID) (*domain.PlayerSession, error) {
	var session domain.PlayerSession
	err := r.db.WithContext(ctx).First(&session, "player_id = ?", playerID).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.PlayerSession{}, "id = ?", id).Error
}

func (r *sessionRepository) DeleteByPlayerID(ctx context.Context, playerID uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.PlayerSession{}, "player_id = ?", playerID).Error
}
