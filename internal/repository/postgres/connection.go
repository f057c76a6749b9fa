package postgres

import (
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sprintduel/ladder-server/internal/domain"
	"github.com/sprintduel/ladder-server/internal/repository"
)

func NewConnection(databaseURL string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	// Auto-migrate tables
	err = db.AutoMigrate(
		&domain.Player{},
		&domain.PlayerSession{},
		&domain.SeasonInfo{},
		&domain.RemoteProgression{},
		&domain.PlayerSeasonRecord{},
		&domain.PrestigeRecord{},
	)
	if err != nil {
		return nil, err
	}

	return db, nil
}

// NewRepositories wires every Postgres-backed repository. The Leaderboard
// field is left for the caller: archived rankings live in Redis.
func NewRepositories(db *gorm.DB) *repository.Repositories {
	return &repository.Repositories{
		Player:       NewPlayerRepository(db),
		Session:      NewSessionRepository(db),
		Season:       NewSeasonRepository(db),
		SeasonRecord: NewSeasonRecordRepository(db),
		Remote:       NewRemoteProgressionStore(db),
	}
}
