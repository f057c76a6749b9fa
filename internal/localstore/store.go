// Package localstore provides the write-through local persistence layer for
// ladder state. It is a per-player key→value table on SQLite, using the
// pure-Go modernc.org/sqlite driver to avoid CGO dependencies. Local state is
// always written before any remote push, so gameplay never waits on the
// network.
package localstore

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/google/uuid"
)

// Keys of the persisted local layout. One row per (player, key).
const (
	KeyTrophies              = "trophies"
	KeyPrestigeLevel         = "prestigeLevel"
	KeyPeakTrophies          = "peakTrophiesThisSeason"
	KeyCurrentSeasonID       = "currentSeasonId"
	KeyPrestigeNotified      = "prestigeNotifiedFlag"
	KeySeasonEndingSoonFired = "seasonEndingSoonFiredFlag"
	KeyResetGeneration       = "resetGeneration"
)

// Store manages the SQLite database connection for ladder state persistence.
type Store struct {
	db *sql.DB
}

// Open creates or opens a SQLite database at the given path. It creates the
// parent directories if needed and runs migrations. An empty path opens an
// in-memory database.
func Open(dbPath string) (*Store, error) {
	if dbPath == "" {
		dbPath = ":memory:"
	}
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("localstore: cannot create directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("localstore: cannot open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("localstore: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("localstore: migration failed: %w", err)
	}

	return store, nil
}

func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS ladder_state (
			player_id  TEXT NOT NULL,
			key        TEXT NOT NULL,
			value      TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (player_id, key)
		);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the stored value for a player's key, or ok=false if unset.
func (s *Store) Get(playerID uuid.UUID, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow(
		`SELECT value FROM ladder_state WHERE player_id = ? AND key = ?`,
		playerID.String(), key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("localstore: get %s: %w", key, err)
	}
	return value, true, nil
}

// Put upserts the value for a player's key.
func (s *Store) Put(playerID uuid.UUID, key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO ladder_state (player_id, key, value, updated_at)
		 VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT (player_id, key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		playerID.String(), key, value,
	)
	if err != nil {
		return fmt.Errorf("localstore: put %s: %w", key, err)
	}
	return nil
}

// GetInt returns the integer value for a player's key, or fallback if unset.
func (s *Store) GetInt(playerID uuid.UUID, key string, fallback int) (int, error) {
	raw, ok, err := s.Get(playerID, key)
	if err != nil || !ok {
		return fallback, err
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback, nil
	}
	return n, nil
}

// PutInt stores an integer value for a player's key.
func (s *Store) PutInt(playerID uuid.UUID, key string, value int) error {
	return s.Put(playerID, key, strconv.Itoa(value))
}

// GetBool returns the boolean value for a player's key, or false if unset.
func (s *Store) GetBool(playerID uuid.UUID, key string) (bool, error) {
	raw, ok, err := s.Get(playerID, key)
	if err != nil || !ok {
		return false, err
	}
	return raw == "1" || raw == "true", nil
}

// PutBool stores a boolean value for a player's key.
func (s *Store) PutBool(playerID uuid.UUID, key string, value bool) error {
	if value {
		return s.Put(playerID, key, "1")
	}
	return s.Put(playerID, key, "0")
}

// Delete removes a player's key. Missing keys are not an error.
func (s *Store) Delete(playerID uuid.UUID, key string) error {
	_, err := s.db.Exec(
		`DELETE FROM ladder_state WHERE player_id = ? AND key = ?`,
		playerID.String(), key,
	)
	if err != nil {
		return fmt.Errorf("localstore: delete %s: %w", key, err)
	}
	return nil
}
