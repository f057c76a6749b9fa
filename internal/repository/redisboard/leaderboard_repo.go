// Package redisboard reads frozen per-season leaderboards out of Redis.
// An external ranking process writes one sorted set per season at archive
// time; entries are immutable afterwards and this package never ranks
// anything itself.
package redisboard

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"

	"github.com/sprintduel/ladder-server/internal/domain"
)

const (
	archiveKeyPrefix = "ladder:archive:"
	defaultLimit     = 100
	maxLimit         = 500
)

type LeaderboardRepository struct {
	client *redis.Client
}

func NewLeaderboardRepository(client *redis.Client) *LeaderboardRepository {
	return &LeaderboardRepository{client: client}
}

func archiveKey(seasonID string) string {
	return archiveKeyPrefix + seasonID
}

func entryKey(seasonID, playerID string) string {
	return fmt.Sprintf("%s%s:entry:%s", archiveKeyPrefix, seasonID, playerID)
}

// LoadSeason returns up to limit archived entries, rank ascending. A season
// with no archive yields an empty slice, not an error.
func (r *LeaderboardRepository) LoadSeason(ctx context.Context, seasonID string, limit int) ([]domain.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	members, err := r.client.ZRevRangeWithScores(ctx, archiveKey(seasonID), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("redisboard: load season %s: %w", seasonID, err)
	}

	entries := make([]domain.LeaderboardEntry, 0, len(members))
	for i, member := range members {
		playerID, ok := member.Member.(string)
		if !ok {
			continue
		}

		entry := domain.LeaderboardEntry{
			PlayerID: playerID,
			Trophies: int(member.Score),
		}

		// Detail payloads carry name, tier and prestige; the sorted set only
		// holds the score.
		raw, err := r.client.Get(ctx, entryKey(seasonID, playerID)).Result()
		if err == nil {
			_ = json.Unmarshal([]byte(raw), &entry)
		} else if err != redis.Nil {
			return nil, fmt.Errorf("redisboard: entry %s/%s: %w", seasonID, playerID, err)
		}

		entry.Rank = i + 1
		entry.Trophies = int(member.Score)
		entries = append(entries, entry)
	}

	return entries, nil
}

// ArchiveEntries writes a frozen season ranking. Only the external ranking
// process (and seed tooling) calls this; the service side is read-only.
func (r *LeaderboardRepository) ArchiveEntries(ctx context.Context, seasonID string, entries []domain.LeaderboardEntry) error {
	pipe := r.client.TxPipeline()
	for _, entry := range entries {
		pipe.ZAdd(ctx, archiveKey(seasonID), &redis.Z{
			Score:  float64(entry.Trophies),
			Member: entry.PlayerID,
		})

		data, err := json.Marshal(entry)
		if err != nil {
			return fmt.Errorf("redisboard: marshal entry %s: %w", entry.PlayerID, err)
		}
		pipe.Set(ctx, entryKey(seasonID, entry.PlayerID), data, 0)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redisboard: archive season %s: %w", seasonID, err)
	}
	return nil
}
