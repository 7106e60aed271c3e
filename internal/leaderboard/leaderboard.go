// Package leaderboard serves the points ranking from a Redis sorted set and
// falls back to the reward store when Redis is absent or failing.
package leaderboard

import (
	"context"
	"errors"
	"fmt"

	"byte-battle/internal/reward"
	"byte-battle/internal/store"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	defaultKeyPrefix = "battle:leaderboard"
	warmPageSize     = 500
)

// Source is the authoritative ranking, normally the reward store.
type Source interface {
	ListLeaderboard(ctx context.Context, limit, offset int) ([]store.LeaderboardRow, error)
	ActorPosition(ctx context.Context, actorID string) (int, error)
}

type Entry struct {
	Position    int    `json:"position"`
	ActorID     string `json:"actor_id"`
	DisplayName string `json:"display_name"`
	TotalPoints int64  `json:"total_points"`
	Level       int    `json:"level"`
	Rank        string `json:"rank"`
}

// Board keeps scores as negated totals so an ascending range orders by
// points descending with ties broken by actor id, matching the store query.
type Board struct {
	rdb      redis.UniversalClient
	src      Source
	scoreKey string
	namesKey string
}

func New(rdb redis.UniversalClient, src Source) *Board {
	return &Board{
		rdb:      rdb,
		src:      src,
		scoreKey: defaultKeyPrefix + ":points",
		namesKey: defaultKeyPrefix + ":names",
	}
}

// OnActorChanged mirrors a committed ledger change into Redis.
func (b *Board) OnActorChanged(ctx context.Context, a store.Actor) {
	if b.rdb == nil {
		return
	}
	if err := b.put(ctx, a.ID, a.DisplayName, a.TotalPoints); err != nil {
		log.Warn().Err(err).Str("actor_id", a.ID).Msg("leaderboard_update_failed")
	}
}

func (b *Board) put(ctx context.Context, actorID, name string, total int64) error {
	pipe := b.rdb.TxPipeline()
	pipe.ZAdd(ctx, b.scoreKey, redis.Z{Score: -float64(total), Member: actorID})
	if name != "" {
		pipe.HSet(ctx, b.namesKey, actorID, name)
	}
	_, err := pipe.Exec(ctx)
	return err
}

// Warm copies the full ranking from the source into Redis.
func (b *Board) Warm(ctx context.Context) error {
	if b.rdb == nil {
		return nil
	}
	count := 0
	for offset := 0; ; offset += warmPageSize {
		rows, err := b.src.ListLeaderboard(ctx, warmPageSize, offset)
		if err != nil {
			return fmt.Errorf("leaderboard warm: %w", err)
		}
		for _, r := range rows {
			if err := b.put(ctx, r.ActorID, r.DisplayName, r.TotalPoints); err != nil {
				return fmt.Errorf("leaderboard warm: %w", err)
			}
		}
		count += len(rows)
		if len(rows) < warmPageSize {
			break
		}
	}
	log.Info().Int("actors", count).Msg("leaderboard_warmed")
	return nil
}

func (b *Board) Top(ctx context.Context, limit, offset int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	if b.rdb != nil {
		entries, err := b.topFromRedis(ctx, limit, offset)
		if err == nil {
			return entries, nil
		}
		log.Warn().Err(err).Msg("leaderboard_redis_fallback")
	}
	rows, err := b.src.ListLeaderboard(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]Entry, 0, len(rows))
	for i, r := range rows {
		out = append(out, newEntry(offset+i+1, r.ActorID, r.DisplayName, r.TotalPoints))
	}
	return out, nil
}

func (b *Board) topFromRedis(ctx context.Context, limit, offset int) ([]Entry, error) {
	zs, err := b.rdb.ZRangeWithScores(ctx, b.scoreKey, int64(offset), int64(offset+limit-1)).Result()
	if err != nil {
		return nil, err
	}
	out := make([]Entry, 0, len(zs))
	if len(zs) == 0 {
		return out, nil
	}
	ids := make([]string, 0, len(zs))
	for _, z := range zs {
		ids = append(ids, fmt.Sprint(z.Member))
	}
	names, err := b.rdb.HMGet(ctx, b.namesKey, ids...).Result()
	if err != nil {
		return nil, err
	}
	for i, z := range zs {
		name, _ := names[i].(string)
		out = append(out, newEntry(offset+i+1, ids[i], name, int64(-z.Score)))
	}
	return out, nil
}

// Position returns the 1-based position of an actor.
func (b *Board) Position(ctx context.Context, actorID string) (int, error) {
	if b.rdb != nil {
		rank, err := b.rdb.ZRank(ctx, b.scoreKey, actorID).Result()
		switch {
		case err == nil:
			return int(rank) + 1, nil
		case errors.Is(err, redis.Nil):
		default:
			log.Warn().Err(err).Str("actor_id", actorID).Msg("leaderboard_redis_fallback")
		}
	}
	return b.src.ActorPosition(ctx, actorID)
}

func newEntry(position int, actorID, name string, total int64) Entry {
	level := reward.LevelFor(total)
	return Entry{
		Position:    position,
		ActorID:     actorID,
		DisplayName: name,
		TotalPoints: total,
		Level:       level,
		Rank:        reward.RankFor(level).Name,
	}
}
