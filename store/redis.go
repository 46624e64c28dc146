package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	DefaultRedisPrefix = "strawberry:"
	redisMaxRetries    = 100
)

// RedisStore keeps one hash per user plus a sorted set scored by balance.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// OpenRedis connects using a redis:// URL and verifies the connection.
func OpenRedis(ctx context.Context, url, prefix string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return NewRedis(client, prefix), nil
}

// NewRedis wraps an existing client.
func NewRedis(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) userKey(userID string) string {
	return s.prefix + "user:" + userID
}

func (s *RedisStore) boardKey() string {
	return s.prefix + "leaderboard"
}

func recordFromHash(userID string, vals map[string]string) (Record, bool) {
	rec := Record{UserID: userID}
	if len(vals) == 0 {
		return rec, false
	}
	rec.Strawberries, _ = strconv.ParseInt(vals["strawberries"], 10, 64)
	last, _ := strconv.ParseInt(vals["last_daily"], 10, 64)
	rec.LastDaily = timeOrZero(last)
	rec.Streak, _ = strconv.Atoi(vals["streak"])
	rec.GamesPlayed, _ = strconv.Atoi(vals["games_played"])
	rec.GamesWon, _ = strconv.Atoi(vals["games_won"])
	return rec, true
}

func hashFromRecord(rec Record) map[string]interface{} {
	return map[string]interface{}{
		"strawberries": rec.Strawberries,
		"last_daily":   unixOrZero(rec.LastDaily),
		"streak":       rec.Streak,
		"games_played": rec.GamesPlayed,
		"games_won":    rec.GamesWon,
	}
}

func (s *RedisStore) Get(ctx context.Context, userID string) (Record, error) {
	vals, err := s.client.HGetAll(ctx, s.userKey(userID)).Result()
	if err != nil {
		return Record{}, fmt.Errorf("redis get %s: %w", userID, err)
	}
	rec, ok := recordFromHash(userID, vals)
	if !ok {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

func (s *RedisStore) Update(ctx context.Context, userID string, fn UpdateFunc) (Record, error) {
	key := s.userKey(userID)
	var out Record

	txf := func(tx *redis.Tx) error {
		vals, err := tx.HGetAll(ctx, key).Result()
		if err != nil {
			return err
		}
		rec, exists := recordFromHash(userID, vals)
		if err := fn(&rec, exists); err != nil {
			return err
		}
		rec.UserID = userID

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, hashFromRecord(rec))
			pipe.ZAdd(ctx, s.boardKey(), redis.Z{Score: float64(rec.Strawberries), Member: userID})
			return nil
		})
		if err == nil {
			out = rec
		}
		return err
	}

	for i := 0; i < redisMaxRetries; i++ {
		err := s.client.Watch(ctx, txf, key)
		if err == nil {
			return out, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return Record{}, err
	}
	return Record{}, fmt.Errorf("redis update %s: too many concurrent writers", userID)
}

func (s *RedisStore) Top(ctx context.Context, limit int) ([]Record, error) {
	var ids []string
	if limit <= 0 {
		all, err := s.client.ZRange(ctx, s.boardKey(), 0, -1).Result()
		if err != nil {
			return nil, fmt.Errorf("redis leaderboard: %w", err)
		}
		ids = all
	} else {
		head, err := s.client.ZRevRangeWithScores(ctx, s.boardKey(), 0, int64(limit-1)).Result()
		if err != nil {
			return nil, fmt.Errorf("redis leaderboard: %w", err)
		}
		if len(head) == 0 {
			return nil, nil
		}
		// Pull every member tied with the last place so ties sort by id.
		floor := strconv.FormatFloat(head[len(head)-1].Score, 'f', -1, 64)
		ids, err = s.client.ZRevRangeByScore(ctx, s.boardKey(), &redis.ZRangeBy{Max: "+inf", Min: floor}).Result()
		if err != nil {
			return nil, fmt.Errorf("redis leaderboard: %w", err)
		}
	}

	recs, err := s.fetch(ctx, ids)
	if err != nil {
		return nil, err
	}
	SortRecords(recs)
	if limit > 0 && len(recs) > limit {
		recs = recs[:limit]
	}
	return recs, nil
}

func (s *RedisStore) fetch(ctx context.Context, ids []string) ([]Record, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cmds := make([]*redis.MapStringStringCmd, len(ids))
	_, err := s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, id := range ids {
			cmds[i] = pipe.HGetAll(ctx, s.userKey(id))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("redis fetch records: %w", err)
	}

	recs := make([]Record, 0, len(ids))
	for i, cmd := range cmds {
		if rec, ok := recordFromHash(ids[i], cmd.Val()); ok {
			recs = append(recs, rec)
		}
	}
	return recs, nil
}

func (s *RedisStore) Rank(ctx context.Context, userID string) (int, error) {
	score, err := s.client.ZScore(ctx, s.boardKey(), userID).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis rank %s: %w", userID, err)
	}
	above, err := s.client.ZCount(ctx, s.boardKey(), "("+strconv.FormatFloat(score, 'f', -1, 64), "+inf").Result()
	if err != nil {
		return 0, fmt.Errorf("redis rank %s: %w", userID, err)
	}
	return int(above) + 1, nil
}

func (s *RedisStore) Count(ctx context.Context) (int, error) {
	n, err := s.client.ZCard(ctx, s.boardKey()).Result()
	if err != nil {
		return 0, fmt.Errorf("redis count: %w", err)
	}
	return int(n), nil
}

func (s *RedisStore) Prune(ctx context.Context, cutoff time.Time, maxBalance int64) ([]string, error) {
	ids, err := s.client.ZRangeByScore(ctx, s.boardKey(), &redis.ZRangeBy{
		Min: "-inf",
		Max: strconv.FormatInt(maxBalance, 10),
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("redis prune scan: %w", err)
	}

	var removed []string
	for _, id := range ids {
		key := s.userKey(id)
		pruned := false
		err := s.client.Watch(ctx, func(tx *redis.Tx) error {
			vals, err := tx.HGetAll(ctx, key).Result()
			if err != nil {
				return err
			}
			rec, ok := recordFromHash(id, vals)
			if ok && !Prunable(rec, cutoff, maxBalance) {
				return nil
			}
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Del(ctx, key)
				pipe.ZRem(ctx, s.boardKey(), id)
				return nil
			})
			pruned = err == nil && ok
			return err
		}, key)
		if errors.Is(err, redis.TxFailedErr) {
			// Touched while we looked at it, so it is not inactive.
			continue
		}
		if err != nil {
			return removed, fmt.Errorf("redis prune %s: %w", id, err)
		}
		if pruned {
			removed = append(removed, id)
		}
	}
	return removed, nil
}

func (s *RedisStore) All(ctx context.Context) ([]Record, error) {
	ids, err := s.client.ZRange(ctx, s.boardKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis all: %w", err)
	}
	return s.fetch(ctx, ids)
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
