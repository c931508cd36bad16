package leaderboard

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisRanker keeps each course's standings in a sorted set scored by
// points.
type RedisRanker struct {
	rdb    redis.Cmdable
	prefix string
}

// NewRedisRanker returns a ranker on rdb. Keys are "<prefix>:<courseID>".
func NewRedisRanker(rdb redis.Cmdable, prefix string) *RedisRanker {
	if prefix == "" {
		prefix = "drillz:leaderboard"
	}
	return &RedisRanker{rdb: rdb, prefix: prefix}
}

// Dial connects to addr and checks the server answers.
func Dial(ctx context.Context, addr string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

func (r *RedisRanker) key(courseID int) string {
	return r.prefix + ":" + strconv.Itoa(courseID)
}

func (r *RedisRanker) Record(ctx context.Context, courseID int, userID string, points int) error {
	err := r.rdb.ZAdd(ctx, r.key(courseID), redis.Z{Score: float64(points), Member: userID}).Err()
	if err != nil {
		return fmt.Errorf("zadd: %w", err)
	}
	return nil
}

func (r *RedisRanker) Remove(ctx context.Context, courseID int, userID string) error {
	if err := r.rdb.ZRem(ctx, r.key(courseID), userID).Err(); err != nil {
		return fmt.Errorf("zrem: %w", err)
	}
	return nil
}

func (r *RedisRanker) Top(ctx context.Context, courseID, limit int) ([]Entry, error) {
	key := r.key(courseID)
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit - 1)
	}
	zs, err := r.rdb.ZRevRangeWithScores(ctx, key, 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("zrevrange: %w", err)
	}

	entries := make([]Entry, 0, len(zs))
	seen := make(map[string]bool, len(zs))
	for _, z := range zs {
		id := fmt.Sprint(z.Member)
		seen[id] = true
		entries = append(entries, Entry{UserID: id, Points: int(z.Score)})
	}

	// Redis breaks score ties in reverse lexical order, so the cut at limit
	// may have dropped users who sort first by id. Pull every member tied
	// with the last row before ranking.
	if limit > 0 && len(zs) == limit {
		last := strconv.FormatFloat(zs[len(zs)-1].Score, 'f', -1, 64)
		tied, err := r.rdb.ZRangeByScore(ctx, key, &redis.ZRangeBy{Min: last, Max: last}).Result()
		if err != nil {
			return nil, fmt.Errorf("zrangebyscore: %w", err)
		}
		for _, id := range tied {
			if !seen[id] {
				entries = append(entries, Entry{UserID: id, Points: int(zs[len(zs)-1].Score)})
			}
		}
	}

	entries = Standardize(entries)
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func (r *RedisRanker) Rank(ctx context.Context, courseID int, userID string) (Entry, bool, error) {
	key := r.key(courseID)
	score, err := r.rdb.ZScore(ctx, key, userID).Result()
	if errors.Is(err, redis.Nil) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("zscore: %w", err)
	}
	above, err := r.rdb.ZCount(ctx, key, "("+strconv.FormatFloat(score, 'f', -1, 64), "+inf").Result()
	if err != nil {
		return Entry{}, false, fmt.Errorf("zcount: %w", err)
	}
	return Entry{Rank: int(above) + 1, UserID: userID, Points: int(score)}, true, nil
}
