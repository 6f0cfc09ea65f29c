package repositories

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"posture-analyzer/internal/domain/entities"
	"posture-analyzer/internal/domain/repositories"

	"github.com/go-redis/redis/v8"
)

// PendingDeletionsKey is the sorted set holding paths scored by their due
// time in unix milliseconds.
const PendingDeletionsKey = "pending_deletions"

type redisPendingRepository struct {
	rdb *redis.Client
	key string
}

func NewRedisPendingRepository(rdb *redis.Client) repositories.PendingDeletionStore {
	return &redisPendingRepository{
		rdb: rdb,
		key: PendingDeletionsKey,
	}
}

func (r *redisPendingRepository) Add(ctx context.Context, path string, dueAt time.Time) error {
	return r.rdb.ZAdd(ctx, r.key, &redis.Z{
		Score:  float64(dueAt.UnixMilli()),
		Member: path,
	}).Err()
}

func (r *redisPendingRepository) Remove(ctx context.Context, path string) error {
	return r.rdb.ZRem(ctx, r.key, path).Err()
}

func (r *redisPendingRepository) Due(ctx context.Context, now time.Time) ([]entities.PendingDeletion, error) {
	zs, err := r.rdb.ZRangeByScoreWithScores(ctx, r.key, &redis.ZRangeBy{
		Min: "-inf",
		Max: strconv.FormatInt(now.UnixMilli(), 10),
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("pending deletions okunamadı: %w", err)
	}
	return toPending(zs), nil
}

func (r *redisPendingRepository) List(ctx context.Context) ([]entities.PendingDeletion, error) {
	zs, err := r.rdb.ZRangeWithScores(ctx, r.key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("pending deletions okunamadı: %w", err)
	}
	return toPending(zs), nil
}

func (r *redisPendingRepository) Durable() bool {
	return true
}

func toPending(zs []redis.Z) []entities.PendingDeletion {
	result := make([]entities.PendingDeletion, 0, len(zs))
	for _, z := range zs {
		path, ok := z.Member.(string)
		if !ok {
			continue
		}
		result = append(result, entities.PendingDeletion{
			Path:  path,
			DueAt: time.UnixMilli(int64(z.Score)),
		})
	}
	return result
}
