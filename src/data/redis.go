package data

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	viewPrefix    = "views:article:"
	streamResults = "verity.factcheck.results"
)

func MustRedis(url string) *redis.Client {
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	return redis.NewClient(opt)
}

// IncrViewCount bumps an article's view counter. Counters expire after
// a week; they feed ranking, not accounting.
func IncrViewCount(ctx context.Context, rdb *redis.Client, articleID uint64) (int64, error) {
	key := viewPrefix + strconv.FormatUint(articleID, 10)
	n, err := rdb.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	rdb.Expire(ctx, key, 7*24*time.Hour)
	return n, nil
}

// PublishFactCheckEvent pushes a terminal fact-check outcome onto the
// results stream for downstream consumers (notifications, feeds).
func PublishFactCheckEvent(ctx context.Context, rdb *redis.Client, payload map[string]interface{}) error {
	_, err := rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: streamResults,
		Values: payload,
	}).Result()
	return err
}
