// Package cache keeps computed per-title ratings in redis so that
// title listings do not recompute the aggregate on every read. The
// cache is advisory: any miss or redis error falls through to the
// database aggregate.
package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

type RatingCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRatingCache connects to redis. An empty URL returns a nil cache;
// all methods are nil-safe so callers need no conditionals.
func NewRatingCache(url, password string, ttl time.Duration) (*RatingCache, error) {
	if url == "" {
		return nil, nil
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if password != "" {
		opts.Password = password
	}
	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RatingCache{client: client, ttl: ttl}, nil
}

func ratingKey(titleID int64) string {
	return fmt.Sprintf("rating:title:%d", titleID)
}

// Get returns the cached rating and whether it was present. A cached
// "none" marker (title known to have no reviews) yields (nil, true).
func (c *RatingCache) Get(ctx context.Context, titleID int64) (*float64, bool) {
	if c == nil {
		return nil, false
	}
	val, err := c.client.Get(ctx, ratingKey(titleID)).Result()
	if err != nil {
		return nil, false
	}
	if val == "none" {
		return nil, true
	}
	rating, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return nil, false
	}
	return &rating, true
}

// Set stores the rating; nil means "no reviews".
func (c *RatingCache) Set(ctx context.Context, titleID int64, rating *float64) {
	if c == nil {
		return
	}
	val := "none"
	if rating != nil {
		val = strconv.FormatFloat(*rating, 'f', -1, 64)
	}
	c.client.Set(ctx, ratingKey(titleID), val, c.ttl)
}

// Invalidate drops the cached rating after a review mutation.
func (c *RatingCache) Invalidate(ctx context.Context, titleID int64) {
	if c == nil {
		return
	}
	c.client.Del(ctx, ratingKey(titleID))
}

// Close shuts down the redis connection.
func (c *RatingCache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}
