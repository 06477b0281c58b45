package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"studymixer-backend/internal/models"
)

// ResultCache memoizes successful generations in Redis, keyed by document
// bytes and options. A nil cache is a no-op, so the pipeline works without
// Redis configured.
type ResultCache struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewResultCache(client *redis.Client, ttl time.Duration) *ResultCache {
	return &ResultCache{redis: client, ttl: ttl}
}

// CacheKey derives a deterministic key from the document content and the
// selected options. Same bytes and same options always hash to the same key.
func CacheKey(data []byte, opts models.GenerationOptions) string {
	h := sha256.New()
	h.Write(data)
	h.Write([]byte("\x00" + opts.Difficulty + "\x00" + opts.Format + "\x00" + opts.Focus))
	return "quiz:result:" + hex.EncodeToString(h.Sum(nil))
}

func (c *ResultCache) Get(ctx context.Context, key string) (*models.GenerationResult, bool) {
	if c == nil || c.redis == nil {
		return nil, false
	}

	val, err := c.redis.Get(ctx, key).Result()
	if err != nil {
		return nil, false
	}

	var result models.GenerationResult
	if err := json.Unmarshal([]byte(val), &result); err != nil {
		return nil, false
	}
	return &result, true
}

func (c *ResultCache) Set(ctx context.Context, key string, result models.GenerationResult) {
	if c == nil || c.redis == nil {
		return
	}

	data, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, key, string(data), c.ttl).Err(); err != nil {
		log.Printf("WARNING: failed to cache generation result: %v", err)
	}
}
