package speech

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	errx "github.com/salesvoice-poc/server/internal/core/error"
	logx "github.com/salesvoice-poc/server/pkg/logger"
)

// Cache stores synthesized audio URLs in Redis keyed by text and voice, so
// repeated turns with identical wording do not re-consume synthesis quota.
// All failures degrade to cache misses; the cache never fails a synthesis.
type Cache struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewCache(rdb redis.Cmdable, ttl time.Duration) *Cache {
	return &Cache{rdb: rdb, ttl: ttl}
}

func cacheKey(text, voiceID string) string {
	sum := sha256.Sum256([]byte(voiceID + "\x00" + text))
	return fmt.Sprintf("speech:audio:%s", hex.EncodeToString(sum[:16]))
}

// Get returns the cached audio URL, or "" on miss.
func (c *Cache) Get(ctx context.Context, text, voiceID string) string {
	if c == nil {
		return ""
	}
	key := cacheKey(text, voiceID)
	url, err := c.rdb.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logx.Warn().Err(errx.WrapRedis(err)).Str("key", key).Msg("speech cache read failed")
		}
		return ""
	}
	return url
}

// Put stores the audio URL with the configured TTL.
func (c *Cache) Put(ctx context.Context, text, voiceID, url string) {
	if c == nil || url == "" {
		return
	}
	key := cacheKey(text, voiceID)
	if err := c.rdb.Set(ctx, key, url, c.ttl).Err(); err != nil {
		logx.Warn().Err(errx.WrapRedis(err)).Str("key", key).Msg("speech cache write failed")
	}
}
