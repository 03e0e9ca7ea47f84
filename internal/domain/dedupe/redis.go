package dedupe

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wiaanjvr/fluency-next-sub011/internal/domain/model"
)

// checkAndSetScript reads the previous marker and overwrites it with a TTL
// equal to the window in one atomic step. Key expiry doubles as the window
// check: a surviving key means the previous observation is still recent.
var checkAndSetScript = redis.NewScript(`
local prev = redis.call('GET', KEYS[1])
redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[2])
return prev
`)

// RedisGuard implements Guard on Redis so multiple engine instances share
// one gate. Marker keys live under "fluency:guard:".
type RedisGuard struct {
	client redis.UniversalClient
	window time.Duration
	prefix string
}

// RedisOption applies a configuration option to the RedisGuard.
type RedisOption func(*RedisGuard)

// WithRedisWindow sets the suppression window.
func WithRedisWindow(window time.Duration) RedisOption {
	return func(g *RedisGuard) {
		if window > 0 {
			g.window = window
		}
	}
}

// WithKeyPrefix sets the Redis key namespace.
func WithKeyPrefix(prefix string) RedisOption {
	return func(g *RedisGuard) {
		if prefix != "" {
			g.prefix = prefix
		}
	}
}

// NewRedisGuard creates a Redis-backed guard.
func NewRedisGuard(client redis.UniversalClient, opts ...RedisOption) *RedisGuard {
	g := &RedisGuard{
		client: client,
		window: DefaultWindow,
		prefix: "fluency:guard:",
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

func (g *RedisGuard) key(userID, wordKey string) string {
	return g.prefix + userID + ":" + wordKey
}

// CheckAndRecord atomically checks the window and overwrites the marker.
func (g *RedisGuard) CheckAndRecord(ctx context.Context, userID, wordKey string, e model.ReviewEvent) (bool, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return false, fmt.Errorf("marshal guard marker: %w", err)
	}

	prev, err := checkAndSetScript.Run(ctx, g.client,
		[]string{g.key(userID, wordKey)},
		payload, g.window.Milliseconds(),
	).Result()
	if err != nil && err != redis.Nil {
		return false, fmt.Errorf("%w: %v", ErrGuardUnavailable, err)
	}

	return prev != nil, nil
}

// WasReviewedRecently reports whether a marker key is still alive.
func (g *RedisGuard) WasReviewedRecently(ctx context.Context, userID, wordKey string) (bool, error) {
	n, err := g.client.Exists(ctx, g.key(userID, wordKey)).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrGuardUnavailable, err)
	}
	return n > 0, nil
}

// LastReview returns the most recent observation for the pair.
func (g *RedisGuard) LastReview(ctx context.Context, userID, wordKey string) (model.ReviewEvent, bool, error) {
	raw, err := g.client.Get(ctx, g.key(userID, wordKey)).Bytes()
	if err == redis.Nil {
		return model.ReviewEvent{}, false, nil
	}
	if err != nil {
		return model.ReviewEvent{}, false, fmt.Errorf("%w: %v", ErrGuardUnavailable, err)
	}

	var e model.ReviewEvent
	if err := json.Unmarshal(raw, &e); err != nil {
		return model.ReviewEvent{}, false, fmt.Errorf("unmarshal guard marker: %w", err)
	}
	return e, true, nil
}

// Forget drops the marker for the pair.
func (g *RedisGuard) Forget(ctx context.Context, userID, wordKey string) error {
	if err := g.client.Del(ctx, g.key(userID, wordKey)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrGuardUnavailable, err)
	}
	return nil
}
