package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig locates the Redis instance backing a Redis limiter.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Redis is a fixed-window Limiter shared by every API instance pointing at
// the same Redis. It fails open: if Redis errors, the request is allowed and
// the error logged.
type Redis struct {
	client  *redis.Client
	log     *slog.Logger
	prefix  string
	timeout time.Duration
}

// NewRedis connects to Redis and verifies the connection with a PING.
func NewRedis(ctx context.Context, cfg RedisConfig, log *slog.Logger) (*Redis, error) {
	client := redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ratelimit.NewRedis: ping %s: %w", cfg.Addr, err)
	}
	return newRedis(client, log), nil
}

func newRedis(client *redis.Client, log *slog.Logger) *Redis {
	return &Redis{
		client:  client,
		log:     log,
		prefix:  "travelplanner:ratelimit:",
		timeout: 250 * time.Millisecond,
	}
}

// hitScript counts a hit and returns {count, pttl}. The expiry is set
// whenever the key has none, not only on the first hit, so a key can never
// be left counting without a window end.
var hitScript = redis.NewScript(`
local count = redis.call('INCR', KEYS[1])
if redis.call('PTTL', KEYS[1]) < 0 then
	redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
return {count, redis.call('PTTL', KEYS[1])}
`)

// Allow implements Limiter. The counter and its expiry are updated by one
// script call, so they change together.
func (r *Redis) Allow(ctx context.Context, key string, limit int, win time.Duration) Decision {
	if limit <= 0 {
		return Decision{Allowed: true}
	}
	if win <= 0 {
		win = time.Minute
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
	defer cancel()

	res, err := hitScript.Run(ctx, r.client, []string{r.prefix + key}, win.Milliseconds()).Int64Slice()
	if err != nil || len(res) != 2 {
		r.log.ErrorContext(ctx, "redis rate limiter error", "op", "hit", "error", err)
		return Decision{Allowed: true}
	}

	count := int(res[0])
	remaining := time.Duration(res[1]) * time.Millisecond
	if remaining <= 0 {
		remaining = win
	}
	return Decision{
		Allowed:   count <= limit,
		Count:     count,
		WindowEnd: time.Now().Add(remaining),
	}
}

// Close releases the Redis connection pool.
func (r *Redis) Close() {
	_ = r.client.Close()
}
