// Package ratelimit throttles login attempts with fixed-window counters. A
// successful login clears them.
//
// Counters are kept per username, whether or not the account exists, and
// optionally per source address:
//   - vault:login:u:<username>
//   - vault:login:ip:<address>
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/credvault/internal/common"
	"github.com/redis/go-redis/v9"
)

// ErrUnavailable wraps backend failures. Callers are expected to let the
// attempt through when they see it.
var ErrUnavailable = errors.New("rate limiter unavailable")

type Limiter interface {
	// Allow counts one login attempt against the username and address and
	// returns common.ErrRateLimited once the budget is spent. Counting at
	// admission keeps concurrent attempts from overrunning the budget.
	Allow(ctx context.Context, username, ip string) error
	// Reset clears the counters after a successful login.
	Reset(ctx context.Context, username, ip string) error
}

type Config struct {
	MaxAttempts int
	Cooldown    time.Duration
	PerAddress  bool
}

type RedisLimiter struct {
	redis  redis.UniversalClient
	config Config
}

func NewRedisLimiter(client redis.UniversalClient, cfg Config) (*RedisLimiter, error) {
	if cfg.MaxAttempts <= 0 {
		return nil, errors.New("max attempts must be positive")
	}
	if cfg.Cooldown < time.Millisecond {
		return nil, errors.New("cooldown must be at least 1ms")
	}
	return &RedisLimiter{redis: client, config: cfg}, nil
}

func userKey(username string) string { return "vault:login:u:" + username }
func ipKey(ip string) string         { return "vault:login:ip:" + ip }

func (l *RedisLimiter) keys(username, ip string) []string {
	keys := []string{userKey(username)}
	if l.config.PerAddress && ip != "" {
		keys = append(keys, ipKey(ip))
	}
	return keys
}

// hitScript increments a counter and opens its window on the first hit in
// one round trip, so no other client sees the counter without a TTL.
var hitScript = redis.NewScript(`
local n = redis.call("INCR", KEYS[1])
if n == 1 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return n
`)

func (l *RedisLimiter) Allow(ctx context.Context, username, ip string) error {
	limited := false
	for _, key := range l.keys(username, ip) {
		count, err := hitScript.Run(ctx, l.redis, []string{key}, l.config.Cooldown.Milliseconds()).Int64()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		if count > int64(l.config.MaxAttempts) {
			limited = true
		}
	}
	if limited {
		return common.ErrRateLimited
	}
	return nil
}

func (l *RedisLimiter) Reset(ctx context.Context, username, ip string) error {
	if err := l.redis.Del(ctx, l.keys(username, ip)...).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Noop never limits. It is used when no Redis is configured.
type Noop struct{}

func (Noop) Allow(context.Context, string, string) error { return nil }
func (Noop) Reset(context.Context, string, string) error { return nil }
