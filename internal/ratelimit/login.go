// Package ratelimit throttles login attempts per email address in Redis.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrRateLimited means the email has used up its attempts for the current window.
	ErrRateLimited = errors.New("too many login attempts")
	// ErrUnavailable wraps Redis failures. Callers fail open on it.
	ErrUnavailable = errors.New("login limiter unavailable")
)

const keyPrefix = "login:"

// LoginLimiter counts login attempts with a fixed window: the first attempt sets the key's expiry.
type LoginLimiter struct {
	redis       redis.Cmdable
	maxAttempts int
	window      time.Duration
}

// NewLoginLimiter returns a limiter allowing maxAttempts per window per email.
func NewLoginLimiter(client redis.Cmdable, maxAttempts int, window time.Duration) *LoginLimiter {
	if maxAttempts <= 0 {
		maxAttempts = 10
	}
	if window <= 0 {
		window = 15 * time.Minute
	}
	return &LoginLimiter{redis: client, maxAttempts: maxAttempts, window: window}
}

// Allow records an attempt for email. It returns ErrRateLimited once the attempt count exceeds
// the limit, and an error wrapping ErrUnavailable when Redis fails.
func (l *LoginLimiter) Allow(ctx context.Context, email string) error {
	key := loginKey(email)
	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if count == 1 {
		if err := l.redis.Expire(ctx, key, l.window).Err(); err != nil {
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
	}
	if count > int64(l.maxAttempts) {
		return ErrRateLimited
	}
	return nil
}

// Reset clears the counter of email, e.g. after a successful login.
func (l *LoginLimiter) Reset(ctx context.Context, email string) error {
	if err := l.redis.Del(ctx, loginKey(email)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func loginKey(email string) string {
	return keyPrefix + strings.ToLower(strings.TrimSpace(email))
}
