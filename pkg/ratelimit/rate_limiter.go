package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config contains rate limiting configuration per route class.
type Config struct {
	Enabled         bool
	WindowDuration  time.Duration
	DefaultRequests int
	// ConfirmRequests bounds the public confirmation endpoint. Confirmation
	// tokens are guessable only by brute force, so this window is tight.
	ConfirmRequests int
	AdminRequests   int
}

// RateLimiter implements a fixed-window counter per client IP and route class,
// backed by Redis so the window survives restarts and is shared across
// replicas.
type RateLimiter struct {
	redis  *redis.Client
	config *Config
}

// Result describes the outcome of a rate limit check.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(redisClient *redis.Client, config *Config) *RateLimiter {
	return &RateLimiter{
		redis:  redisClient,
		config: config,
	}
}

// classify maps a request path to a route class with its own budget.
func (rl *RateLimiter) classify(path string) (string, int) {
	switch {
	case strings.Contains(path, "/confirm/"):
		return "confirm", rl.config.ConfirmRequests
	case strings.Contains(path, "/admin/"):
		return "admin", rl.config.AdminRequests
	default:
		return "default", rl.config.DefaultRequests
	}
}

// Check increments the caller's counter for the current window and reports
// whether the request is within budget. Redis errors fail open: a broken
// limiter must not take the service down with it.
func (rl *RateLimiter) Check(ctx context.Context, clientIP, path string) (*Result, error) {
	class, limit := rl.classify(path)

	window := time.Now().Truncate(rl.config.WindowDuration)
	key := fmt.Sprintf("ratelimit:%s:%s:%d", class, clientIP, window.Unix())

	count, err := rl.redis.Incr(ctx, key).Result()
	if err != nil {
		return &Result{Allowed: true, Limit: limit, Remaining: limit}, fmt.Errorf("rate limit check failed: %w", err)
	}

	if count == 1 {
		rl.redis.Expire(ctx, key, rl.config.WindowDuration)
	}

	remaining := limit - int(count)
	if remaining < 0 {
		remaining = 0
	}

	return &Result{
		Allowed:   int(count) <= limit,
		Limit:     limit,
		Remaining: remaining,
		ResetAt:   window.Add(rl.config.WindowDuration),
	}, nil
}
