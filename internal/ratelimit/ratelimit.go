package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// ErrBudgetExceeded is returned when the daily AI request budget is spent.
var ErrBudgetExceeded = errors.New("ai request budget exceeded")

// Limits configures an AIRateLimiter. Zero values mean unlimited.
type Limits struct {
	Total       int            // requests per day across providers
	PerProvider map[string]int // requests per day for a single provider
	PerSecond   float64        // sustained request rate
	Burst       int
}

// AIRateLimiter manages request budgets and throttling for all AI providers
type AIRateLimiter struct {
	mu         sync.Mutex
	counts     map[string]int
	totalCount int
	limits     Limits
	resetTime  time.Time

	throttle *rate.Limiter
	now      func() time.Time
}

// NewAIRateLimiter creates a limiter with configurable limits
func NewAIRateLimiter(limits Limits) *AIRateLimiter {
	rl := &AIRateLimiter{
		counts: make(map[string]int),
		limits: limits,
		now:    time.Now,
	}
	rl.resetTime = rl.now().Add(24 * time.Hour)

	if limits.PerSecond > 0 {
		burst := limits.Burst
		if burst < 1 {
			burst = 1
		}
		rl.throttle = rate.NewLimiter(rate.Limit(limits.PerSecond), burst)
	}
	return rl
}

// CanUse checks if provider has budget left without consuming it
func (rl *AIRateLimiter) CanUse(provider string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.checkReset()
	return rl.exceeded(provider) == nil
}

// Acquire waits for the throttle and consumes one request of provider's budget.
func (rl *AIRateLimiter) Acquire(ctx context.Context, provider string) error {
	if rl == nil {
		return nil
	}
	if rl.throttle != nil {
		if err := rl.throttle.Wait(ctx); err != nil {
			return fmt.Errorf("throttle wait: %w", err)
		}
	}
	return rl.Use(provider)
}

// Use increments provider counter
func (rl *AIRateLimiter) Use(provider string) error {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.checkReset()
	if err := rl.exceeded(provider); err != nil {
		slog.Warn("AI rate limit reached", "provider", provider, "count", rl.counts[provider], "total", rl.totalCount)
		return err
	}

	rl.counts[provider]++
	rl.totalCount++

	slog.Debug("AI usage", "provider", provider, "count", rl.counts[provider], "total", rl.totalCount, "max_total", rl.limits.Total)
	return nil
}

func (rl *AIRateLimiter) exceeded(provider string) error {
	if max := rl.limits.PerProvider[provider]; max > 0 && rl.counts[provider] >= max {
		return fmt.Errorf("%s: %w", provider, ErrBudgetExceeded)
	}
	if rl.limits.Total > 0 && rl.totalCount >= rl.limits.Total {
		return fmt.Errorf("total: %w", ErrBudgetExceeded)
	}
	return nil
}

func (rl *AIRateLimiter) GetStats() map[string]interface{} {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	providers := make(map[string]int, len(rl.counts))
	for name, n := range rl.counts {
		providers[name] = n
	}

	return map[string]interface{}{
		"providers":  providers,
		"total":      rl.totalCount,
		"max_total":  rl.limits.Total,
		"reset_time": rl.resetTime.Format(time.RFC3339),
	}
}

// checkReset resets counters once a day. Caller holds mu.
func (rl *AIRateLimiter) checkReset() {
	now := rl.now()
	if now.Before(rl.resetTime) {
		return
	}
	slog.Info("resetting daily AI rate limits", "total", rl.totalCount)
	rl.counts = make(map[string]int)
	rl.totalCount = 0
	rl.resetTime = now.Add(24 * time.Hour)
}
