package generator

import (
	"context"
	"fmt"
	"time"

	"github.com/BerylCAtieno/proposal-analyzer-api/internal/utils"
)

type RetryPolicy struct {
	MaxAttempts   int
	Delay         time.Duration
	BackoffFactor float64
	MaxDelay      time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:   3,
		Delay:         500 * time.Millisecond,
		BackoffFactor: 2,
		MaxDelay:      5 * time.Second,
	}
}

type retrying struct {
	next   Generator
	policy RetryPolicy
	logger *utils.Logger
}

// WithRetry calls g up to policy.MaxAttempts times, waiting between
// attempts. After the last failure the final error is returned.
func WithRetry(g Generator, policy RetryPolicy, logger *utils.Logger) Generator {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}
	if policy.BackoffFactor < 1 {
		policy.BackoffFactor = 1
	}
	return &retrying{next: g, policy: policy, logger: logger}
}

func (r *retrying) Generate(ctx context.Context, prompt string) (string, error) {
	var lastErr error
	delay := r.policy.Delay

	for attempt := 1; attempt <= r.policy.MaxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(delay):
			}

			delay = time.Duration(float64(delay) * r.policy.BackoffFactor)
			if r.policy.MaxDelay > 0 && delay > r.policy.MaxDelay {
				delay = r.policy.MaxDelay
			}
		}

		out, err := r.next.Generate(ctx, prompt)
		if err == nil {
			return out, nil
		}
		lastErr = err

		if r.logger != nil {
			r.logger.Warn("Generation attempt failed", "attempt", attempt, "max_attempts", r.policy.MaxAttempts, "error", err)
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
	}

	return "", fmt.Errorf("generation failed after %d attempts: %w", r.policy.MaxAttempts, lastErr)
}
