package llm

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"
)

// retryClass says how a failed call may be repeated.
type retryClass int

const (
	retryNever     retryClass = iota // caller error, cancellation, truncation
	retryOnce                        // malformed response; a second sample may parse
	retryTransient                   // rate limit, outage, network
)

func classify(err error) retryClass {
	var (
		maxTok  *ErrMaxTokensExceeded
		invalid *ErrInvalidResponse
	)
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return retryNever
	case errors.As(err, &maxTok):
		// Same limits, same truncation.
		return retryNever
	case errors.As(err, &invalid):
		return retryOnce
	default:
		return retryTransient
	}
}

// RetryProvider repeats transient failures with capped exponential
// backoff and ±20% jitter. A rate limit carrying RetryAfter overrides
// the computed wait.
type RetryProvider struct {
	inner  Provider
	config RetryConfig
}

// WithRetry wraps p. MaxAttempts below 1 means a single attempt.
func WithRetry(p Provider, cfg RetryConfig) Provider {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &RetryProvider{inner: p, config: cfg}
}

func (r *RetryProvider) ModelID() string {
	return r.inner.ModelID()
}

func (r *RetryProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	usedOnce := false
	attempt := 0
	for {
		resp, err := r.inner.Generate(ctx, req)
		if err == nil {
			return resp, nil
		}

		switch classify(err) {
		case retryNever:
			return nil, err
		case retryOnce:
			if usedOnce {
				return nil, err
			}
			usedOnce = true
		}

		attempt++
		if attempt >= r.config.MaxAttempts {
			return nil, err
		}

		timer := time.NewTimer(r.wait(attempt-1, err))
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

func (r *RetryProvider) wait(attempt int, err error) time.Duration {
	var rl *ErrRateLimit
	if errors.As(err, &rl) && rl.RetryAfter > 0 {
		return rl.RetryAfter
	}

	base := math.Min(
		float64(r.config.InitialWait)*math.Pow(r.config.Multiplier, float64(attempt)),
		float64(r.config.MaxWait),
	)
	d := base * (1 + 0.2*(2*rand.Float64()-1))
	return time.Duration(math.Max(d, 0))
}
