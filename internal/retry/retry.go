package retry

import (
	"context"
	"math"
	"time"

	"shareit/internal/config"
)

// Policy defines exponential backoff parameters.
type Policy struct {
	MaxRetries    int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
}

func FromConfig(cfg config.RetryConfig) Policy {
	return Policy{
		MaxRetries:    cfg.MaxRetries,
		InitialDelay:  cfg.InitialDelay,
		MaxDelay:      cfg.MaxDelay,
		BackoffFactor: cfg.BackoffFactor,
	}
}

// NextDelay returns delay for a given attempt (1-based) with clamping.
func (p Policy) NextDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if p.InitialDelay <= 0 {
		p.InitialDelay = time.Second
	}
	if p.BackoffFactor <= 0 {
		p.BackoffFactor = 2
	}

	delay := float64(p.InitialDelay) * math.Pow(p.BackoffFactor, float64(attempt-1))
	d := time.Duration(delay)
	if p.MaxDelay > 0 && d > p.MaxDelay {
		d = p.MaxDelay
	}
	if d <= 0 {
		d = time.Second
	}
	return d
}

// Do calls fn until it reports no retry, MaxRetries retries are spent, or ctx ends.
// fn receives the 0-based attempt number. The last error from fn is returned.
func (p Policy) Do(ctx context.Context, fn func(attempt int) (retry bool, err error)) error {
	for attempt := 0; ; attempt++ {
		again, err := fn(attempt)
		if !again || attempt >= p.MaxRetries {
			return err
		}

		timer := time.NewTimer(p.NextDelay(attempt + 1))
		select {
		case <-ctx.Done():
			timer.Stop()
			if err != nil {
				return err
			}
			return ctx.Err()
		case <-timer.C:
		}
	}
}
