package repository

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

const recoveryInterval = time.Minute

// FailoverResponseCache uses primary until it errors, then serves from fallback
// and retries primary once per recoveryInterval.
type FailoverResponseCache struct {
	primary  domain.ResponseCache
	fallback domain.ResponseCache
	logger   *zerolog.Logger
	isDown   atomic.Bool

	mu        sync.Mutex
	lastCheck time.Time
	now       func() time.Time
}

func NewFailoverResponseCache(primary, fallback domain.ResponseCache, logger *zerolog.Logger) *FailoverResponseCache {
	return &FailoverResponseCache{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
		now:      time.Now,
	}
}

func (r *FailoverResponseCache) markDown(err error) {
	if !r.isDown.Swap(true) {
		r.logger.Error().Err(err).Msg("Primary response cache failed, falling back to memory")
	}
	r.mu.Lock()
	r.lastCheck = r.now()
	r.mu.Unlock()
}

func (r *FailoverResponseCache) shouldRetryPrimary() bool {
	if !r.isDown.Load() {
		return true
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.now().Sub(r.lastCheck) > recoveryInterval
}

func (r *FailoverResponseCache) Get(ctx context.Context, key string) (*models.CachedResponse, error) {
	if r.shouldRetryPrimary() {
		resp, err := r.primary.Get(ctx, key)
		if err == nil {
			if r.isDown.Swap(false) {
				r.logger.Info().Msg("Primary response cache recovered")
			}
			return resp, nil
		}
		r.markDown(err)
	}
	return r.fallback.Get(ctx, key)
}

func (r *FailoverResponseCache) Set(ctx context.Context, key string, resp *models.CachedResponse, ttl time.Duration) error {
	if r.shouldRetryPrimary() {
		err := r.primary.Set(ctx, key, resp, ttl)
		if err == nil {
			r.isDown.Store(false)
			return nil
		}
		r.markDown(err)
	}
	return r.fallback.Set(ctx, key, resp, ttl)
}

// DeletePrefix always clears the fallback, which may hold entries written while
// the primary was down.
func (r *FailoverResponseCache) DeletePrefix(ctx context.Context, prefix string) error {
	if r.shouldRetryPrimary() {
		if err := r.primary.DeletePrefix(ctx, prefix); err != nil {
			r.markDown(err)
		}
	}
	return r.fallback.DeletePrefix(ctx, prefix)
}

// Down reports whether requests are currently served from the fallback.
func (r *FailoverResponseCache) Down() bool {
	return r.isDown.Load()
}
