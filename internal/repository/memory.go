package repository

import (
	"context"
	"strings"
	"sync"
	"time"

	"shareit/internal/models"
)

type memoryEntry struct {
	resp      *models.CachedResponse
	expiresAt time.Time
}

// MemoryResponseCache keeps responses in process until their TTL elapses.
type MemoryResponseCache struct {
	entries sync.Map
	now     func() time.Time
}

func NewMemoryResponseCache() *MemoryResponseCache {
	return &MemoryResponseCache{now: time.Now}
}

func (r *MemoryResponseCache) Get(_ context.Context, key string) (*models.CachedResponse, error) {
	val, ok := r.entries.Load(key)
	if !ok {
		return nil, nil
	}
	entry := val.(*memoryEntry)
	if r.now().After(entry.expiresAt) {
		r.entries.CompareAndDelete(key, val)
		return nil, nil
	}
	return entry.resp, nil
}

func (r *MemoryResponseCache) Set(_ context.Context, key string, resp *models.CachedResponse, ttl time.Duration) error {
	r.entries.Store(key, &memoryEntry{resp: resp, expiresAt: r.now().Add(ttl)})
	return nil
}

func (r *MemoryResponseCache) DeletePrefix(_ context.Context, prefix string) error {
	r.entries.Range(func(key, _ any) bool {
		if strings.HasPrefix(key.(string), prefix) {
			r.entries.Delete(key)
		}
		return true
	})
	return nil
}

// Purge drops expired entries.
func (r *MemoryResponseCache) Purge() {
	now := r.now()
	r.entries.Range(func(key, val any) bool {
		if now.After(val.(*memoryEntry).expiresAt) {
			r.entries.CompareAndDelete(key, val)
		}
		return true
	})
}
