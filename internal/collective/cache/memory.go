// Package cache holds account-with-host views keyed by collective slug.
package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	"opencollective/internal/collective/models"
	"opencollective/pkg/platform/sentinel"
)

const defaultTTL = 5 * time.Minute

type entry struct {
	view      *models.AccountWithHost
	expiresAt time.Time
}

// Memory is a process-local cache with per-entry expiry.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

type MemoryOption func(*Memory)

func WithTTL(ttl time.Duration) MemoryOption {
	return func(m *Memory) {
		if ttl > 0 {
			m.ttl = ttl
		}
	}
}

// WithClock overrides the time source. Tests use it to expire entries.
func WithClock(now func() time.Time) MemoryOption {
	return func(m *Memory) {
		m.now = now
	}
}

func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		entries: make(map[string]entry),
		ttl:     defaultTTL,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Memory) Get(_ context.Context, slug string) (*models.AccountWithHost, error) {
	key := strings.ToLower(slug)
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if !m.now().Before(e.expiresAt) {
		m.mu.Lock()
		if cur, ok := m.entries[key]; ok && cur.expiresAt.Equal(e.expiresAt) {
			delete(m.entries, key)
		}
		m.mu.Unlock()
		return nil, sentinel.ErrNotFound
	}
	return e.view, nil
}

func (m *Memory) Set(_ context.Context, slug string, view *models.AccountWithHost) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[strings.ToLower(slug)] = entry{view: view, expiresAt: m.now().Add(m.ttl)}
	return nil
}

func (m *Memory) Invalidate(_ context.Context, slug string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, strings.ToLower(slug))
	return nil
}

// Len reports the number of stored entries, expired or not.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
