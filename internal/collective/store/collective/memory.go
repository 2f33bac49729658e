package collective

import (
	"context"
	"strings"
	"sync"

	"opencollective/internal/collective/models"
	id "opencollective/pkg/domain"
	"opencollective/pkg/platform/sentinel"
	txcontext "opencollective/pkg/platform/tx"
)

// InMemory is a thread-safe collective store. Writes made inside a journaled
// unit of work are undone if the unit fails and stay hidden from readers
// outside the unit until it ends.
type InMemory struct {
	mu     sync.RWMutex
	byID   map[id.CollectiveID]*models.Collective
	bySlug map[string]id.CollectiveID
}

func NewInMemory() *InMemory {
	return &InMemory{
		byID:   make(map[id.CollectiveID]*models.Collective),
		bySlug: make(map[string]id.CollectiveID),
	}
}

// CreateIfSlugAvailable inserts c unless its slug is taken (case-insensitive).
func (s *InMemory) CreateIfSlugAvailable(ctx context.Context, c *models.Collective) error {
	slug := strings.ToLower(c.Slug)
	defer txcontext.ReadCommitted(ctx)()

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.bySlug[slug]; taken {
		return sentinel.ErrAlreadyUsed
	}
	s.byID[c.ID] = c.Clone()
	s.bySlug[slug] = c.ID

	txcontext.OnRollback(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.byID, c.ID)
		delete(s.bySlug, slug)
	})
	return nil
}

func (s *InMemory) FindByID(ctx context.Context, collectiveID id.CollectiveID) (*models.Collective, error) {
	defer txcontext.ReadCommitted(ctx)()
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.byID[collectiveID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return c.Clone(), nil
}

func (s *InMemory) FindBySlug(ctx context.Context, slug string) (*models.Collective, error) {
	defer txcontext.ReadCommitted(ctx)()
	s.mu.RLock()
	defer s.mu.RUnlock()
	collectiveID, ok := s.bySlug[strings.ToLower(slug)]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return s.byID[collectiveID].Clone(), nil
}

// Update replaces the stored collective. The slug is immutable.
func (s *InMemory) Update(ctx context.Context, c *models.Collective) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok := s.byID[c.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if !strings.EqualFold(prev.Slug, c.Slug) {
		return sentinel.ErrInvalidState
	}
	s.byID[c.ID] = c.Clone()

	txcontext.OnRollback(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.byID[prev.ID] = prev
	})
	return nil
}

// AttachHost records the host binding of c. It fails with ErrInvalidState
// when c carries no host or the stored collective already has one.
func (s *InMemory) AttachHost(ctx context.Context, c *models.Collective) error {
	if !c.HasHost() {
		return sentinel.ErrInvalidState
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok := s.byID[c.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if prev.HasHost() {
		return sentinel.ErrInvalidState
	}
	src := c.Clone()
	next := prev.Clone()
	next.HostCollectiveID = src.HostCollectiveID
	next.HostFeePercent = src.HostFeePercent
	next.ApprovedAt = src.ApprovedAt
	next.IsActive = src.IsActive
	next.UpdatedAt = src.UpdatedAt
	s.byID[c.ID] = next

	txcontext.OnRollback(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.byID[prev.ID] = prev
	})
	return nil
}

// Count returns how many collectives are stored.
func (s *InMemory) Count(ctx context.Context) (int, error) {
	defer txcontext.ReadCommitted(ctx)()
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID), nil
}
