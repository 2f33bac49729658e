package membership

import (
	"context"
	"sync"

	"opencollective/internal/collective/models"
	id "opencollective/pkg/domain"
	"opencollective/pkg/platform/sentinel"
	txcontext "opencollective/pkg/platform/tx"
)

type roleKey struct {
	collective id.CollectiveID
	member     id.CollectiveID
	role       models.Role
}

// InMemory stores role grants keyed by (collective, member collective, role).
type InMemory struct {
	mu     sync.RWMutex
	grants map[roleKey]*models.Membership
}

func NewInMemory() *InMemory {
	return &InMemory{grants: make(map[roleKey]*models.Membership)}
}

// Create records m, failing with ErrAlreadyUsed if the same grant exists.
func (s *InMemory) Create(ctx context.Context, m *models.Membership) error {
	key := roleKey{collective: m.CollectiveID, member: m.MemberCollectiveID, role: m.Role}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.grants[key]; exists {
		return sentinel.ErrAlreadyUsed
	}
	cp := *m
	s.grants[key] = &cp

	txcontext.OnRollback(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.grants, key)
	})
	return nil
}

// HasRole reports whether the user holds role on the collective.
func (s *InMemory) HasRole(ctx context.Context, collectiveID id.CollectiveID, userID id.UserID, role models.Role) (bool, error) {
	defer txcontext.ReadCommitted(ctx)()
	s.mu.RLock()
	defer s.mu.RUnlock()
	for key, m := range s.grants {
		if key.collective == collectiveID && key.role == role && m.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

// ListByCollective returns every grant on a collective.
func (s *InMemory) ListByCollective(ctx context.Context, collectiveID id.CollectiveID) ([]*models.Membership, error) {
	defer txcontext.ReadCommitted(ctx)()
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Membership
	for key, m := range s.grants {
		if key.collective == collectiveID {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}
