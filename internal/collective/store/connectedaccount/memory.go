package connectedaccount

import (
	"context"
	"sync"

	"opencollective/internal/collective/models"
	id "opencollective/pkg/domain"
	"opencollective/pkg/platform/sentinel"
	txcontext "opencollective/pkg/platform/tx"
)

// InMemory holds connected accounts. Lookups return the most recently
// connected account for a (collective, service) pair.
type InMemory struct {
	mu       sync.RWMutex
	accounts []*models.ConnectedAccount
}

func NewInMemory() *InMemory {
	return &InMemory{}
}

func (s *InMemory) Create(ctx context.Context, account *models.ConnectedAccount) error {
	cp := *account

	s.mu.Lock()
	s.accounts = append(s.accounts, &cp)
	s.mu.Unlock()

	txcontext.OnRollback(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, a := range s.accounts {
			if a.ID == cp.ID {
				s.accounts = append(s.accounts[:i], s.accounts[i+1:]...)
				return
			}
		}
	})
	return nil
}

func (s *InMemory) FindByCollectiveAndService(ctx context.Context, collectiveID id.CollectiveID, service string) (*models.ConnectedAccount, error) {
	defer txcontext.ReadCommitted(ctx)()
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := len(s.accounts) - 1; i >= 0; i-- {
		a := s.accounts[i]
		if a.CollectiveID == collectiveID && a.Service == service {
			cp := *a
			return &cp, nil
		}
	}
	return nil, sentinel.ErrNotFound
}
