package application

import (
	"context"
	"sync"

	"opencollective/internal/collective/models"
	id "opencollective/pkg/domain"
	txcontext "opencollective/pkg/platform/tx"
)

// InMemory keeps host applications in insertion order.
type InMemory struct {
	mu   sync.RWMutex
	apps []*models.HostApplication
}

func NewInMemory() *InMemory {
	return &InMemory{}
}

func (s *InMemory) Create(ctx context.Context, app *models.HostApplication) error {
	cp := *app

	s.mu.Lock()
	s.apps = append(s.apps, &cp)
	s.mu.Unlock()

	txcontext.OnRollback(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, a := range s.apps {
			if a.ID == cp.ID {
				s.apps = append(s.apps[:i], s.apps[i+1:]...)
				return
			}
		}
	})
	return nil
}

func (s *InMemory) ListByCollective(ctx context.Context, collectiveID id.CollectiveID) ([]*models.HostApplication, error) {
	defer txcontext.ReadCommitted(ctx)()
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.HostApplication
	for _, a := range s.apps {
		if a.CollectiveID == collectiveID {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}
