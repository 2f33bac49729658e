package store

import (
	"context"
	"sync"

	"opencollective/internal/user/models"
	id "opencollective/pkg/domain"
	"opencollective/pkg/email"
	"opencollective/pkg/platform/sentinel"
	txcontext "opencollective/pkg/platform/tx"
	"opencollective/pkg/requestcontext"
)

// InMemory stores users keyed by normalized email. FindOrCreateByEmail is
// serialized so concurrent callers for one email observe a single user.
type InMemory struct {
	collectives CollectiveCreator

	createMu sync.Mutex
	mu       sync.RWMutex
	byID     map[id.UserID]*models.User
	byEmail  map[string]id.UserID
}

func NewInMemory(collectives CollectiveCreator) *InMemory {
	return &InMemory{
		collectives: collectives,
		byID:        make(map[id.UserID]*models.User),
		byEmail:     make(map[string]id.UserID),
	}
}

func (s *InMemory) FindByID(ctx context.Context, userID id.UserID) (*models.User, error) {
	defer txcontext.ReadCommitted(ctx)()
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.byID[userID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *InMemory) FindByEmail(ctx context.Context, address string) (*models.User, error) {
	defer txcontext.ReadCommitted(ctx)()
	s.mu.RLock()
	defer s.mu.RUnlock()
	userID, ok := s.byEmail[email.Normalize(address)]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *s.byID[userID]
	return &cp, nil
}

// FindOrCreateByEmail returns the user owning profile.Email, creating it and
// its personal collective when none exists. A new personal collective never
// takes one of excludeSlugs.
func (s *InMemory) FindOrCreateByEmail(ctx context.Context, profile models.Profile, excludeSlugs ...string) (*Provisioned, error) {
	profile.Normalize()

	s.createMu.Lock()
	defer s.createMu.Unlock()

	if existing, err := s.FindByEmail(ctx, profile.Email); err == nil {
		return &Provisioned{User: existing}, nil
	}

	user, _, token, err := provisionAccount(ctx, s.collectives, profile, requestcontext.Now(ctx), excludeSlugs)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	cp := *user
	s.byID[user.ID] = &cp
	s.byEmail[user.Email] = user.ID
	s.mu.Unlock()

	txcontext.OnRollback(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.byID, user.ID)
		delete(s.byEmail, user.Email)
	})
	return &Provisioned{User: user, Created: true, ConfirmationToken: token}, nil
}
