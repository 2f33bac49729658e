package verification

import (
	"context"
	"strings"
	"sync"
)

// Stub is a Verifier for tests and e2e environments. By default every check
// passes; handles can be made to fail per check.
type Stub struct {
	mu         sync.Mutex
	notAdmin   map[string]bool
	belowStars map[string]bool
	adminCalls []string
	popularity []string
	minStars   int
}

func NewStub(minStars int) *Stub {
	return &Stub{
		notAdmin:   make(map[string]bool),
		belowStars: make(map[string]bool),
		minStars:   minStars,
	}
}

// DenyAdmin makes CheckAdmin fail for handle.
func (s *Stub) DenyAdmin(handle string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notAdmin[handle] = true
}

// DenyPopularity makes CheckPopularity fail for handle.
func (s *Stub) DenyPopularity(handle string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.belowStars[handle] = true
}

func (s *Stub) CheckAdmin(_ context.Context, handle, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.adminCalls = append(s.adminCalls, handle)
	if s.notAdmin[handle] {
		return NewError(ErrorNotAdmin, NotAdminMessage(strings.Contains(handle, "/")), nil)
	}
	return nil
}

func (s *Stub) CheckPopularity(_ context.Context, handle, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.popularity = append(s.popularity, handle)
	if s.belowStars[handle] {
		return NewError(ErrorThreshold, ThresholdMessage(strings.Contains(handle, "/"), s.minStars), nil)
	}
	return nil
}

// Calls returns the handles passed to each check, in call order.
func (s *Stub) Calls() (admin, popularity []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string{}, s.adminCalls...), append([]string{}, s.popularity...)
}
