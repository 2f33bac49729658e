package membership

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"opencollective/internal/collective/models"
	id "opencollective/pkg/domain"
	"opencollective/pkg/platform/sentinel"
	txcontext "opencollective/pkg/platform/tx"
)

type MembershipStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func (s *MembershipStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func TestMembershipStoreSuite(t *testing.T) {
	suite.Run(t, new(MembershipStoreSuite))
}

func (s *MembershipStoreSuite) grant(collectiveID id.CollectiveID, userID id.UserID, role models.Role) *models.Membership {
	m, err := models.NewMembership(id.MembershipID(uuid.New()), collectiveID, userID,
		id.CollectiveID(uuid.New()), role, userID, time.Now())
	s.Require().NoError(err)
	return m
}

func (s *MembershipStoreSuite) TestCreateAndHasRole() {
	collectiveID := id.CollectiveID(uuid.New())
	userID := id.UserID(uuid.New())
	m := s.grant(collectiveID, userID, models.RoleAdmin)
	s.Require().NoError(s.store.Create(s.ctx, m))

	ok, err := s.store.HasRole(s.ctx, collectiveID, userID, models.RoleAdmin)
	s.Require().NoError(err)
	s.True(ok)

	ok, err = s.store.HasRole(s.ctx, collectiveID, userID, models.RoleHost)
	s.Require().NoError(err)
	s.False(ok)

	list, err := s.store.ListByCollective(s.ctx, collectiveID)
	s.Require().NoError(err)
	s.Len(list, 1)
}

func (s *MembershipStoreSuite) TestDuplicateGrantRejected() {
	m := s.grant(id.CollectiveID(uuid.New()), id.UserID(uuid.New()), models.RoleAdmin)
	s.Require().NoError(s.store.Create(s.ctx, m))

	dup := *m
	dup.ID = id.MembershipID(uuid.New())
	s.ErrorIs(s.store.Create(s.ctx, &dup), sentinel.ErrAlreadyUsed)
}

func (s *MembershipStoreSuite) TestRollbackRemovesGrant() {
	collectiveID := id.CollectiveID(uuid.New())
	userID := id.UserID(uuid.New())

	txCtx, journal := txcontext.WithJournal(s.ctx)
	s.Require().NoError(s.store.Create(txCtx, s.grant(collectiveID, userID, models.RoleAdmin)))
	journal.Rollback()

	ok, err := s.store.HasRole(s.ctx, collectiveID, userID, models.RoleAdmin)
	s.Require().NoError(err)
	s.False(ok)
}
