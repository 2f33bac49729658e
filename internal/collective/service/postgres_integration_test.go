//go:build integration

package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"opencollective/internal/collective/actor"
	"opencollective/internal/collective/hosting"
	"opencollective/internal/collective/models"
	"opencollective/internal/collective/slug"
	"opencollective/internal/collective/store/application"
	collectivestore "opencollective/internal/collective/store/collective"
	"opencollective/internal/collective/store/connectedaccount"
	"opencollective/internal/collective/store/membership"
	"opencollective/internal/collective/verification"
	"opencollective/internal/platform/postgres"
	usermodels "opencollective/internal/user/models"
	userstore "opencollective/internal/user/store"
	id "opencollective/pkg/domain"
	dErrors "opencollective/pkg/domain-errors"
	auditpublisher "opencollective/pkg/platform/audit/publisher"
	auditpg "opencollective/pkg/platform/audit/store/postgres"
	"opencollective/pkg/requestcontext"
	"opencollective/pkg/testutil/containers"
)

type PostgresServiceSuite struct {
	suite.Suite
	pg          *containers.PostgresContainer
	ctx         context.Context
	collectives *collectivestore.PostgresStore
	users       *userstore.PostgresStore
	host        *models.Collective
}

func TestPostgresServiceSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresServiceSuite))
}

func (s *PostgresServiceSuite) SetupSuite() {
	s.pg = containers.GetManager().GetPostgres(s.T())
	s.ctx = context.Background()
	s.collectives = collectivestore.NewPostgres(s.pg.DB)
	s.users = userstore.NewPostgres(s.pg.DB, s.collectives)
}

func (s *PostgresServiceSuite) SetupTest() {
	s.Require().NoError(s.pg.Truncate(s.ctx))
	host, err := models.NewCollective(id.CollectiveID(uuid.New()), "foundation", "Foundation", models.TypeOrganization, nil, time.Now())
	s.Require().NoError(err)
	host.IsHostAccount = true
	host.IsActive = true
	s.Require().NoError(s.collectives.CreateIfSlugAvailable(s.ctx, host))
	s.host = host
}

func (s *PostgresServiceSuite) newService(applications ApplicationStore) *Service {
	memberships := membership.NewPostgres(s.pg.DB)
	hosts, err := hosting.NewResolver(s.collectives, connectedaccount.NewPostgres(s.pg.DB), memberships,
		verification.NewStub(100), "foundation")
	s.Require().NoError(err)
	svc, err := New(Stores{
		Collectives:  s.collectives,
		Memberships:  memberships,
		Applications: applications,
		Tx:           postgres.NewTxRunner(s.pg.DB),
	}, slug.NewValidator(s.collectives), actor.NewResolver(s.users, s.collectives, "foundation"), hosts,
		WithAuditPublisher(auditpublisher.NewPublisher(auditpg.New(s.pg.DB))))
	s.Require().NoError(err)
	return svc
}

func (s *PostgresServiceSuite) count(table string) int {
	var n int
	s.Require().NoError(s.pg.DB.QueryRowContext(s.ctx, `SELECT count(*) FROM `+table).Scan(&n))
	return n
}

func (s *PostgresServiceSuite) TestCreateWithTrustedHostAndCredentials() {
	svc := s.newService(application.NewPostgres(s.pg.DB))
	req := newRequest("jit-collective")
	req.Host = &models.HostReference{Slug: "foundation"}
	req.User = &usermodels.Profile{Email: "newcomer@example.com", Name: "Newcomer"}

	result, err := svc.CreateCollective(requestcontext.WithRequestID(s.ctx, "req-1"), req)
	s.Require().NoError(err)
	s.True(result.ActorCreated)
	s.Require().NotNil(result.Host)
	s.Equal(s.host.ID, result.Host.ID)
	s.Empty(result.Warnings)

	s.Equal(1, s.count("members"))
	s.Equal(1, s.count("host_applications"))
	s.GreaterOrEqual(s.count("outbox"), 3)

	var actions []string
	rows, err := s.pg.DB.QueryContext(s.ctx, `SELECT event_type FROM outbox ORDER BY created_at`)
	s.Require().NoError(err)
	defer rows.Close()
	for rows.Next() {
		var action string
		s.Require().NoError(rows.Scan(&action))
		actions = append(actions, action)
	}
	s.Contains(actions, "user.created")
	s.Contains(actions, "collective.created")
	s.Contains(actions, "collective.host_applied")
}

func (s *PostgresServiceSuite) TestFailedAttachmentRollsBackEverything() {
	svc := s.newService(failingApplications{})
	provisioned, err := s.users.FindOrCreateByEmail(s.ctx, usermodels.Profile{Email: "admin@example.com"})
	s.Require().NoError(err)
	collectivesBefore := s.count("collectives")

	req := newRequest("half-done")
	req.Host = &models.HostReference{Slug: "foundation"}
	_, err = svc.CreateCollective(requestcontext.WithUserID(s.ctx, provisioned.User.ID), req)
	s.Require().Error(err)
	s.Equal(dErrors.CodeInternal, dErrors.CodeOf(err))

	s.Equal(collectivesBefore, s.count("collectives"))
	s.Zero(s.count("members"))
	_, err = s.collectives.FindBySlug(s.ctx, "half-done")
	s.Error(err)
}

func (s *PostgresServiceSuite) TestGetAccountWithHost() {
	svc := s.newService(application.NewPostgres(s.pg.DB))
	provisioned, err := s.users.FindOrCreateByEmail(s.ctx, usermodels.Profile{Email: "reader@example.com"})
	s.Require().NoError(err)
	req := newRequest("readable")
	req.Host = &models.HostReference{Slug: "foundation"}
	_, err = svc.CreateCollective(requestcontext.WithUserID(s.ctx, provisioned.User.ID), req)
	s.Require().NoError(err)

	view, err := svc.GetAccountWithHost(s.ctx, strings.ToUpper("readable"))
	s.Require().NoError(err)
	s.Equal("readable", view.Collective.Slug)
	s.Require().NotNil(view.Host)
	s.Equal(s.host.ID, view.Host.ID)
	s.False(view.IsApproved)
}
