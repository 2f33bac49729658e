package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"opencollective/internal/collective/handler/mocks"
	"opencollective/internal/collective/models"
	"opencollective/internal/collective/service"
	usermodels "opencollective/internal/user/models"
	id "opencollective/pkg/domain"
	dErrors "opencollective/pkg/domain-errors"
	"opencollective/pkg/testutil"
)

type HandlerSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	service *mocks.MockService
	router  chi.Router
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.service = mocks.NewMockService(s.ctrl)
	s.router = chi.NewRouter()
	New(s.service, slog.New(slog.DiscardHandler)).Register(s.router)
}

func (s *HandlerSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *HandlerSuite) TestCreateCollective() {
	s.Run("returns 201 with the collective and warnings", func() {
		c := &models.Collective{ID: id.CollectiveID(uuid.New()), Slug: "webpack", Name: "Webpack", Type: models.TypeCollective}
		actor := &usermodels.User{ID: id.UserID(uuid.New()), Email: "jane@example.com"}
		s.service.EXPECT().
			CreateCollective(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ any, req *models.CreateCollectiveRequest) (*service.CreateResult, error) {
				s.Equal("webpack", req.Collective.Slug)
				s.Require().NotNil(req.Host)
				s.Equal("foundation", req.Host.Slug)
				s.Require().NotNil(req.User)
				s.Equal("jane@example.com", req.User.Email)
				return &service.CreateResult{
					Collective:        c,
					Actor:             actor,
					ActorCreated:      true,
					ConfirmationToken: "secret-token",
					Strategy:          "explicit",
					Warnings:          []service.SideEffectFailure{{Effect: service.EffectCacheInvalidation, Err: errors.New("redis down")}},
				}, nil
			})

		rr := testutil.Serve(s.T(), s.router, http.MethodPost, "/collectives", map[string]any{
			"collective": map[string]any{"slug": "webpack", "name": "Webpack"},
			"host":       map[string]any{"slug": "foundation"},
			"user":       map[string]any{"email": "jane@example.com"},
		})

		s.Equal(http.StatusCreated, rr.Code)
		body := rr.Body.String()
		s.Contains(body, `"slug":"webpack"`)
		s.Contains(body, `"effect":"cache_invalidation"`)
		s.Contains(body, `"created":true`)
		s.NotContains(body, "secret-token")
		s.NotContains(body, "redis down")
	})

	s.Run("maps validation errors to 400", func() {
		s.service.EXPECT().CreateCollective(gomock.Any(), gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeValidation, "The slug 'admin' is not allowed."))

		rr := testutil.Serve(s.T(), s.router, http.MethodPost, "/collectives", map[string]any{
			"collective": map[string]any{"slug": "admin", "name": "Admin"},
		})
		errResp := testutil.AssertError(s.T(), rr, http.StatusBadRequest, "validation_error")
		s.Equal("The slug 'admin' is not allowed.", errResp["error_description"])
	})

	s.Run("maps unauthorized and conflict", func() {
		s.service.EXPECT().CreateCollective(gomock.Any(), gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeUnauthorized, "You need to be logged in to create a collective"))
		rr := testutil.Serve(s.T(), s.router, http.MethodPost, "/collectives",
			map[string]any{"collective": map[string]any{"slug": "x", "name": "X"}})
		testutil.AssertError(s.T(), rr, http.StatusUnauthorized, "unauthorized")

		s.service.EXPECT().CreateCollective(gomock.Any(), gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeConflict, "taken"))
		rr = testutil.Serve(s.T(), s.router, http.MethodPost, "/collectives",
			map[string]any{"collective": map[string]any{"slug": "x", "name": "X"}})
		testutil.AssertError(s.T(), rr, http.StatusConflict, "conflict")
	})

	s.Run("rejects malformed bodies without calling the service", func() {
		rr := testutil.Serve(s.T(), s.router, http.MethodPost, "/collectives", `{"collective":`)
		testutil.AssertError(s.T(), rr, http.StatusBadRequest, "bad_request")
	})

	s.Run("hides internal error details", func() {
		s.service.EXPECT().CreateCollective(gomock.Any(), gomock.Any()).
			Return(nil, dErrors.Wrap(errors.New("pq: connection reset"), dErrors.CodeInternal, "failed to create collective"))
		rr := testutil.Serve(s.T(), s.router, http.MethodPost, "/collectives",
			map[string]any{"collective": map[string]any{"slug": "x", "name": "X"}})
		s.Equal(http.StatusInternalServerError, rr.Code)
		s.NotContains(rr.Body.String(), "connection reset")
	})
}

func (s *HandlerSuite) TestGetAccount() {
	s.Run("returns the account view", func() {
		now := time.Now().UTC()
		hostID := id.CollectiveID(uuid.New())
		view := models.NewAccountWithHost(
			&models.Collective{Slug: "webpack", HostCollectiveID: &hostID, ApprovedAt: &now, IsActive: true},
			&models.Collective{ID: hostID, Slug: "opensource"},
		)
		s.service.EXPECT().GetAccountWithHost(gomock.Any(), "webpack").Return(view, nil)

		rr := testutil.Serve(s.T(), s.router, http.MethodGet, "/collectives/webpack", nil)
		s.Equal(http.StatusOK, rr.Code)
		body := testutil.DecodeJSON[map[string]any](s.T(), rr)
		s.Equal(true, body["is_approved"])
		s.Equal("DEFAULT", body["host_fees_structure"])
	})

	s.Run("returns 404 for unknown slugs", func() {
		s.service.EXPECT().GetAccountWithHost(gomock.Any(), "missing").
			Return(nil, dErrors.New(dErrors.CodeNotFound, "Collective not found"))
		rr := testutil.Serve(s.T(), s.router, http.MethodGet, "/collectives/missing", nil)
		testutil.AssertError(s.T(), rr, http.StatusNotFound, "not_found")
	})
}
