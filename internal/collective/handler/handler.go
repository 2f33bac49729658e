package handler

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"opencollective/internal/collective/models"
	"opencollective/internal/collective/service"
	dErrors "opencollective/pkg/domain-errors"
	"opencollective/pkg/platform/httputil"
	request "opencollective/pkg/platform/middleware/request"
)

// Service defines the collective operations exposed over HTTP.
type Service interface {
	CreateCollective(ctx context.Context, req *models.CreateCollectiveRequest) (*service.CreateResult, error)
	GetAccountWithHost(ctx context.Context, slug string) (*models.AccountWithHost, error)
}

// Handler handles collective endpoints.
type Handler struct {
	logger      *slog.Logger
	collectives Service
}

// New creates a new collective Handler.
func New(collectives Service, logger *slog.Logger) *Handler {
	return &Handler{
		logger:      logger,
		collectives: collectives,
	}
}

// Register registers the collective routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/collectives", h.handleCreateCollective)
	r.Get("/collectives/{slug}", h.handleGetAccount)
}

// handleCreateCollective creates a collective for the session user, or for
// inline credentials when the target is the trusted host.
func (h *Handler) handleCreateCollective(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	var req models.CreateCollectiveRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.logger.WarnContext(ctx, "invalid create collective request",
			"request_id", requestID,
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}

	result, err := h.collectives.CreateCollective(ctx, &req)
	if err != nil {
		h.logFailure(ctx, "failed to create collective", err)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, toCreateResponse(result))
}

func (h *Handler) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	view, err := h.collectives.GetAccountWithHost(ctx, chi.URLParam(r, "slug"))
	if err != nil {
		h.logFailure(ctx, "failed to load collective", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, view)
}

// logFailure logs client errors at WARN and everything else at ERROR.
func (h *Handler) logFailure(ctx context.Context, msg string, err error) {
	attrs := []any{
		"request_id", request.GetRequestID(ctx),
		"code", string(dErrors.CodeOf(err)),
		"error", err.Error(),
	}
	if httputil.StatusFor(dErrors.CodeOf(err)) < http.StatusInternalServerError {
		h.logger.WarnContext(ctx, msg, attrs...)
		return
	}
	h.logger.ErrorContext(ctx, msg, attrs...)
}
