package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"presale/internal/licensing/models"
	id "presale/pkg/domain"
	dErrors "presale/pkg/domain-errors"
	"presale/pkg/platform/httputil"
	"presale/pkg/requestcontext"
)

// Service upgrades the caller once their licence has been verified. It
// returns the caller's role after the attempt.
type Service interface {
	VerifyRealtor(ctx context.Context, userID id.UserID, licenseNumber, claimedName string) (models.Result, id.Role, error)
}

// Handler exposes realtor licence verification over HTTP.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts the verification endpoint. Callers wrap r with auth and
// rate-limit middleware.
func (h *Handler) Register(r chi.Router) {
	r.Post("/api/verify-realtor", h.HandleVerifyRealtor)
}

// HandleVerifyRealtor handles POST /api/verify-realtor.
func (h *Handler) HandleVerifyRealtor(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	userID := requestcontext.UserID(ctx)
	if userID.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	req, ok := httputil.DecodeAndPrepare[VerifyRealtorRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result, role, err := h.service.VerifyRealtor(ctx, userID, req.LicenseNumber, req.Name)
	if err != nil {
		h.logger.ErrorContext(ctx, "realtor verification failed",
			"request_id", requestID,
			"user_id", userID.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	resp := toResponse(result)
	switch {
	case result.IsValid:
		resp.Role = role.String()
		h.logger.InfoContext(ctx, "realtor verified",
			"request_id", requestID,
			"user_id", userID.String(),
		)
		httputil.WriteJSON(w, http.StatusOK, resp)
	case result.Reason.Transient():
		httputil.WriteJSON(w, http.StatusServiceUnavailable, resp)
	default:
		h.logger.InfoContext(ctx, "realtor verification rejected",
			"request_id", requestID,
			"user_id", userID.String(),
			"reason", string(result.Reason),
		)
		httputil.WriteJSON(w, http.StatusUnprocessableEntity, resp)
	}
}
