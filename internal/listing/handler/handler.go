// Package handler serves listings over HTTP, shaped by the caller's role.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"presale/internal/listing/models"
	"presale/internal/listing/service"
	"presale/internal/listing/visibility"
	id "presale/pkg/domain"
	dErrors "presale/pkg/domain-errors"
	"presale/pkg/platform/httputil"
	authmw "presale/pkg/platform/middleware/auth"
	"presale/pkg/requestcontext"
)

type Service interface {
	List(ctx context.Context, q service.ListQuery) ([]visibility.View, error)
	Get(ctx context.Context, listingID id.ListingID) (visibility.View, error)
	Create(ctx context.Context, fields models.Fields) (*models.Listing, error)
	Update(ctx context.Context, listingID id.ListingID, fields models.Fields) (*models.Listing, error)
	Delete(ctx context.Context, listingID id.ListingID) error
}

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

// Register mounts the listing routes. Reads are open to guests; r must
// already run the Authenticate middleware so the caller's role is known.
func (h *Handler) Register(r chi.Router) {
	r.Get("/api/listings", h.HandleList)
	r.Get("/api/listings/{id}", h.HandleGet)
	r.With(authmw.RequireRole(id.RoleMember, h.logger)).Post("/api/listings", h.HandleCreate)
	r.With(authmw.RequireAuth(h.logger)).Put("/api/listings/{id}", h.HandleUpdate)
	r.With(authmw.RequireRole(id.RoleAdmin, h.logger)).Delete("/api/listings/{id}", h.HandleDelete)
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := service.ListQuery{}
	if raw := r.URL.Query().Get("pool"); raw != "" {
		pool, err := strconv.ParseBool(raw)
		if err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "pool must be true or false"))
			return
		}
		q.PoolOnly = pool
	}

	views, err := h.service.List(ctx, q)
	if err != nil {
		h.logFailure(ctx, "list", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toViewResponses(views))
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	listingID, err := id.ParseListingID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	view, err := h.service.Get(ctx, listingID)
	if err != nil {
		h.logFailure(ctx, "get", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toViewResponse(view))
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[ListingRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	listing, err := h.service.Create(ctx, req.fields)
	if err != nil {
		h.logFailure(ctx, "create", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toListingResponse(listing))
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	listingID, err := id.ParseListingID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[ListingRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	listing, err := h.service.Update(ctx, listingID, req.fields)
	if err != nil {
		h.logFailure(ctx, "update", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toListingResponse(listing))
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	listingID, err := id.ParseListingID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.service.Delete(ctx, listingID); err != nil {
		h.logFailure(ctx, "delete", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, SuccessResponse{Success: true})
}

// logFailure logs server-side faults; client errors are only returned.
func (h *Handler) logFailure(ctx context.Context, op string, err error) {
	if !dErrors.HasCode(err, dErrors.CodeInternal) && !dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
		return
	}
	h.logger.ErrorContext(ctx, "listing request failed",
		"op", op,
		"request_id", requestcontext.RequestID(ctx),
		"error", err,
	)
}
