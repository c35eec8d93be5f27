package admin

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	id "presale/pkg/domain"
	dErrors "presale/pkg/domain-errors"
	"presale/pkg/platform/httputil"
	authmw "presale/pkg/platform/middleware/auth"
	"presale/pkg/requestcontext"
)

type Handler struct {
	service *Service
	logger  *slog.Logger
}

func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the activity view for admins and the audit trail for
// superadmins. r must already run the Authenticate middleware.
func (h *Handler) Register(r chi.Router) {
	r.With(authmw.RequireRole(id.RoleAdmin, h.logger)).Get("/api/admin/activity", h.HandleActivity)
	r.Group(func(r chi.Router) {
		r.Use(authmw.RequireRole(id.RoleSuperAdmin, h.logger))
		r.Get("/api/admin/audit", h.HandleRecentAudit)
		r.Get("/api/admin/users/{id}/audit", h.HandleUserAudit)
	})
}

func (h *Handler) HandleActivity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rows, err := h.service.Activity(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to build activity view",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toActivityList(rows))
}

func (h *Handler) HandleRecentAudit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "limit must be a non-negative integer"))
			return
		}
		limit = n
	}
	events, err := h.service.RecentAudit(ctx, limit)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toAuditList(events))
}

func (h *Handler) HandleUserAudit(w http.ResponseWriter, r *http.Request) {
	userID, err := id.ParseUserID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	events, err := h.service.UserAudit(r.Context(), userID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toAuditList(events))
}
