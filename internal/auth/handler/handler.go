// Package handler exposes accounts, sessions and user administration over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"presale/internal/auth/models"
	"presale/internal/auth/service"
	id "presale/pkg/domain"
	dErrors "presale/pkg/domain-errors"
	"presale/pkg/platform/httputil"
	authmw "presale/pkg/platform/middleware/auth"
	"presale/pkg/requestcontext"
)

type Service interface {
	Register(ctx context.Context, in service.RegisterInput) (*service.AuthResult, error)
	Login(ctx context.Context, username, password string) (*service.AuthResult, error)
	Logout(ctx context.Context, sessionID id.SessionID) error
	CurrentUser(ctx context.Context, userID id.UserID) (*models.User, error)

	ListUsers(ctx context.Context) ([]*models.User, error)
	CreateUser(ctx context.Context, in service.CreateUserInput) (*models.User, error)
	UpdateUser(ctx context.Context, targetID id.UserID, in service.UpdateUserInput) (*models.User, error)
	DeleteUser(ctx context.Context, targetID id.UserID) error

	Promote(ctx context.Context, targetID id.UserID) (*models.User, error)
	Demote(ctx context.Context, targetID id.UserID) (*models.User, error)
	Deactivate(ctx context.Context, targetID id.UserID) (*models.User, error)
}

// CookieConfig controls the session cookie.
type CookieConfig struct {
	Name   string
	Secure bool
}

type Handler struct {
	service      Service
	cookie       CookieConfig
	logger       *slog.Logger
	loginLimiter func(http.Handler) http.Handler
}

func New(service Service, cookie CookieConfig, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		cookie:  cookie,
		logger:  logger,
	}
}

// WithLoginLimiter wraps the login route, typically with a per-client rate limit.
func (h *Handler) WithLoginLimiter(mw func(http.Handler) http.Handler) *Handler {
	h.loginLimiter = mw
	return h
}

// Register mounts the account routes. r must already run the Authenticate
// middleware; role checks are added here.
func (h *Handler) Register(r chi.Router) {
	r.Post("/api/register", h.HandleRegister)
	login := http.Handler(http.HandlerFunc(h.HandleLogin))
	if h.loginLimiter != nil {
		login = h.loginLimiter(login)
	}
	r.Method(http.MethodPost, "/api/login", login)
	r.Post("/api/logout", h.HandleLogout)
	r.With(authmw.RequireAuth(h.logger)).Get("/api/user", h.HandleCurrentUser)

	r.Group(func(r chi.Router) {
		r.Use(authmw.RequireRole(id.RoleAdmin, h.logger))
		r.Get("/api/users", h.HandleListUsers)
		r.Post("/api/users", h.HandleCreateUser)
		r.Put("/api/users/{id}", h.HandleUpdateUser)
		r.Delete("/api/users/{id}", h.HandleDeleteUser)
	})

	r.Group(func(r chi.Router) {
		r.Use(authmw.RequireRole(id.RoleSuperAdmin, h.logger))
		r.Post("/api/admin/promote", h.accountAction("promote", h.service.Promote))
		r.Post("/api/admin/demote", h.accountAction("demote", h.service.Demote))
		r.Post("/api/admin/deactivate", h.accountAction("deactivate", h.service.Deactivate))
	})
}

func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[RegisterRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	res, err := h.service.Register(ctx, service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.logger.InfoContext(ctx, "registration refused",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	h.setSessionCookie(w, res.Token, res.Session.ExpiresAt)
	httputil.WriteJSON(w, http.StatusCreated, toAuthResponse(res))
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[LoginRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	res, err := h.service.Login(ctx, req.Username, req.Password)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.setSessionCookie(w, res.Token, res.Session.ExpiresAt)
	httputil.WriteJSON(w, http.StatusOK, toAuthResponse(res))
}

// HandleLogout revokes the current session if there is one and always clears the cookie.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if sessionID := requestcontext.SessionID(ctx); !sessionID.IsNil() {
		if err := h.service.Logout(ctx, sessionID); err != nil {
			h.logger.ErrorContext(ctx, "logout failed",
				"request_id", requestcontext.RequestID(ctx),
				"error", err,
			)
			httputil.WriteError(w, err)
			return
		}
	}
	h.clearSessionCookie(w)
	httputil.WriteJSON(w, http.StatusOK, SuccessResponse{Success: true})
}

func (h *Handler) HandleCurrentUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, err := h.service.CurrentUser(ctx, requestcontext.UserID(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toUserResponse(user))
}

func (h *Handler) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to list users",
			"request_id", requestcontext.RequestID(r.Context()),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toUserResponses(users))
}

func (h *Handler) HandleCreateUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[CreateUserRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	user, err := h.service.CreateUser(ctx, service.CreateUserInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.role,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toUserResponse(user))
}

func (h *Handler) HandleUpdateUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	targetID, err := id.ParseUserID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[UpdateUserRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	user, err := h.service.UpdateUser(ctx, targetID, service.UpdateUserInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.role,
		IsActive: req.IsActive,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toUserResponse(user))
}

func (h *Handler) HandleDeleteUser(w http.ResponseWriter, r *http.Request) {
	targetID, err := id.ParseUserID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.service.DeleteUser(r.Context(), targetID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, SuccessResponse{Success: true})
}

func (h *Handler) accountAction(name string, apply func(context.Context, id.UserID) (*models.User, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		requestID := requestcontext.RequestID(ctx)

		req, ok := httputil.DecodeAndPrepare[AccountActionRequest](w, r, h.logger, ctx, requestID)
		if !ok {
			return
		}
		user, err := apply(ctx, req.userID)
		if err != nil {
			if !dErrors.HasCode(err, dErrors.CodeForbidden) && !dErrors.HasCode(err, dErrors.CodeNotFound) {
				h.logger.ErrorContext(ctx, "account action failed",
					"action", name,
					"request_id", requestID,
					"error", err,
				)
			}
			httputil.WriteError(w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, toUserResponse(user))
	}
}

func (h *Handler) setSessionCookie(w http.ResponseWriter, token string, expiresAt time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		MaxAge:   int(time.Until(expiresAt).Seconds()),
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func toAuthResponse(res *service.AuthResult) AuthResponse {
	return AuthResponse{
		User:      toUserResponse(res.User),
		Token:     res.Token,
		ExpiresAt: res.Session.ExpiresAt,
	}
}
