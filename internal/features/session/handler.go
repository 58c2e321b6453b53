package session

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/pankajredekar/shopadmin/internal/auth"
	"github.com/pankajredekar/shopadmin/internal/handlerutils"
	"github.com/pankajredekar/shopadmin/internal/middlewares"
	"github.com/pankajredekar/shopadmin/internal/models"
	"github.com/pankajredekar/shopadmin/internal/ratelimit"
	"github.com/pankajredekar/shopadmin/internal/servererrors"
)

type servicer interface {
	Register(ctx context.Context, req *RegisterRequest) (*models.User, error)
	Login(ctx context.Context, req *LoginRequest) (*auth.IssuedToken, error)
	Logout(ctx context.Context, userID uint) error
}

type middleware interface {
	ErrorHandler(h handlerutils.APIHandler) http.HandlerFunc
	Authenticate(h handlerutils.APIHandler) handlerutils.APIHandler
	Throttle(limiter ratelimit.Limiter, h handlerutils.APIHandler) handlerutils.APIHandler
}

type handler struct {
	service         servicer
	middleware      middleware
	registerLimiter ratelimit.Limiter
}

func NewHandler(service servicer, middleware middleware, registerLimiter ratelimit.Limiter) *handler {
	return &handler{
		service:         service,
		middleware:      middleware,
		registerLimiter: registerLimiter,
	}
}

func (h *handler) RegisterRoutes(router chi.Router) {
	router.Post(
		"/register",
		h.middleware.ErrorHandler(
			h.middleware.Throttle(
				h.registerLimiter,
				h.registerHandler,
			),
		),
	)

	router.Post(
		"/login",
		h.middleware.ErrorHandler(
			h.loginHandler,
		),
	)

	// protected routes
	router.Post(
		"/logout",
		h.middleware.ErrorHandler(
			h.middleware.Authenticate(
				h.logoutHandler,
			),
		),
	)
}

func (h *handler) registerHandler(w http.ResponseWriter, r *http.Request) error {
	ctx, cancel := context.WithTimeout(
		r.Context(),
		(30 * time.Second),
	)
	defer cancel()

	var payload RegisterRequest
	if err := handlerutils.ParseJSON(r, &payload); err != nil {
		return servererrors.New(
			http.StatusBadRequest,
			servererrors.ErrInvalidRequestBody.Error(),
			nil,
		)
	}

	user, err := h.service.Register(ctx, &payload)
	if err != nil {
		return err
	}

	return handlerutils.WriteSuccessJSON(
		w,
		http.StatusCreated,
		"Admin created successfully",
		user,
	)
}

func (h *handler) loginHandler(w http.ResponseWriter, r *http.Request) error {
	ctx, cancel := context.WithTimeout(
		r.Context(),
		(30 * time.Second),
	)
	defer cancel()

	var payload LoginRequest
	if err := handlerutils.ParseJSON(r, &payload); err != nil {
		return servererrors.New(
			http.StatusBadRequest,
			servererrors.ErrInvalidRequestBody.Error(),
			nil,
		)
	}

	token, err := h.service.Login(ctx, &payload)
	if err != nil {
		return err
	}

	return handlerutils.WriteSuccessJSON(
		w,
		http.StatusOK,
		"Login successful",
		token,
	)
}

func (h *handler) logoutHandler(w http.ResponseWriter, r *http.Request) error {
	user, ok := middlewares.UserFromContext(r.Context())
	if !ok {
		return servererrors.Unauthenticated()
	}

	if err := h.service.Logout(r.Context(), user.ID); err != nil {
		return err
	}

	return handlerutils.WriteSuccessJSON(
		w,
		http.StatusOK,
		"Logout successful",
		nil,
	)
}
