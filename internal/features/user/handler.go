package user

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/pankajredekar/shopadmin/internal/handlerutils"
	"github.com/pankajredekar/shopadmin/internal/middlewares"
	"github.com/pankajredekar/shopadmin/internal/permission"
	"github.com/pankajredekar/shopadmin/internal/servererrors"
)

type servicer interface {
	List(ctx context.Context) ([]UserDTO, error)
	Create(ctx context.Context, req *CreateUserRequest) (*UserDTO, error)
	Update(ctx context.Context, id uint, req *UpdateUserRequest) (*UserDTO, error)
	Delete(ctx context.Context, actorID, id uint) error
}

type middleware interface {
	ErrorHandler(h handlerutils.APIHandler) http.HandlerFunc
	Require(p permission.Permission, h handlerutils.APIHandler) handlerutils.APIHandler
}

type handler struct {
	service    servicer
	middleware middleware
}

func NewHandler(service servicer, middleware middleware) *handler {
	return &handler{
		service:    service,
		middleware: middleware,
	}
}

func (h *handler) RegisterRoutes(router chi.Router) {
	router.Get(
		"/users",
		h.middleware.ErrorHandler(
			h.middleware.Require(permission.ViewUsers, h.listHandler),
		),
	)

	router.Post(
		"/users",
		h.middleware.ErrorHandler(
			h.middleware.Require(permission.CreateUsers, h.createHandler),
		),
	)

	router.Put(
		"/users/{userID}",
		h.middleware.ErrorHandler(
			h.middleware.Require(permission.EditUsers, h.updateHandler),
		),
	)

	router.Delete(
		"/users/{userID}",
		h.middleware.ErrorHandler(
			h.middleware.Require(permission.DeleteUsers, h.deleteHandler),
		),
	)
}

func (h *handler) listHandler(w http.ResponseWriter, r *http.Request) error {
	ctx, cancel := context.WithTimeout(
		r.Context(),
		(30 * time.Second),
	)
	defer cancel()

	users, err := h.service.List(ctx)
	if err != nil {
		return err
	}

	return handlerutils.WriteSuccessJSON(
		w,
		http.StatusOK,
		"",
		users,
	)
}

func (h *handler) createHandler(w http.ResponseWriter, r *http.Request) error {
	ctx, cancel := context.WithTimeout(
		r.Context(),
		(30 * time.Second),
	)
	defer cancel()

	var payload CreateUserRequest
	if err := handlerutils.ParseJSON(r, &payload); err != nil {
		return servererrors.New(
			http.StatusBadRequest,
			servererrors.ErrInvalidRequestBody.Error(),
			nil,
		)
	}

	user, err := h.service.Create(ctx, &payload)
	if err != nil {
		return err
	}

	return handlerutils.WriteSuccessJSON(
		w,
		http.StatusCreated,
		"User created successfully",
		user,
	)
}

func (h *handler) updateHandler(w http.ResponseWriter, r *http.Request) error {
	ctx, cancel := context.WithTimeout(
		r.Context(),
		(30 * time.Second),
	)
	defer cancel()

	id, ok := handlerutils.URLParamID(r, "userID")
	if !ok {
		return servererrors.NotFound("User")
	}

	var payload UpdateUserRequest
	if err := handlerutils.ParseJSON(r, &payload); err != nil {
		return servererrors.New(
			http.StatusBadRequest,
			servererrors.ErrInvalidRequestBody.Error(),
			nil,
		)
	}

	user, err := h.service.Update(ctx, id, &payload)
	if err != nil {
		return err
	}

	return handlerutils.WriteSuccessJSON(
		w,
		http.StatusOK,
		"User updated successfully",
		user,
	)
}

func (h *handler) deleteHandler(w http.ResponseWriter, r *http.Request) error {
	ctx, cancel := context.WithTimeout(
		r.Context(),
		(30 * time.Second),
	)
	defer cancel()

	actor, ok := middlewares.UserFromContext(ctx)
	if !ok {
		return servererrors.Unauthenticated()
	}

	id, ok := handlerutils.URLParamID(r, "userID")
	if !ok {
		return servererrors.NotFound("User")
	}

	if err := h.service.Delete(ctx, actor.ID, id); err != nil {
		return err
	}

	return handlerutils.WriteSuccessJSON(
		w,
		http.StatusOK,
		"User deleted successfully",
		nil,
	)
}
