package category

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/pankajredekar/shopadmin/internal/handlerutils"
	"github.com/pankajredekar/shopadmin/internal/models"
	"github.com/pankajredekar/shopadmin/internal/permission"
	"github.com/pankajredekar/shopadmin/internal/servererrors"
)

type servicer interface {
	List(ctx context.Context) ([]models.Category, error)
	Create(ctx context.Context, req *CategoryRequest) (*models.Category, error)
	Update(ctx context.Context, id uint, req *CategoryRequest) (*models.Category, error)
	Delete(ctx context.Context, id uint) error
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
		"/categories",
		h.middleware.ErrorHandler(
			h.middleware.Require(permission.ViewCategories, h.listHandler),
		),
	)

	router.Post(
		"/categories",
		h.middleware.ErrorHandler(
			h.middleware.Require(permission.CreateCategories, h.createHandler),
		),
	)

	router.Put(
		"/categories/{categoryID}",
		h.middleware.ErrorHandler(
			h.middleware.Require(permission.EditCategories, h.updateHandler),
		),
	)

	router.Delete(
		"/categories/{categoryID}",
		h.middleware.ErrorHandler(
			h.middleware.Require(permission.DeleteCategories, h.deleteHandler),
		),
	)
}

func (h *handler) listHandler(w http.ResponseWriter, r *http.Request) error {
	ctx, cancel := context.WithTimeout(
		r.Context(),
		(30 * time.Second),
	)
	defer cancel()

	categories, err := h.service.List(ctx)
	if err != nil {
		return err
	}

	return handlerutils.WriteSuccessJSON(
		w,
		http.StatusOK,
		"",
		categories,
	)
}

func (h *handler) createHandler(w http.ResponseWriter, r *http.Request) error {
	ctx, cancel := context.WithTimeout(
		r.Context(),
		(30 * time.Second),
	)
	defer cancel()

	var payload CategoryRequest
	if err := handlerutils.ParseJSON(r, &payload); err != nil {
		return servererrors.New(
			http.StatusBadRequest,
			servererrors.ErrInvalidRequestBody.Error(),
			nil,
		)
	}

	category, err := h.service.Create(ctx, &payload)
	if err != nil {
		return err
	}

	return handlerutils.WriteSuccessJSON(
		w,
		http.StatusCreated,
		"Category created successfully",
		category,
	)
}

func (h *handler) updateHandler(w http.ResponseWriter, r *http.Request) error {
	ctx, cancel := context.WithTimeout(
		r.Context(),
		(30 * time.Second),
	)
	defer cancel()

	id, ok := handlerutils.URLParamID(r, "categoryID")
	if !ok {
		return servererrors.NotFound("Category")
	}

	var payload CategoryRequest
	if err := handlerutils.ParseJSON(r, &payload); err != nil {
		return servererrors.New(
			http.StatusBadRequest,
			servererrors.ErrInvalidRequestBody.Error(),
			nil,
		)
	}

	category, err := h.service.Update(ctx, id, &payload)
	if err != nil {
		return err
	}

	return handlerutils.WriteSuccessJSON(
		w,
		http.StatusOK,
		"Category updated successfully",
		category,
	)
}

func (h *handler) deleteHandler(w http.ResponseWriter, r *http.Request) error {
	ctx, cancel := context.WithTimeout(
		r.Context(),
		(30 * time.Second),
	)
	defer cancel()

	id, ok := handlerutils.URLParamID(r, "categoryID")
	if !ok {
		return servererrors.NotFound("Category")
	}

	if err := h.service.Delete(ctx, id); err != nil {
		return err
	}

	return handlerutils.WriteSuccessJSON(
		w,
		http.StatusOK,
		"Category deleted successfully",
		nil,
	)
}
