package product

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi"
	"github.com/pankajredekar/shopadmin/internal/handlerutils"
	"github.com/pankajredekar/shopadmin/internal/models"
	"github.com/pankajredekar/shopadmin/internal/permission"
	"github.com/pankajredekar/shopadmin/internal/servererrors"
)

type servicer interface {
	List(ctx context.Context) ([]models.Product, error)
	Show(ctx context.Context, id uint) (*models.Product, error)
	Create(ctx context.Context, req *CreateProductRequest) (*models.Product, error)
	Update(ctx context.Context, id uint, req *UpdateProductRequest) (*models.Product, error)
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
		"/products",
		h.middleware.ErrorHandler(
			h.middleware.Require(permission.ViewProducts, h.listHandler),
		),
	)

	router.Post(
		"/products",
		h.middleware.ErrorHandler(
			h.middleware.Require(permission.CreateProducts, h.createHandler),
		),
	)

	router.Get(
		"/products/{productID}",
		h.middleware.ErrorHandler(
			h.middleware.Require(permission.ViewProducts, h.showHandler),
		),
	)

	router.Put(
		"/products/{productID}",
		h.middleware.ErrorHandler(
			h.middleware.Require(permission.EditProducts, h.updateHandler),
		),
	)

	router.Delete(
		"/products/{productID}",
		h.middleware.ErrorHandler(
			h.middleware.Require(permission.DeleteProducts, h.deleteHandler),
		),
	)
}

func (h *handler) listHandler(w http.ResponseWriter, r *http.Request) error {
	ctx, cancel := context.WithTimeout(
		r.Context(),
		(30 * time.Second),
	)
	defer cancel()

	products, err := h.service.List(ctx)
	if err != nil {
		return err
	}

	return handlerutils.WriteSuccessJSON(
		w,
		http.StatusOK,
		"",
		products,
	)
}

func (h *handler) showHandler(w http.ResponseWriter, r *http.Request) error {
	ctx, cancel := context.WithTimeout(
		r.Context(),
		(30 * time.Second),
	)
	defer cancel()

	id, ok := handlerutils.URLParamID(r, "productID")
	if !ok {
		return servererrors.NotFound("Product")
	}

	product, err := h.service.Show(ctx, id)
	if err != nil {
		return err
	}

	return handlerutils.WriteSuccessJSON(
		w,
		http.StatusOK,
		"",
		product,
	)
}

func (h *handler) createHandler(w http.ResponseWriter, r *http.Request) error {
	ctx, cancel := context.WithTimeout(
		r.Context(),
		(30 * time.Second),
	)
	defer cancel()

	payload, err := parseCreateRequest(w, r)
	if err != nil {
		return servererrors.New(
			http.StatusBadRequest,
			servererrors.ErrInvalidRequestBody.Error(),
			nil,
		)
	}

	product, err := h.service.Create(ctx, payload)
	if err != nil {
		return err
	}

	return handlerutils.WriteSuccessJSON(
		w,
		http.StatusCreated,
		"Product created successfully",
		product,
	)
}

func (h *handler) updateHandler(w http.ResponseWriter, r *http.Request) error {
	ctx, cancel := context.WithTimeout(
		r.Context(),
		(30 * time.Second),
	)
	defer cancel()

	id, ok := handlerutils.URLParamID(r, "productID")
	if !ok {
		return servererrors.NotFound("Product")
	}

	var payload *UpdateProductRequest
	var err error
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		payload = new(UpdateProductRequest)
		err = handlerutils.ParseJSON(r, payload)
	} else {
		payload, err = parseUpdateRequest(w, r)
	}
	if err != nil {
		return servererrors.New(
			http.StatusBadRequest,
			servererrors.ErrInvalidRequestBody.Error(),
			nil,
		)
	}

	product, err := h.service.Update(ctx, id, payload)
	if err != nil {
		return err
	}

	return handlerutils.WriteSuccessJSON(
		w,
		http.StatusOK,
		"Product updated successfully",
		product,
	)
}

func (h *handler) deleteHandler(w http.ResponseWriter, r *http.Request) error {
	ctx, cancel := context.WithTimeout(
		r.Context(),
		(30 * time.Second),
	)
	defer cancel()

	id, ok := handlerutils.URLParamID(r, "productID")
	if !ok {
		return servererrors.NotFound("Product")
	}

	if err := h.service.Delete(ctx, id); err != nil {
		return err
	}

	return handlerutils.WriteSuccessJSON(
		w,
		http.StatusOK,
		"Product deleted successfully",
		nil,
	)
}
