package dashboard

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/pankajredekar/shopadmin/internal/handlerutils"
	"github.com/pankajredekar/shopadmin/internal/permission"
)

type servicer interface {
	Summary(ctx context.Context) (*Summary, error)
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
		"/dashboard",
		h.middleware.ErrorHandler(
			h.middleware.Require(permission.ViewDashboard, h.summaryHandler),
		),
	)
}

func (h *handler) summaryHandler(w http.ResponseWriter, r *http.Request) error {
	ctx, cancel := context.WithTimeout(
		r.Context(),
		(30 * time.Second),
	)
	defer cancel()

	summary, err := h.service.Summary(ctx)
	if err != nil {
		return err
	}

	return handlerutils.WriteSuccessJSON(
		w,
		http.StatusOK,
		"",
		summary,
	)
}
