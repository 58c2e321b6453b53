package middlewares

import (
	"errors"
	"log"
	"net/http"

	"github.com/pankajredekar/shopadmin/internal/handlerutils"
	"github.com/pankajredekar/shopadmin/internal/servererrors"
)

// ErrorHandler turns an APIHandler into a HandlerFunc, rendering any returned
// error as the error envelope.
func (mw *Middleware) ErrorHandler(h handlerutils.APIHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := h(w, r)
		if err == nil {
			return
		}

		log.Printf("%s %s: %v", r.Method, r.URL.Path, err)

		var serverError *servererrors.ServerError
		if errors.As(err, &serverError) {
			handlerutils.WriteErrorJSON(
				w,
				serverError.StatusCode,
				serverError.Error(),
				serverError.Errors,
			)
			return
		}

		message := servererrors.ErrInternal.Error()
		if mw.debug {
			message = err.Error()
		}
		handlerutils.WriteErrorJSON(
			w,
			http.StatusInternalServerError,
			message,
			nil,
		)
	}
}
