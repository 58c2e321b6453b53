package handlerutils

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// MaxJSONBody caps JSON request bodies
const MaxJSONBody = 1 << 20

// APIHandler is an http handler that reports failures by returning them
type APIHandler func(w http.ResponseWriter, r *http.Request) error

// Envelope is the uniform response body
type Envelope struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Errors  any    `json:"errors,omitempty"`
}

// WriteJSON encodes v before touching w, so a failed encode leaves the
// response unwritten for the error handler.
func WriteJSON(w http.ResponseWriter, statusCode int, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode response: %w", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_, err = w.Write(append(body, '\n'))
	return err
}

func WriteSuccessJSON(w http.ResponseWriter, statusCode int, message string, data any) error {
	return WriteJSON(w, statusCode, Envelope{
		Status:  StatusSuccess,
		Message: message,
		Data:    data,
	})
}

func WriteErrorJSON(w http.ResponseWriter, statusCode int, message string, errs any) error {
	return WriteJSON(w, statusCode, Envelope{
		Status:  StatusError,
		Message: message,
		Errors:  errs,
	})
}

// ParseJSON decodes the request body into v
func ParseJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return errors.New("missing request body")
	}
	decoder := json.NewDecoder(io.LimitReader(r.Body, MaxJSONBody))
	if err := decoder.Decode(v); err != nil {
		return fmt.Errorf("failed to decode request body: %w", err)
	}
	return nil
}

// URLParamID reads a positive numeric route parameter
func URLParamID(r *http.Request, name string) (uint, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, name), 10, 0)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
