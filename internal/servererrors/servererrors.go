package servererrors

import (
	"errors"
	"net/http"
)

var (
	ErrUnauthenticated     = errors.New("Unauthenticated")
	ErrForbidden           = errors.New("This action is unauthorized.")
	ErrValidationFailed    = errors.New("Validation failed")
	ErrInvalidRequestBody  = errors.New("invalid request payload")
	ErrNotFound            = errors.New("not found")
	ErrConflict            = errors.New("conflict")
	ErrAdminExists         = errors.New("Admin already exists")
	ErrInvalidCredentials  = errors.New("Invalid credentials")
	ErrCategoryHasProducts = errors.New("Cannot delete category with associated products")
	ErrSelfDelete          = errors.New("Cannot delete your own account")
	ErrSlugConflict        = errors.New("slug is already in use, please retry")
	ErrPrimaryImage        = errors.New("A product can only have one primary image")
	ErrTooManyAttempts     = errors.New("Too Many Attempts.")
	ErrInternal            = errors.New("something went wrong")
)

// ServerError is an error that knows the HTTP status and envelope it renders as
type ServerError struct {
	StatusCode int
	Message    string
	Errors     any
	Err        error
}

func (e *ServerError) Error() string {
	return e.Message
}

func (e *ServerError) Unwrap() error {
	return e.Err
}

func New(statusCode int, message string, errs any) *ServerError {
	return &ServerError{
		StatusCode: statusCode,
		Message:    message,
		Errors:     errs,
	}
}

// Wrap renders sentinel with its own text as message
func Wrap(statusCode int, sentinel error, errs any) *ServerError {
	return &ServerError{
		StatusCode: statusCode,
		Message:    sentinel.Error(),
		Errors:     errs,
		Err:        sentinel,
	}
}

func Unauthenticated() *ServerError {
	return Wrap(http.StatusUnauthorized, ErrUnauthenticated, nil)
}

func Forbidden() *ServerError {
	return Wrap(http.StatusForbidden, ErrForbidden, nil)
}

// Validation carries field level messages as a 422
func Validation(fields any) *ServerError {
	return Wrap(http.StatusUnprocessableEntity, ErrValidationFailed, fields)
}

// BadRequest carries field level messages as a 400
func BadRequest(message string, fields any) *ServerError {
	return &ServerError{
		StatusCode: http.StatusBadRequest,
		Message:    message,
		Errors:     fields,
		Err:        ErrValidationFailed,
	}
}

// NotFound renders "<entity> not found"
func NotFound(entity string) *ServerError {
	return &ServerError{
		StatusCode: http.StatusNotFound,
		Message:    entity + " not found",
		Err:        ErrNotFound,
	}
}

// Conflict is the 422 used for business rule violations such as a guarded delete
func Conflict(sentinel error) *ServerError {
	return &ServerError{
		StatusCode: http.StatusUnprocessableEntity,
		Message:    sentinel.Error(),
		Err:        errors.Join(ErrConflict, sentinel),
	}
}

func TooManyAttempts() *ServerError {
	return Wrap(http.StatusTooManyRequests, ErrTooManyAttempts, nil)
}

// StatusCode returns the status err renders as, 500 for plain errors
func StatusCode(err error) int {
	var serverError *ServerError
	if errors.As(err, &serverError) {
		return serverError.StatusCode
	}
	return http.StatusInternalServerError
}
