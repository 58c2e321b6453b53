package middlewares

import (
	"context"

	"github.com/pankajredekar/shopadmin/internal/models"
)

type tokenAuthenticator interface {
	Authenticate(ctx context.Context, raw string) (*models.User, error)
}

type Middleware struct {
	tokens tokenAuthenticator
	debug  bool
}

// NewMiddleware creates the middleware set. With debug on, unexpected errors
// are rendered with their own message instead of a generic one.
func NewMiddleware(tokens tokenAuthenticator, debug bool) *Middleware {
	return &Middleware{
		tokens: tokens,
		debug:  debug,
	}
}
