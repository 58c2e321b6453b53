package middlewares

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/pankajredekar/shopadmin/internal/auth"
	"github.com/pankajredekar/shopadmin/internal/handlerutils"
	"github.com/pankajredekar/shopadmin/internal/models"
	"github.com/pankajredekar/shopadmin/internal/permission"
	"github.com/pankajredekar/shopadmin/internal/servererrors"
)

type contextKey struct{}

var UserKey contextKey = contextKey{}

// Authenticate resolves the bearer token and stores its user on the request
// context.
func (mw *Middleware) Authenticate(h handlerutils.APIHandler) handlerutils.APIHandler {
	return func(w http.ResponseWriter, r *http.Request) error {
		raw, ok := bearerToken(r)
		if !ok {
			return servererrors.Unauthenticated()
		}

		user, err := mw.tokens.Authenticate(r.Context(), raw)
		if errors.Is(err, auth.ErrInvalidToken) {
			return servererrors.Unauthenticated()
		}
		if err != nil {
			return err
		}

		return h(w, r.WithContext(WithUser(r.Context(), user)))
	}
}

// Require authenticates the request and rejects users whose role lacks p
func (mw *Middleware) Require(p permission.Permission, h handlerutils.APIHandler) handlerutils.APIHandler {
	return mw.Authenticate(func(w http.ResponseWriter, r *http.Request) error {
		user, ok := UserFromContext(r.Context())
		if !ok {
			return servererrors.Unauthenticated()
		}
		if err := permission.Authorize(user.Role, p); err != nil {
			return servererrors.Forbidden()
		}
		return h(w, r)
	})
}

func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, UserKey, user)
}

func UserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(UserKey).(*models.User)
	return user, ok && user != nil
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
