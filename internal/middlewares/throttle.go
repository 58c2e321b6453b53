package middlewares

import (
	"log"
	"net"
	"net/http"

	"github.com/pankajredekar/shopadmin/internal/handlerutils"
	"github.com/pankajredekar/shopadmin/internal/ratelimit"
	"github.com/pankajredekar/shopadmin/internal/servererrors"
)

// Throttle limits h per client address. A failing limiter lets the request
// through.
func (mw *Middleware) Throttle(limiter ratelimit.Limiter, h handlerutils.APIHandler) handlerutils.APIHandler {
	return func(w http.ResponseWriter, r *http.Request) error {
		allowed, err := limiter.Allow(r.Context(), clientIP(r))
		if err != nil {
			log.Printf("throttle %s: %v", r.URL.Path, err)
			return h(w, r)
		}
		if !allowed {
			return servererrors.TooManyAttempts()
		}
		return h(w, r)
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
