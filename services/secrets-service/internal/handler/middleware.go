package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/vasapolrittideah/secrets/services/secrets-service/internal/metrics"
	"github.com/vasapolrittideah/secrets/services/secrets-service/internal/model"
	"github.com/vasapolrittideah/secrets/services/secrets-service/internal/usecase"
)

type contextKey string

const userContextKey contextKey = "user"

var accessLog = hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
	hlog.FromRequest(r).Info().
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Int("status", status).
		Int("size", size).
		Dur("duration", duration).
		Msg("request")
})

// observeDuration records request latency under the matched route pattern.
func observeDuration(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		metrics.RequestDuration.
			WithLabelValues(route, r.Method, strconv.Itoa(status)).
			Observe(time.Since(start).Seconds())
	})
}

// requireUser lets the request through only for an authenticated session and
// redirects everyone else to the login page before the handler runs.
func (h *secretsHandler) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := h.auth.RequireUser(r.Context())
		if err != nil {
			if !errors.Is(err, usecase.ErrStoreUnavailable) {
				http.Redirect(w, r, "/login", http.StatusFound)
				return
			}

			hlog.FromRequest(r).Error().Err(err).Msg("failed to resolve session user")
			redirectWithError(w, r, "/login", reasonUnavailable)
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// SessionErrorFunc handles session store failures raised while loading or saving a
// session. The client is sent to the login page with a generic reason; the login
// page itself is rendered without a session so that the redirect cannot loop.
func SessionErrorFunc(logger *zerolog.Logger) func(http.ResponseWriter, *http.Request, error) {
	return func(w http.ResponseWriter, r *http.Request, err error) {
		logger.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("session store failure")

		if r.Method != http.MethodGet || r.URL.Path != "/login" {
			redirectWithError(w, r, "/login", reasonUnavailable)
			return
		}

		views, viewErr := loadViews()
		if viewErr != nil {
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		views.render(w, r, "login", pageData{Error: reasonMessages[reasonUnavailable]})
	}
}

// userFromContext returns the user attached by requireUser.
func userFromContext(ctx context.Context) *model.User {
	user, _ := ctx.Value(userContextKey).(*model.User)
	return user
}
