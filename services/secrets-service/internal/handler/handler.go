package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/vasapolrittideah/secrets/services/secrets-service/internal/usecase"
	"github.com/vasapolrittideah/secrets/shared/auth"
	"github.com/vasapolrittideah/secrets/shared/provider"
	"github.com/vasapolrittideah/secrets/shared/validate"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options carries the dependencies of the HTTP surface. Everything is built
// once at startup and shared by all requests.
type Options struct {
	Auth      usecase.AuthUsecase
	Secrets   usecase.SecretUsecase
	Sessions  *usecase.SessionManager
	Providers []provider.OAuthProvider
	State     *auth.StateSigner
	StateTTL  time.Duration
	Validator *validate.Validator
	Store     Pinger
	Gatherer  prometheus.Gatherer

	// CookieSecure marks the OAuth state cookie Secure.
	CookieSecure bool

	Logger *zerolog.Logger
}

type secretsHandler struct {
	auth         usecase.AuthUsecase
	secrets      usecase.SecretUsecase
	providers    map[string]provider.OAuthProvider
	state        *auth.StateSigner
	stateTTL     time.Duration
	validator    *validate.Validator
	store        Pinger
	views        *renderer
	cookieSecure bool
}

// NewRouter builds the page routes, the OAuth routes and the operational endpoints.
func NewRouter(opts Options) (http.Handler, error) {
	views, err := loadViews()
	if err != nil {
		return nil, err
	}

	providers := make(map[string]provider.OAuthProvider, len(opts.Providers))
	for _, p := range opts.Providers {
		providers[p.Name()] = p
	}

	h := &secretsHandler{
		auth:         opts.Auth,
		secrets:      opts.Secrets,
		providers:    providers,
		state:        opts.State,
		stateTTL:     opts.StateTTL,
		validator:    opts.Validator,
		store:        opts.Store,
		views:        views,
		cookieSecure: opts.CookieSecure,
	}

	enabled := make([]string, 0, len(providers))
	for name := range providers {
		if opts.Auth.HasStrategy(name) {
			enabled = append(enabled, name)
		}
	}
	opts.Logger.Info().Strs("providers", enabled).Msg("oauth providers enabled")

	r := chi.NewRouter()
	r.Use(
		hlog.NewHandler(*opts.Logger),
		hlog.RequestIDHandler("req_id", "X-Request-Id"),
		middleware.RealIP,
		accessLog,
		middleware.Recoverer,
		observeDuration,
	)

	r.Get("/healthz", h.healthz)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))

	r.Group(func(r chi.Router) {
		r.Use(opts.Sessions.Middleware)

		r.Get("/", h.home)
		r.Get("/login", h.loginPage)
		r.Post("/login", h.login)
		r.Get("/register", h.registerPage)
		r.Post("/register", h.register)
		r.Get("/logout", h.logout)

		r.Get("/auth/{provider}", h.beginOAuth)
		r.Get("/auth/{provider}/secrets", h.oauthCallback)

		r.Get("/secrets", h.listSecrets)

		r.Group(func(r chi.Router) {
			r.Use(h.requireUser)

			r.Get("/submit", h.submitPage)
			r.Post("/submit", h.submitSecret)
		})
	})

	return r, nil
}

func (h *secretsHandler) healthz(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(r.Context()); err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("health check failed")
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}
