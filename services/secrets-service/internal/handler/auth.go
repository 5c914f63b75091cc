package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"

	"github.com/vasapolrittideah/secrets/services/secrets-service/internal/payload"
	"github.com/vasapolrittideah/secrets/services/secrets-service/internal/usecase"
)

const stateCookieName = "oauthstate"

func (h *secretsHandler) home(w http.ResponseWriter, r *http.Request) {
	h.views.render(w, r, "home", h.pageData(r))
}

func (h *secretsHandler) loginPage(w http.ResponseWriter, r *http.Request) {
	h.views.render(w, r, "login", h.pageData(r))
}

func (h *secretsHandler) registerPage(w http.ResponseWriter, r *http.Request) {
	h.views.render(w, r, "register", h.pageData(r))
}

func (h *secretsHandler) register(w http.ResponseWriter, r *http.Request) {
	req := payload.RegisterRequest{
		Username: r.PostFormValue("username"),
		Password: r.PostFormValue("password"),
	}
	if err := h.validator.Struct(req); err != nil {
		redirectWithError(w, r, "/register", reasonMissing)
		return
	}

	user, err := h.auth.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrDuplicateUsername):
			redirectWithError(w, r, "/register", reasonTaken)
		default:
			hlog.FromRequest(r).Error().Err(err).Msg("failed to register user")
			redirectWithError(w, r, "/register", reasonUnavailable)
		}
		return
	}

	hlog.FromRequest(r).Info().Str("user_id", user.ID.Hex()).Msg("user registered")
	http.Redirect(w, r, "/secrets", http.StatusFound)
}

func (h *secretsHandler) login(w http.ResponseWriter, r *http.Request) {
	req := payload.LoginRequest{
		Username: r.PostFormValue("username"),
		Password: r.PostFormValue("password"),
	}
	if err := h.validator.Struct(req); err != nil {
		redirectWithError(w, r, "/login", reasonInvalid)
		return
	}

	_, err := h.auth.Authenticate(r.Context(), usecase.StrategyLocal, usecase.Credentials{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrInvalidCredentials), errors.Is(err, usecase.ErrNotFound):
			redirectWithError(w, r, "/login", reasonInvalid)
		default:
			hlog.FromRequest(r).Error().Err(err).Msg("failed to log in")
			redirectWithError(w, r, "/login", reasonUnavailable)
		}
		return
	}

	http.Redirect(w, r, "/secrets", http.StatusFound)
}

func (h *secretsHandler) logout(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.Logout(r.Context()); err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("failed to destroy session")
	}

	http.Redirect(w, r, "/", http.StatusFound)
}

// beginOAuth sends the client to the provider's consent page with a signed state
// that is also kept in a cookie scoped to the provider's routes.
func (h *secretsHandler) beginOAuth(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "provider")
	p, ok := h.providers[name]
	if !ok || !h.auth.HasStrategy(name) {
		redirectWithError(w, r, "/login", reasonUnavailable)
		return
	}

	state, err := h.state.Issue(name)
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Str("provider", name).Msg("failed to issue oauth state")
		redirectWithError(w, r, "/login", reasonUnavailable)
		return
	}

	http.SetCookie(w, h.stateCookie(name, state, int(h.stateTTL.Seconds())))
	http.Redirect(w, r, p.AuthCodeURL(state), http.StatusFound)
}

func (h *secretsHandler) oauthCallback(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "provider")
	if _, ok := h.providers[name]; !ok || !h.auth.HasStrategy(name) {
		redirectWithError(w, r, "/login", reasonUnavailable)
		return
	}

	logger := hlog.FromRequest(r).With().Str("provider", name).Logger()
	query := r.URL.Query()

	cookie, cookieErr := r.Cookie(stateCookieName)
	http.SetCookie(w, h.stateCookie(name, "", -1))

	if providerErr := query.Get("error"); providerErr != "" {
		logger.Warn().Str("error", providerErr).Msg("provider denied authorization")
		redirectWithError(w, r, "/login", reasonProvider)
		return
	}

	state := query.Get("state")
	if cookieErr != nil || cookie.Value != state {
		logger.Warn().Msg("oauth state does not match cookie")
		redirectWithError(w, r, "/login", reasonProvider)
		return
	}
	if err := h.state.Verify(state, name); err != nil {
		logger.Warn().Err(err).Msg("rejected oauth state")
		redirectWithError(w, r, "/login", reasonProvider)
		return
	}

	_, err := h.auth.Authenticate(r.Context(), name, usecase.Credentials{Code: query.Get("code")})
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrProviderFailure):
			logger.Warn().Err(err).Msg("oauth exchange failed")
			redirectWithError(w, r, "/login", reasonProvider)
		default:
			logger.Error().Err(err).Msg("failed to complete oauth login")
			redirectWithError(w, r, "/login", reasonUnavailable)
		}
		return
	}

	http.Redirect(w, r, "/secrets", http.StatusFound)
}

func (h *secretsHandler) stateCookie(provider, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     stateCookieName,
		Value:    value,
		Path:     "/auth/" + provider,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
}

// pageData fills the fields every page shares.
func (h *secretsHandler) pageData(r *http.Request) pageData {
	data := pageData{
		Error:     errorMessage(r),
		Providers: make(map[string]bool, len(h.providers)),
	}
	for name := range h.providers {
		data.Providers[name] = h.auth.HasStrategy(name)
	}

	user, err := h.auth.CurrentUser(r.Context())
	if err != nil {
		hlog.FromRequest(r).Warn().Err(err).Msg("failed to resolve session user")
	}
	data.User = user

	return data
}
