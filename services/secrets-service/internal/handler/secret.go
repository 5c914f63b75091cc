package handler

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/hlog"

	"github.com/vasapolrittideah/secrets/services/secrets-service/internal/payload"
	"github.com/vasapolrittideah/secrets/services/secrets-service/internal/usecase"
)

func (h *secretsHandler) listSecrets(w http.ResponseWriter, r *http.Request) {
	data := h.pageData(r)

	secrets, err := h.secrets.ListSecrets(r.Context())
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("failed to list secrets")
		data.Error = reasonMessages[reasonUnavailable]
	}
	data.Secrets = secrets

	h.views.render(w, r, "secrets", data)
}

func (h *secretsHandler) submitPage(w http.ResponseWriter, r *http.Request) {
	data := h.pageData(r)
	data.User = userFromContext(r.Context())

	h.views.render(w, r, "submit", data)
}

func (h *secretsHandler) submitSecret(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	req := payload.SubmitSecretRequest{Secret: r.PostFormValue("secret")}
	if err := h.validator.Struct(req); err != nil {
		redirectWithError(w, r, "/submit", reasonMissing)
		return
	}

	if err := h.secrets.SubmitSecret(r.Context(), user.ID.Hex(), req.Secret); err != nil {
		if errors.Is(err, usecase.ErrNotFound) {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}

		hlog.FromRequest(r).Error().Err(err).Msg("failed to submit secret")
		redirectWithError(w, r, "/submit", reasonUnavailable)
		return
	}

	http.Redirect(w, r, "/secrets", http.StatusFound)
}
