package handler

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"sync"

	"github.com/rs/zerolog/hlog"

	"github.com/vasapolrittideah/secrets/services/secrets-service/internal/model"
)

//go:embed views/*.html
var viewFS embed.FS

var pageNames = []string{"home", "login", "register", "secrets", "submit"}

// Failure reason codes carried in the query string of a failure redirect.
const (
	reasonInvalid     = "invalid"
	reasonMissing     = "missing"
	reasonTaken       = "taken"
	reasonProvider    = "provider"
	reasonUnavailable = "unavailable"
)

var reasonMessages = map[string]string{
	reasonInvalid:     "Incorrect username or password.",
	reasonMissing:     "Please fill in every field.",
	reasonTaken:       "That username is already taken.",
	reasonProvider:    "Sign in with the provider did not complete. Please try again.",
	reasonUnavailable: "Something went wrong. Please try again later.",
}

type pageData struct {
	User      *model.User
	Error     string
	Secrets   []string
	Providers map[string]bool
}

// loadViews parses the embedded views once per process.
var loadViews = sync.OnceValues(newRenderer)

type renderer struct {
	pages map[string]*template.Template
}

func newRenderer() (*renderer, error) {
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		t, err := template.ParseFS(viewFS, "views/layout.html", "views/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s view: %w", name, err)
		}
		pages[name] = t
	}

	return &renderer{pages: pages}, nil
}

func (v *renderer) render(w http.ResponseWriter, r *http.Request, name string, data pageData) {
	var buf bytes.Buffer
	if err := v.pages[name].ExecuteTemplate(&buf, "layout", data); err != nil {
		hlog.FromRequest(r).Error().Err(err).Str("view", name).Msg("failed to render view")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

// errorMessage maps the reason code of a failure redirect to its message.
func errorMessage(r *http.Request) string {
	return reasonMessages[r.URL.Query().Get("error")]
}

func redirectWithError(w http.ResponseWriter, r *http.Request, path, reason string) {
	http.Redirect(w, r, path+"?"+url.Values{"error": {reason}}.Encode(), http.StatusFound)
}
