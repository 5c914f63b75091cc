package provider

import (
	"context"
	"errors"

	"golang.org/x/oauth2"
)

var (
	ErrMissingCode      = errors.New("authorization code is required")
	ErrMissingProfileID = errors.New("provider returned no profile id")
)

// OAuthProvider is a federated identity provider speaking the OAuth2 authorization code flow.
type OAuthProvider interface {
	// Name is the provider key used in routes, state audience and metrics.
	Name() string

	// AuthCodeURL returns the consent page URL carrying state.
	AuthCodeURL(state string) string

	// ExchangeProfileID trades an authorization code for the provider's stable profile id.
	ExchangeProfileID(ctx context.Context, code string) (string, error)
}

// Config holds the client registration for one provider.
type Config struct {
	ClientID     string
	ClientSecret string
	CallbackURL  string
}

// Option customises a provider, mostly to point it at a fake server in tests.
type Option func(*baseProvider)

// WithEndpoint overrides the authorization and token endpoints.
func WithEndpoint(endpoint oauth2.Endpoint) Option {
	return func(p *baseProvider) {
		p.oauthConfig.Endpoint = endpoint
	}
}

// WithProfileURL overrides the URL the profile is fetched from.
func WithProfileURL(url string) Option {
	return func(p *baseProvider) {
		p.profileURL = url
	}
}

type baseProvider struct {
	name        string
	oauthConfig oauth2.Config
	profileURL  string
}

func newBaseProvider(name string, cfg Config, endpoint oauth2.Endpoint, scopes []string, profileURL string) *baseProvider {
	return &baseProvider{
		name: name,
		oauthConfig: oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.CallbackURL,
			Scopes:       scopes,
			Endpoint:     endpoint,
		},
		profileURL: profileURL,
	}
}

func (p *baseProvider) Name() string {
	return p.name
}

func (p *baseProvider) AuthCodeURL(state string) string {
	return p.oauthConfig.AuthCodeURL(state)
}

func (p *baseProvider) exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	if code == "" {
		return nil, ErrMissingCode
	}

	return p.oauthConfig.Exchange(ctx, code)
}
