package provider

import (
	"context"
	"fmt"

	"golang.org/x/oauth2/google"
	googleoauth2 "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

const GoogleName = "google"

// GoogleOAuthProvider authenticates users with Google and reads the profile id from the userinfo API.
type GoogleOAuthProvider struct {
	*baseProvider
}

// NewGoogleOAuthProvider creates a Google provider requesting the "profile" scope.
func NewGoogleOAuthProvider(cfg Config, opts ...Option) *GoogleOAuthProvider {
	p := &GoogleOAuthProvider{
		baseProvider: newBaseProvider(GoogleName, cfg, google.Endpoint, []string{"profile"}, ""),
	}
	for _, opt := range opts {
		opt(p.baseProvider)
	}

	return p
}

func (p *GoogleOAuthProvider) ExchangeProfileID(ctx context.Context, code string) (string, error) {
	token, err := p.exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("google code exchange: %w", err)
	}

	clientOpts := []option.ClientOption{option.WithHTTPClient(p.oauthConfig.Client(ctx, token))}
	if p.profileURL != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(p.profileURL))
	}

	oauth2Service, err := googleoauth2.NewService(ctx, clientOpts...)
	if err != nil {
		return "", err
	}

	userInfo, err := oauth2Service.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("google userinfo: %w", err)
	}

	if userInfo.Id == "" {
		return "", ErrMissingProfileID
	}

	return userInfo.Id, nil
}
