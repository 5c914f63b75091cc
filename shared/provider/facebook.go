package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2/facebook"
)

const (
	FacebookName = "facebook"

	facebookProfileURL = "https://graph.facebook.com/me?fields=id"
)

// FacebookOAuthProvider authenticates users with Facebook and reads the profile id from the Graph API.
type FacebookOAuthProvider struct {
	*baseProvider
}

// NewFacebookOAuthProvider creates a Facebook provider with the default public profile scope.
func NewFacebookOAuthProvider(cfg Config, opts ...Option) *FacebookOAuthProvider {
	p := &FacebookOAuthProvider{
		baseProvider: newBaseProvider(FacebookName, cfg, facebook.Endpoint, nil, facebookProfileURL),
	}
	for _, opt := range opts {
		opt(p.baseProvider)
	}

	return p
}

type facebookProfile struct {
	ID    string `json:"id"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (p *FacebookOAuthProvider) ExchangeProfileID(ctx context.Context, code string) (string, error) {
	token, err := p.exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("facebook code exchange: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.profileURL, nil)
	if err != nil {
		return "", err
	}

	resp, err := p.oauthConfig.Client(ctx, token).Do(req)
	if err != nil {
		return "", fmt.Errorf("facebook profile: %w", err)
	}
	defer resp.Body.Close()

	var profile facebookProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return "", fmt.Errorf("facebook profile: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if profile.Error != nil {
			return "", fmt.Errorf("facebook profile: status %d: %s", resp.StatusCode, profile.Error.Message)
		}
		return "", fmt.Errorf("facebook profile: status %d", resp.StatusCode)
	}

	if profile.ID == "" {
		return "", ErrMissingProfileID
	}

	return profile.ID, nil
}
