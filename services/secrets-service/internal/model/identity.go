package model

import "fmt"

// Provider is a federated identity provider whose profile id anchors a User.
type Provider string

const (
	ProviderGoogle   Provider = "google"
	ProviderFacebook Provider = "facebook"
)

// Field returns the User document field holding the provider's profile id.
func (p Provider) Field() (string, error) {
	switch p {
	case ProviderGoogle:
		return "google_id", nil
	case ProviderFacebook:
		return "facebook_id", nil
	default:
		return "", fmt.Errorf("unknown provider %q", string(p))
	}
}

// ProviderID returns the user's profile id for p, or "" when absent.
func (u *User) ProviderID(p Provider) string {
	switch p {
	case ProviderGoogle:
		return u.GoogleID
	case ProviderFacebook:
		return u.FacebookID
	default:
		return ""
	}
}

// SetProviderID sets the user's profile id for p.
func (u *User) SetProviderID(p Provider, id string) {
	switch p {
	case ProviderGoogle:
		u.GoogleID = id
	case ProviderFacebook:
		u.FacebookID = id
	}
}
