package models

import "time"

// AnonymousName stands in for a display name the provider did not supply.
const AnonymousName = "Anonymous"

// UserProfile is a signed-in identity as recorded by the service.
// Profiles are created the first time an identity calls the API. Later
// sign-ins refresh the display name and email; the creation time is kept.
type UserProfile struct {
	// ID is the identity provider's stable user ID.
	ID string

	// DisplayName is AnonymousName when the provider supplies none.
	DisplayName string

	Email    string
	PhotoURL string

	// CreatedAt is the Unix timestamp of the first sign-in.
	CreatedAt int64
}

// NewUserProfile builds a profile for a first sign-in.
func NewUserProfile(id, displayName, email string) *UserProfile {
	if displayName == "" {
		displayName = AnonymousName
	}
	return &UserProfile{
		ID:          id,
		DisplayName: displayName,
		Email:       email,
		CreatedAt:   time.Now().Unix(),
	}
}

// HasName reports whether the provider supplied a display name.
func (p *UserProfile) HasName() bool {
	return p.DisplayName != "" && p.DisplayName != AnonymousName
}
