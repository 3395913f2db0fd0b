package domain

import "time"

// Identity is the user record decoded from the session token. It is for display
// only; the remote API re-validates the token on every authenticated call.
type Identity struct {
	ID        string
	Role      string
	GivenName string
	LastName  string
	Email     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

func (i *Identity) FullName() string {
	if i.LastName == "" {
		return i.GivenName
	}
	return i.GivenName + " " + i.LastName
}

// Expired reports whether the token carried an expiry that has passed.
// Tokens without an exp claim never expire here.
func (i *Identity) Expired(now time.Time) bool {
	return !i.ExpiresAt.IsZero() && now.After(i.ExpiresAt)
}
