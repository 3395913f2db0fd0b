// Package session decodes the payload of the session token for display.
//
// No signature, issuer or expiry is checked: the remote API re-validates the
// token on every authenticated request, so the decoded identity never takes part
// in an authorization decision.
package session

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/blackstar01-dark/mueblix/internal/domain"
)

var ErrMalformedToken = errors.New("malformed session token")

// Claims mirrors the payload issued by POST /usuario/login. Older tokens carry the
// user id under "id" instead of "_id".
type Claims struct {
	UserID    string `json:"_id,omitempty"`
	LegacyID  string `json:"id,omitempty"`
	Role      string `json:"rol,omitempty"`
	GivenName string `json:"nombres"`
	LastName  string `json:"apellidos"`
	Email     string `json:"email"`
	jwt.RegisteredClaims
}

type Decoder struct {
	parser *jwt.Parser
}

func NewDecoder() *Decoder {
	return &Decoder{parser: jwt.NewParser()}
}

func (d *Decoder) Decode(token string) (*domain.Identity, error) {
	var claims Claims
	if _, _, err := d.parser.ParseUnverified(token, &claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}

	identity := &domain.Identity{
		ID:        claims.UserID,
		Role:      claims.Role,
		GivenName: claims.GivenName,
		LastName:  claims.LastName,
		Email:     claims.Email,
	}
	if identity.ID == "" {
		identity.ID = claims.LegacyID
	}
	if claims.IssuedAt != nil {
		identity.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		identity.ExpiresAt = claims.ExpiresAt.Time
	}
	return identity, nil
}
