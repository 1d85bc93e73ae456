package identity

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/iksnae/manoj-chat/internal"
)

// ErrTokenExpired is returned for an ID token whose exp has passed.
var ErrTokenExpired = errors.New("id token has expired")

// IDTokenClaims are the Google ID token fields read before sign-in.
type IDTokenClaims struct {
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// InspectIDToken decodes token without checking its signature; the backend
// does that. Malformed tokens are a *internal.ParseError and expired ones
// return the claims together with ErrTokenExpired.
func InspectIDToken(token string, now time.Time) (*IDTokenClaims, error) {
	claims := &IDTokenClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, &internal.ParseError{Source: "token", Key: "id_token", Err: err}
	}
	if claims.ExpiresAt != nil && !now.Before(claims.ExpiresAt.Time) {
		return claims, ErrTokenExpired
	}
	return claims, nil
}
