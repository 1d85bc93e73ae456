package identity

import (
	"errors"
	"time"

	"github.com/iksnae/manoj-chat/internal/gateway"
)

// Cookie names deposited by a successful sign-in.
const (
	AccessTokenCookie = "access_token"
	SessionCookie     = "user_session_id"
	UserIDCookie      = "user_id"
	EmailCookie       = "user_email"
	NameCookie        = "user_name"
)

// Lifetime is how long sign-in cookies stay valid.
const Lifetime = 7 * 24 * time.Hour

// Provider supplies the identity key used to scope backend calls.
type Provider interface {
	IdentityKey() (string, bool)
}

// CookieIdentity reads the identity key from the session cookie.
type CookieIdentity struct {
	Jar *CookieJar
}

// IdentityKey implements Provider.
func (c CookieIdentity) IdentityKey() (string, bool) {
	if c.Jar == nil {
		return "", false
	}
	key, ok := c.Jar.Get(SessionCookie)
	if !ok || key == "" {
		return "", false
	}
	return key, true
}

// StaticIdentity is a fixed identity key. The empty string means none.
type StaticIdentity string

// IdentityKey implements Provider.
func (s StaticIdentity) IdentityKey() (string, bool) {
	return string(s), s != ""
}

// Deposit stores the cookies of a successful sign-in. token is the Google ID
// token that was verified.
func Deposit(jar *CookieJar, token string, result *gateway.AuthResult) error {
	if result == nil || !result.Success {
		return errors.New("cannot deposit a failed sign-in")
	}

	cookies := []struct {
		name  string
		value string
	}{
		{AccessTokenCookie, token},
		{SessionCookie, result.User.GoogleID},
		{UserIDCookie, result.User.ID},
		{EmailCookie, result.User.Email},
		{NameCookie, result.User.Name},
	}
	for _, c := range cookies {
		if c.value == "" {
			continue
		}
		if err := jar.Set(c.name, c.value, Lifetime); err != nil {
			return err
		}
	}
	return nil
}
