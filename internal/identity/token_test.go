package identity

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/iksnae/manoj-chat/internal"
)

func signToken(t *testing.T, claims IDTokenClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("SignedString() error = %v", err)
	}
	return token
}

func TestInspectIDToken(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	valid := signToken(t, IDTokenClaims{
		Email: "ann@example.com",
		Name:  "Ann",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "g-5",
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	})
	expired := signToken(t, IDTokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "g-5",
			ExpiresAt: jwt.NewNumericDate(now.Add(-time.Minute)),
		},
	})
	noExpiry := signToken(t, IDTokenClaims{Name: "Bob"})

	tests := []struct {
		name      string
		token     string
		wantErr   error
		wantParse bool
		wantName  string
	}{
		{name: "valid", token: valid, wantName: "Ann"},
		{name: "no expiry", token: noExpiry, wantName: "Bob"},
		{name: "expired", token: expired, wantErr: ErrTokenExpired},
		{name: "not a jwt", token: "id-token-123", wantParse: true},
		{name: "empty", token: "", wantParse: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := InspectIDToken(tt.token, now)
			switch {
			case tt.wantParse:
				var parseErr *internal.ParseError
				if !errors.As(err, &parseErr) {
					t.Errorf("InspectIDToken() error = %v, want *ParseError", err)
				}
			case tt.wantErr != nil:
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("InspectIDToken() error = %v, want %v", err, tt.wantErr)
				}
				if claims == nil || claims.Subject != "g-5" {
					t.Errorf("expired token should still return its claims, got %+v", claims)
				}
			default:
				if err != nil {
					t.Fatalf("InspectIDToken() error = %v", err)
				}
				if claims.Name != tt.wantName {
					t.Errorf("Name = %q, want %q", claims.Name, tt.wantName)
				}
			}
		})
	}
}
