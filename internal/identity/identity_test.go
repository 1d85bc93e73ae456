package identity

import (
	"testing"
	"time"

	"github.com/iksnae/manoj-chat/internal/gateway"
)

func TestDeposit(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	jar := NewMemoryJar()
	jar.now = func() time.Time { return now }

	result := &gateway.AuthResult{
		Success: true,
		User:    gateway.AuthUser{ID: "7", GoogleID: "g-1", Email: "a@b.c"},
	}
	if err := Deposit(jar, "id-token", result); err != nil {
		t.Fatalf("Deposit() error = %v", err)
	}

	want := map[string]string{
		AccessTokenCookie: "id-token",
		SessionCookie:     "g-1",
		UserIDCookie:      "7",
		EmailCookie:       "a@b.c",
	}
	for name, value := range want {
		if got, ok := jar.Get(name); !ok || got != value {
			t.Errorf("cookie %s = %q, %v; want %q", name, got, ok, value)
		}
	}
	if _, ok := jar.Get(NameCookie); ok {
		t.Error("empty name should not be deposited")
	}

	now = now.Add(Lifetime)
	if _, ok := jar.Get(SessionCookie); ok {
		t.Error("session cookie should expire after seven days")
	}
}

func TestDeposit_RejectsFailedSignIn(t *testing.T) {
	jar := NewMemoryJar()
	if err := Deposit(jar, "tok", &gateway.AuthResult{Success: false}); err == nil {
		t.Error("Deposit() should reject a failed sign-in")
	}
	if err := Deposit(jar, "tok", nil); err == nil {
		t.Error("Deposit() should reject a nil result")
	}
	if len(jar.Names()) != 0 {
		t.Errorf("nothing should be deposited, got %v", jar.Names())
	}
}

func TestIdentityProviders(t *testing.T) {
	jar := NewMemoryJar()

	tests := []struct {
		name     string
		provider Provider
		setup    func()
		wantKey  string
		wantOK   bool
	}{
		{name: "cookie absent", provider: CookieIdentity{Jar: jar}},
		{name: "nil jar", provider: CookieIdentity{}},
		{
			name:     "cookie present",
			provider: CookieIdentity{Jar: jar},
			setup:    func() { _ = jar.Set(SessionCookie, "g-9", Lifetime) },
			wantKey:  "g-9",
			wantOK:   true,
		},
		{name: "static empty", provider: StaticIdentity("")},
		{name: "static", provider: StaticIdentity("g-2"), wantKey: "g-2", wantOK: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.setup != nil {
				tt.setup()
			}
			key, ok := tt.provider.IdentityKey()
			if key != tt.wantKey || ok != tt.wantOK {
				t.Errorf("IdentityKey() = %q, %v; want %q, %v", key, ok, tt.wantKey, tt.wantOK)
			}
		})
	}
}
