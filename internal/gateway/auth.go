package gateway

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/iksnae/manoj-chat/internal"
)

// AuthUser is the account returned by a successful Google sign-in.
type AuthUser struct {
	ID       string `json:"id"`
	GoogleID string `json:"google_id"`
	Email    string `json:"email,omitempty"`
	Name     string `json:"name,omitempty"`
}

// AuthResult is the backend's answer to a Google ID token.
type AuthResult struct {
	Success bool     `json:"success"`
	User    AuthUser `json:"user"`
}

// UnmarshalJSON accepts numeric or string user ids.
func (u *AuthUser) UnmarshalJSON(data []byte) error {
	var aux struct {
		ID       json.RawMessage `json:"id"`
		GoogleID json.RawMessage `json:"google_id"`
		Email    string          `json:"email"`
		Name     string          `json:"name"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	u.ID = rawID(aux.ID)
	u.GoogleID = rawID(aux.GoogleID)
	u.Email = aux.Email
	u.Name = aux.Name
	return nil
}

// VerifyGoogleToken exchanges a Google ID token for the backend's user record.
// The token is forwarded as-is; verifying it is the backend's job.
func (c *Client) VerifyGoogleToken(ctx context.Context, token string) (*AuthResult, error) {
	const op = "auth_google"
	if token == "" {
		return nil, &internal.GatewayError{Op: op, Err: fmt.Errorf("empty token")}
	}

	var result AuthResult
	if err := c.postJSON(ctx, op, "/api/auth/google", map[string]string{"token": token}, &result); err != nil {
		return nil, err
	}
	if !result.Success {
		return &result, &internal.GatewayError{Op: op, Err: fmt.Errorf("sign-in rejected by backend")}
	}
	if result.User.GoogleID == "" {
		return &result, &internal.GatewayError{Op: op, Err: fmt.Errorf("response carried no google_id")}
	}
	return &result, nil
}
