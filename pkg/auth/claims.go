package auth

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	RoleSuperAdmin = "super_admin"
	RoleUser       = "user"
)

// Claims is the payload the identity service embeds in its access tokens.
type Claims struct {
	UID      SubjectID  `json:"uid"`
	Username string     `json:"username"`
	IsSuper  StrictTrue `json:"isSuper"`
	jwt.RegisteredClaims
}

// Identity is who the console believes the user is, derived from token claims.
type Identity struct {
	ID           string `json:"id"`
	DisplayName  string `json:"name"`
	Email        string `json:"email"`
	IsSuperAdmin bool   `json:"isSuperAdmin"`
	Role         string `json:"role"`
}

// SubjectID accepts the uid claim as either a JSON string or number.
type SubjectID string

func (s *SubjectID) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*s = ""
		return nil
	}
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var str string
		if err := json.Unmarshal(trimmed, &str); err != nil {
			return err
		}
		*s = SubjectID(str)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(trimmed, &num); err != nil {
		return fmt.Errorf("uid claim: %w", err)
	}
	*s = SubjectID(num.String())
	return nil
}

// StrictTrue is true only for the JSON literal true; any other value is false.
type StrictTrue bool

func (b *StrictTrue) UnmarshalJSON(data []byte) error {
	*b = StrictTrue(bytes.Equal(bytes.TrimSpace(data), []byte("true")))
	return nil
}

var claimsParser = jwt.NewParser(jwt.WithPaddingAllowed())

// DecodeClaims reads the payload of an access token without verifying its signature.
// The console never holds the identity service's signing key, so only the payload
// segment is decoded and the header is not inspected.
func DecodeClaims(token string) (*Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, fmt.Errorf("access token is empty")
	}
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, fmt.Errorf("decode access token: expected 3 segments, got %d", len(parts))
	}
	payload, err := claimsParser.DecodeSegment(parts[1])
	if err != nil {
		return nil, fmt.Errorf("decode access token payload: %w", err)
	}
	claims := &Claims{}
	if err := json.Unmarshal(payload, claims); err != nil {
		return nil, fmt.Errorf("decode access token claims: %w", err)
	}
	return claims, nil
}

// HasExpiry reports whether a non-zero exp claim is present.
func (c *Claims) HasExpiry() bool {
	return c != nil && c.ExpiresAt != nil && c.ExpiresAt.Unix() != 0
}

// Expired reports whether exp is present and already in the past.
func (c *Claims) Expired(now time.Time) bool {
	if !c.HasExpiry() {
		return false
	}
	return c.ExpiresAt.Time.Before(now)
}

// Identity builds the identity for these claims; email is not carried by the token.
func (c *Claims) Identity(email string) Identity {
	role := RoleUser
	if c.IsSuper {
		role = RoleSuperAdmin
	}
	return Identity{
		ID:           string(c.UID),
		DisplayName:  c.Username,
		Email:        email,
		IsSuperAdmin: bool(c.IsSuper),
		Role:         role,
	}
}
