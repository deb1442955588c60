// Package authtest mints unsigned-for-real access tokens shaped like the identity service's.
package authtest

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const signingKey = "authtest-signing-key"

// TokenOptions controls the claims embedded in a minted token.
type TokenOptions struct {
	UID      any
	Username string
	IsSuper  bool
	Expires  time.Time
	NoExpiry bool
}

// MintAccessToken signs a token with a throwaway key; the console never verifies signatures.
func MintAccessToken(opts TokenOptions) string {
	claims := jwt.MapClaims{
		"username": opts.Username,
		"isSuper":  opts.IsSuper,
	}
	if opts.UID != nil {
		claims["uid"] = opts.UID
	}
	if !opts.NoExpiry {
		exp := opts.Expires
		if exp.IsZero() {
			exp = time.Now().Add(time.Hour)
		}
		claims["exp"] = exp.Unix()
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(signingKey))
	if err != nil {
		panic(err)
	}
	return signed
}

// ValidToken returns a non-expired token for uid.
func ValidToken(uid any, username string) string {
	return MintAccessToken(TokenOptions{UID: uid, Username: username})
}

// ExpiredToken returns a token whose exp lies in the past.
func ExpiredToken(uid any) string {
	return MintAccessToken(TokenOptions{UID: uid, Username: "expired", Expires: time.Now().Add(-time.Hour)})
}
