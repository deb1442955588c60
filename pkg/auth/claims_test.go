package auth_test

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/angelmondragon/lttsale-console/pkg/auth"
	"github.com/angelmondragon/lttsale-console/pkg/auth/authtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeClaimsNumericUID(t *testing.T) {
	token := authtest.MintAccessToken(authtest.TokenOptions{UID: 42, Username: "linh", IsSuper: true})

	claims, err := auth.DecodeClaims(token)
	require.NoError(t, err)
	assert.Equal(t, auth.SubjectID("42"), claims.UID)
	assert.Equal(t, "linh", claims.Username)
	assert.True(t, bool(claims.IsSuper))
	assert.True(t, claims.HasExpiry())
	assert.False(t, claims.Expired(time.Now()))
}

func TestDecodeClaimsStringUID(t *testing.T) {
	token := authtest.MintAccessToken(authtest.TokenOptions{UID: "u-7", Username: "an", NoExpiry: true})

	claims, err := auth.DecodeClaims(token)
	require.NoError(t, err)
	assert.Equal(t, auth.SubjectID("u-7"), claims.UID)
	assert.False(t, claims.HasExpiry())
	assert.False(t, claims.Expired(time.Now().Add(100*365*24*time.Hour)))
}

func TestDecodeClaimsAcceptsURLAlphabetPayload(t *testing.T) {
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"none","typ":"JWT"}`))
	// username chosen so the base64url payload contains a '-' character.
	payload := base64.RawURLEncoding.EncodeToString([]byte(`{"uid":"9","username":"ÿþ>?","isSuper":false}`))
	claims, err := auth.DecodeClaims(header + "." + payload + ".sig")
	require.NoError(t, err)
	assert.Equal(t, auth.SubjectID("9"), claims.UID)
	assert.Equal(t, "ÿþ>?", claims.Username)
}

func TestDecodeClaimsIgnoresHeader(t *testing.T) {
	payload := base64.RawURLEncoding.EncodeToString([]byte(`{"uid":5,"username":"mai"}`))
	for _, header := range []string{"e30", "x", ""} {
		claims, err := auth.DecodeClaims(header + "." + payload + ".sig")
		require.NoError(t, err, "header %q", header)
		assert.Equal(t, auth.SubjectID("5"), claims.UID)
	}
}

func TestDecodeClaimsRejectsMalformedTokens(t *testing.T) {
	for _, token := range []string{"", "abc", "a.b", "a.%%%.c", "a.b.c.d", "a.bm90LWpzb24.c"} {
		_, err := auth.DecodeClaims(token)
		assert.Error(t, err, "token %q", token)
	}
}

func TestExpiredUsesExpClaim(t *testing.T) {
	claims, err := auth.DecodeClaims(authtest.ExpiredToken(1))
	require.NoError(t, err)
	assert.True(t, claims.Expired(time.Now()))
}

func TestIsSuperRequiresLiteralTrue(t *testing.T) {
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"none"}`))
	payload := base64.RawURLEncoding.EncodeToString([]byte(`{"uid":1,"isSuper":"true"}`))
	claims, err := auth.DecodeClaims(header + "." + payload + ".x")
	require.NoError(t, err)
	assert.False(t, bool(claims.IsSuper))
	assert.Equal(t, auth.RoleUser, claims.Identity("").Role)
}

func TestIdentityFromClaims(t *testing.T) {
	claims, err := auth.DecodeClaims(authtest.MintAccessToken(authtest.TokenOptions{UID: 3, Username: "root", IsSuper: true}))
	require.NoError(t, err)

	identity := claims.Identity("root@ltt.vn")
	assert.Equal(t, auth.Identity{
		ID:           "3",
		DisplayName:  "root",
		Email:        "root@ltt.vn",
		IsSuperAdmin: true,
		Role:         auth.RoleSuperAdmin,
	}, identity)
}

func TestPermissionKey(t *testing.T) {
	p := auth.Permission{Action: "GET", Path: "/api/orders"}
	assert.Equal(t, "GET /api/orders", p.Key())
	assert.Equal(t, "* /v1/role", auth.PermissionKey(auth.WildcardMethod, "/v1/role"))
}
