package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/angelmondragon/lttsale-console/pkg/auth"
	"github.com/angelmondragon/lttsale-console/pkg/auth/authtest"
	pkgerrors "github.com/angelmondragon/lttsale-console/pkg/errors"
	"github.com/angelmondragon/lttsale-console/pkg/upstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAuthenticator struct {
	loginTokens Tokens
	loginErr    error

	refreshTokens Tokens
	refreshErr    error
	refreshCalls  atomic.Int32
	refreshGate   chan struct{}
	refreshSeen   chan struct{}

	permissions []auth.Permission
	permErr     error
	permCalls   atomic.Int32
}

func (s *stubAuthenticator) Login(context.Context, string, string) (Tokens, error) {
	return s.loginTokens, s.loginErr
}

func (s *stubAuthenticator) RefreshToken(context.Context, string) (Tokens, error) {
	s.refreshCalls.Add(1)
	if s.refreshSeen != nil {
		select {
		case s.refreshSeen <- struct{}{}:
		default:
		}
	}
	if s.refreshGate != nil {
		<-s.refreshGate
	}
	return s.refreshTokens, s.refreshErr
}

func (s *stubAuthenticator) AccountPermissions(context.Context, string) ([]auth.Permission, error) {
	s.permCalls.Add(1)
	return s.permissions, s.permErr
}

func newTestManager(t *testing.T, store TokenStore, authn Authenticator) *Manager {
	t.Helper()
	m, err := NewManager(store, authn)
	require.NoError(t, err)
	return m
}

func TestLoginPersistsTokensAndLoadsPermissions(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	access := authtest.MintAccessToken(authtest.TokenOptions{UID: 12, Username: "thu"})
	authn := &stubAuthenticator{
		loginTokens: Tokens{AccessToken: access, RefreshToken: "r1"},
		permissions: []auth.Permission{{Action: "GET", Path: "/api/orders"}},
	}
	m := newTestManager(t, store, authn)

	identity, err := m.Login(ctx, "thu@ltt.vn", "secret")
	require.NoError(t, err)
	assert.Equal(t, "12", identity.ID)
	assert.Equal(t, "thu", identity.DisplayName)
	assert.Equal(t, "thu@ltt.vn", identity.Email)
	assert.Equal(t, auth.RoleUser, identity.Role)

	stored, _ := store.Load(ctx)
	assert.Equal(t, access, stored.AccessToken)
	assert.Equal(t, "r1", stored.RefreshToken)
	assert.Equal(t, []string{"GET /api/orders"}, m.Permissions())
	assert.True(t, m.HasPermission("GET", "/api/orders"))
}

func TestLoginFailureStoresNothing(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	authn := &stubAuthenticator{loginErr: pkgerrors.New(pkgerrors.CodeUnauthorized, "bad credentials")}
	m := newTestManager(t, store, authn)

	_, err := m.Login(ctx, "a@b.c", "wrong")
	require.Error(t, err)
	assert.Equal(t, "bad credentials", pkgerrors.MessageOf(err))
	stored, _ := store.Load(ctx)
	assert.True(t, stored.Empty())
	assert.Nil(t, m.Identity())
}

func TestLoginRequiresCredentials(t *testing.T) {
	m := newTestManager(t, NewMemoryStore(), &stubAuthenticator{})
	_, err := m.Login(context.Background(), " ", "pw")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestRestoreWithExpiredTokenTearsDownSession(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Save(ctx, Tokens{AccessToken: authtest.ExpiredToken(4), RefreshToken: "r"}))
	authn := &stubAuthenticator{permissions: []auth.Permission{{Action: "*", Path: "/v1/role"}}}
	m := newTestManager(t, store, authn)

	identity, err := m.Restore(ctx)
	require.Error(t, err)
	assert.Nil(t, identity)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))
	assert.Nil(t, m.Identity())
	assert.Empty(t, m.Permissions())
	stored, _ := store.Load(ctx)
	assert.True(t, stored.Empty())
	assert.Zero(t, authn.permCalls.Load())
}

func TestRestoreWithoutUIDTearsDownSession(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Save(ctx, Tokens{AccessToken: authtest.MintAccessToken(authtest.TokenOptions{Username: "ghost"}), RefreshToken: "r"}))
	m := newTestManager(t, store, &stubAuthenticator{})

	_, err := m.Restore(ctx)
	require.Error(t, err)
	assert.Equal(t, "Invalid token: missing uid", pkgerrors.MessageOf(err))
	stored, _ := store.Load(ctx)
	assert.True(t, stored.Empty())
}

func TestRestoreWithUndecodableTokenTearsDownSession(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Save(ctx, Tokens{AccessToken: "not-a-jwt", RefreshToken: "r"}))
	m := newTestManager(t, store, &stubAuthenticator{})

	_, err := m.Restore(ctx)
	require.Error(t, err)
	stored, _ := store.Load(ctx)
	assert.True(t, stored.Empty())
}

func TestRestorePreservesKnownEmail(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	access := authtest.MintAccessToken(authtest.TokenOptions{UID: "7", Username: "mai", IsSuper: true})
	require.NoError(t, store.Save(ctx, Tokens{AccessToken: access, RefreshToken: "r", Email: "mai@ltt.vn"}))
	m := newTestManager(t, store, &stubAuthenticator{permErr: errors.New("sso down")})

	identity, err := m.Restore(ctx)
	require.NoError(t, err)
	assert.Equal(t, "mai@ltt.vn", identity.Email)
	assert.Equal(t, auth.RoleSuperAdmin, identity.Role)
	assert.Empty(t, m.Permissions())
}

func TestRestoreWithoutTokenIsUnauthorized(t *testing.T) {
	m := newTestManager(t, NewMemoryStore(), &stubAuthenticator{})
	_, err := m.Restore(context.Background())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))
}

func TestHasPermission(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		name    string
		super   bool
		granted []auth.Permission
		want    bool
	}{
		{name: "super admin with empty set", super: true, want: true},
		{name: "exact method", granted: []auth.Permission{{Action: "GET", Path: "/api/orders"}}, want: true},
		{name: "wildcard method", granted: []auth.Permission{{Action: "*", Path: "/api/orders"}}, want: true},
		{name: "other method", granted: []auth.Permission{{Action: "POST", Path: "/api/orders"}}, want: false},
		{name: "prefix is not a match", granted: []auth.Permission{{Action: "GET", Path: "/api"}}, want: false},
		{name: "empty set", want: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := NewMemoryStore()
			access := authtest.MintAccessToken(authtest.TokenOptions{UID: 1, IsSuper: tc.super})
			require.NoError(t, store.Save(ctx, Tokens{AccessToken: access}))
			m := newTestManager(t, store, &stubAuthenticator{permissions: tc.granted})
			_, err := m.Restore(ctx)
			require.NoError(t, err)
			assert.Equal(t, tc.want, m.HasPermission("GET", "/api/orders"))
		})
	}
}

func TestHasPermissionWithoutIdentity(t *testing.T) {
	m := newTestManager(t, NewMemoryStore(), &stubAuthenticator{})
	assert.False(t, m.HasPermission("GET", "/api/orders"))
}

func TestRefreshReplacesPairAndKeepsEmail(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Save(ctx, Tokens{AccessToken: "old", RefreshToken: "r-old", Email: "x@y.z"}))
	authn := &stubAuthenticator{refreshTokens: Tokens{AccessToken: "new", RefreshToken: "r-new"}}
	m := newTestManager(t, store, authn)

	assert.True(t, m.Refresh(ctx, "old"))
	stored, _ := store.Load(ctx)
	assert.Equal(t, Tokens{AccessToken: "new", RefreshToken: "r-new", Email: "x@y.z"}, stored)
}

func TestRefreshSkipsCallWhenTokenAlreadyRotated(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Save(ctx, Tokens{AccessToken: "rotated", RefreshToken: "r"}))
	authn := &stubAuthenticator{}
	m := newTestManager(t, store, authn)

	assert.True(t, m.Refresh(ctx, "stale"))
	assert.Zero(t, authn.refreshCalls.Load())
}

func TestRefreshWithoutRefreshTokenMakesNoCall(t *testing.T) {
	ctx := context.Background()
	authn := &stubAuthenticator{}
	m := newTestManager(t, NewMemoryStore(), authn)

	assert.False(t, m.Refresh(ctx, ""))
	assert.Zero(t, authn.refreshCalls.Load())
}

func TestRefreshFailureLeavesTokensUntouched(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	pair := Tokens{AccessToken: "a", RefreshToken: "r"}
	require.NoError(t, store.Save(ctx, pair))
	m := newTestManager(t, store, &stubAuthenticator{refreshErr: errors.New("expired refresh token")})

	assert.False(t, m.Refresh(ctx, "a"))
	stored, _ := store.Load(ctx)
	assert.Equal(t, pair, stored)
}

func TestRefreshWithoutAccessTokenInResponseFails(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Save(ctx, Tokens{AccessToken: "a", RefreshToken: "r"}))
	m := newTestManager(t, store, &stubAuthenticator{refreshTokens: Tokens{RefreshToken: "r2"}})

	assert.False(t, m.Refresh(ctx, "a"))
}

func TestConcurrentRefreshesShareOneExchange(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Save(ctx, Tokens{AccessToken: "a", RefreshToken: "r"}))
	authn := &stubAuthenticator{
		refreshTokens: Tokens{AccessToken: "b", RefreshToken: "r2"},
		refreshGate:   make(chan struct{}),
		refreshSeen:   make(chan struct{}, 1),
	}
	m := newTestManager(t, store, authn)

	const callers = 8
	results := make(chan bool, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- m.Refresh(ctx, "a")
		}()
	}

	select {
	case <-authn.refreshSeen:
	case <-time.After(2 * time.Second):
		t.Fatal("refresh never started")
	}
	close(authn.refreshGate)
	wg.Wait()
	close(results)

	for ok := range results {
		assert.True(t, ok)
	}
	assert.Equal(t, int32(1), authn.refreshCalls.Load())
	assert.Equal(t, "b", m.AccessToken(ctx))
}

func TestExpireClearsEverythingAndRequiresLogin(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	access := authtest.ValidToken(3, "lan")
	require.NoError(t, store.Save(ctx, Tokens{AccessToken: access, RefreshToken: "r"}))
	m := newTestManager(t, store, &stubAuthenticator{permissions: []auth.Permission{{Action: "GET", Path: "/x"}}})
	_, err := m.Restore(ctx)
	require.NoError(t, err)

	m.Expire(ctx)
	assert.True(t, m.RequiresLogin())
	assert.Nil(t, m.Identity())
	assert.Empty(t, m.Permissions())
	assert.Equal(t, "", m.AccessToken(ctx))
}

func TestLogoutClearsState(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	m := newTestManager(t, store, &stubAuthenticator{loginTokens: Tokens{AccessToken: authtest.ValidToken(1, "a"), RefreshToken: "r"}})
	_, err := m.Login(ctx, "a@ltt.vn", "pw")
	require.NoError(t, err)

	require.NoError(t, m.Logout(ctx))
	assert.False(t, m.Authenticated())
	assert.False(t, m.RequiresLogin())
	stored, _ := store.Load(ctx)
	assert.True(t, stored.Empty())
}

func TestUnauthorizedRequestWithFailedRefreshClearsTokensOnce(t *testing.T) {
	ctx := context.Background()
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	store := NewMemoryStore()
	require.NoError(t, store.Save(ctx, Tokens{AccessToken: authtest.ValidToken(1, "a"), RefreshToken: "r"}))
	authn := &stubAuthenticator{refreshErr: errors.New("refresh rejected")}
	m := newTestManager(t, store, authn)

	client, err := upstream.NewClient("commerce", server.URL, upstream.CommerceEnvelope{},
		upstream.WithHTTPClient(server.Client()), upstream.WithTokenSource(m))
	require.NoError(t, err)

	err = client.Do(ctx, upstream.Request{Method: http.MethodGet, Path: "/api/orders"}, nil)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))
	stored, _ := store.Load(ctx)
	assert.True(t, stored.Empty())
	assert.True(t, m.RequiresLogin())
	assert.Equal(t, int32(1), authn.refreshCalls.Load())

	err = client.Do(ctx, upstream.Request{Method: http.MethodGet, Path: "/api/orders"}, nil)
	require.Error(t, err)
	assert.Equal(t, int32(1), authn.refreshCalls.Load())
	assert.Equal(t, int32(2), hits.Load())
}

func TestUnauthorizedRequestWithSuccessfulRefreshSucceedsTransparently(t *testing.T) {
	ctx := context.Background()
	fresh := authtest.ValidToken(1, "fresh")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+fresh {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"code":200,"data":{"status":"ok"}}`))
	}))
	defer server.Close()

	store := NewMemoryStore()
	require.NoError(t, store.Save(ctx, Tokens{AccessToken: "expired", RefreshToken: "r"}))
	m := newTestManager(t, store, &stubAuthenticator{refreshTokens: Tokens{AccessToken: fresh, RefreshToken: "r2"}})

	client, err := upstream.NewClient("commerce", server.URL, upstream.CommerceEnvelope{},
		upstream.WithHTTPClient(server.Client()), upstream.WithTokenSource(m))
	require.NoError(t, err)

	var out map[string]string
	require.NoError(t, client.Do(ctx, upstream.Request{Method: http.MethodGet, Path: "/api/analytics"}, &out))
	assert.Equal(t, "ok", out["status"])
	assert.False(t, m.RequiresLogin())
}
