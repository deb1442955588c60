package session

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/angelmondragon/lttsale-console/pkg/auth"
	pkgerrors "github.com/angelmondragon/lttsale-console/pkg/errors"
	"github.com/angelmondragon/lttsale-console/pkg/logger"
	"github.com/angelmondragon/lttsale-console/pkg/metrics"
	"golang.org/x/sync/singleflight"
)

const refreshFlightKey = "refresh"

// Authenticator is the identity service surface the session depends on.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (Tokens, error)
	RefreshToken(ctx context.Context, refreshToken string) (Tokens, error)
	AccountPermissions(ctx context.Context, uid string) ([]auth.Permission, error)
}

// Manager owns one browser session: its token pair, the identity decoded from the
// access token and the permission set fetched after login or restore.
type Manager struct {
	store   TokenStore
	authn   Authenticator
	logg    *logger.Logger
	metrics *metrics.UpstreamMetrics
	now     func() time.Time
	flight  singleflight.Group

	mu            sync.RWMutex
	identity      *auth.Identity
	email         string
	permissions   map[string]struct{}
	requiresLogin bool
}

// Option configures optional manager behavior.
type Option func(*Manager)

func WithLogger(logg *logger.Logger) Option {
	return func(m *Manager) {
		if logg != nil {
			m.logg = logg
		}
	}
}

func WithMetrics(u *metrics.UpstreamMetrics) Option {
	return func(m *Manager) {
		m.metrics = u
	}
}

// WithClock overrides the time source used for exp checks.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// NewManager constructs a session manager over the provided token store.
func NewManager(store TokenStore, authn Authenticator, opts ...Option) (*Manager, error) {
	if store == nil {
		return nil, fmt.Errorf("token store is required")
	}
	m := &Manager{
		store:       store,
		logg:        logger.Nop(),
		now:         time.Now,
		permissions: map[string]struct{}{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	m.authn = authn
	return m, nil
}

// SetAuthenticator wires the identity client after construction; the client itself
// authenticates through this manager.
func (m *Manager) SetAuthenticator(authn Authenticator) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.authn = authn
}

func (m *Manager) authenticator() Authenticator {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.authn
}

// Login exchanges credentials for a token pair and derives the identity from it.
func (m *Manager) Login(ctx context.Context, email, password string) (*auth.Identity, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email and password are required")
	}
	authn := m.authenticator()
	if authn == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "identity service not configured")
	}

	tokens, err := authn.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	claims, err := auth.DecodeClaims(tokens.AccessToken)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "Login failed: invalid token")
	}

	tokens.Email = email
	if err := m.store.Save(ctx, tokens); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist session tokens")
	}

	identity := claims.Identity(email)
	m.mu.Lock()
	m.identity = &identity
	m.email = email
	m.permissions = map[string]struct{}{}
	m.requiresLogin = false
	m.mu.Unlock()

	m.LoadPermissions(ctx)
	return m.Identity(), nil
}

// Restore rebuilds the identity from the stored access token. Any failure to trust the
// token tears the whole session down.
func (m *Manager) Restore(ctx context.Context) (*auth.Identity, error) {
	tokens, err := m.store.Load(ctx)
	if err != nil {
		m.resetState(false)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load session tokens")
	}
	if tokens.AccessToken == "" {
		m.resetState(false)
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "No access token")
	}

	claims, err := auth.DecodeClaims(tokens.AccessToken)
	if err != nil {
		m.teardown(ctx, false)
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "Invalid token")
	}
	if claims.UID == "" {
		m.teardown(ctx, false)
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "Invalid token: missing uid")
	}
	if claims.Expired(m.now()) {
		m.teardown(ctx, false)
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "Token expired")
	}

	m.mu.Lock()
	email := m.email
	if email == "" {
		email = tokens.Email
	}
	identity := claims.Identity(email)
	m.identity = &identity
	m.email = email
	m.requiresLogin = false
	m.mu.Unlock()

	m.LoadPermissions(ctx)
	return m.Identity(), nil
}

// Refresh exchanges the refresh token for a new pair. stale is the access token a
// failed request carried; if the stored token already differs, a concurrent refresh
// has won and no call is made. Concurrent callers share one in-flight exchange.
func (m *Manager) Refresh(ctx context.Context, stale string) bool {
	flightCtx := context.WithoutCancel(ctx)
	result, _, shared := m.flight.Do(refreshFlightKey, func() (any, error) {
		return m.refresh(flightCtx, stale), nil
	})
	if shared {
		m.metrics.IncRefresh(metrics.RefreshShared)
	}
	ok, _ := result.(bool)
	return ok
}

func (m *Manager) refresh(ctx context.Context, stale string) bool {
	current, err := m.store.Load(ctx)
	if err != nil {
		m.logg.Error(ctx, "load tokens for refresh", err)
		m.metrics.IncRefresh(metrics.RefreshFailed)
		return false
	}
	if current.AccessToken != "" && current.AccessToken != stale {
		return true
	}
	if current.RefreshToken == "" {
		return false
	}
	authn := m.authenticator()
	if authn == nil {
		return false
	}

	next, err := authn.RefreshToken(ctx, current.RefreshToken)
	if err != nil || next.AccessToken == "" {
		if err != nil {
			m.logg.Warn(ctx, fmt.Sprintf("token refresh failed: %s", pkgerrors.MessageOf(err)))
		}
		m.metrics.IncRefresh(metrics.RefreshFailed)
		return false
	}
	next.Email = current.Email
	if err := m.store.Save(ctx, next); err != nil {
		m.logg.Error(ctx, "persist refreshed tokens", err)
		m.metrics.IncRefresh(metrics.RefreshFailed)
		return false
	}

	if claims, err := auth.DecodeClaims(next.AccessToken); err == nil {
		m.mu.Lock()
		if m.identity != nil {
			identity := claims.Identity(m.email)
			m.identity = &identity
		}
		m.mu.Unlock()
	}
	m.metrics.IncRefresh(metrics.RefreshSucceeded)
	return true
}

// Expire is the hard logout that follows a failed refresh.
func (m *Manager) Expire(ctx context.Context) {
	m.teardown(ctx, true)
}

// Logout clears tokens and in-memory state. The identity service is not called.
func (m *Manager) Logout(ctx context.Context) error {
	m.resetState(false)
	if err := m.store.Clear(ctx); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear session tokens")
	}
	return nil
}

// LoadPermissions fetches the permission set for the current identity. Failures leave
// the set empty.
func (m *Manager) LoadPermissions(ctx context.Context) {
	identity := m.Identity()
	authn := m.authenticator()
	if identity == nil || identity.ID == "" || authn == nil {
		return
	}

	granted, err := authn.AccountPermissions(ctx, identity.ID)
	set := make(map[string]struct{}, len(granted))
	if err != nil {
		m.logg.Warn(ctx, fmt.Sprintf("permission fetch failed: %s", pkgerrors.MessageOf(err)))
	} else {
		for _, p := range granted {
			set[p.Key()] = struct{}{}
		}
	}

	m.mu.Lock()
	m.permissions = set
	m.mu.Unlock()
}

// HasPermission reports whether the identity may call method on path. Super admins
// always may; others need "<method> <path>" or "* <path>" in their set verbatim.
func (m *Manager) HasPermission(method, path string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.identity != nil && m.identity.IsSuperAdmin {
		return true
	}
	if _, ok := m.permissions[method+" "+path]; ok {
		return true
	}
	_, ok := m.permissions[auth.PermissionKey(auth.WildcardMethod, path)]
	return ok
}

// AccessToken returns the stored access token, or "" when none is stored.
func (m *Manager) AccessToken(ctx context.Context) string {
	tokens, err := m.store.Load(ctx)
	if err != nil {
		m.logg.Error(ctx, "load access token", err)
		return ""
	}
	return tokens.AccessToken
}

// Claims decodes the current access token.
func (m *Manager) Claims(ctx context.Context) (*auth.Claims, error) {
	token := m.AccessToken(ctx)
	if token == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "No access token")
	}
	claims, err := auth.DecodeClaims(token)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "Invalid token")
	}
	return claims, nil
}

// Identity returns a copy of the current identity, or nil when signed out.
func (m *Manager) Identity() *auth.Identity {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.identity == nil {
		return nil
	}
	identity := *m.identity
	return &identity
}

func (m *Manager) Authenticated() bool {
	return m.Identity() != nil
}

// Permissions lists the permission set in sorted order.
func (m *Manager) Permissions() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.permissions))
	for key := range m.permissions {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// RequiresLogin reports whether the session was torn down by a failed refresh.
func (m *Manager) RequiresLogin() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.requiresLogin
}

func (m *Manager) teardown(ctx context.Context, requiresLogin bool) {
	m.resetState(requiresLogin)
	if err := m.store.Clear(ctx); err != nil {
		m.logg.Error(ctx, "clear session tokens", err)
	}
}

func (m *Manager) resetState(requiresLogin bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.identity = nil
	m.email = ""
	m.permissions = map[string]struct{}{}
	m.requiresLogin = requiresLogin
}
