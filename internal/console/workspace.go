package console

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/angelmondragon/lttsale-console/internal/catalog"
	"github.com/angelmondragon/lttsale-console/internal/identity"
	"github.com/angelmondragon/lttsale-console/internal/orders"
	"github.com/angelmondragon/lttsale-console/pkg/auth/session"
	"github.com/angelmondragon/lttsale-console/pkg/logger"
	"github.com/angelmondragon/lttsale-console/pkg/metrics"
	"github.com/angelmondragon/lttsale-console/pkg/upstream"
)

// TokenStoreFactory opens the token store of one browser session.
type TokenStoreFactory func(sessionID string) (session.TokenStore, error)

// MemoryTokens gives every session its own in-process store.
func MemoryTokens(string) (session.TokenStore, error) {
	return session.NewMemoryStore(), nil
}

// Deps are the process-wide pieces each workspace is built from. The upstream clients
// are templates: every workspace binds its own copy to its session.
type Deps struct {
	Commerce *upstream.Client
	SSO      *upstream.Client
	Tokens   TokenStoreFactory
	Logger   *logger.Logger
	Metrics  *metrics.UpstreamMetrics
	Clock    func() time.Time
}

func (d Deps) validate() error {
	if d.Commerce == nil {
		return fmt.Errorf("commerce upstream client required")
	}
	if d.SSO == nil {
		return fmt.Errorf("sso upstream client required")
	}
	if d.Tokens == nil {
		return fmt.Errorf("token store factory required")
	}
	return nil
}

// Workspace is everything one signed-in browser session owns.
type Workspace struct {
	ID       string
	Session  *session.Manager
	Identity *identity.Client
	Orders   *orders.Store
	Catalog  *catalog.Catalog

	orderService orders.Service
	lastSeen     atomic.Int64
}

// NewWorkspace wires a session manager to upstream clients that authenticate through
// it, so a 401 on any backend call refreshes this session only.
func NewWorkspace(id string, deps Deps) (*Workspace, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	store, err := deps.Tokens(id)
	if err != nil {
		return nil, fmt.Errorf("open token store: %w", err)
	}
	return newWorkspace(id, store, deps)
}

func newWorkspace(id string, store session.TokenStore, deps Deps) (*Workspace, error) {
	opts := []session.Option{session.WithLogger(deps.Logger), session.WithMetrics(deps.Metrics)}
	if deps.Clock != nil {
		opts = append(opts, session.WithClock(deps.Clock))
	}
	manager, err := session.NewManager(store, nil, opts...)
	if err != nil {
		return nil, err
	}

	idClient, err := identity.NewClient(deps.SSO.WithTokens(manager))
	if err != nil {
		return nil, err
	}
	manager.SetAuthenticator(idClient)

	commerce := deps.Commerce.WithTokens(manager)
	orderClient, err := orders.NewClient(commerce)
	if err != nil {
		return nil, err
	}
	orderService, err := orders.NewService(orderClient)
	if err != nil {
		return nil, err
	}
	cat, err := catalog.New(commerce)
	if err != nil {
		return nil, err
	}

	return &Workspace{
		ID:           id,
		Session:      manager,
		Identity:     idClient,
		Orders:       orders.NewStore(orderService),
		Catalog:      cat,
		orderService: orderService,
	}, nil
}

// OrderService exposes the rules layer for calls that do not touch the cached list.
func (w *Workspace) OrderService() orders.Service {
	return w.orderService
}

// Can is the permission check handed to navigation and route gating.
func (w *Workspace) Can(method, path string) bool {
	return w.Session.HasPermission(method, path)
}

func (w *Workspace) touch(now time.Time) {
	w.lastSeen.Store(now.UnixNano())
}

func (w *Workspace) LastSeen() time.Time {
	return time.Unix(0, w.lastSeen.Load())
}
