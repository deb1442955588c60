package console

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/angelmondragon/lttsale-console/pkg/logger"
	"github.com/google/uuid"
)

// Registry maps session ids to workspaces. Idle workspaces are pruned lazily whenever
// the registry is accessed; nothing runs in the background.
type Registry struct {
	deps Deps
	idle time.Duration
	now  func() time.Time
	logg *logger.Logger

	mu         sync.Mutex
	workspaces map[string]*Workspace
}

// NewRegistry builds a registry. idle <= 0 keeps workspaces until they are dropped.
func NewRegistry(deps Deps, idle time.Duration) (*Registry, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	now := deps.Clock
	if now == nil {
		now = time.Now
	}
	logg := deps.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	deps.Logger = logg
	return &Registry{
		deps:       deps,
		idle:       idle,
		now:        now,
		logg:       logg,
		workspaces: map[string]*Workspace{},
	}, nil
}

// Open returns the workspace for sessionID, creating one when none is live. A fresh
// id is issued unless sessionID is a UUID the registry already holds or one whose
// token store still has tokens, which is how sessions outlive a restart. issued
// reports whether a new id was issued, which the caller must send back.
func (r *Registry) Open(ctx context.Context, sessionID string) (ws *Workspace, issued bool, err error) {
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.pruneLocked(ctx, now)

	if parsed, perr := uuid.Parse(sessionID); perr == nil {
		sessionID = parsed.String()
		if existing, ok := r.workspaces[sessionID]; ok {
			existing.touch(now)
			return existing, false, nil
		}
		if ws, err = r.adopt(ctx, sessionID); err != nil {
			return nil, false, err
		}
	}

	if ws == nil {
		if ws, err = NewWorkspace(uuid.NewString(), r.deps); err != nil {
			return nil, false, fmt.Errorf("create workspace: %w", err)
		}
		issued = true
	}
	ws.touch(now)
	r.workspaces[ws.ID] = ws
	return ws, issued, nil
}

// adopt rebuilds the workspace of a session id the registry does not hold. It returns
// nil when the id has no stored tokens.
func (r *Registry) adopt(ctx context.Context, sessionID string) (*Workspace, error) {
	store, err := r.deps.Tokens(sessionID)
	if err != nil {
		return nil, fmt.Errorf("open token store: %w", err)
	}
	tokens, err := store.Load(ctx)
	if err != nil {
		r.logg.Warn(ctx, "stored session tokens unreadable, issuing a new session id")
		return nil, nil
	}
	if tokens.Empty() {
		return nil, nil
	}
	ws, err := newWorkspace(sessionID, store, r.deps)
	if err != nil {
		return nil, fmt.Errorf("create workspace: %w", err)
	}
	return ws, nil
}

// Rotate signs a session in under a new id. signIn runs against a workspace that is
// not yet registered; only when it succeeds does that workspace replace the one held
// under oldID, whose tokens are cleared. On failure the old session is left as it was.
func (r *Registry) Rotate(ctx context.Context, oldID string, signIn func(context.Context, *Workspace) error) (*Workspace, error) {
	ws, err := NewWorkspace(uuid.NewString(), r.deps)
	if err != nil {
		return nil, fmt.Errorf("create workspace: %w", err)
	}
	if err := signIn(ctx, ws); err != nil {
		return nil, err
	}

	now := r.now()
	r.mu.Lock()
	old := r.workspaces[oldID]
	delete(r.workspaces, oldID)
	ws.touch(now)
	r.workspaces[ws.ID] = ws
	r.mu.Unlock()

	if old != nil {
		if err := old.Session.Logout(ctx); err != nil {
			r.logg.Warn(ctx, "failed to clear tokens of rotated session")
		}
	}
	return ws, nil
}

// Lookup returns a live workspace without creating one.
func (r *Registry) Lookup(ctx context.Context, sessionID string) (*Workspace, bool) {
	now := r.now()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pruneLocked(ctx, now)
	ws, ok := r.workspaces[sessionID]
	if ok {
		ws.touch(now)
	}
	return ws, ok
}

// Drop forgets a workspace, typically after logout.
func (r *Registry) Drop(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.workspaces, sessionID)
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.workspaces)
}

func (r *Registry) pruneLocked(ctx context.Context, now time.Time) {
	if r.idle <= 0 {
		return
	}
	for id, ws := range r.workspaces {
		if now.Sub(ws.LastSeen()) > r.idle {
			delete(r.workspaces, id)
			r.logg.Debug(ctx, "pruned idle workspace "+id)
		}
	}
}
