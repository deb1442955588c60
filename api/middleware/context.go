package middleware

import (
	"context"

	"github.com/angelmondragon/lttsale-console/api/responses"
	"github.com/angelmondragon/lttsale-console/internal/console"
)

type contextKey string

const (
	ctxWorkspace contextKey = "workspace"
	ctxCookie    contextKey = "session_cookie"
)

// WorkspaceFromContext returns the workspace the Session middleware attached.
func WorkspaceFromContext(ctx context.Context) *console.Workspace {
	if ctx == nil {
		return nil
	}
	if ws, ok := ctx.Value(ctxWorkspace).(*console.Workspace); ok {
		return ws
	}
	return nil
}

// WithWorkspace injects a workspace into the context.
func WithWorkspace(ctx context.Context, ws *console.Workspace) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxWorkspace, ws)
}

// CookieFromContext returns the session cookie settings for the request.
func CookieFromContext(ctx context.Context) responses.SessionCookie {
	if ctx == nil {
		return responses.SessionCookie{}
	}
	if c, ok := ctx.Value(ctxCookie).(responses.SessionCookie); ok {
		return c
	}
	return responses.SessionCookie{}
}

func withCookie(ctx context.Context, cookie responses.SessionCookie) context.Context {
	return context.WithValue(ctx, ctxCookie, cookie)
}
