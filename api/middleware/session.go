package middleware

import (
	"net/http"

	"github.com/angelmondragon/lttsale-console/api/responses"
	"github.com/angelmondragon/lttsale-console/internal/console"
	pkgerrors "github.com/angelmondragon/lttsale-console/pkg/errors"
	"github.com/angelmondragon/lttsale-console/pkg/logger"
)

// Session resolves the browser's workspace from the session cookie, issuing a new
// cookie when the browser has none. A workspace without an identity is restored from
// its stored tokens, so sessions survive a restart when tokens live in Redis.
func Session(registry *console.Registry, cookie responses.SessionCookie, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			var sessionID string
			if c, err := r.Cookie(cookie.Name); err == nil {
				sessionID = c.Value
			}

			ws, issued, err := registry.Open(ctx, sessionID)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "open session"))
				return
			}
			if issued {
				cookie.Set(w, ws.ID)
			}

			if !ws.Session.Authenticated() && !ws.Session.RequiresLogin() {
				if _, err := ws.Session.Restore(ctx); err == nil && logg != nil {
					logg.Debug(ctx, "session restored")
				}
			}

			if logg != nil {
				ctx = logg.WithSessionID(ctx, ws.ID)
				if identity := ws.Session.Identity(); identity != nil {
					ctx = logg.WithUserID(ctx, identity.ID)
					ctx = logg.WithActorRole(ctx, identity.Role)
				}
			}
			ctx = withCookie(WithWorkspace(ctx, ws), cookie)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth rejects requests from sessions without an identity. The browser is sent
// back to the login page.
func RequireAuth(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			ws := WorkspaceFromContext(ctx)
			if ws == nil {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "session middleware missing"))
				return
			}
			if !ws.Session.Authenticated() {
				responses.WriteSessionEnded(ctx, logg, w, CookieFromContext(ctx), pkgerrors.New(pkgerrors.CodeUnauthorized, "Unauthorized"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequirePermission gates a route behind the same (method, path) grant the matching
// console page needs.
func RequirePermission(req console.Requirement, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			ws := WorkspaceFromContext(ctx)
			if ws == nil || !ws.Can(req.Method, req.Path) {
				if logg != nil {
					logCtx := logg.WithFields(ctx, map[string]any{"required_method": req.Method, "required_path": req.Path})
					logg.Warn(logCtx, "permission.denied")
				}
				responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeForbidden, "You do not have permission to access this page").
					WithDetails(req))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
