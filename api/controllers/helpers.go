package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/lttsale-console/api/middleware"
	"github.com/angelmondragon/lttsale-console/api/responses"
	"github.com/angelmondragon/lttsale-console/internal/console"
	pkgerrors "github.com/angelmondragon/lttsale-console/pkg/errors"
	"github.com/angelmondragon/lttsale-console/pkg/logger"
)

// workspace returns the request's workspace or writes an internal error.
func workspace(w http.ResponseWriter, r *http.Request, logg *logger.Logger) (*console.Workspace, bool) {
	ws := middleware.WorkspaceFromContext(r.Context())
	if ws == nil {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "workspace missing"))
		return nil, false
	}
	return ws, true
}

// fail writes err. When err ended the session (a refresh failed or the identity is
// gone) the cookie is cleared and the browser is sent to the login page.
func fail(w http.ResponseWriter, r *http.Request, logg *logger.Logger, err error) {
	ctx := r.Context()
	if pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
		if ws := middleware.WorkspaceFromContext(ctx); ws != nil && (ws.Session.RequiresLogin() || !ws.Session.Authenticated()) {
			responses.WriteSessionEnded(ctx, logg, w, middleware.CookieFromContext(ctx), err)
			return
		}
	}
	responses.WriteError(ctx, logg, w, err)
}

func pathParam(r *http.Request, name string) string {
	return strings.TrimSpace(chi.URLParam(r, name))
}
