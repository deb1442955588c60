package controllers

import (
	"context"
	"net/http"

	"github.com/angelmondragon/lttsale-console/api/middleware"
	"github.com/angelmondragon/lttsale-console/api/responses"
	"github.com/angelmondragon/lttsale-console/api/validators"
	"github.com/angelmondragon/lttsale-console/internal/console"
	"github.com/angelmondragon/lttsale-console/internal/identity"
	"github.com/angelmondragon/lttsale-console/pkg/auth"
	pkgerrors "github.com/angelmondragon/lttsale-console/pkg/errors"
	"github.com/angelmondragon/lttsale-console/pkg/logger"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// sessionResponse is what the browser app keeps as its auth state.
type sessionResponse struct {
	Authenticated bool           `json:"authenticated"`
	User          *auth.Identity `json:"user"`
	Permissions   []string       `json:"permissions"`
}

func sessionState(ws *console.Workspace) sessionResponse {
	user := ws.Session.Identity()
	return sessionResponse{
		Authenticated: user != nil,
		User:          user,
		Permissions:   ws.Session.Permissions(),
	}
}

// AuthLogin signs the browser in under a newly issued session id, so an id planted
// before login never becomes authenticated. Credential failures are reported inline
// and leave the current session untouched.
func AuthLogin(registry *console.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		current, ok := workspace(w, r, logg)
		if !ok {
			return
		}
		var req loginRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ws, err := registry.Rotate(r.Context(), current.ID, func(ctx context.Context, ws *console.Workspace) error {
			_, err := ws.Session.Login(ctx, req.Email, req.Password)
			return err
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		middleware.CookieFromContext(r.Context()).Set(w, ws.ID)
		responses.WriteSuccess(w, sessionState(ws))
	}
}

// AuthLogout clears the tokens, forgets the workspace and expires the cookie. It never
// calls the identity service.
func AuthLogout(registry *console.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := workspace(w, r, logg)
		if !ok {
			return
		}
		err := ws.Session.Logout(r.Context())
		registry.Drop(ws.ID)
		middleware.CookieFromContext(r.Context()).Clear(w)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMessage(w, "Logged out")
	}
}

// AuthSession reports the current auth state. A session torn down by a failed refresh
// is answered with the login redirect.
func AuthSession(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := workspace(w, r, logg)
		if !ok {
			return
		}
		if ws.Session.RequiresLogin() {
			responses.WriteSessionEnded(r.Context(), logg, w, middleware.CookieFromContext(r.Context()),
				pkgerrors.New(pkgerrors.CodeUnauthorized, "Session expired"))
			return
		}
		responses.WriteSuccess(w, sessionState(ws))
	}
}

// AuthPermissions reloads and returns the permission set.
func AuthPermissions(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := workspace(w, r, logg)
		if !ok {
			return
		}
		if r.URL.Query().Get("reload") == "true" {
			ws.Session.LoadPermissions(r.Context())
		}
		responses.WriteSuccess(w, ws.Session.Permissions())
	}
}

// AuthCan answers a single permission check.
func AuthCan(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := workspace(w, r, logg)
		if !ok {
			return
		}
		method := validators.QueryString(r, "method")
		path := validators.QueryString(r, "path")
		if method == "" || path == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "method and path are required"))
			return
		}
		responses.WriteSuccess(w, map[string]bool{"allowed": ws.Can(method, path)})
	}
}

type profileResponse struct {
	Profile *identity.Profile `json:"profile"`
	User    *auth.Identity    `json:"user"`
}

// AuthProfile loads the signed-in account. The role comes from the token as it stands
// after the call, which may have refreshed it.
func AuthProfile(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := workspace(w, r, logg)
		if !ok {
			return
		}
		user := ws.Session.Identity()
		if user == nil {
			fail(w, r, logg, pkgerrors.New(pkgerrors.CodeUnauthorized, "Unauthorized"))
			return
		}
		profile, err := ws.Identity.Profile(r.Context(), user.ID)
		if err != nil {
			fail(w, r, logg, err)
			return
		}
		writeProfile(w, r, logg, ws, profile)
	}
}

func AuthUpdateProfile(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := workspace(w, r, logg)
		if !ok {
			return
		}
		var input identity.ProfileInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		user := ws.Session.Identity()
		if user == nil {
			fail(w, r, logg, pkgerrors.New(pkgerrors.CodeUnauthorized, "Unauthorized"))
			return
		}
		profile, err := ws.Identity.UpdateProfile(r.Context(), user.ID, input)
		if err != nil {
			fail(w, r, logg, err)
			return
		}
		writeProfile(w, r, logg, ws, profile)
	}
}

func writeProfile(w http.ResponseWriter, r *http.Request, logg *logger.Logger, ws *console.Workspace, profile *identity.Profile) {
	claims, err := ws.Session.Claims(r.Context())
	if err != nil {
		fail(w, r, logg, err)
		return
	}
	user := ws.Session.Identity()
	email := profile.Email
	if user != nil && user.Email != "" {
		email = user.Email
	}
	fresh := claims.Identity(email)
	profile.Role = fresh.Role
	responses.WriteSuccess(w, profileResponse{Profile: profile, User: &fresh})
}

// Navigation returns the console menu filtered by the session's permissions.
func Navigation(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := workspace(w, r, logg)
		if !ok {
			return
		}
		page := validators.QueryString(r, "page")
		if page == "" {
			responses.WriteSuccess(w, console.Navigation(ws.Can))
			return
		}
		allowed := console.PageAllowed(page, ws.Can)
		body := map[string]any{"page": page, "allowed": allowed}
		if !allowed {
			body["redirect"] = console.Landing(page, ws.Can)
			body["message"] = "You do not have permission to access this page"
		}
		responses.WriteSuccess(w, body)
	}
}
