package controllers

import (
	"net/http"

	"github.com/angelmondragon/lttsale-console/api/responses"
	"github.com/angelmondragon/lttsale-console/api/validators"
	"github.com/angelmondragon/lttsale-console/internal/console"
	"github.com/angelmondragon/lttsale-console/internal/settings"
	"github.com/angelmondragon/lttsale-console/pkg/logger"
)

func settingsUser(ws *console.Workspace) string {
	if user := ws.Session.Identity(); user != nil {
		return user.ID
	}
	return ""
}

func SettingsGet(svc *settings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := workspace(w, r, logg)
		if !ok {
			return
		}
		responses.WriteSuccess(w, svc.Get(r.Context(), settingsUser(ws)))
	}
}

func SettingsUpdate(svc *settings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := workspace(w, r, logg)
		if !ok {
			return
		}
		var patch settings.Patch
		if err := validators.DecodeJSONBody(r, &patch); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		theme, err := svc.Update(r.Context(), settingsUser(ws), patch)
		if err != nil {
			fail(w, r, logg, err)
			return
		}
		responses.WriteSuccess(w, theme)
	}
}

func SettingsToggleNav(svc *settings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := workspace(w, r, logg)
		if !ok {
			return
		}
		theme, err := svc.ToggleNavCollapsed(r.Context(), settingsUser(ws))
		if err != nil {
			fail(w, r, logg, err)
			return
		}
		responses.WriteSuccess(w, theme)
	}
}

func SettingsReset(svc *settings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := workspace(w, r, logg)
		if !ok {
			return
		}
		theme, err := svc.Reset(r.Context(), settingsUser(ws))
		if err != nil {
			fail(w, r, logg, err)
			return
		}
		responses.WriteSuccess(w, theme)
	}
}
