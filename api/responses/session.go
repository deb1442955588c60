package responses

import (
	"context"
	"net/http"
	"time"

	"github.com/angelmondragon/lttsale-console/pkg/logger"
)

const (
	// RedirectHeader tells the browser app where to navigate after a response.
	RedirectHeader = "X-Console-Redirect"
	LoginPath      = "/auth/login"
)

// SessionCookie describes the browser session cookie.
type SessionCookie struct {
	Name   string
	Secure bool
	TTL    time.Duration
}

func (c SessionCookie) Set(w http.ResponseWriter, sessionID string) {
	cookie := &http.Cookie{
		Name:     c.Name,
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	if c.TTL > 0 {
		cookie.MaxAge = int(c.TTL.Seconds())
	}
	http.SetCookie(w, cookie)
}

func (c SessionCookie) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// WriteSessionEnded clears the session cookie, points the browser at the login page
// and writes err.
func WriteSessionEnded(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, cookie SessionCookie, err error) {
	cookie.Clear(w)
	w.Header().Set(RedirectHeader, LoginPath)
	WriteError(ctx, logg, w, err)
}
