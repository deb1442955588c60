package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/angelmondragon/lttsale-console/pkg/logger"
	"github.com/angelmondragon/lttsale-console/pkg/upstream"
)

const requestIDHeader = upstream.RequestIDHeader

// RequestID tags the request with an id that is echoed to the browser, attached to
// log lines and forwarded on every backend call.
func RequestID(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := requestIDFrom(r.Header.Get(requestIDHeader))
			w.Header().Set(requestIDHeader, reqID)

			ctx := upstream.WithRequestID(r.Context(), reqID)
			if logg != nil {
				ctx = logg.WithRequestID(ctx, reqID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// requestIDFrom keeps a caller supplied id only when it is a UUID; header text is
// otherwise never copied into logs or backend requests.
func requestIDFrom(raw string) string {
	if id, err := uuid.Parse(strings.TrimSpace(raw)); err == nil {
		return id.String()
	}
	return uuid.NewString()
}
