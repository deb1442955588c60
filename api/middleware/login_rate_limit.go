package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/angelmondragon/lttsale-console/api/responses"
	pkgerrors "github.com/angelmondragon/lttsale-console/pkg/errors"
	"github.com/angelmondragon/lttsale-console/pkg/logger"
)

// RateLimiterStore counts attempts per scope; pkg/redis implements it.
type RateLimiterStore interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// LoginRateLimitPolicy caps login attempts per client address and per email.
type LoginRateLimitPolicy struct {
	window time.Duration
	limit  int64
}

func NewLoginRateLimitPolicy(window time.Duration, limit int64) LoginRateLimitPolicy {
	return LoginRateLimitPolicy{window: window, limit: limit}
}

func (p LoginRateLimitPolicy) enabled() bool {
	return p.window > 0 && p.limit > 0
}

// LoginRateLimit counts attempts in fixed windows. With no store configured the
// handler is returned unchanged.
func LoginRateLimit(policy LoginRateLimitPolicy, store RateLimiterStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !policy.enabled() || store == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if ip := clientIP(r); ip != "" {
				if !check(ctx, w, logg, store, policy, "login:ip:"+ip, "ip") {
					return
				}
			}

			body, err := io.ReadAll(r.Body)
			if err != nil {
				responses.WriteError(ctx, nil, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request"))
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			if email := normalizeEmail(extractEmail(body)); email != "" {
				if !check(ctx, w, logg, store, policy, "login:email:"+hashValue(email), "email") {
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

func check(ctx context.Context, w http.ResponseWriter, logg *logger.Logger, store RateLimiterStore, policy LoginRateLimitPolicy, scope, kind string) bool {
	allowed, count, err := store.FixedWindowAllow(ctx, scope, policy.limit, policy.window)
	if err != nil {
		responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting"))
		return false
	}
	if allowed {
		return true
	}
	if logg != nil {
		logCtx := logg.WithFields(ctx, map[string]any{
			"scope":          kind,
			"attempts":       count,
			"limit":          policy.limit,
			"window_seconds": int(policy.window.Seconds()),
		})
		logg.Warn(logCtx, "login.rate_limit.blocked")
	}
	responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, "Too many login attempts, try again later"))
	return false
}

func clientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	if header := r.Header.Get("X-Forwarded-For"); header != "" {
		for _, part := range strings.Split(header, ",") {
			if ip := strings.TrimSpace(part); ip != "" {
				return ip
			}
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}

func extractEmail(payload []byte) string {
	var body struct {
		Email string `json:"email"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return ""
	}
	return body.Email
}

func normalizeEmail(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func hashValue(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}
