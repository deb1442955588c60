package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/angelmondragon/lttsale-console/api/responses"
	"github.com/angelmondragon/lttsale-console/pkg/config"
	pkgerrors "github.com/angelmondragon/lttsale-console/pkg/errors"
	"github.com/angelmondragon/lttsale-console/pkg/logger"
	"github.com/angelmondragon/lttsale-console/pkg/redis"
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Console-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady checks the token store. Without Redis the console is always ready.
func HealthReady(cfg *config.Config, logg *logger.Logger, redisClient redis.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Console-Env", cfg.App.Env)
		if redisClient != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := redisClient.Ping(ctx); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redis unavailable"))
				return
			}
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
