package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"

	"github.com/angelmondragon/lttsale-console/api/routes"
	"github.com/angelmondragon/lttsale-console/internal/console"
	"github.com/angelmondragon/lttsale-console/internal/settings"
	"github.com/angelmondragon/lttsale-console/pkg/auth/session"
	"github.com/angelmondragon/lttsale-console/pkg/config"
	"github.com/angelmondragon/lttsale-console/pkg/logger"
	"github.com/angelmondragon/lttsale-console/pkg/metrics"
	"github.com/angelmondragon/lttsale-console/pkg/redis"
	"github.com/angelmondragon/lttsale-console/pkg/upstream"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "console"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "console",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var redisClient *redis.Client
	tokens := console.TokenStoreFactory(console.MemoryTokens)
	var settingsStore settings.Store = settings.NewMemoryStore()
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap redis", err)
			os.Exit(1)
		}
		tokens = func(sessionID string) (session.TokenStore, error) {
			return session.NewRedisStore(redisClient, redisClient.SessionTokensKey(sessionID), cfg.Session.TTL)
		}
		if settingsStore, err = settings.NewRedisStore(redisClient); err != nil {
			logg.Error(ctx, "failed to create settings store", err)
			os.Exit(1)
		}
	} else {
		logg.Warn(ctx, "redis not configured, sessions and settings are kept in memory")
	}

	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	upstreamMetrics := metrics.NewUpstreamMetrics(promRegistry)

	clientOpts := []upstream.Option{
		upstream.WithHTTPClient(&http.Client{Timeout: cfg.Upstream.Timeout}),
		upstream.WithLogger(logg),
		upstream.WithMetrics(upstreamMetrics),
	}
	commerce, err := upstream.NewClient("commerce", cfg.Upstream.CommerceBaseURL, upstream.CommerceEnvelope{}, clientOpts...)
	if err != nil {
		logg.Error(ctx, "failed to create commerce client", err)
		os.Exit(1)
	}
	sso, err := upstream.NewClient("sso", cfg.Upstream.SSOBaseURL, upstream.IdentityEnvelope{}, clientOpts...)
	if err != nil {
		logg.Error(ctx, "failed to create sso client", err)
		os.Exit(1)
	}

	registry, err := console.NewRegistry(console.Deps{
		Commerce: commerce,
		SSO:      sso,
		Tokens:   tokens,
		Logger:   logg,
		Metrics:  upstreamMetrics,
	}, cfg.Session.IdleTimeout)
	if err != nil {
		logg.Error(ctx, "failed to create session registry", err)
		os.Exit(1)
	}

	settingsService, err := settings.NewService(settingsStore, logg)
	if err != nil {
		logg.Error(ctx, "failed to create settings service", err)
		os.Exit(1)
	}

	addr := ":" + cfg.App.Port
	serverCtx := logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"commerce": cfg.Upstream.CommerceBaseURL,
		"sso":      cfg.Upstream.SSOBaseURL,
	})

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(cfg, logg, registry, settingsService, redisClient, promhttp.HandlerFor(promRegistry, promhttp.HandlerOpts{})),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logg.Info(serverCtx, "starting console server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			logg.Error(serverCtx, "console server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
	}

	logg.Info(serverCtx, "shutting down console server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err = server.Shutdown(shutdownCtx)
	if redisClient != nil {
		err = multierr.Append(err, redisClient.Close())
	}
	if err != nil {
		logg.Error(serverCtx, "shutdown finished with errors", err)
		os.Exit(1)
	}
}
