package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App      AppConfig
	Upstream UpstreamConfig
	Redis    RedisConfig
	Session  SessionConfig
	CORS     CORSConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Upstream.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"CONSOLE_APP_ENV" required:"true"`
	Port         string `envconfig:"CONSOLE_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"CONSOLE_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"CONSOLE_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"CONSOLE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// UpstreamConfig points the console at its two backends.
type UpstreamConfig struct {
	CommerceBaseURL string        `envconfig:"CONSOLE_COMMERCE_API_URL" default:"http://localhost:8002"`
	SSOBaseURL      string        `envconfig:"CONSOLE_SSO_API_URL" default:"http://localhost:9091"`
	Timeout         time.Duration `envconfig:"CONSOLE_UPSTREAM_TIMEOUT" default:"15s"`
	PageSize        int           `envconfig:"CONSOLE_UPSTREAM_PAGE_SIZE" default:"1000"`
}

func (u UpstreamConfig) validate() error {
	for name, raw := range map[string]string{
		EnvCommerceBaseURL: u.CommerceBaseURL,
		EnvSSOBaseURL:      u.SSOBaseURL,
	} {
		parsed, err := url.Parse(strings.TrimSpace(raw))
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("%s must be an absolute url, got %q", name, raw)
		}
	}
	if u.Timeout <= 0 {
		return fmt.Errorf("%s must be positive", EnvUpstreamTimeout)
	}
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"CONSOLE_REDIS_URL"`
	Address      string        `envconfig:"CONSOLE_REDIS_ADDR"`
	Password     string        `envconfig:"CONSOLE_REDIS_PASSWORD"`
	DB           int           `envconfig:"CONSOLE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CONSOLE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CONSOLE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CONSOLE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CONSOLE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CONSOLE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether a Redis endpoint was configured; without one the console
// keeps tokens and settings in process memory.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type SessionConfig struct {
	CookieName   string        `envconfig:"CONSOLE_SESSION_COOKIE" default:"console_sid"`
	CookieSecure bool          `envconfig:"CONSOLE_SESSION_COOKIE_SECURE" default:"false"`
	TTL          time.Duration `envconfig:"CONSOLE_SESSION_TTL" default:"720h"`
	IdleTimeout  time.Duration `envconfig:"CONSOLE_SESSION_IDLE_TIMEOUT" default:"12h"`
	// LoginAttempts caps login attempts per client address within LoginWindow; 0 disables it.
	LoginAttempts int64         `envconfig:"CONSOLE_LOGIN_ATTEMPTS" default:"10"`
	LoginWindow   time.Duration `envconfig:"CONSOLE_LOGIN_WINDOW" default:"1m"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"CONSOLE_CORS_ORIGINS" default:"http://localhost:3000,http://localhost:5173"`
}
