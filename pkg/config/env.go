package config

// EnvPrefix namespaces every variable read by Load.
const EnvPrefix = "CONSOLE"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv          = "CONSOLE_APP_ENV"
	EnvPort            = "CONSOLE_APP_PORT"
	EnvLogLevel        = "CONSOLE_LOG_LEVEL"
	EnvLogFormat       = "CONSOLE_LOG_FORMAT"
	EnvCommerceBaseURL = "CONSOLE_COMMERCE_API_URL"
	EnvSSOBaseURL      = "CONSOLE_SSO_API_URL"
	EnvUpstreamTimeout = "CONSOLE_UPSTREAM_TIMEOUT"
	EnvRedisURL        = "CONSOLE_REDIS_URL"
	EnvRedisAddr       = "CONSOLE_REDIS_ADDR"
	EnvSessionCookie   = "CONSOLE_SESSION_COOKIE"
	EnvSessionTTL      = "CONSOLE_SESSION_TTL"
	EnvCORSOrigins     = "CONSOLE_CORS_ORIGINS"
)
