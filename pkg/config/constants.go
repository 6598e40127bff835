package config

const (
	EnvPrefix = "DEALEROS"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv   = "DEALEROS_APP_ENV"
	EnvPort     = "DEALEROS_APP_PORT"
	EnvLogLevel = "DEALEROS_LOG_LEVEL"

	EnvDBDSN  = "DEALEROS_DB_DSN"
	EnvDBHost = "DEALEROS_DB_HOST"
	EnvDBUser = "DEALEROS_DB_USER"
	EnvDBName = "DEALEROS_DB_NAME"

	EnvRedisURL = "DEALEROS_REDIS_URL"

	EnvJWTSecret               = "DEALEROS_JWT_SECRET"
	EnvJWTIssuer               = "DEALEROS_JWT_ISSUER"
	EnvJWTExpMins              = "DEALEROS_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes  = "DEALEROS_REFRESH_TOKEN_TTL_MINUTES"
	EnvImpersonationSecret     = "DEALEROS_IMPERSONATION_SECRET"
	EnvImpersonationTTL        = "DEALEROS_IMPERSONATION_TTL"
	EnvExportImageColumns      = "DEALEROS_EXPORT_IMAGE_COLUMNS"
	EnvCORSAllowedOrigins      = "DEALEROS_CORS_ALLOWED_ORIGINS"
	DefaultImpersonationCookie = "impersonate_dealer"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
