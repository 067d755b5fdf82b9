package config

const (
	EnvPrefix = "TATAME"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv      = "TATAME_APP_ENV"
	EnvPort        = "TATAME_APP_PORT"
	EnvLogLevel    = "TATAME_LOG_LEVEL"
	EnvAppTimezone = "TATAME_APP_TIMEZONE"

	EnvDBDSN  = "TATAME_DB_DSN"
	EnvDBHost = "TATAME_DB_HOST"
	EnvDBUser = "TATAME_DB_USER"
	EnvDBName = "TATAME_DB_NAME"

	EnvRedisURL  = "TATAME_REDIS_URL"
	EnvRedisAddr = "TATAME_REDIS_ADDR"

	EnvIdentityJWTPublicKey = "TATAME_IDENTITY_JWT_PUBLIC_KEY"
	EnvIdentityIssuer       = "TATAME_IDENTITY_ISSUER"

	EnvGCSBucket       = "TATAME_GCS_BUCKET_NAME"
	EnvGCSUploadExpiry = "TATAME_GCS_UPLOAD_URL_EXPIRY"

	EnvCORSOrigins = "TATAME_CORS_ORIGINS"
	EnvSentryDSN   = "TATAME_SENTRY_DSN"
	EnvCronSpec    = "TATAME_CRON_SCHEDULE"
	EnvStripeEnv   = "TATAME_STRIPE_ENV"
)
