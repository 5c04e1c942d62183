package config

// EnvPrefix is handed to envconfig; every field carries its full variable name.
const EnvPrefix = "AGROMART"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv       = "AGROMART_APP_ENV"
	EnvPort         = "AGROMART_APP_PORT"
	EnvDBDSN        = "AGROMART_DB_DSN"
	EnvDBHost       = "AGROMART_DB_HOST"
	EnvDBUser       = "AGROMART_DB_USER"
	EnvDBName       = "AGROMART_DB_NAME"
	EnvRedisURL     = "AGROMART_REDIS_URL"
	EnvJWTSecret    = "AGROMART_JWT_SECRET"
	EnvJWTIssuer    = "AGROMART_JWT_ISSUER"
	EnvJWTExpMins   = "AGROMART_JWT_EXPIRATION_MINUTES"
	EnvLowStock     = "AGROMART_LOW_STOCK_THRESHOLD"
	EnvCORSOrigins  = "AGROMART_CORS_ORIGINS"
	EnvCronInterval = "AGROMART_CRON_INTERVAL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
