package config

// EnvPrefix is empty because every field names its full variable.
const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"
)

const (
	EnvAppEnv   = "HBNB_APP_ENV"
	EnvPort     = "HBNB_APP_PORT"
	EnvLogLevel = "HBNB_LOG_LEVEL"

	EnvDBDSN    = "HBNB_DB_DSN"
	EnvDBDriver = "HBNB_DB_DRIVER"
	EnvDBHost   = "HBNB_DB_HOST"
	EnvDBUser   = "HBNB_DB_USER"
	EnvDBName   = "HBNB_DB_NAME"

	EnvRedisURL = "HBNB_REDIS_URL"

	EnvJWTSecret              = "HBNB_JWT_SECRET"
	EnvJWTIssuer              = "HBNB_JWT_ISSUER"
	EnvJWTExpMins             = "HBNB_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "HBNB_REFRESH_TOKEN_TTL_MINUTES"

	EnvAutoMigrate = "HBNB_AUTO_MIGRATE"

	EnvAdminEmail    = "HBNB_ADMIN_EMAIL"
	EnvAdminPassword = "HBNB_ADMIN_PASSWORD"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
