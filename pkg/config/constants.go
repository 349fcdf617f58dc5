package config

// EnvPrefix namespaces every LineScout environment variable.
const EnvPrefix = "LINESCOUT"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

const (
	EnvAppEnv     = "LINESCOUT_APP_ENV"
	EnvPort       = "LINESCOUT_APP_PORT"
	EnvDBDSN      = "LINESCOUT_DB_DSN"
	EnvDBHost     = "LINESCOUT_DB_HOST"
	EnvDBUser     = "LINESCOUT_DB_USER"
	EnvDBName     = "LINESCOUT_DB_NAME"
	EnvRedisURL   = "LINESCOUT_REDIS_URL"
	EnvJWTSecret  = "LINESCOUT_JWT_SECRET"
	EnvJWTIssuer  = "LINESCOUT_JWT_ISSUER"
	EnvJWTExpMins = "LINESCOUT_JWT_EXPIRATION_MINUTES"

	EnvGCPProjectID = "LINESCOUT_GCP_PROJECT_ID"

	EnvPaystackSecretKey = "LINESCOUT_PAYSTACK_SECRET_KEY"

	EnvSMTPHost = "LINESCOUT_SMTP_HOST"
	EnvSMTPFrom = "LINESCOUT_SMTP_FROM"

	EnvAdminEmail = "LINESCOUT_ADMIN_EMAIL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
