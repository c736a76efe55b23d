package config

// EnvPrefix is the envconfig namespace for every setting.
const EnvPrefix = "EZOO"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv   = "EZOO_APP_ENV"
	EnvPort     = "EZOO_APP_PORT"
	EnvLogLevel = "EZOO_LOG_LEVEL"

	EnvOrderStore = "EZOO_ORDER_STORE"

	EnvDBDriver = "EZOO_DB_DRIVER"
	EnvDBDSN    = "EZOO_DB_DSN"
	EnvDBHost   = "EZOO_DB_HOST"
	EnvDBUser   = "EZOO_DB_USER"
	EnvDBName   = "EZOO_DB_NAME"

	EnvMongoURI      = "EZOO_MONGO_URI"
	EnvMongoDatabase = "EZOO_MONGO_DATABASE"

	EnvRedisURL = "EZOO_REDIS_URL"

	EnvJWTSecret              = "EZOO_JWT_SECRET"
	EnvJWTIssuer              = "EZOO_JWT_ISSUER"
	EnvJWTExpMins             = "EZOO_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "EZOO_REFRESH_TOKEN_TTL_MINUTES"

	EnvGCPProjectID = "EZOO_GCP_PROJECT_ID"
	EnvGCSBucket    = "EZOO_GCS_BUCKET_NAME"

	EnvPricingBaseShipping = "EZOO_PRICING_BASE_SHIPPING"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
