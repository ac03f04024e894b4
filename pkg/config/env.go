package config

// EnvPrefix is empty because every field tag carries its full variable name.
const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	BackendMemory = "memory"
	BackendRedis  = "redis"
)

const (
	EnvAppEnv             = "STOREFRONT_APP_ENV"
	EnvPort               = "STOREFRONT_APP_PORT"
	EnvDBDSN              = "STOREFRONT_DB_DSN"
	EnvDBHost             = "STOREFRONT_DB_HOST"
	EnvDBUser             = "STOREFRONT_DB_USER"
	EnvDBName             = "STOREFRONT_DB_NAME"
	EnvRedisURL           = "STOREFRONT_REDIS_URL"
	EnvJWTSecret          = "STOREFRONT_JWT_SECRET"
	EnvJWTIssuer          = "STOREFRONT_JWT_ISSUER"
	EnvLocalStoreBackend  = "STOREFRONT_LOCAL_STORE_BACKEND"
	EnvNotifyBackend      = "STOREFRONT_NOTIFY_BACKEND"
	EnvShippingFee        = "STOREFRONT_SHIPPING_FEE"
	EnvFreeShippingAmount = "STOREFRONT_FREE_SHIPPING_THRESHOLD"
	EnvUseSQLite          = "STOREFRONT_USE_SQLITE"
)

var dbPartEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
