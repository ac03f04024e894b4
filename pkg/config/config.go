package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	LocalStore   LocalStoreConfig
	Remote       RemoteConfig
	Shipping     ShippingConfig
	Notify       NotifyConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(cfg.FeatureFlags.UseSQLite); err != nil {
		return nil, err
	}
	if err := cfg.LocalStore.validate(); err != nil {
		return nil, err
	}
	if err := cfg.Notify.validate(); err != nil {
		return nil, err
	}
	if cfg.Shipping.Fee < 0 || cfg.Shipping.FreeShippingThreshold < 0 {
		return nil, fmt.Errorf("shipping fee and threshold must be non-negative")
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"STOREFRONT_APP_ENV" required:"true"`
	Port         string `envconfig:"STOREFRONT_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"STOREFRONT_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"STOREFRONT_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"STOREFRONT_LOG_WARN_STACK" default:"false"`

	CORSOrigins []string `envconfig:"STOREFRONT_CORS_ORIGINS" default:"http://localhost:3000"`

	GuestRateWindow       time.Duration `envconfig:"STOREFRONT_GUEST_RATE_WINDOW" default:"1m"`
	GuestRateLimitIP      int           `envconfig:"STOREFRONT_GUEST_RATE_LIMIT_IP" default:"120"`
	GuestRateLimitSession int           `envconfig:"STOREFRONT_GUEST_RATE_LIMIT_SESSION" default:"60"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"STOREFRONT_DB_DSN"`
	Driver string `envconfig:"STOREFRONT_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"STOREFRONT_DB_HOST"`
	Port     int    `envconfig:"STOREFRONT_DB_PORT" default:"5432"`
	User     string `envconfig:"STOREFRONT_DB_USER"`
	Password string `envconfig:"STOREFRONT_DB_PASSWORD"`
	Name     string `envconfig:"STOREFRONT_DB_NAME"`
	SSLMode  string `envconfig:"STOREFRONT_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"STOREFRONT_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"STOREFRONT_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"STOREFRONT_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"STOREFRONT_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"STOREFRONT_REDIS_URL"`
	Address      string        `envconfig:"STOREFRONT_REDIS_ADDR"`
	Password     string        `envconfig:"STOREFRONT_REDIS_PASSWORD"`
	DB           int           `envconfig:"STOREFRONT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"STOREFRONT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"STOREFRONT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"STOREFRONT_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether any redis endpoint is configured.
func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Address != ""
}

type JWTConfig struct {
	Secret            string `envconfig:"STOREFRONT_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"STOREFRONT_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"STOREFRONT_JWT_EXPIRATION_MINUTES" default:"60"`
}

// LocalStoreConfig controls where anonymous (pre-login) snapshots live.
type LocalStoreConfig struct {
	Backend   string        `envconfig:"STOREFRONT_LOCAL_STORE_BACKEND" default:"memory"`
	Namespace string        `envconfig:"STOREFRONT_LOCAL_STORE_NAMESPACE" default:"guest"`
	GuestTTL  time.Duration `envconfig:"STOREFRONT_LOCAL_STORE_GUEST_TTL" default:"720h"`
}

func (l LocalStoreConfig) validate() error {
	switch strings.ToLower(l.Backend) {
	case BackendMemory, BackendRedis:
		return nil
	}
	return fmt.Errorf("unsupported local store backend %q", l.Backend)
}

// RemoteConfig points the HTTP remote store client at an authoritative server.
type RemoteConfig struct {
	BaseURL string        `envconfig:"STOREFRONT_REMOTE_BASE_URL" default:"http://localhost:8080"`
	Timeout time.Duration `envconfig:"STOREFRONT_REMOTE_TIMEOUT" default:"10s"`
}

// ShippingConfig holds the flat-rate shipping rule served to checkout.
type ShippingConfig struct {
	Fee                   int64 `envconfig:"STOREFRONT_SHIPPING_FEE" default:"30000"`
	FreeShippingThreshold int64 `envconfig:"STOREFRONT_FREE_SHIPPING_THRESHOLD" default:"500000"`
}

type NotifyConfig struct {
	Backend       string `envconfig:"STOREFRONT_NOTIFY_BACKEND" default:"memory"`
	ChannelPrefix string `envconfig:"STOREFRONT_NOTIFY_CHANNEL_PREFIX" default:"sf:signal"`
}

func (n NotifyConfig) validate() error {
	switch strings.ToLower(n.Backend) {
	case BackendMemory, BackendRedis:
		return nil
	}
	return fmt.Errorf("unsupported notify backend %q", n.Backend)
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"STOREFRONT_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"STOREFRONT_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN(useSQLite bool) error {
	if useSQLite {
		db.Driver = "sqlite"
	}
	if db.DSN != "" {
		return nil
	}
	if useSQLite {
		db.DSN = "file:storefront?mode=memory&cache=shared"
		return nil
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range dbPartEnvVars {
		if values[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
