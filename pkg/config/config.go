package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	Store         StoreConfig
	DB            DBConfig
	Mongo         MongoConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Cookie        CookieConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	GCP           GCPConfig
	GCS           GCSConfig
	Media         MediaConfig
	Pricing       PricingConfig
	Catalog       CatalogConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Store.validate(); err != nil {
		return nil, err
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if cfg.Store.UsesMongo() && cfg.Mongo.URI == "" {
		return nil, fmt.Errorf("%s is required when %s=%s", EnvMongoURI, EnvOrderStore, OrderStoreMongo)
	}
	if err := cfg.Pricing.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string   `envconfig:"EZOO_APP_ENV" required:"true"`
	Port         string   `envconfig:"EZOO_APP_PORT" default:"8080"`
	LogLevel     string   `envconfig:"EZOO_LOG_LEVEL" default:"info"`
	LogWarnStack bool     `envconfig:"EZOO_LOG_WARN_STACK" default:"false"`
	LogFormat    string   `envconfig:"EZOO_LOG_FORMAT" default:"json"`
	CORSOrigins  []string `envconfig:"EZOO_CORS_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

// ConsoleLogs reports whether logs should be written for humans instead of as JSON.
func (a AppConfig) ConsoleLogs() bool {
	return strings.EqualFold(a.LogFormat, "console")
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

const (
	OrderStoreSQL   = "sql"
	OrderStoreMongo = "mongo"
)

// StoreConfig selects where order documents live. Users, sessions and the
// catalog always live in the relational database.
type StoreConfig struct {
	Orders string `envconfig:"EZOO_ORDER_STORE" default:"sql"`
}

func (s StoreConfig) UsesMongo() bool {
	return strings.EqualFold(s.Orders, OrderStoreMongo)
}

func (s StoreConfig) validate() error {
	switch strings.ToLower(s.Orders) {
	case OrderStoreSQL, OrderStoreMongo:
		return nil
	}
	return fmt.Errorf("%s must be %q or %q, got %q", EnvOrderStore, OrderStoreSQL, OrderStoreMongo, s.Orders)
}

type DBConfig struct {
	DSN    string `envconfig:"EZOO_DB_DSN"`
	Driver string `envconfig:"EZOO_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"EZOO_DB_HOST"`
	LegacyPort     int    `envconfig:"EZOO_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"EZOO_DB_USER"`
	LegacyPassword string `envconfig:"EZOO_DB_PASSWORD"`
	LegacyName     string `envconfig:"EZOO_DB_NAME"`
	LegacySSLMode  string `envconfig:"EZOO_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"EZOO_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"EZOO_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"EZOO_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"EZOO_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	SlowQueryThreshold time.Duration `envconfig:"EZOO_DB_SLOW_QUERY_THRESHOLD" default:"500ms"`
}

// IsSQLite reports whether the relational store runs on sqlite (local dev only).
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(db.Driver, "sqlite")
}

type MongoConfig struct {
	URI            string        `envconfig:"EZOO_MONGO_URI"`
	Database       string        `envconfig:"EZOO_MONGO_DATABASE" default:"ezoo"`
	OrdersColl     string        `envconfig:"EZOO_MONGO_ORDERS_COLLECTION" default:"orders"`
	ConnectTimeout time.Duration `envconfig:"EZOO_MONGO_CONNECT_TIMEOUT" default:"10s"`
}

type RedisConfig struct {
	URL          string        `envconfig:"EZOO_REDIS_URL" required:"true"`
	Address      string        `envconfig:"EZOO_REDIS_ADDR"`
	Password     string        `envconfig:"EZOO_REDIS_PASSWORD"`
	DB           int           `envconfig:"EZOO_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"EZOO_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"EZOO_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"EZOO_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"EZOO_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"EZOO_REDIS_WRITE_TIMEOUT" default:"5s"`
	KeyPrefix    string        `envconfig:"EZOO_REDIS_KEY_PREFIX" default:"ezoo"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"EZOO_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"EZOO_JWT_ISSUER" default:"ezoo"`
	ExpirationMinutes      int    `envconfig:"EZOO_JWT_EXPIRATION_MINUTES" default:"10080"`
	RefreshTokenTTLMinutes int    `envconfig:"EZOO_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// AccessTokenTTL returns the access token lifetime.
func (j JWTConfig) AccessTokenTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

// CookieConfig controls the http-only session cookie set at login and signup.
type CookieConfig struct {
	Name   string        `envconfig:"EZOO_COOKIE_NAME" default:"token"`
	MaxAge time.Duration `envconfig:"EZOO_COOKIE_MAX_AGE" default:"168h"`
	Secure bool          `envconfig:"EZOO_COOKIE_SECURE" default:"true"`
	Domain string        `envconfig:"EZOO_COOKIE_DOMAIN"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"EZOO_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"EZOO_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"EZOO_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"EZOO_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"EZOO_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow      time.Duration `envconfig:"EZOO_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit  int           `envconfig:"EZOO_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit     int           `envconfig:"EZOO_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	SignupWindow     time.Duration `envconfig:"EZOO_AUTH_RATE_LIMIT_SIGNUP_WINDOW" default:"5m"`
	SignupEmailLimit int           `envconfig:"EZOO_AUTH_RATE_LIMIT_SIGNUP_EMAIL_LIMIT" default:"3"`
	SignupIPLimit    int           `envconfig:"EZOO_AUTH_RATE_LIMIT_SIGNUP_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"EZOO_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"EZOO_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"EZOO_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"EZOO_GOOGLE_APPLICATION_CREDENTIALS"`
}

type GCSConfig struct {
	BucketName    string `envconfig:"EZOO_GCS_BUCKET_NAME" required:"true"`
	PublicBaseURL string `envconfig:"EZOO_GCS_PUBLIC_BASE_URL" default:"https://storage.googleapis.com"`
	Endpoint      string `envconfig:"EZOO_GCS_ENDPOINT" default:"https://storage.googleapis.com"`
}

// MediaConfig bounds customer and admin image uploads.
type MediaConfig struct {
	MaxUploadMB   int    `envconfig:"EZOO_MAX_UPLOAD_MB" default:"5"`
	OrderFolder   string `envconfig:"EZOO_MEDIA_ORDER_FOLDER" default:"tshirt-logos"`
	AdminFolder   string `envconfig:"EZOO_MEDIA_ADMIN_FOLDER" default:"admin-logos"`
	ProductFolder string `envconfig:"EZOO_MEDIA_PRODUCT_FOLDER" default:"products"`
}

// MaxUploadBytes converts the configured megabyte cap into bytes.
func (m MediaConfig) MaxUploadBytes() int64 {
	if m.MaxUploadMB <= 0 {
		return 0
	}
	return int64(m.MaxUploadMB) << 20
}

type PricingConfig struct {
	BaseShipping     int64 `envconfig:"EZOO_PRICING_BASE_SHIPPING" default:"20"`
	FreeShippingQty  int   `envconfig:"EZOO_PRICING_FREE_SHIPPING_QTY" default:"4"`
	CustomShirtPrice int64 `envconfig:"EZOO_PRICING_CUSTOM_SHIRT_PRICE" default:"200"`
	CustomLogoPrice  int64 `envconfig:"EZOO_PRICING_CUSTOM_LOGO_PRICE" default:"250"`
}

func (p PricingConfig) validate() error {
	if p.BaseShipping < 0 {
		return fmt.Errorf("%s must not be negative", EnvPricingBaseShipping)
	}
	if p.FreeShippingQty <= 0 {
		return fmt.Errorf("free shipping quantity must be positive")
	}
	if p.CustomShirtPrice <= 0 || p.CustomLogoPrice < p.CustomShirtPrice {
		return fmt.Errorf("custom shirt prices must be positive and the logo price must not undercut the base price")
	}
	return nil
}

// CatalogConfig tunes the attribute catalog cache.
type CatalogConfig struct {
	CacheTTL time.Duration `envconfig:"EZOO_CATALOG_CACHE_TTL" default:"10m"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		db.DSN = "file:ezoo.db?cache=shared"
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
