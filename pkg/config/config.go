package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "LOKAL"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "LOKAL_DB_DSN"
	EnvDBHost = "LOKAL_DB_HOST"
	EnvDBUser = "LOKAL_DB_USER"
	EnvDBName = "LOKAL_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	FeatureFlags FeatureFlagsConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Snapshot     SnapshotConfig
	Ingest       IngestConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"LOKAL_APP_ENV" required:"true"`
	Port         string `envconfig:"LOKAL_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"LOKAL_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"LOKAL_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"LOKAL_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"LOKAL_DB_DSN"`
	Driver string `envconfig:"LOKAL_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"LOKAL_DB_HOST"`
	LegacyPort     int    `envconfig:"LOKAL_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"LOKAL_DB_USER"`
	LegacyPassword string `envconfig:"LOKAL_DB_PASSWORD"`
	LegacyName     string `envconfig:"LOKAL_DB_NAME"`
	LegacySSLMode  string `envconfig:"LOKAL_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"LOKAL_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"LOKAL_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"LOKAL_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"LOKAL_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"LOKAL_REDIS_URL" required:"true"`
	Address      string        `envconfig:"LOKAL_REDIS_ADDR"`
	Password     string        `envconfig:"LOKAL_REDIS_PASSWORD"`
	DB           int           `envconfig:"LOKAL_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"LOKAL_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"LOKAL_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"LOKAL_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"LOKAL_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"LOKAL_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"LOKAL_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"LOKAL_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"LOKAL_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"LOKAL_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"LOKAL_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	SalesTopic        string `envconfig:"LOKAL_PUBSUB_SALES_TOPIC" required:"true"`
	SalesSubscription string `envconfig:"LOKAL_PUBSUB_SALES_SUBSCRIPTION" required:"true"`
}

// SnapshotConfig tunes the analytics snapshot surface.
type SnapshotConfig struct {
	CacheTTL        time.Duration `envconfig:"LOKAL_SNAPSHOT_CACHE_TTL" default:"5m"`
	DefaultCurrency string        `envconfig:"LOKAL_SNAPSHOT_DEFAULT_CURRENCY" default:"GBP"`
}

// IngestConfig tunes the sale-record ingest worker.
type IngestConfig struct {
	BatchSize      int           `envconfig:"LOKAL_INGEST_BATCH_SIZE" default:"20"`
	MaxAttempts    int           `envconfig:"LOKAL_INGEST_MAX_ATTEMPTS" default:"3"`
	InitialBackoff time.Duration `envconfig:"LOKAL_INGEST_INITIAL_BACKOFF" default:"250ms"`
	MaximumBackoff time.Duration `envconfig:"LOKAL_INGEST_MAXIMUM_BACKOFF" default:"2s"`
	IdempotencyTTL time.Duration `envconfig:"LOKAL_INGEST_IDEMPOTENCY_TTL" default:"720h"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
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
