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
	FeatureFlags FeatureFlagsConfig
	Metrics      MetricsConfig
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
	Env          string `envconfig:"CENTAVO_APP_ENV" required:"true"`
	Port         string `envconfig:"CENTAVO_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"CENTAVO_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"CENTAVO_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"CENTAVO_DB_DSN"`
	Driver string `envconfig:"CENTAVO_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"CENTAVO_DB_HOST"`
	LegacyPort     int    `envconfig:"CENTAVO_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"CENTAVO_DB_USER"`
	LegacyPassword string `envconfig:"CENTAVO_DB_PASSWORD"`
	LegacyName     string `envconfig:"CENTAVO_DB_NAME"`
	LegacySSLMode  string `envconfig:"CENTAVO_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"CENTAVO_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CENTAVO_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CENTAVO_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CENTAVO_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	// LockTimeout bounds how long a production run may wait on another run's
	// row locks before the operation fails with a retryable error.
	LockTimeout time.Duration `envconfig:"CENTAVO_DB_LOCK_TIMEOUT" default:"10s"`
}

type RedisConfig struct {
	URL          string        `envconfig:"CENTAVO_REDIS_URL"`
	Address      string        `envconfig:"CENTAVO_REDIS_ADDR"`
	Password     string        `envconfig:"CENTAVO_REDIS_PASSWORD"`
	DB           int           `envconfig:"CENTAVO_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CENTAVO_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CENTAVO_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CENTAVO_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CENTAVO_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CENTAVO_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"CENTAVO_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"CENTAVO_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"CENTAVO_JWT_EXPIRATION_MINUTES" default:"60"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"CENTAVO_AUTO_MIGRATE" default:"false"`
}

type MetricsConfig struct {
	Enabled bool `envconfig:"CENTAVO_METRICS_ENABLED" default:"true"`
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
