package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "ginzapet"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

// Known local-state backends.
const (
	StateBackendFile     = "file"
	StateBackendRedis    = "redis"
	StateBackendDatabase = "database"
)

type Config struct {
	App     AppConfig
	Catalog CatalogConfig
	State   StateConfig
	DB      DBConfig
	Redis   RedisConfig
	Stub    StubConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.State.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"GINZAPET_APP_ENV" default:"dev"`
	LogLevel     string `envconfig:"GINZAPET_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"GINZAPET_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// CatalogConfig points the client at the remote catalog API.
type CatalogConfig struct {
	BaseURL             string        `envconfig:"GINZAPET_CATALOG_BASE_URL" default:"http://localhost:8080"`
	StorageURL          string        `envconfig:"GINZAPET_CATALOG_STORAGE_URL"`
	Timeout             time.Duration `envconfig:"GINZAPET_CATALOG_TIMEOUT" default:"15s"`
	MaxParallelResolves int           `envconfig:"GINZAPET_CATALOG_MAX_PARALLEL_RESOLVES" default:"4"`
}

// StateConfig selects where the shopper's cart and order draft live.
type StateConfig struct {
	Backend string `envconfig:"GINZAPET_STATE_BACKEND" default:"file"`
	Dir     string `envconfig:"GINZAPET_STATE_DIR" default:".ginzapet"`
}

func (s *StateConfig) validate() error {
	switch s.Backend {
	case StateBackendFile, StateBackendRedis, StateBackendDatabase:
		return nil
	default:
		return fmt.Errorf("unknown state backend %q", s.Backend)
	}
}

type DBConfig struct {
	DSN    string `envconfig:"GINZAPET_DB_DSN"`
	Driver string `envconfig:"GINZAPET_DB_DRIVER" default:"sqlite"`

	MaxOpenConns    int           `envconfig:"GINZAPET_DB_MAX_OPEN_CONNS" default:"5"`
	MaxIdleConns    int           `envconfig:"GINZAPET_DB_MAX_IDLE_CONNS" default:"2"`
	ConnMaxLifetime time.Duration `envconfig:"GINZAPET_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"GINZAPET_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	AutoMigrate bool `envconfig:"GINZAPET_DB_AUTO_MIGRATE" default:"true"`
}

type RedisConfig struct {
	URL          string        `envconfig:"GINZAPET_REDIS_URL"`
	Address      string        `envconfig:"GINZAPET_REDIS_ADDR"`
	Password     string        `envconfig:"GINZAPET_REDIS_PASSWORD"`
	DB           int           `envconfig:"GINZAPET_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"GINZAPET_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"GINZAPET_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"GINZAPET_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"GINZAPET_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"GINZAPET_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// StubConfig configures the local catalog stub server.
type StubConfig struct {
	Port string `envconfig:"GINZAPET_STUB_PORT" default:"8080"`
}
