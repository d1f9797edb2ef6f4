package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendMemory   = "memory"
)

type Config struct {
	App      AppConfig
	Server   ServerConfig
	Storage  StorageConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Lock     LockConfig
	Events   EventsConfig
}

type AppConfig struct {
	Name        string
	Environment string
	LogLevel    string
}

type ServerConfig struct {
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// StorageConfig picks the repository backend: postgres or memory.
type StorageConfig struct {
	Backend string
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnectRetries  int
	Migrate         bool
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Enabled        bool
	Host           string
	Port           int
	Password       string
	DB             int
	PoolSize       int
	ConnectRetries int
}

func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// LockConfig tunes the seat locks. WaitTimeout bounds how long a request
// blocks per seat; Lease bounds how long a crashed holder can keep a seat.
type LockConfig struct {
	Backend       string
	WaitTimeout   time.Duration
	Lease         time.Duration
	RetryInterval time.Duration
}

type EventsConfig struct {
	Enabled     bool
	TopicPrefix string
}

// Load reads an optional .env file in the working directory, then lets
// environment variables override it.
func Load() (*Config, error) {
	return load(".env", false)
}

// LoadFile is Load with an explicit file that must exist.
func LoadFile(path string) (*Config, error) {
	return load(path, true)
}

func load(path string, required bool) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")

	if err := v.ReadInConfig(); err != nil && required {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setDefaults(v)

	cfg := bind(v)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_NAME", "showtime-booking")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")

	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("SERVER_READ_TIMEOUT", "5s")
	v.SetDefault("SERVER_WRITE_TIMEOUT", "10s")
	v.SetDefault("SERVER_IDLE_TIMEOUT", "120s")
	v.SetDefault("SERVER_SHUTDOWN_TIMEOUT", "10s")

	v.SetDefault("STORAGE_BACKEND", BackendPostgres)

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "")
	v.SetDefault("DB_NAME", "showtime_booking")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 25)
	v.SetDefault("DB_MAX_IDLE_CONNS", 25)
	v.SetDefault("DB_CONN_MAX_LIFETIME", "5m")
	v.SetDefault("DB_CONNECT_RETRIES", 10)
	v.SetDefault("DB_MIGRATE", true)

	v.SetDefault("REDIS_ENABLED", true)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_POOL_SIZE", 50)
	v.SetDefault("REDIS_CONNECT_RETRIES", 10)

	v.SetDefault("LOCK_BACKEND", BackendRedis)
	v.SetDefault("LOCK_WAIT_TIMEOUT", "5s")
	v.SetDefault("LOCK_LEASE", "30s")
	v.SetDefault("LOCK_RETRY_INTERVAL", "50ms")

	v.SetDefault("EVENTS_ENABLED", true)
	v.SetDefault("EVENTS_TOPIC_PREFIX", "showtime")
}

func bind(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.App.Name = v.GetString("APP_NAME")
	cfg.App.Environment = v.GetString("APP_ENV")
	cfg.App.LogLevel = v.GetString("LOG_LEVEL")

	cfg.Server.Port = v.GetInt("SERVER_PORT")
	cfg.Server.ReadTimeout = v.GetDuration("SERVER_READ_TIMEOUT")
	cfg.Server.WriteTimeout = v.GetDuration("SERVER_WRITE_TIMEOUT")
	cfg.Server.IdleTimeout = v.GetDuration("SERVER_IDLE_TIMEOUT")
	cfg.Server.ShutdownTimeout = v.GetDuration("SERVER_SHUTDOWN_TIMEOUT")

	cfg.Storage.Backend = strings.ToLower(v.GetString("STORAGE_BACKEND"))

	cfg.Database.Host = v.GetString("DB_HOST")
	cfg.Database.Port = v.GetInt("DB_PORT")
	cfg.Database.User = v.GetString("DB_USER")
	cfg.Database.Password = v.GetString("DB_PASSWORD")
	cfg.Database.Name = v.GetString("DB_NAME")
	cfg.Database.SSLMode = v.GetString("DB_SSLMODE")
	cfg.Database.MaxOpenConns = v.GetInt("DB_MAX_OPEN_CONNS")
	cfg.Database.MaxIdleConns = v.GetInt("DB_MAX_IDLE_CONNS")
	cfg.Database.ConnMaxLifetime = v.GetDuration("DB_CONN_MAX_LIFETIME")
	cfg.Database.ConnectRetries = v.GetInt("DB_CONNECT_RETRIES")
	cfg.Database.Migrate = v.GetBool("DB_MIGRATE")

	cfg.Redis.Enabled = v.GetBool("REDIS_ENABLED")
	cfg.Redis.Host = v.GetString("REDIS_HOST")
	cfg.Redis.Port = v.GetInt("REDIS_PORT")
	cfg.Redis.Password = v.GetString("REDIS_PASSWORD")
	cfg.Redis.DB = v.GetInt("REDIS_DB")
	cfg.Redis.PoolSize = v.GetInt("REDIS_POOL_SIZE")
	cfg.Redis.ConnectRetries = v.GetInt("REDIS_CONNECT_RETRIES")

	cfg.Lock.Backend = strings.ToLower(v.GetString("LOCK_BACKEND"))
	cfg.Lock.WaitTimeout = v.GetDuration("LOCK_WAIT_TIMEOUT")
	cfg.Lock.Lease = v.GetDuration("LOCK_LEASE")
	cfg.Lock.RetryInterval = v.GetDuration("LOCK_RETRY_INTERVAL")

	cfg.Events.Enabled = v.GetBool("EVENTS_ENABLED")
	cfg.Events.TopicPrefix = v.GetString("EVENTS_TOPIC_PREFIX")

	return cfg
}

func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", c.Server.Port))
	}

	switch c.Storage.Backend {
	case BackendPostgres:
		if c.Database.Host == "" || c.Database.Name == "" {
			errs = append(errs, errors.New("DB_HOST and DB_NAME are required for the postgres backend"))
		}
	case BackendMemory:
	default:
		errs = append(errs, fmt.Errorf("STORAGE_BACKEND must be %q or %q, got %q", BackendPostgres, BackendMemory, c.Storage.Backend))
	}

	switch c.Lock.Backend {
	case BackendRedis:
		if !c.Redis.Enabled {
			errs = append(errs, errors.New("LOCK_BACKEND=redis requires REDIS_ENABLED=true"))
		}
	case BackendMemory:
	default:
		errs = append(errs, fmt.Errorf("LOCK_BACKEND must be %q or %q, got %q", BackendRedis, BackendMemory, c.Lock.Backend))
	}

	if c.Lock.WaitTimeout < 0 {
		errs = append(errs, errors.New("LOCK_WAIT_TIMEOUT must not be negative"))
	}
	if c.Lock.Lease <= 0 {
		errs = append(errs, errors.New("LOCK_LEASE must be positive"))
	}
	if c.Lock.Lease < c.Lock.WaitTimeout {
		errs = append(errs, fmt.Errorf("LOCK_LEASE (%s) must not be shorter than LOCK_WAIT_TIMEOUT (%s)", c.Lock.Lease, c.Lock.WaitTimeout))
	}
	if c.Lock.RetryInterval <= 0 {
		errs = append(errs, errors.New("LOCK_RETRY_INTERVAL must be positive"))
	}

	return errors.Join(errs...)
}
