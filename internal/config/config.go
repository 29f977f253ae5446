// Package config loads settings from configs/config.yml, an optional
// per-environment overlay, .env and the process environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// ErrMissingSecret is fatal at startup: tokens cannot be signed without it.
var ErrMissingSecret = errors.New("auth.secret is not set (SECRET_KEY)")

type Config struct {
	Env     string
	Port    string
	Log     LogConfig
	Auth    AuthConfig
	Store   StoreConfig
	Cache   CacheConfig
	HTTP    HTTPConfig
	Startup StartupConfig
}

type LogConfig struct {
	Level  string
	Format string
}

type AuthConfig struct {
	Secret   string
	TokenTTL time.Duration
	Hasher   string
}

type StoreConfig struct {
	Driver    string
	SQLite    SQLiteConfig
	Postgres  PostgresConfig
	Firestore FirestoreConfig
}

type SQLiteConfig struct {
	Path string
}

type PostgresConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type FirestoreConfig struct {
	ProjectID       string
	CredentialsFile string
	Collection      string
}

type CacheConfig struct {
	Driver string
	TTL    time.Duration
	Redis  RedisConfig
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type HTTPConfig struct {
	AllowedOrigins  []string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type StartupConfig struct {
	ConnectRetries uint64
	ConnectBackoff time.Duration
}

// Store and cache drivers.
const (
	DriverSQLite    = "sqlite"
	DriverPostgres  = "postgres"
	DriverFirestore = "firestore"
	DriverRedis     = "redis"
	DriverMemory    = "memory"
)

// Flag names bound into viper.
const (
	FlagConfigDir = "config-dir"
	FlagEnv       = "env"
	FlagPort      = "port"
)

// envAliases are environment variables kept for compatibility with older deployments.
var envAliases = map[string]string{
	"auth.secret": "SECRET_KEY",
	"env":         "API_ENV",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "dev")
	v.SetDefault("port", "8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("auth.token_ttl", "20m")
	v.SetDefault("auth.hasher", "bcrypt")
	v.SetDefault("store.driver", DriverSQLite)
	v.SetDefault("store.sqlite.path", "app.db")
	v.SetDefault("store.postgres.max_open_conns", 10)
	v.SetDefault("store.postgres.max_idle_conns", 5)
	v.SetDefault("store.postgres.conn_max_lifetime", "30m")
	v.SetDefault("store.firestore.collection", "users")
	v.SetDefault("cache.driver", DriverRedis)
	v.SetDefault("cache.ttl", "300s")
	v.SetDefault("cache.redis.addr", "localhost:6379")
	v.SetDefault("cache.redis.db", 0)
	v.SetDefault("http.cors.allowed_origins", []string{"*"})
	v.SetDefault("http.read_timeout", "10s")
	v.SetDefault("http.write_timeout", "10s")
	v.SetDefault("http.shutdown_timeout", "10s")
	v.SetDefault("startup.connect_retries", 5)
	v.SetDefault("startup.connect_backoff", "200ms")
}

// Load reads configuration. flags may be nil; when set, --config-dir, --env
// and --port override file and environment values.
func Load(flags *pflag.FlagSet) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range envAliases {
		if err := v.BindEnv(key, strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", env, err)
		}
	}

	dir := "configs"
	if flags != nil {
		if err := bindFlags(v, flags); err != nil {
			return nil, err
		}
		if f := flags.Lookup(FlagConfigDir); f != nil && f.Value.String() != "" {
			dir = f.Value.String()
		}
	}

	v.SetConfigType("yml")
	v.SetConfigFile(filepath.Join(dir, "config.yml"))
	if err := v.ReadInConfig(); err != nil && !isNotFound(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}

	env := v.GetString("env")
	v.SetConfigFile(filepath.Join(dir, "config."+env+".yml"))
	if err := v.MergeInConfig(); err != nil && !isNotFound(err) {
		return nil, fmt.Errorf("read %s overlay: %w", env, err)
	}

	cfg := fromViper(v)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for _, name := range []string{FlagEnv, FlagPort} {
		f := flags.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(name, f); err != nil {
			return fmt.Errorf("bind flag --%s: %w", name, err)
		}
	}
	return nil
}

// isNotFound reports a missing config file. SetConfigFile yields an fs error
// rather than viper.ConfigFileNotFoundError, so both are checked.
func isNotFound(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) {
		return true
	}
	return errors.Is(err, fs.ErrNotExist)
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		Env:  v.GetString("env"),
		Port: v.GetString("port"),
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
		Auth: AuthConfig{
			Secret:   v.GetString("auth.secret"),
			TokenTTL: v.GetDuration("auth.token_ttl"),
			Hasher:   v.GetString("auth.hasher"),
		},
		Store: StoreConfig{
			Driver: strings.ToLower(v.GetString("store.driver")),
			SQLite: SQLiteConfig{Path: v.GetString("store.sqlite.path")},
			Postgres: PostgresConfig{
				DSN:             v.GetString("store.postgres.dsn"),
				MaxOpenConns:    v.GetInt("store.postgres.max_open_conns"),
				MaxIdleConns:    v.GetInt("store.postgres.max_idle_conns"),
				ConnMaxLifetime: v.GetDuration("store.postgres.conn_max_lifetime"),
			},
			Firestore: FirestoreConfig{
				ProjectID:       v.GetString("store.firestore.project_id"),
				CredentialsFile: v.GetString("store.firestore.credentials_file"),
				Collection:      v.GetString("store.firestore.collection"),
			},
		},
		Cache: CacheConfig{
			Driver: strings.ToLower(v.GetString("cache.driver")),
			TTL:    v.GetDuration("cache.ttl"),
			Redis: RedisConfig{
				Addr:     v.GetString("cache.redis.addr"),
				Password: v.GetString("cache.redis.password"),
				DB:       v.GetInt("cache.redis.db"),
			},
		},
		HTTP: HTTPConfig{
			AllowedOrigins:  v.GetStringSlice("http.cors.allowed_origins"),
			ReadTimeout:     v.GetDuration("http.read_timeout"),
			WriteTimeout:    v.GetDuration("http.write_timeout"),
			ShutdownTimeout: v.GetDuration("http.shutdown_timeout"),
		},
		Startup: StartupConfig{
			ConnectRetries: v.GetUint64("startup.connect_retries"),
			ConnectBackoff: v.GetDuration("startup.connect_backoff"),
		},
	}
}

// Validate rejects settings the service cannot start with.
func (c *Config) Validate() error {
	if c.Auth.Secret == "" {
		return ErrMissingSecret
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("auth.token_ttl must be positive, got %s", c.Auth.TokenTTL)
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("cache.ttl must be positive, got %s", c.Cache.TTL)
	}

	switch c.Store.Driver {
	case DriverSQLite:
		if c.Store.SQLite.Path == "" {
			return errors.New("store.sqlite.path is required")
		}
	case DriverPostgres:
		if c.Store.Postgres.DSN == "" {
			return errors.New("store.postgres.dsn is required")
		}
	case DriverFirestore:
		if c.Store.Firestore.ProjectID == "" {
			return errors.New("store.firestore.project_id is required")
		}
	default:
		return fmt.Errorf("unknown store.driver %q", c.Store.Driver)
	}

	switch c.Cache.Driver {
	case DriverRedis, DriverMemory:
	default:
		return fmt.Errorf("unknown cache.driver %q", c.Cache.Driver)
	}
	return nil
}
