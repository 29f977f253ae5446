package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600))
}

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String(FlagConfigDir, "configs", "")
	fs.String(FlagEnv, "", "")
	fs.String(FlagPort, "", "")
	require.NoError(t, fs.Parse(args))
	return fs
}

func TestLoad_DefaultsAndSecretAlias(t *testing.T) {
	t.Setenv("SECRET_KEY", "s3cr3t")
	dir := t.TempDir()

	cfg, err := Load(newFlags(t, "--config-dir", dir))
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "s3cr3t", cfg.Auth.Secret)
	assert.Equal(t, 20*time.Minute, cfg.Auth.TokenTTL)
	assert.Equal(t, DriverSQLite, cfg.Store.Driver)
	assert.Equal(t, DriverRedis, cfg.Cache.Driver)
	assert.Equal(t, 300*time.Second, cfg.Cache.TTL)
	assert.Equal(t, []string{"*"}, cfg.HTTP.AllowedOrigins)
	assert.Equal(t, uint64(5), cfg.Startup.ConnectRetries)
}

func TestLoad_EnvOverlay(t *testing.T) {
	t.Setenv("SECRET_KEY", "s3cr3t")
	dir := t.TempDir()
	writeFile(t, dir, "config.yml", "log:\n  level: info\ncache:\n  driver: redis\n")
	writeFile(t, dir, "config.test.yml", "log:\n  level: warn\ncache:\n  driver: memory\n")

	cfg, err := Load(newFlags(t, "--config-dir", dir, "--env", "test", "--port", "9090"))
	require.NoError(t, err)

	assert.Equal(t, "test", cfg.Env)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, DriverMemory, cfg.Cache.Driver)
}

func TestLoad_APIEnvAlias(t *testing.T) {
	t.Setenv("SECRET_KEY", "s3cr3t")
	t.Setenv("API_ENV", "test")
	dir := t.TempDir()
	writeFile(t, dir, "config.test.yml", "cache:\n  driver: memory\n")

	cfg, err := Load(newFlags(t, "--config-dir", dir))
	require.NoError(t, err)
	assert.Equal(t, "test", cfg.Env)
	assert.Equal(t, DriverMemory, cfg.Cache.Driver)
}

func TestLoad_NestedEnvOverride(t *testing.T) {
	t.Setenv("AUTH_SECRET", "from-env")
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("STORE_POSTGRES_DSN", "postgres://localhost/db")

	cfg, err := Load(newFlags(t, "--config-dir", t.TempDir()))
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Auth.Secret)
	assert.Equal(t, DriverPostgres, cfg.Store.Driver)
	assert.Equal(t, "postgres://localhost/db", cfg.Store.Postgres.DSN)
}

func TestLoad_MissingSecretIsFatal(t *testing.T) {
	t.Setenv("SECRET_KEY", "")
	t.Setenv("AUTH_SECRET", "")

	_, err := Load(newFlags(t, "--config-dir", t.TempDir()))
	assert.True(t, errors.Is(err, ErrMissingSecret), "got %v", err)
}

func TestLoad_BrokenYAML(t *testing.T) {
	t.Setenv("SECRET_KEY", "s3cr3t")
	dir := t.TempDir()
	writeFile(t, dir, "config.yml", "log: [unclosed\n")

	_, err := Load(newFlags(t, "--config-dir", dir))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			Auth:  AuthConfig{Secret: "x", TokenTTL: time.Minute},
			Store: StoreConfig{Driver: DriverSQLite, SQLite: SQLiteConfig{Path: "a.db"}},
			Cache: CacheConfig{Driver: DriverMemory, TTL: time.Minute},
		}
	}

	ok := base()
	assert.NoError(t, ok.Validate())

	cases := map[string]func(*Config){
		"unknown store":     func(c *Config) { c.Store.Driver = "mongo" },
		"postgres no dsn":   func(c *Config) { c.Store.Driver = DriverPostgres },
		"firestore no proj": func(c *Config) { c.Store.Driver = DriverFirestore },
		"unknown cache":     func(c *Config) { c.Cache.Driver = "memcached" },
		"zero cache ttl":    func(c *Config) { c.Cache.TTL = 0 },
		"zero token ttl":    func(c *Config) { c.Auth.TokenTTL = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := base()
			mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
}
