package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsAndEnv(t *testing.T) {
	t.Setenv("INVENTORY_JWT__SECRET_KEY", "s3cret")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "s3cret", cfg.JWT.SecretKey)
	assert.Equal(t, time.Hour, cfg.JWT.TokenTTL)
	assert.Equal(t, time.Duration(0), cfg.JWT.Leeway)
	assert.Equal(t, "5000", cfg.Server.Port)
	assert.Equal(t, CredentialsFile, cfg.Credentials.Backend)
	assert.Equal(t, RevocationMemory, cfg.Revocation.Backend)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
	assert.False(t, cfg.RateLimit.TrustProxyHeaders)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("INVENTORY_JWT__SECRET_KEY", "s3cret")
	t.Setenv("INVENTORY_JWT__TOKEN_TTL", "30m")
	t.Setenv("INVENTORY_SERVER__PORT", "8080")
	t.Setenv("INVENTORY_DATABASE__MAX_OPEN_CONNS", "7")
	t.Setenv("INVENTORY_REVOCATION__BACKEND", "redis")
	t.Setenv("INVENTORY_REVOCATION__REDIS__ADDR", "redis:6379")
	t.Setenv("INVENTORY_RATE_LIMIT__LOGIN_RPS", "0.5")
	t.Setenv("INVENTORY_RATE_LIMIT__TRUST_PROXY_HEADERS", "true")
	t.Setenv("INVENTORY_CORS__ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 30*time.Minute, cfg.JWT.TokenTTL)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 7, cfg.Database.MaxOpenConns)
	assert.Equal(t, RevocationRedis, cfg.Revocation.Backend)
	assert.Equal(t, "redis:6379", cfg.Revocation.Redis.Addr)
	assert.InDelta(t, 0.5, cfg.RateLimit.LoginRPS, 1e-9)
	assert.True(t, cfg.RateLimit.TrustProxyHeaders)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: "6000"
jwt:
  secret_key: from-file
  token_ttl: 2h
  leeway: 5s
credentials:
  backend: postgres
log:
  level: debug
`), 0o600))

	t.Setenv("INVENTORY_LOG__LEVEL", "warn")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "6000", cfg.Server.Port)
	assert.Equal(t, "from-file", cfg.JWT.SecretKey)
	assert.Equal(t, 2*time.Hour, cfg.JWT.TokenTTL)
	assert.Equal(t, 5*time.Second, cfg.JWT.Leeway)
	assert.Equal(t, CredentialsPostgres, cfg.Credentials.Backend)
	assert.Equal(t, "warn", cfg.Log.Level, "environment wins over the file")
	assert.Equal(t, "json", cfg.Log.Format, "defaults survive partial files")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoad_RequiresSecret(t *testing.T) {
	_, err := Load("")
	assert.ErrorContains(t, err, "jwt.secret_key is required")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(_ *Config) {}, ""},
		{"zero ttl", func(c *Config) { c.JWT.TokenTTL = 0 }, "jwt.token_ttl must be positive"},
		{"negative leeway", func(c *Config) { c.JWT.Leeway = -time.Second }, "jwt.leeway must not be negative"},
		{"unknown credentials backend", func(c *Config) { c.Credentials.Backend = "ldap" }, `unknown credentials.backend "ldap"`},
		{"file backend without path", func(c *Config) { c.Credentials.FilePath = "" }, "credentials.file_path is required"},
		{"unknown revocation backend", func(c *Config) { c.Revocation.Backend = "memcached" }, `unknown revocation.backend "memcached"`},
		{"redis without addr", func(c *Config) {
			c.Revocation.Backend = RevocationRedis
			c.Revocation.Redis.Addr = ""
		}, "revocation.redis.addr is required"},
		{"no database url", func(c *Config) { c.Database.URL = "" }, "database.url is required"},
		{"bcrypt cost above maximum", func(c *Config) { c.Credentials.BcryptCost = 32 }, "credentials.bcrypt_cost must be 0 or between 4 and 31"},
		{"bcrypt cost below minimum", func(c *Config) { c.Credentials.BcryptCost = 3 }, "credentials.bcrypt_cost must be 0"},
		{"bcrypt cost zero uses default", func(c *Config) { c.Credentials.BcryptCost = 0 }, ""},
		{"bcrypt cost at maximum", func(c *Config) { c.Credentials.BcryptCost = 31 }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.JWT.SecretKey = "s3cret"
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
