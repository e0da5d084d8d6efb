package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
auth:
  secret_key: "0123456789abcdef0123"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.Database.Postgres.Host)
	assert.Equal(t, 30, cfg.Auth.AccessTokenExpireMinutes)
	assert.True(t, cfg.Workflow.AllowRedecide)
	assert.Equal(t, 100, cfg.Workflow.DefaultLimit)
	assert.Equal(t, []string{"http://localhost:5173", "http://localhost:3000"}, cfg.CORS.Origins)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	path := writeConfig(t, `
auth:
  secret_key: "0123456789abcdef0123"
`)
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("WORKFLOW_ALLOW_REDECIDE", "false")
	t.Setenv("CORS_ORIGINS", "https://hr.example.com, https://admin.example.com")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.False(t, cfg.Workflow.AllowRedecide)
	assert.Equal(t, []string{"https://hr.example.com", "https://admin.example.com"}, cfg.CORS.Origins)
}

func TestLoad_MissingSecret(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 8000\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "auth.secret_key is required")
}

func TestPostgresConfig_URLs(t *testing.T) {
	p := PostgresConfig{Host: "db", Port: 5432, User: "hr", Password: "pw", Database: "hr_portal", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=hr password=pw dbname=hr_portal sslmode=disable", p.DSN())
	assert.Equal(t, "postgres://hr:pw@db:5432/hr_portal?sslmode=disable", p.MigrationURL())

	p.URL = "postgresql://u:p@remote/db"
	assert.Equal(t, "postgresql://u:p@remote/db", p.DSN())
	assert.Equal(t, "postgres://u:p@remote/db", p.MigrationURL())
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			Database: DatabaseConfig{Postgres: PostgresConfig{Host: "db", Database: "hr", User: "hr"}},
			Auth:     AuthConfig{SecretKey: "0123456789abcdef", AccessTokenExpireMinutes: 30},
			Workflow: WorkflowConfig{DefaultLimit: 100, MaxLimit: 1000},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "short secret", mutate: func(c *Config) { c.Auth.SecretKey = "short" }, wantErr: "at least 16"},
		{name: "redis without host", mutate: func(c *Config) { c.Database.Redis = RedisConfig{Enabled: true} }, wantErr: "redis.host"},
		{name: "mattermost without url", mutate: func(c *Config) { c.Mattermost.Enabled = true }, wantErr: "webhook_url"},
		{name: "url replaces host", mutate: func(c *Config) {
			c.Database.Postgres = PostgresConfig{URL: "postgres://x"}
		}},
		{name: "bad limits", mutate: func(c *Config) { c.Workflow.MaxLimit = 10 }, wantErr: "workflow limits"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
