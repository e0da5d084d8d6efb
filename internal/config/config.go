// Package config handles application configuration loading and validation using Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Auth       AuthConfig       `mapstructure:"auth"`
	CORS       CORSConfig       `mapstructure:"cors"`
	Mattermost MattermostConfig `mapstructure:"mattermost"`
	Scheduler  SchedulerConfig  `mapstructure:"scheduler"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Workflow   WorkflowConfig   `mapstructure:"workflow"`
	Dashboard  DashboardConfig  `mapstructure:"dashboard"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port        int    `mapstructure:"port"`
	Environment string `mapstructure:"environment"`
	ProjectName string `mapstructure:"project_name"`
}

// DatabaseConfig contains database connection settings for PostgreSQL and Redis.
type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

// PostgresConfig contains PostgreSQL database connection and pool settings.
type PostgresConfig struct {
	URL             string `mapstructure:"url"` // full connection URL, overrides the discrete fields
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Database        string `mapstructure:"database"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"ssl_mode"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool   `mapstructure:"auto_migrate"`
}

// DSN returns the keyword/value connection string understood by the pgx driver.
func (p *PostgresConfig) DSN() string {
	if p.URL != "" {
		return p.URL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// MigrationURL returns the postgres:// URL used by golang-migrate.
func (p *PostgresConfig) MigrationURL() string {
	if p.URL != "" {
		// Hosting providers hand out postgres:// and postgresql:// interchangeably.
		return strings.Replace(p.URL, "postgresql://", "postgres://", 1)
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.Database, p.SSLMode,
	)
}

// RedisConfig contains Redis cache connection and pool settings.
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

// Addr returns host:port.
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// AuthConfig contains token signing settings.
type AuthConfig struct {
	SecretKey                string `mapstructure:"secret_key"`
	AccessTokenExpireMinutes int    `mapstructure:"access_token_expire_minutes"`
	BcryptCost               int    `mapstructure:"bcrypt_cost"`
}

// AccessTokenTTL returns the token lifetime.
func (a *AuthConfig) AccessTokenTTL() time.Duration {
	return time.Duration(a.AccessTokenExpireMinutes) * time.Minute
}

// CORSConfig lists the browser origins allowed to call the API.
type CORSConfig struct {
	Origins []string `mapstructure:"origins"`
}

// MattermostConfig contains Mattermost webhook notification settings.
type MattermostConfig struct {
	WebhookURL string `mapstructure:"webhook_url"`
	Channel    string `mapstructure:"channel"`
	Enabled    bool   `mapstructure:"enabled"`
	PortalURL  string `mapstructure:"portal_url"` // used to build links in messages
}

// SchedulerConfig contains the pending-approval reminder schedule.
type SchedulerConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	Time         string `mapstructure:"time"` // HH:MM
	Timezone     string `mapstructure:"timezone"`
	SkipWeekends bool   `mapstructure:"skip_weekends"`
	MinAgeHours  int    `mapstructure:"min_age_hours"` // requests younger than this are not nagged about
}

// GetLocation returns the timezone location.
func (c *SchedulerConfig) GetLocation() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// MetricsConfig contains Prometheus exporter settings.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// LoggingConfig contains application logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// WorkflowConfig holds request-lifecycle policy switches.
type WorkflowConfig struct {
	// AllowRedecide lets approvers change the status of an already decided request.
	AllowRedecide bool `mapstructure:"allow_redecide"`
	DefaultLimit  int  `mapstructure:"default_limit"`
	MaxLimit      int  `mapstructure:"max_limit"`
}

// DashboardConfig contains dashboard statistics caching settings.
type DashboardConfig struct {
	CacheTTL int `mapstructure:"cache_ttl"` // seconds; 0 disables caching
}

// setDefaults registers defaults so a minimal config file is enough for local runs.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.project_name", "HR Portal")

	v.SetDefault("database.postgres.host", "localhost")
	v.SetDefault("database.postgres.port", 5432)
	v.SetDefault("database.postgres.database", "hr_portal")
	v.SetDefault("database.postgres.user", "postgres")
	v.SetDefault("database.postgres.ssl_mode", "disable")
	v.SetDefault("database.postgres.max_open_conns", 20)
	v.SetDefault("database.postgres.max_idle_conns", 5)
	v.SetDefault("database.postgres.conn_max_lifetime", 300)

	v.SetDefault("database.redis.enabled", false)
	v.SetDefault("database.redis.host", "localhost")
	v.SetDefault("database.redis.port", 6379)
	v.SetDefault("database.redis.pool_size", 10)

	v.SetDefault("auth.access_token_expire_minutes", 30)
	v.SetDefault("auth.bcrypt_cost", 10)

	v.SetDefault("cors.origins", []string{"http://localhost:5173", "http://localhost:3000"})

	v.SetDefault("scheduler.enabled", false)
	v.SetDefault("scheduler.time", "09:00")
	v.SetDefault("scheduler.timezone", "UTC")
	v.SetDefault("scheduler.skip_weekends", true)
	v.SetDefault("scheduler.min_age_hours", 4)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")

	v.SetDefault("workflow.allow_redecide", true)
	v.SetDefault("workflow.default_limit", 100)
	v.SetDefault("workflow.max_limit", 1000)

	v.SetDefault("dashboard.cache_ttl", 60)
}

// Load reads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/hr-portal/")
	}

	// Server configuration
	_ = v.BindEnv("server.port", "SERVER_PORT", "PORT")
	_ = v.BindEnv("server.environment", "SERVER_ENVIRONMENT")

	// PostgreSQL configuration
	_ = v.BindEnv("database.postgres.url", "DATABASE_URL")
	_ = v.BindEnv("database.postgres.host", "POSTGRES_HOST", "POSTGRES_SERVER")
	_ = v.BindEnv("database.postgres.port", "POSTGRES_PORT")
	_ = v.BindEnv("database.postgres.database", "POSTGRES_DB")
	_ = v.BindEnv("database.postgres.user", "POSTGRES_USER")
	_ = v.BindEnv("database.postgres.password", "POSTGRES_PASSWORD")
	_ = v.BindEnv("database.postgres.ssl_mode", "POSTGRES_SSL_MODE")
	_ = v.BindEnv("database.postgres.auto_migrate", "POSTGRES_AUTO_MIGRATE")

	// Redis configuration
	_ = v.BindEnv("database.redis.enabled", "REDIS_ENABLED")
	_ = v.BindEnv("database.redis.host", "REDIS_HOST")
	_ = v.BindEnv("database.redis.port", "REDIS_PORT")
	_ = v.BindEnv("database.redis.password", "REDIS_PASSWORD")
	_ = v.BindEnv("database.redis.db", "REDIS_DB")

	// Auth configuration
	_ = v.BindEnv("auth.secret_key", "AUTH_SECRET_KEY", "SECRET_KEY")
	_ = v.BindEnv("auth.access_token_expire_minutes", "ACCESS_TOKEN_EXPIRE_MINUTES")

	// Mattermost configuration
	_ = v.BindEnv("mattermost.webhook_url", "MATTERMOST_WEBHOOK_URL")
	_ = v.BindEnv("mattermost.channel", "MATTERMOST_CHANNEL")
	_ = v.BindEnv("mattermost.enabled", "MATTERMOST_ENABLED")

	// Logging configuration
	_ = v.BindEnv("logging.level", "LOG_LEVEL")
	_ = v.BindEnv("logging.format", "LOG_FORMAT")
	_ = v.BindEnv("logging.output", "LOG_OUTPUT")

	// Scheduler configuration
	_ = v.BindEnv("scheduler.enabled", "SCHEDULER_ENABLED")
	_ = v.BindEnv("scheduler.time", "SCHEDULER_TIME")
	_ = v.BindEnv("scheduler.timezone", "SCHEDULER_TIMEZONE")

	// Workflow configuration
	_ = v.BindEnv("workflow.allow_redecide", "WORKFLOW_ALLOW_REDECIDE")

	// CORS origins arrive from the environment as a comma separated list.
	_ = v.BindEnv("cors_origins_env", "CORS_ORIGINS")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if raw := v.GetString("cors_origins_env"); raw != "" {
		config.CORS.Origins = splitList(raw)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Database.Postgres.URL == "" {
		if c.Database.Postgres.Host == "" {
			return fmt.Errorf("database.postgres.host is required")
		}
		if c.Database.Postgres.Database == "" {
			return fmt.Errorf("database.postgres.database is required")
		}
		if c.Database.Postgres.User == "" {
			return fmt.Errorf("database.postgres.user is required")
		}
	}
	if c.Auth.SecretKey == "" {
		return fmt.Errorf("auth.secret_key is required")
	}
	if len(c.Auth.SecretKey) < 16 {
		return fmt.Errorf("auth.secret_key must be at least 16 characters")
	}
	if c.Auth.AccessTokenExpireMinutes <= 0 {
		return fmt.Errorf("auth.access_token_expire_minutes must be positive")
	}
	if c.Database.Redis.Enabled && c.Database.Redis.Host == "" {
		return fmt.Errorf("database.redis.host is required when redis is enabled")
	}
	if c.Mattermost.Enabled && c.Mattermost.WebhookURL == "" {
		return fmt.Errorf("mattermost.webhook_url is required when mattermost is enabled")
	}
	if c.Workflow.DefaultLimit <= 0 || c.Workflow.MaxLimit < c.Workflow.DefaultLimit {
		return fmt.Errorf("workflow limits are invalid: default=%d max=%d", c.Workflow.DefaultLimit, c.Workflow.MaxLimit)
	}

	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
