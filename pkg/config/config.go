package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Server       ServerConfig       `yaml:"server"`
	Database     DatabaseConfig     `yaml:"database"`
	Redis        RedisConfig        `yaml:"redis"`
	Twitch       TwitchConfig       `yaml:"twitch"`
	YouTube      YouTubeConfig      `yaml:"youtube"`
	Ingest       IngestConfig       `yaml:"ingest"`
	Quota        QuotaConfig        `yaml:"quota"`
	Auth         AuthConfig         `yaml:"auth"`
	RateLimiting RateLimitingConfig `yaml:"rate_limiting"`
	Monitoring   MonitoringConfig   `yaml:"monitoring"`
	Tracing      TracingConfig      `yaml:"tracing"`
	Logging      LoggingConfig      `yaml:"logging"`
}

type ServerConfig struct {
	Address         string        `yaml:"address"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Enabled bool   `yaml:"enabled"`
	DSN     string `yaml:"dsn"`
}

type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type TwitchConfig struct {
	ClientID       string        `yaml:"client_id"`
	ClientSecret   string        `yaml:"client_secret"`
	TokenURL       string        `yaml:"token_url"`
	APIBaseURL     string        `yaml:"api_base_url"`
	TokenTimeout   time.Duration `yaml:"token_timeout"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

type YouTubeConfig struct {
	APIKey         string        `yaml:"api_key"`
	APIBaseURL     string        `yaml:"api_base_url"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

type IngestConfig struct {
	Retry   RetryConfig   `yaml:"retry"`
	Breaker BreakerConfig `yaml:"breaker"`
}

type RetryConfig struct {
	MaxAttempts  int           `yaml:"max_attempts"`
	InitialDelay time.Duration `yaml:"initial_delay"`
	MaxDelay     time.Duration `yaml:"max_delay"`
	Multiplier   float64       `yaml:"multiplier"`
}

type BreakerConfig struct {
	Enabled          bool          `yaml:"enabled"`
	FailureThreshold int           `yaml:"failure_threshold"`
	OpenTimeout      time.Duration `yaml:"open_timeout"`
	HalfOpenProbes   int           `yaml:"half_open_probes"`
}

type QuotaConfig struct {
	PlanCacheTTL time.Duration `yaml:"plan_cache_ttl"`
}

type AuthConfig struct {
	Enabled   bool   `yaml:"enabled"`
	JWTSecret string `yaml:"jwt_secret"`
}

type RateLimitingConfig struct {
	Enabled           bool    `yaml:"enabled"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
	MaxConcurrent     int     `yaml:"max_concurrent"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
}

type TracingConfig struct {
	Enabled     bool    `yaml:"enabled"`
	ServiceName string  `yaml:"service_name"`
	JaegerURL   string  `yaml:"jaeger_url"`
	Environment string  `yaml:"environment"`
	SampleRate  float64 `yaml:"sample_rate"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Validate checks that configuration values are within acceptable ranges.
// Platform credentials are intentionally not required here: a missing
// client id/secret or API key surfaces as a configuration error on the
// first request that needs it.
func (c *Config) Validate() error {
	if c.Server.Address == "" {
		return fmt.Errorf("server.address must not be empty")
	}
	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server.read_timeout must be > 0")
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server.write_timeout must be > 0")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdown_timeout must be > 0")
	}

	if c.Database.Enabled && c.Database.DSN == "" {
		return fmt.Errorf("database.dsn must not be empty when database.enabled=true")
	}

	if c.Redis.Enabled {
		if c.Redis.Address == "" {
			return fmt.Errorf("redis.address must not be empty when redis.enabled=true")
		}
		if c.Redis.PoolSize <= 0 {
			return fmt.Errorf("redis.pool_size must be > 0 when redis.enabled=true")
		}
	}

	if c.Twitch.TokenURL == "" {
		return fmt.Errorf("twitch.token_url must not be empty")
	}
	if c.Twitch.APIBaseURL == "" {
		return fmt.Errorf("twitch.api_base_url must not be empty")
	}
	if c.Twitch.TokenTimeout <= 0 {
		return fmt.Errorf("twitch.token_timeout must be > 0")
	}
	if c.Twitch.RequestTimeout <= 0 {
		return fmt.Errorf("twitch.request_timeout must be > 0")
	}

	if c.YouTube.APIBaseURL == "" {
		return fmt.Errorf("youtube.api_base_url must not be empty")
	}
	if c.YouTube.RequestTimeout <= 0 {
		return fmt.Errorf("youtube.request_timeout must be > 0")
	}

	if c.Ingest.Retry.MaxAttempts <= 0 {
		return fmt.Errorf("ingest.retry.max_attempts must be > 0")
	}
	if c.Ingest.Retry.InitialDelay <= 0 {
		return fmt.Errorf("ingest.retry.initial_delay must be > 0")
	}
	if c.Ingest.Retry.MaxDelay < c.Ingest.Retry.InitialDelay {
		return fmt.Errorf("ingest.retry.max_delay must be >= initial_delay")
	}
	if c.Ingest.Retry.Multiplier < 1 {
		return fmt.Errorf("ingest.retry.multiplier must be >= 1")
	}

	if c.Ingest.Breaker.Enabled {
		if c.Ingest.Breaker.FailureThreshold <= 0 {
			return fmt.Errorf("ingest.breaker.failure_threshold must be > 0 when breaker is enabled")
		}
		if c.Ingest.Breaker.OpenTimeout <= 0 {
			return fmt.Errorf("ingest.breaker.open_timeout must be > 0 when breaker is enabled")
		}
		if c.Ingest.Breaker.HalfOpenProbes <= 0 {
			return fmt.Errorf("ingest.breaker.half_open_probes must be > 0 when breaker is enabled")
		}
	}

	if c.Quota.PlanCacheTTL < 0 {
		return fmt.Errorf("quota.plan_cache_ttl must be >= 0")
	}

	if c.Auth.Enabled && c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret must not be empty when auth.enabled=true")
	}

	if c.RateLimiting.Enabled {
		if c.RateLimiting.RequestsPerSecond <= 0 {
			return fmt.Errorf("rate_limiting.requests_per_second must be > 0 when rate limiting is enabled")
		}
		if c.RateLimiting.Burst <= 0 {
			return fmt.Errorf("rate_limiting.burst must be > 0 when rate limiting is enabled")
		}
		if c.RateLimiting.MaxConcurrent < 0 {
			return fmt.Errorf("rate_limiting.max_concurrent must be >= 0 when rate limiting is enabled")
		}
	}

	if c.Tracing.Enabled {
		if c.Tracing.JaegerURL == "" {
			return fmt.Errorf("tracing.jaeger_url must not be empty when tracing.enabled=true")
		}
		if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
			return fmt.Errorf("tracing.sample_rate must be within [0, 1]")
		}
	}

	if c.Logging.Level == "" {
		return fmt.Errorf("logging.level must not be empty")
	}

	return nil
}

// Load reads configuration from a YAML file, applies defaults and env
// overrides. A missing file falls back to defaults.
func Load(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := DefaultConfig()
		cfg.applyEnvOverrides()
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config yaml: %w", err)
	}

	cfg.applyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// DefaultConfig returns configuration with sane defaults.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Server.Address = ":8080"
	cfg.Server.ReadTimeout = 30 * time.Second
	cfg.Server.WriteTimeout = 30 * time.Second
	cfg.Server.ShutdownTimeout = 30 * time.Second

	cfg.Database.Enabled = false

	cfg.Redis.Enabled = false
	cfg.Redis.Address = "localhost:6379"
	cfg.Redis.DB = 0
	cfg.Redis.PoolSize = 10

	cfg.Twitch.TokenURL = "https://id.twitch.tv/oauth2/token"
	cfg.Twitch.APIBaseURL = "https://api.twitch.tv/helix"
	cfg.Twitch.TokenTimeout = 15 * time.Second
	cfg.Twitch.RequestTimeout = 10 * time.Second

	cfg.YouTube.APIBaseURL = "https://www.googleapis.com/youtube/v3"
	cfg.YouTube.RequestTimeout = 10 * time.Second

	cfg.Ingest.Retry.MaxAttempts = 3
	cfg.Ingest.Retry.InitialDelay = time.Second
	cfg.Ingest.Retry.MaxDelay = 8 * time.Second
	cfg.Ingest.Retry.Multiplier = 2.0

	cfg.Ingest.Breaker.Enabled = true
	cfg.Ingest.Breaker.FailureThreshold = 5
	cfg.Ingest.Breaker.OpenTimeout = 30 * time.Second
	cfg.Ingest.Breaker.HalfOpenProbes = 2

	cfg.Quota.PlanCacheTTL = 5 * time.Minute

	cfg.Auth.Enabled = true
	cfg.Auth.JWTSecret = "change-me-in-production"

	cfg.RateLimiting.Enabled = false
	cfg.RateLimiting.RequestsPerSecond = 50
	cfg.RateLimiting.Burst = 100
	cfg.RateLimiting.MaxConcurrent = 0

	cfg.Monitoring.PrometheusEnabled = true

	cfg.Tracing.Enabled = false
	cfg.Tracing.ServiceName = "clipgate"
	cfg.Tracing.JaegerURL = "http://localhost:14268/api/traces"
	cfg.Tracing.Environment = "development"
	cfg.Tracing.SampleRate = 1.0

	cfg.Logging.Level = "info"
	cfg.Logging.Format = "json"

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if addr := os.Getenv("CLIPGATE_SERVER_ADDRESS"); addr != "" {
		c.Server.Address = addr
	}
	if dsn := os.Getenv("CLIPGATE_DATABASE_DSN"); dsn != "" {
		c.Database.DSN = dsn
		c.Database.Enabled = true
	}
	if addr := os.Getenv("CLIPGATE_REDIS_ADDRESS"); addr != "" {
		c.Redis.Address = addr
	}
	if id := os.Getenv("CLIPGATE_TWITCH_CLIENT_ID"); id != "" {
		c.Twitch.ClientID = id
	}
	if secret := os.Getenv("CLIPGATE_TWITCH_CLIENT_SECRET"); secret != "" {
		c.Twitch.ClientSecret = secret
	}
	if key := os.Getenv("CLIPGATE_YOUTUBE_API_KEY"); key != "" {
		c.YouTube.APIKey = key
	}
	if secret := os.Getenv("CLIPGATE_JWT_SECRET"); secret != "" {
		c.Auth.JWTSecret = secret
	}
	if level := os.Getenv("CLIPGATE_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
}
