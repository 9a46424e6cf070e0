package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Config holds the full application configuration.
type Config struct {
	Log        LogConfig               `yaml:"log" mapstructure:"log"`
	Server     ServerConfig            `yaml:"server" mapstructure:"server"`
	Fetch      FetchConfig             `yaml:"fetch" mapstructure:"fetch"`
	Cache      CacheConfig             `yaml:"cache" mapstructure:"cache"`
	Refresh    RefreshConfig           `yaml:"refresh" mapstructure:"refresh"`
	Resilience ResilienceConfig        `yaml:"resilience" mapstructure:"resilience"`
	Monitoring MonitoringConfig        `yaml:"monitoring" mapstructure:"monitoring"`
	Regions    map[string]RegionConfig `yaml:"regions" mapstructure:"regions"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// FetchConfig configures upstream HTTP and FTP access.
type FetchConfig struct {
	UserAgent   string `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries  int    `yaml:"max_retries" mapstructure:"max_retries"`
	TempDir     string `yaml:"temp_dir" mapstructure:"temp_dir"`
	// RateLimits caps requests per second per upstream host.
	RateLimits map[string]float64 `yaml:"rate_limits" mapstructure:"rate_limits"`
}

// Timeout returns the per-request upstream timeout.
func (f FetchConfig) Timeout() time.Duration {
	return time.Duration(f.TimeoutSecs) * time.Second
}

// CacheConfig selects the durable blob store and the local mirror.
type CacheConfig struct {
	Backend   string         `yaml:"backend" mapstructure:"backend"`
	Dir       string         `yaml:"dir" mapstructure:"dir"`
	MirrorDir string         `yaml:"mirror_dir" mapstructure:"mirror_dir"`
	KeySuffix string         `yaml:"key_suffix" mapstructure:"key_suffix"`
	S3        S3Config       `yaml:"s3" mapstructure:"s3"`
	SQLite    SQLiteConfig   `yaml:"sqlite" mapstructure:"sqlite"`
	Postgres  PostgresConfig `yaml:"postgres" mapstructure:"postgres"`
}

// S3Config configures the S3 (or MinIO) blob store.
type S3Config struct {
	Bucket   string `yaml:"bucket" mapstructure:"bucket"`
	Region   string `yaml:"region" mapstructure:"region"`
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint"`
	Prefix   string `yaml:"prefix" mapstructure:"prefix"`
}

// SQLiteConfig configures the SQLite blob store.
type SQLiteConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// PostgresConfig configures the Postgres blob store.
type PostgresConfig struct {
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// RefreshConfig configures the bulk refresh engine.
type RefreshConfig struct {
	Concurrency int `yaml:"concurrency" mapstructure:"concurrency"`
	MaxAgeHours int `yaml:"max_age_hours" mapstructure:"max_age_hours"`
}

// MaxAge returns the age after which a snapshot is refreshed.
func (r RefreshConfig) MaxAge() time.Duration {
	return time.Duration(r.MaxAgeHours) * time.Hour
}

// ResilienceConfig configures circuit breakers and store retries.
type ResilienceConfig struct {
	Circuit CircuitConfig `yaml:"circuit" mapstructure:"circuit"`
	Retry   RetryConfig   `yaml:"retry" mapstructure:"retry"`
}

// CircuitConfig configures the per-region circuit breakers.
type CircuitConfig struct {
	FailureThreshold int `yaml:"failure_threshold" mapstructure:"failure_threshold"`
	ResetTimeoutSecs int `yaml:"reset_timeout_secs" mapstructure:"reset_timeout_secs"`
}

// RetryConfig configures blob store write retries.
type RetryConfig struct {
	MaxAttempts      int `yaml:"max_attempts" mapstructure:"max_attempts"`
	InitialBackoffMs int `yaml:"initial_backoff_ms" mapstructure:"initial_backoff_ms"`
}

// MonitoringConfig configures the snapshot freshness checker.
type MonitoringConfig struct {
	Enabled           bool   `yaml:"enabled" mapstructure:"enabled"`
	CheckIntervalSecs int    `yaml:"check_interval_secs" mapstructure:"check_interval_secs"`
	StaleAfterHours   int    `yaml:"stale_after_hours" mapstructure:"stale_after_hours"`
	WebhookURL        string `yaml:"webhook_url" mapstructure:"webhook_url"`
}

// StaleAfter returns the snapshot age that counts as stale.
func (m MonitoringConfig) StaleAfter() time.Duration {
	return time.Duration(m.StaleAfterHours) * time.Hour
}

// RegionConfig overrides one region's upstream.
type RegionConfig struct {
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// RegionURLs returns the configured base URL overrides keyed by region name.
func (c *Config) RegionURLs() map[string]string {
	out := make(map[string]string, len(c.Regions))
	for name, rc := range c.Regions {
		if rc.BaseURL != "" {
			out[strings.ToLower(name)] = rc.BaseURL
		}
	}
	return out
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("fetch.user_agent", "vetverify/1.0 (+https://github.com/sells-group/vetverify)")
	v.SetDefault("fetch.timeout_secs", 30)
	v.SetDefault("fetch.max_retries", 3)
	v.SetDefault("cache.backend", "file")
	v.SetDefault("cache.dir", "data/blobs")
	v.SetDefault("cache.mirror_dir", "data/mirror")
	v.SetDefault("cache.key_suffix", "Vets.json")
	v.SetDefault("cache.s3.bucket", "")
	v.SetDefault("cache.s3.region", "us-east-1")
	v.SetDefault("cache.s3.endpoint", "")
	v.SetDefault("cache.s3.prefix", "")
	v.SetDefault("cache.sqlite.path", "data/vetverify.db")
	v.SetDefault("cache.postgres.database_url", "")
	v.SetDefault("refresh.concurrency", 4)
	v.SetDefault("refresh.max_age_hours", 24)
	v.SetDefault("resilience.circuit.failure_threshold", 5)
	v.SetDefault("resilience.circuit.reset_timeout_secs", 60)
	v.SetDefault("resilience.retry.max_attempts", 3)
	v.SetDefault("resilience.retry.initial_backoff_ms", 200)
	v.SetDefault("monitoring.enabled", false)
	v.SetDefault("monitoring.check_interval_secs", 300)
	v.SetDefault("monitoring.stale_after_hours", 48)
	v.SetDefault("monitoring.webhook_url", "")
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("VETVERIFY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Defaults returns a Config holding only default values.
func Defaults() (*Config, error) {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal defaults")
	}
	return &cfg, nil
}

// Write renders cfg as YAML to path, creating parent directories. An existing
// file is only replaced when overwrite is set.
func Write(cfg *Config, path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return eris.Errorf("config: %s already exists", path)
		}
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return eris.Wrap(err, "config: marshal yaml")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return eris.Wrap(err, "config: create directory")
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrap(err, "config: write file")
	}
	return nil
}

// Validate checks that the settings a command needs are present. Mode is one
// of "serve", "refresh" or "lookup".
func (c *Config) Validate(mode string) error {
	var errs []string

	switch mode {
	case "serve":
		if c.Server.Port <= 0 {
			errs = append(errs, "server.port must be > 0")
		}
		if c.Monitoring.Enabled && c.Monitoring.StaleAfterHours <= 0 {
			errs = append(errs, "monitoring.stale_after_hours must be > 0")
		}
	case "refresh":
		if c.Refresh.Concurrency < 1 || c.Refresh.Concurrency > 32 {
			errs = append(errs, "refresh.concurrency must be between 1 and 32")
		}
	case "lookup":
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	switch c.Cache.Backend {
	case "", "file":
		if c.Cache.Dir == "" {
			errs = append(errs, "cache.dir is required for the file backend")
		}
	case "s3":
		if c.Cache.S3.Bucket == "" {
			errs = append(errs, "cache.s3.bucket is required for the s3 backend")
		}
	case "sqlite":
		if c.Cache.SQLite.Path == "" {
			errs = append(errs, "cache.sqlite.path is required for the sqlite backend")
		}
	case "postgres":
		if c.Cache.Postgres.DatabaseURL == "" {
			errs = append(errs, "cache.postgres.database_url is required for the postgres backend")
		}
	default:
		errs = append(errs, "cache.backend must be one of file, s3, sqlite, postgres")
	}

	if c.Fetch.TimeoutSecs <= 0 {
		errs = append(errs, "fetch.timeout_secs must be > 0")
	}

	if len(errs) > 0 {
		return eris.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
