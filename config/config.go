package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Upstream UpstreamConfig `yaml:"upstream"`
	Database DatabaseConfig `yaml:"database"`
	Audit    AuditConfig    `yaml:"audit"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port            int     `yaml:"port" validate:"min=1,max=65535"`
	RequestIPHeader string  `yaml:"request_ip_header"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec" validate:"gte=0"`
	RateLimitBurst  int     `yaml:"rate_limit_burst" validate:"gte=0"`
	// Response caching stays off unless this is positive.
	CacheTTLSeconds int `yaml:"cache_ttl_seconds" validate:"gte=0"`
	// "*" allows any origin.
	CORSAllowOrigins []string `yaml:"cors_allow_origins" validate:"dive,required"`
}

// UpstreamConfig describes the NEIS meal service endpoint and the fixed school it is queried for.
type UpstreamConfig struct {
	BaseURL        string        `yaml:"base_url" validate:"required,url"`
	OfficeCode     string        `yaml:"office_code" validate:"required"`
	SchoolCode     string        `yaml:"school_code" validate:"required"`
	Type           string        `yaml:"type" validate:"required,oneof=json JSON"`
	Key            string        `yaml:"key"`
	HTTPProxy      string        `yaml:"http_proxy" validate:"omitempty,url"`
	TimeoutSeconds int           `yaml:"timeout_seconds" validate:"gte=0"`
	Timeout        time.Duration `yaml:"-"`
	MaxBodyBytes   int64         `yaml:"max_body_bytes" validate:"gte=0"`
}

// DatabaseConfig holds the database connection configuration.
// An empty DSN disables the fetch audit log.
type DatabaseConfig struct {
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns" validate:"gte=0"`
	MaxIdleConns           int    `yaml:"max_idle_conns" validate:"gte=0"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes" validate:"gte=0"`
}

// AuditConfig holds the configuration for the fetch audit worker pool.
type AuditConfig struct {
	Enabled        bool `yaml:"enabled"`
	WorkerPoolSize int  `yaml:"worker_pool_size" validate:"gte=0"`
}

// LogConfig controls logrus output and file rotation.
type LogConfig struct {
	Level      string `yaml:"level" validate:"oneof=trace debug info warn warning error fatal panic"`
	Dir        string `yaml:"dir"`
	FileName   string `yaml:"file_name"`
	MaxSizeMB  int    `yaml:"max_size_mb" validate:"gte=0"`
	MaxBackups int    `yaml:"max_backups" validate:"gte=0"`
	Console    bool   `yaml:"console"`
}

const (
	DefaultBaseURL      = "https://open.neis.go.kr/hub/mealServiceDietInfo"
	DefaultOfficeCode   = "B10"
	DefaultSchoolCode   = "7010209"
	DefaultMaxBodyBytes = 10 * 1024 * 1024
)

// Default returns a configuration with every default applied.
func Default() *Config {
	var cfg Config
	applyDefaults(&cfg)
	return &cfg
}

// Load reads the configuration from the given path. A missing file is not an
// error; defaults and environment overrides still apply.
func Load(path string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints declared in struct tags.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		cfg.Server.Port = port
	}
	if v := os.Getenv("NEIS_API_KEY"); v != "" {
		cfg.Upstream.Key = v
	}
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 3000
	}
	if len(cfg.Server.CORSAllowOrigins) == 0 {
		cfg.Server.CORSAllowOrigins = []string{"*"}
	}
	if cfg.Server.RateLimitPerSec > 0 && cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 5
	}

	if cfg.Upstream.BaseURL == "" {
		cfg.Upstream.BaseURL = DefaultBaseURL
	}
	if cfg.Upstream.OfficeCode == "" {
		cfg.Upstream.OfficeCode = DefaultOfficeCode
	}
	if cfg.Upstream.SchoolCode == "" {
		cfg.Upstream.SchoolCode = DefaultSchoolCode
	}
	if cfg.Upstream.Type == "" {
		cfg.Upstream.Type = "json"
	}
	if cfg.Upstream.MaxBodyBytes == 0 {
		cfg.Upstream.MaxBodyBytes = DefaultMaxBodyBytes
	}
	cfg.Upstream.Timeout = time.Duration(cfg.Upstream.TimeoutSeconds) * time.Second

	if cfg.Audit.WorkerPoolSize <= 0 {
		cfg.Audit.WorkerPoolSize = 1
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.FileName == "" {
		cfg.Log.FileName = "meald"
	}
}
