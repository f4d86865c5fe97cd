package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// OpenSearch driver names.
const (
	DriverTyped = "typed"
	DriverRaw   = "raw"
)

// OpenSearch authentication modes.
const (
	AuthBasic    = "basic"
	AuthAWSSigV4 = "aws_sigv4"
)

// Cache driver names.
const (
	CacheNone  = "none"
	CacheRedis = "redis"
)

// Config holds the searchgate API configuration.
type Config struct {
	HTTP       HTTPConfig       `yaml:"http"`
	OpenSearch OpenSearchConfig `yaml:"opensearch"`
	Bulk       BulkConfig       `yaml:"bulk"`
	Search     SearchConfig     `yaml:"search"`
	Cache      CacheConfig      `yaml:"cache"`
	Auth       AuthConfig       `yaml:"auth"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string        `yaml:"level"` // debug, info, warn, error (default: determined by env)
	File  FileLogConfig `yaml:"file"`
}

// FileLogConfig enables rotated file output next to stderr. Empty path disables it.
type FileLogConfig struct {
	Path       string `yaml:"path"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// OpenSearchConfig holds cluster connection settings.
type OpenSearchConfig struct {
	Driver              string   `yaml:"driver"` // typed, raw (default: typed)
	Addresses           []string `yaml:"addresses"`
	Auth                string   `yaml:"auth"` // basic, aws_sigv4 (default: basic)
	Username            string   `yaml:"username"`
	Password            string   `yaml:"password"`
	AWSRegion           string   `yaml:"aws_region"`
	InsecureSkipVerify  bool     `yaml:"insecure_skip_verify"`
	MaxRetries          int      `yaml:"max_retries"`
	DisableRetry        bool     `yaml:"disable_retry"`
	CompressRequestBody bool     `yaml:"compress_request_body"`
	ReadinessTimeout    int      `yaml:"readiness_timeout_sec"`
	LogBodies           bool     `yaml:"log_bodies"`
}

// BulkConfig holds bulk indexing limits.
type BulkConfig struct {
	MaxBatchSize    int `yaml:"max_batch_size"`
	Workers         int `yaml:"workers"`
	FlushBytes      int `yaml:"flush_bytes"`
	FlushIntervalMS int `yaml:"flush_interval_ms"`
}

// SearchConfig holds search pagination limits.
type SearchConfig struct {
	DefaultSize int `yaml:"default_size"`
	MaxSize     int `yaml:"max_size"`
}

// CacheConfig holds the optional document read cache settings.
type CacheConfig struct {
	Driver   string   `yaml:"driver"` // none, redis (default: none)
	Addrs    []string `yaml:"addrs"`
	Password string   `yaml:"password"`
	TTLSec   int      `yaml:"ttl_sec"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse decodes YAML bytes, expands ${VAR} references, applies defaults and validates.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.OpenSearch.Driver == "" {
		c.OpenSearch.Driver = DriverTyped
	}
	if c.OpenSearch.Auth == "" {
		c.OpenSearch.Auth = AuthBasic
	}
	if c.OpenSearch.ReadinessTimeout <= 0 {
		c.OpenSearch.ReadinessTimeout = 30
	}
	if c.Bulk.MaxBatchSize <= 0 {
		c.Bulk.MaxBatchSize = 500
	}
	if c.Bulk.Workers <= 0 {
		c.Bulk.Workers = 2
	}
	if c.Bulk.FlushBytes <= 0 {
		c.Bulk.FlushBytes = 5 << 20
	}
	if c.Bulk.FlushIntervalMS <= 0 {
		c.Bulk.FlushIntervalMS = 1000
	}
	if c.Search.DefaultSize <= 0 {
		c.Search.DefaultSize = 10
	}
	if c.Search.MaxSize <= 0 {
		c.Search.MaxSize = 1000
	}
	if c.Cache.Driver == "" {
		c.Cache.Driver = CacheNone
	}
	if c.Cache.TTLSec <= 0 {
		c.Cache.TTLSec = 300
	}
	if c.Logging.File.Path != "" {
		if c.Logging.File.MaxSizeMB <= 0 {
			c.Logging.File.MaxSizeMB = 100
		}
		if c.Logging.File.MaxBackups <= 0 {
			c.Logging.File.MaxBackups = 5
		}
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.OpenSearch.Addresses) == 0 {
		return fmt.Errorf("opensearch.addresses is required")
	}
	switch c.OpenSearch.Driver {
	case DriverTyped, DriverRaw:
	default:
		return fmt.Errorf("opensearch.driver must be %q or %q, got %q", DriverTyped, DriverRaw, c.OpenSearch.Driver)
	}
	switch c.OpenSearch.Auth {
	case AuthBasic:
		if c.OpenSearch.Password != "" && c.OpenSearch.Username == "" {
			return fmt.Errorf("opensearch.username is required when a password is set")
		}
	case AuthAWSSigV4:
		if c.OpenSearch.AWSRegion == "" {
			return fmt.Errorf("opensearch.aws_region is required for %s auth", AuthAWSSigV4)
		}
	default:
		return fmt.Errorf("opensearch.auth must be %q or %q, got %q", AuthBasic, AuthAWSSigV4, c.OpenSearch.Auth)
	}
	if c.Search.DefaultSize > c.Search.MaxSize {
		return fmt.Errorf("search.default_size (%d) exceeds search.max_size (%d)", c.Search.DefaultSize, c.Search.MaxSize)
	}
	switch c.Cache.Driver {
	case CacheNone:
	case CacheRedis:
		if len(c.Cache.Addrs) == 0 {
			return fmt.Errorf("cache.addrs is required for the redis cache driver")
		}
	default:
		return fmt.Errorf("cache.driver must be %q or %q, got %q", CacheNone, CacheRedis, c.Cache.Driver)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
