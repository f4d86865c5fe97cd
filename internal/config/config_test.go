package config

import (
	"strings"
	"testing"
)

func validConfig() Config {
	cfg := Config{
		HTTP:       HTTPConfig{Port: 8080},
		OpenSearch: OpenSearchConfig{Addresses: []string{"http://localhost:9200"}},
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestValidate_OK(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = 0

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_MissingAddresses(t *testing.T) {
	cfg := validConfig()
	cfg.OpenSearch.Addresses = nil

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for missing opensearch addresses")
	}
}

func TestValidate_UnknownDriver(t *testing.T) {
	cfg := validConfig()
	cfg.OpenSearch.Driver = "elastic"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for unknown driver")
	}

	expected := `opensearch.driver must be "typed" or "raw", got "elastic"`
	if err.Error() != expected {
		t.Errorf("unexpected error message:\ngot:  %q\nwant: %q", err.Error(), expected)
	}
}

func TestValidate_Drivers(t *testing.T) {
	for _, driver := range []string{DriverTyped, DriverRaw} {
		t.Run("driver="+driver, func(t *testing.T) {
			cfg := validConfig()
			cfg.OpenSearch.Driver = driver
			if err := cfg.Validate(); err != nil {
				t.Fatalf("unexpected error for driver %q: %v", driver, err)
			}
		})
	}
}

func TestValidate_PasswordWithoutUsername(t *testing.T) {
	cfg := validConfig()
	cfg.OpenSearch.Password = "secret"

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for password without username")
	}
}

func TestValidate_SigV4RequiresRegion(t *testing.T) {
	cfg := validConfig()
	cfg.OpenSearch.Auth = AuthAWSSigV4

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing aws_region")
	}

	cfg.OpenSearch.AWSRegion = "eu-central-1"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_UnknownAuth(t *testing.T) {
	cfg := validConfig()
	cfg.OpenSearch.Auth = "kerberos"

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown auth mode")
	}
}

func TestValidate_SearchSizes(t *testing.T) {
	cfg := validConfig()
	cfg.Search.DefaultSize = 50
	cfg.Search.MaxSize = 20

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when default size exceeds max size")
	}
}

func TestValidate_RedisCacheRequiresAddrs(t *testing.T) {
	cfg := validConfig()
	cfg.Cache.Driver = CacheRedis

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for redis cache without addrs")
	}

	cfg.Cache.Addrs = []string{"localhost:6379"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_UnknownCacheDriver(t *testing.T) {
	cfg := validConfig()
	cfg.Cache.Driver = "memcached"

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown cache driver")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 30 {
		t.Errorf("expected WriteTimeoutSec=30, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("expected ShutdownSec=10, got %d", cfg.HTTP.ShutdownSec)
	}
	if cfg.OpenSearch.Driver != DriverTyped {
		t.Errorf("expected Driver=%q, got %q", DriverTyped, cfg.OpenSearch.Driver)
	}
	if cfg.OpenSearch.Auth != AuthBasic {
		t.Errorf("expected Auth=%q, got %q", AuthBasic, cfg.OpenSearch.Auth)
	}
	if cfg.OpenSearch.ReadinessTimeout != 30 {
		t.Errorf("expected ReadinessTimeout=30, got %d", cfg.OpenSearch.ReadinessTimeout)
	}
	if cfg.Bulk.MaxBatchSize != 500 {
		t.Errorf("expected MaxBatchSize=500, got %d", cfg.Bulk.MaxBatchSize)
	}
	if cfg.Bulk.Workers != 2 {
		t.Errorf("expected Workers=2, got %d", cfg.Bulk.Workers)
	}
	if cfg.Search.DefaultSize != 10 {
		t.Errorf("expected DefaultSize=10, got %d", cfg.Search.DefaultSize)
	}
	if cfg.Search.MaxSize != 1000 {
		t.Errorf("expected MaxSize=1000, got %d", cfg.Search.MaxSize)
	}
	if cfg.Cache.Driver != CacheNone {
		t.Errorf("expected cache Driver=%q, got %q", CacheNone, cfg.Cache.Driver)
	}
	if cfg.Cache.TTLSec != 300 {
		t.Errorf("expected TTLSec=300, got %d", cfg.Cache.TTLSec)
	}
	if cfg.Logging.File.MaxSizeMB != 0 {
		t.Errorf("file rotation defaults should not apply without a path, got MaxSizeMB=%d", cfg.Logging.File.MaxSizeMB)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:       HTTPConfig{ReadTimeoutSec: 30, WriteTimeoutSec: 60, ShutdownSec: 5},
		OpenSearch: OpenSearchConfig{Driver: DriverRaw, ReadinessTimeout: 15},
		Bulk:       BulkConfig{MaxBatchSize: 50, Workers: 4},
		Search:     SearchConfig{DefaultSize: 25, MaxSize: 100},
		Logging:    LoggingConfig{File: FileLogConfig{Path: "/var/log/searchgate.log", MaxSizeMB: 10}},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 30 {
		t.Errorf("expected ReadTimeoutSec=30, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 60 {
		t.Errorf("expected WriteTimeoutSec=60, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.OpenSearch.Driver != DriverRaw {
		t.Errorf("expected Driver=%q, got %q", DriverRaw, cfg.OpenSearch.Driver)
	}
	if cfg.Bulk.MaxBatchSize != 50 {
		t.Errorf("expected MaxBatchSize=50, got %d", cfg.Bulk.MaxBatchSize)
	}
	if cfg.Search.DefaultSize != 25 {
		t.Errorf("expected DefaultSize=25, got %d", cfg.Search.DefaultSize)
	}
	if cfg.Logging.File.MaxSizeMB != 10 {
		t.Errorf("expected MaxSizeMB=10, got %d", cfg.Logging.File.MaxSizeMB)
	}
	if cfg.Logging.File.MaxBackups != 5 {
		t.Errorf("expected MaxBackups=5, got %d", cfg.Logging.File.MaxBackups)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("SEARCHGATE_TEST_HOST", "os.internal")

	tests := []struct {
		in   string
		want string
	}{
		{"addr: ${SEARCHGATE_TEST_HOST}", "addr: os.internal"},
		{"addr: ${SEARCHGATE_TEST_HOST:-fallback}", "addr: os.internal"},
		{"addr: ${SEARCHGATE_TEST_MISSING:-fallback}", "addr: fallback"},
		{"addr: ${SEARCHGATE_TEST_MISSING}", "addr: "},
		{"no vars here", "no vars here"},
	}
	for _, tc := range tests {
		got := string(expandEnvVars([]byte(tc.in)))
		if got != tc.want {
			t.Errorf("expandEnvVars(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestParse(t *testing.T) {
	t.Setenv("SEARCHGATE_TEST_PASSWORD", "s3cret")

	data := []byte(`
http:
  port: 8080
opensearch:
  driver: raw
  addresses:
    - http://localhost:9200
  username: admin
  password: ${SEARCHGATE_TEST_PASSWORD}
auth:
  api_keys:
    - key-1
`)

	cfg, err := Parse(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.OpenSearch.Driver != DriverRaw {
		t.Errorf("Driver = %q, want %q", cfg.OpenSearch.Driver, DriverRaw)
	}
	if cfg.OpenSearch.Password != "s3cret" {
		t.Errorf("Password = %q, want expanded value", cfg.OpenSearch.Password)
	}
	if len(cfg.Auth.APIKeys) != 1 || cfg.Auth.APIKeys[0] != "key-1" {
		t.Errorf("APIKeys = %v", cfg.Auth.APIKeys)
	}
	if cfg.Bulk.MaxBatchSize != 500 {
		t.Errorf("defaults not applied: MaxBatchSize = %d", cfg.Bulk.MaxBatchSize)
	}
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse([]byte("http:\n  port: 8080\n"))
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.HasPrefix(err.Error(), "invalid config:") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestParse_Malformed(t *testing.T) {
	_, err := Parse([]byte("http: [unterminated"))
	if err == nil {
		t.Fatal("expected parse error")
	}
}
