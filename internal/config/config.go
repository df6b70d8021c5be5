package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Record store backends
const (
	BackendREST     = "rest"
	BackendPostgres = "postgres"
)

// Config is the full runtime configuration. Keys are the environment variable
// names; a file named by CONFIG_FILE may provide the same keys.
type Config struct {
	LogLevel string `mapstructure:"LOG_LEVEL"`
	HTTPAddr string `mapstructure:"HTTP_ADDR"`

	RequestTimeout time.Duration `mapstructure:"REQUEST_TIMEOUT"`

	RecordStoreBackend string `mapstructure:"RECORD_STORE_BACKEND"`
	SupabaseURL        string `mapstructure:"SUPABASE_URL"`
	SupabaseAPIKey     string `mapstructure:"SUPABASE_API_KEY"`
	DatabaseURL        string `mapstructure:"DATABASE_URL"`
	ApplicationsTable  string `mapstructure:"APPLICATIONS_TABLE"`
	RenewalsTable      string `mapstructure:"RENEWALS_TABLE"`

	GotenbergURL     string        `mapstructure:"GOTENBERG_API_URL"`
	GotenbergTimeout time.Duration `mapstructure:"GOTENBERG_TIMEOUT"`
	RasterScale      int           `mapstructure:"RASTER_SCALE"`

	FetchTimeout  time.Duration `mapstructure:"FETCH_TIMEOUT"`
	FetchMaxBytes int64         `mapstructure:"FETCH_MAX_BYTES"`
	WatermarkURL  string        `mapstructure:"WATERMARK_URL"`
	RedisURL      string        `mapstructure:"REDIS_URL"`

	ArchiveDir       string `mapstructure:"ARCHIVE_DIR"`
	ArchiveGCSBucket string `mapstructure:"ARCHIVE_GCS_BUCKET"`

	AuthJWTSecret string `mapstructure:"AUTH_JWT_SECRET"`
	AuthRole      string `mapstructure:"AUTH_REQUIRED_ROLE"`

	BreakerFailureThreshold int           `mapstructure:"CIRCUIT_BREAKER_FAILURE_THRESHOLD"`
	BreakerResetTimeout     time.Duration `mapstructure:"CIRCUIT_BREAKER_RESET_TIMEOUT"`
	BreakerHalfOpenMaxCalls int           `mapstructure:"CIRCUIT_BREAKER_HALF_OPEN_MAX_CALLS"`
	BreakerSuccessThreshold int           `mapstructure:"CIRCUIT_BREAKER_SUCCESS_THRESHOLD"`

	OTelEndpoint    string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OTelServiceName string `mapstructure:"OTEL_SERVICE_NAME"`
	OTelEnvironment string `mapstructure:"OTEL_ENVIRONMENT"`
	Version         string `mapstructure:"VERSION"`
}

var defaults = map[string]interface{}{
	"LOG_LEVEL":       "info",
	"HTTP_ADDR":       ":8080",
	"REQUEST_TIMEOUT": 120 * time.Second,

	"RECORD_STORE_BACKEND": BackendREST,
	"SUPABASE_URL":         "",
	"SUPABASE_API_KEY":     "",
	"DATABASE_URL":         "",
	"APPLICATIONS_TABLE":   "passport_applications",
	"RENEWALS_TABLE":       "renewals",

	"GOTENBERG_API_URL": "http://gotenberg:3000",
	"GOTENBERG_TIMEOUT": 30 * time.Second,
	"RASTER_SCALE":      2,

	"FETCH_TIMEOUT":   15 * time.Second,
	"FETCH_MAX_BYTES": 25 << 20,
	"WATERMARK_URL":   "",
	"REDIS_URL":       "",

	"ARCHIVE_DIR":        "",
	"ARCHIVE_GCS_BUCKET": "",

	"AUTH_JWT_SECRET":    "",
	"AUTH_REQUIRED_ROLE": "",

	"CIRCUIT_BREAKER_FAILURE_THRESHOLD":   5,
	"CIRCUIT_BREAKER_RESET_TIMEOUT":       10 * time.Second,
	"CIRCUIT_BREAKER_HALF_OPEN_MAX_CALLS": 2,
	"CIRCUIT_BREAKER_SUCCESS_THRESHOLD":   2,

	"OTEL_EXPORTER_OTLP_ENDPOINT": "",
	"OTEL_SERVICE_NAME":           "passport-admin",
	"OTEL_ENVIRONMENT":            "development",
	"VERSION":                     "dev",
}

// Load reads defaults, the optional config file and the environment, in
// increasing order of precedence.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the selected record store backend has what it needs.
func (c *Config) Validate() error {
	var problems []string

	switch c.RecordStoreBackend {
	case BackendREST:
		if c.SupabaseURL == "" {
			problems = append(problems, "SUPABASE_URL is required for the rest backend")
		}
	case BackendPostgres:
		if c.DatabaseURL == "" {
			problems = append(problems, "DATABASE_URL is required for the postgres backend")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown RECORD_STORE_BACKEND %q", c.RecordStoreBackend))
	}
	if c.RasterScale < 1 {
		problems = append(problems, "RASTER_SCALE must be at least 1")
	}
	if c.ApplicationsTable == "" || c.RenewalsTable == "" {
		problems = append(problems, "table names must not be empty")
	}
	if c.FetchMaxBytes < 1 {
		problems = append(problems, "FETCH_MAX_BYTES must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}
