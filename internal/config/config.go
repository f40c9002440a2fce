package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Auth    AuthConfig    `yaml:"auth"`
	Redis   RedisConfig   `yaml:"redis"`
	Session SessionConfig `yaml:"session"`
	Ingest  IngestConfig  `yaml:"ingest"`
	Offers  OffersConfig  `yaml:"offers"`
	Export  ExportConfig  `yaml:"export"`
	Source  SourceConfig  `yaml:"source"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port           int      `yaml:"port"`
	Host           string   `yaml:"host"`
	MaxUploadMB    int      `yaml:"max_upload_mb"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// GetHost returns the server host, with container detection
func (c ServerConfig) GetHost() string {
	// On ECS/container, listen on all interfaces
	if os.Getenv("ECS_CONTAINER_METADATA_URI") != "" || os.Getenv("AWS_EXECUTION_ENV") != "" {
		return "0.0.0.0"
	}
	if host := os.Getenv("SERVER_HOST"); host != "" {
		return host
	}
	return c.Host
}

// MaxUploadBytes returns the multipart upload limit in bytes.
func (c ServerConfig) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

// AuthConfig holds Google OAuth authentication configuration for the dashboard
type AuthConfig struct {
	Enabled            bool   `yaml:"enabled"`
	GoogleClientID     string `yaml:"google_client_id"`
	GoogleClientSecret string `yaml:"google_client_secret"`
	AllowedDomain      string `yaml:"allowed_domain"`
	BaseURL            string `yaml:"base_url"`
	CookieName         string `yaml:"cookie_name"`
	CookieMaxAge       int    `yaml:"cookie_max_age"`
}

// RedisConfig holds the optional Redis connection used for dashboard sessions.
// An empty URL keeps sessions in process memory.
type RedisConfig struct {
	URL       string `yaml:"url"`
	KeyPrefix string `yaml:"key_prefix"`
}

// SessionConfig bounds how long an uploaded table and its results are kept.
type SessionConfig struct {
	TTLMinutes int `yaml:"ttl_minutes"`
}

// TTL returns the configured session lifetime as a duration
func (c SessionConfig) TTL() time.Duration {
	return time.Duration(c.TTLMinutes) * time.Minute
}

// IngestConfig controls how spreadsheet exports are located and normalized.
type IngestConfig struct {
	AliasFile           string   `yaml:"alias_file"`
	SummaryMarkers      []string `yaml:"summary_markers"`
	HeaderScanRows      int      `yaml:"header_scan_rows"`
	DefaultCustomerName string   `yaml:"default_customer_name"`
	DefaultPhone        string   `yaml:"default_phone"`
}

// OffersConfig holds message rendering settings for generated offers.
type OffersConfig struct {
	MessageTemplate string `yaml:"message_template"`
	CurrencySymbol  string `yaml:"currency_symbol"`
	// RandomSeed pins promo-code suffixes; zero seeds from the clock.
	RandomSeed int64 `yaml:"random_seed"`
}

// ExportConfig selects where generated workbooks are published.
type ExportConfig struct {
	Type           string `yaml:"type"` // "local" or "s3"
	LocalPath      string `yaml:"local_path"`
	S3Bucket       string `yaml:"s3_bucket"`
	S3Prefix       string `yaml:"s3_prefix"`
	AWSRegion      string `yaml:"aws_region"`
	AWSProfile     string `yaml:"aws_profile"`
	PresignMinutes int    `yaml:"presign_minutes"`
}

// PresignTTL returns how long a presigned download link stays valid
func (c ExportConfig) PresignTTL() time.Duration {
	return time.Duration(c.PresignMinutes) * time.Minute
}

// GetAWSProfile returns the AWS profile, honoring env override and skipping
// profiles inside containers where the task role applies.
func (c ExportConfig) GetAWSProfile() string {
	if envProfile := os.Getenv("AWS_PROFILE_OVERRIDE"); envProfile != "" {
		return envProfile
	}
	if os.Getenv("ECS_CONTAINER_METADATA_URI") != "" || os.Getenv("AWS_EXECUTION_ENV") != "" {
		return ""
	}
	return c.AWSProfile
}

// SourceConfig describes an optional SQL source for customer order history
// (a POS database or warehouse view) used instead of an uploaded file.
type SourceConfig struct {
	Driver         string `yaml:"driver"` // "postgres" or "snowflake"
	DSN            string `yaml:"dsn"`
	Query          string `yaml:"query"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Timeout returns the configured query timeout as a duration
func (c SourceConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// LoggingConfig holds structured logger settings
type LoggingConfig struct {
	Level     string `yaml:"level"`
	RedactPII *bool  `yaml:"redact_pii"`
}

// RedactEnabled defaults to true when the key is absent.
func (c LoggingConfig) RedactEnabled() bool {
	return c.RedactPII == nil || *c.RedactPII
}

// DefaultMessageTemplate reproduces the promotional copy used for every offer.
const DefaultMessageTemplate = "Hi {{ name }}, as a {{ segment }} customer, we're offering you {{ discount }}% off " +
	"your next order of {{ currency }}{{ min_order }} or more! Valid for {{ validity }} days. Use code: {{ code }}"

// Load reads configuration from a YAML file and applies defaults
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

// Default returns a configuration with every default applied, for runs
// without a config file.
func Default() *Config {
	var cfg Config
	applyDefaults(&cfg)
	return &cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.MaxUploadMB == 0 {
		cfg.Server.MaxUploadMB = 32
	}
	if len(cfg.Server.AllowedOrigins) == 0 {
		cfg.Server.AllowedOrigins = []string{"http://localhost:5173", "http://localhost:8080"}
	}
	if cfg.Auth.CookieName == "" {
		cfg.Auth.CookieName = "discountgen_session"
	}
	if cfg.Auth.CookieMaxAge == 0 {
		cfg.Auth.CookieMaxAge = 86400
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = "discountgen:session:"
	}
	if cfg.Session.TTLMinutes == 0 {
		cfg.Session.TTLMinutes = 120
	}
	if len(cfg.Ingest.SummaryMarkers) == 0 {
		cfg.Ingest.SummaryMarkers = []string{"Total", "Min.", "Max.", "Avg."}
	}
	if cfg.Ingest.HeaderScanRows == 0 {
		cfg.Ingest.HeaderScanRows = 10
	}
	if cfg.Ingest.DefaultCustomerName == "" {
		cfg.Ingest.DefaultCustomerName = "Valued Customer"
	}
	if cfg.Ingest.DefaultPhone == "" {
		cfg.Ingest.DefaultPhone = "Not Provided"
	}
	if cfg.Offers.MessageTemplate == "" {
		cfg.Offers.MessageTemplate = DefaultMessageTemplate
	}
	if cfg.Offers.CurrencySymbol == "" {
		cfg.Offers.CurrencySymbol = "₹"
	}
	if cfg.Export.Type == "" {
		cfg.Export.Type = "local"
	}
	if cfg.Export.LocalPath == "" {
		cfg.Export.LocalPath = "./exports"
	}
	if cfg.Export.AWSRegion == "" {
		cfg.Export.AWSRegion = "us-east-1"
	}
	if cfg.Export.PresignMinutes == 0 {
		cfg.Export.PresignMinutes = 60
	}
	if cfg.Source.Driver == "" {
		cfg.Source.Driver = "postgres"
	}
	if cfg.Source.TimeoutSeconds == 0 {
		cfg.Source.TimeoutSeconds = 60
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}

// LoadFromEnv loads configuration from file with environment variable overrides.
// A missing file is not an error: defaults plus environment are used.
func LoadFromEnv(path string) (*Config, error) {
	// Load .env file if it exists (no error if missing)
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
		cfg = Default()
	}

	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Redis.URL = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}

	// Auth overrides
	if v := os.Getenv("GOOGLE_CLIENT_ID"); v != "" {
		cfg.Auth.GoogleClientID = v
	}
	if v := os.Getenv("GOOGLE_CLIENT_SECRET"); v != "" {
		cfg.Auth.GoogleClientSecret = v
	}
	if v := os.Getenv("AUTH_ALLOWED_DOMAIN"); v != "" {
		cfg.Auth.AllowedDomain = v
	}
	if v := os.Getenv("AUTH_BASE_URL"); v != "" {
		cfg.Auth.BaseURL = v
	}

	// Export overrides
	if v := os.Getenv("EXPORT_S3_BUCKET"); v != "" {
		cfg.Export.S3Bucket = v
		cfg.Export.Type = "s3"
	}
	if v := os.Getenv("EXPORT_S3_REGION"); v != "" {
		cfg.Export.AWSRegion = v
	}

	// SQL source overrides
	if v := os.Getenv("SOURCE_DRIVER"); v != "" {
		cfg.Source.Driver = v
	}
	if v := os.Getenv("SOURCE_DSN"); v != "" {
		cfg.Source.DSN = v
	}

	return cfg, nil
}
