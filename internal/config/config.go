// Package config provides centralized configuration management for the agreements server.
// It loads configuration from CLI flags and environment variables, validates required fields,
// and provides sensible defaults.
//
// CLI flags control which services are mocked (--no-s3, --test).
// Environment variables provide secrets and service configuration.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/kuitang/agreements-e2e/internal/ratelimit"
)

const (
	defaultRegion      = "auto"
	defaultDefaultTerm = "utilities"
)

// Config holds all application configuration.
type Config struct {
	// Server settings
	ListenAddr string
	BaseURL    string

	// Database and encryption
	MasterKey    string // 64 hex characters (32 bytes)
	DatabasePath string // SQLite file holding agreements

	// Obligations query
	QueryDefaultTerm string // used when POST /query arrives with an empty query
	QueryMaxTerms    int

	// Rate limiting for POST /query
	RateLimitConfig ratelimit.Config

	// Mock service flags (controlled by CLI flags, not env vars)
	NoS3 bool // If true, use in-memory S3 (--no-s3)

	// S3 document store
	AWSEndpointS3      string // AWS_ENDPOINT_URL_S3
	AWSRegion          string // AWS_REGION
	AWSAccessKeyID     string // AWS_ACCESS_KEY_ID
	AWSSecretAccessKey string // AWS_SECRET_ACCESS_KEY
	AWSBucketName      string // BUCKET_NAME
}

// Flags are the parsed command-line flags.
type Flags struct {
	NoS3 bool
	Addr string
}

// ValidationError represents a configuration validation error with multiple issues.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("configuration validation failed:\n  - %s", strings.Join(e.Errors, "\n  - "))
}

// ParseFlags parses CLI flags from args. Call before LoadConfig.
func ParseFlags(args []string) (Flags, error) {
	var f Flags
	var testMode bool

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.BoolVar(&f.NoS3, "no-s3", false, "Use mock S3 storage (in-memory)")
	fs.BoolVar(&testMode, "test", false, "Shorthand for --no-s3")
	fs.StringVar(&f.Addr, "addr", "", "Listen address (default :8000, overrides LISTEN_ADDR env var)")
	if err := fs.Parse(args); err != nil {
		return Flags{}, err
	}

	if testMode {
		f.NoS3 = true
	}
	return f, nil
}

// LoadConfig loads configuration from environment variables and CLI flag values.
func LoadConfig(f Flags) (*Config, error) {
	cfg := &Config{NoS3: f.NoS3}

	cfg.ListenAddr = getEnvOrDefault("LISTEN_ADDR", ":8000")
	if f.Addr != "" {
		cfg.ListenAddr = f.Addr
	}
	cfg.BaseURL = strings.TrimSpace(os.Getenv("BASE_URL"))
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost" + cfg.ListenAddr
	}

	cfg.MasterKey = strings.TrimSpace(os.Getenv("MASTER_KEY"))
	cfg.DatabasePath = getEnvOrDefault("DATABASE_PATH", "./data/agreements.db")

	cfg.QueryDefaultTerm = getEnvOrDefault("QUERY_DEFAULT_TERM", defaultDefaultTerm)
	cfg.QueryMaxTerms = parseIntOrDefault("QUERY_MAX_TERMS", 64)

	cfg.RateLimitConfig = ratelimit.Config{
		RPS:             parseFloat64OrDefault("RATE_LIMIT_RPS", 50),
		Burst:           parseIntOrDefault("RATE_LIMIT_BURST", 100),
		CleanupInterval: parseDurationOrDefault("RATE_LIMIT_CLEANUP_INTERVAL", time.Hour),
		ClientIPHeader:  strings.TrimSpace(os.Getenv("RATE_LIMIT_CLIENT_IP_HEADER")),
	}

	cfg.AWSEndpointS3 = strings.TrimSpace(os.Getenv("AWS_ENDPOINT_URL_S3"))
	cfg.AWSRegion = getEnvOrDefault("AWS_REGION", defaultRegion)
	cfg.AWSAccessKeyID = strings.TrimSpace(os.Getenv("AWS_ACCESS_KEY_ID"))
	cfg.AWSSecretAccessKey = strings.TrimSpace(os.Getenv("AWS_SECRET_ACCESS_KEY"))
	cfg.AWSBucketName = strings.TrimSpace(os.Getenv("BUCKET_NAME"))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that all required configuration is present and valid.
// When mocks are NOT active for a service, the corresponding secrets are required.
func (c *Config) Validate() error {
	var errs []string

	if !c.NoS3 {
		if c.AWSEndpointS3 == "" {
			errs = append(errs, "AWS_ENDPOINT_URL_S3 is required (set env var or use --no-s3)")
		}
		if c.AWSBucketName == "" {
			errs = append(errs, "BUCKET_NAME is required (set env var or use --no-s3)")
		}
		if c.AWSAccessKeyID == "" {
			errs = append(errs, "AWS_ACCESS_KEY_ID is required (set env var or use --no-s3)")
		}
		if c.AWSSecretAccessKey == "" {
			errs = append(errs, "AWS_SECRET_ACCESS_KEY is required (set env var or use --no-s3)")
		}
	}

	// Losing the master key makes the agreements database unreadable.
	if c.MasterKey == "" {
		errs = append(errs, "MASTER_KEY is required (generate with: openssl rand -hex 32)")
	} else if len(c.MasterKey) != 64 {
		errs = append(errs, "MASTER_KEY must be 64 hex characters (32 bytes)")
	}

	if strings.TrimSpace(c.QueryDefaultTerm) == "" {
		errs = append(errs, "QUERY_DEFAULT_TERM must not be blank")
	}
	if c.QueryMaxTerms <= 0 {
		errs = append(errs, "QUERY_MAX_TERMS must be positive")
	}
	if c.RateLimitConfig.RPS <= 0 {
		errs = append(errs, "RATE_LIMIT_RPS must be positive")
	}
	if c.RateLimitConfig.Burst <= 0 {
		errs = append(errs, "RATE_LIMIT_BURST must be positive")
	}

	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}

// PrintStartupSummary prints a human-readable summary of the configuration.
func (c *Config) PrintStartupSummary(w io.Writer) {
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "agreements server starting...")
	if c.NoS3 {
		fmt.Fprintln(w, "  Documents: Mock S3 (--no-s3)")
	} else {
		fmt.Fprintf(w, "  Documents: S3 (endpoint: %s, bucket: %s)\n", c.AWSEndpointS3, c.AWSBucketName)
	}
	fmt.Fprintf(w, "  Database:  %s\n", c.DatabasePath)
	fmt.Fprintf(w, "  Query:     default term %q, max %d terms\n", c.QueryDefaultTerm, c.QueryMaxTerms)
	if h := c.RateLimitConfig.ClientIPHeader; h != "" {
		fmt.Fprintf(w, "  Limits:    keyed by %s header\n", h)
	} else {
		fmt.Fprintln(w, "  Limits:    keyed by remote address")
	}
	fmt.Fprintf(w, "  Listen:    %s\n", c.ListenAddr)
	fmt.Fprintf(w, "  Base:      %s\n", c.BaseURL)
	fmt.Fprintln(w, "")
}

// Helper functions for parsing environment variables

func getEnvOrDefault(key, defaultValue string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	return value
}

func parseIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func parseFloat64OrDefault(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

// MustLoadConfig loads configuration and panics if validation fails.
func MustLoadConfig(f Flags) *Config {
	cfg, err := LoadConfig(f)
	if err != nil {
		var validationErr *ValidationError
		if errors.As(err, &validationErr) {
			panic(fmt.Sprintf("Configuration validation failed:\n  - %s", strings.Join(validationErr.Errors, "\n  - ")))
		}
		panic(fmt.Sprintf("Failed to load configuration: %v", err))
	}
	return cfg
}
