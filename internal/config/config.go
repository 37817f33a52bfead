// Package config provides application configuration management through environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/allisson/go-env"
	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	// Server configuration
	ServerHost    string
	ServerPort    int
	MetricsHost   string
	MetricsPort   int
	TLSCertPath   string
	TLSKeyPath    string
	ShutdownGrace time.Duration

	// Logging
	LogLevel string

	// Request header carrying the schema name.
	SchemaHeaderName string

	// Secret store: where the wrapped DEK is fetched from.
	SecretStoreVariable string // a gocloud.dev/runtimevar URL, e.g. "awssecretsmanager://my-secret"

	// Key unwrap: the KMS key URI used to unwrap the fetched DEK.
	KMSKeyURI string // a gocloud.dev/secrets URL, e.g. "awskms://alias/my-key?region=us-east-1"

	// Object store: where OpenAPI schema documents live.
	SchemaBucketURL string // a gocloud.dev/blob URL, e.g. "s3://my-bucket"
	SchemaPrefix    string

	// Background loop intervals
	DekRotationInterval   time.Duration
	SchemaRefreshInterval time.Duration

	// Metrics namespace used as the OpenTelemetry meter name and Prometheus prefix.
	MetricsNamespace string

	// CORS is off by default: this is a server-to-server enclave API. Set
	// CORSEnabled and a comma-separated CORSAllowOrigins only if a
	// browser-based caller needs direct access to /encrypt.
	CORSEnabled      bool
	CORSAllowOrigins string

	// Per-IP rate limiting on the API listener, off by default; the
	// enclave sidecar normally fronts this service and applies its own
	// admission control.
	RateLimitEnabled        bool
	RateLimitRequestsPerSec float64
	RateLimitBurst          int
}

// Load loads configuration from environment variables.
// It first attempts to load a .env file by searching recursively from the current directory
// up to the root directory. If no .env file is found, it continues with existing environment variables.
func Load() *Config {
	loadDotEnv()

	return &Config{
		ServerHost:    env.GetString("SERVER_HOST", "0.0.0.0"),
		ServerPort:    env.GetInt("SERVER_PORT", 443),
		MetricsHost:   env.GetString("METRICS_HOST", "0.0.0.0"),
		MetricsPort:   env.GetInt("METRICS_PORT", 9090),
		TLSCertPath:   env.GetString("TLS_CERT_PATH", ""),
		TLSKeyPath:    env.GetString("TLS_KEY_PATH", ""),
		ShutdownGrace: env.GetDuration("SHUTDOWN_GRACE", 10, time.Second),

		LogLevel: env.GetString("LOG_LEVEL", "info"),

		SchemaHeaderName: env.GetString("SCHEMA_HEADER_NAME", "X-Schema-Name"),

		SecretStoreVariable: env.GetString("SECRET_STORE_VARIABLE", ""),
		KMSKeyURI:           env.GetString("KMS_KEY_URI", ""),

		SchemaBucketURL: env.GetString("SCHEMA_BUCKET_URL", ""),
		SchemaPrefix:    env.GetString("SCHEMA_PREFIX", "schemas/"),

		DekRotationInterval:   env.GetDuration("DEK_ROTATION_INTERVAL", 3600, time.Second),
		SchemaRefreshInterval: env.GetDuration("SCHEMA_REFRESH_INTERVAL", 300, time.Second),

		MetricsNamespace: env.GetString("METRICS_NAMESPACE", "enclave"),

		CORSEnabled:      env.GetBool("CORS_ENABLED", false),
		CORSAllowOrigins: env.GetString("CORS_ALLOW_ORIGINS", ""),

		RateLimitEnabled:        env.GetBool("RATE_LIMIT_ENABLED", false),
		RateLimitRequestsPerSec: env.GetFloat64("RATE_LIMIT_REQUESTS_PER_SEC", 50.0),
		RateLimitBurst:          env.GetInt("RATE_LIMIT_BURST", 100),
	}
}

// Validate checks that every configuration value required for the service
// to start is present and sane. None of these are recoverable at runtime,
// so validation runs once, before the enclave accepts any traffic.
func (c *Config) Validate() error {
	if c.SecretStoreVariable == "" {
		return fmt.Errorf("SECRET_STORE_VARIABLE must be set")
	}
	if c.KMSKeyURI == "" {
		return fmt.Errorf("KMS_KEY_URI must be set")
	}
	if c.SchemaBucketURL == "" {
		return fmt.Errorf("SCHEMA_BUCKET_URL must be set")
	}
	if c.SchemaHeaderName == "" {
		return fmt.Errorf("SCHEMA_HEADER_NAME must not be empty")
	}
	if c.DekRotationInterval <= 0 {
		return fmt.Errorf("DEK_ROTATION_INTERVAL must be positive")
	}
	if c.SchemaRefreshInterval <= 0 {
		return fmt.Errorf("SCHEMA_REFRESH_INTERVAL must be positive")
	}
	return nil
}

// loadDotEnv searches for a .env file recursively from the current directory
// up to the root directory and loads it if found.
func loadDotEnv() {
	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	dir := cwd
	for {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			_ = godotenv.Load(envPath)
			return
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
}
