package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		validate func(t *testing.T, cfg *Config)
	}{
		{
			name:    "load default configuration",
			envVars: map[string]string{},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "0.0.0.0", cfg.ServerHost)
				assert.Equal(t, 443, cfg.ServerPort)
				assert.Equal(t, "info", cfg.LogLevel)
				assert.Equal(t, "X-Schema-Name", cfg.SchemaHeaderName)
				assert.Equal(t, "schemas/", cfg.SchemaPrefix)
				assert.Equal(t, 3600*time.Second, cfg.DekRotationInterval)
				assert.Equal(t, 300*time.Second, cfg.SchemaRefreshInterval)
				assert.Equal(t, "enclave", cfg.MetricsNamespace)
			},
		},
		{
			name: "load custom server configuration",
			envVars: map[string]string{
				"SERVER_HOST": "localhost",
				"SERVER_PORT": "9090",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "localhost", cfg.ServerHost)
				assert.Equal(t, 9090, cfg.ServerPort)
			},
		},
		{
			name: "load custom capability configuration",
			envVars: map[string]string{
				"SECRET_STORE_VARIABLE": "awssecretsmanager://my-dek-secret",
				"KMS_KEY_URI":           "awskms://alias/my-key?region=us-east-1",
				"SCHEMA_BUCKET_URL":     "s3://my-schema-bucket",
				"SCHEMA_PREFIX":         "api-schemas/",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "awssecretsmanager://my-dek-secret", cfg.SecretStoreVariable)
				assert.Equal(t, "awskms://alias/my-key?region=us-east-1", cfg.KMSKeyURI)
				assert.Equal(t, "s3://my-schema-bucket", cfg.SchemaBucketURL)
				assert.Equal(t, "api-schemas/", cfg.SchemaPrefix)
			},
		},
		{
			name: "load custom interval configuration",
			envVars: map[string]string{
				"DEK_ROTATION_INTERVAL":   "60",
				"SCHEMA_REFRESH_INTERVAL": "30",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 60*time.Second, cfg.DekRotationInterval)
				assert.Equal(t, 30*time.Second, cfg.SchemaRefreshInterval)
			},
		},
		{
			name: "load custom rate limit configuration",
			envVars: map[string]string{
				"RATE_LIMIT_ENABLED":          "true",
				"RATE_LIMIT_REQUESTS_PER_SEC": "5.0",
				"RATE_LIMIT_BURST":            "10",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, true, cfg.RateLimitEnabled)
				assert.Equal(t, 5.0, cfg.RateLimitRequestsPerSec)
				assert.Equal(t, 10, cfg.RateLimitBurst)
			},
		},
		{
			name: "load custom log level",
			envVars: map[string]string{
				"LOG_LEVEL": "debug",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "debug", cfg.LogLevel)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Clearenv()

			for key, value := range tt.envVars {
				err := os.Setenv(key, value)
				require.NoError(t, err)
			}

			cfg := Load()

			tt.validate(t, cfg)
		})
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			SecretStoreVariable:   "awssecretsmanager://my-secret",
			KMSKeyURI:             "awskms://alias/my-key",
			SchemaBucketURL:       "s3://my-bucket",
			SchemaHeaderName:      "X-Schema-Name",
			DekRotationInterval:   time.Hour,
			SchemaRefreshInterval: 5 * time.Minute,
		}
	}

	t.Run("valid configuration passes", func(t *testing.T) {
		assert.NoError(t, base().Validate())
	})

	t.Run("missing secret store variable fails", func(t *testing.T) {
		cfg := base()
		cfg.SecretStoreVariable = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("missing kms key uri fails", func(t *testing.T) {
		cfg := base()
		cfg.KMSKeyURI = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("missing schema bucket fails", func(t *testing.T) {
		cfg := base()
		cfg.SchemaBucketURL = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("zero rotation interval fails", func(t *testing.T) {
		cfg := base()
		cfg.DekRotationInterval = 0
		assert.Error(t, cfg.Validate())
	})
}

func TestLoadDotEnv(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "config_test")
	require.NoError(t, err)
	defer func() {
		_ = os.RemoveAll(tmpDir)
	}()

	err = os.WriteFile(filepath.Join(tmpDir, ".env"), []byte("TEST_ENV_VAR=found"), 0600)
	require.NoError(t, err)

	childDir := filepath.Join(tmpDir, "child", "grandchild")
	err = os.MkdirAll(childDir, 0700)
	require.NoError(t, err)

	oldCwd, err := os.Getwd()
	require.NoError(t, err)
	defer func() {
		_ = os.Chdir(oldCwd)
	}()

	err = os.Chdir(childDir)
	require.NoError(t, err)

	loadDotEnv()

	assert.Equal(t, "found", os.Getenv("TEST_ENV_VAR"))
	err = os.Unsetenv("TEST_ENV_VAR")
	require.NoError(t, err)
}
