package config

import (
	"os"
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
				assert.Equal(t, 8080, cfg.ServerPort)
				assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
				assert.Equal(t, 10<<20, cfg.MaxRequestBodyBytes)
				assert.Equal(t, "info", cfg.LogLevel)
				assert.Equal(t, "require-encrypt-require-decrypt", cfg.CommitmentPolicy)
				assert.Empty(t, cfg.DefaultAlgorithmSuite)
				assert.Equal(t, 4096, cfg.FrameLength)
				assert.Equal(t, 0, cfg.MaxEncryptedDataKeys)
				assert.Equal(t, "gocloud-kms", cfg.KMSProviderID)
				assert.Equal(t, "default", cfg.KMSKeyName)
				assert.True(t, cfg.RateLimitEnabled)
				assert.Equal(t, "envelope", cfg.MetricsNamespace)
				assert.Equal(t, 8081, cfg.MetricsPort)
			},
		},
		{
			name: "load custom server configuration",
			envVars: map[string]string{
				"SERVER_HOST":              "localhost",
				"SERVER_PORT":              "9090",
				"SHUTDOWN_TIMEOUT_SECONDS": "3",
				"MAX_REQUEST_BODY_BYTES":   "1024",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "localhost", cfg.ServerHost)
				assert.Equal(t, 9090, cfg.ServerPort)
				assert.Equal(t, 3*time.Second, cfg.ShutdownTimeout)
				assert.Equal(t, 1024, cfg.MaxRequestBodyBytes)
			},
		},
		{
			name: "load custom message configuration",
			envVars: map[string]string{
				"COMMITMENT_POLICY":       "forbid-encrypt-allow-decrypt",
				"DEFAULT_ALGORITHM_SUITE": "0x0378",
				"FRAME_LENGTH":            "1024",
				"MAX_ENCRYPTED_DATA_KEYS": "3",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "forbid-encrypt-allow-decrypt", cfg.CommitmentPolicy)
				assert.Equal(t, "0x0378", cfg.DefaultAlgorithmSuite)
				assert.Equal(t, 1024, cfg.FrameLength)
				assert.Equal(t, 3, cfg.MaxEncryptedDataKeys)
			},
		},
		{
			name: "load custom kms configuration",
			envVars: map[string]string{
				"KMS_KEY_URI":         "base64key://smGbjm71Nxd1Ig5FS0wj9SlbzAIrnolCz9bQQ6uAhl4=",
				"KMS_PROVIDER_ID":     "aws-kms",
				"KMS_KEY_NAME":        "primary",
				"KMS_ADDITIONAL_KEYS": "backup=awskms://alias/backup",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "base64key://smGbjm71Nxd1Ig5FS0wj9SlbzAIrnolCz9bQQ6uAhl4=", cfg.KMSKeyURI)
				assert.Equal(t, "aws-kms", cfg.KMSProviderID)
				assert.Equal(t, "primary", cfg.KMSKeyName)
				assert.Equal(t, []AdditionalKey{{Name: "backup", URI: "awskms://alias/backup"}}, cfg.AdditionalKeys())
			},
		},
		{
			name: "load custom log level",
			envVars: map[string]string{
				"LOG_LEVEL": "debug",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "debug", cfg.LogLevel)
				assert.Equal(t, "debug", cfg.GetGinMode())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Clear environment
			os.Clearenv()

			// Set test environment variables
			for key, value := range tt.envVars {
				err := os.Setenv(key, value)
				require.NoError(t, err)
			}

			// Load configuration
			cfg := Load()

			// Validate
			tt.validate(t, cfg)
		})
	}
}

func TestConfig_AdditionalKeys(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected []AdditionalKey
	}{
		{name: "Empty", value: "", expected: nil},
		{
			name:  "MultipleEntries",
			value: "backup=awskms://alias/backup, dr=gcpkms://projects/p/locations/l/keyRings/r/cryptoKeys/k",
			expected: []AdditionalKey{
				{Name: "backup", URI: "awskms://alias/backup"},
				{Name: "dr", URI: "gcpkms://projects/p/locations/l/keyRings/r/cryptoKeys/k"},
			},
		},
		{
			name:     "SkipsMalformedEntries",
			value:    "noequals,=base64key://abc,name=,ok=base64key://abc=",
			expected: []AdditionalKey{{Name: "ok", URI: "base64key://abc="}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{KMSAdditionalKeys: tt.value}
			assert.Equal(t, tt.expected, cfg.AdditionalKeys())
		})
	}
}

func TestConfig_GetGinMode(t *testing.T) {
	for level, expected := range map[string]string{
		"debug": "debug",
		"info":  "release",
		"warn":  "release",
		"error": "release",
		"":      "release",
	} {
		cfg := &Config{LogLevel: level}
		assert.Equal(t, expected, cfg.GetGinMode(), level)
	}
}
