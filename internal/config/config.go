// Package config provides application configuration through environment variables.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/allisson/go-env"
	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	// ServerHost is the host address the server will bind to.
	ServerHost string
	// ServerPort is the port number the server will listen on.
	ServerPort int
	// ShutdownTimeout bounds graceful shutdown of the HTTP servers.
	ShutdownTimeout time.Duration
	// MaxRequestBodyBytes limits the size of encrypt and decrypt request bodies.
	MaxRequestBodyBytes int

	// LogLevel is the logging level (e.g., "debug", "info", "warn", "error").
	LogLevel string

	// CommitmentPolicy is "<stance>-encrypt-<stance>-decrypt", stance being forbid,
	// allow or require.
	CommitmentPolicy string
	// DefaultAlgorithmSuite is a suite id (0x0578) or name. Empty lets the commitment
	// policy choose.
	DefaultAlgorithmSuite string
	// FrameLength is the plaintext length of each frame.
	FrameLength int
	// MaxEncryptedDataKeys limits encrypted data keys per message; zero disables it.
	MaxEncryptedDataKeys int

	// KMSKeyURI is the gocloud.dev/secrets URI of the key that wraps data keys.
	KMSKeyURI string
	// KMSProviderID is written as the provider id of every encrypted data key.
	KMSProviderID string
	// KMSKeyName identifies KMSKeyURI inside encrypted data keys.
	KMSKeyName string
	// KMSAdditionalKeys holds extra wrapping keys as comma-separated name=uri pairs.
	KMSAdditionalKeys string

	// RateLimitEnabled indicates whether per-client rate limiting is enabled.
	RateLimitEnabled bool
	// RateLimitRequestsPerSec is the number of requests allowed per second per client.
	RateLimitRequestsPerSec float64
	// RateLimitBurst is the burst size for rate limiting.
	RateLimitBurst int

	// CORSEnabled indicates whether CORS is enabled.
	CORSEnabled bool
	// CORSAllowOrigins is a comma-separated list of allowed origins for CORS.
	CORSAllowOrigins string

	// MetricsEnabled indicates whether metrics collection is enabled.
	MetricsEnabled bool
	// MetricsNamespace is the namespace for the application metrics.
	MetricsNamespace string
	// MetricsPort is the port number for the metrics server.
	MetricsPort int
}

// Load loads configuration from environment variables and .env file.
func Load() *Config {
	// Try to load .env file recursively
	loadDotEnv()

	return &Config{
		// Server configuration
		ServerHost:          env.GetString("SERVER_HOST", "0.0.0.0"),
		ServerPort:          env.GetInt("SERVER_PORT", 8080),
		ShutdownTimeout:     env.GetDuration("SHUTDOWN_TIMEOUT_SECONDS", 10, time.Second),
		MaxRequestBodyBytes: env.GetInt("MAX_REQUEST_BODY_BYTES", 10<<20),

		// Logging
		LogLevel: env.GetString("LOG_LEVEL", "info"),

		// Message engine
		CommitmentPolicy:      env.GetString("COMMITMENT_POLICY", "require-encrypt-require-decrypt"),
		DefaultAlgorithmSuite: env.GetString("DEFAULT_ALGORITHM_SUITE", ""),
		FrameLength:           env.GetInt("FRAME_LENGTH", 4096),
		MaxEncryptedDataKeys:  env.GetInt("MAX_ENCRYPTED_DATA_KEYS", 0),

		// KMS configuration
		KMSKeyURI:         env.GetString("KMS_KEY_URI", ""),
		KMSProviderID:     env.GetString("KMS_PROVIDER_ID", "gocloud-kms"),
		KMSKeyName:        env.GetString("KMS_KEY_NAME", "default"),
		KMSAdditionalKeys: env.GetString("KMS_ADDITIONAL_KEYS", ""),

		// Rate Limiting
		RateLimitEnabled:        env.GetBool("RATE_LIMIT_ENABLED", true),
		RateLimitRequestsPerSec: env.GetFloat64("RATE_LIMIT_REQUESTS_PER_SEC", 10.0),
		RateLimitBurst:          env.GetInt("RATE_LIMIT_BURST", 20),

		// CORS
		CORSEnabled:      env.GetBool("CORS_ENABLED", false),
		CORSAllowOrigins: env.GetString("CORS_ALLOW_ORIGINS", ""),

		// Metrics
		MetricsEnabled:   env.GetBool("METRICS_ENABLED", true),
		MetricsNamespace: env.GetString("METRICS_NAMESPACE", "envelope"),
		MetricsPort:      env.GetInt("METRICS_PORT", 8081),
	}
}

// AdditionalKey is one extra wrapping key parsed from KMSAdditionalKeys.
type AdditionalKey struct {
	Name string
	URI  string
}

// AdditionalKeys parses KMSAdditionalKeys. Entries without a name or URI are skipped.
func (c *Config) AdditionalKeys() []AdditionalKey {
	var keys []AdditionalKey
	for entry := range strings.SplitSeq(c.KMSAdditionalKeys, ",") {
		name, uri, ok := strings.Cut(strings.TrimSpace(entry), "=")
		if !ok || name == "" || uri == "" {
			continue
		}
		keys = append(keys, AdditionalKey{Name: name, URI: uri})
	}
	return keys
}

// GetGinMode returns the appropriate Gin mode based on log level.
func (c *Config) GetGinMode() string {
	if c.LogLevel == "debug" {
		return "debug"
	}
	return "release"
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
