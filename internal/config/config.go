// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ErrMissingSessionSecret is returned by SessionSecret when no signing secret is configured.
// The server treats it as a fatal startup condition.
var ErrMissingSessionSecret = errors.New("config: SESSION_SECRET must be set")

const (
	// EnvProduction is the APP_ENV value that turns on Secure cookies and production logging.
	EnvProduction = "production"

	secretFilePrefix = "file:"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// HTTPAddr is the address the HTTP server listens on (e.g. :3000).
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// HealthGRPCAddr is the address of the ops gRPC health server; empty disables it.
	HealthGRPCAddr string `mapstructure:"HEALTH_GRPC_ADDR"`
	// DatabaseURL is the Postgres DSN.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// SessionSecret signs session tokens. Either the literal secret or "file:<path>".
	SessionSecretValue string `mapstructure:"SESSION_SECRET"`
	// SessionTTLValue is the session lifetime (e.g. "24h").
	SessionTTLValue string `mapstructure:"SESSION_TTL"`
	// Env is the application environment (e.g. "development", "production").
	Env string `mapstructure:"APP_ENV"`
	// LogLevel is the zap level (debug, info, warn, error).
	LogLevel string `mapstructure:"LOG_LEVEL"`

	// UploadDir is where attachment blobs are written.
	UploadDir string `mapstructure:"UPLOAD_DIR"`
	// UploadMaxBytes caps a single attachment upload.
	UploadMaxBytes int64 `mapstructure:"UPLOAD_MAX_BYTES"`
	// PublicBaseURL prefixes share links (e.g. https://tasks.example.com).
	PublicBaseURL string `mapstructure:"PUBLIC_BASE_URL"`

	// RedisAddr enables login throttling when set.
	RedisAddr string `mapstructure:"REDIS_ADDR"`
	// RedisPassword is the optional Redis AUTH password.
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	// LoginMaxAttempts is the number of login attempts allowed per email per window.
	LoginMaxAttempts int `mapstructure:"LOGIN_MAX_ATTEMPTS"`
	// LoginWindowValue is the throttle window (e.g. "15m").
	LoginWindowValue string `mapstructure:"LOGIN_WINDOW"`

	// KafkaBrokers is a comma-separated broker list; when set, audit events are also published to Kafka.
	KafkaBrokers string `mapstructure:"KAFKA_BROKERS"`
	// AuditKafkaTopic is the Kafka topic for audit events.
	AuditKafkaTopic string `mapstructure:"AUDIT_KAFKA_TOPIC"`
	// AuditQueueSize bounds the in-process audit queue.
	AuditQueueSize int `mapstructure:"AUDIT_QUEUE_SIZE"`

	// OTLPEndpoint is the OpenTelemetry collector endpoint; empty means no-op providers.
	OTLPEndpoint string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	// OTLPInsecure forces a plaintext OTLP connection.
	OTLPInsecure bool `mapstructure:"OTEL_EXPORTER_OTLP_INSECURE"`
	// OTelServiceName is the service.name resource attribute.
	OTelServiceName string `mapstructure:"OTEL_SERVICE_NAME"`

	// SessionSweepSchedule is the cron spec of the expired-session sweeper (worker only).
	SessionSweepSchedule string `mapstructure:"SESSION_SWEEP_SCHEDULE"`

	// AzureKeyVaultURL, when set, lets SESSION_SECRET and DATABASE_URL come from Azure Key Vault.
	AzureKeyVaultURL string `mapstructure:"AZURE_KEY_VAULT_URL"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env. When AZURE_KEY_VAULT_URL is set,
// secrets left empty by the environment are fetched from the vault.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":3000")
	v.SetDefault("HEALTH_GRPC_ADDR", "")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("SESSION_SECRET", "")
	v.SetDefault("SESSION_TTL", "24h")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("UPLOAD_DIR", "uploads")
	v.SetDefault("UPLOAD_MAX_BYTES", 5*1024*1024)
	v.SetDefault("PUBLIC_BASE_URL", "http://localhost:3000")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("LOGIN_MAX_ATTEMPTS", 10)
	v.SetDefault("LOGIN_WINDOW", "15m")
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("AUDIT_KAFKA_TOPIC", "taskhub-audit")
	v.SetDefault("AUDIT_QUEUE_SIZE", 256)
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	v.SetDefault("OTEL_EXPORTER_OTLP_INSECURE", false)
	v.SetDefault("OTEL_SERVICE_NAME", "taskhub")
	v.SetDefault("SESSION_SWEEP_SCHEDULE", "@every 1h")
	v.SetDefault("AZURE_KEY_VAULT_URL", "")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.HTTPAddr == "" {
		return nil, errors.New("config: HTTP_ADDR must be set")
	}
	if cfg.UploadMaxBytes <= 0 {
		return nil, errors.New("config: UPLOAD_MAX_BYTES must be positive")
	}
	if cfg.LoginMaxAttempts <= 0 {
		return nil, errors.New("config: LOGIN_MAX_ATTEMPTS must be positive")
	}
	if cfg.AuditQueueSize <= 0 {
		cfg.AuditQueueSize = 256
	}

	if cfg.AzureKeyVaultURL != "" {
		src, err := NewKeyVaultSource(cfg.AzureKeyVaultURL)
		if err != nil {
			return nil, err
		}
		if err := resolveSecrets(context.Background(), &cfg, src); err != nil {
			return nil, err
		}
	}

	return &cfg, nil
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return c != nil && strings.EqualFold(c.Env, EnvProduction)
}

// SessionSecret returns the signing secret. A value of the form "file:<path>" is read from disk
// and trimmed. Returns ErrMissingSessionSecret when nothing is configured.
func (c *Config) SessionSecret() ([]byte, error) {
	if c == nil {
		return nil, ErrMissingSessionSecret
	}
	raw := strings.TrimSpace(c.SessionSecretValue)
	if raw == "" {
		return nil, ErrMissingSessionSecret
	}
	if strings.HasPrefix(raw, secretFilePrefix) {
		b, err := os.ReadFile(strings.TrimPrefix(raw, secretFilePrefix))
		if err != nil {
			return nil, fmt.Errorf("config: read SESSION_SECRET file: %w", err)
		}
		raw = strings.TrimSpace(string(b))
		if raw == "" {
			return nil, ErrMissingSessionSecret
		}
	}
	return []byte(raw), nil
}

// SessionTTL parses SessionTTLValue. Returns 24h if unset or invalid.
func (c *Config) SessionTTL() time.Duration {
	d, err := time.ParseDuration(c.SessionTTLValue)
	if err != nil || d <= 0 {
		return 24 * time.Hour
	}
	return d
}

// LoginWindow parses LoginWindowValue. Returns 15m if unset or invalid.
func (c *Config) LoginWindow() time.Duration {
	d, err := time.ParseDuration(c.LoginWindowValue)
	if err != nil || d <= 0 {
		return 15 * time.Minute
	}
	return d
}

// KafkaBrokersList returns Kafka broker addresses from the comma-separated config.
// An empty list means the Kafka audit sink is disabled.
func (c *Config) KafkaBrokersList() []string {
	if c == nil || c.KafkaBrokers == "" {
		return nil
	}
	parts := strings.Split(c.KafkaBrokers, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
