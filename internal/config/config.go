package config

import (
	"fmt"
	"time"

	"github.com/Netflix/go-env"
)

// Trust-anchor source formats.
const (
	AnchorFormatRootKeys = "rootkeys"
	AnchorFormatJWKS     = "jwks"
)

// Environment variables with defaults
type ServerEnvironment struct {

	// http server settings
	Environment           string        `env:"ENVIRONMENT,default=dev"`
	Host                  string        `env:"HOST,default=0.0.0.0"`
	Port                  int           `env:"PORT,default=8080"`
	LogLevel              string        `env:"LOG_LEVEL,default=debug"`
	ServerShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT,default=10s"`
	ReadTimeout           time.Duration `env:"READ_TIMEOUT,default=15s"`
	WriteTimeout          time.Duration `env:"WRITE_TIMEOUT,default=15s"`
	IdleTimeout           time.Duration `env:"IDLE_TIMEOUT,default=60s"`
	RequestTimeout        time.Duration `env:"REQUEST_TIMEOUT,default=30s"`
	RateLimitRPS          int32         `env:"RATE_LIMIT_RPS,default=100"`
	RateLimitBurst        int32         `env:"RATE_LIMIT_BURST,default=200"`
	MaxRequestSizeBytes   int64         `env:"MAX_REQUEST_SIZE_BYTES,default=1048576"`

	// trust-anchor source settings
	TrustAnchorFormat       string        `env:"TRUST_ANCHOR_FORMAT,default=rootkeys"`
	TrustAnchorFetchTimeout time.Duration `env:"TRUST_ANCHOR_FETCH_TIMEOUT,default=10s"`
	TrustAnchorCacheTTL     time.Duration `env:"TRUST_ANCHOR_CACHE_TTL,default=1h"`
	JWKSMinRefresh          time.Duration `env:"JWKS_MIN_REFRESH,default=10m"`
	JWKSMaxRefresh          time.Duration `env:"JWKS_MAX_REFRESH,default=12h"`

	// Required callback configuration - must be set by environment variables
	RecipientID    string `env:"RECIPIENT_ID,required=true"`
	TrustAnchorURL string `env:"TRUST_ANCHOR_URL,required=true"`
}

var validEnvs = map[string]bool{
	"dev":     true,
	"test":    true,
	"prod":    true,
	"staging": true,
}

var validAnchorFormats = map[string]bool{
	AnchorFormatRootKeys: true,
	AnchorFormatJWKS:     true,
}

// NewServerConfig loads environment variables and returns a ServerEnvironment struct that contains the values
func NewServerConfig() (*ServerEnvironment, error) {
	var cfg ServerEnvironment

	_, err := env.UnmarshalFromEnviron(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal environment variables: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validateConfig checks for required env variables
func validateConfig(cfg *ServerEnvironment) error {
	if cfg.Port < 1 || cfg.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535")
	}
	if !validEnvs[cfg.Environment] {
		return fmt.Errorf("invalid ENVIRONMENT: %s", cfg.Environment)
	}
	if !validAnchorFormats[cfg.TrustAnchorFormat] {
		return fmt.Errorf("invalid TRUST_ANCHOR_FORMAT: %s (must be %s or %s)",
			cfg.TrustAnchorFormat, AnchorFormatRootKeys, AnchorFormatJWKS)
	}
	if cfg.RecipientID == "" {
		return fmt.Errorf("RECIPIENT_ID must not be empty")
	}
	if cfg.TrustAnchorFetchTimeout <= 0 {
		return fmt.Errorf("TRUST_ANCHOR_FETCH_TIMEOUT must be positive")
	}
	if cfg.TrustAnchorCacheTTL <= 0 {
		return fmt.Errorf("TRUST_ANCHOR_CACHE_TTL must be positive")
	}
	if cfg.MaxRequestSizeBytes < 1 {
		return fmt.Errorf("MAX_REQUEST_SIZE_BYTES must be at least 1")
	}
	if cfg.JWKSMinRefresh > cfg.JWKSMaxRefresh {
		return fmt.Errorf("JWKS_MIN_REFRESH (%s) cannot be greater than JWKS_MAX_REFRESH (%s)",
			cfg.JWKSMinRefresh, cfg.JWKSMaxRefresh)
	}

	return nil
}
