package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the authorization server's runtime configuration, loaded
// entirely from the environment.
type Config struct {
	HTTPListenAddr string // HTTP_LISTEN_ADDR
	DatabaseURL    string // DATABASE_URL
	LogLevel       string // LOG_LEVEL

	IssuerURL   string // ISSUER_URL — the "iss" value and discovery-document base
	ServiceName string // SERVICE_NAME
	NodeID      string // NODE_ID

	MetricsAddr string // METRICS_ADDR — listen addr for /metrics

	SigningKeyRotationDays int // SIGNING_KEY_ROTATION_DAYS — default 30

	AuthCodeTTLSeconds    int // AUTH_CODE_TTL_SECONDS — default 60
	AccessTokenTTLSeconds int // ACCESS_TOKEN_TTL_SECONDS — default 3600

	AdminAPIKeyHeader string // ADMIN_API_KEY_HEADER — default X-API-Key

	LoginURL          string // LOGIN_URL — where AuthorizeInit redirects unauthenticated callers
	ConsentTTLSeconds int    // CONSENT_TTL_SECONDS — default 7776000 (90 days)
}

func Load() (*Config, error) {
	cfg := &Config{
		HTTPListenAddr: getEnv("HTTP_LISTEN_ADDR", ":8090"),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		LogLevel:       getEnv("LOG_LEVEL", "info"),

		IssuerURL:   getEnv("ISSUER_URL", "http://localhost:8090"),
		ServiceName: getEnv("SERVICE_NAME", "authzd"),
		NodeID:      getEnv("NODE_ID", ""),

		MetricsAddr: getEnv("METRICS_ADDR", ""),

		SigningKeyRotationDays: getEnvInt("SIGNING_KEY_ROTATION_DAYS", 30),

		AuthCodeTTLSeconds:    getEnvInt("AUTH_CODE_TTL_SECONDS", 60),
		AccessTokenTTLSeconds: getEnvInt("ACCESS_TOKEN_TTL_SECONDS", 3600),

		AdminAPIKeyHeader: getEnv("ADMIN_API_KEY_HEADER", "X-API-Key"),

		LoginURL:          getEnv("LOGIN_URL", ""),
		ConsentTTLSeconds: getEnvInt("CONSENT_TTL_SECONDS", 7776000),
	}

	return cfg, nil
}

// AuthCodeTTL returns the configured authorization-code lifetime as a duration.
func (c *Config) AuthCodeTTL() time.Duration {
	return time.Duration(c.AuthCodeTTLSeconds) * time.Second
}

// AccessTokenTTL returns the configured access-token lifetime as a duration.
func (c *Config) AccessTokenTTL() time.Duration {
	return time.Duration(c.AccessTokenTTLSeconds) * time.Second
}

// ConsentTTL returns how long a recorded consent grant remains valid.
func (c *Config) ConsentTTL() time.Duration {
	return time.Duration(c.ConsentTTLSeconds) * time.Second
}

// Validate checks that all required config fields are set for the given binary.
func (c *Config) Validate(binary string) error {
	var missing []string

	switch binary {
	case "authzd":
		if c.DatabaseURL == "" {
			missing = append(missing, "DATABASE_URL")
		}
		if c.HTTPListenAddr == "" {
			missing = append(missing, "HTTP_LISTEN_ADDR")
		}
		if c.IssuerURL == "" {
			missing = append(missing, "ISSUER_URL")
		}
		if c.LoginURL == "" {
			missing = append(missing, "LOGIN_URL")
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required config: %s", strings.Join(missing, ", "))
	}

	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
