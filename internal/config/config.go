// Package config handles application configuration loading from environment
// variables. It provides a centralized Config struct used across the application.
package config

import (
	"fmt"
	"os"
	"time"
)

// Document backends selectable with DOCSTORE_DRIVER.
const (
	DriverPostgres  = "postgres"
	DriverFirestore = "firestore"
	DriverMemory    = "memory"
)

// Config holds all application configuration values loaded from the environment.
type Config struct {
	// Server settings
	Host string
	Port string
	Env  string // "development", "production", "testing"

	// Document backend: postgres, firestore or memory
	DocstoreDriver string

	// PostgreSQL connection
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Firestore
	FirestoreProjectID       string
	FirestoreCredentialsFile string

	// Valkey (Redis-compatible cache)
	ValkeyHost     string
	ValkeyPort     string
	ValkeyPassword string
	ListCacheTTL   time.Duration

	// S3-compatible media host
	S3Endpoint  string
	S3Region    string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string
	S3PublicURL string

	// Shared admin password, plain or bcrypt hash
	AdminPassword     string
	AdminPasswordHash string

	// Resend email for contact and join submissions
	ResendAPIKey string
	MailFrom     string
	MailTo       string
}

// Load reads configuration from environment variables, applying defaults
// for development where appropriate. Returns an error if critical values
// are missing in production mode.
func Load() (*Config, error) {
	cfg := &Config{
		Host: envOrDefault("APP_HOST", "0.0.0.0"),
		Port: envOrDefault("APP_PORT", "8080"),
		Env:  envOrDefault("APP_ENV", "development"),

		DocstoreDriver: envOrDefault("DOCSTORE_DRIVER", DriverPostgres),

		DBHost:     envOrDefault("POSTGRES_HOST", "localhost"),
		DBPort:     envOrDefault("POSTGRES_PORT", "5432"),
		DBUser:     envOrDefault("POSTGRES_USER", "ventureclub"),
		DBPassword: envOrDefault("POSTGRES_PASSWORD", "changeme"),
		DBName:     envOrDefault("POSTGRES_DB", "ventureclub"),

		FirestoreProjectID:       os.Getenv("FIRESTORE_PROJECT_ID"),
		FirestoreCredentialsFile: os.Getenv("FIRESTORE_CREDENTIALS_FILE"),

		ValkeyHost:     envOrDefault("VALKEY_HOST", "localhost"),
		ValkeyPort:     envOrDefault("VALKEY_PORT", "6379"),
		ValkeyPassword: os.Getenv("VALKEY_PASSWORD"),

		S3Endpoint:  os.Getenv("S3_ENDPOINT"),
		S3Region:    envOrDefault("S3_REGION", "fsn1"),
		S3AccessKey: os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey: os.Getenv("S3_SECRET_KEY"),
		S3Bucket:    envOrDefault("S3_BUCKET", "ventureclub-media"),
		S3PublicURL: os.Getenv("S3_PUBLIC_URL"),

		AdminPassword:     os.Getenv("ADMIN_PASSWORD"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),

		ResendAPIKey: os.Getenv("RESEND_API_KEY"),
		MailFrom:     envOrDefault("MAIL_FROM", "Venture Club <noreply@ventureclub.local>"),
		MailTo:       os.Getenv("MAIL_TO"),
	}

	ttl, err := time.ParseDuration(envOrDefault("LIST_CACHE_TTL", "5m"))
	if err != nil {
		return nil, fmt.Errorf("LIST_CACHE_TTL: %w", err)
	}
	cfg.ListCacheTTL = ttl

	switch cfg.DocstoreDriver {
	case DriverPostgres, DriverMemory:
	case DriverFirestore:
		if cfg.FirestoreProjectID == "" {
			return nil, fmt.Errorf("FIRESTORE_PROJECT_ID must be set for the firestore driver")
		}
	default:
		return nil, fmt.Errorf("DOCSTORE_DRIVER %q is not one of postgres, firestore, memory", cfg.DocstoreDriver)
	}

	if cfg.Env == "production" {
		if cfg.DocstoreDriver == DriverPostgres && cfg.DBPassword == "changeme" {
			return nil, fmt.Errorf("POSTGRES_PASSWORD must be set in production")
		}
		if cfg.DocstoreDriver == DriverMemory {
			return nil, fmt.Errorf("DOCSTORE_DRIVER=memory is not allowed in production")
		}
		if cfg.AdminPassword == "" && cfg.AdminPasswordHash == "" {
			return nil, fmt.Errorf("ADMIN_PASSWORD or ADMIN_PASSWORD_HASH must be set in production")
		}
	}

	return cfg, nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// SecureCookies reports whether session cookies are marked Secure.
func (c *Config) SecureCookies() bool {
	return c.Env == "production"
}

// MailConfigured reports whether contact and join submissions can be sent.
func (c *Config) MailConfigured() bool {
	return c.ResendAPIKey != "" && c.MailTo != ""
}

// MediaConfigured reports whether uploads can reach the media host.
func (c *Config) MediaConfigured() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

// envOrDefault reads an environment variable, returning a fallback if unset or empty.
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
