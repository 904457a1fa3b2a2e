package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ovaphlow/pitchfork/service-community-go/pkg/database"
	"github.com/ovaphlow/pitchfork/service-community-go/pkg/utilities"
)

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"

	// DefaultJWTSecret is used when JWT_SECRET is unset; callers should warn.
	DefaultJWTSecret = "your-secret-key"
)

// Config holds the process-wide settings. It is built once at startup and
// treated as read-only afterwards.
type Config struct {
	Port          int
	Store         string
	Database      database.Config
	JWTSecret     string
	TokenTTL      time.Duration
	SnowflakeNode int64
	CORSOrigins   []string
}

// Load reads configuration from environment variables, applying defaults.
func Load() (*Config, error) {
	port, err := strconv.Atoi(getEnv("PORT", "3000"))
	if err != nil {
		return nil, fmt.Errorf("PORT: %w", err)
	}

	storeDriver := strings.ToLower(getEnv("STORE_DRIVER", StorePostgres))
	if storeDriver != StorePostgres && storeDriver != StoreMemory {
		return nil, fmt.Errorf("STORE_DRIVER: unsupported value %q", storeDriver)
	}

	ttl, err := ParseTTL(getEnv("JWT_EXPIRES_IN", "1d"))
	if err != nil {
		return nil, fmt.Errorf("JWT_EXPIRES_IN: %w", err)
	}

	return &Config{
		Port:          port,
		Store:         storeDriver,
		Database:      database.ConfigFromEnv(),
		JWTSecret:     getEnv("JWT_SECRET", DefaultJWTSecret),
		TokenTTL:      ttl,
		SnowflakeNode: utilities.NodeFromEnv(),
		CORSOrigins:   splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
	}, nil
}

// ParseTTL accepts a Go duration ("90m"), a day count ("1d") or a bare
// number of seconds ("3600"). The result must be positive.
func ParseTTL(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	var d time.Duration
	switch {
	case s == "":
		return 0, fmt.Errorf("empty duration")
	case strings.HasSuffix(s, "d"):
		n, err := strconv.Atoi(strings.TrimSuffix(s, "d"))
		if err != nil {
			return 0, fmt.Errorf("invalid day count %q", s)
		}
		d = time.Duration(n) * 24 * time.Hour
	default:
		if n, err := strconv.Atoi(s); err == nil {
			d = time.Duration(n) * time.Second
			break
		}
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return 0, err
		}
		d = parsed
	}
	if d <= 0 {
		return 0, fmt.Errorf("duration %q must be positive", s)
	}
	return d, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Helper to get an environment variable with a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}
