package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config captures environment driven configuration values for the scheduler service.
type Config struct {
	HTTPPort        int
	SQLiteDSN       string
	JWTSecret       string
	JWTIssuer       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	RedisAddr       string
	CacheTTL        time.Duration
	RateLimit       float64
	RateBurst       int
	MaxOccurrences  int
	SeedData        bool
	AdminPassword   string
	FacultyPassword string
	CORSOrigins     []string
}

// Load parses configuration from the process environment, reading a .env
// file first when one is present.
//
// The loader applies defaults for optional fields while validating required
// values and reporting every missing or malformed entry at once.
func Load() (Config, error) {
	// A missing .env file is not an error; real deployments set the
	// environment directly.
	_ = godotenv.Load()

	cfg := Config{
		HTTPPort:        8080,
		SQLiteDSN:       "file:scheduler.db?_foreign_keys=on",
		JWTIssuer:       "classroom-scheduler",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 7 * 24 * time.Hour,
		CacheTTL:        5 * time.Minute,
		RateLimit:       50,
		RateBurst:       100,
		MaxOccurrences:  366,
		SeedData:        true,
		AdminPassword:   "admin123",
		FacultyPassword: "faculty123",
		CORSOrigins:     []string{"*"},
	}

	missing := make([]string, 0, 1)
	invalid := make([]string, 0, 4)

	if portValue := strings.TrimSpace(os.Getenv("SCHEDULER_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "SCHEDULER_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("SCHEDULER_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if secret := strings.TrimSpace(os.Getenv("SCHEDULER_JWT_SECRET")); secret == "" {
		missing = append(missing, "SCHEDULER_JWT_SECRET")
	} else {
		cfg.JWTSecret = secret
	}

	if issuer := strings.TrimSpace(os.Getenv("SCHEDULER_JWT_ISSUER")); issuer != "" {
		cfg.JWTIssuer = issuer
	}

	if ttlValue := strings.TrimSpace(os.Getenv("SCHEDULER_ACCESS_TOKEN_TTL")); ttlValue != "" {
		ttl, err := time.ParseDuration(ttlValue)
		if err != nil || ttl <= 0 {
			invalid = append(invalid, "SCHEDULER_ACCESS_TOKEN_TTL")
		} else {
			cfg.AccessTokenTTL = ttl
		}
	}

	if ttlValue := strings.TrimSpace(os.Getenv("SCHEDULER_REFRESH_TOKEN_TTL")); ttlValue != "" {
		ttl, err := time.ParseDuration(ttlValue)
		if err != nil || ttl <= 0 {
			invalid = append(invalid, "SCHEDULER_REFRESH_TOKEN_TTL")
		} else {
			cfg.RefreshTokenTTL = ttl
		}
	}

	// Empty means no Redis: the service runs without the query cache.
	cfg.RedisAddr = strings.TrimSpace(os.Getenv("SCHEDULER_REDIS_ADDR"))

	if ttlValue := strings.TrimSpace(os.Getenv("SCHEDULER_CACHE_TTL")); ttlValue != "" {
		ttl, err := time.ParseDuration(ttlValue)
		if err != nil || ttl <= 0 {
			invalid = append(invalid, "SCHEDULER_CACHE_TTL")
		} else {
			cfg.CacheTTL = ttl
		}
	}

	if limitValue := strings.TrimSpace(os.Getenv("SCHEDULER_RATE_LIMIT")); limitValue != "" {
		limit, err := strconv.ParseFloat(limitValue, 64)
		if err != nil || limit <= 0 {
			invalid = append(invalid, "SCHEDULER_RATE_LIMIT")
		} else {
			cfg.RateLimit = limit
		}
	}

	if burstValue := strings.TrimSpace(os.Getenv("SCHEDULER_RATE_BURST")); burstValue != "" {
		burst, err := strconv.Atoi(burstValue)
		if err != nil || burst <= 0 {
			invalid = append(invalid, "SCHEDULER_RATE_BURST")
		} else {
			cfg.RateBurst = burst
		}
	}

	if maxValue := strings.TrimSpace(os.Getenv("SCHEDULER_MAX_OCCURRENCES")); maxValue != "" {
		max, err := strconv.Atoi(maxValue)
		if err != nil || max <= 0 {
			invalid = append(invalid, "SCHEDULER_MAX_OCCURRENCES")
		} else {
			cfg.MaxOccurrences = max
		}
	}

	if seedValue := strings.TrimSpace(os.Getenv("SCHEDULER_SEED_DATA")); seedValue != "" {
		seed, err := strconv.ParseBool(seedValue)
		if err != nil {
			invalid = append(invalid, "SCHEDULER_SEED_DATA")
		} else {
			cfg.SeedData = seed
		}
	}

	if password := strings.TrimSpace(os.Getenv("SCHEDULER_ADMIN_PASSWORD")); password != "" {
		cfg.AdminPassword = password
	}
	if password := strings.TrimSpace(os.Getenv("SCHEDULER_FACULTY_PASSWORD")); password != "" {
		cfg.FacultyPassword = password
	}

	if origins := strings.TrimSpace(os.Getenv("SCHEDULER_CORS_ORIGINS")); origins != "" {
		parts := strings.Split(origins, ",")
		cfg.CORSOrigins = cfg.CORSOrigins[:0]
		for _, part := range parts {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				cfg.CORSOrigins = append(cfg.CORSOrigins, trimmed)
			}
		}
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variable values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}
