package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/joho/godotenv"
)

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Config holds environment-driven configuration.
type Config struct {
	Addr string

	Store       string
	DatabaseURL string
	DBDriver    string

	JWTSecret    string
	JWTTTL       time.Duration
	AuthRequired bool
	BcryptCost   int

	RedisURL string
	CacheTTL time.Duration

	RateLimitAuthRPS   float64
	RateLimitAuthBurst int

	CORSAllowOrigins string
	SeedData         bool
}

// Load reads .env (when present) and then environment variables.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Info("no .env file found, using environment variables")
	}

	return Config{
		Addr:               getEnv("MARKET_ADDR", ":8080"),
		Store:              getEnv("STORE", StorePostgres),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		DBDriver:           getEnv("DB_DRIVER", "pgx"),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		JWTTTL:             time.Duration(getEnvInt("JWT_TTL_HOURS", 72)) * time.Hour,
		AuthRequired:       getEnv("AUTH_REQUIRED", "0") == "1",
		BcryptCost:         getEnvInt("BCRYPT_COST", 10),
		RedisURL:           getEnv("REDIS_URL", ""),
		CacheTTL:           time.Duration(getEnvInt("CACHE_TTL_SECONDS", 60)) * time.Second,
		RateLimitAuthRPS:   getEnvFloat("RATE_LIMIT_AUTH_RPS", 5),
		RateLimitAuthBurst: getEnvInt("RATE_LIMIT_AUTH_BURST", 10),
		CORSAllowOrigins:   getEnv("CORS_ALLOW_ORIGINS", "*"),
		SeedData:           getEnv("SEED_DATA", "0") == "1",
	}
}

// Validate reports settings that make the server unable to start.
func (c Config) Validate() error {
	var errs []error
	switch c.Store {
	case StorePostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is not set"))
		}
		if c.DBDriver != "pgx" && c.DBDriver != "postgres" {
			errs = append(errs, errors.New("DB_DRIVER must be pgx or postgres"))
		}
	case StoreMemory:
	default:
		errs = append(errs, errors.New("STORE must be postgres or memory"))
	}
	if c.AuthRequired && c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required when AUTH_REQUIRED=1"))
	}
	return errors.Join(errs...)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil && intValue > 0 {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil && floatValue > 0 {
			return floatValue
		}
	}
	return defaultValue
}
