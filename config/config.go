package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

const (
	CounterBackendDatabase = "database"
	CounterBackendRedis    = "redis"
)

// Config is the process configuration read from the environment.
type Config struct {
	Port           string
	DatabaseURL    string
	Timezone       *time.Location
	RedisURL       string
	CounterBackend string
	// CounterMaxAttempts bounds the compare-and-swap retries of database counters.
	CounterMaxAttempts int
	OTLPEndpoint       string
	TraceStdout        bool
	AllowedOrigins     []string
	// CodeRateLimit is the number of code validations and quotes a client may
	// make per minute. Zero disables the limit.
	CodeRateLimit int

	// Fee defaults used when a checkout quote does not carry its own fees.
	DeliveryFee  decimal.Decimal
	BagFee       decimal.Decimal
	AdminFee     decimal.Decimal
	AdminFeeType string
}

func LoadEnv() error {
	// Try to load .env file if it exists (for local development).
	// A missing file is not an error: production sets variables directly.
	if err := godotenv.Load(); err != nil {
		return nil
	}
	return nil
}

// ValidateEnv checks that critical environment variables are set.
// Returns an error if any critical variable is missing.
func ValidateEnv() error {
	var missing []string

	if os.Getenv("DATABASE_URL") == "" {
		missing = append(missing, "DATABASE_URL")
	}

	if len(missing) > 0 {
		return fmt.Errorf("critical environment variables not set: %v", missing)
	}

	// Non-critical variables - log warnings but don't fail
	if os.Getenv("OPERATING_TIMEZONE") == "" {
		log.Println("WARNING: OPERATING_TIMEZONE not set - using Europe/London")
	}
	if os.Getenv("COUNTER_BACKEND") == CounterBackendRedis && os.Getenv("REDIS_URL") == "" {
		log.Println("WARNING: REDIS_URL not set - redis counters will connect to localhost:6379")
	}
	if os.Getenv("FRONTEND_URL") == "" {
		log.Println("WARNING: FRONTEND_URL not set - CORS may not work correctly")
	}

	return nil
}

func GetEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// GetEnvInt returns the integer value of key, or defaultValue when unset.
func GetEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s=%q is not a number", key, value)
	}
	return n, nil
}

// GetEnvBool returns the boolean value of key, or defaultValue when unset.
func GetEnvBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%s=%q is not a boolean", key, value)
	}
	return b, nil
}

func getEnvDecimal(key string) (decimal.Decimal, error) {
	value := os.Getenv(key)
	if value == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: %w", key, err)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%s must not be negative", key)
	}
	return d, nil
}

// Load builds a Config from the environment. Call LoadEnv first to pick up a .env file.
func Load() (*Config, error) {
	tzName := GetEnv("OPERATING_TIMEZONE", "Europe/London")
	tz, err := time.LoadLocation(tzName)
	if err != nil {
		return nil, fmt.Errorf("invalid OPERATING_TIMEZONE %q: %w", tzName, err)
	}

	backend := GetEnv("COUNTER_BACKEND", CounterBackendDatabase)
	if backend != CounterBackendDatabase && backend != CounterBackendRedis {
		return nil, fmt.Errorf("invalid COUNTER_BACKEND %q: must be %s or %s", backend, CounterBackendDatabase, CounterBackendRedis)
	}

	cfg := &Config{
		Port:           GetEnv("PORT", "8080"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		Timezone:       tz,
		RedisURL:       GetEnv("REDIS_URL", "redis://localhost:6379/0"),
		CounterBackend: backend,
		OTLPEndpoint:   os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		AllowedOrigins: allowedOrigins(),
		AdminFeeType:   GetEnv("ADMIN_FEE_TYPE", "fixed_amount"),
	}
	if cfg.CounterMaxAttempts, err = GetEnvInt("COUNTER_MAX_ATTEMPTS", 5); err != nil {
		return nil, err
	}
	if cfg.CodeRateLimit, err = GetEnvInt("CODE_RATE_LIMIT_PER_MINUTE", 10); err != nil {
		return nil, err
	}
	if cfg.TraceStdout, err = GetEnvBool("TRACE_STDOUT", false); err != nil {
		return nil, err
	}
	if cfg.CounterMaxAttempts < 1 {
		return nil, fmt.Errorf("COUNTER_MAX_ATTEMPTS must be at least 1")
	}
	if cfg.CodeRateLimit < 0 {
		return nil, fmt.Errorf("CODE_RATE_LIMIT_PER_MINUTE must not be negative")
	}
	if cfg.AdminFeeType != "fixed_amount" && cfg.AdminFeeType != "percentage" {
		return nil, fmt.Errorf("invalid ADMIN_FEE_TYPE %q: must be fixed_amount or percentage", cfg.AdminFeeType)
	}

	if cfg.DeliveryFee, err = getEnvDecimal("DELIVERY_FEE"); err != nil {
		return nil, err
	}
	if cfg.BagFee, err = getEnvDecimal("BAG_FEE"); err != nil {
		return nil, err
	}
	if cfg.AdminFee, err = getEnvDecimal("ADMIN_FEE"); err != nil {
		return nil, err
	}

	return cfg, nil
}

func allowedOrigins() []string {
	origins := []string{"http://localhost:3000"}
	if v := os.Getenv("FRONTEND_URL"); v != "" {
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
	}
	return origins
}
