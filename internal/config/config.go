package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPPort           string
	BackendURL         string
	RedisAddr          string
	RedisPassword      string
	CartTTL            time.Duration // 0 keeps carts until cleared
	SessionIdleTTL     time.Duration // in-memory cart managers are dropped after this
	SecureCookies      bool
	JWTSecret          string
	KafkaBrokers       []string
	RazorpayKeyID      string
	DefaultCountry     string
	RequestTimeout     time.Duration
	ShutdownTimeout    time.Duration
	MaxRequestBodySize int64
	RateRPS            float64
	RateBurst          int
	LogLevel           string
}

// Load reads an optional .env file and then the environment. Variables
// already set in the environment win over the file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env failed: %w", err)
	}
	return FromEnv()
}

func FromEnv() (*Config, error) {
	var errs []error

	cfg := &Config{
		HTTPPort:           getEnv("HTTP_PORT", "8080"),
		BackendURL:         strings.TrimRight(getEnv("BACKEND_URL", "http://localhost:8001"), "/") + "/api",
		RedisAddr:          getEnv("REDIS_ADDR", ""),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		CartTTL:            parseDuration("CART_TTL", 0, &errs),
		SessionIdleTTL:     parseDuration("SESSION_IDLE_TTL", 30*time.Minute, &errs),
		SecureCookies:      parseBool("SECURE_COOKIES", true, &errs),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		KafkaBrokers:       splitCSV(getEnv("KAFKA_BROKERS", "")),
		RazorpayKeyID:      getEnv("RAZORPAY_KEY_ID", ""),
		DefaultCountry:     getEnv("DEFAULT_COUNTRY", "India"),
		RequestTimeout:     parseDuration("REQUEST_TIMEOUT", 30*time.Second, &errs),
		ShutdownTimeout:    parseDuration("SHUTDOWN_TIMEOUT", 10*time.Second, &errs),
		MaxRequestBodySize: 1 << 20, // 1MB
		RateRPS:            parseFloat("RATE_RPS", 20, &errs),
		RateBurst:          parseInt("RATE_BURST", 40, &errs),
		LogLevel:           strings.ToLower(getEnv("LOG_LEVEL", "info")),
	}

	if cfg.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if cfg.SessionIdleTTL <= 0 {
		errs = append(errs, errors.New("SESSION_IDLE_TTL must be positive"))
	}
	if cfg.CartTTL > 0 && cfg.SessionIdleTTL >= cfg.CartTTL {
		errs = append(errs, errors.New("SESSION_IDLE_TTL must be shorter than CART_TTL"))
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(key string, defaultValue time.Duration, errs *[]error) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return defaultValue
	}
	return d
}

func parseBool(key string, defaultValue bool, errs *[]error) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return defaultValue
	}
	return b
}

func parseInt(key string, defaultValue int, errs *[]error) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return defaultValue
	}
	return i
}

func parseFloat(key string, defaultValue float64, errs *[]error) float64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return defaultValue
	}
	return f
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
