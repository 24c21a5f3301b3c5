package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL    string
	HTTPAddr       string
	AuthServiceURL string
	AuthTimeout    time.Duration

	PublishWorkers  int
	PublishTimeout  time.Duration
	ConsumerWorkers int
	ConsumerRetries int
	ConsumerBackoff time.Duration
	DeliveryTimeout time.Duration
}

func Load() (Config, error) {
	// Local development convenience; absence of a .env file is fine.
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL is required")
	}

	authURL := os.Getenv("AUTH_SERVICE_URL")
	if authURL == "" {
		return Config{}, fmt.Errorf("AUTH_SERVICE_URL is required")
	}

	return Config{
		DatabaseURL:    dbURL,
		HTTPAddr:       getenvDefault("HTTP_ADDR", ":8080"),
		AuthServiceURL: authURL,
		AuthTimeout:    durationEnv("AUTH_TIMEOUT", 3*time.Second),

		PublishWorkers:  intEnv("PUBLISH_WORKERS", 4),
		PublishTimeout:  durationEnv("PUBLISH_TIMEOUT", 2*time.Second),
		ConsumerWorkers: intEnv("CONSUMER_WORKERS", 4),
		ConsumerRetries: intEnv("CONSUMER_MAX_ATTEMPTS", 3),
		ConsumerBackoff: durationEnv("CONSUMER_RETRY_BACKOFF", 500*time.Millisecond),
		DeliveryTimeout: durationEnv("DELIVERY_TIMEOUT", 5*time.Second),
	}, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func intEnv(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func durationEnv(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return def
}
