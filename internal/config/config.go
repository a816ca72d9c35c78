package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the runtime configuration of the storefront.
type Config struct {
	Port     int
	LogLevel string
	Env      string

	// StorePath is the SQLite file backing the local key-value store.
	// Empty means in-memory.
	StorePath string

	// CatalogPath is the static product catalog JSON file.
	CatalogPath string

	Gateway GatewayConfig
	Kafka   KafkaConfig

	// AbandonWindow is how long after a checkout redirect a return without
	// payment is still classified as an abandonment.
	AbandonWindow time.Duration

	// SweepInterval is the cadence of the background expire/advance/dedup task.
	SweepInterval time.Duration
}

// GatewayConfig holds the hosted-payment gateway settings.
type GatewayConfig struct {
	BaseURL    string
	APIKey     string
	SuccessURL string
	CancelURL  string
}

// KafkaConfig holds the optional order-events relay settings. The relay is
// enabled only when brokers are set.
type KafkaConfig struct {
	Brokers     []string
	OrdersTopic string
}

// Enabled reports whether the relay should be started.
func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}

	return defaultValue
}

// Load reads the configuration from the environment, with a best-effort .env
// file on top.
func Load() (*Config, error) {
	godotenv.Load()

	port, err := strconv.Atoi(getEnv("PORT", "8080"))

	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}

	abandonWindow, err := time.ParseDuration(getEnv("CHECKOUT_ABANDON_WINDOW", "10m"))

	if err != nil {
		return nil, fmt.Errorf("invalid CHECKOUT_ABANDON_WINDOW: %w", err)
	}

	sweepInterval, err := time.ParseDuration(getEnv("SWEEP_INTERVAL", "30s"))

	if err != nil {
		return nil, fmt.Errorf("invalid SWEEP_INTERVAL: %w", err)
	}

	var brokers []string

	if raw := getEnv("KAFKA_BROKERS", ""); raw != "" {
		brokers = strings.Split(raw, ",")
	}

	return &Config{
		Port:        port,
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		Env:         getEnv("APP_ENV", "development"),
		StorePath:   getEnv("STORE_PATH", "shop.db"),
		CatalogPath: getEnv("CATALOG_PATH", "data/products.json"),
		Gateway: GatewayConfig{
			BaseURL:    getEnv("GATEWAY_BASE_URL", "http://localhost:9090"),
			APIKey:     getEnv("GATEWAY_API_KEY", ""),
			SuccessURL: getEnv("CHECKOUT_SUCCESS_URL", "http://localhost:8080/checkout/success"),
			CancelURL:  getEnv("CHECKOUT_CANCEL_URL", "http://localhost:8080/checkout/cancel"),
		},
		Kafka: KafkaConfig{
			Brokers:     brokers,
			OrdersTopic: getEnv("KAFKA_ORDERS_TOPIC", "shop.orders"),
		},
		AbandonWindow: abandonWindow,
		SweepInterval: sweepInterval,
	}, nil
}
