package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"
)

// Env представляет окружение приложения
type Env string

const (
	// EnvLocal - локальное окружение (для разработки на хосте)
	EnvLocal Env = "local"
	// EnvDocker - Docker окружение (для запуска в контейнерах)
	EnvDocker Env = "docker"
)

// Config содержит конфигурацию Order Service
type Config struct {
	AppEnv   Env
	HTTPAddr string

	// Базовые URL внешних сервисов для синхронных lookup-ов
	MerchantBaseURL  string
	BuyerBaseURL     string
	InventoryBaseURL string
	LookupTimeout    time.Duration

	// PostgresDSN включает postgres хранилище; пустое значение
	// означает in-memory репозиторий
	PostgresDSN string

	ConsumerGroup   string
	OutboxBatchSize int
	OutboxInterval  time.Duration
	ShutdownTimeout time.Duration
}

// Load загружает конфигурацию из переменных окружения
// Читает APP_ENV и устанавливает дефолты в зависимости от окружения
func Load() (Config, error) {
	cfg := Config{}

	appEnvStr := getString("APP_ENV", string(EnvLocal))
	appEnv := Env(appEnvStr)
	if appEnv != EnvLocal && appEnv != EnvDocker {
		return Config{}, fmt.Errorf("invalid APP_ENV: %s (must be 'local' or 'docker')", appEnvStr)
	}
	cfg.AppEnv = appEnv

	if cfg.AppEnv == EnvLocal {
		cfg.HTTPAddr = getString("HTTP_ADDR", "127.0.0.1:8000")
		cfg.MerchantBaseURL = getString("MERCHANT_BASE_URL", "http://127.0.0.1:8001")
		cfg.BuyerBaseURL = getString("BUYER_BASE_URL", "http://127.0.0.1:8002")
		cfg.InventoryBaseURL = getString("INVENTORY_BASE_URL", "http://127.0.0.1:8003")
	} else {
		cfg.HTTPAddr = getString("HTTP_ADDR", "0.0.0.0:8000")
		cfg.MerchantBaseURL = getString("MERCHANT_BASE_URL", "http://merchant:8001")
		cfg.BuyerBaseURL = getString("BUYER_BASE_URL", "http://buyer:8002")
		cfg.InventoryBaseURL = getString("INVENTORY_BASE_URL", "http://inventory:8003")
	}

	lookupTimeout, err := time.ParseDuration(getString("LOOKUP_TIMEOUT", "3s"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid LOOKUP_TIMEOUT: %w", err)
	}
	cfg.LookupTimeout = lookupTimeout

	cfg.PostgresDSN = getString("ORDER_POSTGRES_DSN", "")
	cfg.ConsumerGroup = getString("ORDER_CONSUMER_GROUP", "order")
	cfg.OutboxBatchSize = getInt("OUTBOX_BATCH_SIZE", 100)

	outboxInterval, err := time.ParseDuration(getString("OUTBOX_INTERVAL", "1s"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid OUTBOX_INTERVAL: %w", err)
	}
	cfg.OutboxInterval = outboxInterval

	shutdownTimeout, err := time.ParseDuration(getString("SHUTDOWN_TIMEOUT", "5s"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid SHUTDOWN_TIMEOUT: %w", err)
	}
	cfg.ShutdownTimeout = shutdownTimeout

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate проверяет корректность конфигурации
func (c Config) Validate() error {
	if c.HTTPAddr == "" {
		return fmt.Errorf("HTTP_ADDR is required")
	}
	if c.MerchantBaseURL == "" || c.BuyerBaseURL == "" || c.InventoryBaseURL == "" {
		return fmt.Errorf("MERCHANT_BASE_URL, BUYER_BASE_URL and INVENTORY_BASE_URL are required")
	}
	if c.LookupTimeout <= 0 {
		return fmt.Errorf("LOOKUP_TIMEOUT must be positive")
	}
	if c.ConsumerGroup == "" {
		return fmt.Errorf("ORDER_CONSUMER_GROUP is required")
	}
	if c.OutboxBatchSize <= 0 {
		return fmt.Errorf("OUTBOX_BATCH_SIZE must be positive")
	}
	if c.OutboxInterval <= 0 {
		return fmt.Errorf("OUTBOX_INTERVAL must be positive")
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be positive")
	}
	return nil
}

// Log выводит конфигурацию в лог (DSN с паролем не печатается целиком)
func (c Config) Log() {
	log.Printf("Config loaded:")
	log.Printf("  APP_ENV: %s", c.AppEnv)
	log.Printf("  HTTP_ADDR: %s", c.HTTPAddr)
	log.Printf("  MERCHANT_BASE_URL: %s", c.MerchantBaseURL)
	log.Printf("  BUYER_BASE_URL: %s", c.BuyerBaseURL)
	log.Printf("  INVENTORY_BASE_URL: %s", c.InventoryBaseURL)
	log.Printf("  LOOKUP_TIMEOUT: %s", c.LookupTimeout)
	log.Printf("  ORDER_POSTGRES_DSN set: %v", c.PostgresDSN != "")
	log.Printf("  ORDER_CONSUMER_GROUP: %s", c.ConsumerGroup)
	log.Printf("  OUTBOX_BATCH_SIZE: %d", c.OutboxBatchSize)
	log.Printf("  OUTBOX_INTERVAL: %s", c.OutboxInterval)
	log.Printf("  SHUTDOWN_TIMEOUT: %s", c.ShutdownTimeout)
}

// getString читает переменную окружения или возвращает дефолт
func getString(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getInt читает целочисленную переменную окружения или возвращает дефолт
func getInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}
