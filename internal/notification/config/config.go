package config

import (
	"fmt"
	"log"
	"os"
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

// Config содержит конфигурацию Notification Service
type Config struct {
	AppEnv          Env
	ConsumerGroup   string
	MailAPIURL      string
	MailAPIKey      string
	MailFromEmail   string
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

	cfg.ConsumerGroup = getString("NOTIFICATION_CONSUMER_GROUP", "notification")

	// Без MAIL_API_KEY сервис работает с no-op sender-ом
	cfg.MailAPIURL = getString("MAIL_API_URL", "https://api.sendgrid.com")
	cfg.MailAPIKey = getString("MAIL_API_KEY", "")
	cfg.MailFromEmail = getString("MAIL_FROM_EMAIL", "noreply@minimarket.local")

	shutdownTimeoutStr := getString("SHUTDOWN_TIMEOUT", "5s")
	shutdownTimeout, err := time.ParseDuration(shutdownTimeoutStr)
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
	if c.ConsumerGroup == "" {
		return fmt.Errorf("NOTIFICATION_CONSUMER_GROUP is required")
	}
	if c.MailAPIKey != "" && c.MailAPIURL == "" {
		return fmt.Errorf("MAIL_API_URL is required when MAIL_API_KEY is set")
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be positive")
	}
	return nil
}

// Log выводит конфигурацию в лог (без секретов)
func (c Config) Log() {
	log.Printf("Config loaded:")
	log.Printf("  APP_ENV: %s", c.AppEnv)
	log.Printf("  NOTIFICATION_CONSUMER_GROUP: %s", c.ConsumerGroup)
	log.Printf("  MAIL_API_URL: %s", c.MailAPIURL)
	log.Printf("  MAIL_API_KEY set: %v", c.MailAPIKey != "")
	log.Printf("  MAIL_FROM_EMAIL: %s", c.MailFromEmail)
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
