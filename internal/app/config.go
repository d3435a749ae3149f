package app

import (
	"os"
	"strings"
	"time"
)

// Config описывает настройки запуска приложения.
type Config struct {
	HTTPAddr    string
	MetricsAddr string

	// PostgresDSN пустой — заказы живут в памяти процесса.
	PostgresDSN string

	// KafkaBrokers пустой — каталог заменяется встроенным mock-валидатором,
	// события заказов не публикуются.
	KafkaBrokers []string

	ValidationRequestTopic string
	ValidationReplyTopic   string
	ValidationTimeout      time.Duration
	OrderEventsTopic       string
	ConsumerGroup          string
}

// DefaultConfig возвращает базовые настройки для локального запуска.
func DefaultConfig() Config {
	return Config{
		HTTPAddr:               ":8080",
		MetricsAddr:            ":9090",
		ValidationRequestTopic: "orders.catalog.validation.requests",
		ValidationReplyTopic:   "orders.catalog.validation.replies",
		ValidationTimeout:      5 * time.Second,
		OrderEventsTopic:       "orders.order.events",
		ConsumerGroup:          "order-service",
	}
}

// LoadConfig собирает конфигурацию из окружения поверх значений по умолчанию.
func LoadConfig() Config {
	cfg := DefaultConfig()

	if v := os.Getenv("ORDERS_HTTP_ADDR"); v != "" {
		cfg.HTTPAddr = v
	}
	if v := os.Getenv("ORDERS_METRICS_ADDR"); v != "" {
		cfg.MetricsAddr = v
	}
	if v := os.Getenv("ORDERS_POSTGRES_DSN"); v != "" {
		cfg.PostgresDSN = v
	}
	if v := os.Getenv("ORDERS_KAFKA_BROKERS"); v != "" {
		cfg.KafkaBrokers = splitBrokers(v)
	}
	if v := os.Getenv("ORDERS_VALIDATION_REQUEST_TOPIC"); v != "" {
		cfg.ValidationRequestTopic = v
	}
	if v := os.Getenv("ORDERS_VALIDATION_REPLY_TOPIC"); v != "" {
		cfg.ValidationReplyTopic = v
	}
	if v := os.Getenv("ORDERS_VALIDATION_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.ValidationTimeout = d
		}
	}
	if v := os.Getenv("ORDERS_EVENTS_TOPIC"); v != "" {
		cfg.OrderEventsTopic = v
	}
	if v := os.Getenv("ORDERS_CONSUMER_GROUP"); v != "" {
		cfg.ConsumerGroup = v
	}

	return cfg
}

func splitBrokers(raw string) []string {
	parts := strings.Split(raw, ",")
	brokers := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			brokers = append(brokers, part)
		}
	}
	return brokers
}
