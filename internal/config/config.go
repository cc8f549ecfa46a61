// Package config содержит логику чтения конфигурации сервиса оформления заказа.
package config

import (
	"flag"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config содержит параметры конфигурации сервиса оформления заказа.
type Config struct {
	RunAddress         string        `env:"RUN_ADDRESS"`
	DatabaseURI        string        `env:"DATABASE_URI"`
	RedisAddress       string        `env:"REDIS_ADDRESS"`
	TransactionAddress string        `env:"TRANSACTION_ADDRESS"`
	CatalogAddress     string        `env:"CATALOG_ADDRESS"`
	SessionSecret      string        `env:"SESSION_SECRET"`
	SessionTTL         time.Duration `env:"SESSION_TTL"`
}

// Parse считывает конфигурацию из .env, переменных окружения и флагов командной строки.
func Parse() (*Config, error) {
	// .env необязателен: в контейнере значения приходят из окружения.
	_ = godotenv.Load()

	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	envRunAddress := cfg.RunAddress
	envDatabaseURI := cfg.DatabaseURI
	envRedisAddress := cfg.RedisAddress
	envTransactionAddress := cfg.TransactionAddress
	envCatalogAddress := cfg.CatalogAddress
	envSessionSecret := cfg.SessionSecret
	envSessionTTL := cfg.SessionTTL

	flag.StringVar(&cfg.RunAddress, "a", "localhost:8080", "address and port for HTTP server")
	flag.StringVar(&cfg.DatabaseURI, "d", "", "database URI for draft storage")
	flag.StringVar(&cfg.RedisAddress, "r", "", "redis address for draft storage")
	flag.StringVar(&cfg.TransactionAddress, "t", "", "transaction service address")
	flag.StringVar(&cfg.CatalogAddress, "c", "", "product catalog address")
	flag.StringVar(&cfg.SessionSecret, "s", "", "session cookie signing secret")
	flag.DurationVar(&cfg.SessionTTL, "ttl", 30*time.Minute, "checkout session time to live")

	flag.Parse()

	if envRunAddress != "" {
		cfg.RunAddress = envRunAddress
	}
	if envDatabaseURI != "" {
		cfg.DatabaseURI = envDatabaseURI
	}
	if envRedisAddress != "" {
		cfg.RedisAddress = envRedisAddress
	}
	if envTransactionAddress != "" {
		cfg.TransactionAddress = envTransactionAddress
	}
	if envCatalogAddress != "" {
		cfg.CatalogAddress = envCatalogAddress
	}
	if envSessionSecret != "" {
		cfg.SessionSecret = envSessionSecret
	}
	if envSessionTTL != 0 {
		cfg.SessionTTL = envSessionTTL
	}

	if cfg.RunAddress == "" {
		cfg.RunAddress = "localhost:8080"
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 30 * time.Minute
	}

	return cfg, nil
}
