package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type DBConfig struct {
	Host            string `envconfig:"DB_HOST" default:"postgres"`
	Port            int    `envconfig:"DB_PORT" default:"5432"`
	User            string `envconfig:"DB_USER" default:"stadium"`
	Password        string `envconfig:"DB_PASSWORD" default:"stadium"`
	Name            string `envconfig:"DB_NAME" default:"stadium_db"`
	SSLMode         string `envconfig:"DB_SSLMODE" default:"disable"`
	TimeZone        string `envconfig:"DB_TIMEZONE" default:"Asia/Bangkok"`
	MaxOpenConns    int    `envconfig:"DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int    `envconfig:"DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifeTime int    `envconfig:"DB_CONN_MAX_LIFETIME_MIN" default:"30"` // минут
}

// DSN собирает строку подключения к Postgres.
func (c DBConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%d sslmode=%s TimeZone=%s",
		c.Host, c.User, c.Password, c.Name, c.Port, c.SSLMode, c.TimeZone,
	)
}

// ConnMaxLifetime переводит настройку пула из минут в Duration.
func (c DBConfig) ConnMaxLifetime() time.Duration {
	return time.Duration(c.ConnMaxLifeTime) * time.Minute
}

type App struct {
	HTTPAddr string `envconfig:"HTTP_ADDR" default:":8080"`

	JWTSecret    string `envconfig:"JWT_SECRET" required:"true"`
	JWTExpireMin int    `envconfig:"JWT_EXPIRE_MIN" default:"60"`

	// Каталог для слипов оплаты.
	SlipDir string `envconfig:"SLIP_DIR" default:"./slips"`

	// RabbitMQ; пустой URL отключает публикацию событий.
	RabbitURL       string `envconfig:"RABBIT_URL"`
	BookingExchange string `envconfig:"BOOKING_EXCHANGE" default:"booking.exchange"`

	// Пустой endpoint отключает трассировку.
	OTLPEndpoint string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`

	DB DBConfig
}

// Load читает конфигурацию из окружения. В dev-режиме сначала
// подхватывается .env (в проде переменная ENV=production его отключает).
func Load() (*App, error) {
	if os.Getenv("ENV") != "production" {
		_ = godotenv.Load()
	}

	var cfg App
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}

	// минимальная валидация
	if cfg.DB.Host == "" || cfg.DB.User == "" || cfg.DB.Name == "" {
		return nil, fmt.Errorf("invalid DB config: host/user/name must not be empty")
	}

	return &cfg, nil
}
