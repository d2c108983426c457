package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// ErrInvalidConfig возвращается, если конфигурация не прошла валидацию
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config конфигурация сервиса (config.toml)
type Config struct {
	Server         ServerConfig      `toml:"server"`
	Database       DatabaseConfig    `toml:"database"`
	Logs           LogsConfig        `toml:"logs"`
	Metrics        MetricsConfig     `toml:"metrics"`
	Payment        PaymentConfig     `toml:"payment"`
	Redis          RedisConfig       `toml:"redis"`
	CatalogService IntegrationConfig `toml:"catalog_service"`
	VideoService   VideoConfig       `toml:"video_service"`
	Session        SessionConfig     `toml:"session"`
}

type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`     // секунды
	WriteTimeout    int `toml:"write_timeout"`    // секунды
	IdleTimeout     int `toml:"idle_timeout"`     // секунды
	ShutdownTimeout int `toml:"shutdown_timeout"` // секунды
}

type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"` // секунды
}

// DSN строка подключения для lib/pq
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

type LogsConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

type PaymentConfig struct {
	StripeSecretKey  string  `toml:"stripe_secret_key"`
	ReturnURL        string  `toml:"return_url"`
	APIURL           string  `toml:"api_url"` // пусто - боевой API Stripe
	MaxActionRetries int     `toml:"max_action_retries"`
	AttemptTTL       int     `toml:"attempt_ttl"` // секунды, время жизни блокировки попытки оплаты
	RateLimitRPS     float64 `toml:"rate_limit_rps"`
	RateLimitBurst   int     `toml:"rate_limit_burst"`
}

// AttemptTTLDuration время жизни блокировки попытки оплаты
func (p PaymentConfig) AttemptTTLDuration() time.Duration {
	return time.Duration(p.AttemptTTL) * time.Second
}

// RedisConfig пустой addr - блокировки попыток оплаты в памяти процесса
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	Prefix   string `toml:"prefix"`
}

type IntegrationConfig struct {
	URL     string `toml:"url"`
	Timeout int    `toml:"timeout"` // секунды
}

type VideoConfig struct {
	URL         string `toml:"url"`
	Timeout     int    `toml:"timeout"` // секунды
	SigningKey  string `toml:"signing_key"`
	ServiceName string `toml:"service_name"`
}

type SessionConfig struct {
	Location    string `toml:"location"`     // IANA зона, в которой считается окно подключения
	EventBuffer int    `toml:"event_buffer"` // буфер подписчика шины событий
}

// Load читает config.toml, применяет значения по умолчанию и переменные окружения
func Load(path string) (*Config, error) {
	cfg := Default()

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config %s: %w", path, err)
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default значения по умолчанию
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:        8080,
			ReadTimeout:     15,
			WriteTimeout:    15,
			IdleTimeout:     60,
			ShutdownTimeout: 30,
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 300,
		},
		Logs: LogsConfig{
			Level: "info",
		},
		Metrics: MetricsConfig{
			Enabled:     true,
			Path:        "/metrics",
			ServiceName: "session_booking_service",
		},
		Payment: PaymentConfig{
			MaxActionRetries: 3,
			AttemptTTL:       120,
			RateLimitRPS:     1,
			RateLimitBurst:   3,
		},
		Redis: RedisConfig{
			Prefix: "session-booking:",
		},
		CatalogService: IntegrationConfig{
			Timeout: 5,
		},
		VideoService: VideoConfig{
			Timeout:     5,
			ServiceName: "session-booking-service",
		},
		Session: SessionConfig{
			Location:    "UTC",
			EventBuffer: 64,
		},
	}
}

// Секреты не хранятся в файле в проде
func (c *Config) applyEnv() {
	if v := os.Getenv("STRIPE_SECRET_KEY"); v != "" {
		c.Payment.StripeSecretKey = v
	}
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		c.Database.Password = v
	}
	if v := os.Getenv("VIDEO_SIGNING_KEY"); v != "" {
		c.VideoService.SigningKey = v
	}
}

// Validate проверяет обязательные поля и диапазоны
func (c *Config) Validate() error {
	var problems []string

	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		problems = append(problems, fmt.Sprintf("server.http_port %d out of range", c.Server.HTTPPort))
	}
	if c.Database.Host == "" || c.Database.DBName == "" {
		problems = append(problems, "database.host and database.dbname are required")
	}
	if c.Payment.StripeSecretKey == "" {
		problems = append(problems, "payment.stripe_secret_key is required (or STRIPE_SECRET_KEY)")
	}
	if c.Payment.MaxActionRetries <= 0 {
		problems = append(problems, "payment.max_action_retries must be positive")
	}
	if c.Payment.AttemptTTL <= 0 {
		problems = append(problems, "payment.attempt_ttl must be positive")
	}
	if c.Payment.RateLimitRPS <= 0 {
		problems = append(problems, "payment.rate_limit_rps must be positive")
	}
	if c.CatalogService.URL == "" {
		problems = append(problems, "catalog_service.url is required")
	}
	if c.VideoService.URL == "" || c.VideoService.SigningKey == "" {
		problems = append(problems, "video_service.url and video_service.signing_key are required")
	}
	if _, err := time.LoadLocation(c.Session.Location); err != nil {
		problems = append(problems, fmt.Sprintf("session.location %q: %v", c.Session.Location, err))
	}
	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		problems = append(problems, "metrics.path must start with /")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}
