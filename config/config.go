package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Storage  StorageConfig  `yaml:"storage"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Auth     AuthConfig     `yaml:"auth"`
	Billing  BillingConfig  `yaml:"billing"`
	Worker   WorkerConfig   `yaml:"worker"`
}

type HTTPConfig struct {
	Address         string   `yaml:"address"`
	SwaggerDir      string   `yaml:"swagger_dir"`
	AllowedOrigins  []string `yaml:"allowed_origins"`
	AccessLog       bool     `yaml:"access_log"`
	ReadTimeoutSec  int      `yaml:"read_timeout_seconds"`
	WriteTimeoutSec int      `yaml:"write_timeout_seconds"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
	// URL takes precedence over the individual fields when set.
	URL     string `yaml:"url"`
	Migrate bool   `yaml:"migrate"`
}

func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// StorageConfig selects the ledger backend: "postgres" or "memory".
type StorageConfig struct {
	Driver string `yaml:"driver"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers            []string `yaml:"brokers"`
	ParkingTopic       string   `yaml:"parking_topic"`
	NotificationsTopic string   `yaml:"notifications_topic"`
	GroupID            string   `yaml:"group_id"`
}

type AuthConfig struct {
	JWTSecret       string `yaml:"jwt_secret"`
	TokenTTLMinutes int    `yaml:"token_ttl_minutes"`
	CookieSecure    bool   `yaml:"cookie_secure"`
	// Bootstrap admin created at startup when the users table is empty.
	AdminUsername string `yaml:"admin_username"`
	AdminPassword string `yaml:"admin_password"`
}

type BillingConfig struct {
	Currency       string           `yaml:"currency"`
	CurrencySymbol string           `yaml:"currency_symbol"`
	Locale         string           `yaml:"locale"`
	MinimumMinutes int              `yaml:"minimum_minutes"`
	HourlyRates    map[string]int64 `yaml:"hourly_rates_cents"`
	ExitLockSec    int              `yaml:"exit_lock_seconds"`
}

type WorkerConfig struct {
	LongStaySchedule string `yaml:"long_stay_schedule"`
	LongStayHours    int    `yaml:"long_stay_hours"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// .env is optional; real environment variables win over it.
	_ = godotenv.Load()
	cfg.applyEnv()

	return cfg, nil
}

// Default returns the configuration used when a key is absent from the file.
func Default() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:         ":8080",
			ReadTimeoutSec:  15,
			WriteTimeoutSec: 15,
		},
		Database: DatabaseConfig{
			Host:    "localhost",
			Port:    5432,
			SSLMode: "disable",
		},
		Storage: StorageConfig{Driver: "postgres"},
		Kafka: KafkaConfig{
			ParkingTopic:       "parking-events",
			NotificationsTopic: "parking-notifications",
			GroupID:            "parking-worker",
		},
		Auth: AuthConfig{TokenTTLMinutes: 60},
		Billing: BillingConfig{
			Currency:       "DOP",
			CurrencySymbol: "RD$",
			Locale:         "en",
			MinimumMinutes: 60,
			HourlyRates: map[string]int64{
				"regular":    5000,
				"motorcycle": 2500,
				"accessible": 5000,
			},
			ExitLockSec: 10,
		},
		Worker: WorkerConfig{
			LongStaySchedule: "@every 15m",
			LongStayHours:    3,
		},
	}
}

func (c *Config) applyEnv() {
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		c.Database.URL = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		c.Auth.JWTSecret = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		c.HTTP.Address = v
	}
	if v := os.Getenv("STORAGE_DRIVER"); v != "" {
		c.Storage.Driver = v
	}
}

func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret (or JWT_SECRET) is required")
	}
	switch c.Storage.Driver {
	case "postgres", "memory":
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.Billing.MinimumMinutes < 0 {
		return fmt.Errorf("billing.minimum_minutes must not be negative")
	}
	return nil
}

// ValidateWorker checks settings the background worker needs on top of
// Validate. The memory driver keeps sessions inside the api process, so a
// separate worker would only ever sweep its own empty store.
func (c *Config) ValidateWorker() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Storage.Driver == "memory" {
		return fmt.Errorf("worker needs shared storage, storage.driver %q is process local", c.Storage.Driver)
	}
	return nil
}
