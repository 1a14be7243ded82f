package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/YelzhanWeb/kasir/internal/domain"
)

const (
	EnvDatabasePassword = "KASIR_DATABASE_PASSWORD"
	EnvRabbitMQPassword = "KASIR_RABBITMQ_PASSWORD"
	EnvSessionSecret    = "KASIR_SESSION_SECRET"
)

type Config struct {
	Database  DatabaseConfig  `yaml:"database"`
	RabbitMQ  RabbitMQConfig  `yaml:"rabbitmq"`
	Logger    LoggerConfig    `yaml:"logger"`
	Session   SessionConfig   `yaml:"session"`
	Orders    OrdersConfig    `yaml:"orders"`
	Dashboard DashboardConfig `yaml:"dashboard"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	MaxConns int32  `yaml:"max_conns"`
}

type RabbitMQConfig struct {
	Enabled       bool          `yaml:"enabled"`
	Host          string        `yaml:"host"`
	Port          int           `yaml:"port"`
	User          string        `yaml:"user"`
	Password      string        `yaml:"password"`
	DialTimeout   time.Duration `yaml:"dial_timeout"`
	RedialBackoff time.Duration `yaml:"redial_backoff"`
}

type LoggerConfig struct {
	Level    string `yaml:"level"`
	Filename string `yaml:"filename"`
}

type SessionConfig struct {
	Secret     string        `yaml:"secret"`
	CookieName string        `yaml:"cookie_name"`
	MaxAge     time.Duration `yaml:"max_age"`
	Secure     bool          `yaml:"secure"`
}

type OrdersConfig struct {
	TransitionPolicy string `yaml:"transition_policy"`
	ListLimit        int    `yaml:"list_limit"`
}

type DashboardConfig struct {
	OrderLimit int `yaml:"order_limit"`
}

// Default returns the configuration used for every key absent from the file.
func Default() Config {
	return Config{
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "kasir",
			Database: "kasir",
			MaxConns: 10,
		},
		RabbitMQ: RabbitMQConfig{
			Enabled:       true,
			Host:          "localhost",
			Port:          5672,
			User:          "guest",
			DialTimeout:   2 * time.Second,
			RedialBackoff: 5 * time.Second,
		},
		Logger: LoggerConfig{
			Level: "info",
		},
		Session: SessionConfig{
			CookieName: "kasir_session",
			MaxAge:     8 * time.Hour,
		},
		Orders: OrdersConfig{
			TransitionPolicy: string(domain.PolicyPermissive),
			ListLimit:        30,
		},
		Dashboard: DashboardConfig{
			OrderLimit: 24,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data, os.LookupEnv)
}

// Parse decodes yaml over the defaults, then applies secrets from lookupEnv.
func Parse(data []byte, lookupEnv func(string) (string, bool)) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse yaml: %w", err)
	}

	if v, ok := lookupEnv(EnvDatabasePassword); ok {
		cfg.Database.Password = v
	}
	if v, ok := lookupEnv(EnvRabbitMQPassword); ok {
		cfg.RabbitMQ.Password = v
	}
	if v, ok := lookupEnv(EnvSessionSecret); ok {
		cfg.Session.Secret = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.Database.Host == "" || c.Database.Database == "" {
		errs = append(errs, errors.New("database host and name are required"))
	}
	if c.RabbitMQ.Enabled && c.RabbitMQ.Host == "" {
		errs = append(errs, errors.New("rabbitmq host is required when enabled"))
	}
	if c.RabbitMQ.DialTimeout <= 0 || c.RabbitMQ.RedialBackoff < 0 {
		errs = append(errs, errors.New("rabbitmq dial_timeout must be positive and redial_backoff not negative"))
	}
	if len(c.Session.Secret) < 32 {
		errs = append(errs, fmt.Errorf("session secret must be at least 32 bytes (set %s)", EnvSessionSecret))
	}
	if c.Session.MaxAge <= 0 {
		errs = append(errs, errors.New("session max_age must be positive"))
	}
	if _, err := domain.ParseTransitionPolicy(c.Orders.TransitionPolicy); err != nil {
		errs = append(errs, err)
	}
	if c.Orders.ListLimit <= 0 || c.Dashboard.OrderLimit <= 0 {
		errs = append(errs, errors.New("list limits must be positive"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// Policy returns the validated order transition policy.
func (c *Config) Policy() domain.TransitionPolicy {
	p, _ := domain.ParseTransitionPolicy(c.Orders.TransitionPolicy)
	return p
}
