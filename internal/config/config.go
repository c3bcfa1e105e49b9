package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Gateway  GatewayConfig  `yaml:"gateway"`
	Billing  BillingConfig  `yaml:"billing"`
	Admin    AdminConfig    `yaml:"admin"`
}

// ServerConfig HTTP server settings
type ServerConfig struct {
	Port       int    `yaml:"port"`
	BaseDomain string `yaml:"base_domain"`
	Env        string `yaml:"env"`
}

// DatabaseConfig MySQL connection settings for the platform store
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	Charset  string `yaml:"charset"`
}

// GetDSN returns the MySQL DSN string
func (d *DatabaseConfig) GetDSN() string {
	charset := d.Charset
	if charset == "" {
		charset = "utf8mb4"
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=True&loc=Local",
		d.User, d.Password, d.Host, d.Port, d.Name, charset)
}

// RedisConfig Redis connection settings
type RedisConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

// GatewayConfig payment gateway credentials
type GatewayConfig struct {
	AccessToken string `yaml:"access_token"`
	BaseURL     string `yaml:"base_url"`
	BackURL     string `yaml:"back_url"`
}

// BillingConfig plan pricing and trial policy, injected into the
// subscription service rather than read as ambient state
type BillingConfig struct {
	TrialDays int                `yaml:"trial_days"`
	Currency  string             `yaml:"currency"`
	Plans     map[string]float64 `yaml:"plans"`
}

// AdminConfig settings for the admin API
type AdminConfig struct {
	APIKey string `yaml:"api_key"`
}

// Load reads the YAML config file and applies environment overrides.
// Env vars always win over file values.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:       8080,
			BaseDomain: "agendly.app",
			Env:        "local",
		},
		Database: DatabaseConfig{
			Host:    "127.0.0.1",
			Port:    3306,
			User:    "root",
			Name:    "agendly",
			Charset: "utf8mb4",
		},
		Redis: RedisConfig{
			Host:     "127.0.0.1",
			Port:     6379,
			PoolSize: 10,
		},
		Gateway: GatewayConfig{
			BaseURL: "https://api.mercadopago.com",
		},
		Billing: BillingConfig{
			TrialDays: 15,
			Currency:  "BRL",
			Plans: map[string]float64{
				"basic":      49.90,
				"premium":    99.90,
				"enterprise": 199.90,
			},
		},
	}
}

func applyEnvOverrides(cfg *Config) {
	overrideString(&cfg.Server.BaseDomain, "BASE_DOMAIN")
	overrideString(&cfg.Server.Env, "APP_ENV")
	overrideInt(&cfg.Server.Port, "PORT")

	overrideString(&cfg.Database.Host, "DB_HOST")
	overrideInt(&cfg.Database.Port, "DB_PORT")
	overrideString(&cfg.Database.User, "DB_USER")
	overrideString(&cfg.Database.Password, "DB_PASSWORD")
	overrideString(&cfg.Database.Name, "DB_NAME")

	overrideString(&cfg.Redis.Host, "REDIS_HOST")
	overrideInt(&cfg.Redis.Port, "REDIS_PORT")
	overrideString(&cfg.Redis.Password, "REDIS_PASSWORD")

	overrideString(&cfg.Gateway.AccessToken, "MERCADOPAGO_ACCESS_TOKEN")
	overrideString(&cfg.Gateway.BaseURL, "MERCADOPAGO_BASE_URL")
	overrideString(&cfg.Gateway.BackURL, "MERCADOPAGO_BACK_URL")

	overrideInt(&cfg.Billing.TrialDays, "TRIAL_DAYS")
	overrideString(&cfg.Admin.APIKey, "ADMIN_API_KEY")
}

func overrideString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func overrideInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
