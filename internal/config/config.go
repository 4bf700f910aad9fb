package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port            string         `yaml:"port"`
	CRMBaseURL      string         `yaml:"crm_base_url"`
	CRMAccessToken  string         `yaml:"-"`
	RequestTimeout  time.Duration  `yaml:"-"`
	PaymentPageURL  string         `yaml:"payment_page_url"`
	PortalTitle     string         `yaml:"portal_title"`
	SupportEmail    string         `yaml:"support_email"`
	CurrencySymbol  string         `yaml:"currency_symbol"`
	RedisURL        string         `yaml:"redis_url"`
	RateLimitPerMin int            `yaml:"rate_limit_per_min"`
	LogLevel        string         `yaml:"log_level"`
	LogFormat       string         `yaml:"log_format"`
	Properties      DealProperties `yaml:"deal_properties"`
}

// DealProperties names the CRM deal properties the portal reads.
type DealProperties struct {
	Name      string   `yaml:"name"`
	Fee       string   `yaml:"fee"`
	TotalPaid string   `yaml:"total_paid"`
	Payments  []string `yaml:"payments"`
}

func DefaultDealProperties() DealProperties {
	return DealProperties{
		Name:      "dealname",
		Fee:       "program_fee",
		TotalPaid: "total_paid",
		Payments:  []string{"payment_1", "payment_2", "payment_3", "payment_4", "payment_5"},
	}
}

// Load builds the config from the optional YAML file named by
// PORTAL_CONFIG_FILE, then the environment. Environment values win.
func Load() (Config, error) {
	cfg := Config{
		Port:            "8080",
		CRMBaseURL:      "https://api.hubapi.com",
		RequestTimeout:  15 * time.Second,
		PortalTitle:     "Program Payment Portal",
		CurrencySymbol:  "$",
		RateLimitPerMin: 60,
		LogLevel:        "info",
		LogFormat:       "json",
		Properties:      DefaultDealProperties(),
	}
	if path := os.Getenv("PORTAL_CONFIG_FILE"); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return cfg, err
		}
	}

	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.CRMBaseURL = getEnv("CRM_BASE_URL", cfg.CRMBaseURL)
	cfg.CRMAccessToken = getEnv("CRM_ACCESS_TOKEN", os.Getenv("HUBSPOT_ACCESS_TOKEN"))
	cfg.RequestTimeout = getEnvDuration("CRM_REQUEST_TIMEOUT", cfg.RequestTimeout)
	cfg.PaymentPageURL = getEnv("PAYMENT_PAGE_URL", cfg.PaymentPageURL)
	cfg.PortalTitle = getEnv("PORTAL_TITLE", cfg.PortalTitle)
	cfg.SupportEmail = getEnv("SUPPORT_EMAIL", cfg.SupportEmail)
	cfg.CurrencySymbol = getEnv("CURRENCY_SYMBOL", cfg.CurrencySymbol)
	cfg.RedisURL = getEnv("REDIS_URL", cfg.RedisURL)
	cfg.RateLimitPerMin = getEnvInt("RATE_LIMIT_PER_MIN", cfg.RateLimitPerMin)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getEnv("LOG_FORMAT", cfg.LogFormat)
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	def := DefaultDealProperties()
	if cfg.Properties.Name == "" {
		cfg.Properties.Name = def.Name
	}
	if cfg.Properties.Fee == "" {
		cfg.Properties.Fee = def.Fee
	}
	if cfg.Properties.TotalPaid == "" {
		cfg.Properties.TotalPaid = def.TotalPaid
	}
	if len(cfg.Properties.Payments) != len(def.Payments) {
		return fmt.Errorf("parse config %s: deal_properties.payments needs %d entries, got %d", path, len(def.Payments), len(cfg.Properties.Payments))
	}
	return nil
}

func getEnv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return time.Duration(i) * time.Second
}
