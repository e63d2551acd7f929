package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type HTTPConfig struct {
	Host               string
	Port               int
	CORSAllowedOrigins []string
}

type DBConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime string
	AutoMigrate     bool
}

type AuthConfig struct {
	AccessSecret string
}

type RedisConfig struct {
	URL            string
	IdempotencyTTL time.Duration
}

type RateLimitConfig struct {
	RPS   float64
	Burst int
}

type APIConfig struct {
	EmptyListAsNotFound        bool
	ContractorCanViewContracts bool
	BestClientsLimit           int
}

type Config struct {
	Environment string
	HTTP        HTTPConfig
	DB          DBConfig
	Auth        AuthConfig
	Redis       RedisConfig
	RateLimit   RateLimitConfig
	API         APIConfig
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("./deploy")
	v.AutomaticEnv()

	v.SetDefault("EMPTY_LIST_AS_NOT_FOUND", true)
	v.SetDefault("DB_AUTO_MIGRATE", true)
	// RATE_LIMIT_RPS=0 turns rate limiting off.
	v.SetDefault("RATE_LIMIT_RPS", 20)
	v.SetDefault("RATE_LIMIT_BURST", 40)

	_ = v.ReadInConfig()

	cfg := &Config{
		Environment: v.GetString("APP_ENV"),
		HTTP: HTTPConfig{
			Host:               v.GetString("HTTP_HOST"),
			Port:               v.GetInt("HTTP_PORT"),
			CORSAllowedOrigins: parseList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		DB: DBConfig{
			DSN:             v.GetString("DB_DSN"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetString("DB_CONN_MAX_LIFETIME"),
			AutoMigrate:     v.GetBool("DB_AUTO_MIGRATE"),
		},
		Auth: AuthConfig{
			AccessSecret: v.GetString("JWT_ACCESS_SECRET"),
		},
		Redis: RedisConfig{
			URL:            v.GetString("REDIS_URL"),
			IdempotencyTTL: v.GetDuration("IDEMPOTENCY_TTL"),
		},
		RateLimit: RateLimitConfig{
			RPS:   v.GetFloat64("RATE_LIMIT_RPS"),
			Burst: v.GetInt("RATE_LIMIT_BURST"),
		},
		API: APIConfig{
			EmptyListAsNotFound:        v.GetBool("EMPTY_LIST_AS_NOT_FOUND"),
			ContractorCanViewContracts: v.GetBool("CONTRACTS_CONTRACTOR_VISIBLE"),
			BestClientsLimit:           v.GetInt("REPORT_BEST_CLIENTS_LIMIT"),
		},
	}

	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.HTTP.Host == "" {
		cfg.HTTP.Host = "0.0.0.0"
	}
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 3001
	}
	if cfg.Redis.IdempotencyTTL <= 0 {
		cfg.Redis.IdempotencyTTL = 24 * time.Hour
	}
	if cfg.API.BestClientsLimit == 0 {
		cfg.API.BestClientsLimit = 2
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// AdminAuthEnabled reports whether /admin routes require a signed token.
func (c *Config) AdminAuthEnabled() bool {
	return c.Auth.AccessSecret != ""
}

func validate(cfg *Config) error {
	if cfg.DB.DSN == "" {
		return fmt.Errorf("DB_DSN is required")
	}
	if cfg.RateLimit.RPS < 0 || cfg.RateLimit.Burst < 0 {
		return fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must not be negative")
	}
	if cfg.API.BestClientsLimit < 0 {
		return fmt.Errorf("REPORT_BEST_CLIENTS_LIMIT must be positive")
	}
	if cfg.DB.ConnMaxLifetime != "" {
		if _, err := time.ParseDuration(cfg.DB.ConnMaxLifetime); err != nil {
			return fmt.Errorf("DB_CONN_MAX_LIFETIME: %w", err)
		}
	}
	return nil
}

func parseList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	items := strings.Split(raw, ",")
	result := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item != "" {
			result = append(result, item)
		}
	}
	return result
}
