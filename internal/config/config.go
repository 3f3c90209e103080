package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName           string
	AppEnv            string
	AppPort           string
	DatabaseURL       string
	RedisURL          string
	NATSURL           string
	JWTSecret         string
	TokenTTL          time.Duration
	DashboardCacheTTL time.Duration
	OracleTimeout     time.Duration
	OpenAIAPIKey      string
	GraderModel       string
	AssistantModel    string
	MailAPIKey        string
	MailBaseURL       string
	MailFromEmail     string
	MailFromName      string
	MailTimeout       time.Duration
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and an optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("BOOTCAMP")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Bootcamp API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("token.ttl", "24h")
	v.SetDefault("dashboard.cache_ttl", "5m")
	v.SetDefault("oracle.timeout", "20s")
	v.SetDefault("grader.model", "gpt-4o-mini")
	v.SetDefault("assistant.model", "gpt-4o-mini")
	v.SetDefault("mail.timeout", "10s")

	tokenTTL, err := time.ParseDuration(v.GetString("token.ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid token ttl: %w", err)
	}

	cacheTTL, err := time.ParseDuration(v.GetString("dashboard.cache_ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid dashboard cache ttl: %w", err)
	}

	oracleTimeout, err := time.ParseDuration(v.GetString("oracle.timeout"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid oracle timeout: %w", err)
	}

	mailTimeout, err := time.ParseDuration(v.GetString("mail.timeout"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid mail timeout: %w", err)
	}

	cfg := Config{
		AppName:           v.GetString("app.name"),
		AppEnv:            v.GetString("app.env"),
		AppPort:           v.GetString("app.port"),
		DatabaseURL:       v.GetString("database.url"),
		RedisURL:          v.GetString("redis.url"),
		NATSURL:           v.GetString("nats.url"),
		JWTSecret:         v.GetString("jwt.secret"),
		TokenTTL:          tokenTTL,
		DashboardCacheTTL: cacheTTL,
		OracleTimeout:     oracleTimeout,
		OpenAIAPIKey:      v.GetString("openai_api_key"),
		GraderModel:       v.GetString("grader.model"),
		AssistantModel:    v.GetString("assistant.model"),
		MailAPIKey:        v.GetString("mail.api_key"),
		MailBaseURL:       v.GetString("mail.base_url"),
		MailFromEmail:     v.GetString("mail.from_email"),
		MailFromName:      v.GetString("mail.from_name"),
		MailTimeout:       mailTimeout,
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	return cfg, nil
}
