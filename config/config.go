package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration. It is built once in main and
// passed down; nothing reads the environment after Load.
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Log       LogConfig
	Auth      AuthConfig
	CORS      CORSConfig
	Scheduler SchedulerConfig
	Twilio    TwilioConfig
}

type AppConfig struct {
	Env  string
	Port string
}

type DatabaseConfig struct {
	URL             string
	ConnectTimeout  time.Duration
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	AutoMigrate     bool
	SlowThreshold   time.Duration
}

type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
}

type AuthConfig struct {
	JWTSecret    string
	TokenExpiry  time.Duration
	RequireToken bool
}

type CORSConfig struct {
	AllowedOrigins []string
}

type SchedulerConfig struct {
	Enabled       bool
	ReconcileCron string
}

type TwilioConfig struct {
	AccountSID     string
	AuthToken      string
	FromNumber     string
	WhatsAppNumber string
}

// Enabled reports whether enough credentials exist to send messages.
func (t TwilioConfig) Enabled() bool {
	return t.AccountSID != "" && t.AuthToken != "" && (t.FromNumber != "" || t.WhatsAppNumber != "")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "5000")
	v.SetDefault("database.connect_timeout", "30s")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("database.slow_threshold", "200ms")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("auth.token_expiry_hours", 24)
	v.SetDefault("auth.require_token", false)
	v.SetDefault("cors.allowed_origins", []string{
		"http://localhost:5173",
		"http://localhost:3000",
		"http://127.0.0.1:5173",
	})
	v.SetDefault("scheduler.enabled", false)
	v.SetDefault("scheduler.reconcile_cron", "0 3 * * *")
}

// Load reads .env, config.toml and the environment. Priority, highest first:
// OFICINA_* variables, the legacy variable names, config.toml, defaults.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	setDefaults(v)
	v.SetEnvPrefix("OFICINA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	legacy := map[string][]string{
		"app.port":                {"OFICINA_APP_PORT", "PORT"},
		"app.env":                 {"OFICINA_APP_ENV", "APP_ENV"},
		"database.url":            {"OFICINA_DATABASE_URL", "DB_URL"},
		"auth.jwt_secret":         {"OFICINA_AUTH_JWT_SECRET", "JWT_SECRET"},
		"auth.token_expiry_hours": {"OFICINA_AUTH_TOKEN_EXPIRY_HOURS", "JWT_EXPIRY_HOURS"},
		"cors.frontend_url":       {"OFICINA_CORS_FRONTEND_URL", "FRONTEND_URL"},
		"twilio.account_sid":      {"OFICINA_TWILIO_ACCOUNT_SID", "TWILIO_ACCOUNT_SID"},
		"twilio.auth_token":       {"OFICINA_TWILIO_AUTH_TOKEN", "TWILIO_AUTH_TOKEN"},
		"twilio.from_number":      {"OFICINA_TWILIO_FROM_NUMBER", "TWILIO_PHONE_NUMBER"},
		"twilio.whatsapp_number":  {"OFICINA_TWILIO_WHATSAPP_NUMBER", "TWILIO_WHATSAPP_NUMBER"},
	}
	for key, envs := range legacy {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return nil, fmt.Errorf("bind %s: %w", key, err)
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	origins := v.GetStringSlice("cors.allowed_origins")
	if frontend := strings.TrimSpace(v.GetString("cors.frontend_url")); frontend != "" {
		origins = append(origins, frontend)
	}

	cfg := &Config{
		App: AppConfig{
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			URL:             v.GetString("database.url"),
			ConnectTimeout:  v.GetDuration("database.connect_timeout"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetDuration("database.conn_max_lifetime"),
			AutoMigrate:     v.GetBool("database.auto_migrate"),
			SlowThreshold:   v.GetDuration("database.slow_threshold"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
		Auth: AuthConfig{
			JWTSecret:    v.GetString("auth.jwt_secret"),
			TokenExpiry:  time.Duration(v.GetInt("auth.token_expiry_hours")) * time.Hour,
			RequireToken: v.GetBool("auth.require_token"),
		},
		CORS: CORSConfig{AllowedOrigins: origins},
		Scheduler: SchedulerConfig{
			Enabled:       v.GetBool("scheduler.enabled"),
			ReconcileCron: v.GetString("scheduler.reconcile_cron"),
		},
		Twilio: TwilioConfig{
			AccountSID:     v.GetString("twilio.account_sid"),
			AuthToken:      v.GetString("twilio.auth_token"),
			FromNumber:     v.GetString("twilio.from_number"),
			WhatsAppNumber: v.GetString("twilio.whatsapp_number"),
		},
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings the server cannot start without.
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return errors.New("database url is required (DB_URL)")
	}
	if c.Auth.RequireToken && c.Auth.JWTSecret == "" {
		return errors.New("auth.require_token needs a JWT secret (JWT_SECRET)")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}
