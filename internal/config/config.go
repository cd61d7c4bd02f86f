package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config holds every runtime setting. Values come from environment
// variables (optionally loaded from configs/.env by main) with sane
// development defaults.
type Config struct {
	Server struct {
		Port string
		Mode string // gin mode: debug or release
	}
	DB struct {
		Host     string
		Port     string
		User     string
		Password string
		Name     string
		SSLMode  string
	}
	JWT struct {
		Secret       string
		AccessHours  int
		RefreshHours int
	}
	SMTP struct {
		Host     string
		Port     int
		Username string
		Password string
		From     string
	}
	Log struct {
		Level  string
		Format string
	}
	CORS struct {
		Origins []string
	}
}

// Load builds the configuration from the environment via viper
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "paytrack")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("JWT_ACCESS_HOURS", 24)
	v.SetDefault("JWT_REFRESH_HOURS", 24*7)
	v.SetDefault("SMTP_HOST", "localhost")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("CORS_ORIGINS", []string{"http://localhost:5173"})

	cfg := &Config{}
	cfg.Server.Port = v.GetString("PORT")
	cfg.Server.Mode = v.GetString("GIN_MODE")

	cfg.DB.Host = v.GetString("DB_HOST")
	cfg.DB.Port = v.GetString("DB_PORT")
	cfg.DB.User = v.GetString("DB_USER")
	cfg.DB.Password = v.GetString("DB_PASSWORD")
	cfg.DB.Name = v.GetString("DB_NAME")
	cfg.DB.SSLMode = v.GetString("DB_SSLMODE")

	cfg.JWT.Secret = v.GetString("JWT_SECRET")
	cfg.JWT.AccessHours = v.GetInt("JWT_ACCESS_HOURS")
	cfg.JWT.RefreshHours = v.GetInt("JWT_REFRESH_HOURS")

	cfg.SMTP.Host = v.GetString("SMTP_HOST")
	cfg.SMTP.Port = v.GetInt("SMTP_PORT")
	cfg.SMTP.Username = v.GetString("SMTP_USERNAME")
	cfg.SMTP.Password = v.GetString("SMTP_PASSWORD")
	cfg.SMTP.From = v.GetString("SMTP_FROM")

	cfg.Log.Level = v.GetString("LOG_LEVEL")
	cfg.Log.Format = v.GetString("LOG_FORMAT")

	cfg.CORS.Origins = v.GetStringSlice("CORS_ORIGINS")

	if cfg.Server.Mode == "release" && cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required in release mode")
	}
	if cfg.JWT.Secret == "" {
		cfg.JWT.Secret = "default_super_secret_key" // Development fallback only
	}

	return cfg, nil
}

// DSN builds the postgres connection string
func (c *Config) DSN() string {
	return "postgres://" + c.DB.User + ":" + c.DB.Password + "@" + c.DB.Host + ":" +
		c.DB.Port + "/" + c.DB.Name + "?sslmode=" + c.DB.SSLMode
}
