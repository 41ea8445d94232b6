package config

import (
	"errors"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ErrTokenSecretMissing is returned when AUTH_TOKEN_SECRET is not configured.
// The server refuses to start without it: identity tokens must never be
// signed with an embedded default.
var ErrTokenSecretMissing = errors.New("AUTH_TOKEN_SECRET is required and has no default")

type (
	Config struct {
		HTTP
		Database
		Auth
		Media
		Redis
		Global
	}

	HTTP struct {
		Port int32
		Host string
	}
	Database struct {
		Path string
	}
	Auth struct {
		TokenSecret   string
		TokenTTL      time.Duration
		BcryptCost    int
		SecureCookies bool // Set to false for local dev without HTTPS
	}
	Media struct {
		BaseURL   string
		APIKey    string
		UploadDir string // Local spool directory for multipart uploads
	}
	Redis struct {
		Addr     string // Empty disables the public-libraries cache
		Password string
		DB       int
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
)

func NewConfig() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8190)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("database_path", "./shelflib.db")
	v.SetDefault("upload_dir", "./uploads")
	v.SetDefault("media_base_url", "")
	v.SetDefault("media_api_key", "")

	// Auth defaults
	v.SetDefault("auth_token_secret", "")
	v.SetDefault("auth_token_ttl", "168h") // 7 days
	v.SetDefault("auth_bcrypt_cost", 12)
	v.SetDefault("auth_secure_cookies", true)

	// Cache defaults
	v.SetDefault("redis_addr", "")
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)

	cfg := &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Auth: Auth{
			TokenSecret:   v.GetString("AUTH_TOKEN_SECRET"),
			TokenTTL:      v.GetDuration("AUTH_TOKEN_TTL"),
			BcryptCost:    v.GetInt("AUTH_BCRYPT_COST"),
			SecureCookies: v.GetBool("AUTH_SECURE_COOKIES"),
		},
		Media: Media{
			BaseURL:   v.GetString("MEDIA_BASE_URL"),
			APIKey:    v.GetString("MEDIA_API_KEY"),
			UploadDir: v.GetString("UPLOAD_DIR"),
		},
		Redis: Redis{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
	}

	if cfg.Auth.TokenSecret == "" {
		return nil, ErrTokenSecretMissing
	}

	return cfg, nil
}
