package utils

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Cookie    CookieConfig
	OTP       OTPConfig
	Storage   StorageConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
	Telemetry TelemetryConfig
}

type AppConfig struct {
	Name            string
	Port            string
	Debug           bool
	LogPath         string
	Timezone        string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
	MaxConns int32
}

type JWTConfig struct {
	Secret      string
	Issuer      string
	ExpiryHours int
}

type CookieConfig struct {
	Name     string
	Domain   string
	Secure   bool
	SameSite string
}

type OTPConfig struct {
	ExpiryMinutes int
	Length        int
}

type StorageConfig struct {
	Dir          string
	PublicURL    string
	MaxUploadMB  int64
	AllowedTypes []string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type RateLimitConfig struct {
	Rate  float64 // tokens per second
	Burst float64
}

type TelemetryConfig struct {
	Enabled  bool
	Endpoint string
}

// SessionTTL is the lifetime of a login session.
func (c JWTConfig) SessionTTL() time.Duration {
	return time.Duration(c.ExpiryHours) * time.Hour
}

// LoadConfig reads .env (when present) and the environment.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	v.AutomaticEnv()

	return buildConfig(v), nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_NAME", "restaurant-directory")
	v.SetDefault("PORT", "8080")
	v.SetDefault("DEBUG", false)
	v.SetDefault("LOG_PATH", "logs/")
	v.SetDefault("APP_TIMEZONE", "UTC")
	v.SetDefault("HTTP_READ_TIMEOUT", "15s")
	v.SetDefault("HTTP_WRITE_TIMEOUT", "30s")
	v.SetDefault("SHUTDOWN_TIMEOUT", "10s")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_CONNS", 10)

	v.SetDefault("JWT_ISSUER", "restaurant-directory")
	v.SetDefault("JWT_EXPIRY_HOURS", 24*7)

	v.SetDefault("COOKIE_NAME", "session")
	v.SetDefault("COOKIE_SECURE", true)
	v.SetDefault("COOKIE_SAMESITE", "lax")

	v.SetDefault("OTP_EXPIRY_MINUTES", 10)
	v.SetDefault("OTP_LENGTH", 6)

	v.SetDefault("STORAGE_DIR", "uploads/")
	v.SetDefault("STORAGE_PUBLIC_URL", "/media")
	v.SetDefault("STORAGE_MAX_UPLOAD_MB", 5)
	v.SetDefault("STORAGE_ALLOWED_TYPES", "image/jpeg,image/png,image/webp,image/gif")

	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")

	v.SetDefault("RATE_LIMIT_RATE", 1.0)
	v.SetDefault("RATE_LIMIT_BURST", 10.0)

	v.SetDefault("OTEL_ENABLED", false)
}

func buildConfig(v *viper.Viper) *Config {
	return &Config{
		App: AppConfig{
			Name:            v.GetString("APP_NAME"),
			Port:            v.GetString("PORT"),
			Debug:           v.GetBool("DEBUG"),
			LogPath:         v.GetString("LOG_PATH"),
			Timezone:        v.GetString("APP_TIMEZONE"),
			ReadTimeout:     v.GetDuration("HTTP_READ_TIMEOUT"),
			WriteTimeout:    v.GetDuration("HTTP_WRITE_TIMEOUT"),
			ShutdownTimeout: v.GetDuration("SHUTDOWN_TIMEOUT"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			Name:     v.GetString("DB_NAME"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASS"),
			SSLMode:  v.GetString("DB_SSLMODE"),
			MaxConns: v.GetInt32("DB_MAX_CONNS"),
		},
		JWT: JWTConfig{
			Secret:      v.GetString("JWT_SECRET"),
			Issuer:      v.GetString("JWT_ISSUER"),
			ExpiryHours: v.GetInt("JWT_EXPIRY_HOURS"),
		},
		Cookie: CookieConfig{
			Name:     v.GetString("COOKIE_NAME"),
			Domain:   v.GetString("COOKIE_DOMAIN"),
			Secure:   v.GetBool("COOKIE_SECURE"),
			SameSite: v.GetString("COOKIE_SAMESITE"),
		},
		OTP: OTPConfig{
			ExpiryMinutes: v.GetInt("OTP_EXPIRY_MINUTES"),
			Length:        v.GetInt("OTP_LENGTH"),
		},
		Storage: StorageConfig{
			Dir:          v.GetString("STORAGE_DIR"),
			PublicURL:    v.GetString("STORAGE_PUBLIC_URL"),
			MaxUploadMB:  v.GetInt64("STORAGE_MAX_UPLOAD_MB"),
			AllowedTypes: splitList(v.GetString("STORAGE_ALLOWED_TYPES")),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		RateLimit: RateLimitConfig{
			Rate:  v.GetFloat64("RATE_LIMIT_RATE"),
			Burst: v.GetFloat64("RATE_LIMIT_BURST"),
		},
		Telemetry: TelemetryConfig{
			Enabled:  v.GetBool("OTEL_ENABLED"),
			Endpoint: v.GetString("OTEL_ENDPOINT"),
		},
	}
}

// splitList turns "a, b,,c" into [a b c].
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
