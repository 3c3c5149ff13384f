package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env  string
	Port int

	// PublicHost overrides the probed LAN IP embedded in QR login URLs.
	PublicHost string

	Database DatabaseConfig
	Session  SessionConfig
	Storage  StorageConfig
	Accounts AccountsConfig
	Log      LogConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

// SessionConfig controls the signed session cookie.
type SessionConfig struct {
	Secret string
	Name   string
	MaxAge time.Duration
}

// StorageConfig locates the document and QR image directories.
type StorageConfig struct {
	UploadDir string
	QRDir     string
}

// AccountsConfig holds the bootstrap and fallback credentials.
// Both defaults are operational secrets that must be rotated before production use.
type AccountsConfig struct {
	AdminDefaultPassword   string
	StudentDefaultPassword string
}

type LogConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.PublicHost = v.GetString("PUBLIC_HOST")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Session = SessionConfig{
		Secret: v.GetString("SESSION_SECRET"),
		Name:   v.GetString("SESSION_NAME"),
		MaxAge: parseDuration(v.GetString("SESSION_MAX_AGE"), 24*time.Hour),
	}

	cfg.Storage = StorageConfig{
		UploadDir: v.GetString("UPLOAD_DIR"),
		QRDir:     v.GetString("QR_DIR"),
	}

	cfg.Accounts = AccountsConfig{
		AdminDefaultPassword:   v.GetString("ADMIN_DEFAULT_PASSWORD"),
		StudentDefaultPassword: v.GetString("STUDENT_DEFAULT_PASSWORD"),
	}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 5000)
	v.SetDefault("PUBLIC_HOST", "")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "student_records")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("SESSION_SECRET", "dev_session_secret")
	v.SetDefault("SESSION_NAME", "studentdesk_session")
	v.SetDefault("SESSION_MAX_AGE", "24h")

	v.SetDefault("UPLOAD_DIR", "./uploads")
	v.SetDefault("QR_DIR", "./static")

	v.SetDefault("ADMIN_DEFAULT_PASSWORD", "admin123")
	v.SetDefault("STUDENT_DEFAULT_PASSWORD", "12345")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}
