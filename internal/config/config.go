package config

import (
	"fmt"
	"strings"
	"time"

	"attendance_backend/pkg/utils"

	"github.com/joho/godotenv"
)

// Config holds every runtime setting of the server.
type Config struct {
	Port string

	DBHost       string
	DBPort       string
	DBUser       string
	DBPassword   string
	DBName       string
	DBSSLMode    string
	DBSchemaPath string
	ApplySchema  bool

	JWTSecret  string
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	QRTokenTTL     time.Duration
	Location       *time.Location
	RedisURL       string
	RequestTimeout time.Duration

	CORSAllowedOrigins []string
	LogLevel           string
	LogPretty          bool
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	// A missing .env is normal in containers.
	_ = godotenv.Load()

	cfg := &Config{
		Port:         utils.Getenv("PORT", "8080"),
		DBHost:       utils.Getenv("DB_HOST", "localhost"),
		DBPort:       utils.Getenv("DB_PORT", "5432"),
		DBUser:       utils.Getenv("DB_USER", "attendance_user"),
		DBPassword:   utils.Getenv("DB_PASSWORD", "attendance_password"),
		DBName:       utils.Getenv("DB_NAME", "attendance_db"),
		DBSSLMode:    utils.Getenv("DB_SSLMODE", "disable"),
		DBSchemaPath: utils.Getenv("DB_SCHEMA_PATH", ""),
		ApplySchema:  utils.GetenvBool("APPLY_SCHEMA", true),

		JWTSecret:  utils.Getenv("JWT_SECRET", ""),
		AccessTTL:  time.Duration(utils.GetenvInt("JWT_ACCESS_TTL_MINUTES", 60)) * time.Minute,
		RefreshTTL: time.Duration(utils.GetenvInt("JWT_REFRESH_TTL_HOURS", 168)) * time.Hour,

		QRTokenTTL:     time.Duration(utils.GetenvInt("QR_TOKEN_TTL_SECONDS", 60)) * time.Second,
		RedisURL:       utils.Getenv("REDIS_URL", ""),
		RequestTimeout: time.Duration(utils.GetenvInt("REQUEST_TIMEOUT_SECONDS", 10)) * time.Second,

		LogLevel:  utils.Getenv("LOG_LEVEL", "info"),
		LogPretty: utils.GetenvBool("LOG_PRETTY", true),
	}

	loc, err := time.LoadLocation(utils.Getenv("APP_TIMEZONE", "Local"))
	if err != nil {
		return nil, fmt.Errorf("loading APP_TIMEZONE: %w", err)
	}
	cfg.Location = loc

	origins := utils.Getenv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://127.0.0.1:3000")
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, o)
		}
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET must be set")
	}
	if cfg.QRTokenTTL <= 0 {
		return nil, fmt.Errorf("QR_TOKEN_TTL_SECONDS must be positive")
	}
	return cfg, nil
}

// DSN builds the lib/pq connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}
