package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// DBConfig holds the Postgres connection settings.
type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// DSN returns the Postgres connection string.
func (c *DBConfig) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.Host, c.User, c.Password, c.Name, c.Port, c.SSLMode)
}

// JWTConfig holds token signing settings.
type JWTConfig struct {
	Secret     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// R2Config holds the Cloudflare R2 object storage settings.
type R2Config struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	PublicURL       string
	Region          string
}

// MailConfig is carried as opaque configuration for the mail collaborator.
// Nothing in this service sends mail directly.
type MailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
}

// GoogleOAuthConfig holds the Google sign-in credentials.
type GoogleOAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// UploadConfig bounds inbound photo attachments.
type UploadConfig struct {
	MaxPhotoBytes int64
}

// PaginationConfig bounds listing pages.
type PaginationConfig struct {
	DefaultPageSize int
	MaxPageSize     int
}

// Config is built once at startup and passed explicitly to the components
// that need it.
type Config struct {
	ServiceName string
	Port        string
	Env         string
	LogLevel    string

	DB         DBConfig
	JWT        JWTConfig
	Storage    R2Config
	Mail       MailConfig
	Google     GoogleOAuthConfig
	Upload     UploadConfig
	Pagination PaginationConfig
}

// Load reads configuration from the environment, optionally seeded from a
// .env file.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		// .env file is optional outside local development.
	}

	return &Config{
		ServiceName: getEnv("SERVICE_NAME", "rescuelink-api"),
		Port:        getEnv("PORT", "8080"),
		Env:         getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		DB: DBConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "rescuelink"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		},
		JWT: JWTConfig{
			Secret:     getEnv("JWT_SECRET", ""),
			AccessTTL:  getEnvAsDuration("JWT_ACCESS_TTL", 24*7*time.Hour),
			RefreshTTL: getEnvAsDuration("JWT_REFRESH_TTL", 24*30*time.Hour),
		},
		Storage: R2Config{
			AccountID:       getEnv("CLOUDFLARE_ACCOUNT_ID", ""),
			AccessKeyID:     getEnv("CLOUDFLARE_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("CLOUDFLARE_SECRET_ACCESS_KEY", ""),
			BucketName:      getEnv("CLOUDFLARE_BUCKET_NAME", ""),
			PublicURL:       getEnv("CLOUDFLARE_PUBLIC_URL", ""),
			Region:          "auto",
		},
		Mail: MailConfig{
			Host:     getEnv("MAIL_SERVER", "smtp.gmail.com"),
			Port:     getEnvAsInt("MAIL_PORT", 587),
			Username: getEnv("MAIL_USERNAME", ""),
			Password: getEnv("MAIL_PASSWORD", ""),
		},
		Google: GoogleOAuthConfig{
			ClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
			ClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
			RedirectURL:  getEnv("GOOGLE_REDIRECT_URL", ""),
		},
		Upload: UploadConfig{
			MaxPhotoBytes: getEnvAsInt64("MAX_PHOTO_BYTES", 10*1024*1024),
		},
		Pagination: PaginationConfig{
			DefaultPageSize: getEnvAsInt("DEFAULT_PAGE_SIZE", 12),
			MaxPageSize:     getEnvAsInt("MAX_PAGE_SIZE", 50),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value, err := strconv.ParseInt(getEnv(key, ""), 10, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, err := time.ParseDuration(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}
