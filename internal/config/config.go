package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
	PingAttempts       int
}

// MinIOConfig holds object storage settings for MinIO.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// AuthConfig holds bearer token and password hashing settings.
type AuthConfig struct {
	JWTSecret     string
	JWTIssuer     string
	TokenTTLMin   int
	BcryptCost    int
	LinkExpirySec int
}

// TokenTTL returns the lifetime of issued bearer tokens.
func (a AuthConfig) TokenTTL() time.Duration {
	return time.Duration(a.TokenTTLMin) * time.Minute
}

// LinkExpiry returns the lifetime of presigned download links.
func (a AuthConfig) LinkExpiry() time.Duration {
	return time.Duration(a.LinkExpirySec) * time.Second
}

// Validate reports settings that make token issuing unsafe.
func (a AuthConfig) Validate() error {
	if a.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if a.TokenTTLMin <= 0 {
		return errors.New("JWT_TTL_MINUTES must be positive")
	}
	return nil
}

// UploadConfig holds limits applied to every uploaded file.
type UploadConfig struct {
	MaxBytes     int64
	AllowedTypes []string
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost     string
	PublicURL   string
	Port        string
	TimeZone    string
	BodyLimitMB int
	Database    DatabaseConfig
	MinIO       MinIOConfig
	Auth        AuthConfig
	Upload      UploadConfig
}

// Location resolves TimeZone, falling back to UTC.
func (c *AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// BaseURL is the externally visible origin used in download URLs.
// PUBLIC_URL wins; otherwise http://APP_HOST.
func (c *AppConfig) BaseURL() string {
	if c.PublicURL != "" {
		return strings.TrimRight(c.PublicURL, "/")
	}
	if strings.Contains(c.AppHost, "://") {
		return strings.TrimRight(c.AppHost, "/")
	}
	return "http://" + c.AppHost
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost:     getEnv("APP_HOST", "localhost:8080"),
		PublicURL:   getEnv("PUBLIC_URL", ""),
		Port:        getEnv("PORT", "8080"),
		TimeZone:    getEnv("APP_TIMEZONE", "UTC"),
		BodyLimitMB: getEnvInt("BODY_LIMIT_MB", 32),
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
			PingAttempts:       getEnvInt("DB_PING_ATTEMPTS", 5),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", ""),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		Auth: AuthConfig{
			JWTSecret:     getEnv("JWT_SECRET", ""),
			JWTIssuer:     getEnv("JWT_ISSUER", "fileshare"),
			TokenTTLMin:   getEnvInt("JWT_TTL_MINUTES", 24*60),
			BcryptCost:    getEnvInt("BCRYPT_COST", 10),
			LinkExpirySec: getEnvInt("LINK_EXPIRY_SEC", 300),
		},
		Upload: UploadConfig{
			MaxBytes:     int64(getEnvInt("UPLOAD_MAX_BYTES", 2*1024*1024)),
			AllowedTypes: getEnvList("UPLOAD_ALLOWED_TYPES", []string{"doc", "pdf", "docx", "zip", "jpeg", "jpg", "png"}),
		},
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

// getEnvList splits a comma separated value, lower-casing and dropping blanks.
func getEnvList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	out := make([]string, 0)
	for _, p := range strings.Split(v, ",") {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
