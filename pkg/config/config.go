package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Database drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Attachment backends
const (
	BackendLocal  = "local"
	BackendGridFS = "gridfs"
)

type Config struct {
	Port     string
	Env      string
	LogLevel string

	DatabaseDriver string
	DatabaseURL    string

	AttachmentBackend string
	UploadDir         string
	MaxUploadMB       int
	MongoURI          string
	MongoDatabase     string

	CommentMaxLength int
	SessionSecret    string
	SessionTTL       time.Duration

	SuperAdminEmail string
	AdminPassword   string
}

// LoadDotEnv reads .env into the process environment when the file exists.
func LoadDotEnv() {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, assuming environment variables are set")
	}
}

func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		DatabaseDriver: strings.ToLower(getEnv("DATABASE_DRIVER", DriverSQLite)),
		DatabaseURL:    getEnv("DATABASE_URL", getEnv("POSTGRES_CONN_STR", "celebration.db")),

		AttachmentBackend: strings.ToLower(getEnv("ATTACHMENT_BACKEND", BackendLocal)),
		UploadDir:         getEnv("UPLOAD_DIR", "uploads"),
		MaxUploadMB:       getEnvInt("MAX_UPLOAD_MB", 10),
		MongoURI:          getEnv("MONGO_URI", ""),
		MongoDatabase:     getEnv("MONGO_DATABASE", "celebration_board"),

		CommentMaxLength: getEnvInt("COMMENT_MAX_LENGTH", 500),
		SessionSecret:    getEnv("SESSION_SECRET", ""),
		SessionTTL:       getEnvDuration("SESSION_TTL", 24*time.Hour),

		SuperAdminEmail: getEnv("SUPER_ADMIN_EMAIL", ""),
		AdminPassword:   getEnv("ADMIN_PASSWORD", ""),
	}
}

// IsProduction reports whether ENV names a production deployment.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// MaxUploadBytes is the attachment size limit in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(os.Getenv(key)); err == nil && value > 0 {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, err := time.ParseDuration(os.Getenv(key)); err == nil && value > 0 {
		return value
	}
	return defaultValue
}
