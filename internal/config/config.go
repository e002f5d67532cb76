package config

import (
	"os"
	"runtime"
	"strconv"
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
}

// RedisConfig holds connection settings for the token revocation set.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// MinIOConfig holds object storage settings for MinIO.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Enabled reports whether an object store endpoint was configured.
func (c MinIOConfig) Enabled() bool {
	return c.Endpoint != ""
}

// AuthConfig holds token signing and password hashing settings.
type AuthConfig struct {
	SigningKey      string
	Issuer          string
	AccessTTL       time.Duration
	RefreshTTL      time.Duration
	BcryptCost      int
	HashConcurrency int
	// RevocationBackend is one of "postgres", "redis" or "memory".
	RevocationBackend string
}

// PageDefaults is the fallback page and page size for one resource kind.
type PageDefaults struct {
	Page     int
	PageSize int
}

// PaginationConfig holds one canonical default per listable resource kind.
type PaginationConfig struct {
	Region    PageDefaults
	Patron    PageDefaults
	Publisher PageDefaults
	Book      PageDefaults
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost    string
	Port       string
	Timezone   string
	Database   DatabaseConfig
	Redis      RedisConfig
	MinIO      MinIOConfig
	Auth       AuthConfig
	Pagination PaginationConfig
}

const (
	defaultPage     = 1
	defaultPageSize = 100
)

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost:  getEnv("APP_HOST", "localhost:8080"),
		Port:     getEnv("PORT", "8080"),
		Timezone: getEnv("APP_TIMEZONE", "UTC"),
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
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", ""),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		Auth: AuthConfig{
			SigningKey:        getEnv("AUTH_SIGNING_KEY", ""),
			Issuer:            getEnv("AUTH_ISSUER", "catalogapi"),
			AccessTTL:         getEnvDuration("AUTH_ACCESS_TTL", 15*time.Minute),
			RefreshTTL:        getEnvDuration("AUTH_REFRESH_TTL", 7*24*time.Hour),
			BcryptCost:        getEnvInt("AUTH_BCRYPT_COST", 12),
			HashConcurrency:   getEnvInt("AUTH_HASH_CONCURRENCY", runtime.GOMAXPROCS(0)),
			RevocationBackend: getEnv("REVOCATION_BACKEND", "postgres"),
		},
		Pagination: PaginationConfig{
			Region:    pageDefaults("REGION"),
			Patron:    pageDefaults("PATRON"),
			Publisher: pageDefaults("PUBLISHER"),
			Book:      pageDefaults("BOOK"),
		},
	}
}

// Location resolves Timezone, falling back to UTC when it is unknown.
func (c *AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func pageDefaults(kind string) PageDefaults {
	d := PageDefaults{
		Page:     getEnvInt("PAGINATION_"+kind+"_PAGE", defaultPage),
		PageSize: getEnvInt("PAGINATION_"+kind+"_PAGESIZE", defaultPageSize),
	}
	if d.Page < 1 {
		d.Page = defaultPage
	}
	if d.PageSize < 1 {
		d.PageSize = defaultPageSize
	}
	return d
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

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err == nil && d > 0 {
			return d
		}
	}
	return def
}
