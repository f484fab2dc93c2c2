package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	MongoURI string
	Database string
	Port     string

	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	JWTSecret string
	JWTTTL    time.Duration

	// Empty paths use the embedded defaults
	CatalogFile string
	MenuFile    string

	CORSOrigins          []string
	LogLevel             string
	Env                  string
	CacheRefreshInterval time.Duration
}

// LoadConfig reads .env when present, then the process environment.
func LoadConfig() *Config {
	_ = godotenv.Load()

	return &Config{
		MongoURI: getEnv("MONGO_URI", "mongodb://localhost:27017/"),
		Database: getEnv("MONGO_DATABASE", "test-db"),
		Port:     getEnv("PORT", ":80"),

		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		JWTSecret: getEnv("JWT_SECRET", "your-secret-key"),
		JWTTTL:    getEnvDuration("JWT_TTL", 24*time.Hour),

		CatalogFile: getEnv("PERMISSION_CATALOG_FILE", ""),
		MenuFile:    getEnv("MENU_FILE", ""),

		CORSOrigins:          getEnvList("CORS_ORIGINS", []string{"*"}),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		Env:                  getEnv("APP_ENV", "development"),
		CacheRefreshInterval: getEnvDuration("CACHE_REFRESH_INTERVAL", 10*time.Second),
	}
}

// IsDevelopment reports whether APP_ENV selects development logging.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development" || c.Env == "dev"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
