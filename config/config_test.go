package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, k := range []string{"MONGO_URI", "MONGO_DATABASE", "PORT", "REDIS_DB", "JWT_TTL", "CORS_ORIGINS", "APP_ENV", "CACHE_REFRESH_INTERVAL"} {
		t.Setenv(k, "")
	}

	cfg := LoadConfig()
	assert.Equal(t, "mongodb://localhost:27017/", cfg.MongoURI)
	assert.Equal(t, "test-db", cfg.Database)
	assert.Equal(t, ":80", cfg.Port)
	assert.Equal(t, 0, cfg.RedisDB)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Equal(t, 10*time.Second, cfg.CacheRefreshInterval)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("MONGO_DATABASE", "retail")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("JWT_TTL", "90m")
	t.Setenv("CORS_ORIGINS", "http://localhost:3000, https://admin.example.com ,")
	t.Setenv("APP_ENV", "production")
	t.Setenv("CACHE_REFRESH_INTERVAL", "not-a-duration")

	cfg := LoadConfig()
	assert.Equal(t, "retail", cfg.Database)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, 90*time.Minute, cfg.JWTTTL)
	assert.Equal(t, []string{"http://localhost:3000", "https://admin.example.com"}, cfg.CORSOrigins)
	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, 10*time.Second, cfg.CacheRefreshInterval)
}
