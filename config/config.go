// Package config provides environment-driven configuration for the clinic
// backend core.
package config

import (
	"os"
	"strconv"
	"time"
)

// Cache driver names accepted by CacheConfig.Driver.
const (
	DriverMemory = "memory"
	DriverRedis  = "redis"
)

// Config holds the complete library configuration.
type Config struct {
	Cache    CacheConfig
	Database DatabaseConfig
	Log      LogConfig
}

// CacheConfig holds cache backend configuration.
type CacheConfig struct {
	Driver             string
	TTL                time.Duration
	RedisAddr          string
	RedisPassword      string
	RedisDB            int
	RedisNamespace     string
	MemoryCapacity     int
	MemoryShards       int
	MemoryEvictPercent int
	MemoryMaxTTL       time.Duration
}

// DatabaseConfig holds the record store configuration.
type DatabaseConfig struct {
	Driver string
	DSN    string
}

// LogConfig holds logger configuration.
type LogConfig struct {
	Level  string
	Pretty bool
}

// Load creates a Config from environment variables.
func Load() Config {
	return Config{
		Cache: CacheConfig{
			Driver:             getEnv("CACHE_DRIVER", DriverMemory),
			TTL:                getEnvDuration("CACHE_TTL", 300*time.Second),
			RedisAddr:          getEnv("REDIS_ADDR", "localhost:6379"),
			RedisPassword:      getEnv("REDIS_PASSWORD", ""),
			RedisDB:            getEnvInt("REDIS_DB", 0),
			RedisNamespace:     getEnv("REDIS_NAMESPACE", "clinic:"),
			MemoryCapacity:     getEnvInt("CACHE_MEMORY_CAPACITY", 10000),
			MemoryShards:       getEnvInt("CACHE_MEMORY_SHARDS", 256),
			MemoryEvictPercent: getEnvInt("CACHE_MEMORY_EVICT_PERCENT", 10),
			MemoryMaxTTL:       getEnvDuration("CACHE_MEMORY_MAX_TTL", time.Hour),
		},
		Database: DatabaseConfig{
			Driver: getEnv("DATABASE_DRIVER", "sqlite"),
			DSN:    getEnv("DATABASE_DSN", "file::memory:?cache=shared"),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Pretty: getEnvBool("LOG_PRETTY", false),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultValue
}
