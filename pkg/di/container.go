// Package di wires configuration, logger, cache backend, and repositories
// into ready-to-use singletons.
package di

import (
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-clinic/cache"
	"github.com/goliatone/go-clinic/config"
	"github.com/goliatone/go-clinic/internal/cacheinfra"
	"github.com/goliatone/go-clinic/repository"
	"github.com/goliatone/go-clinic/store"
)

// UserCachePrefix is the key-grammar domain segment for the user repository.
const UserCachePrefix = "user"

// Container manages singleton instances of the cache backend, logger, and
// metrics sink, and provides factory methods for per-repository cache
// behavior and repositories.
type Container struct {
	cfg     config.Config
	backend cache.Backend
	logger  zerolog.Logger
	metrics cache.Metrics
}

// NewContainer creates a DI container from the provided configuration. The
// cache driver selects the backend; unknown drivers are a configuration
// error.
func NewContainer(cfg config.Config) (*Container, error) {
	backend, err := newBackend(cfg.Cache)
	if err != nil {
		return nil, err
	}
	return &Container{
		cfg:     cfg,
		backend: backend,
		logger:  newLogger(cfg.Log),
		metrics: cache.NopMetrics(),
	}, nil
}

// NewContainerWithDefaults creates a container from environment variables.
func NewContainerWithDefaults() (*Container, error) {
	return NewContainer(config.Load())
}

// SetMetrics replaces the metrics sink used by subsequently built cache
// behaviors.
func (c *Container) SetMetrics(m cache.Metrics) {
	if m != nil {
		c.metrics = m
	}
}

// Backend returns the singleton cache backend.
func (c *Container) Backend() cache.Backend { return c.backend }

// Logger returns the configured logger.
func (c *Container) Logger() zerolog.Logger { return c.logger }

// Config returns a copy of the configuration used by this container.
func (c *Container) Config() config.Config { return c.cfg }

// Ops builds the cache behavior for one repository domain prefix.
func (c *Container) Ops(prefix string) (*cache.Ops, error) {
	return cache.NewOps(c.backend, cache.Config{
		Prefix:  prefix,
		TTL:     c.cfg.Cache.TTL,
		Logger:  c.logger,
		Metrics: c.metrics,
	})
}

// Users builds the tenant user repository on top of the given store.
func (c *Container) Users(st store.UserStore) (*repository.Users, error) {
	ops, err := c.Ops(UserCachePrefix)
	if err != nil {
		return nil, err
	}
	return repository.NewUsers(st, ops), nil
}

func newBackend(cfg config.CacheConfig) (cache.Backend, error) {
	switch cfg.Driver {
	case config.DriverRedis:
		return cacheinfra.NewRedisBackend(cacheinfra.RedisConfig{
			Addr:      cfg.RedisAddr,
			Password:  cfg.RedisPassword,
			DB:        cfg.RedisDB,
			Namespace: cfg.RedisNamespace,
		})
	case config.DriverMemory, "":
		return cacheinfra.NewMemoryBackend(cacheinfra.MemoryConfig{
			Capacity:           cfg.MemoryCapacity,
			NumShards:          cfg.MemoryShards,
			EvictionPercentage: cfg.MemoryEvictPercent,
			MaxTTL:             cfg.MemoryMaxTTL,
		})
	default:
		return nil, &cache.ConfigError{Field: "Cache.Driver", Message: "unknown driver " + cfg.Driver}
	}
}

func newLogger(cfg config.LogConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	var logger zerolog.Logger
	if cfg.Pretty {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	} else {
		logger = zerolog.New(os.Stderr)
	}
	return logger.Level(level).With().Timestamp().Logger()
}
