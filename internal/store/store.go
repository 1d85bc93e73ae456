// Package store persists the local conversation in a single key-value slot.
//
// A Backend is a plain string key-value medium (a directory of files, a
// sqlite table, redis, or process memory). MessageStore layers the message
// encoding on top of it.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Backend is a string key-value medium.
type Backend interface {
	// Get returns the stored value and whether the key exists.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	// Delete removes key; deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	Close() error
}

// Driver names a Backend implementation.
type Driver string

const (
	DriverFile   Driver = "file"
	DriverSQLite Driver = "sqlite"
	DriverRedis  Driver = "redis"
	DriverMemory Driver = "memory"
)

var (
	ErrInvalidConfig = errors.New("invalid store configuration")
	ErrInvalidDriver = errors.New("invalid store driver")
)

// Option configures Open.
type Option func(*backendConfig)

type backendConfig struct {
	dir         string
	sqlitePath  string
	redisClient *redis.Client
	redisTTL    time.Duration
	redisPrefix string
}

// WithDir sets the directory of the file backend.
func WithDir(dir string) Option {
	return func(c *backendConfig) {
		c.dir = dir
	}
}

// WithSQLitePath sets the database file of the sqlite backend.
func WithSQLitePath(path string) Option {
	return func(c *backendConfig) {
		c.sqlitePath = path
	}
}

// WithRedisClient sets the client of the redis backend.
func WithRedisClient(client *redis.Client) Option {
	return func(c *backendConfig) {
		c.redisClient = client
	}
}

// WithRedisTTL expires redis keys after ttl. Zero keeps them forever.
func WithRedisTTL(ttl time.Duration) Option {
	return func(c *backendConfig) {
		c.redisTTL = ttl
	}
}

// WithRedisPrefix namespaces redis keys.
func WithRedisPrefix(prefix string) Option {
	return func(c *backendConfig) {
		c.redisPrefix = prefix
	}
}

// Open creates the Backend named by driver.
func Open(driver Driver, opts ...Option) (Backend, error) {
	config := &backendConfig{redisPrefix: DefaultRedisPrefix}
	for _, opt := range opts {
		opt(config)
	}

	switch driver {
	case DriverMemory:
		return NewMemoryBackend(), nil

	case DriverFile, "":
		if config.dir == "" {
			return nil, fmt.Errorf("%w: file driver needs a directory", ErrInvalidConfig)
		}
		return NewFileBackend(config.dir)

	case DriverSQLite:
		if config.sqlitePath == "" {
			return nil, fmt.Errorf("%w: sqlite driver needs a database path", ErrInvalidConfig)
		}
		return OpenSQLiteBackend(config.sqlitePath)

	case DriverRedis:
		if config.redisClient == nil {
			return nil, fmt.Errorf("%w: redis driver needs a client", ErrInvalidConfig)
		}
		return NewRedisBackend(config.redisClient, config.redisPrefix, config.redisTTL), nil

	default:
		return nil, fmt.Errorf("%w: %q (supported: file, sqlite, redis, memory)", ErrInvalidDriver, driver)
	}
}
