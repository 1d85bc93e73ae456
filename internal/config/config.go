// Package config loads manoj-chat settings from a YAML file, a .env file and
// the environment, in increasing order of precedence. Command-line flags are
// applied on top by the caller.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables read by ApplyEnv.
const (
	EnvAPIURL       = "MANOJ_CHAT_API_URL"
	EnvLegacyAPIURL = "NEXT_PUBLIC_API_URL"
	EnvStore        = "MANOJ_CHAT_STORE"
	EnvRedisURL     = "MANOJ_CHAT_REDIS_URL"
	EnvLogLevel     = "MANOJ_CHAT_LOG_LEVEL"
	EnvStateDir     = "MANOJ_CHAT_STATE_DIR"
)

const (
	defaultAPIURL   = "http://127.0.0.1:5000"
	defaultDriver   = "file"
	defaultLogLevel = "warn"
	stateDirName    = ".manoj-chat"
	configFileName  = "config.yaml"
	sqliteFileName  = "manoj-chat.db"
)

var validDrivers = map[string]bool{"file": true, "sqlite": true, "redis": true, "memory": true}

type APIConfig struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"` // 0 = no client timeout
}

type StoreConfig struct {
	Driver     string `yaml:"driver"` // file | sqlite | redis | memory
	Dir        string `yaml:"dir"`
	SQLitePath string `yaml:"sqlite_path"`
}

type RedisConfig struct {
	URL string        `yaml:"url"`
	TTL time.Duration `yaml:"ttl"`
}

type LogConfig struct {
	Level string `yaml:"level"` // error|warn|info|debug
}

// Config is the resolved application configuration.
type Config struct {
	API      APIConfig   `yaml:"api"`
	Store    StoreConfig `yaml:"store"`
	Redis    RedisConfig `yaml:"redis"`
	Log      LogConfig   `yaml:"log"`
	StateDir string      `yaml:"state_dir"`

	// Path is the file the config was read from, empty when none was found.
	Path string `yaml:"-"`
}

// DefaultStateDir returns ~/.manoj-chat, or a relative .manoj-chat when the
// home directory is unknown.
func DefaultStateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return stateDirName
	}
	return filepath.Join(home, stateDirName)
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	return filepath.Join(DefaultStateDir(), configFileName)
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads the YAML file at path over the defaults. An empty path means
// DefaultPath, which may be absent; an explicit path must exist.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	cfg := &Config{}
	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
		cfg.Path = path
	case errors.Is(err, os.ErrNotExist) && !explicit:
		// no config file is fine
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

// LoadDotEnv copies variables from the given .env files (default ".env")
// into the environment without overwriting variables that are already set.
// Missing files are skipped.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, file := range files {
		envMap, err := godotenv.Read(file)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return fmt.Errorf("read %s: %w", file, err)
		}
		for k, v := range envMap {
			if os.Getenv(k) == "" {
				os.Setenv(k, v)
			}
		}
	}
	return nil
}

// ApplyEnv overrides settings from environment variables looked up with
// lookup (os.LookupEnv in production).
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	get := func(key string) string {
		v, ok := lookup(key)
		if !ok {
			return ""
		}
		return strings.TrimSpace(v)
	}

	if v := get(EnvAPIURL); v != "" {
		c.API.URL = v
	} else if v := get(EnvLegacyAPIURL); v != "" {
		c.API.URL = v
	}
	if v := get(EnvStore); v != "" {
		c.Store.Driver = v
	}
	if v := get(EnvRedisURL); v != "" {
		c.Redis.URL = v
	}
	if v := get(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
	if v := get(EnvStateDir); v != "" {
		c.SetStateDir(v)
	}
}

// SetStateDir moves the state directory. Store locations still pointing
// at the previous directory follow it.
func (c *Config) SetStateDir(dir string) {
	old := c.StateDir
	c.StateDir = dir
	if c.Store.Dir == old {
		c.Store.Dir = dir
	}
	if c.Store.SQLitePath == filepath.Join(old, sqliteFileName) {
		c.Store.SQLitePath = filepath.Join(dir, sqliteFileName)
	}
}

// CookiePath returns the cookie jar file inside the state directory.
func (c *Config) CookiePath(name string) string {
	return filepath.Join(c.StateDir, name)
}

// Validate reports settings that cannot work.
func (c *Config) Validate() error {
	if !validDrivers[c.Store.Driver] {
		return fmt.Errorf("store.driver %q is not one of file, sqlite, redis, memory", c.Store.Driver)
	}
	if c.Store.Driver == "redis" && c.Redis.URL == "" {
		return errors.New("redis.url is required when store.driver is redis")
	}
	if c.API.Timeout < 0 {
		return errors.New("api.timeout must not be negative")
	}
	if c.Redis.TTL < 0 {
		return errors.New("redis.ttl must not be negative")
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.API.URL == "" {
		c.API.URL = defaultAPIURL
	}
	if c.StateDir == "" {
		c.StateDir = DefaultStateDir()
	}
	if c.Store.Driver == "" {
		c.Store.Driver = defaultDriver
	}
	if c.Store.Dir == "" {
		c.Store.Dir = c.StateDir
	}
	if c.Store.SQLitePath == "" {
		c.Store.SQLitePath = filepath.Join(c.StateDir, sqliteFileName)
	}
	if c.Log.Level == "" {
		c.Log.Level = defaultLogLevel
	}
}
