package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/jjenkins/adressen/internal/service"
	"github.com/jjenkins/adressen/internal/store"
	"github.com/jjenkins/adressen/internal/table"
)

// envPrefix is prepended to every environment variable the config reads
const envPrefix = "ADRESSEN_"

// Config holds the runtime settings
type Config struct {
	Endpoint  string        `yaml:"endpoint"`
	Staleness time.Duration `yaml:"staleness"`
	PageSize  int           `yaml:"page_size"`
	Debounce  time.Duration `yaml:"debounce"`
	Port      string        `yaml:"port"`
	LogLevel  string        `yaml:"log_level"`
	Cache     CacheConfig   `yaml:"cache"`
	HTTP      HTTPConfig    `yaml:"http"`
}

// CacheConfig selects the cache store
type CacheConfig struct {
	Store string `yaml:"store"`
	DSN   string `yaml:"dsn"`
}

// HTTPConfig tunes the open-data client
type HTTPConfig struct {
	Timeout time.Duration `yaml:"timeout"`
}

// Default returns the built-in configuration. The cache lives in a SQLite
// file under the user cache directory, or in memory when there is none.
func Default() Config {
	cfg := Config{
		Endpoint:  service.DefaultEndpoint,
		Staleness: service.DefaultStalenessWindow,
		PageSize:  table.DefaultPageSize,
		Debounce:  250 * time.Millisecond,
		Port:      "8080",
		LogLevel:  "info",
		Cache:     CacheConfig{Store: store.KindMemory},
		HTTP:      HTTPConfig{Timeout: 60 * time.Second},
	}
	if path := defaultSQLitePath(); path != "" {
		cfg.Cache = CacheConfig{Store: store.KindSQLite, DSN: path}
	}
	return cfg
}

func defaultSQLitePath() string {
	dir, err := os.UserCacheDir()
	if err != nil || dir == "" {
		return ""
	}
	return filepath.Join(dir, "adressen", "cache.db")
}

// SetCacheStore switches the cache store kind. A DSN belongs to one kind, so
// switching resets it: to the default file for sqlite, to empty otherwise.
func (c *Config) SetCacheStore(kind string) {
	if kind == c.Cache.Store {
		return
	}
	c.Cache.Store = kind
	c.Cache.DSN = ""
	if kind == store.KindSQLite {
		c.Cache.DSN = defaultSQLitePath()
	}
}

// Load builds the configuration from defaults, the optional YAML file at
// path, a .env file in the working directory, ADRESSEN_* variables and
// finally the overrides (command-line flags), in that order of precedence
// (later wins). The result is validated once every layer is applied.
func Load(path string, overrides ...func(*Config)) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return Config{}, err
		}
	}

	// Load .env file if it exists (silently ignore if not found)
	_ = godotenv.Load()

	if err := cfg.loadEnv(); err != nil {
		return Config{}, err
	}

	for _, override := range overrides {
		override(&cfg)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	before := c.Cache
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	// A file that picks another store without a DSN must not inherit the
	// default one.
	if c.Cache.Store != before.Store && c.Cache.DSN == before.DSN {
		kind := c.Cache.Store
		c.Cache = before
		c.SetCacheStore(kind)
	}
	return nil
}

func (c *Config) loadEnv() error {
	if v, ok := lookup("ENDPOINT"); ok {
		c.Endpoint = v
	}
	if v, ok := lookup("PORT"); ok {
		c.Port = v
	}
	if v, ok := lookup("LOG_LEVEL"); ok {
		c.LogLevel = v
	}
	if v, ok := lookup("CACHE_STORE"); ok {
		c.SetCacheStore(v)
	}
	if v, ok := lookup("CACHE_DSN"); ok {
		c.Cache.DSN = v
	}
	if v, ok := lookup("PAGE_SIZE"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %sPAGE_SIZE: %w", envPrefix, err)
		}
		c.PageSize = n
	}

	durations := []struct {
		name string
		dst  *time.Duration
	}{
		{"STALENESS", &c.Staleness},
		{"DEBOUNCE", &c.Debounce},
		{"HTTP_TIMEOUT", &c.HTTP.Timeout},
	}
	for _, d := range durations {
		v, ok := lookup(d.name)
		if !ok {
			continue
		}
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s%s: %w", envPrefix, d.name, err)
		}
		*d.dst = parsed
	}

	return nil
}

// Validate checks the settings for values the services cannot work with
func (c Config) Validate() error {
	if c.Endpoint == "" {
		return fmt.Errorf("endpoint must not be empty")
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("page_size must be positive, got %d", c.PageSize)
	}
	if c.Staleness < 0 {
		return fmt.Errorf("staleness must not be negative, got %s", c.Staleness)
	}
	if c.Debounce < 0 {
		return fmt.Errorf("debounce must not be negative, got %s", c.Debounce)
	}
	switch c.Cache.Store {
	case store.KindMemory:
	case store.KindSQLite, store.KindPostgres:
		if c.Cache.DSN == "" {
			return fmt.Errorf("%s cache store requires a dsn", c.Cache.Store)
		}
	default:
		return fmt.Errorf("unknown cache store %q", c.Cache.Store)
	}
	return nil
}

// lookup returns a non-empty ADRESSEN_* variable
func lookup(name string) (string, bool) {
	v, ok := os.LookupEnv(envPrefix + name)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}
