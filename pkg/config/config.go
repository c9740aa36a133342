// Package config loads repoman's configuration file.
//
// Configuration is a TOML document, by default named repoman.toml:
//
//	[cache]
//	backend = "file"        # file, redis, mongo or none
//	ttl = "24h"
//	prefix = "myproject:"  # scopes keys in a shared redis or mongo backend
//
//	[local]
//	path = "vendor/composer/installed.json"
//
//	[[repositories]]
//	type = "composer"
//	url = "https://repo.packagist.org"
//
//	[[repositories]]
//	type = "path"
//	url = "packages/*"
//
// Repository entries are kept as raw tables; only the "type" key is
// interpreted here; everything else is handed to the repository
// implementation registered for that type.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/repoman/pkg/cache"
	"github.com/matzehuels/repoman/pkg/errors"
)

const (
	// FileName is the default configuration file name.
	FileName = "repoman.toml"

	// EnvConfig names the environment variable that overrides the config path.
	EnvConfig = "REPOMAN_CONFIG"

	// DefaultPackagistURL is the canonical Composer repository.
	DefaultPackagistURL = "https://repo.packagist.org"

	// DefaultLocalPath is where Composer records installed packages.
	DefaultLocalPath = "vendor/composer/installed.json"

	DefaultCacheTTL    = 24 * time.Hour
	DefaultHTTPTimeout = 10 * time.Second
)

// Cache backends.
const (
	BackendFile  = cache.BackendFile
	BackendRedis = cache.BackendRedis
	BackendMongo = cache.BackendMongo
	BackendNone  = cache.BackendNone
)

// Config is the root configuration document.
type Config struct {
	Cache        CacheConfig      `toml:"cache"`
	Fetch        FetchConfig      `toml:"fetch"`
	Local        LocalConfig      `toml:"local"`
	Repositories []map[string]any `toml:"repositories"`

	// path is the file the config was loaded from, empty for defaults.
	path string
}

// CacheConfig selects and configures the HTTP response cache.
type CacheConfig struct {
	Backend string   `toml:"backend"`
	TTL     Duration `toml:"ttl"`
	Dir     string   `toml:"dir"`
	Prefix  string   `toml:"prefix"`

	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`

	MongoURI        string `toml:"mongo_uri"`
	MongoDatabase   string `toml:"mongo_database"`
	MongoCollection string `toml:"mongo_collection"`
}

// FetchConfig configures the network-fetch client.
type FetchConfig struct {
	Timeout   Duration          `toml:"timeout"`
	UserAgent string            `toml:"user_agent"`
	Headers   map[string]string `toml:"headers"`
}

// LocalConfig locates the local (installed) repository.
type LocalConfig struct {
	Path string `toml:"path"`
}

// Duration is a time.Duration that decodes from strings like "24h".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the configuration used when no file is present: a file
// cache, packagist as the only repository and Composer's installed.json as
// the local repository.
func Default() *Config {
	c := &Config{
		Repositories: []map[string]any{
			{"type": "composer", "url": DefaultPackagistURL},
		},
	}
	c.applyDefaults()
	return c
}

// Load reads and validates the TOML file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	c, err := Parse(string(data))
	if err != nil {
		return nil, err
	}
	c.path = path
	return c, nil
}

// Parse decodes a TOML document, applies defaults and validates the result.
func Parse(doc string) (*Config, error) {
	var c Config
	md, err := toml.Decode(doc, &c)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			// Repository tables are free-form.
			if len(k) > 0 && k[0] == "repositories" {
				continue
			}
			keys = append(keys, k.String())
		}
		if len(keys) > 0 {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown config keys: %s", strings.Join(keys, ", "))
		}
	}
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Discover returns the config file to use: explicit wins, then
// $REPOMAN_CONFIG, then ./repoman.toml, then the XDG config directory.
// It returns "" when none of them exist.
func Discover(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if env := os.Getenv(EnvConfig); env != "" {
		return env
	}
	candidates := []string{FileName}
	if dir, err := Dir(); err == nil {
		candidates = append(candidates, filepath.Join(dir, FileName))
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// Dir returns the configuration directory using the XDG standard
// (~/.config/repoman/).
func Dir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, "repoman"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "repoman"), nil
}

// CacheOptions converts the cache section into [cache.Options]. dir is the
// fallback directory for the file backend when none is configured.
func (c *Config) CacheOptions(dir string) cache.Options {
	if c.Cache.Dir != "" {
		dir = c.Cache.Dir
	}
	return cache.Options{
		Backend: c.Cache.Backend,
		Dir:     dir,
		Prefix:  c.Cache.Prefix,
		Redis: cache.RedisOptions{
			Addr:     c.Cache.RedisAddr,
			Password: c.Cache.RedisPassword,
			DB:       c.Cache.RedisDB,
		},
		Mongo: cache.MongoOptions{
			URI:        c.Cache.MongoURI,
			Database:   c.Cache.MongoDatabase,
			Collection: c.Cache.MongoCollection,
		},
	}
}

// Path returns the file the config was loaded from, or "" for defaults.
func (c *Config) Path() string { return c.path }

// Validate checks backend names and repository entries.
func (c *Config) Validate() error {
	switch c.Cache.Backend {
	case BackendFile, BackendNone:
	case BackendRedis:
		if c.Cache.RedisAddr == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "cache.redis_addr is required for the redis backend")
		}
	case BackendMongo:
		if c.Cache.MongoURI == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "cache.mongo_uri is required for the mongo backend")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown cache backend %q", c.Cache.Backend)
	}

	for i, repo := range c.Repositories {
		typ, _ := repo["type"].(string)
		if err := errors.ValidateRepositoryType(strings.ToLower(typ)); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "repositories[%d]", i)
		}
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Cache.Backend == "" {
		c.Cache.Backend = BackendFile
	}
	if c.Cache.TTL.Duration <= 0 {
		c.Cache.TTL.Duration = DefaultCacheTTL
	}
	if c.Cache.MongoDatabase == "" {
		c.Cache.MongoDatabase = "repoman"
	}
	if c.Cache.MongoCollection == "" {
		c.Cache.MongoCollection = "cache"
	}
	if c.Fetch.Timeout.Duration <= 0 {
		c.Fetch.Timeout.Duration = DefaultHTTPTimeout
	}
	if c.Local.Path == "" {
		c.Local.Path = DefaultLocalPath
	}
}
