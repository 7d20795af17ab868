// Package config loads the slambuc configuration file.
//
// The file is TOML; every key is optional and missing keys keep their
// defaults:
//
//	[partition]
//	algorithm = "ltree"
//	M = 512
//	N = 2
//	delay = 10
//
//	[cache]
//	backend = "redis"
//	ttl = "24h"
//	[cache.redis]
//	addr = "localhost:6379"
//
//	[store]
//	backend = "mongo"
//	[store.mongo]
//	uri = "mongodb://localhost:27017"
//
//	[server]
//	addr = ":8080"
//
// Command-line flags override file values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/hsnlab/SLAMBUC/pkg/errors"
	"github.com/hsnlab/SLAMBUC/pkg/partition"
)

// Backend names.
const (
	BackendNone  = "none"
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendMongo = "mongo"
)

// Config is the complete configuration.
type Config struct {
	Partition Partition `toml:"partition"`
	Cache     Cache     `toml:"cache"`
	Store     Store     `toml:"store"`
	Server    Server    `toml:"server"`
}

// Partition holds the default partitioning parameters.
type Partition struct {
	Algorithm     string `toml:"algorithm"`
	M             int64  `toml:"M"`
	L             int64  `toml:"L"`
	N             int    `toml:"N"`
	Delay         int64  `toml:"delay"`
	Unit          int64  `toml:"unit"`
	Bidirectional bool   `toml:"bidirectional"`
	Workers       int    `toml:"workers"`
}

// Cache selects the result cache.
type Cache struct {
	Backend string        `toml:"backend"`
	Dir     string        `toml:"dir"`
	TTL     time.Duration `toml:"ttl"`
	Redis   Redis         `toml:"redis"`
}

// Redis configures the shared cache.
type Redis struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	Prefix   string `toml:"prefix"`
}

// Store selects the run archive.
type Store struct {
	Backend string `toml:"backend"`
	Dir     string `toml:"dir"`
	Mongo   Mongo  `toml:"mongo"`
}

// Mongo configures the MongoDB run archive.
type Mongo struct {
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// Server configures the HTTP service.
type Server struct {
	Addr           string        `toml:"addr"`
	RequestTimeout time.Duration `toml:"request_timeout"`
	MaxBodyBytes   int64         `toml:"max_body_bytes"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	p := partition.DefaultParams()
	return Config{
		Partition: Partition{
			Algorithm:     partition.DefaultAlgorithm,
			N:             p.N,
			Delay:         p.Delay,
			Unit:          p.Unit,
			Bidirectional: p.Bidirectional,
		},
		Cache: Cache{
			Backend: BackendFile,
			TTL:     7 * 24 * time.Hour,
		},
		Store: Store{
			Backend: BackendFile,
			Mongo: Mongo{
				Database:   "slambuc",
				Collection: "runs",
			},
		},
		Server: Server{
			Addr:           ":8080",
			RequestTimeout: time.Minute,
			MaxBodyBytes:   8 << 20,
		},
	}
}

// Dir returns the per-user configuration directory (~/.config/slambuc).
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".config", "slambuc"), nil
}

// DefaultPath returns the path Load reads when given an empty path.
func DefaultPath() string {
	dir, err := Dir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "config.toml")
}

// Load reads the file at path over the defaults. An empty path reads
// DefaultPath and tolerates its absence; an explicit path must exist.
func Load(path string) (Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
		if path == "" {
			return cfg, nil
		}
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if os.IsNotExist(err) {
			if !explicit {
				return Default(), nil
			}
			return Config{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
		}
		return Config{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, errors.New(errors.ErrCodeInvalidFormat, "unknown config keys in %s: %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks backend names and the partitioning defaults.
func (c Config) Validate() error {
	if _, err := partition.Lookup(c.Partition.Algorithm); err != nil {
		return err
	}
	if err := c.Partition.Params().Validate(); err != nil {
		return err
	}
	if !slices.Contains([]string{BackendNone, BackendFile, BackendRedis}, c.Cache.Backend) {
		return errors.New(errors.ErrCodeInvalidInput, "unknown cache backend %q", c.Cache.Backend)
	}
	if c.Cache.Backend == BackendRedis {
		if err := errors.ValidateRedisAddr(c.Cache.Redis.Addr); err != nil {
			return err
		}
	}
	if !slices.Contains([]string{BackendNone, BackendFile, BackendMongo}, c.Store.Backend) {
		return errors.New(errors.ErrCodeInvalidInput, "unknown store backend %q", c.Store.Backend)
	}
	if c.Store.Backend == BackendMongo {
		if err := errors.ValidateMongoURI(c.Store.Mongo.URI); err != nil {
			return err
		}
	}
	if c.Cache.TTL < 0 || c.Server.RequestTimeout < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "durations must not be negative")
	}
	return nil
}

// Params converts the partitioning section. Zero limits mean unbounded.
func (p Partition) Params() partition.Params {
	params := partition.DefaultParams()
	if p.M > 0 {
		params.M = p.M
	}
	if p.L > 0 {
		params.L = p.L
	}
	params.N = p.N
	params.Delay = p.Delay
	params.Unit = p.Unit
	params.Bidirectional = p.Bidirectional
	params.Workers = p.Workers
	return params
}
