// Package config loads server settings from an optional YAML file and the
// environment. Environment variables win over the file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Seed sources.
const (
	SourceGenerate = "generate"
	SourceFile     = "file"
	SourceRedis    = "redis"
	SourceMySQL    = "mysql"
)

type Config struct {
	HTTP       HTTPConfig       `yaml:"http"`
	GRPC       GRPCConfig       `yaml:"grpc"`
	Seed       SeedConfig       `yaml:"seed"`
	Latency    LatencyConfig    `yaml:"latency"`
	Log        LogConfig        `yaml:"log"`
	QueryCache QueryCacheConfig `yaml:"queryCache"`
}

type HTTPConfig struct {
	Addr            string        `yaml:"addr"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

type GRPCConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

type SeedConfig struct {
	Source      string         `yaml:"source"`
	Dir         string         `yaml:"dir"`
	RedisAddr   string         `yaml:"redisAddr"`
	RedisPrefix string         `yaml:"redisPrefix"`
	MySQLDSN    string         `yaml:"mysqlDSN"`
	Generate    GenerateConfig `yaml:"generate"`
}

type GenerateConfig struct {
	Users      int    `yaml:"users"`
	Categories int    `yaml:"categories"`
	Products   int    `yaml:"products"`
	Reviews    int    `yaml:"reviews"`
	Orders     int    `yaml:"orders"`
	Seed       uint64 `yaml:"seed"`
}

// LatencyConfig scales every simulated delay; 0 turns them off.
type LatencyConfig struct {
	Scale float64 `yaml:"scale"`
	Seed  uint64  `yaml:"seed"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// QueryCacheConfig bounds how long parsed documents are kept. A zero TTL
// disables the cache.
type QueryCacheConfig struct {
	TTL     time.Duration `yaml:"ttl"`
	Cleanup time.Duration `yaml:"cleanup"`
}

func Default() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Addr:            ":4000",
			ShutdownTimeout: 5 * time.Second,
		},
		GRPC: GRPCConfig{
			Enabled: true,
			Addr:    ":50051",
		},
		Seed: SeedConfig{
			Source:      SourceGenerate,
			Dir:         "mock-data",
			RedisAddr:   "localhost:6379",
			RedisPrefix: "graphql-bench:seed:",
			MySQLDSN:    "root:root@tcp(localhost:3306)/graphqlbench?parseTime=true",
			Generate: GenerateConfig{
				Users:      100,
				Categories: 10,
				Products:   1000,
				Reviews:    5000,
				Orders:     2000,
				Seed:       1,
			},
		},
		Latency: LatencyConfig{Scale: 1},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		QueryCache: QueryCacheConfig{
			TTL:     10 * time.Minute,
			Cleanup: 5 * time.Minute,
		},
	}
}

// Load reads path (skipped when empty) over the defaults, applies
// environment overrides and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from the environment using lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	strVars := map[string]*string{
		"BENCH_HTTP_ADDR":   &c.HTTP.Addr,
		"BENCH_GRPC_ADDR":   &c.GRPC.Addr,
		"BENCH_SEED_SOURCE": &c.Seed.Source,
		"BENCH_SEED_DIR":    &c.Seed.Dir,
		"MYSQL_DSN":         &c.Seed.MySQLDSN,
		"REDIS_ADDR":        &c.Seed.RedisAddr,
		"BENCH_LOG_LEVEL":   &c.Log.Level,
		"BENCH_LOG_FORMAT":  &c.Log.Format,
	}
	for name, dst := range strVars {
		if v, ok := lookup(name); ok && v != "" {
			*dst = v
		}
	}

	if v, ok := lookup("BENCH_LATENCY_SCALE"); ok && v != "" {
		scale, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("BENCH_LATENCY_SCALE: %w", err)
		}
		c.Latency.Scale = scale
	}
	if v, ok := lookup("BENCH_GRPC_ENABLED"); ok && v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("BENCH_GRPC_ENABLED: %w", err)
		}
		c.GRPC.Enabled = enabled
	}
	return nil
}

func (c *Config) Validate() error {
	var errs []error

	if c.HTTP.Addr == "" {
		errs = append(errs, errors.New("http.addr is required"))
	}
	if c.GRPC.Enabled && c.GRPC.Addr == "" {
		errs = append(errs, errors.New("grpc.addr is required when grpc is enabled"))
	}

	switch c.Seed.Source {
	case SourceGenerate:
	case SourceFile:
		if c.Seed.Dir == "" {
			errs = append(errs, errors.New("seed.dir is required for the file source"))
		}
	case SourceRedis:
		if c.Seed.RedisAddr == "" {
			errs = append(errs, errors.New("seed.redisAddr is required for the redis source"))
		}
	case SourceMySQL:
		if c.Seed.MySQLDSN == "" {
			errs = append(errs, errors.New("seed.mysqlDSN is required for the mysql source"))
		}
	default:
		errs = append(errs, fmt.Errorf("seed.source %q must be one of %s", c.Seed.Source,
			strings.Join([]string{SourceGenerate, SourceFile, SourceRedis, SourceMySQL}, ", ")))
	}

	if c.Latency.Scale < 0 {
		errs = append(errs, errors.New("latency.scale must not be negative"))
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format %q must be text or json", c.Log.Format))
	}
	if c.QueryCache.TTL < 0 || c.QueryCache.Cleanup < 0 {
		errs = append(errs, errors.New("queryCache durations must not be negative"))
	}

	return errors.Join(errs...)
}
