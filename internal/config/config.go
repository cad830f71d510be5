// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/genc-murat/txstat/internal/histogram"
	"github.com/genc-murat/txstat/internal/memory"
	"github.com/genc-murat/txstat/internal/txn"
	"github.com/genc-murat/txstat/internal/txstat"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string        `yaml:"environment"`
	TxStat      TxStatConfig  `yaml:"txstat"`
	Memory      MemoryConfig  `yaml:"memory"`
	Metrics     MetricsConfig `yaml:"metrics"`
	Logging     LoggingConfig `yaml:"logging"`
}

type TxStatConfig struct {
	Buckets        []int64 `yaml:"buckets"`
	RecordPoolSize int     `yaml:"record_pool_size"`
}

type MemoryConfig struct {
	RegionPageSize int `yaml:"region_page_size"`
	RegionLimit    int `yaml:"region_limit"`
	TxnHeaderSize  int `yaml:"txn_header_size"`
	// Pools maps a pool name to its object size in bytes.
	Pools map[string]int `yaml:"pools"`
	// PoolMaxObjects caps live objects per pool; 0 means unlimited.
	PoolMaxObjects int `yaml:"pool_max_objects"`
}

type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Namespace string `yaml:"namespace"`
	Addr      string `yaml:"addr"`
	Path      string `yaml:"path"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func Default() *Config {
	return &Config{
		Environment: "development",
		TxStat: TxStatConfig{
			Buckets:        append([]int64(nil), histogram.DefaultBuckets...),
			RecordPoolSize: 64,
		},
		Memory: MemoryConfig{
			RegionPageSize: memory.DefaultPageSize,
			TxnHeaderSize:  256,
			Pools: map[string]int{
				"tracker":   48,
				"story":     96,
				"savepoint": 64,
				"statement": 128,
			},
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: "memtx",
			Addr:      ":9100",
			Path:      "/metrics",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

func (c *Config) Validate() error {
	if err := histogram.ValidateBuckets(c.TxStat.Buckets); err != nil {
		return fmt.Errorf("txstat.buckets: %w", err)
	}
	if c.TxStat.RecordPoolSize < 0 {
		return fmt.Errorf("txstat.record_pool_size must not be negative")
	}
	if c.Memory.RegionPageSize <= 0 {
		return fmt.Errorf("memory.region_page_size must be positive")
	}
	if c.Memory.TxnHeaderSize < 0 || c.Memory.RegionLimit < 0 || c.Memory.PoolMaxObjects < 0 {
		return fmt.Errorf("memory sizes must not be negative")
	}
	if c.Memory.RegionLimit > 0 && c.Memory.TxnHeaderSize > c.Memory.RegionLimit {
		return fmt.Errorf("memory.txn_header_size exceeds memory.region_limit")
	}
	bad := lo.PickBy(c.Memory.Pools, func(_ string, size int) bool { return size <= 0 })
	if len(bad) > 0 {
		return fmt.Errorf("memory.pools: non-positive object size for %v", lo.Keys(bad))
	}
	return nil
}

func (c *Config) Accounting() txstat.Config {
	return txstat.Config{
		Buckets:        c.TxStat.Buckets,
		RecordPoolSize: c.TxStat.RecordPoolSize,
	}
}

func (c *Config) Regions() txn.RegionConfig {
	return txn.RegionConfig{
		PageSize:   c.Memory.RegionPageSize,
		HeaderSize: c.Memory.TxnHeaderSize,
		Limit:      c.Memory.RegionLimit,
	}
}

func findProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	// Walk up the directory tree until we find the module root holding the config directory
	for {
		if isDir(filepath.Join(dir, "config")) && isFile(filepath.Join(dir, "go.mod")) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("could not find project root (no config directory found)")
		}
		dir = parent
	}
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// LoadConfig reads config/<env>.yaml (or .yml) from the project root.
func LoadConfig(env string) (*Config, error) {
	projectRoot, err := findProjectRoot()
	if err != nil {
		return nil, fmt.Errorf("error finding project root: %w", err)
	}

	configPath := filepath.Join(projectRoot, "config", fmt.Sprintf("%s.yaml", env))
	if _, err := os.Stat(configPath); err != nil {
		configPath = filepath.Join(projectRoot, "config", fmt.Sprintf("%s.yml", env))
	}

	cfg, err := Load(configPath)
	if err != nil {
		return nil, err
	}
	cfg.Environment = env
	return cfg, nil
}

// Load reads a config file. Fields missing from the file keep their defaults.
// A pools section replaces the default pools as a whole.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	config := Default()
	defaultPools := config.Memory.Pools
	// yaml.v3 decodes into an existing map without clearing it.
	config.Memory.Pools = nil
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}
	if config.Memory.Pools == nil {
		config.Memory.Pools = defaultPools
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return config, nil
}
