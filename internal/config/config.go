// Package config loads aoflow settings from an optional YAML file and
// AOFLOW_* environment variables.
package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/aretw0/aoflow/pkg/registry"
	"github.com/spf13/viper"
)

// DefaultFile is looked up in the working directory when no path is given.
const DefaultFile = "aoflow.yaml"

// Config holds all application configuration.
type Config struct {
	Log       LogConfig       `mapstructure:"log"`
	Graph     GraphConfig     `mapstructure:"graph"`
	Server    ServerConfig    `mapstructure:"server"`
	Store     StoreConfig     `mapstructure:"store"`
	Executor  ExecutorConfig  `mapstructure:"executor"`
	Provision ProvisionConfig `mapstructure:"provision"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// GraphConfig selects where the graph is read from.
type GraphConfig struct {
	// Source is one of file, loam, store.
	Source string `mapstructure:"source"`
	// Path is a snapshot file (file) or a repository directory (loam).
	Path string `mapstructure:"path"`
	// Name is the snapshot name inside the store (store).
	Name string `mapstructure:"name"`
}

type ServerConfig struct {
	Addr    string `mapstructure:"addr"`
	BaseURL string `mapstructure:"base_url"`
}

// StoreConfig selects the GraphStore backend.
type StoreConfig struct {
	// Backend is one of memory, file, redis.
	Backend   string        `mapstructure:"backend"`
	Dir       string        `mapstructure:"dir"`
	RedisAddr string        `mapstructure:"redis_addr"`
	Prefix    string        `mapstructure:"prefix"`
	TTL       time.Duration `mapstructure:"ttl"`

	// EncryptionKey is a base64 AES-256 key; stored snapshots are sealed when set.
	EncryptionKey string `mapstructure:"encryption_key"`
	// FallbackKeys are older base64 keys still accepted for decryption.
	FallbackKeys []string `mapstructure:"fallback_keys"`
	// Redact lists regular expressions of node data keys masked on save.
	Redact []string `mapstructure:"redact"`
}

// Keys decodes the encryption keys. The active key is nil when encryption
// is off.
func (s StoreConfig) Keys() (active []byte, fallback [][]byte, err error) {
	if s.EncryptionKey == "" {
		return nil, nil, nil
	}
	active, err = base64.StdEncoding.DecodeString(s.EncryptionKey)
	if err != nil {
		return nil, nil, fmt.Errorf("store encryption_key: %w", err)
	}
	for i, k := range s.FallbackKeys {
		key, err := base64.StdEncoding.DecodeString(k)
		if err != nil {
			return nil, nil, fmt.Errorf("store fallback_keys[%d]: %w", i, err)
		}
		fallback = append(fallback, key)
	}
	return active, fallback, nil
}

type ExecutorConfig struct {
	// Commands points at the allow-listed commands file.
	Commands string `mapstructure:"commands"`
	Target   string `mapstructure:"target"`
}

type ProvisionConfig struct {
	Retry registry.RetryPolicy `mapstructure:"retry"`
}

var (
	graphSources  = []string{"file", "loam", "store"}
	storeBackends = []string{"memory", "file", "redis"}
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("graph.source", "file")
	v.SetDefault("graph.path", "graph.json")
	v.SetDefault("graph.name", "default")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.base_url", "")
	v.SetDefault("store.backend", "memory")
	v.SetDefault("store.dir", ".aoflow/graphs")
	v.SetDefault("store.redis_addr", "localhost:6379")
	v.SetDefault("store.prefix", "aoflow:")
	v.SetDefault("store.ttl", 0)
	v.SetDefault("store.encryption_key", "")
	v.SetDefault("executor.commands", "commands.yaml")
	v.SetDefault("executor.target", "")
	v.SetDefault("provision.retry.max_attempts", 1)
	v.SetDefault("provision.retry.delay", "500ms")
	v.SetDefault("provision.retry.max_delay", "10s")
}

// Validate checks configuration for issues and returns warnings.
func (c *Config) Validate() []string {
	var warnings []string

	if !contains(graphSources, c.Graph.Source) {
		warnings = append(warnings, fmt.Sprintf("graph source '%s' is unknown (want one of %s)", c.Graph.Source, strings.Join(graphSources, ", ")))
	}
	if c.Graph.Source == "store" && c.Store.Backend == "memory" {
		warnings = append(warnings, "graph source 'store' with the memory backend starts empty")
	}
	if !contains(storeBackends, c.Store.Backend) {
		warnings = append(warnings, fmt.Sprintf("store backend '%s' is unknown (want one of %s)", c.Store.Backend, strings.Join(storeBackends, ", ")))
	}
	if c.Store.TTL < 0 {
		warnings = append(warnings, fmt.Sprintf("store ttl %s is negative", c.Store.TTL))
	}
	if active, _, err := c.Store.Keys(); err != nil {
		warnings = append(warnings, err.Error())
	} else if active != nil && len(active) != 32 {
		warnings = append(warnings, fmt.Sprintf("store encryption_key is %d bytes, want 32", len(active)))
	}
	if c.Provision.Retry.MaxAttempts < 1 {
		warnings = append(warnings, fmt.Sprintf("provision max_attempts %d is below 1; one attempt is made", c.Provision.Retry.MaxAttempts))
	}
	if c.Provision.Retry.MaxDelay > 0 && c.Provision.Retry.Delay > c.Provision.Retry.MaxDelay {
		warnings = append(warnings, "provision delay exceeds max_delay")
	}

	return warnings
}

// Load reads configuration from path and the environment. An empty path
// falls back to DefaultFile; a missing file yields the defaults.
// Warnings are written to stderr.
func Load(path string) (*Config, error) {
	return load(path, os.Stderr)
}

func load(path string, warn io.Writer) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("AOFLOW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	v.SetConfigFile(path)

	if _, err := os.Stat(path); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	} else if explicit || !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	for _, warning := range cfg.Validate() {
		fmt.Fprintf(warn, "Warning: %s\n", warning)
	}

	return &cfg, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
