// Package config loads a Datastore's boot-time configuration the way the
// teacher's CLI prototypes do: github.com/spf13/viper layered over a YAML
// file, environment variables and defaults, with github.com/fsnotify/fsnotify
// (via viper.WatchConfig) driving hot-reload of index/TTL definitions.
package config

import (
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// IndexSpec is one entry of the configured index set, mirroring
// store.EnsureIndexOptions in a form that decodes cleanly from YAML/env.
type IndexSpec struct {
	Field              string   `mapstructure:"field" yaml:"field"`
	Unique             bool     `mapstructure:"unique" yaml:"unique"`
	Sparse             bool     `mapstructure:"sparse" yaml:"sparse"`
	ExpireAfterSeconds *float64 `mapstructure:"expire_after_seconds" yaml:"expire_after_seconds,omitempty"`
}

// Config is a Datastore's boot configuration.
type Config struct {
	DataFile   string      `mapstructure:"data_file" yaml:"data_file"`
	Timestamps bool        `mapstructure:"timestamps" yaml:"timestamps"`
	Indexes    []IndexSpec `mapstructure:"indexes" yaml:"indexes"`
}

// Load builds a viper instance using the standard layering: an explicit
// path, else name/type/search-path discovery, then environment overrides
// under the NEDB_ prefix, and unmarshals it into a Config. A missing config
// file is not an error: the defaults alone produce a usable Config.
func Load(path string) (*Config, *viper.Viper, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("nedb")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.nedb")
		v.AddConfigPath("/etc/nedb")
	}

	v.SetEnvPrefix("NEDB")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	v.SetDefault("data_file", "nedb.db")
	v.SetDefault("timestamps", false)

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, nil, fmt.Errorf("config: read: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	return cfg, v, nil
}

// Watch arranges for onChange to be called with a freshly unmarshaled
// Config every time the backing file changes on disk, via viper's fsnotify
// integration. Unmarshal errors from a bad edit are dropped rather than
// propagated: a half-written config file should not crash a running store.
func Watch(v *viper.Viper, onChange func(*Config)) {
	v.OnConfigChange(func(_ fsnotify.Event) {
		cfg := &Config{}
		if err := v.Unmarshal(cfg); err != nil {
			return
		}
		onChange(cfg)
	})
	v.WatchConfig()
}

// Dump renders cfg back to YAML, used by tests asserting round-trip
// fidelity of a configuration.
func Dump(cfg *Config) ([]byte, error) {
	out, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("config: marshal: %w", err)
	}
	return out, nil
}
