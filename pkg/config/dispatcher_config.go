// Package config provides configuration loading for the dispatcher.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// QueueConfig configures the optional Redis list receiver.
type QueueConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Name     string `yaml:"name"`
}

// DispatcherConfig is the structure of the dispatcher YAML file.
type DispatcherConfig struct {
	Queue QueueConfig `yaml:"queue"`
}

// LoadDispatcherConfig reads the dispatcher configuration from a YAML file.
// A missing path yields the zero config, which disables the queue receiver.
func LoadDispatcherConfig(path string) (*DispatcherConfig, error) {
	if path == "" {
		return &DispatcherConfig{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var config DispatcherConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}

	if config.Queue.Enabled && config.Queue.Name == "" {
		return nil, fmt.Errorf("queue receiver enabled without a queue name in %s", path)
	}

	return &config, nil
}
