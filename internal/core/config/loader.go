package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// Load reads configuration from a YAML file.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg AppConfig
	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Set defaults if necessary
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Session.SaveInterval == 0 {
		cfg.Session.SaveInterval = Duration(30 * time.Second)
	}
	if cfg.Session.MaxAge == 0 {
		cfg.Session.MaxAge = Duration(time.Hour)
	}
	if cfg.Queue.MaxRetries == 0 {
		cfg.Queue.MaxRetries = 3
	}
	if cfg.Recovery.HandlerTimeout == 0 {
		cfg.Recovery.HandlerTimeout = Duration(30 * time.Second)
	}
	if cfg.Recovery.MemoryCheckInterval == 0 {
		cfg.Recovery.MemoryCheckInterval = Duration(30 * time.Second)
	}

	return &cfg, nil
}
