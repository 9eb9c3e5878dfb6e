package config

import (
	"fmt"
	"time"

	redisstore "github.com/TAKIS21345/techsteps-sub005/internal/infra/redis"
	"github.com/TAKIS21345/techsteps-sub005/internal/infra/storage/postgres"
)

// Duration accepts "30s"-style strings or integer nanoseconds in YAML.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err == nil {
		v, perr := time.ParseDuration(s)
		if perr != nil {
			return fmt.Errorf("invalid duration %q: %w", s, perr)
		}
		*d = Duration(v)
		return nil
	}

	var n int64
	if err := unmarshal(&n); err != nil {
		return err
	}
	*d = Duration(n)
	return nil
}

// Std converts to the standard library type.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Server       ServerConfig       `yaml:"server"`
	Logging      LoggingConfig      `yaml:"logging"`
	Redis        redisstore.Config  `yaml:"redis"`
	Database     postgres.Config    `yaml:"database"`
	Connectivity ConnectivityConfig `yaml:"connectivity"`
	Session      SessionConfig      `yaml:"session"`
	Queue        QueueConfig        `yaml:"queue"`
	Recovery     RecoveryConfig     `yaml:"recovery"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// ConnectivityConfig holds network probe settings.
type ConnectivityConfig struct {
	ProbeAddr string   `yaml:"probe_addr"`
	Interval  Duration `yaml:"interval"`
	Timeout   Duration `yaml:"timeout"`
}

// SessionConfig holds session snapshot settings.
type SessionConfig struct {
	SaveInterval Duration `yaml:"save_interval"` // default 30s
	MaxAge       Duration `yaml:"max_age"`       // default 1h
}

// QueueConfig holds offline action queue settings.
type QueueConfig struct {
	MaxRetries int `yaml:"max_retries"` // default per-action retry budget
}

// RecoveryConfig holds recovery pipeline settings.
type RecoveryConfig struct {
	HandlerTimeout      Duration `yaml:"handler_timeout"`       // per-strategy bound, default 30s
	MemoryLimitBytes    uint64   `yaml:"memory_limit_bytes"`    // 0 = memory watch disabled
	MemoryCheckInterval Duration `yaml:"memory_check_interval"` // default 30s
}
