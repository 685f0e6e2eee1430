package config

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
)

type (
	Config struct {
		Gateway  GatewayConfig            `yaml:"gateway"`
		Logging  LoggingConfig            `yaml:"logging"`
		Schedule ScheduleConfig           `yaml:"schedule"`
		Channels map[string]ChannelConfig `yaml:"channels"`
	}

	GatewayConfig struct {
		Bind           string `yaml:"bind"`
		MetricsBind    string `yaml:"metrics_bind"`
		APIKey         string `yaml:"api_key"`
		RequestTimeout int    `yaml:"request_timeout"`
		AutoUpdate     bool   `yaml:"auto_update"`
	}

	LoggingConfig struct {
		Level      string `yaml:"level"`  // debug, info, warn, error
		Format     string `yaml:"format"` // json, text
		Output     string `yaml:"output"` // stdout, file, both
		File       string `yaml:"file"`
		MaxSize    int    `yaml:"max_size"` // MB
		MaxBackups int    `yaml:"max_backups"`
		MaxAge     int    `yaml:"max_age"` // days
	}

	ScheduleConfig struct {
		Enabled           *bool  `yaml:"enabled"`
		Store             string `yaml:"store"`
		MaxConcurrentRuns int    `yaml:"max_concurrent_runs"`
		JobTimeoutSec     int    `yaml:"job_timeout_sec"`
	}

	ChannelConfig struct {
		ID         string                 `yaml:"-"`
		Type       string                 `yaml:"type"` // telegram, lark
		Enabled    bool                   `yaml:"enabled"`
		MediaRoots []string               `yaml:"media_roots,omitempty"`
		Config     map[string]interface{} `yaml:"config"`
	}
)

// UpdateByName .
func (c *Config) UpdateByName(name string, value any) error {
	if c == nil {
		return fmt.Errorf("config cannot be nil")
	}

	normalizedName := strings.ToLower(strings.TrimSpace(name))
	if normalizedName == "" {
		return fmt.Errorf("name is required")
	}

	switch normalizedName {
	case "config":
		typed, ok := value.(*Config)
		if !ok || typed == nil {
			return fmt.Errorf("name 'config' requires *Config")
		}
		*c = *typed
	case "gateway":
		typed, ok := value.(*GatewayConfig)
		if !ok || typed == nil {
			return fmt.Errorf("name 'gateway' requires *GatewayConfig")
		}
		c.Gateway = *typed
	case "logging":
		typed, ok := value.(*LoggingConfig)
		if !ok || typed == nil {
			return fmt.Errorf("name 'logging' requires *LoggingConfig")
		}
		c.Logging = *typed
	case "schedule":
		typed, ok := value.(*ScheduleConfig)
		if !ok || typed == nil {
			return fmt.Errorf("name 'schedule' requires *ScheduleConfig")
		}
		c.Schedule = *typed
	case "channels":
		typed, ok := value.(*map[string]ChannelConfig)
		if !ok || typed == nil {
			return fmt.Errorf("name 'channels' requires *map[string]ChannelConfig")
		}
		next := make(map[string]ChannelConfig, len(*typed))
		for k, v := range *typed {
			next[k] = v
		}
		c.Channels = next
	default:
		return fmt.Errorf("unsupported config name: %s", name)
	}

	return nil
}

// Clone .
func (c *Config) Clone() (*Config, error) {
	if c == nil {
		return nil, fmt.Errorf("config is nil")
	}

	raw, err := sonic.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}

	var cloned Config
	if err := sonic.Unmarshal(raw, &cloned); err != nil {
		return nil, fmt.Errorf("unmarshal config clone: %w", err)
	}

	return &cloned, nil
}

// Hash .
func (c *Config) Hash() string {
	json := sonic.Config{SortMapKeys: true, UseNumber: true}.Froze()
	raw, _ := json.Marshal(c)
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}
