package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Validate .
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config cannot be nil")
	}

	if c.Schedule.Enabled == nil {
		enabled := true
		c.Schedule.Enabled = &enabled
	}
	if c.Schedule.MaxConcurrentRuns <= 0 {
		c.Schedule.MaxConcurrentRuns = 1
	}
	if c.Schedule.JobTimeoutSec <= 0 {
		c.Schedule.JobTimeoutSec = 300
	}
	c.Schedule.Store = strings.TrimSpace(c.Schedule.Store)
	if c.Schedule.Store == "" {
		c.Schedule.Store = filepath.Join("schedule", "jobs.json")
	}

	normalizedChannels := make(map[string]ChannelConfig, len(c.Channels))
	for key, one := range c.Channels {
		channelID := strings.TrimSpace(key)
		if channelID == "" {
			return errors.New("channel id cannot be empty")
		}
		one.ID = channelID

		if err := one.Validate(); err != nil {
			return fmt.Errorf("channels[%s] validation failed: %w", channelID, err)
		}
		normalizedChannels[channelID] = one
	}
	c.Channels = normalizedChannels
	return nil
}

func (c *ChannelConfig) Validate() error {
	if c == nil {
		return errors.New("channel config cannot be nil")
	}

	c.Type = strings.ToLower(strings.TrimSpace(c.Type))
	if c.Type == "" {
		return errors.New("channel type is required")
	}

	if len(c.MediaRoots) == 0 {
		c.MediaRoots = nil
		return nil
	}

	uniq := make(map[string]struct{}, len(c.MediaRoots))
	roots := make([]string, 0, len(c.MediaRoots))
	for _, one := range c.MediaRoots {
		one = filepath.Clean(strings.TrimSpace(one))
		if one == "" || one == "." {
			continue
		}
		if _, ok := uniq[one]; ok {
			continue
		}
		uniq[one] = struct{}{}
		roots = append(roots, one)
	}
	if len(roots) == 0 {
		roots = nil
	}
	c.MediaRoots = roots
	return nil
}
