package lark

import (
	"fmt"
	"sort"

	"github.com/bytedance/gg/gconv"

	"github.com/heraldbot/herald/internal/channel"
)

// DefaultAccountID names the account created by the bare app_id/app_secret
// shorthand. It also sorts first among configured accounts.
const DefaultAccountID = "default"

type Config struct {
	// Accounts in stable order: "default" first, the rest sorted by id.
	Accounts []AccountConfig
}

type AccountConfig struct {
	ID        string
	AppID     string
	AppSecret string
	Enabled   bool
	// Actions holds per-key enablement overrides (reactions,
	// deleteMessage). Unset keys fall back to the gate defaults.
	Actions map[string]bool
}

func (c *Config) Validate() error {
	seen := make(map[string]bool, len(c.Accounts))
	for i := range c.Accounts {
		acct := &c.Accounts[i]
		if acct.ID == "" {
			return fmt.Errorf("lark account #%d: id cannot be empty", i)
		}
		if seen[acct.ID] {
			return fmt.Errorf("lark account %q: duplicate id", acct.ID)
		}
		seen[acct.ID] = true
		if acct.AppID == "" {
			return fmt.Errorf("lark account %q: app_id is required", acct.ID)
		}
		if acct.AppSecret == "" {
			return fmt.Errorf("lark account %q: app_secret is required", acct.ID)
		}
	}
	return nil
}

func (c *Config) GetType() channel.Type {
	return channel.Lark
}

// ParseConfig reads the lark channel section of the instance config.
// Accounts come from an "accounts" mapping keyed by account id; bare
// top-level app_id/app_secret are shorthand for a single default account.
// A config with zero accounts is legal and yields an empty capability set.
func ParseConfig(configMap map[string]interface{}) (*Config, error) {
	cfg := &Config{}

	if rawAccounts, ok := configMap["accounts"].(map[string]interface{}); ok {
		for id, raw := range rawAccounts {
			entry, ok := raw.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("lark account %q: must be a mapping", id)
			}
			acct, err := parseAccount(id, entry)
			if err != nil {
				return nil, err
			}
			cfg.Accounts = append(cfg.Accounts, *acct)
		}
		sortAccounts(cfg.Accounts)
	} else if appID := gconv.To[string](configMap["app_id"]); appID != "" {
		cfg.Accounts = []AccountConfig{{
			ID:        DefaultAccountID,
			AppID:     appID,
			AppSecret: gconv.To[string](configMap["app_secret"]),
			Enabled:   true,
		}}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid lark config: %w", err)
	}

	return cfg, nil
}

func parseAccount(id string, entry map[string]interface{}) (*AccountConfig, error) {
	acct := &AccountConfig{ID: id, Enabled: true}

	acct.AppID = gconv.To[string](entry["app_id"])
	if acct.AppID == "" {
		return nil, fmt.Errorf("lark account %q: app_id is required", id)
	}
	acct.AppSecret = gconv.To[string](entry["app_secret"])
	if acct.AppSecret == "" {
		return nil, fmt.Errorf("lark account %q: app_secret is required", id)
	}

	if v, ok := entry["enabled"]; ok {
		acct.Enabled = gconv.To[bool](v)
	}

	if rawActions, ok := entry["actions"].(map[string]interface{}); ok {
		acct.Actions = make(map[string]bool, len(rawActions))
		for key, v := range rawActions {
			acct.Actions[key] = gconv.To[bool](v)
		}
	}

	return acct, nil
}

// EnabledAccounts filters to the accounts that may execute actions,
// preserving the stable config order.
func (c *Config) EnabledAccounts() []AccountConfig {
	out := make([]AccountConfig, 0, len(c.Accounts))
	for _, acct := range c.Accounts {
		if acct.Enabled {
			out = append(out, acct)
		}
	}
	return out
}

func sortAccounts(accounts []AccountConfig) {
	sort.Slice(accounts, func(i, j int) bool {
		a, b := accounts[i].ID, accounts[j].ID
		if a == DefaultAccountID {
			return b != DefaultAccountID
		}
		if b == DefaultAccountID {
			return false
		}
		return a < b
	})
}
