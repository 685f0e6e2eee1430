package telegram

import (
	"fmt"
	"sort"

	"github.com/bytedance/gg/gconv"

	"github.com/heraldbot/herald/internal/channel"
)

// DefaultAccountID names the account created by the single-token config
// shorthand. It also sorts first among configured accounts.
const DefaultAccountID = "default"

type Config struct {
	// Accounts in stable order: "default" first, the rest sorted by id.
	Accounts []AccountConfig
	// StickerSets lists the sticker set names sticker-search looks
	// through.
	StickerSets []string
}

type AccountConfig struct {
	ID      string
	Token   string
	Enabled bool
	// Actions holds per-key enablement overrides (reactions,
	// deleteMessage, editMessage, sticker, sendPoll, createForumTopic).
	// Unset keys fall back to the gate defaults.
	Actions map[string]bool
	// Buttons overrides inline keyboard support. Unset means supported.
	Buttons *bool
}

func (c *Config) Validate() error {
	seen := make(map[string]bool, len(c.Accounts))
	for i := range c.Accounts {
		acct := &c.Accounts[i]
		if acct.ID == "" {
			return fmt.Errorf("telegram account #%d: id cannot be empty", i)
		}
		if seen[acct.ID] {
			return fmt.Errorf("telegram account %q: duplicate id", acct.ID)
		}
		seen[acct.ID] = true
		if acct.Token == "" {
			return fmt.Errorf("telegram account %q: token is required", acct.ID)
		}
	}
	return nil
}

func (c *Config) GetType() channel.Type {
	return channel.Telegram
}

// ParseConfig reads the telegram channel section of the instance config.
// Accounts come from an "accounts" mapping keyed by account id; a bare
// top-level "token" is shorthand for a single default account. A config
// with zero accounts is legal and yields an empty capability set.
func ParseConfig(configMap map[string]interface{}) (*Config, error) {
	cfg := &Config{}

	if rawAccounts, ok := configMap["accounts"].(map[string]interface{}); ok {
		for id, raw := range rawAccounts {
			entry, ok := raw.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("telegram account %q: must be a mapping", id)
			}
			acct, err := parseAccount(id, entry)
			if err != nil {
				return nil, err
			}
			cfg.Accounts = append(cfg.Accounts, *acct)
		}
		sortAccounts(cfg.Accounts)
	} else if token := gconv.To[string](configMap["token"]); token != "" {
		cfg.Accounts = []AccountConfig{{ID: DefaultAccountID, Token: token, Enabled: true}}
	}

	if rawSets, ok := configMap["stickerSets"].([]interface{}); ok {
		for _, s := range rawSets {
			if name := gconv.To[string](s); name != "" {
				cfg.StickerSets = append(cfg.StickerSets, name)
			}
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid telegram config: %w", err)
	}

	return cfg, nil
}

func parseAccount(id string, entry map[string]interface{}) (*AccountConfig, error) {
	acct := &AccountConfig{ID: id, Enabled: true}

	acct.Token = gconv.To[string](entry["token"])
	if acct.Token == "" {
		return nil, fmt.Errorf("telegram account %q: token is required", id)
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

	if v, ok := entry["buttons"]; ok {
		b := gconv.To[bool](v)
		acct.Buttons = &b
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
