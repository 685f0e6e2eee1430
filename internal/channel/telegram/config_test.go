package telegram

import (
	"strings"
	"testing"
)

func TestParseConfig_Accounts(t *testing.T) {
	cfg, err := ParseConfig(map[string]interface{}{
		"accounts": map[string]interface{}{
			"work": map[string]interface{}{
				"token": "111:aaa",
				"actions": map[string]interface{}{
					"sticker":   true,
					"reactions": false,
				},
			},
			"default": map[string]interface{}{
				"token":   "222:bbb",
				"buttons": false,
			},
			"alerts": map[string]interface{}{
				"token":   "333:ccc",
				"enabled": false,
			},
		},
	})
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}

	if len(cfg.Accounts) != 3 {
		t.Fatalf("accounts: got %d, want 3", len(cfg.Accounts))
	}
	// default sorts first, the rest lexicographic.
	order := []string{"default", "alerts", "work"}
	for i, want := range order {
		if cfg.Accounts[i].ID != want {
			t.Errorf("accounts[%d]: got %q, want %q", i, cfg.Accounts[i].ID, want)
		}
	}

	var work AccountConfig
	for _, a := range cfg.Accounts {
		if a.ID == "work" {
			work = a
		}
	}
	if !work.Actions["sticker"] || work.Actions["reactions"] {
		t.Errorf("work actions: %v", work.Actions)
	}

	enabled := cfg.EnabledAccounts()
	if len(enabled) != 2 {
		t.Fatalf("enabled accounts: got %d, want 2", len(enabled))
	}
	for _, a := range enabled {
		if a.ID == "alerts" {
			t.Error("disabled account should be filtered out")
		}
	}
}

func TestParseConfig_TokenShorthand(t *testing.T) {
	cfg, err := ParseConfig(map[string]interface{}{"token": "123:abc"})
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	if len(cfg.Accounts) != 1 {
		t.Fatalf("accounts: got %d, want 1", len(cfg.Accounts))
	}
	a := cfg.Accounts[0]
	if a.ID != DefaultAccountID || a.Token != "123:abc" || !a.Enabled {
		t.Errorf("shorthand account: %+v", a)
	}
}

func TestParseConfig_Empty(t *testing.T) {
	cfg, err := ParseConfig(map[string]interface{}{})
	if err != nil {
		t.Fatalf("empty config should be legal: %v", err)
	}
	if len(cfg.Accounts) != 0 {
		t.Errorf("accounts: got %v, want none", cfg.Accounts)
	}
}

func TestParseConfig_MissingToken(t *testing.T) {
	_, err := ParseConfig(map[string]interface{}{
		"accounts": map[string]interface{}{
			"work": map[string]interface{}{"enabled": true},
		},
	})
	if err == nil {
		t.Fatal("expected error for account without token")
	}
	if !strings.Contains(err.Error(), "work") {
		t.Errorf("error should name the account: %v", err)
	}
}

func TestParseConfig_AccountNotMapping(t *testing.T) {
	_, err := ParseConfig(map[string]interface{}{
		"accounts": map[string]interface{}{"work": "not a mapping"},
	})
	if err == nil {
		t.Fatal("expected error for scalar account entry")
	}
}

func TestParseConfig_StickerSets(t *testing.T) {
	cfg, err := ParseConfig(map[string]interface{}{
		"token":       "123:abc",
		"stickerSets": []interface{}{"CatsPack", "", "DogsPack"},
	})
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	if len(cfg.StickerSets) != 2 || cfg.StickerSets[0] != "CatsPack" || cfg.StickerSets[1] != "DogsPack" {
		t.Errorf("StickerSets: %v", cfg.StickerSets)
	}
}
