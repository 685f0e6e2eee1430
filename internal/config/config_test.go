package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestValidate_Defaults(t *testing.T) {
	cfg := &Config{}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	if cfg.Schedule.Enabled == nil || !*cfg.Schedule.Enabled {
		t.Error("schedule should default to enabled")
	}
	if cfg.Schedule.MaxConcurrentRuns != 1 {
		t.Errorf("MaxConcurrentRuns: got %d, want 1", cfg.Schedule.MaxConcurrentRuns)
	}
	if cfg.Schedule.JobTimeoutSec != 300 {
		t.Errorf("JobTimeoutSec: got %d, want 300", cfg.Schedule.JobTimeoutSec)
	}
	if cfg.Schedule.Store == "" {
		t.Error("schedule store should default to a non-empty path")
	}
}

func TestValidate_NormalizesChannels(t *testing.T) {
	cfg := &Config{
		Channels: map[string]ChannelConfig{
			" tg-main ": {
				Type:       " Telegram ",
				Enabled:    true,
				MediaRoots: []string{" /srv/media ", "", "/srv/media", "/tmp/assets/"},
			},
		},
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	ch, ok := cfg.Channels["tg-main"]
	if !ok {
		t.Fatalf("channel key not trimmed: %v", cfg.Channels)
	}
	if ch.ID != "tg-main" {
		t.Errorf("ID: got %q, want %q", ch.ID, "tg-main")
	}
	if ch.Type != "telegram" {
		t.Errorf("Type: got %q, want %q", ch.Type, "telegram")
	}
	if len(ch.MediaRoots) != 2 {
		t.Fatalf("MediaRoots: got %v, want 2 deduped roots", ch.MediaRoots)
	}
}

func TestValidate_RejectsEmptyChannelType(t *testing.T) {
	cfg := &Config{
		Channels: map[string]ChannelConfig{
			"bad": {Enabled: true},
		},
	}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for channel without type")
	}
	if !strings.Contains(err.Error(), "channels[bad]") {
		t.Errorf("error should name the channel: %v", err)
	}
}

func TestUpdateByName(t *testing.T) {
	cfg := &Config{}

	if err := cfg.UpdateByName("gateway", &GatewayConfig{Bind: "127.0.0.1:9001"}); err != nil {
		t.Fatalf("UpdateByName gateway: %v", err)
	}
	if cfg.Gateway.Bind != "127.0.0.1:9001" {
		t.Errorf("Bind: got %q", cfg.Gateway.Bind)
	}

	next := map[string]ChannelConfig{
		"tg": {Type: "telegram", Enabled: true},
	}
	if err := cfg.UpdateByName("channels", &next); err != nil {
		t.Fatalf("UpdateByName channels: %v", err)
	}
	if _, ok := cfg.Channels["tg"]; !ok {
		t.Errorf("channels not replaced: %v", cfg.Channels)
	}

	if err := cfg.UpdateByName("gateway", &LoggingConfig{}); err == nil {
		t.Error("expected type mismatch error")
	}
	if err := cfg.UpdateByName("nope", &GatewayConfig{}); err == nil {
		t.Error("expected unsupported name error")
	}
}

func TestClone_Independent(t *testing.T) {
	cfg := &Config{
		Gateway: GatewayConfig{Bind: "0.0.0.0:8080"},
		Channels: map[string]ChannelConfig{
			"tg": {Type: "telegram", Config: map[string]interface{}{"token": "t1"}},
		},
	}

	cloned, err := cfg.Clone()
	if err != nil {
		t.Fatalf("Clone: %v", err)
	}

	ch := cloned.Channels["tg"]
	ch.Config["token"] = "changed"
	cloned.Channels["tg"] = ch

	if cfg.Channels["tg"].Config["token"] != "t1" {
		t.Error("clone should not share channel config maps")
	}
}

func TestHash_TracksContent(t *testing.T) {
	a := &Config{Gateway: GatewayConfig{Bind: "a"}}
	b := &Config{Gateway: GatewayConfig{Bind: "a"}}
	c := &Config{Gateway: GatewayConfig{Bind: "c"}}

	if a.Hash() != b.Hash() {
		t.Error("equal configs should hash equal")
	}
	if a.Hash() == c.Hash() {
		t.Error("different configs should hash different")
	}
}

func writeTestConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestInstanceManager_LoadAndGet(t *testing.T) {
	path := writeTestConfig(t, `
gateway:
  bind: "127.0.0.1:9001"
channels:
  tg:
    type: telegram
    enabled: true
    config:
      token: "123:abc"
`)

	ins := &InstanceManager{}
	cfg, err := ins.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Gateway.Bind != "127.0.0.1:9001" {
		t.Errorf("Bind: got %q", cfg.Gateway.Bind)
	}
	if cfg.Channels["tg"].ID != "tg" {
		t.Errorf("channel ID not set from key: %+v", cfg.Channels["tg"])
	}

	got, err := ins.Get()
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	got.Gateway.Bind = "mutated"

	again, _ := ins.Get()
	if again.Gateway.Bind != "127.0.0.1:9001" {
		t.Error("Get should return an isolated clone")
	}
}

func TestInstanceManager_GetBeforeLoad(t *testing.T) {
	ins := &InstanceManager{}
	if _, err := ins.Get(); err == nil {
		t.Fatal("expected error before Load")
	}
}

func TestInstanceManager_ApplyAndSave(t *testing.T) {
	path := writeTestConfig(t, `
gateway:
  bind: "127.0.0.1:9001"
`)

	ins := &InstanceManager{}
	if _, err := ins.Load(path); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if err := ins.Apply("gateway", &GatewayConfig{Bind: "0.0.0.0:9002"}); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if err := ins.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	reloaded := &InstanceManager{}
	cfg, err := reloaded.Load(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if cfg.Gateway.Bind != "0.0.0.0:9002" {
		t.Errorf("saved Bind: got %q", cfg.Gateway.Bind)
	}
}

func TestInstanceManager_ApplyWithCAS(t *testing.T) {
	path := writeTestConfig(t, `
gateway:
  bind: "127.0.0.1:9001"
`)

	ins := &InstanceManager{}
	if _, err := ins.Load(path); err != nil {
		t.Fatalf("Load: %v", err)
	}

	hash, err := ins.Hash()
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}

	if err := ins.ApplyWithCAS("gateway", &GatewayConfig{Bind: "b1"}, hash); err != nil {
		t.Fatalf("ApplyWithCAS with current hash: %v", err)
	}

	err = ins.ApplyWithCAS("gateway", &GatewayConfig{Bind: "b2"}, hash)
	if !errors.Is(err, ErrConfigConflict) {
		t.Fatalf("expected ErrConfigConflict on stale hash, got %v", err)
	}
}

func TestInstanceManager_ApplyRejectsInvalid(t *testing.T) {
	path := writeTestConfig(t, `
gateway:
  bind: "127.0.0.1:9001"
`)

	ins := &InstanceManager{}
	if _, err := ins.Load(path); err != nil {
		t.Fatalf("Load: %v", err)
	}

	bad := map[string]ChannelConfig{
		"tg": {Enabled: true}, // missing type
	}
	if err := ins.Apply("channels", &bad); err == nil {
		t.Fatal("expected validation error")
	}

	cfg, _ := ins.Get()
	if len(cfg.Channels) != 0 {
		t.Error("failed Apply should not mutate the config")
	}
}

func TestInstanceManager_SaveCreatesBackup(t *testing.T) {
	path := writeTestConfig(t, "gateway:\n  bind: a\n")

	ins := &InstanceManager{}
	if _, err := ins.Load(path); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := ins.Apply("gateway", &GatewayConfig{Bind: "b"}); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if err := ins.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	backups, err := filepath.Glob(path + ".*")
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(backups) == 0 {
		t.Error("Save over an existing file should leave a backup")
	}
}
