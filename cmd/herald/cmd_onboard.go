package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/urfave/cli/v3"

	"github.com/heraldbot/herald/internal/config"
	"github.com/heraldbot/herald/internal/consts"
	"github.com/heraldbot/herald/internal/pkg/utils"
)

var onboardHwd = &OnboardRunner{}

type OnboardRunner struct {
	scanner *bufio.Scanner
}

func (r *OnboardRunner) cmd() *cli.Command {
	return &cli.Command{
		Name:  "onboard",
		Usage: "Interactive setup wizard for first-time configuration",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "accept-risk",
				Usage: "Skip the disclaimer prompt",
			},
		},
		Action: r.run,
	}
}

// ── style helpers ──────────────────────────────────────────────────

var (
	cBanner  = color.New(color.FgCyan, color.Bold)
	cStep    = color.New(color.FgCyan, color.Bold)
	cWarn    = color.New(color.FgYellow)
	cSuccess = color.New(color.FgGreen)
	cError   = color.New(color.FgRed)
	cPrompt  = color.New(color.FgWhite, color.Bold)
	cDim     = color.New(color.FgHiBlack)
)

// ── channel metadata ───────────────────────────────────────────────

type channelMeta struct {
	Type    string
	Prompts []struct {
		Key      string
		Label    string
		Required bool
	}
}

var channelOptions = []channelMeta{
	{
		Type: "telegram",
		Prompts: []struct {
			Key      string
			Label    string
			Required bool
		}{
			{Key: "token", Label: "Telegram Bot Token", Required: true},
		},
	},
	{
		Type: "lark",
		Prompts: []struct {
			Key      string
			Label    string
			Required bool
		}{
			{Key: "app_id", Label: "Lark App ID", Required: true},
			{Key: "app_secret", Label: "Lark App Secret", Required: true},
		},
	},
}

// ── main flow ──────────────────────────────────────────────────────

func (r *OnboardRunner) run(ctx context.Context, cmd *cli.Command) error {
	r.scanner = bufio.NewScanner(os.Stdin)

	// check existing config
	cfgPath := consts.DefaultConfigPath()
	if _, err := os.Stat(cfgPath); err == nil {
		cWarn.Printf("  Config already exists at %s\n", cfgPath)
		if !r.confirm("  Overwrite existing config?", false) {
			fmt.Println("  Aborted.")
			return nil
		}
		fmt.Println()
	}

	// step 1: welcome + disclaimer
	if !cmd.Bool("accept-risk") {
		if !r.stepWelcome() {
			return nil
		}
	}

	// step 2: channel
	channelID, chCfg, err := r.stepChannel()
	if err != nil {
		return err
	}

	// step 3: gateway
	gwCfg := r.stepGateway()

	// step 4: auto-update
	gwCfg.AutoUpdate = r.stepAutoUpdate()

	// step 5: confirm & write
	return r.stepConfirm(cfgPath, channelID, chCfg, gwCfg)
}

// ── step 1: welcome ────────────────────────────────────────────────

func (r *OnboardRunner) stepWelcome() bool {
	fmt.Println()
	cBanner.Println("  ██╗  ██╗███████╗██████╗  █████╗ ██╗     ██████╗ ")
	cBanner.Println("  ██║  ██║██╔════╝██╔══██╗██╔══██╗██║     ██╔══██╗")
	cBanner.Println("  ███████║█████╗  ██████╔╝███████║██║     ██║  ██║")
	cBanner.Println("  ██╔══██║██╔══╝  ██╔══██╗██╔══██║██║     ██║  ██║")
	cBanner.Println("  ██║  ██║███████╗██║  ██║██║  ██║███████╗██████╔╝")
	cBanner.Println("  ╚═╝  ╚═╝╚══════╝╚═╝  ╚═╝╚═╝  ╚═╝╚══════╝╚═════╝ ")
	cDim.Println("  Herald, the action gateway for your messaging accounts")
	fmt.Println()

	cWarn.Println("  ⚠  DISCLAIMER")
	fmt.Println()
	cWarn.Println("  Herald acts on your messaging accounts. By continuing,")
	cWarn.Println("  you acknowledge the following:")
	fmt.Println()
	cWarn.Println("  • Herald sends messages, reactions, polls, and other")
	cWarn.Println("    actions on your behalf. Mistakes may occur.")
	cWarn.Println("  • You are responsible for what gets delivered to the")
	cWarn.Println("    chats and groups you target.")
	cWarn.Println("  • Bot tokens and app secrets are stored locally in")
	cWarn.Printf("    %s. Keep this file secure.\n", consts.DefaultConfigPath())
	cWarn.Println("  • This software is provided \"as-is\" without warranty.")
	cWarn.Println("    Use at your own risk.")
	fmt.Println()

	if !r.confirm("  Do you accept these terms?", false) {
		fmt.Println()
		fmt.Println("  Aborted. You must accept the terms to continue.")
		return false
	}
	fmt.Println()
	return true
}

// ── step 2: channel ────────────────────────────────────────────────

func (r *OnboardRunner) stepChannel() (string, config.ChannelConfig, error) {
	r.printStepHeader("Step 2", "Channel")

	cDim.Println("  Select channel type:")
	for i, ch := range channelOptions {
		fmt.Printf("    [%d] %s\n", i+1, ch.Type)
	}
	fmt.Println()

	idx := r.promptChoice("  Channel type", 1, len(channelOptions))
	cm := channelOptions[idx-1]
	channelID := cm.Type + "-main"
	fmt.Println()

	chConfig := make(map[string]interface{})
	for _, p := range cm.Prompts {
		var val string
		if p.Required {
			val = r.promptRequired("  " + p.Label)
		} else {
			val = r.promptDefault("  "+p.Label, "")
		}
		chConfig[p.Key] = val
		fmt.Println()
	}

	if cm.Type == "telegram" {
		r.stepTelegramStickers(chConfig)
	}

	chCfg := config.ChannelConfig{
		Type:    cm.Type,
		Enabled: true,
		Config:  chConfig,
	}

	cSuccess.Printf("  ✓ Channel: %s (%s)\n\n", channelID, cm.Type)
	return channelID, chCfg, nil
}

// stepTelegramStickers optionally turns on the sticker actions, which stay
// off unless enabled per account. Enabling rewrites the bare token
// shorthand into a full accounts mapping so the toggle has a place to live.
func (r *OnboardRunner) stepTelegramStickers(chConfig map[string]interface{}) {
	if !r.confirm("  Enable sticker actions? (off by default)", false) {
		fmt.Println()
		return
	}

	acct := map[string]interface{}{
		"token":   chConfig["token"],
		"actions": map[string]interface{}{"sticker": true},
	}
	delete(chConfig, "token")
	chConfig["accounts"] = map[string]interface{}{"default": acct}

	sets := r.promptDefault("  Sticker set names (comma separated)", "")
	if sets != "" {
		var names []interface{}
		for _, s := range strings.Split(sets, ",") {
			if s = strings.TrimSpace(s); s != "" {
				names = append(names, s)
			}
		}
		if len(names) > 0 {
			chConfig["stickerSets"] = names
		}
	}
	fmt.Println()
}

// ── step 3: gateway ────────────────────────────────────────────────

func (r *OnboardRunner) stepGateway() config.GatewayConfig {
	r.printStepHeader("Step 3", "Gateway")

	bind := r.promptDefault("  Bind address", "0.0.0.0:8080")
	fmt.Println()

	cDim.Println("  Requests to /api/v1 must carry this key as a bearer token.")
	apiKey := r.promptDefault("  API key", utils.RandStr(32))
	fmt.Println()

	cSuccess.Printf("  ✓ Gateway: %s\n\n", bind)
	return config.GatewayConfig{
		Bind:           bind,
		APIKey:         apiKey,
		RequestTimeout: 60,
	}
}

// ── step 4: auto-update ───────────────────────────────────────────

func (r *OnboardRunner) stepAutoUpdate() bool {
	r.printStepHeader("Step 4", "Auto Update")

	cDim.Println("  When enabled, Herald will periodically check for new")
	cDim.Println("  releases and update itself automatically.")
	fmt.Println()

	enabled := r.confirm("  Enable auto-update?", true)
	fmt.Println()

	if enabled {
		cSuccess.Println("  ✓ Auto-update: enabled")
	} else {
		cSuccess.Println("  ✓ Auto-update: disabled")
	}
	fmt.Println()
	return enabled
}

// ── step 5: confirm & write ────────────────────────────────────────

func (r *OnboardRunner) stepConfirm(
	cfgPath string,
	channelID string, chCfg config.ChannelConfig,
	gwCfg config.GatewayConfig,
) error {
	r.printStepHeader("Step 5", "Review")

	homeDir := consts.HeraldHomeDir()

	cDim.Printf("  Home directory:  %s\n", homeDir)
	cDim.Printf("  Config file:     %s\n", cfgPath)
	fmt.Println()
	cDim.Printf("  Channel:      %s (%s)\n", channelID, chCfg.Type)
	cDim.Printf("  Gateway:      %s\n", gwCfg.Bind)
	cDim.Printf("  API key:      %s\n", utils.Truncate(gwCfg.APIKey, 8))
	cDim.Printf("  Auto-update:  %v\n", gwCfg.AutoUpdate)
	fmt.Println()

	if !r.confirm("  Write config?", true) {
		fmt.Println("  Aborted.")
		return nil
	}
	fmt.Println()

	// build config
	cfg := &config.Config{
		Gateway: gwCfg,
		Logging: config.LoggingConfig{
			Level:      "info",
			Format:     "text",
			Output:     "both",
			File:       filepath.Join(homeDir, "logs", "herald.log"),
			MaxSize:    100,
			MaxBackups: 5,
			MaxAge:     3,
		},
		Channels: map[string]config.ChannelConfig{channelID: chCfg},
	}

	// write config
	if err := writeConfigDirect(cfgPath, cfg); err != nil {
		cError.Printf("  ✗ Failed to write config: %v\n", err)
		return err
	}
	cSuccess.Printf("  ✓ Created %s\n", cfgPath)

	fmt.Println()
	cSuccess.Println("  All set! Run \"herald gateway run\" to start.")
	fmt.Println()

	return nil
}

func writeConfigDirect(path string, cfg *config.Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	// Load into instance manager, apply, and save
	// Create a minimal valid config file first so Load succeeds
	if err := os.WriteFile(path, []byte("{}"), 0o644); err != nil {
		return err
	}
	if _, err := config.Load(path); err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := config.Apply("config", cfg); err != nil {
		return fmt.Errorf("apply config: %w", err)
	}
	return config.Save()
}

// ── input helpers ──────────────────────────────────────────────────

func (r *OnboardRunner) prompt(label string) string {
	cPrompt.Printf("%s > ", label)
	if r.scanner.Scan() {
		return strings.TrimSpace(r.scanner.Text())
	}
	return ""
}

func (r *OnboardRunner) promptDefault(label string, defaultVal string) string {
	if defaultVal != "" {
		cPrompt.Printf("%s ", label)
		cDim.Printf("[%s]", defaultVal)
		cPrompt.Print(" > ")
	} else {
		cPrompt.Printf("%s > ", label)
	}

	if r.scanner.Scan() {
		val := strings.TrimSpace(r.scanner.Text())
		if val != "" {
			return val
		}
	}
	return defaultVal
}

func (r *OnboardRunner) promptRequired(label string) string {
	for {
		val := r.prompt(label)
		if val != "" {
			return val
		}
		cError.Println("  This field is required.")
	}
}

func (r *OnboardRunner) promptChoice(label string, min, max int) int {
	for {
		val := r.promptDefault(label, strconv.Itoa(min))
		n, err := strconv.Atoi(val)
		if err == nil && n >= min && n <= max {
			return n
		}
		cError.Printf("  Please enter a number between %d and %d.\n", min, max)
	}
}

func (r *OnboardRunner) confirm(label string, defaultYes bool) bool {
	hint := "[y/N]"
	if defaultYes {
		hint = "[Y/n]"
	}

	cPrompt.Printf("%s %s > ", label, hint)
	if r.scanner.Scan() {
		val := strings.ToLower(strings.TrimSpace(r.scanner.Text()))
		if val == "" {
			return defaultYes
		}
		return val == "y" || val == "yes"
	}
	return defaultYes
}

func (r *OnboardRunner) printStepHeader(step string, title string) {
	cStep.Printf("═══ %s: %s ═══\n\n", step, title)
}
