package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/urfave/cli/v3"

	"github.com/heraldbot/herald/internal/channel"
	"github.com/heraldbot/herald/internal/channel/lark"
	"github.com/heraldbot/herald/internal/channel/telegram"
	"github.com/heraldbot/herald/internal/config"
	"github.com/heraldbot/herald/internal/consts"
	"github.com/heraldbot/herald/internal/params"
)

var actionHwd = &ActionRunner{}

type ActionRunner struct{}

func (r *ActionRunner) cmd() *cli.Command {
	return &cli.Command{
		Name:  "action",
		Usage: "Run channel actions from the command line",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List the actions available on a configured channel",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "channelId",
						Aliases: []string{"chanId"},
						Usage:   "Channel ID defined in the config file",
					},
				},
				Action: r.list,
			},
			{
				Name:  "run",
				Usage: "Dispatch one action with raw JSON parameters",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "channelId",
						Aliases: []string{"chanId"},
						Usage:   "Channel ID defined in the config file",
					},
					&cli.StringFlag{
						Name:    "action",
						Aliases: []string{"a"},
						Usage:   "Action kind, e.g. send, react, delete, edit, poll",
					},
					&cli.StringFlag{
						Name:    "params",
						Aliases: []string{"p"},
						Usage:   "Action parameters as a JSON object",
					},
					&cli.StringFlag{
						Name:  "accountId",
						Usage: "Pin the dispatch to one configured account",
					},
				},
				Action: r.runAction,
			},
			{
				Name:  "send",
				Usage: "Send a one-off message through a configured channel",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "channelId",
						Aliases: []string{"chanId"},
						Usage:   "Channel ID defined in the config file",
					},
					&cli.StringFlag{
						Name:  "to",
						Usage: "Target chat ID or user ID",
					},
					&cli.StringFlag{
						Name:    "message",
						Aliases: []string{"m"},
						Usage:   "Message body",
					},
					&cli.StringFlag{
						Name:  "mediaUrl",
						Usage: "URL or local path of a media attachment",
					},
					&cli.StringFlag{
						Name:  "accountId",
						Usage: "Pin the dispatch to one configured account",
					},
				},
				Action: r.send,
			},
		},
	}
}

func (r *ActionRunner) list(ctx context.Context, cmd *cli.Command) error {
	channelID := strings.TrimSpace(cmd.String("channelId"))
	if channelID == "" {
		return errors.New("--channelId is required")
	}

	ch, err := openChannel(channelID)
	if err != nil {
		return err
	}
	defer func() { _ = ch.Close(ctx) }()

	kinds := ch.ListActions()
	names := make([]string, 0, len(kinds))
	for _, k := range kinds {
		names = append(names, string(k))
	}

	fmt.Printf("Channel %s (%s)\n", ch.ID(), ch.Type())
	fmt.Printf("  actions: %s\n", strings.Join(names, ", "))
	fmt.Printf("  buttons: %v\n", ch.SupportsButtons())
	return nil
}

func (r *ActionRunner) runAction(ctx context.Context, cmd *cli.Command) error {
	channelID := strings.TrimSpace(cmd.String("channelId"))
	if channelID == "" {
		return errors.New("--channelId is required")
	}
	action := strings.TrimSpace(cmd.String("action"))
	if action == "" {
		return errors.New("--action is required")
	}

	bag := params.Bag{}
	if raw := strings.TrimSpace(cmd.String("params")); raw != "" {
		if err := sonic.UnmarshalString(raw, &bag); err != nil {
			return fmt.Errorf("--params must be a JSON object: %w", err)
		}
	}

	return r.dispatch(ctx, channelID, channel.ActionKind(action), bag, cmd.String("accountId"))
}

func (r *ActionRunner) send(ctx context.Context, cmd *cli.Command) error {
	channelID := strings.TrimSpace(cmd.String("channelId"))
	if channelID == "" {
		return errors.New("--channelId is required")
	}
	to := strings.TrimSpace(cmd.String("to"))
	if to == "" {
		return errors.New("--to is required")
	}
	message := strings.TrimSpace(cmd.String("message"))
	mediaURL := strings.TrimSpace(cmd.String("mediaUrl"))
	if message == "" && mediaURL == "" {
		return errors.New("--message or --mediaUrl is required")
	}

	bag := params.Bag{"to": to}
	if message != "" {
		bag["message"] = message
	}
	if mediaURL != "" {
		bag["mediaUrl"] = mediaURL
	}

	return r.dispatch(ctx, channelID, channel.ActionSend, bag, cmd.String("accountId"))
}

func (r *ActionRunner) dispatch(ctx context.Context, channelID string, kind channel.ActionKind, bag params.Bag, accountID string) error {
	ch, err := openChannel(channelID)
	if err != nil {
		return err
	}
	defer func() { _ = ch.Close(ctx) }()

	opts := &channel.DispatchOpts{AccountID: strings.TrimSpace(accountID)}
	res, err := ch.HandleAction(ctx, kind, bag, opts)
	if err != nil {
		return fmt.Errorf("run %s on channel %s: %w", kind, channelID, err)
	}
	if res == nil {
		res = &channel.ActionResult{}
	}

	out, _ := sonic.MarshalIndent(res, "", "  ")
	fmt.Printf("Ran %s via %s channel %s\n%s\n", kind, ch.Type(), channelID, string(out))
	return nil
}

// openChannel builds a one-shot channel adapter from the config file,
// outside any running gateway. The caller owns Close.
func openChannel(channelID string) (channel.Actions, error) {
	cfg, err := config.Load(consts.DefaultConfigPath())
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	chCfg, ok := cfg.Channels[channelID]
	if !ok {
		return nil, fmt.Errorf("channel %q was not found in the configured channels", channelID)
	}
	chCfg.ID = channelID

	switch channel.Type(strings.ToLower(strings.TrimSpace(chCfg.Type))) {
	case channel.Telegram:
		return telegram.NewChannel(channelID, &chCfg)
	case channel.Lark:
		return lark.NewChannel(channelID, &chCfg)
	default:
		return nil, fmt.Errorf("channel type %q is not supported by the action command", chCfg.Type)
	}
}
