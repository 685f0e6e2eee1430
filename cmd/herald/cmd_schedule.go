package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/urfave/cli/v3"

	"github.com/heraldbot/herald/internal/config"
	"github.com/heraldbot/herald/internal/consts"
	"github.com/heraldbot/herald/internal/pkg/utils"
	"github.com/heraldbot/herald/internal/schedule"
)

var scheduleHwd = &ScheduleRunner{}

type ScheduleRunner struct{}

func (r *ScheduleRunner) cmd() *cli.Command {
	return &cli.Command{
		Name:  "schedule",
		Usage: "Manage scheduled channel actions",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List all persisted jobs",
				Action: r.list,
			},
			{
				Name:  "add",
				Usage: "Add a job that fires a channel action on a schedule",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "name",
						Usage: "Human-readable job name",
					},
					&cli.StringFlag{
						Name:    "channelId",
						Aliases: []string{"chanId"},
						Usage:   "Channel ID defined in the config file",
					},
					&cli.StringFlag{
						Name:  "accountId",
						Usage: "Pin the job to one configured account",
					},
					&cli.StringFlag{
						Name:    "action",
						Aliases: []string{"a"},
						Usage:   "Action kind, e.g. send, react, poll",
					},
					&cli.StringFlag{
						Name:    "params",
						Aliases: []string{"p"},
						Usage:   "Action parameters as a JSON object",
					},
					&cli.StringFlag{
						Name:  "every",
						Usage: `Fixed interval, e.g. "5m", "1h30m"`,
					},
					&cli.StringFlag{
						Name:  "cron",
						Usage: `5-field cron expression, e.g. "0 9 * * *"`,
					},
					&cli.StringFlag{
						Name:  "at",
						Usage: `One-shot RFC 3339 timestamp, e.g. "2026-09-01T09:00:00Z"`,
					},
				},
				Action: r.add,
			},
			{
				Name:  "remove",
				Usage: "Remove a persisted job by ID",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "jobId",
						Usage: "Job ID as shown by \"herald schedule list\"",
					},
				},
				Action: r.remove,
			},
		},
	}
}

func (r *ScheduleRunner) list(_ context.Context, _ *cli.Command) error {
	cfg, err := config.Load(consts.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	jobs, err := schedule.LoadJobsFromStore(cfg.Schedule)
	if err != nil {
		return fmt.Errorf("load jobs: %w", err)
	}

	fmt.Print(schedule.FormatJobList(jobs))
	return nil
}

func (r *ScheduleRunner) add(_ context.Context, cmd *cli.Command) error {
	channelID := strings.TrimSpace(cmd.String("channelId"))
	if channelID == "" {
		return errors.New("--channelId is required")
	}
	action := strings.TrimSpace(cmd.String("action"))
	if action == "" {
		return errors.New("--action is required")
	}

	schedType, schedValue, err := pickSchedule(cmd)
	if err != nil {
		return err
	}

	jobParams := map[string]interface{}{}
	if raw := strings.TrimSpace(cmd.String("params")); raw != "" {
		if err := sonic.UnmarshalString(raw, &jobParams); err != nil {
			return fmt.Errorf("--params must be a JSON object: %w", err)
		}
	}

	name := strings.TrimSpace(cmd.String("name"))
	if name == "" {
		name = action
	}

	cfg, err := config.Load(consts.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if _, ok := cfg.Channels[channelID]; !ok {
		return fmt.Errorf("channel %q was not found in the configured channels", channelID)
	}

	job := schedule.Job{
		ID:           fmt.Sprintf("job-%s-%s", sanitizeJobID(name), utils.RandDigits(6)),
		Name:         name,
		ChannelID:    channelID,
		AccountID:    strings.TrimSpace(cmd.String("accountId")),
		Action:       action,
		Params:       jobParams,
		ScheduleType: schedType,
		Schedule:     schedValue,
		Enabled:      true,
		CreatedAt:    time.Now(),
	}

	if err := schedule.AddJobToStore(cfg.Schedule, job); err != nil {
		return fmt.Errorf("add job: %w", err)
	}

	fmt.Printf("Added job %s: %s %s on channel %s\n", job.ID, schedType, schedValue, channelID)
	fmt.Println("Note: a running gateway loads jobs at startup; restart it to pick up the change.")
	return nil
}

func (r *ScheduleRunner) remove(_ context.Context, cmd *cli.Command) error {
	jobID := strings.TrimSpace(cmd.String("jobId"))
	if jobID == "" {
		return errors.New("--jobId is required")
	}

	cfg, err := config.Load(consts.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := schedule.RemoveJobFromStore(cfg.Schedule, jobID); err != nil {
		return fmt.Errorf("remove job: %w", err)
	}

	fmt.Printf("Removed job %s\n", jobID)
	return nil
}

// pickSchedule maps the mutually exclusive --every/--cron/--at flags onto a
// schedule type and value.
func pickSchedule(cmd *cli.Command) (schedule.ScheduleType, string, error) {
	every := strings.TrimSpace(cmd.String("every"))
	cron := strings.TrimSpace(cmd.String("cron"))
	at := strings.TrimSpace(cmd.String("at"))

	set := 0
	for _, v := range []string{every, cron, at} {
		if v != "" {
			set++
		}
	}
	if set != 1 {
		return "", "", errors.New("exactly one of --every, --cron or --at is required")
	}

	switch {
	case every != "":
		return schedule.ScheduleEvery, every, nil
	case cron != "":
		return schedule.ScheduleCron, cron, nil
	default:
		return schedule.ScheduleAt, at, nil
	}
}

func sanitizeJobID(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '-' {
			return r
		}
		if r == ' ' || r == '_' {
			return '-'
		}
		return -1
	}, name)
	if len(name) > 32 {
		name = name[:32]
	}
	return name
}
