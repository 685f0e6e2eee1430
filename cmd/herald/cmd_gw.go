package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/heraldbot/herald/internal/config"
	"github.com/heraldbot/herald/internal/consts"
	"github.com/heraldbot/herald/internal/gateway"
	"github.com/heraldbot/herald/internal/pkg/logs"
	"github.com/heraldbot/herald/internal/pkg/updater"
	"github.com/heraldbot/herald/internal/schedule"
)

var gwHwd = &GatewayRunner{}

type GatewayRunner struct{}

func (r *GatewayRunner) cmd() *cli.Command {
	return &cli.Command{
		Name:  "gateway",
		Usage: "Manage the gateway runtime",
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "Run the gateway runtime with configured channels and scheduler",
				Action: r.run,
			},
			// TODO restart
		},
	}
}

func (r *GatewayRunner) run(ctx context.Context, _ *cli.Command) error {
	cfgPath := consts.DefaultConfigPath()

	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		fmt.Println("Herald is not configured yet. Run \"herald onboard\" to get started.")
		return nil
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config error: %w", err)
	}

	if err = r.initLogger(cfg.Logging); err != nil {
		return fmt.Errorf("init logger error: %w", err)
	}

	logs.CtxInfo(ctx, "booting Herald runtime, using config file: %s...", cfgPath)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	gw := gateway.NewGateway(cfg.Gateway)
	if err = gw.Start(ctx); err != nil {
		cancel()
		_ = gw.Stop(context.Background())
		return fmt.Errorf("start gateway: %w", err)
	}

	if scheduleEnabled(cfg.Schedule) {
		schedule.Init(cfg.Schedule, schedule.RegistryDispatch)
		if err = schedule.Start(ctx); err != nil {
			cancel()
			_ = gw.Stop(context.Background())
			return fmt.Errorf("start scheduler: %w", err)
		}
	}

	if cfg.Gateway.AutoUpdate {
		go updater.StartAutoUpdate(ctx, updater.New(), 0)
	}

	logs.CtxInfo(ctx, "ALL IS WELL!!! Press Ctrl+C to stop.")

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(signalCh)

	select {
	case sig := <-signalCh:
		logs.CtxInfo(ctx, "Received shutdown signal (%s). Stopping runtime...", sig.String())
	case <-ctx.Done():
		logs.CtxInfo(ctx, "Context canceled. Stopping runtime...")
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer stopCancel()

	schedule.Stop(stopCtx)
	if err = gw.Stop(stopCtx); err != nil {
		logs.CtxError(ctx, "stop gateway error: %v", err)
	}

	logs.CtxInfo(ctx, "all stopped, good bye!")
	return nil
}

func scheduleEnabled(cfg config.ScheduleConfig) bool {
	return cfg.Enabled == nil || *cfg.Enabled
}

func (r *GatewayRunner) initLogger(cfg config.LoggingConfig) error {
	return logs.Init(logs.Options{
		Level:      cfg.Level,
		Format:     cfg.Format,
		Output:     cfg.Output,
		File:       cfg.File,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
	})
}
