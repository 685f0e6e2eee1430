package main

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/heraldbot/herald/internal/pkg/logs"
)

func main() {
	cmd := &cli.Command{
		Name:  "herald",
		Usage: "Herald, the action gateway for your messaging accounts",
		Commands: []*cli.Command{
			gwHwd.cmd(),
			actionHwd.cmd(),
			scheduleHwd.cmd(),
			onboardHwd.cmd(),
			updateHwd.cmd(),
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		logs.Error("Command execution failed: %v", err)
		os.Exit(1)
	}
}
