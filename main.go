package main

import (
	"context"
	"os"

	"github.com/paularlott/cli"
	"github.com/paularlott/cli/env"

	"github.com/martinsuchenak/pingsweep/cmd/scan"
	"github.com/martinsuchenak/pingsweep/cmd/server"
	"github.com/martinsuchenak/pingsweep/internal/log"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	// Load .env file if it exists
	env.Load()

	// Initialize structured logging
	log.Configure("info", "console")

	rootCmd := &cli.Command{
		Name:        "pingsweep",
		Version:     version,
		Usage:       "Subnet reachability scanner",
		Description: "Scans IPv4 subnets concurrently and reports unreachable addresses, so a free address can be picked for a new host",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:         "log-level",
				Usage:        "Log level (trace, debug, info, warn, error)",
				DefaultValue: "info",
				EnvVars:      []string{"PINGSWEEP_LOG_LEVEL"},
				Global:       true,
			},
			&cli.StringFlag{
				Name:         "log-format",
				Usage:        "Log format (console, json)",
				DefaultValue: "console",
				EnvVars:      []string{"PINGSWEEP_LOG_FORMAT"},
				Global:       true,
			},
		},
		PreRun: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			logLevel := cmd.GetString("log-level")
			logFormat := cmd.GetString("log-format")
			log.Configure(logLevel, logFormat)
			return ctx, nil
		},
		Commands: []*cli.Command{
			scan.Command(),
			server.Command(),
		},
	}

	if err := rootCmd.Execute(context.Background()); err != nil {
		log.Error("Command execution failed", "error", err)
		os.Exit(1)
	}
}
