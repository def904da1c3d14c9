package scan

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/paularlott/cli"
	"golang.org/x/term"

	"github.com/martinsuchenak/pingsweep/internal/config"
	"github.com/martinsuchenak/pingsweep/internal/prober"
	"github.com/martinsuchenak/pingsweep/internal/report"
	"github.com/martinsuchenak/pingsweep/internal/scanner"
	"github.com/martinsuchenak/pingsweep/internal/subnet"
)

// Command returns the scan subcommand.
func Command() *cli.Command {
	return &cli.Command{
		Name:        "scan",
		Usage:       "Scan a subnet for unreachable addresses",
		Description: "Probe every usable host address in a CIDR block and report the addresses that did not answer. Without a subnet argument the command prompts for one.",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "subnet"},
		},
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:         "concurrency",
				Aliases:      []string{"c"},
				Usage:        "Maximum number of concurrent probes",
				DefaultValue: scanner.DefaultConcurrency,
				EnvVars:      []string{"PINGSWEEP_CONCURRENCY"},
			},
			&cli.StringFlag{
				Name:         "timeout",
				Aliases:      []string{"t"},
				Usage:        "Per-probe timeout (Go duration or seconds)",
				DefaultValue: "1s",
				EnvVars:      []string{"PINGSWEEP_TIMEOUT"},
			},
			&cli.StringFlag{
				Name:         "probe",
				Usage:        "Probe mechanism (icmp or tcp)",
				DefaultValue: config.ProbeICMP,
				EnvVars:      []string{"PINGSWEEP_PROBE"},
			},
			&cli.IntFlag{
				Name:         "tcp-port",
				Usage:        "Port used by TCP connect probes",
				DefaultValue: prober.DefaultTCPPort,
				EnvVars:      []string{"PINGSWEEP_TCP_PORT"},
			},
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "Suppress per-host progress output",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print the report as JSON",
			},
			&cli.BoolFlag{
				Name:    "yes",
				Aliases: []string{"y"},
				Usage:   "Skip the large-subnet confirmation",
			},
		},
		Run: func(ctx context.Context, cmd *cli.Command) error {
			cidr := cmd.GetStringArg("subnet")
			skipConfirm := cmd.GetBool("yes")
			interactive := term.IsTerminal(int(os.Stdin.Fd()))

			if cidr == "" {
				if !interactive {
					return fmt.Errorf("subnet argument required when not running interactively")
				}
				var err error
				cidr, err = promptSubnet(os.Stdin, os.Stdout, skipConfirm)
				if err != nil {
					return err
				}
			} else if !skipConfirm && interactive {
				sub, err := subnet.Parse(cidr)
				if err != nil {
					return err
				}
				ok, err := confirmLargeScan(os.Stdin, os.Stdout, sub)
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(os.Stdout, "Scan aborted.")
					return nil
				}
			}

			timeout, err := parseTimeout(cmd.GetString("timeout"))
			if err != nil {
				return err
			}
			opts := scanner.Options{
				Concurrency: cmd.GetInt("concurrency"),
				Timeout:     timeout,
			}

			p, err := newProber(cmd.GetString("probe"), cmd.GetInt("tcp-port"))
			if err != nil {
				return err
			}

			var sink scanner.ProgressSink = scanner.NopSink{}
			if !cmd.GetBool("quiet") && !cmd.GetBool("json") {
				sink = report.NewConsoleSink(os.Stdout)
				fmt.Printf("Scanning %s (concurrency %d, timeout %v)\n", cidr, opts.Concurrency, opts.Timeout)
			}

			rep, err := scanner.New(p).Scan(ctx, cidr, opts, sink)
			if err != nil {
				return err
			}

			if cmd.GetBool("json") {
				return report.WriteJSON(os.Stdout, rep)
			}
			fmt.Println()
			report.WriteText(os.Stdout, rep)
			return nil
		},
	}
}

func newProber(mode string, tcpPort int) (prober.Prober, error) {
	switch mode {
	case config.ProbeICMP:
		return prober.NewICMPProber(), nil
	case config.ProbeTCP:
		return prober.NewTCPProber(tcpPort), nil
	default:
		return nil, fmt.Errorf("unknown probe mechanism %q (use icmp or tcp)", mode)
	}
}

func parseTimeout(value string) (time.Duration, error) {
	if d, err := time.ParseDuration(value); err == nil && d > 0 {
		return d, nil
	}
	if secs, err := strconv.ParseFloat(value, 64); err == nil && secs > 0 {
		return time.Duration(secs * float64(time.Second)), nil
	}
	return 0, fmt.Errorf("invalid timeout %q (use a Go duration like 500ms or seconds like 1.5)", value)
}
