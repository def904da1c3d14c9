package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/paularlott/cli"
	"github.com/robfig/cron/v3"

	"github.com/martinsuchenak/pingsweep/internal/api"
	"github.com/martinsuchenak/pingsweep/internal/config"
	"github.com/martinsuchenak/pingsweep/internal/log"
	"github.com/martinsuchenak/pingsweep/internal/mcp"
	"github.com/martinsuchenak/pingsweep/internal/prober"
	"github.com/martinsuchenak/pingsweep/internal/scanner"
)

// Command returns the server subcommand.
func Command() *cli.Command {
	return &cli.Command{
		Name:        "server",
		Usage:       "Start the pingsweep server",
		Description: "Start the HTTP server exposing the scan API and MCP endpoint, with optional scheduled background sweeps",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "listen-addr",
				Usage:   "Address to listen on",
				EnvVars: []string{"PINGSWEEP_LISTEN_ADDR"},
			},
			&cli.StringFlag{
				Name:    "bearer-token",
				Usage:   "Bearer token protecting the API and MCP endpoints",
				EnvVars: []string{"PINGSWEEP_BEARER_TOKEN"},
			},
			&cli.IntFlag{
				Name:    "concurrency",
				Usage:   "Default maximum number of concurrent probes",
				EnvVars: []string{"PINGSWEEP_CONCURRENCY"},
			},
			&cli.StringFlag{
				Name:    "timeout",
				Usage:   "Default per-probe timeout",
				EnvVars: []string{"PINGSWEEP_TIMEOUT"},
			},
			&cli.StringFlag{
				Name:    "probe",
				Usage:   "Probe mechanism (icmp or tcp)",
				EnvVars: []string{"PINGSWEEP_PROBE"},
			},
			&cli.IntFlag{
				Name:    "tcp-port",
				Usage:   "Port used by TCP connect probes",
				EnvVars: []string{"PINGSWEEP_TCP_PORT"},
			},
			&cli.StringFlag{
				Name:    "schedule",
				Usage:   "Cron expression for scheduled sweeps (e.g. \"*/15 * * * *\")",
				EnvVars: []string{"PINGSWEEP_SCHEDULE"},
			},
			&cli.StringFlag{
				Name:    "targets",
				Usage:   "Comma-separated subnets swept on the schedule",
				EnvVars: []string{"PINGSWEEP_TARGETS"},
			},
		},
		Run: func(ctx context.Context, cmd *cli.Command) error {
			var timeout time.Duration
			if v := cmd.GetString("timeout"); v != "" {
				d, err := time.ParseDuration(v)
				if err != nil || d <= 0 {
					return fmt.Errorf("invalid timeout %q", v)
				}
				timeout = d
			}

			cfg := config.Load(&config.Config{
				ListenAddr:  cmd.GetString("listen-addr"),
				BearerToken: cmd.GetString("bearer-token"),
				Concurrency: cmd.GetInt("concurrency"),
				Timeout:     timeout,
				ProbeMode:   cmd.GetString("probe"),
				TCPPort:     cmd.GetInt("tcp-port"),
				Schedule:    cmd.GetString("schedule"),
				Targets:     splitTargets(cmd.GetString("targets")),
			})

			return Run(cfg)
		},
	}
}

// Run starts the pingsweep server with the given configuration.
func Run(cfg *config.Config) error {
	var p prober.Prober
	switch cfg.ProbeMode {
	case config.ProbeTCP:
		p = prober.NewTCPProber(cfg.TCPPort)
	default:
		p = prober.NewICMPProber()
	}

	defaults := scanner.Options{
		Concurrency: cfg.Concurrency,
		Timeout:     cfg.Timeout,
	}
	coordinator := scanner.New(p)
	handler := api.NewHandler(coordinator, defaults)
	mcpServer := mcp.NewServer(coordinator, defaults, cfg.BearerToken)

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)
	mux.HandleFunc("/mcp", mcpServer.HandleRequest)

	var httpHandler http.Handler = mux
	if cfg.IsAuthEnabled() {
		httpHandler = api.AuthMiddleware(cfg.BearerToken, httpHandler)
	}
	httpHandler = api.SecurityHeadersMiddleware(httpHandler)

	server := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: httpHandler,
	}

	// Scheduled background sweeps
	if cfg.Schedule != "" && len(cfg.Targets) > 0 {
		c := cron.New()
		_, err := c.AddFunc(cfg.Schedule, func() {
			runScheduledSweeps(coordinator, defaults, cfg.Targets, handler)
		})
		if err != nil {
			return fmt.Errorf("invalid scan schedule %q: %w", cfg.Schedule, err)
		}
		c.Start()
		defer c.Stop()
		log.Info("Scheduled sweeps enabled", "schedule", cfg.Schedule, "targets", cfg.Targets)
	}

	// Handle shutdown gracefully
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan
		log.Info("Shutting down server...")
		server.Close()
	}()

	log.Info("Starting pingsweep server", "addr", cfg.ListenAddr)
	log.Info("API available", "url", "http://localhost"+cfg.ListenAddr+"/api/")
	log.Info("MCP available", "url", "http://localhost"+cfg.ListenAddr+"/mcp")
	if cfg.IsAuthEnabled() {
		log.Info("Bearer authentication enabled")
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("Server error", "error", err)
		return err
	}

	log.Info("Server stopped")
	return nil
}

func runScheduledSweeps(coordinator *scanner.Coordinator, opts scanner.Options, targets []string, handler *api.Handler) {
	sink := scanner.SinkFunc(func(address string, reachable bool) {
		log.Debug("Probe completed", "address", address, "reachable", reachable)
	})

	for _, target := range targets {
		report, err := coordinator.Scan(context.Background(), target, opts, sink)
		if err != nil {
			log.Error("Scheduled sweep failed", "subnet", target, "error", err)
			continue
		}
		handler.SetLatest(report)
		log.Info("Scheduled sweep completed",
			"subnet", target,
			"total", report.Total,
			"unreachable", len(report.Unreachable),
			"elapsed", report.Elapsed)
	}
}

func splitTargets(value string) []string {
	if value == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
