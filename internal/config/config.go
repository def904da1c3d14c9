package config

import (
	"bufio"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/martinsuchenak/pingsweep/internal/scanner"
)

// Probe mechanism names accepted by the config.
const (
	ProbeICMP = "icmp"
	ProbeTCP  = "tcp"
)

// Config holds the application configuration.
type Config struct {
	ListenAddr  string        // HTTP/MCP listen address (server mode)
	BearerToken string        // API/MCP auth token, empty disables auth
	Concurrency int           // maximum simultaneous probes
	Timeout     time.Duration // per-probe timeout
	ProbeMode   string        // "icmp" or "tcp"
	TCPPort     int           // port for TCP connect probes
	Schedule    string        // cron expression for scheduled sweeps (server mode)
	Targets     []string      // subnets swept on the schedule
	ConfigFile  string        // path to .env file (if loaded)
}

// Load builds the configuration with the following priority (highest to
// lowest): command-line parameters (passed as opts), .env file, environment
// variables, defaults.
func Load(opts *Config) *Config {
	cfg := &Config{}

	envFile := ".env"
	if _, err := os.Stat(envFile); err == nil {
		if err := loadFromEnvFile(cfg, envFile); err == nil {
			cfg.ConfigFile = envFile
		}
	}

	cfg.ListenAddr = coalesce(cfg.ListenAddr, os.Getenv("PINGSWEEP_LISTEN_ADDR"), ":8080")
	cfg.BearerToken = coalesce(cfg.BearerToken, os.Getenv("PINGSWEEP_BEARER_TOKEN"), "")
	cfg.ProbeMode = coalesce(cfg.ProbeMode, os.Getenv("PINGSWEEP_PROBE"), ProbeICMP)
	cfg.Schedule = coalesce(cfg.Schedule, os.Getenv("PINGSWEEP_SCHEDULE"), "")
	if cfg.Concurrency == 0 {
		cfg.Concurrency = parseInt(os.Getenv("PINGSWEEP_CONCURRENCY"), scanner.DefaultConcurrency)
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = parseDuration(os.Getenv("PINGSWEEP_TIMEOUT"), scanner.DefaultTimeout)
	}
	if cfg.TCPPort == 0 {
		cfg.TCPPort = parseInt(os.Getenv("PINGSWEEP_TCP_PORT"), 80)
	}
	if len(cfg.Targets) == 0 {
		cfg.Targets = parseList(os.Getenv("PINGSWEEP_TARGETS"))
	}

	if opts != nil {
		if opts.ListenAddr != "" {
			cfg.ListenAddr = opts.ListenAddr
		}
		if opts.BearerToken != "" {
			cfg.BearerToken = opts.BearerToken
		}
		if opts.Concurrency > 0 {
			cfg.Concurrency = opts.Concurrency
		}
		if opts.Timeout > 0 {
			cfg.Timeout = opts.Timeout
		}
		if opts.ProbeMode != "" {
			cfg.ProbeMode = opts.ProbeMode
		}
		if opts.TCPPort > 0 {
			cfg.TCPPort = opts.TCPPort
		}
		if opts.Schedule != "" {
			cfg.Schedule = opts.Schedule
		}
		if len(opts.Targets) > 0 {
			cfg.Targets = opts.Targets
		}
	}

	if cfg.ProbeMode != ProbeICMP && cfg.ProbeMode != ProbeTCP {
		cfg.ProbeMode = ProbeICMP
	}

	return cfg
}

// IsAuthEnabled checks if bearer-token authentication is configured.
func (c *Config) IsAuthEnabled() bool {
	return c.BearerToken != ""
}

// loadFromEnvFile loads configuration from a .env file.
func loadFromEnvFile(cfg *Config, filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	fileScanner := bufio.NewScanner(file)
	for fileScanner.Scan() {
		line := strings.TrimSpace(fileScanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.Trim(strings.TrimSpace(parts[1]), "\"")

		switch key {
		case "PINGSWEEP_LISTEN_ADDR":
			cfg.ListenAddr = value
		case "PINGSWEEP_BEARER_TOKEN":
			cfg.BearerToken = value
		case "PINGSWEEP_CONCURRENCY":
			cfg.Concurrency = parseInt(value, 0)
		case "PINGSWEEP_TIMEOUT":
			cfg.Timeout = parseDuration(value, 0)
		case "PINGSWEEP_PROBE":
			cfg.ProbeMode = value
		case "PINGSWEEP_TCP_PORT":
			cfg.TCPPort = parseInt(value, 0)
		case "PINGSWEEP_SCHEDULE":
			cfg.Schedule = value
		case "PINGSWEEP_TARGETS":
			cfg.Targets = parseList(value)
		}
	}

	return fileScanner.Err()
}

// coalesce returns the first non-empty string value.
func coalesce(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func parseInt(value string, fallback int) int {
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func parseDuration(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	// Accept both Go durations ("500ms") and plain seconds ("1", "1.5").
	if d, err := time.ParseDuration(value); err == nil && d > 0 {
		return d
	}
	if secs, err := strconv.ParseFloat(value, 64); err == nil && secs > 0 {
		return time.Duration(secs * float64(time.Second))
	}
	return fallback
}

func parseList(value string) []string {
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
