package mcp

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/paularlott/mcp"

	"github.com/martinsuchenak/pingsweep/internal/api"
	"github.com/martinsuchenak/pingsweep/internal/log"
	"github.com/martinsuchenak/pingsweep/internal/report"
	"github.com/martinsuchenak/pingsweep/internal/scanner"
	"github.com/martinsuchenak/pingsweep/internal/subnet"
)

// Server wraps the MCP server and exposes subnet scanning as a tool.
type Server struct {
	mcpServer   *mcp.Server
	scanner     api.Scanner
	defaults    scanner.Options
	bearerToken string
}

// NewServer creates a new MCP server for subnet scanning.
func NewServer(s api.Scanner, defaults scanner.Options, bearerToken string) *Server {
	srv := &Server{
		mcpServer:   mcp.NewServer("pingsweep", "1.0.0"),
		scanner:     s,
		defaults:    defaults,
		bearerToken: bearerToken,
	}
	srv.registerTools()
	return srv
}

func (s *Server) registerTools() {
	// subnet_scan - probe a subnet and report unreachable addresses
	s.mcpServer.RegisterTool(
		mcp.NewTool("subnet_scan", "Scan an IPv4 subnet and report which host addresses are unreachable, so a free address can be picked for a new host.",
			mcp.String("subnet", "Subnet in CIDR notation (e.g. 192.168.1.0/24)", mcp.Required()),
			mcp.String("concurrency", "Maximum number of concurrent probes (default 50)"),
			mcp.String("timeout", "Per-probe timeout as a Go duration, e.g. 500ms or 2s (default 1s)"),
		),
		s.handleSubnetScan,
	)
}

// HandleRequest serves MCP over HTTP with optional bearer authentication.
func (s *Server) HandleRequest(w http.ResponseWriter, r *http.Request) {
	log.Debug("MCP request received", "method", r.Method, "path", r.URL.Path, "remote_addr", r.RemoteAddr)

	if s.bearerToken != "" {
		auth := r.Header.Get("Authorization")
		if auth == "" {
			log.Warn("MCP request missing Authorization header", "remote_addr", r.RemoteAddr)
			http.Error(w, "Unauthorized: Missing Authorization header", http.StatusUnauthorized)
			return
		}
		if !strings.HasPrefix(auth, "Bearer ") {
			log.Warn("MCP request invalid Authorization format", "remote_addr", r.RemoteAddr)
			http.Error(w, "Unauthorized: Invalid Authorization format", http.StatusUnauthorized)
			return
		}
		token := strings.TrimPrefix(auth, "Bearer ")
		if token != s.bearerToken {
			log.Warn("MCP request invalid token", "remote_addr", r.RemoteAddr)
			http.Error(w, "Unauthorized: Invalid token", http.StatusUnauthorized)
			return
		}
	}

	s.mcpServer.HandleRequest(w, r)
}

func (s *Server) handleSubnetScan(ctx context.Context, req *mcp.ToolRequest) (*mcp.ToolResponse, error) {
	cidr, err := req.String("subnet")
	if err != nil {
		return nil, mcp.NewToolErrorInvalidParams("subnet is required: " + err.Error())
	}

	return s.runSubnetScan(ctx, cidr, req.StringOr("concurrency", ""), req.StringOr("timeout", ""))
}

func (s *Server) runSubnetScan(ctx context.Context, cidr, concurrency, timeout string) (*mcp.ToolResponse, error) {
	opts := s.defaults
	if v := concurrency; v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, mcp.NewToolErrorInvalidParams("concurrency must be a positive integer")
		}
		opts.Concurrency = n
	}
	if v := timeout; v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return nil, mcp.NewToolErrorInvalidParams("timeout must be a positive duration, e.g. 500ms")
		}
		opts.Timeout = d
	}

	log.Debug("MCP subnet scan request", "subnet", cidr, "concurrency", opts.Concurrency, "timeout", opts.Timeout)

	rep, err := s.scanner.Scan(ctx, cidr, opts, scanner.NopSink{})
	if err != nil {
		if errors.Is(err, subnet.ErrInvalidSubnet) {
			return nil, mcp.NewToolErrorInvalidParams(err.Error())
		}
		log.Error("MCP subnet scan failed", "subnet", cidr, "error", err)
		return nil, mcp.NewToolErrorInternal("scan failed: " + err.Error())
	}

	var out strings.Builder
	report.WriteText(&out, rep)
	return mcp.NewToolResponseText(out.String()), nil
}
