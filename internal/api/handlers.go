package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/martinsuchenak/pingsweep/internal/log"
	"github.com/martinsuchenak/pingsweep/internal/model"
	"github.com/martinsuchenak/pingsweep/internal/scanner"
	"github.com/martinsuchenak/pingsweep/internal/subnet"
)

// Scanner runs subnet scans. Satisfied by *scanner.Coordinator.
type Scanner interface {
	Scan(ctx context.Context, cidr string, opts scanner.Options, sink scanner.ProgressSink) (*model.ScanReport, error)
}

// Handler handles HTTP requests. It also keeps the most recent report in
// memory so clients can fetch the result of scheduled sweeps; nothing is
// persisted.
type Handler struct {
	scanner  Scanner
	defaults scanner.Options

	mu     sync.RWMutex
	latest *model.ScanReport
}

// NewHandler creates a new API handler with the given default scan options.
func NewHandler(s Scanner, defaults scanner.Options) *Handler {
	return &Handler{scanner: s, defaults: defaults}
}

// RegisterRoutes registers all API routes.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/scans", h.startScan)
	mux.HandleFunc("GET /api/scans/latest", h.latestScan)
	mux.HandleFunc("GET /api/health", h.health)
}

// SetLatest records a report as the most recent one.
func (h *Handler) SetLatest(r *model.ScanReport) {
	h.mu.Lock()
	h.latest = r
	h.mu.Unlock()
}

type scanRequest struct {
	Subnet      string `json:"subnet"`
	Concurrency int    `json:"concurrency,omitempty"`
	Timeout     string `json:"timeout,omitempty"`
}

// startScan handles POST /api/scans. The scan runs synchronously; the
// response is the full report.
func (h *Handler) startScan(w http.ResponseWriter, r *http.Request) {
	var req scanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Subnet == "" {
		h.writeError(w, http.StatusBadRequest, "subnet is required")
		return
	}

	opts := h.defaults
	if req.Concurrency > 0 {
		opts.Concurrency = req.Concurrency
	}
	if req.Timeout != "" {
		d, err := time.ParseDuration(req.Timeout)
		if err != nil || d <= 0 {
			h.writeError(w, http.StatusBadRequest, "timeout must be a positive duration")
			return
		}
		opts.Timeout = d
	}

	report, err := h.scanner.Scan(r.Context(), req.Subnet, opts, scanner.NopSink{})
	if err != nil {
		switch {
		case errors.Is(err, subnet.ErrInvalidSubnet):
			h.writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, context.Canceled):
			// Client went away; nothing useful to write.
			log.Debug("Scan request canceled", "subnet", req.Subnet)
		default:
			h.internalError(w, err)
		}
		return
	}

	h.SetLatest(report)
	h.writeJSON(w, http.StatusOK, report)
}

// latestScan handles GET /api/scans/latest.
func (h *Handler) latestScan(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	report := h.latest
	h.mu.RUnlock()

	if report == nil {
		h.writeError(w, http.StatusNotFound, "no scan has completed yet")
		return
	}
	h.writeJSON(w, http.StatusOK, report)
}

// health handles GET /api/health.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func (h *Handler) internalError(w http.ResponseWriter, err error) {
	log.Error("Internal server error", "error", err)
	h.writeError(w, http.StatusInternalServerError, "internal server error")
}
