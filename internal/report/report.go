package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/martinsuchenak/pingsweep/internal/model"
)

// ConsoleSink prints one line per completed probe, the way the interactive
// scan command surfaces progress.
type ConsoleSink struct {
	mu sync.Mutex
	w  io.Writer
}

// NewConsoleSink creates a sink writing to w.
func NewConsoleSink(w io.Writer) *ConsoleSink {
	return &ConsoleSink{w: w}
}

// ProbeCompleted prints the probe result for one address.
func (s *ConsoleSink) ProbeCompleted(address string, reachable bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if reachable {
		fmt.Fprintf(s.w, "  [+] %s reachable\n", address)
	} else {
		fmt.Fprintf(s.w, "  [-] %s unreachable\n", address)
	}
}

// WriteText renders a human-readable summary of a scan report.
func WriteText(w io.Writer, r *model.ScanReport) {
	fmt.Fprintln(w, "=== Scan Results ===")
	fmt.Fprintf(w, "Subnet:      %s\n", r.Subnet)
	fmt.Fprintf(w, "Total hosts: %d\n", r.Total)
	fmt.Fprintf(w, "Reachable:   %d\n", r.ReachableCount())
	fmt.Fprintf(w, "Unreachable: %d\n", len(r.Unreachable))
	fmt.Fprintf(w, "Elapsed:     %.2fs\n", r.Elapsed.Seconds())

	if len(r.Unreachable) == 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "All host addresses in the subnet are reachable.")
		return
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Unreachable addresses:")
	for _, addr := range r.Unreachable {
		fmt.Fprintf(w, "  %s\n", addr)
	}
}

// WriteJSON renders a scan report as indented JSON.
func WriteJSON(w io.Writer, r *model.ScanReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}
