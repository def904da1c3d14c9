package model

import "time"

// ProbeReason explains why a probe failed. Reasons are kept for diagnostic
// logging only; the scan treats every failed probe the same way.
type ProbeReason string

const (
	// ReasonNone is set on successful probes.
	ReasonNone ProbeReason = ""
	// ReasonTimeout means no reply arrived within the probe's time budget.
	ReasonTimeout ProbeReason = "timeout"
	// ReasonError means the probe mechanism failed before producing a signal.
	ReasonError ProbeReason = "probe_error"
)

// ProbeOutcome is the result of probing a single address. Exactly one
// outcome is produced per submitted address; probes are never retried.
type ProbeOutcome struct {
	Address   string        `json:"address"`
	Reachable bool          `json:"reachable"`
	Reason    ProbeReason   `json:"reason,omitempty"`
	RTT       time.Duration `json:"rtt,omitempty"`
}

// ScanReport is the aggregate result of one subnet scan. It is constructed
// only after every submitted probe has completed and is immutable once
// returned.
type ScanReport struct {
	ID          string    `json:"id"`
	Subnet      string    `json:"subnet"`
	Total       int       `json:"total"`
	Unreachable []string  `json:"unreachable"`
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`

	// Elapsed is the wall-clock duration of the scan, in nanoseconds when
	// serialized.
	Elapsed time.Duration `json:"elapsed"`
}

// ReachableCount returns the number of probed addresses that answered.
func (r *ScanReport) ReachableCount() int {
	return r.Total - len(r.Unreachable)
}
