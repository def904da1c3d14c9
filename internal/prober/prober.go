package prober

import (
	"context"
	"time"

	"github.com/martinsuchenak/pingsweep/internal/model"
)

// Prober probes a single address for reachability within a bounded time
// budget. Implementations never return errors past this boundary: every
// failure mode is encoded in the ProbeOutcome, and any resource acquired
// for the probe is released on every exit path.
type Prober interface {
	Probe(ctx context.Context, address string, timeout time.Duration) model.ProbeOutcome
}

// Func adapts a plain function to the Prober interface, for injected probe
// mechanisms and tests.
type Func func(ctx context.Context, address string, timeout time.Duration) model.ProbeOutcome

// Probe calls f.
func (f Func) Probe(ctx context.Context, address string, timeout time.Duration) model.ProbeOutcome {
	return f(ctx, address, timeout)
}
