package scanner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/martinsuchenak/pingsweep/internal/log"
	"github.com/martinsuchenak/pingsweep/internal/model"
	"github.com/martinsuchenak/pingsweep/internal/prober"
	"github.com/martinsuchenak/pingsweep/internal/subnet"
	"github.com/martinsuchenak/pingsweep/internal/worker"
)

// ErrScanSetup is returned when a scan cannot be set up at all, e.g. the
// worker pool cannot be created or no prober is configured. No probing has
// happened when it is returned, so there are never partial results behind
// it.
var ErrScanSetup = errors.New("scan setup failed")

// Default scan parameters, applied where Options leaves them zero.
const (
	DefaultConcurrency = 50
	DefaultTimeout     = time.Second
)

// Options are the per-scan knobs: how many probes may run at once and how
// long each probe may take.
type Options struct {
	Concurrency int
	Timeout     time.Duration
}

func (o Options) withDefaults() Options {
	if o.Concurrency <= 0 {
		o.Concurrency = DefaultConcurrency
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	return o
}

// Coordinator fans probe tasks out across a bounded worker pool and
// aggregates their outcomes into a ScanReport. All aggregation state is
// scoped to a single Scan call, so one Coordinator can serve concurrent
// scans.
type Coordinator struct {
	prober prober.Prober
}

// New creates a Coordinator probing with p.
func New(p prober.Prober) *Coordinator {
	return &Coordinator{prober: p}
}

// Scan probes every usable host address of the given CIDR block and
// returns the set of unreachable addresses.
//
// Submission follows enumeration order; outcomes are consumed in whatever
// order probes complete, on a single goroutine - the serialized merge point
// that keeps the aggregate single-writer. A probe that times out or errors
// is a normal unreachable result, never a scan error. The scan fails only
// on a malformed CIDR, on setup failure, or when ctx is canceled; in each
// case no report is returned.
func (c *Coordinator) Scan(ctx context.Context, cidr string, opts Options, sink ProgressSink) (*model.ScanReport, error) {
	if c.prober == nil {
		return nil, fmt.Errorf("%w: no prober configured", ErrScanSetup)
	}
	if sink == nil {
		sink = NopSink{}
	}
	opts = opts.withDefaults()

	sub, err := subnet.Parse(cidr)
	if err != nil {
		return nil, err
	}
	hosts := sub.Hosts()

	pool, err := worker.NewPool(ctx, opts.Concurrency)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrScanSetup, err)
	}
	pool.Start()

	start := time.Now()
	log.Info("Starting subnet scan",
		"subnet", sub.String(),
		"hosts", len(hosts),
		"concurrency", opts.Concurrency,
		"timeout", opts.Timeout)

	// Buffered to the full host count so a finishing probe can always
	// deliver its outcome, even when the merge loop has already left.
	results := make(chan model.ProbeOutcome, len(hosts))

	go func() {
		for _, addr := range hosts {
			addr := addr
			err := pool.Submit(func(taskCtx context.Context) {
				results <- c.prober.Probe(taskCtx, addr, opts.Timeout)
			})
			if err != nil {
				// Pool context is gone, which only happens when the scan
				// context was canceled; the merge loop handles that.
				return
			}
		}
		pool.Close()
	}()

	unreachable := make(map[string]model.ProbeReason, len(hosts))
	received := 0
	for received < len(hosts) {
		select {
		case outcome := <-results:
			received++
			sink.ProbeCompleted(outcome.Address, outcome.Reachable)
			if !outcome.Reachable {
				unreachable[outcome.Address] = outcome.Reason
				log.Debug("Host unreachable", "address", outcome.Address, "reason", string(outcome.Reason))
			}
		case <-ctx.Done():
			pool.Stop()
			log.Warn("Scan canceled",
				"subnet", sub.String(),
				"completed", received,
				"total", len(hosts))
			return nil, ctx.Err()
		}
	}

	elapsed := time.Since(start)
	report := &model.ScanReport{
		ID:          generateID(),
		Subnet:      sub.String(),
		Total:       len(hosts),
		Unreachable: make([]string, 0, len(unreachable)),
		StartedAt:   start,
		CompletedAt: start.Add(elapsed),
		Elapsed:     elapsed,
	}

	// Enumeration order is ascending numeric order, so walking the host
	// list keeps the unreachable set sorted without a second pass.
	for _, addr := range hosts {
		if _, down := unreachable[addr]; down {
			report.Unreachable = append(report.Unreachable, addr)
		}
	}

	log.Info("Subnet scan completed",
		"subnet", sub.String(),
		"total", report.Total,
		"unreachable", len(report.Unreachable),
		"elapsed", elapsed)

	return report, nil
}

func generateID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
