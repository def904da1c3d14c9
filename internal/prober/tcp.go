package prober

import (
	"context"
	"errors"
	"net"
	"strconv"
	"time"

	"github.com/martinsuchenak/pingsweep/internal/model"
)

// DefaultTCPPort is probed when a TCPProber is created without a port.
const DefaultTCPPort = 80

// TCPProber checks reachability with a TCP connect to a single port. It
// needs no special privileges, which makes it the fallback where raw ICMP
// sockets are unavailable. Only a completed connection counts as an
// explicit success signal.
type TCPProber struct {
	Port int
}

// NewTCPProber creates a TCP connect prober for the given port.
func NewTCPProber(port int) *TCPProber {
	if port <= 0 {
		port = DefaultTCPPort
	}
	return &TCPProber{Port: port}
}

// Probe attempts a TCP connection to address within timeout.
func (p *TCPProber) Probe(ctx context.Context, address string, timeout time.Duration) model.ProbeOutcome {
	outcome := model.ProbeOutcome{Address: address}

	port := p.Port
	if port <= 0 {
		port = DefaultTCPPort
	}

	dialer := net.Dialer{Timeout: timeout}
	start := time.Now()

	conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(address, strconv.Itoa(port)))
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			outcome.Reason = model.ReasonTimeout
		} else {
			outcome.Reason = model.ReasonError
		}
		return outcome
	}
	conn.Close()

	outcome.Reachable = true
	outcome.RTT = time.Since(start)
	return outcome
}
