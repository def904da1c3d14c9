package prober

import (
	"context"
	"net"
	"os"
	"sync/atomic"
	"time"

	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv4"

	"github.com/martinsuchenak/pingsweep/internal/model"
)

var icmpPayload = []byte("pingsweep")

// ICMPProber checks reachability with a single ICMP echo request per probe.
// Each probe opens its own raw socket, so it requires the privileges to do
// that (root or CAP_NET_RAW on Linux).
type ICMPProber struct {
	seq atomic.Uint32
}

// NewICMPProber creates an ICMP echo prober.
func NewICMPProber() *ICMPProber {
	return &ICMPProber{}
}

// Probe sends one echo request to address and waits up to timeout for the
// matching reply. A reply marks the address reachable; a missed deadline is
// a timeout; every other failure, including the socket not being available,
// is a probe error. All three are encoded in the outcome.
func (p *ICMPProber) Probe(ctx context.Context, address string, timeout time.Duration) model.ProbeOutcome {
	outcome := model.ProbeOutcome{Address: address}

	ip := net.ParseIP(address)
	if ip == nil || ip.To4() == nil {
		outcome.Reason = model.ReasonError
		return outcome
	}

	conn, err := icmp.ListenPacket("ip4:icmp", "0.0.0.0")
	if err != nil {
		outcome.Reason = model.ReasonError
		return outcome
	}
	defer conn.Close()

	deadline := time.Now().Add(timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	id := os.Getpid() & 0xffff
	seq := int(p.seq.Add(1) & 0xffff)

	msg := icmp.Message{
		Type: ipv4.ICMPTypeEcho,
		Code: 0,
		Body: &icmp.Echo{
			ID:   id,
			Seq:  seq,
			Data: icmpPayload,
		},
	}

	data, err := msg.Marshal(nil)
	if err != nil {
		outcome.Reason = model.ReasonError
		return outcome
	}

	start := time.Now()
	if _, err := conn.WriteTo(data, &net.IPAddr{IP: ip}); err != nil {
		outcome.Reason = model.ReasonError
		return outcome
	}

	// A raw ICMP socket sees every echo reply addressed to this process, so
	// keep reading until our own reply shows up or the deadline passes.
	reply := make([]byte, 1500)
	for {
		select {
		case <-ctx.Done():
			outcome.Reason = model.ReasonError
			return outcome
		default:
		}

		if err := conn.SetReadDeadline(deadline); err != nil {
			outcome.Reason = model.ReasonError
			return outcome
		}

		n, peer, err := conn.ReadFrom(reply)
		if err != nil {
			if os.IsTimeout(err) {
				outcome.Reason = model.ReasonTimeout
			} else {
				outcome.Reason = model.ReasonError
			}
			return outcome
		}

		rm, err := icmp.ParseMessage(ipv4.ICMPTypeEchoReply.Protocol(), reply[:n])
		if err != nil || rm.Type != ipv4.ICMPTypeEchoReply {
			continue
		}

		echo, ok := rm.Body.(*icmp.Echo)
		if !ok || echo.ID != id || echo.Seq != seq {
			continue
		}

		if peerAddr, ok := peer.(*net.IPAddr); !ok || !peerAddr.IP.Equal(ip) {
			continue
		}

		outcome.Reachable = true
		outcome.RTT = time.Since(start)
		return outcome
	}
}
