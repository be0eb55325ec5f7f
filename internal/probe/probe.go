// Package probe checks transport-level reachability of host:port targets.
package probe

import (
	"context"
	"net"
	"time"
)

// Prober attempts to reach a single address.
type Prober interface {
	// Probe returns nil once a transport-level connection to addr
	// succeeds. Connection refused, unreachable hosts, and DNS failures
	// are all reported as errors; the caller decides whether to retry.
	Probe(ctx context.Context, addr string) error
}

// TCPProber verifies reachability with a plain TCP connect.
// No payload is sent or expected; a completed handshake is sufficient
// evidence of readiness.
type TCPProber struct {
	// Timeout caps a single connection attempt. Zero means the attempt
	// is bounded only by the context.
	Timeout time.Duration
}

// Probe dials addr over TCP and closes the connection immediately.
func (p TCPProber) Probe(ctx context.Context, addr string) error {
	dialer := net.Dialer{Timeout: p.Timeout}

	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	return conn.Close()
}
