// Package netutil checks TCP reachability of the debug listener.
package netutil

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"
)

const (
	// DialTimeout bounds a single connection attempt.
	DialTimeout = 2 * time.Second

	// ListenerWaitTimeout is how long WaitForPort waits by default for an
	// IDE debug listener to come up.
	ListenerWaitTimeout = 2 * time.Minute
)

// Probe makes one connection attempt to host:port.
func Probe(ctx context.Context, host string, port int) error {
	address := net.JoinHostPort(host, strconv.Itoa(port))
	dialer := net.Dialer{Timeout: DialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return fmt.Errorf("nothing is listening on %s: %w", address, err)
	}
	return conn.Close()
}

// WaitForPort probes host:port every second until it accepts a connection
// or timeout elapses.
func WaitForPort(ctx context.Context, host string, port int, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if Probe(ctx, host, port) == nil {
		return nil
	}

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			if ctx.Err() == context.DeadlineExceeded {
				return fmt.Errorf("timeout waiting for %s", net.JoinHostPort(host, strconv.Itoa(port)))
			}
			return ctx.Err()
		case <-ticker.C:
			if Probe(ctx, host, port) == nil {
				return nil
			}
		}
	}
}
