package netutil

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func listen(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })
	return ln.Addr().(*net.TCPAddr).Port
}

// closedPort returns a port that was free a moment ago.
func closedPort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())
	return port
}

func TestProbe(t *testing.T) {
	assert.NoError(t, Probe(context.Background(), "127.0.0.1", listen(t)))

	err := Probe(context.Background(), "127.0.0.1", closedPort(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nothing is listening on 127.0.0.1:")
}

func TestWaitForPort_Open(t *testing.T) {
	assert.NoError(t, WaitForPort(context.Background(), "127.0.0.1", listen(t), time.Second))
}

func TestWaitForPort_Timeout(t *testing.T) {
	start := time.Now()
	err := WaitForPort(context.Background(), "127.0.0.1", closedPort(t), 200*time.Millisecond)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timeout waiting for")
	assert.Less(t, time.Since(start), 3*time.Second)
}

func TestWaitForPort_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := WaitForPort(ctx, "127.0.0.1", closedPort(t), time.Minute)
	assert.ErrorIs(t, err, context.Canceled)
}
