package netcheck

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestProbeReachable verifies a live endpoint reports reachable even on
// non-200 statuses.
func TestProbeReachable(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	require.True(t, Probe(context.Background(), server.URL, time.Second))

	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer failing.Close()

	// Server-side failure still proves the network path works.
	require.True(t, Probe(context.Background(), failing.URL, time.Second))
}

// TestProbeUnreachable verifies transport errors map to unreachable
// without escalating.
func TestProbeUnreachable(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	server.Close()

	require.False(t, Probe(context.Background(), server.URL, time.Second))
	require.False(t, Probe(context.Background(), "://bad-url", time.Second))
}
