package journal

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestLineFormat verifies the exact journal line layout for every level.
func TestLineFormat(t *testing.T) {
	t.Parallel()

	var buf strings.Builder

	frozen := time.Date(2026, 8, 24, 10, 15, 3, 0, time.UTC)
	j := NewWithWriter(&buf, func() time.Time { return frozen })

	j.Info("starting run")
	j.Warning("attempt %d failed", 1)
	j.Error("no connectivity")
	j.Success("installer launched, PID %d", 4242)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Equal(t, []string{
		"[2026-08-24 10:15:03] [Info] starting run",
		"[2026-08-24 10:15:03] [Warning] attempt 1 failed",
		"[2026-08-24 10:15:03] [Error] no connectivity",
		"[2026-08-24 10:15:03] [Success] installer launched, PID 4242",
	}, lines)
}

// TestNilWriter ensures a journal without a sink drops lines silently.
func TestNilWriter(t *testing.T) {
	t.Parallel()

	j := NewWithWriter(nil, nil)
	require.NotPanics(t, func() {
		j.Info("dropped")
	})

	require.NoError(t, j.Close())
}
