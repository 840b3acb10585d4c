//go:build !windows

package launch

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestStartMissingExecutable verifies a dangling path fails fast with the
// sentinel error and no handle.
func TestStartMissingExecutable(t *testing.T) {
	t.Parallel()

	spec := Spec{
		Path: filepath.Join(t.TempDir(), "agent-setup.exe"),
		Args: []string{"/VERYSILENT"},
	}

	handle, err := Start(context.Background(), spec)
	require.ErrorIs(t, err, ErrExecutableMissing)
	require.Zero(t, handle.PID)
}

// TestStartFireAndForget verifies a real child is started, a PID is
// reported and the call does not wait for the child to exit.
func TestStartFireAndForget(t *testing.T) {
	t.Parallel()

	// A tiny script standing in for the installer.
	script := filepath.Join(t.TempDir(), "fake-setup.sh")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\nsleep 0.1\n"), 0o755))

	handle, err := Start(context.Background(), Spec{Path: script})
	require.NoError(t, err)
	require.Positive(t, handle.PID)
}
