package launch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/oshokin/silent-setup/internal/logger"
)

// Spec describes one process launch. It is built once after a successful
// download and never mutated.
type Spec struct {
	// Path is the executable to start.
	Path string
	// Args is the literal, ordered argument vector. It is never passed
	// through a shell, so paths with special characters stay intact.
	Args []string
	// Elevate requests administrative rights for the child.
	Elevate bool
}

// Handle identifies a launched process. The process is never waited on or
// terminated through it; the identifier exists for logging and the run
// receipt only.
type Handle struct {
	// PID is the operating system process identifier.
	PID int
}

// ErrExecutableMissing is returned when the spec points at a non-existent file.
var ErrExecutableMissing = errors.New("executable not found")

// Start launches the executable described by the spec and returns its
// handle without waiting for it to exit. Launch is a single attempt: the
// OS call either returns immediately or fails immediately.
func Start(ctx context.Context, spec Spec) (Handle, error) {
	if _, err := os.Stat(filepath.Clean(spec.Path)); err != nil {
		if os.IsNotExist(err) {
			return Handle{}, fmt.Errorf("%s: %w", spec.Path, ErrExecutableMissing)
		}

		return Handle{}, fmt.Errorf("stat executable: %w", err)
	}

	handle, err := start(ctx, spec)
	if err != nil {
		return Handle{}, fmt.Errorf("start process: %w", err)
	}

	logger.InfoKV(ctx, "Process started", "path", spec.Path, "pid", handle.PID)

	return handle, nil
}
