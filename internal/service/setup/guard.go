package setup

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/mitchellh/go-ps"

	"github.com/oshokin/silent-setup/internal/logger"
)

const (
	// markerFilename marks that the tool is running right now to avoid
	// parallel execution against the same working directory.
	markerFilename = "silent-setup-marker.bin"

	// markerLifetime is the period after which a marker is considered
	// stale. It comfortably covers the download window plus the countdown.
	markerLifetime = 45 * time.Minute

	// baseToolExecutable is the executable name without platform extension.
	baseToolExecutable = "silent-setup"
)

// markerPath returns the location of the single-instance marker.
func markerPath() string {
	return filepath.Join(os.TempDir(), markerFilename)
}

// IsSetupRunningNow checks presence of a marker file and attempts recovery
// if it looks stale.
func IsSetupRunningNow(ctx context.Context) bool {
	logger.Info(ctx, "Checking for the presence of a run marker")

	fileInfo, err := os.Stat(markerPath())
	if err == nil {
		if time.Since(fileInfo.ModTime()) <= markerLifetime {
			return true
		}

		logger.Info(ctx, "The run marker is too old, attempting cleanup")

		if err = terminateProcessByName(toolExecutable()); err != nil {
			return true
		}

		if err = os.Remove(markerPath()); err != nil {
			return true
		}

		return false
	}

	if errors.Is(err, os.ErrNotExist) {
		logger.Info(ctx, "Run marker not found, continuing")
		return false
	}

	logger.Infof(ctx, "Unable to read run marker: %v", err)

	return false
}

// createMarker writes the single-instance marker.
func createMarker() error {
	marker, err := os.Create(markerPath())
	if err != nil {
		return err
	}

	return marker.Close()
}

// removeMarker deletes the single-instance marker, if present.
func removeMarker() {
	if _, err := os.Stat(markerPath()); err == nil {
		_ = os.Remove(markerPath())
	}
}

// terminateProcessByName tries to kill processes with the provided executable name.
func terminateProcessByName(processName string) error {
	processList, err := ps.Processes()
	if err != nil {
		return err
	}

	thisProcessID := os.Getpid()

	for _, process := range processList {
		if process.Pid() == thisProcessID {
			continue
		}

		if process.Executable() != processName {
			continue
		}

		var runningProcess *os.Process

		runningProcess, err = os.FindProcess(process.Pid())
		if err != nil {
			return err
		}

		if err = runningProcess.Kill(); err != nil {
			return err
		}
	}

	return nil
}

// toolExecutable returns the platform-specific executable name of this tool.
func toolExecutable() string {
	if strings.Contains(strings.ToLower(runtime.GOOS), "windows") {
		return baseToolExecutable + ".exe"
	}

	return baseToolExecutable
}
