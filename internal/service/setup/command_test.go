package setup

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/silent-setup/internal/config"
	"github.com/oshokin/silent-setup/internal/journal"
	"github.com/oshokin/silent-setup/internal/repository/receipt"
	"github.com/oshokin/silent-setup/internal/service/download"
	"github.com/oshokin/silent-setup/internal/service/launch"
)

// testRunner builds a runner with benign defaults that individual tests
// override. Every collaborator counts its calls.
type testRunner struct {
	runner *runner
	trail  *strings.Builder

	probeCalls  int
	fetchCalls  int
	startCalls  int
	notifyCalls int
}

func newTestRunner(t *testing.T) *testRunner {
	t.Helper()

	cfg := &config.Config{
		WorkDir: filepath.Join(t.TempDir(), "work"),
	}
	require.NoError(t, config.Validate(cfg))

	tr := &testRunner{
		trail: new(strings.Builder),
	}

	tr.runner = &runner{
		cfg:      cfg,
		journal:  journal.NewWithWriter(tr.trail, nil),
		receipts: receipt.NewFileRepository(filepath.Join(cfg.WorkDir, receiptFilename)),

		isElevated: func() bool { return true },
		probe: func(context.Context) bool {
			tr.probeCalls++
			return true
		},
		fetch: func(_ context.Context, target download.Target, _ download.Policy) error {
			tr.fetchCalls++
			return os.WriteFile(target.Path, []byte("artifact"), 0o755)
		},
		start: func(context.Context, launch.Spec) (launch.Handle, error) {
			tr.startCalls++
			return launch.Handle{PID: 4242}, nil
		},
	}
	tr.runner.notify = func(context.Context) {
		tr.notifyCalls++
	}

	return tr
}

// TestRunPermissionDenied verifies the privilege gate: exit with the
// sentinel error, zero network activity, an Error-level journal line.
func TestRunPermissionDenied(t *testing.T) {
	t.Parallel()

	tr := newTestRunner(t)
	tr.runner.isElevated = func() bool { return false }

	err := tr.runner.run(context.Background())
	require.ErrorIs(t, err, ErrPermissionDenied)

	require.Zero(t, tr.probeCalls)
	require.Zero(t, tr.fetchCalls)
	require.Zero(t, tr.startCalls)

	require.Contains(t, tr.trail.String(), "[Error]")
	require.Contains(t, tr.trail.String(), "Administrator")
}

// TestRunNoConnectivity verifies a failed probe aborts before any
// download attempt.
func TestRunNoConnectivity(t *testing.T) {
	t.Parallel()

	tr := newTestRunner(t)
	tr.runner.probe = func(context.Context) bool {
		tr.probeCalls++
		return false
	}

	err := tr.runner.run(context.Background())
	require.ErrorIs(t, err, ErrConnectivityUnavailable)

	require.Equal(t, 1, tr.probeCalls)
	require.Zero(t, tr.fetchCalls)
	require.Zero(t, tr.startCalls)
}

// TestRunHappyPath verifies the full pipeline: download, launch, journal
// success trail, receipt persisted, notification shown.
func TestRunHappyPath(t *testing.T) {
	t.Parallel()

	tr := newTestRunner(t)
	require.NoError(t, tr.runner.run(context.Background()))

	require.Equal(t, 1, tr.probeCalls)
	require.Equal(t, 1, tr.fetchCalls)
	require.Equal(t, 1, tr.startCalls)
	require.Equal(t, 1, tr.notifyCalls)

	require.Contains(t, tr.trail.String(), "[Success]")
	require.Contains(t, tr.trail.String(), "PID 4242")

	saved, err := tr.runner.receipts.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, 4242, saved.LaunchedPID)
	require.EqualValues(t, len("artifact"), saved.ArtifactSize)
}

// TestRunDownloadExhausted verifies exhausted retries are fatal and the
// installer is never launched.
func TestRunDownloadExhausted(t *testing.T) {
	t.Parallel()

	tr := newTestRunner(t)
	tr.runner.fetch = func(context.Context, download.Target, download.Policy) error {
		tr.fetchCalls++
		return download.ErrRetriesExhausted
	}

	err := tr.runner.run(context.Background())
	require.ErrorIs(t, err, download.ErrRetriesExhausted)

	require.Equal(t, 1, tr.fetchCalls)
	require.Zero(t, tr.startCalls)
	require.Zero(t, tr.notifyCalls)
	require.Contains(t, tr.trail.String(), "[Error]")
}

// TestRunLaunchFailure verifies a failed launch after a successful
// download is fatal and the notifier is never started.
func TestRunLaunchFailure(t *testing.T) {
	t.Parallel()

	tr := newTestRunner(t)
	tr.runner.start = func(context.Context, launch.Spec) (launch.Handle, error) {
		tr.startCalls++
		return launch.Handle{}, launch.ErrExecutableMissing
	}

	err := tr.runner.run(context.Background())
	require.ErrorIs(t, err, launch.ErrExecutableMissing)

	require.Equal(t, 1, tr.fetchCalls)
	require.Equal(t, 1, tr.startCalls)
	require.Zero(t, tr.notifyCalls)
}

// TestRunLaunchSpec verifies the fixed argument vector and the elevation
// policy reach the launcher intact.
func TestRunLaunchSpec(t *testing.T) {
	t.Parallel()

	tr := newTestRunner(t)

	var captured launch.Spec

	tr.runner.start = func(_ context.Context, spec launch.Spec) (launch.Handle, error) {
		captured = spec
		return launch.Handle{PID: 1}, nil
	}

	require.NoError(t, tr.runner.run(context.Background()))

	require.Equal(t, filepath.Join(tr.runner.cfg.WorkDir, artifactFilename), captured.Path)
	require.Equal(t, installerArguments(tr.runner.cfg.WorkDir), captured.Args)
	require.True(t, captured.Elevate)

	// The argument vector is ordered and shell-free.
	require.Equal(t, "/VERYSILENT", captured.Args[0])
	require.Contains(t, captured.Args[len(captured.Args)-1], installLogFilename)
}

// TestPrepareWorkspace verifies idempotent directory creation and the
// stale-artifact warning path.
func TestPrepareWorkspace(t *testing.T) {
	t.Parallel()

	tr := newTestRunner(t)

	artifactPath, err := tr.runner.prepareWorkspace(context.Background())
	require.NoError(t, err)
	require.Equal(t, filepath.Join(tr.runner.cfg.WorkDir, artifactFilename), artifactPath)

	// A second call against the existing directory is not an error.
	_, err = tr.runner.prepareWorkspace(context.Background())
	require.NoError(t, err)

	// A stale artifact is removed.
	require.NoError(t, os.WriteFile(artifactPath, []byte("stale"), 0o600))
	_, err = tr.runner.prepareWorkspace(context.Background())
	require.NoError(t, err)

	_, err = os.Stat(artifactPath)
	require.True(t, errors.Is(err, os.ErrNotExist))
}

// TestResolveConfig verifies flag overrides land on top of defaults and
// the journal path follows the working directory.
func TestResolveConfig(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	cfg, err := resolveConfig(&Options{
		ConfigPath: filepath.Join(dir, "nope.yaml"),
		WorkDir:    filepath.Join(dir, "work"),
		Quiet:      true,
	})
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "work"), cfg.WorkDir)
	require.Equal(t, filepath.Join(dir, "work", config.DefaultJournalFilename), cfg.JournalFile)
	require.True(t, cfg.Quiet)
	require.Equal(t, config.DefaultInstallerURL, cfg.InstallerURL)

	// An explicit journal path wins.
	cfg, err = resolveConfig(&Options{
		ConfigPath:  filepath.Join(dir, "nope.yaml"),
		WorkDir:     filepath.Join(dir, "work"),
		JournalFile: filepath.Join(dir, "elsewhere.log"),
	})
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "elsewhere.log"), cfg.JournalFile)
}
