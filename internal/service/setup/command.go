package setup

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/oshokin/silent-setup/internal/config"
	"github.com/oshokin/silent-setup/internal/journal"
	"github.com/oshokin/silent-setup/internal/logger"
	"github.com/oshokin/silent-setup/internal/repository/receipt"
	"github.com/oshokin/silent-setup/internal/service/download"
	"github.com/oshokin/silent-setup/internal/service/launch"
	"github.com/oshokin/silent-setup/internal/service/netcheck"
	"github.com/oshokin/silent-setup/internal/service/notifier"
	"github.com/oshokin/silent-setup/internal/service/privilege"
	"github.com/oshokin/silent-setup/internal/version"
)

// Fixed contract of the acquisition pipeline. These values are deliberately
// not configurable: the tool exists to run one known installer one known way.
const (
	// artifactFilename is the name of the installer inside the working directory.
	artifactFilename = "agent-setup.exe"

	// installLogFilename is where the installer writes its own log.
	installLogFilename = "agent-install.log"

	// receiptFilename stores the outcome of the last run.
	receiptFilename = "silent-setup-receipt.json"

	// downloadTimeout bounds a single download attempt.
	downloadTimeout = 10 * time.Minute

	// downloadMaxAttempts is the total number of download attempts.
	downloadMaxAttempts = 3

	// downloadBackoff is the fixed delay between failed attempts.
	downloadBackoff = 15 * time.Second

	// minimumArtifactSize rejects error pages saved as the executable.
	minimumArtifactSize int64 = 1 << 20

	// countdownDuration is how long the on-screen notification runs.
	countdownDuration = 15 * time.Minute

	// notificationMessage is shown to the operator while the installer runs.
	notificationMessage = "The workstation agent is being installed. " +
		"You may continue working, but do not power off the computer."
)

// Fatal conditions of the pipeline. Each is logged to the run journal
// before the process terminates with a non-zero exit code.
var (
	// ErrPermissionDenied means the tool was started without administrator rights.
	ErrPermissionDenied = errors.New("administrator rights are required")
	// ErrConnectivityUnavailable means the reachability probe failed.
	ErrConnectivityUnavailable = errors.New("network is unreachable")
	// errSetupAlreadyRunning means another instance holds the run marker.
	errSetupAlreadyRunning = errors.New("the setup tool is already running")
)

// Options are inputs accepted by the setup entry point.
type Options struct {
	// ConfigPath is the optional path to the settings YAML file.
	ConfigPath string
	// WorkDir overrides the configured working directory.
	WorkDir string
	// JournalFile overrides the configured run log path.
	JournalFile string
	// Quiet suppresses the on-screen notification.
	Quiet bool
}

// runner holds the state and collaborators for a single setup execution.
// Collaborators are function fields so tests can substitute them; defaults
// are wired in newRunner. It is intentionally unexported — call
// Run(ctx, Options) from callers.
type runner struct {
	cfg      *config.Config
	journal  *journal.Journal
	receipts receipt.Repository

	isElevated func() bool
	probe      func(ctx context.Context) bool
	fetch      func(ctx context.Context, target download.Target, policy download.Policy) error
	start      func(ctx context.Context, spec launch.Spec) (launch.Handle, error)
	notify     func(ctx context.Context)
}

// Run executes the setup lifecycle and is the public entry point for the CLI.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "silent-setup")

	r, err := newRunner(ctx, opts)
	if err != nil {
		return err
	}

	defer r.cleanup(ctx)

	if err = r.run(ctx); err != nil {
		logger.ErrorKV(ctx, "Setup run failed", "error", err)
		return err
	}

	logger.Info(ctx, "Setup completed")

	return nil
}

// newRunner prepares the run: resolves configuration, refuses concurrent
// execution, opens the run journal and wires default collaborators.
func newRunner(ctx context.Context, opts *Options) (*runner, error) {
	cfg, err := resolveConfig(opts)
	if err != nil {
		return nil, err
	}

	if IsSetupRunningNow(ctx) {
		return nil, errSetupAlreadyRunning
	}

	if err = createMarker(); err != nil {
		return nil, fmt.Errorf("create run marker: %w", err)
	}

	r := &runner{
		cfg:      cfg,
		journal:  journal.New(cfg.JournalFile),
		receipts: receipt.NewFileRepository(filepath.Join(cfg.WorkDir, receiptFilename)),

		isElevated: privilege.IsElevated,
		probe: func(ctx context.Context) bool {
			return netcheck.Probe(ctx, netcheck.DefaultProbeURL, netcheck.DefaultTimeout)
		},
		start: launch.Start,
	}

	r.fetch = func(ctx context.Context, target download.Target, policy download.Policy) error {
		return download.NewFetcher(nil, r.journal).Fetch(ctx, target, policy)
	}
	r.notify = r.presentNotification

	return r, nil
}

// resolveConfig loads settings when a file is present and applies
// command-line overrides on top.
func resolveConfig(opts *Options) (*config.Config, error) {
	configPath := opts.ConfigPath
	if configPath == "" {
		configPath = config.DefaultConfigFilename
	}

	var (
		cfg *config.Config
		err error
	)

	if _, statErr := os.Stat(configPath); statErr == nil {
		cfg, err = config.Load(configPath)
		if err != nil {
			return nil, err
		}
	} else {
		cfg = config.Default()
	}

	if opts.WorkDir != "" {
		cfg.WorkDir = opts.WorkDir
		// The default journal path follows the working directory unless
		// explicitly overridden.
		if opts.JournalFile == "" {
			cfg.JournalFile = filepath.Join(cfg.WorkDir, config.DefaultJournalFilename)
		}
	}

	if opts.JournalFile != "" {
		cfg.JournalFile = opts.JournalFile
	}

	if opts.Quiet {
		cfg.Quiet = true
	}

	if err = config.Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// run executes the pipeline strictly forward:
// privilege gate → connectivity probe → workspace preparation → bounded
// download → privileged launch → countdown notification.
func (r *runner) run(ctx context.Context) error {
	r.journal.Info("Unattended setup started (version %s)", version.Short())
	r.logPreviousRun(ctx)

	// The privilege gate comes first: every later step would otherwise
	// fail late and confusingly.
	if !r.isElevated() {
		r.journal.Error("Administrator rights are required, aborting")
		return ErrPermissionDenied
	}

	logger.Info(ctx, "Probing network connectivity")

	if !r.probe(ctx) {
		r.journal.Error("Network is unreachable, installation aborted")
		return ErrConnectivityUnavailable
	}

	artifactPath, err := r.prepareWorkspace(ctx)
	if err != nil {
		r.journal.Error("Unable to prepare working directory %s: %v", r.cfg.WorkDir, err)
		return fmt.Errorf("prepare working directory: %w", err)
	}

	logger.InfoKV(ctx, "Downloading installer", "url", r.cfg.InstallerURL, "path", artifactPath)
	r.journal.Info("Downloading installer from %s", r.cfg.InstallerURL)

	target := download.Target{
		URL:      r.cfg.InstallerURL,
		Path:     artifactPath,
		Timeout:  downloadTimeout,
		MinSize:  minimumArtifactSize,
		Checksum: r.cfg.Checksum(),
	}
	policy := download.Policy{
		MaxAttempts: downloadMaxAttempts,
		Backoff:     downloadBackoff,
	}

	if err = r.fetch(ctx, target, policy); err != nil {
		r.journal.Error("Download failed: %v", err)
		return fmt.Errorf("download installer: %w", err)
	}

	spec := launch.Spec{
		Path:    artifactPath,
		Args:    installerArguments(r.cfg.WorkDir),
		Elevate: !r.cfg.NoElevation,
	}

	handle, err := r.start(ctx, spec)
	if err != nil {
		r.journal.Error("Unable to start the installer: %v", err)
		return fmt.Errorf("launch installer: %w", err)
	}

	r.journal.Success("Installer started (PID %d), installation continues in the background", handle.PID)
	r.saveReceipt(ctx, target, handle)

	// Purely informational; can never fail the run.
	r.notify(ctx)

	r.journal.Info("Setup tool finished")

	return nil
}

// installerArguments is the fixed, ordered argument vector: install
// silently, skip interactive prompts and write the installer's own log
// into the working directory.
func installerArguments(workDir string) []string {
	return []string{
		"/VERYSILENT",
		"/SUPPRESSMSGBOXES",
		"/NORESTART",
		"/NOCANCEL",
		"/SP-",
		"/LOG=" + filepath.Join(workDir, installLogFilename),
	}
}

// prepareWorkspace ensures the working directory exists and removes a
// stale artifact from a previous run. Removal failure is downgraded to a
// warning: the download overwrites the path anyway, but the operator
// should know in case the filesystem rejects replace-in-place.
func (r *runner) prepareWorkspace(ctx context.Context) (string, error) {
	if err := os.MkdirAll(r.cfg.WorkDir, 0o755); err != nil {
		return "", fmt.Errorf("create directory: %w", err)
	}

	artifactPath := filepath.Join(r.cfg.WorkDir, artifactFilename)

	if _, err := os.Stat(artifactPath); err == nil {
		if err = os.Remove(artifactPath); err != nil {
			logger.WarnKV(ctx, "Unable to remove stale artifact", "path", artifactPath, "error", err)
			r.journal.Warning("Unable to remove stale artifact %s: %v", artifactPath, err)
		}
	}

	return artifactPath, nil
}

// logPreviousRun reports the previous run receipt, when one exists.
func (r *runner) logPreviousRun(ctx context.Context) {
	previous, err := r.receipts.Load(ctx)
	if err != nil {
		if !errors.Is(err, receipt.ErrNotFound) {
			logger.WarnKV(ctx, "Unable to read previous run receipt", "error", err)
		}

		return
	}

	logger.InfoKV(ctx, "Previous run found",
		"timestamp", previous.Timestamp, "pid", previous.LaunchedPID, "version", previous.ToolVersion)
}

// saveReceipt records the outcome of this run. Failure to persist is a
// warning: the installer is already running, the run has succeeded.
func (r *runner) saveReceipt(ctx context.Context, target download.Target, handle launch.Handle) {
	artifactSize := int64(0)
	if info, err := os.Stat(target.Path); err == nil {
		artifactSize = info.Size()
	}

	record := &receipt.Receipt{
		Timestamp:    time.Now().UTC(),
		InstallerURL: target.URL,
		ArtifactPath: target.Path,
		ArtifactSize: artifactSize,
		LaunchedPID:  handle.PID,
		ToolVersion:  version.Short(),
	}

	if err := r.receipts.Save(ctx, record); err != nil {
		logger.WarnKV(ctx, "Unable to save run receipt", "error", err)
		r.journal.Warning("Unable to save run receipt: %v", err)
	}
}

// presentNotification shows the countdown, falling back to a plain-text
// line when no interactive display is available. Every failure here is
// downgraded — the installer is already running.
func (r *runner) presentNotification(ctx context.Context) {
	if r.cfg.Quiet {
		logger.Info(ctx, "Quiet mode, skipping the on-screen notification")
		return
	}

	state, err := notifier.Present(ctx, notificationMessage, countdownDuration)
	if err != nil {
		logger.WarnKV(ctx, "On-screen notification unavailable", "error", err)
		r.journal.Warning("On-screen notification unavailable: %v", err)

		if fallbackErr := notifier.Fallback(os.Stdout, notificationMessage, countdownDuration); fallbackErr != nil {
			// Swallowed: the notification is informational only.
			logger.DebugKV(ctx, "Fallback notification failed", "error", fallbackErr)
		}

		return
	}

	logger.InfoKV(ctx, "Notification closed", "state", state.String())
}

// cleanup removes the run marker and closes the journal.
func (r *runner) cleanup(ctx context.Context) {
	removeMarker()

	if err := r.journal.Close(); err != nil {
		logger.WarnKV(ctx, "Unable to close run journal", "error", err)
	}

	logger.Info(ctx, "The setup tool has been stopped")
}
