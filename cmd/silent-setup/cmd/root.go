package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/silent-setup/internal/config"
	"github.com/oshokin/silent-setup/internal/service/setup"
	"github.com/oshokin/silent-setup/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// workDir overrides the configured working directory.
	workDir string
	// journalFile overrides the configured run log path.
	journalFile string
	// quiet suppresses the on-screen countdown notification.
	quiet bool

	// rootCmd represents the base command for the unattended installation.
	rootCmd = &cobra.Command{
		Use:   "silent-setup",
		Short: "Download and launch the workstation agent installer unattended.",
		Long: `Unattended installer orchestration tool.

Checks administrator rights and network connectivity, prepares the working
directory, downloads the installer with bounded retries, validates it and
launches it silently with elevated rights. While the installation proceeds
in the background, a dismissible countdown message keeps the operator
informed; it never affects the outcome of the run.

All fatal conditions are written to the run log before the tool exits
with a non-zero code.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options := &setup.Options{
				ConfigPath:  configPath,
				WorkDir:     workDir,
				JournalFile: journalFile,
				Quiet:       quiet,
			}

			return setup.Run(ctx, options)
		},
	}
)

// Execute runs the silent-setup CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.Flags().StringVarP(&workDir, "workdir", "w", "", "working directory for the installer artifact")
	rootCmd.Flags().StringVarP(&journalFile, "log-file", "l", "", "path to the run log")
	rootCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "suppress the on-screen countdown notification")
}
