package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/emberos/emberctl/internal/config"
	"github.com/emberos/emberctl/internal/logger"
	"github.com/emberos/emberctl/internal/version"
)

var (
	// configPath stores the path to the configuration YAML file.
	configPath string
	// logLevel is the textual logging level applied before any command runs.
	logLevel string

	// rootCmd represents the base command for administering the machine.
	rootCmd = &cobra.Command{
		Use:   "emberctl",
		Short: "Administer an immutable EmberOS machine.",
		Long: `Administer an immutable, image-based EmberOS machine.

emberctl switches the machine between release tracks and maintains the
custom package overlay layered on top of the base image. Applying a track
switch is the job of the ember-updated background service; emberctl only
records the desired state and waits for the staged result.`,
		SilenceUsage: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if level, ok := logger.ParseLogLevel(logLevel); ok {
				logger.SetLevel(level)
			}
		},
	}
)

// Execute runs the emberctl CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c",
		config.DefaultConfigFilename, "path to configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info",
		"logging level (debug, info, warn, error)")
}
