package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/emberos/emberctl/internal/service/switcher"
)

var (
	// selectedTrack holds the non-interactive track selection, if any.
	selectedTrack string

	// trackCmd switches the machine to another release track.
	trackCmd = &cobra.Command{
		Use:   "track",
		Short: "Switch the machine to another release track.",
		Long: `Switch the machine to another release track.

Fetches the list of tracks published by the image server, asks which one to
switch to, records the new desired state and waits until ember-updated has
staged the matching image. The staged update is applied on the next reboot.

Only one track switch can run at a time machine-wide; a switch that was
already triggered must be consumed by a reboot before another one starts.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling. An interrupted wait leaves
			// the background updater running; re-running the command later
			// picks the result up through the sentinel.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			err := switcher.Run(ctx, &switcher.Options{
				ConfigPath: configPath,
				Track:      selectedTrack,
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("track switch: %w", err)
			}

			return nil
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	trackCmd.Flags().StringVarP(&selectedTrack, "track", "t", "",
		"select this track (name or index) without prompting")

	rootCmd.AddCommand(trackCmd)
}
