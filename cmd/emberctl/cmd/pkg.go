package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/emberos/emberctl/internal/config"
	repo "github.com/emberos/emberctl/internal/repository/overlay"
	"github.com/emberos/emberctl/internal/service/overlay"
)

// pkgCmd groups maintenance of the custom package overlay.
var pkgCmd = &cobra.Command{
	Use:   "pkg",
	Short: "Maintain the custom package overlay.",
	Long: `Maintain the list of extra packages layered on top of the base image.

The list feeds the overlay manager; emberctl only reconciles the persisted
list. Removing the last package drops the overlay entirely.`,
}

// pkgAddCmd appends packages to the overlay list.
var pkgAddCmd = &cobra.Command{
	Use:   "add <package>...",
	Short: "Add packages to the overlay.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := overlayService()
		if err != nil {
			return err
		}

		merged, err := svc.Add(cmd.Context(), args)
		if err != nil {
			return fmt.Errorf("add packages: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Overlay now holds %d package(s): %s\n",
			len(merged), strings.Join(merged, ", "))

		return nil
	},
}

// pkgRemoveCmd removes packages from the overlay list.
var pkgRemoveCmd = &cobra.Command{
	Use:   "remove <package>...",
	Short: "Remove packages from the overlay.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := overlayService()
		if err != nil {
			return err
		}

		remaining, notInstalled, err := svc.Remove(cmd.Context(), args)
		if err != nil {
			return fmt.Errorf("remove packages: %w", err)
		}

		for _, name := range notInstalled {
			fmt.Fprintf(cmd.OutOrStdout(), "Warning: %q is not installed.\n", name)
		}

		if len(remaining) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "Overlay is empty and has been dropped.")
			return nil
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Overlay now holds %d package(s): %s\n",
			len(remaining), strings.Join(remaining, ", "))

		return nil
	},
}

// overlayService builds the reconciler from the configured list path.
func overlayService() (*overlay.Service, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	return overlay.NewService(repo.NewFileRepository(cfg.PackagesFile)), nil
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	pkgCmd.AddCommand(pkgAddCmd, pkgRemoveCmd)
	rootCmd.AddCommand(pkgCmd)
}
