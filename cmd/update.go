package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/smazurov/blinkd/internal/logging"
	"github.com/smazurov/blinkd/internal/updater"
)

// DefaultRepository is the GitHub repository releases are fetched from.
const DefaultRepository = "smazurov/blinkd"

// CreateUpdateCmd creates the update command.
func CreateUpdateCmd() *cobra.Command {
	var (
		checkOnly  bool
		rollback   bool
		prerelease bool
		repository string
	)

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update blinkd to the latest release",
		Long: `Downloads the latest release from GitHub and replaces the running binary. ` +
			`The previous binary is kept for rollback. Restart the service afterwards.`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			logging.Initialize(logging.Config{Level: "info", Format: "text"})

			svc, err := updater.NewService(updater.Options{
				Repository: repository,
				Prerelease: prerelease,
			})
			if err != nil {
				return err
			}
			if !svc.Enabled() {
				return errors.New("updates disabled: " + svc.DisabledReason())
			}

			out := c.OutOrStdout()
			if rollback {
				if err := svc.Rollback(c.Context()); err != nil {
					return err
				}
				fmt.Fprintln(out, "Rolled back to the previous binary")
				return nil
			}

			info, err := svc.Check(c.Context())
			if err != nil {
				return err
			}
			if !info.UpdateAvailable {
				fmt.Fprintf(out, "Already up to date (%s)\n", info.CurrentVersion)
				return nil
			}
			fmt.Fprintf(out, "Update available: %s -> %s\n", info.CurrentVersion, info.LatestVersion)
			if checkOnly {
				return nil
			}

			if err := svc.Apply(c.Context()); err != nil {
				return err
			}
			fmt.Fprintf(out, "Installed %s\n", info.LatestVersion)
			return nil
		},
	}

	cmd.Flags().BoolVar(&checkOnly, "check", false, "Only check for a newer release")
	cmd.Flags().BoolVar(&rollback, "rollback", false, "Restore the previous binary")
	cmd.Flags().BoolVar(&prerelease, "prerelease", false, "Include prereleases")
	cmd.Flags().StringVar(&repository, "repo", DefaultRepository, "GitHub repository (owner/name)")
	cmd.MarkFlagsMutuallyExclusive("check", "rollback")

	return cmd
}
