package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.trai.ch/witshim/internal/app"
)

func (c *CLI) newPruneCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Remove generation folders unused for longer than the retention period",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			maxAge, _ := cmd.Flags().GetDuration("max-age")
			dryRun, _ := cmd.Flags().GetBool("dry-run")

			report, err := c.app.Prune(cmd.Context(), app.PruneOptions{
				MaxAge: maxAge,
				DryRun: dryRun,
			})
			for _, folder := range report.Removed {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), folder)
			}
			return err
		},
	}
	cmd.Flags().Duration("max-age", 0, "Remove folders unused for longer than this (default from config, 720h)")
	cmd.Flags().BoolP("dry-run", "n", false, "List folders that would be removed without deleting them")
	return cmd
}
