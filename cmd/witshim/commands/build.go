package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/witshim/internal/app"
)

func (c *CLI) newBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build [entry-points...] [-- run-args...]",
		Short: "Bundle entry points, substituting .wasm components with generated modules",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			outdir, _ := cmd.Flags().GetString("outdir")
			runAfter, _ := cmd.Flags().GetBool("run")
			watch, _ := cmd.Flags().GetBool("watch")

			entries, runArgs := args, []string(nil)
			if dash := cmd.ArgsLenAtDash(); dash >= 0 {
				entries, runArgs = args[:dash], args[dash:]
			}

			opts := app.BuildOptions{
				EntryPoints: entries,
				Outdir:      outdir,
				Run:         runAfter,
				RunArgs:     runArgs,
			}
			if watch {
				return c.app.Watch(cmd.Context(), opts)
			}
			_, err := c.app.Build(cmd.Context(), opts)
			return err
		},
	}
	cmd.Flags().StringP("outdir", "o", "", "Bundle output directory (default from config, \"dist\")")
	cmd.Flags().BoolP("run", "r", false, "Run the bundle with run.command after building")
	cmd.Flags().BoolP("watch", "w", false, "Rebuild when sources change until interrupted")
	return cmd
}
