package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (c *CLI) newTranspileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "transpile <asset.wasm>",
		Short: "Generate the module for one asset and print the code a build would see",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := c.app.Transpile(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if !res.Substituted() {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s binary, passed through unchanged\n", args[0], res.Kind)
				return nil
			}

			_, err = cmd.OutOrStdout().Write(res.Contents)
			return err
		},
	}
}
