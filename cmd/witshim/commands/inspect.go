package commands

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"go.trai.ch/witshim/internal/app"
	"go.trai.ch/witshim/internal/core/domain"
	"go.trai.ch/witshim/internal/ui/output"
	"go.trai.ch/witshim/internal/ui/style"
)

func (c *CLI) newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <file...>",
		Short: "Show the detected kind and generation folder of files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			results, err := c.app.Inspect(cmd.Context(), args)
			if err != nil {
				return err
			}
			printInspect(cmd.OutOrStdout(), results)
			return nil
		},
	}
}

func printInspect(w io.Writer, results []app.InspectResult) {
	out := output.New(w)
	color := func(s string, c lipgloss.Color) termenv.Style {
		return out.String(s).Foreground(out.Color(string(c)))
	}

	for _, r := range results {
		_, _ = fmt.Fprintf(out, "%s %s\n", color(style.Dot, style.Iris).Bold(), r.Path)
		_, _ = fmt.Fprintf(out, "  kind    %s\n", r.Kind)
		_, _ = fmt.Fprintf(out, "  size    %d bytes\n", r.Size)
		_, _ = fmt.Fprintf(out, "  blake3  %s\n", r.Digest)

		if r.Kind != domain.KindComponent {
			_, _ = fmt.Fprintf(out, "  %s\n", color("passed through unchanged", style.Slate))
			continue
		}

		_, _ = fmt.Fprintf(out, "  folder  %s\n", r.Folder)
		switch {
		case r.OutRoot == "":
			_, _ = fmt.Fprintf(out, "  %s %s\n", color(style.Warning, style.Yellow), "no project root found")
		case r.Generated:
			_, _ = fmt.Fprintf(out, "  %s generated in %s\n", color(style.Check, style.Green), r.OutRoot)
			for _, a := range r.Assets {
				_, _ = fmt.Fprintf(out, "    %s %s\n", color(style.Arrow, style.Slate), a)
			}
		default:
			_, _ = fmt.Fprintf(out, "  %s not generated yet\n", color(style.Arrow, style.Slate))
		}
	}
}
