// Package commands implements the CLI commands for witshim.
package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/witshim/internal/app"
	"go.trai.ch/witshim/internal/build"
	"go.trai.ch/witshim/internal/core/domain"
)

// CLI represents the command line interface for witshim.
type CLI struct {
	app     Application
	logs    LogSettings
	rootCmd *cobra.Command
}

// Application represents the application logic interface.
type Application interface {
	Configure(s app.Settings)
	Build(ctx context.Context, opts app.BuildOptions) (domain.BundleResult, error)
	Watch(ctx context.Context, opts app.BuildOptions) error
	Transpile(ctx context.Context, assetPath string) (domain.LoadResult, error)
	Inspect(ctx context.Context, paths []string) ([]app.InspectResult, error)
	Prune(ctx context.Context, opts app.PruneOptions) (app.PruneReport, error)
}

// LogSettings is implemented by loggers whose verbosity and format can be changed.
type LogSettings interface {
	SetVerbose(enable bool)
	SetJSON(enable bool)
}

// Option configures the CLI.
type Option func(*CLI)

// WithLogSettings lets the global --verbose and --json flags reconfigure the logger.
func WithLogSettings(ls LogSettings) Option {
	return func(c *CLI) {
		c.logs = ls
	}
}

// New creates a new CLI instance with the given app.
func New(a Application, opts ...Option) *CLI {
	rootCmd := &cobra.Command{
		Use:           "witshim",
		Short:         "Bundle WebAssembly components as importable modules",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		build.Commit,
		build.Date,
	))
	// Persistent flags first: -v belongs to --verbose, so --version gets no shorthand.
	flags := rootCmd.PersistentFlags()
	flags.BoolP("verbose", "v", false, "Enable debug logging")
	flags.Bool("json", false, "Emit logs as JSON")
	flags.StringP("config", "c", "", "Path to "+domain.ConfigFileName+" (default: searched upwards)")
	flags.String("out-dir", "", "Output root for generated modules (default \""+domain.GenDirName+"\")")
	flags.String("transpiler", "", "Transpiler command (default \""+domain.DefaultTranspiler+"\")")

	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	c := &CLI{
		app:     a,
		rootCmd: rootCmd,
	}
	for _, opt := range opts {
		opt(c)
	}

	rootCmd.PersistentPreRun = c.configure

	rootCmd.AddCommand(c.newBuildCmd())
	rootCmd.AddCommand(c.newTranspileCmd())
	rootCmd.AddCommand(c.newInspectCmd())
	rootCmd.AddCommand(c.newPruneCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

func (c *CLI) configure(cmd *cobra.Command, _ []string) {
	flags := cmd.Flags()
	verbose, _ := flags.GetBool("verbose")
	jsonLogs, _ := flags.GetBool("json")
	configPath, _ := flags.GetString("config")
	outDir, _ := flags.GetString("out-dir")
	transpiler, _ := flags.GetString("transpiler")

	if c.logs != nil {
		c.logs.SetVerbose(verbose)
		c.logs.SetJSON(jsonLogs)
	}

	c.app.Configure(app.Settings{
		ConfigPath: configPath,
		OutDir:     outDir,
		Transpiler: transpiler,
	})
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}
