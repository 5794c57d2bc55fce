// Package cli is the embeddable command-line interface for pipeline
// programs. A program declares its tables in Go, registers them in a
// pipeline, and hands the pipeline to Execute; the CLI supplies the
// compile, run, seed, and inspection commands around it.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/loomworks/loom/internal/config"
	"github.com/loomworks/loom/internal/engine"
	"github.com/loomworks/loom/internal/pipeline"
)

// App binds a pipeline to the command-line interface.
type App struct {
	// Name is the executable name shown in help output.
	Name string
	// Version is the program version.
	Version string
	// Pipeline is the pipeline the commands operate on.
	Pipeline *pipeline.Pipeline

	cfgFile string
	cfg     *config.Config
	logger  *slog.Logger
}

// NewRootCmd creates the root command with every subcommand attached.
func (a *App) NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     a.Name,
		Short:   fmt.Sprintf("%s - declarative SQL pipeline", a.Name),
		Version: a.Version,
		Long: fmt.Sprintf(`%s builds tables with CREATE TABLE AS SELECT statements derived from
a declarative table model, tracking field-level lineage along the way.`, a.Name),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			var err error
			a.cfg, err = config.Load(a.cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}

			level := slog.LevelInfo
			if a.cfg.Verbose {
				level = slog.LevelDebug
			}
			a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default: ./loom.yaml)")
	rootCmd.PersistentFlags().String("adapter", "", "database adapter (sqlite|duckdb|postgres)")
	rootCmd.PersistentFlags().String("database.path", "", "database file path (file-backed adapters)")
	rootCmd.PersistentFlags().String("seeds_dir", "", "directory of CSV seed files")
	rootCmd.PersistentFlags().String("state_path", "", "run-history database path")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")

	rootCmd.AddCommand(a.newRunCommand())
	rootCmd.AddCommand(a.newCompileCommand())
	rootCmd.AddCommand(a.newSeedCommand())
	rootCmd.AddCommand(a.newDescribeCommand())
	rootCmd.AddCommand(a.newLineageCommand())
	rootCmd.AddCommand(a.newRunsCommand())
	rootCmd.AddCommand(a.newVersionCommand())

	return rootCmd
}

// Execute runs the root command, printing any error to stderr.
func (a *App) Execute() error {
	rootCmd := a.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// newEngine creates an engine from the resolved configuration.
func (a *App) newEngine() (*engine.Engine, error) {
	return engine.New(engine.Config{
		Adapter:   a.cfg.AdapterConfig(),
		SeedsDir:  a.cfg.SeedsDir,
		StatePath: a.cfg.StatePath,
		Logger:    a.logger,
	})
}
