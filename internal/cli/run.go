package cli

import (
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

// newRunCommand creates the run command.
func (a *App) newRunCommand() *cobra.Command {
	var seed bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Build every derived table in dependency order",
		Long: `Execute the pipeline: drop and recreate each derived table with its
compiled CREATE TABLE AS SELECT statement, in dependency order.`,
		Example: `  # Build all derived tables
  loom run

  # Load seed CSVs first, then build
  loom run --seed`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			eng, err := a.newEngine()
			if err != nil {
				return err
			}
			defer func() { _ = eng.Close() }()

			ctx := cmd.Context()
			if seed {
				if err := eng.LoadSeeds(ctx, a.Pipeline); err != nil {
					return err
				}
			}

			result, err := eng.Run(ctx, a.Pipeline)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			t := table.NewWriter()
			t.SetOutputMirror(w)
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"Table", "Rows", "Duration"})
			for _, tr := range result.Tables {
				rows := fmt.Sprintf("%d", tr.Rows)
				if tr.Rows < 0 {
					rows = "?"
				}
				t.AppendRow(table.Row{tr.Table, rows, tr.Duration.Round(time.Millisecond)})
			}
			t.Render()
			fmt.Fprintf(w, "Run %s: %d tables built\n", result.RunID, len(result.Tables))
			return nil
		},
	}

	cmd.Flags().BoolVar(&seed, "seed", false, "Load seed CSVs before running")

	return cmd
}
