package cli

import (
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/loomworks/loom/internal/state"
)

// newRunsCommand creates the runs command.
func (a *App) newRunsCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Show run history",
		Long:  `List recorded pipeline runs, newest first.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.cfg.StatePath == "" {
				return fmt.Errorf("run history is disabled; set state_path to enable it")
			}

			store, err := state.Open(a.cfg.StatePath, a.logger)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			runs, err := store.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(w, "No runs recorded")
				return nil
			}

			t := table.NewWriter()
			t.SetOutputMirror(w)
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"Run", "Pipeline", "Started", "Duration", "Tables", "Rows", "Status"})
			for _, r := range runs {
				t.AppendRow(table.Row{
					shortID(r.ID),
					r.Pipeline,
					r.StartedAt.Format("2006-01-02 15:04:05"),
					r.FinishedAt.Sub(r.StartedAt).Round(10 * time.Millisecond),
					r.Tables,
					r.Rows,
					r.Status,
				})
			}
			t.Render()
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "Maximum number of runs to show")

	return cmd
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
