package cli

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/loomworks/loom/pkg/model"
)

// newDescribeCommand creates the describe command.
func (a *App) newDescribeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "describe [table]",
		Short: "Describe a table, or list every table",
		Long: `Print a human-readable summary of a table and its fields. With no
argument, list every registered table instead.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()

			if len(args) == 1 {
				t, err := a.Pipeline.Lookup(args[0])
				if err != nil {
					return err
				}
				fmt.Fprint(w, t.Describe())
				return nil
			}

			tw := table.NewWriter()
			tw.SetOutputMirror(w)
			tw.SetStyle(table.StyleLight)
			tw.AppendHeader(table.Row{"Table", "Kind", "Fields", "Logical Name"})
			for _, t := range a.Pipeline.Tables() {
				kind := "source"
				if _, derived := t.(*model.DerivedTable); derived {
					kind = "derived"
				}
				tw.AppendRow(table.Row{
					t.Schema() + "." + t.PhysicalName(),
					kind,
					len(t.Fields()),
					t.LogicalName(),
				})
			}
			tw.Render()
			return nil
		},
	}
}
