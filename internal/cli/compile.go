package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/loomworks/loom/pkg/model"
)

// newCompileCommand creates the compile command.
func (a *App) newCompileCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "compile [table]",
		Short: "Print the compiled SQL without executing it",
		Long: `Print the CREATE TABLE AS SELECT statement for one derived table, or
for every derived table in dependency order when no table is named.`,
		Example: `  # Compile the whole pipeline
  loom compile

  # Compile a single table
  loom compile stage_trips`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()

			if len(args) == 1 {
				t, err := a.Pipeline.Lookup(args[0])
				if err != nil {
					return err
				}
				dt, ok := t.(*model.DerivedTable)
				if !ok {
					return fmt.Errorf("table %s is a source table and has no compiled SQL", args[0])
				}
				fmt.Fprintln(w, dt.Compile())
				return nil
			}

			tables, err := a.Pipeline.Derived()
			if err != nil {
				return err
			}
			for i, dt := range tables {
				if i > 0 {
					fmt.Fprintln(w)
				}
				fmt.Fprintf(w, "-- %s\n", dt.PhysicalName())
				fmt.Fprintln(w, dt.Compile())
			}
			return nil
		},
	}
}
