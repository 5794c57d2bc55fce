package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/loomworks/loom/pkg/model"
)

// newLineageCommand creates the lineage command.
func (a *App) newLineageCommand() *cobra.Command {
	var direct bool

	cmd := &cobra.Command{
		Use:   "lineage <table> <field>",
		Short: "Show the source fields a field is computed from",
		Long: `Display the lineage of a field: the fields it reads one step back, and
the full closure down to the source columns it ultimately depends on.

The field may also be given as a single "table.field" argument.`,
		Example: `  # Full lineage for a field
  loom lineage stage_trips duration_min

  # Same, single-argument form
  loom lineage stage_trips.duration_min

  # One step back only
  loom lineage stage_trips duration_min --direct`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tableName, fieldName, err := splitFieldArgs(args)
			if err != nil {
				return err
			}

			t, err := a.Pipeline.Lookup(tableName)
			if err != nil {
				return err
			}
			f, err := t.Field(fieldName)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Lineage for: %s\n", f.QualifiedName())
			if df, ok := f.(*model.DerivedField); ok {
				fmt.Fprintf(w, "Expression: %s\n", df.Template())
			}
			fmt.Fprintln(w)

			printFieldSet(cmd, "Direct sources", f.DirectSources())
			if !direct {
				fmt.Fprintln(w)
				printFieldSet(cmd, "Full lineage", f.Lineage())
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&direct, "direct", false, "Show only the one-step-back sources")

	return cmd
}

// splitFieldArgs accepts either ("table", "field") or a single "table.field"
// argument. With one argument, the split is on the LAST dot so schema-
// qualified table names keep working.
func splitFieldArgs(args []string) (string, string, error) {
	if len(args) == 2 {
		return args[0], args[1], nil
	}
	i := strings.LastIndex(args[0], ".")
	if i <= 0 || i == len(args[0])-1 {
		return "", "", fmt.Errorf("field %q must be given as <table> <field> or <table>.<field>", args[0])
	}
	return args[0][:i], args[0][i+1:], nil
}

func printFieldSet(cmd *cobra.Command, label string, set model.FieldSet) {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%s (%d):\n", label, set.Len())
	for _, f := range set.Sorted() {
		fmt.Fprintf(w, "  - %s\n", f.QualifiedName())
	}
}
