package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newSeedCommand creates the seed command.
func (a *App) newSeedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load CSV seed files into the source tables",
		Long: `Load each source table from "<seeds_dir>/<physical_name>.csv". Tables
without a matching file are skipped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			eng, err := a.newEngine()
			if err != nil {
				return err
			}
			defer func() { _ = eng.Close() }()

			if err := eng.LoadSeeds(cmd.Context(), a.Pipeline); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Seeds loaded")
			return nil
		},
	}
}
