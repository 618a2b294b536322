package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sells-group/water-atlas/internal/catalog"
)

var catalogHistoricalOnly bool

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List the published datasets",
	RunE: func(cmd *cobra.Command, _ []string) error {
		entries := catalog.Default().Entries
		if catalogHistoricalOnly {
			entries = historicalEntries(entries)
		}
		if len(entries) == 0 {
			fmt.Fprintln(os.Stderr, "No datasets found.")
			return nil
		}
		formatCatalog(cmd.OutOrStdout(), entries)
		return nil
	},
}

func historicalEntries(entries []catalog.Entry) []catalog.Entry {
	var out []catalog.Entry
	for _, e := range entries {
		if e.ClimateExperiment == catalog.ExperimentHistorical {
			out = append(out, e)
		}
	}
	return out
}

func formatCatalog(out io.Writer, entries []catalog.Entry) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "CLIMATE\tIMPACT\tSCALE\tEXPERIMENT\tPOPULATION\tCO2\tFILE")
	_, _ = fmt.Fprintln(w, "-------\t------\t-----\t----------\t----------\t---\t----")
	for _, e := range entries {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			e.ClimateModel,
			e.ImpactModel,
			e.TimeScale,
			e.ClimateExperiment,
			e.Population,
			e.CO2Forcing,
			e.Filename,
		)
	}
	_ = w.Flush()
}

func init() {
	catalogCmd.Flags().BoolVar(&catalogHistoricalOnly, "historical", false, "only list historical datasets")
	rootCmd.AddCommand(catalogCmd)
}
