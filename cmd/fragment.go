package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/sells-group/water-atlas/internal/catalog"
	"github.com/sells-group/water-atlas/internal/state"
	"github.com/sells-group/water-atlas/internal/urlstate"
)

var fragmentCmd = &cobra.Command{
	Use:   "fragment <fragment>",
	Short: "Validate a shared link fragment and print its canonical form",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		thresholds, err := cfg.Thresholds.Set()
		if err != nil {
			return err
		}
		r := state.NewReducer(catalog.Default())
		s, errs := urlstate.Restore(r, state.New(state.DefaultSelections(), thresholds), args[0])
		formatFragment(cmd.OutOrStdout(), s, errs)
		return nil
	},
}

func formatFragment(out io.Writer, s *state.State, errs []*urlstate.FieldError) {
	sel := s.Selections
	_, _ = fmt.Fprintf(out, "canonical: #%s\n", urlstate.Encode(s))
	_, _ = fmt.Fprintf(out, "dataset:   %s\n", sel.HistoricalKey())
	_, _ = fmt.Fprintf(out, "showing:   %s, time index %d\n", sel.DataType, sel.TimeIndex)
	for _, e := range errs {
		_, _ = fmt.Fprintf(out, "dropped:   %s=%q (%v)\n", e.Key, e.Value, e.Err)
	}
}

func init() {
	rootCmd.AddCommand(fragmentCmd)
}
