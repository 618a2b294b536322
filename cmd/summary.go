package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sells-group/water-atlas/internal/atlas"
	"github.com/sells-group/water-atlas/internal/boundaries"
	"github.com/sells-group/water-atlas/internal/catalog"
	"github.com/sells-group/water-atlas/internal/model"
	"github.com/sells-group/water-atlas/internal/selectors"
	"github.com/sells-group/water-atlas/internal/transform"
	"github.com/sells-group/water-atlas/internal/waterdata"
)

var (
	summaryClimate    string
	summaryImpact     string
	summaryTimeScale  string
	summaryExperiment string
	summaryPopulation string
	summaryIndex      int
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print population under stress and shortage per world region",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		climate, err := catalog.ParseClimateModel(summaryClimate)
		if err != nil {
			return err
		}
		impact, err := catalog.ParseImpactModel(summaryImpact)
		if err != nil {
			return err
		}
		ts, err := catalog.ParseTimeScale(summaryTimeScale)
		if err != nil {
			return err
		}
		thresholds, err := cfg.Thresholds.Set()
		if err != nil {
			return err
		}

		f := atlas.NewFetcher(cfg.Fetch)
		loader := waterdata.NewLoader(f, catalog.Default(), cfg.Data.BaseURL)

		var (
			b *boundaries.Boundaries
			d *model.Dataset
		)
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			b, err = boundaries.Fetch(gctx, f, atlas.BoundarySource(cfg.Data))
			return err
		})
		g.Go(func() error {
			var err error
			if summaryExperiment == catalog.ExperimentHistorical {
				d, err = loader.FetchHistoricalData(gctx, climate, impact, ts)
			} else {
				d, err = loader.FetchFutureData(gctx, catalog.FutureScenario{
					ClimateModel: climate,
					ImpactModel:  impact,
					TimeScale:    ts,
					Experiment:   summaryExperiment,
					Population:   summaryPopulation,
				})
			}
			return err
		})
		if err := g.Wait(); err != nil {
			return eris.Wrap(err, "summary: load data")
		}

		agg := transform.AggregateByWorldRegion(transform.ToDerivedSeries(d.Series), thresholds, b.RegionMap)
		formatSummary(cmd.OutOrStdout(), agg, b, summaryIndex)
		return nil
	},
}

// formatSummary prints one row per world region and bucket, global first.
// A negative index prints every bucket.
func formatSummary(out io.Writer, series *model.Series[model.AggregateDatum], b *boundaries.Boundaries, index int) {
	p := message.NewPrinter(language.English)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	_, _ = fmt.Fprintln(w, "PERIOD\tREGION\tPOPULATION\tHIGH STRESS\tHIGH SHORTAGE\tSTRESS+SHORTAGE\t")

	regions := []int{model.GlobalRegionID}
	for _, wr := range b.WorldRegions {
		regions = append(regions, wr.ID)
	}

	for i, bucket := range series.Buckets {
		if index >= 0 && i != index {
			continue
		}
		label := bucket.Years().Label()
		for _, id := range regions {
			a, ok := bucket.Data[id]
			if !ok {
				continue
			}
			name := selectors.GlobalName
			if wr, ok := b.WorldRegion(id); ok {
				name = wr.Name
			}
			_, _ = p.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%d\t\n",
				label,
				name,
				int64(a.Population),
				int64(a.Stress.High),
				int64(a.Shortage.High),
				int64(a.Scarcity.StressAndShortage),
			)
		}
	}
	_ = w.Flush()
}

func init() {
	f := summaryCmd.Flags()
	f.StringVar(&summaryClimate, "climate", string(catalog.ClimateWATCH), "climate model")
	f.StringVar(&summaryImpact, "impact", string(catalog.ImpactWaterGAP), "impact model")
	f.StringVar(&summaryTimeScale, "timescale", string(catalog.TimeScaleDecadal), "decadal or annual")
	f.StringVar(&summaryExperiment, "experiment", catalog.ExperimentHistorical, "hist, rcp4p5 or rcp8p5")
	f.StringVar(&summaryPopulation, "population", "ssp2", "population scenario for projections")
	f.IntVar(&summaryIndex, "index", -1, "only print this time bucket")
	rootCmd.AddCommand(summaryCmd)
}
