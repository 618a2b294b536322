package selectors

import (
	"github.com/sells-group/water-atlas/internal/boundaries"
	"github.com/sells-group/water-atlas/internal/model"
	"github.com/sells-group/water-atlas/internal/state"
	"github.com/sells-group/water-atlas/internal/transform"
)

// AggregateFunc rolls FPU data up into world regions.
type AggregateFunc func(*model.Series[model.RegionDatum], model.ThresholdSet, map[int]int) *model.Series[model.AggregateDatum]

// MapValue is one FPU's value on the choropleth map and its color bucket.
type MapValue struct {
	Value float64 `json:"value"`
	Color int     `json:"color"`
}

// RegionSummary is a world region's aggregate for one bucket, with display
// attributes.
type RegionSummary struct {
	model.AggregateDatum
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// GlobalName labels the global roll-up.
const GlobalName = "Global"

type mapKey struct {
	series     *model.Series[model.RegionDatum]
	index      int
	dataType   model.DataType
	thresholds *model.ThresholdSet
}

type gridKey struct {
	series   *model.Series[model.RegionDatum]
	index    int
	variable state.GridVariable
}

// Selectors holds the memoized derivations for one session.
type Selectors struct {
	boundaries *boundaries.Boundaries
	aggregate  AggregateFunc

	derived           func(*model.Series[model.RawRegionDatum]) *model.Series[model.RegionDatum]
	aggregates        func(*model.Series[model.RegionDatum], *model.ThresholdSet, *boundaries.Boundaries) *model.Series[model.AggregateDatum]
	mapValues         func(mapKey) map[int]MapValue
	gridValues        func(gridKey) map[int]float64
	worldRegionSeries func(*model.Series[model.AggregateDatum], int) []model.AggregateDatum
	waterRegionSeries func(*model.Series[model.RegionDatum], int) []model.RegionDatum
	summaries         func(*model.Series[model.AggregateDatum], int) []RegionSummary
	yearLabels        func(*model.Series[model.RegionDatum]) []string
}

// Option configures Selectors.
type Option func(*Selectors)

// WithAggregateFunc replaces the world-region roll-up.
func WithAggregateFunc(fn AggregateFunc) Option {
	return func(x *Selectors) { x.aggregate = fn }
}

// New creates the selector set over b.
func New(b *boundaries.Boundaries, opts ...Option) *Selectors {
	x := &Selectors{boundaries: b, aggregate: transform.AggregateByWorldRegion}
	for _, o := range opts {
		o(x)
	}

	x.derived = Memo1(transform.ToDerivedSeries)

	x.aggregates = Memo3(func(series *model.Series[model.RegionDatum], t *model.ThresholdSet, b *boundaries.Boundaries) *model.Series[model.AggregateDatum] {
		if series == nil {
			return nil
		}
		var regionMap map[int]int
		if b != nil {
			regionMap = b.RegionMap
		}
		return x.aggregate(series, *t, regionMap)
	})

	x.mapValues = Memo1(func(k mapKey) map[int]MapValue {
		bucket, ok := k.series.At(k.index)
		if !ok {
			return nil
		}
		value := transform.ValueFor(k.dataType, *k.thresholds)
		t := k.thresholds.For(k.dataType)
		out := make(map[int]MapValue, len(bucket.Data))
		for id, d := range bucket.Data {
			v, ok := value(d)
			if !ok {
				continue
			}
			out[id] = MapValue{Value: v, Color: transform.ColorBucket(k.dataType, v, t)}
		}
		return out
	})

	x.gridValues = Memo1(func(k gridKey) map[int]float64 {
		bucket, ok := k.series.At(k.index)
		if !ok {
			return nil
		}
		out := make(map[int]float64, len(bucket.Data))
		for id, d := range bucket.Data {
			out[id] = gridValue(k.variable, d)
		}
		return out
	})

	x.worldRegionSeries = Memo2(transform.WorldRegionSeries)
	x.waterRegionSeries = Memo2(transform.RegionSeries)

	x.summaries = Memo2(func(agg *model.Series[model.AggregateDatum], index int) []RegionSummary {
		bucket, ok := agg.At(index)
		if !ok {
			return nil
		}
		out := make([]RegionSummary, 0, len(bucket.Data))
		for _, id := range bucket.RegionIDs() {
			rs := RegionSummary{AggregateDatum: bucket.Data[id], Name: GlobalName}
			if id != model.GlobalRegionID && x.boundaries != nil {
				if wr, ok := x.boundaries.WorldRegion(id); ok {
					rs.Name, rs.Color = wr.Name, wr.Color
				}
			}
			out = append(out, rs)
		}
		return out
	})

	x.yearLabels = Memo1(func(series *model.Series[model.RegionDatum]) []string {
		ranges := series.YearRanges()
		out := make([]string, len(ranges))
		for i, r := range ranges {
			out[i] = r.Label()
		}
		return out
	})

	return x
}

// Boundaries returns the region geometry the selectors aggregate over.
func (x *Selectors) Boundaries() *boundaries.Boundaries {
	return x.boundaries
}

// Dataset returns the raw dataset for the current selections, or nil while
// it is not loaded.
func (x *Selectors) Dataset(s *state.State) *model.Dataset {
	d, ok := s.CurrentDataset()
	if !ok {
		return nil
	}
	return d
}

// Derived returns the current dataset converted to m³ with summed
// consumption.
func (x *Selectors) Derived(s *state.State) *model.Series[model.RegionDatum] {
	d := x.Dataset(s)
	if d == nil {
		return nil
	}
	return x.derived(d.Series)
}

// Aggregates returns the world-region roll-up of the current dataset.
func (x *Selectors) Aggregates(s *state.State) *model.Series[model.AggregateDatum] {
	return x.aggregates(x.Derived(s), s.Thresholds, x.boundaries)
}

// SelectedBucket returns the FPU data at the selected time index.
func (x *Selectors) SelectedBucket(s *state.State) (model.TimeAggregate[model.RegionDatum], bool) {
	return x.Derived(s).At(s.Selections.TimeIndex)
}

// MapValues returns the selected data type's value and color bucket for
// every FPU in the selected bucket. FPUs with a missing value are omitted.
func (x *Selectors) MapValues(s *state.State) map[int]MapValue {
	return x.mapValues(mapKey{
		series:     x.Derived(s),
		index:      s.Selections.TimeIndex,
		dataType:   s.Selections.DataType,
		thresholds: s.Thresholds,
	})
}

// GridValues returns the selected grid variable for every FPU in the
// selected bucket.
func (x *Selectors) GridValues(s *state.State) map[int]float64 {
	return x.gridValues(gridKey{
		series:   x.Derived(s),
		index:    s.Selections.TimeIndex,
		variable: s.Selections.GridVariable,
	})
}

// WorldRegionSeries is the selected world region's aggregate over time.
func (x *Selectors) WorldRegionSeries(s *state.State) []model.AggregateDatum {
	return x.worldRegionSeries(x.Aggregates(s), s.Selections.WorldRegionID)
}

// WaterRegionSeries is the selected FPU's data over time, nil without a
// selection.
func (x *Selectors) WaterRegionSeries(s *state.State) []model.RegionDatum {
	if !s.Selections.HasWaterRegion() {
		return nil
	}
	return x.waterRegionSeries(x.Derived(s), s.Selections.WaterRegionID)
}

// SelectedWaterRegion returns the selected FPU's datum in the selected bucket.
func (x *Selectors) SelectedWaterRegion(s *state.State) (model.RegionDatum, bool) {
	if !s.Selections.HasWaterRegion() {
		return model.RegionDatum{}, false
	}
	bucket, ok := x.SelectedBucket(s)
	if !ok {
		return model.RegionDatum{}, false
	}
	d, ok := bucket.Data[s.Selections.WaterRegionID]
	return d, ok
}

// WorldRegionSummaries lists every world region's aggregate in the selected
// bucket, global first.
func (x *Selectors) WorldRegionSummaries(s *state.State) []RegionSummary {
	return x.summaries(x.Aggregates(s), s.Selections.TimeIndex)
}

// Thresholds returns the thresholds of the selected data type.
func (x *Selectors) Thresholds(s *state.State) model.Thresholds {
	return s.Thresholds.For(s.Selections.DataType)
}

// YearLabels labels every bucket of the current dataset.
func (x *Selectors) YearLabels(s *state.State) []string {
	return x.yearLabels(x.Derived(s))
}

func gridValue(v state.GridVariable, d model.RegionDatum) float64 {
	switch v {
	case state.GridPopulation:
		return d.Population
	case state.GridAvailability:
		return d.Availability
	case state.GridConsumption:
		return d.ConsumptionTotal
	}
	return 0
}
