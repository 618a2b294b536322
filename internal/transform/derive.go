// Package transform turns raw FPU time series into display units, tiers and
// world-region aggregates. Every function is pure.
package transform

import (
	"sort"

	"github.com/sells-group/water-atlas/internal/model"
)

// cubicKilometer is the number of cubic meters in one km³.
const cubicKilometer = 1e9

func orZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// ToDerivedDatum converts one raw record to display units. Missing sector
// volumes count as zero. ConsumptionTotal is the sum of the five sectors and
// can differ slightly from the published total because of rounding.
func ToDerivedDatum(raw model.RawRegionDatum) model.RegionDatum {
	d := model.RegionDatum{
		FeatureID:                raw.FeatureID,
		StartYear:                raw.StartYear,
		EndYear:                  raw.EndYear,
		Population:               raw.Population,
		Availability:             raw.Availability,
		ConsumptionIrrigation:    orZero(raw.ConsIrr) * cubicKilometer,
		ConsumptionDomestic:      orZero(raw.ConsDom) * cubicKilometer,
		ConsumptionElectric:      orZero(raw.ConsElec) * cubicKilometer,
		ConsumptionLivestock:     orZero(raw.ConsLiv) * cubicKilometer,
		ConsumptionManufacturing: orZero(raw.ConsMfg) * cubicKilometer,
		Stress:                   raw.Stress,
		Shortage:                 raw.Shortage,
	}
	d.ConsumptionTotal = d.ConsumptionIrrigation +
		d.ConsumptionDomestic +
		d.ConsumptionElectric +
		d.ConsumptionLivestock +
		d.ConsumptionManufacturing
	return d
}

// GroupByStartYear buckets raw records by start year, ascending. When several
// records share a feature id within a bucket the last one wins.
func GroupByStartYear(records []model.RawRegionDatum) *model.Series[model.RawRegionDatum] {
	byStart := make(map[int]*model.TimeAggregate[model.RawRegionDatum])
	for _, r := range records {
		bucket, ok := byStart[r.StartYear]
		if !ok {
			bucket = &model.TimeAggregate[model.RawRegionDatum]{
				StartYear: r.StartYear,
				EndYear:   r.EndYear,
				Data:      make(map[int]model.RawRegionDatum),
			}
			byStart[r.StartYear] = bucket
		}
		bucket.Data[r.FeatureID] = r
	}

	starts := make([]int, 0, len(byStart))
	for s := range byStart {
		starts = append(starts, s)
	}
	sort.Ints(starts)

	series := &model.Series[model.RawRegionDatum]{
		Buckets: make([]model.TimeAggregate[model.RawRegionDatum], 0, len(starts)),
	}
	for _, s := range starts {
		series.Buckets = append(series.Buckets, *byStart[s])
	}
	return series
}

// ToDerivedSeries applies ToDerivedDatum to every record of every bucket.
func ToDerivedSeries(raw *model.Series[model.RawRegionDatum]) *model.Series[model.RegionDatum] {
	if raw == nil {
		return nil
	}
	out := &model.Series[model.RegionDatum]{
		Buckets: make([]model.TimeAggregate[model.RegionDatum], len(raw.Buckets)),
	}
	for i, b := range raw.Buckets {
		data := make(map[int]model.RegionDatum, len(b.Data))
		for id, r := range b.Data {
			data[id] = ToDerivedDatum(r)
		}
		out.Buckets[i] = model.TimeAggregate[model.RegionDatum]{
			StartYear: b.StartYear,
			EndYear:   b.EndYear,
			Data:      data,
		}
	}
	return out
}
