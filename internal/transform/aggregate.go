package transform

import (
	"go.uber.org/zap"

	"github.com/sells-group/water-atlas/internal/model"
)

// AggregateByWorldRegion rolls FPU data up into world regions and the global
// region, one output bucket per input bucket. regionMap maps FPU ids to world
// region ids; FPUs missing from it are logged and skipped.
func AggregateByWorldRegion(
	series *model.Series[model.RegionDatum],
	thresholds model.ThresholdSet,
	regionMap map[int]int,
) *model.Series[model.AggregateDatum] {
	if series == nil {
		return nil
	}

	out := &model.Series[model.AggregateDatum]{
		Buckets: make([]model.TimeAggregate[model.AggregateDatum], len(series.Buckets)),
	}
	unmapped := make(map[int]bool)

	for i, bucket := range series.Buckets {
		acc := map[int]*model.AggregateDatum{
			model.GlobalRegionID: newAggregate(model.GlobalRegionID, bucket),
		}

		for _, id := range bucket.RegionIDs() {
			d := bucket.Data[id]
			worldRegionID, ok := regionMap[id]
			if !ok {
				if !unmapped[id] {
					unmapped[id] = true
					zap.L().Warn("transform: FPU has no world region, skipping",
						zap.Int("feature_id", id),
					)
				}
				continue
			}

			target, ok := acc[worldRegionID]
			if !ok {
				target = newAggregate(worldRegionID, bucket)
				acc[worldRegionID] = target
			}

			stressTier := StressTier(d.Stress, thresholds.Stress)
			shortageTier := ShortageTier(d.Shortage, thresholds.Shortage)
			class := ScarcityClassOf(d.Stress, d.Shortage, thresholds.Stress, thresholds.Shortage)

			targets := []*model.AggregateDatum{target}
			if worldRegionID != model.GlobalRegionID {
				targets = append(targets, acc[model.GlobalRegionID])
			}
			for _, a := range targets {
				accumulate(a, d)
				a.Stress.Add(stressTier, d.Population)
				a.Shortage.Add(shortageTier, d.Population)
				a.Scarcity.Add(class, d.Population)
			}
		}

		data := make(map[int]model.AggregateDatum, len(acc))
		for id, a := range acc {
			data[id] = *a
		}
		out.Buckets[i] = model.TimeAggregate[model.AggregateDatum]{
			StartYear: bucket.StartYear,
			EndYear:   bucket.EndYear,
			Data:      data,
		}
	}

	return out
}

func newAggregate(worldRegionID int, bucket model.TimeAggregate[model.RegionDatum]) *model.AggregateDatum {
	return &model.AggregateDatum{
		WorldRegionID: worldRegionID,
		StartYear:     bucket.StartYear,
		EndYear:       bucket.EndYear,
	}
}

func accumulate(a *model.AggregateDatum, d model.RegionDatum) {
	a.Population += d.Population
	a.Availability += d.Availability
	a.ConsumptionIrrigation += d.ConsumptionIrrigation
	a.ConsumptionDomestic += d.ConsumptionDomestic
	a.ConsumptionElectric += d.ConsumptionElectric
	a.ConsumptionLivestock += d.ConsumptionLivestock
	a.ConsumptionManufacturing += d.ConsumptionManufacturing
	a.ConsumptionTotal += d.ConsumptionTotal
}

// WorldRegionSeries extracts one world region's aggregates in time order.
// Buckets where the region has no data are skipped.
func WorldRegionSeries(series *model.Series[model.AggregateDatum], worldRegionID int) []model.AggregateDatum {
	if series == nil {
		return nil
	}
	out := make([]model.AggregateDatum, 0, len(series.Buckets))
	for _, b := range series.Buckets {
		if d, ok := b.Data[worldRegionID]; ok {
			out = append(out, d)
		}
	}
	return out
}

// RegionSeries extracts one FPU's data in time order.
func RegionSeries(series *model.Series[model.RegionDatum], featureID int) []model.RegionDatum {
	if series == nil {
		return nil
	}
	out := make([]model.RegionDatum, 0, len(series.Buckets))
	for _, b := range series.Buckets {
		if d, ok := b.Data[featureID]; ok {
			out = append(out, d)
		}
	}
	return out
}
