package transform

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/water-atlas/internal/model"
)

var f = model.Float

func TestToDerivedDatum(t *testing.T) {
	t.Parallel()

	raw := model.RawRegionDatum{
		FeatureID:    12,
		StartYear:    1981,
		EndYear:      1990,
		Availability: 1000,
		ConsIrr:      f(0.002),
		ConsDom:      f(0.001),
		Population:   500000,
		Stress:       f(0.3),
		Shortage:     f(450),
	}

	d := ToDerivedDatum(raw)
	assert.InDelta(t, 2_000_000.0, d.ConsumptionIrrigation, 1e-6)
	assert.InDelta(t, 1_000_000.0, d.ConsumptionDomestic, 1e-6)
	assert.InDelta(t, 3_000_000.0, d.ConsumptionTotal, 1e-6)
	assert.Zero(t, d.ConsumptionElectric)
	assert.Zero(t, d.ConsumptionLivestock)
	assert.Zero(t, d.ConsumptionManufacturing)
	assert.InDelta(t, 1000.0, d.Availability, 1e-9)
	assert.Equal(t, 12, d.FeatureID)
	require.NotNil(t, d.Stress)
	assert.InDelta(t, 0.3, *d.Stress, 1e-9)
}

func TestToDerivedDatum_IgnoresPublishedTotal(t *testing.T) {
	t.Parallel()

	d := ToDerivedDatum(model.RawRegionDatum{ConsIrr: f(0.001), ConsTotal: f(0.0011)})
	assert.InDelta(t, 1_000_000.0, d.ConsumptionTotal, 1e-6)
}

func TestGroupByStartYear(t *testing.T) {
	t.Parallel()

	records := []model.RawRegionDatum{
		{FeatureID: 1, StartYear: 1991, EndYear: 2000},
		{FeatureID: 1, StartYear: 1971, EndYear: 1980},
		{FeatureID: 2, StartYear: 1991, EndYear: 2000},
		{FeatureID: 2, StartYear: 1981, EndYear: 1990},
	}

	s := GroupByStartYear(records)
	require.Equal(t, 3, s.Len())
	assert.Equal(t, []model.YearRange{{Start: 1971, End: 1980}, {Start: 1981, End: 1990}, {Start: 1991, End: 2000}}, s.YearRanges())
	assert.Len(t, s.Buckets[2].Data, 2)

	empty := GroupByStartYear(nil)
	assert.Equal(t, 0, empty.Len())
}

func TestToDerivedSeries(t *testing.T) {
	t.Parallel()

	raw := GroupByStartYear([]model.RawRegionDatum{{FeatureID: 3, StartYear: 2000, EndYear: 2000, ConsMfg: f(1)}})
	derived := ToDerivedSeries(raw)
	require.Equal(t, 1, derived.Len())
	assert.InDelta(t, 1e9, derived.Buckets[0].Data[3].ConsumptionManufacturing, 1e-3)
	assert.Nil(t, ToDerivedSeries(nil))
}

func TestStressTier(t *testing.T) {
	t.Parallel()

	th := model.Thresholds{0.2, 0.4, 1}
	tests := []struct {
		name  string
		value *float64
		want  model.Tier
	}{
		{"missing", nil, model.TierHigh},
		{"at high cut", f(1), model.TierHigh},
		{"moderate", f(0.5), model.TierModerate},
		{"at moderate cut", f(0.4), model.TierModerate},
		{"low", f(0.2), model.TierLow},
		{"none", f(0.1), model.TierNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, StressTier(tt.value, th))
		})
	}
}

func TestShortageTier(t *testing.T) {
	t.Parallel()

	th := model.Thresholds{500, 1000, 1700}
	tests := []struct {
		name  string
		value *float64
		want  model.Tier
	}{
		{"missing", nil, model.TierNone},
		{"at high cut", f(500), model.TierHigh},
		{"moderate", f(999), model.TierModerate},
		{"at low cut", f(1700), model.TierLow},
		{"none", f(1701), model.TierNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ShortageTier(tt.value, th))
		})
	}
}

func TestScarcityClassOf(t *testing.T) {
	t.Parallel()

	stressT := model.Thresholds{0.2, 0.4, 1}
	shortT := model.Thresholds{500, 1000, 1700}
	tests := []struct {
		name     string
		stress   *float64
		shortage *float64
		want     model.ScarcityClass
	}{
		{"both", f(0.5), f(400), model.ScarcityStressAndShortage},
		{"shortage only", f(0.1), f(1700), model.ScarcityShortageOnly},
		{"stress only", f(0.2), f(5000), model.ScarcityStressOnly},
		{"neither", f(0.1), f(5000), model.ScarcityNone},
		{"missing stress counts as stress", nil, f(5000), model.ScarcityStressOnly},
		{"missing shortage is not shortage", f(0.1), nil, model.ScarcityNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ScarcityClassOf(tt.stress, tt.shortage, stressT, shortT))
		})
	}
}

func TestScarcitySelector(t *testing.T) {
	t.Parallel()

	th := model.DefaultThresholds()
	th.Scarcity = model.Thresholds{10, 20, 30}
	score := ScarcitySelector(th.Scarcity, th.Stress, th.Shortage)

	assert.InDelta(t, 30.1, score(model.RegionDatum{Stress: f(2), Shortage: f(100)}), 1e-9)
	assert.InDelta(t, 20.1, score(model.RegionDatum{Stress: f(0.01), Shortage: f(100)}), 1e-9)
	assert.InDelta(t, 10.1, score(model.RegionDatum{Stress: f(2), Shortage: f(9000)}), 1e-9)
	assert.InDelta(t, 9.9, score(model.RegionDatum{Stress: f(0.01), Shortage: f(9000)}), 1e-9)
}

func TestValueForAndColorBucket(t *testing.T) {
	t.Parallel()

	th := model.DefaultThresholds()
	d := model.RegionDatum{Stress: f(0.5), Shortage: f(800)}

	v, ok := ValueFor(model.DataTypeStress, th)(d)
	require.True(t, ok)
	assert.InDelta(t, 0.5, v, 1e-9)
	assert.Equal(t, 2, ColorBucket(model.DataTypeStress, v, th.Stress))

	v, ok = ValueFor(model.DataTypeShortage, th)(d)
	require.True(t, ok)
	assert.Equal(t, 2, ColorBucket(model.DataTypeShortage, v, th.Shortage))

	v, ok = ValueFor(model.DataTypeScarcity, th)(d)
	require.True(t, ok)
	assert.Equal(t, 3, ColorBucket(model.DataTypeScarcity, v, th.Scarcity))

	_, ok = ValueFor(model.DataTypeStress, th)(model.RegionDatum{})
	assert.False(t, ok)

	assert.Panics(t, func() { ValueFor(model.DataType(0), th) })
}

func TestAggregateByWorldRegion(t *testing.T) {
	t.Parallel()

	raw := GroupByStartYear([]model.RawRegionDatum{
		{FeatureID: 1, StartYear: 1981, EndYear: 1990, Population: 100, Stress: f(1.5), Shortage: f(400), ConsIrr: f(1)},
		{FeatureID: 2, StartYear: 1981, EndYear: 1990, Population: 50, Stress: f(0.1), Shortage: f(5000)},
		{FeatureID: 3, StartYear: 1981, EndYear: 1990, Population: 25, Shortage: f(1200)},
		{FeatureID: 99, StartYear: 1981, EndYear: 1990, Population: 1000},
		{FeatureID: 1, StartYear: 1991, EndYear: 2000, Population: 110, Stress: f(0.3), Shortage: f(900)},
	})
	regionMap := map[int]int{1: 10, 2: 10, 3: 20}

	agg := AggregateByWorldRegion(ToDerivedSeries(raw), model.DefaultThresholds(), regionMap)
	require.Equal(t, 2, agg.Len())

	first := agg.Buckets[0]
	assert.Equal(t, 1981, first.StartYear)
	require.Contains(t, first.Data, 10)
	require.Contains(t, first.Data, 20)

	r10 := first.Data[10]
	assert.InDelta(t, 150.0, r10.Population, 1e-9)
	assert.InDelta(t, 1e9, r10.ConsumptionIrrigation, 1e-3)
	assert.InDelta(t, 100.0, r10.Stress.High, 1e-9)
	assert.InDelta(t, 50.0, r10.Stress.None, 1e-9)
	assert.InDelta(t, 100.0, r10.Shortage.High, 1e-9)
	assert.InDelta(t, 100.0, r10.Scarcity.StressAndShortage, 1e-9)
	assert.InDelta(t, 50.0, r10.Scarcity.None, 1e-9)

	// FPU 3 has no stress value: worst stress tier and counted as stressed.
	r20 := first.Data[20]
	assert.InDelta(t, 25.0, r20.Stress.High, 1e-9)
	assert.InDelta(t, 25.0, r20.Shortage.Low, 1e-9)
	assert.InDelta(t, 25.0, r20.Scarcity.StressAndShortage, 1e-9)

	// Global excludes the unmapped FPU 99.
	global := first.Data[model.GlobalRegionID]
	assert.InDelta(t, 175.0, global.Population, 1e-9)
	assert.Equal(t, model.GlobalRegionID, global.WorldRegionID)

	second := agg.Buckets[1].Data[10]
	assert.InDelta(t, 110.0, second.Stress.Low, 1e-9)
	assert.InDelta(t, 110.0, second.Shortage.Moderate, 1e-9)

	assert.Nil(t, AggregateByWorldRegion(nil, model.DefaultThresholds(), regionMap))
}

func TestAggregateTierPopulationsSumToTotal(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(1, 2))
	thresholdSets := []model.ThresholdSet{
		model.DefaultThresholds(),
		{
			Stress:   model.Thresholds{0.05, 0.5, 0.8},
			Shortage: model.Thresholds{100, 2000, 3000},
			Scarcity: model.Thresholds{0, 1, 2},
		},
	}

	var records []model.RawRegionDatum
	regionMap := make(map[int]int)
	for year := 1900; year < 1950; year += 10 {
		for id := 1; id <= 60; id++ {
			records = append(records, model.RawRegionDatum{
				FeatureID:  id,
				StartYear:  year,
				EndYear:    year + 9,
				Population: float64(rng.IntN(1_000_000)),
				Stress:     f(rng.Float64() * 2),
				Shortage:   f(rng.Float64() * 4000),
			})
			regionMap[id] = 1 + id%5
		}
	}
	derived := ToDerivedSeries(GroupByStartYear(records))

	for _, th := range thresholdSets {
		agg := AggregateByWorldRegion(derived, th, regionMap)
		for _, b := range agg.Buckets {
			for id, d := range b.Data {
				assert.InDelta(t, d.Population, d.Stress.Total(), 1e-6, "stress tiers, region %d", id)
				assert.InDelta(t, d.Population, d.Shortage.Total(), 1e-6, "shortage tiers, region %d", id)
				assert.InDelta(t, d.Population, d.Scarcity.Total(), 1e-6, "scarcity classes, region %d", id)
			}
		}
	}
}

func TestAggregateFPUMappedToGlobalNotDoubleCounted(t *testing.T) {
	t.Parallel()

	derived := ToDerivedSeries(GroupByStartYear([]model.RawRegionDatum{
		{FeatureID: 1, StartYear: 2000, EndYear: 2000, Population: 10, Stress: f(0), Shortage: f(9999)},
	}))
	agg := AggregateByWorldRegion(derived, model.DefaultThresholds(), map[int]int{1: model.GlobalRegionID})
	assert.InDelta(t, 10.0, agg.Buckets[0].Data[model.GlobalRegionID].Population, 1e-9)
}

func TestSeriesExtraction(t *testing.T) {
	t.Parallel()

	derived := ToDerivedSeries(GroupByStartYear([]model.RawRegionDatum{
		{FeatureID: 1, StartYear: 1990, EndYear: 1990, Population: 1},
		{FeatureID: 1, StartYear: 1991, EndYear: 1991, Population: 2},
		{FeatureID: 2, StartYear: 1991, EndYear: 1991, Population: 3},
	}))
	got := RegionSeries(derived, 1)
	require.Len(t, got, 2)
	assert.InDelta(t, 2.0, got[1].Population, 1e-9)
	assert.Len(t, RegionSeries(derived, 2), 1)

	agg := AggregateByWorldRegion(derived, model.DefaultThresholds(), map[int]int{1: 5, 2: 6})
	assert.Len(t, WorldRegionSeries(agg, 6), 1)
	assert.Len(t, WorldRegionSeries(agg, model.GlobalRegionID), 2)
	assert.Nil(t, WorldRegionSeries(nil, 0))
}
