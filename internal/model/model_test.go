package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDataTypeParse(t *testing.T) {
	t.Parallel()

	for _, d := range DataTypes {
		t.Run(d.String(), func(t *testing.T) {
			t.Parallel()
			got, err := ParseDataType(d.String())
			require.NoError(t, err)
			assert.Equal(t, d, got)
		})
	}

	_, err := ParseDataType("kcal")
	assert.Error(t, err)
	assert.False(t, DataType(0).Valid())
}

func TestDataTypeJSON(t *testing.T) {
	t.Parallel()

	b, err := json.Marshal(map[string]DataType{"dt": DataTypeShortage})
	require.NoError(t, err)
	assert.JSONEq(t, `{"dt":"shortage"}`, string(b))

	var out struct {
		DT DataType `json:"dt"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"dt":"scarcity"}`), &out))
	assert.Equal(t, DataTypeScarcity, out.DT)
}

func TestThresholdsValidate(t *testing.T) {
	t.Parallel()

	assert.NoError(t, Thresholds{0.2, 0.4, 1}.Validate())
	assert.Error(t, Thresholds{0.4, 0.2, 1}.Validate())
	assert.Error(t, Thresholds{1, 1, 1}.Validate())
}

func TestThresholdSetForAndWith(t *testing.T) {
	t.Parallel()

	set := DefaultThresholds()
	assert.Equal(t, Thresholds{500, 1000, 1700}, set.For(DataTypeShortage))

	updated := set.With(DataTypeStress, Thresholds{0.1, 0.3, 0.9})
	assert.Equal(t, Thresholds{0.1, 0.3, 0.9}, updated.Stress)
	assert.Equal(t, Thresholds{0.2, 0.4, 1}, set.Stress, "original must not change")
	assert.Panics(t, func() { set.For(DataType(9)) })
}

func TestYearRange(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 1905.0, YearRange{Start: 1900, End: 1910}.Midpoint(), 1e-9)
	assert.Equal(t, "1981-1990", YearRange{Start: 1981, End: 1990}.Label())
	assert.Equal(t, "1995", YearRange{Start: 1995, End: 1995}.Label())
}

func TestSeriesAccessors(t *testing.T) {
	t.Parallel()

	s := &Series[int]{Buckets: []TimeAggregate[int]{
		{StartYear: 1900, EndYear: 1909, Data: map[int]int{3: 1, 1: 2}},
		{StartYear: 1910, EndYear: 1919, Data: map[int]int{}},
	}}

	assert.Equal(t, 2, s.Len())
	b, ok := s.At(0)
	require.True(t, ok)
	assert.Equal(t, []int{1, 3}, b.RegionIDs())

	_, ok = s.At(2)
	assert.False(t, ok)

	var nilSeries *Series[int]
	assert.Equal(t, 0, nilSeries.Len())
	assert.Nil(t, nilSeries.YearRanges())
	assert.Equal(t, []YearRange{{1900, 1909}, {1910, 1919}}, s.YearRanges())
}

func TestPopulationBreakdowns(t *testing.T) {
	t.Parallel()

	var tiers TierPopulations
	tiers.Add(TierHigh, 10)
	tiers.Add(TierNone, 5)
	tiers.Add(TierHigh, 1)
	assert.InDelta(t, 11.0, tiers.High, 1e-9)
	assert.InDelta(t, 16.0, tiers.Total(), 1e-9)

	var sc ScarcityPopulations
	sc.Add(ScarcityStressAndShortage, 3)
	sc.Add(ScarcityShortageOnly, 4)
	assert.InDelta(t, 7.0, sc.Total(), 1e-9)
	assert.Equal(t, "stress-and-shortage", ScarcityStressAndShortage.String())
	assert.Equal(t, "moderate", TierModerate.String())
}
