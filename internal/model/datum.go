package model

import (
	"fmt"
	"sort"
)

// RawRegionDatum is one FPU for one time period as published in the dataset
// files. Consumption volumes are in km³/year, shortage in m³/capita/year.
type RawRegionDatum struct {
	FeatureID    int      `json:"featureid"`
	StartYear    int      `json:"startYear"`
	EndYear      int      `json:"endYear"`
	Population   float64  `json:"pop"`
	Availability float64  `json:"availability"`
	ConsIrr      *float64 `json:"consIrr,omitempty"`
	ConsDom      *float64 `json:"consDom,omitempty"`
	ConsElec     *float64 `json:"consElec,omitempty"`
	ConsLiv      *float64 `json:"consLiv,omitempty"`
	ConsMfg      *float64 `json:"consMfg,omitempty"`
	ConsTotal    *float64 `json:"consTotal,omitempty"`
	Stress       *float64 `json:"stress,omitempty"`
	Shortage     *float64 `json:"short,omitempty"`
}

// RegionDatum is a RawRegionDatum converted to display units. Consumption
// volumes are in m³/year.
type RegionDatum struct {
	FeatureID                int      `json:"featureId"`
	StartYear                int      `json:"startYear"`
	EndYear                  int      `json:"endYear"`
	Population               float64  `json:"population"`
	Availability             float64  `json:"availability"`
	ConsumptionIrrigation    float64  `json:"consumptionIrrigation"`
	ConsumptionDomestic      float64  `json:"consumptionDomestic"`
	ConsumptionElectric      float64  `json:"consumptionElectric"`
	ConsumptionLivestock     float64  `json:"consumptionLivestock"`
	ConsumptionManufacturing float64  `json:"consumptionManufacturing"`
	ConsumptionTotal         float64  `json:"consumptionTotal"`
	Stress                   *float64 `json:"blueWaterStress,omitempty"`
	Shortage                 *float64 `json:"blueWaterShortage,omitempty"`
}

// YearRange is the closed interval of years a time bucket covers.
type YearRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Midpoint returns the center of the range.
func (r YearRange) Midpoint() float64 {
	return float64(r.Start+r.End) / 2
}

// Label renders the range the way it is shown in charts and exports.
func (r YearRange) Label() string {
	if r.Start == r.End {
		return fmt.Sprintf("%d", r.Start)
	}
	return fmt.Sprintf("%d-%d", r.Start, r.End)
}

// TimeAggregate holds one time bucket's worth of per-region values.
type TimeAggregate[T any] struct {
	StartYear int       `json:"startYear"`
	EndYear   int       `json:"endYear"`
	Data      map[int]T `json:"data"`
}

// Years returns the bucket's year range.
func (a TimeAggregate[T]) Years() YearRange {
	return YearRange{Start: a.StartYear, End: a.EndYear}
}

// RegionIDs returns the bucket's region ids in ascending order.
func (a TimeAggregate[T]) RegionIDs() []int {
	ids := make([]int, 0, len(a.Data))
	for id := range a.Data {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Series is a chronologically ordered sequence of time buckets. Series values
// are passed by pointer and never mutated after construction, so pointer
// identity doubles as a version.
type Series[T any] struct {
	Buckets []TimeAggregate[T] `json:"buckets"`
}

// Len returns the number of time buckets.
func (s *Series[T]) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Buckets)
}

// At returns the bucket at index i, or false when out of range.
func (s *Series[T]) At(i int) (TimeAggregate[T], bool) {
	if s == nil || i < 0 || i >= len(s.Buckets) {
		return TimeAggregate[T]{}, false
	}
	return s.Buckets[i], true
}

// YearRanges lists the year range of every bucket in order.
func (s *Series[T]) YearRanges() []YearRange {
	if s == nil {
		return nil
	}
	out := make([]YearRange, len(s.Buckets))
	for i, b := range s.Buckets {
		out[i] = b.Years()
	}
	return out
}

// Dataset is a fetched raw time series together with the scenario key it was
// cached under.
type Dataset struct {
	Key    string                  `json:"key"`
	Series *Series[RawRegionDatum] `json:"series"`
}

// Float returns a pointer to v. Used for optional numeric fields.
func Float(v float64) *float64 {
	return &v
}
