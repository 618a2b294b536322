package transform

import (
	"github.com/rotisserie/eris"

	"github.com/sells-group/water-atlas/internal/model"
)

// StressTier buckets a stress ratio. Higher is worse and a missing value is
// treated as the worst tier.
func StressTier(stress *float64, t model.Thresholds) model.Tier {
	switch {
	case stress == nil || *stress >= t[2]:
		return model.TierHigh
	case *stress >= t[1]:
		return model.TierModerate
	case *stress >= t[0]:
		return model.TierLow
	default:
		return model.TierNone
	}
}

// ShortageTier buckets per-capita availability. Lower is worse; a missing
// value matches no tier and counts as none.
func ShortageTier(shortage *float64, t model.Thresholds) model.Tier {
	switch {
	case shortage == nil:
		return model.TierNone
	case *shortage <= t[0]:
		return model.TierHigh
	case *shortage <= t[1]:
		return model.TierModerate
	case *shortage <= t[2]:
		return model.TierLow
	default:
		return model.TierNone
	}
}

// ScarcityClassOf combines stress and shortage. Missing stress counts as
// stress while missing shortage does not count as shortage.
func ScarcityClassOf(stress, shortage *float64, stressT, shortageT model.Thresholds) model.ScarcityClass {
	hasStress := stress == nil || *stress >= stressT[0]
	hasShortage := shortage != nil && *shortage <= shortageT[2]

	switch {
	case hasStress && hasShortage:
		return model.ScarcityStressAndShortage
	case hasShortage:
		return model.ScarcityShortageOnly
	case hasStress:
		return model.ScarcityStressOnly
	default:
		return model.ScarcityNone
	}
}

// ScarcitySelector returns a scoring function that places each scarcity class
// just beside a scarcity threshold, so the shared threshold color scale can
// color scarcity like any other data type.
func ScarcitySelector(scarcity, stress, shortage model.Thresholds) func(model.RegionDatum) float64 {
	return func(d model.RegionDatum) float64 {
		switch ScarcityClassOf(d.Stress, d.Shortage, stress, shortage) {
		case model.ScarcityStressAndShortage:
			return scarcity[2] + 0.1
		case model.ScarcityShortageOnly:
			return scarcity[1] + 0.1
		case model.ScarcityStressOnly:
			return scarcity[0] + 0.1
		default:
			return scarcity[0] - 0.1
		}
	}
}

// Accessor returns a datum's value for a data type, false when missing.
type Accessor func(model.RegionDatum) (float64, bool)

// ValueFor returns the accessor used for map coloring of dataType.
func ValueFor(dataType model.DataType, thresholds model.ThresholdSet) Accessor {
	switch dataType {
	case model.DataTypeStress:
		return func(d model.RegionDatum) (float64, bool) {
			if d.Stress == nil {
				return 0, false
			}
			return *d.Stress, true
		}
	case model.DataTypeShortage:
		return func(d model.RegionDatum) (float64, bool) {
			if d.Shortage == nil {
				return 0, false
			}
			return *d.Shortage, true
		}
	case model.DataTypeScarcity:
		score := ScarcitySelector(thresholds.Scarcity, thresholds.Stress, thresholds.Shortage)
		return func(d model.RegionDatum) (float64, bool) {
			return score(d), true
		}
	}
	panic(eris.Errorf("transform: unhandled data type %d", dataType))
}

// ColorBucket places value on the shared four-step color scale: 0 is the
// best bucket and 3 the worst. Shortage runs in the opposite direction.
func ColorBucket(dataType model.DataType, value float64, t model.Thresholds) int {
	switch dataType {
	case model.DataTypeStress, model.DataTypeScarcity:
		return int(StressTier(&value, t))
	case model.DataTypeShortage:
		return int(ShortageTier(&value, t))
	}
	panic(eris.Errorf("transform: unhandled data type %d", dataType))
}
