package state

import (
	"math"
	"slices"

	"go.uber.org/zap"

	"github.com/sells-group/water-atlas/internal/catalog"
	"github.com/sells-group/water-atlas/internal/model"
)

// Reducer computes the next state for an action. It never mutates its input
// and returns the same *State when the action changes nothing.
type Reducer struct {
	catalog *catalog.Catalog
}

// NewReducer creates a reducer that validates model choices against cat.
func NewReducer(cat *catalog.Catalog) *Reducer {
	return &Reducer{catalog: cat}
}

// Reduce applies a to s.
func (r *Reducer) Reduce(s *State, a Action) *State {
	sel := *s.Selections

	switch a := a.(type) {
	case SetDataType:
		if !a.DataType.Valid() {
			zap.L().Warn("state: ignoring unknown data type", zap.Uint8("data_type", uint8(a.DataType)))
			return s
		}
		sel.DataType = a.DataType
		return s.withSelections(sel)

	case SetTimeIndex:
		if sel.IndexLocked {
			return s
		}
		return s.withSelections(r.selectIndex(s, sel, a.Index))

	case SetWaterRegion:
		if a.ID < 0 {
			a.ID = NoRegion
		}
		sel.WaterRegionID = a.ID
		return s.withSelections(sel)

	case SetWorldRegion:
		sel.WorldRegionID = a.ID
		sel.WaterRegionID = NoRegion
		return s.withSelections(sel)

	case SetImpactModel:
		if !slices.Contains(r.catalog.ImpactModelsFor(sel.ClimateModel, sel.TimeScale), a.Model) {
			zap.L().Warn("state: impact model not available for selection",
				zap.String("impact_model", string(a.Model)),
				zap.String("climate_model", string(sel.ClimateModel)),
				zap.String("time_scale", string(sel.TimeScale)),
			)
			return s
		}
		sel.ImpactModel = a.Model
		return s.withSelections(r.syncIndex(s, sel))

	case SetClimateModel:
		if !slices.Contains(catalog.ClimateModels, a.Model) {
			zap.L().Warn("state: ignoring unknown climate model", zap.String("climate_model", string(a.Model)))
			return s
		}
		sel.ClimateModel = a.Model
		return s.withSelections(r.syncIndex(s, r.forceImpactModel(sel)))

	case SetTimeScale:
		if !slices.Contains(catalog.TimeScales, a.TimeScale) {
			zap.L().Warn("state: ignoring unknown time scale", zap.String("time_scale", string(a.TimeScale)))
			return s
		}
		sel.TimeScale = a.TimeScale
		return s.withSelections(r.syncIndex(s, r.forceImpactModel(sel)))

	case SetGridVariable:
		if !slices.Contains(GridVariables, a.Variable) {
			zap.L().Warn("state: ignoring unknown grid variable", zap.String("grid_variable", string(a.Variable)))
			return s
		}
		sel.GridVariable = a.Variable
		return s.withSelections(sel)

	case SetThresholds:
		if !a.DataType.Valid() {
			return s
		}
		if err := a.Thresholds.Validate(); err != nil {
			zap.L().Warn("state: rejecting thresholds", zap.Error(err))
			return s
		}
		if s.Thresholds.For(a.DataType) == a.Thresholds {
			return s
		}
		next := *s
		t := s.Thresholds.With(a.DataType, a.Thresholds)
		next.Thresholds = &t
		return &next

	case ToggleIndexLock:
		sel.IndexLocked = !sel.IndexLocked
		return s.withSelections(sel)

	case ToggleRegionZoom:
		sel.ZoomedIn = !sel.ZoomedIn
		return s.withSelections(sel)

	case RequestStarted:
		if s.Requests.InFlight[a.ID] {
			zap.L().Error("state: request started twice", zap.String("request_id", a.ID))
			return s
		}
		return s.withRequests(func(rs *RequestState) { rs.InFlight[a.ID] = true })

	case RequestCompleted:
		if !s.Requests.InFlight[a.ID] {
			return s
		}
		return s.withRequests(func(rs *RequestState) { delete(rs.InFlight, a.ID) })

	case HistoricalDataLoaded:
		return r.dataLoaded(s, a.Dataset)

	case HistoricalDataFailed:
		if s.Data.Failed[a.Key] == a.Kind {
			return s
		}
		return s.withData(func(d *DataState) { d.Failed[a.Key] = a.Kind })
	}

	zap.L().Error("state: unhandled action", zap.String("type", a.Type()))
	return s
}

// Func adapts the reducer to the Store's reduce signature.
func (r *Reducer) Func() ReduceFunc {
	return r.Reduce
}

func (r *Reducer) dataLoaded(s *State, d *model.Dataset) *State {
	if d == nil {
		return s
	}
	if s.Data.Historical[d.Key] == d {
		return s
	}
	next := s.withData(func(ds *DataState) {
		ds.Historical[d.Key] = d
		delete(ds.Failed, d.Key)
	})
	if d.Key != next.Selections.HistoricalKey() {
		return next
	}

	return next.withSelections(r.syncIndex(next, *next.Selections))
}

// syncIndex points sel's time index into the dataset held for sel's key.
// Without earlier years the index is clamped; otherwise the bucket closest to
// the previously shown years is chosen. Without data sel is returned as is.
func (r *Reducer) syncIndex(s *State, sel Selections) Selections {
	d, ok := s.Data.Historical[sel.HistoricalKey()]
	if !ok || d == nil {
		return sel
	}
	ranges := d.Series.YearRanges()
	if len(ranges) == 0 {
		return sel
	}
	if sel.Years == (model.YearRange{}) {
		sel.TimeIndex = clamp(sel.TimeIndex, 0, len(ranges)-1)
	} else {
		sel.TimeIndex = FindClosestTimeRange(ranges, sel.Years)
	}
	sel.Years = ranges[sel.TimeIndex]
	return sel
}

// selectIndex moves to index i, keeping it inside the loaded series.
func (r *Reducer) selectIndex(s *State, sel Selections, i int) Selections {
	d, ok := s.CurrentDataset()
	if !ok {
		if i >= 0 {
			// Forget the old years so the first load keeps this index.
			sel.TimeIndex = i
			sel.Years = model.YearRange{}
		}
		return sel
	}
	bucket, ok := d.Series.At(i)
	if !ok {
		zap.L().Warn("state: time index out of range", zap.Int("index", i), zap.Int("buckets", d.Series.Len()))
		return sel
	}
	sel.TimeIndex = i
	sel.Years = bucket.Years()
	return sel
}

// forceImpactModel switches to the first impact model that has data for the
// climate model and time scale when the current one does not.
func (r *Reducer) forceImpactModel(sel Selections) Selections {
	available := r.catalog.ImpactModelsFor(sel.ClimateModel, sel.TimeScale)
	if len(available) == 0 || slices.Contains(available, sel.ImpactModel) {
		return sel
	}
	zap.L().Info("state: switching impact model",
		zap.String("from", string(sel.ImpactModel)),
		zap.String("to", string(available[0])),
	)
	sel.ImpactModel = available[0]
	return sel
}

// FindClosestTimeRange returns the index of the range whose midpoint is
// nearest to current's midpoint. Ties go to the earlier range. Returns -1 for
// an empty list.
func FindClosestTimeRange(ranges []model.YearRange, current model.YearRange) int {
	best := -1
	bestDist := math.Inf(1)
	mid := current.Midpoint()
	for i, r := range ranges {
		if d := math.Abs(r.Midpoint() - mid); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
