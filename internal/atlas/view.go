package atlas

import (
	"github.com/sells-group/water-atlas/internal/catalog"
	"github.com/sells-group/water-atlas/internal/model"
	"github.com/sells-group/water-atlas/internal/selectors"
	"github.com/sells-group/water-atlas/internal/state"
)

// View is everything a client needs to draw the atlas for one state.
type View struct {
	Fragment     string                     `json:"fragment"`
	Status       state.LoadStatus           `json:"status"`
	FailureKind  string                     `json:"failureKind,omitempty"`
	Selections   state.Selections           `json:"selections"`
	Thresholds   model.Thresholds           `json:"thresholds"`
	ThresholdSet model.ThresholdSet         `json:"thresholdSet"`
	ImpactModels []catalog.ImpactModel      `json:"impactModels"`
	Years        []string                   `json:"years"`
	Map          map[int]selectors.MapValue `json:"map,omitempty"`
	Grid         map[int]float64            `json:"grid,omitempty"`
	WorldRegion  WorldRegionView            `json:"worldRegion"`
	WaterRegion  *WaterRegionView           `json:"waterRegion,omitempty"`
	Summaries    []selectors.RegionSummary  `json:"summaries,omitempty"`
}

// WorldRegionView is the selected world region and its history. Extent is
// set only while zoomed in.
type WorldRegionView struct {
	ID     int                    `json:"id"`
	Name   string                 `json:"name"`
	Color  string                 `json:"color,omitempty"`
	Extent []float64              `json:"extent,omitempty"`
	Series []model.AggregateDatum `json:"series"`
}

// WaterRegionView is the selected FPU, its datum in the selected bucket and
// its history.
type WaterRegionView struct {
	ID     int                 `json:"id"`
	Name   string              `json:"name,omitempty"`
	Datum  *model.RegionDatum  `json:"datum,omitempty"`
	Series []model.RegionDatum `json:"series"`
}

// View builds the view of the current state.
func (s *Session) View() View {
	st := s.store.State()
	sel := *st.Selections
	x := s.selectors

	v := View{
		Fragment:     s.Fragment(),
		Status:       st.Status(),
		Selections:   sel,
		Thresholds:   x.Thresholds(st),
		ThresholdSet: *st.Thresholds,
		ImpactModels: s.svc.Catalog().ImpactModelsFor(sel.ClimateModel, sel.TimeScale),
		Years:        x.YearLabels(st),
		Map:          x.MapValues(st),
		Grid:         x.GridValues(st),
		Summaries:    x.WorldRegionSummaries(st),
		WorldRegion: WorldRegionView{
			ID:     sel.WorldRegionID,
			Name:   selectors.GlobalName,
			Series: x.WorldRegionSeries(st),
		},
	}
	if v.Status == state.StatusFailed {
		v.FailureKind = st.Data.Failed[sel.HistoricalKey()]
	}

	if b := s.svc.boundaries; b != nil && sel.WorldRegionID != model.GlobalRegionID {
		if wr, ok := b.WorldRegion(sel.WorldRegionID); ok {
			v.WorldRegion.Name, v.WorldRegion.Color = wr.Name, wr.Color
			if sel.ZoomedIn {
				v.WorldRegion.Extent = wr.Extent()
			}
		}
	}

	if sel.HasWaterRegion() {
		wv := &WaterRegionView{ID: sel.WaterRegionID, Series: x.WaterRegionSeries(st)}
		if d, ok := x.SelectedWaterRegion(st); ok {
			wv.Datum = &d
		}
		if b := s.svc.boundaries; b != nil {
			wv.Name = b.WaterRegionName(sel.WaterRegionID)
		}
		v.WaterRegion = wv
	}
	return v
}
