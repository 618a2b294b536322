// Package state holds the atlas selection state and the reducer that is the
// only way to change it.
package state

import (
	"maps"

	"github.com/sells-group/water-atlas/internal/catalog"
	"github.com/sells-group/water-atlas/internal/model"
)

// NoRegion marks an empty water-region selection.
const NoRegion = -1

// GridVariable selects the secondary per-FPU value shown next to the map.
type GridVariable string

const (
	GridPopulation   GridVariable = "population"
	GridAvailability GridVariable = "availability"
	GridConsumption  GridVariable = "consumption"
)

// GridVariables lists the valid grid variables.
var GridVariables = []GridVariable{GridPopulation, GridAvailability, GridConsumption}

// Selections are the user's current choices. The struct is comparable and
// reducers rely on == to detect no-op messages.
type Selections struct {
	DataType      model.DataType       `json:"dataType"`
	TimeIndex     int                  `json:"timeIndex"`
	Years         model.YearRange      `json:"years"`
	WaterRegionID int                  `json:"waterRegionId"`
	WorldRegionID int                  `json:"worldRegionId"`
	ImpactModel   catalog.ImpactModel  `json:"impactModel"`
	ClimateModel  catalog.ClimateModel `json:"climateModel"`
	TimeScale     catalog.TimeScale    `json:"timeScale"`
	GridVariable  GridVariable         `json:"gridVariable"`
	IndexLocked   bool                 `json:"indexLocked"`
	ZoomedIn      bool                 `json:"zoomedIn"`
}

// HistoricalKey is the scenario key of the dataset the selections need.
func (s Selections) HistoricalKey() string {
	return catalog.HistoricalKey(s.ClimateModel, s.ImpactModel, s.TimeScale)
}

// HasWaterRegion reports whether an FPU is selected.
func (s Selections) HasWaterRegion() bool {
	return s.WaterRegionID != NoRegion
}

// DataState holds received datasets and failed loads by scenario key.
type DataState struct {
	Historical map[string]*model.Dataset `json:"-"`
	Failed     map[string]string         `json:"failed,omitempty"`
}

// RequestState tracks in-flight request ids.
type RequestState struct {
	InFlight map[string]bool `json:"inFlight,omitempty"`
}

// State is the whole tree. Branches are never mutated: a reducer either
// returns the same *State or a new one with only the changed branches
// replaced, so branch pointers can be compared for identity.
type State struct {
	Selections *Selections         `json:"selections"`
	Thresholds *model.ThresholdSet `json:"thresholds"`
	Data       *DataState          `json:"data"`
	Requests   *RequestState       `json:"requests"`
}

// DefaultSelections returns the selections a fresh session starts with.
func DefaultSelections() Selections {
	return Selections{
		DataType:      model.DataTypeStress,
		TimeIndex:     0,
		WaterRegionID: NoRegion,
		WorldRegionID: model.GlobalRegionID,
		ImpactModel:   catalog.ImpactWaterGAP,
		ClimateModel:  catalog.ClimateWATCH,
		TimeScale:     catalog.TimeScaleDecadal,
		GridVariable:  GridPopulation,
	}
}

// New builds a state with empty data.
func New(sel Selections, thresholds model.ThresholdSet) *State {
	return &State{
		Selections: &sel,
		Thresholds: &thresholds,
		Data: &DataState{
			Historical: map[string]*model.Dataset{},
			Failed:     map[string]string{},
		},
		Requests: &RequestState{InFlight: map[string]bool{}},
	}
}

// Default returns the hard-coded initial state.
func Default() *State {
	return New(DefaultSelections(), model.DefaultThresholds())
}

// CurrentDataset returns the received dataset matching the selections.
func (s *State) CurrentDataset() (*model.Dataset, bool) {
	d, ok := s.Data.Historical[s.Selections.HistoricalKey()]
	return d, ok
}

// LoadStatus describes the current dataset's loading state.
type LoadStatus string

const (
	StatusLoading LoadStatus = "loading"
	StatusReady   LoadStatus = "ready"
	StatusFailed  LoadStatus = "failed"
)

// Status reports whether the current dataset is loaded, failed or pending.
// A pending dataset stays loading until a load message arrives.
func (s *State) Status() LoadStatus {
	key := s.Selections.HistoricalKey()
	if _, ok := s.Data.Historical[key]; ok {
		return StatusReady
	}
	if _, ok := s.Data.Failed[key]; ok {
		return StatusFailed
	}
	return StatusLoading
}

func (s *State) withSelections(sel Selections) *State {
	if sel == *s.Selections {
		return s
	}
	next := *s
	next.Selections = &sel
	return &next
}

func (s *State) withData(fn func(d *DataState)) *State {
	d := DataState{
		Historical: maps.Clone(s.Data.Historical),
		Failed:     maps.Clone(s.Data.Failed),
	}
	fn(&d)
	next := *s
	next.Data = &d
	return &next
}

func (s *State) withRequests(fn func(r *RequestState)) *State {
	r := RequestState{InFlight: maps.Clone(s.Requests.InFlight)}
	fn(&r)
	next := *s
	next.Requests = &r
	return &next
}
