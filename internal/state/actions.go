package state

import (
	"encoding/json"

	"github.com/rotisserie/eris"

	"github.com/sells-group/water-atlas/internal/catalog"
	"github.com/sells-group/water-atlas/internal/model"
)

// Action is a message handled by the reducer. The set is closed: only types
// in this package implement it.
type Action interface {
	// Type is the wire name used by the HTTP API.
	Type() string
	sealed()
}

type (
	// SetDataType switches between stress, shortage and scarcity.
	SetDataType struct {
		DataType model.DataType `json:"dataType"`
	}

	// SetTimeIndex selects a time bucket. Ignored while the index is locked.
	SetTimeIndex struct {
		Index int `json:"index"`
	}

	// SetWaterRegion selects an FPU, or clears the selection with NoRegion.
	SetWaterRegion struct {
		ID int `json:"id"`
	}

	// SetWorldRegion selects a world region and clears the FPU selection.
	SetWorldRegion struct {
		ID int `json:"id"`
	}

	SetImpactModel struct {
		Model catalog.ImpactModel `json:"model"`
	}

	SetClimateModel struct {
		Model catalog.ClimateModel `json:"model"`
	}

	SetTimeScale struct {
		TimeScale catalog.TimeScale `json:"timeScale"`
	}

	SetGridVariable struct {
		Variable GridVariable `json:"variable"`
	}

	// SetThresholds replaces the thresholds of one data type.
	SetThresholds struct {
		DataType   model.DataType   `json:"dataType"`
		Thresholds model.Thresholds `json:"thresholds"`
	}

	ToggleIndexLock struct{}

	ToggleRegionZoom struct{}

	// RequestStarted records an in-flight request id.
	RequestStarted struct {
		ID string `json:"id"`
	}

	RequestCompleted struct {
		ID string `json:"id"`
	}

	// HistoricalDataLoaded delivers a fetched dataset.
	HistoricalDataLoaded struct {
		Dataset *model.Dataset `json:"-"`
	}

	// HistoricalDataFailed marks a dataset as failed with the error kind.
	HistoricalDataFailed struct {
		Key  string `json:"key"`
		Kind string `json:"kind"`
	}
)

func (SetDataType) Type() string          { return "setDataType" }
func (SetTimeIndex) Type() string         { return "setTimeIndex" }
func (SetWaterRegion) Type() string       { return "setWaterRegion" }
func (SetWorldRegion) Type() string       { return "setWorldRegion" }
func (SetImpactModel) Type() string       { return "setImpactModel" }
func (SetClimateModel) Type() string      { return "setClimateModel" }
func (SetTimeScale) Type() string         { return "setTimeScale" }
func (SetGridVariable) Type() string      { return "setGridVariable" }
func (SetThresholds) Type() string        { return "setThresholds" }
func (ToggleIndexLock) Type() string      { return "toggleIndexLock" }
func (ToggleRegionZoom) Type() string     { return "toggleRegionZoom" }
func (RequestStarted) Type() string       { return "requestStarted" }
func (RequestCompleted) Type() string     { return "requestCompleted" }
func (HistoricalDataLoaded) Type() string { return "historicalDataLoaded" }
func (HistoricalDataFailed) Type() string { return "historicalDataFailed" }

func (SetDataType) sealed()          {}
func (SetTimeIndex) sealed()         {}
func (SetWaterRegion) sealed()       {}
func (SetWorldRegion) sealed()       {}
func (SetImpactModel) sealed()       {}
func (SetClimateModel) sealed()      {}
func (SetTimeScale) sealed()         {}
func (SetGridVariable) sealed()      {}
func (SetThresholds) sealed()        {}
func (ToggleIndexLock) sealed()      {}
func (ToggleRegionZoom) sealed()     {}
func (RequestStarted) sealed()       {}
func (RequestCompleted) sealed()     {}
func (HistoricalDataLoaded) sealed() {}
func (HistoricalDataFailed) sealed() {}

// userActions are the actions a client may send. Request bookkeeping and
// data delivery are internal.
var userActions = map[string]func() Action{
	"setDataType":      func() Action { return &SetDataType{} },
	"setTimeIndex":     func() Action { return &SetTimeIndex{} },
	"setWaterRegion":   func() Action { return &SetWaterRegion{} },
	"setWorldRegion":   func() Action { return &SetWorldRegion{} },
	"setImpactModel":   func() Action { return &SetImpactModel{} },
	"setClimateModel":  func() Action { return &SetClimateModel{} },
	"setTimeScale":     func() Action { return &SetTimeScale{} },
	"setGridVariable":  func() Action { return &SetGridVariable{} },
	"setThresholds":    func() Action { return &SetThresholds{} },
	"toggleIndexLock":  func() Action { return &ToggleIndexLock{} },
	"toggleRegionZoom": func() Action { return &ToggleRegionZoom{} },
}

// DecodeAction parses {"type": "...", ...fields} into a user action.
func DecodeAction(raw json.RawMessage) (Action, error) {
	var envelope struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, eris.Wrap(err, "state: decode action envelope")
	}
	ctor, ok := userActions[envelope.Type]
	if !ok {
		return nil, eris.Errorf("state: unknown action type %q", envelope.Type)
	}
	a := ctor()
	if err := json.Unmarshal(raw, a); err != nil {
		return nil, eris.Wrapf(err, "state: decode %s", envelope.Type)
	}
	return deref(a), nil
}

// deref turns the pointer produced by the decoder back into the value type
// the reducer switches on.
func deref(a Action) Action {
	switch v := a.(type) {
	case *SetDataType:
		return *v
	case *SetTimeIndex:
		return *v
	case *SetWaterRegion:
		return *v
	case *SetWorldRegion:
		return *v
	case *SetImpactModel:
		return *v
	case *SetClimateModel:
		return *v
	case *SetTimeScale:
		return *v
	case *SetGridVariable:
		return *v
	case *SetThresholds:
		return *v
	case *ToggleIndexLock:
		return *v
	case *ToggleRegionZoom:
		return *v
	}
	return a
}
