package urlstate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/water-atlas/internal/catalog"
	"github.com/sells-group/water-atlas/internal/model"
	"github.com/sells-group/water-atlas/internal/state"
)

func reducer() *state.Reducer {
	return state.NewReducer(catalog.Default())
}

func TestEncodeDefaults(t *testing.T) {
	got := Encode(state.Default())
	assert.Equal(t,
		"dt=stress&t=0&wr=0&im=watergap&cm=watch&ts=decadal&gv=population&lock=false&zoom=false"+
			"&strt[0]=0.2&strt[1]=0.4&strt[2]=1"+
			"&shot[0]=500&shot[1]=1000&shot[2]=1700"+
			"&scat[0]=0&scat[1]=1&scat[2]=2",
		got)
}

func TestRoundTrip(t *testing.T) {
	r := reducer()
	s := state.Default()
	for _, a := range []state.Action{
		state.SetClimateModel{Model: catalog.ClimateMIROC5},
		state.SetTimeScale{TimeScale: catalog.TimeScaleAnnual},
		state.SetImpactModel{Model: catalog.ImpactLPJmL},
		state.SetDataType{DataType: model.DataTypeScarcity},
		state.SetGridVariable{Variable: state.GridConsumption},
		state.SetWorldRegion{ID: 4},
		state.SetWaterRegion{ID: 117},
		state.SetThresholds{DataType: model.DataTypeShortage, Thresholds: model.Thresholds{250.5, 900, 1500}},
		state.SetTimeIndex{Index: 6},
		state.ToggleIndexLock{},
		state.ToggleRegionZoom{},
	} {
		s = r.Reduce(s, a)
	}

	fragment := Encode(s)
	restored, errs := Restore(r, state.Default(), "#"+fragment)
	require.Empty(t, errs)

	assert.Equal(t, *s.Selections, *restored.Selections)
	assert.Equal(t, *s.Thresholds, *restored.Thresholds)
	assert.Equal(t, fragment, Encode(restored))
}

func TestDecodeInvalidIntegerKeepsDefault(t *testing.T) {
	s, errs := Restore(reducer(), state.Default(), "t=abc&dt=shortage")
	require.Len(t, errs, 1)
	assert.Equal(t, KeyTimeIndex, errs[0].Key)
	assert.Equal(t, "abc", errs[0].Value)
	assert.Contains(t, errs[0].Error(), `t="abc"`)

	assert.Equal(t, 0, s.Selections.TimeIndex)
	assert.Equal(t, model.DataTypeShortage, s.Selections.DataType)
}

func TestDecodeDropsBadFields(t *testing.T) {
	d := Decode("dt=drought&im=vic&cm=cesm&ts=weekly&gv=rain&lock=maybe&r=-3&strt[0]=0.5&strt[1]=0.1&strt[2]=2&shot[0]=1&scat[0]=x&scat[1]=1&scat[2]=2&unknown=1")

	assert.Nil(t, d.DataType)
	assert.Nil(t, d.ImpactModel)
	assert.Nil(t, d.ClimateModel)
	assert.Nil(t, d.TimeScale)
	assert.Nil(t, d.GridVariable)
	assert.Nil(t, d.IndexLocked)
	assert.Nil(t, d.WaterRegionID)
	assert.Empty(t, d.Thresholds)

	keys := make([]string, 0, len(d.Errors))
	for _, e := range d.Errors {
		keys = append(keys, e.Key)
	}
	assert.ElementsMatch(t, []string{"dt", "im", "cm", "ts", "gv", "lock", "r", "strt", "shot", "scat"}, keys)
}

func TestDecodeAcceptsEscapedBrackets(t *testing.T) {
	d := Decode("#strt%5B0%5D=0.1&strt%5B1%5D=0.3&strt%5B2%5D=0.9")
	require.Empty(t, d.Errors)
	assert.Equal(t, model.Thresholds{0.1, 0.3, 0.9}, d.Thresholds[model.DataTypeStress])
}

func TestApplyIncompatibleImpactModelFallsBack(t *testing.T) {
	s, errs := Restore(reducer(), state.Default(), "cm=hadgem2-es&im=watergap")
	assert.Empty(t, errs)
	assert.Equal(t, catalog.ClimateHadGEM2ES, s.Selections.ClimateModel)
	assert.Equal(t, catalog.ImpactH08, s.Selections.ImpactModel)
}

func TestMiddlewareWritesOnlyOnChange(t *testing.T) {
	r := reducer()
	loc := NewMemoryLocation(Encode(state.Default()))
	st := state.NewStore(state.Default(), r.Func(), Middleware(loc))

	st.Dispatch(state.SetDataType{DataType: model.DataTypeStress})
	assert.Equal(t, 0, loc.Writes())

	st.Dispatch(state.SetDataType{DataType: model.DataTypeShortage})
	assert.Equal(t, 1, loc.Writes())
	assert.Contains(t, loc.Fragment(), "dt=shortage")

	st.Dispatch(state.RequestStarted{ID: "x"})
	assert.Equal(t, 1, loc.Writes(), "request bookkeeping is not shared state")
}
