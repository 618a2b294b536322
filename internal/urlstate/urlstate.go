// Package urlstate mirrors the selection state into a URL fragment and back.
package urlstate

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/water-atlas/internal/catalog"
	"github.com/sells-group/water-atlas/internal/model"
	"github.com/sells-group/water-atlas/internal/state"
)

// Fragment keys.
const (
	KeyDataType      = "dt"
	KeyTimeIndex     = "t"
	KeyWaterRegion   = "r"
	KeyWorldRegion   = "wr"
	KeyImpactModel   = "im"
	KeyClimateModel  = "cm"
	KeyTimeScale     = "ts"
	KeyGridVariable  = "gv"
	KeyIndexLock     = "lock"
	KeyRegionZoom    = "zoom"
	KeyStress        = "strt"
	KeyShortage      = "shot"
	KeyScarcity      = "scat"
	thresholdEntries = 3
)

var thresholdKeys = []struct {
	key      string
	dataType model.DataType
}{
	{KeyStress, model.DataTypeStress},
	{KeyShortage, model.DataTypeShortage},
	{KeyScarcity, model.DataTypeScarcity},
}

// FieldError reports a fragment field that could not be used.
type FieldError struct {
	Key   string
	Value string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("urlstate: field %s=%q: %v", e.Key, e.Value, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// Decoded holds the fields recovered from a fragment. Nil means absent or
// invalid.
type Decoded struct {
	DataType      *model.DataType
	TimeIndex     *int
	WaterRegionID *int
	WorldRegionID *int
	ImpactModel   *catalog.ImpactModel
	ClimateModel  *catalog.ClimateModel
	TimeScale     *catalog.TimeScale
	GridVariable  *state.GridVariable
	IndexLocked   *bool
	ZoomedIn      *bool
	Thresholds    map[model.DataType]model.Thresholds

	Errors []*FieldError
}

// Encode writes the shareable selections and thresholds of s. Keys always
// appear in the same order.
func Encode(s *state.State) string {
	sel := s.Selections
	var b strings.Builder
	add := func(key, value string) {
		if b.Len() > 0 {
			b.WriteByte('&')
		}
		b.WriteString(key)
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(value))
	}

	add(KeyDataType, sel.DataType.String())
	add(KeyTimeIndex, strconv.Itoa(sel.TimeIndex))
	if sel.HasWaterRegion() {
		add(KeyWaterRegion, strconv.Itoa(sel.WaterRegionID))
	}
	add(KeyWorldRegion, strconv.Itoa(sel.WorldRegionID))
	add(KeyImpactModel, string(sel.ImpactModel))
	add(KeyClimateModel, string(sel.ClimateModel))
	add(KeyTimeScale, string(sel.TimeScale))
	add(KeyGridVariable, string(sel.GridVariable))
	add(KeyIndexLock, strconv.FormatBool(sel.IndexLocked))
	add(KeyRegionZoom, strconv.FormatBool(sel.ZoomedIn))
	for _, tk := range thresholdKeys {
		for i, v := range s.Thresholds.For(tk.dataType) {
			add(fmt.Sprintf("%s[%d]", tk.key, i), strconv.FormatFloat(v, 'g', -1, 64))
		}
	}
	return b.String()
}

// Decode parses a fragment, with or without the leading '#'. Every field is
// validated on its own; bad fields are logged, recorded in Errors and
// dropped. Unknown keys are ignored.
func Decode(fragment string) Decoded {
	var d Decoded
	values, err := url.ParseQuery(strings.TrimPrefix(fragment, "#"))
	if err != nil {
		// ParseQuery keeps every pair it could read.
		d.fail("", fragment, eris.Wrap(err, "parse fragment"))
	}

	if v, ok := first(values, KeyDataType); ok {
		dt, err := model.ParseDataType(v)
		d.set(KeyDataType, v, err, func() { d.DataType = &dt })
	}
	if v, ok := first(values, KeyTimeIndex); ok {
		n, err := parseIndex(v)
		d.set(KeyTimeIndex, v, err, func() { d.TimeIndex = &n })
	}
	if v, ok := first(values, KeyWaterRegion); ok {
		n, err := parseIndex(v)
		d.set(KeyWaterRegion, v, err, func() { d.WaterRegionID = &n })
	}
	if v, ok := first(values, KeyWorldRegion); ok {
		n, err := parseIndex(v)
		d.set(KeyWorldRegion, v, err, func() { d.WorldRegionID = &n })
	}
	if v, ok := first(values, KeyImpactModel); ok {
		m, err := catalog.ParseImpactModel(v)
		d.set(KeyImpactModel, v, err, func() { d.ImpactModel = &m })
	}
	if v, ok := first(values, KeyClimateModel); ok {
		m, err := catalog.ParseClimateModel(v)
		d.set(KeyClimateModel, v, err, func() { d.ClimateModel = &m })
	}
	if v, ok := first(values, KeyTimeScale); ok {
		ts, err := catalog.ParseTimeScale(v)
		d.set(KeyTimeScale, v, err, func() { d.TimeScale = &ts })
	}
	if v, ok := first(values, KeyGridVariable); ok {
		gv, err := parseGridVariable(v)
		d.set(KeyGridVariable, v, err, func() { d.GridVariable = &gv })
	}
	if v, ok := first(values, KeyIndexLock); ok {
		b, err := strconv.ParseBool(v)
		d.set(KeyIndexLock, v, err, func() { d.IndexLocked = &b })
	}
	if v, ok := first(values, KeyRegionZoom); ok {
		b, err := strconv.ParseBool(v)
		d.set(KeyRegionZoom, v, err, func() { d.ZoomedIn = &b })
	}

	for _, tk := range thresholdKeys {
		t, raw, present, err := parseThresholds(values, tk.key)
		if !present {
			continue
		}
		d.set(tk.key, raw, err, func() {
			if d.Thresholds == nil {
				d.Thresholds = make(map[model.DataType]model.Thresholds)
			}
			d.Thresholds[tk.dataType] = t
		})
	}
	return d
}

func (d *Decoded) set(key, value string, err error, apply func()) {
	if err != nil {
		d.fail(key, value, err)
		return
	}
	apply()
}

func (d *Decoded) fail(key, value string, err error) {
	fe := &FieldError{Key: key, Value: value, Err: err}
	d.Errors = append(d.Errors, fe)
	zap.L().Warn("urlstate: dropping fragment field",
		zap.String("key", key),
		zap.String("value", value),
		zap.Error(err),
	)
}

func first(values url.Values, key string) (string, bool) {
	vs, ok := values[key]
	if !ok || len(vs) == 0 {
		return "", false
	}
	return vs[0], true
}

func parseIndex(v string) (int, error) {
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, eris.Wrap(err, "not an integer")
	}
	if n < 0 {
		return 0, eris.New("must not be negative")
	}
	return n, nil
}

func parseGridVariable(v string) (state.GridVariable, error) {
	for _, gv := range state.GridVariables {
		if string(gv) == v {
			return gv, nil
		}
	}
	return "", eris.Errorf("unknown grid variable %q", v)
}

// parseThresholds reads key[0], key[1] and key[2]. present is false when no
// entry of the array appears at all.
func parseThresholds(values url.Values, key string) (model.Thresholds, string, bool, error) {
	var (
		t       model.Thresholds
		raw     []string
		present bool
		missing bool
	)
	for i := range thresholdEntries {
		v, ok := first(values, fmt.Sprintf("%s[%d]", key, i))
		if !ok {
			missing = true
			raw = append(raw, "")
			continue
		}
		present = true
		raw = append(raw, v)
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return t, strings.Join(raw, ","), true, eris.Wrapf(err, "entry %d", i)
		}
		t[i] = f
	}
	joined := strings.Join(raw, ",")
	if !present {
		return t, joined, false, nil
	}
	if missing {
		return t, joined, true, eris.Errorf("need %d entries", thresholdEntries)
	}
	if err := t.Validate(); err != nil {
		return t, joined, true, err
	}
	return t, joined, true, nil
}

// Apply merges decoded fields into s through the reducer, so every value is
// validated the same way a user action would be.
func Apply(r *state.Reducer, s *state.State, d Decoded) *state.State {
	var actions []state.Action
	if d.ClimateModel != nil {
		actions = append(actions, state.SetClimateModel{Model: *d.ClimateModel})
	}
	if d.TimeScale != nil {
		actions = append(actions, state.SetTimeScale{TimeScale: *d.TimeScale})
	}
	if d.ImpactModel != nil {
		actions = append(actions, state.SetImpactModel{Model: *d.ImpactModel})
	}
	if d.DataType != nil {
		actions = append(actions, state.SetDataType{DataType: *d.DataType})
	}
	if d.GridVariable != nil {
		actions = append(actions, state.SetGridVariable{Variable: *d.GridVariable})
	}
	if d.WorldRegionID != nil {
		actions = append(actions, state.SetWorldRegion{ID: *d.WorldRegionID})
	}
	if d.WaterRegionID != nil {
		actions = append(actions, state.SetWaterRegion{ID: *d.WaterRegionID})
	}
	for _, tk := range thresholdKeys {
		if t, ok := d.Thresholds[tk.dataType]; ok {
			actions = append(actions, state.SetThresholds{DataType: tk.dataType, Thresholds: t})
		}
	}
	if d.TimeIndex != nil {
		actions = append(actions, state.SetTimeIndex{Index: *d.TimeIndex})
	}

	for _, a := range actions {
		s = r.Reduce(s, a)
	}
	// Toggles go last so a locked index still receives its initial value.
	if d.IndexLocked != nil && *d.IndexLocked != s.Selections.IndexLocked {
		s = r.Reduce(s, state.ToggleIndexLock{})
	}
	if d.ZoomedIn != nil && *d.ZoomedIn != s.Selections.ZoomedIn {
		s = r.Reduce(s, state.ToggleRegionZoom{})
	}
	return s
}

// Restore decodes fragment and applies it to s.
func Restore(r *state.Reducer, s *state.State, fragment string) (*state.State, []*FieldError) {
	d := Decode(fragment)
	return Apply(r, s, d), d.Errors
}
