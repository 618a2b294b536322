package model

import (
	"github.com/rotisserie/eris"
)

// DataType selects which indicator is displayed.
type DataType uint8

const (
	DataTypeStress DataType = iota + 1
	DataTypeShortage
	DataTypeScarcity
)

// DataTypes lists every data type in display order.
var DataTypes = []DataType{DataTypeStress, DataTypeShortage, DataTypeScarcity}

// String returns the identifier used in URLs and JSON.
func (d DataType) String() string {
	switch d {
	case DataTypeStress:
		return "stress"
	case DataTypeShortage:
		return "shortage"
	case DataTypeScarcity:
		return "scarcity"
	}
	return "unknown"
}

// Valid reports whether d is one of the declared data types.
func (d DataType) Valid() bool {
	switch d {
	case DataTypeStress, DataTypeShortage, DataTypeScarcity:
		return true
	}
	return false
}

// ParseDataType maps an identifier back to its DataType.
func ParseDataType(s string) (DataType, error) {
	for _, d := range DataTypes {
		if d.String() == s {
			return d, nil
		}
	}
	return 0, eris.Errorf("unknown data type %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (d DataType) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, eris.Errorf("invalid data type %d", d)
	}
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *DataType) UnmarshalText(b []byte) error {
	parsed, err := ParseDataType(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Thresholds is an ascending triple of tier cut points.
type Thresholds [3]float64

// Validate checks that the cut points are strictly ascending.
func (t Thresholds) Validate() error {
	if !(t[0] < t[1] && t[1] < t[2]) {
		return eris.Errorf("thresholds must be ascending, got %v", [3]float64(t))
	}
	return nil
}

// ThresholdSet holds the thresholds for every data type.
type ThresholdSet struct {
	Stress   Thresholds `json:"stress"`
	Shortage Thresholds `json:"shortage"`
	Scarcity Thresholds `json:"scarcity"`
}

// DefaultThresholds returns the default tier boundaries. Shortage uses the
// Falkenmark per-capita limits.
func DefaultThresholds() ThresholdSet {
	return ThresholdSet{
		Stress:   Thresholds{0.2, 0.4, 1},
		Shortage: Thresholds{500, 1000, 1700},
		Scarcity: Thresholds{0, 1, 2},
	}
}

// For returns the thresholds of the given data type.
func (s ThresholdSet) For(d DataType) Thresholds {
	switch d {
	case DataTypeStress:
		return s.Stress
	case DataTypeShortage:
		return s.Shortage
	case DataTypeScarcity:
		return s.Scarcity
	}
	panic(eris.Errorf("thresholds: unhandled data type %d", d))
}

// With returns a copy of s with the thresholds of d replaced.
func (s ThresholdSet) With(d DataType, t Thresholds) ThresholdSet {
	switch d {
	case DataTypeStress:
		s.Stress = t
	case DataTypeShortage:
		s.Shortage = t
	case DataTypeScarcity:
		s.Scarcity = t
	default:
		panic(eris.Errorf("thresholds: unhandled data type %d", d))
	}
	return s
}
