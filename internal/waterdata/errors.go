package waterdata

import (
	"errors"

	"github.com/rotisserie/eris"
)

// Kind classifies why a dataset could not be produced.
type Kind uint8

const (
	// KindLookup means no catalog entry matches the selection.
	KindLookup Kind = iota + 1
	// KindNetwork means the download failed.
	KindNetwork
	// KindParse means the file was not a valid dataset.
	KindParse
)

// String names the kind for logs and API responses.
func (k Kind) String() string {
	switch k {
	case KindLookup:
		return "lookup"
	case KindNetwork:
		return "network"
	case KindParse:
		return "parse"
	}
	return "unknown"
}

// Error is returned by every fetch in this package.
type Error struct {
	Kind Kind
	Key  string
	Err  error
}

func (e *Error) Error() string {
	return "waterdata: " + e.Kind.String() + " failure for " + e.Key + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of err, or zero when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// ErrRequestInFlight is returned when a fetch starts under a request id that
// is already running.
var ErrRequestInFlight = eris.New("waterdata: request already in flight")
