package urlstate

import (
	"sync"

	"github.com/sells-group/water-atlas/internal/state"
)

// Location is where the fragment lives, such as a session's address bar.
type Location interface {
	Fragment() string
	SetFragment(string)
}

// MemoryLocation is a Location held in memory.
type MemoryLocation struct {
	mu       sync.Mutex
	fragment string
	writes   int
}

// NewMemoryLocation starts at fragment.
func NewMemoryLocation(fragment string) *MemoryLocation {
	return &MemoryLocation{fragment: fragment}
}

func (l *MemoryLocation) Fragment() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.fragment
}

func (l *MemoryLocation) SetFragment(f string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.fragment = f
	l.writes++
}

// Writes counts SetFragment calls.
func (l *MemoryLocation) Writes() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.writes
}

// Middleware writes the encoded state to loc after every dispatch, skipping
// the write when the fragment is unchanged.
func Middleware(loc Location) state.Middleware {
	return func(getState func() *state.State) func(state.Dispatch) state.Dispatch {
		return func(next state.Dispatch) state.Dispatch {
			return func(a state.Action) {
				next(a)
				if f := Encode(getState()); f != loc.Fragment() {
					loc.SetFragment(f)
				}
			}
		}
	}
}
