package atlas

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/sells-group/water-atlas/internal/model"
	"github.com/sells-group/water-atlas/internal/selectors"
	"github.com/sells-group/water-atlas/internal/state"
	"github.com/sells-group/water-atlas/internal/urlstate"
	"github.com/sells-group/water-atlas/internal/waterdata"
)

// Session is one user's view of the atlas: a store, its selectors and the
// fragment that mirrors it.
type Session struct {
	svc       *Service
	store     *state.Store
	selectors *selectors.Selectors
	location  *urlstate.MemoryLocation
}

func newSession(svc *Service, initial *state.State) *Session {
	loc := urlstate.NewMemoryLocation(urlstate.Encode(initial))
	return &Session{
		svc:       svc,
		store:     state.NewStore(initial, svc.reducer.Func(), urlstate.Middleware(loc)),
		selectors: selectors.New(svc.boundaries),
		location:  loc,
	}
}

// State returns the session's current state.
func (s *Session) State() *state.State {
	return s.store.State()
}

// Fragment returns the canonical fragment of the current state.
func (s *Session) Fragment() string {
	return s.location.Fragment()
}

// Selectors returns the session's memoized derivations.
func (s *Session) Selectors() *selectors.Selectors {
	return s.selectors
}

// Dispatch applies actions in order.
func (s *Session) Dispatch(actions ...state.Action) {
	for _, a := range actions {
		s.store.Dispatch(a)
	}
}

// Ensure fetches the dataset the selections need unless it is loaded or has
// already failed. A failure is recorded in state and returned; the session
// stays usable.
func (s *Session) Ensure(ctx context.Context) error {
	st := s.store.State()
	if st.Status() != state.StatusLoading {
		return nil
	}
	sel := *st.Selections
	key := sel.HistoricalKey()

	s.store.Dispatch(state.RequestStarted{ID: key})
	defer s.store.Dispatch(state.RequestCompleted{ID: key})

	d, err := s.svc.loader.FetchHistoricalData(ctx, sel.ClimateModel, sel.ImpactModel, sel.TimeScale)
	if errors.Is(err, waterdata.ErrRequestInFlight) {
		// Another session is loading it; stay in the loading state.
		return err
	}
	if err != nil {
		zap.L().Error("atlas: dataset unavailable",
			zap.String("key", key),
			zap.Stringer("kind", waterdata.KindOf(err)),
			zap.Error(err),
		)
		s.store.Dispatch(state.HistoricalDataFailed{Key: key, Kind: waterdata.KindOf(err).String()})
		return err
	}
	s.store.Dispatch(state.HistoricalDataLoaded{Dataset: d})
	return nil
}

// Derived returns the current dataset in display units, nil while loading.
func (s *Session) Derived() *model.Series[model.RegionDatum] {
	return s.selectors.Derived(s.store.State())
}
