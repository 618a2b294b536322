// Package atlas wires the loader, boundaries and per-session stores into the
// sessions served by the API and the CLI.
package atlas

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/water-atlas/internal/boundaries"
	"github.com/sells-group/water-atlas/internal/catalog"
	"github.com/sells-group/water-atlas/internal/config"
	"github.com/sells-group/water-atlas/internal/fetcher"
	"github.com/sells-group/water-atlas/internal/model"
	"github.com/sells-group/water-atlas/internal/state"
	"github.com/sells-group/water-atlas/internal/urlstate"
	"github.com/sells-group/water-atlas/internal/waterdata"
)

// Service holds what sessions share: the dataset cache and the boundaries.
type Service struct {
	loader     *waterdata.Loader
	boundaries *boundaries.Boundaries
	reducer    *state.Reducer
	thresholds model.ThresholdSet
}

// NewService creates a service. thresholds seed every new session.
func NewService(loader *waterdata.Loader, b *boundaries.Boundaries, thresholds model.ThresholdSet) *Service {
	return &Service{
		loader:     loader,
		boundaries: b,
		reducer:    state.NewReducer(loader.Catalog()),
		thresholds: thresholds,
	}
}

// NewFetcher builds the rate-limited HTTP fetcher described by fc.
func NewFetcher(fc config.FetchConfig) *fetcher.HTTPFetcher {
	return fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		UserAgent:   fc.UserAgent,
		Timeout:     fc.Timeout(),
		MaxRetries:  fc.MaxRetries,
		RatePerHost: fc.RatePerHost,
		Burst:       fc.Burst,
	})
}

// BoundarySource returns the boundary file locations of dc.
func BoundarySource(dc config.DataConfig) boundaries.Source {
	return boundaries.Source{WaterRegions: dc.WaterRegions, WorldRegions: dc.WorldRegions}
}

// FromConfig builds the fetcher, loader and boundaries described by cfg.
func FromConfig(ctx context.Context, cfg *config.Config) (*Service, error) {
	thresholds, err := cfg.Thresholds.Set()
	if err != nil {
		return nil, err
	}

	f := NewFetcher(cfg.Fetch)
	b, err := boundaries.Fetch(ctx, f, BoundarySource(cfg.Data))
	if err != nil {
		return nil, eris.Wrap(err, "atlas: load boundaries")
	}

	loader := waterdata.NewLoader(f, catalog.Default(), cfg.Data.BaseURL)
	zap.L().Info("atlas service ready",
		zap.String("base_url", cfg.Data.BaseURL),
		zap.Int("catalog_entries", len(loader.Catalog().Entries)),
	)
	return NewService(loader, b, thresholds), nil
}

// Catalog returns the dataset catalog.
func (svc *Service) Catalog() *catalog.Catalog {
	return svc.loader.Catalog()
}

// Loader returns the shared dataset loader.
func (svc *Service) Loader() *waterdata.Loader {
	return svc.loader
}

// Boundaries returns the shared region geometry.
func (svc *Service) Boundaries() *boundaries.Boundaries {
	return svc.boundaries
}

// NewSession starts a session from the defaults merged with fragment. Bad
// fragment fields are dropped and returned.
func (svc *Service) NewSession(fragment string) (*Session, []*urlstate.FieldError) {
	initial, errs := urlstate.Restore(svc.reducer, state.New(state.DefaultSelections(), svc.thresholds), fragment)
	return newSession(svc, initial), errs
}
