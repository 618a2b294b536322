// Package waterdata resolves model selections to dataset files, downloads
// them and parses them into raw FPU time series.
package waterdata

import (
	"context"
	"net/url"
	"path/filepath"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/water-atlas/internal/catalog"
	"github.com/sells-group/water-atlas/internal/fetcher"
	"github.com/sells-group/water-atlas/internal/model"
	"github.com/sells-group/water-atlas/internal/transform"
)

// Loader fetches datasets and caches them by scenario key. A cached dataset
// is never refetched or mutated. Loader is safe for concurrent use.
type Loader struct {
	fetcher fetcher.Fetcher
	catalog *catalog.Catalog
	baseURL string

	mu       sync.Mutex
	cache    map[string]*model.Dataset
	inFlight map[string]time.Time
}

// NewLoader creates a Loader that resolves catalog filenames against baseURL,
// which may be an http(s) URL or a local directory.
func NewLoader(f fetcher.Fetcher, cat *catalog.Catalog, baseURL string) *Loader {
	return &Loader{
		fetcher:  f,
		catalog:  cat,
		baseURL:  baseURL,
		cache:    make(map[string]*model.Dataset),
		inFlight: make(map[string]time.Time),
	}
}

// Catalog returns the catalog the loader resolves against.
func (l *Loader) Catalog() *catalog.Catalog {
	return l.catalog
}

// Cached returns a previously fetched dataset.
func (l *Loader) Cached(key string) (*model.Dataset, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	d, ok := l.cache[key]
	return d, ok
}

// InFlight reports whether a fetch for key is running.
func (l *Loader) InFlight(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.inFlight[key]
	return ok
}

// FetchHistoricalData returns the historical series for the selection.
func (l *Loader) FetchHistoricalData(ctx context.Context, climate catalog.ClimateModel, impact catalog.ImpactModel, ts catalog.TimeScale) (*model.Dataset, error) {
	key := catalog.HistoricalKey(climate, impact, ts)
	return l.load(ctx, key, func() (catalog.Entry, error) {
		return l.catalog.LookupHistorical(climate, impact, ts)
	})
}

// FetchFutureData returns the projection series for the scenario.
func (l *Loader) FetchFutureData(ctx context.Context, s catalog.FutureScenario) (*model.Dataset, error) {
	return l.load(ctx, s.Key(), func() (catalog.Entry, error) {
		return l.catalog.LookupFuture(s)
	})
}

func (l *Loader) load(ctx context.Context, key string, lookup func() (catalog.Entry, error)) (*model.Dataset, error) {
	l.mu.Lock()
	if d, ok := l.cache[key]; ok {
		l.mu.Unlock()
		return d, nil
	}
	if started, ok := l.inFlight[key]; ok {
		l.mu.Unlock()
		zap.L().Error("waterdata: concurrent fetch for the same request",
			zap.String("key", key),
			zap.Time("first_started", started),
		)
		return nil, eris.Wrapf(ErrRequestInFlight, "key %s", key)
	}
	l.inFlight[key] = time.Now()
	l.mu.Unlock()

	defer func() {
		l.mu.Lock()
		delete(l.inFlight, key)
		l.mu.Unlock()
	}()

	entry, err := lookup()
	if err != nil {
		return nil, &Error{Kind: KindLookup, Key: key, Err: err}
	}

	location, err := l.locate(entry.Filename)
	if err != nil {
		return nil, &Error{Kind: KindLookup, Key: key, Err: err}
	}

	start := time.Now()
	body, err := fetcher.Open(ctx, l.fetcher, location)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Key: key, Err: err}
	}
	defer body.Close() //nolint:errcheck

	records, err := fetcher.DecodeJSONArray[model.RawRegionDatum](ctx, body)
	if err != nil {
		if ctx.Err() != nil {
			return nil, &Error{Kind: KindNetwork, Key: key, Err: err}
		}
		return nil, &Error{Kind: KindParse, Key: key, Err: err}
	}

	d := &model.Dataset{Key: key, Series: transform.GroupByStartYear(records)}

	l.mu.Lock()
	l.cache[key] = d
	l.mu.Unlock()

	zap.L().Info("dataset loaded",
		zap.String("key", key),
		zap.String("file", entry.Filename),
		zap.Int("records", len(records)),
		zap.Int("buckets", d.Series.Len()),
		zap.Duration("elapsed", time.Since(start)),
	)
	return d, nil
}

func (l *Loader) locate(filename string) (string, error) {
	if fetcher.IsRemote(l.baseURL) {
		u, err := url.JoinPath(l.baseURL, filename)
		if err != nil {
			return "", eris.Wrapf(err, "join %s and %s", l.baseURL, filename)
		}
		return u, nil
	}
	return filepath.Join(l.baseURL, filename), nil
}
