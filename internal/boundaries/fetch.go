package boundaries

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/water-atlas/internal/fetcher"
)

// Source names where the two boundary files live. Each location is an
// http(s) URL, a GeoJSON path or a .shp path.
type Source struct {
	WaterRegions string
	WorldRegions string
}

// Fetch retrieves both boundary files concurrently and builds Boundaries.
func Fetch(ctx context.Context, f fetcher.Fetcher, src Source) (*Boundaries, error) {
	var (
		water []WaterRegion
		world []WorldRegion
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		water, err = loadWaterRegions(gctx, f, src.WaterRegions)
		return eris.Wrap(err, "boundaries: water regions")
	})
	g.Go(func() error {
		var err error
		world, err = loadWorldRegions(gctx, f, src.WorldRegions)
		return eris.Wrap(err, "boundaries: world regions")
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	b := New(water, world)
	for _, w := range b.WaterRegions {
		if _, ok := b.WorldRegion(w.WorldRegionID); !ok {
			zap.L().Warn("boundaries: FPU refers to unknown world region",
				zap.Int("feature_id", w.ID),
				zap.Int("world_region_id", w.WorldRegionID),
			)
		}
	}
	zap.L().Info("boundaries loaded",
		zap.Int("water_regions", len(b.WaterRegions)),
		zap.Int("world_regions", len(b.WorldRegions)),
	)
	return b, nil
}

func loadWaterRegions(ctx context.Context, f fetcher.Fetcher, location string) ([]WaterRegion, error) {
	if IsShapefile(location) {
		return ReadWaterRegionsShapefile(location)
	}
	body, err := fetcher.Open(ctx, f, location)
	if err != nil {
		return nil, err
	}
	defer body.Close() //nolint:errcheck
	return DecodeWaterRegions(body)
}

func loadWorldRegions(ctx context.Context, f fetcher.Fetcher, location string) ([]WorldRegion, error) {
	if IsShapefile(location) {
		return ReadWorldRegionsShapefile(location)
	}
	body, err := fetcher.Open(ctx, f, location)
	if err != nil {
		return nil, err
	}
	defer body.Close() //nolint:errcheck
	return DecodeWorldRegions(body)
}
