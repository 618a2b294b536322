package boundaries

import (
	"strconv"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"
)

// IsShapefile reports whether location names an ESRI shapefile.
func IsShapefile(location string) bool {
	return strings.HasSuffix(strings.ToLower(strings.TrimSpace(location)), ".shp")
}

// readShapefile reads every polygon record with its attributes. Records
// without a polygon geometry or a numeric id are skipped.
func readShapefile(path string, requireParent bool) ([]parsedFeature, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "boundaries: open shapefile %s", path)
	}
	defer func() { _ = reader.Close() }()

	fields := reader.Fields()
	fieldIdx := make(map[string]int, len(fields))
	for i, f := range fields {
		name := strings.TrimRight(f.String(), "\x00")
		fieldIdx[strings.ToLower(name)] = i
	}

	attr := func(keys []string) string {
		for _, k := range keys {
			if idx, ok := fieldIdx[k]; ok {
				return strings.TrimSpace(strings.TrimRight(reader.Attribute(idx), "\x00"))
			}
		}
		return ""
	}

	var out []parsedFeature
	var skipped int
	for reader.Next() {
		_, shape := reader.Shape()

		id, err := strconv.Atoi(attr(idKeys))
		if err != nil {
			skipped++
			continue
		}
		p := parsedFeature{id: id, name: attr(nameKeys)}
		if requireParent {
			parent, err := strconv.Atoi(attr(parentKeys))
			if err != nil {
				skipped++
				continue
			}
			p.parent = parent
		}

		poly, ok := shape.(*shp.Polygon)
		if !ok {
			skipped++
			continue
		}
		if g := polygonToMultiPolygon(poly); g != nil {
			p.geometry = g
		}
		out = append(out, p)
	}

	if skipped > 0 {
		zap.L().Debug("boundaries: skipped shapefile records",
			zap.String("path", path),
			zap.Int("skipped", skipped),
		)
	}
	return out, nil
}

// ReadWaterRegionsShapefile reads FPUs from a local shapefile.
func ReadWaterRegionsShapefile(path string) ([]WaterRegion, error) {
	features, err := readShapefile(path, true)
	if err != nil {
		return nil, err
	}
	regions := make([]WaterRegion, len(features))
	for i, f := range features {
		regions[i] = WaterRegion{ID: f.id, Name: f.name, WorldRegionID: f.parent, Geometry: f.geometry}
	}
	return regions, nil
}

// ReadWorldRegionsShapefile reads world regions from a local shapefile.
func ReadWorldRegionsShapefile(path string) ([]WorldRegion, error) {
	features, err := readShapefile(path, false)
	if err != nil {
		return nil, err
	}
	regions := make([]WorldRegion, len(features))
	for i, f := range features {
		regions[i] = WorldRegion{ID: f.id, Name: f.name, Geometry: f.geometry}
	}
	return regions, nil
}

// polygonToMultiPolygon converts a shapefile Polygon to a geom.MultiPolygon,
// one polygon per part. Returns nil when no part is usable.
func polygonToMultiPolygon(p *shp.Polygon) *geom.MultiPolygon {
	if p == nil || p.NumParts == 0 || len(p.Points) == 0 {
		return nil
	}

	mp := geom.NewMultiPolygon(geom.XY).SetSRID(4326)
	for i := int32(0); i < p.NumParts; i++ {
		start := p.Parts[i]
		end := int32(len(p.Points))
		if i+1 < p.NumParts {
			end = p.Parts[i+1]
		}

		flat := make([]float64, 0, 2*(end-start))
		for j := start; j < end; j++ {
			flat = append(flat, p.Points[j].X, p.Points[j].Y)
		}

		poly := geom.NewPolygon(geom.XY)
		if err := poly.Push(geom.NewLinearRingFlat(geom.XY, flat)); err != nil {
			zap.L().Debug("boundaries: skipping malformed ring", zap.Int32("part", i), zap.Error(err))
			continue
		}
		if err := mp.Push(poly); err != nil {
			zap.L().Debug("boundaries: skipping malformed part", zap.Int32("part", i), zap.Error(err))
			continue
		}
	}

	if mp.NumPolygons() == 0 {
		return nil
	}
	return mp
}
