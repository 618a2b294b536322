package boundaries

import (
	"bytes"
	"encoding/json"
	"io"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"

	"github.com/sells-group/water-atlas/internal/fetcher"
)

// feature is decoded by hand because boundary files carry numeric feature
// ids, which geojson.Feature models as strings.
type feature struct {
	ID         json.RawMessage `json:"id"`
	Properties map[string]any  `json:"properties"`
	Geometry   json.RawMessage `json:"geometry"`
}

type featureCollection struct {
	Type     string    `json:"type"`
	Features []feature `json:"features"`
}

// Property names, matched case-insensitively.
var (
	idKeys     = []string{"featureid", "id"}
	nameKeys   = []string{"name"}
	parentKeys = []string{"worldregionid", "worldregion"}
)

type parsedFeature struct {
	id       int
	name     string
	parent   int
	geometry geom.T
}

func decodeFeatureCollection(r io.Reader, requireParent bool) ([]parsedFeature, error) {
	fc, err := fetcher.DecodeJSONObject[featureCollection](r)
	if err != nil {
		return nil, eris.Wrap(err, "boundaries: decode feature collection")
	}
	if fc.Type != "FeatureCollection" {
		return nil, eris.Errorf("boundaries: expected FeatureCollection, got %q", fc.Type)
	}

	out := make([]parsedFeature, 0, len(fc.Features))
	for i, f := range fc.Features {
		props := lowerKeys(f.Properties)

		id, ok := numberFromRaw(f.ID)
		if !ok {
			id, ok = numberProperty(props, idKeys)
		}
		if !ok {
			zap.L().Warn("boundaries: feature without numeric id, skipping", zap.Int("index", i))
			continue
		}

		p := parsedFeature{id: id, name: stringProperty(props, nameKeys)}
		if requireParent {
			parent, ok := numberProperty(props, parentKeys)
			if !ok {
				zap.L().Warn("boundaries: water region without world region, skipping", zap.Int("id", id))
				continue
			}
			p.parent = parent
		}

		if raw := bytes.TrimSpace(f.Geometry); len(raw) > 0 && !bytes.Equal(raw, []byte("null")) {
			var g geom.T
			if err := geojson.Unmarshal(raw, &g); err != nil {
				return nil, eris.Wrapf(err, "boundaries: decode geometry of feature %d", id)
			}
			p.geometry = g
		}
		out = append(out, p)
	}
	return out, nil
}

// DecodeWaterRegions parses a GeoJSON FeatureCollection of FPUs.
func DecodeWaterRegions(r io.Reader) ([]WaterRegion, error) {
	features, err := decodeFeatureCollection(r, true)
	if err != nil {
		return nil, err
	}
	regions := make([]WaterRegion, len(features))
	for i, f := range features {
		regions[i] = WaterRegion{ID: f.id, Name: f.name, WorldRegionID: f.parent, Geometry: f.geometry}
	}
	return regions, nil
}

// DecodeWorldRegions parses a GeoJSON FeatureCollection of world regions.
func DecodeWorldRegions(r io.Reader) ([]WorldRegion, error) {
	features, err := decodeFeatureCollection(r, false)
	if err != nil {
		return nil, err
	}
	regions := make([]WorldRegion, len(features))
	for i, f := range features {
		regions[i] = WorldRegion{ID: f.id, Name: f.name, Geometry: f.geometry}
	}
	return regions, nil
}

func lowerKeys(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[strings.ToLower(k)] = v
	}
	return out
}

func numberFromRaw(raw json.RawMessage) (int, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, false
	}
	return toInt(v)
}

func numberProperty(props map[string]any, keys []string) (int, bool) {
	for _, k := range keys {
		if v, ok := props[k]; ok {
			if n, ok := toInt(v); ok {
				return n, true
			}
		}
	}
	return 0, false
}

func stringProperty(props map[string]any, keys []string) string {
	for _, k := range keys {
		if s, ok := props[k].(string); ok {
			return s
		}
	}
	return ""
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		if n != float64(int(n)) {
			return 0, false
		}
		return int(n), true
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		return i, err == nil
	}
	return 0, false
}
