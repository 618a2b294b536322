// Package boundaries loads the FPU and world-region boundary files and
// derives the FPU to world-region mapping and world-region colors.
package boundaries

import (
	"math"
	"sort"

	"github.com/twpayne/go-geom"
)

// palette is the 20-color categorical scheme used for world regions.
var palette = []string{
	"#1f77b4", "#aec7e8", "#ff7f0e", "#ffbb78", "#2ca02c",
	"#98df8a", "#d62728", "#ff9896", "#9467bd", "#c5b0d5",
	"#8c564b", "#c49c94", "#e377c2", "#f7b6d2", "#7f7f7f",
	"#c7c7c7", "#bcbd22", "#dbdb8d", "#17becf", "#9edae5",
}

// WaterRegion is one food production unit.
type WaterRegion struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	WorldRegionID int    `json:"worldRegionId"`
	Geometry      geom.T `json:"-"`
}

// WorldRegion is a coarse aggregation of FPUs.
type WorldRegion struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Color    string `json:"color"`
	Geometry geom.T `json:"-"`
}

// Extent returns [minX, minY, maxX, maxY] of the region, or nil without a
// geometry.
func (w WorldRegion) Extent() []float64 {
	if w.Geometry == nil {
		return nil
	}
	b := w.Geometry.Bounds()
	if b == nil || math.IsInf(b.Min(0), 0) || math.IsInf(b.Max(0), 0) {
		return nil
	}
	return []float64{b.Min(0), b.Min(1), b.Max(0), b.Max(1)}
}

// Boundaries is immutable once built and shared by every session.
type Boundaries struct {
	WaterRegions []WaterRegion
	WorldRegions []WorldRegion
	// RegionMap maps FPU ids to world-region ids.
	RegionMap map[int]int

	worldByID map[int]int
}

// New sorts the regions by id, assigns world-region colors and builds the
// FPU to world-region map.
func New(water []WaterRegion, world []WorldRegion) *Boundaries {
	water = append([]WaterRegion(nil), water...)
	world = append([]WorldRegion(nil), world...)
	sort.SliceStable(water, func(i, j int) bool { return water[i].ID < water[j].ID })
	sort.SliceStable(world, func(i, j int) bool { return world[i].ID < world[j].ID })

	b := &Boundaries{
		WaterRegions: water,
		WorldRegions: world,
		RegionMap:    make(map[int]int, len(water)),
		worldByID:    make(map[int]int, len(world)),
	}
	for i := range world {
		world[i].Color = ColorFor(i)
		b.worldByID[world[i].ID] = i
	}
	for _, w := range water {
		b.RegionMap[w.ID] = w.WorldRegionID
	}
	return b
}

// ColorFor returns the palette color for the i-th world region in id order.
func ColorFor(i int) string {
	return palette[i%len(palette)]
}

// WorldRegion looks up a world region by id.
func (b *Boundaries) WorldRegion(id int) (WorldRegion, bool) {
	if b == nil {
		return WorldRegion{}, false
	}
	i, ok := b.worldByID[id]
	if !ok {
		return WorldRegion{}, false
	}
	return b.WorldRegions[i], true
}

// HasWaterRegion reports whether id is a known FPU.
func (b *Boundaries) HasWaterRegion(id int) bool {
	if b == nil {
		return false
	}
	_, ok := b.RegionMap[id]
	return ok
}

// WaterRegionName returns the FPU's name, or "" when unknown.
func (b *Boundaries) WaterRegionName(id int) string {
	if b == nil {
		return ""
	}
	i := sort.Search(len(b.WaterRegions), func(i int) bool { return b.WaterRegions[i].ID >= id })
	if i < len(b.WaterRegions) && b.WaterRegions[i].ID == id {
		return b.WaterRegions[i].Name
	}
	return ""
}
