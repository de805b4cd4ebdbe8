package core

import (
	"github.com/dhconnelly/rtreego"
)

// pointTolerance gives each indexed location a tiny non-degenerate box;
// rtreego rejects zero-length rectangle sides.
const pointTolerance = 1e-6

// locationEntry wraps a location and its graph index for R-tree storage.
type locationEntry struct {
	index int
	loc   *Location
	bbox  rtreego.Rect
}

// Bounds implements rtreego.Spatial.
func (e *locationEntry) Bounds() rtreego.Rect {
	return e.bbox
}

// SpatialIndex answers "which locations lie within a cube around p" queries
// over a fixed set of locations.
type SpatialIndex struct {
	tree *rtreego.Rtree
}

// NewSpatialIndex indexes locations by their ECEF position. The slice
// position of each location is preserved as its index.
func NewSpatialIndex(locations []*Location) *SpatialIndex {
	tree := rtreego.NewTree(3, 25, 50)
	for i, loc := range locations {
		if loc == nil {
			continue
		}
		p := rtreego.Point{loc.Position.X, loc.Position.Y, loc.Position.Z}
		tree.Insert(&locationEntry{
			index: i,
			loc:   loc,
			bbox:  p.ToRect(pointTolerance),
		})
	}
	return &SpatialIndex{tree: tree}
}

// Size returns the number of indexed locations.
func (si *SpatialIndex) Size() int {
	return si.tree.Size()
}

// Within returns the indices of locations whose position lies inside the
// axis-aligned cube of half-width halfWidthKm centred at center. The result
// is a superset of the locations within a sphere of that radius.
func (si *SpatialIndex) Within(center Vec3, halfWidthKm float64) []int {
	if halfWidthKm <= 0 {
		return nil
	}
	side := 2 * halfWidthKm
	bbox, err := rtreego.NewRect(
		rtreego.Point{center.X - halfWidthKm, center.Y - halfWidthKm, center.Z - halfWidthKm},
		[]float64{side, side, side},
	)
	if err != nil {
		return nil
	}

	results := si.tree.SearchIntersect(bbox)
	out := make([]int, 0, len(results))
	for _, item := range results {
		out = append(out, item.(*locationEntry).index)
	}
	return out
}
