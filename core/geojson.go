package core

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// PathFeatureCollection renders a path through g as GeoJSON: one
// LineString feature tracing the hops over the ground, followed by one
// Point feature per hop carrying its ID, position in the path and altitude.
func PathFeatureCollection(g *Graph, path []int) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	if len(path) == 0 {
		return fc
	}

	line := make(orb.LineString, 0, len(path))
	for _, idx := range path {
		loc := g.Nodes[idx].Location
		line = append(line, orb.Point{loc.Longitude, loc.Latitude})
	}
	track := geojson.NewFeature(line)
	track.Properties["kind"] = "relay-path"
	track.Properties["hops"] = len(path) - 1
	track.Properties["cost_km"] = g.PathCost(path)
	fc.Append(track)

	for i, idx := range path {
		loc := g.Nodes[idx].Location
		f := geojson.NewFeature(orb.Point{loc.Longitude, loc.Latitude})
		f.ID = loc.ID
		f.Properties["id"] = loc.ID
		f.Properties["order"] = i
		f.Properties["altitude_km"] = loc.AltitudeKm
		fc.Append(f)
	}
	return fc
}
