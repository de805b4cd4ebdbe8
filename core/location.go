package core

import (
	"errors"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

// Synthetic IDs given to the route endpoints when they are inserted into a
// network as pseudo-locations.
const (
	RouteStartID = "ROUTE-START"
	RouteEndID   = "ROUTE-END"
)

// DefaultRouteMarginKm lifts route endpoints off the surface so they are
// never treated as touching the planet.
const DefaultRouteMarginKm = 0.1

// ErrEmptyLocationID is returned when a location is built without an ID.
var ErrEmptyLocationID = errors.New("empty location ID")

// Location is an identified relay point. It is immutable once built;
// identity is by pointer / graph index, never by position.
type Location struct {
	ID string

	// Source coordinates, kept for reporting and GeoJSON export.
	Latitude   float64
	Longitude  float64
	AltitudeKm float64

	// Position is the ECEF position in kilometres.
	Position Vec3
}

// NewLocation converts latitude/longitude/altitude on planet into a
// Location.
func NewLocation(planet Planet, id string, latitudeDeg, longitudeDeg, altitudeKm float64) (*Location, error) {
	if id == "" {
		return nil, ErrEmptyLocationID
	}
	return &Location{
		ID:         id,
		Latitude:   latitudeDeg,
		Longitude:  longitudeDeg,
		AltitudeKm: altitudeKm,
		Position:   planet.PositionAt(latitudeDeg, longitudeDeg, altitudeKm),
	}, nil
}

func (l *Location) String() string {
	return fmt.Sprintf("%s(%.3f, %.3f, %.3f)", l.ID, l.Position.X, l.Position.Y, l.Position.Z)
}

// Route holds the required start and end of a relay path. Both endpoints sit
// on the surface, pushed outward by a small margin.
type Route struct {
	StartLatitude, StartLongitude float64
	EndLatitude, EndLongitude     float64
	MarginKm                      float64

	Start Vec3
	End   Vec3
}

// NewRoute converts the route endpoints into ECEF and inflates them by
// marginKm. A non-positive margin falls back to DefaultRouteMarginKm.
func NewRoute(planet Planet, marginKm, startLat, startLong, endLat, endLong float64) *Route {
	if marginKm <= 0 {
		marginKm = DefaultRouteMarginKm
	}
	return &Route{
		StartLatitude:  startLat,
		StartLongitude: startLong,
		EndLatitude:    endLat,
		EndLongitude:   endLong,
		MarginKm:       marginKm,
		Start:          planet.inflate(planet.PositionAt(startLat, startLong, 0), marginKm),
		End:            planet.inflate(planet.PositionAt(endLat, endLong, 0), marginKm),
	}
}

// Endpoints returns the route start and end as pseudo-locations that can be
// appended to a relay set before building a network.
func (r *Route) Endpoints() (start, end *Location) {
	start = &Location{
		ID:         RouteStartID,
		Latitude:   r.StartLatitude,
		Longitude:  r.StartLongitude,
		AltitudeKm: r.MarginKm,
		Position:   r.Start,
	}
	end = &Location{
		ID:         RouteEndID,
		Latitude:   r.EndLatitude,
		Longitude:  r.EndLongitude,
		AltitudeKm: r.MarginKm,
		Position:   r.End,
	}
	return start, end
}

// GroundDistanceKm returns the great-circle distance between the route
// endpoints.
func (r *Route) GroundDistanceKm() float64 {
	from := orb.Point{r.StartLongitude, r.StartLatitude}
	to := orb.Point{r.EndLongitude, r.EndLatitude}
	return geo.DistanceHaversine(from, to) / 1000
}
