package core

import (
	"errors"
	"math"
)

// EarthRadiusKm is the mean Earth radius used by DefaultPlanet (kilometres).
const EarthRadiusKm = 6371.0

// DefaultGuardRadiusKm is the radius of the arrival sphere placed around a
// line-of-sight target so the target itself never counts as an obstruction.
const DefaultGuardRadiusKm = 0.1

// surfaceEpsilon is the relative tolerance on |p-c|^2 - r^2 under which a
// point counts as lying on the planet surface. On Earth it is about 3 mm.
const surfaceEpsilon = 1e-9

// ErrDegenerateRay is returned when a ray is requested between two
// coincident points.
var ErrDegenerateRay = errors.New("degenerate ray: zero-length direction")

// Vec3 is an ECEF-style vector in kilometres.
type Vec3 struct {
	X, Y, Z float64
}

// Add returns v + other.
func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{X: v.X + other.X, Y: v.Y + other.Y, Z: v.Z + other.Z}
}

// Sub returns v - other.
func (v Vec3) Sub(other Vec3) Vec3 {
	return Vec3{X: v.X - other.X, Y: v.Y - other.Y, Z: v.Z - other.Z}
}

// Scale returns v multiplied by k.
func (v Vec3) Scale(k float64) Vec3 {
	return Vec3{X: v.X * k, Y: v.Y * k, Z: v.Z * k}
}

// Dot returns the dot product of two vectors.
func (v Vec3) Dot(other Vec3) float64 {
	return v.X*other.X + v.Y*other.Y + v.Z*other.Z
}

// Norm returns the Euclidean norm of the vector.
func (v Vec3) Norm() float64 {
	return math.Sqrt(v.Dot(v))
}

// Normalize returns the unit vector pointing along v. The zero vector is
// returned unchanged.
func (v Vec3) Normalize() Vec3 {
	n := v.Norm()
	if n == 0 {
		return v
	}
	return v.Scale(1 / n)
}

// DistanceTo returns the straight-line distance between two points.
func (v Vec3) DistanceTo(other Vec3) float64 {
	return v.Sub(other).Norm()
}

// Sphere is a solid ball in ECEF kilometres.
type Sphere struct {
	Center Vec3
	Radius float64
}

// Ray is a half-line with a unit-length direction.
type Ray struct {
	Origin    Vec3
	Direction Vec3
}

// NewRay builds a ray starting at from and heading towards to.
func NewRay(from, to Vec3) (Ray, error) {
	d := to.Sub(from)
	if d.Dot(d) == 0 {
		return Ray{}, ErrDegenerateRay
	}
	return Ray{Origin: from, Direction: d.Normalize()}, nil
}

// At returns the point reached after travelling t kilometres along the ray.
func (r Ray) At(t float64) Vec3 {
	return r.Origin.Add(r.Direction.Scale(t))
}

// TimeOfIntersection returns the smallest non-negative ray parameter at
// which the ray meets the sphere surface. The boolean is false when the ray
// misses the sphere or the sphere lies entirely behind the origin.
func (r Ray) TimeOfIntersection(s Sphere) (float64, bool) {
	// |o + t d - c|^2 = r^2 with |d| = 1:
	// t^2 + 2 t (d·oc) + (|oc|^2 - r^2) = 0
	oc := r.Origin.Sub(s.Center)
	b := r.Direction.Dot(oc)
	c := oc.Dot(oc) - s.Radius*s.Radius

	disc := b*b - c
	if disc < 0 {
		return 0, false
	}
	sq := math.Sqrt(disc)

	t0 := -b - sq
	t1 := -b + sq
	if t0 >= 0 {
		return t0, true
	}
	if t1 >= 0 {
		// Origin sits inside the sphere.
		return t1, true
	}
	return 0, false
}

// Planet describes the spherical obstructing body together with the guard
// radius used when testing visibility.
type Planet struct {
	Center        Vec3
	RadiusKm      float64
	GuardRadiusKm float64
}

// DefaultPlanet returns an Earth-sized body centred at the origin.
func DefaultPlanet() Planet {
	return Planet{
		RadiusKm:      EarthRadiusKm,
		GuardRadiusKm: DefaultGuardRadiusKm,
	}
}

// Sphere returns the obstructing body as a Sphere.
func (p Planet) Sphere() Sphere {
	return Sphere{Center: p.Center, Radius: p.RadiusKm}
}

// Contains reports whether pos lies inside or on the body surface.
func (p Planet) Contains(pos Vec3) bool {
	d := pos.Sub(p.Center)
	return d.Dot(d) <= p.RadiusKm*p.RadiusKm
}

// OnSurface reports whether pos lies on the body surface, within a
// relative tolerance of surfaceEpsilon on the squared radius.
func (p Planet) OnSurface(pos Vec3) bool {
	d := pos.Sub(p.Center)
	r2 := p.RadiusKm * p.RadiusKm
	return math.Abs(d.Dot(d)-r2) <= surfaceEpsilon*r2
}

// HasLineOfSight reports whether a ray cast from a towards b reaches the
// guard sphere around b before it meets the planet.
//
// A ray starting on the surface touches the planet at its origin. That
// contact is ignored when the ray heads outward, where nothing else can
// block it, and blocks the ray when it heads into the body.
//
// Only the target is wrapped in a guard sphere, so for rays grazing the
// surface within the guard radius HasLineOfSight(a, b) and
// HasLineOfSight(b, a) may disagree.
func (p Planet) HasLineOfSight(a, b Vec3) (bool, error) {
	ray, err := NewRay(a, b)
	if err != nil {
		return false, err
	}

	if p.OnSurface(a) {
		return ray.Direction.Dot(a.Sub(p.Center)) >= 0, nil
	}

	earthToi, hitsBody := ray.TimeOfIntersection(p.Sphere())
	if !hitsBody {
		return true, nil
	}

	guardToi, hitsGuard := ray.TimeOfIntersection(Sphere{Center: b, Radius: p.GuardRadiusKm})
	return hitsGuard && guardToi < earthToi, nil
}

// PositionAt converts geodetic-style latitude/longitude (degrees) and an
// altitude above the surface (km) into an ECEF position on this body.
func (p Planet) PositionAt(latitudeDeg, longitudeDeg, altitudeKm float64) Vec3 {
	lat := latitudeDeg * math.Pi / 180
	long := longitudeDeg * math.Pi / 180

	normal := Vec3{
		X: math.Cos(lat) * math.Cos(long),
		Y: math.Cos(lat) * math.Sin(long),
		Z: math.Sin(lat),
	}
	return p.Center.Add(normal.Scale(p.RadiusKm + altitudeKm))
}

// inflate pushes pos radially away from the planet centre by marginKm.
func (p Planet) inflate(pos Vec3, marginKm float64) Vec3 {
	radial := pos.Sub(p.Center)
	if radial.Dot(radial) == 0 {
		return pos
	}
	return pos.Add(radial.Normalize().Scale(marginKm))
}
