package geom

import "github.com/go-gl/mathgl/mgl32"

const (
	// detEpsilon rejects rays parallel to the triangle plane.
	detEpsilon = 1e-9

	// baryEpsilon widens the barycentric bounds slightly so rays passing
	// exactly through a shared vertex or edge register a hit on at least
	// one of the adjoining triangles.
	baryEpsilon = 1e-5
)

// IntersectRayTriangle computes the fraction at which the ray crosses the
// triangle (a, b, c) using the Moller-Trumbore algorithm. Returns false when
// the ray is parallel to or misses the triangle, or hits behind the origin.
// The caller decides whether a fraction beyond 1 is still a hit.
func IntersectRayTriangle(r Ray, a, b, c mgl32.Vec3) (float32, bool) {
	e1 := b.Sub(a)
	e2 := c.Sub(a)

	p := r.Direction.Cross(e2)
	det := e1.Dot(p)
	if det > -detEpsilon && det < detEpsilon {
		return 0, false
	}
	invDet := 1 / det

	s := r.Origin.Sub(a)
	u := s.Dot(p) * invDet
	if u < -baryEpsilon || u > 1+baryEpsilon {
		return 0, false
	}

	q := s.Cross(e1)
	v := r.Direction.Dot(q) * invDet
	if v < -baryEpsilon || u+v > 1+baryEpsilon {
		return 0, false
	}

	t := e2.Dot(q) * invDet
	if t < 0 {
		return 0, false
	}

	return t, true
}
