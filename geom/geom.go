// Package geom provides the small amount of ray geometry the height field
// needs: rays, axis-aligned boxes and triangle intersection over mgl32
// vectors.
package geom

import "github.com/go-gl/mathgl/mgl32"

// Ray is a parametric segment Origin + t*Direction with t in [0, 1] for the
// purposes of collision queries. Direction carries the segment length; it is
// not normalized.
type Ray struct {
	Origin    mgl32.Vec3
	Direction mgl32.Vec3
}

// PointAt returns the point at fraction t along the ray.
func (r Ray) PointAt(t float32) mgl32.Vec3 {
	return r.Origin.Add(r.Direction.Mul(t))
}

// MulElem returns the component-wise product of a and b.
func MulElem(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{a[0] * b[0], a[1] * b[1], a[2] * b[2]}
}

// DivElem returns the component-wise quotient a / b.
func DivElem(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{a[0] / b[0], a[1] / b[1], a[2] / b[2]}
}
