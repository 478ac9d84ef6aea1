package geom

import "github.com/go-gl/mathgl/mgl32"

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// IntersectsRay reports whether the ray overlaps the box anywhere in the
// fraction interval [0, tMax], using the slab method. Zero direction
// components degenerate to a containment test on that axis.
func (b AABB) IntersectsRay(r Ray, tMax float32) bool {
	tEnter := float32(0)
	tExit := tMax

	for i := 0; i < 3; i++ {
		d := r.Direction[i]
		if d == 0 {
			if r.Origin[i] < b.Min[i] || r.Origin[i] > b.Max[i] {
				return false
			}

			continue
		}

		inv := 1 / d
		t1 := (b.Min[i] - r.Origin[i]) * inv
		t2 := (b.Max[i] - r.Origin[i]) * inv
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tEnter {
			tEnter = t1
		}
		if t2 < tExit {
			tExit = t2
		}
		if tEnter > tExit {
			return false
		}
	}

	return true
}
