package field

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/arloliu/heightfield/encoding"
	"github.com/arloliu/heightfield/geom"
	"github.com/arloliu/heightfield/material"
)

// Hit describes the closest intersection found by CastRay.
type Hit struct {
	// Fraction is the hit position along the ray in [0, 1].
	Fraction float32
	// Position is the world-space hit point.
	Position mgl32.Vec3
	// CellX and CellY identify the grid cell whose triangle was hit.
	CellX int
	CellY int
	// Material is the hit cell's material.
	Material material.Material
}

// rangeLevel is one level of the height-range hierarchy. Level 0 has one
// node per block; each level above aggregates 2x2 children until a single
// root remains. A node with min > max covers no live samples.
type rangeLevel struct {
	dim int
	min []float32
	max []float32
}

func emptyRange() (float32, float32) {
	return encoding.NoCollision, -encoding.NoCollision
}

// leafRange measures the height range of block (bx, by) including the
// bordering sample row and column shared with the next block, so the range
// covers every triangle the block's cells can produce.
func (s *Store) leafRange(bx, by int) (minV, maxV float32) {
	minV, maxV = emptyRange()
	x0, y0 := bx*s.blockSize, by*s.blockSize
	x1 := min(x0+s.blockSize, s.sampleCount-1)
	y1 := min(y0+s.blockSize, s.sampleCount-1)
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			h := s.decodeSample(x, y)
			if h == encoding.NoCollision {
				continue
			}
			if h < minV {
				minV = h
			}
			if h > maxV {
				maxV = h
			}
		}
	}

	return minV, maxV
}

// rebuildHierarchy recomputes the full range hierarchy from the packed
// heights. A store with no live samples carries no hierarchy at all.
func (s *Store) rebuildHierarchy() {
	if s.blocks == nil {
		s.hierarchy = nil

		return
	}

	leaf := rangeLevel{
		dim: s.blocksPerRow,
		min: make([]float32, s.blocksPerRow*s.blocksPerRow),
		max: make([]float32, s.blocksPerRow*s.blocksPerRow),
	}
	for by := 0; by < leaf.dim; by++ {
		for bx := 0; bx < leaf.dim; bx++ {
			leaf.min[by*leaf.dim+bx], leaf.max[by*leaf.dim+bx] = s.leafRange(bx, by)
		}
	}

	s.hierarchy = []rangeLevel{leaf}
	s.buildUpperLevels()
}

// buildUpperLevels aggregates hierarchy[0] upward until the top level is a
// single root node.
func (s *Store) buildUpperLevels() {
	s.hierarchy = s.hierarchy[:1]
	for s.hierarchy[len(s.hierarchy)-1].dim > 1 {
		child := s.hierarchy[len(s.hierarchy)-1]
		dim := (child.dim + 1) / 2
		level := rangeLevel{
			dim: dim,
			min: make([]float32, dim*dim),
			max: make([]float32, dim*dim),
		}
		for ny := 0; ny < dim; ny++ {
			for nx := 0; nx < dim; nx++ {
				minV, maxV := emptyRange()
				for cy := ny * 2; cy < min(ny*2+2, child.dim); cy++ {
					for cx := nx * 2; cx < min(nx*2+2, child.dim); cx++ {
						cMin, cMax := child.min[cy*child.dim+cx], child.max[cy*child.dim+cx]
						if cMin > cMax {
							continue
						}
						if cMin < minV {
							minV = cMin
						}
						if cMax > maxV {
							maxV = cMax
						}
					}
				}
				level.min[ny*dim+nx], level.max[ny*dim+nx] = minV, maxV
			}
		}
		s.hierarchy = append(s.hierarchy, level)
	}
}

// refreshHierarchy updates the leaf ranges of the blocks touched by an edit
// and re-aggregates the levels above. The left and top neighbors of the
// touched span share a border sample row or column with it, so they refresh
// too.
func (s *Store) refreshHierarchy(bx0, by0, bx1, by1 int) {
	if s.blocks == nil {
		s.hierarchy = nil

		return
	}
	if s.hierarchy == nil {
		s.rebuildHierarchy()

		return
	}

	leaf := s.hierarchy[0]
	for by := max(by0-1, 0); by <= by1; by++ {
		for bx := max(bx0-1, 0); bx <= bx1; bx++ {
			leaf.min[by*leaf.dim+bx], leaf.max[by*leaf.dim+bx] = s.leafRange(bx, by)
		}
	}
	s.buildUpperLevels()
}

// CastRay finds the closest intersection of the world-space ray segment
// (Origin to Origin+Direction) with the height-field surface. The second
// return is false when nothing is hit within the segment.
func (s *Store) CastRay(ray geom.Ray) (Hit, bool) {
	if s.hierarchy == nil {
		return Hit{}, false
	}

	local := geom.Ray{
		Origin:    geom.DivElem(ray.Origin.Sub(s.offset), s.scale),
		Direction: geom.DivElem(ray.Direction, s.scale),
	}

	best := Hit{Fraction: 2} // beyond any valid fraction
	root := len(s.hierarchy) - 1
	s.castNode(local, root, 0, 0, &best)

	if best.Fraction > 1 {
		return Hit{}, false
	}
	best.Position = ray.PointAt(best.Fraction)
	best.Material = s.materials[s.materialIndex(best.CellX, best.CellY)]

	return best, true
}

// castNode tests the ray against one hierarchy node's bounding box and
// descends into its children, or its block's triangles at the leaf level.
func (s *Store) castNode(r geom.Ray, level, nx, ny int, best *Hit) {
	lvl := s.hierarchy[level]
	minH, maxH := lvl.min[ny*lvl.dim+nx], lvl.max[ny*lvl.dim+nx]
	if minH > maxH {
		return
	}

	span := (1 << level) * s.blockSize
	x0, y0 := nx*span, ny*span
	x1 := min(x0+span, s.sampleCount-1)
	y1 := min(y0+span, s.sampleCount-1)

	limit := best.Fraction
	if limit > 1 {
		limit = 1
	}
	box := geom.AABB{
		Min: mgl32.Vec3{float32(x0), minH, float32(y0)},
		Max: mgl32.Vec3{float32(x1), maxH, float32(y1)},
	}
	if !box.IntersectsRay(r, limit) {
		return
	}

	if level == 0 {
		s.castBlock(r, nx, ny, best)

		return
	}

	childDim := s.hierarchy[level-1].dim
	for cy := ny * 2; cy < min(ny*2+2, childDim); cy++ {
		for cx := nx * 2; cx < min(nx*2+2, childDim); cx++ {
			s.castNode(r, level-1, cx, cy, best)
		}
	}
}

// castBlock tests the ray against the two triangles of every cell in block
// (bx, by). Cells with a hole at any corner have no surface.
func (s *Store) castBlock(r geom.Ray, bx, by int, best *Hit) {
	x0, y0 := bx*s.blockSize, by*s.blockSize
	x1 := min(x0+s.blockSize, s.sampleCount-1)
	y1 := min(y0+s.blockSize, s.sampleCount-1)

	for cy := y0; cy < y1; cy++ {
		for cx := x0; cx < x1; cx++ {
			h00 := s.decodeSample(cx, cy)
			h10 := s.decodeSample(cx+1, cy)
			h01 := s.decodeSample(cx, cy+1)
			h11 := s.decodeSample(cx+1, cy+1)
			if h00 == encoding.NoCollision || h10 == encoding.NoCollision ||
				h01 == encoding.NoCollision || h11 == encoding.NoCollision {
				continue
			}

			v00 := mgl32.Vec3{float32(cx), h00, float32(cy)}
			v10 := mgl32.Vec3{float32(cx + 1), h10, float32(cy)}
			v01 := mgl32.Vec3{float32(cx), h01, float32(cy + 1)}
			v11 := mgl32.Vec3{float32(cx + 1), h11, float32(cy + 1)}

			if t, ok := geom.IntersectRayTriangle(r, v00, v01, v11); ok && t <= 1 && t < best.Fraction {
				best.Fraction, best.CellX, best.CellY = t, cx, cy
			}
			if t, ok := geom.IntersectRayTriangle(r, v00, v11, v10); ok && t <= 1 && t < best.Fraction {
				best.Fraction, best.CellX, best.CellY = t, cx, cy
			}
		}
	}
}
