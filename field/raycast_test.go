package field

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/heightfield/encoding"
	"github.com/arloliu/heightfield/geom"
	"github.com/arloliu/heightfield/material"
)

// planeStore builds a 32x32 flat plane at height 1 with a handful of holes,
// placed under a non-trivial offset and scale.
func planeStore(t *testing.T) (*Store, [][2]int) {
	t.Helper()

	holes := [][2]int{
		{3, 3}, {7, 12}, {12, 5}, {17, 20}, {20, 9},
		{25, 25}, {5, 28}, {28, 3}, {14, 14}, {9, 22},
	}

	samples := flatGrid(32, 1)
	for _, h := range holes {
		samples[h[1]*32+h[0]] = encoding.NoCollision
	}

	s, err := New(samples, 32, WithBlockSize(4), WithTolerance(0),
		WithOffset(mgl32.Vec3{3, 5, 7}),
		WithScale(mgl32.Vec3{9, 13, 17}))
	require.NoError(t, err)

	return s, holes
}

// cellCenterDownRay aims straight down at the world-space center of cell
// (cx, cy) from well above the surface, long enough to pass through it.
func cellCenterDownRay(cx, cy int) geom.Ray {
	return geom.Ray{
		Origin:    mgl32.Vec3{3 + 9*(float32(cx)+0.5), 100, 7 + 17*(float32(cy)+0.5)},
		Direction: mgl32.Vec3{0, -200, 0},
	}
}

func holeTouchesCell(holes [][2]int, cx, cy int) bool {
	for _, h := range holes {
		if h[0] >= cx && h[0] <= cx+1 && h[1] >= cy && h[1] <= cy+1 {
			return true
		}
	}

	return false
}

func TestCastRay_PlaneHitsEveryIntactCell(t *testing.T) {
	s, holes := planeStore(t)

	// The plane sits at world height 5 + 13*1 = 18.
	const surfaceY = 18

	for cy := 0; cy < 31; cy++ {
		for cx := 0; cx < 31; cx++ {
			hit, ok := s.CastRay(cellCenterDownRay(cx, cy))
			if holeTouchesCell(holes, cx, cy) {
				require.False(t, ok, "cell (%d, %d) borders a hole", cx, cy)

				continue
			}

			require.True(t, ok, "cell (%d, %d)", cx, cy)
			require.Equal(t, cx, hit.CellX)
			require.Equal(t, cy, hit.CellY)
			require.InDelta(t, (100.0-surfaceY)/200.0, hit.Fraction, 1e-5)
			require.InDelta(t, surfaceY, hit.Position.Y(), 1e-3)
			require.Same(t, material.Default, hit.Material)
		}
	}
}

func TestCastRay_SegmentStopsShort(t *testing.T) {
	s, _ := planeStore(t)

	r := geom.Ray{
		Origin:    mgl32.Vec3{3 + 9*10.5, 100, 7 + 17*10.5},
		Direction: mgl32.Vec3{0, -50, 0}, // ends at y=50, above the surface
	}
	_, ok := s.CastRay(r)
	require.False(t, ok)
}

func TestCastRay_MissesOutsideGrid(t *testing.T) {
	s, _ := planeStore(t)

	r := geom.Ray{
		Origin:    mgl32.Vec3{3 - 50, 100, 7 - 50},
		Direction: mgl32.Vec3{0, -200, 0},
	}
	_, ok := s.CastRay(r)
	require.False(t, ok)
}

func TestCastRay_HitsFromBelow(t *testing.T) {
	s, _ := planeStore(t)

	r := geom.Ray{
		Origin:    mgl32.Vec3{3 + 9*10.5, 0, 7 + 17*10.5},
		Direction: mgl32.Vec3{0, 100, 0},
	}
	hit, ok := s.CastRay(r)
	require.True(t, ok)
	require.InDelta(t, 0.18, hit.Fraction, 1e-5)
}

func TestCastRay_SlantedTerrainClosestHit(t *testing.T) {
	// A valley: height rises with |x - 7.5|. A diagonal ray steeper than
	// the slope must report its first surface crossing on the near side,
	// and the reported point must lie on the surface.
	samples := make([]float32, 16*16)
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			d := float32(x) - 7.5
			if d < 0 {
				d = -d
			}
			samples[y*16+x] = d
		}
	}

	s, err := New(samples, 16, WithBlockSize(4), WithTolerance(0))
	require.NoError(t, err)

	r := geom.Ray{
		Origin:    mgl32.Vec3{1, 10, 8},
		Direction: mgl32.Vec3{14, -28, 0},
	}
	hit, ok := s.CastRay(r)
	require.True(t, ok)

	// The hit must lie on the descending slope (x < 7.5) where the ray
	// first reaches the surface.
	require.Less(t, hit.Position.X(), float32(7.5))

	// And it must actually lie on the surface within quantization error.
	d := hit.Position.X() - 7.5
	if d < 0 {
		d = -d
	}
	require.InDelta(t, d, hit.Position.Y(), 1e-2)
}

func TestCastRay_EmptyStoreNeverHits(t *testing.T) {
	s, err := New(flatGrid(8, encoding.NoCollision), 8, WithBlockSize(4))
	require.NoError(t, err)

	_, ok := s.CastRay(geom.Ray{
		Origin:    mgl32.Vec3{4, 10, 4},
		Direction: mgl32.Vec3{0, -20, 0},
	})
	require.False(t, ok)
}

func TestCastRay_ReflectsHeightEdits(t *testing.T) {
	s, err := New(flatGrid(16, 1), 16, WithBlockSize(4), WithTolerance(0))
	require.NoError(t, err)

	down := geom.Ray{
		Origin:    mgl32.Vec3{6.5, 100, 6.5},
		Direction: mgl32.Vec3{0, -200, 0},
	}

	hit, ok := s.CastRay(down)
	require.True(t, ok)
	require.InDelta(t, (100.0-1.0)/200.0, hit.Fraction, 1e-5)

	// Raise the block under the ray and cast again.
	raised := flatGrid(4, 50)
	require.NoError(t, s.SetHeights(4, 4, 4, 4, raised, nil))

	hit, ok = s.CastRay(down)
	require.True(t, ok)
	require.InDelta(t, (100.0-50.0)/200.0, hit.Fraction, 1e-5)

	// Punch the cell out and the ray falls through to nothing.
	holes := flatGrid(4, encoding.NoCollision)
	require.NoError(t, s.SetHeights(4, 4, 4, 4, holes, nil))

	_, ok = s.CastRay(down)
	require.False(t, ok)
}

func TestCastRay_ReportsEditedMaterials(t *testing.T) {
	grass := material.NewSimple("grass")
	rock := material.NewSimple("rock")

	s, err := New(flatGrid(8, 1), 8, WithBlockSize(4), WithTolerance(0),
		WithMaterials(material.List{grass}, nil))
	require.NoError(t, err)

	require.NoError(t, s.SetMaterials(2, 2, 1, 1, []uint8{0}, material.List{rock}, nil))

	down := geom.Ray{
		Origin:    mgl32.Vec3{2.5, 10, 2.5},
		Direction: mgl32.Vec3{0, -20, 0},
	}
	hit, ok := s.CastRay(down)
	require.True(t, ok)
	require.Equal(t, 2, hit.CellX)
	require.Equal(t, 2, hit.CellY)
	require.Same(t, material.Material(rock), hit.Material)

	next := geom.Ray{
		Origin:    mgl32.Vec3{4.5, 10, 2.5},
		Direction: mgl32.Vec3{0, -20, 0},
	}
	hit, ok = s.CastRay(next)
	require.True(t, ok)
	require.Same(t, material.Material(grass), hit.Material)
}

func TestCastRay_ExactVertexHit(t *testing.T) {
	s, err := New(flatGrid(8, 1), 8, WithBlockSize(4), WithTolerance(0))
	require.NoError(t, err)

	// Straight down through the shared corner of four cells.
	r := geom.Ray{
		Origin:    mgl32.Vec3{4, 10, 4},
		Direction: mgl32.Vec3{0, -20, 0},
	}
	hit, ok := s.CastRay(r)
	require.True(t, ok)
	require.InDelta(t, 0.45, hit.Fraction, 1e-4)
}
