package heightfield

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/heightfield/field"
	"github.com/arloliu/heightfield/format"
	"github.com/arloliu/heightfield/geom"
	"github.com/arloliu/heightfield/material"
)

// TestTerrainLifecycle walks a height field through its whole life: build,
// query, ray cast, edit heights and materials, snapshot and restore.
func TestTerrainLifecycle(t *testing.T) {
	const n = 32

	samples := make([]float32, n*n)
	for i := range samples {
		samples[i] = 1
	}
	holes := [][2]int{{3, 3}, {17, 20}, {25, 25}}
	for _, h := range holes {
		samples[h[1]*n+h[0]] = NoCollision
	}

	grass := material.NewSimple("grass")
	rock := material.NewSimple("rock")

	hf, err := New(samples, n,
		field.WithBlockSize(4),
		field.WithTolerance(0),
		field.WithOffset(mgl32.Vec3{3, 5, 7}),
		field.WithScale(mgl32.Vec3{9, 13, 17}),
		field.WithMaterials(material.List{grass}, nil))
	require.NoError(t, err)

	// A flat plane with holes still packs at one bit per sample.
	require.Equal(t, float32(1), hf.Stats().MeanBitsPerSample)

	// Exact positions under offset and scale.
	pos, ok := hf.Position(10, 20)
	require.True(t, ok)
	require.Equal(t, mgl32.Vec3{3 + 9*10, 5 + 13*1, 7 + 17*20}, pos)

	for _, h := range holes {
		require.True(t, hf.IsNoCollision(h[0], h[1]))
		_, ok := hf.Position(h[0], h[1])
		require.False(t, ok)
	}

	// Ray casting hits the plane at world height 18.
	down := geom.Ray{
		Origin:    mgl32.Vec3{3 + 9*10.5, 100, 7 + 17*10.5},
		Direction: mgl32.Vec3{0, -200, 0},
	}
	hit, ok := hf.CastRay(down)
	require.True(t, ok)
	require.InDelta(t, 0.41, hit.Fraction, 1e-5)
	require.Same(t, material.Material(grass), hit.Material)

	// Rays over a hole fall through.
	overHole := geom.Ray{
		Origin:    mgl32.Vec3{3 + 9*3.0, 100, 7 + 17*3.0},
		Direction: mgl32.Vec3{0, -200, 0},
	}
	_, ok = hf.CastRay(overHole)
	require.False(t, ok)

	// Raise a plateau and re-cast.
	plateau := make([]float32, 16)
	for i := range plateau {
		plateau[i] = 4
	}
	require.NoError(t, hf.SetHeights(8, 8, 4, 4, plateau, nil))

	onPlateau := geom.Ray{
		Origin:    mgl32.Vec3{3 + 9*9.5, 100, 7 + 17*9.5},
		Direction: mgl32.Vec3{0, -200, 0},
	}
	hit, ok = hf.CastRay(onPlateau)
	require.True(t, ok)
	require.InDelta(t, (100.0-(5.0+13*4))/200.0, hit.Fraction, 1e-5)

	// Mark the plateau's cells as rock.
	rockIdx := make([]uint8, 9)
	require.NoError(t, hf.SetMaterials(8, 8, 3, 3, rockIdx, material.List{rock}, nil))

	hit, ok = hf.CastRay(onPlateau)
	require.True(t, ok)
	require.Same(t, material.Material(rock), hit.Material)

	// Snapshot, restore, and confirm everything survived.
	data, err := hf.Snapshot(field.WithSnapshotCompression(format.CompressionZstd))
	require.NoError(t, err)

	restored, err := Restore(data, hf.MaterialList())
	require.NoError(t, err)

	hit, ok = restored.CastRay(onPlateau)
	require.True(t, ok)
	require.InDelta(t, (100.0-(5.0+13*4))/200.0, hit.Fraction, 1e-5)
	require.Same(t, material.Material(rock), hit.Material)

	for _, h := range holes {
		require.True(t, restored.IsNoCollision(h[0], h[1]))
	}
}

func TestBitsForTolerance_GuidesFixedWidth(t *testing.T) {
	const n = 16

	samples := make([]float32, n*n)
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			samples[y*n+x] = float32(x) * 0.5
		}
	}

	bits, err := BitsForTolerance(samples, n, 4, 0.1)
	require.NoError(t, err)

	hf, err := New(samples, n, field.WithBlockSize(4), field.WithBitsPerSample(bits))
	require.NoError(t, err)

	out := make([]float32, n*n)
	require.NoError(t, hf.Heights(0, 0, n, n, out, n))
	for i, want := range samples {
		require.InDelta(t, want, out[i], 0.1+1e-5, "sample %d", i)
	}
}
