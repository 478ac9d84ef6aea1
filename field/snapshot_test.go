package field

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/heightfield/encoding"
	"github.com/arloliu/heightfield/errs"
	"github.com/arloliu/heightfield/format"
	"github.com/arloliu/heightfield/internal/hash"
	"github.com/arloliu/heightfield/material"
	"github.com/arloliu/heightfield/section"
)

func snapshotStore(t *testing.T) *Store {
	t.Helper()

	grass := material.NewSimple("grass")
	rock := material.NewSimple("rock")

	samples := rampGrid(16)
	samples[3*16+3] = encoding.NoCollision
	samples[10*16+12] = encoding.NoCollision

	cells := 15
	indices := make([]uint8, cells*cells)
	for i := range indices {
		indices[i] = uint8(i % 2)
	}

	s, err := New(samples, 16,
		WithBlockSize(4),
		WithTolerance(0.05),
		WithOffset(mgl32.Vec3{3, 5, 7}),
		WithScale(mgl32.Vec3{9, 13, 17}),
		WithHeightBounds(-10, 50),
		WithMaterials(material.List{grass, rock}, indices))
	require.NoError(t, err)

	return s
}

func requireStoresEqual(t *testing.T, want, got *Store) {
	t.Helper()

	require.Equal(t, want.SampleCount(), got.SampleCount())
	require.Equal(t, want.BlockSize(), got.BlockSize())
	require.Equal(t, want.Offset(), got.Offset())
	require.Equal(t, want.Scale(), got.Scale())
	require.Equal(t, want.Tolerance(), got.Tolerance())

	// Restore is bit-exact, not merely within tolerance.
	require.Equal(t, decodeAll(t, want), decodeAll(t, got))
	require.Equal(t, materialGrid(t, want), materialGrid(t, got))
	require.Equal(t, want.MaterialList(), got.MaterialList())
	require.Equal(t, want.Stats(), got.Stats())
}

func TestSnapshot_RoundTrip(t *testing.T) {
	for _, ct := range []format.CompressionType{
		format.CompressionNone,
		format.CompressionZstd,
		format.CompressionS2,
		format.CompressionLZ4,
	} {
		t.Run(ct.String(), func(t *testing.T) {
			s := snapshotStore(t)

			data, err := s.Snapshot(WithSnapshotCompression(ct))
			require.NoError(t, err)
			require.Greater(t, len(data), section.HeaderSize)

			restored, err := Restore(data, s.MaterialList())
			require.NoError(t, err)
			requireStoresEqual(t, s, restored)
		})
	}
}

func TestSnapshot_RoundTripBigEndian(t *testing.T) {
	s := snapshotStore(t)

	data, err := s.Snapshot(WithSnapshotBigEndian(),
		WithSnapshotCompression(format.CompressionS2))
	require.NoError(t, err)

	restored, err := Restore(data, s.MaterialList())
	require.NoError(t, err)
	requireStoresEqual(t, s, restored)
}

func TestSnapshot_RoundTripEmptyStore(t *testing.T) {
	s, err := New(flatGrid(8, encoding.NoCollision), 8, WithBlockSize(4))
	require.NoError(t, err)

	data, err := s.Snapshot()
	require.NoError(t, err)
	require.Len(t, data, section.HeaderSize)

	restored, err := Restore(data, nil)
	require.NoError(t, err)
	require.Zero(t, restored.Stats().BlockCount)
	require.True(t, restored.IsNoCollision(4, 4))
}

func TestSnapshot_RestoredStoreIsEditable(t *testing.T) {
	s := snapshotStore(t)

	data, err := s.Snapshot()
	require.NoError(t, err)

	restored, err := Restore(data, s.MaterialList())
	require.NoError(t, err)

	patch := []float32{20, 21, 22, 23}
	require.NoError(t, restored.SetHeights(8, 8, 2, 2, patch, nil))

	got := make([]float32, 4)
	require.NoError(t, restored.Heights(8, 8, 2, 2, got, 2))
	for i, want := range patch {
		require.InDelta(t, want, got[i], 0.05+1e-5, "patch value %d", i)
	}
}

func TestRestore_DefaultMaterialConvenience(t *testing.T) {
	s, err := New(rampGrid(8), 8, WithBlockSize(4))
	require.NoError(t, err)

	data, err := s.Snapshot()
	require.NoError(t, err)

	restored, err := Restore(data, nil)
	require.NoError(t, err)
	require.Equal(t, material.List{material.Default}, restored.MaterialList())
}

func TestRestore_MaterialCountMismatch(t *testing.T) {
	s := snapshotStore(t) // two materials

	data, err := s.Snapshot()
	require.NoError(t, err)

	_, err = Restore(data, nil)
	require.ErrorIs(t, err, errs.ErrMaterialCountMismatch)

	_, err = Restore(data, material.List{material.Default})
	require.ErrorIs(t, err, errs.ErrMaterialCountMismatch)
}

func TestRestore_DetectsCorruption(t *testing.T) {
	s := snapshotStore(t)

	data, err := s.Snapshot()
	require.NoError(t, err)

	t.Run("flipped payload byte", func(t *testing.T) {
		bad := append([]byte(nil), data...)
		bad[section.HeaderSize+10] ^= 0xFF
		_, err := Restore(bad, s.MaterialList())
		require.ErrorIs(t, err, errs.ErrChecksumMismatch)
	})

	t.Run("truncated payload", func(t *testing.T) {
		_, err := Restore(data[:len(data)-5], s.MaterialList())
		require.ErrorIs(t, err, errs.ErrInvalidSnapshot)
	})

	t.Run("truncated header", func(t *testing.T) {
		_, err := Restore(data[:section.HeaderSize-1], s.MaterialList())
		require.ErrorIs(t, err, errs.ErrInvalidSnapshot)
	})

	t.Run("bad magic", func(t *testing.T) {
		bad := append([]byte(nil), data...)
		bad[1] ^= 0xF0
		_, err := Restore(bad, s.MaterialList())
		require.ErrorIs(t, err, errs.ErrInvalidSnapshot)
	})
}

// TestRestore_RejectsForgedMaterialIndices covers corruption the checksum
// cannot catch: a writer that recomputes the checksum over a payload whose
// packed material indices point past the material list. Restore must fail
// instead of handing back a store that panics on Material or CastRay.
func TestRestore_RejectsForgedMaterialIndices(t *testing.T) {
	grass := material.NewSimple("grass")
	rock := material.NewSimple("rock")
	sand := material.NewSimple("sand")

	cells := 7
	indices := make([]uint8, cells*cells)
	for i := range indices {
		indices[i] = uint8(i % 3)
	}

	// Three materials pack at 2 bits, so the all-ones code 3 is out of range.
	s, err := New(rampGrid(8), 8, WithBlockSize(4),
		WithMaterials(material.List{grass, rock, sand}, indices))
	require.NoError(t, err)

	data, err := s.Snapshot()
	require.NoError(t, err)

	hdr, err := section.ParseSnapshotHeader(data)
	require.NoError(t, err)

	t.Run("out-of-range cell index", func(t *testing.T) {
		payload := append([]byte(nil), data[section.HeaderSize:]...)
		for i := len(payload) - 8; i < len(payload); i++ {
			payload[i] = 0xFF
		}

		forged := hdr
		forged.Checksum = hash.Sum64(payload)
		bad := append(forged.Bytes(), payload...)

		_, err := Restore(bad, s.MaterialList())
		require.ErrorIs(t, err, errs.ErrInvalidSnapshot)
	})

	t.Run("material width does not match count", func(t *testing.T) {
		forged := hdr
		forged.MaterialWidth = 1
		bad := append(forged.Bytes(), data[section.HeaderSize:]...)

		_, err := Restore(bad, s.MaterialList())
		require.ErrorIs(t, err, errs.ErrInvalidSnapshot)
	})
}
