// Package heightfield provides a quantized, block-compressed height-field
// collision surface.
//
// A height field is a square grid of float32 height samples over the XZ
// plane. Heights are quantized per block against the block's local
// (min, max) range at 1 to 8 bits per sample, so flat terrain packs close
// to one bit per sample while rough terrain keeps the precision the
// configured tolerance demands. Samples equal to NoCollision punch holes in
// the surface.
//
// # Core Features
//
//   - Per-block adaptive bit widths (1-8 bits) chosen from an error tolerance
//   - NoCollision holes with exact round-trip through quantization
//   - Localized in-place height edits that re-quantize only touched blocks
//   - Packed per-cell surface materials with identity-merged edits
//   - Ray casting against the decoded triangle surface through a height
//     range hierarchy
//   - Snapshot serialization with optional compression (None, Zstd, S2, LZ4)
//     and xxhash64 checksums
//
// # Basic Usage
//
// Building a height field and casting a ray:
//
//	import "github.com/arloliu/heightfield"
//
//	samples := make([]float32, 64*64)
//	// ... fill samples, heightfield.NoCollision for holes ...
//
//	hf, _ := heightfield.New(samples, 64,
//	    field.WithBlockSize(4),
//	    field.WithTolerance(0.05),
//	)
//
//	hit, ok := hf.CastRay(geom.Ray{
//	    Origin:    mgl32.Vec3{10, 100, 10},
//	    Direction: mgl32.Vec3{0, -200, 0},
//	})
//	if ok {
//	    fmt.Printf("hit at %v, fraction %f\n", hit.Position, hit.Fraction)
//	}
//
// Editing a region in place:
//
//	patch := []float32{1.5, 1.5, heightfield.NoCollision, 1.5}
//	_ = hf.SetHeights(8, 8, 2, 2, patch, nil)
//
// Persisting and restoring:
//
//	data, _ := hf.Snapshot(
//	    field.WithSnapshotCompression(format.CompressionZstd),
//	)
//	restored, _ := heightfield.Restore(data, hf.MaterialList())
//
// # Package Structure
//
// This package provides convenient top-level wrappers around the field
// package, simplifying the most common use cases. For advanced usage and
// fine-grained control, use the field package directly.
package heightfield

import (
	"github.com/arloliu/heightfield/encoding"
	"github.com/arloliu/heightfield/field"
	"github.com/arloliu/heightfield/material"
)

// NoCollision is the reserved height value marking a hole in the surface.
const NoCollision = encoding.NoCollision

// New creates a height-field store from a row-major sampleCount x
// sampleCount grid of heights.
//
// Parameters:
//   - samples: sampleCount² heights, NoCollision for holes; not retained
//   - sampleCount: samples along one grid edge, must tile into blocks
//   - opts: optional configuration functions (see field.Option)
//
// Available options:
//   - field.WithOffset(v) / field.WithScale(v)
//   - field.WithBlockSize(n)
//   - field.WithBitsPerSample(b) / field.WithTolerance(t)
//   - field.WithHeightBounds(min, max)
//   - field.WithMaterials(list, cellIndices)
//   - field.WithParallelQuantization(true)
func New(samples []float32, sampleCount int, opts ...field.Option) (*field.Store, error) {
	return field.New(samples, sampleCount, opts...)
}

// Restore rebuilds a store from field.Store.Snapshot output. materials
// supplies the identities the snapshot's packed indices refer to, in the
// order MaterialList returned them at snapshot time.
func Restore(data []byte, materials material.List) (*field.Store, error) {
	return field.Restore(data, materials)
}

// BitsForTolerance returns the per-sample bit width a store built from
// these samples would need so no block exceeds the given quantization
// tolerance. Useful for sizing storage before committing to a fixed width.
func BitsForTolerance(samples []float32, sampleCount, blockSize int, tolerance float32) (int, error) {
	return field.BitsForTolerance(samples, sampleCount, blockSize, tolerance)
}
