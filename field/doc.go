// Package field implements the quantized, block-compressed height-field
// collision surface.
//
// A Store holds an immutable-size sampleCount x sampleCount grid of height
// samples, bit-packed per block against each block's local height range.
// Reads (Height, Heights, Material, CastRay, Stats) are pure and may run
// concurrently with each other; edits (SetHeights, SetMaterials) must be
// serialized by the caller and excluded from concurrent reads.
//
// Edits are local: SetHeights re-quantizes only the blocks overlapping the
// edited rectangle, so samples that share a block with the edit may shift
// within the quantization tolerance while samples outside every touched
// block are returned bit-identical to before.
package field
