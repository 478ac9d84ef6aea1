// Package encoding implements the low-level sample codec used by the
// height-field store: LSB-first bit packing of variable-width fields into
// 64-bit words, and range-based quantization of height samples.
//
// Samples are quantized per block against that block's (min, max) range.
// For a bit width b there are 2^b-1 usable codes; the all-ones code is
// reserved as the no-collision sentinel and always round-trips exactly.
// A flat range (min == max) packs at a single code with zero error, so a
// flat grid far from the origin does not pick up floating-point drift.
package encoding
