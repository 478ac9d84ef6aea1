package encoding

import "math"

// NoCollision is the reserved height value meaning "no solid surface at this
// vertex". It is excluded from range measurement, packs to the sentinel bit
// pattern, and always decodes back exactly.
const NoCollision = float32(math.MaxFloat32)

// MinBitsPerSample and MaxBitsPerSample bound the per-block sample width.
const (
	MinBitsPerSample = 1
	MaxBitsPerSample = 8
)

// SentinelCode returns the reserved all-ones raw code for the given width.
func SentinelCode(bits int) uint64 {
	return (uint64(1) << bits) - 1
}

// MeasureRange returns the (min, max) over the live samples, skipping
// NoCollision sentinels. live is false when every sample is a sentinel, in
// which case min and max are unspecified.
func MeasureRange(samples []float32) (minVal, maxVal float32, live bool) {
	minVal = float32(math.MaxFloat32)
	maxVal = float32(-math.MaxFloat32)
	for _, h := range samples {
		if h == NoCollision {
			continue
		}
		live = true
		if h < minVal {
			minVal = h
		}
		if h > maxVal {
			maxVal = h
		}
	}

	return minVal, maxVal, live
}

// MaxQuantizationError returns the worst-case decode error for a sample
// quantized at the given width against the (min, max) range.
//
// With width b there are 2^b-1 usable codes (the all-ones code is the
// sentinel), spaced (max-min)/(2^b-2) apart, so the round-to-nearest error
// is half a step. A degenerate range is represented exactly.
func MaxQuantizationError(minVal, maxVal float32, bits int) float32 {
	levels := (1 << bits) - 1
	if levels <= 1 || maxVal <= minVal {
		return 0
	}

	return (maxVal - minVal) / float32(levels-1) / 2
}

// EstimateBitWidth returns the smallest bit width in [1,8] whose worst-case
// quantization error over the (min, max) range does not exceed tolerance.
//
// A degenerate range (flat or all-sentinel region) always resolves to 1 bit
// with zero error. If even 8 bits cannot meet the tolerance the width is
// clamped to 8.
func EstimateBitWidth(minVal, maxVal, tolerance float32) int {
	if maxVal <= minVal {
		return MinBitsPerSample
	}

	for bits := 2; bits < MaxBitsPerSample; bits++ {
		if MaxQuantizationError(minVal, maxVal, bits) <= tolerance {
			return bits
		}
	}

	return MaxBitsPerSample
}

// Quantize encodes a height sample as a raw code of the given width against
// the (min, max) range. NoCollision maps to the sentinel code; live samples
// round to the nearest representable level and clamp into range.
func Quantize(h, minVal, maxVal float32, bits int) uint64 {
	if h == NoCollision {
		return SentinelCode(bits)
	}

	levels := (1 << bits) - 1
	if levels <= 1 || maxVal <= minVal {
		return 0
	}

	step := float64(maxVal-minVal) / float64(levels-1)
	raw := int64(math.Round(float64(h-minVal) / step))
	if raw < 0 {
		raw = 0
	}
	if raw > int64(levels-1) {
		raw = int64(levels - 1)
	}

	return uint64(raw)
}

// Dequantize decodes a raw code back into a height sample. The sentinel code
// produces NoCollision exactly.
func Dequantize(raw uint64, minVal, maxVal float32, bits int) float32 {
	if raw == SentinelCode(bits) {
		return NoCollision
	}

	levels := (1 << bits) - 1
	if levels <= 1 || maxVal <= minVal {
		return minVal
	}

	step := float64(maxVal-minVal) / float64(levels-1)

	return minVal + float32(float64(raw)*step)
}
