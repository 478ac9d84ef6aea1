package field

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/arloliu/heightfield/encoding"
	"github.com/arloliu/heightfield/errs"
	"github.com/arloliu/heightfield/internal/options"
	"github.com/arloliu/heightfield/material"
)

// DefaultBlockSize is the block side length used when WithBlockSize is not
// given. Small blocks track local relief closely; large blocks shrink the
// per-block record overhead.
const DefaultBlockSize = 4

type settings struct {
	offset mgl32.Vec3
	scale  mgl32.Vec3

	blockSize int
	bits      int // 0 = per-block auto width from tolerance
	tolerance float32

	minHeight      float32
	maxHeight      float32
	boundsDeclared bool

	materials       material.List
	materialIndices []uint8

	parallel bool
}

func defaultSettings() *settings {
	return &settings{
		scale:     mgl32.Vec3{1, 1, 1},
		blockSize: DefaultBlockSize,
	}
}

// Option configures Store construction.
type Option = options.Option[*settings]

// WithOffset sets the world-space translation applied to every decoded
// sample position.
func WithOffset(offset mgl32.Vec3) Option {
	return options.NoError(func(s *settings) {
		s.offset = offset
	})
}

// WithScale sets the world-space non-uniform scale applied to every decoded
// sample position. All components must be non-zero.
func WithScale(scale mgl32.Vec3) Option {
	return options.New(func(s *settings) error {
		if scale[0] == 0 || scale[1] == 0 || scale[2] == 0 {
			return fmt.Errorf("%w: %v", errs.ErrInvalidScale, scale)
		}
		s.scale = scale

		return nil
	})
}

// WithBlockSize sets the quantization block side length. The sample grid
// must tile exactly into blocks of this size.
func WithBlockSize(blockSize int) Option {
	return options.New(func(s *settings) error {
		if blockSize < 2 {
			return fmt.Errorf("%w: %d", errs.ErrInvalidBlockSize, blockSize)
		}
		s.blockSize = blockSize

		return nil
	})
}

// WithBitsPerSample fixes the per-sample bit width for every block instead
// of choosing it per block from the tolerance. Width must be in [1, 8].
func WithBitsPerSample(bits int) Option {
	return options.New(func(s *settings) error {
		if bits < encoding.MinBitsPerSample || bits > encoding.MaxBitsPerSample {
			return fmt.Errorf("%w: %d", errs.ErrInvalidBitsPerSample, bits)
		}
		s.bits = bits

		return nil
	})
}

// WithTolerance sets the quantization error tolerance used to choose each
// block's bit width. A tolerance of zero selects the maximum width for any
// block with relief; flat blocks still pack at 1 bit with zero error.
func WithTolerance(tolerance float32) Option {
	return options.New(func(s *settings) error {
		if tolerance < 0 {
			return fmt.Errorf("%w: %v", errs.ErrInvalidTolerance, tolerance)
		}
		s.tolerance = tolerance

		return nil
	})
}

// WithHeightBounds declares the height range edits may use later. Heights
// written by SetHeights are clamped into the declared range, which keeps a
// store built from an empty or narrow sample set editable within known
// bounds.
func WithHeightBounds(minHeight, maxHeight float32) Option {
	return options.New(func(s *settings) error {
		if minHeight > maxHeight {
			return fmt.Errorf("%w: min %v > max %v", errs.ErrInvalidHeightBounds, minHeight, maxHeight)
		}
		s.minHeight = minHeight
		s.maxHeight = maxHeight
		s.boundsDeclared = true

		return nil
	})
}

// WithMaterials assigns the material list and the per-cell indices into it.
// cellIndices is row-major over the (sampleCount-1)² cells; nil assigns the
// first material to every cell. The list is deduplicated by identity and
// indices are remapped accordingly.
func WithMaterials(materials material.List, cellIndices []uint8) Option {
	return options.NoError(func(s *settings) {
		s.materials = materials
		s.materialIndices = cellIndices
	})
}

// WithParallelQuantization enables concurrent per-block range measurement
// during construction. Output is deterministic; only the measurement work is
// spread across goroutines.
func WithParallelQuantization(enabled bool) Option {
	return options.NoError(func(s *settings) {
		s.parallel = enabled
	})
}

// BitsForTolerance returns the bit width a store built from these samples
// would need so no block exceeds the given quantization tolerance. It is
// the maximum of the per-block estimates; a flat or all-sentinel grid
// resolves to 1.
func BitsForTolerance(samples []float32, sampleCount, blockSize int, tolerance float32) (int, error) {
	if sampleCount < 2 || len(samples) != sampleCount*sampleCount {
		return 0, fmt.Errorf("%w: %d samples for sample count %d", errs.ErrInvalidSampleCount, len(samples), sampleCount)
	}
	if blockSize < 2 || sampleCount%blockSize != 0 {
		return 0, fmt.Errorf("%w: block size %d does not tile %d samples", errs.ErrInvalidBlockSize, blockSize, sampleCount)
	}

	best := encoding.MinBitsPerSample
	blocksPerRow := sampleCount / blockSize
	for by := 0; by < blocksPerRow; by++ {
		for bx := 0; bx < blocksPerRow; bx++ {
			minV, maxV, live := measureBlock(samples, sampleCount, bx*blockSize, by*blockSize, blockSize)
			if !live {
				continue
			}
			if bits := encoding.EstimateBitWidth(minV, maxV, tolerance); bits > best {
				best = bits
			}
		}
	}

	return best, nil
}

func measureBlock(samples []float32, sampleCount, x0, y0, blockSize int) (minV, maxV float32, live bool) {
	minV = encoding.NoCollision
	maxV = -encoding.NoCollision
	for y := y0; y < y0+blockSize; y++ {
		row := samples[y*sampleCount:]
		for x := x0; x < x0+blockSize; x++ {
			v := row[x]
			if v == encoding.NoCollision {
				continue
			}
			live = true
			if v < minV {
				minV = v
			}
			if v > maxV {
				maxV = v
			}
		}
	}

	return minV, maxV, live
}
