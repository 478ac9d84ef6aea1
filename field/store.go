package field

import (
	"fmt"
	"runtime"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/sync/errgroup"

	"github.com/arloliu/heightfield/encoding"
	"github.com/arloliu/heightfield/errs"
	"github.com/arloliu/heightfield/internal/options"
	"github.com/arloliu/heightfield/material"
)

// parallelBlockThreshold is the block count below which parallel
// quantization is not worth the goroutine overhead.
const parallelBlockThreshold = 64

// blockRecord holds the quantization parameters of one block and the bit
// offset of its packed samples in the height buffer.
type blockRecord struct {
	min       float32
	max       float32
	bits      uint8
	bitOffset uint32
}

// Store is a quantized, block-compressed height field.
//
// The grid has sampleCount samples along each edge; heights are packed per
// block against the block's local range. A store's grid dimensions are fixed
// at construction; heights and materials can be edited in place.
type Store struct {
	sampleCount  int
	blockSize    int
	blocksPerRow int

	offset mgl32.Vec3
	scale  mgl32.Vec3

	tolerance float32
	fixedBits int // 0 = per-block width from tolerance

	minDeclared    float32
	maxDeclared    float32
	boundsDeclared bool

	parallel bool

	// blocks and heightBits are nil for a grid with no live samples; the
	// first SetHeights materializes them.
	blocks     []blockRecord
	heightBits []uint64

	materials     material.List
	materialBits  []uint64
	materialWidth int

	// hierarchy[0] is the per-block leaf level; each level above halves the
	// dimension until a single root node remains. nil when blocks is nil.
	hierarchy []rangeLevel
}

// New builds a Store from a row-major sampleCount x sampleCount grid of
// heights. Samples equal to encoding.NoCollision mark holes; a grid made
// entirely of holes produces a minimal store that can still be filled in
// later with SetHeights.
//
// The samples slice is not retained.
func New(samples []float32, sampleCount int, opts ...Option) (*Store, error) {
	cfg := defaultSettings()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	if sampleCount < 2 || len(samples) != sampleCount*sampleCount {
		return nil, fmt.Errorf("%w: %d samples for sample count %d", errs.ErrInvalidSampleCount, len(samples), sampleCount)
	}
	if sampleCount%cfg.blockSize != 0 {
		return nil, fmt.Errorf("%w: block size %d does not tile %d samples", errs.ErrInvalidBlockSize, cfg.blockSize, sampleCount)
	}

	s := &Store{
		sampleCount:    sampleCount,
		blockSize:      cfg.blockSize,
		blocksPerRow:   sampleCount / cfg.blockSize,
		offset:         cfg.offset,
		scale:          cfg.scale,
		tolerance:      cfg.tolerance,
		fixedBits:      cfg.bits,
		minDeclared:    cfg.minHeight,
		maxDeclared:    cfg.maxHeight,
		boundsDeclared: cfg.boundsDeclared,
		parallel:       cfg.parallel,
	}

	work := samples
	if s.boundsDeclared {
		work = make([]float32, len(samples))
		for i, v := range samples {
			work[i] = s.clampHeight(v)
		}
	}

	if err := s.buildBlocks(work); err != nil {
		return nil, err
	}
	if err := s.initMaterials(cfg.materials, cfg.materialIndices); err != nil {
		return nil, err
	}
	s.rebuildHierarchy()

	return s, nil
}

// SampleCount returns the number of samples along one edge of the grid.
func (s *Store) SampleCount() int { return s.sampleCount }

// BlockSize returns the quantization block side length.
func (s *Store) BlockSize() int { return s.blockSize }

// Offset returns the world-space translation of the grid.
func (s *Store) Offset() mgl32.Vec3 { return s.offset }

// Scale returns the world-space scale of the grid.
func (s *Store) Scale() mgl32.Vec3 { return s.scale }

// Tolerance returns the quantization error tolerance the store packs
// against.
func (s *Store) Tolerance() float32 { return s.tolerance }

func (s *Store) clampHeight(v float32) float32 {
	if !s.boundsDeclared || v == encoding.NoCollision {
		return v
	}
	if v < s.minDeclared {
		return s.minDeclared
	}
	if v > s.maxDeclared {
		return s.maxDeclared
	}

	return v
}

func (s *Store) blockIndex(bx, by int) int { return by*s.blocksPerRow + bx }

// blockWidth returns the packed width for a block with the given range.
func (s *Store) blockWidth(minV, maxV float32) int {
	if s.fixedBits > 0 {
		return s.fixedBits
	}

	return encoding.EstimateBitWidth(minV, maxV, s.tolerance)
}

// buildBlocks measures every block, chooses widths and packs the height
// payload. A grid with no live samples leaves blocks and heightBits nil.
func (s *Store) buildBlocks(samples []float32) error {
	blockCount := s.blocksPerRow * s.blocksPerRow
	blocks := make([]blockRecord, blockCount)

	anyLive := false
	measure := func(bi int) {
		bx, by := bi%s.blocksPerRow, bi/s.blocksPerRow
		minV, maxV, live := measureBlock(samples, s.sampleCount, bx*s.blockSize, by*s.blockSize, s.blockSize)
		if !live {
			// Sentinel-only block: 1-bit payload of all-ones codes.
			blocks[bi] = blockRecord{min: 0, max: 0, bits: encoding.MinBitsPerSample}

			return
		}
		blocks[bi] = blockRecord{min: minV, max: maxV, bits: uint8(s.blockWidth(minV, maxV))}
	}

	if s.parallel && blockCount >= parallelBlockThreshold {
		var g errgroup.Group
		g.SetLimit(runtime.GOMAXPROCS(0))
		chunk := (blockCount + runtime.GOMAXPROCS(0) - 1) / runtime.GOMAXPROCS(0)
		for start := 0; start < blockCount; start += chunk {
			start := start
			end := min(start+chunk, blockCount)
			g.Go(func() error {
				for bi := start; bi < end; bi++ {
					measure(bi)
				}

				return nil
			})
		}
		// measure never fails; the group only bounds concurrency.
		_ = g.Wait()
	} else {
		for bi := range blocks {
			measure(bi)
		}
	}

	for y := 0; y < s.sampleCount && !anyLive; y++ {
		row := samples[y*s.sampleCount : (y+1)*s.sampleCount]
		for _, v := range row {
			if v != encoding.NoCollision {
				anyLive = true

				break
			}
		}
	}
	if !anyLive {
		return nil
	}

	totalBits := 0
	for _, b := range blocks {
		totalBits += int(b.bits) * s.blockSize * s.blockSize
	}

	w := encoding.NewBitWriter(totalBits)
	for bi := range blocks {
		blocks[bi].bitOffset = uint32(w.BitLen())
		s.packBlock(w, samples, &blocks[bi], bi)
	}

	s.blocks = blocks
	s.heightBits = w.Words()

	return nil
}

// packBlock quantizes one block's samples into the writer in row-major
// order. Holes pack as the all-ones sentinel code for the block's width.
func (s *Store) packBlock(w *encoding.BitWriter, samples []float32, rec *blockRecord, bi int) {
	bx, by := bi%s.blocksPerRow, bi/s.blocksPerRow
	x0, y0 := bx*s.blockSize, by*s.blockSize
	bits := int(rec.bits)
	sentinel := encoding.SentinelCode(bits)
	for y := y0; y < y0+s.blockSize; y++ {
		row := samples[y*s.sampleCount:]
		for x := x0; x < x0+s.blockSize; x++ {
			v := row[x]
			if v == encoding.NoCollision {
				w.WriteBits(sentinel, bits)

				continue
			}
			w.WriteBits(encoding.Quantize(v, rec.min, rec.max, bits), bits)
		}
	}
}

// decodeSample returns the stored height at (x, y), or encoding.NoCollision
// for a hole. Grid coordinates must be in range.
func (s *Store) decodeSample(x, y int) float32 {
	if s.blocks == nil {
		return encoding.NoCollision
	}

	bx, by := x/s.blockSize, y/s.blockSize
	rec := &s.blocks[s.blockIndex(bx, by)]
	bits := int(rec.bits)
	lx, ly := x-bx*s.blockSize, y-by*s.blockSize
	pos := int(rec.bitOffset) + (ly*s.blockSize+lx)*bits

	raw := encoding.ReadBits(s.heightBits, pos, bits)
	if raw == encoding.SentinelCode(bits) {
		return encoding.NoCollision
	}

	return encoding.Dequantize(raw, rec.min, rec.max, bits)
}

func (s *Store) initMaterials(list material.List, cellIndices []uint8) error {
	if len(list) == 0 {
		list = material.List{material.Default}
	}

	deduped, remap := list.Dedup()

	cells := s.sampleCount - 1
	if cellIndices != nil {
		if len(cellIndices) != cells*cells {
			return fmt.Errorf("%w: %d indices for %d cells", errs.ErrBufferTooSmall, len(cellIndices), cells*cells)
		}
		for _, idx := range cellIndices {
			if int(idx) >= len(list) {
				return fmt.Errorf("%w: index %d with %d materials", errs.ErrMaterialIndexOutOfRange, idx, len(list))
			}
		}
	}

	s.materials = deduped
	s.materialWidth = widthForCount(len(deduped))
	if s.materialWidth == 0 {
		return nil
	}

	w := encoding.NewBitWriter(cells * cells * s.materialWidth)
	for i := 0; i < cells*cells; i++ {
		idx := 0
		if cellIndices != nil {
			idx = remap[cellIndices[i]]
		}
		w.WriteBits(uint64(idx), s.materialWidth)
	}
	s.materialBits = w.Words()

	return nil
}

// widthForCount returns the packed index width for a material list of the
// given size: ceil(log2(count)), and 0 when a single material needs no
// storage at all.
func widthForCount(count int) int {
	if count <= 1 {
		return 0
	}

	width := 0
	for limit := 1; limit < count; limit <<= 1 {
		width++
	}

	return width
}
