package field

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/arloliu/heightfield/encoding"
	"github.com/arloliu/heightfield/errs"
	"github.com/arloliu/heightfield/geom"
)

// Height returns the stored height at sample (x, y) in sample space, or
// encoding.NoCollision when the sample is a hole. Coordinates must be in
// [0, SampleCount).
func (s *Store) Height(x, y int) (float32, error) {
	if x < 0 || y < 0 || x >= s.sampleCount || y >= s.sampleCount {
		return 0, fmt.Errorf("%w: sample (%d, %d) in %d x %d grid", errs.ErrRectOutOfBounds, x, y, s.sampleCount, s.sampleCount)
	}

	return s.decodeSample(x, y), nil
}

// IsNoCollision reports whether sample (x, y) is a hole. Out-of-range
// coordinates are holes too: there is no surface there.
func (s *Store) IsNoCollision(x, y int) bool {
	if x < 0 || y < 0 || x >= s.sampleCount || y >= s.sampleCount {
		return true
	}

	return s.decodeSample(x, y) == encoding.NoCollision
}

// Position returns the world-space position of sample (x, y), applying the
// store's offset and scale to the grid coordinates and stored height. The
// second return is false when the sample is a hole.
func (s *Store) Position(x, y int) (mgl32.Vec3, bool) {
	if x < 0 || y < 0 || x >= s.sampleCount || y >= s.sampleCount {
		return mgl32.Vec3{}, false
	}
	h := s.decodeSample(x, y)
	if h == encoding.NoCollision {
		return mgl32.Vec3{}, false
	}

	local := mgl32.Vec3{float32(x), h, float32(y)}

	return s.offset.Add(geom.MulElem(s.scale, local)), true
}

// Heights decodes the rectangle of samples with top-left corner (x, y) and
// the given extent into out. Each output row starts stride values after the
// previous one; stride must be at least sizeX. Holes decode to
// encoding.NoCollision.
//
// The rectangle may overhang the grid's high edges: rows and columns beyond
// the bounds are simply not written. A negative origin is an error.
func (s *Store) Heights(x, y, sizeX, sizeY int, out []float32, stride int) error {
	if sizeX <= 0 || sizeY <= 0 || x < 0 || y < 0 || x >= s.sampleCount || y >= s.sampleCount {
		return fmt.Errorf("%w: (%d, %d) size %d x %d in %d x %d grid",
			errs.ErrRectOutOfBounds, x, y, sizeX, sizeY, s.sampleCount, s.sampleCount)
	}
	if stride < sizeX {
		return fmt.Errorf("%w: stride %d below row size %d", errs.ErrBufferTooSmall, stride, sizeX)
	}

	clipX := min(sizeX, s.sampleCount-x)
	clipY := min(sizeY, s.sampleCount-y)
	if len(out) < (clipY-1)*stride+clipX {
		return fmt.Errorf("%w: %d values for %d x %d rectangle with stride %d",
			errs.ErrBufferTooSmall, len(out), clipX, clipY, stride)
	}

	for dy := 0; dy < clipY; dy++ {
		row := out[dy*stride:]
		for dx := 0; dx < clipX; dx++ {
			row[dx] = s.decodeSample(x+dx, y+dy)
		}
	}

	return nil
}

func (s *Store) checkRect(x, y, sizeX, sizeY, limit int) error {
	if sizeX <= 0 || sizeY <= 0 || x < 0 || y < 0 || x+sizeX > limit || y+sizeY > limit {
		return fmt.Errorf("%w: (%d, %d) size %d x %d in %d x %d grid", errs.ErrRectOutOfBounds, x, y, sizeX, sizeY, limit, limit)
	}

	return nil
}

// SetHeights overwrites the rectangle of samples with top-left corner
// (x, y) with heights, row-major, sizeX values per row. Values equal to
// encoding.NoCollision punch holes. Heights are clamped into the declared
// bounds when the store has them.
//
// Only the blocks overlapping the rectangle are re-quantized: samples
// sharing a block with the edit may shift within the quantization
// tolerance, while every sample outside the touched blocks keeps its exact
// stored bits. alloc provides scratch memory; nil uses the pooled default.
func (s *Store) SetHeights(x, y, sizeX, sizeY int, heights []float32, alloc TempAllocator) error {
	if err := s.checkRect(x, y, sizeX, sizeY, s.sampleCount); err != nil {
		return err
	}
	if len(heights) < sizeX*sizeY {
		return fmt.Errorf("%w: %d values for %d x %d rectangle", errs.ErrBufferTooSmall, len(heights), sizeX, sizeY)
	}
	if alloc == nil {
		alloc = PooledAllocator{}
	}

	if s.blocks == nil {
		return s.materialize(x, y, sizeX, sizeY, heights, alloc)
	}

	bs := s.blockSize
	bx0, by0 := x/bs, y/bs
	bx1, by1 := (x+sizeX-1)/bs, (y+sizeY-1)/bs

	// Footprint of all touched blocks, in samples.
	fx0, fy0 := bx0*bs, by0*bs
	fw := (bx1 - bx0 + 1) * bs
	fh := (by1 - by0 + 1) * bs

	scratch, release := alloc.Float32s(fw * fh)
	defer release()

	for dy := 0; dy < fh; dy++ {
		row := scratch[dy*fw:]
		for dx := 0; dx < fw; dx++ {
			row[dx] = s.decodeSample(fx0+dx, fy0+dy)
		}
	}
	for dy := 0; dy < sizeY; dy++ {
		src := heights[dy*sizeX:]
		dst := scratch[(y+dy-fy0)*fw+(x-fx0):]
		for dx := 0; dx < sizeX; dx++ {
			dst[dx] = s.clampHeight(src[dx])
		}
	}

	// Re-measure the touched blocks; untouched blocks keep record and bits.
	touched := func(bx, by int) bool {
		return bx >= bx0 && bx <= bx1 && by >= by0 && by <= by1
	}

	totalBits := 0
	for by := 0; by < s.blocksPerRow; by++ {
		for bx := 0; bx < s.blocksPerRow; bx++ {
			bi := s.blockIndex(bx, by)
			if touched(bx, by) {
				minV, maxV, live := measureBlock(scratch, fw, (bx-bx0)*bs, (by-by0)*bs, bs)
				if !live {
					s.blocks[bi].min, s.blocks[bi].max = 0, 0
					s.blocks[bi].bits = encoding.MinBitsPerSample
				} else {
					s.blocks[bi].min, s.blocks[bi].max = minV, maxV
					s.blocks[bi].bits = uint8(s.blockWidth(minV, maxV))
				}
			}
			totalBits += int(s.blocks[bi].bits) * bs * bs
		}
	}

	w := encoding.NewBitWriter(totalBits)
	for by := 0; by < s.blocksPerRow; by++ {
		for bx := 0; bx < s.blocksPerRow; bx++ {
			bi := s.blockIndex(bx, by)
			rec := &s.blocks[bi]
			oldOffset := int(rec.bitOffset)
			rec.bitOffset = uint32(w.BitLen())
			if touched(bx, by) {
				s.packBlockFrom(w, scratch, fw, (bx-bx0)*bs, (by-by0)*bs, rec)
			} else {
				w.CopyBits(s.heightBits, oldOffset, int(rec.bits)*bs*bs)
			}
		}
	}
	s.heightBits = w.Words()

	s.refreshHierarchy(bx0, by0, bx1, by1)

	return nil
}

// packBlockFrom packs one block of a scratch grid with the given row stride.
func (s *Store) packBlockFrom(w *encoding.BitWriter, grid []float32, stride, x0, y0 int, rec *blockRecord) {
	bits := int(rec.bits)
	sentinel := encoding.SentinelCode(bits)
	for y := y0; y < y0+s.blockSize; y++ {
		row := grid[y*stride:]
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

// materialize builds the block structures of a store created with no live
// samples, then applies the edit as a full rebuild over an all-hole grid.
func (s *Store) materialize(x, y, sizeX, sizeY int, heights []float32, alloc TempAllocator) error {
	full, release := alloc.Float32s(s.sampleCount * s.sampleCount)
	defer release()

	for i := range full {
		full[i] = encoding.NoCollision
	}
	for dy := 0; dy < sizeY; dy++ {
		src := heights[dy*sizeX:]
		dst := full[(y+dy)*s.sampleCount+x:]
		for dx := 0; dx < sizeX; dx++ {
			dst[dx] = s.clampHeight(src[dx])
		}
	}

	if err := s.buildBlocks(full); err != nil {
		return err
	}
	s.rebuildHierarchy()

	return nil
}
