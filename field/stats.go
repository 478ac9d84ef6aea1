package field

import (
	"unsafe"

	"github.com/arloliu/heightfield/encoding"
)

// Stats describes the memory footprint and packing density of a store.
type Stats struct {
	// SizeBytes is the total in-memory footprint: the store struct, block
	// records, packed heights, packed material indices and the range
	// hierarchy.
	SizeBytes int
	// HeightBytes is the packed height payload size.
	HeightBytes int
	// MaterialBytes is the packed material index payload size.
	MaterialBytes int
	// HierarchyBytes is the range hierarchy size.
	HierarchyBytes int
	// BlockCount is the number of quantization blocks, zero for a grid with
	// no live samples.
	BlockCount int
	// Triangles is the number of triangles in the implicit tessellation: two
	// per cell whose four corners are all live.
	Triangles int
	// MeanBitsPerSample is the average packed width across blocks.
	MeanBitsPerSample float32
}

// Stats reports the store's current memory footprint. A grid with no live
// samples carries no block records, no payloads and no hierarchy, so its
// footprint is just the struct itself.
func (s *Store) Stats() Stats {
	st := Stats{
		SizeBytes:     int(unsafe.Sizeof(*s)),
		HeightBytes:   len(s.heightBits) * 8,
		MaterialBytes: len(s.materialBits) * 8,
		BlockCount:    len(s.blocks),
	}

	st.SizeBytes += len(s.blocks) * int(unsafe.Sizeof(blockRecord{}))
	for _, lvl := range s.hierarchy {
		st.HierarchyBytes += int(unsafe.Sizeof(lvl)) + len(lvl.min)*4 + len(lvl.max)*4
	}
	st.SizeBytes += st.HeightBytes + st.MaterialBytes + st.HierarchyBytes

	if len(s.blocks) > 0 {
		totalBits := 0
		for _, b := range s.blocks {
			totalBits += int(b.bits)
		}
		st.MeanBitsPerSample = float32(totalBits) / float32(len(s.blocks))
		st.Triangles = s.countTriangles()
	}

	return st
}

func (s *Store) countTriangles() int {
	cells := s.sampleCount - 1
	count := 0
	for cy := 0; cy < cells; cy++ {
		for cx := 0; cx < cells; cx++ {
			if s.decodeSample(cx, cy) == encoding.NoCollision ||
				s.decodeSample(cx+1, cy) == encoding.NoCollision ||
				s.decodeSample(cx, cy+1) == encoding.NoCollision ||
				s.decodeSample(cx+1, cy+1) == encoding.NoCollision {
				continue
			}
			count += 2
		}
	}

	return count
}
