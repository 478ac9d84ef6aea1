package field

import (
	"fmt"

	"github.com/arloliu/heightfield/encoding"
	"github.com/arloliu/heightfield/errs"
	"github.com/arloliu/heightfield/material"
)

// Material returns the material of cell (x, y). Cell coordinates run over
// the (SampleCount-1)² quads between samples.
func (s *Store) Material(x, y int) (material.Material, error) {
	cells := s.sampleCount - 1
	if x < 0 || y < 0 || x >= cells || y >= cells {
		return nil, fmt.Errorf("%w: cell (%d, %d) in %d x %d grid", errs.ErrRectOutOfBounds, x, y, cells, cells)
	}

	return s.materials[s.materialIndex(x, y)], nil
}

// MaterialList returns the store's material list. The slice is shared; the
// caller must not modify it.
func (s *Store) MaterialList() material.List { return s.materials }

// Materials decodes the rectangle of cell material indices with top-left
// corner (x, y) into out, row-major, sizeX values per row. Indices refer to
// MaterialList. out must hold at least sizeX*sizeY values.
func (s *Store) Materials(x, y, sizeX, sizeY int, out []uint8) error {
	if err := s.checkRect(x, y, sizeX, sizeY, s.sampleCount-1); err != nil {
		return err
	}
	if len(out) < sizeX*sizeY {
		return fmt.Errorf("%w: %d values for %d x %d rectangle", errs.ErrBufferTooSmall, len(out), sizeX, sizeY)
	}

	for dy := 0; dy < sizeY; dy++ {
		row := out[dy*sizeX:]
		for dx := 0; dx < sizeX; dx++ {
			row[dx] = uint8(s.materialIndex(x+dx, y+dy))
		}
	}

	return nil
}

func (s *Store) materialIndex(x, y int) int {
	if s.materialWidth == 0 {
		return 0
	}
	pos := (y*(s.sampleCount-1) + x) * s.materialWidth

	return int(encoding.ReadBits(s.materialBits, pos, s.materialWidth))
}

// SetMaterials overwrites the rectangle of cells with top-left corner
// (x, y) with materials: indices index into patch, row-major, sizeX values
// per row. A nil patch means the indices reference the store's existing
// list directly. Patch materials not already in the store's list are
// appended, but only those the indices actually reference. Validation
// happens before any mutation, so a failed call leaves the store unchanged.
//
// The packed index width grows as the list grows; when it does, every cell
// is re-encoded at the new width. alloc provides scratch memory; nil uses
// the pooled default.
func (s *Store) SetMaterials(x, y, sizeX, sizeY int, indices []uint8, patch material.List, alloc TempAllocator) error {
	if err := s.checkRect(x, y, sizeX, sizeY, s.sampleCount-1); err != nil {
		return err
	}
	if len(indices) < sizeX*sizeY {
		return fmt.Errorf("%w: %d indices for %d x %d rectangle", errs.ErrBufferTooSmall, len(indices), sizeX, sizeY)
	}

	scope := patch
	if patch == nil {
		scope = s.materials
	}
	for _, idx := range indices[:sizeX*sizeY] {
		if int(idx) >= len(scope) {
			return fmt.Errorf("%w: index %d with %d materials in scope", errs.ErrMaterialIndexOutOfRange, idx, len(scope))
		}
	}
	if alloc == nil {
		alloc = PooledAllocator{}
	}

	if patch == nil {
		// Indices already refer to the store's list; nothing can widen.
		for dy := 0; dy < sizeY; dy++ {
			src := indices[dy*sizeX:]
			for dx := 0; dx < sizeX; dx++ {
				s.setMaterialIndex(x+dx, y+dy, int(src[dx]))
			}
		}

		return nil
	}

	// Map each referenced patch entry to a store index, appending the ones
	// the store has not seen. Unreferenced patch entries are not merged.
	remap := make([]int, len(patch))
	for i := range remap {
		remap[i] = -1
	}
	merged := s.materials
	for _, idx := range indices[:sizeX*sizeY] {
		if remap[idx] >= 0 {
			continue
		}
		if at := merged.IndexOf(patch[idx]); at >= 0 {
			remap[idx] = at

			continue
		}
		merged = append(merged, patch[idx])
		remap[idx] = len(merged) - 1
	}

	cells := s.sampleCount - 1
	newWidth := widthForCount(len(merged))
	if newWidth != s.materialWidth {
		// Re-encode every cell at the wider index width.
		scratch, release := alloc.Uint8s(cells * cells)
		defer release()

		for cy := 0; cy < cells; cy++ {
			for cx := 0; cx < cells; cx++ {
				scratch[cy*cells+cx] = uint8(s.materialIndex(cx, cy))
			}
		}

		w := encoding.NewBitWriter(cells * cells * newWidth)
		for _, idx := range scratch {
			w.WriteBits(uint64(idx), newWidth)
		}
		s.materialBits = w.Words()
		s.materialWidth = newWidth
	}
	s.materials = merged

	for dy := 0; dy < sizeY; dy++ {
		src := indices[dy*sizeX:]
		for dx := 0; dx < sizeX; dx++ {
			s.setMaterialIndex(x+dx, y+dy, remap[src[dx]])
		}
	}

	return nil
}

func (s *Store) setMaterialIndex(x, y, idx int) {
	if s.materialWidth == 0 {
		return
	}
	pos := (y*(s.sampleCount-1) + x) * s.materialWidth
	encoding.SetBits(s.materialBits, pos, s.materialWidth, uint64(idx))
}
