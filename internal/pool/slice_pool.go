package pool

import "sync"

// Slice pools for the scratch memory used by height and material edits.
// An edit decodes the touched block footprint into a pooled slice, applies
// the patch and re-encodes, so the scratch never outlives the call.
var (
	float32SlicePool = sync.Pool{
		New: func() any { return &[]float32{} },
	}
	uint8SlicePool = sync.Pool{
		New: func() any { return &[]uint8{} },
	}
)

// GetFloat32Slice retrieves a float32 slice of exactly the requested length
// from the pool. The caller must call the returned cleanup function
// (typically with defer) to return the slice to the pool.
func GetFloat32Slice(size int) ([]float32, func()) {
	ptr, _ := float32SlicePool.Get().(*[]float32)
	slice := (*ptr)[:0]

	if cap(slice) < size {
		slice = make([]float32, size)
		*ptr = slice
	} else {
		slice = slice[:size]
		*ptr = slice
	}

	return slice, func() { float32SlicePool.Put(ptr) }
}

// GetUint8Slice retrieves a uint8 slice of exactly the requested length from
// the pool. The caller must call the returned cleanup function (typically
// with defer) to return the slice to the pool.
func GetUint8Slice(size int) ([]uint8, func()) {
	ptr, _ := uint8SlicePool.Get().(*[]uint8)
	slice := (*ptr)[:0]

	if cap(slice) < size {
		slice = make([]uint8, size)
		*ptr = slice
	} else {
		slice = slice[:size]
		*ptr = slice
	}

	return slice, func() { uint8SlicePool.Put(ptr) }
}
