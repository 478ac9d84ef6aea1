package field

import "github.com/arloliu/heightfield/internal/pool"

// TempAllocator provides the scoped scratch memory mutating operations use
// while re-encoding. Slices are acquired at call entry and the cleanup
// functions run on every exit path, so scratch never outlives the call.
//
// Implementations must return slices of exactly the requested length.
type TempAllocator interface {
	Float32s(n int) ([]float32, func())
	Uint8s(n int) ([]uint8, func())
}

// PooledAllocator is the default TempAllocator, backed by process-wide
// sync.Pool slice pools. The zero value is ready to use; mutating calls
// that receive a nil allocator fall back to it.
type PooledAllocator struct{}

var _ TempAllocator = PooledAllocator{}

// Float32s returns a pooled float32 slice and its release function.
func (PooledAllocator) Float32s(n int) ([]float32, func()) {
	return pool.GetFloat32Slice(n)
}

// Uint8s returns a pooled uint8 slice and its release function.
func (PooledAllocator) Uint8s(n int) ([]uint8, func()) {
	return pool.GetUint8Slice(n)
}
