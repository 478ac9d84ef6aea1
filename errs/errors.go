// Package errs defines the sentinel errors returned by the heightfield module.
//
// Callers can match them with errors.Is; call sites wrap them with additional
// context using fmt.Errorf("%w: ...").
package errs

import "errors"

var (
	// ErrInvalidSampleCount indicates the sample slice length does not match
	// sampleCount², or sampleCount is too small to form a grid.
	ErrInvalidSampleCount = errors.New("invalid sample count")

	// ErrInvalidBlockSize indicates the block size does not tile the sample
	// grid exactly, or is smaller than 2.
	ErrInvalidBlockSize = errors.New("invalid block size")

	// ErrInvalidBitsPerSample indicates a fixed bits-per-sample request
	// outside the supported 1-8 range.
	ErrInvalidBitsPerSample = errors.New("invalid bits per sample")

	// ErrInvalidScale indicates a scale vector with a zero component.
	ErrInvalidScale = errors.New("invalid scale")

	// ErrInvalidHeightBounds indicates declared height bounds with min
	// above max.
	ErrInvalidHeightBounds = errors.New("invalid height bounds")

	// ErrInvalidTolerance indicates a negative quantization tolerance.
	ErrInvalidTolerance = errors.New("invalid tolerance")

	// ErrMaterialIndexOutOfRange indicates a cell material index that
	// references outside the material list in scope.
	ErrMaterialIndexOutOfRange = errors.New("material index out of range")

	// ErrBufferTooSmall indicates a caller-provided buffer shorter than the
	// rectangle it must cover.
	ErrBufferTooSmall = errors.New("buffer too small")

	// ErrRectOutOfBounds indicates an edit rectangle that does not fit
	// inside the sample or cell grid.
	ErrRectOutOfBounds = errors.New("rectangle out of bounds")

	// ErrInvalidSnapshot indicates snapshot data that is truncated, has a
	// bad magic number, or is otherwise structurally invalid.
	ErrInvalidSnapshot = errors.New("invalid snapshot")

	// ErrChecksumMismatch indicates snapshot payload corruption detected by
	// the xxhash64 checksum.
	ErrChecksumMismatch = errors.New("checksum mismatch")

	// ErrMaterialCountMismatch indicates a Restore call whose supplied
	// material list does not match the count recorded in the snapshot.
	ErrMaterialCountMismatch = errors.New("material count mismatch")
)
