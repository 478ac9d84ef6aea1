// Package compress provides the compression codecs available for
// height-field snapshot payloads.
//
// Snapshot payloads are already bit-packed, so generic compression mostly
// pays off on the block-range records and on grids with large flat or empty
// regions. Zstd gives the best ratio, S2 and LZ4 trade ratio for speed, and
// None stores the payload verbatim.
package compress

import (
	"fmt"

	"github.com/arloliu/heightfield/format"
)

// Compressor compresses a snapshot payload.
//
// Memory management:
//   - Returned slice is newly allocated and owned by the caller
//   - Input slice is not modified
//   - Internal buffers may be reused for efficiency
type Compressor interface {
	Compress(data []byte) ([]byte, error)
}

// Decompressor restores a snapshot payload compressed with the matching
// algorithm. Implementations validate the input framing and return an error
// on corrupt or mismatched data.
type Decompressor interface {
	Decompress(data []byte) ([]byte, error)
}

// Codec combines both compression and decompression capabilities.
type Codec interface {
	Compressor
	Decompressor
}

var builtinCodecs = map[format.CompressionType]Codec{
	format.CompressionNone: NewNoOpCompressor(),
	format.CompressionZstd: NewZstdCompressor(),
	format.CompressionS2:   NewS2Compressor(),
	format.CompressionLZ4:  NewLZ4Compressor(),
}

// GetCodec retrieves the built-in Codec for the specified compression type.
func GetCodec(compressionType format.CompressionType) (Codec, error) {
	if codec, ok := builtinCodecs[compressionType]; ok {
		return codec, nil
	}

	return nil, fmt.Errorf("unsupported compression type: %s", compressionType)
}
