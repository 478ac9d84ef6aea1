package section

import (
	"fmt"
	"math"

	"github.com/arloliu/heightfield/errs"
)

// SnapshotHeader is the fixed-size header at the start of a height-field
// snapshot. All multi-byte fields after the flag are written with the byte
// order recorded in the flag's endianness bit; the flag word itself is
// always little-endian so a reader can bootstrap.
type SnapshotHeader struct {
	// Flag is a packed field holding the magic number, endianness bit and
	// payload compression type.
	Flag SnapshotFlag // byte offset 0-2

	// BitsPerSample is the fixed per-sample width requested at construction,
	// or 0 when widths are chosen per block from the tolerance.
	BitsPerSample uint8 // byte offset 3

	// SampleCount is the number of samples along one edge of the grid.
	SampleCount uint32 // byte offset 4-7
	// BlockSize is the side length of one quantization block.
	BlockSize uint32 // byte offset 8-11
	// Tolerance is the quantization error tolerance used for auto widths.
	Tolerance float32 // byte offset 12-15

	// Offset is the world-space translation of the grid.
	Offset [3]float32 // byte offset 16-27
	// Scale is the world-space non-uniform scale of the grid.
	Scale [3]float32 // byte offset 28-39

	// MinHeight and MaxHeight are the declared height bounds; only
	// meaningful when BoundsDeclared is non-zero.
	MinHeight float32 // byte offset 40-43
	MaxHeight float32 // byte offset 44-47

	// BoundsDeclared is 1 when the store was built with declared bounds.
	BoundsDeclared uint8 // byte offset 48
	// MaterialWidth is the packed per-cell material index width in bits.
	MaterialWidth uint8 // byte offset 49
	// MaterialCount is the number of materials the store referenced. The
	// materials themselves are opaque identities and are supplied again at
	// restore time.
	MaterialCount uint16 // byte offset 50-51

	// HeightBitLen is the number of valid bits in the packed height payload.
	HeightBitLen uint32 // byte offset 52-55
	// PayloadSize is the stored (possibly compressed) payload size in bytes.
	PayloadSize uint32 // byte offset 56-59
	// RawPayloadSize is the payload size before compression.
	RawPayloadSize uint32 // byte offset 60-63

	// Checksum is the xxhash64 of the uncompressed payload.
	Checksum uint64 // byte offset 64-71

	// BlockCount is the number of block records in the payload; zero for a
	// grid with no live samples.
	BlockCount uint32 // byte offset 72-75

	// byte offset 76-79 is reserved.
}

// NewSnapshotHeader creates a header with the V1 magic and defaults; the
// payload sizes and checksum are filled in when the snapshot is finished.
func NewSnapshotHeader() *SnapshotHeader {
	return &SnapshotHeader{
		Flag: NewSnapshotFlag(),
	}
}

// Bytes serializes the header into a fixed HeaderSize byte slice.
func (h *SnapshotHeader) Bytes() []byte {
	b := make([]byte, HeaderSize)

	// Flag word is always little-endian.
	b[0] = byte(h.Flag.Options)
	b[1] = byte(h.Flag.Options >> 8)
	b[2] = h.Flag.Compression
	b[3] = h.BitsPerSample

	engine := h.Flag.GetEndianEngine()
	engine.PutUint32(b[4:8], h.SampleCount)
	engine.PutUint32(b[8:12], h.BlockSize)
	engine.PutUint32(b[12:16], math.Float32bits(h.Tolerance))
	for i, v := range h.Offset {
		engine.PutUint32(b[16+i*4:20+i*4], math.Float32bits(v))
	}
	for i, v := range h.Scale {
		engine.PutUint32(b[28+i*4:32+i*4], math.Float32bits(v))
	}
	engine.PutUint32(b[40:44], math.Float32bits(h.MinHeight))
	engine.PutUint32(b[44:48], math.Float32bits(h.MaxHeight))
	b[48] = h.BoundsDeclared
	b[49] = h.MaterialWidth
	engine.PutUint16(b[50:52], h.MaterialCount)
	engine.PutUint32(b[52:56], h.HeightBitLen)
	engine.PutUint32(b[56:60], h.PayloadSize)
	engine.PutUint32(b[60:64], h.RawPayloadSize)
	engine.PutUint64(b[64:72], h.Checksum)
	engine.PutUint32(b[72:76], h.BlockCount)

	return b
}

// Parse parses the header from a byte slice and validates the flag word.
func (h *SnapshotHeader) Parse(data []byte) error {
	if len(data) < HeaderSize {
		return fmt.Errorf("%w: header truncated (%d bytes)", errs.ErrInvalidSnapshot, len(data))
	}

	h.Flag.Options = uint16(data[0]) | uint16(data[1])<<8
	h.Flag.Compression = data[2]
	h.BitsPerSample = data[3]

	if err := h.Flag.Validate(); err != nil {
		return err
	}

	engine := h.Flag.GetEndianEngine()
	h.SampleCount = engine.Uint32(data[4:8])
	h.BlockSize = engine.Uint32(data[8:12])
	h.Tolerance = math.Float32frombits(engine.Uint32(data[12:16]))
	for i := range h.Offset {
		h.Offset[i] = math.Float32frombits(engine.Uint32(data[16+i*4 : 20+i*4]))
	}
	for i := range h.Scale {
		h.Scale[i] = math.Float32frombits(engine.Uint32(data[28+i*4 : 32+i*4]))
	}
	h.MinHeight = math.Float32frombits(engine.Uint32(data[40:44]))
	h.MaxHeight = math.Float32frombits(engine.Uint32(data[44:48]))
	h.BoundsDeclared = data[48]
	h.MaterialWidth = data[49]
	h.MaterialCount = engine.Uint16(data[50:52])
	h.HeightBitLen = engine.Uint32(data[52:56])
	h.PayloadSize = engine.Uint32(data[56:60])
	h.RawPayloadSize = engine.Uint32(data[60:64])
	h.Checksum = engine.Uint64(data[64:72])
	h.BlockCount = engine.Uint32(data[72:76])

	return nil
}

// ParseSnapshotHeader parses and validates a SnapshotHeader from data.
func ParseSnapshotHeader(data []byte) (SnapshotHeader, error) {
	h := SnapshotHeader{}
	if err := h.Parse(data); err != nil {
		return SnapshotHeader{}, err
	}

	return h, nil
}
