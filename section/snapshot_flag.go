package section

import (
	"fmt"

	"github.com/arloliu/heightfield/endian"
	"github.com/arloliu/heightfield/errs"
	"github.com/arloliu/heightfield/format"
)

// SnapshotFlag is the packed flag field at the start of a snapshot header.
//
// Layout:
//   - Options (uint16): endianness bit plus the format magic number
//   - Compression (uint8): compression codec applied to the payload
type SnapshotFlag struct {
	Options     uint16
	Compression uint8
}

// NewSnapshotFlag creates a flag word with the V1 magic, little-endian byte
// order and no compression.
func NewSnapshotFlag() SnapshotFlag {
	return SnapshotFlag{
		Options:     MagicFieldV1,
		Compression: uint8(format.CompressionNone),
	}
}

// IsLittleEndian returns true when the snapshot payload is little-endian.
func (f SnapshotFlag) IsLittleEndian() bool {
	return f.Options&EndiannessMask == 0
}

// SetBigEndian marks the snapshot payload as big-endian.
func (f *SnapshotFlag) SetBigEndian() {
	f.Options |= EndiannessMask
}

// GetEndianEngine returns the endian engine matching the endianness bit.
func (f SnapshotFlag) GetEndianEngine() endian.EndianEngine {
	if f.IsLittleEndian() {
		return endian.GetLittleEndianEngine()
	}

	return endian.GetBigEndianEngine()
}

// GetCompression returns the payload compression type.
func (f SnapshotFlag) GetCompression() format.CompressionType {
	return format.CompressionType(f.Compression)
}

// SetCompression sets the payload compression type.
func (f *SnapshotFlag) SetCompression(c format.CompressionType) {
	f.Compression = uint8(c)
}

// Validate checks the magic number, reserved bits and compression type.
func (f SnapshotFlag) Validate() error {
	if f.Options&MagicNumberMask != MagicFieldV1 {
		return fmt.Errorf("%w: bad magic number 0x%04x", errs.ErrInvalidSnapshot, f.Options&MagicNumberMask)
	}

	if f.Options&ReservedBitsMask != 0 {
		return fmt.Errorf("%w: reserved flag bits set", errs.ErrInvalidSnapshot)
	}

	if !f.GetCompression().Valid() {
		return fmt.Errorf("%w: unknown compression type 0x%02x", errs.ErrInvalidSnapshot, f.Compression)
	}

	return nil
}
