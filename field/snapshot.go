package field

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/arloliu/heightfield/compress"
	"github.com/arloliu/heightfield/encoding"
	"github.com/arloliu/heightfield/errs"
	"github.com/arloliu/heightfield/format"
	"github.com/arloliu/heightfield/internal/hash"
	"github.com/arloliu/heightfield/internal/options"
	"github.com/arloliu/heightfield/internal/pool"
	"github.com/arloliu/heightfield/material"
	"github.com/arloliu/heightfield/section"
)

type snapshotSettings struct {
	compression format.CompressionType
	bigEndian   bool
}

// SnapshotOption configures Snapshot output.
type SnapshotOption = options.Option[*snapshotSettings]

// WithSnapshotCompression selects the payload compression codec.
func WithSnapshotCompression(c format.CompressionType) SnapshotOption {
	return options.New(func(ss *snapshotSettings) error {
		if !c.Valid() {
			return fmt.Errorf("%w: compression type 0x%02x", errs.ErrInvalidSnapshot, uint8(c))
		}
		ss.compression = c

		return nil
	})
}

// WithSnapshotBigEndian writes the snapshot in big-endian byte order.
func WithSnapshotBigEndian() SnapshotOption {
	return options.NoError(func(ss *snapshotSettings) {
		ss.bigEndian = true
	})
}

// Snapshot serializes the store's packed state into a self-describing byte
// slice: a fixed header followed by the block records and the height and
// material payloads, with an xxhash64 checksum over the uncompressed
// payload. Materials are opaque identities and are not serialized; Restore
// takes the list again from the caller.
func (s *Store) Snapshot(opts ...SnapshotOption) ([]byte, error) {
	cfg := &snapshotSettings{compression: format.CompressionNone}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	hdr := section.NewSnapshotHeader()
	if cfg.bigEndian {
		hdr.Flag.SetBigEndian()
	}
	hdr.Flag.SetCompression(cfg.compression)

	hdr.BitsPerSample = uint8(s.fixedBits)
	hdr.SampleCount = uint32(s.sampleCount)
	hdr.BlockSize = uint32(s.blockSize)
	hdr.Tolerance = s.tolerance
	hdr.Offset = s.offset
	hdr.Scale = s.scale
	hdr.MinHeight = s.minDeclared
	hdr.MaxHeight = s.maxDeclared
	if s.boundsDeclared {
		hdr.BoundsDeclared = 1
	}
	hdr.MaterialWidth = uint8(s.materialWidth)
	hdr.MaterialCount = uint16(len(s.materials))
	hdr.BlockCount = uint32(len(s.blocks))

	heightBitLen := 0
	for _, b := range s.blocks {
		heightBitLen += int(b.bits) * s.blockSize * s.blockSize
	}
	hdr.HeightBitLen = uint32(heightBitLen)

	engine := hdr.Flag.GetEndianEngine()

	buf := pool.GetSnapshotBuffer()
	defer pool.PutSnapshotBuffer(buf)

	var scratch [8]byte
	for _, b := range s.blocks {
		engine.PutUint32(scratch[:4], math.Float32bits(b.min))
		buf.MustWrite(scratch[:4])
		engine.PutUint32(scratch[:4], math.Float32bits(b.max))
		buf.MustWrite(scratch[:4])
		buf.MustWrite([]byte{b.bits})
	}
	for _, w := range s.heightBits {
		engine.PutUint64(scratch[:], w)
		buf.MustWrite(scratch[:])
	}
	for _, w := range s.materialBits {
		engine.PutUint64(scratch[:], w)
		buf.MustWrite(scratch[:])
	}

	raw := buf.Bytes()
	hdr.RawPayloadSize = uint32(len(raw))
	hdr.Checksum = hash.Sum64(raw)

	codec, err := compress.GetCodec(cfg.compression)
	if err != nil {
		return nil, err
	}
	payload, err := codec.Compress(raw)
	if err != nil {
		return nil, fmt.Errorf("compress snapshot payload: %w", err)
	}
	hdr.PayloadSize = uint32(len(payload))

	out := make([]byte, 0, section.HeaderSize+len(payload))
	out = append(out, hdr.Bytes()...)
	out = append(out, payload...)

	return out, nil
}

// Restore rebuilds a Store from Snapshot output. materials supplies the
// identities the snapshot's packed indices refer to, in the same order the
// store listed them when it was snapshotted; a nil list is accepted when
// the snapshot recorded a single material and restores the default.
func Restore(data []byte, materials material.List) (*Store, error) {
	hdr, err := section.ParseSnapshotHeader(data)
	if err != nil {
		return nil, err
	}

	sampleCount := int(hdr.SampleCount)
	blockSize := int(hdr.BlockSize)
	if sampleCount < 2 {
		return nil, fmt.Errorf("%w: sample count %d", errs.ErrInvalidSnapshot, sampleCount)
	}
	if blockSize < 2 || sampleCount%blockSize != 0 {
		return nil, fmt.Errorf("%w: block size %d for %d samples", errs.ErrInvalidSnapshot, blockSize, sampleCount)
	}

	if materials == nil && hdr.MaterialCount == 1 {
		materials = material.List{material.Default}
	}
	if len(materials) != int(hdr.MaterialCount) {
		return nil, fmt.Errorf("%w: snapshot recorded %d materials, caller supplied %d",
			errs.ErrMaterialCountMismatch, hdr.MaterialCount, len(materials))
	}
	if int(hdr.MaterialWidth) != widthForCount(len(materials)) {
		return nil, fmt.Errorf("%w: material width %d bits for %d materials",
			errs.ErrInvalidSnapshot, hdr.MaterialWidth, hdr.MaterialCount)
	}

	if len(data) != section.HeaderSize+int(hdr.PayloadSize) {
		return nil, fmt.Errorf("%w: payload truncated (%d of %d bytes)",
			errs.ErrInvalidSnapshot, len(data)-section.HeaderSize, hdr.PayloadSize)
	}

	codec, err := compress.GetCodec(hdr.Flag.GetCompression())
	if err != nil {
		return nil, err
	}
	raw, err := codec.Decompress(data[section.HeaderSize:])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrInvalidSnapshot, err)
	}
	if len(raw) != int(hdr.RawPayloadSize) {
		return nil, fmt.Errorf("%w: raw payload size %d, expected %d",
			errs.ErrInvalidSnapshot, len(raw), hdr.RawPayloadSize)
	}
	if sum := hash.Sum64(raw); sum != hdr.Checksum {
		return nil, fmt.Errorf("%w: payload checksum 0x%016x, expected 0x%016x",
			errs.ErrChecksumMismatch, sum, hdr.Checksum)
	}

	s := &Store{
		sampleCount:    sampleCount,
		blockSize:      blockSize,
		blocksPerRow:   sampleCount / blockSize,
		offset:         mgl32.Vec3(hdr.Offset),
		scale:          mgl32.Vec3(hdr.Scale),
		tolerance:      hdr.Tolerance,
		fixedBits:      int(hdr.BitsPerSample),
		minDeclared:    hdr.MinHeight,
		maxDeclared:    hdr.MaxHeight,
		boundsDeclared: hdr.BoundsDeclared != 0,
		materials:      materials,
		materialWidth:  int(hdr.MaterialWidth),
	}

	blockCount := int(hdr.BlockCount)
	if blockCount != 0 && blockCount != s.blocksPerRow*s.blocksPerRow {
		return nil, fmt.Errorf("%w: %d block records for a %d x %d block grid",
			errs.ErrInvalidSnapshot, blockCount, s.blocksPerRow, s.blocksPerRow)
	}

	heightWords := encoding.WordsForBits(int(hdr.HeightBitLen))
	materialWords := encoding.WordsForBits((sampleCount - 1) * (sampleCount - 1) * s.materialWidth)
	expected := blockCount*section.BlockRecordSize + (heightWords+materialWords)*8
	if len(raw) != expected {
		return nil, fmt.Errorf("%w: payload is %d bytes, layout needs %d",
			errs.ErrInvalidSnapshot, len(raw), expected)
	}

	engine := hdr.Flag.GetEndianEngine()

	if blockCount > 0 {
		s.blocks = make([]blockRecord, blockCount)
		bitOffset := 0
		for i := range s.blocks {
			rec := raw[i*section.BlockRecordSize:]
			s.blocks[i].min = math.Float32frombits(engine.Uint32(rec[0:4]))
			s.blocks[i].max = math.Float32frombits(engine.Uint32(rec[4:8]))
			s.blocks[i].bits = rec[8]
			if s.blocks[i].bits < encoding.MinBitsPerSample || s.blocks[i].bits > encoding.MaxBitsPerSample {
				return nil, fmt.Errorf("%w: block %d width %d bits", errs.ErrInvalidSnapshot, i, s.blocks[i].bits)
			}
			s.blocks[i].bitOffset = uint32(bitOffset)
			bitOffset += int(s.blocks[i].bits) * blockSize * blockSize
		}
		if bitOffset != int(hdr.HeightBitLen) {
			return nil, fmt.Errorf("%w: block widths pack %d bits, header records %d",
				errs.ErrInvalidSnapshot, bitOffset, hdr.HeightBitLen)
		}

		s.heightBits = make([]uint64, heightWords)
		base := blockCount * section.BlockRecordSize
		for i := range s.heightBits {
			s.heightBits[i] = engine.Uint64(raw[base+i*8 : base+i*8+8])
		}
	}

	if materialWords > 0 {
		s.materialBits = make([]uint64, materialWords)
		base := blockCount*section.BlockRecordSize + heightWords*8
		for i := range s.materialBits {
			s.materialBits[i] = engine.Uint64(raw[base+i*8 : base+i*8+8])
		}

		// The checksum only proves the payload matches the header, not that
		// the packed indices stay inside the supplied material list.
		cells := sampleCount - 1
		for i := 0; i < cells*cells; i++ {
			idx := encoding.ReadBits(s.materialBits, i*s.materialWidth, s.materialWidth)
			if int(idx) >= len(s.materials) {
				return nil, fmt.Errorf("%w: cell %d material index %d with %d materials",
					errs.ErrInvalidSnapshot, i, idx, len(s.materials))
			}
		}
	}

	s.rebuildHierarchy()

	return s, nil
}
