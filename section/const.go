package section

const (
	// Bit masks for the flag word.
	EndiannessMask   = 0x0002 // Mask for endianness bit (bit 1)
	ReservedBitsMask = 0x000D // Mask for reserved bits (bits 0, 2, 3)
	MagicNumberMask  = 0xFFF0 // Mask for magic number (bits 4-15)

	// MagicFieldV1 is the version 1 magic number for the height-field
	// snapshot format (bits 4-15 of the flag word).
	MagicFieldV1 = 0xEC10
)

// Offsets and section sizes in the snapshot.
const (
	HeaderSize      = 80 // fixed header size in bytes
	BlockRecordSize = 9  // per-block payload: min float32 + max float32 + bits uint8
)
