package encoding

// BitWriter packs variable-width bit fields into 64-bit words, LSB first.
//
// The zero value is ready to use. Words grow on demand; WordsForBits can be
// used to pre-size the backing slice when the total payload size is known.
type BitWriter struct {
	words  []uint64
	bitLen int
}

// NewBitWriter creates a BitWriter pre-sized to hold capacityBits.
func NewBitWriter(capacityBits int) *BitWriter {
	return &BitWriter{
		words: make([]uint64, 0, WordsForBits(capacityBits)),
	}
}

// WordsForBits returns the number of 64-bit words needed to store the given
// number of bits.
func WordsForBits(bits int) int {
	return (bits + 63) / 64
}

// WriteBits appends the low 'width' bits of value to the stream.
// Width must be in [0, 64]; a zero width is a no-op.
func (w *BitWriter) WriteBits(value uint64, width int) {
	if width == 0 {
		return
	}
	if width < 64 {
		value &= (uint64(1) << width) - 1
	}

	w.grow(width)

	wordIdx := w.bitLen >> 6
	off := uint(w.bitLen & 63)

	w.words[wordIdx] |= value << off
	if int(off)+width > 64 {
		w.words[wordIdx+1] |= value >> (64 - off)
	}

	w.bitLen += width
}

// CopyBits appends 'count' bits read from src starting at startBit.
// The copy is exact at the bit level, so payloads of unmodified blocks can
// be relocated without re-quantization.
func (w *BitWriter) CopyBits(src []uint64, startBit, count int) {
	for count > 0 {
		n := count
		if n > 64 {
			n = 64
		}
		w.WriteBits(ReadBits(src, startBit, n), n)
		startBit += n
		count -= n
	}
}

// BitLen returns the number of bits written so far.
func (w *BitWriter) BitLen() int {
	return w.bitLen
}

// Words returns the backing word slice holding all written bits.
// Unused high bits of the last word are zero.
func (w *BitWriter) Words() []uint64 {
	return w.words[:WordsForBits(w.bitLen)]
}

func (w *BitWriter) grow(width int) {
	needed := WordsForBits(w.bitLen + width + 1)
	for len(w.words) < needed {
		w.words = append(w.words, 0)
	}
}

// ReadBits extracts a field of 'width' bits starting at bitPos.
// Width must be in [0, 64]; callers must ensure the field lies within the
// written portion of the stream.
func ReadBits(words []uint64, bitPos, width int) uint64 {
	if width == 0 {
		return 0
	}

	wordIdx := bitPos >> 6
	off := uint(bitPos & 63)

	v := words[wordIdx] >> off
	if int(off)+width > 64 && wordIdx+1 < len(words) {
		v |= words[wordIdx+1] << (64 - off)
	}

	if width < 64 {
		v &= (uint64(1) << width) - 1
	}

	return v
}

// SetBits overwrites a field of 'width' bits in place starting at bitPos.
// Width must be in [1, 63].
func SetBits(words []uint64, bitPos, width int, value uint64) {
	mask := (uint64(1) << width) - 1
	value &= mask

	wordIdx := bitPos >> 6
	off := uint(bitPos & 63)

	words[wordIdx] = (words[wordIdx] &^ (mask << off)) | (value << off)
	if int(off)+width > 64 {
		rem := uint(64) - off
		words[wordIdx+1] = (words[wordIdx+1] &^ (mask >> rem)) | (value >> rem)
	}
}
