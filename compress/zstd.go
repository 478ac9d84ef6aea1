package compress

// ZstdCompressor compresses snapshot payloads with Zstandard. Best ratio of
// the built-in codecs; the natural choice for archived or transmitted
// terrain snapshots.
//
// Two implementations back this type: a cgo binding (gozstd) on cgo builds
// and a pure-Go fallback otherwise. Both produce standard zstd frames and
// are wire-compatible.
type ZstdCompressor struct{}

var _ Codec = (*ZstdCompressor)(nil)

// NewZstdCompressor creates a new Zstd codec with default settings.
func NewZstdCompressor() ZstdCompressor {
	return ZstdCompressor{}
}
