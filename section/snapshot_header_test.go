package section

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/heightfield/errs"
	"github.com/arloliu/heightfield/format"
)

func sampleHeader() *SnapshotHeader {
	h := NewSnapshotHeader()
	h.BitsPerSample = 4
	h.SampleCount = 32
	h.BlockSize = 4
	h.Tolerance = 0.25
	h.Offset = [3]float32{3, 5, 7}
	h.Scale = [3]float32{9, 13, 17}
	h.MinHeight = -10
	h.MaxHeight = 42
	h.BoundsDeclared = 1
	h.MaterialWidth = 2
	h.MaterialCount = 3
	h.HeightBitLen = 4096
	h.PayloadSize = 1234
	h.RawPayloadSize = 2345
	h.Checksum = 0xDEADBEEFCAFEF00D
	h.BlockCount = 64

	return h
}

func TestSnapshotHeader_RoundTrip(t *testing.T) {
	h := sampleHeader()

	data := h.Bytes()
	require.Len(t, data, HeaderSize)

	parsed, err := ParseSnapshotHeader(data)
	require.NoError(t, err)
	require.Equal(t, *h, parsed)
}

func TestSnapshotHeader_RoundTripBigEndian(t *testing.T) {
	h := sampleHeader()
	h.Flag.SetBigEndian()
	h.Flag.SetCompression(format.CompressionZstd)

	parsed, err := ParseSnapshotHeader(h.Bytes())
	require.NoError(t, err)
	require.Equal(t, *h, parsed)
	require.False(t, parsed.Flag.IsLittleEndian())
	require.Equal(t, format.CompressionZstd, parsed.Flag.GetCompression())
}

func TestSnapshotHeader_ParseTruncated(t *testing.T) {
	_, err := ParseSnapshotHeader(make([]byte, HeaderSize-1))
	require.ErrorIs(t, err, errs.ErrInvalidSnapshot)
}

func TestSnapshotHeader_ParseBadMagic(t *testing.T) {
	data := sampleHeader().Bytes()
	data[1] ^= 0xF0

	_, err := ParseSnapshotHeader(data)
	require.ErrorIs(t, err, errs.ErrInvalidSnapshot)
}

func TestSnapshotHeader_ParseReservedBits(t *testing.T) {
	data := sampleHeader().Bytes()
	data[0] |= 0x01

	_, err := ParseSnapshotHeader(data)
	require.ErrorIs(t, err, errs.ErrInvalidSnapshot)
}

func TestSnapshotHeader_ParseBadCompression(t *testing.T) {
	data := sampleHeader().Bytes()
	data[2] = 0x7F

	_, err := ParseSnapshotHeader(data)
	require.ErrorIs(t, err, errs.ErrInvalidSnapshot)
}

func TestSnapshotFlag_Defaults(t *testing.T) {
	f := NewSnapshotFlag()

	require.True(t, f.IsLittleEndian())
	require.Equal(t, format.CompressionNone, f.GetCompression())
	require.NoError(t, f.Validate())
}
