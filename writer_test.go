package opusconfig

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteHeaderInvalidChannelCount(t *testing.T) {
	buf := make([]byte, 64)
	for _, channels := range []uint8{0, 9} {
		_, err := WriteHeader(Header{Channels: channels}, 48000, buf)
		assert.ErrorIs(t, err, ErrInvalidChannelCount, "channels %d", channels)
	}
}

func TestWriteHeaderBufferTooSmall(t *testing.T) {
	h := Header{Channels: 2}

	// Capacity is checked against the mapped layout size even for the
	// default layout.
	_, err := WriteHeader(h, 48000, make([]byte, StreamMapOffset+1))
	assert.ErrorIs(t, err, ErrBufferTooSmall)

	n, err := WriteHeader(h, 48000, make([]byte, StreamMapOffset+2))
	require.NoError(t, err)
	assert.Equal(t, HeaderSize, n)
}

func TestWriteHeaderStereoLayout(t *testing.T) {
	buf := make([]byte, 64)
	n, err := WriteHeader(Header{Channels: 2, SkipSamples: 312, GainDB: -2}, 48000, buf)
	require.NoError(t, err)
	require.Equal(t, HeaderSize, n)

	assert.Equal(t, []byte("OpusHead"), buf[LabelOffset:LabelOffset+8])
	assert.Equal(t, uint8(1), buf[VersionOffset])
	assert.Equal(t, uint8(2), buf[ChannelsOffset])
	assert.Equal(t, uint16(312), binary.LittleEndian.Uint16(buf[SkipSamplesOffset:]))
	assert.Equal(t, uint32(48000), binary.LittleEndian.Uint32(buf[SampleRateOffset:]))
	assert.Equal(t, int16(-2), int16(binary.LittleEndian.Uint16(buf[GainOffset:])))
	assert.Equal(t, uint8(0), buf[ChannelMappingOffset])
}

func TestWriteHeaderMultichannelLayout(t *testing.T) {
	buf := make([]byte, 64)
	n, err := WriteHeader(Header{Channels: 6}, 48000, buf)
	require.NoError(t, err)

	// The reported length is one byte past the last byte written; the
	// downstream framing depends on it.
	assert.Equal(t, StreamMapOffset+6+1, n)

	assert.Equal(t, uint8(1), buf[ChannelMappingOffset])
	assert.Equal(t, uint8(6), buf[NumStreamsOffset])
	assert.Equal(t, uint8(0), buf[NumCoupledOffset])
	assert.Equal(t, []byte{0, 4, 1, 2, 3, 5}, buf[StreamMapOffset:StreamMapOffset+6])
}

func TestWriteHeaderClearsCapacity(t *testing.T) {
	buf := make([]byte, 64)
	for i := range buf {
		buf[i] = 0xFF
	}

	n, err := WriteHeader(Header{Channels: 2}, 48000, buf)
	require.NoError(t, err)

	for i := n; i < len(buf); i++ {
		assert.Equal(t, byte(0), buf[i], "offset %d", i)
	}
}

func TestWriteUnifiedConfigMinimumSize(t *testing.T) {
	_, err := WriteUnifiedConfig(Header{Channels: 2}, 48000, make([]byte, UnifiedMinSize-1), 312, 3840)
	assert.ErrorIs(t, err, ErrBufferTooSmall)
}

func TestWriteUnifiedConfigRequiresHeadroom(t *testing.T) {
	// A buffer of exactly UnifiedMinSize fails the post-header capacity
	// check: the header length must be strictly below capacity minus both
	// extension blocks.
	_, err := WriteUnifiedConfig(Header{Channels: 2}, 48000, make([]byte, UnifiedMinSize), 312, 3840)
	assert.ErrorIs(t, err, ErrBufferTooSmall)
}

func TestWriteUnifiedConfigPropagatesHeaderFailure(t *testing.T) {
	_, err := WriteUnifiedConfig(Header{Channels: 0}, 48000, make([]byte, 128), 312, 3840)
	assert.ErrorIs(t, err, ErrInvalidChannelCount)
}

func TestWriteUnifiedConfigLayout(t *testing.T) {
	buf := make([]byte, 128)
	n, err := WriteUnifiedConfig(Header{Channels: 2, SkipSamples: 312}, 48000, buf, 312, 3840)
	require.NoError(t, err)
	require.Equal(t, HeaderSize+2*ExtensionBlockSize, n)

	delay := buf[HeaderSize : HeaderSize+ExtensionBlockSize]
	assert.Equal(t, CodecDelayMarker, delay[:MarkerSize])
	assert.Equal(t, uint64(8), binary.LittleEndian.Uint64(delay[MarkerSize:]))
	assert.Equal(t, uint64(312), binary.LittleEndian.Uint64(delay[MarkerSize+LengthSize:]))

	preRoll := buf[HeaderSize+ExtensionBlockSize : n]
	assert.Equal(t, SeekPreRollMarker, preRoll[:MarkerSize])
	assert.Equal(t, uint64(8), binary.LittleEndian.Uint64(preRoll[MarkerSize:]))
	assert.Equal(t, uint64(3840), binary.LittleEndian.Uint64(preRoll[MarkerSize+LengthSize:]))
}

func TestWriteUnifiedConfigMultichannel(t *testing.T) {
	buf := make([]byte, 128)
	n, err := WriteUnifiedConfig(Header{Channels: 8}, 48000, buf, 312, 3840)
	require.NoError(t, err)

	headerLen := StreamMapOffset + 8 + 1
	assert.Equal(t, headerLen+2*ExtensionBlockSize, n)
	assert.Equal(t, CodecDelayMarker, buf[headerLen:headerLen+MarkerSize])
}
