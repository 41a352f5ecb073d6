package opusconfig

import (
	"encoding/binary"
	"fmt"

	"github.com/sirupsen/logrus"
)

// Opus uses Vorbis channel mapping, and Vorbis channel mapping specifies
// mappings for up to 8 channels. This information is part of the Vorbis I
// Specification: http://www.xiph.org/vorbis/doc/Vorbis_I_spec.html
const MaxChannels = 8

// MaxChannelsWithDefaultLayout is the largest channel count that mapping
// family 0 can describe. Streams with more channels require an explicit
// stream map.
const MaxChannelsWithDefaultLayout = 2

// Byte layout of the identification header. All multi-byte integer fields
// are little-endian. Offsets are relative to the start of the header.
const (
	// HeaderSize is the size of the header excluding optional mapping
	// information.
	HeaderSize = 19

	// LabelOffset is the offset to the magic string that starts the header.
	LabelOffset = 0

	// VersionOffset is the offset to the Opus version byte.
	VersionOffset = 8

	// ChannelsOffset is the offset to the channel count byte.
	ChannelsOffset = 9

	// SkipSamplesOffset is the offset to the 16-bit pre-skip value.
	SkipSamplesOffset = 10

	// SampleRateOffset is the offset to the 32-bit input sample rate in Hz.
	SampleRateOffset = 12

	// GainOffset is the offset to the 16-bit output gain value.
	GainOffset = 16

	// ChannelMappingOffset is the offset to the channel mapping family byte.
	ChannelMappingOffset = 18
)

// Headers with a non-zero mapping family carry stream map data beyond the
// always present HeaderSize bytes: the stream count, the coupled stream
// count, and one mapping byte per channel.
const (
	// NumStreamsOffset is the offset to the number of streams.
	NumStreamsOffset = 19

	// NumCoupledOffset is the offset to the number of coupled streams.
	NumCoupledOffset = 20

	// StreamMapOffset is the offset to the stream-to-channel mapping bytes.
	StreamMapOffset = 21
)

// headerLabel is the magic signature that identifies an Opus
// identification header.
var headerLabel = []byte("OpusHead")

// vorbisChannelMap holds the canonical stream map for each supported
// channel count, indexed by channel count minus one. Rows follow the
// Vorbis I channel ordering.
var vorbisChannelMap = [MaxChannels][MaxChannels]uint8{
	{0},
	{0, 1},
	{0, 2, 1},
	{0, 1, 2, 3},
	{0, 4, 1, 2, 3},
	{0, 4, 1, 2, 3, 5},
	{0, 4, 1, 2, 3, 5, 6},
	{0, 6, 1, 2, 3, 4, 5, 7},
}

// Header is the structured form of an Opus identification header.
//
// A Header is a plain value: it is produced fresh by ParseHeader or
// constructed by a caller that wants to serialize one, and holds no
// internal state beyond its fields. Concurrent use on independent
// values requires no coordination.
type Header struct {
	// Channels is the output channel count, 1 through MaxChannels.
	Channels uint8

	// SkipSamples is the number of decoded samples to discard at the
	// start of playback (encoder priming).
	SkipSamples uint16

	// GainDB is the Q7.8 fixed-point output gain applied at playback.
	GainDB int16

	// ChannelMapping is the channel mapping family: 0 for the default
	// mono/stereo layout, non-zero when an explicit stream map follows.
	ChannelMapping uint8

	// NumStreams is the number of independent Opus streams.
	NumStreams uint8

	// NumCoupled is the number of those streams that are stereo coupled.
	NumCoupled uint8

	// StreamMap maps each output channel to a decoded stream channel.
	// Only the first Channels entries are meaningful.
	StreamMap [MaxChannels]uint8
}

// String renders the header fields for logging.
func (h Header) String() string {
	n := int(h.Channels)
	if n > MaxChannels {
		n = MaxChannels
	}
	return fmt.Sprintf("channels=%d skip=%d gain=%d family=%d streams=%d coupled=%d map=%v",
		h.Channels, h.SkipSamples, h.GainDB, h.ChannelMapping,
		h.NumStreams, h.NumCoupled, h.StreamMap[:n])
}

// readLE16 reads a little-endian 16-bit value at offset, returning 0 when
// the second byte falls outside the buffer. Older producers truncated the
// optional trailing fields; the read stays tolerant for compatibility.
func readLE16(data []byte, offset int) uint16 {
	if offset+1 >= len(data) {
		return 0
	}
	return binary.LittleEndian.Uint16(data[offset : offset+2])
}

// ParseHeader parses a raw Opus identification header.
//
// The pre-skip and gain fields default to 0 when the buffer is too short
// to contain them; a missing or inconsistent stream map is a hard failure.
// On failure the returned Header is the zero value and must not be used.
//
// Parameters:
//   - data: Raw header bytes as supplied by the container
//
// Returns:
//   - Header: Parsed header value
//   - error: ErrTruncatedInput, ErrInvalidChannelCount, ErrMissingStreamMap
//     or ErrInconsistentMapping describing the failure
func ParseHeader(data []byte) (Header, error) {
	logrus.WithFields(logrus.Fields{
		"function":  "ParseHeader",
		"data_size": len(data),
	}).Debug("Parsing Opus identification header")

	if len(data) < HeaderSize {
		logrus.WithFields(logrus.Fields{
			"function":  "ParseHeader",
			"data_size": len(data),
		}).Error("Header size is too small")
		return Header{}, fmt.Errorf("%w: got %d bytes, need %d", ErrTruncatedInput, len(data), HeaderSize)
	}

	var h Header
	h.Channels = data[ChannelsOffset]
	if h.Channels < 1 || h.Channels > MaxChannels {
		logrus.WithFields(logrus.Fields{
			"function": "ParseHeader",
			"channels": h.Channels,
		}).Error("Invalid header, bad channel count")
		return Header{}, fmt.Errorf("%w: %d", ErrInvalidChannelCount, h.Channels)
	}

	h.SkipSamples = readLE16(data, SkipSamplesOffset)
	h.GainDB = int16(readLE16(data, GainOffset))
	h.ChannelMapping = data[ChannelMappingOffset]

	if h.ChannelMapping == 0 {
		if h.Channels > MaxChannelsWithDefaultLayout {
			logrus.WithFields(logrus.Fields{
				"function": "ParseHeader",
				"channels": h.Channels,
			}).Error("Invalid header, missing stream map")
			return Header{}, fmt.Errorf("%w: default layout only covers %d channels, header has %d",
				ErrMissingStreamMap, MaxChannelsWithDefaultLayout, h.Channels)
		}
		h.NumStreams = 1
		if h.Channels > 1 {
			h.NumCoupled = 1
		}
		h.StreamMap[0] = 0
		h.StreamMap[1] = 1
		return h, nil
	}

	if len(data) < StreamMapOffset+int(h.Channels) {
		logrus.WithFields(logrus.Fields{
			"function":  "ParseHeader",
			"channels":  h.Channels,
			"data_size": len(data),
		}).Error("Invalid stream map, insufficient data for current channel count")
		return Header{}, fmt.Errorf("%w: need %d bytes for %d channels, got %d",
			ErrMissingStreamMap, StreamMapOffset+int(h.Channels), h.Channels, len(data))
	}

	h.NumStreams = data[NumStreamsOffset]
	h.NumCoupled = data[NumCoupledOffset]
	if int(h.NumStreams)+int(h.NumCoupled) != int(h.Channels) {
		logrus.WithFields(logrus.Fields{
			"function": "ParseHeader",
			"streams":  h.NumStreams,
			"coupled":  h.NumCoupled,
			"channels": h.Channels,
		}).Error("Inconsistent channel mapping")
		return Header{}, fmt.Errorf("%w: %d streams + %d coupled != %d channels",
			ErrInconsistentMapping, h.NumStreams, h.NumCoupled, h.Channels)
	}
	copy(h.StreamMap[:h.Channels], data[StreamMapOffset:StreamMapOffset+int(h.Channels)])

	logrus.WithFields(logrus.Fields{
		"function": "ParseHeader",
		"header":   h.String(),
	}).Debug("Header parsed successfully")

	return h, nil
}
