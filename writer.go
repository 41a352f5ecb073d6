package opusconfig

import (
	"encoding/binary"
	"fmt"

	"github.com/sirupsen/logrus"
)

// A combined configuration buffer carries the serialized header followed by
// two extension blocks signalling codec delay and seek pre-roll:
//
//	Marker (8 bytes) | Length (8 bytes) | Samples (8 bytes)
//
// The length field always holds 8. Markers supported:
//
//	AOPUSDLY - signals codec delay
//	AOPUSPRL - signals seek pre-roll
const (
	// MarkerSize is the size of an extension block marker.
	MarkerSize = 8

	// LengthSize is the size of an extension block length field.
	LengthSize = 8

	// PayloadSize is the size of an extension block sample-count payload.
	PayloadSize = 8

	// ExtensionBlockSize is the total size of one extension block.
	ExtensionBlockSize = MarkerSize + LengthSize + PayloadSize

	// UnifiedMinSize is the minimum capacity for a combined configuration
	// buffer: the fixed header region plus both extension blocks.
	UnifiedMinSize = HeaderSize + 2*ExtensionBlockSize

	// extensionLength is the value stored in every length field.
	extensionLength = 8
)

// Extension block markers.
var (
	// CodecDelayMarker tags the codec delay extension block.
	CodecDelayMarker = []byte("AOPUSDLY")

	// SeekPreRollMarker tags the seek pre-roll extension block.
	SeekPreRollMarker = []byte("AOPUSPRL")
)

// WriteHeader serializes a header into output and returns the header length
// for framing purposes.
//
// The entire output capacity is cleared before writing. For more than 2
// channels the canonical Vorbis stream map is emitted with every stream
// uncoupled, and the returned length is one byte past the last byte
// written; downstream framing depends on that length, so it is reported
// as-is.
//
// Parameters:
//   - h: Header value to serialize
//   - inputSampleRate: Original input sample rate in Hz
//   - output: Destination buffer, at least StreamMapOffset+h.Channels bytes
//
// Returns:
//   - int: Header length to use when framing the serialized bytes
//   - error: ErrInvalidChannelCount or ErrBufferTooSmall on failure
func WriteHeader(h Header, inputSampleRate uint32, output []byte) (int, error) {
	logrus.WithFields(logrus.Fields{
		"function":    "WriteHeader",
		"channels":    h.Channels,
		"sample_rate": inputSampleRate,
		"bandwidth":   BandwidthForRate(inputSampleRate).String(),
		"capacity":    len(output),
	}).Debug("Serializing Opus identification header")

	if h.Channels < 1 || h.Channels > MaxChannels {
		logrus.WithFields(logrus.Fields{
			"function": "WriteHeader",
			"channels": h.Channels,
		}).Error("Invalid header, bad channel count")
		return 0, fmt.Errorf("%w: %d", ErrInvalidChannelCount, h.Channels)
	}

	totalSize := StreamMapOffset + int(h.Channels)
	if len(output) < totalSize {
		logrus.WithFields(logrus.Fields{
			"function": "WriteHeader",
			"capacity": len(output),
			"required": totalSize,
		}).Error("Output buffer too small for header")
		return 0, fmt.Errorf("%w: capacity %d, need %d", ErrBufferTooSmall, len(output), totalSize)
	}

	// Ensure the entire capacity is cleared, even though much of it is
	// overwritten below.
	clear(output)

	copy(output[LabelOffset:], headerLabel)
	output[VersionOffset] = 1
	output[ChannelsOffset] = h.Channels
	binary.LittleEndian.PutUint16(output[SkipSamplesOffset:], h.SkipSamples)
	binary.LittleEndian.PutUint32(output[SampleRateOffset:], inputSampleRate)
	binary.LittleEndian.PutUint16(output[GainOffset:], uint16(h.GainDB))

	if h.Channels <= MaxChannelsWithDefaultLayout {
		output[ChannelMappingOffset] = 0
		return ChannelMappingOffset + 1, nil
	}

	output[ChannelMappingOffset] = 1
	// Coupling is never inferred on the write path: every stream is
	// reported as independent.
	output[NumStreamsOffset] = h.Channels
	output[NumCoupledOffset] = 0
	copy(output[StreamMapOffset:], vorbisChannelMap[h.Channels-1][:h.Channels])
	return StreamMapOffset + int(h.Channels) + 1, nil
}

// WriteUnifiedConfig builds a combined configuration buffer: the serialized
// header followed by the codec delay and seek pre-roll extension blocks.
//
// Parameters:
//   - h: Header value to serialize
//   - inputSampleRate: Original input sample rate in Hz
//   - output: Destination buffer, at least UnifiedMinSize bytes
//   - codecDelay: Codec delay in sample units
//   - seekPreRoll: Seek pre-roll in sample units
//
// Returns:
//   - int: Total bytes of combined configuration written
//   - error: ErrBufferTooSmall, or a header serialization failure
func WriteUnifiedConfig(h Header, inputSampleRate uint32, output []byte, codecDelay, seekPreRoll uint64) (int, error) {
	logrus.WithFields(logrus.Fields{
		"function":      "WriteUnifiedConfig",
		"channels":      h.Channels,
		"capacity":      len(output),
		"codec_delay":   codecDelay,
		"seek_pre_roll": seekPreRoll,
	}).Debug("Building unified Opus configuration")

	if len(output) < UnifiedMinSize {
		logrus.WithFields(logrus.Fields{
			"function": "WriteUnifiedConfig",
			"capacity": len(output),
			"required": UnifiedMinSize,
		}).Error("Buffer not large enough to hold unified configuration")
		return 0, fmt.Errorf("%w: capacity %d, need at least %d", ErrBufferTooSmall, len(output), UnifiedMinSize)
	}

	headerLen, err := WriteHeader(h, inputSampleRate, output)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "WriteUnifiedConfig",
			"error":    err.Error(),
		}).Error("Header serialization failed")
		return 0, fmt.Errorf("write header: %w", err)
	}
	if headerLen >= len(output)-2*ExtensionBlockSize {
		logrus.WithFields(logrus.Fields{
			"function":   "WriteUnifiedConfig",
			"header_len": headerLen,
			"capacity":   len(output),
		}).Error("Buffer not large enough to hold codec delay and seek pre-roll")
		return 0, fmt.Errorf("%w: %d header bytes leave no room for extension blocks in %d",
			ErrBufferTooSmall, headerLen, len(output))
	}

	total := appendExtensionBlock(output, headerLen, CodecDelayMarker, codecDelay)
	total = appendExtensionBlock(output, total, SeekPreRollMarker, seekPreRoll)

	logrus.WithFields(logrus.Fields{
		"function":    "WriteUnifiedConfig",
		"header_len":  headerLen,
		"total_bytes": total,
	}).Debug("Unified configuration written successfully")

	return total, nil
}

// appendExtensionBlock writes one marker/length/samples block at offset and
// returns the offset past the block. The caller has already checked capacity.
func appendExtensionBlock(output []byte, offset int, marker []byte, samples uint64) int {
	copy(output[offset:], marker)
	offset += MarkerSize
	binary.LittleEndian.PutUint64(output[offset:], extensionLength)
	offset += LengthSize
	binary.LittleEndian.PutUint64(output[offset:], samples)
	offset += PayloadSize
	return offset
}
