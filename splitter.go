package opusconfig

import (
	"bytes"
	"encoding/binary"

	"github.com/sirupsen/logrus"
)

// UnifiedConfig holds the sub-views located by SplitUnifiedConfig. Every
// field aliases the input buffer; no bytes are copied. CodecDelay and
// SeekPreRoll are nil when the corresponding block is absent.
type UnifiedConfig struct {
	// OpusHead is the identification header region.
	OpusHead []byte

	// CodecDelay is the 8-byte codec delay payload, if present.
	CodecDelay []byte

	// SeekPreRoll is the 8-byte seek pre-roll payload, if present.
	SeekPreRoll []byte
}

// CodecDelaySamples decodes the codec delay payload. The second return is
// false when no codec delay block was found.
func (c UnifiedConfig) CodecDelaySamples() (uint64, bool) {
	if len(c.CodecDelay) < PayloadSize {
		return 0, false
	}
	return binary.LittleEndian.Uint64(c.CodecDelay), true
}

// SeekPreRollSamples decodes the seek pre-roll payload. The second return
// is false when no seek pre-roll block was found.
func (c UnifiedConfig) SeekPreRollSamples() (uint64, bool) {
	if len(c.SeekPreRoll) < PayloadSize {
		return 0, false
	}
	return binary.LittleEndian.Uint64(c.SeekPreRoll), true
}

// SplitUnifiedConfig locates the extension blocks inside a combined
// configuration buffer and reports the three regions as views into data.
//
// Buffers from older producers contain only the header; those split into
// an OpusHead view spanning the whole input with both payload views nil.
// The scan walks the buffer a byte at a time so unrecognized interleaved
// data is stepped over rather than misparsed, and the two markers are
// located independently in either order. Whichever marker appears first
// bounds the header region.
//
// Parameters:
//   - data: Combined configuration buffer, caller-owned
//
// Returns:
//   - UnifiedConfig: Sub-views into data; never an error, absent blocks
//     simply stay nil
func SplitUnifiedConfig(data []byte) UnifiedConfig {
	logrus.WithFields(logrus.Fields{
		"function":  "SplitUnifiedConfig",
		"data_size": len(data),
	}).Debug("Splitting unified Opus configuration")

	cfg := UnifiedConfig{OpusHead: data}
	if len(data) < UnifiedMinSize {
		return cfg
	}

	headSize := len(data)
	for i := 0; i+ExtensionBlockSize <= len(data); {
		block := data[i:]
		switch {
		case bytes.HasPrefix(block, CodecDelayMarker):
			headSize = min(headSize, i)
			cfg.CodecDelay = data[i+MarkerSize+LengthSize : i+ExtensionBlockSize]
			i += ExtensionBlockSize
		case bytes.HasPrefix(block, SeekPreRollMarker):
			headSize = min(headSize, i)
			cfg.SeekPreRoll = data[i+MarkerSize+LengthSize : i+ExtensionBlockSize]
			i += ExtensionBlockSize
		default:
			i++
		}
	}
	cfg.OpusHead = data[:headSize]

	logrus.WithFields(logrus.Fields{
		"function":        "SplitUnifiedConfig",
		"head_size":       headSize,
		"has_codec_delay": cfg.CodecDelay != nil,
		"has_seek_roll":   cfg.SeekPreRoll != nil,
	}).Debug("Unified configuration split completed")

	return cfg
}
