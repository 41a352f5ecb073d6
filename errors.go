package opusconfig

import "errors"

// Sentinel errors for opusconfig operations.
// These errors enable reliable error classification using errors.Is().

// Parse errors.
var (
	// ErrTruncatedInput indicates the buffer is shorter than a required fixed region.
	ErrTruncatedInput = errors.New("input shorter than required header region")

	// ErrInvalidChannelCount indicates a channel count of 0 or above 8.
	ErrInvalidChannelCount = errors.New("invalid channel count")

	// ErrMissingStreamMap indicates mapping family 0 with more than 2 channels,
	// or a non-zero family without enough trailing bytes for the stream map.
	ErrMissingStreamMap = errors.New("missing stream map")

	// ErrInconsistentMapping indicates stream count plus coupled count does not
	// equal the channel count.
	ErrInconsistentMapping = errors.New("inconsistent channel mapping")
)

// Write errors.
var (
	// ErrBufferTooSmall indicates the output buffer cannot hold the
	// serialized header or the combined configuration.
	ErrBufferTooSmall = errors.New("output buffer too small")
)
