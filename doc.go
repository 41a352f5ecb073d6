// Package opusconfig implements the binary codec for Opus stream
// configuration: the OpusHead identification header and the unified
// configuration buffer that carries codec delay and seek pre-roll
// alongside it.
//
// The package covers the full read/write path for the configuration blob:
// parsing raw header bytes into a [Header], serializing a [Header] back
// into canonical bytes (deriving the standard Vorbis channel map when
// more than 2 channels are in play), packing a header together with the
// two extension values into one combined buffer, and splitting such a
// buffer back into its three regions without copying.
//
// # Parsing and Writing
//
//	header, err := opusconfig.ParseHeader(raw)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	buf := make([]byte, 128)
//	n, err := opusconfig.WriteHeader(header, 48000, buf)
//
// # Unified Configuration
//
// A unified configuration buffer is the serialized header followed by two
// tagged extension blocks:
//
//	n, err := opusconfig.WriteUnifiedConfig(header, 48000, buf, 312, 3840)
//	cfg := opusconfig.SplitUnifiedConfig(buf[:n])
//	delay, ok := cfg.CodecDelaySamples()
//
// SplitUnifiedConfig tolerates buffers from older producers that carry a
// bare header: the whole input is reported as the header region and both
// payload views stay nil.
//
// # Errors
//
// Failures are reported through sentinel errors (ErrTruncatedInput,
// ErrInvalidChannelCount, ErrMissingStreamMap, ErrInconsistentMapping,
// ErrBufferTooSmall) wrapped with context, suitable for errors.Is().
//
// All operations are synchronous and free of shared mutable state;
// independent buffers may be processed concurrently without coordination.
package opusconfig
