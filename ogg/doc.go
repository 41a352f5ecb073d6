// Package ogg extracts Opus configuration payloads from Ogg streams.
//
// It walks Ogg pages from an io.Reader, reassembles lacing segments, and
// hands the raw OpusHead payload of the beginning-of-stream page to the
// caller, ready for opusconfig.ParseHeader. Only reading is supported.
package ogg
