package ogg

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

const (
	pageSignature = "OggS"
	pageHeaderLen = 27

	// headerTypeBeginningOfStream marks the first page of a logical stream.
	headerTypeBeginningOfStream = 0x02

	// idSignature starts the payload of an Opus identification page.
	idSignature = "OpusHead"
)

// Sentinel errors for Ogg page reading.
var (
	// ErrBadPageSignature indicates a page without the OggS capture pattern.
	ErrBadPageSignature = errors.New("bad Ogg page capture pattern")

	// ErrNotBeginningOfStream indicates the first page is not flagged as
	// the beginning of a logical stream.
	ErrNotBeginningOfStream = errors.New("first page is not a beginning-of-stream page")

	// ErrNotOpusStream indicates the identification payload does not carry
	// the OpusHead signature.
	ErrNotOpusStream = errors.New("identification payload is not OpusHead")

	// ErrEmptyPage indicates a page with no segments where a payload was
	// required.
	ErrEmptyPage = errors.New("page carries no segments")
)

// PageHeader is the decoded header of one Ogg page.
type PageHeader struct {
	// GranulePosition is the codec-specific position marker of the page.
	GranulePosition uint64

	// Serial identifies the logical stream the page belongs to.
	Serial uint32

	// Index is the sequence number of the page within its stream.
	Index uint32

	// Version is the Ogg stream structure version, always 0 today.
	Version uint8

	// HeaderType carries the continuation/BOS/EOS flags.
	HeaderType uint8

	segmentCount uint8
}

// Reader walks Ogg pages from a stream.
type Reader struct {
	stream io.Reader
}

// NewReader creates a page reader over r.
func NewReader(r io.Reader) *Reader {
	return &Reader{stream: r}
}

// ReadIDHeader reads the beginning-of-stream page and returns its raw
// OpusHead payload, suitable for opusconfig.ParseHeader.
//
// Returns:
//   - []byte: Raw identification header payload
//   - error: A read failure or one of the package sentinel errors
func (r *Reader) ReadIDHeader() ([]byte, error) {
	segments, header, err := r.NextPage()
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "ReadIDHeader",
			"error":    err.Error(),
		}).Error("Failed to read identification page")
		return nil, fmt.Errorf("read identification page: %w", err)
	}
	if header.HeaderType&headerTypeBeginningOfStream == 0 {
		return nil, fmt.Errorf("%w: header type 0x%02x", ErrNotBeginningOfStream, header.HeaderType)
	}
	if len(segments) == 0 {
		return nil, ErrEmptyPage
	}

	payload := segments[0]
	if len(payload) < len(idSignature) || string(payload[:len(idSignature)]) != idSignature {
		return nil, ErrNotOpusStream
	}

	logrus.WithFields(logrus.Fields{
		"function":     "ReadIDHeader",
		"payload_size": len(payload),
		"serial":       header.Serial,
	}).Debug("Identification payload extracted")

	return payload, nil
}

// NextPage reads one Ogg page, returning its reassembled segment payloads
// and decoded header. Segments spanning 255-byte lacing values are joined;
// a packet continued onto the next page is returned as a partial segment.
func (r *Reader) NextPage() ([][]byte, *PageHeader, error) {
	raw := make([]byte, pageHeaderLen)
	if _, err := io.ReadFull(r.stream, raw); err != nil {
		return nil, nil, fmt.Errorf("read page header: %w", err)
	}
	if string(raw[0:4]) != pageSignature {
		return nil, nil, ErrBadPageSignature
	}

	header := &PageHeader{
		Version:         raw[4],
		HeaderType:      raw[5],
		GranulePosition: binary.LittleEndian.Uint64(raw[6:14]),
		Serial:          binary.LittleEndian.Uint32(raw[14:18]),
		Index:           binary.LittleEndian.Uint32(raw[18:22]),
		segmentCount:    raw[26],
	}

	lacing := make([]byte, header.segmentCount)
	if _, err := io.ReadFull(r.stream, lacing); err != nil {
		return nil, nil, fmt.Errorf("read lacing values: %w", err)
	}

	segments := make([][]byte, 0, header.segmentCount)
	segmentSize := 0
	for _, size := range lacing {
		segmentSize += int(size)
		if size == 255 {
			continue
		}
		segment := make([]byte, segmentSize)
		if _, err := io.ReadFull(r.stream, segment); err != nil {
			return nil, nil, fmt.Errorf("read segment: %w", err)
		}
		segments = append(segments, segment)
		segmentSize = 0
	}
	if segmentSize > 0 {
		// Packet continues on the next page; return what this page holds.
		segment := make([]byte, segmentSize)
		if _, err := io.ReadFull(r.stream, segment); err != nil {
			return nil, nil, fmt.Errorf("read continued segment: %w", err)
		}
		segments = append(segments, segment)
	}

	return segments, header, nil
}
