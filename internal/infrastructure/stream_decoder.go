package infrastructure

import (
	"websocket-client/internal/domain"
	"websocket-client/pkg/protocol"
)

type decodeState int

const (
	stateNeedHeader decodeState = iota
	stateNeedPayload
	stateComplete
)

// StreamDecoder decodes frames from a byte stream that arrives in arbitrary
// chunks. A frame split across several reads is completed on a later Feed
// instead of being dropped.
//
// Payloads returned by Next alias the decoder's buffer and are valid until
// the next call to Feed or Reset.
type StreamDecoder struct {
	buf    []byte
	pos    int
	state  decodeState
	header frameHeader
}

// NewStreamDecoder creates an empty stream decoder
func NewStreamDecoder() *StreamDecoder {
	return &StreamDecoder{buf: make([]byte, 0, protocol.ReadBufferSize)}
}

// Feed appends newly received bytes
func (d *StreamDecoder) Feed(p []byte) {
	if d.pos > 0 {
		n := copy(d.buf, d.buf[d.pos:])
		d.buf = d.buf[:n]
		d.pos = 0
	}
	d.buf = append(d.buf, p...)
}

// Buffered returns the number of bytes not consumed yet
func (d *StreamDecoder) Buffered() int {
	return len(d.buf) - d.pos
}

// Reset drops all buffered bytes and any partially parsed frame
func (d *StreamDecoder) Reset() {
	d.buf = d.buf[:0]
	d.pos = 0
	d.state = stateNeedHeader
	d.header = frameHeader{}
}

// Next returns the next complete frame.
//
// It returns domain.ErrIncompleteFrame when more bytes are needed,
// domain.ErrMaskedServerFrame after skipping a masked frame, and
// domain.ErrUnsupportedLength after discarding everything buffered, since
// the stream cannot be resynchronised without the 64-bit length.
func (d *StreamDecoder) Next() (*domain.Frame, error) {
	if d.state == stateComplete {
		d.state = stateNeedHeader
	}

	if d.state == stateNeedHeader {
		h, err := parseHeader(d.buf[d.pos:])
		switch err {
		case nil:
		case domain.ErrUnsupportedLength:
			d.Reset()
			return nil, err
		default:
			return nil, err
		}
		if h.masked {
			h.size += protocol.MaskingKeySize
		}
		d.header = h
		d.state = stateNeedPayload
	}

	avail := d.buf[d.pos:]
	total := d.header.size + d.header.length
	if len(avail) < total {
		return nil, domain.ErrIncompleteFrame
	}

	payload := avail[d.header.size:total:total]
	d.pos += total
	d.state = stateComplete

	if d.header.masked {
		return nil, domain.ErrMaskedServerFrame
	}
	return d.header.frame(payload), nil
}
