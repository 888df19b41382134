package infrastructure

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"io"

	"websocket-client/internal/domain"
	"websocket-client/pkg/protocol"
)

// frameHeader is the fixed part of a frame header, up to and including the
// extended length. size does not count the masking key.
type frameHeader struct {
	fin      bool
	opcode   domain.Opcode
	masked   bool
	encoding domain.LengthEncoding
	length   int
	size     int
}

// parseHeader parses the header at the start of buf
func parseHeader(buf []byte) (frameHeader, error) {
	var h frameHeader
	if len(buf) < protocol.MinHeaderSize {
		return h, domain.ErrIncompleteFrame
	}

	h.fin = buf[0]&protocol.FinBit != 0
	h.opcode = domain.Opcode(buf[0] & protocol.OpcodeMask)
	h.masked = buf[1]&protocol.MaskBit != 0
	h.size = protocol.MinHeaderSize

	switch code := buf[1] & protocol.PayloadLengthMask; code {
	case protocol.PayloadLen16Bit:
		if len(buf) < protocol.Ext16HeaderSize {
			return h, domain.ErrIncompleteFrame
		}
		h.encoding = domain.Length16Bit
		h.length = int(binary.BigEndian.Uint16(buf[2:4]))
		h.size = protocol.Ext16HeaderSize
	case protocol.PayloadLen64Bit:
		h.encoding = domain.Length64Bit
		return h, domain.ErrUnsupportedLength
	default:
		h.encoding = domain.Length7Bit
		h.length = int(code)
	}
	return h, nil
}

// frame builds the domain frame for h with the given payload
func (h frameHeader) frame(payload []byte) *domain.Frame {
	return &domain.Frame{
		FIN:            h.fin,
		Opcode:         h.opcode,
		Masked:         h.masked,
		LengthEncoding: h.encoding,
		PayloadLen:     uint64(h.length),
		Payload:        payload,
	}
}

// FrameParser decodes frames sent by a server and encodes masked frames
// sent by the client
type FrameParser struct {
	maskSource io.Reader
}

// NewFrameParser creates a frame parser drawing masking keys from maskSource.
// A nil source selects crypto/rand.Reader.
func NewFrameParser(maskSource io.Reader) *FrameParser {
	if maskSource == nil {
		maskSource = rand.Reader
	}
	return &FrameParser{maskSource: maskSource}
}

// Decode parses a single frame at the start of buf and returns it together
// with the number of bytes it occupies. The payload aliases buf.
//
// Frames that are not fully buffered yield domain.ErrIncompleteFrame, 64-bit
// lengths domain.ErrUnsupportedLength and masked frames
// domain.ErrMaskedServerFrame. Decode never reads past len(buf).
func (fp *FrameParser) Decode(buf []byte) (*domain.Frame, int, error) {
	h, err := parseHeader(buf)
	if err != nil {
		return nil, 0, err
	}

	// A server must never mask frames sent to a client
	if h.masked {
		return nil, 0, domain.ErrMaskedServerFrame
	}

	if len(buf)-h.size < h.length {
		return nil, 0, domain.ErrIncompleteFrame
	}

	end := h.size + h.length
	return h.frame(buf[h.size:end:end]), end, nil
}

// Encode builds a final, masked frame carrying payload. Payloads longer than
// 65535 bytes are rejected since 64-bit lengths are not supported.
func (fp *FrameParser) Encode(opcode domain.Opcode, payload []byte) ([]byte, error) {
	if len(payload) > protocol.MaxPayloadSize16Bit {
		return nil, domain.ErrPayloadTooLarge
	}
	if err := domain.NewFrame(opcode, payload).Validate(); err != nil {
		return nil, err
	}

	var key [protocol.MaskingKeySize]byte
	if _, err := io.ReadFull(fp.maskSource, key[:]); err != nil {
		return nil, fmt.Errorf("masking key: %w", err)
	}

	out := make([]byte, 0, protocol.MaxClientHeaderSize+len(payload))
	out = append(out, protocol.FinBit|byte(opcode))
	if len(payload) <= protocol.MaxControlFramePayloadSize {
		out = append(out, protocol.MaskBit|byte(len(payload)))
	} else {
		out = append(out, protocol.MaskBit|protocol.PayloadLen16Bit)
		out = binary.BigEndian.AppendUint16(out, uint16(len(payload)))
	}
	out = append(out, key[:]...)

	start := len(out)
	out = append(out, payload...)
	MaskBytes(key, 0, out[start:])
	return out, nil
}

// WriteFrame encodes a frame and writes it with a single Write
func (fp *FrameParser) WriteFrame(w io.Writer, opcode domain.Opcode, payload []byte) error {
	data, err := fp.Encode(opcode, payload)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
