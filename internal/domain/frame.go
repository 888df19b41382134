package domain

import (
	"fmt"

	"websocket-client/pkg/protocol"
)

// Opcode is the 4-bit frame type carried in the low nibble of the first
// header byte
type Opcode byte

// Opcodes defined by RFC 6455
const (
	OpcodeContinuation Opcode = 0x0
	OpcodeText         Opcode = 0x1
	OpcodeBinary       Opcode = 0x2
	OpcodeClose        Opcode = 0x8
	OpcodePing         Opcode = 0x9
	OpcodePong         Opcode = 0xA
)

var opcodeNames = map[Opcode]string{
	OpcodeContinuation: "Continuation",
	OpcodeText:         "Text",
	OpcodeBinary:       "Binary",
	OpcodeClose:        "Close",
	OpcodePing:         "Ping",
	OpcodePong:         "Pong",
}

// Valid reports whether o is one of the defined opcodes
func (o Opcode) Valid() bool {
	_, ok := opcodeNames[o]
	return ok
}

// IsControl reports whether o is close, ping or pong
func (o Opcode) IsControl() bool {
	return o&0x8 != 0
}

func (o Opcode) String() string {
	if name, ok := opcodeNames[o]; ok {
		return name
	}
	return fmt.Sprintf("Unknown(0x%X)", byte(o))
}

// LengthEncoding is the payload length variant carried in the second header byte
type LengthEncoding int

const (
	// Length7Bit means the 7-bit field holds the length itself (0-125)
	Length7Bit LengthEncoding = iota
	// Length16Bit means a 16-bit big-endian length follows the header
	Length16Bit
	// Length64Bit means a 64-bit length follows the header. Not supported.
	Length64Bit
)

func (e LengthEncoding) String() string {
	switch e {
	case Length7Bit:
		return "7-bit"
	case Length16Bit:
		return "16-bit"
	case Length64Bit:
		return "64-bit"
	default:
		return fmt.Sprintf("Unknown(%d)", int(e))
	}
}

// LengthEncodingFor returns the smallest encoding able to carry n payload bytes
func LengthEncodingFor(n uint64) LengthEncoding {
	switch {
	case n <= protocol.MaxControlFramePayloadSize:
		return Length7Bit
	case n <= protocol.MaxPayloadSize16Bit:
		return Length16Bit
	default:
		return Length64Bit
	}
}

// Frame is a single WebSocket frame.
//
// Payload of a decoded frame aliases the receive buffer it was decoded from
// and is only valid until that buffer is reused.
type Frame struct {
	FIN            bool
	Opcode         Opcode
	Masked         bool
	LengthEncoding LengthEncoding // how PayloadLen was encoded on the wire
	PayloadLen     uint64
	MaskingKey     [4]byte // zero unless Masked
	Payload        []byte
}

// NewFrame creates a final, unmasked frame carrying payload
func NewFrame(opcode Opcode, payload []byte) *Frame {
	n := uint64(len(payload))
	return &Frame{
		FIN:            true,
		Opcode:         opcode,
		LengthEncoding: LengthEncodingFor(n),
		PayloadLen:     n,
		Payload:        payload,
	}
}

// Validate checks the frame against the subset of RFC 6455 this client
// speaks: known opcode, unfragmented control frames of at most 125 bytes,
// no 64-bit lengths.
func (f *Frame) Validate() error {
	switch {
	case !f.Opcode.Valid():
		return fmt.Errorf("%w: %s", ErrInvalidOpcode, f.Opcode)
	case f.Opcode.IsControl() && (!f.FIN || f.PayloadLen > protocol.MaxControlFramePayloadSize):
		return fmt.Errorf("%w: %s frame must be final and at most %d bytes",
			ErrInvalidFrameStructure, f.Opcode, protocol.MaxControlFramePayloadSize)
	case f.LengthEncoding == Length64Bit:
		return ErrUnsupportedLength
	case uint64(len(f.Payload)) != f.PayloadLen:
		return fmt.Errorf("%w: declared %d bytes, have %d", ErrInvalidFrameStructure, f.PayloadLen, len(f.Payload))
	}
	return nil
}

// IsText reports whether the frame carries text
func (f *Frame) IsText() bool {
	return f.Opcode == OpcodeText
}
