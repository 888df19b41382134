package domain

import "fmt"

// MessageType distinguishes text from binary application data
type MessageType int

const (
	MessageTypeText MessageType = iota
	MessageTypeBinary
)

func (m MessageType) String() string {
	switch m {
	case MessageTypeText:
		return "Text"
	case MessageTypeBinary:
		return "Binary"
	default:
		return fmt.Sprintf("Unknown(%d)", int(m))
	}
}

// Message is one unfragmented application message, received or to be sent
type Message struct {
	Type    MessageType
	Payload []byte
}

// NewTextMessage creates a text message carrying text
func NewTextMessage(text string) *Message {
	return &Message{Type: MessageTypeText, Payload: []byte(text)}
}

// NewBinaryMessage creates a binary message carrying data
func NewBinaryMessage(data []byte) *Message {
	return &Message{Type: MessageTypeBinary, Payload: data}
}

// MessageFromFrame returns the message carried by a text or binary frame,
// sharing the frame's payload. ok is false for every other opcode.
func MessageFromFrame(f *Frame) (msg *Message, ok bool) {
	switch f.Opcode {
	case OpcodeText:
		return &Message{Type: MessageTypeText, Payload: f.Payload}, true
	case OpcodeBinary:
		return &Message{Type: MessageTypeBinary, Payload: f.Payload}, true
	default:
		return nil, false
	}
}

// Opcode returns the opcode of the frame that carries m
func (m *Message) Opcode() (Opcode, error) {
	switch m.Type {
	case MessageTypeText:
		return OpcodeText, nil
	case MessageTypeBinary:
		return OpcodeBinary, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrInvalidMessageType, m.Type)
	}
}

// Text returns a copy of the payload as a string
func (m *Message) Text() string {
	return string(m.Payload)
}

// MessageHandler receives a payload. The slice is only valid for the
// duration of the call; handlers must copy anything they keep.
type MessageHandler func(payload []byte)
