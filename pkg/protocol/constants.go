package protocol

// WebSocket protocol constants as defined in RFC 6455, client side

const (
	// WebSocketGUID is the magic string used in handshake accept key calculation
	WebSocketGUID = "258EAFA5-E914-47DA-95CA-C5AB0DC85B11"

	// WebSocket version
	WebSocketVersion = "13"

	// Header names
	HeaderHost                = "Host"
	HeaderUpgrade             = "Upgrade"
	HeaderConnection          = "Connection"
	HeaderSecWebSocketKey     = "Sec-WebSocket-Key"
	HeaderSecWebSocketAccept  = "Sec-WebSocket-Accept"
	HeaderSecWebSocketVersion = "Sec-WebSocket-Version"

	// Header values
	HeaderValueWebSocket = "websocket"
	HeaderValueUpgrade   = "Upgrade"

	// HandshakeSuccessPrefix is the status line prefix of an accepted upgrade
	HandshakeSuccessPrefix = "HTTP/1.1 101"

	// Handshake key sizes: 16 random bytes encode to 24 base64 characters
	HandshakeKeyRawSize     = 16
	HandshakeKeyEncodedSize = 24

	// I/O buffer sizes
	HandshakeResponseBufferSize = 512
	ReadBufferSize              = 1024

	// Close status codes
	StatusNormalClosure    = 1000
	StatusGoingAway        = 1001
	StatusNoStatusReceived = 1005

	// First header byte bits
	FinBit     = 0x80
	OpcodeMask = 0x0F

	// Second header byte bits
	MaskBit           = 0x80
	PayloadLengthMask = 0x7F

	// Frame size limits
	MaxControlFramePayloadSize = 125
	MaxPayloadSize16Bit        = 65535

	// Payload length indicators
	PayloadLen16Bit = 126
	PayloadLen64Bit = 127

	// Header sizes
	MinHeaderSize       = 2
	Ext16HeaderSize     = 4
	MaskingKeySize      = 4
	MaxClientHeaderSize = Ext16HeaderSize + MaskingKeySize
)
