package domain

import "errors"

// Error classes. Every error returned by the client wraps exactly one of
// these, so callers can branch with errors.Is on the class or the cause.
var (
	// ErrSetup covers invalid targets and connection failures
	ErrSetup = errors.New("setup failed")
	// ErrHandshake covers send/receive failures and rejected upgrades
	ErrHandshake = errors.New("handshake failed")
	// ErrProtocol covers frames that violate the framing rules
	ErrProtocol = errors.New("protocol error")
)

// Domain errors
var (
	// Setup errors
	ErrInvalidHost = errors.New("invalid host: expected dotted IPv4 address")
	ErrInvalidPort = errors.New("invalid port: expected 1..65535")
	ErrConnect     = errors.New("connect failed")

	// Handshake errors
	ErrKeyGeneration     = errors.New("handshake key generation failed")
	ErrEmptyResponse     = errors.New("empty handshake response")
	ErrUnexpectedStatus  = errors.New("unexpected handshake status line")
	ErrAcceptKeyMismatch = errors.New("accept key does not match the sent key")

	// Frame errors
	ErrIncompleteFrame       = errors.New("frame not fully buffered")
	ErrUnsupportedLength     = errors.New("64-bit payload length not supported")
	ErrInvalidFrameStructure = errors.New("invalid frame structure")
	ErrInvalidOpcode         = errors.New("invalid opcode")
	ErrPayloadTooLarge       = errors.New("payload exceeds maximum size")
	ErrMaskedServerFrame     = errors.New("server frame must not be masked")

	// Connection errors
	ErrConnectionClosed = errors.New("connection is closed")
	ErrInvalidState     = errors.New("invalid connection state")
	ErrNotOpen          = errors.New("connection is not open")
	ErrNotUpgraded      = errors.New("handshake has not completed")
	ErrReadTimeout      = errors.New("read timed out")

	// Message errors
	ErrInvalidMessageType = errors.New("invalid message type")
)
