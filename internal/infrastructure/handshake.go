package infrastructure

import (
	"bufio"
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"websocket-client/internal/domain"
	"websocket-client/pkg/protocol"
)

var headerTerminator = []byte("\r\n\r\n")

// HandshakeResult is the outcome of a successful upgrade
type HandshakeResult struct {
	// Key is the Sec-WebSocket-Key that was sent
	Key string
	// Leftover holds bytes received after the response headers, i.e. the
	// start of the first frame when the server writes it immediately
	Leftover []byte
}

// Handshaker performs the client side of the HTTP Upgrade handshake
type Handshaker struct {
	keys         *KeyGenerator
	verifyAccept bool
}

// NewHandshaker creates a Handshaker. When verifyAccept is false any
// response starting with "HTTP/1.1 101" is accepted.
func NewHandshaker(keys *KeyGenerator, verifyAccept bool) *Handshaker {
	if keys == nil {
		keys = NewKeyGenerator(nil)
	}
	return &Handshaker{keys: keys, verifyAccept: verifyAccept}
}

// BuildRequest assembles the upgrade request. Header order and CRLF line
// endings are fixed.
func (h *Handshaker) BuildRequest(path, host string, port int, key string) []byte {
	var b RequestBuffer
	b.Appendf("GET %s HTTP/1.1\r\n", path)
	b.Appendf("%s: %s:%d\r\n", protocol.HeaderHost, host, port)
	b.Appendf("%s: %s\r\n", protocol.HeaderUpgrade, protocol.HeaderValueWebSocket)
	b.Appendf("%s: %s\r\n", protocol.HeaderConnection, protocol.HeaderValueUpgrade)
	b.Appendf("%s: %s\r\n", protocol.HeaderSecWebSocketKey, key)
	b.Appendf("%s: %s\r\n", protocol.HeaderSecWebSocketVersion, protocol.WebSocketVersion)
	b.Append("\r\n")
	return b.Bytes()
}

// AcceptKey returns the Sec-WebSocket-Accept value a server must answer key with.
// According to RFC 6455: base64(SHA1(key + "258EAFA5-E914-47DA-95CA-C5AB0DC85B11"))
func AcceptKey(key string) string {
	hash := sha1.Sum([]byte(key + protocol.WebSocketGUID))
	return base64.StdEncoding.EncodeToString(hash[:])
}

// ValidateResponse checks the raw response received for key
func (h *Handshaker) ValidateResponse(resp []byte, key string) error {
	if len(resp) == 0 {
		return domain.ErrEmptyResponse
	}
	if !bytes.HasPrefix(resp, []byte(protocol.HandshakeSuccessPrefix)) {
		return fmt.Errorf("%w: %q", domain.ErrUnexpectedStatus, statusLine(resp))
	}
	if !h.verifyAccept {
		return nil
	}

	parsed, err := http.ReadResponse(bufio.NewReader(bytes.NewReader(resp)), nil)
	if err != nil {
		return fmt.Errorf("malformed handshake response: %w", err)
	}
	if got := parsed.Header.Get(protocol.HeaderSecWebSocketAccept); got != AcceptKey(key) {
		return fmt.Errorf("%w: got %q", domain.ErrAcceptKeyMismatch, got)
	}
	return nil
}

// Perform sends the upgrade request over conn in one write and reads the
// response with exactly one read of at most 512 bytes. A response split
// across several reads is rejected.
func (h *Handshaker) Perform(ctx context.Context, conn net.Conn, path, host string, port int, opts domain.Options) (*HandshakeResult, error) {
	key, err := h.keys.Generate()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrHandshake, err)
	}

	ctxDeadline, _ := ctx.Deadline()

	req := h.BuildRequest(path, host, port, key)
	if err := conn.SetWriteDeadline(earliest(opts.WriteDeadline(time.Now()), ctxDeadline)); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrHandshake, err)
	}
	if _, err := conn.Write(req); err != nil {
		return nil, fmt.Errorf("%w: send: %w", domain.ErrHandshake, err)
	}

	if err := conn.SetReadDeadline(earliest(opts.ReadDeadline(time.Now()), ctxDeadline)); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrHandshake, err)
	}
	resp := make([]byte, protocol.HandshakeResponseBufferSize)
	n, err := conn.Read(resp)
	if n <= 0 {
		if err == nil || errors.Is(err, io.EOF) {
			err = domain.ErrEmptyResponse
		}
		return nil, fmt.Errorf("%w: receive: %w", domain.ErrHandshake, err)
	}
	resp = resp[:n]

	if err := h.ValidateResponse(resp, key); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrHandshake, err)
	}

	if err := conn.SetDeadline(time.Time{}); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrHandshake, err)
	}

	result := &HandshakeResult{Key: key}
	if i := bytes.Index(resp, headerTerminator); i >= 0 {
		result.Leftover = bytes.Clone(resp[i+len(headerTerminator):])
	}
	return result, nil
}

// statusLine returns the first line of resp for error messages
func statusLine(resp []byte) string {
	if i := bytes.IndexByte(resp, '\r'); i >= 0 {
		resp = resp[:i]
	}
	const maxStatusLen = 64
	if len(resp) > maxStatusLen {
		resp = resp[:maxStatusLen]
	}
	return string(resp)
}

// earliest returns the earlier of two deadlines, treating zero as "none"
func earliest(a, b time.Time) time.Time {
	switch {
	case a.IsZero():
		return b
	case b.IsZero():
		return a
	case b.Before(a):
		return b
	default:
		return a
	}
}
