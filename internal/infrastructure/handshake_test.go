package infrastructure

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"websocket-client/internal/domain"
	"websocket-client/pkg/protocol"
)

func TestBuildRequestIsWireExact(t *testing.T) {
	h := NewHandshaker(nil, false)
	got := h.BuildRequest("/chat", "127.0.0.1", 9001, "dGhlIHNhbXBsZSBub25jZQ==")

	want := "GET /chat HTTP/1.1\r\n" +
		"Host: 127.0.0.1:9001\r\n" +
		"Upgrade: websocket\r\n" +
		"Connection: Upgrade\r\n" +
		"Sec-WebSocket-Key: dGhlIHNhbXBsZSBub25jZQ==\r\n" +
		"Sec-WebSocket-Version: 13\r\n" +
		"\r\n"
	assert.Equal(t, want, string(got))
}

func TestAcceptKey(t *testing.T) {
	// Example from RFC 6455 Section 1.3
	assert.Equal(t, "s3pPLMBiTxaQ9kYGzzhZRbK+xOo=", AcceptKey("dGhlIHNhbXBsZSBub25jZQ=="))
}

func TestValidateResponse(t *testing.T) {
	const key = "dGhlIHNhbXBsZSBub25jZQ=="
	good := "HTTP/1.1 101 Switching Protocols\r\n" +
		"Upgrade: websocket\r\n" +
		"Connection: Upgrade\r\n" +
		"Sec-WebSocket-Accept: s3pPLMBiTxaQ9kYGzzhZRbK+xOo=\r\n\r\n"
	wrongAccept := strings.Replace(good, "s3pPLMBiTxaQ9kYGzzhZRbK+xOo=", "AAAA", 1)

	tests := []struct {
		name    string
		verify  bool
		resp    string
		wantErr error
	}{
		{"switching protocols", false, good, nil},
		{"status line only", false, "HTTP/1.1 101 Switching Protocols\r\n", nil},
		{"bad request", false, "HTTP/1.1 400 Bad Request\r\n\r\n", domain.ErrUnexpectedStatus},
		{"http/1.0", false, "HTTP/1.0 101 Switching Protocols\r\n\r\n", domain.ErrUnexpectedStatus},
		{"ok", false, "HTTP/1.1 200 OK\r\n\r\n", domain.ErrUnexpectedStatus},
		{"empty", false, "", domain.ErrEmptyResponse},
		{"wrong accept ignored", false, wrongAccept, nil},
		{"wrong accept verified", true, wrongAccept, domain.ErrAcceptKeyMismatch},
		{"right accept verified", true, good, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandshaker(nil, tt.verify)
			err := h.ValidateResponse([]byte(tt.resp), key)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestProperty_NonSwitchingStatusRejected(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)
	h := NewHandshaker(nil, false)

	properties.Property("any status other than 101 fails the handshake", prop.ForAll(
		func(code int, reason string) bool {
			if code == 101 {
				return true
			}
			resp := fmt.Sprintf("HTTP/1.1 %d %s\r\n\r\n", code, reason)
			return errors.Is(h.ValidateResponse([]byte(resp), "k"), domain.ErrUnexpectedStatus)
		},
		gen.IntRange(100, 599),
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}

// scriptedServer reads one upgrade request on the server side of a pipe and
// answers with respond(request)
func scriptedServer(t *testing.T, server net.Conn, respond func(*http.Request) string) <-chan *http.Request {
	t.Helper()
	seen := make(chan *http.Request, 1)
	go func() {
		defer close(seen)
		req, err := http.ReadRequest(bufio.NewReader(server))
		if err != nil {
			return
		}
		seen <- req
		server.Write([]byte(respond(req)))
	}()
	return seen
}

func TestPerformSucceedsAndKeepsLeftover(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	seen := scriptedServer(t, server, func(req *http.Request) string {
		key := req.Header.Get(protocol.HeaderSecWebSocketKey)
		return "HTTP/1.1 101 Switching Protocols\r\n" +
			"Upgrade: websocket\r\nConnection: Upgrade\r\n" +
			"Sec-WebSocket-Accept: " + AcceptKey(key) + "\r\n\r\n" +
			"\x81\x02hi"
	})

	h := NewHandshaker(nil, true)
	result, err := h.Perform(context.Background(), client, "/", "127.0.0.1", 9001,
		domain.Options{ReceiveTimeout: 2 * time.Second, SendTimeout: 2 * time.Second})
	require.NoError(t, err)

	req := <-seen
	require.NotNil(t, req)
	assert.Equal(t, "/", req.URL.Path)
	assert.Equal(t, "127.0.0.1:9001", req.Host)
	assert.Equal(t, "websocket", req.Header.Get("Upgrade"))
	assert.Equal(t, "13", req.Header.Get("Sec-WebSocket-Version"))
	assert.Equal(t, result.Key, req.Header.Get("Sec-WebSocket-Key"))
	assert.Len(t, result.Key, 24)
	assert.Equal(t, []byte("\x81\x02hi"), result.Leftover)
}

func TestPerformRejectsBadStatus(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	scriptedServer(t, server, func(*http.Request) string {
		return "HTTP/1.1 400 Bad Request\r\n\r\n"
	})

	h := NewHandshaker(nil, false)
	_, err := h.Perform(context.Background(), client, "/", "127.0.0.1", 9001, domain.Options{})
	assert.ErrorIs(t, err, domain.ErrHandshake)
	assert.ErrorIs(t, err, domain.ErrUnexpectedStatus)
}

func TestPerformPeerClosesWithoutResponse(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()

	go func() {
		http.ReadRequest(bufio.NewReader(server))
		server.Close()
	}()

	h := NewHandshaker(nil, false)
	_, err := h.Perform(context.Background(), client, "/", "127.0.0.1", 9001, domain.Options{})
	assert.ErrorIs(t, err, domain.ErrHandshake)
	assert.ErrorIs(t, err, domain.ErrEmptyResponse)
}

func TestPerformReceiveTimeout(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	go http.ReadRequest(bufio.NewReader(server))

	h := NewHandshaker(nil, false)
	_, err := h.Perform(context.Background(), client, "/", "127.0.0.1", 9001,
		domain.Options{ReceiveTimeout: 50 * time.Millisecond})
	assert.ErrorIs(t, err, domain.ErrHandshake)
}

func TestPerformKeyGenerationFailure(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	h := NewHandshaker(NewKeyGenerator(bytes.NewReader(nil)), false)
	_, err := h.Perform(context.Background(), client, "/", "127.0.0.1", 9001, domain.Options{})
	assert.ErrorIs(t, err, domain.ErrHandshake)
	assert.ErrorIs(t, err, domain.ErrKeyGeneration)
}

func TestEarliest(t *testing.T) {
	now := time.Now()
	later := now.Add(time.Second)

	assert.True(t, earliest(time.Time{}, time.Time{}).IsZero())
	assert.Equal(t, now, earliest(now, time.Time{}))
	assert.Equal(t, now, earliest(time.Time{}, now))
	assert.Equal(t, now, earliest(later, now))
	assert.Equal(t, now, earliest(now, later))
}
