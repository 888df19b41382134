// Package client implements a single client-side WebSocket connection: TCP
// setup, the HTTP Upgrade handshake, frame dispatch and the event loop.
package client

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"websocket-client/internal/domain"
	"websocket-client/internal/infrastructure"
	"websocket-client/pkg/logging"
)

// Config configures a Client
type Config struct {
	Host    string
	Port    int
	Options domain.Options

	// OnMessage receives the payload of every text frame. The slice is only
	// valid during the call; copy it to retain it.
	OnMessage domain.MessageHandler
	// OnBinary receives binary payloads under the same rules
	OnBinary domain.MessageHandler
	// OnEvent observes lifecycle events
	OnEvent domain.EventHandler

	Logger *slog.Logger
}

// Client is one WebSocket connection to a single target.
//
// Open, Handshake and Run are meant to be called in that order from one
// goroutine. The Send methods and Close may be called from any goroutine.
type Client struct {
	id      string
	host    string
	port    int
	opts    domain.Options
	logger  *slog.Logger
	onText  domain.MessageHandler
	onBin   domain.MessageHandler
	onEvent domain.EventHandler

	dialer     *infrastructure.Dialer
	handshaker *infrastructure.Handshaker
	parser     *infrastructure.FrameParser
	stream     *infrastructure.StreamDecoder

	mu    sync.Mutex // guards conn and state
	conn  net.Conn
	state *domain.Connection

	writeMu    sync.Mutex
	deadlineMu sync.Mutex
}

// New creates a client in the NotOpened state. No I/O happens until Open.
func New(cfg Config) *Client {
	id := uuid.NewString()
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Nop()
	}

	return &Client{
		id:         id,
		host:       cfg.Host,
		port:       cfg.Port,
		opts:       cfg.Options,
		logger:     logger.With("client_id", id, "host", cfg.Host, "port", cfg.Port),
		onText:     cfg.OnMessage,
		onBin:      cfg.OnBinary,
		onEvent:    cfg.OnEvent,
		dialer:     infrastructure.NewDialer(cfg.Options),
		handshaker: infrastructure.NewHandshaker(nil, cfg.Options.VerifyAccept),
		parser:     infrastructure.NewFrameParser(nil),
		stream:     infrastructure.NewStreamDecoder(),
		state:      domain.NewConnection(id, net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))),
	}
}

// ID returns the identifier attached to the client's log records
func (c *Client) ID() string {
	return c.id
}

// State returns the current handle state
func (c *Client) State() domain.ConnectionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.State
}

// Open validates the target and connects to it. There are no retries.
func (c *Client) Open(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.state.CanTransitionTo(domain.StateOpen) {
		return fmt.Errorf("%w: %w: client is %s", domain.ErrSetup, domain.ErrInvalidState, c.state.State)
	}

	conn, err := c.dialer.Dial(ctx, c.host, c.port)
	if err != nil {
		c.logger.Error("failed to open connection", "error", err)
		return err
	}

	c.conn = conn
	c.state.RemoteAddr = conn.RemoteAddr().String()
	if err := c.state.TransitionTo(domain.StateOpen); err != nil {
		_ = conn.Close()
		return fmt.Errorf("%w: %w", domain.ErrSetup, err)
	}
	c.logger.Debug("connection opened", "remote_addr", c.state.RemoteAddr)
	return nil
}

// Handshake upgrades the open connection by requesting path. On failure the
// caller is expected to Close the client.
func (c *Client) Handshake(ctx context.Context, path string) error {
	c.mu.Lock()
	conn := c.conn
	open := c.state.IsOpen()
	c.mu.Unlock()

	if !open {
		return fmt.Errorf("%w: %w", domain.ErrHandshake, domain.ErrNotOpen)
	}

	result, err := c.handshaker.Perform(ctx, conn, path, c.host, c.port, c.opts)
	if err != nil {
		c.logger.Error("handshake failed", "path", path, "error", err)
		return err
	}

	c.mu.Lock()
	err = c.state.MarkUpgraded()
	c.mu.Unlock()
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrHandshake, err)
	}

	c.stream.Reset()
	c.stream.Feed(result.Leftover)

	c.logger.Info("handshake complete", "path", path, "leftover", len(result.Leftover))
	c.emit(domain.Event{Type: domain.EventOpen})
	return nil
}

// HandleIncoming decodes the single frame at the start of buf and passes a
// text payload to OnMessage.
//
// Incomplete, oversized and 64-bit length frames are dropped and nil is
// returned. A masked frame is dropped, logged and reported as an error.
func (c *Client) HandleIncoming(buf []byte) error {
	frame, _, err := c.parser.Decode(buf)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrMaskedServerFrame):
		c.logger.Warn("dropping masked frame from server")
		return fmt.Errorf("%w: %w", domain.ErrProtocol, err)
	default:
		c.logger.Debug("dropping frame", "reason", err)
		return nil
	}

	if frame.IsText() && c.onText != nil {
		c.onText(frame.Payload)
	}
	return nil
}

// Send writes m as a single masked frame
func (c *Client) Send(m *domain.Message) error {
	opcode, err := m.Opcode()
	if err != nil {
		return err
	}
	return c.writeFrame(opcode, m.Payload)
}

// SendText sends text as a single masked text frame
func (c *Client) SendText(text string) error {
	return c.Send(domain.NewTextMessage(text))
}

// SendBinary sends data as a single masked binary frame
func (c *Client) SendBinary(data []byte) error {
	return c.Send(domain.NewBinaryMessage(data))
}

// Ping sends a ping; the pong is consumed by Run
func (c *Client) Ping(payload []byte) error {
	return c.writeFrame(domain.OpcodePing, payload)
}

// CloseHandshake sends a close frame with the given status code and reason.
// It does not close the connection.
func (c *Client) CloseHandshake(code uint16, reason string) error {
	payload := binary.BigEndian.AppendUint16(nil, code)
	payload = append(payload, reason...)
	return c.writeFrame(domain.OpcodeClose, payload)
}

// Close tears the connection down. It is safe to call on a nil client and
// more than once.
func (c *Client) Close() error {
	if c == nil {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.state.IsOpen() {
		return nil
	}
	if err := c.state.TransitionTo(domain.StateClosed); err != nil {
		return err
	}
	err := c.conn.Close()
	c.logger.Debug("connection closed")
	return err
}

func (c *Client) writeFrame(opcode domain.Opcode, payload []byte) error {
	c.mu.Lock()
	conn := c.conn
	upgraded := c.state.IsUpgraded()
	c.mu.Unlock()

	if !upgraded {
		return domain.ErrNotUpgraded
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err := conn.SetWriteDeadline(c.opts.WriteDeadline(time.Now())); err != nil {
		return err
	}
	if err := c.parser.WriteFrame(conn, opcode, payload); err != nil {
		return fmt.Errorf("write %s frame: %w", opcode, err)
	}
	return nil
}

func (c *Client) emit(ev domain.Event) {
	if c.onEvent != nil {
		c.onEvent(ev)
	}
}
