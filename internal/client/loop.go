package client

import (
	"bufio"
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"time"

	"websocket-client/internal/domain"
	"websocket-client/pkg/protocol"
)

// aLongTimeAgo is a past deadline used to interrupt a blocked read
var aLongTimeAgo = time.Unix(1, 0)

type readResult struct {
	data []byte
	err  error
}

// Run drives the connection until the peer closes it, a read fails or ctx
// is cancelled. Frames are decoded across reads and dispatched to the
// callbacks. Every line read from input, if non-nil, is sent as a text
// frame.
//
// Run returns nil when the peer closed the connection, ctx.Err() after
// cancellation, and an error wrapping domain.ErrConnectionClosed otherwise.
// The caller is responsible for calling Close afterwards.
func (c *Client) Run(ctx context.Context, input io.Reader) error {
	c.mu.Lock()
	conn := c.conn
	upgraded := c.state.IsUpgraded()
	c.mu.Unlock()

	if !upgraded {
		return domain.ErrNotUpgraded
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	reads := make(chan readResult)
	readerDone := make(chan struct{})
	go func() {
		defer close(readerDone)
		c.readLoop(ctx, conn, reads)
	}()
	defer func() {
		cancel()
		c.deadlineMu.Lock()
		_ = conn.SetReadDeadline(aLongTimeAgo)
		c.deadlineMu.Unlock()
		<-readerDone
		_ = conn.SetReadDeadline(time.Time{})
	}()

	var lines chan string
	if input != nil {
		lines = make(chan string)
		go scanLines(ctx, input, lines)
	}

	c.logger.Debug("event loop started")

	// Frames that arrived together with the handshake response
	if stop, err := c.drain(); stop {
		return c.terminate(err)
	}

	for {
		select {
		case <-ctx.Done():
			if err := c.CloseHandshake(protocol.StatusGoingAway, ""); err != nil {
				c.logger.Debug("failed to send close frame", "error", err)
			}
			c.logger.Info("event loop cancelled")
			c.emit(domain.Event{Type: domain.EventClose})
			return ctx.Err()

		case r := <-reads:
			if len(r.data) > 0 {
				c.stream.Feed(r.data)
				if stop, err := c.drain(); stop {
					return c.terminate(err)
				}
			}
			if r.err != nil {
				if errors.Is(r.err, os.ErrDeadlineExceeded) {
					r.err = fmt.Errorf("%w: %w", domain.ErrReadTimeout, r.err)
				}
				return c.terminate(r.err)
			}

		case line, ok := <-lines:
			if !ok {
				lines = nil
				continue
			}
			if err := c.SendText(line); err != nil {
				return c.terminate(err)
			}
		}
	}
}

// readLoop performs bounded reads and forwards a copy of each chunk
func (c *Client) readLoop(ctx context.Context, conn net.Conn, out chan<- readResult) {
	buf := make([]byte, protocol.ReadBufferSize)
	for {
		c.deadlineMu.Lock()
		if ctx.Err() != nil {
			c.deadlineMu.Unlock()
			return
		}
		err := conn.SetReadDeadline(c.opts.ReadDeadline(time.Now()))
		c.deadlineMu.Unlock()

		var n int
		if err == nil {
			n, err = conn.Read(buf)
		}

		r := readResult{err: err}
		if n > 0 {
			r.data = bytes.Clone(buf[:n])
		}

		select {
		case out <- r:
		case <-ctx.Done():
			return
		}
		if err != nil {
			return
		}
	}
}

func scanLines(ctx context.Context, input io.Reader, out chan<- string) {
	defer close(out)
	scanner := bufio.NewScanner(input)
	for scanner.Scan() {
		select {
		case out <- scanner.Text():
		case <-ctx.Done():
			return
		}
	}
}

// drain dispatches every complete buffered frame. It reports stop when the
// loop must terminate, with a nil error for a close frame.
func (c *Client) drain() (bool, error) {
	for {
		frame, err := c.stream.Next()
		switch {
		case err == nil:
		case errors.Is(err, domain.ErrIncompleteFrame):
			return false, nil
		case errors.Is(err, domain.ErrMaskedServerFrame):
			c.logger.Warn("dropping masked frame from server")
			c.emit(domain.Event{Type: domain.EventError, Err: fmt.Errorf("%w: %w", domain.ErrProtocol, err)})
			continue
		default:
			c.logger.Warn("discarding buffered input", "error", err)
			c.emit(domain.Event{Type: domain.EventError, Err: fmt.Errorf("%w: %w", domain.ErrProtocol, err)})
			continue
		}

		if stop, err := c.dispatch(frame); stop {
			return true, err
		}
	}
}

func (c *Client) dispatch(frame *domain.Frame) (bool, error) {
	c.mu.Lock()
	c.state.FrameReceived(time.Now())
	c.mu.Unlock()

	if msg, ok := domain.MessageFromFrame(frame); ok {
		handler := c.onText
		if msg.Type == domain.MessageTypeBinary {
			handler = c.onBin
		}
		if handler != nil {
			handler(msg.Payload)
		}
		c.emit(domain.Event{Type: domain.EventMessage, Message: msg})
		return false, nil
	}

	switch frame.Opcode {
	case domain.OpcodePing:
		if err := c.writeFrame(domain.OpcodePong, frame.Payload); err != nil {
			return true, err
		}

	case domain.OpcodeClose:
		echo := frame.Payload[:min(2, len(frame.Payload))]
		code := uint16(protocol.StatusNoStatusReceived)
		if len(echo) == 2 {
			code = binary.BigEndian.Uint16(echo)
		}
		c.logger.Debug("close frame received", "code", code)
		if err := c.writeFrame(domain.OpcodeClose, echo); err != nil {
			c.logger.Debug("failed to echo close frame", "error", err)
		}
		return true, nil

	default:
		// Pong and continuation frames
		c.logger.Debug("ignoring frame", "opcode", frame.Opcode)
	}
	return false, nil
}

// terminate maps the reason the loop stopped to Run's result
func (c *Client) terminate(err error) error {
	if err == nil || errors.Is(err, io.EOF) {
		c.logger.Info("connection closed by peer")
		c.emit(domain.Event{Type: domain.EventClose})
		return nil
	}

	err = fmt.Errorf("%w: %w", domain.ErrConnectionClosed, err)
	c.logger.Error("event loop terminated", "error", err)
	c.emit(domain.Event{Type: domain.EventError, Err: err})
	c.emit(domain.Event{Type: domain.EventClose})
	return err
}
