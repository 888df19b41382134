package domain

import (
	"fmt"
	"time"
)

// ConnectionState is the lifecycle state of a client handle
type ConnectionState int

const (
	StateNotOpened ConnectionState = iota
	StateOpen
	StateClosed
)

func (s ConnectionState) String() string {
	switch s {
	case StateNotOpened:
		return "NotOpened"
	case StateOpen:
		return "Open"
	case StateClosed:
		return "Closed"
	default:
		return fmt.Sprintf("Unknown(%d)", int(s))
	}
}

// nextState lists the only state each state may move to. A handle is
// opened once and closed once.
var nextState = map[ConnectionState]ConnectionState{
	StateNotOpened: StateOpen,
	StateOpen:      StateClosed,
}

// Connection is the bookkeeping of one client handle. It is not safe for
// concurrent use; the owner serializes access.
type Connection struct {
	ID         string
	RemoteAddr string // host:port of the peer
	State      ConnectionState
	Upgraded   bool // handshake completed on the current connection

	OpenedAt     time.Time
	LastReceived time.Time // arrival of the last dispatched frame
}

// NewConnection creates a handle in the NotOpened state
func NewConnection(id, remoteAddr string) *Connection {
	return &Connection{ID: id, RemoteAddr: remoteAddr, State: StateNotOpened}
}

// CanTransitionTo reports whether the handle may move to s
func (c *Connection) CanTransitionTo(s ConnectionState) bool {
	next, ok := nextState[c.State]
	return ok && next == s
}

// TransitionTo moves the handle to s. Closing clears the upgrade flag.
func (c *Connection) TransitionTo(s ConnectionState) error {
	if !c.CanTransitionTo(s) {
		return fmt.Errorf("%w: cannot transition from %s to %s", ErrInvalidState, c.State, s)
	}
	c.State = s
	switch s {
	case StateOpen:
		c.OpenedAt = time.Now()
	case StateClosed:
		c.Upgraded = false
	}
	return nil
}

// MarkUpgraded records a successful handshake
func (c *Connection) MarkUpgraded() error {
	if c.State != StateOpen {
		return fmt.Errorf("%w: state is %s", ErrNotOpen, c.State)
	}
	c.Upgraded = true
	return nil
}

// FrameReceived records the arrival time of a dispatched frame
func (c *Connection) FrameReceived(at time.Time) {
	c.LastReceived = at
}

// IsOpen reports whether the handle holds a live connection
func (c *Connection) IsOpen() bool {
	return c.State == StateOpen
}

// IsClosed reports whether the handle was torn down
func (c *Connection) IsClosed() bool {
	return c.State == StateClosed
}

// IsUpgraded reports whether frames may be exchanged
func (c *Connection) IsUpgraded() bool {
	return c.State == StateOpen && c.Upgraded
}
