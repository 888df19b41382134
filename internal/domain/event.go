package domain

import "fmt"

// EventType identifies a client lifecycle event
type EventType int

const (
	// EventOpen fires once the handshake succeeded
	EventOpen EventType = iota
	// EventMessage fires for every delivered text or binary message
	EventMessage
	// EventClose fires when the event loop terminates
	EventClose
	// EventError fires for errors that do not stop the loop and for the
	// error that stopped it
	EventError
)

// String returns the string representation of the event type
func (e EventType) String() string {
	switch e {
	case EventOpen:
		return "Open"
	case EventMessage:
		return "Message"
	case EventClose:
		return "Close"
	case EventError:
		return "Error"
	default:
		return fmt.Sprintf("Unknown(%d)", int(e))
	}
}

// Event is passed to an EventHandler
type Event struct {
	Type    EventType
	Message *Message // set for EventMessage; Payload aliases the read buffer
	Err     error    // set for EventError
}

// EventHandler observes client events
type EventHandler func(Event)
