package domain

import (
	"fmt"
	"time"
)

// Options holds the socket level settings of a client. A zero duration
// disables the corresponding timeout.
type Options struct {
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
	ReceiveTimeout time.Duration `yaml:"receive_timeout"`
	SendTimeout    time.Duration `yaml:"send_timeout"`
	KeepAlive      bool          `yaml:"keep_alive"`

	// VerifyAccept checks Sec-WebSocket-Accept against the sent key.
	// Off by default: any response starting with "HTTP/1.1 101" is accepted.
	VerifyAccept bool `yaml:"verify_accept"`
}

// DefaultOptions returns options with keep-alive on and no timeouts
func DefaultOptions() Options {
	return Options{KeepAlive: true}
}

// Validate rejects negative timeouts
func (o Options) Validate() error {
	if o.ConnectTimeout < 0 {
		return fmt.Errorf("connect_timeout must not be negative, got %s", o.ConnectTimeout)
	}
	if o.ReceiveTimeout < 0 {
		return fmt.Errorf("receive_timeout must not be negative, got %s", o.ReceiveTimeout)
	}
	if o.SendTimeout < 0 {
		return fmt.Errorf("send_timeout must not be negative, got %s", o.SendTimeout)
	}
	return nil
}

// ReadDeadline returns the deadline for a read starting at now, or the zero
// time when no receive timeout is configured
func (o Options) ReadDeadline(now time.Time) time.Time {
	if o.ReceiveTimeout == 0 {
		return time.Time{}
	}
	return now.Add(o.ReceiveTimeout)
}

// WriteDeadline returns the deadline for a write starting at now, or the
// zero time when no send timeout is configured
func (o Options) WriteDeadline(now time.Time) time.Time {
	if o.SendTimeout == 0 {
		return time.Time{}
	}
	return now.Add(o.SendTimeout)
}
