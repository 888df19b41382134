package infrastructure

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"

	"websocket-client/internal/domain"
)

const maxPort = 65535

// ValidateTarget checks that host is a dotted IPv4 address and port is in
// 1..65535. Host names are not resolved.
func ValidateTarget(host string, port int) error {
	if host == "" {
		return fmt.Errorf("%w: %w: empty host", domain.ErrSetup, domain.ErrInvalidHost)
	}
	ip := net.ParseIP(host)
	// IPv4-mapped IPv6 literals such as "::ffff:1.2.3.4" also pass To4
	if ip == nil || ip.To4() == nil || strings.Contains(host, ":") {
		return fmt.Errorf("%w: %w: %q", domain.ErrSetup, domain.ErrInvalidHost, host)
	}
	if port <= 0 || port > maxPort {
		return fmt.Errorf("%w: %w: %d", domain.ErrSetup, domain.ErrInvalidPort, port)
	}
	return nil
}

// Dialer establishes the TCP connection of a client
type Dialer struct {
	netDialer *net.Dialer
}

// NewDialer creates a Dialer applying the connect timeout and keep-alive
// settings of opts
func NewDialer(opts domain.Options) *Dialer {
	d := &net.Dialer{Timeout: opts.ConnectTimeout}
	if !opts.KeepAlive {
		// Negative disables TCP keep-alive; zero would enable the default
		d.KeepAlive = -1
	}
	return &Dialer{netDialer: d}
}

// Dial validates the target and connects to it. There are no retries; any
// failure is returned wrapped in domain.ErrSetup.
func (d *Dialer) Dial(ctx context.Context, host string, port int) (net.Conn, error) {
	if err := ValidateTarget(host, port); err != nil {
		return nil, err
	}

	addr := net.JoinHostPort(host, strconv.Itoa(port))
	conn, err := d.netDialer.DialContext(ctx, "tcp4", addr)
	if err != nil {
		return nil, fmt.Errorf("%w: %w: %w", domain.ErrSetup, domain.ErrConnect, err)
	}
	return conn, nil
}
