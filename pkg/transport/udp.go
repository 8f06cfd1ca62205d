// Package transport carries protocol packets over UDP. A client exchange is
// one datagram out and at most one datagram back; nothing is retried.
package transport

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"
)

const (
	// DefaultTimeout bounds the wait for a reply.
	DefaultTimeout = 3 * time.Second

	// DefaultBufferSize is the smallest receive buffer used for a reply.
	DefaultBufferSize = 1024
)

// ErrTimeout indicates no reply arrived before the deadline.
var ErrTimeout = errors.New("transport: timed out waiting for reply")

// Conn sends one request and returns the single reply. maxLen is the
// largest reply the caller expects.
type Conn interface {
	Exchange(ctx context.Context, payload []byte, maxLen int) ([]byte, error)
	Close() error
}

// DialFunc opens a Conn to a server address.
type DialFunc func(ctx context.Context, addr string) (Conn, error)

// Dialer returns a DialFunc that opens UDP connections with opts.
func Dialer(opts ...Option) DialFunc {
	return func(ctx context.Context, addr string) (Conn, error) {
		u, err := Dial(ctx, addr, opts...)
		if err != nil {
			return nil, err
		}
		return u, nil
	}
}

type config struct {
	timeout time.Duration
	logger  *slog.Logger
}

// Option configures a UDP transport.
type Option func(*config)

// Timeout sets how long Exchange waits for a reply. A deadline on the
// context passed to Exchange wins when it is earlier.
//
// Default: 3s
func Timeout(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// Logger sets the logger for datagram traces.
func Logger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

func newConfig(opts []Option) config {
	cfg := config{timeout: DefaultTimeout, logger: slog.Default()}
	for _, o := range opts {
		o(&cfg)
	}
	return cfg
}

// UDP is a connected UDP socket to one server.
type UDP struct {
	conn *net.UDPConn
	cfg  config
}

// Dial resolves addr and connects a UDP socket to it.
func Dial(ctx context.Context, addr string, opts ...Option) (*UDP, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "udp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	return &UDP{conn: conn.(*net.UDPConn), cfg: newConfig(opts)}, nil
}

// RemoteAddr returns the server address.
func (u *UDP) RemoteAddr() net.Addr {
	return u.conn.RemoteAddr()
}

// Close releases the socket.
func (u *UDP) Close() error {
	return u.conn.Close()
}

// Exchange sends payload and waits for one reply. A timeout is reported as
// ErrTimeout; cancelling ctx aborts the wait with ctx.Err().
func (u *UDP) Exchange(ctx context.Context, payload []byte, maxLen int) ([]byte, error) {
	start := time.Now()
	deadline := start.Add(u.cfg.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := u.conn.SetDeadline(deadline); err != nil {
		return nil, fmt.Errorf("set deadline: %w", err)
	}

	stop := context.AfterFunc(ctx, func() {
		u.conn.SetReadDeadline(time.Now())
	})
	defer stop()

	n, err := u.conn.Write(payload)
	if err != nil {
		return nil, fmt.Errorf("send: %w", err)
	}
	u.cfg.logger.Debug("sent datagram", "remote", u.conn.RemoteAddr().String(), "bytes", n)

	buf := make([]byte, max(maxLen, DefaultBufferSize))
	n, err = u.conn.Read(buf)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(ctxErr, context.DeadlineExceeded) {
			return nil, ctxErr
		}
		if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
			return nil, fmt.Errorf("%w after %s", ErrTimeout, time.Since(start).Round(time.Millisecond))
		}
		return nil, fmt.Errorf("receive: %w", err)
	}
	u.cfg.logger.Debug("received datagram", "remote", u.conn.RemoteAddr().String(), "bytes", n)

	return buf[:n], nil
}
