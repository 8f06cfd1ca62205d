package transport

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"time"
)

// Handler answers one request datagram. A nil reply sends nothing.
type Handler func(ctx context.Context, remote net.Addr, req []byte) []byte

// Serve reads datagrams from conn one at a time and writes each handler
// reply back to the sender. It returns nil once ctx is cancelled.
func Serve(ctx context.Context, conn net.PacketConn, h Handler, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	stop := context.AfterFunc(ctx, func() {
		conn.SetReadDeadline(time.Now())
	})
	defer stop()

	buf := make([]byte, 64*1024)
	for {
		n, remote, err := conn.ReadFrom(buf)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
				continue
			}
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}
		logger.Debug("received datagram", "remote", remote.String(), "bytes", n)

		req := make([]byte, n)
		copy(req, buf[:n])
		reply := h(ctx, remote, req)
		if reply == nil {
			continue
		}
		if _, err := conn.WriteTo(reply, remote); err != nil {
			logger.Warn("failed to send reply", "remote", remote.String(), "error", err)
			continue
		}
		logger.Debug("sent datagram", "remote", remote.String(), "bytes", len(reply))
	}
}
