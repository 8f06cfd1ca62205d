package client

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/tokenwire/tokenwire/pkg/wire"
)

// ExchangeLogger records request/reply exchanges for tracing and audit.
type ExchangeLogger interface {
	LogExchange(ctx context.Context, event *ExchangeEvent) error
}

// ExchangeEvent describes one request and its reply.
type ExchangeEvent struct {
	ID        uuid.UUID
	Timestamp time.Time
	Server    string
	Kind      wire.Kind
	Request   []byte
	ReplyKind wire.Kind
	Reply     []byte
	Duration  time.Duration
	Err       error
}

// SlogExchangeLogger logs exchanges using structured logging (slog).
type SlogExchangeLogger struct {
	logger *slog.Logger
}

// NewSlogExchangeLogger creates an exchange logger that emits structured logs.
func NewSlogExchangeLogger(logger *slog.Logger) *SlogExchangeLogger {
	return &SlogExchangeLogger{logger: logger}
}

// LogExchange emits one info record per exchange, or a warning when it failed.
func (l *SlogExchangeLogger) LogExchange(ctx context.Context, event *ExchangeEvent) error {
	attrs := []slog.Attr{
		slog.String("exchange_id", event.ID.String()),
		slog.String("server", event.Server),
		slog.String("kind", event.Kind.String()),
		slog.Int("request_bytes", len(event.Request)),
		slog.Int("reply_bytes", len(event.Reply)),
		slog.Duration("duration", event.Duration),
	}
	if event.Reply != nil {
		attrs = append(attrs, slog.String("reply_kind", event.ReplyKind.String()))
	}

	if event.Err != nil {
		attrs = append(attrs, slog.String("error", event.Err.Error()))
		l.logger.LogAttrs(ctx, slog.LevelWarn, "exchange failed", attrs...)
		return nil
	}
	l.logger.LogAttrs(ctx, slog.LevelInfo, "exchange completed", attrs...)
	return nil
}

// MultiExchangeLogger calls multiple ExchangeLoggers in sequence.
// Best-effort: calls all loggers and collects errors, but doesn't stop on first error.
type MultiExchangeLogger struct {
	loggers []ExchangeLogger
}

// NewMultiExchangeLogger creates a logger that calls multiple loggers.
func NewMultiExchangeLogger(loggers ...ExchangeLogger) *MultiExchangeLogger {
	return &MultiExchangeLogger{loggers: loggers}
}

// LogExchange calls all loggers and returns a combined error if any fail.
func (m *MultiExchangeLogger) LogExchange(ctx context.Context, event *ExchangeEvent) error {
	var errs []error
	for _, logger := range m.loggers {
		if err := logger.LogExchange(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("exchange logging errors: %v", errs)
	}
	return nil
}

// NoopExchangeLogger is a logger that does nothing.
type NoopExchangeLogger struct{}

// NewNoopExchangeLogger creates a no-op logger.
func NewNoopExchangeLogger() *NoopExchangeLogger {
	return &NoopExchangeLogger{}
}

// LogExchange does nothing and always returns nil.
func (n *NoopExchangeLogger) LogExchange(ctx context.Context, event *ExchangeEvent) error {
	return nil
}
