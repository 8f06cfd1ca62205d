// Package client performs token exchanges with a token server. Every
// operation sends exactly one request and waits for exactly one reply.
package client

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/tokenwire/tokenwire/pkg/transport"
	"github.com/tokenwire/tokenwire/pkg/wire"
)

// Client talks to one token server.
type Client struct {
	addr           string
	timeout        time.Duration
	logger         *slog.Logger
	dial           transport.DialFunc
	exchangeLogger ExchangeLogger
}

// New creates a client for the server at addr (host:port).
func New(addr string, options ...Option) (*Client, error) {
	client := &Client{
		addr:           addr,
		timeout:        transport.DefaultTimeout,
		logger:         slog.Default(),
		exchangeLogger: NewNoopExchangeLogger(),
	}

	for _, o := range options {
		if err := o.apply(client); err != nil {
			return nil, err
		}
	}

	if client.dial == nil {
		client.dial = transport.Dialer(transport.Timeout(client.timeout), transport.Logger(client.logger))
	}

	return client, nil
}

// Option configures the client
type Option interface {
	apply(*Client) error
}

type optionFunc func(*Client) error

func (f optionFunc) apply(c *Client) error {
	return f(c)
}

// WithTimeout bounds the wait for each reply.
func WithTimeout(d time.Duration) Option {
	return optionFunc(func(c *Client) error {
		if d <= 0 {
			return fmt.Errorf("timeout must be positive, got %s", d)
		}
		c.timeout = d
		return nil
	})
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return optionFunc(func(c *Client) error {
		c.logger = logger
		return nil
	})
}

// WithDialer replaces the UDP dialer, mostly for tests.
func WithDialer(dial transport.DialFunc) Option {
	return optionFunc(func(c *Client) error {
		c.dial = dial
		return nil
	})
}

// WithExchangeLogger records every exchange with l.
func WithExchangeLogger(l ExchangeLogger) Option {
	return optionFunc(func(c *Client) error {
		c.exchangeLogger = l
		return nil
	})
}

// Addr returns the server address.
func (c *Client) Addr() string {
	return c.addr
}

// RequestIndividualToken asks the server for a token bound to id and nonce.
func (c *Client) RequestIndividualToken(ctx context.Context, id string, nonce uint32) (*wire.IndividualTokenResponse, error) {
	c.warnNonASCII(ctx, id)

	var resp *wire.IndividualTokenResponse
	req := wire.MarshalIndividualTokenRequest(id, nonce)
	err := c.exchange(ctx, wire.KindIndividualTokenRequest, req, wire.KindIndividualTokenResponse.Size(0), func(b []byte) (err error) {
		resp, err = wire.DecodeIndividualTokenResponse(b)
		return err
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// ValidateIndividualToken asks the server to judge a SAS.
func (c *Client) ValidateIndividualToken(ctx context.Context, sas wire.SAS) (*wire.IndividualTokenStatus, error) {
	var status *wire.IndividualTokenStatus
	req := wire.MarshalIndividualTokenValidation(sas)
	err := c.exchange(ctx, wire.KindIndividualTokenValidation, req, wire.KindIndividualTokenStatus.Size(0), func(b []byte) (err error) {
		status, err = wire.DecodeIndividualTokenStatus(b)
		return err
	})
	if err != nil {
		return nil, err
	}
	return status, nil
}

// RequestGroupToken asks the server for a token covering every entry.
func (c *Client) RequestGroupToken(ctx context.Context, entries []wire.SAS) (*wire.GroupTokenResponse, error) {
	req, err := wire.MarshalGroupTokenRequest(entries)
	if err != nil {
		return nil, err
	}

	n := len(entries)
	var resp *wire.GroupTokenResponse
	err = c.exchange(ctx, wire.KindGroupTokenRequest, req, wire.KindGroupTokenResponse.Size(n), func(b []byte) (err error) {
		resp, err = wire.DecodeGroupTokenResponse(b, n)
		return err
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// ValidateGroupToken asks the server to judge a GAS. Parser warnings
// carried by gas are logged before sending.
func (c *Client) ValidateGroupToken(ctx context.Context, gas *wire.GAS) (*wire.GroupTokenStatus, error) {
	for _, w := range gas.Warnings {
		c.logger.WarnContext(ctx, "group access signature", "warning", w)
	}

	req, err := wire.MarshalGroupTokenValidation(gas)
	if err != nil {
		return nil, err
	}

	n := len(gas.Entries)
	var status *wire.GroupTokenStatus
	err = c.exchange(ctx, wire.KindGroupTokenValidation, req, wire.KindGroupTokenStatus.Size(n), func(b []byte) (err error) {
		status, err = wire.DecodeGroupTokenStatus(b, n)
		return err
	})
	if err != nil {
		return nil, err
	}
	return status, nil
}

// exchange dials, sends req, decodes the reply and records the event.
func (c *Client) exchange(ctx context.Context, kind wire.Kind, req []byte, replySize int, decode func([]byte) error) error {
	event := &ExchangeEvent{
		ID:        uuid.New(),
		Timestamp: time.Now(),
		Server:    c.addr,
		Kind:      kind,
		Request:   req,
	}

	err := c.roundTrip(ctx, event, replySize, decode)
	event.Duration = time.Since(event.Timestamp)
	event.Err = err

	if logErr := c.exchangeLogger.LogExchange(ctx, event); logErr != nil {
		c.logger.WarnContext(ctx, "failed to record exchange", "error", logErr)
	}
	return err
}

func (c *Client) roundTrip(ctx context.Context, event *ExchangeEvent, replySize int, decode func([]byte) error) error {
	conn, err := c.dial(ctx, c.addr)
	if err != nil {
		return err
	}
	defer conn.Close()

	c.logger.DebugContext(ctx, "sending request", "kind", event.Kind.String(), "server", c.addr, "bytes", len(event.Request))
	reply, err := conn.Exchange(ctx, event.Request, replySize)
	if err != nil {
		return fmt.Errorf("%s to %s: %w", event.Kind, c.addr, err)
	}
	event.Reply = reply
	event.ReplyKind = wire.Classify(reply)

	return decode(reply)
}

func (c *Client) warnNonASCII(ctx context.Context, s string) {
	if !wire.IsASCII(s) {
		c.logger.WarnContext(ctx, "input contains non-ASCII characters; the server may reject it", "input", s)
	}
}
