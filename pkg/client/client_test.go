package client_test

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/lmittmann/tint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tokenwire/tokenwire/pkg/client"
	"github.com/tokenwire/tokenwire/pkg/transport"
	"github.com/tokenwire/tokenwire/pkg/wire"
)

func testLogger(t *testing.T) *slog.Logger {
	return slog.New(tint.NewHandler(t.Output(), &tint.Options{
		Level:      slog.LevelDebug,
		TimeFormat: "15:04:05",
	}))
}

// scriptedConn returns a fixed reply and records what it was sent.
type scriptedConn struct {
	reply  []byte
	err    error
	sent   [][]byte
	maxLen int
	closed bool
}

func (s *scriptedConn) Exchange(ctx context.Context, payload []byte, maxLen int) ([]byte, error) {
	s.sent = append(s.sent, payload)
	s.maxLen = maxLen
	return s.reply, s.err
}

func (s *scriptedConn) Close() error {
	s.closed = true
	return nil
}

func newScripted(t *testing.T, conn *scriptedConn, opts ...client.Option) *client.Client {
	dial := func(ctx context.Context, addr string) (transport.Conn, error) {
		return conn, nil
	}
	opts = append([]client.Option{client.WithLogger(testLogger(t)), client.WithDialer(dial)}, opts...)
	c, err := client.New("127.0.0.1:9999", opts...)
	require.NoError(t, err)
	return c
}

// captureLogger records exchange events.
type captureLogger struct {
	events []*client.ExchangeEvent
	err    error
}

func (c *captureLogger) LogExchange(ctx context.Context, event *client.ExchangeEvent) error {
	c.events = append(c.events, event)
	return c.err
}

func TestRequestIndividualToken(t *testing.T) {
	assert := assert.New(t)
	reply := &wire.IndividualTokenResponse{SAS: wire.NewSAS("alice", 7, "issued")}
	conn := &scriptedConn{reply: reply.Marshal()}
	c := newScripted(t, conn)

	resp, err := c.RequestIndividualToken(context.Background(), "alice", 7)
	require.NoError(t, err)

	assert.Equal("issued", resp.Token.Trimmed())
	assert.Equal(wire.MarshalIndividualTokenRequest("alice", 7), conn.sent[0])
	assert.Equal(82, conn.maxLen)
	assert.True(conn.closed)
}

func TestRequestIndividualToken_ServerError(t *testing.T) {
	conn := &scriptedConn{reply: wire.MarshalErrorResponse(wire.ErrCodeInvalidMessageCode)}
	c := newScripted(t, conn)

	_, err := c.RequestIndividualToken(context.Background(), "alice", 7)
	var serverErr *wire.ServerError
	require.True(t, errors.As(err, &serverErr))
	require.Equal(t, wire.ErrCodeInvalidMessageCode, serverErr.Code)
}

func TestRequestIndividualToken_TransportTimeout(t *testing.T) {
	conn := &scriptedConn{err: transport.ErrTimeout}
	c := newScripted(t, conn)

	_, err := c.RequestIndividualToken(context.Background(), "alice", 7)
	require.ErrorIs(t, err, transport.ErrTimeout)
	require.Contains(t, err.Error(), "IndividualTokenRequest to 127.0.0.1:9999")
}

func TestValidateIndividualToken(t *testing.T) {
	sas := wire.NewSAS("bob", 3, "tokB")
	reply := &wire.IndividualTokenStatus{SAS: sas, Status: 1}
	conn := &scriptedConn{reply: reply.Marshal()}
	c := newScripted(t, conn)

	status, err := c.ValidateIndividualToken(context.Background(), sas)
	require.NoError(t, err)
	require.Equal(t, byte(1), status.Status)
	require.Equal(t, wire.MarshalIndividualTokenValidation(sas), conn.sent[0])
}

func TestRequestGroupToken_ThreadsCount(t *testing.T) {
	entries := []wire.SAS{wire.NewSAS("alice", 1, "tokA"), wire.NewSAS("bob", 2, "tokB")}
	reply := &wire.GroupTokenResponse{Entries: entries, Token: wire.NewToken("groupToken")}
	conn := &scriptedConn{reply: reply.Marshal()}
	c := newScripted(t, conn)

	resp, err := c.RequestGroupToken(context.Background(), entries)
	require.NoError(t, err)
	require.Equal(t, "groupToken", resp.Token.Trimmed())
	require.Equal(t, 4+80*2+64, conn.maxLen)
}

func TestRequestGroupToken_ShortReply(t *testing.T) {
	entries := []wire.SAS{wire.NewSAS("alice", 1, "tokA"), wire.NewSAS("bob", 2, "tokB")}
	reply := &wire.GroupTokenResponse{Entries: entries[:1], Token: wire.NewToken("groupToken")}
	conn := &scriptedConn{reply: reply.Marshal()}
	c := newScripted(t, conn)

	_, err := c.RequestGroupToken(context.Background(), entries)
	require.ErrorIs(t, err, wire.ErrTruncatedPacket)
}

func TestValidateGroupToken(t *testing.T) {
	gas, err := wire.ParseGAS("alice:1:tokA+bob:2:tokB+groupToken")
	require.NoError(t, err)
	reply := &wire.GroupTokenStatus{Entries: gas.Entries, Token: gas.Token, Status: 0}
	conn := &scriptedConn{reply: reply.Marshal()}
	c := newScripted(t, conn)

	status, err := c.ValidateGroupToken(context.Background(), gas)
	require.NoError(t, err)
	require.Equal(t, byte(0), status.Status)
	require.Len(t, conn.sent[0], 4+80*2+64)
}

func TestExchangeLogger_RecordsEvents(t *testing.T) {
	capture := &captureLogger{err: errors.New("sink down")}
	conn := &scriptedConn{reply: wire.MarshalErrorResponse(wire.ErrCodeIncorrectLength)}
	c := newScripted(t, conn, client.WithExchangeLogger(capture))

	_, err := c.RequestIndividualToken(context.Background(), "alice", 7)
	require.ErrorIs(t, err, wire.ErrServerReported)

	require.Len(t, capture.events, 1)
	event := capture.events[0]
	require.Equal(t, wire.KindIndividualTokenRequest, event.Kind)
	require.Equal(t, wire.KindErrorResponse, event.ReplyKind)
	require.Equal(t, "127.0.0.1:9999", event.Server)
	require.ErrorIs(t, event.Err, wire.ErrServerReported)
	require.NotEmpty(t, event.ID.String())
}

func TestNew_RejectsBadTimeout(t *testing.T) {
	_, err := client.New("127.0.0.1:1", client.WithTimeout(0))
	require.Error(t, err)
}

func TestClient_OverUDP(t *testing.T) {
	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	defer pc.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go transport.Serve(ctx, pc, func(_ context.Context, _ net.Addr, req []byte) []byte {
		r, err := wire.ParseIndividualTokenRequest(req)
		if err != nil {
			return wire.MarshalErrorResponse(wire.ErrCodeInvalidMessageCode)
		}
		resp := &wire.IndividualTokenResponse{SAS: wire.SAS{ID: r.ID, Nonce: r.Nonce, Token: wire.NewToken("udp-token")}}
		return resp.Marshal()
	}, testLogger(t))

	c, err := client.New(pc.LocalAddr().String(), client.WithLogger(testLogger(t)), client.WithTimeout(2*time.Second))
	require.NoError(t, err)

	resp, err := c.RequestIndividualToken(context.Background(), "alice", 11)
	require.NoError(t, err)
	require.Equal(t, "alice", resp.ID.String())
	require.Equal(t, uint32(11), resp.Nonce)
	require.Equal(t, "udp-token", resp.Token.Trimmed())
}
