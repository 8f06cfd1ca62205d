// Package devserver is a token server for local development and tests. It
// answers every request kind of the protocol from a single goroutine.
// Tokens are keyed BLAKE2b-256 digests, hex encoded to fill the 64-byte
// token field, so any server sharing the secret can validate them.
package devserver

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net"

	"github.com/tokenwire/tokenwire/pkg/transport"
	"github.com/tokenwire/tokenwire/pkg/wire"
	"golang.org/x/crypto/blake2b"
)

// Validation verdicts written into status packets.
const (
	StatusValid   byte = 0
	StatusInvalid byte = 1
)

// Server issues and validates tokens.
type Server struct {
	key    []byte
	logger *slog.Logger
}

// New creates a server keyed with secret. An empty secret is replaced by
// 32 random bytes; secrets longer than 64 bytes are rejected.
func New(secret []byte, logger *slog.Logger) (*Server, error) {
	if len(secret) > blake2b.Size {
		return nil, fmt.Errorf("secret must be at most %d bytes, got %d", blake2b.Size, len(secret))
	}
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return nil, fmt.Errorf("generate secret: %w", err)
		}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{key: secret, logger: logger}, nil
}

// IssueToken returns the token for id and nonce.
func (s *Server) IssueToken(id wire.ID, nonce uint32) wire.Token {
	msg := make([]byte, 0, 1+wire.IDSize+wire.NonceSize)
	msg = append(msg, 'I')
	msg = append(msg, id[:]...)
	msg = binary.BigEndian.AppendUint32(msg, nonce)
	return s.sign(msg)
}

// GroupToken returns the token covering entries, in order.
func (s *Server) GroupToken(entries []wire.SAS) wire.Token {
	msg := make([]byte, 0, 1+len(entries)*wire.SASSize)
	msg = append(msg, 'G')
	for _, sas := range entries {
		msg = append(msg, sas.Marshal()...)
	}
	return s.sign(msg)
}

func (s *Server) sign(msg []byte) wire.Token {
	h, err := blake2b.New256(s.key)
	if err != nil {
		// key length is checked in New
		panic(err)
	}
	h.Write(msg)
	return wire.NewToken(hex.EncodeToString(h.Sum(nil)))
}

// Valid reports whether sas carries the token this server issues for it.
func (s *Server) Valid(sas wire.SAS) bool {
	return s.IssueToken(sas.ID, sas.Nonce) == sas.Token
}

// ListenAndServe answers requests on addr until ctx is cancelled. ready,
// when non-nil, receives the bound address once the socket is open.
func (s *Server) ListenAndServe(ctx context.Context, addr string, ready chan<- net.Addr) error {
	var lc net.ListenConfig
	conn, err := lc.ListenPacket(ctx, "udp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	defer conn.Close()

	s.logger.Info("token server listening", "address", conn.LocalAddr().String())
	if ready != nil {
		ready <- conn.LocalAddr()
	}
	return transport.Serve(ctx, conn, s.Handle, s.logger)
}

// Handle answers one request datagram.
func (s *Server) Handle(ctx context.Context, remote net.Addr, req []byte) []byte {
	reply, code := s.handle(req)
	if code != 0 {
		s.logger.WarnContext(ctx, "rejecting request",
			"remote", remote.String(),
			"kind", wire.Tag(req).String(),
			"code", uint16(code),
			"reason", code.Description())
		return wire.MarshalErrorResponse(code)
	}
	s.logger.InfoContext(ctx, "answered request", "remote", remote.String(), "kind", wire.Tag(req).String())
	return reply.Marshal()
}

func (s *Server) handle(req []byte) (wire.Packet, wire.ErrorCode) {
	if len(req) < wire.TagSize {
		return nil, wire.ErrCodeIncorrectLength
	}

	kind := wire.Tag(req)
	switch kind {
	case wire.KindIndividualTokenRequest, wire.KindIndividualTokenValidation:
		if len(req) != kind.Size(0) {
			return nil, wire.ErrCodeIncorrectLength
		}
	case wire.KindGroupTokenRequest, wire.KindGroupTokenValidation:
		if len(req) < wire.TagSize+wire.CountSize {
			return nil, wire.ErrCodeIncorrectLength
		}
		n := int(binary.BigEndian.Uint16(req[wire.TagSize:]))
		if len(req) != kind.Size(n) {
			return nil, wire.ErrCodeIncorrectLength
		}
		if n == 0 {
			return nil, wire.ErrCodeInvalidParameter
		}
	default:
		return nil, wire.ErrCodeInvalidMessageCode
	}

	p, err := wire.ParseRequest(req)
	if err != nil {
		return nil, wire.ErrCodeIncorrectLength
	}

	switch p := p.(type) {
	case *wire.IndividualTokenRequest:
		if !wire.IsASCII(string(p.ID[:])) {
			return nil, wire.ErrCodeASCIIDecode
		}
		sas := wire.SAS{ID: p.ID, Nonce: p.Nonce, Token: s.IssueToken(p.ID, p.Nonce)}
		return &wire.IndividualTokenResponse{SAS: sas}, 0

	case *wire.IndividualTokenValidation:
		if !asciiSAS(p.SAS) {
			return nil, wire.ErrCodeASCIIDecode
		}
		return &wire.IndividualTokenStatus{SAS: p.SAS, Status: s.verdict(s.Valid(p.SAS))}, 0

	case *wire.GroupTokenRequest:
		if code := s.checkEntries(p.Entries); code != 0 {
			return nil, code
		}
		return &wire.GroupTokenResponse{Entries: p.Entries, Token: s.GroupToken(p.Entries)}, 0

	case *wire.GroupTokenValidation:
		if !wire.IsASCII(string(p.Token[:])) {
			return nil, wire.ErrCodeASCIIDecode
		}
		if code := s.checkEntries(p.Entries); code != 0 {
			return nil, code
		}
		valid := s.GroupToken(p.Entries) == p.Token
		return &wire.GroupTokenStatus{Entries: p.Entries, Token: p.Token, Status: s.verdict(valid)}, 0
	}
	return nil, wire.ErrCodeInvalidMessageCode
}

// checkEntries rejects groups with non-ASCII text or a SAS this server did
// not issue.
func (s *Server) checkEntries(entries []wire.SAS) wire.ErrorCode {
	for _, sas := range entries {
		if !asciiSAS(sas) {
			return wire.ErrCodeASCIIDecode
		}
	}
	for _, sas := range entries {
		if !s.Valid(sas) {
			return wire.ErrCodeInvalidSingleToken
		}
	}
	return 0
}

func asciiSAS(sas wire.SAS) bool {
	return wire.IsASCII(string(sas.ID[:])) && wire.IsASCII(string(sas.Token[:]))
}

func (s *Server) verdict(valid bool) byte {
	if valid {
		return StatusValid
	}
	return StatusInvalid
}
