package wire

import (
	"errors"
	"fmt"
)

// Sentinel errors
var (
	// ErrMalformedSAS indicates SAS text without three ':'-separated fields.
	ErrMalformedSAS = errors.New("wire: malformed SAS")

	// ErrInvalidNonce indicates a nonce that is not an unsigned 32-bit decimal.
	ErrInvalidNonce = errors.New("wire: invalid nonce")

	// ErrTruncatedPacket indicates a buffer shorter than its packet layout.
	ErrTruncatedPacket = errors.New("wire: truncated packet")

	// ErrProtocolMismatch indicates a buffer that fits neither the expected
	// response nor an error packet.
	ErrProtocolMismatch = errors.New("wire: protocol mismatch")

	// ErrServerReported indicates the server answered with an error packet.
	ErrServerReported = errors.New("wire: server reported error")

	// ErrTooManyEntries indicates a group larger than the 16-bit count allows.
	ErrTooManyEntries = errors.New("wire: too many group entries")
)

// MalformedSASError reports SAS text that could not be split into
// id, nonce and token.
type MalformedSASError struct {
	Input string
}

func (e *MalformedSASError) Error() string {
	return fmt.Sprintf("wire: malformed SAS %q: want id:nonce:token", e.Input)
}

func (e *MalformedSASError) Unwrap() error {
	return ErrMalformedSAS
}

// InvalidNonceError reports a nonce field that failed to parse.
type InvalidNonceError struct {
	Input  string
	Reason string

	// Overflow is set when the digits are valid but exceed 32 bits.
	Overflow bool
}

func (e *InvalidNonceError) Error() string {
	return fmt.Sprintf("wire: invalid nonce %q: %s", e.Input, e.Reason)
}

func (e *InvalidNonceError) Unwrap() error {
	return ErrInvalidNonce
}

// TruncatedPacketError reports a buffer too short for the packet it should hold.
type TruncatedPacketError struct {
	Kind Kind
	Got  int
	Want int
}

func (e *TruncatedPacketError) Error() string {
	return fmt.Sprintf("wire: truncated %s: got %d bytes, want at least %d", e.Kind, e.Got, e.Want)
}

func (e *TruncatedPacketError) Unwrap() error {
	return ErrTruncatedPacket
}

// ProtocolMismatchError reports a buffer whose type tag or shape does not
// match what the exchange expected.
type ProtocolMismatchError struct {
	Want   Kind
	Got    Kind
	Len    int
	Reason string
}

func (e *ProtocolMismatchError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("wire: protocol mismatch on %d-byte %s: %s", e.Len, e.Got, e.Reason)
	}
	return fmt.Sprintf("wire: expected %s, got %s (%d bytes)", e.Want, e.Got, e.Len)
}

func (e *ProtocolMismatchError) Unwrap() error {
	return ErrProtocolMismatch
}

// ServerError is an error packet received from the server.
type ServerError struct {
	Code ErrorCode
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error %d: %s", uint16(e.Code), e.Code.Description())
}

func (e *ServerError) Unwrap() error {
	return ErrServerReported
}
