package wire

import (
	"encoding/binary"
	"errors"
	"strconv"
	"strings"
)

// SAS is a single access signature: an identifier, the nonce it was issued
// for and the token the server returned.
type SAS struct {
	ID    ID
	Nonce uint32
	Token Token
}

// NewSAS builds a SAS from text fields, truncating or padding them.
func NewSAS(id string, nonce uint32, token string) SAS {
	return SAS{ID: NewID(id), Nonce: nonce, Token: NewToken(token)}
}

// ParseSAS parses "id:nonce:token". The token is everything after the
// second ':' and may itself contain ':'. An empty token is malformed.
func ParseSAS(text string) (SAS, error) {
	fields := strings.SplitN(text, ":", 3)
	if len(fields) < 3 || fields[2] == "" {
		return SAS{}, &MalformedSASError{Input: text}
	}

	nonce, err := ParseNonce(fields[1])
	if err != nil {
		return SAS{}, err
	}

	return SAS{
		ID:    NewID(fields[0]),
		Nonce: nonce,
		Token: NewToken(fields[2]),
	}, nil
}

// ParseNonce parses an unsigned base-10 nonce that must fit in 32 bits.
func ParseNonce(text string) (uint32, error) {
	if text == "" {
		return 0, &InvalidNonceError{Input: text, Reason: "empty"}
	}
	n, err := strconv.ParseUint(text, 10, 32)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) {
			return 0, &InvalidNonceError{Input: text, Reason: "exceeds 32 bits", Overflow: true}
		}
		return 0, &InvalidNonceError{Input: text, Reason: "not an unsigned decimal"}
	}
	return uint32(n), nil
}

// String renders the SAS in its text form with padding removed from the
// identifier and the token.
func (s SAS) String() string {
	return s.ID.String() + ":" + strconv.FormatUint(uint64(s.Nonce), 10) + ":" + s.Token.Trimmed()
}

// Marshal returns the 80-byte record id ‖ nonce ‖ token.
func (s SAS) Marshal() []byte {
	return s.appendTo(make([]byte, 0, SASSize))
}

func (s SAS) appendTo(b []byte) []byte {
	b = append(b, s.ID[:]...)
	b = binary.BigEndian.AppendUint32(b, s.Nonce)
	return append(b, s.Token[:]...)
}

// ParseSASRecord decodes an 80-byte SAS record.
func ParseSASRecord(b []byte) (SAS, error) {
	if len(b) < SASSize {
		return SAS{}, &TruncatedPacketError{Got: len(b), Want: SASSize}
	}
	var s SAS
	copy(s.ID[:], b[:IDSize])
	s.Nonce = binary.BigEndian.Uint32(b[IDSize:])
	copy(s.Token[:], b[IDSize+NonceSize:SASSize])
	return s, nil
}
