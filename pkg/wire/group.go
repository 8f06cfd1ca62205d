package wire

import (
	"encoding/binary"
	"fmt"
)

// GroupTokenRequest asks the server to issue a token covering a group of SAS.
type GroupTokenRequest struct {
	Entries []SAS
}

func (p *GroupTokenRequest) Kind() Kind { return KindGroupTokenRequest }
func (p *GroupTokenRequest) Size() int  { return p.Kind().Size(len(p.Entries)) }

func (p *GroupTokenRequest) Marshal() []byte {
	return marshalGroup(p.Kind(), p.Entries)
}

// MarshalGroupTokenRequest encodes a group token request. It fails with
// ErrTooManyEntries when the group does not fit the 16-bit count.
func MarshalGroupTokenRequest(entries []SAS) ([]byte, error) {
	if err := checkEntries(entries); err != nil {
		return nil, err
	}
	p := &GroupTokenRequest{Entries: entries}
	return p.Marshal(), nil
}

// ParseGroupTokenRequest decodes a group token request using the count on
// the wire.
func ParseGroupTokenRequest(b []byte) (*GroupTokenRequest, error) {
	n, err := wireCount(b, KindGroupTokenRequest)
	if err != nil {
		return nil, err
	}
	entries, err := parseEntries(b, KindGroupTokenRequest, n)
	if err != nil {
		return nil, err
	}
	return &GroupTokenRequest{Entries: entries}, nil
}

// GroupTokenResponse echoes the group and carries the group token.
type GroupTokenResponse struct {
	Entries []SAS
	Token   Token
}

func (p *GroupTokenResponse) Kind() Kind { return KindGroupTokenResponse }
func (p *GroupTokenResponse) Size() int  { return p.Kind().Size(len(p.Entries)) }

func (p *GroupTokenResponse) Marshal() []byte {
	return append(marshalGroup(p.Kind(), p.Entries), p.Token[:]...)
}

// DecodeGroupTokenResponse decodes the reply to a group token request of n
// entries. The token sits at offset 4+80n.
func DecodeGroupTokenResponse(b []byte, n int) (*GroupTokenResponse, error) {
	entries, err := decodeGroup(b, KindGroupTokenResponse, n)
	if err != nil {
		return nil, err
	}
	resp := &GroupTokenResponse{Entries: entries}
	copy(resp.Token[:], b[groupTokenOffset(n):])
	return resp, nil
}

// GroupTokenValidation asks the server whether a GAS is valid.
type GroupTokenValidation struct {
	Entries []SAS
	Token   Token
}

func (p *GroupTokenValidation) Kind() Kind { return KindGroupTokenValidation }
func (p *GroupTokenValidation) Size() int  { return p.Kind().Size(len(p.Entries)) }

func (p *GroupTokenValidation) Marshal() []byte {
	return append(marshalGroup(p.Kind(), p.Entries), p.Token[:]...)
}

// MarshalGroupTokenValidation encodes a group validation request.
func MarshalGroupTokenValidation(gas *GAS) ([]byte, error) {
	if err := checkEntries(gas.Entries); err != nil {
		return nil, err
	}
	p := &GroupTokenValidation{Entries: gas.Entries, Token: gas.Token}
	return p.Marshal(), nil
}

// ParseGroupTokenValidation decodes a group validation request using the
// count on the wire.
func ParseGroupTokenValidation(b []byte) (*GroupTokenValidation, error) {
	n, err := wireCount(b, KindGroupTokenValidation)
	if err != nil {
		return nil, err
	}
	entries, err := parseEntries(b, KindGroupTokenValidation, n)
	if err != nil {
		return nil, err
	}
	p := &GroupTokenValidation{Entries: entries}
	copy(p.Token[:], b[groupTokenOffset(n):])
	return p, nil
}

// GroupTokenStatus is the verdict on a validated GAS.
type GroupTokenStatus struct {
	Entries []SAS
	Token   Token
	Status  byte
}

func (p *GroupTokenStatus) Kind() Kind { return KindGroupTokenStatus }
func (p *GroupTokenStatus) Size() int  { return p.Kind().Size(len(p.Entries)) }

func (p *GroupTokenStatus) Marshal() []byte {
	b := append(marshalGroup(p.Kind(), p.Entries), p.Token[:]...)
	return append(b, p.Status)
}

// DecodeGroupTokenStatus decodes the reply to a group validation of n
// entries. The status byte sits at offset 4+80n+64.
func DecodeGroupTokenStatus(b []byte, n int) (*GroupTokenStatus, error) {
	entries, err := decodeGroup(b, KindGroupTokenStatus, n)
	if err != nil {
		return nil, err
	}
	off := groupTokenOffset(n)
	resp := &GroupTokenStatus{Entries: entries, Status: b[off+TokenSize]}
	copy(resp.Token[:], b[off:])
	return resp, nil
}

func groupTokenOffset(n int) int {
	return TagSize + CountSize + n*SASSize
}

func checkEntries(entries []SAS) error {
	if len(entries) > MaxEntries {
		return fmt.Errorf("%w: %d > %d", ErrTooManyEntries, len(entries), MaxEntries)
	}
	return nil
}

func marshalGroup(kind Kind, entries []SAS) []byte {
	b := make([]byte, 0, kind.Size(len(entries)))
	b = binary.BigEndian.AppendUint16(b, uint16(kind))
	b = binary.BigEndian.AppendUint16(b, uint16(len(entries)))
	for _, sas := range entries {
		b = sas.appendTo(b)
	}
	return b
}

// decodeGroup validates a group response against the request count n and
// returns the echoed entries.
func decodeGroup(b []byte, kind Kind, n int) ([]SAS, error) {
	if n < 0 || n > MaxEntries {
		return nil, fmt.Errorf("%w: %d", ErrTooManyEntries, n)
	}
	if err := expect(b, kind, n); err != nil {
		return nil, err
	}
	if got := int(binary.BigEndian.Uint16(b[TagSize:])); got != n {
		return nil, &ProtocolMismatchError{
			Want:   kind,
			Got:    kind,
			Len:    len(b),
			Reason: fmt.Sprintf("count %d does not match request count %d", got, n),
		}
	}
	return parseEntries(b, kind, n)
}

// wireCount reads the SAS count of a self-describing group packet.
func wireCount(b []byte, kind Kind) (int, error) {
	if err := expect(b, kind, 0); err != nil {
		return 0, err
	}
	n := int(binary.BigEndian.Uint16(b[TagSize:]))
	if len(b) < kind.Size(n) {
		return 0, &TruncatedPacketError{Kind: kind, Got: len(b), Want: kind.Size(n)}
	}
	return n, nil
}

func parseEntries(b []byte, kind Kind, n int) ([]SAS, error) {
	entries := make([]SAS, 0, n)
	off := TagSize + CountSize
	for i := 0; i < n; i++ {
		sas, err := ParseSASRecord(b[off:])
		if err != nil {
			return nil, &TruncatedPacketError{Kind: kind, Got: len(b), Want: kind.Size(n)}
		}
		entries = append(entries, sas)
		off += SASSize
	}
	return entries, nil
}
