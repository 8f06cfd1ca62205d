package wire

import "encoding/binary"

// ErrorCode identifies a failure reported by the server.
type ErrorCode uint16

const (
	ErrCodeInvalidMessageCode ErrorCode = 1
	ErrCodeIncorrectLength    ErrorCode = 2
	ErrCodeInvalidParameter   ErrorCode = 3
	ErrCodeInvalidSingleToken ErrorCode = 4
	ErrCodeASCIIDecode        ErrorCode = 5
)

var errorCatalog = map[ErrorCode]string{
	ErrCodeInvalidMessageCode: "invalid message code: the server does not know this request type",
	ErrCodeIncorrectLength:    "incorrect message length",
	ErrCodeInvalidParameter:   "invalid parameter",
	ErrCodeInvalidSingleToken: "invalid single token: a SAS inside the GAS is not valid",
	ErrCodeASCIIDecode:        "ASCII decode error: the message contains a non-ASCII character",
}

// Description returns the catalog text for the code. Unknown codes are
// described as "unknown error".
func (c ErrorCode) Description() string {
	if d, ok := errorCatalog[c]; ok {
		return d
	}
	return "unknown error"
}

// ErrorResponse is the packet a server sends instead of a normal reply.
type ErrorResponse struct {
	Code ErrorCode
}

func (p *ErrorResponse) Kind() Kind { return KindErrorResponse }
func (p *ErrorResponse) Size() int  { return p.Kind().Size(0) }

func (p *ErrorResponse) Marshal() []byte {
	b := make([]byte, 0, p.Size())
	b = binary.BigEndian.AppendUint16(b, uint16(p.Kind()))
	return binary.BigEndian.AppendUint16(b, uint16(p.Code))
}

// Err returns the packet as a *ServerError.
func (p *ErrorResponse) Err() error {
	return &ServerError{Code: p.Code}
}

// MarshalErrorResponse encodes a 4-byte error packet.
func MarshalErrorResponse(code ErrorCode) []byte {
	p := &ErrorResponse{Code: code}
	return p.Marshal()
}

// ParseErrorResponse decodes an error packet. b must be exactly 4 bytes
// tagged 256.
func ParseErrorResponse(b []byte) (*ErrorResponse, error) {
	if Classify(b) != KindErrorResponse {
		return nil, &ProtocolMismatchError{Want: KindErrorResponse, Got: Tag(b), Len: len(b)}
	}
	return &ErrorResponse{Code: ErrorCode(binary.BigEndian.Uint16(b[TagSize:]))}, nil
}
