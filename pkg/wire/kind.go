package wire

import (
	"encoding/binary"
	"fmt"
)

// Field widths in bytes.
const (
	TagSize    = 2
	CountSize  = 2
	IDSize     = 12
	NonceSize  = 4
	TokenSize  = 64
	StatusSize = 1
	SASSize    = IDSize + NonceSize + TokenSize

	// MaxEntries is the largest group the 16-bit count can describe.
	MaxEntries = 1<<16 - 1
)

// Kind is the type tag at the start of every packet.
type Kind uint16

const (
	KindUnknown                   Kind = 0
	KindIndividualTokenRequest    Kind = 1
	KindIndividualTokenResponse   Kind = 2
	KindIndividualTokenValidation Kind = 3
	KindIndividualTokenStatus     Kind = 4
	KindGroupTokenRequest         Kind = 5
	KindGroupTokenResponse        Kind = 6
	KindGroupTokenValidation      Kind = 7
	KindGroupTokenStatus          Kind = 8
	KindErrorResponse             Kind = 256
)

var kindNames = map[Kind]string{
	KindIndividualTokenRequest:    "IndividualTokenRequest",
	KindIndividualTokenResponse:   "IndividualTokenResponse",
	KindIndividualTokenValidation: "IndividualTokenValidation",
	KindIndividualTokenStatus:     "IndividualTokenStatus",
	KindGroupTokenRequest:         "GroupTokenRequest",
	KindGroupTokenResponse:        "GroupTokenResponse",
	KindGroupTokenValidation:      "GroupTokenValidation",
	KindGroupTokenStatus:          "GroupTokenStatus",
	KindErrorResponse:             "ErrorResponse",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", uint16(k))
}

// IsGroup reports whether packets of this kind carry a SAS count.
func (k Kind) IsGroup() bool {
	return k >= KindGroupTokenRequest && k <= KindGroupTokenStatus
}

// Size returns the wire length of a packet of this kind carrying n SAS
// records. n is ignored for individual kinds. Unknown kinds return 0.
func (k Kind) Size(n int) int {
	switch k {
	case KindIndividualTokenRequest:
		return TagSize + IDSize + NonceSize
	case KindIndividualTokenResponse, KindIndividualTokenValidation:
		return TagSize + SASSize
	case KindIndividualTokenStatus:
		return TagSize + SASSize + StatusSize
	case KindGroupTokenRequest:
		return TagSize + CountSize + n*SASSize
	case KindGroupTokenResponse, KindGroupTokenValidation:
		return TagSize + CountSize + n*SASSize + TokenSize
	case KindGroupTokenStatus:
		return TagSize + CountSize + n*SASSize + TokenSize + StatusSize
	case KindErrorResponse:
		return TagSize + 2
	}
	return 0
}

// Tag reads the type tag of b. It returns KindUnknown when b is shorter
// than a tag.
func Tag(b []byte) Kind {
	if len(b) < TagSize {
		return KindUnknown
	}
	return Kind(binary.BigEndian.Uint16(b))
}

// Classify reports KindErrorResponse for any 4-byte buffer tagged 256 and
// the raw tag otherwise. It is the first step of every response decode.
func Classify(b []byte) Kind {
	tag := Tag(b)
	if tag == KindErrorResponse && len(b) != KindErrorResponse.Size(0) {
		return KindUnknown
	}
	return tag
}

// Packet is implemented by the nine packet types of the protocol.
type Packet interface {
	Kind() Kind
	Size() int
	Marshal() []byte
}
