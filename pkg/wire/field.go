package wire

import (
	"bytes"
	"unicode/utf8"
)

// Padding fills unused bytes of fixed-width text fields.
const Padding = ' '

// ID is a 12-byte space-padded identifier.
type ID [IDSize]byte

// NewID truncates or pads s to 12 bytes.
func NewID(s string) ID {
	var id ID
	putField(id[:], s)
	return id
}

// String returns the identifier with trailing padding removed.
func (id ID) String() string {
	return string(bytes.TrimRight(id[:], string(Padding)))
}

// Token is a 64-byte space-padded token.
type Token [TokenSize]byte

// NewToken truncates or pads s to 64 bytes.
func NewToken(s string) Token {
	var t Token
	putField(t[:], s)
	return t
}

// String returns all 64 bytes, padding included, so a decoded token can be
// sent back to the server unchanged.
func (t Token) String() string {
	return string(t[:])
}

// Trimmed returns the token with trailing padding removed. Use it for
// display only.
func (t Token) Trimmed() string {
	return string(bytes.TrimRight(t[:], string(Padding)))
}

// IsBlank reports whether the token is all padding.
func (t Token) IsBlank() bool {
	return t == blankToken
}

var blankToken = NewToken("")

// putField copies s into dst, truncating to len(dst) and padding the rest
// with spaces.
func putField(dst []byte, s string) {
	n := copy(dst, s)
	for i := n; i < len(dst); i++ {
		dst[i] = Padding
	}
}

// IsASCII reports whether every byte of s is 7-bit ASCII.
func IsASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
