package wire

import (
	"errors"
	"fmt"
	"strings"
)

// GAS is a group access signature: the SAS entries of the group followed by
// the group token.
type GAS struct {
	Entries []SAS
	Token   Token

	// Warnings holds advisory notes collected while parsing, such as
	// non-ASCII input or discarded token candidates.
	Warnings []string
}

// ParseGAS parses "sas1+sas2+...+token". Each '+'-separated segment is
// tried as a SAS; a segment that is not a SAS, including one whose nonce is
// not a decimal number, becomes the group token. When several segments are
// not SAS the last one wins and the others are reported in Warnings. A
// single trailing '+' ends the input without adding an empty segment. A
// nonce that overflows 32 bits is an error.
func ParseGAS(text string) (*GAS, error) {
	gas := &GAS{}
	if !IsASCII(text) {
		gas.Warnings = append(gas.Warnings, "input contains non-ASCII characters")
	}

	var token string
	found := false
	for _, segment := range splitSegments(text) {
		sas, err := ParseSAS(segment)
		if err == nil {
			gas.Entries = append(gas.Entries, sas)
			continue
		}
		var nonceErr *InvalidNonceError
		if errors.As(err, &nonceErr) && nonceErr.Overflow {
			return nil, err
		}
		if found {
			gas.Warnings = append(gas.Warnings, fmt.Sprintf("discarding token candidate %q", token))
		}
		token = segment
		found = true
	}

	if !found {
		gas.Warnings = append(gas.Warnings, "no group token present")
	}
	gas.Token = NewToken(token)
	return gas, nil
}

// splitSegments splits on '+' the way a delimited line reader does: interior
// empty segments are kept, a trailing '+' does not start a new one.
func splitSegments(text string) []string {
	segments := strings.Split(text, "+")
	if len(segments) > 1 && segments[len(segments)-1] == "" {
		segments = segments[:len(segments)-1]
	}
	return segments
}

// String renders the GAS in its text form.
func (g *GAS) String() string {
	parts := make([]string, 0, len(g.Entries)+1)
	for _, sas := range g.Entries {
		parts = append(parts, sas.String())
	}
	parts = append(parts, g.Token.Trimmed())
	return strings.Join(parts, "+")
}
