// Package wire implements the binary packet format of the token protocol.
//
// Every packet starts with a 2-byte big-endian type tag. Integers are
// big-endian and text fields have a fixed width: shorter values are
// right-padded with spaces (0x20), longer values are truncated, and no
// terminator is written.
//
// # Packet Layouts
//
//	tag  kind                        layout                               bytes
//	1    IndividualTokenRequest      id[12] nonce[4]                      18
//	2    IndividualTokenResponse     id[12] nonce[4] token[64]            82
//	3    IndividualTokenValidation   id[12] nonce[4] token[64]            82
//	4    IndividualTokenStatus       id[12] nonce[4] token[64] status[1]  83
//	5    GroupTokenRequest           n[2] sas[80]*n                       4+80n
//	6    GroupTokenResponse          n[2] sas[80]*n token[64]             4+80n+64
//	7    GroupTokenValidation        n[2] sas[80]*n token[64]             4+80n+64
//	8    GroupTokenStatus            n[2] sas[80]*n token[64] status[1]   4+80n+65
//	256  ErrorResponse               code[2]                              4
//
// A SAS (single access signature) record is id[12] nonce[4] token[64]. Its
// text form is "id:nonce:token". A GAS (group access signature) is a list of
// SAS joined by '+' followed by the group token:
//
//	alice:1:tokA+bob:2:tokB+groupToken
//
// # Decoding Responses
//
// Responses are not self-describing. Group responses in particular can only
// be located by the count of the request that produced them, so the group
// decoders take that count as an argument:
//
//	req, _ := wire.MarshalGroupTokenRequest(entries)
//	// ... exchange ...
//	resp, err := wire.DecodeGroupTokenResponse(buf, len(entries))
//
// A 4-byte buffer carrying tag 256 is always a server error, whatever was
// expected. Decoders return it as *ServerError. Other mismatches surface as
// *TruncatedPacketError or *ProtocolMismatchError; all error types unwrap to
// the sentinels in this package so callers may use errors.Is.
//
// # Text Input
//
// Non-ASCII characters in user input are legal but most servers reject them
// with error code 5. ParseGAS records a warning instead of failing, and
// callers can check any string with IsASCII.
package wire
