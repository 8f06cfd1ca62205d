package wire

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"gotest.tools/assert"
)

func TestMarshalIndividualTokenRequest(t *testing.T) {
	b := MarshalIndividualTokenRequest("alice", 7)
	want := []byte{
		0x00, 0x01,
		'a', 'l', 'i', 'c', 'e', ' ', ' ', ' ', ' ', ' ', ' ', ' ',
		0x00, 0x00, 0x00, 0x07,
	}
	assert.DeepEqual(t, b, want)
}

func TestIndividualTokenRequest_RoundTrip(t *testing.T) {
	b := MarshalIndividualTokenRequest("a-very-long-identifier", 99)
	require.Len(t, b, 18)

	req, err := ParseIndividualTokenRequest(b)
	require.NoError(t, err)
	require.Equal(t, "a-very-long-", req.ID.String())
	require.Equal(t, uint32(99), req.Nonce)
}

func TestDecodeIndividualTokenResponse(t *testing.T) {
	resp := &IndividualTokenResponse{SAS: NewSAS("alice", 7, "issued-token")}
	b := resp.Marshal()
	require.Len(t, b, 82)

	got, err := DecodeIndividualTokenResponse(b)
	require.NoError(t, err)
	require.Equal(t, resp, got)
	require.Equal(t, NewToken("issued-token").String(), got.Token.String())
}

func TestDecodeIndividualTokenResponse_Truncated(t *testing.T) {
	b := (&IndividualTokenResponse{SAS: NewSAS("alice", 7, "tok")}).Marshal()

	for _, n := range []int{0, 1, 2, 4, 18, 81} {
		_, err := DecodeIndividualTokenResponse(b[:n])
		var truncated *TruncatedPacketError
		require.True(t, errors.As(err, &truncated), "length %d: %v", n, err)
		require.Equal(t, n, truncated.Got)
		require.Equal(t, 82, truncated.Want)
	}
}

func TestDecodeIndividualTokenResponse_WrongKind(t *testing.T) {
	b := MarshalIndividualTokenValidation(NewSAS("alice", 7, "tok"))

	_, err := DecodeIndividualTokenResponse(b)
	var mismatch *ProtocolMismatchError
	require.True(t, errors.As(err, &mismatch))
	require.Equal(t, KindIndividualTokenResponse, mismatch.Want)
	require.Equal(t, KindIndividualTokenValidation, mismatch.Got)
}

func TestDecodeIndividualTokenResponse_FourBytesNotError(t *testing.T) {
	_, err := DecodeIndividualTokenResponse([]byte{0x00, 0x09, 0x00, 0x01})
	require.ErrorIs(t, err, ErrProtocolMismatch)
}

func TestDecodeIndividualTokenResponse_ServerError(t *testing.T) {
	_, err := DecodeIndividualTokenResponse(MarshalErrorResponse(ErrCodeIncorrectLength))

	var serverErr *ServerError
	require.True(t, errors.As(err, &serverErr))
	require.Equal(t, ErrCodeIncorrectLength, serverErr.Code)
	require.ErrorIs(t, err, ErrServerReported)
}

func TestMarshalIndividualTokenValidation(t *testing.T) {
	sas := NewSAS("bob", 3, "tokB")
	b := MarshalIndividualTokenValidation(sas)
	require.Len(t, b, 82)
	require.Equal(t, KindIndividualTokenValidation, Tag(b))

	got, err := ParseIndividualTokenValidation(b)
	require.NoError(t, err)
	require.Equal(t, sas, got.SAS)
}

func TestDecodeIndividualTokenStatus(t *testing.T) {
	status := &IndividualTokenStatus{SAS: NewSAS("bob", 3, "tokB"), Status: 1}
	b := status.Marshal()
	require.Len(t, b, 83)

	got, err := DecodeIndividualTokenStatus(b)
	require.NoError(t, err)
	require.Equal(t, byte(1), got.Status)
	require.Equal(t, status.SAS, got.SAS)
}

func TestDecodeIndividualTokenStatus_Idempotent(t *testing.T) {
	b := (&IndividualTokenStatus{SAS: NewSAS("bob", 3, "tokB"), Status: 0}).Marshal()

	first, err := DecodeIndividualTokenStatus(b)
	require.NoError(t, err)
	second, err := DecodeIndividualTokenStatus(b)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestDecodeIndividualTokenStatus_TrailingBytesIgnored(t *testing.T) {
	b := (&IndividualTokenStatus{SAS: NewSAS("bob", 3, "tokB"), Status: 1}).Marshal()
	b = append(b, 0xff, 0xff)

	got, err := DecodeIndividualTokenStatus(b)
	require.NoError(t, err)
	require.Equal(t, byte(1), got.Status)
}

func TestDecodeIndividualTokenStatus_Truncated(t *testing.T) {
	b := (&IndividualTokenStatus{SAS: NewSAS("bob", 3, "tokB"), Status: 1}).Marshal()
	_, err := DecodeIndividualTokenStatus(b[:82])
	require.ErrorIs(t, err, ErrTruncatedPacket)
}

func TestParseRequest(t *testing.T) {
	gas, err := ParseGAS("alice:1:tokA+groupToken")
	require.NoError(t, err)
	groupReq, err := MarshalGroupTokenRequest(gas.Entries)
	require.NoError(t, err)
	groupVal, err := MarshalGroupTokenValidation(gas)
	require.NoError(t, err)

	tests := []struct {
		name string
		buf  []byte
		kind Kind
	}{
		{"itr", MarshalIndividualTokenRequest("alice", 1), KindIndividualTokenRequest},
		{"itv", MarshalIndividualTokenValidation(gas.Entries[0]), KindIndividualTokenValidation},
		{"gtr", groupReq, KindGroupTokenRequest},
		{"gtv", groupVal, KindGroupTokenValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParseRequest(tt.buf)
			require.NoError(t, err)
			require.Equal(t, tt.kind, p.Kind())
			require.Equal(t, tt.buf, p.Marshal())
		})
	}
}

func TestParseRequest_RejectsResponses(t *testing.T) {
	b := (&IndividualTokenResponse{SAS: NewSAS("alice", 1, "t")}).Marshal()
	_, err := ParseRequest(b)
	require.ErrorIs(t, err, ErrProtocolMismatch)

	_, err = ParseRequest([]byte{0x01})
	require.ErrorIs(t, err, ErrTruncatedPacket)
}
