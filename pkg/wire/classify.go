package wire

// expect checks that b holds a packet of the given kind and, for group
// kinds, n SAS records. Error packets become *ServerError.
func expect(b []byte, want Kind, n int) error {
	if Classify(b) == KindErrorResponse && want != KindErrorResponse {
		resp, err := ParseErrorResponse(b)
		if err != nil {
			return err
		}
		return resp.Err()
	}

	size := want.Size(n)
	if len(b) < TagSize {
		return &TruncatedPacketError{Kind: want, Got: len(b), Want: size}
	}
	if got := Tag(b); got != want {
		return &ProtocolMismatchError{Want: want, Got: got, Len: len(b)}
	}
	if len(b) < size {
		return &TruncatedPacketError{Kind: want, Got: len(b), Want: size}
	}
	return nil
}
