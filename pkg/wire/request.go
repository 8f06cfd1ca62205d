package wire

// ParseRequest decodes any client-to-server packet by its tag. Buffers
// tagged with a response kind or an unknown kind fail with
// *ProtocolMismatchError.
func ParseRequest(b []byte) (Packet, error) {
	switch Tag(b) {
	case KindIndividualTokenRequest:
		p, err := ParseIndividualTokenRequest(b)
		if err != nil {
			return nil, err
		}
		return p, nil
	case KindIndividualTokenValidation:
		p, err := ParseIndividualTokenValidation(b)
		if err != nil {
			return nil, err
		}
		return p, nil
	case KindGroupTokenRequest:
		p, err := ParseGroupTokenRequest(b)
		if err != nil {
			return nil, err
		}
		return p, nil
	case KindGroupTokenValidation:
		p, err := ParseGroupTokenValidation(b)
		if err != nil {
			return nil, err
		}
		return p, nil
	}

	if len(b) < TagSize {
		return nil, &TruncatedPacketError{Got: len(b), Want: TagSize}
	}
	return nil, &ProtocolMismatchError{Got: Tag(b), Len: len(b), Reason: "not a request"}
}
