package wire

import (
	"encoding/binary"
)

// IndividualTokenRequest asks the server to issue a token for an
// identifier and nonce.
type IndividualTokenRequest struct {
	ID    ID
	Nonce uint32
}

func (p *IndividualTokenRequest) Kind() Kind { return KindIndividualTokenRequest }
func (p *IndividualTokenRequest) Size() int  { return p.Kind().Size(0) }

func (p *IndividualTokenRequest) Marshal() []byte {
	b := make([]byte, 0, p.Size())
	b = binary.BigEndian.AppendUint16(b, uint16(p.Kind()))
	b = append(b, p.ID[:]...)
	return binary.BigEndian.AppendUint32(b, p.Nonce)
}

// MarshalIndividualTokenRequest encodes an 18-byte request. The identifier
// is truncated or padded to 12 bytes.
func MarshalIndividualTokenRequest(id string, nonce uint32) []byte {
	p := &IndividualTokenRequest{ID: NewID(id), Nonce: nonce}
	return p.Marshal()
}

// ParseIndividualTokenRequest decodes a request. Servers use it; clients
// use it to inspect what they are about to send.
func ParseIndividualTokenRequest(b []byte) (*IndividualTokenRequest, error) {
	if err := expect(b, KindIndividualTokenRequest, 0); err != nil {
		return nil, err
	}
	p := &IndividualTokenRequest{}
	copy(p.ID[:], b[TagSize:TagSize+IDSize])
	p.Nonce = binary.BigEndian.Uint32(b[TagSize+IDSize:])
	return p, nil
}

// IndividualTokenResponse carries the token issued for a request.
type IndividualTokenResponse struct {
	SAS
}

func (p *IndividualTokenResponse) Kind() Kind { return KindIndividualTokenResponse }
func (p *IndividualTokenResponse) Size() int  { return p.Kind().Size(0) }

func (p *IndividualTokenResponse) Marshal() []byte {
	return marshalSASPacket(p.Kind(), p.SAS)
}

// DecodeIndividualTokenResponse decodes the reply to an individual token
// request. An error packet is returned as *ServerError.
func DecodeIndividualTokenResponse(b []byte) (*IndividualTokenResponse, error) {
	if err := expect(b, KindIndividualTokenResponse, 0); err != nil {
		return nil, err
	}
	sas, err := ParseSASRecord(b[TagSize:])
	if err != nil {
		return nil, err
	}
	return &IndividualTokenResponse{SAS: sas}, nil
}

// IndividualTokenValidation asks the server whether a SAS is valid.
type IndividualTokenValidation struct {
	SAS
}

func (p *IndividualTokenValidation) Kind() Kind { return KindIndividualTokenValidation }
func (p *IndividualTokenValidation) Size() int  { return p.Kind().Size(0) }

func (p *IndividualTokenValidation) Marshal() []byte {
	return marshalSASPacket(p.Kind(), p.SAS)
}

// MarshalIndividualTokenValidation encodes an 82-byte validation request.
func MarshalIndividualTokenValidation(sas SAS) []byte {
	p := &IndividualTokenValidation{SAS: sas}
	return p.Marshal()
}

// ParseIndividualTokenValidation decodes a validation request.
func ParseIndividualTokenValidation(b []byte) (*IndividualTokenValidation, error) {
	if err := expect(b, KindIndividualTokenValidation, 0); err != nil {
		return nil, err
	}
	sas, err := ParseSASRecord(b[TagSize:])
	if err != nil {
		return nil, err
	}
	return &IndividualTokenValidation{SAS: sas}, nil
}

// IndividualTokenStatus is the verdict on a validated SAS. The meaning of
// Status is defined by the server.
type IndividualTokenStatus struct {
	SAS
	Status byte
}

func (p *IndividualTokenStatus) Kind() Kind { return KindIndividualTokenStatus }
func (p *IndividualTokenStatus) Size() int  { return p.Kind().Size(0) }

func (p *IndividualTokenStatus) Marshal() []byte {
	return append(marshalSASPacket(p.Kind(), p.SAS), p.Status)
}

// DecodeIndividualTokenStatus decodes the reply to an individual token
// validation. An error packet is returned as *ServerError.
func DecodeIndividualTokenStatus(b []byte) (*IndividualTokenStatus, error) {
	if err := expect(b, KindIndividualTokenStatus, 0); err != nil {
		return nil, err
	}
	sas, err := ParseSASRecord(b[TagSize:])
	if err != nil {
		return nil, err
	}
	return &IndividualTokenStatus{SAS: sas, Status: b[TagSize+SASSize]}, nil
}

func marshalSASPacket(kind Kind, sas SAS) []byte {
	b := make([]byte, 0, kind.Size(0)+StatusSize)
	b = binary.BigEndian.AppendUint16(b, uint16(kind))
	return sas.appendTo(b)
}
