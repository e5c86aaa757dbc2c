package codec

import (
	"fmt"
	"math"
	"math/big"

	"golang.org/x/crypto/cryptobyte"
	"golang.org/x/crypto/cryptobyte/asn1"

	"github.com/allisson/envelope/internal/message/domain"
)

// SerializeFooter writes the length-prefixed DER signature that ends a signed message.
func SerializeFooter(der []byte) ([]byte, error) {
	if len(der) > math.MaxUint16 {
		return nil, fmt.Errorf("%w: signature of %d bytes", domain.ErrInvalidFooter, len(der))
	}
	var b cryptobyte.Builder
	addUint16Bytes(&b, der)
	return b.BytesOrPanic(), nil
}

// ParseFooter decodes the footer at buf[off:] and returns the DER signature with the
// number of bytes consumed.
func ParseFooter(buf []byte, off int) ([]byte, int, error) {
	if off < 0 || off > len(buf) {
		return nil, 0, domain.ErrInsufficientData
	}
	s := cryptobyte.String(buf[off:])
	var der cryptobyte.String
	if !s.ReadUint16LengthPrefixed(&der) {
		return nil, 0, domain.ErrInsufficientData
	}
	return cloneBytes(der), 2 + len(der), nil
}

// SignatureDERToRaw converts an ASN.1 ECDSA-Sig-Value into r|s with each component
// left-padded to size bytes.
func SignatureDERToRaw(der []byte, size int) ([]byte, error) {
	var r, s big.Int
	input := cryptobyte.String(der)
	var seq cryptobyte.String
	if !input.ReadASN1(&seq, asn1.SEQUENCE) || !input.Empty() {
		return nil, fmt.Errorf("%w: malformed signature sequence", domain.ErrInvalidFooter)
	}
	if !seq.ReadASN1Integer(&r) || !seq.ReadASN1Integer(&s) || !seq.Empty() {
		return nil, fmt.Errorf("%w: malformed signature integers", domain.ErrInvalidFooter)
	}
	if r.Sign() <= 0 || s.Sign() <= 0 || len(r.Bytes()) > size || len(s.Bytes()) > size {
		return nil, fmt.Errorf("%w: signature integers out of range", domain.ErrInvalidFooter)
	}

	raw := make([]byte, 2*size)
	r.FillBytes(raw[:size])
	s.FillBytes(raw[size:])
	return raw, nil
}

// SignatureRawToDER converts r|s of equal halves into an ASN.1 ECDSA-Sig-Value.
func SignatureRawToDER(raw []byte) ([]byte, error) {
	if len(raw) == 0 || len(raw)%2 != 0 {
		return nil, fmt.Errorf("%w: raw signature of %d bytes", domain.ErrInvalidFooter, len(raw))
	}
	half := len(raw) / 2
	r := new(big.Int).SetBytes(raw[:half])
	s := new(big.Int).SetBytes(raw[half:])
	return MarshalSignature(r, s)
}

// MarshalSignature encodes r and s as an ASN.1 ECDSA-Sig-Value.
func MarshalSignature(r, s *big.Int) ([]byte, error) {
	var b cryptobyte.Builder
	b.AddASN1(asn1.SEQUENCE, func(child *cryptobyte.Builder) {
		child.AddASN1BigInt(r)
		child.AddASN1BigInt(s)
	})
	der, err := b.Bytes()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidFooter, err)
	}
	return der, nil
}
