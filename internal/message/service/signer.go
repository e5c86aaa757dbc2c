package service

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"hash"
	"math/big"

	"github.com/allisson/envelope/internal/message/codec"
	"github.com/allisson/envelope/internal/message/domain"
)

// maxSignAttempts bounds the re-sign loop. A fixed-length signature is found on the
// first or second attempt for all but a vanishing fraction of messages.
const maxSignAttempts = 64

// Signer accumulates every byte of a message and produces the DER footer signature.
type Signer struct {
	suite domain.AlgorithmSuite
	key   *ecdsa.PrivateKey
	hash  hash.Hash
}

// NewSigner returns a signer for a signed suite.
func NewSigner(suite domain.AlgorithmSuite, key *ecdsa.PrivateKey) (*Signer, error) {
	if !suite.Signed() {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnexpectedSigningKey, suite)
	}
	if key == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrMissingSigningKey, suite)
	}
	if key.Curve != suite.Curve {
		return nil, fmt.Errorf("%w: signing key curve does not match %s", domain.ErrInvalidSigningKey, suite)
	}
	return &Signer{suite: suite, key: key, hash: suite.SignatureHash.New()}, nil
}

// Write adds message bytes to the signed digest. It never fails.
func (s *Signer) Write(p []byte) (int, error) {
	return s.hash.Write(p)
}

// Sign returns a DER signature of exactly the suite's signature length. The signature
// is taken in its fixed-length r|s form and converted to DER. When that encoding has the
// wrong length, s is replaced by N-s, which is an equally valid signature; if that does
// not help either, a fresh signature is drawn.
func (s *Signer) Sign() ([]byte, error) {
	digest := s.hash.Sum(nil)
	n := s.suite.Curve.Params().N
	size := s.suite.SignatureComponentLength()

	for range maxSignAttempts {
		r, sv, err := ecdsa.Sign(rand.Reader, s.key, digest)
		if err != nil {
			return nil, fmt.Errorf("failed to sign message: %w", err)
		}
		for _, candidate := range []*big.Int{sv, new(big.Int).Sub(n, sv)} {
			raw := make([]byte, 2*size)
			r.FillBytes(raw[:size])
			candidate.FillBytes(raw[size:])
			der, err := codec.SignatureRawToDER(raw)
			if err != nil {
				return nil, err
			}
			if len(der) == s.suite.SignatureLength {
				return der, nil
			}
		}
	}
	return nil, fmt.Errorf("%w: no signature of %d bytes after %d attempts",
		domain.ErrInvalidFooter, s.suite.SignatureLength, maxSignAttempts)
}

// Verifier accumulates every byte of a message before the footer and checks the
// signature.
type Verifier struct {
	suite domain.AlgorithmSuite
	key   *ecdsa.PublicKey
	hash  hash.Hash
}

// NewVerifier returns a verifier for a signed suite.
func NewVerifier(suite domain.AlgorithmSuite, key *ecdsa.PublicKey) (*Verifier, error) {
	if !suite.Signed() {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnexpectedVerificationKey, suite)
	}
	if key == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrMissingVerificationKey, suite)
	}
	return &Verifier{suite: suite, key: key, hash: suite.SignatureHash.New()}, nil
}

// Write adds message bytes to the verified digest. It never fails.
func (v *Verifier) Write(p []byte) (int, error) {
	return v.hash.Write(p)
}

// Verify checks a DER signature over everything written so far.
func (v *Verifier) Verify(der []byte) error {
	size := v.suite.SignatureComponentLength()
	raw, err := codec.SignatureDERToRaw(der, size)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidSignature, err)
	}
	r := new(big.Int).SetBytes(raw[:size])
	s := new(big.Int).SetBytes(raw[size:])
	if !ecdsa.Verify(v.key, v.hash.Sum(nil), r, s) {
		return domain.ErrInvalidSignature
	}
	return nil
}

// GenerateSigningKey creates a fresh key pair on the suite's curve.
func GenerateSigningKey(suite domain.AlgorithmSuite) (*ecdsa.PrivateKey, error) {
	if !suite.Signed() {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnexpectedSigningKey, suite)
	}
	key, err := ecdsa.GenerateKey(suite.Curve, rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate signing key: %w", err)
	}
	return key, nil
}

// EncodePublicKey returns the base64 compressed point stored in the encryption context.
func EncodePublicKey(key *ecdsa.PublicKey) string {
	return base64.StdEncoding.EncodeToString(elliptic.MarshalCompressed(key.Curve, key.X, key.Y))
}

// DecodePublicKey parses the base64 compressed point from the encryption context.
func DecodePublicKey(suite domain.AlgorithmSuite, encoded string) (*ecdsa.PublicKey, error) {
	if !suite.Signed() {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnexpectedVerificationKey, suite)
	}
	point, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidVerificationKey, err)
	}
	x, y := elliptic.UnmarshalCompressed(suite.Curve, point)
	if x == nil {
		return nil, fmt.Errorf("%w: not a point on %s", domain.ErrInvalidVerificationKey, suite.Curve.Params().Name)
	}
	return &ecdsa.PublicKey{Curve: suite.Curve, X: x, Y: y}, nil
}
