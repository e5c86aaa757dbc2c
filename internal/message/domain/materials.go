package domain

import (
	"crypto/ecdsa"
	"fmt"
)

// EncryptionMaterialsRequest is what the encrypt pipeline asks a materials manager for.
type EncryptionMaterialsRequest struct {
	// RequestedSuite is zero when the caller has no preference.
	RequestedSuite    SuiteID
	EncryptionContext EncryptionContext
	PlaintextLength   int64
	CommitmentPolicy  CommitmentPolicy
}

// EncryptionMaterials is everything needed to produce one message.
type EncryptionMaterials struct {
	Suite             AlgorithmSuite
	EncryptionContext EncryptionContext
	DataKey           []byte
	EncryptedDataKeys []EncryptedDataKey
	SigningKey        *ecdsa.PrivateKey // set only for signed suites
}

// Zero wipes the plaintext data key.
func (m *EncryptionMaterials) Zero() {
	if m == nil {
		return
	}
	Zero(m.DataKey)
}

// Validate checks the materials against the suite they name.
func (m *EncryptionMaterials) Validate() error {
	if err := validateDataKey(m.Suite, m.DataKey); err != nil {
		return err
	}
	if m.Suite.Signed() && m.SigningKey == nil {
		return fmt.Errorf("%w: %s", ErrMissingSigningKey, m.Suite)
	}
	if !m.Suite.Signed() && m.SigningKey != nil {
		return fmt.Errorf("%w: %s", ErrUnexpectedSigningKey, m.Suite)
	}
	if m.Suite.Signed() && m.SigningKey.Curve != m.Suite.Curve {
		return fmt.Errorf("%w: signing key curve does not match %s", ErrInvalidSigningKey, m.Suite)
	}
	return m.EncryptionContext.Validate()
}

// DecryptionMaterialsRequest is what the decrypt pipeline asks a materials manager for,
// taken verbatim from the parsed header.
type DecryptionMaterialsRequest struct {
	Suite             AlgorithmSuite
	EncryptionContext EncryptionContext
	EncryptedDataKeys []EncryptedDataKey
	CommitmentPolicy  CommitmentPolicy
}

// DecryptionMaterials holds the unwrapped data key for one message.
type DecryptionMaterials struct {
	Suite             AlgorithmSuite
	EncryptionContext EncryptionContext
	DataKey           []byte
	VerificationKey   *ecdsa.PublicKey // set only for signed suites
}

// Zero wipes the plaintext data key.
func (m *DecryptionMaterials) Zero() {
	if m == nil {
		return
	}
	Zero(m.DataKey)
}

// Validate checks the materials against the suite they name.
func (m *DecryptionMaterials) Validate() error {
	if err := validateDataKey(m.Suite, m.DataKey); err != nil {
		return err
	}
	if m.Suite.Signed() && m.VerificationKey == nil {
		return fmt.Errorf("%w: %s", ErrMissingVerificationKey, m.Suite)
	}
	if !m.Suite.Signed() && m.VerificationKey != nil {
		return fmt.Errorf("%w: %s", ErrUnexpectedVerificationKey, m.Suite)
	}
	return nil
}

func validateDataKey(suite AlgorithmSuite, key []byte) error {
	if len(key) != suite.EncryptionKeyLength {
		return fmt.Errorf(
			"%w: %s needs %d bytes, got %d",
			ErrInvalidDataKey, suite, suite.EncryptionKeyLength, len(key),
		)
	}
	return nil
}
