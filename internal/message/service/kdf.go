package service

import (
	"crypto"
	"crypto/subtle"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"

	"github.com/allisson/envelope/internal/message/domain"
)

const (
	deriveKeyLabel = "DERIVEKEY"
	commitKeyLabel = "COMMITKEY"
)

// HKDFKeyDeriver derives frame keys and commitment values with HKDF.
type HKDFKeyDeriver struct{}

// NewKeyDeriver returns the HKDF key deriver.
func NewKeyDeriver() *HKDFKeyDeriver {
	return &HKDFKeyDeriver{}
}

// DeriveKey implements KeyDeriver. See DeriveKey.
func (HKDFKeyDeriver) DeriveKey(
	dataKey []byte,
	suite domain.AlgorithmSuite,
	messageID []byte,
) (*domain.DerivedKeyMaterial, error) {
	return DeriveKey(dataKey, suite, messageID)
}

// DeriveKey produces the frame key for one message.
//
// Suites without a KDF use a copy of the data key. HKDF suites expand the data key with
// info = suiteID | messageID and no salt. Committing suites extract with the message id
// as salt and expand twice: once for the frame key (info = suiteID | "DERIVEKEY") and
// once for the 32-byte commitment value (info = "COMMITKEY").
func DeriveKey(dataKey []byte, suite domain.AlgorithmSuite, messageID []byte) (*domain.DerivedKeyMaterial, error) {
	if len(dataKey) != suite.EncryptionKeyLength {
		return nil, fmt.Errorf(
			"%w: %s needs %d bytes, got %d", domain.ErrInvalidDataKey, suite, suite.EncryptionKeyLength, len(dataKey),
		)
	}
	suiteID := []byte{byte(suite.ID >> 8), byte(suite.ID)}

	material := &domain.DerivedKeyMaterial{}
	switch {
	case suite.KDF == domain.KDFNone:
		material.Key = append([]byte(nil), dataKey...)

	case suite.Committing():
		prk := hkdf.Extract(suite.KDFHash.New, dataKey, messageID)
		defer domain.Zero(prk)

		key, err := expand(suite.KDFHash, prk, append(suiteID, deriveKeyLabel...), suite.EncryptionKeyLength)
		if err != nil {
			return nil, err
		}
		commitment, err := expand(suite.KDFHash, prk, []byte(commitKeyLabel), suite.CommitmentKeyLength)
		if err != nil {
			domain.Zero(key)
			return nil, err
		}
		material.Key = key
		material.Commitment = commitment

	default:
		info := append(suiteID, messageID...)
		key := make([]byte, suite.EncryptionKeyLength)
		if _, err := io.ReadFull(hkdf.New(suite.KDFHash.New, dataKey, nil, info), key); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrDerivedKeyLength, err)
		}
		material.Key = key
	}

	if len(material.Key) != suite.EncryptionKeyLength {
		material.Zero()
		return nil, domain.ErrDerivedKeyLength
	}
	return material, nil
}

// VerifyCommitment compares the derived commitment with the value carried in the
// header in constant time.
func VerifyCommitment(material *domain.DerivedKeyMaterial, suiteData []byte) error {
	if material == nil || len(material.Commitment) == 0 ||
		subtle.ConstantTimeCompare(material.Commitment, suiteData) != 1 {
		return domain.ErrCommitmentMismatch
	}
	return nil
}

func expand(hash crypto.Hash, prk, info []byte, length int) ([]byte, error) {
	out := make([]byte, length)
	if _, err := io.ReadFull(hkdf.Expand(hash.New, prk, info), out); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDerivedKeyLength, err)
	}
	return out, nil
}
