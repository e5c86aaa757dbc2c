// Package service provides the cryptographic primitives of the message engine:
// per-message key derivation, the AES-GCM frame cipher and ECDSA message signatures.
package service

import (
	"github.com/allisson/envelope/internal/message/domain"
)

// FrameCipher encrypts and decrypts frame bodies under one derived key. The IV is always
// supplied by the caller because the message format derives it from the frame sequence
// number.
type FrameCipher interface {
	// Seal encrypts plaintext and returns the ciphertext and the detached tag.
	Seal(iv, plaintext, aad []byte) (ciphertext, tag []byte, err error)

	// Open verifies the tag and returns the plaintext.
	Open(iv, ciphertext, tag, aad []byte) ([]byte, error)
}

// KeyDeriver turns a data key into the per-message key material.
type KeyDeriver interface {
	DeriveKey(dataKey []byte, suite domain.AlgorithmSuite, messageID []byte) (*domain.DerivedKeyMaterial, error)
}
