package service

import (
	"crypto/aes"
	"crypto/cipher"
	"errors"
	"fmt"

	"github.com/allisson/envelope/internal/message/domain"
)

// ErrOpenFailed is returned by Open when the tag does not verify. Callers translate it
// into the header or frame authentication error.
var ErrOpenFailed = errors.New("failed to decrypt")

// AESGCMCipher implements FrameCipher with AES-GCM using 12-byte IVs and 16-byte tags.
//
// The key length selects AES-128, AES-192 or AES-256. The cipher is stateless and safe
// for concurrent use, but the caller is responsible for never reusing an IV under one
// key, which the message format guarantees through per-message derived keys and
// sequence-number IVs.
type AESGCMCipher struct {
	aead cipher.AEAD
}

// NewAESGCM creates a cipher for a 16, 24 or 32 byte key.
func NewAESGCM(key []byte) (*AESGCMCipher, error) {
	switch len(key) {
	case 16, 24, 32:
	default:
		return nil, fmt.Errorf("%w: AES-GCM key of %d bytes", domain.ErrInvalidDataKey, len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return &AESGCMCipher{aead: aead}, nil
}

// NewFrameCipher creates the frame cipher for a suite after checking the key length.
func NewFrameCipher(suite domain.AlgorithmSuite, key []byte) (FrameCipher, error) {
	if len(key) != suite.EncryptionKeyLength {
		return nil, fmt.Errorf(
			"%w: %s needs %d bytes, got %d", domain.ErrInvalidDataKey, suite, suite.EncryptionKeyLength, len(key),
		)
	}
	return NewAESGCM(key)
}

// Seal encrypts plaintext under iv and returns the ciphertext without the tag, followed
// by the tag.
func (a *AESGCMCipher) Seal(iv, plaintext, aad []byte) (ciphertext, tag []byte, err error) {
	if len(iv) != a.aead.NonceSize() {
		return nil, nil, fmt.Errorf("invalid iv length %d", len(iv))
	}
	sealed := a.aead.Seal(nil, iv, plaintext, aad)
	split := len(sealed) - a.aead.Overhead()
	return sealed[:split], sealed[split:], nil
}

// Open verifies tag and decrypts ciphertext.
func (a *AESGCMCipher) Open(iv, ciphertext, tag, aad []byte) ([]byte, error) {
	if len(iv) != a.aead.NonceSize() || len(tag) != a.aead.Overhead() {
		return nil, ErrOpenFailed
	}
	sealed := make([]byte, 0, len(ciphertext)+len(tag))
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, tag...)

	plaintext, err := a.aead.Open(nil, iv, sealed, aad)
	if err != nil {
		return nil, ErrOpenFailed
	}
	return plaintext, nil
}
