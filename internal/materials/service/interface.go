// Package service provides the materials managers and keyrings that supply data keys
// to the message engine.
//
// A DefaultManager generates a fresh data key per message, hands it to a Keyring to be
// wrapped into encrypted data keys, and for signing suites generates the ECDSA key pair
// whose public half travels in the encryption context. KeeperKeyring wraps data keys
// with any gocloud.dev/secrets keeper (AWS KMS, GCP KMS, Azure Key Vault, HashiCorp
// Vault or a local base64key:// key). MultiKeyring combines several keyrings so one
// message can be decrypted by any of them.
package service

import (
	"context"

	"github.com/allisson/envelope/internal/message/domain"
)

// Keyring wraps and unwraps data keys.
type Keyring interface {
	// WrapDataKey encrypts dataKey, returning one encrypted data key per wrapping key.
	WrapDataKey(
		ctx context.Context,
		suite domain.AlgorithmSuite,
		dataKey []byte,
		encryptionContext domain.EncryptionContext,
	) ([]domain.EncryptedDataKey, error)

	// UnwrapDataKey returns the first of edks, in order, that this keyring can decrypt.
	// Returns ErrNoDecryptableKey when none can be decrypted.
	UnwrapDataKey(
		ctx context.Context,
		suite domain.AlgorithmSuite,
		edks []domain.EncryptedDataKey,
		encryptionContext domain.EncryptionContext,
	) ([]byte, error)
}

// Keeper is the subset of *secrets.Keeper used by KeeperKeyring.
type Keeper interface {
	Encrypt(ctx context.Context, plaintext []byte) ([]byte, error)
	Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error)
	Close() error
}
