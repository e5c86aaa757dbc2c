package service

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"
	"slices"

	"github.com/allisson/envelope/internal/message/codec"
	"github.com/allisson/envelope/internal/message/domain"
)

// DefaultProviderID is the provider id written to encrypted data keys produced by a
// KeeperKeyring when none is configured.
const DefaultProviderID = "gocloud-kms"

// KeeperKeyring wraps data keys with a gocloud.dev/secrets keeper.
//
// The keeper encrypts SHA-256(serialized encryption context) || dataKey, which binds
// each encrypted data key to the context it was produced under. Its encrypted data keys
// carry ProviderID and the key name as ProviderInfo; only those are tried on unwrap.
type KeeperKeyring struct {
	keeper     Keeper
	providerID string
	keyName    string
}

// NewKeeperKeyring creates a keyring around keeper. An empty providerID selects
// DefaultProviderID. keyName identifies the wrapping key and must not be empty.
func NewKeeperKeyring(keeper Keeper, providerID, keyName string) (*KeeperKeyring, error) {
	if keeper == nil {
		return nil, fmt.Errorf("%w: keeper is required", ErrInvalidKeyring)
	}
	if keyName == "" {
		return nil, fmt.Errorf("%w: key name is required", ErrInvalidKeyring)
	}
	if providerID == "" {
		providerID = DefaultProviderID
	}
	return &KeeperKeyring{keeper: keeper, providerID: providerID, keyName: keyName}, nil
}

// WrapDataKey implements Keyring.
func (k *KeeperKeyring) WrapDataKey(
	ctx context.Context,
	_ domain.AlgorithmSuite,
	dataKey []byte,
	encryptionContext domain.EncryptionContext,
) ([]domain.EncryptedDataKey, error) {
	digest, err := contextDigest(encryptionContext)
	if err != nil {
		return nil, err
	}

	payload := make([]byte, 0, len(digest)+len(dataKey))
	payload = append(payload, digest...)
	payload = append(payload, dataKey...)
	defer domain.Zero(payload)

	ciphertext, err := k.keeper.Encrypt(ctx, payload)
	if err != nil {
		return nil, errors.Join(ErrWrapFailed, err)
	}

	return []domain.EncryptedDataKey{{
		ProviderID:   k.providerID,
		ProviderInfo: k.keyName,
		Ciphertext:   ciphertext,
	}}, nil
}

// UnwrapDataKey implements Keyring. A repeated encrypted data key is sent to the
// keeper only once.
func (k *KeeperKeyring) UnwrapDataKey(
	ctx context.Context,
	suite domain.AlgorithmSuite,
	edks []domain.EncryptedDataKey,
	encryptionContext domain.EncryptionContext,
) ([]byte, error) {
	digest, err := contextDigest(encryptionContext)
	if err != nil {
		return nil, err
	}

	var errs []error
	for i, edk := range edks {
		if edk.ProviderID != k.providerID || edk.ProviderInfo != k.keyName {
			continue
		}
		if slices.ContainsFunc(edks[:i], edk.Equal) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		payload, err := k.keeper.Decrypt(ctx, edk.Ciphertext)
		if err != nil {
			errs = append(errs, fmt.Errorf("encrypted data key %d: %w", i, err))
			continue
		}
		dataKey, err := openPayload(payload, digest, suite)
		domain.Zero(payload)
		if err != nil {
			errs = append(errs, fmt.Errorf("encrypted data key %d: %w", i, err))
			continue
		}
		return dataKey, nil
	}

	return nil, errors.Join(append([]error{ErrNoDecryptableKey}, errs...)...)
}

// Close releases the keeper.
func (k *KeeperKeyring) Close() error {
	return k.keeper.Close()
}

func contextDigest(encryptionContext domain.EncryptionContext) ([]byte, error) {
	serialized, err := codec.SerializeEncryptionContext(encryptionContext)
	if err != nil {
		return nil, err
	}
	sum := sha256.Sum256(serialized)
	return sum[:], nil
}

func openPayload(payload, digest []byte, suite domain.AlgorithmSuite) ([]byte, error) {
	if len(payload) != len(digest)+suite.EncryptionKeyLength {
		return nil, fmt.Errorf("unwrapped %d bytes, want %d", len(payload), len(digest)+suite.EncryptionKeyLength)
	}
	if subtle.ConstantTimeCompare(payload[:len(digest)], digest) != 1 {
		return nil, errors.New("encryption context does not match")
	}
	dataKey := make([]byte, suite.EncryptionKeyLength)
	copy(dataKey, payload[len(digest):])
	return dataKey, nil
}
