package service

import (
	"context"
	"crypto/ecdsa"
	"crypto/rand"
	"fmt"

	"github.com/allisson/envelope/internal/message/domain"
	messageService "github.com/allisson/envelope/internal/message/service"
)

// DefaultManager is the standard materials manager: it generates one data key per
// message and delegates wrapping to a Keyring.
type DefaultManager struct {
	keyring Keyring
}

// NewDefaultManager creates a DefaultManager backed by keyring.
func NewDefaultManager(keyring Keyring) (*DefaultManager, error) {
	if keyring == nil {
		return nil, fmt.Errorf("%w: keyring is required", ErrInvalidKeyring)
	}
	return &DefaultManager{keyring: keyring}, nil
}

// GetEncryptionMaterials selects the requested suite, or the policy default when none
// was requested, and returns a fresh data key with its encrypted data keys. For signing
// suites it also generates the signing key and adds the encoded public key to the
// returned encryption context.
func (m *DefaultManager) GetEncryptionMaterials(
	ctx context.Context,
	req domain.EncryptionMaterialsRequest,
) (*domain.EncryptionMaterials, error) {
	if req.EncryptionContext.HasReservedKey() {
		return nil, fmt.Errorf("%w: %q", domain.ErrReservedContextKey, domain.PublicKeyContextKey)
	}

	suiteID := req.RequestedSuite
	if suiteID == 0 {
		suiteID = req.CommitmentPolicy.DefaultSuite()
	}
	suite, err := domain.LookupSuite(suiteID)
	if err != nil {
		return nil, err
	}
	if err := req.CommitmentPolicy.CheckEncrypt(suite); err != nil {
		return nil, err
	}

	encryptionContext := req.EncryptionContext.Clone()

	var signingKey *ecdsa.PrivateKey
	if suite.Signed() {
		signingKey, err = messageService.GenerateSigningKey(suite)
		if err != nil {
			return nil, err
		}
		encryptionContext[domain.PublicKeyContextKey] = messageService.EncodePublicKey(&signingKey.PublicKey)
	}

	dataKey := make([]byte, suite.EncryptionKeyLength)
	if _, err := rand.Read(dataKey); err != nil {
		return nil, fmt.Errorf("failed to generate data key: %w", err)
	}

	edks, err := m.keyring.WrapDataKey(ctx, suite, dataKey, encryptionContext)
	if err != nil {
		domain.Zero(dataKey)
		return nil, err
	}

	return &domain.EncryptionMaterials{
		Suite:             suite,
		EncryptionContext: encryptionContext,
		DataKey:           dataKey,
		EncryptedDataKeys: edks,
		SigningKey:        signingKey,
	}, nil
}

// DecryptMaterials rebuilds the verification key from the encryption context and asks
// the keyring to unwrap one of the encrypted data keys.
func (m *DefaultManager) DecryptMaterials(
	ctx context.Context,
	req domain.DecryptionMaterialsRequest,
) (*domain.DecryptionMaterials, error) {
	if err := req.CommitmentPolicy.CheckDecrypt(req.Suite); err != nil {
		return nil, err
	}

	verificationKey, err := verificationKeyFromContext(req.Suite, req.EncryptionContext)
	if err != nil {
		return nil, err
	}

	dataKey, err := m.keyring.UnwrapDataKey(ctx, req.Suite, req.EncryptedDataKeys, req.EncryptionContext)
	if err != nil {
		return nil, err
	}

	return &domain.DecryptionMaterials{
		Suite:             req.Suite,
		EncryptionContext: req.EncryptionContext.Clone(),
		DataKey:           dataKey,
		VerificationKey:   verificationKey,
	}, nil
}

func verificationKeyFromContext(
	suite domain.AlgorithmSuite,
	encryptionContext domain.EncryptionContext,
) (*ecdsa.PublicKey, error) {
	encoded, ok := encryptionContext[domain.PublicKeyContextKey]
	if !suite.Signed() {
		if ok {
			return nil, fmt.Errorf("%w: %s", domain.ErrUnexpectedVerificationKey, suite)
		}
		return nil, nil
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrMissingVerificationKey, suite)
	}
	return messageService.DecodePublicKey(suite, encoded)
}
