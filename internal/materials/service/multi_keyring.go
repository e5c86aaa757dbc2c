package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/allisson/envelope/internal/message/domain"
)

// MultiKeyring wraps every data key with a generator keyring and all children, so a
// message can be decrypted by any one of them.
type MultiKeyring struct {
	generator Keyring
	children  []Keyring
}

// NewMultiKeyring creates a keyring from a generator and optional children.
func NewMultiKeyring(generator Keyring, children ...Keyring) (*MultiKeyring, error) {
	if generator == nil {
		return nil, fmt.Errorf("%w: generator keyring is required", ErrInvalidKeyring)
	}
	for i, child := range children {
		if child == nil {
			return nil, fmt.Errorf("%w: child keyring %d is nil", ErrInvalidKeyring, i)
		}
	}
	return &MultiKeyring{generator: generator, children: children}, nil
}

// WrapDataKey implements Keyring. Encrypted data keys are returned generator first,
// then children in order. Any failing keyring fails the whole call.
func (m *MultiKeyring) WrapDataKey(
	ctx context.Context,
	suite domain.AlgorithmSuite,
	dataKey []byte,
	encryptionContext domain.EncryptionContext,
) ([]domain.EncryptedDataKey, error) {
	var edks []domain.EncryptedDataKey
	for _, keyring := range m.keyrings() {
		wrapped, err := keyring.WrapDataKey(ctx, suite, dataKey, encryptionContext)
		if err != nil {
			return nil, err
		}
		edks = append(edks, wrapped...)
	}
	return edks, nil
}

// UnwrapDataKey implements Keyring, asking the generator and then each child in turn.
func (m *MultiKeyring) UnwrapDataKey(
	ctx context.Context,
	suite domain.AlgorithmSuite,
	edks []domain.EncryptedDataKey,
	encryptionContext domain.EncryptionContext,
) ([]byte, error) {
	errs := []error{ErrNoDecryptableKey}
	for _, keyring := range m.keyrings() {
		dataKey, err := keyring.UnwrapDataKey(ctx, suite, edks, encryptionContext)
		if err == nil {
			return dataKey, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		errs = append(errs, err)
	}
	return nil, errors.Join(errs...)
}

func (m *MultiKeyring) keyrings() []Keyring {
	return append([]Keyring{m.generator}, m.children...)
}
