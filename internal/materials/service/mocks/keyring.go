// Package mocks provides mock implementations of the materials service interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/allisson/envelope/internal/message/domain"
)

// MockKeyring is a mock implementation of Keyring for testing.
type MockKeyring struct {
	mock.Mock
}

// NewMockKeyring creates a MockKeyring whose expectations are asserted when the test ends.
func NewMockKeyring(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockKeyring {
	m := &MockKeyring{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// WrapDataKey mocks the WrapDataKey method of Keyring.
func (m *MockKeyring) WrapDataKey(
	ctx context.Context,
	suite domain.AlgorithmSuite,
	dataKey []byte,
	encryptionContext domain.EncryptionContext,
) ([]domain.EncryptedDataKey, error) {
	args := m.Called(ctx, suite, dataKey, encryptionContext)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.EncryptedDataKey), args.Error(1)
}

// UnwrapDataKey mocks the UnwrapDataKey method of Keyring.
func (m *MockKeyring) UnwrapDataKey(
	ctx context.Context,
	suite domain.AlgorithmSuite,
	edks []domain.EncryptedDataKey,
	encryptionContext domain.EncryptionContext,
) ([]byte, error) {
	args := m.Called(ctx, suite, edks, encryptionContext)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// MockKeeper is a mock implementation of Keeper for testing.
type MockKeeper struct {
	mock.Mock
}

// NewMockKeeper creates a MockKeeper whose expectations are asserted when the test ends.
func NewMockKeeper(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockKeeper {
	m := &MockKeeper{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// Encrypt mocks the Encrypt method of Keeper.
func (m *MockKeeper) Encrypt(ctx context.Context, plaintext []byte) ([]byte, error) {
	args := m.Called(ctx, plaintext)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// Decrypt mocks the Decrypt method of Keeper.
func (m *MockKeeper) Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error) {
	args := m.Called(ctx, ciphertext)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// Close mocks the Close method of Keeper.
func (m *MockKeeper) Close() error {
	args := m.Called()
	return args.Error(0)
}
