package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/allisson/envelope/internal/message/usecase"
)

// MockMessageUseCase is a mock implementation of MessageUseCase for testing.
type MockMessageUseCase struct {
	mock.Mock
}

// NewMockMessageUseCase creates a MockMessageUseCase whose expectations are asserted
// when the test ends.
func NewMockMessageUseCase(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockMessageUseCase {
	m := &MockMessageUseCase{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// Encrypt mocks the Encrypt method of MessageUseCase.
func (m *MockMessageUseCase) Encrypt(ctx context.Context, input usecase.EncryptInput) (*usecase.EncryptOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.EncryptOutput), args.Error(1)
}

// Decrypt mocks the Decrypt method of MessageUseCase.
func (m *MockMessageUseCase) Decrypt(ctx context.Context, ciphertext []byte) (*usecase.DecryptOutput, error) {
	args := m.Called(ctx, ciphertext)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.DecryptOutput), args.Error(1)
}

// NewDecrypter mocks the NewDecrypter method of MessageUseCase.
func (m *MockMessageUseCase) NewDecrypter() *usecase.Decrypter {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*usecase.Decrypter)
}
