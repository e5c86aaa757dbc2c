// Package mocks provides mock implementations of the message use case collaborators.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/allisson/envelope/internal/message/domain"
)

// MockMaterialsManager is a mock implementation of MaterialsManager for testing.
type MockMaterialsManager struct {
	mock.Mock
}

// NewMockMaterialsManager creates a MockMaterialsManager whose expectations are asserted
// when the test ends.
func NewMockMaterialsManager(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockMaterialsManager {
	m := &MockMaterialsManager{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// GetEncryptionMaterials mocks the GetEncryptionMaterials method of MaterialsManager.
func (m *MockMaterialsManager) GetEncryptionMaterials(
	ctx context.Context,
	req domain.EncryptionMaterialsRequest,
) (*domain.EncryptionMaterials, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.EncryptionMaterials), args.Error(1)
}

// DecryptMaterials mocks the DecryptMaterials method of MaterialsManager.
func (m *MockMaterialsManager) DecryptMaterials(
	ctx context.Context,
	req domain.DecryptionMaterialsRequest,
) (*domain.DecryptionMaterials, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DecryptionMaterials), args.Error(1)
}
