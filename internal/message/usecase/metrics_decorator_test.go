package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/allisson/envelope/internal/message/domain"
	"github.com/allisson/envelope/internal/message/usecase"
	usecaseMocks "github.com/allisson/envelope/internal/message/usecase/mocks"
)

// mockBusinessMetrics is a local mock for metrics.BusinessMetrics.
type mockBusinessMetrics struct {
	mock.Mock
}

func (m *mockBusinessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	m.Called(ctx, domain, operation, status)
}

func (m *mockBusinessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	m.Called(ctx, domain, operation, duration, status)
}

func (m *mockBusinessMetrics) RecordFailure(ctx context.Context, domain, operation, category string) {
	m.Called(ctx, domain, operation, category)
}

func (m *mockBusinessMetrics) RecordPayloadSize(ctx context.Context, domain, operation string, size int) {
	m.Called(ctx, domain, operation, size)
}

func TestMessageUseCaseWithMetrics_Encrypt(t *testing.T) {
	mockNext := usecaseMocks.NewMockMessageUseCase(t)
	mockMetrics := &mockBusinessMetrics{}
	uc := usecase.NewMessageUseCaseWithMetrics(mockNext, mockMetrics)

	ctx := context.Background()
	input := usecase.EncryptInput{Plaintext: []byte("data")}

	t.Run("Encrypt_Success", func(t *testing.T) {
		expected := &usecase.EncryptOutput{Ciphertext: []byte("ciphertext"), Header: &domain.MessageHeader{}}

		mockNext.On("Encrypt", ctx, input).Return(expected, nil).Once()
		mockMetrics.On("RecordOperation", ctx, "message", "message_encrypt", "success").Return().Once()
		mockMetrics.On("RecordDuration", ctx, "message", "message_encrypt", mock.AnythingOfType("time.Duration"), "success").
			Return().
			Once()
		mockMetrics.On("RecordPayloadSize", ctx, "message", "message_encrypt", len("ciphertext")).Return().Once()

		result, err := uc.Encrypt(ctx, input)

		assert.NoError(t, err)
		assert.Equal(t, expected, result)
		mockMetrics.AssertExpectations(t)
	})

	t.Run("Encrypt_Error", func(t *testing.T) {
		expectedErr := errors.New("encrypt failed")

		mockNext.On("Encrypt", ctx, input).Return(nil, expectedErr).Once()
		mockMetrics.On("RecordOperation", ctx, "message", "message_encrypt", "error").Return().Once()
		mockMetrics.On("RecordDuration", ctx, "message", "message_encrypt", mock.AnythingOfType("time.Duration"), "error").
			Return().
			Once()
		mockMetrics.On("RecordFailure", ctx, "message", "message_encrypt", "unknown").Return().Once()

		result, err := uc.Encrypt(ctx, input)

		assert.ErrorIs(t, err, expectedErr)
		assert.Nil(t, result)
		mockMetrics.AssertExpectations(t)
	})
}

func TestMessageUseCaseWithMetrics_Decrypt(t *testing.T) {
	mockNext := usecaseMocks.NewMockMessageUseCase(t)
	mockMetrics := &mockBusinessMetrics{}
	uc := usecase.NewMessageUseCaseWithMetrics(mockNext, mockMetrics)

	ctx := context.Background()
	ciphertext := []byte("message")

	t.Run("Decrypt_Success", func(t *testing.T) {
		expected := &usecase.DecryptOutput{Plaintext: []byte("data")}

		mockNext.On("Decrypt", ctx, ciphertext).Return(expected, nil).Once()
		mockMetrics.On("RecordOperation", ctx, "message", "message_decrypt", "success").Return().Once()
		mockMetrics.On("RecordDuration", ctx, "message", "message_decrypt", mock.AnythingOfType("time.Duration"), "success").
			Return().
			Once()
		mockMetrics.On("RecordPayloadSize", ctx, "message", "message_decrypt", 4).Return().Once()

		result, err := uc.Decrypt(ctx, ciphertext)

		assert.NoError(t, err)
		assert.Equal(t, expected, result)
		mockMetrics.AssertExpectations(t)
	})

	t.Run("Decrypt_Error", func(t *testing.T) {
		mockNext.On("Decrypt", ctx, ciphertext).Return(nil, domain.ErrHeaderAuthentication).Once()
		mockMetrics.On("RecordOperation", ctx, "message", "message_decrypt", "error").Return().Once()
		mockMetrics.On("RecordDuration", ctx, "message", "message_decrypt", mock.AnythingOfType("time.Duration"), "error").
			Return().
			Once()
		mockMetrics.On("RecordFailure", ctx, "message", "message_decrypt", "authentication").Return().Once()

		result, err := uc.Decrypt(ctx, ciphertext)

		assert.ErrorIs(t, err, domain.ErrHeaderAuthentication)
		assert.Nil(t, result)
		mockMetrics.AssertExpectations(t)
	})
}

func TestMessageUseCaseWithMetrics_NewDecrypter(t *testing.T) {
	mockNext := usecaseMocks.NewMockMessageUseCase(t)
	uc := usecase.NewMessageUseCaseWithMetrics(mockNext, &mockBusinessMetrics{})

	d := usecase.NewDecrypter(newStaticManager(t), usecase.Config{}, nil)
	mockNext.On("NewDecrypter").Return(d).Once()

	assert.Same(t, d, uc.NewDecrypter())
}
