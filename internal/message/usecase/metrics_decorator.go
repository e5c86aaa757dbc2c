package usecase

import (
	"context"
	"time"

	apperrors "github.com/allisson/envelope/internal/errors"
	"github.com/allisson/envelope/internal/metrics"
)

// messageUseCaseWithMetrics decorates MessageUseCase with metrics instrumentation.
type messageUseCaseWithMetrics struct {
	next    MessageUseCase
	metrics metrics.BusinessMetrics
}

// NewMessageUseCaseWithMetrics wraps a MessageUseCase with metrics recording.
func NewMessageUseCaseWithMetrics(useCase MessageUseCase, m metrics.BusinessMetrics) MessageUseCase {
	return &messageUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// Encrypt records metrics for message encryption operations.
func (m *messageUseCaseWithMetrics) Encrypt(ctx context.Context, input EncryptInput) (*EncryptOutput, error) {
	start := time.Now()
	output, err := m.next.Encrypt(ctx, input)

	status := "success"
	if err != nil {
		status = "error"
	}

	m.metrics.RecordOperation(ctx, "message", "message_encrypt", status)
	m.metrics.RecordDuration(ctx, "message", "message_encrypt", time.Since(start), status)
	if err != nil {
		m.metrics.RecordFailure(ctx, "message", "message_encrypt", apperrors.Category(err))
	} else {
		m.metrics.RecordPayloadSize(ctx, "message", "message_encrypt", len(output.Ciphertext))
	}

	return output, err
}

// Decrypt records metrics for message decryption operations.
func (m *messageUseCaseWithMetrics) Decrypt(ctx context.Context, ciphertext []byte) (*DecryptOutput, error) {
	start := time.Now()
	output, err := m.next.Decrypt(ctx, ciphertext)

	status := "success"
	if err != nil {
		status = "error"
	}

	m.metrics.RecordOperation(ctx, "message", "message_decrypt", status)
	m.metrics.RecordDuration(ctx, "message", "message_decrypt", time.Since(start), status)
	if err != nil {
		m.metrics.RecordFailure(ctx, "message", "message_decrypt", apperrors.Category(err))
	} else {
		m.metrics.RecordPayloadSize(ctx, "message", "message_decrypt", len(output.Plaintext))
	}

	return output, err
}

// NewDecrypter is not instrumented; streaming callers record their own outcome.
func (m *messageUseCaseWithMetrics) NewDecrypter() *Decrypter {
	return m.next.NewDecrypter()
}
