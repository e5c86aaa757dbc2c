package usecase

import (
	"fmt"

	"github.com/allisson/envelope/internal/message/domain"
	"github.com/allisson/envelope/internal/message/service"
)

// Config holds the client-wide settings of the message engine. It is fixed when the use
// case is built.
type Config struct {
	CommitmentPolicy domain.CommitmentPolicy
	// MaxEncryptedDataKeys limits the encrypted data keys of a message; zero disables
	// the limit.
	MaxEncryptedDataKeys int
	// FrameLength is the frame length used when the caller does not choose one.
	FrameLength int
	// DefaultSuite is requested from the materials manager when the caller does not
	// choose a suite. When nil the materials manager applies the policy default.
	DefaultSuite *domain.SuiteID
	// KeyDeriver derives the per-message key. When nil the HKDF deriver is used.
	KeyDeriver service.KeyDeriver
}

func (c Config) withDefaults() Config {
	if c.CommitmentPolicy == (domain.CommitmentPolicy{}) {
		c.CommitmentPolicy = domain.DefaultCommitmentPolicy
	}
	if c.FrameLength == 0 {
		c.FrameLength = domain.DefaultFrameLength
	}
	if c.KeyDeriver == nil {
		c.KeyDeriver = service.NewKeyDeriver()
	}
	return c
}

func (c Config) checkEncryptedDataKeys(count int) error {
	if c.MaxEncryptedDataKeys > 0 && count > c.MaxEncryptedDataKeys {
		return fmt.Errorf("%w: %d exceeds the limit of %d", domain.ErrTooManyEncryptedDataKeys, count, c.MaxEncryptedDataKeys)
	}
	return nil
}
