package service

import (
	apperrors "github.com/allisson/envelope/internal/errors"
)

var (
	// ErrNoDecryptableKey indicates that no encrypted data key could be unwrapped.
	ErrNoDecryptableKey = apperrors.Wrap(apperrors.ErrAuthentication, "no encrypted data key could be decrypted")

	// ErrInvalidKeyring indicates a keyring built without the parts it needs.
	ErrInvalidKeyring = apperrors.Wrap(apperrors.ErrInvalidInput, "invalid keyring")

	// ErrWrapFailed indicates a keeper refused to encrypt a data key.
	ErrWrapFailed = apperrors.Wrap(apperrors.ErrInternal, "failed to wrap data key")
)
