package domain

import (
	apperrors "github.com/allisson/envelope/internal/errors"
)

// Format errors: malformed or truncated input. The whole message is rejected.
var (
	// ErrUnsupportedSuite indicates an algorithm suite identifier that is not registered.
	ErrUnsupportedSuite = apperrors.Wrap(apperrors.ErrFormat, "unsupported algorithm suite")

	// ErrInvalidHeader indicates a header that violates the message format.
	ErrInvalidHeader = apperrors.Wrap(apperrors.ErrFormat, "invalid message header")

	// ErrInvalidFrame indicates a frame that violates the message format.
	ErrInvalidFrame = apperrors.Wrap(apperrors.ErrFormat, "invalid frame")

	// ErrInvalidFooter indicates a malformed signature footer or DER signature.
	ErrInvalidFooter = apperrors.Wrap(apperrors.ErrFormat, "invalid signature footer")

	// ErrInsufficientData is returned by the codec when the buffer ends before the
	// structure being read. Streaming callers treat it as "feed more bytes".
	ErrInsufficientData = apperrors.Wrap(apperrors.ErrFormat, "insufficient data")

	// ErrTruncated indicates the input ended before the message was complete.
	ErrTruncated = apperrors.Wrap(apperrors.ErrFormat, "truncated message")

	// ErrTrailingData indicates bytes after the end of a complete message.
	ErrTrailingData = apperrors.Wrap(apperrors.ErrFormat, "trailing data after message")

	// ErrInvalidVerificationKey indicates a public key in the encryption context that does
	// not decode to a point on the suite's curve.
	ErrInvalidVerificationKey = apperrors.Wrap(apperrors.ErrFormat, "invalid verification key")
)

// Input errors: the caller or the materials manager supplied something unusable.
var (
	// ErrInvalidEncryptionContext indicates an encryption context that cannot be serialized.
	ErrInvalidEncryptionContext = apperrors.Wrap(apperrors.ErrInvalidInput, "invalid encryption context")

	// ErrReservedContextKey indicates a caller context that uses a key the engine manages.
	ErrReservedContextKey = apperrors.Wrap(apperrors.ErrInvalidInput, "encryption context uses a reserved key")

	// ErrInvalidDataKey indicates a data key whose length does not match the suite.
	ErrInvalidDataKey = apperrors.Wrap(apperrors.ErrInvalidInput, "invalid data key")

	// ErrInvalidFrameLength indicates a frame length outside (0, MaxFrameLength].
	ErrInvalidFrameLength = apperrors.Wrap(apperrors.ErrInvalidInput, "invalid frame length")

	// ErrPlaintextTooLarge indicates a plaintext that does not fit the message format.
	ErrPlaintextTooLarge = apperrors.Wrap(apperrors.ErrInvalidInput, "plaintext too large")

	// ErrInvalidCommitmentPolicy indicates an unknown or zero commitment policy.
	ErrInvalidCommitmentPolicy = apperrors.Wrap(apperrors.ErrInvalidInput, "invalid commitment policy")

	// ErrMissingSigningKey indicates encryption materials for a signed suite without a signing key.
	ErrMissingSigningKey = apperrors.Wrap(apperrors.ErrInvalidInput, "missing signing key")

	// ErrUnexpectedSigningKey indicates a signing key supplied for an unsigned suite.
	ErrUnexpectedSigningKey = apperrors.Wrap(apperrors.ErrInvalidInput, "signing key supplied for unsigned suite")

	// ErrInvalidSigningKey indicates a signing key on the wrong curve.
	ErrInvalidSigningKey = apperrors.Wrap(apperrors.ErrInvalidInput, "invalid signing key")

	// ErrMissingVerificationKey indicates decryption materials for a signed suite without a verification key.
	ErrMissingVerificationKey = apperrors.Wrap(apperrors.ErrInvalidInput, "missing verification key")

	// ErrUnexpectedVerificationKey indicates a verification key supplied for an unsigned suite.
	ErrUnexpectedVerificationKey = apperrors.Wrap(
		apperrors.ErrInvalidInput,
		"verification key supplied for unsigned suite",
	)

	// ErrIncomplete indicates plaintext was requested before decryption finished.
	ErrIncomplete = apperrors.Wrap(apperrors.ErrInvalidInput, "message decryption incomplete")
)

// Policy violations: the configured client policy rejects the message.
var (
	// ErrCommitmentRequired indicates a non-committing suite under a policy that requires commitment.
	ErrCommitmentRequired = apperrors.Wrap(apperrors.ErrPolicyViolation, "key commitment required")

	// ErrCommitmentForbidden indicates a committing suite under a policy that forbids commitment.
	ErrCommitmentForbidden = apperrors.Wrap(apperrors.ErrPolicyViolation, "key commitment forbidden")

	// ErrSuiteMismatch indicates the materials manager returned a suite other than the header's.
	ErrSuiteMismatch = apperrors.Wrap(apperrors.ErrPolicyViolation, "algorithm suite mismatch")

	// ErrContextMismatch indicates the materials manager returned an encryption context other
	// than the header's.
	ErrContextMismatch = apperrors.Wrap(apperrors.ErrPolicyViolation, "encryption context mismatch")

	// ErrTooManyEncryptedDataKeys indicates more encrypted data keys than the configured maximum.
	ErrTooManyEncryptedDataKeys = apperrors.Wrap(apperrors.ErrPolicyViolation, "too many encrypted data keys")
)

// Authentication, ordering and signature failures.
var (
	// ErrHeaderAuthentication indicates the header authentication tag did not verify.
	ErrHeaderAuthentication = apperrors.Wrap(apperrors.ErrAuthentication, "header authentication failed")

	// ErrFrameAuthentication indicates a frame or body tag did not verify.
	ErrFrameAuthentication = apperrors.Wrap(apperrors.ErrAuthentication, "frame authentication failed")

	// ErrCommitmentMismatch indicates the recomputed key commitment differs from the header.
	ErrCommitmentMismatch = apperrors.Wrap(apperrors.ErrAuthentication, "key commitment mismatch")

	// ErrOutOfOrder indicates a frame sequence number other than the expected one.
	ErrOutOfOrder = apperrors.Wrap(apperrors.ErrOrdering, "frame out of order")

	// ErrInvalidSignature indicates the message signature did not verify.
	ErrInvalidSignature = apperrors.Wrap(apperrors.ErrSignature, "Invalid Signature")
)

// ErrDerivedKeyLength indicates key derivation produced the wrong number of bytes.
var ErrDerivedKeyLength = apperrors.Wrap(apperrors.ErrInternal, "derived key length mismatch")
