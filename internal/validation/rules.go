// Package validation provides the validation rules shared by request DTOs.
package validation

import (
	"strings"
	"unicode/utf8"

	validation "github.com/jellydator/validation"

	apperrors "github.com/allisson/envelope/internal/errors"
	"github.com/allisson/envelope/internal/message/domain"
)

// WrapValidationError wraps validation errors as domain ErrInvalidInput
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// NoWhitespace validates that string doesn't contain leading/trailing whitespace
var NoWhitespace = validation.NewStringRuleWithError(
	func(s string) bool {
		return s == strings.TrimSpace(s)
	},
	validation.NewError("validation_no_whitespace", "must not contain leading or trailing whitespace"),
)

// NotBlank validates that a string is not empty after trimming whitespace
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)

// SuiteIdentifier validates an algorithm suite id (0x0578) or name. Empty strings pass.
var SuiteIdentifier = validation.NewStringRuleWithError(
	func(s string) bool {
		_, err := domain.ParseSuiteID(s)
		return err == nil
	},
	validation.NewError("validation_suite", "must be a supported algorithm suite id or name"),
)

// CommitmentPolicy validates a "<stance>-encrypt-<stance>-decrypt" string. Empty strings pass.
var CommitmentPolicy = validation.NewStringRuleWithError(
	func(s string) bool {
		_, err := domain.ParseCommitmentPolicy(s)
		return err == nil
	},
	validation.NewError("validation_commitment_policy", "must be <stance>-encrypt-<stance>-decrypt"),
)

// EncryptionContext validates a caller-supplied encryption context: keys must be
// non-empty, keys and values valid UTF-8, and the reserved public key entry absent.
var EncryptionContext = validation.By(func(value any) error {
	var ctx map[string]string
	switch v := value.(type) {
	case nil:
		return nil
	case map[string]string:
		ctx = v
	case domain.EncryptionContext:
		ctx = v
	default:
		return validation.NewError("validation_encryption_context_type", "must be an object of strings")
	}

	for k, v := range ctx {
		if k == "" {
			return validation.NewError("validation_encryption_context_key", "keys must not be empty")
		}
		if !utf8.ValidString(k) || !utf8.ValidString(v) {
			return validation.NewError("validation_encryption_context_utf8", "keys and values must be valid UTF-8")
		}
		if k == domain.PublicKeyContextKey {
			return validation.NewError(
				"validation_encryption_context_reserved",
				"key "+domain.PublicKeyContextKey+" is reserved",
			)
		}
	}
	return nil
})
