package validation

import (
	"encoding/base64"

	validation "github.com/jellydator/validation"
)

// Base64 validates that a string is valid standard base64-encoded data.
var Base64 = Base64MaxDecodedLen(0)

// Base64MaxDecodedLen validates standard base64 whose decoded length does not exceed
// limit. A limit of zero disables the length check. Empty strings pass so Required
// decides whether a value is mandatory.
func Base64MaxDecodedLen(limit int) validation.Rule {
	return validation.By(func(value any) error {
		s, ok := value.(string)
		if !ok {
			return validation.NewError("validation_base64_type", "must be a string")
		}
		if s == "" {
			return nil
		}
		if limit > 0 && base64.StdEncoding.DecodedLen(len(s)) > limit+2 {
			return validation.NewError("validation_base64_length", "decoded data is too large")
		}
		decoded, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return validation.NewError("validation_base64", "must be valid base64-encoded data")
		}
		if limit > 0 && len(decoded) > limit {
			return validation.NewError("validation_base64_length", "decoded data is too large")
		}
		return nil
	})
}
