package domain

import (
	"fmt"
	"maps"
	"slices"
	"unicode/utf8"
)

// EncryptionContext is the non-secret key/value data bound to a message as additional
// authenticated data. It travels in the clear inside the header.
//
// The canonical order sorts entries by the UTF-8 bytes of the key, which is Go's native
// string order.
type EncryptionContext map[string]string

// Clone returns an independent copy. A nil context clones to an empty one.
func (c EncryptionContext) Clone() EncryptionContext {
	out := make(EncryptionContext, len(c))
	maps.Copy(out, c)
	return out
}

// SortedKeys returns the keys in canonical serialization order.
func (c EncryptionContext) SortedKeys() []string {
	return slices.Sorted(maps.Keys(c))
}

// Validate checks that every key and value is valid UTF-8 and that no key is empty.
func (c EncryptionContext) Validate() error {
	for k, v := range c {
		if k == "" {
			return fmt.Errorf("%w: empty key", ErrInvalidEncryptionContext)
		}
		if !utf8.ValidString(k) {
			return fmt.Errorf("%w: key is not valid UTF-8", ErrInvalidEncryptionContext)
		}
		if !utf8.ValidString(v) {
			return fmt.Errorf("%w: value for %q is not valid UTF-8", ErrInvalidEncryptionContext, k)
		}
	}
	return nil
}

// HasReservedKey reports whether the context already carries a value under a key the
// engine writes itself.
func (c EncryptionContext) HasReservedKey() bool {
	_, ok := c[PublicKeyContextKey]
	return ok
}

// Equal reports whether both contexts hold the same entries.
func (c EncryptionContext) Equal(other EncryptionContext) bool {
	return maps.Equal(c, other)
}
