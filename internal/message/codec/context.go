// Package codec reads and writes the binary message format: headers, header
// authentication, frames, non-framed bodies, the body AAD, encryption contexts and the
// signature footer. Every integer is big-endian.
//
// Parse functions accept a buffer and an offset and return domain.ErrInsufficientData
// when the buffer ends before the structure does, so streaming callers can buffer more
// input and retry. Any other error means the bytes can never form a valid message.
package codec

import (
	"fmt"
	"math"
	"unicode/utf8"

	"golang.org/x/crypto/cryptobyte"

	"github.com/allisson/envelope/internal/message/domain"
)

// SerializeEncryptionContext writes the canonical form of the context: an entry count
// followed by length-prefixed keys and values sorted by key. An empty context serializes
// to zero bytes.
func SerializeEncryptionContext(ctx domain.EncryptionContext) ([]byte, error) {
	if len(ctx) == 0 {
		return []byte{}, nil
	}
	if err := ctx.Validate(); err != nil {
		return nil, err
	}
	if len(ctx) > math.MaxUint16 {
		return nil, fmt.Errorf("%w: too many entries (%d)", domain.ErrInvalidEncryptionContext, len(ctx))
	}

	var b cryptobyte.Builder
	b.AddUint16(uint16(len(ctx)))
	for _, k := range ctx.SortedKeys() {
		addUint16Bytes(&b, []byte(k))
		addUint16Bytes(&b, []byte(ctx[k]))
	}
	out, err := b.Bytes()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidEncryptionContext, err)
	}
	if len(out) > math.MaxUint16 {
		return nil, fmt.Errorf("%w: serialized context exceeds %d bytes", domain.ErrInvalidEncryptionContext, math.MaxUint16)
	}
	return out, nil
}

// ParseEncryptionContext decodes a complete serialized context. The input must be
// consumed exactly; duplicate keys and invalid UTF-8 are rejected.
func ParseEncryptionContext(data []byte) (domain.EncryptionContext, error) {
	ctx := domain.EncryptionContext{}
	if len(data) == 0 {
		return ctx, nil
	}

	s := cryptobyte.String(data)
	var count uint16
	if !s.ReadUint16(&count) {
		return nil, fmt.Errorf("%w: truncated encryption context", domain.ErrInvalidHeader)
	}
	if count == 0 {
		return nil, fmt.Errorf("%w: non-empty encryption context with zero entries", domain.ErrInvalidHeader)
	}
	for i := 0; i < int(count); i++ {
		var key, value cryptobyte.String
		if !s.ReadUint16LengthPrefixed(&key) || !s.ReadUint16LengthPrefixed(&value) {
			return nil, fmt.Errorf("%w: truncated encryption context entry %d", domain.ErrInvalidHeader, i)
		}
		if len(key) == 0 || !utf8.Valid(key) || !utf8.Valid(value) {
			return nil, fmt.Errorf("%w: invalid encryption context entry %d", domain.ErrInvalidHeader, i)
		}
		if _, dup := ctx[string(key)]; dup {
			return nil, fmt.Errorf("%w: duplicate encryption context key %q", domain.ErrInvalidHeader, string(key))
		}
		ctx[string(key)] = string(value)
	}
	if !s.Empty() {
		return nil, fmt.Errorf("%w: trailing bytes in encryption context", domain.ErrInvalidHeader)
	}
	return ctx, nil
}

func addUint16Bytes(b *cryptobyte.Builder, v []byte) {
	b.AddUint16LengthPrefixed(func(child *cryptobyte.Builder) {
		child.AddBytes(v)
	})
}
