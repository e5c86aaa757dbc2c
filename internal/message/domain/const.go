package domain

import "math"

// MessageFormat is the message format version written as the first header byte.
//
// Version 1 messages carry a 16-byte message id, an explicit object type and the
// header authentication IV. Version 2 messages carry a 32-byte message id, a key
// commitment value and an implicit all-zero header IV.
type MessageFormat uint8

const (
	// FormatV1 is used by every non-committing algorithm suite.
	FormatV1 MessageFormat = 0x01

	// FormatV2 is used by the key-committing algorithm suites.
	FormatV2 MessageFormat = 0x02
)

// MessageIDLength returns the width of the random message id for the format.
func (f MessageFormat) MessageIDLength() int {
	if f == FormatV2 {
		return 32
	}
	return 16
}

// ObjectType identifies the kind of object in a version 1 header.
type ObjectType uint8

// ObjectTypeCustomerData is the only object type this engine produces or accepts.
const ObjectTypeCustomerData ObjectType = 0x80

// ContentType describes how the message body is laid out.
type ContentType uint8

const (
	// ContentTypeNonFramed stores the whole body as one AEAD ciphertext.
	ContentTypeNonFramed ContentType = 0x01

	// ContentTypeFramed splits the body into fixed-length frames ending with a final frame.
	ContentTypeFramed ContentType = 0x02
)

// String returns the human-readable content type.
func (c ContentType) String() string {
	switch c {
	case ContentTypeNonFramed:
		return "non-framed"
	case ContentTypeFramed:
		return "framed"
	default:
		return "unknown"
	}
}

const (
	// FinalFrameMarker replaces the sequence number position at the start of a final frame.
	FinalFrameMarker uint32 = math.MaxUint32

	// MaxFrameLength is the largest frame length that fits the 4-byte header field.
	MaxFrameLength int64 = math.MaxUint32

	// MaxFrameCount bounds the number of frames in one message. Sequence numbers are
	// 4 bytes wide and start at 1.
	MaxFrameCount int64 = math.MaxUint32

	// MaxNonFramedLength is the AES-GCM limit for a single (key, IV) invocation.
	MaxNonFramedLength int64 = 1<<36 - 32

	// DefaultFrameLength is used when the caller does not configure one.
	DefaultFrameLength = 4096

	// PublicKeyContextKey is the reserved encryption context key that carries the
	// base64 compressed signature verification key for signing suites.
	PublicKeyContextKey = "aws-crypto-public-key"
)
