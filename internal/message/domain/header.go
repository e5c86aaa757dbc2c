package domain

import (
	"bytes"
	"fmt"
	"slices"
)

// EncryptedDataKey is one wrapped copy of the message data key. The provider id and
// info tell a keyring whether it can unwrap it.
type EncryptedDataKey struct {
	ProviderID   string
	ProviderInfo string
	Ciphertext   []byte
}

// Equal reports whether two encrypted data keys are identical.
func (e EncryptedDataKey) Equal(other EncryptedDataKey) bool {
	return e.ProviderID == other.ProviderID &&
		e.ProviderInfo == other.ProviderInfo &&
		bytes.Equal(e.Ciphertext, other.Ciphertext)
}

// MessageHeader describes a message. It is built once per encrypt by NewMessageHeader
// or once per decrypt by the codec and is treated as read-only afterwards.
type MessageHeader struct {
	Version           MessageFormat
	Type              ObjectType // version 1 only
	SuiteID           SuiteID
	MessageID         []byte
	EncryptionContext EncryptionContext
	EncryptedDataKeys []EncryptedDataKey
	ContentType       ContentType
	IVLength          int // written explicitly in version 1 headers
	FrameLength       uint32
	SuiteData         []byte // key commitment value, version 2 only
}

// HeaderAuth is the authentication section that follows the serialized header.
// Version 2 messages do not serialize the IV; it is always zero.
type HeaderAuth struct {
	IV  []byte
	Tag []byte
}

// HeaderParams collects what NewMessageHeader needs beyond the suite.
type HeaderParams struct {
	MessageID         []byte
	EncryptionContext EncryptionContext
	EncryptedDataKeys []EncryptedDataKey
	ContentType       ContentType
	FrameLength       uint32
	SuiteData         []byte
}

// NewMessageHeader builds a complete header for the suite, copying every slice so the
// result does not alias caller memory.
func NewMessageHeader(suite AlgorithmSuite, params HeaderParams) (*MessageHeader, error) {
	if len(params.MessageID) != suite.MessageIDLength() {
		return nil, fmt.Errorf(
			"%w: message id must be %d bytes, got %d",
			ErrInvalidHeader, suite.MessageIDLength(), len(params.MessageID),
		)
	}
	if len(params.SuiteData) != suite.SuiteDataLength {
		return nil, fmt.Errorf(
			"%w: suite data must be %d bytes, got %d",
			ErrInvalidHeader, suite.SuiteDataLength, len(params.SuiteData),
		)
	}
	switch params.ContentType {
	case ContentTypeFramed:
		if params.FrameLength == 0 {
			return nil, fmt.Errorf("%w: framed content requires a frame length", ErrInvalidHeader)
		}
	case ContentTypeNonFramed:
		if params.FrameLength != 0 {
			return nil, fmt.Errorf("%w: non-framed content must have frame length 0", ErrInvalidHeader)
		}
	default:
		return nil, fmt.Errorf("%w: content type %d", ErrInvalidHeader, params.ContentType)
	}
	if err := params.EncryptionContext.Validate(); err != nil {
		return nil, err
	}

	edks := make([]EncryptedDataKey, len(params.EncryptedDataKeys))
	for i, edk := range params.EncryptedDataKeys {
		edks[i] = EncryptedDataKey{
			ProviderID:   edk.ProviderID,
			ProviderInfo: edk.ProviderInfo,
			Ciphertext:   slices.Clone(edk.Ciphertext),
		}
	}

	header := &MessageHeader{
		Version:           suite.MessageFormat,
		SuiteID:           suite.ID,
		MessageID:         slices.Clone(params.MessageID),
		EncryptionContext: params.EncryptionContext.Clone(),
		EncryptedDataKeys: edks,
		ContentType:       params.ContentType,
		IVLength:          suite.IVLength,
		FrameLength:       params.FrameLength,
		SuiteData:         slices.Clone(params.SuiteData),
	}
	if suite.MessageFormat == FormatV1 {
		header.Type = ObjectTypeCustomerData
	}
	return header, nil
}
