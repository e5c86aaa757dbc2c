package codec

import (
	"fmt"
	"math"

	"golang.org/x/crypto/cryptobyte"

	"github.com/allisson/envelope/internal/message/domain"
)

// ParsedHeader is a decoded header together with the exact bytes it was decoded from.
// Raw is the additional authenticated data of the header authentication tag, so it is
// kept verbatim rather than re-serialized.
type ParsedHeader struct {
	Header   *domain.MessageHeader
	Raw      []byte
	Consumed int
}

// SerializeHeader writes the header fields in the layout of its format version. The
// header authentication section is written separately by SerializeHeaderAuth.
func SerializeHeader(h *domain.MessageHeader) ([]byte, error) {
	if h.Version != domain.FormatV1 && h.Version != domain.FormatV2 {
		return nil, fmt.Errorf("%w: unknown version %d", domain.ErrInvalidHeader, h.Version)
	}
	if len(h.EncryptedDataKeys) > math.MaxUint16 {
		return nil, fmt.Errorf("%w: too many encrypted data keys (%d)", domain.ErrInvalidHeader, len(h.EncryptedDataKeys))
	}
	ctx, err := SerializeEncryptionContext(h.EncryptionContext)
	if err != nil {
		return nil, err
	}

	var b cryptobyte.Builder
	b.AddUint8(uint8(h.Version))
	if h.Version == domain.FormatV1 {
		b.AddUint8(uint8(h.Type))
	}
	b.AddUint16(uint16(h.SuiteID))
	b.AddBytes(h.MessageID)
	addUint16Bytes(&b, ctx)

	b.AddUint16(uint16(len(h.EncryptedDataKeys)))
	for _, edk := range h.EncryptedDataKeys {
		addUint16Bytes(&b, []byte(edk.ProviderID))
		addUint16Bytes(&b, []byte(edk.ProviderInfo))
		addUint16Bytes(&b, edk.Ciphertext)
	}

	b.AddUint8(uint8(h.ContentType))
	if h.Version == domain.FormatV1 {
		b.AddUint32(0) // reserved
		b.AddUint8(uint8(h.IVLength))
		b.AddUint32(h.FrameLength)
	} else {
		b.AddUint32(h.FrameLength)
		b.AddBytes(h.SuiteData)
	}

	out, err := b.Bytes()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidHeader, err)
	}
	return out, nil
}

// ParseHeader decodes the header that starts at buf[off:]. The header authentication
// section is not consumed.
func ParseHeader(buf []byte, off int) (ParsedHeader, error) {
	if off < 0 || off > len(buf) {
		return ParsedHeader{}, domain.ErrInsufficientData
	}
	start := cryptobyte.String(buf[off:])
	s := start

	var version uint8
	if !s.ReadUint8(&version) {
		return ParsedHeader{}, domain.ErrInsufficientData
	}
	format := domain.MessageFormat(version)
	if format != domain.FormatV1 && format != domain.FormatV2 {
		return ParsedHeader{}, fmt.Errorf("%w: unknown version 0x%02x", domain.ErrInvalidHeader, version)
	}

	h := &domain.MessageHeader{Version: format}
	if format == domain.FormatV1 {
		var objectType uint8
		if !s.ReadUint8(&objectType) {
			return ParsedHeader{}, domain.ErrInsufficientData
		}
		if domain.ObjectType(objectType) != domain.ObjectTypeCustomerData {
			return ParsedHeader{}, fmt.Errorf("%w: unknown object type 0x%02x", domain.ErrInvalidHeader, objectType)
		}
		h.Type = domain.ObjectTypeCustomerData
	}

	var suiteID uint16
	if !s.ReadUint16(&suiteID) {
		return ParsedHeader{}, domain.ErrInsufficientData
	}
	suite, err := domain.LookupSuite(domain.SuiteID(suiteID))
	if err != nil {
		return ParsedHeader{}, err
	}
	if suite.MessageFormat != format {
		return ParsedHeader{}, fmt.Errorf(
			"%w: suite %s cannot appear in a version %d header", domain.ErrInvalidHeader, suite.ID, version,
		)
	}
	h.SuiteID = suite.ID

	var messageID []byte
	if !s.ReadBytes(&messageID, format.MessageIDLength()) {
		return ParsedHeader{}, domain.ErrInsufficientData
	}
	h.MessageID = cloneBytes(messageID)

	var ctxField cryptobyte.String
	if !s.ReadUint16LengthPrefixed(&ctxField) {
		return ParsedHeader{}, domain.ErrInsufficientData
	}
	if h.EncryptionContext, err = ParseEncryptionContext(ctxField); err != nil {
		return ParsedHeader{}, err
	}

	var edkCount uint16
	if !s.ReadUint16(&edkCount) {
		return ParsedHeader{}, domain.ErrInsufficientData
	}
	h.EncryptedDataKeys = make([]domain.EncryptedDataKey, 0, edkCount)
	for i := 0; i < int(edkCount); i++ {
		var providerID, providerInfo, ciphertext cryptobyte.String
		if !s.ReadUint16LengthPrefixed(&providerID) ||
			!s.ReadUint16LengthPrefixed(&providerInfo) ||
			!s.ReadUint16LengthPrefixed(&ciphertext) {
			return ParsedHeader{}, domain.ErrInsufficientData
		}
		h.EncryptedDataKeys = append(h.EncryptedDataKeys, domain.EncryptedDataKey{
			ProviderID:   string(providerID),
			ProviderInfo: string(providerInfo),
			Ciphertext:   cloneBytes(ciphertext),
		})
	}

	var contentType uint8
	if !s.ReadUint8(&contentType) {
		return ParsedHeader{}, domain.ErrInsufficientData
	}
	h.ContentType = domain.ContentType(contentType)
	if h.ContentType != domain.ContentTypeFramed && h.ContentType != domain.ContentTypeNonFramed {
		return ParsedHeader{}, fmt.Errorf("%w: unknown content type 0x%02x", domain.ErrInvalidHeader, contentType)
	}

	if format == domain.FormatV1 {
		var reserved uint32
		var ivLength uint8
		if !s.ReadUint32(&reserved) {
			return ParsedHeader{}, domain.ErrInsufficientData
		}
		if reserved != 0 {
			return ParsedHeader{}, fmt.Errorf("%w: reserved field is not zero", domain.ErrInvalidHeader)
		}
		if !s.ReadUint8(&ivLength) {
			return ParsedHeader{}, domain.ErrInsufficientData
		}
		if int(ivLength) != suite.IVLength {
			return ParsedHeader{}, fmt.Errorf(
				"%w: iv length %d does not match suite %s", domain.ErrInvalidHeader, ivLength, suite.ID,
			)
		}
	}
	h.IVLength = suite.IVLength

	if !s.ReadUint32(&h.FrameLength) {
		return ParsedHeader{}, domain.ErrInsufficientData
	}
	switch {
	case h.ContentType == domain.ContentTypeFramed && h.FrameLength == 0:
		return ParsedHeader{}, fmt.Errorf("%w: framed content with zero frame length", domain.ErrInvalidHeader)
	case h.ContentType == domain.ContentTypeNonFramed && h.FrameLength != 0:
		return ParsedHeader{}, fmt.Errorf("%w: non-framed content with frame length %d", domain.ErrInvalidHeader, h.FrameLength)
	}

	if format == domain.FormatV2 {
		var suiteData []byte
		if !s.ReadBytes(&suiteData, suite.SuiteDataLength) {
			return ParsedHeader{}, domain.ErrInsufficientData
		}
		h.SuiteData = cloneBytes(suiteData)
	}

	consumed := len(start) - len(s)
	return ParsedHeader{
		Header:   h,
		Raw:      cloneBytes(buf[off : off+consumed]),
		Consumed: consumed,
	}, nil
}

// SerializeHeaderAuth writes the header authentication section. Version 2 headers omit
// the IV.
func SerializeHeaderAuth(h *domain.MessageHeader, auth domain.HeaderAuth) []byte {
	out := make([]byte, 0, len(auth.IV)+len(auth.Tag))
	if h.Version == domain.FormatV1 {
		out = append(out, auth.IV...)
	}
	return append(out, auth.Tag...)
}

// ParseHeaderAuth decodes the header authentication section at buf[off:] and returns it
// with the number of bytes consumed. Version 2 results carry the implicit zero IV.
func ParseHeaderAuth(buf []byte, off int, h *domain.MessageHeader) (domain.HeaderAuth, int, error) {
	suite, err := domain.LookupSuite(h.SuiteID)
	if err != nil {
		return domain.HeaderAuth{}, 0, err
	}
	if off < 0 || off > len(buf) {
		return domain.HeaderAuth{}, 0, domain.ErrInsufficientData
	}
	s := cryptobyte.String(buf[off:])

	var iv, tag []byte
	if h.Version == domain.FormatV1 {
		if !s.ReadBytes(&iv, h.IVLength) {
			return domain.HeaderAuth{}, 0, domain.ErrInsufficientData
		}
		iv = cloneBytes(iv)
	} else {
		iv = HeaderIV(suite.IVLength)
	}
	if !s.ReadBytes(&tag, suite.TagLength) {
		return domain.HeaderAuth{}, 0, domain.ErrInsufficientData
	}

	consumed := len(buf) - off - len(s)
	return domain.HeaderAuth{IV: iv, Tag: cloneBytes(tag)}, consumed, nil
}

func cloneBytes(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
