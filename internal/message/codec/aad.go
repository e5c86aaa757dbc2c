package codec

import (
	"golang.org/x/crypto/cryptobyte"
)

// BodyAADKind selects the content string mixed into the body AAD.
type BodyAADKind uint8

const (
	// BodyAADFrame is used for regular frames.
	BodyAADFrame BodyAADKind = iota
	// BodyAADFinalFrame is used for the final frame.
	BodyAADFinalFrame
	// BodyAADSingleBlock is used for non-framed bodies.
	BodyAADSingleBlock
)

// String returns the literal written into the AAD.
func (k BodyAADKind) String() string {
	switch k {
	case BodyAADFinalFrame:
		return "AWSKMSEncryptionClient Final Frame"
	case BodyAADSingleBlock:
		return "AWSKMSEncryptionClient Single Block"
	default:
		return "AWSKMSEncryptionClient Frame"
	}
}

// BodyAAD builds messageID | kind literal | seq(4) | contentLength(8).
func BodyAAD(messageID []byte, kind BodyAADKind, seq uint32, contentLength uint64) []byte {
	literal := kind.String()
	b := cryptobyte.NewBuilder(make([]byte, 0, len(messageID)+len(literal)+12))
	b.AddBytes(messageID)
	b.AddBytes([]byte(literal))
	b.AddUint32(seq)
	addUint64(b, contentLength)
	return b.BytesOrPanic()
}
