package codec

import (
	"fmt"

	"golang.org/x/crypto/cryptobyte"

	"github.com/allisson/envelope/internal/message/domain"
)

// SerializeFrame writes a regular or final frame.
func SerializeFrame(f domain.Frame) []byte {
	var b cryptobyte.Builder
	if f.Final {
		b.AddUint32(domain.FinalFrameMarker)
	}
	b.AddUint32(f.SequenceNumber)
	b.AddBytes(f.IV)
	if f.Final {
		b.AddUint32(uint32(len(f.Ciphertext)))
	}
	b.AddBytes(f.Ciphertext)
	b.AddBytes(f.Tag)
	return b.BytesOrPanic()
}

// ParseFrame decodes the frame at buf[off:] and returns it with the number of bytes
// consumed. Regular frames carry exactly frameLength bytes of ciphertext; a final frame
// carries its own length, which may not exceed frameLength.
func ParseFrame(buf []byte, off int, suite domain.AlgorithmSuite, frameLength uint32) (domain.Frame, int, error) {
	if off < 0 || off > len(buf) {
		return domain.Frame{}, 0, domain.ErrInsufficientData
	}
	start := cryptobyte.String(buf[off:])
	s := start

	var f domain.Frame
	var first uint32
	if !s.ReadUint32(&first) {
		return domain.Frame{}, 0, domain.ErrInsufficientData
	}
	if first == domain.FinalFrameMarker {
		f.Final = true
		if !s.ReadUint32(&f.SequenceNumber) {
			return domain.Frame{}, 0, domain.ErrInsufficientData
		}
	} else {
		f.SequenceNumber = first
	}

	var iv, ciphertext, tag []byte
	if !s.ReadBytes(&iv, suite.IVLength) {
		return domain.Frame{}, 0, domain.ErrInsufficientData
	}

	contentLength := frameLength
	if f.Final {
		if !s.ReadUint32(&contentLength) {
			return domain.Frame{}, 0, domain.ErrInsufficientData
		}
		if contentLength > frameLength {
			return domain.Frame{}, 0, fmt.Errorf(
				"%w: final frame length %d exceeds frame length %d", domain.ErrInvalidFrame, contentLength, frameLength,
			)
		}
	}
	if !s.ReadBytes(&ciphertext, int(contentLength)) || !s.ReadBytes(&tag, suite.TagLength) {
		return domain.Frame{}, 0, domain.ErrInsufficientData
	}

	f.IV = cloneBytes(iv)
	f.Ciphertext = cloneBytes(ciphertext)
	f.Tag = cloneBytes(tag)
	return f, len(start) - len(s), nil
}

// SerializeNonFramedBody writes the single-block body used by non-framed messages.
func SerializeNonFramedBody(iv, ciphertext, tag []byte) []byte {
	var b cryptobyte.Builder
	b.AddBytes(iv)
	addUint64(&b, uint64(len(ciphertext)))
	b.AddBytes(ciphertext)
	b.AddBytes(tag)
	return b.BytesOrPanic()
}

// ParseNonFramedBody decodes a single-block body. It is returned as a final frame with
// sequence number 1.
func ParseNonFramedBody(buf []byte, off int, suite domain.AlgorithmSuite) (domain.Frame, int, error) {
	if off < 0 || off > len(buf) {
		return domain.Frame{}, 0, domain.ErrInsufficientData
	}
	start := cryptobyte.String(buf[off:])
	s := start

	var iv, ciphertext, tag []byte
	var contentLength uint64
	if !s.ReadBytes(&iv, suite.IVLength) || !readUint64(&s, &contentLength) {
		return domain.Frame{}, 0, domain.ErrInsufficientData
	}
	if contentLength > uint64(domain.MaxNonFramedLength) {
		return domain.Frame{}, 0, fmt.Errorf(
			"%w: non-framed content length %d exceeds %d", domain.ErrInvalidFrame, contentLength, domain.MaxNonFramedLength,
		)
	}
	if !s.ReadBytes(&ciphertext, int(contentLength)) || !s.ReadBytes(&tag, suite.TagLength) {
		return domain.Frame{}, 0, domain.ErrInsufficientData
	}

	return domain.Frame{
		SequenceNumber: 1,
		IV:             cloneBytes(iv),
		Ciphertext:     cloneBytes(ciphertext),
		Tag:            cloneBytes(tag),
		Final:          true,
	}, len(start) - len(s), nil
}

// FrameIV returns the IV for a frame: the sequence number in the low four bytes.
func FrameIV(seq uint32, ivLength int) []byte {
	iv := make([]byte, ivLength)
	iv[ivLength-4] = byte(seq >> 24)
	iv[ivLength-3] = byte(seq >> 16)
	iv[ivLength-2] = byte(seq >> 8)
	iv[ivLength-1] = byte(seq)
	return iv
}

// HeaderIV returns the all-zero IV of the header authentication tag.
func HeaderIV(ivLength int) []byte {
	return make([]byte, ivLength)
}

func addUint64(b *cryptobyte.Builder, v uint64) {
	b.AddUint32(uint32(v >> 32))
	b.AddUint32(uint32(v))
}

func readUint64(s *cryptobyte.String, out *uint64) bool {
	var hi, lo uint32
	if !s.ReadUint32(&hi) || !s.ReadUint32(&lo) {
		return false
	}
	*out = uint64(hi)<<32 | uint64(lo)
	return true
}
