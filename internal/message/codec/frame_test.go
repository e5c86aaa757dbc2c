package codec

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/envelope/internal/message/domain"
)

func TestFrame_RoundTrip(t *testing.T) {
	suite := mustSuite(t, domain.AES256GCMHKDFSHA512Commit)
	const frameLength = 8

	t.Run("regular frame", func(t *testing.T) {
		f := domain.Frame{
			SequenceNumber: 3,
			IV:             FrameIV(3, 12),
			Ciphertext:     randomBytes(t, frameLength),
			Tag:            randomBytes(t, 16),
		}
		out := SerializeFrame(f)
		require.Len(t, out, 4+12+frameLength+16)

		parsed, n, err := ParseFrame(out, 0, suite, frameLength)
		require.NoError(t, err)
		assert.Equal(t, len(out), n)
		assert.Equal(t, f, parsed)
	})

	t.Run("final frame", func(t *testing.T) {
		f := domain.Frame{
			SequenceNumber: 4,
			IV:             FrameIV(4, 12),
			Ciphertext:     randomBytes(t, 3),
			Tag:            randomBytes(t, 16),
			Final:          true,
		}
		out := SerializeFrame(f)
		require.Len(t, out, 4+4+12+4+3+16)
		assert.Equal(t, []byte{0xFF, 0xFF, 0xFF, 0xFF}, out[:4])

		parsed, n, err := ParseFrame(out, 0, suite, frameLength)
		require.NoError(t, err)
		assert.Equal(t, len(out), n)
		assert.Equal(t, f, parsed)
	})

	t.Run("empty final frame", func(t *testing.T) {
		f := domain.Frame{SequenceNumber: 1, IV: FrameIV(1, 12), Ciphertext: []byte{}, Tag: randomBytes(t, 16), Final: true}
		parsed, _, err := ParseFrame(SerializeFrame(f), 0, suite, frameLength)
		require.NoError(t, err)
		assert.Equal(t, 0, parsed.ContentLength())
	})

	t.Run("final frame longer than frame length", func(t *testing.T) {
		f := domain.Frame{SequenceNumber: 1, IV: FrameIV(1, 12), Ciphertext: randomBytes(t, 9), Tag: randomBytes(t, 16), Final: true}
		_, _, err := ParseFrame(SerializeFrame(f), 0, suite, frameLength)
		assert.ErrorIs(t, err, domain.ErrInvalidFrame)
	})

	t.Run("truncated frames need more data", func(t *testing.T) {
		f := domain.Frame{SequenceNumber: 2, IV: FrameIV(2, 12), Ciphertext: randomBytes(t, 5), Tag: randomBytes(t, 16), Final: true}
		out := SerializeFrame(f)
		for i := 0; i < len(out); i++ {
			_, _, err := ParseFrame(out[:i], 0, suite, frameLength)
			assert.ErrorIs(t, err, domain.ErrInsufficientData, "prefix of %d bytes", i)
		}
	})
}

func TestNonFramedBody_RoundTrip(t *testing.T) {
	suite := mustSuite(t, domain.AES128GCMNoKDF)
	iv := FrameIV(1, 12)
	ct := randomBytes(t, 100)
	tag := randomBytes(t, 16)

	out := SerializeNonFramedBody(iv, ct, tag)
	require.Len(t, out, 12+8+100+16)

	f, n, err := ParseNonFramedBody(out, 0, suite)
	require.NoError(t, err)
	assert.Equal(t, len(out), n)
	assert.Equal(t, uint32(1), f.SequenceNumber)
	assert.True(t, f.Final)
	assert.Equal(t, ct, f.Ciphertext)
	assert.Equal(t, tag, f.Tag)

	_, _, err = ParseNonFramedBody(out[:len(out)-1], 0, suite)
	assert.ErrorIs(t, err, domain.ErrInsufficientData)

	oversized := SerializeNonFramedBody(iv, nil, nil)
	copy(oversized[12:20], []byte{0x00, 0x00, 0x00, 0x10, 0x00, 0x00, 0x00, 0x00})
	_, _, err = ParseNonFramedBody(oversized, 0, suite)
	assert.ErrorIs(t, err, domain.ErrInvalidFrame)
}

func TestFrameIV(t *testing.T) {
	assert.Equal(t, []byte{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 1}, FrameIV(1, 12))
	assert.Equal(t, []byte{0, 0, 0, 0, 0, 0, 0, 0, 0x01, 0x02, 0x03, 0x04}, FrameIV(0x01020304, 12))
	assert.Equal(t, make([]byte, 12), HeaderIV(12))
}

func TestBodyAAD(t *testing.T) {
	messageID := []byte{0xAA, 0xBB}

	aad := BodyAAD(messageID, BodyAADFinalFrame, 2, 5)
	expected := append([]byte{0xAA, 0xBB}, []byte("AWSKMSEncryptionClient Final Frame")...)
	expected = append(expected, 0, 0, 0, 2, 0, 0, 0, 0, 0, 0, 0, 5)
	assert.Equal(t, expected, aad)

	assert.Contains(t, string(BodyAAD(messageID, BodyAADFrame, 1, 4)), "AWSKMSEncryptionClient Frame")
	assert.Contains(t, string(BodyAAD(messageID, BodyAADSingleBlock, 1, 4)), "AWSKMSEncryptionClient Single Block")
}

func TestFooter_RoundTrip(t *testing.T) {
	der := randomBytes(t, 103)
	out, err := SerializeFooter(der)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 103}, out[:2])

	parsed, n, err := ParseFooter(out, 0)
	require.NoError(t, err)
	assert.Equal(t, 105, n)
	assert.Equal(t, der, parsed)

	_, _, err = ParseFooter(out[:50], 0)
	assert.ErrorIs(t, err, domain.ErrInsufficientData)
}

func TestSignatureConversion(t *testing.T) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	digest := sha256.Sum256([]byte("message"))

	t.Run("der to raw and back", func(t *testing.T) {
		der, err := ecdsa.SignASN1(rand.Reader, key, digest[:])
		require.NoError(t, err)

		raw, err := SignatureDERToRaw(der, 32)
		require.NoError(t, err)
		require.Len(t, raw, 64)

		r := new(big.Int).SetBytes(raw[:32])
		s := new(big.Int).SetBytes(raw[32:])
		assert.True(t, ecdsa.Verify(&key.PublicKey, digest[:], r, s))

		back, err := SignatureRawToDER(raw)
		require.NoError(t, err)
		assert.Equal(t, der, back)
	})

	t.Run("small components are left padded", func(t *testing.T) {
		der, err := MarshalSignature(big.NewInt(1), big.NewInt(2))
		require.NoError(t, err)

		raw, err := SignatureDERToRaw(der, 4)
		require.NoError(t, err)
		assert.Equal(t, []byte{0, 0, 0, 1, 0, 0, 0, 2}, raw)
	})

	t.Run("malformed der", func(t *testing.T) {
		_, err := SignatureDERToRaw([]byte{0x30, 0x01}, 32)
		assert.ErrorIs(t, err, domain.ErrInvalidFooter)
	})

	t.Run("trailing bytes after sequence", func(t *testing.T) {
		der, err := MarshalSignature(big.NewInt(1), big.NewInt(2))
		require.NoError(t, err)
		_, err = SignatureDERToRaw(append(der, 0x00), 32)
		assert.ErrorIs(t, err, domain.ErrInvalidFooter)
	})

	t.Run("component too large", func(t *testing.T) {
		der, err := MarshalSignature(new(big.Int).Lsh(big.NewInt(1), 40), big.NewInt(2))
		require.NoError(t, err)
		_, err = SignatureDERToRaw(der, 4)
		assert.ErrorIs(t, err, domain.ErrInvalidFooter)
	})

	t.Run("odd raw length", func(t *testing.T) {
		_, err := SignatureRawToDER([]byte{1, 2, 3})
		assert.ErrorIs(t, err, domain.ErrInvalidFooter)
	})
}
