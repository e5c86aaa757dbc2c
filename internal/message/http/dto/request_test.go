package dto

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/envelope/internal/message/domain"
)

func TestEncryptRequest_Validate(t *testing.T) {
	t.Run("Success_Minimal", func(t *testing.T) {
		req := EncryptRequest{Plaintext: base64.StdEncoding.EncodeToString([]byte("hello"))}
		assert.NoError(t, req.Validate())
	})

	t.Run("Success_EmptyPlaintext", func(t *testing.T) {
		req := EncryptRequest{}
		assert.NoError(t, req.Validate())
	})

	t.Run("Success_AllFields", func(t *testing.T) {
		req := EncryptRequest{
			Plaintext:         "aGVsbG8=",
			EncryptionContext: map[string]string{"tenant": "acme"},
			AlgorithmSuite:    "0x0478",
			FrameLength:       1024,
			ContentType:       ContentTypeNonFramed,
		}
		assert.NoError(t, req.Validate())
	})

	t.Run("Error_InvalidBase64", func(t *testing.T) {
		req := EncryptRequest{Plaintext: "not-valid-base64!@#$%"}
		err := req.Validate()
		assert.ErrorContains(t, err, "base64")
	})

	t.Run("Error_ReservedContextKey", func(t *testing.T) {
		req := EncryptRequest{EncryptionContext: map[string]string{domain.PublicKeyContextKey: "x"}}
		assert.ErrorContains(t, req.Validate(), "reserved")
	})

	t.Run("Error_UnknownSuite", func(t *testing.T) {
		req := EncryptRequest{AlgorithmSuite: "0x9999"}
		assert.ErrorContains(t, req.Validate(), "algorithm_suite")
	})

	t.Run("Error_NegativeFrameLength", func(t *testing.T) {
		req := EncryptRequest{FrameLength: -1}
		assert.ErrorContains(t, req.Validate(), "frame_length")
	})

	t.Run("Error_UnknownContentType", func(t *testing.T) {
		req := EncryptRequest{ContentType: "chunked"}
		assert.ErrorContains(t, req.Validate(), "content_type")
	})
}

func TestEncryptRequest_ToInput(t *testing.T) {
	t.Run("Success_Defaults", func(t *testing.T) {
		req := EncryptRequest{Plaintext: "aGVsbG8="}

		input, err := req.ToInput()

		require.NoError(t, err)
		assert.Equal(t, []byte("hello"), input.Plaintext)
		assert.Nil(t, input.Suite)
		assert.Equal(t, 0, input.FrameLength)
		assert.Equal(t, domain.ContentType(0), input.ContentType)
	})

	t.Run("Success_AllFields", func(t *testing.T) {
		req := EncryptRequest{
			Plaintext:         "aGVsbG8=",
			EncryptionContext: map[string]string{"tenant": "acme"},
			AlgorithmSuite:    "0x0378",
			FrameLength:       512,
			ContentType:       ContentTypeNonFramed,
		}

		input, err := req.ToInput()

		require.NoError(t, err)
		require.NotNil(t, input.Suite)
		assert.Equal(t, domain.AES256GCMHKDFSHA384P384, *input.Suite)
		assert.Equal(t, 512, input.FrameLength)
		assert.Equal(t, domain.ContentTypeNonFramed, input.ContentType)
		assert.Equal(t, domain.EncryptionContext{"tenant": "acme"}, input.EncryptionContext)
	})

	t.Run("Error_InvalidBase64", func(t *testing.T) {
		req := EncryptRequest{Plaintext: "%%%"}
		_, err := req.ToInput()
		assert.Error(t, err)
	})
}

func TestDecryptRequest(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		req := DecryptRequest{Ciphertext: "AgV4"}
		require.NoError(t, req.Validate())

		raw, err := req.Decode()
		require.NoError(t, err)
		assert.Equal(t, []byte{0x02, 0x05, 0x78}, raw)
	})

	t.Run("Error_Empty", func(t *testing.T) {
		req := DecryptRequest{}
		assert.ErrorContains(t, req.Validate(), "ciphertext")
	})

	t.Run("Error_InvalidBase64", func(t *testing.T) {
		req := DecryptRequest{Ciphertext: "!!!!"}
		assert.ErrorContains(t, req.Validate(), "base64")
	})
}
