package domain

import (
	"crypto"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/envelope/internal/errors"
)

func TestLookupSuite(t *testing.T) {
	t.Run("committing signed suite", func(t *testing.T) {
		s, err := LookupSuite(AES256GCMHKDFSHA512CommitP384)
		require.NoError(t, err)

		assert.Equal(t, FormatV2, s.MessageFormat)
		assert.Equal(t, 32, s.EncryptionKeyLength)
		assert.Equal(t, 12, s.IVLength)
		assert.Equal(t, 16, s.TagLength)
		assert.Equal(t, KDFHKDF, s.KDF)
		assert.Equal(t, crypto.SHA512, s.KDFHash)
		assert.Equal(t, crypto.SHA384, s.SignatureHash)
		assert.Equal(t, 103, s.SignatureLength)
		assert.Equal(t, 48, s.SignatureComponentLength())
		assert.Equal(t, 32, s.SuiteDataLength)
		assert.Equal(t, 32, s.MessageIDLength())
		assert.True(t, s.Signed())
		assert.True(t, s.Committing())
	})

	t.Run("legacy suite without kdf", func(t *testing.T) {
		s, err := LookupSuite(AES128GCMNoKDF)
		require.NoError(t, err)

		assert.Equal(t, FormatV1, s.MessageFormat)
		assert.Equal(t, 16, s.EncryptionKeyLength)
		assert.Equal(t, KDFNone, s.KDF)
		assert.Equal(t, 16, s.MessageIDLength())
		assert.False(t, s.Signed())
		assert.False(t, s.Committing())
		assert.Equal(t, 0, s.SignatureComponentLength())
	})

	t.Run("p256 suite", func(t *testing.T) {
		s, err := LookupSuite(AES128GCMHKDFSHA256P256)
		require.NoError(t, err)

		assert.Equal(t, 71, s.SignatureLength)
		assert.Equal(t, 32, s.SignatureComponentLength())
	})

	t.Run("unknown identifier", func(t *testing.T) {
		_, err := LookupSuite(SuiteID(0x9999))
		assert.ErrorIs(t, err, ErrUnsupportedSuite)
		assert.True(t, apperrors.Is(err, apperrors.ErrFormat))
	})
}

func TestSuites(t *testing.T) {
	suites := Suites()
	require.Len(t, suites, 11)

	for i := 1; i < len(suites); i++ {
		assert.Less(t, suites[i-1].ID, suites[i].ID)
	}
	for _, s := range suites {
		assert.Equal(t, s.Committing(), s.MessageFormat == FormatV2, s.Name)
		assert.Equal(t, s.Signed(), s.SignatureLength > 0, s.Name)
	}
}

func TestParseSuiteID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    SuiteID
		wantErr bool
	}{
		{name: "hex with prefix", input: "0x0578", want: AES256GCMHKDFSHA512CommitP384},
		{name: "hex without prefix", input: "0178", want: AES256GCMHKDFSHA256},
		{name: "suite name", input: "AES_256_GCM_HKDF_SHA512_COMMIT_KEY", want: AES256GCMHKDFSHA512Commit},
		{name: "lowercase name", input: "aes_128_gcm_iv12_tag16_no_kdf", want: AES128GCMNoKDF},
		{name: "unknown hex", input: "0x0001", wantErr: true},
		{name: "garbage", input: "not-a-suite", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSuiteID(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedSuite)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSuiteID_String(t *testing.T) {
	assert.Equal(t, "0x0578", AES256GCMHKDFSHA512CommitP384.String())
	assert.Equal(t, "0x0014", AES128GCMNoKDF.String())
}
