package domain

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptionMaterials_Validate(t *testing.T) {
	signed := mustSuite(t, AES256GCMHKDFSHA512CommitP384)
	unsigned := mustSuite(t, AES256GCMHKDFSHA512Commit)

	p384, err := ecdsa.GenerateKey(elliptic.P384(), rand.Reader)
	require.NoError(t, err)
	p256, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	tests := []struct {
		name      string
		materials EncryptionMaterials
		wantErr   error
	}{
		{
			name:      "signed suite with matching key",
			materials: EncryptionMaterials{Suite: signed, DataKey: make([]byte, 32), SigningKey: p384},
		},
		{
			name:      "unsigned suite without key",
			materials: EncryptionMaterials{Suite: unsigned, DataKey: make([]byte, 32)},
		},
		{
			name:      "wrong data key length",
			materials: EncryptionMaterials{Suite: unsigned, DataKey: make([]byte, 16)},
			wantErr:   ErrInvalidDataKey,
		},
		{
			name:      "signed suite without key",
			materials: EncryptionMaterials{Suite: signed, DataKey: make([]byte, 32)},
			wantErr:   ErrMissingSigningKey,
		},
		{
			name:      "unsigned suite with key",
			materials: EncryptionMaterials{Suite: unsigned, DataKey: make([]byte, 32), SigningKey: p384},
			wantErr:   ErrUnexpectedSigningKey,
		},
		{
			name:      "signing key on wrong curve",
			materials: EncryptionMaterials{Suite: signed, DataKey: make([]byte, 32), SigningKey: p256},
			wantErr:   ErrInvalidSigningKey,
		},
		{
			name: "invalid context",
			materials: EncryptionMaterials{
				Suite:             unsigned,
				DataKey:           make([]byte, 32),
				EncryptionContext: EncryptionContext{"": "x"},
			},
			wantErr: ErrInvalidEncryptionContext,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.materials.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestDecryptionMaterials_Validate(t *testing.T) {
	signed := mustSuite(t, AES128GCMHKDFSHA256P256)
	unsigned := mustSuite(t, AES128GCMNoKDF)

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	ok := DecryptionMaterials{Suite: signed, DataKey: make([]byte, 16), VerificationKey: &key.PublicKey}
	assert.NoError(t, ok.Validate())

	missing := DecryptionMaterials{Suite: signed, DataKey: make([]byte, 16)}
	assert.ErrorIs(t, missing.Validate(), ErrMissingVerificationKey)

	unexpected := DecryptionMaterials{Suite: unsigned, DataKey: make([]byte, 16), VerificationKey: &key.PublicKey}
	assert.ErrorIs(t, unexpected.Validate(), ErrUnexpectedVerificationKey)

	short := DecryptionMaterials{Suite: unsigned, DataKey: make([]byte, 8)}
	assert.ErrorIs(t, short.Validate(), ErrInvalidDataKey)
}

func TestMaterials_Zero(t *testing.T) {
	enc := &EncryptionMaterials{DataKey: []byte{1, 2, 3}}
	enc.Zero()
	assert.Equal(t, []byte{0, 0, 0}, enc.DataKey)

	dec := &DecryptionMaterials{DataKey: []byte{4, 5}}
	dec.Zero()
	assert.Equal(t, []byte{0, 0}, dec.DataKey)

	var nilEnc *EncryptionMaterials
	var nilDec *DecryptionMaterials
	var nilKey *DerivedKeyMaterial
	assert.NotPanics(t, func() {
		nilEnc.Zero()
		nilDec.Zero()
		nilKey.Zero()
	})
}
