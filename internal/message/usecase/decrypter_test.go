package usecase_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/envelope/internal/message/domain"
	"github.com/allisson/envelope/internal/message/usecase"
)

func TestDecrypter_Incremental(t *testing.T) {
	ctx := context.Background()
	cmm := newStaticManager(t)
	uc := newUseCase(cmm, usecase.Config{FrameLength: 16})
	plaintext := randomPlaintext(t, 100)

	out, err := uc.Encrypt(ctx, usecase.EncryptInput{
		Plaintext:         plaintext,
		EncryptionContext: domain.EncryptionContext{"stream": "yes"},
	})
	require.NoError(t, err)

	for _, chunkSize := range []int{1, 3, 64, len(out.Ciphertext)} {
		d := uc.NewDecrypter()

		for start := 0; start < len(out.Ciphertext); start += chunkSize {
			assert.False(t, d.Done())
			_, err := d.Plaintext()
			assert.ErrorIs(t, err, domain.ErrIncomplete)

			end := min(start+chunkSize, len(out.Ciphertext))
			require.NoError(t, d.Update(ctx, out.Ciphertext[start:end]), "chunk size %d", chunkSize)
		}

		require.True(t, d.Done(), "chunk size %d", chunkSize)
		got, err := d.Plaintext()
		require.NoError(t, err)
		assert.Equal(t, plaintext, got)
		assert.Equal(t, "yes", d.Header().EncryptionContext["stream"])

		require.NoError(t, d.Update(ctx, nil), "empty update after done")
		d.Close()
		assert.Equal(t, plaintext, got, "released plaintext must survive Close")
	}
}

func TestDecrypter_HeaderAvailableBeforeBody(t *testing.T) {
	ctx := context.Background()
	uc := newUseCase(newStaticManager(t), usecase.Config{})

	out, err := uc.Encrypt(ctx, usecase.EncryptInput{Plaintext: randomPlaintext(t, 50)})
	require.NoError(t, err)
	l := parseLayout(t, out.Ciphertext)

	d := uc.NewDecrypter()
	defer d.Close()
	assert.Nil(t, d.Header())

	require.NoError(t, d.Update(ctx, out.Ciphertext[:l.authEnd]))
	require.NotNil(t, d.Header())
	assert.Equal(t, out.Header.MessageID, d.Header().MessageID)
	assert.False(t, d.Done())
}

func TestDecrypter_StickyFailure(t *testing.T) {
	ctx := context.Background()
	uc := newUseCase(newStaticManager(t), usecase.Config{FrameLength: 8})

	out, err := uc.Encrypt(ctx, usecase.EncryptInput{
		Plaintext: randomPlaintext(t, 40),
		Suite:     suiteRef(domain.AES256GCMHKDFSHA512Commit),
	})
	require.NoError(t, err)
	l := parseLayout(t, out.Ciphertext)

	tampered := bytes.Clone(out.Ciphertext)
	tampered[l.frames[2].end-1] ^= 0x01

	d := uc.NewDecrypter()
	defer d.Close()

	require.NoError(t, d.Update(ctx, tampered[:l.frames[2].start]))
	err = d.Update(ctx, tampered[l.frames[2].start:])
	require.ErrorIs(t, err, domain.ErrFrameAuthentication)

	assert.ErrorIs(t, d.Update(ctx, []byte{0x00}), domain.ErrFrameAuthentication)
	assert.False(t, d.Done())
	_, err = d.Plaintext()
	assert.ErrorIs(t, err, domain.ErrFrameAuthentication)
}

func TestDecrypter_TrailingDataAfterDone(t *testing.T) {
	ctx := context.Background()
	uc := newUseCase(newStaticManager(t), usecase.Config{})

	out, err := uc.Encrypt(ctx, usecase.EncryptInput{Plaintext: []byte("hello world")})
	require.NoError(t, err)

	t.Run("UnreleasedPlaintextIsDropped", func(t *testing.T) {
		d := uc.NewDecrypter()
		defer d.Close()
		require.NoError(t, d.Update(ctx, out.Ciphertext))
		require.True(t, d.Done())

		assert.ErrorIs(t, d.Update(ctx, []byte{0x01}), domain.ErrTrailingData)
		_, err := d.Plaintext()
		assert.ErrorIs(t, err, domain.ErrTrailingData)
	})

	t.Run("ReleasedPlaintextIsLeftIntact", func(t *testing.T) {
		d := uc.NewDecrypter()
		defer d.Close()
		require.NoError(t, d.Update(ctx, out.Ciphertext))
		require.True(t, d.Done())

		pt, err := d.Plaintext()
		require.NoError(t, err)

		assert.ErrorIs(t, d.Update(ctx, []byte{0x00}), domain.ErrTrailingData)
		d.Close()
		assert.Equal(t, []byte("hello world"), pt)
	})

	t.Run("PlaintextAfterCloseFails", func(t *testing.T) {
		d := uc.NewDecrypter()
		require.NoError(t, d.Update(ctx, out.Ciphertext))
		d.Close()

		pt, err := d.Plaintext()
		assert.ErrorIs(t, err, domain.ErrIncomplete)
		assert.Nil(t, pt)
	})
}

func TestDecrypter_Cancellation(t *testing.T) {
	uc := newUseCase(newStaticManager(t), usecase.Config{})

	out, err := uc.Encrypt(context.Background(), usecase.EncryptInput{Plaintext: []byte("cancel me")})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := uc.NewDecrypter()
	defer d.Close()
	err = d.Update(ctx, out.Ciphertext)
	assert.ErrorIs(t, err, context.Canceled)

	_, err = uc.Decrypt(ctx, out.Ciphertext)
	assert.ErrorIs(t, err, context.Canceled)
}
