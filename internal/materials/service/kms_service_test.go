package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocloud.dev/secrets"
)

func TestKMSService_OpenKeeper(t *testing.T) {
	ctx := context.Background()
	kmsService := NewKMSService()

	t.Run("Success_LocalSecrets", func(t *testing.T) {
		keyURI, err := NewLocalKeyURI()
		require.NoError(t, err)

		keeper, err := kmsService.OpenKeeper(ctx, keyURI)
		require.NoError(t, err)
		defer func() {
			assert.NoError(t, keeper.Close())
		}()

		_, ok := keeper.(*secrets.Keeper)
		assert.True(t, ok, "keeper should be *secrets.Keeper")

		ciphertext, err := keeper.Encrypt(ctx, []byte("data key"))
		require.NoError(t, err)
		plaintext, err := keeper.Decrypt(ctx, ciphertext)
		require.NoError(t, err)
		assert.Equal(t, []byte("data key"), plaintext)
	})

	t.Run("Error_InvalidURI", func(t *testing.T) {
		keeper, err := kmsService.OpenKeeper(ctx, "invalid://uri")

		assert.Error(t, err)
		assert.Nil(t, keeper)
		assert.Contains(t, err.Error(), "failed to open KMS keeper")
	})

	t.Run("Error_EmptyURI", func(t *testing.T) {
		keeper, err := kmsService.OpenKeeper(ctx, "")

		assert.Error(t, err)
		assert.Nil(t, keeper)
	})
}

func TestNewLocalKeyURI(t *testing.T) {
	first, err := NewLocalKeyURI()
	require.NoError(t, err)
	second, err := NewLocalKeyURI()
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(first, "base64key://"))
	assert.NotEqual(t, first, second)
}
