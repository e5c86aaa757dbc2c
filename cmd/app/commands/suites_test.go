package commands

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/envelope/internal/message/domain"
	"github.com/allisson/envelope/internal/message/http/dto"
)

func TestRunListSuites(t *testing.T) {
	t.Run("text", func(t *testing.T) {
		var out bytes.Buffer
		err := RunListSuites(&out, domain.ForbidEncryptAllowDecrypt, domain.AES256GCMHKDFSHA384P384, "text")
		require.NoError(t, err)

		lines := strings.Split(strings.TrimSpace(out.String()), "\n")
		assert.Equal(t, "Commitment policy: forbid-encrypt-allow-decrypt", lines[0])
		// Title, blank line, column header, one row per suite.
		assert.Len(t, lines, 3+len(domain.Suites()))
		assert.Contains(t, out.String(), "AES_256_GCM_HKDF_SHA512_COMMIT_KEY_ECDSA_P384")
	})

	t.Run("json", func(t *testing.T) {
		var out bytes.Buffer
		err := RunListSuites(&out, domain.RequireEncryptRequireDecrypt, domain.AES256GCMHKDFSHA512CommitP384, "json")
		require.NoError(t, err)

		var response dto.ListSuitesResponse
		require.NoError(t, json.Unmarshal(out.Bytes(), &response))
		assert.Equal(t, "require-encrypt-require-decrypt", response.CommitmentPolicy)
		require.Len(t, response.Data, len(domain.Suites()))

		last := response.Data[len(response.Data)-1]
		assert.Equal(t, "0x0578", last.ID)
		assert.True(t, last.DefaultForWrite)
		assert.True(t, last.AllowsEncrypt)
		assert.False(t, response.Data[0].AllowsDecrypt)
	})

	t.Run("invalid format", func(t *testing.T) {
		err := RunListSuites(&bytes.Buffer{}, domain.DefaultCommitmentPolicy, domain.AES256GCMHKDFSHA512CommitP384, "xml")
		assert.Error(t, err)
	})
}
