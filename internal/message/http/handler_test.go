package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/allisson/envelope/internal/httputil"
	"github.com/allisson/envelope/internal/message/domain"
	"github.com/allisson/envelope/internal/message/http/dto"
	"github.com/allisson/envelope/internal/message/usecase"
	"github.com/allisson/envelope/internal/message/usecase/mocks"
)

// setupTestHandler creates a test handler with mocked dependencies.
func setupTestHandler(t *testing.T) (*MessageHandler, *mocks.MockMessageUseCase) {
	t.Helper()

	gin.SetMode(gin.TestMode)

	mockUseCase := mocks.NewMockMessageUseCase(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	handler := NewMessageHandler(
		mockUseCase,
		domain.RequireEncryptRequireDecrypt,
		domain.AES256GCMHKDFSHA512CommitP384,
		logger,
	)

	return handler, mockUseCase
}

// createTestContext creates a test Gin context with the given request.
func createTestContext(method, path string, body any) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var bodyReader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		bodyReader = bytes.NewBufferString(b)
	default:
		bodyBytes, _ := json.Marshal(body)
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req := httptest.NewRequest(method, path, bodyReader)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	return c, w
}

func testHeader() *domain.MessageHeader {
	return &domain.MessageHeader{
		Version:           domain.FormatV2,
		SuiteID:           domain.AES256GCMHKDFSHA512CommitP384,
		MessageID:         bytes.Repeat([]byte{0x01}, 32),
		EncryptionContext: domain.EncryptionContext{"tenant": "acme"},
		ContentType:       domain.ContentTypeFramed,
		FrameLength:       4096,
	}
}

func TestMessageHandler_EncryptHandler(t *testing.T) {
	t.Run("Success_ValidRequest", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)

		expectedInput := usecase.EncryptInput{
			Plaintext:         []byte("hello"),
			EncryptionContext: domain.EncryptionContext{"tenant": "acme"},
			FrameLength:       1024,
		}
		mockUseCase.On("Encrypt", mock.Anything, expectedInput).
			Return(&usecase.EncryptOutput{Ciphertext: []byte{0x02, 0x05, 0x78}, Header: testHeader()}, nil).
			Once()

		c, w := createTestContext(http.MethodPost, "/v1/messages/encrypt", dto.EncryptRequest{
			Plaintext:         "aGVsbG8=",
			EncryptionContext: map[string]string{"tenant": "acme"},
			FrameLength:       1024,
		})

		handler.EncryptHandler(c)

		assert.Equal(t, http.StatusCreated, w.Code)
		var response dto.EncryptResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "AgV4", response.Ciphertext)
		assert.Equal(t, "0x0578", response.Header.AlgorithmSuite)
		assert.Equal(t, "acme", response.Header.EncryptionContext["tenant"])
	})

	t.Run("Success_RequestedSuite", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)

		suiteMatcher := mock.MatchedBy(func(input usecase.EncryptInput) bool {
			return input.Suite != nil && *input.Suite == domain.AES256GCMHKDFSHA512Commit &&
				input.ContentType == domain.ContentTypeNonFramed
		})
		mockUseCase.On("Encrypt", mock.Anything, suiteMatcher).
			Return(&usecase.EncryptOutput{Ciphertext: []byte{0x02}, Header: testHeader()}, nil).
			Once()

		c, w := createTestContext(http.MethodPost, "/v1/messages/encrypt", dto.EncryptRequest{
			Plaintext:      "aGVsbG8=",
			AlgorithmSuite: "0x0478",
			ContentType:    dto.ContentTypeNonFramed,
		})

		handler.EncryptHandler(c)

		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("Error_InvalidJSON", func(t *testing.T) {
		handler, _ := setupTestHandler(t)

		c, w := createTestContext(http.MethodPost, "/v1/messages/encrypt", `{"plaintext":`)

		handler.EncryptHandler(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Error_ValidationFailed", func(t *testing.T) {
		handler, _ := setupTestHandler(t)

		c, w := createTestContext(http.MethodPost, "/v1/messages/encrypt", dto.EncryptRequest{
			Plaintext:         "aGVsbG8=",
			EncryptionContext: map[string]string{domain.PublicKeyContextKey: "forged"},
		})

		handler.EncryptHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		var response httputil.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "validation_error", response.Error)
	})

	t.Run("Error_PolicyViolation", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)

		mockUseCase.On("Encrypt", mock.Anything, mock.Anything).
			Return(nil, domain.ErrCommitmentRequired).
			Once()

		c, w := createTestContext(http.MethodPost, "/v1/messages/encrypt", dto.EncryptRequest{
			Plaintext:      "aGVsbG8=",
			AlgorithmSuite: "0x0378",
		})

		handler.EncryptHandler(c)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestMessageHandler_DecryptHandler(t *testing.T) {
	ciphertext := []byte{0x02, 0x05, 0x78, 0x00}
	request := dto.DecryptRequest{Ciphertext: "AgV4AA=="}

	t.Run("Success_ValidRequest", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)

		plaintext := []byte("hello")
		mockUseCase.On("Decrypt", mock.Anything, ciphertext).
			Return(&usecase.DecryptOutput{Plaintext: plaintext, Header: testHeader()}, nil).
			Once()

		c, w := createTestContext(http.MethodPost, "/v1/messages/decrypt", request)

		handler.DecryptHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
		var response dto.DecryptResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "aGVsbG8=", response.Plaintext)
		assert.Equal(t, make([]byte, len(plaintext)), plaintext, "plaintext must be zeroed after the response")
	})

	t.Run("Error_MissingCiphertext", func(t *testing.T) {
		handler, _ := setupTestHandler(t)

		c, w := createTestContext(http.MethodPost, "/v1/messages/decrypt", dto.DecryptRequest{})

		handler.DecryptHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("Error_AuthenticationFailure", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)

		mockUseCase.On("Decrypt", mock.Anything, ciphertext).Return(nil, domain.ErrFrameAuthentication).Once()

		c, w := createTestContext(http.MethodPost, "/v1/messages/decrypt", request)

		handler.DecryptHandler(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		var response httputil.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "invalid_ciphertext", response.Error)
		assert.NotContains(t, response.Message, "frame")
	})

	t.Run("Error_Truncated", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)

		mockUseCase.On("Decrypt", mock.Anything, ciphertext).Return(nil, domain.ErrTruncated).Once()

		c, w := createTestContext(http.MethodPost, "/v1/messages/decrypt", request)

		handler.DecryptHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("Error_InvalidSignature", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)

		mockUseCase.On("Decrypt", mock.Anything, ciphertext).Return(nil, domain.ErrInvalidSignature).Once()

		c, w := createTestContext(http.MethodPost, "/v1/messages/decrypt", request)

		handler.DecryptHandler(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestMessageHandler_ListSuitesHandler(t *testing.T) {
	handler, _ := setupTestHandler(t)

	c, w := createTestContext(http.MethodGet, "/v1/suites", nil)

	handler.ListSuitesHandler(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var response dto.ListSuitesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "require-encrypt-require-decrypt", response.CommitmentPolicy)
	assert.Len(t, response.Data, len(domain.Suites()))
}
